package level

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/lixenwraith/hushmaze/agent"
	"github.com/lixenwraith/hushmaze/audio"
	"github.com/lixenwraith/hushmaze/config"
	"github.com/lixenwraith/hushmaze/maze"
	"github.com/lixenwraith/hushmaze/navigation"
	"github.com/lixenwraith/hushmaze/sound"
	"github.com/lixenwraith/hushmaze/vmath"
)

// PlayerID is the player's collider; stalkers take IDs after it
const PlayerID navigation.ColliderID = 1

// Clock is implemented by backends whose playback advances only when pulled
type Clock interface {
	Headless() bool
	Advance(dt float64)
}

// Level owns one maze run: grid, navigation, sound field and agents
// All methods run on the simulation goroutine
type Level struct {
	settings config.Settings

	Grid   *maze.Grid
	Mapper navigation.Mapper
	Caster *navigation.GridCaster
	Finder *navigation.PathFinder
	Field  *sound.Field
	Guide  *agent.Guide

	stalkers  []*agent.Stalker
	doors     []*maze.Door
	clock     Clock
	exitField *navigation.FlowField

	player      vmath.Vec2
	exit        maze.Point
	stepAccum   float64
	gridVersion uint64

	frame   uint64
	elapsed float64
}

// FieldConfig maps level settings onto the sound field
func FieldConfig(s config.Settings) sound.FieldConfig {
	cfg := sound.DefaultFieldConfig()
	cfg.MinAlphaRatio = s.Sound.MinAlphaRatio
	cfg.BufferCapacity = s.Sound.BufferCapacity
	cfg.Capacity = s.Sound.Capacity

	per := [sound.CategoryCount]config.CategorySettings{
		sound.Neutral: s.Sound.Neutral,
		sound.Player:  s.Sound.Player,
		sound.Monster: s.Sound.Monster,
		sound.Item:    s.Sound.Item,
	}
	for c, cs := range per {
		cfg.Profiles[c].DecayRadius = cs.DecayRadius
		cfg.Profiles[c].Clip.Duration = time.Duration(cs.Duration * float64(time.Second))
	}
	return cfg
}

// AudioConfig maps level settings onto the audio engine
func AudioConfig(s config.Settings) audio.Config {
	return audio.Config{
		Enabled:      s.Audio.Enabled,
		MasterVolume: s.Audio.MasterVolume,
		SampleRate:   s.Audio.SampleRate,
	}
}

// New builds a level; backend drives sound playback and, when it is a Clock, is advanced by Update
func New(s config.Settings, backend audio.Backend) (*Level, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	seed := s.Maze.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	var grid *maze.Grid
	if s.Maze.Empty {
		g, err := maze.GenerateEmpty(s.Maze.Width, s.Maze.Height)
		if err != nil {
			return nil, fmt.Errorf("level: %w", err)
		}
		grid = g
	} else {
		res, err := maze.Generate(maze.Config{
			Width:   s.Maze.Width,
			Height:  s.Maze.Height,
			NoBraid: s.Maze.NoBraid,
			Rand:    rng,
		})
		if err != nil {
			return nil, fmt.Errorf("level: %w", err)
		}
		grid = res.Grid
	}

	field, err := sound.NewField(FieldConfig(s), backend)
	if err != nil {
		return nil, fmt.Errorf("level: %w", err)
	}

	nav := s.Navigation
	mapper := navigation.NewMapper(nav.CellSize)
	caster := navigation.NewGridCaster(grid, mapper, nav.EdgeThickness)

	l := &Level{
		settings:    s,
		Grid:        grid,
		Mapper:      mapper,
		Caster:      caster,
		Finder:      navigation.NewPathFinder(grid, mapper, nav.EdgeThickness, caster),
		Field:       field,
		Guide:       agent.NewGuide(nav.CellSize / 4),
		player:      mapper.CellCenter(maze.Point{}),
		exit:        maze.Point{X: grid.Width - 1, Y: grid.Height - 1},
		gridVersion: grid.Version(),
	}
	if c, ok := backend.(Clock); ok {
		l.clock = c
	}
	caster.SetCollider(PlayerID, l.player, nav.AgentRadius)
	field.SetObserver(l.player)

	l.exitField = navigation.NewFlowField(grid)
	if err := l.exitField.Compute(l.exit); err != nil {
		return nil, fmt.Errorf("level: %w", err)
	}

	l.spawnStalkers(rng)
	return l, nil
}

// spawnStalkers places monsters on random cells, preferring cells a third of the maze span away by walking distance
func (l *Level) spawnStalkers(rng *rand.Rand) {
	m := l.settings.Monsters
	counts := [agent.SpeciesCount]int{agent.Bunny: m.Bunny, agent.Honey: m.Honey, agent.Kitty: m.Kitty}
	minDist := (l.Grid.Width + l.Grid.Height) / 3
	nav := l.settings.Navigation

	fromStart := navigation.NewFlowField(l.Grid)
	_ = fromStart.Compute(l.Mapper.CellOf(l.player))
	tooClose := func(c maze.Point) bool {
		d := fromStart.Distance(c)
		return d >= 0 && d < minDist
	}

	id := PlayerID
	for sp, n := range counts {
		for i := 0; i < n; i++ {
			cell := maze.Point{X: rng.Intn(l.Grid.Width), Y: rng.Intn(l.Grid.Height)}
			for tries := 0; tries < 16 && tooClose(cell); tries++ {
				cell = maze.Point{X: rng.Intn(l.Grid.Width), Y: rng.Intn(l.Grid.Height)}
			}
			id++
			s := agent.NewStalker(agent.StalkerConfig{
				ID:                     id,
				Species:                agent.Species(sp),
				Position:               l.Mapper.CellCenter(cell),
				Radius:                 nav.AgentRadius,
				Field:                  l.Field,
				Finder:                 l.Finder,
				Body:                   l.Caster,
				Prey:                   PlayerID,
				MinTicksBetweenCompute: nav.MinTicksBetweenCompute,
				DirtyDistance:          nav.DirtyDistance,
			})
			s.Attach(l.Field.Router())
			l.stalkers = append(l.stalkers, s)
		}
	}
}

// Update advances one frame: doors, audio clock, sound field, then agents
func (l *Level) Update(dt float64) {
	if len(l.doors) > 0 {
		kept := l.doors[:0]
		for _, d := range l.doors {
			if !d.Update(dt) {
				kept = append(kept, d)
			}
		}
		l.doors = kept
	}
	if v := l.Grid.Version(); v != l.gridVersion {
		l.gridVersion = v
		l.exitField.Refresh()
		for _, s := range l.stalkers {
			s.Replan()
		}
	}

	if l.clock != nil && l.clock.Headless() {
		l.clock.Advance(dt)
	}

	l.Field.SetObserver(l.player)
	l.Field.Tick(dt)

	for _, s := range l.stalkers {
		s.Move(dt)
	}

	l.frame++
	l.elapsed += dt
}

// MovePlayer slides the player by delta, stopping at the first obstruction
// Footsteps are emitted every half cell of travel
func (l *Level) MovePlayer(delta vmath.Vec2) vmath.Vec2 {
	r := l.settings.Navigation.AgentRadius
	to := vmath.V2Add(l.player, delta)
	if hit, ok := l.Caster.CapsuleCast(l.player, to, r, PlayerID); ok {
		to = hit.Point
	}

	l.stepAccum += vmath.V2Dist(l.player, to)
	l.player = to
	l.Caster.SetCollider(PlayerID, to, r)

	stride := l.settings.Navigation.CellSize / 2
	if l.stepAccum >= stride {
		l.stepAccum = 0
		if _, err := l.Field.Emit(to, sound.Player, sound.Player, 1); err != nil {
			log.Printf("level: footstep: %v", err)
		}
	}
	return to
}

// EmitAt emits a sound filed under its own category
func (l *Level) EmitAt(pos vmath.Vec2, category sound.Category, volume float64) (sound.Handle, error) {
	return l.Field.Emit(pos, category, category, volume)
}

// OpenDoor schedules an animated edge change
func (l *Level) OpenDoor(cell maze.Point, dir maze.Direction, open bool, duration float64) error {
	d, err := maze.NewDoor(l.Grid, cell, dir, open, duration)
	if err != nil {
		return err
	}
	l.doors = append(l.doors, d)
	return nil
}

// Path answers a point-to-point request with the level's agent radius
func (l *Level) Path(from, to vmath.Vec2) (*navigation.Path, error) {
	return l.Finder.FindPath(from, to, l.settings.Navigation.AgentRadius)
}

// GuideToExit points the guide arrow from the player to the exit cell
func (l *Level) GuideToExit() error {
	p, err := l.Path(l.player, l.Mapper.CellCenter(l.exit))
	if err != nil {
		l.Guide.Discard()
		return err
	}
	l.Guide.SetPath(p)
	return nil
}

// ExitDistance returns cell steps from the player to the exit, -1 if walled off
func (l *Level) ExitDistance() int {
	return l.exitField.Distance(l.Mapper.CellOf(l.player))
}

// ExitHint returns the first open direction from the player's cell toward the exit
func (l *Level) ExitHint() (maze.Direction, bool) {
	return l.exitField.Direction(l.Mapper.CellOf(l.player))
}

// AtExit reports whether the player stands in the exit cell
func (l *Level) AtExit() bool {
	return l.Mapper.CellOf(l.player) == l.exit
}

// Pause suspends or resumes every sound
func (l *Level) Pause(paused bool) {
	if paused {
		l.Field.PauseAll()
	} else {
		l.Field.UnpauseAll()
	}
}

// Close detaches agents from the router
func (l *Level) Close() {
	for _, s := range l.stalkers {
		s.Detach()
	}
	l.stalkers = nil
}

func (l *Level) Player() vmath.Vec2         { return l.player }
func (l *Level) Exit() maze.Point           { return l.exit }
func (l *Level) Stalkers() []*agent.Stalker { return l.stalkers }
func (l *Level) Settings() config.Settings  { return l.settings }
func (l *Level) Frame() uint64              { return l.frame }
