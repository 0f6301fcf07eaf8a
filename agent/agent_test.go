package agent

import (
	"math"
	"testing"

	"github.com/lixenwraith/hushmaze/audio"
	"github.com/lixenwraith/hushmaze/maze"
	"github.com/lixenwraith/hushmaze/navigation"
	"github.com/lixenwraith/hushmaze/sound"
	"github.com/lixenwraith/hushmaze/vmath"
)

// stillPlayback never finishes unless stopped
type stillPlayback struct{ stopped bool }

func (p *stillPlayback) Position() float64 { return 0 }
func (p *stillPlayback) Length() float64   { return 1 }
func (p *stillPlayback) Playing() bool     { return !p.stopped }
func (p *stillPlayback) SetPaused(bool)    {}
func (p *stillPlayback) Stop()             { p.stopped = true }

type stillBackend struct{}

func (stillBackend) Play(audio.Clip, float64) (audio.Playback, error) {
	return &stillPlayback{}, nil
}

type fakeBody struct {
	colliders map[navigation.ColliderID]vmath.Vec2
}

func (b *fakeBody) SetCollider(id navigation.ColliderID, c vmath.Vec2, _ float64) {
	b.colliders[id] = c
}

func (b *fakeBody) RemoveCollider(id navigation.ColliderID) {
	delete(b.colliders, id)
}

const cellSize = 4.0

type rig struct {
	field  *sound.Field
	mapper navigation.Mapper
	body   *fakeBody
	finder *navigation.PathFinder
}

func newRig(t *testing.T, w, h int) *rig {
	t.Helper()
	g, err := maze.GenerateEmpty(w, h)
	if err != nil {
		t.Fatal(err)
	}
	f, err := sound.NewField(sound.DefaultFieldConfig(), stillBackend{})
	if err != nil {
		t.Fatal(err)
	}
	m := navigation.NewMapper(cellSize)
	return &rig{
		field:  f,
		mapper: m,
		body:   &fakeBody{colliders: make(map[navigation.ColliderID]vmath.Vec2)},
		finder: navigation.NewPathFinder(g, m, 0.2, nil),
	}
}

func (r *rig) stalker(species Species, cell maze.Point) *Stalker {
	s := NewStalker(StalkerConfig{
		ID:                     7,
		Species:                species,
		Position:               r.mapper.CellCenter(cell),
		Radius:                 0.5,
		Field:                  r.field,
		Finder:                 r.finder,
		Body:                   r.body,
		MinTicksBetweenCompute: 5,
		DirtyDistance:          1,
	})
	s.Attach(r.field.Router())
	return s
}

func TestStalkerInvestigatesSound(t *testing.T) {
	r := newRig(t, 6, 1)
	s := r.stalker(Bunny, maze.Point{})

	if _, err := r.field.Emit(r.mapper.CellCenter(maze.Point{X: 5}), sound.Player, sound.Player, 1); err != nil {
		t.Fatal(err)
	}
	if s.Following().Valid() {
		t.Fatal("heard a sound beyond hearing range")
	}

	target := r.mapper.CellCenter(maze.Point{X: 3})
	h, _ := r.field.Emit(target, sound.Player, sound.Player, 1)
	if s.Following() != h {
		t.Fatalf("following %v, want %v", s.Following(), h)
	}

	s.Move(1)
	if got := s.Position(); math.Abs(got.X-5) > 1e-9 || got.Y != 2 {
		t.Errorf("position after 1s = %v, want (5,2)", got)
	}
	if r.body.colliders[7] != s.Position() {
		t.Error("collider not synced")
	}

	for i := 0; i < 3; i++ {
		s.Move(1)
	}
	if s.Position() != target {
		t.Errorf("position = %v, want %v", s.Position(), target)
	}
	if r.field.Count(sound.Monster) != 1 {
		t.Errorf("expected one growl after 4s of movement, got %d", r.field.Count(sound.Monster))
	}

	s.Move(1)
	if s.Following().Valid() || s.Path() != nil {
		t.Error("stalker kept following after reaching the sound")
	}
}

func TestStalkerForgetsRemovedSound(t *testing.T) {
	r := newRig(t, 4, 4)
	s := r.stalker(Kitty, maze.Point{})

	h, _ := r.field.Emit(r.mapper.CellCenter(maze.Point{X: 1, Y: 1}), sound.Neutral, sound.Neutral, 1)
	if s.Following() != h {
		t.Fatal("sound not heard")
	}
	if err := r.field.Stop(h); err != nil {
		t.Fatal(err)
	}
	if s.Following().Valid() {
		t.Error("following a removed sound")
	}
}

func TestStalkerPrefersNearerSound(t *testing.T) {
	r := newRig(t, 6, 6)
	s := r.stalker(Honey, maze.Point{})

	mid, _ := r.field.Emit(r.mapper.CellCenter(maze.Point{X: 2, Y: 2}), sound.Player, sound.Player, 1)
	r.field.Emit(r.mapper.CellCenter(maze.Point{X: 3, Y: 3}), sound.Player, sound.Player, 1)
	if s.Following() != mid {
		t.Fatal("switched to a farther sound")
	}
	near, _ := r.field.Emit(r.mapper.CellCenter(maze.Point{X: 1}), sound.Monster, sound.Monster, 1)
	if s.Following() != near {
		t.Error("ignored a nearer sound")
	}

	// Categories outside the species list are ignored
	r.field.Emit(r.mapper.CellCenter(maze.Point{}), sound.Item, sound.Item, 1)
	if s.Following() != near {
		t.Error("Honey reacted to an item sound")
	}
}

func TestStalkerDetach(t *testing.T) {
	r := newRig(t, 3, 3)
	s := r.stalker(Bunny, maze.Point{})
	s.Detach()

	r.field.Emit(r.mapper.CellCenter(maze.Point{X: 1}), sound.Player, sound.Player, 1)
	if s.Following().Valid() {
		t.Error("detached stalker still listening")
	}
	if _, ok := r.body.colliders[7]; ok {
		t.Error("collider left behind")
	}
	if r.field.Router().SubscriberCount(sound.Player) != 0 {
		t.Error("subscription leaked")
	}
}

func TestStalkerIdleWithoutPath(t *testing.T) {
	r := newRig(t, 3, 3)
	g, _ := maze.GenerateEmpty(3, 3)
	for d := maze.Direction(0); d < maze.DirCount; d++ {
		_ = g.SetPassage(1, 1, d, false)
	}
	r.finder = navigation.NewPathFinder(g, r.mapper, 0.2, nil)
	s := r.stalker(Kitty, maze.Point{})
	start := s.Position()

	r.field.Emit(r.mapper.CellCenter(maze.Point{X: 1, Y: 1}), sound.Item, sound.Item, 1)
	s.Move(1)
	if s.Position() != start || s.Path() != nil {
		t.Error("stalker moved without a path")
	}
	if !s.Following().Valid() {
		t.Error("unreachable sound should stay followed for retry")
	}
}

func TestGuide(t *testing.T) {
	g := NewGuide(0.5)
	if g.Active() {
		t.Fatal("fresh guide active")
	}
	if _, ok := g.Update(vmath.Vec2{}); ok {
		t.Fatal("guide without path returned heading")
	}

	p := navigation.NewPath([]vmath.Vec2{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 6}})
	g.SetPath(p)

	h, ok := g.Update(vmath.Vec2{X: 0.1, Y: 0})
	if !ok || h != (vmath.Vec2{X: 1, Y: 0}) {
		t.Errorf("heading = %v, %v", h, ok)
	}
	h, ok = g.Update(vmath.Vec2{X: 4, Y: 0.2})
	if !ok || h != (vmath.Vec2{X: 0, Y: 1}) {
		t.Errorf("after corner heading = %v, %v", h, ok)
	}
	if wp, _ := g.Target(); wp != (vmath.Vec2{X: 4, Y: 6}) {
		t.Errorf("Target = %v", wp)
	}

	g.Discard()
	if g.Active() || p.Remaining() != 0 {
		t.Error("Discard left waypoints")
	}
	if g.Heading() != (vmath.Vec2{}) {
		t.Error("heading kept after discard")
	}
}

func TestSpeciesProfiles(t *testing.T) {
	for s := Species(0); s < SpeciesCount; s++ {
		p := s.Profile()
		if p.Speed <= 0 || p.HearingRange <= 0 || len(p.Listens) == 0 || s.String() != p.Name {
			t.Errorf("%d: bad profile %+v", s, p)
		}
	}
	if Species(-1).Profile().Name != "bunny" {
		t.Error("unknown species should fall back to bunny")
	}
}

func TestStalkerChasesPlayerDirectly(t *testing.T) {
	const prey navigation.ColliderID = 1
	g, err := maze.GenerateEmpty(4, 4)
	if err != nil {
		t.Fatal(err)
	}
	f, err := sound.NewField(sound.DefaultFieldConfig(), stillBackend{})
	if err != nil {
		t.Fatal(err)
	}
	m := navigation.NewMapper(cellSize)
	caster := navigation.NewGridCaster(g, m, 0.2)
	player := m.CellCenter(maze.Point{X: 3, Y: 3})
	caster.SetCollider(prey, player, 0.5)

	newHoney := func(id navigation.ColliderID) *Stalker {
		s := NewStalker(StalkerConfig{
			ID:                     id,
			Species:                Honey,
			Position:               m.CellCenter(maze.Point{}),
			Radius:                 0.5,
			Field:                  f,
			Finder:                 navigation.NewPathFinder(g, m, 0.2, caster),
			Body:                   caster,
			Prey:                   prey,
			MinTicksBetweenCompute: 5,
			DirtyDistance:          1,
		})
		s.Attach(f.Router())
		t.Cleanup(s.Detach)
		return s
	}

	// Footsteps in open sight: straight line to the player
	chaser := newHoney(7)
	h, _ := f.Emit(player, sound.Player, sound.Player, 1)
	if chaser.Following() != h {
		t.Fatal("footstep not heard")
	}
	chaser.Move(0.01)
	p := chaser.Path()
	if p == nil || p.Len() != 2 || p.Waypoints[1] != player {
		t.Fatalf("chase path = %+v, want direct line to %v", p, player)
	}
	if err := f.Stop(h); err != nil {
		t.Fatal(err)
	}

	// A monster sound at the same spot is investigated over the grid
	other := newHoney(8)
	if _, err := f.Emit(player, sound.Monster, sound.Monster, 1); err != nil {
		t.Fatal(err)
	}
	other.Move(0.01)
	if p := other.Path(); p == nil || p.Len() <= 2 {
		t.Errorf("grid route = %+v, want corners", p)
	}
}
