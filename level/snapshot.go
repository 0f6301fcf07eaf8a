package level

import (
	"github.com/lixenwraith/hushmaze/maze"
	"github.com/lixenwraith/hushmaze/sound"
	"github.com/lixenwraith/hushmaze/vmath"
)

// AgentState is a stalker as seen from outside the simulation
type AgentState struct {
	ID        uint32       `json:"id"`
	Species   string       `json:"species"`
	Position  vmath.Vec2   `json:"position"`
	Following uint64       `json:"following,omitempty"` // Handle ID, 0 when idle
	Path      []vmath.Vec2 `json:"path,omitempty"`      // Unconsumed waypoints
}

// SoundState is one live ripple with its render values
type SoundState struct {
	ID       uint64     `json:"id"`
	Category string     `json:"category"`
	Class    string     `json:"class"`
	Position vmath.Vec2 `json:"position"`
	Radius   float64    `json:"radius"`
	Alpha    float64    `json:"alpha"`
	Paused   bool       `json:"paused,omitempty"`
}

// Snapshot is a deep copy of level state safe to hand to other goroutines
type Snapshot struct {
	Frame    uint64       `json:"frame"`
	Elapsed  float64      `json:"elapsed"`
	Grid     *maze.Grid   `json:"-"`
	CellSize float64      `json:"cell_size"`
	Player   vmath.Vec2   `json:"player"`
	Exit     maze.Point   `json:"exit"`
	ExitDist int          `json:"exit_distance"` // Cell steps, -1 when walled off
	Agents   []AgentState `json:"agents"`
	Sounds   []SoundState `json:"sounds"`
	Guide    []vmath.Vec2 `json:"guide,omitempty"`
}

// Snapshot copies the current state
func (l *Level) Snapshot() Snapshot {
	snap := Snapshot{
		Frame:    l.frame,
		Elapsed:  l.elapsed,
		Grid:     l.Grid.Clone(),
		CellSize: l.Mapper.CellSize,
		Player:   l.player,
		Exit:     l.exit,
		ExitDist: l.ExitDistance(),
		Agents:   make([]AgentState, 0, len(l.stalkers)),
	}

	for _, s := range l.stalkers {
		a := AgentState{
			ID:       uint32(s.ID()),
			Species:  s.Species().String(),
			Position: s.Position(),
		}
		if h := s.Following(); h.Valid() {
			a.Following = h.ID()
		}
		a.Path = s.Path().Pending()
		snap.Agents = append(snap.Agents, a)
	}

	observer := l.Field.Observer()
	for c := sound.Category(0); c < sound.CategoryCount; c++ {
		for _, ev := range l.Field.Events(c) {
			snap.Sounds = append(snap.Sounds, SoundState{
				ID:       ev.Handle.ID(),
				Category: ev.Category.String(),
				Class:    ev.Class.String(),
				Position: ev.Position,
				Radius:   ev.Radius(),
				Alpha:    l.Field.Alpha(ev, observer),
				Paused:   ev.Paused,
			})
		}
	}

	snap.Guide = l.Guide.Path().Pending()
	return snap
}
