package agent

import (
	"log"

	"github.com/lixenwraith/hushmaze/navigation"
	"github.com/lixenwraith/hushmaze/sound"
	"github.com/lixenwraith/hushmaze/vmath"
)

// Behavior is the per-tick strategy of an agent
type Behavior interface {
	Move(dt float64)
	OnSoundEvent(ev sound.Event)
}

// Body keeps an agent's collider current in the caster
type Body interface {
	SetCollider(id navigation.ColliderID, center vmath.Vec2, radius float64)
	RemoveCollider(id navigation.ColliderID)
}

// StalkerConfig wires a stalker to its level
type StalkerConfig struct {
	ID       navigation.ColliderID
	Species  Species
	Position vmath.Vec2
	Radius   float64

	Field  *sound.Field
	Finder *navigation.PathFinder
	Body   Body                  // Optional
	Prey   navigation.ColliderID // Collider chased directly when following a player sound

	MinTicksBetweenCompute int
	DirtyDistance          int
}

// Stalker hunts the most recent audible sound of the categories its species listens to
type Stalker struct {
	id      navigation.ColliderID
	species Species
	profile Profile
	radius  float64
	pos     vmath.Vec2

	field  *sound.Field
	finder *navigation.PathFinder
	body   Body
	cache  *navigation.PathCache
	prey   navigation.ColliderID
	chase  navigation.ColliderID // prey while following a player sound, else NoCollider

	following sound.Handle // Non-owning, resolved through the field
	target    vmath.Vec2

	growlTimer float64
	growling   bool // Set while Emit dispatches our own growl
	lastGrowl  sound.Handle
	unsubs     []func()
}

var _ Behavior = (*Stalker)(nil)

// NewStalker creates a stalker; call Attach to start listening
func NewStalker(cfg StalkerConfig) *Stalker {
	s := &Stalker{
		id:      cfg.ID,
		species: cfg.Species,
		profile: cfg.Species.Profile(),
		radius:  cfg.Radius,
		pos:     cfg.Position,
		field:   cfg.Field,
		finder:  cfg.Finder,
		body:    cfg.Body,
		prey:    cfg.Prey,
		cache:   navigation.NewPathCache(cfg.MinTicksBetweenCompute, cfg.DirtyDistance),
	}
	s.syncBody()
	return s
}

// Attach subscribes to the router for every category the species listens to
func (s *Stalker) Attach(r *sound.Router) {
	for _, c := range s.profile.Listens {
		s.unsubs = append(s.unsubs, r.Subscribe(c, sound.ListenerFuncs{
			Added: func(ev sound.Event, _ sound.Category) { s.OnSoundEvent(ev) },
			Removed: func(h sound.Handle, _ sound.Category) {
				if h == s.following {
					s.forget()
				}
			},
		}))
	}
}

// Detach cancels subscriptions and removes the collider
func (s *Stalker) Detach() {
	for _, u := range s.unsubs {
		u()
	}
	s.unsubs = nil
	if s.body != nil {
		s.body.RemoveCollider(s.id)
	}
}

// OnSoundEvent starts following ev when it is within hearing range and nearer than the current target
func (s *Stalker) OnSoundEvent(ev sound.Event) {
	if s.growling || ev.Handle == s.lastGrowl {
		return
	}
	dist := vmath.V2Dist(ev.Position, s.pos)
	if dist > s.profile.HearingRange {
		return
	}
	if s.following.Valid() && vmath.V2Dist(s.target, s.pos) < dist {
		return
	}
	s.following = ev.Handle
	s.target = ev.Position
	s.chase = navigation.NoCollider
	if ev.Category == sound.Player {
		s.chase = s.prey
	}
	s.cache.MarkDirty()
}

// Move advances along the cached path toward the followed sound
func (s *Stalker) Move(dt float64) {
	if !s.following.Valid() {
		return
	}
	if _, err := s.field.Lookup(s.following); err != nil {
		s.forget()
		return
	}

	s.cache.UpdateToTarget(s.finder, s.pos, s.target, s.radius, s.id, s.chase)
	path := s.cache.Path
	if path == nil {
		return // NoPath, cache retries after its throttle window
	}

	budget := s.profile.Speed * dt
	moved := false
	for budget > 0 {
		wp, ok := path.Peek()
		if !ok {
			if vmath.V2Dist(s.pos, s.target) <= s.radius {
				s.forget() // Investigated
			} else {
				s.cache.MarkDirty() // Target changed since this path was computed
			}
			break
		}
		next, reached := vmath.V2MoveToward(s.pos, wp, budget)
		budget -= vmath.V2Dist(s.pos, next)
		moved = moved || next != s.pos
		s.pos = next
		if !reached {
			break
		}
		path.Next()
	}

	s.syncBody()
	if moved {
		s.growl(dt)
	}
}

func (s *Stalker) growl(dt float64) {
	if s.profile.GrowlInterval <= 0 {
		return
	}
	s.growlTimer += dt
	if s.growlTimer < s.profile.GrowlInterval {
		return
	}
	s.growlTimer = 0
	s.growling = true
	h, err := s.field.Emit(s.pos, sound.Monster, sound.Monster, 1)
	s.growling = false
	if err != nil {
		log.Printf("agent: %s growl: %v", s.species, err)
		return
	}
	s.lastGrowl = h
}

// Replan forces a path recompute on the next eligible tick, used after wall changes
func (s *Stalker) Replan() {
	s.cache.MarkDirty()
}

func (s *Stalker) forget() {
	s.following = sound.Handle{}
	s.chase = navigation.NoCollider
	s.cache.Reset()
}

func (s *Stalker) syncBody() {
	if s.body != nil {
		s.body.SetCollider(s.id, s.pos, s.radius)
	}
}

// ID returns the collider identity
func (s *Stalker) ID() navigation.ColliderID { return s.id }

// Species returns the stalker's species
func (s *Stalker) Species() Species { return s.species }

// Position returns the current world position
func (s *Stalker) Position() vmath.Vec2 { return s.pos }

// Following returns the followed sound, invalid when idle
func (s *Stalker) Following() sound.Handle { return s.following }

// Path returns the current route, nil when idle
func (s *Stalker) Path() *navigation.Path { return s.cache.Path }
