package sound

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/lixenwraith/hushmaze/audio"
	"github.com/lixenwraith/hushmaze/vmath"
)

// Sentinel errors
var (
	ErrStaleHandle     = errors.New("stale sound handle")
	ErrFieldFull       = errors.New("sound field at capacity")
	ErrInvalidCategory = errors.New("invalid sound category")
	ErrInvalidConfig   = errors.New("invalid field config")
)

// Profile binds a category to its clip and maximum ripple radius
type Profile struct {
	Clip        audio.Clip
	DecayRadius float64
}

// FieldConfig configures a Field
type FieldConfig struct {
	Profiles       [CategoryCount]Profile
	MinAlphaRatio  float64 // Normalized time after which alpha ramps down to 0
	BufferCapacity int     // Fixed length of each per-class render buffer
	Capacity       int     // Maximum live events, 0 for unbounded
}

// DefaultFieldConfig returns the stock profiles
func DefaultFieldConfig() FieldConfig {
	return FieldConfig{
		Profiles: [CategoryCount]Profile{
			Neutral: {Clip: audio.Clip{Name: "drip", Duration: 1500 * time.Millisecond, Freq: 440, Wave: audio.WaveSine}, DecayRadius: 8},
			Player:  {Clip: audio.Clip{Name: "step", Duration: 600 * time.Millisecond, Wave: audio.WaveNoise}, DecayRadius: 6},
			Monster: {Clip: audio.Clip{Name: "growl", Duration: 2 * time.Second, Freq: 70, Wave: audio.WaveSaw}, DecayRadius: 20},
			Item:    {Clip: audio.Clip{Name: "clatter", Duration: time.Second, Freq: 880, Wave: audio.WaveSquare}, DecayRadius: 10},
		},
		MinAlphaRatio:  0.5,
		BufferCapacity: 32,
		Capacity:       256,
	}
}

// Validate checks ranges
func (c FieldConfig) Validate() error {
	if c.BufferCapacity <= 0 {
		return fmt.Errorf("%w: buffer capacity %d", ErrInvalidConfig, c.BufferCapacity)
	}
	if c.Capacity < 0 {
		return fmt.Errorf("%w: capacity %d", ErrInvalidConfig, c.Capacity)
	}
	if c.MinAlphaRatio < 0 || c.MinAlphaRatio > 1 {
		return fmt.Errorf("%w: min alpha ratio %v", ErrInvalidConfig, c.MinAlphaRatio)
	}
	for cat, p := range c.Profiles {
		if p.DecayRadius < 0 {
			return fmt.Errorf("%w: %s decay radius %v", ErrInvalidConfig, Category(cat), p.DecayRadius)
		}
	}
	return nil
}

// Buffer is the fixed-capacity render view of one class
// Entries past Count are zero; Count is capped at capacity while the live list may be longer
type Buffer struct {
	Positions []vmath.Vec2
	Radii     []float64
	Alphas    []float64
	Count     int
}

func newBuffer(capacity int) Buffer {
	return Buffer{
		Positions: make([]vmath.Vec2, capacity),
		Radii:     make([]float64, capacity),
		Alphas:    make([]float64, capacity),
	}
}

// slot is one arena cell; gen survives release so old handles stay rejected
type slot struct {
	ev       Event
	playback audio.Playback
	gen      uint32
	live     bool
}

// Field owns all sound events in an arena with a free list
// Not safe for concurrent use; driven from the simulation loop
type Field struct {
	cfg     FieldConfig
	backend audio.Backend
	router  *Router

	slots   []slot
	free    []uint32
	active  [CategoryCount][]uint32 // Slot indices per class in emission order
	buffers [CategoryCount]Buffer
	removed []Event // Scratch for Tick

	observer vmath.Vec2
	paused   bool
}

// NewField creates a field playing clips through backend
func NewField(cfg FieldConfig, backend audio.Backend) (*Field, error) {
	if backend == nil {
		return nil, fmt.Errorf("%w: nil audio backend", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	f := &Field{
		cfg:     cfg,
		backend: backend,
	}
	for c := range f.buffers {
		f.buffers[c] = newBuffer(cfg.BufferCapacity)
	}
	f.router = newRouter(f)
	return f, nil
}

// Router returns the broadcast router fed by this field
func (f *Field) Router() *Router {
	return f.router
}

// Config returns the active configuration
func (f *Field) Config() FieldConfig {
	return f.cfg
}

// Emit starts the category clip at pos and files the event under class
// volume in [0,1] scales both playback gain and decay radius
func (f *Field) Emit(pos vmath.Vec2, category, class Category, volume float64) (Handle, error) {
	if !category.Valid() || !class.Valid() {
		return Handle{}, fmt.Errorf("%w: emit %s as %s", ErrInvalidCategory, category, class)
	}
	volume = vmath.Clamp01(volume)

	if f.cfg.Capacity > 0 && len(f.free) == 0 && len(f.slots) >= f.cfg.Capacity {
		return Handle{}, fmt.Errorf("%w: %d live events", ErrFieldFull, len(f.slots))
	}

	profile := f.cfg.Profiles[category]
	pb, err := f.backend.Play(profile.Clip, volume)
	if err != nil {
		return Handle{}, fmt.Errorf("emit %s: %w", category, err)
	}

	idx := f.acquire()
	s := &f.slots[idx]
	s.live = true
	s.playback = pb
	s.ev = Event{
		Handle:      Handle{index: idx, gen: s.gen},
		Category:    category,
		Class:       class,
		Position:    pos,
		DecayRadius: profile.DecayRadius * volume,
		Duration:    pb.Length(),
		Elapsed:     0,
		Playing:     true,
	}
	f.active[class] = append(f.active[class], idx)

	f.router.notifyAdded(s.ev, class)
	return s.ev.Handle, nil
}

// acquire pops the free list or grows the arena
func (f *Field) acquire() uint32 {
	if n := len(f.free); n > 0 {
		idx := f.free[n-1]
		f.free = f.free[:n-1]
		return idx
	}
	f.slots = append(f.slots, slot{gen: 1})
	return uint32(len(f.slots) - 1)
}

// release stops playback and returns the slot to the free list
func (f *Field) release(idx uint32) {
	s := &f.slots[idx]
	if s.playback != nil {
		s.playback.Stop()
	}
	s.playback = nil
	s.ev = Event{}
	s.live = false
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	f.free = append(f.free, idx)
}

// resolve validates h against the arena
func (f *Field) resolve(h Handle) (*slot, error) {
	if !h.Valid() || int(h.index) >= len(f.slots) {
		return nil, fmt.Errorf("%w: %s", ErrStaleHandle, h)
	}
	s := &f.slots[h.index]
	if !s.live || s.gen != h.gen {
		return nil, fmt.Errorf("%w: %s", ErrStaleHandle, h)
	}
	return s, nil
}

// Lookup returns a copy of the live event for h
func (f *Field) Lookup(h Handle) (Event, error) {
	s, err := f.resolve(h)
	if err != nil {
		return Event{}, err
	}
	return s.ev, nil
}

// Tick syncs elapsed time from playback clocks, retires finished events and rebuilds render buffers
// Elapsed time follows the playback clock; dt is not integrated
func (f *Field) Tick(dt float64) {
	f.removed = f.removed[:0]

	for class := range f.active {
		list := f.active[class]
		kept := list[:0]
		for _, idx := range list {
			s := &f.slots[idx]
			if !s.ev.Paused {
				s.ev.Elapsed = min(max(s.playback.Position(), 0), s.ev.Duration)
				s.ev.Playing = s.playback.Playing()
			}
			if !s.ev.Playing && !s.ev.Paused {
				f.removed = append(f.removed, s.ev)
				continue
			}
			kept = append(kept, idx)
		}
		f.active[class] = kept
	}

	for _, ev := range f.removed {
		f.release(ev.Handle.index)
	}
	for _, ev := range f.removed {
		f.router.notifyRemoved(ev.Handle, ev.Class)
	}

	f.rebuildBuffers()
}

// Stop removes the event immediately regardless of elapsed time
func (f *Field) Stop(h Handle) error {
	s, err := f.resolve(h)
	if err != nil {
		return err
	}
	class := s.ev.Class
	list := f.active[class]
	for i, idx := range list {
		if idx == h.index {
			f.active[class] = append(list[:i], list[i+1:]...)
			break
		}
	}
	f.release(h.index)
	f.router.notifyRemoved(h, class)
	return nil
}

// PauseAll suspends every tracked event and its playback without removing it
func (f *Field) PauseAll() {
	f.setPaused(true)
}

// UnpauseAll resumes every tracked event
func (f *Field) UnpauseAll() {
	f.setPaused(false)
}

func (f *Field) setPaused(paused bool) {
	f.paused = paused
	for class := range f.active {
		for _, idx := range f.active[class] {
			s := &f.slots[idx]
			s.ev.Paused = paused
			s.playback.SetPaused(paused)
		}
	}
}

// Paused reports the global pause state
func (f *Field) Paused() bool {
	return f.paused
}

// SetObserver sets the point alpha is measured from
func (f *Field) SetObserver(p vmath.Vec2) {
	f.observer = p
}

// Observer returns the current observer position
func (f *Field) Observer() vmath.Vec2 {
	return f.observer
}

// Alpha returns the visual intensity of ev seen from observer
// Full until MinAlphaRatio of the clip, then a linear ramp to 0, scaled by distance falloff
func (f *Field) Alpha(ev Event, observer vmath.Vec2) float64 {
	if ev.DecayRadius <= 0 {
		return 0
	}
	timeAlpha := 1.0
	n := ev.NormalizedTime()
	if ratio := f.cfg.MinAlphaRatio; n > ratio {
		if ratio >= 1 {
			timeAlpha = 0
		} else {
			timeAlpha = (1 - n) / (1 - ratio)
		}
	}
	falloff := vmath.Clamp01(1 - vmath.V2Dist(ev.Position, observer)/ev.DecayRadius)
	return timeAlpha * falloff
}

// Count returns the live event count for class
func (f *Field) Count(class Category) int {
	if !class.Valid() {
		return 0
	}
	return len(f.active[class])
}

// Buffers returns the render buffer for class as of the last Tick
func (f *Field) Buffers(class Category) *Buffer {
	if !class.Valid() {
		log.Printf("sound: buffers requested for %s", class)
		return nil
	}
	return &f.buffers[class]
}

// Events returns copies of live events filed under class in emission order
func (f *Field) Events(class Category) []Event {
	if !class.Valid() {
		return nil
	}
	out := make([]Event, 0, len(f.active[class]))
	for _, idx := range f.active[class] {
		out = append(out, f.slots[idx].ev)
	}
	return out
}

// each visits every live event across classes
func (f *Field) each(fn func(ev *Event)) {
	for class := range f.active {
		for _, idx := range f.active[class] {
			fn(&f.slots[idx].ev)
		}
	}
}

func (f *Field) rebuildBuffers() {
	for class := range f.active {
		b := &f.buffers[class]
		list := f.active[class]
		n := min(len(list), len(b.Positions))
		for i := 0; i < n; i++ {
			ev := &f.slots[list[i]].ev
			b.Positions[i] = ev.Position
			b.Radii[i] = ev.Radius()
			b.Alphas[i] = f.Alpha(*ev, f.observer)
		}
		clear(b.Positions[n:])
		clear(b.Radii[n:])
		clear(b.Alphas[n:])
		b.Count = n
	}
}
