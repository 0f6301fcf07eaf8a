package sound

import (
	"fmt"
	"strings"

	"github.com/lixenwraith/hushmaze/vmath"
)

// Category classifies emitters and partitions the active event lists
type Category int

const (
	// Neutral covers ambient world sounds
	// Trigger: level scripts, dripping pipes | Listeners: Kitty
	Neutral Category = iota

	// Player covers footsteps and player actions
	// Trigger: player movement | Listeners: every species
	Player

	// Monster covers growls and monster footsteps
	// Trigger: stalker movement | Listeners: Honey, spectators
	Monster

	// Item covers dropped or thrown objects
	// Trigger: item interaction | Listeners: Bunny, Kitty
	Item

	CategoryCount
)

var categoryNames = [CategoryCount]string{"neutral", "player", "monster", "item"}

func (c Category) String() string {
	if c < 0 || c >= CategoryCount {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryNames[c]
}

// Valid reports whether c is a known category
func (c Category) Valid() bool {
	return c >= 0 && c < CategoryCount
}

// ParseCategory maps a case-insensitive name to its category
func ParseCategory(s string) (Category, error) {
	for i, name := range categoryNames {
		if strings.EqualFold(s, name) {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown category %q", ErrInvalidCategory, s)
}

// Handle identifies one emission; the generation rejects use after the slot is recycled
// The zero Handle never refers to an event
type Handle struct {
	index uint32
	gen   uint32
}

// Valid reports whether h was issued by a field
func (h Handle) Valid() bool {
	return h.gen != 0
}

// ID packs index and generation into one value for logs and wire formats
func (h Handle) ID() uint64 {
	return uint64(h.index)<<32 | uint64(h.gen)
}

func (h Handle) String() string {
	return fmt.Sprintf("%d#%d", h.index, h.gen)
}

// Event is a snapshot of one expanding sound ripple
type Event struct {
	Handle      Handle
	Category    Category   // Emitter category, selects clip and decay radius
	Class       Category   // Active list the event is filed under
	Position    vmath.Vec2 // Fixed at emission
	DecayRadius float64    // Radius reached at the end of the clip
	Duration    float64    // Seconds
	Elapsed     float64    // Seconds, in [0, Duration]
	Paused      bool
	Playing     bool
}

// NormalizedTime returns Elapsed/Duration in [0,1]
func (e Event) NormalizedTime() float64 {
	if e.Duration <= 0 {
		return 1
	}
	return vmath.Clamp01(e.Elapsed / e.Duration)
}

// Radius returns the current propagation radius
func (e Event) Radius() float64 {
	return e.DecayRadius * e.NormalizedTime()
}

// Audible reports whether p lies inside the current ripple
func (e Event) Audible(p vmath.Vec2) bool {
	r := e.Radius()
	return vmath.V2DistSq(e.Position, p) <= r*r
}
