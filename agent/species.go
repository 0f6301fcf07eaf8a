package agent

import (
	"fmt"

	"github.com/lixenwraith/hushmaze/sound"
)

// Species selects a stalker's tuning
type Species int

const (
	// Bunny darts toward footsteps and dropped items
	Bunny Species = iota
	// Honey is slow but hears far and joins other monsters
	Honey
	// Kitty is fast, short-eared and curious about everything
	Kitty
	SpeciesCount
)

// Profile is the per-species tuning table entry
type Profile struct {
	Name          string
	Speed         float64 // World units per second
	HearingRange  float64 // Events emitted farther away are ignored
	GrowlInterval float64 // Seconds of movement between growls, 0 disables
	Listens       []sound.Category
}

var profiles = [SpeciesCount]Profile{
	Bunny: {Name: "bunny", Speed: 3.0, HearingRange: 12, GrowlInterval: 4, Listens: []sound.Category{sound.Player, sound.Item}},
	Honey: {Name: "honey", Speed: 2.0, HearingRange: 18, GrowlInterval: 3, Listens: []sound.Category{sound.Player, sound.Monster}},
	Kitty: {Name: "kitty", Speed: 4.0, HearingRange: 10, GrowlInterval: 0, Listens: []sound.Category{sound.Player, sound.Neutral, sound.Item}},
}

// Profile returns the tuning for s; unknown species get Bunny's
func (s Species) Profile() Profile {
	if s < 0 || s >= SpeciesCount {
		return profiles[Bunny]
	}
	return profiles[s]
}

func (s Species) String() string {
	if s < 0 || s >= SpeciesCount {
		return fmt.Sprintf("species(%d)", int(s))
	}
	return profiles[s].Name
}
