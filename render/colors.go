package render

import (
	"github.com/lixenwraith/hushmaze/agent"
	"github.com/lixenwraith/hushmaze/sound"
)

var (
	RgbBackground = RGB{10, 10, 16} // Near black
	RgbText       = RGB{180, 180, 180}
	RgbWall       = RGB{90, 90, 110}
	RgbPlayer     = RGB{255, 255, 255}
	RgbExit       = RGB{80, 220, 120}
	RgbGuide      = RGB{255, 165, 0} // Orange waypoints
	RgbStatusBar  = RGB{120, 120, 140}
)

// RippleColors tint ripple rings per category
var RippleColors = [sound.CategoryCount]RGB{
	sound.Neutral: {60, 100, 200},  // Blue drips
	sound.Player:  {200, 200, 200}, // Gray footsteps
	sound.Monster: {200, 40, 40},   // Red growls
	sound.Item:    {220, 180, 40},  // Yellow clatter
}

// SpeciesStyle is a stalker's glyph and color
type SpeciesStyle struct {
	Glyph rune
	Color RGB
}

var speciesStyles = [agent.SpeciesCount]SpeciesStyle{
	agent.Bunny: {'B', RGB{255, 150, 200}},
	agent.Honey: {'H', RGB{255, 200, 60}},
	agent.Kitty: {'K', RGB{180, 120, 255}},
}

// StyleFor returns the style for a species name, '?' for unknown
func StyleFor(species string) SpeciesStyle {
	for s := agent.Species(0); s < agent.SpeciesCount; s++ {
		if s.String() == species {
			return speciesStyles[s]
		}
	}
	return SpeciesStyle{'?', RgbText}
}
