package config

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/BurntSushi/toml"
)

// ErrInvalidSettings wraps every validation failure
var ErrInvalidSettings = errors.New("invalid settings")

// Settings is the full level configuration
type Settings struct {
	Maze       MazeSettings       `toml:"maze"`
	Navigation NavigationSettings `toml:"navigation"`
	Sound      SoundSettings      `toml:"sound"`
	Monsters   MonsterSettings    `toml:"monsters"`
	Audio      AudioSettings      `toml:"audio"`
	Spectate   SpectateSettings   `toml:"spectate"`
}

type MazeSettings struct {
	Width   int   `toml:"width"`
	Height  int   `toml:"height"`
	Empty   bool  `toml:"empty"`    // Open room bounded by the outer ring
	Seed    int64 `toml:"seed"`     // 0 seeds from the clock
	NoBraid bool  `toml:"no_braid"` // Keep the perfect maze
}

type NavigationSettings struct {
	CellSize               float64 `toml:"cell_size"`
	EdgeThickness          float64 `toml:"edge_thickness"`
	AgentRadius            float64 `toml:"agent_radius"`
	MinTicksBetweenCompute int     `toml:"min_ticks_between_compute"`
	DirtyDistance          int     `toml:"dirty_distance"`
}

// CategorySettings tunes one emitter category
type CategorySettings struct {
	DecayRadius float64 `toml:"decay_radius"`
	Duration    float64 `toml:"duration"` // Seconds
}

type SoundSettings struct {
	MinAlphaRatio  float64          `toml:"min_alpha_ratio"`
	BufferCapacity int              `toml:"buffer_capacity"`
	Capacity       int              `toml:"capacity"`
	Neutral        CategorySettings `toml:"neutral"`
	Player         CategorySettings `toml:"player"`
	Monster        CategorySettings `toml:"monster"`
	Item           CategorySettings `toml:"item"`
}

// MonsterSettings holds per-species spawn counts
type MonsterSettings struct {
	Bunny int `toml:"bunny"`
	Honey int `toml:"honey"`
	Kitty int `toml:"kitty"`
}

type AudioSettings struct {
	Enabled      bool    `toml:"enabled"`
	MasterVolume float64 `toml:"master_volume"` // 0.0-1.0
	SampleRate   int     `toml:"sample_rate"`
}

type SpectateSettings struct {
	Addr string `toml:"addr"` // Empty disables the debug server
}

// Default returns the stock level settings
func Default() Settings {
	return Settings{
		Maze: MazeSettings{Width: 16, Height: 12},
		Navigation: NavigationSettings{
			CellSize:               4,
			EdgeThickness:          0.2,
			AgentRadius:            0.5,
			MinTicksBetweenCompute: 10,
			DirtyDistance:          2,
		},
		Sound: SoundSettings{
			MinAlphaRatio:  0.5,
			BufferCapacity: 32,
			Capacity:       256,
			Neutral:        CategorySettings{DecayRadius: 8, Duration: 1.5},
			Player:         CategorySettings{DecayRadius: 6, Duration: 0.6},
			Monster:        CategorySettings{DecayRadius: 20, Duration: 2},
			Item:           CategorySettings{DecayRadius: 10, Duration: 1},
		},
		Monsters: MonsterSettings{Bunny: 1, Honey: 1, Kitty: 1},
		Audio:    AudioSettings{Enabled: false, MasterVolume: 0.5, SampleRate: 44100},
	}
}

// Load decodes a TOML file over the defaults
// A missing file is logged and the defaults are returned
func Load(path string) (Settings, error) {
	s := Default()
	if path == "" {
		return s, nil
	}

	md, err := toml.DecodeFile(path, &s)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Printf("config: %s not found, using defaults", path)
			return Default(), nil
		}
		return Settings{}, fmt.Errorf("decode %s: %w", path, err)
	}
	for _, key := range md.Undecoded() {
		log.Printf("config: unknown key %q in %s", key.String(), path)
	}
	return s, nil
}

// Validate checks every range the level depends on
func (s Settings) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(s.Maze.Width > 0 && s.Maze.Height > 0 && s.Maze.Width*s.Maze.Height >= 2,
		"maze %dx%d needs at least 2 cells", s.Maze.Width, s.Maze.Height)

	nav := s.Navigation
	check(nav.CellSize > 0, "cell size %v", nav.CellSize)
	check(nav.EdgeThickness >= 0 && 2*nav.EdgeThickness < nav.CellSize, "edge thickness %v", nav.EdgeThickness)
	check(nav.AgentRadius > 0, "agent radius %v", nav.AgentRadius)
	check(nav.MinTicksBetweenCompute >= 0, "min ticks %d", nav.MinTicksBetweenCompute)
	check(nav.DirtyDistance >= 0, "dirty distance %d", nav.DirtyDistance)

	snd := s.Sound
	check(snd.MinAlphaRatio >= 0 && snd.MinAlphaRatio <= 1, "min alpha ratio %v", snd.MinAlphaRatio)
	check(snd.BufferCapacity > 0, "buffer capacity %d", snd.BufferCapacity)
	check(snd.Capacity >= 0, "capacity %d", snd.Capacity)
	for name, c := range map[string]CategorySettings{
		"neutral": snd.Neutral, "player": snd.Player, "monster": snd.Monster, "item": snd.Item,
	} {
		check(c.DecayRadius >= 0, "%s decay radius %v", name, c.DecayRadius)
		check(c.Duration > 0, "%s duration %v", name, c.Duration)
	}

	m := s.Monsters
	check(m.Bunny >= 0 && m.Honey >= 0 && m.Kitty >= 0, "negative monster count")

	check(s.Audio.MasterVolume >= 0 && s.Audio.MasterVolume <= 1, "master volume %v", s.Audio.MasterVolume)
	check(s.Audio.SampleRate > 0, "sample rate %d", s.Audio.SampleRate)

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, errors.Join(errs...))
	}
	return nil
}
