package config

import (
	"os"
	"strconv"
)

// ApplyEnv overrides settings from HUSHMAZE_* environment variables
// Unparseable values are ignored
func (s *Settings) ApplyEnv() {
	if v := os.Getenv("HUSHMAZE_WIDTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			s.Maze.Width = n
		}
	}
	if v := os.Getenv("HUSHMAZE_HEIGHT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			s.Maze.Height = n
		}
	}
	if v := os.Getenv("HUSHMAZE_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			s.Maze.Seed = n
		}
	}
	if v := os.Getenv("HUSHMAZE_EMPTY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			s.Maze.Empty = b
		}
	}
	if v := os.Getenv("HUSHMAZE_NO_BRAID"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			s.Maze.NoBraid = b
		}
	}

	if v := os.Getenv("HUSHMAZE_AUDIO_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			s.Audio.Enabled = b
		}
	}
	// Master volume 0-100 converted to 0.0-1.0
	if v := os.Getenv("HUSHMAZE_MASTER_VOLUME"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			s.Audio.MasterVolume = min(max(float64(n)/100.0, 0), 1)
		}
	}
	if v := os.Getenv("HUSHMAZE_SAMPLE_RATE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			s.Audio.SampleRate = n
		}
	}

	if v, ok := os.LookupEnv("HUSHMAZE_SPECTATE_ADDR"); ok {
		s.Spectate.Addr = v
	}
}
