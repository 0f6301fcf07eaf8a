package audio

// Config holds audio engine settings
type Config struct {
	Enabled      bool    // Open the speaker device; clips still advance headless when false
	MasterVolume float64 // 0.0-1.0
	SampleRate   int
}

// DefaultConfig returns the default audio configuration
func DefaultConfig() Config {
	return Config{
		Enabled:      false,
		MasterVolume: 0.5,
		SampleRate:   44100,
	}
}

// normalize clamps volume and replaces an unusable sample rate with the default
func (c Config) normalize() Config {
	if c.MasterVolume < 0 {
		c.MasterVolume = 0
	}
	if c.MasterVolume > 1 {
		c.MasterVolume = 1
	}
	if c.SampleRate <= 0 {
		c.SampleRate = DefaultConfig().SampleRate
	}
	return c
}
