package audio

import (
	"errors"
	"time"
)

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

// Clip describes a synthetic sound rendered once and cached by value
type Clip struct {
	Name     string
	Duration time.Duration
	Freq     float64 // Ignored for WaveNoise
	Wave     WaveType
}

// Playback is a handle to one playing clip, times in seconds
type Playback interface {
	Position() float64
	Length() float64
	Playing() bool
	SetPaused(paused bool)
	Stop()
}

// Backend starts clips; the sound field polls the returned playback for its clock
type Backend interface {
	Play(clip Clip, volume float64) (Playback, error)
}

// Sentinel errors
var (
	ErrInvalidClip   = errors.New("invalid clip")
	ErrAudioDisabled = errors.New("audio output disabled")
)
