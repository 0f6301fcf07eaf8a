package audio

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// Headless pull size per mixer call
const advanceChunk = 1024

// Engine plays clips through a beep mixer
// Without a speaker the mixer is pulled by Advance so playback clocks follow simulation time
type Engine struct {
	config Config
	format beep.Format
	cache  *clipCache
	mixer  *beep.Mixer

	mu        sync.Mutex // Guards mixer and voices while headless
	speakerOn bool
	scratch   [][2]float64
}

// NewEngine creates an engine; the speaker is not opened until StartSpeaker
func NewEngine(cfg Config) *Engine {
	cfg = cfg.normalize()
	format := beep.Format{
		SampleRate:  beep.SampleRate(cfg.SampleRate),
		NumChannels: 2,
		Precision:   2,
	}
	return &Engine{
		config:  cfg,
		format:  format,
		cache:   newClipCache(format),
		mixer:   &beep.Mixer{},
		scratch: make([][2]float64, advanceChunk),
	}
}

// StartSpeaker opens the output device and hands the mixer to the speaker goroutine
func (e *Engine) StartSpeaker() error {
	if !e.config.Enabled {
		return ErrAudioDisabled
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.speakerOn {
		return nil
	}

	rate := e.format.SampleRate
	if err := speaker.Init(rate, rate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("speaker init: %w", err)
	}
	speaker.Play(e.mixer)
	e.speakerOn = true
	return nil
}

// Headless reports whether Advance drives the mixer
func (e *Engine) Headless() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.speakerOn
}

// lock serializes access to mixer state with whichever goroutine pulls samples
func (e *Engine) lock() func() {
	e.mu.Lock()
	if e.speakerOn {
		e.mu.Unlock()
		speaker.Lock()
		return speaker.Unlock
	}
	return e.mu.Unlock
}

// Play starts clip at volume scaled by the master volume
func (e *Engine) Play(clip Clip, volume float64) (Playback, error) {
	buf, err := e.cache.get(clip)
	if err != nil {
		return nil, err
	}

	src := buf.Streamer(0, buf.Len())
	v := &voice{
		engine: e,
		src:    src,
		length: buf.Len(),
		rate:   e.format.SampleRate,
		ctrl:   &beep.Ctrl{Streamer: withGain(src, volume*e.config.MasterVolume)},
	}

	unlock := e.lock()
	e.mixer.Add(v.ctrl)
	unlock()
	return v, nil
}

// Advance pulls dt seconds of audio through the mixer when no speaker is attached
func (e *Engine) Advance(dt float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.speakerOn || dt <= 0 {
		return
	}

	n := e.format.SampleRate.N(time.Duration(dt * float64(time.Second)))
	for n > 0 {
		k := min(n, len(e.scratch))
		e.mixer.Stream(e.scratch[:k])
		n -= k
	}
}

// Active returns the number of streamers still held by the mixer
func (e *Engine) Active() int {
	unlock := e.lock()
	defer unlock()
	return e.mixer.Len()
}

// Close drops all voices; beep has no speaker teardown beyond clearing the mixer
func (e *Engine) Close() {
	unlock := e.lock()
	e.mixer.Clear()
	unlock()
	log.Printf("audio: engine closed, %d clips cached", e.cache.len())
}

// voice is the Playback returned by Engine.Play
type voice struct {
	engine  *Engine
	src     beep.StreamSeeker
	ctrl    *beep.Ctrl
	length  int
	rate    beep.SampleRate
	stopped bool
}

func (v *voice) Position() float64 {
	unlock := v.engine.lock()
	defer unlock()
	return v.rate.D(v.src.Position()).Seconds()
}

func (v *voice) Length() float64 {
	return v.rate.D(v.length).Seconds()
}

func (v *voice) Playing() bool {
	unlock := v.engine.lock()
	defer unlock()
	return !v.stopped && v.src.Position() < v.length
}

func (v *voice) SetPaused(paused bool) {
	unlock := v.engine.lock()
	defer unlock()
	v.ctrl.Paused = paused
}

// Stop detaches the source; the mixer drops the drained ctrl on its next pull
func (v *voice) Stop() {
	unlock := v.engine.lock()
	defer unlock()
	v.stopped = true
	v.ctrl.Streamer = nil
}
