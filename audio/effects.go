package audio

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
)

// Envelope bounds applied to every rendered clip
const (
	maxAttack     = 10 * time.Millisecond
	releaseFactor = 3 // Release spans duration/releaseFactor
)

// shape returns one unit-amplitude sample at phase in [0, 1)
type shape func(phase float64, rng *rand.Rand) float64

var shapes = [...]shape{
	WaveSine: func(p float64, _ *rand.Rand) float64 { return math.Sin(2 * math.Pi * p) },
	WaveSquare: func(p float64, _ *rand.Rand) float64 {
		if p < 0.5 {
			return 1
		}
		return -1
	},
	WaveSaw:   func(p float64, _ *rand.Rand) float64 { return 2*p - 1 },
	WaveNoise: func(_ float64, rng *rand.Rand) float64 { return rng.Float64()*2 - 1 },
}

// wave streams a fixed number of mono samples duplicated to both channels
type wave struct {
	shape shape
	step  float64 // Phase advance per sample
	phase float64
	left  int
	rng   *rand.Rand
}

// NewOscillator streams duration of a periodic wave; noise is seeded from freq so clips render identically
func NewOscillator(freq float64, duration time.Duration, w WaveType, rate beep.SampleRate) beep.Streamer {
	sh := shapes[WaveSine]
	if w >= 0 && int(w) < len(shapes) {
		sh = shapes[w]
	}
	return &wave{
		shape: sh,
		step:  freq / float64(rate),
		left:  rate.N(duration),
		rng:   rand.New(rand.NewSource(int64(math.Float64bits(freq)))),
	}
}

func (w *wave) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		if w.left == 0 {
			return i, i > 0
		}
		v := w.shape(w.phase, w.rng)
		samples[i] = [2]float64{v, v}
		_, w.phase = math.Modf(w.phase + w.step)
		w.left--
	}
	return len(samples), true
}

func (w *wave) Err() error { return nil }

// fade ramps gain up over attack samples and down over the final release samples
type fade struct {
	src             beep.Streamer
	pos, total      int
	attack, release int
}

// NewEnvelope shapes s with linear attack and release, cutting it at duration
func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &fade{
		src:     s,
		total:   rate.N(duration),
		attack:  rate.N(attack),
		release: rate.N(release),
	}
}

func (f *fade) gain() float64 {
	if f.pos < f.attack {
		return float64(f.pos) / float64(f.attack)
	}
	if rem := f.total - f.pos; rem < f.release {
		return float64(rem) / float64(f.release)
	}
	return 1
}

func (f *fade) Stream(samples [][2]float64) (int, bool) {
	n, ok := f.src.Stream(samples)
	for i := 0; i < n; i++ {
		if f.pos >= f.total {
			return i, i > 0
		}
		g := f.gain()
		samples[i][0] *= g
		samples[i][1] *= g
		f.pos++
	}
	return n, ok
}

func (f *fade) Err() error { return f.src.Err() }

// withGain scales s by a linear factor; zero or less is silent since log2(0) is -Inf
func withGain(s beep.Streamer, linear float64) beep.Streamer {
	if linear <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(linear)}
}

// renderClip builds a finite unity-gain streamer for clip
func renderClip(clip Clip, rate beep.SampleRate) (beep.Streamer, error) {
	if clip.Duration <= 0 {
		return nil, fmt.Errorf("%w: %q duration %v", ErrInvalidClip, clip.Name, clip.Duration)
	}

	var src beep.Streamer
	switch clip.Wave {
	case WaveSine:
		tone, err := generators.SineTone(rate, clip.Freq)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidClip, clip.Name, err)
		}
		src = beep.Take(rate.N(clip.Duration), tone)
	case WaveSquare, WaveSaw, WaveNoise:
		src = NewOscillator(clip.Freq, clip.Duration, clip.Wave, rate)
	default:
		return nil, fmt.Errorf("%w: %q wave %d", ErrInvalidClip, clip.Name, clip.Wave)
	}

	attack := min(maxAttack, clip.Duration/4)
	return NewEnvelope(src, clip.Duration, attack, clip.Duration/releaseFactor, rate), nil
}
