package sound

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/lixenwraith/hushmaze/audio"
	"github.com/lixenwraith/hushmaze/vmath"
)

// fakePlayback is a manually clocked audio.Playback
type fakePlayback struct {
	pos, length float64
	paused      bool
	stopped     bool
}

func (p *fakePlayback) Position() float64 { return p.pos }
func (p *fakePlayback) Length() float64   { return p.length }
func (p *fakePlayback) Playing() bool     { return !p.stopped && p.pos < p.length }
func (p *fakePlayback) SetPaused(v bool)  { p.paused = v }
func (p *fakePlayback) Stop()             { p.stopped = true }
func (p *fakePlayback) advance(dt float64) {
	if p.paused || p.stopped {
		return
	}
	p.pos = math.Min(p.pos+dt, p.length)
}

type fakeBackend struct {
	plays []*fakePlayback
	err   error
}

func (b *fakeBackend) Play(clip audio.Clip, volume float64) (audio.Playback, error) {
	if b.err != nil {
		return nil, b.err
	}
	p := &fakePlayback{length: clip.Duration.Seconds()}
	b.plays = append(b.plays, p)
	return p, nil
}

func (b *fakeBackend) advance(dt float64) {
	for _, p := range b.plays {
		p.advance(dt)
	}
}

func testConfig() FieldConfig {
	cfg := DefaultFieldConfig()
	cfg.Profiles[Monster] = Profile{
		Clip:        audio.Clip{Name: "growl", Duration: 2 * time.Second, Freq: 70, Wave: audio.WaveSaw},
		DecayRadius: 20,
	}
	cfg.BufferCapacity = 4
	return cfg
}

func newTestField(t *testing.T) (*Field, *fakeBackend) {
	t.Helper()
	b := &fakeBackend{}
	f, err := NewField(testConfig(), b)
	if err != nil {
		t.Fatal(err)
	}
	return f, b
}

func TestMonsterRippleLifecycle(t *testing.T) {
	f, b := newTestField(t)

	h, err := f.Emit(vmath.Vec2{X: 5, Y: 5}, Monster, Monster, 1)
	if err != nil {
		t.Fatal(err)
	}

	b.advance(1.0)
	f.Tick(1.0)
	ev, err := f.Lookup(h)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(ev.Radius()-10) > 1e-9 {
		t.Errorf("radius at 1.0s = %v, want 10", ev.Radius())
	}
	if f.Count(Monster) != 1 {
		t.Fatalf("Monster count = %d, want 1", f.Count(Monster))
	}

	b.advance(1.0)
	f.Tick(1.0)
	if f.Count(Monster) != 0 {
		t.Errorf("finished event still filed under Monster")
	}
	if _, err := f.Lookup(h); !errors.Is(err, ErrStaleHandle) {
		t.Errorf("Lookup after removal err = %v, want ErrStaleHandle", err)
	}
	if !b.plays[0].stopped {
		t.Error("playback not stopped on removal")
	}
}

func TestRadiusMonotone(t *testing.T) {
	f, b := newTestField(t)
	h, _ := f.Emit(vmath.Vec2{}, Monster, Monster, 1)

	prev := -1.0
	for i := 0; i < 10; i++ {
		ev, err := f.Lookup(h)
		if err != nil {
			t.Fatal(err)
		}
		if r := ev.Radius(); r < prev {
			t.Fatalf("radius shrank from %v to %v", prev, r)
		} else {
			prev = r
		}
		b.advance(0.19)
		f.Tick(0.19)
	}

	full := Event{DecayRadius: 20, Duration: 2, Elapsed: 2}
	if full.Radius() != 20 {
		t.Errorf("radius at duration = %v, want 20", full.Radius())
	}
}

func TestSlotReuseResetsState(t *testing.T) {
	f, b := newTestField(t)

	old, _ := f.Emit(vmath.Vec2{X: 1, Y: 1}, Monster, Monster, 1)
	b.advance(2)
	f.Tick(2)

	fresh, err := f.Emit(vmath.Vec2{X: 9, Y: 3}, Item, Player, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if fresh.index != old.index {
		t.Fatalf("expected slot %d reused, got %d", old.index, fresh.index)
	}
	if fresh == old {
		t.Fatal("reused slot kept the old generation")
	}

	ev, err := f.Lookup(fresh)
	if err != nil {
		t.Fatal(err)
	}
	want := Event{
		Handle:      fresh,
		Category:    Item,
		Class:       Player,
		Position:    vmath.Vec2{X: 9, Y: 3},
		DecayRadius: f.cfg.Profiles[Item].DecayRadius * 0.5,
		Duration:    f.cfg.Profiles[Item].Clip.Duration.Seconds(),
		Playing:     true,
	}
	if ev != want {
		t.Errorf("reused event = %+v, want %+v", ev, want)
	}

	if _, err := f.Lookup(old); !errors.Is(err, ErrStaleHandle) {
		t.Errorf("old handle err = %v", err)
	}
	if err := f.Stop(old); !errors.Is(err, ErrStaleHandle) {
		t.Errorf("Stop(old) err = %v", err)
	}
	if f.Count(Player) != 1 {
		t.Error("stale Stop removed the new event")
	}
}

func TestPauseRetainsEvents(t *testing.T) {
	f, b := newTestField(t)
	h, _ := f.Emit(vmath.Vec2{}, Player, Player, 1)

	b.advance(0.3)
	f.Tick(0.3)
	f.PauseAll()
	if !b.plays[0].paused {
		t.Fatal("playback not paused")
	}

	// Simulate playback reporting finished while paused
	b.plays[0].pos = b.plays[0].length
	f.Tick(1)
	ev, err := f.Lookup(h)
	if err != nil {
		t.Fatalf("paused event removed: %v", err)
	}
	if !ev.Paused || math.Abs(ev.Elapsed-0.3) > 1e-9 {
		t.Errorf("paused event = %+v", ev)
	}

	f.UnpauseAll()
	f.Tick(0)
	if f.Count(Player) != 0 {
		t.Error("completed event kept after unpause")
	}
}

func TestStopForcesRemoval(t *testing.T) {
	f, _ := newTestField(t)
	var removed []Handle
	f.Router().Subscribe(Neutral, ListenerFuncs{Removed: func(h Handle, _ Category) { removed = append(removed, h) }})

	h, _ := f.Emit(vmath.Vec2{}, Neutral, Neutral, 1)
	if err := f.Stop(h); err != nil {
		t.Fatal(err)
	}
	if f.Count(Neutral) != 0 || len(removed) != 1 || removed[0] != h {
		t.Errorf("count=%d removed=%v", f.Count(Neutral), removed)
	}
}

func TestAlpha(t *testing.T) {
	f, _ := newTestField(t)
	ev := Event{Position: vmath.Vec2{}, DecayRadius: 10, Duration: 2}

	tests := []struct {
		name     string
		elapsed  float64
		observer vmath.Vec2
		want     float64
	}{
		{"fresh at source", 0, vmath.Vec2{}, 1},
		{"before ramp", 0.8, vmath.Vec2{X: 5}, 0.5},
		{"mid ramp", 1.5, vmath.Vec2{}, 0.5},
		{"ended", 2, vmath.Vec2{}, 0},
		{"out of range", 0, vmath.Vec2{X: 12}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev.Elapsed = tt.elapsed
			if got := f.Alpha(ev, tt.observer); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Alpha = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuffersFixedCapacity(t *testing.T) {
	f, b := newTestField(t)
	for i := 0; i < 6; i++ {
		if _, err := f.Emit(vmath.Vec2{X: float64(i)}, Item, Item, 1); err != nil {
			t.Fatal(err)
		}
	}
	b.advance(0.5)
	f.Tick(0.5)

	buf := f.Buffers(Item)
	if len(buf.Positions) != 4 || buf.Count != 4 {
		t.Fatalf("buffer len=%d count=%d, want 4/4", len(buf.Positions), buf.Count)
	}
	if f.Count(Item) != 6 {
		t.Errorf("live count = %d, want 6", f.Count(Item))
	}
	if buf.Positions[3].X != 3 || buf.Radii[0] != 5 {
		t.Errorf("buffer contents %v %v", buf.Positions, buf.Radii)
	}

	b.advance(1)
	f.Tick(1)
	if buf.Count != 0 || buf.Radii[0] != 0 || buf.Positions[3] != (vmath.Vec2{}) {
		t.Errorf("buffer not cleared: %+v", buf)
	}
}

func TestEmitErrors(t *testing.T) {
	cfg := testConfig()
	cfg.Capacity = 2
	b := &fakeBackend{}
	f, err := NewField(cfg, b)
	if err != nil {
		t.Fatal(err)
	}

	f.Emit(vmath.Vec2{}, Player, Player, 1)
	f.Emit(vmath.Vec2{}, Player, Player, 1)
	if _, err := f.Emit(vmath.Vec2{}, Player, Player, 1); !errors.Is(err, ErrFieldFull) {
		t.Errorf("over capacity err = %v, want ErrFieldFull", err)
	}
	if len(b.plays) != 2 {
		t.Errorf("rejected emit started playback")
	}

	if _, err := f.Emit(vmath.Vec2{}, CategoryCount, Player, 1); !errors.Is(err, ErrInvalidCategory) {
		t.Errorf("bad category err = %v", err)
	}

	b.err = audio.ErrInvalidClip
	b.advance(10)
	f.Tick(10)
	if _, err := f.Emit(vmath.Vec2{}, Player, Player, 1); !errors.Is(err, audio.ErrInvalidClip) {
		t.Errorf("backend failure err = %v", err)
	}

	if _, err := NewField(cfg, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("nil backend err = %v", err)
	}
	cfg.MinAlphaRatio = 2
	if _, err := NewField(cfg, b); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("bad ratio err = %v", err)
	}
}
