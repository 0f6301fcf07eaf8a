package maze

import (
	"errors"
	"math/rand"
	"testing"
)

// recordingRand wraps a seeded source and records every requested range
type recordingRand struct {
	r     *rand.Rand
	calls []int
}

func (rr *recordingRand) Intn(n int) int {
	rr.calls = append(rr.calls, n)
	return rr.r.Intn(n)
}

func TestGenerateTooSmall(t *testing.T) {
	tests := []struct {
		w, h int
	}{
		{0, 0}, {1, 1}, {0, 5}, {-2, 3}, {5, 0},
	}
	for _, tt := range tests {
		res, err := Generate(Config{Width: tt.w, Height: tt.h, Seed: 1})
		if !errors.Is(err, ErrGridTooSmall) {
			t.Errorf("Generate(%d,%d) err = %v, want ErrGridTooSmall", tt.w, tt.h, err)
		}
		if res.Grid != nil {
			t.Errorf("Generate(%d,%d) returned a grid on error", tt.w, tt.h)
		}

		g, err := GenerateEmpty(tt.w, tt.h)
		if !errors.Is(err, ErrGridTooSmall) || g != nil {
			t.Errorf("GenerateEmpty(%d,%d) = %v, %v", tt.w, tt.h, g, err)
		}
	}
}

func TestGenerateConnectivityAndInvariants(t *testing.T) {
	sizes := [][2]int{{1, 2}, {2, 1}, {2, 2}, {3, 7}, {4, 4}, {10, 10}, {25, 13}}
	for _, sz := range sizes {
		for seed := int64(1); seed <= 20; seed++ {
			for _, noBraid := range []bool{true, false} {
				res, err := Generate(Config{Width: sz[0], Height: sz[1], Seed: seed, NoBraid: noBraid})
				if err != nil {
					t.Fatalf("Generate(%v, seed %d): %v", sz, seed, err)
				}
				if err := res.Grid.Validate(); err != nil {
					t.Fatalf("Generate(%v, seed %d, noBraid %v) invalid: %v\n%s", sz, seed, noBraid, err, res.Grid)
				}
				if !res.Grid.Connected() {
					t.Fatalf("Generate(%v, seed %d, noBraid %v) not connected\n%s", sz, seed, noBraid, res.Grid)
				}
				if want := sz[0]*sz[1] - 1; res.Carved != want {
					t.Errorf("Carved = %d, want %d", res.Carved, want)
				}
			}
		}
	}
}

func TestGeneratePerfectMazeThenBraid(t *testing.T) {
	const seed = 42

	perfect, err := Generate(Config{Width: 4, Height: 4, Seed: seed, NoBraid: true})
	if err != nil {
		t.Fatal(err)
	}
	if perfect.Carved != 15 {
		t.Fatalf("Carved = %d, want 15", perfect.Carved)
	}
	if got := perfect.Grid.OpenEdges(); got != 15 {
		t.Errorf("perfect maze open edges = %d, want 15", got)
	}

	braided, err := Generate(Config{Width: 4, Height: 4, Seed: seed})
	if err != nil {
		t.Fatal(err)
	}
	if braided.Carved != 15 {
		t.Errorf("Carved = %d, want 15", braided.Carved)
	}
	open := braided.Grid.OpenEdges()
	if open < 15 {
		t.Errorf("braided open edges = %d, want >= 15", open)
	}
	if open != 15+braided.Braided {
		t.Errorf("open edges = %d, want 15 + %d braided", open, braided.Braided)
	}
}

func TestBraidRemovesInteriorDeadEnds(t *testing.T) {
	for seed := int64(1); seed <= 10; seed++ {
		res, err := Generate(Config{Width: 12, Height: 12, Seed: seed})
		if err != nil {
			t.Fatal(err)
		}
		g := res.Grid
		// Every interior cell was left with at most two walls when visited,
		// later neighbors only remove more walls
		for y := 1; y < g.Height-1; y++ {
			for x := 1; x < g.Width-1; x++ {
				walls := 0
				for d := Direction(0); d < DirCount; d++ {
					if g.HasWall(x, y, d) {
						walls++
					}
				}
				if walls > 2 {
					t.Fatalf("seed %d: interior cell (%d,%d) still has %d walls", seed, x, y, walls)
				}
			}
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a, _ := Generate(Config{Width: 9, Height: 6, Seed: 7})
	b, _ := Generate(Config{Width: 9, Height: 6, Seed: 7})
	if a.Grid.String() != b.Grid.String() {
		t.Error("same seed produced different mazes")
	}
}

func TestGenerateUsesUniformCandidateRange(t *testing.T) {
	rr := &recordingRand{r: rand.New(rand.NewSource(3))}
	if _, err := Generate(Config{Width: 8, Height: 8, Rand: rr}); err != nil {
		t.Fatal(err)
	}
	if len(rr.calls) < 2 {
		t.Fatalf("expected rng calls, got %d", len(rr.calls))
	}
	// First two calls pick the start cell
	if rr.calls[0] != 8 || rr.calls[1] != 8 {
		t.Errorf("start cell ranges = %v, want [8 8]", rr.calls[:2])
	}
	// Every later decision draws over the full candidate list
	for i, n := range rr.calls[2:] {
		if n < 1 || n > int(DirCount) {
			t.Fatalf("call %d drew over %d candidates", i+2, n)
		}
	}
}

func TestGenerateEmpty(t *testing.T) {
	g, err := GenerateEmpty(5, 4)
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Validate(); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		p    Point
		want Wall
	}{
		{"interior", Point{2, 2}, WallNone},
		{"left ring", Point{0, 2}, WallLeft},
		{"right ring", Point{4, 1}, WallRight},
		{"top ring", Point{2, 3}, WallForward},
		{"bottom ring", Point{3, 0}, WallBack},
		{"origin corner", Point{0, 0}, WallLeft | WallBack},
		{"far corner", Point{4, 3}, WallRight | WallForward},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.Cell(tt.p.X, tt.p.Y); got != tt.want {
				t.Errorf("Cell%v = %04b, want %04b", tt.p, got, tt.want)
			}
		})
	}
}

func TestSolveCells(t *testing.T) {
	res, err := Generate(Config{Width: 10, Height: 10, Seed: 11})
	if err != nil {
		t.Fatal(err)
	}
	start, end := Point{0, 0}, Point{9, 9}
	path := SolveCells(res.Grid, start, end)
	if len(path) == 0 {
		t.Fatal("no path in connected maze")
	}
	if path[0] != start || path[len(path)-1] != end {
		t.Errorf("path endpoints = %v..%v", path[0], path[len(path)-1])
	}
	for i := 1; i < len(path); i++ {
		a, b := path[i-1], path[i]
		moved := false
		for d := Direction(0); d < DirCount; d++ {
			if a.Step(d) == b {
				moved = true
				if res.Grid.HasWall(a.X, a.Y, d) {
					t.Fatalf("path crosses wall %v -> %v", a, b)
				}
			}
		}
		if !moved {
			t.Fatalf("non-adjacent path step %v -> %v", a, b)
		}
	}

	if SolveCells(res.Grid, start, Point{20, 0}) != nil {
		t.Error("out of bounds end should yield nil")
	}
}
