package navigation

import (
	"errors"
	"testing"

	"github.com/lixenwraith/hushmaze/maze"
)

func TestPathCacheThrottling(t *testing.T) {
	g := mustEmpty(t, 8, 8)
	m := NewMapper(testCellSize)
	f := NewPathFinder(g, m, testEdge, nil)
	c := NewPathCache(5, 2)

	from := m.CellCenter(maze.Point{})
	target := m.CellCenter(maze.Point{X: 4, Y: 4})

	if !c.Update(f, from, target, testRadius) {
		t.Fatal("first update should compute")
	}
	if c.Path == nil || c.Err != nil {
		t.Fatalf("expected path, got err %v", c.Err)
	}

	// Small target drift within the dirty distance does not recompute
	nearby := m.CellCenter(maze.Point{X: 4, Y: 5})
	for i := 0; i < 10; i++ {
		if c.Update(f, from, nearby, testRadius) {
			t.Fatalf("tick %d: recomputed without dirty state", i)
		}
	}

	// Large move triggers immediate recompute
	far := m.CellCenter(maze.Point{X: 7, Y: 7})
	if !c.Update(f, from, far, testRadius) {
		t.Error("target jump should recompute immediately")
	}
	if end := c.Path.Waypoints[c.Path.Len()-1]; end != far {
		t.Errorf("path end = %v, want %v", end, far)
	}

	// MarkDirty waits for the throttle window
	c.MarkDirty()
	if c.Update(f, from, far, testRadius) {
		t.Error("MarkDirty recomputed inside throttle window")
	}
	for i := 0; i < 3; i++ {
		c.Update(f, from, far, testRadius)
	}
	if !c.Update(f, from, far, testRadius) {
		t.Error("MarkDirty should recompute once window elapses")
	}
}

func TestPathCacheRetriesAfterNoPath(t *testing.T) {
	g := mustEmpty(t, 3, 3)
	for d := maze.Direction(0); d < maze.DirCount; d++ {
		_ = g.SetPassage(1, 1, d, false)
	}
	m := NewMapper(testCellSize)
	f := NewPathFinder(g, m, testEdge, nil)
	c := NewPathCache(3, 100)

	from := m.CellCenter(maze.Point{})
	target := m.CellCenter(maze.Point{X: 1, Y: 1})
	if !c.Update(f, from, target, testRadius) {
		t.Fatal("first update should compute")
	}
	if !errors.Is(c.Err, ErrNoPath) || c.Path != nil {
		t.Fatalf("Err = %v, Path = %v", c.Err, c.Path)
	}

	computed := 0
	for i := 0; i < 6; i++ {
		if c.Update(f, from, target, testRadius) {
			computed++
		}
	}
	if computed != 2 {
		t.Errorf("retries over 6 ticks = %d, want 2", computed)
	}

	c.Reset()
	if c.Path != nil || c.Err != nil || !c.PendingUpdate {
		t.Error("Reset should clear state and request compute")
	}
}
