package maze

import (
	"math/rand"
	"time"
)

// Rand is the uniform integer source used for generation
// *math/rand.Rand satisfies it
type Rand interface {
	Intn(n int) int
}

type Config struct {
	Width, Height int

	// NoBraid skips the loop-introducing pass and returns the perfect maze
	NoBraid bool

	Seed int64 // Optional (0 = Random)
	Rand Rand  // Optional, overrides Seed
}

type Result struct {
	Grid  *Grid
	Start Point

	// Carved counts edges opened by the backtracker, always Width*Height-1
	Carved int
	// Braided counts extra walls removed by the braiding pass
	Braided int
}

// Generate builds a maze by randomized depth-first backtracking followed by braiding
// No grid is returned on error
func Generate(cfg Config) (Result, error) {
	// 1. Initialize Grid (All walls set)
	grid, err := newGrid(cfg.Width, cfg.Height, WallAll)
	if err != nil {
		return Result{}, err
	}

	// 2. RNG Setup
	rng := cfg.Rand
	if rng == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng = rand.New(rand.NewSource(seed))
	}

	// 3. Core Generation (Backtracker from a random cell)
	start := Point{rng.Intn(grid.Width), rng.Intn(grid.Height)}
	carved := backtrack(grid, start, rng)

	// 4. Braiding
	braided := 0
	if !cfg.NoBraid {
		braided = braid(grid, rng)
	}

	return Result{
		Grid:    grid,
		Start:   start,
		Carved:  carved,
		Braided: braided,
	}, nil
}

// GenerateEmpty builds an open room bounded by a solid outer rectangle
func GenerateEmpty(width, height int) (*Grid, error) {
	grid, err := newGrid(width, height, WallNone)
	if err != nil {
		return nil, err
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			for d := Direction(0); d < DirCount; d++ {
				if _, ok := grid.Neighbor(x, y, d); !ok {
					grid.cells[y*width+x] |= d.Wall()
				}
			}
		}
	}
	return grid, nil
}

// --- Core Algorithms ---

func backtrack(grid *Grid, start Point, rng Rand) int {
	stack := []Point{start}
	curr := start
	carved := 0
	candidates := make([]Direction, 0, DirCount)

	for {
		candidates = unvisitedNeighbors(grid, curr, candidates[:0])

		if len(candidates) > 0 {
			d := candidates[rng.Intn(len(candidates))]
			next := curr.Step(d)
			grid.clearEdge(curr, d)
			carved++

			stack = append(stack, next)
			curr = next
			continue
		}

		// Dead end: resume from the most recent stack cell that can still branch
		i := len(stack) - 1
		for ; i >= 0; i-- {
			if len(unvisitedNeighbors(grid, stack[i], candidates[:0])) > 0 {
				break
			}
		}
		if i < 0 {
			return carved
		}
		stack = stack[:i+1]
		curr = stack[i]
	}
}

// unvisitedNeighbors appends directions whose neighbor is in bounds and still fully walled
func unvisitedNeighbors(grid *Grid, p Point, dst []Direction) []Direction {
	for d := Direction(0); d < DirCount; d++ {
		n, ok := grid.Neighbor(p.X, p.Y, d)
		if ok && grid.Cell(n.X, n.Y) == WallAll {
			dst = append(dst, d)
		}
	}
	return dst
}

// braid removes one random wall from every interior cell with more than two active walls
// Active means the wall bit is set, so dead ends lose a wall and corridors are left alone
func braid(grid *Grid, rng Rand) int {
	braided := 0
	activated := make([]Direction, 0, DirCount)

	for y := 1; y < grid.Height-1; y++ {
		for x := 1; x < grid.Width-1; x++ {
			activated = activated[:0]
			for d := Direction(0); d < DirCount; d++ {
				if grid.HasWall(x, y, d) {
					activated = append(activated, d)
				}
			}

			if len(activated) > 2 {
				d := activated[rng.Intn(len(activated))]
				grid.clearEdge(Point{x, y}, d)
				braided++
			}
		}
	}
	return braided
}

// SolveCells returns the shortest open-edge cell route from start to end, nil if unreachable
func SolveCells(grid *Grid, start, end Point) []Point {
	if !grid.InBounds(start.X, start.Y) || !grid.InBounds(end.X, end.Y) {
		return nil
	}

	queue := []Point{start}
	cameFrom := make(map[Point]Point)
	visited := make(map[Point]bool)
	visited[start] = true

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		if curr == end {
			// Reconstruct Path
			path := []Point{}
			for curr != start {
				path = append(path, curr)
				curr = cameFrom[curr]
			}
			path = append(path, start)
			for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
				path[i], path[j] = path[j], path[i]
			}
			return path
		}

		for d := Direction(0); d < DirCount; d++ {
			if grid.HasWall(curr.X, curr.Y, d) {
				continue
			}
			next, ok := grid.Neighbor(curr.X, curr.Y, d)
			if ok && !visited[next] {
				visited[next] = true
				cameFrom[next] = curr
				queue = append(queue, next)
			}
		}
	}
	return nil
}
