package navigation

import (
	"errors"
	"fmt"
	"math"

	"github.com/lixenwraith/hushmaze/maze"
	"github.com/lixenwraith/hushmaze/vmath"
)

// ErrNoPath is the expected negative result of a search; callers idle or retry
var ErrNoPath = errors.New("no path")

// Corner clearance factor applied to the agent radius
const radiusMargin = 1.1

// Diagonal corner offsets in degrees, indexed [incoming][outgoing]
// The offset points to the inside of the turn: back along the incoming direction, out along the outgoing one
// Reverse traversal of the same corner lands on the same angle. -1 marks straight or reversing pairs
var cornerAngles = [maze.DirCount][maze.DirCount]float64{
	maze.Right:   {-1, 135, -1, 225},
	maze.Forward: {315, -1, 225, -1},
	maze.Left:    {-1, 45, -1, 315},
	maze.Back:    {45, -1, 135, -1},
}

// --- Min-heap for A* open set ---

type heapEntry struct {
	idx      int // Flat grid index (y*width + x)
	priority int // cost + heuristic
	seq      int // Insertion order, earlier wins ties
}

type minHeap []heapEntry

func (e heapEntry) less(o heapEntry) bool {
	if e.priority != o.priority {
		return e.priority < o.priority
	}
	return e.seq < o.seq
}

func (h *minHeap) push(e heapEntry) {
	*h = append(*h, e)
	// Sift up
	i := len(*h) - 1
	for i > 0 {
		parent := (i - 1) / 2
		if !(*h)[i].less((*h)[parent]) {
			break
		}
		(*h)[parent], (*h)[i] = (*h)[i], (*h)[parent]
		i = parent
	}
}

func (h *minHeap) pop() heapEntry {
	old := *h
	n := len(old)
	e := old[0]
	old[0] = old[n-1]
	*h = old[:n-1]

	// Sift down
	i := 0
	for {
		left := 2*i + 1
		if left >= len(*h) {
			break
		}
		smallest := left
		if right := left + 1; right < len(*h) && (*h)[right].less((*h)[left]) {
			smallest = right
		}
		if !(*h)[smallest].less((*h)[i]) {
			break
		}
		(*h)[i], (*h)[smallest] = (*h)[smallest], (*h)[i]
		i = smallest
	}
	return e
}

const (
	nodeUnseen uint8 = iota
	nodeOpen
	nodeClosed
)

// searchNode is the per-cell A* record
type searchNode struct {
	parent int
	dir    maze.Direction // Move from parent into this cell
	cost   int
	state  uint8
}

// step is one cell of a reconstructed route
type step struct {
	cell maze.Point
	dir  maze.Direction
}

// PathFinder answers waypoint routes over a maze grid
// Not safe for concurrent use; search buffers are reused across calls
type PathFinder struct {
	grid          *maze.Grid
	mapper        Mapper
	edgeThickness float64
	caster        CapsuleCaster

	// Reusable buffers to reduce allocations across searches
	nodes []searchNode
	heap  minHeap
	route []step
}

// NewPathFinder creates a finder reading grid; caster may be nil to disable direct line checks
func NewPathFinder(grid *maze.Grid, mapper Mapper, edgeThickness float64, caster CapsuleCaster) *PathFinder {
	size := grid.Width * grid.Height
	return &PathFinder{
		grid:          grid,
		mapper:        mapper,
		edgeThickness: edgeThickness,
		caster:        caster,
		nodes:         make([]searchNode, size),
		heap:          make(minHeap, 0, size/4+1),
	}
}

// Mapper returns the coordinate mapping in use
func (f *PathFinder) Mapper() Mapper {
	return f.mapper
}

// FindPathToTarget tries a direct capsule cast toward a target collider before searching the grid
// self is excluded from the cast so the caster's own body does not block it
func (f *PathFinder) FindPathToTarget(start, end vmath.Vec2, radius float64, self, target ColliderID) (*Path, error) {
	if f.caster != nil && target != NoCollider {
		if hit, ok := f.caster.CapsuleCast(start, end, radius, self); ok && hit.Collider == target {
			return NewPath([]vmath.Vec2{start, end}), nil
		}
	}
	return f.FindPath(start, end, radius)
}

// FindPath searches the grid and returns a simplified route with rounded corners
// The first waypoint is start and the last is end, exactly
func (f *PathFinder) FindPath(start, end vmath.Vec2, radius float64) (*Path, error) {
	from := f.mapper.CellOf(start)
	to := f.mapper.CellOf(end)
	if !f.grid.InBounds(from.X, from.Y) {
		return nil, fmt.Errorf("%w: start %v outside grid", ErrNoPath, from)
	}
	if !f.grid.InBounds(to.X, to.Y) {
		return nil, fmt.Errorf("%w: end %v outside grid", ErrNoPath, to)
	}

	route, ok := f.search(from, to)
	if !ok {
		return nil, fmt.Errorf("%w: %v -> %v", ErrNoPath, from, to)
	}

	waypoints := make([]vmath.Vec2, 0, 8)
	waypoints = append(waypoints, start)
	for _, corner := range simplify(route) {
		waypoints = append(waypoints, f.roundCorner(route[corner].cell, route[corner].dir, route[corner+1].dir, radius))
	}
	waypoints = append(waypoints, end)
	return NewPath(waypoints), nil
}

// search runs A* with unit edge cost and Manhattan heuristic
// Returned slice aliases an internal buffer valid until the next call
func (f *PathFinder) search(from, to maze.Point) ([]step, bool) {
	w := f.grid.Width
	size := w * f.grid.Height
	if len(f.nodes) != size {
		f.nodes = make([]searchNode, size)
	}
	for i := range f.nodes {
		f.nodes[i] = searchNode{parent: -1}
	}

	seq := 0
	startIdx := from.Y*w + from.X
	goalIdx := to.Y*w + to.X
	f.nodes[startIdx].state = nodeOpen

	f.heap = f.heap[:0]
	f.heap.push(heapEntry{idx: startIdx, priority: manhattan(from, to), seq: seq})

	found := false
	for len(f.heap) > 0 {
		entry := f.heap.pop()
		cur := &f.nodes[entry.idx]
		cur.state = nodeClosed

		if entry.idx == goalIdx {
			found = true
			break
		}

		cx, cy := entry.idx%w, entry.idx/w
		for d := maze.Direction(0); d < maze.DirCount; d++ {
			if f.grid.HasWall(cx, cy, d) {
				continue
			}
			n, ok := f.grid.Neighbor(cx, cy, d)
			if !ok {
				continue
			}
			nIdx := n.Y*w + n.X
			next := &f.nodes[nIdx]
			if next.state != nodeUnseen {
				continue
			}
			next.state = nodeOpen
			next.parent = entry.idx
			next.dir = d
			next.cost = cur.cost + 1

			seq++
			f.heap.push(heapEntry{idx: nIdx, priority: next.cost + manhattan(n, to), seq: seq})
		}
	}
	if !found {
		return nil, false
	}

	// Walk parents goal -> start, then reverse
	f.route = f.route[:0]
	for idx := goalIdx; idx != -1; idx = f.nodes[idx].parent {
		f.route = append(f.route, step{cell: maze.Point{X: idx % w, Y: idx / w}, dir: f.nodes[idx].dir})
	}
	for i, j := 0, len(f.route)-1; i < j; i, j = i+1, j-1 {
		f.route[i], f.route[j] = f.route[j], f.route[i]
	}
	return f.route, true
}

// simplify returns indices of interior route cells where the movement direction changes
// Straight runs collapse; first and last cells are represented by the literal endpoints
func simplify(route []step) []int {
	var corners []int
	for i := 1; i+1 < len(route); i++ {
		if route[i+1].dir != route[i].dir {
			corners = append(corners, i)
		}
	}
	return corners
}

// roundCorner offsets from the cell center toward the inside of the turn
// so a disc of the given radius clears both walls of the corner
func (f *PathFinder) roundCorner(cell maze.Point, in, out maze.Direction, radius float64) vmath.Vec2 {
	center := f.mapper.CellCenter(cell)
	angle := cornerAngles[in][out]
	if angle < 0 {
		return center
	}

	clearance := (f.mapper.CellSize-2*f.edgeThickness)/2 - radius*radiusMargin
	if clearance < 0 {
		clearance = 0
	}
	dist := clearance * math.Sqrt2
	rad := angle * math.Pi / 180
	return vmath.Vec2{
		X: center.X + math.Cos(rad)*dist,
		Y: center.Y + math.Sin(rad)*dist,
	}
}

func manhattan(a, b maze.Point) int {
	dx := a.X - b.X
	dy := a.Y - b.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}
