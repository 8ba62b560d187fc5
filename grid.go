package qdpf

// DistanceFunc is a pluggable distance metric between two cells. It must be
// non-negative, report 0 for identical points, and satisfy the triangle
// inequality; everything downstream treats its results as additive integer
// edge costs.
type DistanceFunc func(x1, y1, x2, y2 int) int

// TerrainFunc reports the terrain bitmask at (x,y). The value 0 denotes an
// obstacle; any other value is a set of terrain bits a walkable-mask query
// can match against.
type TerrainFunc func(x, y int) int

// CellCollector receives cells one at a time along an emitted path.
type CellCollector func(x, y int)

// Inf is the sentinel standing in for an unreachable cost. It must exceed
// the sum of every edge weight any graph in a single query could produce,
// so it never collides with a legitimate finite cost.
const Inf = 1 << 30

// ChebyshevDistance scores diagonal and axial steps the same (king-move
// distance), matching 8-connected movement where diagonal moves cost the
// same as cardinal ones.
func ChebyshevDistance(x1, y1, x2, y2 int) int {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	if dx > dy {
		return dx
	}
	return dy
}

// EuclideanDistance returns the integer Euclidean distance scaled by 1000,
// so diagonal steps cost proportionally more than axial ones while staying
// in integer arithmetic.
func EuclideanDistance(x1, y1, x2, y2 int) int {
	dx := x2 - x1
	dy := y2 - y1
	return isqrt((dx*dx + dy*dy) * 1000 * 1000)
}

func isqrt(n int) int {
	if n <= 0 {
		return 0
	}
	x := n
	y := (x + 1) / 2
	for y < x {
		x = y
		y = (x + n/x) / 2
	}
	return x
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

// pack encodes (x,y) as a single integer id stable for the lifetime of a
// QuadtreeMap, per the cell packing convention pack(x,y) = x*h + y.
func pack(x, y, h int) int { return x*h + y }

// unpack inverts pack.
func unpack(v, h int) (x, y int) { return v / h, v % h }

// straightLine emits cells along a line from (x1,y1) to (x2,y2) inclusive
// of both endpoints, using Bresenham's algorithm generalized to octants.
// stopAfter, if > 0, truncates emission after that many cells (including
// the start cell).
func straightLine(x1, y1, x2, y2 int, sink CellCollector, stopAfter int) {
	dx := abs(x2 - x1)
	dy := -abs(y2 - y1)
	sx := sign(x2 - x1)
	sy := sign(y2 - y1)
	err := dx + dy

	x, y := x1, y1
	emitted := 0
	for {
		sink(x, y)
		emitted++
		if stopAfter > 0 && emitted >= stopAfter {
			return
		}
		if x == x2 && y == y2 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

// Rectangle is an axis-aligned inclusive cell range [X1..X2] x [Y1..Y2].
type Rectangle struct {
	X1, Y1, X2, Y2 int
}

// Valid reports whether the rectangle's bounds are well formed.
func (r Rectangle) Valid() bool { return r.X1 <= r.X2 && r.Y1 <= r.Y2 }

// Contains reports whether (x,y) falls within the rectangle.
func (r Rectangle) Contains(x, y int) bool {
	return x >= r.X1 && x <= r.X2 && y >= r.Y1 && y <= r.Y2
}

// overlap computes the intersection of two rectangles. ok is false when
// they do not overlap, in which case out is the zero value.
func overlap(a, b Rectangle) (out Rectangle, ok bool) {
	x1 := maxInt(a.X1, b.X1)
	y1 := maxInt(a.Y1, b.Y1)
	x2 := minInt(a.X2, b.X2)
	y2 := minInt(a.Y2, b.Y2)
	if x1 > x2 || y1 > y2 {
		return Rectangle{}, false
	}
	return Rectangle{X1: x1, Y1: y1, X2: x2, Y2: y2}, true
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
