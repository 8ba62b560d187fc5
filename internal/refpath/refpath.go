// Package refpath is an independent reference implementation of shortest
// cell-level paths, built on gonum's generic graph and Dijkstra rather than
// the hand-rolled heap search the production pathfinder uses. It exists
// only for tests: comparing the production A* against a differently
// implemented full 8-connected grid search guards against a shared bug in
// one masking a correctness defect in the other.
package refpath

import (
	"math"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// ObstacleFunc reports whether (x,y) blocks movement.
type ObstacleFunc func(x, y int) bool

// DistanceFunc is the same pluggable metric qdpf uses.
type DistanceFunc func(x1, y1, x2, y2 int) int

// ShortestPath runs Dijkstra over the full w x h 8-connected cell grid and
// reports the cost of the shortest path from (sx,sy) to (tx,ty), or ok=false
// if no such path exists.
func ShortestPath(w, h int, obstacle ObstacleFunc, distance DistanceFunc, sx, sy, tx, ty int) (cost int, ok bool) {
	g := simple.NewWeightedDirectedGraph(0, math.Inf(1))
	pack := func(x, y int) int64 { return int64(x*h + y) }

	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			if obstacle(x, y) {
				continue
			}
			g.AddNode(simple.Node(pack(x, y)))
		}
	}

	neighbours := [8][2]int{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			if obstacle(x, y) {
				continue
			}
			for _, d := range neighbours {
				nx, ny := x+d[0], y+d[1]
				if nx < 0 || nx >= w || ny < 0 || ny >= h || obstacle(nx, ny) {
					continue
				}
				g.SetWeightedEdge(simple.WeightedEdge{
					F: simple.Node(pack(x, y)),
					T: simple.Node(pack(nx, ny)),
					W: float64(distance(x, y, nx, ny)),
				})
			}
		}
	}

	if obstacle(sx, sy) || obstacle(tx, ty) {
		return 0, false
	}

	shortest := path.DijkstraFrom(simple.Node(pack(sx, sy)), g)
	_, weight := shortest.To(pack(tx, ty))
	if math.IsInf(weight, 1) {
		return 0, false
	}
	return int(math.Round(weight)), true
}
