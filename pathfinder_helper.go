package qdpf

import "github.com/pthm-cable/qdpf/internal/quadtree"

// pathFinderHelper owns the per-query temporary overlay graph that lets a
// non-gate start/target cell (or a flow-field destination-interior cell)
// participate in gate-graph searches without mutating the owning
// QuadtreeMap (C6). It is shared scratch state reused by both pathfinders.
type pathFinderHelper struct {
	m   *QuadtreeMap
	tmp map[int][]gateEdge
}

func newPathFinderHelper(m *QuadtreeMap) *pathFinderHelper {
	return &pathFinderHelper{m: m, tmp: make(map[int][]gateEdge)}
}

// Reset clears the overlay, ready for a new query.
func (h *pathFinderHelper) Reset(m *QuadtreeMap) {
	h.m = m
	for k := range h.tmp {
		delete(h.tmp, k)
	}
}

// AddCellToNodeOnTmpGraph connects c (assumed not itself a gate cell) to
// every gate cell belonging to node, bidirectionally, weighted by distance.
func (h *pathFinderHelper) AddCellToNodeOnTmpGraph(c int, node *quadtree.Node) {
	if node == nil {
		return
	}
	cx, cy := h.m.unpack(c)
	h.m.ForEachGateInNode(node, func(gx, gy int) {
		g := h.m.pack(gx, gy)
		if g == c {
			return
		}
		d := h.m.distance(cx, cy, gx, gy)
		h.tmp[c] = append(h.tmp[c], gateEdge{to: g, weight: d})
		h.tmp[g] = append(h.tmp[g], gateEdge{to: c, weight: d})
	})
}

// ConnectCellsOnTmpGraph adds a bidirectional overlay edge between two
// packed cells, weighted by distance.
func (h *pathFinderHelper) ConnectCellsOnTmpGraph(u, v int) {
	ux, uy := h.m.unpack(u)
	vx, vy := h.m.unpack(v)
	d := h.m.distance(ux, uy, vx, vy)
	h.tmp[u] = append(h.tmp[u], gateEdge{to: v, weight: d})
	h.tmp[v] = append(h.tmp[v], gateEdge{to: u, weight: d})
}

// ForEachNeighbourGateWithST visits every neighbor of u in the union of the
// gate graph and the temporary overlay.
func (h *pathFinderHelper) ForEachNeighbourGateWithST(u int, visitor func(v, weight int)) {
	for _, e := range h.m.gateEdges[u] {
		visitor(e.to, e.weight)
	}
	for _, e := range h.tmp[u] {
		visitor(e.to, e.weight)
	}
}
