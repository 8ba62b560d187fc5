package qdpf

import (
	"log/slog"

	"github.com/pthm-cable/qdpf/internal/quadtree"
)

// nodeEdge is one edge of the node graph: the minimum-cost gate pair
// connecting two adjacent leaves.
type nodeEdge struct {
	to     int
	weight int
	a, b   int // representative gate cells realizing this edge's weight
}

// gateEdge is one edge of the gate graph, either an inter-leaf gate or an
// intra-leaf clique edge between two gate cells of the same leaf.
type gateEdge struct {
	to     int
	weight int
}

// QuadtreeMap is a dynamic spatial index over a W x H grid for a single
// (agent size, terrain mask) combination. It owns a quadtree partition, the
// gate set between adjacent leaves, and the node graph / gate graph derived
// from them (C4).
type QuadtreeMap struct {
	w, h         int
	distance     DistanceFunc
	clearance    func(x, y int) int
	agentSize    int
	terrain      TerrainFunc
	walkableMask int
	log          *slog.Logger

	tree *quadtree.Tree

	gatesByNode map[int][]gate
	gateCells   map[int]bool
	nodeEdges   map[int][]nodeEdge
	gateEdges   map[int][]gateEdge
}

// NewQuadtreeMap constructs a QuadtreeMap. clearance reports the maximum
// obstacle-free anchored square at (x,y) under a fixed terrain mask (the
// clearance field's external contract); agentSize is the minimum clearance
// this map's agent requires; walkableMask is the terrain bitmask this map
// treats as passable; maxNodeW/maxNodeH/step bound leaf size per §4.2.
func NewQuadtreeMap(
	w, h int,
	distance DistanceFunc,
	clearance func(x, y int) int,
	terrain TerrainFunc,
	agentSize, walkableMask int,
	maxNodeW, maxNodeH int,
	step quadtree.StepFunction,
	log *slog.Logger,
) *QuadtreeMap {
	m := &QuadtreeMap{
		w:            w,
		h:            h,
		distance:     distance,
		clearance:    clearance,
		terrain:      terrain,
		agentSize:    agentSize,
		walkableMask: walkableMask,
		log:          logger(log),
	}
	m.tree = quadtree.New(w, h, m.IsObstacle, maxNodeW, maxNodeH, step)
	return m
}

// IsObstacle reports whether (x,y) should be treated as blocking for this
// map's agent size and walkable mask.
func (m *QuadtreeMap) IsObstacle(x, y int) bool {
	if m.clearance(x, y) < m.agentSize {
		return true
	}
	return m.terrain(x, y)&m.walkableMask == 0
}

func (m *QuadtreeMap) pack(x, y int) int     { return pack(x, y, m.h) }
func (m *QuadtreeMap) unpack(v int) (x, y int) { return unpack(v, m.h) }

// Build performs the initial full construction: classifies every cell,
// splits the quadtree until the leaf invariant holds, and generates every
// gate and both abstract graphs.
func (m *QuadtreeMap) Build() {
	m.tree.Build()
	m.rebuildGatesAndGraphs()
	m.log.Debug("quadtree map built", slog.Int("width", m.w), slog.Int("height", m.h),
		slog.Int("agentSize", m.agentSize), slog.Int("leaves", len(m.tree.Leaves())))
}

// Update is invoked by QuadtreeMapX whenever (x,y)'s clearance or terrain
// may have changed under this map's parameters. It rebuilds the affected
// leaf subtree and regenerates the gates and graphs.
//
// Gate generation depends on border adjacency between leaves, so a single
// leaf split/merge can change which leaves are neighbors of which; rather
// than track that incrementally, Update regenerates the whole gate set and
// both graphs after the quadtree settles, the same full-recompute trade-off
// internal/clearance makes for its own Update.
func (m *QuadtreeMap) Update(x, y int) {
	_, _, _, _, changed := m.tree.Update(x, y)
	if !changed {
		return
	}
	m.rebuildGatesAndGraphs()
	m.log.Debug("quadtree map updated", slog.Int("x", x), slog.Int("y", y))
}

func (m *QuadtreeMap) rebuildGatesAndGraphs() {
	m.buildGates()
	m.buildNodeGraph()
	m.buildGateGraph()
}

// buildGates scans, for every leaf, its right and bottom borders and creates
// a symmetric gate pair for every walkable 8-neighbor cell pair straddling
// the border, axial or diagonal (8-neighbor inter-leaf gates, §9). A diagonal
// pair whose left cell lies on its leaf's right border is taken only from the
// right-border scan, so every inter-leaf pair is discovered exactly once.
func (m *QuadtreeMap) buildGates() {
	m.gatesByNode = make(map[int][]gate)
	m.gateCells = make(map[int]bool)

	for _, leaf := range m.tree.Leaves() {
		if leaf.X2+1 < m.w {
			x := leaf.X2 + 1
			for y := leaf.Y1; y <= leaf.Y2; y++ {
				for dy := -1; dy <= 1; dy++ {
					neighbor := m.tree.FindLeaf(x, y+dy)
					if neighbor == nil || neighbor.Index == leaf.Index {
						continue
					}
					m.tryAddGate(leaf, neighbor, leaf.X2, y, x, y+dy)
				}
			}
		}
		if leaf.Y2+1 < m.h {
			y := leaf.Y2 + 1
			for x := leaf.X1; x <= leaf.X2; x++ {
				for dx := -1; dx <= 1; dx++ {
					neighbor := m.tree.FindLeaf(x+dx, y)
					if neighbor == nil || neighbor.Index == leaf.Index ||
						(dx == 1 && x == leaf.X2) || (dx == -1 && neighbor.X2 == x-1) {
						continue
					}
					m.tryAddGate(leaf, neighbor, x, leaf.Y2, x+dx, y)
				}
			}
		}
	}
}

func (m *QuadtreeMap) tryAddGate(nodeA, nodeB *quadtree.Node, ax, ay, bx, by int) {
	if m.IsObstacle(ax, ay) || m.IsObstacle(bx, by) {
		return
	}
	pa, pb := m.pack(ax, ay), m.pack(bx, by)
	m.gatesByNode[nodeA.Index] = append(m.gatesByNode[nodeA.Index], gate{a: pa, b: pb, aNode: nodeA.Index, bNode: nodeB.Index})
	m.gatesByNode[nodeB.Index] = append(m.gatesByNode[nodeB.Index], gate{a: pb, b: pa, aNode: nodeB.Index, bNode: nodeA.Index})
	m.gateCells[pa] = true
	m.gateCells[pb] = true
}

// buildNodeGraph aggregates, for every ordered pair of adjacent leaves, the
// minimum-weight gate into a single node-graph edge, recording the
// representative gate cells for A* reconstruction.
func (m *QuadtreeMap) buildNodeGraph() {
	m.nodeEdges = make(map[int][]nodeEdge)
	for nodeIdx, gates := range m.gatesByNode {
		best := make(map[int]nodeEdge)
		for _, g := range gates {
			ax, ay := m.unpack(g.a)
			bx, by := m.unpack(g.b)
			d := m.distance(ax, ay, bx, by)
			cur, ok := best[g.bNode]
			if !ok || d < cur.weight {
				best[g.bNode] = nodeEdge{to: g.bNode, weight: d, a: g.a, b: g.b}
			}
		}
		for _, e := range best {
			m.nodeEdges[nodeIdx] = append(m.nodeEdges[nodeIdx], e)
		}
	}
}

// buildGateGraph materializes every gate-cell vertex's adjacency: inter-leaf
// gate edges plus the intra-leaf clique connecting every pair of gate cells
// sharing a leaf (valid since a leaf's interior is always obstacle-free).
func (m *QuadtreeMap) buildGateGraph() {
	m.gateEdges = make(map[int][]gateEdge)
	for _, gates := range m.gatesByNode {
		cellSet := make(map[int]bool)
		for _, g := range gates {
			cellSet[g.a] = true
		}
		cells := make([]int, 0, len(cellSet))
		for c := range cellSet {
			cells = append(cells, c)
		}
		for _, ci := range cells {
			cix, ciy := m.unpack(ci)
			for _, cj := range cells {
				if ci == cj {
					continue
				}
				cjx, cjy := m.unpack(cj)
				m.gateEdges[ci] = append(m.gateEdges[ci], gateEdge{to: cj, weight: m.distance(cix, ciy, cjx, cjy)})
			}
		}
		for _, g := range gates {
			ax, ay := m.unpack(g.a)
			bx, by := m.unpack(g.b)
			m.gateEdges[g.a] = append(m.gateEdges[g.a], gateEdge{to: g.b, weight: m.distance(ax, ay, bx, by)})
		}
	}
}

// FindNode returns the leaf containing (x,y), or nil if out of range.
func (m *QuadtreeMap) FindNode(x, y int) *quadtree.Node {
	return m.tree.FindLeaf(x, y)
}

// NodesInRange reports every leaf overlapping rect to sink.
func (m *QuadtreeMap) NodesInRange(rect Rectangle, sink func(*quadtree.Node)) {
	m.tree.VisitLeaves(rect.X1, rect.Y1, rect.X2, rect.Y2, sink)
}

// ForEachGateInNode reports every gate cell belonging to node to sink.
func (m *QuadtreeMap) ForEachGateInNode(node *quadtree.Node, sink func(x, y int)) {
	if node == nil {
		return
	}
	seen := make(map[int]bool)
	for _, g := range m.gatesByNode[node.Index] {
		if seen[g.a] {
			continue
		}
		seen[g.a] = true
		x, y := m.unpack(g.a)
		sink(x, y)
	}
}

// ForEachNeighbourNodes visits every node-graph neighbor of node along with
// the edge weight and representative gate pair.
func (m *QuadtreeMap) ForEachNeighbourNodes(node *quadtree.Node, visitor func(neighbour *quadtree.Node, weight int, gateA, gateB int)) {
	if node == nil {
		return
	}
	for _, e := range m.nodeEdges[node.Index] {
		bx, by := m.unpack(e.b)
		n := m.tree.FindLeaf(bx, by)
		visitor(n, e.weight, e.a, e.b)
	}
}

// ForEachGateBetweenNodes visits every gate cell pair directed from nodeA
// to nodeB. Unlike ForEachNeighbourNodes, which reports only the single
// minimum-weight representative gate the node graph collapsed the pair to,
// this reports all of them — needed by the flow-field's node-path filter
// (§4.6 stage B), which must admit every gate between two leaves the node
// field passes through, not just the one the node graph kept a weight for.
func (m *QuadtreeMap) ForEachGateBetweenNodes(nodeA, nodeB *quadtree.Node, sink func(a, b int)) {
	if nodeA == nil || nodeB == nil {
		return
	}
	for _, g := range m.gatesByNode[nodeA.Index] {
		if g.bNode == nodeB.Index {
			sink(g.a, g.b)
		}
	}
}

// IsGateCell reports whether the packed cell id belongs to any gate.
func (m *QuadtreeMap) IsGateCell(cellPacked int) bool {
	return m.gateCells[cellPacked]
}

// Width and Height report the map's grid extents.
func (m *QuadtreeMap) Width() int  { return m.w }
func (m *QuadtreeMap) Height() int { return m.h }

// Pack and Unpack expose this map's cell packing (pack(x,y) = x*h + y) to
// callers building on top of the map.
func (m *QuadtreeMap) Pack(x, y int) int       { return m.pack(x, y) }
func (m *QuadtreeMap) Unpack(v int) (int, int) { return m.unpack(v) }
