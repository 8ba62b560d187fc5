package qdpf

import (
	"container/heap"
	"log/slog"

	"github.com/pthm-cable/qdpf/internal/quadtree"
)

// AStarPathFinder runs the two-phase A* of §4.5 (C7): node graph first,
// then gate graph with the temporary overlay, then straight-line filling
// between consecutive gate cells on the resulting route.
type AStarPathFinder struct {
	mx  *QuadtreeMapX
	log *slog.Logger

	m                       *QuadtreeMap
	sx, sy, tx, ty          int
	agentSize, terrainMask  int
	startLeaf, targetLeaf   *quadtree.Node
	helper                  *pathFinderHelper

	nodePath      []*quadtree.Node
	nodePathCost  int
	gateRouteCost int
	seq           int
}

// NewAStarPathFinder creates a pathfinder weakly referencing mx; it owns no
// part of mx and may be Reset repeatedly against any map mx contains.
func NewAStarPathFinder(mx *QuadtreeMapX, log *slog.Logger) *AStarPathFinder {
	return &AStarPathFinder{mx: mx, log: logger(log)}
}

// Reset selects the QuadtreeMap for (agentSize, terrainMask) and validates
// the endpoints. Returns -1 when no matching map exists, either endpoint is
// out of bounds, or either endpoint is an obstacle. After a failed Reset,
// ComputeNodeRoutes and ComputeGateRoutes return -1 until a Reset succeeds.
func (p *AStarPathFinder) Reset(x1, y1, x2, y2, agentSize, terrainMask int) int {
	p.m = nil
	p.nodePath = nil
	p.nodePathCost = 0

	m := p.mx.Get(agentSize, terrainMask)
	if m == nil {
		p.log.Debug("astar reset: no matching map", slog.Int("agentSize", agentSize), slog.Int("terrainMask", terrainMask))
		return resultCode(ErrNoMatchingMap)
	}
	if x1 < 0 || x1 >= m.Width() || y1 < 0 || y1 >= m.Height() ||
		x2 < 0 || x2 >= m.Width() || y2 < 0 || y2 >= m.Height() {
		return resultCode(ErrOutOfBounds)
	}
	if m.IsObstacle(x2, y2) {
		p.log.Debug("astar reset: target is an obstacle", slog.Int("x", x2), slog.Int("y", y2))
		return resultCode(ErrTargetObstacle)
	}
	if m.IsObstacle(x1, y1) {
		return resultCode(ErrTargetObstacle)
	}

	p.m = m
	p.sx, p.sy, p.tx, p.ty = x1, y1, x2, y2
	p.agentSize, p.terrainMask = agentSize, terrainMask
	p.startLeaf = m.FindNode(x1, y1)
	p.targetLeaf = m.FindNode(x2, y2)
	if p.helper == nil {
		p.helper = newPathFinderHelper(m)
	} else {
		p.helper.Reset(m)
	}
	return 0
}

func leafCenter(n *quadtree.Node) (int, int) {
	return (n.X1 + n.X2) / 2, (n.Y1 + n.Y2) / 2
}

// ComputeNodeRoutes runs A* over the node graph from the start leaf to the
// target leaf, heuristic = distance between leaf centers. Returns -1 if the
// leaves are unreachable from one another.
func (p *AStarPathFinder) ComputeNodeRoutes() int {
	if p.m == nil || p.startLeaf == nil || p.targetLeaf == nil {
		return resultCode(ErrStageOutOfOrder)
	}
	m := p.m
	startIdx, targetIdx := p.startLeaf.Index, p.targetLeaf.Index
	if startIdx == targetIdx {
		p.nodePath = []*quadtree.Node{p.startLeaf}
		p.nodePathCost = 0
		return 0
	}

	tcx, tcy := leafCenter(p.targetLeaf)
	nodes := map[int]*quadtree.Node{startIdx: p.startLeaf, targetIdx: p.targetLeaf}
	gScore := map[int]int{startIdx: 0}
	cameFrom := map[int]int{}
	visited := map[int]bool{}

	open := &searchHeap{}
	heap.Init(open)
	scx, scy := leafCenter(p.startLeaf)
	p.seq = 0
	heap.Push(open, &searchItem{id: startIdx, f: m.distance(scx, scy, tcx, tcy), g: 0, seq: p.seq})

	for open.Len() > 0 {
		cur := heap.Pop(open).(*searchItem)
		if visited[cur.id] {
			continue
		}
		visited[cur.id] = true
		if cur.id == targetIdx {
			p.nodePathCost = gScore[targetIdx]
			p.nodePath = reconstructNodePath(nodes, cameFrom, startIdx, targetIdx)
			return 0
		}

		curNode := nodes[cur.id]
		m.ForEachNeighbourNodes(curNode, func(neighbour *quadtree.Node, weight, gateA, gateB int) {
			if neighbour == nil || visited[neighbour.Index] {
				return
			}
			tentative := gScore[cur.id] + weight
			if old, ok := gScore[neighbour.Index]; ok && tentative >= old {
				return
			}
			gScore[neighbour.Index] = tentative
			cameFrom[neighbour.Index] = cur.id
			nodes[neighbour.Index] = neighbour
			ncx, ncy := leafCenter(neighbour)
			p.seq++
			heap.Push(open, &searchItem{id: neighbour.Index, f: tentative + m.distance(ncx, ncy, tcx, tcy), g: tentative, seq: p.seq})
		})
	}
	return resultCode(ErrUnreachable)
}

func reconstructNodePath(nodes map[int]*quadtree.Node, cameFrom map[int]int, start, target int) []*quadtree.Node {
	ids := []int{target}
	cur := target
	for cur != start {
		prev, ok := cameFrom[cur]
		if !ok {
			break
		}
		cur = prev
		ids = append(ids, cur)
	}
	out := make([]*quadtree.Node, len(ids))
	for i, id := range ids {
		out[len(ids)-1-i] = nodes[id]
	}
	return out
}

// NodePathSize returns the number of leaves in the last computed node path.
func (p *AStarPathFinder) NodePathSize() int { return len(p.nodePath) }

// VisitComputedNodeRoutes reports each leaf of the last computed node path,
// in order, to visitor.
func (p *AStarPathFinder) VisitComputedNodeRoutes(visitor func(*quadtree.Node)) {
	for _, n := range p.nodePath {
		visitor(n)
	}
}

func (p *AStarPathFinder) nodePathLeafSet() map[int]bool {
	set := make(map[int]bool, len(p.nodePath))
	for _, n := range p.nodePath {
		set[n.Index] = true
	}
	return set
}

// ComputeGateRoutes runs A* over the gate graph plus the temporary overlay
// from start to target. When useNodePath is true, expansion is filtered to
// gate cells whose leaf appears in the last computed node path; that stage
// must have run first or this returns -1. sink receives each gate cell of
// the resulting route in order.
func (p *AStarPathFinder) ComputeGateRoutes(sink CellCollector, useNodePath bool) int {
	if p.m == nil {
		return resultCode(ErrStageOutOfOrder)
	}
	if useNodePath && len(p.nodePath) == 0 {
		return resultCode(ErrStageOutOfOrder)
	}
	m := p.m
	startCell := m.Pack(p.sx, p.sy)
	targetCell := m.Pack(p.tx, p.ty)

	if startCell == targetCell {
		p.gateRouteCost = 0
		sink(p.sx, p.sy)
		return 0
	}

	if !m.IsGateCell(startCell) {
		p.helper.AddCellToNodeOnTmpGraph(startCell, p.startLeaf)
	}
	if !m.IsGateCell(targetCell) {
		p.helper.AddCellToNodeOnTmpGraph(targetCell, p.targetLeaf)
	}
	if p.startLeaf == p.targetLeaf {
		// Same obstacle-free leaf: a direct line of sight always exists, but
		// if the leaf has no gates at all (e.g. it is the whole map) neither
		// overlay connection above would have linked the two cells.
		p.helper.ConnectCellsOnTmpGraph(startCell, targetCell)
	}

	var allowedLeaves map[int]bool
	if useNodePath {
		allowedLeaves = p.nodePathLeafSet()
	}
	allowed := func(cell int) bool {
		if allowedLeaves == nil {
			return true
		}
		if cell == startCell || cell == targetCell {
			return true
		}
		cx, cy := m.unpack(cell)
		n := m.FindNode(cx, cy)
		return n != nil && allowedLeaves[n.Index]
	}

	tx, ty := p.tx, p.ty
	gScore := map[int]int{startCell: 0}
	cameFrom := map[int]int{}
	visited := map[int]bool{}

	open := &searchHeap{}
	heap.Init(open)
	sx, sy := p.sx, p.sy
	p.seq = 0
	heap.Push(open, &searchItem{id: startCell, f: m.distance(sx, sy, tx, ty), g: 0, seq: p.seq})

	found := false
	for open.Len() > 0 {
		cur := heap.Pop(open).(*searchItem)
		if visited[cur.id] {
			continue
		}
		visited[cur.id] = true
		if cur.id == targetCell {
			found = true
			break
		}

		p.helper.ForEachNeighbourGateWithST(cur.id, func(v, weight int) {
			if visited[v] || !allowed(v) {
				return
			}
			tentative := gScore[cur.id] + weight
			if old, ok := gScore[v]; ok && tentative >= old {
				return
			}
			gScore[v] = tentative
			cameFrom[v] = cur.id
			vx, vy := m.unpack(v)
			p.seq++
			heap.Push(open, &searchItem{id: v, f: tentative + m.distance(vx, vy, tx, ty), g: tentative, seq: p.seq})
		})
	}
	if !found {
		return resultCode(ErrUnreachable)
	}

	ids := []int{targetCell}
	cur := targetCell
	for cur != startCell {
		prev, ok := cameFrom[cur]
		if !ok {
			break
		}
		cur = prev
		ids = append(ids, cur)
	}
	p.gateRouteCost = gScore[targetCell]
	for i := len(ids) - 1; i >= 0; i-- {
		x, y := m.unpack(ids[i])
		sink(x, y)
	}
	return 0
}

// GateRouteCost returns the total cost of the last successfully computed
// gate route.
func (p *AStarPathFinder) GateRouteCost() int { return p.gateRouteCost }

// ComputePathToNextRouteCell emits the straight-line cell sequence between
// two consecutive gate cells of a computed route.
func (p *AStarPathFinder) ComputePathToNextRouteCell(x1, y1, x2, y2 int, sink CellCollector) {
	straightLine(x1, y1, x2, y2, sink, 0)
}
