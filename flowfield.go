package qdpf

import (
	"container/heap"
	"log/slog"

	"github.com/pthm-cable/qdpf/internal/quadtree"
)

// FlowFieldPathFinder runs the three-stage reverse-shortest-path refinement
// of §4.6 (C8): node flow field, then gate flow field, then a per-cell flow
// field covering a destination rectangle via a two-sweep dynamic program.
type FlowFieldPathFinder struct {
	mx  *QuadtreeMapX
	log *slog.Logger

	m                      *QuadtreeMap
	tx, ty                 int
	qrange                 Rectangle
	agentSize, terrainMask int
	targetNode             *quadtree.Node
	helper                 *pathFinderHelper

	nodesOverlapping map[int]*quadtree.Node
	gatesOverlapping map[int]bool

	nodeField      NodeFlowField
	nodeFieldNodes map[int]*quadtree.Node
	gateField      GateFlowField
	cellField      CellFlowField

	seq int
}

// NewFlowFieldPathFinder creates a flow-field pathfinder weakly referencing
// mx.
func NewFlowFieldPathFinder(mx *QuadtreeMapX, log *slog.Logger) *FlowFieldPathFinder {
	return &FlowFieldPathFinder{mx: mx, log: logger(log)}
}

// Reset selects the map for (agentSize, terrainMask), validates the target
// and query rectangle, and recomputes the set of empty leaves and gate
// cells overlapping qrange that the later stages stop at. After a failed
// Reset every Compute* stage returns -1 until a Reset succeeds.
func (p *FlowFieldPathFinder) Reset(tx, ty int, qrange Rectangle, agentSize, terrainMask int) int {
	p.m = nil
	p.nodeField, p.gateField, p.cellField = nil, nil, nil
	p.nodeFieldNodes = nil

	m := p.mx.Get(agentSize, terrainMask)
	if m == nil {
		return resultCode(ErrNoMatchingMap)
	}
	if tx < 0 || tx >= m.Width() || ty < 0 || ty >= m.Height() {
		return resultCode(ErrOutOfBounds)
	}
	if !qrange.Valid() {
		return resultCode(ErrInvalidGeometry)
	}
	full := Rectangle{X1: 0, Y1: 0, X2: m.Width() - 1, Y2: m.Height() - 1}
	clipped, ok := overlap(qrange, full)
	if !ok {
		return resultCode(ErrInvalidGeometry)
	}
	if m.IsObstacle(tx, ty) {
		return resultCode(ErrTargetObstacle)
	}

	p.m = m
	p.tx, p.ty = tx, ty
	p.qrange = clipped
	p.agentSize, p.terrainMask = agentSize, terrainMask
	p.targetNode = m.FindNode(tx, ty)
	if p.helper == nil {
		p.helper = newPathFinderHelper(m)
	} else {
		p.helper.Reset(m)
	}

	t := m.pack(tx, ty)
	if !m.IsGateCell(t) {
		p.helper.AddCellToNodeOnTmpGraph(t, p.targetNode)
	}

	p.nodesOverlapping = make(map[int]*quadtree.Node)
	m.NodesInRange(p.qrange, func(n *quadtree.Node) {
		if !n.Blocked {
			p.nodesOverlapping[n.Index] = n
		}
	})

	p.gatesOverlapping = make(map[int]bool)
	for _, n := range p.nodesOverlapping {
		m.ForEachGateInNode(n, func(x, y int) { p.gatesOverlapping[m.pack(x, y)] = true })
	}
	if p.qrange.Contains(tx, ty) {
		p.gatesOverlapping[t] = true
	}
	// Interior (non-gate) cells of the overlap between the target's leaf and
	// qrange become virtual gate cells connected straight to t: gate cells in
	// tNode already reach t through the overlay edge added above, so only the
	// non-gate interior needs an explicit connection (§4.6 open question).
	if p.targetNode != nil {
		tnRect := Rectangle{X1: p.targetNode.X1, Y1: p.targetNode.Y1, X2: p.targetNode.X2, Y2: p.targetNode.Y2}
		if ov, ok := overlap(tnRect, p.qrange); ok {
			for x := ov.X1; x <= ov.X2; x++ {
				for y := ov.Y1; y <= ov.Y2; y++ {
					c := m.pack(x, y)
					if c == t || m.IsGateCell(c) {
						continue
					}
					p.helper.ConnectCellsOnTmpGraph(c, t)
					p.gatesOverlapping[c] = true
				}
			}
		}
	}
	return 0
}

// ComputeNodeFlowField runs a reverse Dijkstra from the target's leaf over
// the node graph, stopping once every leaf overlapping qrange is settled.
func (p *FlowFieldPathFinder) ComputeNodeFlowField() int {
	if p.m == nil || p.targetNode == nil {
		return resultCode(ErrStageOutOfOrder)
	}
	m := p.m
	targetIdx := p.targetNode.Index

	dist := map[int]int{targetIdx: 0}
	next := map[int]int{targetIdx: targetIdx}
	nodes := map[int]*quadtree.Node{targetIdx: p.targetNode}
	visited := map[int]bool{}

	remaining := make(map[int]bool, len(p.nodesOverlapping))
	for idx := range p.nodesOverlapping {
		remaining[idx] = true
	}
	delete(remaining, targetIdx)
	totalNeeded := len(remaining)

	open := &searchHeap{}
	heap.Init(open)
	p.seq = 0
	heap.Push(open, &searchItem{id: targetIdx, f: 0, g: 0, seq: p.seq})

	settled := 0
	for open.Len() > 0 && settled < totalNeeded {
		cur := heap.Pop(open).(*searchItem)
		if visited[cur.id] {
			continue
		}
		visited[cur.id] = true
		if remaining[cur.id] {
			settled++
		}

		curNode := nodes[cur.id]
		m.ForEachNeighbourNodes(curNode, func(neighbour *quadtree.Node, weight, gateA, gateB int) {
			if neighbour == nil || visited[neighbour.Index] {
				return
			}
			tentative := dist[cur.id] + weight
			if old, ok := dist[neighbour.Index]; ok && tentative >= old {
				return
			}
			dist[neighbour.Index] = tentative
			next[neighbour.Index] = cur.id
			nodes[neighbour.Index] = neighbour
			p.seq++
			heap.Push(open, &searchItem{id: neighbour.Index, f: tentative, g: tentative, seq: p.seq})
		})
	}

	field := make(NodeFlowField, len(dist))
	for idx, d := range dist {
		field[idx] = fieldEntry{next: next[idx], cost: d}
	}
	p.nodeField = field
	p.nodeFieldNodes = nodes
	return 0
}

// ComputeGateFlowField runs a reverse Dijkstra over the gate graph (plus
// overlay) from the target cell, stopping once every gate cell overlapping
// qrange is settled. When useNodeField is true, expansion is restricted to
// the gates lying along the node flow field's plan, per §4.6 stage B.
func (p *FlowFieldPathFinder) ComputeGateFlowField(useNodeField bool) int {
	if p.m == nil || p.targetNode == nil {
		return resultCode(ErrStageOutOfOrder)
	}
	if useNodeField && p.nodeField == nil {
		return resultCode(ErrStageOutOfOrder)
	}
	m := p.m
	t := m.pack(p.tx, p.ty)

	var allowed map[int]bool
	if useNodeField {
		allowed = map[int]bool{t: true}
		p.helper.ForEachNeighbourGateWithST(t, func(v, w int) { allowed[v] = true })
		for nodeIdx, entry := range p.nodeField {
			if entry.next == nodeIdx {
				continue
			}
			node := p.nodeFieldNodes[nodeIdx]
			if node == nil {
				continue
			}
			m.ForEachNeighbourNodes(node, func(neighbour *quadtree.Node, weight, gateA, gateB int) {
				if neighbour == nil || neighbour.Index != entry.next {
					return
				}
				m.ForEachGateBetweenNodes(node, neighbour, func(a, b int) {
					allowed[a] = true
					allowed[b] = true
				})
			})
		}
	}

	dist := map[int]int{t: 0}
	next := map[int]int{t: t}
	visited := map[int]bool{}

	remaining := make(map[int]bool, len(p.gatesOverlapping))
	for c := range p.gatesOverlapping {
		remaining[c] = true
	}
	delete(remaining, t)
	totalNeeded := len(remaining)

	open := &searchHeap{}
	heap.Init(open)
	p.seq = 0
	heap.Push(open, &searchItem{id: t, f: 0, g: 0, seq: p.seq})

	settled := 0
	for open.Len() > 0 && settled < totalNeeded {
		cur := heap.Pop(open).(*searchItem)
		if visited[cur.id] {
			continue
		}
		visited[cur.id] = true
		if remaining[cur.id] {
			settled++
		}

		p.helper.ForEachNeighbourGateWithST(cur.id, func(v, weight int) {
			if visited[v] {
				return
			}
			if allowed != nil && !allowed[v] {
				return
			}
			tentative := dist[cur.id] + weight
			if old, ok := dist[v]; ok && tentative >= old {
				return
			}
			dist[v] = tentative
			next[v] = cur.id
			p.seq++
			heap.Push(open, &searchItem{id: v, f: tentative, g: tentative, seq: p.seq})
		})
	}

	field := make(GateFlowField, len(dist))
	for id, d := range dist {
		field[id] = fieldEntry{next: next[id], cost: d}
	}
	p.gateField = field
	return 0
}

type sweepOffset struct{ dx, dy, w int }

// ComputeFinalFlowFieldInQueryRange runs the two-sweep per-cell dynamic
// program of §4.6 stage C over every leaf overlapping qrange, seeded from
// the gate flow field.
func (p *FlowFieldPathFinder) ComputeFinalFlowFieldInQueryRange() int {
	if p.m == nil || p.gateField == nil {
		return resultCode(ErrStageOutOfOrder)
	}
	m := p.m
	c1 := m.distance(0, 0, 0, 1)
	c2 := m.distance(0, 0, 1, 1)

	f := make(map[int]int)
	from := make(map[int]int)
	authoritative := make(map[int]bool)

	for v, entry := range p.gateField {
		x, y := m.unpack(v)
		f[v] = entry.cost
		authoritative[v] = true
		if entry.next == v {
			from[v] = v
			continue
		}
		nx, ny := m.unpack(entry.next)
		step := 0
		stepCell := v
		straightLine(x, y, nx, ny, func(sx, sy int) {
			step++
			if step == 2 {
				stepCell = m.pack(sx, sy)
			}
		}, 2)
		from[v] = stepCell
	}

	forwardOffsets := []sweepOffset{{-1, -1, c2}, {-1, 0, c1}, {0, -1, c1}, {-1, 1, c2}}
	backwardOffsets := []sweepOffset{{1, 1, c2}, {1, 0, c1}, {0, 1, c1}, {1, -1, c2}}

	relax := func(x, y int, offs []sweepOffset) {
		id := m.pack(x, y)
		if authoritative[id] || m.IsObstacle(x, y) {
			return
		}
		for _, o := range offs {
			nx, ny := x+o.dx, y+o.dy
			if nx < 0 || nx >= m.Width() || ny < 0 || ny >= m.Height() {
				continue
			}
			nid := m.pack(nx, ny)
			nf, ok := f[nid]
			if !ok {
				continue
			}
			cand := nf + o.w
			cur, has := f[id]
			if !has || cand < cur {
				f[id] = cand
				from[id] = nid
			}
		}
	}

	for _, leaf := range p.nodesOverlapping {
		for x := leaf.X1; x <= leaf.X2; x++ {
			for y := leaf.Y1; y <= leaf.Y2; y++ {
				relax(x, y, forwardOffsets)
			}
		}
		for x := leaf.X2; x >= leaf.X1; x-- {
			for y := leaf.Y2; y >= leaf.Y1; y-- {
				relax(x, y, backwardOffsets)
			}
		}
	}

	field := make(CellFlowField)
	for y := p.qrange.Y1; y <= p.qrange.Y2; y++ {
		for x := p.qrange.X1; x <= p.qrange.X2; x++ {
			id := m.pack(x, y)
			cost, ok := f[id]
			if !ok || cost >= Inf {
				continue
			}
			field[id] = fieldEntry{next: from[id], cost: cost}
		}
	}
	p.cellField = field
	return 0
}

// VisitCellFlowField reports every entry of field, resolved to coordinates,
// to visitor.
func (p *FlowFieldPathFinder) VisitCellFlowField(field CellFlowField, visitor UnpackedCellFlowFieldVisitor) {
	if p.m == nil {
		return
	}
	for id, entry := range field {
		x, y := p.m.unpack(id)
		nx, ny := p.m.unpack(entry.next)
		visitor(x, y, nx, ny, entry.cost)
	}
}

// NodeField, GateField and CellField expose the last computed field of each
// stage, for callers that want to inspect results beyond VisitCellFlowField.
func (p *FlowFieldPathFinder) NodeField() NodeFlowField { return p.nodeField }
func (p *FlowFieldPathFinder) GateField() GateFlowField { return p.gateField }
func (p *FlowFieldPathFinder) CellField() CellFlowField { return p.cellField }
