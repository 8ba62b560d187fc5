package qdpf

// gate is a directed adjacency between a cell `a` in leaf aNode and a cell
// `b` in the adjacent leaf bNode. Gates always come in symmetric pairs; the
// reverse gate is stored as its own entry.
type gate struct {
	a, b         int // packed cell ids
	aNode, bNode int // leaf indices
}

// fieldEntry is one vertex's entry in a reverse flow field: the cost to
// reach the target from this vertex, and the next vertex on that path.
type fieldEntry struct {
	next int
	cost int
}

// NodeFlowField maps a leaf index to its reverse shortest-path entry over
// the node graph.
type NodeFlowField map[int]fieldEntry

// GateFlowField maps a packed gate-cell id to its reverse shortest-path
// entry over the gate graph (and temporary overlay).
type GateFlowField map[int]fieldEntry

// CellFlowField maps a packed cell id, for every cell covered by a query
// rectangle, to its reverse shortest-path entry.
type CellFlowField map[int]fieldEntry

// UnpackedCellFlowFieldVisitor receives one resolved flow-field entry at a
// time: the cell (x,y), the cell its path steps to next (xNext,yNext), and
// the cost remaining to the target.
type UnpackedCellFlowFieldVisitor func(x, y, xNext, yNext, cost int)
