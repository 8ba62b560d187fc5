// Package quadtree implements the generic spatial partition the pathfinding
// core builds its abstract graphs on top of: a rectangle is recursively
// split until every leaf is either entirely free of blocking cells or holds
// exactly one, per the leaf invariant. The package knows nothing about
// agents, terrain masks or gates — it only classifies cells via a caller
// supplied predicate and reports leaves.
package quadtree

// IsBlockedFunc reports whether the cell at (x,y) should be treated as a
// blocking object by the tree. The tree re-queries this on every Build and
// Update; callers own the classification logic (agent size, terrain mask).
type IsBlockedFunc func(x, y int) bool

// StepFunction maps a node's depth to the maximum leaf side permitted at
// that depth for an obstacle-free region. It lets a host balance node count
// against gate count: a small cap yields many small empty leaves (cheap
// per-leaf gate generation, many gates); a large cap yields few big leaves.
// A nil StepFunction means "no extra cap beyond MaxWidth/MaxHeight".
type StepFunction func(depth int) int

// Node is a leaf or internal rectangle of the tree. Nodes are created by
// Tree and addressed by Index; a node keeps its Index while it is part of
// the tree, nodes rebuilt by Update get fresh indices, and Build numbers
// from zero again. Index is what Gate and graph code hold instead of a
// *Node, per the non-owning back-reference convention (see DESIGN.md).
type Node struct {
	Index              int
	X1, Y1, X2, Y2     int
	IsLeaf             bool
	Blocked            bool // true iff this leaf holds exactly one blocking cell
	BlockedX, BlockedY int  // valid only if Blocked

	children [4]*Node // NW, NE, SW, SE; unused slots are nil
	epoch    int       // not set or read by this package
}

// Width returns the node's horizontal extent in cells.
func (n *Node) Width() int { return n.X2 - n.X1 + 1 }

// Height returns the node's vertical extent in cells.
func (n *Node) Height() int { return n.Y2 - n.Y1 + 1 }

// Contains reports whether (x,y) falls inside the node's rectangle.
func (n *Node) Contains(x, y int) bool {
	return x >= n.X1 && x <= n.X2 && y >= n.Y1 && y <= n.Y2
}

// Tree is a dynamic quadtree over a fixed W x H grid.
type Tree struct {
	w, h         int
	isBlocked    IsBlockedFunc
	maxNodeW     int
	maxNodeH     int
	step         StepFunction
	root         *Node
	nextIndex    int
	leavesByIdx  map[int]*Node
}

// New creates a tree over a W x H grid. maxNodeW/maxNodeH cap the side of
// any obstacle-free leaf; step, if non-nil, tightens that cap by depth.
func New(w, h int, isBlocked IsBlockedFunc, maxNodeW, maxNodeH int, step StepFunction) *Tree {
	if maxNodeW <= 0 {
		maxNodeW = w
	}
	if maxNodeH <= 0 {
		maxNodeH = h
	}
	return &Tree{
		w:           w,
		h:           h,
		isBlocked:   isBlocked,
		maxNodeW:    maxNodeW,
		maxNodeH:    maxNodeH,
		step:        step,
		leavesByIdx: make(map[int]*Node),
	}
}

// Build performs a full recursive partition of the whole grid, discarding
// any previous tree.
func (t *Tree) Build() {
	t.leavesByIdx = make(map[int]*Node)
	t.nextIndex = 0
	t.root = t.buildNode(0, 0, t.w-1, t.h-1, 0)
}

// Root returns the tree's root node.
func (t *Tree) Root() *Node { return t.root }

func (t *Tree) permittedSize(depth int) (int, int) {
	maxW, maxH := t.maxNodeW, t.maxNodeH
	if t.step != nil {
		if s := t.step(depth); s > 0 {
			if s < maxW {
				maxW = s
			}
			if s < maxH {
				maxH = s
			}
		}
	}
	return maxW, maxH
}

// classify scans [x1..x2]x[y1..y2] and reports the blocking cells found,
// stopping early once it knows the region cannot be a valid leaf (more than
// one blocking cell).
func (t *Tree) classify(x1, y1, x2, y2 int) (count int, bx, by int) {
	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			if t.isBlocked(x, y) {
				count++
				bx, by = x, y
				if count > 1 {
					return count, bx, by
				}
			}
		}
	}
	return count, bx, by
}

func (t *Tree) buildNode(x1, y1, x2, y2, depth int) *Node {
	n := &Node{Index: t.nextIndex, X1: x1, Y1: y1, X2: x2, Y2: y2}
	t.nextIndex++

	w, h := x2-x1+1, y2-y1+1
	count, bx, by := t.classify(x1, y1, x2, y2)

	singleCell := w == 1 && h == 1
	if count == 0 {
		maxW, maxH := t.permittedSize(depth)
		if (w <= maxW && h <= maxH) || singleCell {
			n.IsLeaf = true
			t.leavesByIdx[n.Index] = n
			return n
		}
	} else if singleCell {
		n.IsLeaf = true
		n.Blocked = count == 1
		n.BlockedX, n.BlockedY = bx, by
		t.leavesByIdx[n.Index] = n
		return n
	}

	t.split(n, depth)
	return n
}

func (t *Tree) split(n *Node, depth int) {
	w, h := n.Width(), n.Height()
	switch {
	case w > 1 && h > 1:
		midX := n.X1 + w/2 - 1
		midY := n.Y1 + h/2 - 1
		n.children[0] = t.buildNode(n.X1, n.Y1, midX, midY, depth+1)       // NW
		n.children[1] = t.buildNode(midX+1, n.Y1, n.X2, midY, depth+1)     // NE
		n.children[2] = t.buildNode(n.X1, midY+1, midX, n.Y2, depth+1)     // SW
		n.children[3] = t.buildNode(midX+1, midY+1, n.X2, n.Y2, depth+1)   // SE
	case w > 1:
		midX := n.X1 + w/2 - 1
		n.children[0] = t.buildNode(n.X1, n.Y1, midX, n.Y2, depth+1)
		n.children[1] = t.buildNode(midX+1, n.Y1, n.X2, n.Y2, depth+1)
	case h > 1:
		midY := n.Y1 + h/2 - 1
		n.children[0] = t.buildNode(n.X1, n.Y1, n.X2, midY, depth+1)
		n.children[1] = t.buildNode(n.X1, midY+1, n.X2, n.Y2, depth+1)
	}
}

// Children returns the (up to 4) non-nil children of an internal node.
func (n *Node) Children() []*Node {
	out := make([]*Node, 0, 4)
	for _, c := range n.children {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

// FindLeaf returns the leaf containing (x,y), or nil if out of range.
func (t *Tree) FindLeaf(x, y int) *Node {
	if x < 0 || x >= t.w || y < 0 || y >= t.h || t.root == nil {
		return nil
	}
	return findLeaf(t.root, x, y)
}

func findLeaf(n *Node, x, y int) *Node {
	if !n.Contains(x, y) {
		return nil
	}
	if n.IsLeaf {
		return n
	}
	for _, c := range n.children {
		if c != nil && c.Contains(x, y) {
			return findLeaf(c, x, y)
		}
	}
	return nil
}

// VisitLeaves calls visit for every leaf overlapping [x1..x2]x[y1..y2].
func (t *Tree) VisitLeaves(x1, y1, x2, y2 int, visit func(*Node)) {
	if t.root == nil {
		return
	}
	visitLeaves(t.root, x1, y1, x2, y2, visit)
}

func rectsOverlap(ax1, ay1, ax2, ay2, bx1, by1, bx2, by2 int) bool {
	return ax1 <= bx2 && ax2 >= bx1 && ay1 <= by2 && ay2 >= by1
}

func visitLeaves(n *Node, x1, y1, x2, y2 int, visit func(*Node)) {
	if !rectsOverlap(n.X1, n.Y1, n.X2, n.Y2, x1, y1, x2, y2) {
		return
	}
	if n.IsLeaf {
		visit(n)
		return
	}
	for _, c := range n.children {
		if c != nil {
			visitLeaves(c, x1, y1, x2, y2, visit)
		}
	}
}

// Update rebuilds the part of the tree that (x,y) belongs to. Walking down
// from the root toward the leaf containing (x,y), the first node that is now
// obstacle-free and within the permitted leaf size is rebuilt, which merges
// its former children back into one leaf; if no such node exists, the leaf
// containing (x,y) is rebuilt (and split if it now holds an obstacle). Since
// classification is purely a function of the cells in range, the result has
// the same leaves as a fresh Build of the same grid, and the rest of the tree
// is left untouched. Returns the rectangle that was rebuilt, so callers can
// recompute gates incident to it.
func (t *Tree) Update(x, y int) (x1, y1, x2, y2 int, changed bool) {
	if x < 0 || x >= t.w || y < 0 || y >= t.h || t.root == nil {
		return 0, 0, 0, 0, false
	}

	var parent *Node
	var slot int
	depth := 0
	n := t.root
	for !n.IsLeaf {
		maxW, maxH := t.permittedSize(depth)
		if count, _, _ := t.classify(n.X1, n.Y1, n.X2, n.Y2); count == 0 && n.Width() <= maxW && n.Height() <= maxH {
			break
		}
		found := false
		for i, c := range n.children {
			if c != nil && c.Contains(x, y) {
				parent, slot = n, i
				n = c
				found = true
				break
			}
		}
		if !found {
			return 0, 0, 0, 0, false
		}
		depth++
	}

	ox1, oy1, ox2, oy2 := n.X1, n.Y1, n.X2, n.Y2
	visitLeaves(n, ox1, oy1, ox2, oy2, func(l *Node) { delete(t.leavesByIdx, l.Index) })

	rebuilt := t.buildNode(ox1, oy1, ox2, oy2, depth)
	if parent == nil {
		t.root = rebuilt
	} else {
		parent.children[slot] = rebuilt
	}
	return ox1, oy1, ox2, oy2, true
}

// Leaves returns every leaf currently in the tree, in depth-first order
// (children visited NW, NE, SW, SE).
func (t *Tree) Leaves() []*Node {
	out := make([]*Node, 0, len(t.leavesByIdx))
	t.VisitLeaves(0, 0, t.w-1, t.h-1, func(n *Node) { out = append(out, n) })
	return out
}

// Width and Height report the tree's grid extents.
func (t *Tree) Width() int  { return t.w }
func (t *Tree) Height() int { return t.h }
