package qdpf

import (
	"testing"

	"github.com/pthm-cable/qdpf/internal/fixture"
)

func buildFlowMapXFromGrid(g *fixture.Grid, agentSize, maxNode int) *QuadtreeMapX {
	mx := NewQuadtreeMapX(g.W, g.H, ChebyshevDistance, g.Terrain, QuadtreeMapXSettings{
		AgentSizes:    []int{agentSize},
		TerrainMasks:  []int{1},
		MaxNodeWidth:  maxNode,
		MaxNodeHeight: maxNode,
	}, nil)
	mx.Build()
	return mx
}

// TestS3OpenFlowField is scenario S3: a 10x10 open grid, target (5,5),
// qrange the whole grid. Under Chebyshev distance the corner (0,0) is 5
// diagonal steps from the target and should step toward (1,1).
func TestS3OpenFlowField(t *testing.T) {
	g, err := fixture.Load("internal/fixture/testdata/s3_open10x10.csv", 10, 10, 1)
	if err != nil {
		t.Fatalf("loading fixture: %v", err)
	}
	mx := buildFlowMapXFromGrid(g, 1, 4)

	p := NewFlowFieldPathFinder(mx, nil)
	qrange := Rectangle{X1: 0, Y1: 0, X2: 9, Y2: 9}
	if got := p.Reset(5, 5, qrange, 1, 1); got != 0 {
		t.Fatalf("Reset = %d, want 0", got)
	}
	if got := p.ComputeNodeFlowField(); got != 0 {
		t.Fatalf("ComputeNodeFlowField = %d, want 0", got)
	}
	if got := p.ComputeGateFlowField(true); got != 0 {
		t.Fatalf("ComputeGateFlowField = %d, want 0", got)
	}
	if got := p.ComputeFinalFlowFieldInQueryRange(); got != 0 {
		t.Fatalf("ComputeFinalFlowFieldInQueryRange = %d, want 0", got)
	}

	m := mx.Get(1, 1)
	field := p.CellField()
	entry, ok := field[m.Pack(0, 0)]
	if !ok {
		t.Fatalf("expected (0,0) to appear in the final flow field")
	}
	if entry.cost != 5 {
		t.Errorf("cost(0,0) = %d, want 5 (5*c2 under Chebyshev)", entry.cost)
	}
	nx, ny := m.Unpack(entry.next)
	if nx != 1 || ny != 1 {
		t.Errorf("next(0,0) = (%d,%d), want (1,1)", nx, ny)
	}
}

// TestS4GapFlowField is scenario S4: a horizontal wall at x=5 open only at
// y=0, target (9,9), qrange covering columns y=0..4 of every row, so it holds
// cells on both sides of the wall and the gap (5,0) itself. The near-side
// cells (0..4,0) can only reach the target through the gap, so none of them
// may cost less than the gap cell.
func TestS4GapFlowField(t *testing.T) {
	g, err := fixture.Load("internal/fixture/testdata/s4_gap10x10.csv", 10, 10, 1)
	if err != nil {
		t.Fatalf("loading fixture: %v", err)
	}
	mx := buildFlowMapXFromGrid(g, 1, 4)
	m := mx.Get(1, 1)

	p := NewFlowFieldPathFinder(mx, nil)
	qrange := Rectangle{X1: 0, Y1: 0, X2: 9, Y2: 4}
	if got := p.Reset(9, 9, qrange, 1, 1); got != 0 {
		t.Fatalf("Reset = %d, want 0", got)
	}
	if got := p.ComputeNodeFlowField(); got != 0 {
		t.Fatalf("ComputeNodeFlowField = %d, want 0", got)
	}
	if got := p.ComputeGateFlowField(true); got != 0 {
		t.Fatalf("ComputeGateFlowField = %d, want 0", got)
	}
	if got := p.ComputeFinalFlowFieldInQueryRange(); got != 0 {
		t.Fatalf("ComputeFinalFlowFieldInQueryRange = %d, want 0", got)
	}

	field := p.CellField()
	gapCost, ok := field[m.Pack(5, 0)]
	if !ok {
		t.Fatalf("expected the gap cell (5,0) to appear in the final flow field")
	}

	for x := 0; x <= 4; x++ {
		entry, ok := field[m.Pack(x, 0)]
		if !ok {
			t.Errorf("expected (%d,0) to be covered by the final flow field", x)
			continue
		}
		if entry.cost < gapCost.cost {
			t.Errorf("cost(%d,0) = %d is less than the gap's own cost %d; can't be true on the near side of the wall", x, entry.cost, gapCost.cost)
		}
	}
}

// TestFlowFieldMonotonicity is Testable Property 5: for every vertex in any
// flow field, cost(v) >= cost(next(v)), and the target's own cost is 0.
func TestFlowFieldMonotonicity(t *testing.T) {
	blocked := map[[2]int]bool{
		{4, 4}: true, {4, 5}: true, {5, 4}: true,
	}
	terrain := func(x, y int) int {
		if blocked[[2]int{x, y}] {
			return 0
		}
		return 1
	}
	mx := NewQuadtreeMapX(12, 12, ChebyshevDistance, terrain, QuadtreeMapXSettings{
		AgentSizes:    []int{1},
		TerrainMasks:  []int{1},
		MaxNodeWidth:  4,
		MaxNodeHeight: 4,
	}, nil)
	mx.Build()
	m := mx.Get(1, 1)

	p := NewFlowFieldPathFinder(mx, nil)
	qrange := Rectangle{X1: 0, Y1: 0, X2: 11, Y2: 11}
	if got := p.Reset(10, 10, qrange, 1, 1); got != 0 {
		t.Fatalf("Reset = %d, want 0", got)
	}
	if got := p.ComputeNodeFlowField(); got != 0 {
		t.Fatalf("ComputeNodeFlowField = %d, want 0", got)
	}

	target := m.Pack(10, 10)
	for v, e := range p.NodeField() {
		if e.next == v {
			if e.cost != 0 {
				t.Errorf("node %d is its own successor but cost = %d, want 0", v, e.cost)
			}
			continue
		}
		next, ok := p.NodeField()[e.next]
		if !ok {
			t.Errorf("node %d's successor %d has no entry", v, e.next)
			continue
		}
		if e.cost < next.cost {
			t.Errorf("node %d cost %d < successor %d cost %d", v, e.cost, e.next, next.cost)
		}
	}

	if got := p.ComputeGateFlowField(true); got != 0 {
		t.Fatalf("ComputeGateFlowField = %d, want 0", got)
	}
	if e, ok := p.GateField()[target]; !ok || e.cost != 0 {
		t.Errorf("target gate-field cost = %+v, want cost 0", e)
	}
	for v, e := range p.GateField() {
		if e.next == v {
			continue
		}
		next, ok := p.GateField()[e.next]
		if !ok {
			t.Errorf("gate cell %d's successor %d has no entry", v, e.next)
			continue
		}
		if e.cost < next.cost {
			t.Errorf("gate cell %d cost %d < successor %d cost %d", v, e.cost, e.next, next.cost)
		}
	}

	if got := p.ComputeFinalFlowFieldInQueryRange(); got != 0 {
		t.Fatalf("ComputeFinalFlowFieldInQueryRange = %d, want 0", got)
	}
	for v, e := range p.CellField() {
		if e.next == v {
			if e.cost != 0 {
				t.Errorf("cell %d is its own successor but cost = %d, want 0", v, e.cost)
			}
			continue
		}
		next, ok := p.CellField()[e.next]
		if ok && e.cost < next.cost {
			t.Errorf("cell %d cost %d < successor %d cost %d", v, e.cost, e.next, next.cost)
		}
	}
}

// TestFlowFieldCompletenessInQueryRange is Testable Property 8: every
// walkable cell in qrange whose leaf is reachable from the target's leaf
// over the node graph must appear in the final flow field.
func TestFlowFieldCompletenessInQueryRange(t *testing.T) {
	g, err := fixture.Load("internal/fixture/testdata/s3_open10x10.csv", 10, 10, 1)
	if err != nil {
		t.Fatalf("loading fixture: %v", err)
	}
	mx := buildFlowMapXFromGrid(g, 1, 4)
	m := mx.Get(1, 1)

	p := NewFlowFieldPathFinder(mx, nil)
	qrange := Rectangle{X1: 0, Y1: 0, X2: 9, Y2: 9}
	if got := p.Reset(5, 5, qrange, 1, 1); got != 0 {
		t.Fatalf("Reset = %d, want 0", got)
	}
	_ = p.ComputeNodeFlowField()
	_ = p.ComputeGateFlowField(true)
	if got := p.ComputeFinalFlowFieldInQueryRange(); got != 0 {
		t.Fatalf("ComputeFinalFlowFieldInQueryRange = %d, want 0", got)
	}

	field := p.CellField()
	for x := qrange.X1; x <= qrange.X2; x++ {
		for y := qrange.Y1; y <= qrange.Y2; y++ {
			if m.IsObstacle(x, y) {
				continue
			}
			if _, ok := field[m.Pack(x, y)]; !ok {
				t.Errorf("walkable cell (%d,%d) in qrange is missing from the final flow field", x, y)
			}
		}
	}
}
