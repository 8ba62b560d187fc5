package qdpf

import "testing"

func TestQuadtreeMapXGetExactMatch(t *testing.T) {
	mx := NewQuadtreeMapX(8, 8, ChebyshevDistance, openTerrain, QuadtreeMapXSettings{
		AgentSizes:    []int{1, 2},
		TerrainMasks:  []int{1},
		MaxNodeWidth:  4,
		MaxNodeHeight: 4,
	}, nil)
	mx.Build()

	if mx.Get(1, 1) == nil {
		t.Errorf("expected a map for (agentSize=1, mask=1)")
	}
	if mx.Get(2, 1) == nil {
		t.Errorf("expected a map for (agentSize=2, mask=1)")
	}
	if mx.Get(3, 1) != nil {
		t.Errorf("expected no map for an unconfigured agent size")
	}
	if mx.Get(1, 2) != nil {
		t.Errorf("expected no map for an unconfigured terrain mask")
	}
}

// TestS6MismatchedGet is scenario S6: requesting an agent size absent from
// settings must fail Reset and every subsequent Compute* call.
func TestS6MismatchedGet(t *testing.T) {
	mx := NewQuadtreeMapX(5, 5, ChebyshevDistance, openTerrain, QuadtreeMapXSettings{
		AgentSizes:    []int{1},
		TerrainMasks:  []int{1},
		MaxNodeWidth:  5,
		MaxNodeHeight: 5,
	}, nil)
	mx.Build()

	astar := NewAStarPathFinder(mx, nil)
	if got := astar.Reset(0, 0, 4, 4, 99, 1); got != -1 {
		t.Fatalf("Reset with mismatched agent size = %d, want -1", got)
	}
	if got := astar.ComputeNodeRoutes(); got != -1 {
		t.Errorf("ComputeNodeRoutes after failed Reset = %d, want -1", got)
	}
	if got := astar.ComputeGateRoutes(func(int, int) {}, false); got != -1 {
		t.Errorf("ComputeGateRoutes after failed Reset = %d, want -1", got)
	}

	ff := NewFlowFieldPathFinder(mx, nil)
	if got := ff.Reset(0, 0, Rectangle{X1: 0, Y1: 0, X2: 4, Y2: 4}, 99, 1); got != -1 {
		t.Fatalf("flow-field Reset with mismatched agent size = %d, want -1", got)
	}
	if got := ff.ComputeNodeFlowField(); got != -1 {
		t.Errorf("ComputeNodeFlowField after failed Reset = %d, want -1", got)
	}
}
