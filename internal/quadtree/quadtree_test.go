package quadtree

import "testing"

func emptyGrid(int, int) bool { return false }

func TestBuildEmptyGridSingleLeaf(t *testing.T) {
	tr := New(8, 8, emptyGrid, 8, 8, nil)
	tr.Build()

	leaves := tr.Leaves()
	if len(leaves) != 1 {
		t.Fatalf("expected a single leaf for an empty 8x8 grid capped at 8x8, got %d", len(leaves))
	}
	if leaves[0].Blocked {
		t.Errorf("expected the only leaf to be unblocked")
	}
}

func TestBuildRespectsMaxNodeSize(t *testing.T) {
	tr := New(8, 8, emptyGrid, 4, 4, nil)
	tr.Build()

	leaves := tr.Leaves()
	if len(leaves) != 4 {
		t.Fatalf("expected 4 quadrant leaves when capped at 4x4 on an 8x8 grid, got %d", len(leaves))
	}
	for _, l := range leaves {
		if l.Width() > 4 || l.Height() > 4 {
			t.Errorf("leaf %+v exceeds the 4x4 cap", l)
		}
	}
}

func TestLeafInvariantSplitsAroundSingleObstacle(t *testing.T) {
	blocked := func(x, y int) bool { return x == 3 && y == 3 }
	tr := New(8, 8, blocked, 8, 8, nil)
	tr.Build()

	for _, l := range tr.Leaves() {
		if !l.IsLeaf {
			t.Fatalf("Leaves() returned a non-leaf node")
		}
		if l.Blocked {
			if l.Width() != 1 || l.Height() != 1 {
				t.Errorf("blocked leaf %+v is not a single cell", l)
			}
			continue
		}
		// unblocked leaf: every cell inside it must be unblocked.
		for x := l.X1; x <= l.X2; x++ {
			for y := l.Y1; y <= l.Y2; y++ {
				if blocked(x, y) {
					t.Errorf("leaf %+v claims unblocked but contains blocked cell (%d,%d)", l, x, y)
				}
			}
		}
	}

	leaf := tr.FindLeaf(3, 3)
	if leaf == nil || !leaf.Blocked {
		t.Fatalf("expected (3,3) to resolve to a blocked leaf")
	}
}

func TestFindLeafOutOfBounds(t *testing.T) {
	tr := New(4, 4, emptyGrid, 4, 4, nil)
	tr.Build()

	if tr.FindLeaf(-1, 0) != nil || tr.FindLeaf(4, 0) != nil || tr.FindLeaf(0, 4) != nil {
		t.Errorf("expected nil for out-of-range queries")
	}
}

func TestUpdateRebuildsOnlyAffectedLeaf(t *testing.T) {
	blockedCells := map[[2]int]bool{}
	blocked := func(x, y int) bool { return blockedCells[[2]int{x, y}] }

	tr := New(8, 8, blocked, 4, 4, nil)
	tr.Build()

	before := tr.FindLeaf(0, 0)
	if before == nil || before.Blocked {
		t.Fatalf("expected (0,0) to start in an unblocked leaf")
	}

	blockedCells[[2]int{1, 1}] = true
	x1, y1, x2, y2, changed := tr.Update(1, 1)
	if !changed {
		t.Fatalf("expected Update to report a change")
	}
	if x1 != before.X1 || y1 != before.Y1 || x2 != before.X2 || y2 != before.Y2 {
		t.Errorf("expected the rebuilt rectangle to match the original leaf bounds")
	}

	leaf := tr.FindLeaf(1, 1)
	if leaf == nil || !leaf.Blocked {
		t.Fatalf("expected (1,1) to resolve to a blocked leaf after Update")
	}

	// A sibling region untouched by the mutation should be unaffected.
	sibling := tr.FindLeaf(6, 6)
	if sibling == nil || sibling.Blocked {
		t.Errorf("expected an unrelated region to remain unblocked after Update")
	}
}

func TestUpdateEquivalentToRebuildFromScratch(t *testing.T) {
	blockedCells := map[[2]int]bool{
		{2, 2}: true,
		{5, 5}: true,
	}
	blocked := func(x, y int) bool { return blockedCells[[2]int{x, y}] }

	incremental := New(8, 8, blocked, 4, 4, nil)
	incremental.Build()

	// Introduce a new obstacle incrementally...
	blockedCells[[2]int{6, 1}] = true
	incremental.Update(6, 1)

	// ...and compare against a from-scratch build on the same final grid.
	fromScratch := New(8, 8, blocked, 4, 4, nil)
	fromScratch.Build()

	a, b := incremental.Leaves(), fromScratch.Leaves()
	if len(a) != len(b) {
		t.Fatalf("leaf count mismatch after Update: %d vs %d", len(a), len(b))
	}
	seen := make(map[[4]int]bool)
	for _, l := range b {
		seen[[4]int{l.X1, l.Y1, l.X2, l.Y2}] = l.Blocked
	}
	for _, l := range a {
		key := [4]int{l.X1, l.Y1, l.X2, l.Y2}
		blockedWant, ok := seen[key]
		if !ok {
			t.Errorf("incremental leaf %+v has no counterpart in the from-scratch tree", l)
			continue
		}
		if blockedWant != l.Blocked {
			t.Errorf("leaf %+v blocked=%v, from-scratch has blocked=%v", l, l.Blocked, blockedWant)
		}
	}
}
