package qdpf

// searchItem is one open-set entry for both the A* and Dijkstra-style
// reverse searches below. It mirrors the teacher's astarNode/nodeHeap
// pair (container/heap over a priority float), generalized to carry an
// explicit g-score and insertion sequence for the tie-break rule §4.5
// requires: lowest f, then lowest g, then insertion order.
type searchItem struct {
	id    int
	f, g  int
	seq   int
	index int
}

// searchHeap implements heap.Interface over searchItem.
type searchHeap []*searchItem

func (h searchHeap) Len() int { return len(h) }

func (h searchHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	if h[i].g != h[j].g {
		return h[i].g < h[j].g
	}
	return h[i].seq < h[j].seq
}

func (h searchHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *searchHeap) Push(x any) {
	it := x.(*searchItem)
	it.index = len(*h)
	*h = append(*h, it)
}

func (h *searchHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.index = -1
	*h = old[:n-1]
	return it
}
