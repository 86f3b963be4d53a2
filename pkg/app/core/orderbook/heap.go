package orderbook

// maxPriceHeap and minPriceHeap give O(1) best-price peek for the bid and
// ask sides respectively: container/heap over a []int64 of distinct
// resident prices. Removing an arbitrary price (when its level empties,
// by cancel or by fill) is an O(n) scan, rare relative to peeks.

type maxPriceHeap []int64

func (h maxPriceHeap) Len() int           { return len(h) }
func (h maxPriceHeap) Less(i, j int) bool { return h[i] > h[j] } // highest price on top
func (h maxPriceHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *maxPriceHeap) Push(x any)        { *h = append(*h, x.(int64)) }
func (h *maxPriceHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
func (h maxPriceHeap) peek() (int64, bool) {
	if len(h) == 0 {
		return 0, false
	}
	return h[0], true
}

type minPriceHeap []int64

func (h minPriceHeap) Len() int           { return len(h) }
func (h minPriceHeap) Less(i, j int) bool { return h[i] < h[j] } // lowest price on top
func (h minPriceHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *minPriceHeap) Push(x any)        { *h = append(*h, x.(int64)) }
func (h *minPriceHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
func (h minPriceHeap) peek() (int64, bool) {
	if len(h) == 0 {
		return 0, false
	}
	return h[0], true
}
