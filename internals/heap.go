package internals

import "sort"

// scoredItem pairs a cosine-distance score with an arbitrary payload.
type scoredItem struct {
	score   float64
	payload interface{}
}

// TopKHeap is a bounded max-heap over (score, payload) pairs, used to keep
// the k smallest scores seen so far (small = more similar, spec §4.2).
// It is not safe for concurrent use.
type TopKHeap struct {
	capacity int
	data     []scoredItem
}

// NewTopKHeap creates a heap that retains at most capacity elements.
func NewTopKHeap(capacity int) *TopKHeap {
	return &TopKHeap{capacity: capacity, data: make([]scoredItem, 0, capacity)}
}

// Len returns the number of elements currently retained.
func (h *TopKHeap) Len() int { return len(h.data) }

// Insert offers (score, payload) to the heap. If fewer than capacity
// elements are retained, it is always kept. Otherwise it replaces the
// current maximum iff score is strictly smaller.
func (h *TopKHeap) Insert(score float64, payload interface{}) {
	if len(h.data) < h.capacity {
		h.data = append(h.data, scoredItem{score, payload})
		h.siftUp(len(h.data) - 1)
		return
	}
	if h.capacity == 0 {
		return
	}
	if score < h.data[0].score {
		h.data[0] = scoredItem{score, payload}
		h.siftDown(0)
	}
}

func (h *TopKHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.data[parent].score >= h.data[i].score {
			break
		}
		h.data[parent], h.data[i] = h.data[i], h.data[parent]
		i = parent
	}
}

func (h *TopKHeap) siftDown(i int) {
	n := len(h.data)
	for {
		left, right := 2*i+1, 2*i+2
		largest := i
		if left < n && h.data[left].score > h.data[largest].score {
			largest = left
		}
		if right < n && h.data[right].score > h.data[largest].score {
			largest = right
		}
		if largest == i {
			return
		}
		h.data[i], h.data[largest] = h.data[largest], h.data[i]
		i = largest
	}
}

// IntoSortedAscending drains the heap and returns its elements ordered by
// ascending score. The heap is empty after this call.
func (h *TopKHeap) IntoSortedAscending() []scoredItem {
	out := make([]scoredItem, len(h.data))
	copy(out, h.data)
	h.data = h.data[:0]
	sort.Slice(out, func(i, j int) bool { return out[i].score < out[j].score })
	return out
}
