package internals

import "testing"

func TestTopKHeapRetainsSmallest(t *testing.T) {
	h := NewTopKHeap(3)
	for _, score := range []float64{5, 1, 9, 2, 8, 0, 7} {
		h.Insert(score, score)
	}

	items := h.IntoSortedAscending()
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}

	want := []float64{0, 1, 2}
	for i, item := range items {
		if item.score != want[i] {
			t.Errorf("position %d: expected score %v, got %v", i, want[i], item.score)
		}
	}
}

func TestTopKHeapFewerThanCapacity(t *testing.T) {
	h := NewTopKHeap(10)
	h.Insert(3, "a")
	h.Insert(1, "b")

	if h.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", h.Len())
	}

	items := h.IntoSortedAscending()
	if items[0].payload != "b" || items[1].payload != "a" {
		t.Errorf("unexpected order: %+v", items)
	}
}

func TestTopKHeapZeroCapacity(t *testing.T) {
	h := NewTopKHeap(0)
	h.Insert(1, "x")

	if h.Len() != 0 {
		t.Fatalf("expected 0 items retained, got %d", h.Len())
	}
}

func TestTopKHeapIsDrainedAfterExtraction(t *testing.T) {
	h := NewTopKHeap(2)
	h.Insert(1, "a")
	h.Insert(2, "b")

	_ = h.IntoSortedAscending()
	if h.Len() != 0 {
		t.Fatalf("expected heap to be empty after draining, got %d", h.Len())
	}
}
