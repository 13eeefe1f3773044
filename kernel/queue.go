package kernel

import "container/heap"

// eventHeap orders pending events by (Time, Serial), the ordering key
// required across the whole future set.
type eventHeap []Event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].Time != h[j].Time {
		return h[i].Time < h[j].Time
	}
	return h[i].Serial < h[j].Serial
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(Event))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// peekTime reports the time of the earliest pending event, or (0, false) if
// the heap is empty.
func (h eventHeap) peekTime() (int64, bool) {
	if len(h) == 0 {
		return 0, false
	}
	return h[0].Time, true
}

func (h *eventHeap) removeWhere(pred func(Event) bool) int {
	kept := (*h)[:0]
	removed := 0
	for _, ev := range *h {
		if pred(ev) {
			removed++
			continue
		}
		kept = append(kept, ev)
	}
	*h = kept
	heap.Init(h)
	return removed
}

// removeFirstWhere removes the single matching event earliest in (Time,
// Serial) order, reporting whether one was found.
func (h *eventHeap) removeFirstWhere(pred func(Event) bool) (Event, bool) {
	best := -1
	for i, ev := range *h {
		if !pred(ev) {
			continue
		}
		if best == -1 || (*h)[i].Time < (*h)[best].Time ||
			((*h)[i].Time == (*h)[best].Time && (*h)[i].Serial < (*h)[best].Serial) {
			best = i
		}
	}
	if best == -1 {
		return Event{}, false
	}
	ev := (*h)[best]
	last := len(*h) - 1
	(*h)[best] = (*h)[last]
	*h = (*h)[:last]
	heap.Init(h)
	return ev, true
}
