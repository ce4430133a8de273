package scheduler

import "time"

// timer is one scheduled macrotask: a setTimeout (interval == 0) or a
// setInterval (interval > 0, re-armed after each fire).
type timer struct {
	id       int64
	due      time.Time
	interval time.Duration
	fn       func()
	canceled bool
}

// timerHeap is a (dueTime, id)-ordered min-heap, giving equal-dueTime
// timers FIFO-by-id firing order, matching spec's macrotask ordering
// guarantee.
type timerHeap []*timer

func (h timerHeap) Len() int { return len(h) }
func (h timerHeap) Less(i, j int) bool {
	if h[i].due.Equal(h[j].due) {
		return h[i].id < h[j].id
	}
	return h[i].due.Before(h[j].due)
}
func (h timerHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *timerHeap) Push(x any) {
	*h = append(*h, x.(*timer))
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}
