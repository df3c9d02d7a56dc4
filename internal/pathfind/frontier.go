package pathfind

import "container/heap"

type frontierItem struct {
	cell     Cell
	priority int
}

type frontierHeap []frontierItem

func (h frontierHeap) Len() int           { return len(h) }
func (h frontierHeap) Less(i, j int) bool { return h[i].priority < h[j].priority }
func (h frontierHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *frontierHeap) Push(x any) {
	*h = append(*h, x.(frontierItem))
}

func (h *frontierHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Frontier is a min-priority queue of cells keyed by estimated total cost.
//
// The same cell may be pushed more than once with different priorities; the
// search discards stale copies when they come out after the cell is closed.
// Order among equal priorities is unspecified.
type Frontier struct {
	items frontierHeap
}

// NewFrontier returns an empty queue with room for capacity entries.
func NewFrontier(capacity int) *Frontier {
	if capacity < 0 {
		capacity = 0
	}
	return &Frontier{items: make(frontierHeap, 0, capacity)}
}

// Push adds c with the given priority.
func (f *Frontier) Push(c Cell, priority int) {
	heap.Push(&f.items, frontierItem{cell: c, priority: priority})
}

// Pop removes and returns the entry with the smallest priority.
// Callers must check Empty first; popping an empty queue panics.
func (f *Frontier) Pop() (Cell, int) {
	item := heap.Pop(&f.items).(frontierItem)
	return item.cell, item.priority
}

// Empty reports whether no entries remain.
func (f *Frontier) Empty() bool {
	return len(f.items) == 0
}

// Len returns the number of queued entries, stale duplicates included.
func (f *Frontier) Len() int {
	return len(f.items)
}
