// Package queue implements the priority update queue the settle driver's
// power phase schedules work through: roots drain before anything they
// raised, and items of equal priority drain in the order they were pushed.
// The shape mirrors a classic work-scheduling heap, reimplemented here
// against stdlib container/heap rather than pulling in a scheduling
// library whose API is built around goroutines and channels this engine
// does not use (see DESIGN.md).
package queue

import "container/heap"

// Item is one scheduled unit of work: an arena index to revisit.
type Item struct {
	Index int32
	Root  bool
	seq   int64
}

type itemHeap []Item

func (h itemHeap) Len() int { return len(h) }

func (h itemHeap) Less(i, j int) bool {
	if h[i].Root != h[j].Root {
		return h[i].Root
	}
	return h[i].seq < h[j].seq
}

func (h itemHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *itemHeap) Push(x any) {
	*h = append(*h, x.(Item))
}

func (h *itemHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}

// PriorityQueue orders pushed indices root-first, then by insertion order.
// Ordering depends only on push order and the root flag, never on the
// indices' cell coordinates, so two settles that discover the same set of
// wires in the same order schedule identically regardless of where in the
// world they happened.
type PriorityQueue struct {
	h    itemHeap
	next int64
}

// New returns an empty PriorityQueue.
func New() *PriorityQueue {
	return &PriorityQueue{}
}

// Push schedules idx, marking it a root if root is true.
func (q *PriorityQueue) Push(idx int32, root bool) {
	heap.Push(&q.h, Item{Index: idx, Root: root, seq: q.next})
	q.next++
}

// Pop removes and returns the highest-priority item. ok is false when the
// queue is empty.
func (q *PriorityQueue) Pop() (idx int32, ok bool) {
	if q.h.Len() == 0 {
		return 0, false
	}
	it := heap.Pop(&q.h).(Item)
	return it.Index, true
}

// Len reports how many items remain queued.
func (q *PriorityQueue) Len() int { return q.h.Len() }
