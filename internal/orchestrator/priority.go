package orchestrator

import "container/heap"

// Priority is a scheduling priority; higher values are dispatched first
// (spec §4.4).
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
	PriorityCritical
)

// ParsePriority maps a priority name to its value, defaulting to Normal
// for unknown names (spec §4.4: "default normal").
func ParsePriority(name string) Priority {
	switch name {
	case "critical":
		return PriorityCritical
	case "high":
		return PriorityHigh
	case "low":
		return PriorityLow
	default:
		return PriorityNormal
	}
}

// command is one pending scheduleLayout request.
type command struct {
	seq      uint64 // monotonic enqueue sequence, breaks priority ties FIFO
	priority Priority
	run      func()
	index    int // heap bookkeeping
}

// commandQueue is a priority queue ordered by (priority desc, seq asc),
// i.e. higher priority first; among equal priority, FIFO by enqueue
// order (spec §4.4, §8 S5).
type commandQueue struct {
	items []*command
	seq   uint64
}

func newCommandQueue() *commandQueue {
	q := &commandQueue{}
	heap.Init(q)
	return q
}

func (q *commandQueue) push(priority Priority, run func()) {
	q.seq++
	heap.Push(q, &command{seq: q.seq, priority: priority, run: run})
}

func (q *commandQueue) pop() (*command, bool) {
	if q.Len() == 0 {
		return nil, false
	}
	return heap.Pop(q).(*command), true
}

// heap.Interface implementation.

func (q *commandQueue) Len() int { return len(q.items) }

func (q *commandQueue) Less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	if a.priority != b.priority {
		return a.priority > b.priority // higher priority first
	}
	return a.seq < b.seq // earlier enqueue first
}

func (q *commandQueue) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.items[i].index = i
	q.items[j].index = j
}

func (q *commandQueue) Push(x any) {
	c := x.(*command)
	c.index = len(q.items)
	q.items = append(q.items, c)
}

func (q *commandQueue) Pop() any {
	old := q.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	q.items = old[:n-1]
	return item
}
