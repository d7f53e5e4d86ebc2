// Package prioq provides a min-priority queue keyed by float cost.
//
// Items with equal cost come out in the order they were pushed.
package prioq

// node is one queued item. seq breaks ties between equal costs.
type node[T any] struct {
	cost float64
	seq  uint64
	item T
}

// Queue is a binary min-heap over (cost, item) pairs. The heap operations are
// written out by hand instead of going through container/heap so that pushes
// and pops do not box every item into an interface value.
type Queue[T any] struct {
	nodes []node[T]
	seq   uint64
}

// New returns an empty queue with room for capacity items.
func New[T any](capacity int) *Queue[T] {
	return &Queue[T]{nodes: make([]node[T], 0, capacity)}
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int { return len(q.nodes) }

// Empty reports whether the queue holds no items.
func (q *Queue[T]) Empty() bool { return len(q.nodes) == 0 }

// Reset drops every queued item but keeps the allocated storage.
func (q *Queue[T]) Reset() {
	clear(q.nodes)
	q.nodes = q.nodes[:0]
	q.seq = 0
}

// Push queues item with the given cost. Among equal costs the new item is
// placed after every item already queued.
func (q *Queue[T]) Push(cost float64, item T) {
	q.nodes = append(q.nodes, node[T]{cost: cost, seq: q.seq, item: item})
	q.seq++
	q.up(len(q.nodes) - 1)
}

// Pop removes and returns the lowest-cost item. ok is false when the queue is empty.
func (q *Queue[T]) Pop() (cost float64, item T, ok bool) {
	n := len(q.nodes)
	if n == 0 {
		return 0, item, false
	}
	top := q.nodes[0]
	last := n - 1
	q.nodes[0] = q.nodes[last]
	var zero node[T]
	q.nodes[last] = zero
	q.nodes = q.nodes[:last]
	if last > 0 {
		q.down(0)
	}
	return top.cost, top.item, true
}

// Peek returns the lowest cost without removing its item.
func (q *Queue[T]) Peek() (float64, bool) {
	if len(q.nodes) == 0 {
		return 0, false
	}
	return q.nodes[0].cost, true
}

func (q *Queue[T]) less(i, j int) bool {
	a, b := &q.nodes[i], &q.nodes[j]
	if a.cost != b.cost {
		return a.cost < b.cost
	}
	return a.seq < b.seq
}

func (q *Queue[T]) up(j int) {
	for j > 0 {
		i := (j - 1) / 2 // parent
		if !q.less(j, i) {
			break
		}
		q.nodes[i], q.nodes[j] = q.nodes[j], q.nodes[i]
		j = i
	}
}

func (q *Queue[T]) down(i int) {
	n := len(q.nodes)
	for {
		j := 2*i + 1
		if j >= n {
			break
		}
		if r := j + 1; r < n && q.less(r, j) {
			j = r
		}
		if !q.less(j, i) {
			break
		}
		q.nodes[i], q.nodes[j] = q.nodes[j], q.nodes[i]
		i = j
	}
}
