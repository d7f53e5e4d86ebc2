package prioq

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueOrdersByCost(t *testing.T) {
	q := New[string](4)
	q.Push(3, "c")
	q.Push(1, "a")
	q.Push(2, "b")
	q.Push(0.5, "z")

	var got []string
	for !q.Empty() {
		_, item, ok := q.Pop()
		require.True(t, ok)
		got = append(got, item)
	}
	assert.Equal(t, []string{"z", "a", "b", "c"}, got)
}

func TestQueueTiesArePushOrder(t *testing.T) {
	q := New[int](0)
	q.Push(1, 10)
	q.Push(0, 0)
	q.Push(1, 11)
	q.Push(1, 12)
	q.Push(0, 1)
	q.Push(1, 13)

	want := []int{0, 1, 10, 11, 12, 13}
	for _, w := range want {
		_, item, ok := q.Pop()
		require.True(t, ok)
		assert.Equal(t, w, item)
	}
	_, _, ok := q.Pop()
	assert.False(t, ok)
}

func TestQueueInterleavedPushPop(t *testing.T) {
	q := New[int](0)
	q.Push(2, 1)
	q.Push(2, 2)
	cost, item, _ := q.Pop()
	assert.Equal(t, 2.0, cost)
	assert.Equal(t, 1, item)

	// pushed later with the same cost, must still follow item 2
	q.Push(2, 3)
	q.Push(1, 4)
	var got []int
	for !q.Empty() {
		_, item, _ := q.Pop()
		got = append(got, item)
	}
	assert.Equal(t, []int{4, 2, 3}, got)
}

func TestQueueMatchesStableSort(t *testing.T) {
	type pair struct {
		cost float64
		id   int
	}
	rng := rand.New(rand.NewSource(7))
	q := New[int](0)
	var pairs []pair
	for i := 0; i < 500; i++ {
		c := float64(rng.Intn(20)) / 4
		pairs = append(pairs, pair{c, i})
		q.Push(c, i)
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].cost < pairs[j].cost })

	for _, p := range pairs {
		cost, id, ok := q.Pop()
		require.True(t, ok)
		assert.Equal(t, p.cost, cost)
		assert.Equal(t, p.id, id)
	}
	assert.True(t, q.Empty())
}

func TestQueueResetAndPeek(t *testing.T) {
	q := New[string](2)
	_, ok := q.Peek()
	assert.False(t, ok)

	q.Push(5, "x")
	q.Push(4, "y")
	c, ok := q.Peek()
	assert.True(t, ok)
	assert.Equal(t, 4.0, c)
	assert.Equal(t, 2, q.Len())

	q.Reset()
	assert.True(t, q.Empty())
	assert.Equal(t, 0, q.Len())
}
