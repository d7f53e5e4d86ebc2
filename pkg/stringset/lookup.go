package stringset

import (
	"iter"

	"github.com/bastiangx/nearword/internal/prioq"
)

// Match is one lookup result.
type Match struct {
	Hint *Entry
	Cost float64
}

type itemKind uint8

const (
	itemIndex itemKind = iota
	itemCluster
	itemEntry
)

// item is a queued search node, tagged by kind.
type item struct {
	kind    itemKind
	cluster *Cluster
	entry   *Entry
}

// Cursor is a pull-based best-first search over an Index. Each call to Next
// pops and expands queued nodes until an entry comes out. Dropping a Cursor
// is all it takes to stop a search.
type Cursor struct {
	idx   *Index
	query []rune
	queue *prioq.Queue[item]
}

// Lookup starts a search for query. Matches come out in non-decreasing cost
// order and every entry is returned exactly once.
func (idx *Index) Lookup(query string) *Cursor {
	lookupsStarted.Inc()
	q := prioq.New[item](64)
	q.Push(0, item{kind: itemIndex})
	return &Cursor{
		idx:   idx,
		query: []rune(idx.normalize(query)),
		queue: q,
	}
}

// Next returns the next match; ok is false once every entry was returned.
func (c *Cursor) Next() (m Match, ok bool) {
	for {
		cost, it, ok := c.queue.Pop()
		if !ok {
			return Match{}, false
		}
		switch it.kind {
		case itemEntry:
			matchesYielded.Inc()
			return Match{Hint: it.entry, Cost: cost}, true
		case itemIndex:
			nodesExpanded.Inc()
			for _, l := range c.idx.lengths {
				root := c.idx.roots[l]
				c.queue.Push(root.Distance(c.query), item{kind: itemCluster, cluster: root})
			}
		case itemCluster:
			nodesExpanded.Inc()
			c.expand(it.cluster)
		}
	}
}

func (c *Cursor) expand(cl *Cluster) {
	for _, e := range cl.leaf {
		c.queue.Push(EditDistance(c.query, e.norm), item{kind: itemEntry, entry: e})
	}
	for _, child := range cl.children {
		c.queue.Push(child.Distance(c.query), item{kind: itemCluster, cluster: child})
	}
}

// Pending returns the number of queued search nodes.
func (c *Cursor) Pending() int { return c.queue.Len() }

// All iterates the remaining matches.
func (c *Cursor) All() iter.Seq[Match] {
	return func(yield func(Match) bool) {
		for {
			m, ok := c.Next()
			if !ok || !yield(m) {
				return
			}
		}
	}
}

// Take returns up to n further matches.
func (c *Cursor) Take(n int) []Match {
	out := make([]Match, 0, max(n, 0))
	for len(out) < n {
		m, ok := c.Next()
		if !ok {
			break
		}
		out = append(out, m)
	}
	return out
}

// Nearest returns the k best matches for query.
func (idx *Index) Nearest(query string, k int) []Match {
	return idx.Lookup(query).Take(k)
}
