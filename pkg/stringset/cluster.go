package stringset

import (
	"fmt"
)

// DefaultSplitWidth is the profile width at which a leaf is split.
const DefaultSplitWidth = 12

// Cluster is a node of a length bucket. A leaf holds entries directly; an
// internal cluster holds child clusters. A cluster starts as an empty leaf and
// only becomes internal by splitting.
type Cluster struct {
	length   int
	profile  Profile
	total    int // sum of the profile's set sizes
	entries  int
	leaf     []*Entry
	children []*Cluster
	maxWidth float64
}

// NewCluster returns an empty leaf for keys of the given length. A
// non-positive maxWidth selects DefaultSplitWidth.
func NewCluster(length int, maxWidth float64) *Cluster {
	if maxWidth <= 0 {
		maxWidth = DefaultSplitWidth
	}
	return &Cluster{
		length:   length,
		profile:  newProfile(length),
		maxWidth: maxWidth,
	}
}

// Length returns the key length every entry of the cluster has.
func (c *Cluster) Length() int { return c.length }

// Len returns the number of entries below the cluster.
func (c *Cluster) Len() int { return c.entries }

// IsLeaf reports whether the cluster holds entries directly. Empty clusters are leaves.
func (c *Cluster) IsLeaf() bool { return len(c.children) == 0 }

// Profile returns the cluster's character-set profile. It must not be modified.
func (c *Cluster) Profile() Profile { return c.profile }

// Entries returns the entries of a leaf, nil for internal clusters.
func (c *Cluster) Entries() []*Entry { return c.leaf }

// Children returns the child clusters, nil for leaves.
func (c *Cluster) Children() []*Cluster { return c.children }

// Width returns the average size of the profile's position sets.
func (c *Cluster) Width() float64 {
	if c.length == 0 {
		return 0
	}
	return float64(c.total) / float64(c.length)
}

// Distance returns the lower-bound distance between a normalized query and
// every entry of the cluster.
func (c *Cluster) Distance(query []rune) float64 {
	return ProfileDistance(query, c.profile)
}

// Add inserts e below the cluster. It fails with a *LengthError, leaving the
// cluster untouched, when e does not have the cluster's length.
func (c *Cluster) Add(e *Entry) error {
	if e.Len() != c.length {
		return &LengthError{Key: e.Key, Want: c.length, Got: e.Len()}
	}
	c.insert(e)
	return nil
}

// AddChild merges other as a direct child. Only used while rebuilding a
// tree, so the cluster must not already hold entries directly.
func (c *Cluster) AddChild(other *Cluster) error {
	if other.length != c.length {
		return &LengthError{Key: other.String(), Want: c.length, Got: other.length}
	}
	if len(c.leaf) > 0 {
		return fmt.Errorf("cluster %s holds entries, cannot add child cluster", c)
	}
	for i, cs := range other.profile {
		for r := range cs {
			c.mark(i, r)
		}
	}
	c.entries += other.entries
	c.children = append(c.children, other)
	return nil
}

func (c *Cluster) mark(pos int, r rune) {
	cs := c.profile[pos]
	if _, ok := cs[r]; !ok {
		cs[r] = struct{}{}
		c.total++
	}
}

func (c *Cluster) cover(e *Entry) {
	for i, r := range e.norm {
		c.mark(i, r)
	}
}

// insert adds an entry of the right length, splitting an overgrown leaf.
func (c *Cluster) insert(e *Entry) {
	c.cover(e)
	c.entries++
	if c.IsLeaf() {
		c.leaf = append(c.leaf, e)
		if len(c.leaf) >= 2 && c.Width() >= c.maxWidth {
			c.split()
		}
		return
	}
	c.nearest(e.norm).insert(e)
}

// appendLeaf adds an entry to a leaf without ever splitting it.
func (c *Cluster) appendLeaf(e *Entry) {
	c.cover(e)
	c.entries++
	c.leaf = append(c.leaf, e)
}

// nearest returns the child with the smallest profile distance to key; the
// first child wins ties.
func (c *Cluster) nearest(key []rune) *Cluster {
	best := c.children[0]
	bestDist := best.Distance(key)
	for _, child := range c.children[1:] {
		if d := child.Distance(key); d < bestDist {
			best, bestDist = child, d
		}
	}
	return best
}

// String renders the profile, e.g. "([bc][a][rt])".
func (c *Cluster) String() string {
	return "(" + c.profile.String() + ")"
}
