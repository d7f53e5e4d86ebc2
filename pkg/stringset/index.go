package stringset

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/tchap/go-patricia/v2/patricia"
)

// Option configures an Index.
type Option func(*Index)

// WithNormalizer sets the function applied to keys and queries before comparison.
func WithNormalizer(n Normalizer) Option {
	return func(idx *Index) {
		if n != nil {
			idx.normalize = n
		}
	}
}

// WithSplitWidth sets the profile width at which leaves split.
func WithSplitWidth(w float64) Option {
	return func(idx *Index) {
		if w > 0 {
			idx.splitWidth = w
		}
	}
}

// Index is the top level of the tree. It maps each key length to the root
// cluster for that length and has no profile of its own.
type Index struct {
	roots      map[int]*Cluster
	lengths    []int // ascending
	entries    int
	normalize  Normalizer
	splitWidth float64
	keys       *patricia.Trie // normalized key -> []*Entry
}

// New returns an empty index.
func New(opts ...Option) *Index {
	idx := &Index{
		roots:      make(map[int]*Cluster),
		normalize:  Identity,
		splitWidth: DefaultSplitWidth,
		keys:       patricia.NewTrie(),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// NewCaseInsensitive returns an empty index that lower-cases keys and queries.
func NewCaseInsensitive(opts ...Option) *Index {
	return New(append([]Option{WithNormalizer(Lower)}, opts...)...)
}

// Add indexes key with an optional payload. It reports false without error
// when an entry with the same key is already present. Keys that normalize to
// the empty string are rejected.
func (idx *Index) Add(key string, payload any) (bool, error) {
	return idx.add(newEntry(key, payload, idx.normalize))
}

// AddEntry indexes e itself, so pointers handed out by lookups compare equal
// to it. An entry already normalized differently by another index is never
// changed; a copy carrying this index's normalization is added instead.
func (idx *Index) AddEntry(e *Entry) (bool, error) {
	if e == nil {
		return false, fmt.Errorf("%w: nil entry", ErrEmptyKey)
	}
	norm := idx.normalize(e.Key)
	switch {
	case e.norm == nil:
		e.norm = []rune(norm)
	case string(e.norm) != norm:
		e = newEntry(e.Key, e.Payload, idx.normalize)
	}
	return idx.add(e)
}

func (idx *Index) add(e *Entry) (bool, error) {
	if e.Len() == 0 {
		return false, fmt.Errorf("%w: %q", ErrEmptyKey, e.Key)
	}
	if idx.contains(e) {
		duplicatesIgnored.Inc()
		return false, nil
	}
	root := idx.roots[e.Len()]
	if root == nil {
		root = NewCluster(e.Len(), idx.splitWidth)
		idx.setRoot(root)
	}
	if err := root.Add(e); err != nil {
		return false, err
	}
	idx.entries++
	idx.remember(e)
	entriesAdded.Inc()
	return true, nil
}

func (idx *Index) setRoot(c *Cluster) {
	if _, ok := idx.roots[c.length]; !ok {
		pos, _ := slices.BinarySearch(idx.lengths, c.length)
		idx.lengths = slices.Insert(idx.lengths, pos, c.length)
	}
	idx.roots[c.length] = c
}

func (idx *Index) contains(e *Entry) bool {
	item := idx.keys.Get(patricia.Prefix(e.Normalized()))
	if item == nil {
		return false
	}
	for _, other := range item.([]*Entry) {
		if other.Key == e.Key {
			return true
		}
	}
	return false
}

func (idx *Index) remember(e *Entry) {
	prefix := patricia.Prefix(e.Normalized())
	if item := idx.keys.Get(prefix); item != nil {
		idx.keys.Set(prefix, append(item.([]*Entry), e))
		return
	}
	idx.keys.Insert(prefix, []*Entry{e})
}

// Normalize applies the index's normalizer.
func (idx *Index) Normalize(s string) string { return idx.normalize(s) }

// Len returns the number of entries in the index.
func (idx *Index) Len() int { return idx.entries }

// Lengths returns the key lengths that have a root cluster, ascending.
func (idx *Index) Lengths() []int { return slices.Clone(idx.lengths) }

// Root returns the root cluster for keys of the given length, or nil.
func (idx *Index) Root(length int) *Cluster { return idx.roots[length] }

// Get returns the entries whose key normalizes to the same string as key.
func (idx *Index) Get(key string) []*Entry {
	item := idx.keys.Get(patricia.Prefix(idx.normalize(key)))
	if item == nil {
		return nil
	}
	return slices.Clone(item.([]*Entry))
}

// Complete returns up to limit entries whose normalized key starts with the
// normalized prefix, ordered by normalized key. A non-positive limit returns all.
func (idx *Index) Complete(prefix string, limit int) []*Entry {
	var found []*Entry
	_ = idx.keys.VisitSubtree(patricia.Prefix(idx.normalize(prefix)), func(_ patricia.Prefix, item patricia.Item) error {
		found = append(found, item.([]*Entry)...)
		return nil
	})
	slices.SortStableFunc(found, func(a, b *Entry) int {
		if c := strings.Compare(a.Normalized(), b.Normalized()); c != 0 {
			return c
		}
		return strings.Compare(a.Key, b.Key)
	})
	if limit > 0 && len(found) > limit {
		found = found[:limit]
	}
	return found
}

// Entries iterates every entry, bucket by bucket in ascending length and in
// tree order within a bucket.
func (idx *Index) Entries() iter.Seq[*Entry] {
	return func(yield func(*Entry) bool) {
		for _, l := range idx.lengths {
			if !idx.roots[l].walk(yield) {
				return
			}
		}
	}
}

func (c *Cluster) walk(yield func(*Entry) bool) bool {
	for _, e := range c.leaf {
		if !yield(e) {
			return false
		}
	}
	for _, child := range c.children {
		if !child.walk(yield) {
			return false
		}
	}
	return true
}

// Stats summarizes the shape of the tree.
type Stats struct {
	Entries  int
	Lengths  int
	Clusters int
	Leaves   int
	MaxDepth int
}

// Stats walks the tree and reports its shape.
func (idx *Index) Stats() Stats {
	st := Stats{Entries: idx.entries, Lengths: len(idx.lengths)}
	var visit func(c *Cluster, depth int)
	visit = func(c *Cluster, depth int) {
		st.Clusters++
		st.MaxDepth = max(st.MaxDepth, depth)
		if c.IsLeaf() {
			st.Leaves++
			return
		}
		for _, child := range c.children {
			visit(child, depth+1)
		}
	}
	for _, l := range idx.lengths {
		visit(idx.roots[l], 1)
	}
	return st
}

func (idx *Index) String() string { return "TOP-LEVEL" }
