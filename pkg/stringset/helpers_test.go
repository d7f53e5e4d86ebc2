package stringset

import (
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"
)

// randomWords returns n distinct lower-case words, deterministic for a seed.
func randomWords(seed int64, n int) []string {
	f := gofakeit.New(seed)
	seen := make(map[string]bool, n)
	words := make([]string, 0, n)
	for len(words) < n {
		w := strings.ToLower(f.Word())
		if w == "" || seen[w] {
			w = strings.ToLower(f.LetterN(uint(3 + len(words)%6)))
		}
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		words = append(words, w)
	}
	return words
}

func buildIndex(t *testing.T, words []string, opts ...Option) *Index {
	t.Helper()
	idx := New(opts...)
	for _, w := range words {
		added, err := idx.Add(w, nil)
		require.NoError(t, err)
		require.True(t, added, "word %q", w)
	}
	return idx
}

// forEachCluster visits every cluster of the index.
func forEachCluster(idx *Index, fn func(*Cluster)) {
	var visit func(*Cluster)
	visit = func(c *Cluster) {
		fn(c)
		for _, child := range c.Children() {
			visit(child)
		}
	}
	for _, l := range idx.Lengths() {
		visit(idx.Root(l))
	}
}

// clusterEntries collects every entry below c.
func clusterEntries(c *Cluster) []*Entry {
	var out []*Entry
	c.walk(func(e *Entry) bool {
		out = append(out, e)
		return true
	})
	return out
}

func keysOf(matches []Match) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Hint.Key
	}
	return out
}
