package stringset

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexAddCountsEntries(t *testing.T) {
	words := randomWords(21, 400)
	idx := buildIndex(t, words)

	assert.Equal(t, len(words), idx.Len())
	total := 0
	for _, l := range idx.Lengths() {
		root := idx.Root(l)
		require.NotNil(t, root)
		assert.Equal(t, l, root.Length())
		total += root.Len()
	}
	assert.Equal(t, len(words), total)
	assert.IsIncreasing(t, idx.Lengths())
}

func TestIndexIgnoresDuplicates(t *testing.T) {
	idx := New()
	added, err := idx.Add("cat", "first")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = idx.Add("cat", "second")
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, 1, idx.Len())

	got := idx.Get("cat")
	require.Len(t, got, 1)
	assert.Equal(t, "first", got[0].Payload)
}

func TestIndexRejectsEmptyKey(t *testing.T) {
	idx := New()
	_, err := idx.Add("", nil)
	assert.True(t, errors.Is(err, ErrEmptyKey))
	assert.Zero(t, idx.Len())
	assert.Empty(t, idx.Lengths())

	blank := New(WithNormalizer(func(s string) string { return strings.TrimSpace(s) }))
	_, err = blank.Add("   ", nil)
	assert.True(t, errors.Is(err, ErrEmptyKey))
}

func TestIndexCaseInsensitive(t *testing.T) {
	idx := NewCaseInsensitive()
	for _, w := range []string{"Paris", "paris", "London"} {
		added, err := idx.Add(w, nil)
		require.NoError(t, err)
		assert.True(t, added, w)
	}
	assert.Equal(t, 3, idx.Len())

	got := idx.Get("PARIS")
	require.Len(t, got, 2)
	assert.ElementsMatch(t, []string{"Paris", "paris"}, []string{got[0].Key, got[1].Key})

	top := idx.Nearest("LONDON", 1)
	require.Len(t, top, 1)
	assert.Equal(t, "London", top[0].Hint.Key)
	assert.Zero(t, top[0].Cost)
}

func TestIndexFoldNormalizer(t *testing.T) {
	idx := New(WithNormalizer(Fold))
	_, err := idx.Add("Straße", nil)
	require.NoError(t, err)

	m := idx.Nearest("STRASSE", 1)
	require.Len(t, m, 1)
	assert.Equal(t, "Straße", m[0].Hint.Key)
	assert.Zero(t, m[0].Cost)
	// folding turns ß into ss, so the entry lives in the length 7 bucket
	assert.Equal(t, []int{7}, idx.Lengths())
}

func TestNormalizerByName(t *testing.T) {
	for _, name := range []string{"", "none", "lower", "FOLD"} {
		_, ok := NormalizerByName(name)
		assert.True(t, ok, name)
	}
	_, ok := NormalizerByName("soundex")
	assert.False(t, ok)
}

func TestIndexComplete(t *testing.T) {
	idx := NewCaseInsensitive()
	for _, w := range []string{"cart", "Car", "carpet", "cat", "dog"} {
		_, err := idx.Add(w, nil)
		require.NoError(t, err)
	}

	var keys []string
	for _, e := range idx.Complete("CAR", 0) {
		keys = append(keys, e.Key)
	}
	assert.Equal(t, []string{"Car", "carpet", "cart"}, keys)
	assert.Len(t, idx.Complete("ca", 2), 2)
	assert.Empty(t, idx.Complete("x", 5))
}

func TestIndexEntriesAndStats(t *testing.T) {
	words := randomWords(22, 300)
	idx := buildIndex(t, words, WithSplitWidth(4))

	var seen []string
	for e := range idx.Entries() {
		seen = append(seen, e.Key)
	}
	assert.ElementsMatch(t, words, seen)

	st := idx.Stats()
	assert.Equal(t, len(words), st.Entries)
	assert.Equal(t, len(idx.Lengths()), st.Lengths)
	assert.Greater(t, st.Clusters, st.Lengths, "narrow split width must produce internal clusters")
	assert.Equal(t, st.Clusters, 2*st.Leaves-st.Lengths, "every internal cluster has two children")
	assert.Greater(t, st.MaxDepth, 1)
	assert.Equal(t, "TOP-LEVEL", idx.String())
}

func TestIndexTwentyKeysForceSplit(t *testing.T) {
	idx := New()
	var keys []string
	for i := 0; i < 20; i++ {
		keys = append(keys, spreadKey(i, 5))
		_, err := idx.Add(keys[i], i)
		require.NoError(t, err)
	}

	root := idx.Root(5)
	require.NotNil(t, root)
	assert.Equal(t, 20, root.Len())
	assert.False(t, root.IsLeaf(), "width reached %d, root must have split", DefaultSplitWidth)

	for _, k := range keys {
		found := false
		for m := range idx.Lookup(k).All() {
			if m.Hint.Key == k {
				assert.Zero(t, m.Cost, k)
				found = true
				break
			}
		}
		assert.True(t, found, k)
	}
}

func TestIndexAddEntryKeepsPointer(t *testing.T) {
	idx := NewCaseInsensitive()
	e := &Entry{Key: "Paris", Payload: "capital"}
	added, err := idx.AddEntry(e)
	require.NoError(t, err)
	require.True(t, added)
	assert.Equal(t, "paris", e.Normalized())

	got := idx.Nearest("paris", 1)
	require.Len(t, got, 1)
	assert.Same(t, e, got[0].Hint)

	added, err = idx.AddEntry(&Entry{Key: "Paris"})
	require.NoError(t, err)
	assert.False(t, added)

	_, err = idx.AddEntry(nil)
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestIndexAddEntrySharedAcrossIndexes(t *testing.T) {
	exact := New()
	folded := NewCaseInsensitive()
	e := &Entry{Key: "Cat", Payload: 1}

	_, err := exact.AddEntry(e)
	require.NoError(t, err)
	_, err = folded.AddEntry(e)
	require.NoError(t, err)

	assert.Equal(t, "Cat", e.Normalized(), "first index keeps its comparison key")

	m := exact.Nearest("Cat", 1)
	require.Len(t, m, 1)
	assert.Same(t, e, m[0].Hint)
	assert.Zero(t, m[0].Cost)
	assert.Equal(t, "([C][a][t])", exact.Root(3).String())

	m = folded.Nearest("CAT", 1)
	require.Len(t, m, 1)
	assert.NotSame(t, e, m[0].Hint)
	assert.Equal(t, "cat", m[0].Hint.Normalized())
	assert.Equal(t, e.Key, m[0].Hint.Key)
	assert.Equal(t, e.Payload, m[0].Hint.Payload)
	assert.Zero(t, m[0].Cost)

	// an entry that already matches this index's normalization is kept as is
	other := New()
	_, err = other.AddEntry(e)
	require.NoError(t, err)
	assert.Same(t, e, other.Nearest("Cat", 1)[0].Hint)
}
