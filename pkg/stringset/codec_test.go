package stringset

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pair struct {
	Key     string
	Payload any
}

func pairsOf(idx *Index) []pair {
	var out []pair
	for e := range idx.Entries() {
		out = append(out, pair{e.Key, e.Payload})
	}
	return out
}

func TestCodecRoundTrip(t *testing.T) {
	idx := New(WithSplitWidth(3))
	for i, w := range randomWords(41, 300) {
		var payload any
		switch i % 6 {
		case 1:
			payload = "noun"
		case 2:
			payload = map[string]any{"classes": "verb", "tags": []any{"a", "b"}}
		case 3:
			payload = 1.5
		case 4:
			payload = int64(i)
		case 5:
			payload = map[string]any{"sku": int64(7), "dims": []any{int64(2), 0.5}}
		}
		_, err := idx.Add(w, payload)
		require.NoError(t, err)
	}
	_, err := idx.Add("ctrl\x0e\x1e\x0fkey", map[string]any{"note": "sep\x1ein payload"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, idx))
	data := buf.Bytes()

	back, err := Decode(bytes.NewReader(data), WithSplitWidth(3))
	require.NoError(t, err)

	assert.Equal(t, idx.Len(), back.Len())
	assert.Equal(t, idx.Lengths(), back.Lengths())
	assert.ElementsMatch(t, pairsOf(idx), pairsOf(back))
	assert.Equal(t, idx.Stats(), back.Stats())
	for _, l := range idx.Lengths() {
		assert.Equal(t, idx.Root(l).Profile().String(), back.Root(l).Profile().String())
	}

	// the cluster shape survives, so a second encoding is identical
	again, err := back.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, data, again)

	for _, q := range []string{"house", "ctrl", "a", "zebra", "misspelt"} {
		want := idx.Nearest(q, 25)
		got := back.Nearest(q, 25)
		require.Len(t, got, len(want))
		for i := range want {
			assert.Equal(t, want[i].Hint.Key, got[i].Hint.Key, q)
			assert.Equal(t, want[i].Cost, got[i].Cost, q)
		}
	}
}

func TestCodecKeepsIntegerPayloads(t *testing.T) {
	idx := New()
	_, err := idx.Add("bolt", map[string]any{"sku": int8(7)})
	require.NoError(t, err)
	_, err = idx.Add("nuts", int64(9007199254740993))
	require.NoError(t, err)
	_, err = idx.Add("huge", uint64(18446744073709551615))
	require.NoError(t, err)
	_, err = idx.Add("half", 2.5)
	require.NoError(t, err)
	_, err = idx.Add("exp", 1e21)
	require.NoError(t, err)

	data, err := idx.MarshalText()
	require.NoError(t, err)
	back, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)

	testCases := []struct {
		key         string
		want        any
		description string
	}{
		{"bolt", map[string]any{"sku": int64(7)}, "small int inside an object"},
		{"nuts", int64(9007199254740993), "int above 2^53"},
		{"huge", uint64(18446744073709551615), "uint above int64"},
		{"half", 2.5, "fraction"},
		{"exp", 1e21, "exponent"},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			got := back.Get(tc.key)
			require.Len(t, got, 1)
			assert.Equal(t, tc.want, got[0].Payload)
		})
	}
}

func TestCodecEmptyIndex(t *testing.T) {
	data, err := New().MarshalText()
	require.NoError(t, err)
	assert.Equal(t, []byte{shiftIn, shiftOut}, data)

	idx, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Zero(t, idx.Len())
}

func TestCodecLayout(t *testing.T) {
	idx := buildIndex(t, []string{"cat", "hello"})
	_, err := idx.Add("dog", "pet")
	require.NoError(t, err)
	data, err := idx.MarshalText()
	require.NoError(t, err)

	want := "\x0f" +
		"\x0f" + `{"k":"cat"}` + "\x1e" + `{"k":"dog","p":"pet"}` + "\x1e" + "\x0e" +
		"\x0f" + `{"k":"hello"}` + "\x1e" + "\x0e" +
		"\x0e"
	assert.Equal(t, want, string(data))
}

func TestDecodeLegacyPlainStrings(t *testing.T) {
	// older models hold bare keys joined by RS, without a trailing RS
	data := "\x0f\x0fcat\x1ebat\x1ecar\x0e\x0f\x0fhello\x0e\x0fjello\x1e\x0e\x0e\x0e"
	idx, err := Decode(strings.NewReader(data), WithNormalizer(Lower))
	require.NoError(t, err)

	assert.Equal(t, 5, idx.Len())
	assert.Equal(t, []int{3, 5}, idx.Lengths())
	assert.False(t, idx.Root(5).IsLeaf())
	assert.Len(t, idx.Root(5).Children(), 2)
	for e := range idx.Entries() {
		assert.Nil(t, e.Payload)
	}

	top := idx.Nearest("CAT", 1)
	require.Len(t, top, 1)
	assert.Equal(t, "cat", top[0].Hint.Key)
	assert.Len(t, idx.Get("jello"), 1)
}

func TestDecodeMalformed(t *testing.T) {
	testCases := []struct {
		data        string
		description string
		length      bool
	}{
		{"", "empty input", false},
		{"x", "missing SI", false},
		{"\x0f", "missing top level SO", false},
		{"\x0fabc\x0e", "entry at top level", false},
		{"\x0f\x0f\x0e\x0e", "empty leaf", false},
		{"\x0f\x0fabc", "token without end", false},
		{"\x0f\x0fabc\x1e", "leaf without SO", false},
		{"\x0f\x0fabc\x1eab\x1e\x0e\x0e", "entry of another length", true},
		{"\x0f\x0f\x0fabc\x1e\x0e\x0fabcd\x1e\x0e\x0e\x0e", "child of another length", true},
		{"\x0f\x0fabc\x1e\x0fabd\x1e\x0e\x0e\x0e", "child after entry", false},
		{"\x0f\x0f\x0fabc\x1e\x0eabd\x1e\x0e\x0e", "entry after child", false},
		{"\x0f\x0fabc\x1e\x0e\x0fabd\x1e\x0e\x0e", "two roots of one length", false},
		{"\x0f\x0f{\"k\":1}\x1e\x0e\x0e", "non-string key", false},
		{"\x0f\x0f{\"k\":\"a\"\x1e\x0e\x0e", "broken JSON", false},
		{"\x0f\x0f{\"p\":\"x\"}\x1e\x0e\x0e", "token without key", false},
		{"\x0f\x0f\x1e\x0e\x0e", "empty key", false},
		{"\x0f\x0e\x0f\x0e", "data after top level", false},
		{"\x0f\x0fcat\x1ecat\x1e\x0e\x0e", "repeated key in one leaf", false},
		{"\x0f\x0f\x0fcat\x1e\x0e\x0f{\"k\":\"cat\",\"p\":1}\x1e\x0e\x0e\x0e", "repeated key in another leaf", false},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			idx, err := Decode(strings.NewReader(tc.data))
			require.Error(t, err)
			assert.Nil(t, idx)
			assert.True(t, errors.Is(err, ErrMalformed), "%v", err)
			assert.Equal(t, tc.length, errors.Is(err, ErrLengthMismatch), "%v", err)
			var derr *DecodeError
			assert.ErrorAs(t, err, &derr)
		})
	}
}

func TestDecodeAllowsTrailingNewline(t *testing.T) {
	idx, err := Decode(strings.NewReader("\x0f\x0fabc\x1e\x0e\x0e\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Len())
}

func TestUnmarshalTextKeepsIndexOnError(t *testing.T) {
	idx := NewCaseInsensitive()
	_, err := idx.Add("Keep", nil)
	require.NoError(t, err)

	err = idx.UnmarshalText([]byte("\x0f\x0f"))
	assert.True(t, errors.Is(err, ErrMalformed))
	assert.Equal(t, 1, idx.Len())

	require.NoError(t, idx.UnmarshalText([]byte("\x0f\x0fNew\x1eOld\x1e\x0e\x0e")))
	assert.Equal(t, 2, idx.Len())
	assert.Empty(t, idx.Get("keep"))
	// the normalizer carries over
	assert.Len(t, idx.Get("NEW"), 1)
}
