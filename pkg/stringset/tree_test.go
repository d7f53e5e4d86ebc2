package stringset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpShowsClusters(t *testing.T) {
	idx := buildIndex(t, []string{"cat", "car", "hello"})

	var b strings.Builder
	require.NoError(t, idx.Dump(&b, true))
	out := b.String()

	assert.Contains(t, out, "TOP-LEVEL (3 entries)")
	assert.Contains(t, out, "[len=3]")
	assert.Contains(t, out, "([c][a][rt]) n=2 w=1.33")
	assert.Contains(t, out, "[len=5]")
	assert.Contains(t, out, "([h][e][l][l][o]) n=1 w=1.00")
	assert.Contains(t, out, "car")
	assert.Contains(t, out, "hello")

	b.Reset()
	require.NoError(t, idx.Dump(&b, false))
	assert.NotContains(t, b.String(), "hello")
	assert.Contains(t, b.String(), "n=2")
}
