package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastiangx/nearword/pkg/stringset"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func run(t *testing.T, h *InputHandler, input string) string {
	t.Helper()
	var out bytes.Buffer
	h.SetOutput(&out)
	require.NoError(t, h.Start(strings.NewReader(input)))
	return out.String()
}

func newIndex(t *testing.T) *stringset.Index {
	t.Helper()
	idx := stringset.NewCaseInsensitive()
	for _, w := range []string{"cat", "car", "bat", "bar"} {
		_, err := idx.Add(w, "noun")
		require.NoError(t, err)
	}
	return idx
}

func TestInputHandlerLookup(t *testing.T) {
	out := run(t, NewInputHandler(newIndex(t), 2), "CAT\n\n")

	assert.Contains(t, out, "4 keys loaded")
	assert.Contains(t, out, `  0: cat 0.000 "noun"`)
	assert.Contains(t, out, `  1: car 1.000 "noun"`)
	assert.NotContains(t, out, "bat")
	assert.True(t, strings.HasSuffix(out, "Bye.\n"))
}

func TestInputHandlerMore(t *testing.T) {
	out := run(t, NewInputHandler(newIndex(t), 2), "cat\n:more\n:more\n")

	assert.Contains(t, out, "  2: bat 1.000")
	assert.Contains(t, out, "  3: bar 2.000")
	assert.Contains(t, out, "no more results")
}

func TestInputHandlerCommands(t *testing.T) {
	idx := newIndex(t)
	out := run(t, NewInputHandler(idx, 1), ":more\n+bolt\n+bolt\n:stats\nbolt")

	assert.Contains(t, out, "nothing to continue")
	assert.Contains(t, out, "added bolt")
	assert.Contains(t, out, "bolt is already known")
	assert.Contains(t, out, "5 entries, 2 lengths")
	assert.Contains(t, out, "  0: bolt 0.000\n")
	assert.Equal(t, 5, idx.Len())
}

func TestInputHandlerFilter(t *testing.T) {
	h := NewInputHandler(newIndex(t), 3)
	h.SetFilter(true)
	out := run(t, h, "1234\n")
	assert.Contains(t, out, "no results for '1234'")
}
