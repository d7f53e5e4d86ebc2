// Package cli handles the interactive lookup loop used for debugging and exploring a model
package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"

	"github.com/bastiangx/nearword/internal/utils"
	"github.com/bastiangx/nearword/pkg/stringset"
)

const prompt = "Lookup> "

var keyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))

// InputHandler reads queries line by line and prints the closest keys.
//
// Besides plain queries it understands a few commands:
//
//	:more    print the next results of the previous query
//	:stats   print the shape of the tree
//	+word    add word to the index
//
// An empty line or EOF ends the loop.
type InputHandler struct {
	idx    *stringset.Index
	limit  int
	filter bool
	out    io.Writer
	cursor *stringset.Cursor
	shown  int
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(idx *stringset.Index, limit int) *InputHandler {
	if limit < 1 {
		limit = 10
	}
	return &InputHandler{
		idx:   idx,
		limit: limit,
		out:   os.Stdout,
	}
}

// SetFilter enables skipping queries that are only digits, symbols or a
// repeated character.
func (h *InputHandler) SetFilter(on bool) { h.filter = on }

// SetOutput redirects the results, stdout by default.
func (h *InputHandler) SetOutput(w io.Writer) { h.out = w }

// Start begins the interface loop.
// It continuously prompts for input, reads a line from r,
// and passes the trimmed input to handleInput() for processing.
func (h *InputHandler) Start(r io.Reader) error {
	fmt.Fprintf(h.out, "%s keys loaded. Empty line to exit.\n", humanize.Comma(int64(h.idx.Len())))
	reader := bufio.NewReader(r)

	for {
		fmt.Fprint(h.out, prompt)
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		query := strings.TrimSpace(line)
		if query == "" {
			fmt.Fprintln(h.out, "Bye.")
			return nil
		}
		h.handleInput(query)
		if err != nil {
			fmt.Fprintln(h.out)
			return nil
		}
	}
}

// handleInput dispatches a single line.
func (h *InputHandler) handleInput(line string) {
	switch {
	case line == ":more":
		if h.cursor == nil {
			fmt.Fprintln(h.out, "  nothing to continue")
			return
		}
		h.printNext()
	case line == ":stats":
		st := h.idx.Stats()
		fmt.Fprintf(h.out, "  %s entries, %d lengths, %s clusters, %s leaves, depth %d\n",
			humanize.Comma(int64(st.Entries)), st.Lengths,
			humanize.Comma(int64(st.Clusters)), humanize.Comma(int64(st.Leaves)), st.MaxDepth)
	case strings.HasPrefix(line, "+"):
		key := strings.TrimSpace(line[1:])
		added, err := h.idx.Add(key, nil)
		switch {
		case err != nil:
			fmt.Fprintf(h.out, "  cannot add %q: %v\n", key, err)
		case added:
			h.cursor = nil
			fmt.Fprintf(h.out, "  added %s\n", keyStyle.Render(key))
		default:
			fmt.Fprintf(h.out, "  %s is already known\n", keyStyle.Render(key))
		}
	default:
		if h.filter && !utils.IsValidInput(line) {
			log.Debugf("Filtered query: '%s'", line)
			fmt.Fprintf(h.out, "  no results for '%s'\n", line)
			h.cursor = nil
			return
		}
		h.cursor = h.idx.Lookup(line)
		h.shown = 0
		h.printNext()
	}
}

func (h *InputHandler) printNext() {
	start := time.Now()
	matches := h.cursor.Take(h.limit)
	log.Debugf("Took [ %v ] for %d matches, %d nodes pending", time.Since(start), len(matches), h.cursor.Pending())

	if len(matches) == 0 {
		fmt.Fprintln(h.out, "  no more results")
		h.cursor = nil
		return
	}
	for _, m := range matches {
		fmt.Fprintf(h.out, "  %d: %s %.3f%s\n", h.shown, keyStyle.Render(m.Hint.Key), m.Cost, payloadSuffix(m.Hint.Payload))
		h.shown++
	}
}

func payloadSuffix(payload any) string {
	if payload == nil {
		return ""
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf(" %v", payload)
	}
	return " " + string(data)
}
