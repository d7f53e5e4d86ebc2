// Package dictionary reads word lists into a string set.
package dictionary

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tidwall/gjson"

	"github.com/bastiangx/nearword/pkg/stringset"
)

// maxLineSize bounds a single word list line.
const maxLineSize = 1 << 20

// wordDef matches "word (classes)" lines.
var wordDef = regexp.MustCompile(`^(?P<word>.*) \((?P<classes>.*)\)$`)

// TrainStats provides statistics about a training run
type TrainStats struct {
	Lines      int
	Added      int
	Duplicates int
	Skipped    int
	Duration   time.Duration
}

// Line is a parsed word list line.
type Line struct {
	Word    string
	Payload any
}

// ParseLine splits a word list line into its word and payload.
// It returns false for blank lines and comments.
//
// Three shapes are understood:
//
//	word (classes)      payload is the classes string
//	word<TAB>json       payload is the decoded JSON value, or the raw text
//	word                no payload
func ParseLine(line string) (Line, bool) {
	line = strings.TrimRight(line, "\r\n")
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return Line{}, false
	}

	if word, rest, ok := strings.Cut(line, "\t"); ok {
		rest = strings.TrimSpace(rest)
		var payload any
		switch {
		case rest == "":
		case gjson.Valid(rest):
			payload = gjson.Parse(rest).Value()
		default:
			payload = rest
		}
		return Line{Word: strings.TrimSpace(word), Payload: payload}, true
	}

	if m := wordDef.FindStringSubmatch(line); m != nil {
		return Line{
			Word:    strings.TrimSpace(m[wordDef.SubexpIndex("word")]),
			Payload: m[wordDef.SubexpIndex("classes")],
		}, true
	}
	return Line{Word: trimmed}, true
}

// Train adds every word of r to idx.
// Lines whose word is rejected by the index are counted as skipped; only
// read errors abort the run.
func Train(r io.Reader, idx *stringset.Index) (TrainStats, error) {
	start := time.Now()
	var stats TrainStats

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		stats.Lines++
		l, ok := ParseLine(scanner.Text())
		if !ok {
			continue
		}
		added, err := idx.Add(l.Word, l.Payload)
		switch {
		case errors.Is(err, stringset.ErrEmptyKey):
			log.Debugf("Skipping line %d: empty word", stats.Lines)
			stats.Skipped++
		case err != nil:
			log.Warnf("Skipping line %d: %v", stats.Lines, err)
			stats.Skipped++
		case added:
			stats.Added++
		default:
			stats.Duplicates++
		}
	}
	stats.Duration = time.Since(start)
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("failed to read word list at line %d: %w", stats.Lines+1, err)
	}

	log.Debugf("Trained %d words from %d lines (%d duplicates, %d skipped) in %v",
		stats.Added, stats.Lines, stats.Duplicates, stats.Skipped, stats.Duration)
	return stats, nil
}

// TrainFile opens path and trains idx from it.
func TrainFile(path string, idx *stringset.Index) (TrainStats, error) {
	file, err := os.Open(path)
	if err != nil {
		return TrainStats{}, fmt.Errorf("failed to open word list %s: %w", path, err)
	}
	defer file.Close()

	stats, err := Train(file, idx)
	if err != nil {
		return stats, fmt.Errorf("%s: %w", path, err)
	}
	return stats, nil
}
