package stringset

import (
	"slices"
	"strings"
)

// charset is the set of runes seen at one position.
type charset map[rune]struct{}

func (cs charset) has(r rune) bool {
	_, ok := cs[r]
	return ok
}

func (cs charset) sorted() []rune {
	out := make([]rune, 0, len(cs))
	for r := range cs {
		out = append(out, r)
	}
	slices.Sort(out)
	return out
}

// Profile holds one charset per key position. Its sets only grow.
type Profile []charset

func newProfile(length int) Profile {
	p := make(Profile, length)
	for i := range p {
		p[i] = make(charset)
	}
	return p
}

// Has reports whether r was seen at position pos.
func (p Profile) Has(pos int, r rune) bool {
	return p[pos].has(r)
}

// Width returns the average size of the position sets.
func (p Profile) Width() float64 {
	if len(p) == 0 {
		return 0
	}
	total := 0
	for _, cs := range p {
		total += len(cs)
	}
	return float64(total) / float64(len(p))
}

// String renders the profile as bracketed sets, e.g. "[bc][a][rt]".
func (p Profile) String() string {
	var b strings.Builder
	for _, cs := range p {
		b.WriteByte('[')
		for _, r := range cs.sorted() {
			b.WriteRune(r)
		}
		b.WriteByte(']')
	}
	return b.String()
}
