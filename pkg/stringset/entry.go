package stringset

import (
	"strings"

	"golang.org/x/text/cases"
)

// Normalizer maps a key or query into the domain distances are computed in.
// It is applied to every key and every query before any comparison.
type Normalizer func(string) string

// Identity leaves strings untouched.
func Identity(s string) string { return s }

// Lower maps strings to lower case.
func Lower(s string) string { return strings.ToLower(s) }

// Fold applies full Unicode case folding.
func Fold(s string) string { return cases.Fold().String(s) }

// NormalizerByName resolves the names accepted in config files.
func NormalizerByName(name string) (Normalizer, bool) {
	switch strings.ToLower(name) {
	case "", "none", "identity":
		return Identity, true
	case "lower":
		return Lower, true
	case "fold":
		return Fold, true
	}
	return nil, false
}

// Entry is an indexed key with an optional payload. Entries are never
// modified once created.
type Entry struct {
	Key     string
	Payload any

	norm []rune
}

func newEntry(key string, payload any, normalize Normalizer) *Entry {
	return &Entry{
		Key:     key,
		Payload: payload,
		norm:    []rune(normalize(key)),
	}
}

// Len returns the length of the normalized key in runes.
func (e *Entry) Len() int { return len(e.norm) }

// Normalized returns the key as it is compared.
func (e *Entry) Normalized() string { return string(e.norm) }

func (e *Entry) String() string { return e.Key }
