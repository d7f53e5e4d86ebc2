package stringset

import (
	"errors"
	"fmt"
)

var (
	// ErrLengthMismatch is returned when a key does not fit the length of a cluster.
	ErrLengthMismatch = errors.New("key length does not match cluster length")
	// ErrEmptyKey is returned for keys that normalize to the empty string.
	ErrEmptyKey = errors.New("empty key")
	// ErrMalformed is returned by Decode for any structural violation.
	ErrMalformed = errors.New("malformed string set data")
)

// LengthError reports a key whose length disagrees with its target cluster.
type LengthError struct {
	Key  string
	Want int
	Got  int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("length of %q is %d, cluster length is %d", e.Key, e.Got, e.Want)
}

func (e *LengthError) Unwrap() error { return ErrLengthMismatch }

// DecodeError locates a decoding failure in the input.
type DecodeError struct {
	Pos int
	Msg string
	Err error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed data at %d: %s: %v", e.Pos, e.Msg, e.Err)
	}
	return fmt.Sprintf("malformed data at %d: %s", e.Pos, e.Msg)
}

func (e *DecodeError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrMalformed, e.Err}
	}
	return []error{ErrMalformed}
}
