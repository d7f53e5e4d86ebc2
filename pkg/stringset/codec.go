package stringset

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Control bytes of the persisted format.
const (
	shiftIn   = 0x0f // opens a node
	shiftOut  = 0x0e // closes a node
	recordSep = 0x1e // ends an entry token
)

const (
	keyField       = "k"
	payloadField   = "p"
	emptyJSONToken = "{}"
)

// Encode writes idx in the persisted format.
func Encode(w io.Writer, idx *Index) error {
	bw := bufio.NewWriter(w)
	if err := bw.WriteByte(shiftIn); err != nil {
		return err
	}
	for _, l := range idx.lengths {
		if err := encodeCluster(bw, idx.roots[l]); err != nil {
			return err
		}
	}
	if err := bw.WriteByte(shiftOut); err != nil {
		return err
	}
	return bw.Flush()
}

func encodeCluster(w *bufio.Writer, c *Cluster) error {
	if err := w.WriteByte(shiftIn); err != nil {
		return err
	}
	for _, e := range c.leaf {
		tok, err := encodeToken(e)
		if err != nil {
			return fmt.Errorf("encode entry %q: %w", e.Key, err)
		}
		if _, err := w.WriteString(tok); err != nil {
			return err
		}
		if err := w.WriteByte(recordSep); err != nil {
			return err
		}
	}
	for _, child := range c.children {
		if err := encodeCluster(w, child); err != nil {
			return err
		}
	}
	return w.WriteByte(shiftOut)
}

// encodeToken renders an entry as a JSON object. JSON escapes every control
// character, so a token never contains one of the format's control bytes.
func encodeToken(e *Entry) (string, error) {
	tok, err := sjson.Set(emptyJSONToken, keyField, e.Key)
	if err != nil {
		return "", err
	}
	if e.Payload == nil {
		return tok, nil
	}
	return sjson.Set(tok, payloadField, e.Payload)
}

// MarshalText encodes the index in the persisted format.
func (idx *Index) MarshalText() ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, idx); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalText replaces the contents of idx with the decoded data. The
// index keeps its normalizer and split width. On error idx is unchanged.
func (idx *Index) UnmarshalText(data []byte) error {
	fresh := New(WithNormalizer(idx.normalize), WithSplitWidth(idx.splitWidth))
	if err := fresh.decode(data); err != nil {
		return err
	}
	*idx = *fresh
	return nil
}

// Decode reads an index in the persisted format. Either the whole input
// decodes or an error wrapping ErrMalformed is returned.
func Decode(r io.Reader, opts ...Option) (*Index, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	idx := New(opts...)
	if err := idx.decode(data); err != nil {
		return nil, err
	}
	return idx, nil
}

type decoder struct {
	idx  *Index
	data []byte
	pos  int
}

func (d *decoder) fail(msg string, err error) error {
	return &DecodeError{Pos: d.pos, Msg: msg, Err: err}
}

func (idx *Index) decode(data []byte) error {
	d := &decoder{idx: idx, data: data}
	if d.pos >= len(d.data) || d.data[d.pos] != shiftIn {
		return d.fail("SI expected", nil)
	}
	d.pos++
	for {
		if d.pos >= len(d.data) {
			return d.fail("SO expected", nil)
		}
		switch d.data[d.pos] {
		case shiftOut:
			d.pos++
			if rest := bytes.TrimSpace(d.data[d.pos:]); len(rest) > 0 {
				return d.fail("unexpected data after top level", nil)
			}
			log.Debug("decoded string set", "entries", idx.entries, "lengths", len(idx.lengths), "bytes", len(data))
			return nil
		case shiftIn:
			start := d.pos
			c, err := d.cluster()
			if err != nil {
				return err
			}
			if _, dup := idx.roots[c.length]; dup {
				d.pos = start
				return d.fail(fmt.Sprintf("second root for length %d", c.length), nil)
			}
			idx.setRoot(c)
			idx.entries += c.entries
		default:
			return d.fail("SI or SO expected", nil)
		}
	}
}

// cluster decodes one node. Its length is taken from the first child and
// every later child must match it.
func (d *decoder) cluster() (*Cluster, error) {
	d.pos++ // SI
	var c *Cluster
	for {
		if d.pos >= len(d.data) {
			return nil, d.fail("SO expected", nil)
		}
		switch d.data[d.pos] {
		case shiftOut:
			if c == nil {
				return nil, d.fail("empty node", nil)
			}
			d.pos++
			return c, nil
		case shiftIn:
			start := d.pos
			child, err := d.cluster()
			if err != nil {
				return nil, err
			}
			if c == nil {
				c = NewCluster(child.length, d.idx.splitWidth)
			}
			if err := c.AddChild(child); err != nil {
				d.pos = start
				return nil, d.fail("child cluster does not fit", err)
			}
		default:
			start := d.pos
			e, err := d.entry()
			if err != nil {
				return nil, err
			}
			if c == nil {
				c = NewCluster(e.Len(), d.idx.splitWidth)
			}
			if !c.IsLeaf() {
				d.pos = start
				return nil, d.fail("entry mixed with child clusters", nil)
			}
			if e.Len() != c.length {
				d.pos = start
				return nil, d.fail("entry does not fit", &LengthError{Key: e.Key, Want: c.length, Got: e.Len()})
			}
			if d.idx.contains(e) {
				d.pos = start
				return nil, d.fail(fmt.Sprintf("duplicate entry %q", e.Key), nil)
			}
			c.appendLeaf(e)
			d.idx.remember(e)
		}
	}
}

// entry decodes a token ending at RS (consumed) or SO (left in place).
func (d *decoder) entry() (*Entry, error) {
	end := bytes.IndexAny(d.data[d.pos:], "\x0e\x1e")
	if end < 0 {
		return nil, d.fail("missing SO or RS", nil)
	}
	tok := d.data[d.pos : d.pos+end]
	key, payload, err := decodeToken(tok)
	if err != nil {
		return nil, d.fail("bad entry token", err)
	}
	e := newEntry(key, payload, d.idx.normalize)
	if e.Len() == 0 {
		return nil, d.fail("empty key", ErrEmptyKey)
	}
	d.pos += end
	if d.data[d.pos] == recordSep {
		d.pos++
	}
	return e, nil
}

// decodeToken accepts a JSON object token or, for data written by older
// versions, a bare key.
func decodeToken(tok []byte) (string, any, error) {
	if len(tok) == 0 || tok[0] != '{' {
		return string(tok), nil, nil
	}
	if !gjson.ValidBytes(tok) {
		return "", nil, fmt.Errorf("invalid JSON token %q", tok)
	}
	k := gjson.GetBytes(tok, keyField)
	if k.Type != gjson.String {
		return "", nil, fmt.Errorf("token %q has no string %q field", tok, keyField)
	}
	var payload any
	if p := gjson.GetBytes(tok, payloadField); p.Exists() {
		payload = jsonValue(p)
	}
	return k.String(), payload, nil
}

// jsonValue is gjson's Value with integral numbers kept as int64 (uint64
// above its range), so integer payloads come back with their type and value.
func jsonValue(r gjson.Result) any {
	switch {
	case r.Type == gjson.Number:
		if !strings.ContainsAny(r.Raw, ".eE") {
			if n, err := strconv.ParseInt(r.Raw, 10, 64); err == nil {
				return n
			}
			if n, err := strconv.ParseUint(r.Raw, 10, 64); err == nil {
				return n
			}
		}
		return r.Float()
	case r.IsObject():
		m := make(map[string]any)
		r.ForEach(func(key, value gjson.Result) bool {
			m[key.String()] = jsonValue(value)
			return true
		})
		return m
	case r.IsArray():
		items := r.Array()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = jsonValue(item)
		}
		return out
	}
	return r.Value()
}
