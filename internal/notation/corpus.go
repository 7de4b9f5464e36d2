package notation

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Corpus maps lower-cased dotted identifiers to notations. Keys are
// case-insensitive; each notation keeps its case-preserving CamelID.
type Corpus struct {
	entries map[string]Notation
}

// NewCorpus returns an empty corpus.
func NewCorpus() *Corpus {
	return &Corpus{entries: map[string]Notation{}}
}

// Key normalizes an identifier into a corpus key.
func Key(id string) string {
	return strings.ToLower(id)
}

// Get looks up id case-insensitively.
func (c *Corpus) Get(id string) (Notation, bool) {
	n, ok := c.entries[Key(id)]
	return n, ok
}

// Set stores n under id, replacing any earlier entry.
func (c *Corpus) Set(id string, n Notation) {
	c.entries[Key(id)] = n
}

// Add stores n under id. Functions accumulate: the signatures of n are
// appended to an existing function entry instead of replacing it.
func (c *Corpus) Add(id string, n Notation) {
	fn, ok := n.(*Function)
	if !ok {
		c.Set(id, n)
		return
	}
	if existing, ok := c.entries[Key(id)].(*Function); ok {
		existing.Signatures = append(existing.Signatures, fn.Signatures...)
		return
	}
	c.Set(id, &Function{Info: fn.Info, Signatures: append([]Signature(nil), fn.Signatures...)})
}

// Len returns the number of entries.
func (c *Corpus) Len() int {
	return len(c.entries)
}

// Keys returns every key in sorted order.
func (c *Corpus) Keys() []string {
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Each calls fn for every entry in key order.
func (c *Corpus) Each(fn func(key string, n Notation)) {
	for _, k := range c.Keys() {
		fn(k, c.entries[k])
	}
}

// MarshalJSON writes entries sorted by key so the output is byte-stable.
func (c *Corpus) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range c.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshal(k)
		if err != nil {
			return nil, err
		}
		value, err := MarshalNotation(c.entries[k])
		if err != nil {
			return nil, errors.Errorf("encode %q: %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (c *Corpus) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.entries = make(map[string]Notation, len(raw))
	for k, v := range raw {
		n, err := UnmarshalNotation(v)
		if err != nil {
			return errors.Errorf("decode %q: %w", k, err)
		}
		c.entries[Key(k)] = n
	}
	return nil
}
