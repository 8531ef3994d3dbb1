package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"time"

	"github.com/kbukum/sitekit/errors"
)

// Pair is one key/value entry used to build Metadata.
type Pair struct {
	Key   string
	Value Value
}

// KV builds a Pair, inferring the Value kind of plain Go values.
func KV(key string, v any) Pair {
	return Pair{Key: key, Value: ValueOf(v)}
}

// Metadata is an immutable, insertion-ordered mapping of case-sensitive
// keys to values. A nil *Metadata behaves as empty.
type Metadata struct {
	keys   []string
	values map[string]Value
}

// NewMetadata builds Metadata from pairs. A repeated key keeps its first
// position and takes the last value.
func NewMetadata(pairs ...Pair) *Metadata {
	m := &Metadata{values: make(map[string]Value, len(pairs))}
	for _, p := range pairs {
		m.set(p.Key, p.Value)
	}
	return m
}

func (m *Metadata) set(key string, v Value) {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

func (m *Metadata) copy(extra int) *Metadata {
	out := &Metadata{
		keys:   make([]string, 0, m.Len()+extra),
		values: make(map[string]Value, m.Len()+extra),
	}
	if m != nil {
		out.keys = append(out.keys, m.keys...)
		for k, v := range m.values {
			out.values[k] = v
		}
	}
	return out
}

// Len returns the number of keys.
func (m *Metadata) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in order.
func (m *Metadata) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

// All iterates over entries in order.
func (m *Metadata) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if m == nil {
			return
		}
		for _, k := range m.keys {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}

// Get returns the value stored under key.
func (m *Metadata) Get(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m *Metadata) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// With returns a copy with key set to v.
func (m *Metadata) With(key string, v Value) *Metadata {
	out := m.copy(1)
	out.set(key, v)
	return out
}

// Merge returns a copy of m with overlay applied: existing keys are replaced
// in place, new keys are appended in overlay order.
func (m *Metadata) Merge(overlay *Metadata) *Metadata {
	out := m.copy(overlay.Len())
	for k, v := range overlay.All() {
		out.set(k, v)
	}
	return out
}

// MergeIfAbsent returns a copy of m with only those overlay keys that m does
// not already carry. Existing values always win.
func (m *Metadata) MergeIfAbsent(overlay *Metadata) *Metadata {
	out := m.copy(overlay.Len())
	for k, v := range overlay.All() {
		if !m.Has(k) {
			out.set(k, v)
		}
	}
	return out
}

// Equal reports whether both mappings hold the same keys in the same order
// with equal values.
func (m *Metadata) Equal(o *Metadata) bool {
	if m.Len() != o.Len() {
		return false
	}
	for i, k := range m.Keys() {
		if o.keys[i] != k {
			return false
		}
		if !m.values[k].Equal(o.values[k]) {
			return false
		}
	}
	return true
}

// GetString returns the string stored under key. ok is false when the key is
// missing or holds another kind.
func (m *Metadata) GetString(key string) (string, bool) {
	v, _ := m.Get(key)
	return v.AsString()
}

// GetInt returns the int stored under key.
func (m *Metadata) GetInt(key string) (int, bool) {
	v, _ := m.Get(key)
	return v.AsInt()
}

// GetBool returns the bool stored under key.
func (m *Metadata) GetBool(key string) (bool, bool) {
	v, _ := m.Get(key)
	return v.AsBool()
}

// GetTime returns the time stored under key.
func (m *Metadata) GetTime(key string) (time.Time, bool) {
	v, _ := m.Get(key)
	return v.AsTime()
}

// Get returns the value under key as T. A missing key is MISSING_FIELD; a
// value that is not a T is INVALID_FORMAT.
func Get[T any](m *Metadata, key string) (T, error) {
	var zero T
	v, ok := m.Get(key)
	if !ok {
		return zero, errors.MissingField(key)
	}
	out, ok := v.Interface().(T)
	if !ok {
		return zero, errors.InvalidFormat(key, fmt.Sprintf("%T", zero)).
			WithDetail("kind", v.Kind().String())
	}
	return out, nil
}

// MarshalJSON encodes the mapping as a JSON object preserving key order.
func (m *Metadata) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, fmt.Errorf("metadata key %q: %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
