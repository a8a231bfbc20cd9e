package model

import "slices"

// Meta is an insertion-ordered string map. The zero value is not usable; use
// [NewMeta]. A nil *Meta reads as empty.
type Meta struct {
	keys   []string
	values map[string]string
}

// NewMeta returns an empty Meta.
func NewMeta() *Meta {
	return &Meta{values: make(map[string]string)}
}

// Set stores value under key, keeping the original position of existing keys.
func (m *Meta) Set(key, value string) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored under key.
func (m *Meta) Get(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (m *Meta) Keys() []string {
	if m == nil {
		return nil
	}
	return slices.Clone(m.keys)
}

// Len returns the number of entries.
func (m *Meta) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Clone returns an independent copy.
func (m *Meta) Clone() *Meta {
	c := NewMeta()
	if m == nil {
		return c
	}
	for _, k := range m.keys {
		c.Set(k, m.values[k])
	}
	return c
}

// Well-known meta keys.
const (
	MetaLength   = "length"
	MetaRunes    = "runes"
	MetaCap      = "cap"
	MetaEncoding = "encoding"
	MetaFailure  = "failure"
	MetaReason   = "reason"
	MetaTarget   = "target"
	MetaValue    = "value"
	MetaOmitted  = "omitted"
	MetaAddress  = "address"
	MetaSource   = "source"

	MetaFunction  = "function"
	MetaSignature = "signature"
	MetaVariadic  = "variadic"
	MetaDirection = "direction"
	MetaElem      = "elem"
	MetaTruncated = "truncated"
)
