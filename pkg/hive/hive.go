// Package hive tracks which composite values are open on the active
// traversal path of one dump.
//
// Identity is address identity, never value equality: two distinct maps with
// equal contents are different identities, while a slice that contains its
// own header is the same identity as its parent. Entries follow a stack
// discipline: they are opened when the router enters a composite and closed
// when it returns, so sibling subtrees may each render the same object once
// the first has unwound.
//
// The one deliberate exception is [Hive.MarkPermanent], used for the global
// namespace container: after its first visit it stays open for the rest of
// the dump and every later encounter renders as a recursion marker.
package hive

import (
	"reflect"
)

// Identity is the address identity of a composite value.
type Identity struct {
	Type reflect.Type
	Ptr  uintptr
	Len  int
}

// Of returns the identity of v. Values without a stable address (scalars,
// unaddressable structs and arrays, nil references) have none.
func Of(v reflect.Value) (Identity, bool) {
	if !v.IsValid() {
		return Identity{}, false
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.UnsafePointer:
		if v.IsNil() {
			return Identity{}, false
		}
		return Identity{Type: v.Type(), Ptr: v.Pointer()}, true
	case reflect.Slice:
		if v.IsNil() || v.Pointer() == 0 {
			return Identity{}, false
		}
		return Identity{Type: v.Type(), Ptr: v.Pointer(), Len: v.Len()}, true
	case reflect.Struct, reflect.Array:
		if !v.CanAddr() {
			return Identity{}, false
		}
		return Identity{Type: v.Type(), Ptr: v.UnsafeAddr()}, true
	}
	return Identity{}, false
}

// Hive is the per-dump identity set. It is not safe for concurrent use.
type Hive struct {
	open      map[Identity]string
	permanent map[Identity]string
}

// New returns an empty hive.
func New() *Hive {
	return &Hive{
		open:      make(map[Identity]string),
		permanent: make(map[Identity]string),
	}
}

// IsOpen reports whether id is currently being traversed, or was marked
// permanent earlier in the dump.
func (h *Hive) IsOpen(id Identity) bool {
	if _, ok := h.permanent[id]; ok {
		return true
	}
	_, ok := h.open[id]
	return ok
}

// MarkOpen records that the router entered id, rendered under domID.
func (h *Hive) MarkOpen(id Identity, domID string) {
	h.open[id] = domID
}

// MarkClosed records that the router left id. Permanent entries stay open.
func (h *Hive) MarkClosed(id Identity) {
	delete(h.open, id)
}

// MarkPermanent keeps id open for the rest of the dump.
func (h *Hive) MarkPermanent(id Identity, domID string) {
	h.permanent[id] = domID
}

// DomID returns the DOM id recorded when id was opened.
func (h *Hive) DomID(id Identity) string {
	if d, ok := h.permanent[id]; ok {
		return d
	}
	return h.open[id]
}

// Len returns the number of open identities, permanent ones included.
func (h *Hive) Len() int {
	n := len(h.permanent)
	for id := range h.open {
		if _, ok := h.permanent[id]; !ok {
			n++
		}
	}
	return n
}
