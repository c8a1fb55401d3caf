// Package registry tracks the identity of bridged objects.
//
// A Registry assigns process-unique identifiers and resolves them back to
// live objects. It holds weak references only: registration never extends
// an object's lifetime. Identifiers are issued from a monotonically
// increasing counter and are never reused, so a stale notification can
// never resolve to a newer object.
//
// A Registry is confined to the bridge's single logical thread and performs
// no locking.
package registry

import (
	"errors"
	"fmt"
	"strconv"
	"weak"
)

// ErrDuplicateID is returned when registering an identifier that is live.
var ErrDuplicateID = errors.New("registry: identifier already registered")

// Prefix starts every generated identifier.
const Prefix = "$"

// Registry maps identifiers to objects of type T.
type Registry[T any] struct {
	entries map[string]weak.Pointer[T]
	issued  map[string]struct{}
	nextID  int64
}

// New creates an empty registry.
func New[T any]() *Registry[T] {
	return &Registry[T]{
		entries: make(map[string]weak.Pointer[T]),
		issued:  make(map[string]struct{}),
	}
}

// Register allocates a fresh identifier for obj and returns it.
func (r *Registry[T]) Register(obj *T) string {
	for {
		r.nextID++
		id := Prefix + strconv.FormatInt(r.nextID, 10)
		if _, taken := r.issued[id]; taken {
			continue
		}
		r.insert(id, obj)
		return id
	}
}

// RegisterID registers obj under a caller-chosen identifier, as used when
// wrapping objects the native side created itself. Identifiers that were
// ever issued before are rejected.
func (r *Registry[T]) RegisterID(id string, obj *T) error {
	if id == "" {
		return fmt.Errorf("registry: empty identifier")
	}
	if _, taken := r.issued[id]; taken {
		return fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	r.insert(id, obj)
	return nil
}

func (r *Registry[T]) insert(id string, obj *T) {
	r.entries[id] = weak.Make(obj)
	r.issued[id] = struct{}{}
}

// Find returns the live object registered under id, or nil. Entries whose
// object has been garbage collected are pruned.
func (r *Registry[T]) Find(id string) *T {
	ptr, ok := r.entries[id]
	if !ok {
		return nil
	}
	obj := ptr.Value()
	if obj == nil {
		delete(r.entries, id)
	}
	return obj
}

// Remove deregisters id. Removing an absent identifier is a no-op.
func (r *Registry[T]) Remove(id string) {
	delete(r.entries, id)
}

// Len returns the number of registered entries, including any whose
// object was collected but not yet pruned.
func (r *Registry[T]) Len() int {
	return len(r.entries)
}

// IDs returns the identifiers of all live entries.
func (r *Registry[T]) IDs() []string {
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		if r.Find(id) != nil {
			ids = append(ids, id)
		}
	}
	return ids
}
