/*
Package index implements name registries used to resolve references between
records.

Two independent registries take part in every store: the authoring one is
filled whenever a value is constructed and is consulted when a reference is
serialized; the parse-scoped one is filled by a decoding pass and consulted
when a reference read from a file is resolved. Neither is global: a Registry
is an explicit object handed to constructors and decoders.

A parse-scoped registry is never cleared automatically. The caller MUST call
Reset once a full load has completed, otherwise names from a previous file
stay resolvable and may silently collide with names of the next one.
*/
package index

import (
	"sync"
)

// Registry maps names to entities of type T. Zero value is not usable, use
// New. All methods are safe for concurrent use.
type Registry[T any] struct {
	mtx   sync.RWMutex
	items map[string]T
}

// New returns an empty Registry.
func New[T any]() *Registry[T] {
	return &Registry[T]{
		items: make(map[string]T),
	}
}

// Put registers v under name replacing any previous entity with that name.
func (r *Registry[T]) Put(name string, v T) {
	r.mtx.Lock()
	r.items[name] = v
	r.mtx.Unlock()
}

// Get returns the entity registered under name.
func (r *Registry[T]) Get(name string) (T, bool) {
	r.mtx.RLock()
	v, ok := r.items[name]
	r.mtx.RUnlock()
	return v, ok
}

// Len returns the number of registered names.
func (r *Registry[T]) Len() int {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	return len(r.items)
}

// Names returns registered names in no particular order.
func (r *Registry[T]) Names() []string {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	res := make([]string, 0, len(r.items))
	for name := range r.items {
		res = append(res, name)
	}
	return res
}

// Delete drops the name from the registry.
func (r *Registry[T]) Delete(name string) {
	r.mtx.Lock()
	delete(r.items, name)
	r.mtx.Unlock()
}

// Reset drops all registered names.
func (r *Registry[T]) Reset() {
	r.mtx.Lock()
	r.items = make(map[string]T)
	r.mtx.Unlock()
}
