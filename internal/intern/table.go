// Package intern provides weakly referenced intern tables.
//
// A Table hands out one shared instance per key for as long as anything
// outside the table still references it. Once the last strong reference is
// dropped the garbage collector may reclaim the instance, and the table entry
// is removed by a cleanup registered at creation time. A later request for the
// same key then builds a fresh instance.
package intern

import (
	"runtime"
	"sync"
	"weak"
)

// Table interns *V values by key K.
//
// Thread-safety: all methods are safe for concurrent use. Creation happens
// under the table lock, so two callers racing on the same key always observe
// the same instance.
type Table[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]weak.Pointer[V]
}

type entry[K comparable, V any] struct {
	key K
	ptr weak.Pointer[V]
}

// NewTable creates an empty table.
func NewTable[K comparable, V any]() *Table[K, V] {
	return &Table[K, V]{entries: make(map[K]weak.Pointer[V])}
}

// GetOrCreate returns the live instance for key. When none is alive, create
// is called and its result is stored. If create fails the table is left
// unchanged and the error is returned.
func (t *Table[K, V]) GetOrCreate(key K, create func() (*V, error)) (*V, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if wp, ok := t.entries[key]; ok {
		if v := wp.Value(); v != nil {
			return v, nil
		}
	}

	v, err := create()
	if err != nil {
		return nil, err
	}

	wp := weak.Make(v)
	t.entries[key] = wp
	runtime.AddCleanup(v, t.evict, entry[K, V]{key: key, ptr: wp})
	return v, nil
}

// Get returns the live instance for key, if any.
func (t *Table[K, V]) Get(key K) (*V, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	wp, ok := t.entries[key]
	if !ok {
		return nil, false
	}
	v := wp.Value()
	return v, v != nil
}

// Len reports the number of entries, including entries whose value has been
// collected but whose cleanup has not run yet.
func (t *Table[K, V]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// evict drops the entry for a collected instance. A newer instance stored
// under the same key is left alone.
func (t *Table[K, V]) evict(e entry[K, V]) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if cur, ok := t.entries[e.key]; ok && cur == e.ptr {
		delete(t.entries, e.key)
	}
}
