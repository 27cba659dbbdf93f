// Copyright 2026 The Kiosk Authors
// SPDX-License-Identifier: Apache-2.0

package resource

import "sync"

// Table maps resource ids to live values with ownership-scoped
// lifetimes. The table itself never keeps a resource alive: each
// Register returns a Handle owning one reference, and the entry is
// pruned when the last handle closes. A lookup after that prune
// behaves exactly like a lookup for an id that was never registered.
//
// Identity is content-derived, so two registrations can race on the
// same id. That race is benign: the entry's reference count absorbs
// both, and the id stays resolvable until both handles are closed.
//
// Safe for concurrent use. Lookups take a read lock only.
type Table[T any] struct {
	mu      sync.RWMutex
	entries map[string]*tableEntry[T]
}

type tableEntry[T any] struct {
	value T
	refs  int
}

// NewTable returns an empty table.
func NewTable[T any]() *Table[T] {
	return &Table[T]{entries: make(map[string]*tableEntry[T])}
}

// Register inserts value under id, or adds a reference when the id is
// already present. Re-registration replaces the stored value; with
// content-derived ids the replacement is observationally identical.
func (t *Table[T]) Register(id string, value T) *Handle[T] {
	t.mu.Lock()
	defer t.mu.Unlock()

	if entry, ok := t.entries[id]; ok {
		entry.refs++
		entry.value = value
	} else {
		t.entries[id] = &tableEntry[T]{value: value, refs: 1}
	}
	return &Handle[T]{table: t, id: id}
}

// Lookup returns the value registered under id. The second result is
// false when the id is unknown or every handle for it has closed.
func (t *Table[T]) Lookup(id string) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	entry, ok := t.entries[id]
	if !ok {
		var zero T
		return zero, false
	}
	return entry.value, true
}

// Len reports the number of live entries.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Handle is one owner's claim on a table entry. Dropping the claim is
// explicit: Close releases the reference, and the entry disappears
// when the last handle for its id closes.
type Handle[T any] struct {
	table *Table[T]
	id    string
	once  sync.Once
}

// ID returns the id the handle was registered under.
func (h *Handle[T]) ID() string {
	return h.id
}

// Close releases this handle's reference. Idempotent; always nil.
func (h *Handle[T]) Close() error {
	h.once.Do(func() {
		h.table.mu.Lock()
		defer h.table.mu.Unlock()

		entry, ok := h.table.entries[h.id]
		if !ok {
			return
		}
		entry.refs--
		if entry.refs <= 0 {
			delete(h.table.entries, h.id)
		}
	})
	return nil
}
