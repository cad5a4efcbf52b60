// Package data is the in-memory mirror of every collection plus the
// optimistic mutation engine that keeps it and the backing store in step.
package data

import (
	"context"
	"sync"

	"inkhub/internal/domain/entity"
	"inkhub/internal/store"
)

// sameKey compares record keys. Keys that crossed a JSON boundary come back
// as float64, so the comparison is numeric, not by type.
func sameKey(a, b any) bool {
	return entity.SameKey(a, b)
}

// Collection mirrors one table in memory, newest record first. All local
// apply operations are idempotent so replayed change events converge
// instead of corrupting state. The lock is never held across a backend
// call.
type Collection[T entity.Record] struct {
	table   string
	keyCol  string
	backend store.Backend[T]

	mu    sync.RWMutex
	items []T
}

// NewCollection builds the mirror for a table.
func NewCollection[T entity.Record](table, keyCol string, backend store.Backend[T]) *Collection[T] {
	return &Collection[T]{table: table, keyCol: keyCol, backend: backend}
}

// Table returns the table name.
func (c *Collection[T]) Table() string { return c.table }

// Backend returns the persistence backend.
func (c *Collection[T]) Backend() store.Backend[T] { return c.backend }

// Load replaces the mirror with the backend's current contents.
func (c *Collection[T]) Load(ctx context.Context) error {
	items, err := c.backend.SelectAll(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.items = items
	c.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the mirrored records.
func (c *Collection[T]) Snapshot() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Get returns the record with the given key.
func (c *Collection[T]) Get(key any) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, item := range c.items {
		if sameKey(item.RecordID(), key) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Find returns a copy of the records matching the predicate.
func (c *Collection[T]) Find(match func(T) bool) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []T
	for _, item := range c.items {
		if match(item) {
			out = append(out, item)
		}
	}
	return out
}

// Len returns the current record count.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// InsertLocal prepends a record if no record with its key exists yet.
// Returns false when the record was already present.
func (c *Collection[T]) InsertLocal(rec T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := rec.RecordID()
	for _, item := range c.items {
		if sameKey(item.RecordID(), key) {
			return false
		}
	}

	c.items = append([]T{rec}, c.items...)
	return true
}

// WithoutKey returns the patch with the key column removed. The key is the
// record's identity and is never patchable; both backends refuse it, so the
// mirror must not apply it either. The input map is left untouched.
func (c *Collection[T]) WithoutKey(patch entity.Row) entity.Row {
	if _, ok := patch[c.keyCol]; !ok {
		return patch
	}
	out := make(entity.Row, len(patch))
	for k, v := range patch {
		if k != c.keyCol {
			out[k] = v
		}
	}
	return out
}

// UpdateLocal merges a patch into the record with the given key. A missing
// record is not an error; the reconciler may deliver updates for rows this
// replica never saw.
func (c *Collection[T]) UpdateLocal(key any, patch entity.Row) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	patch = c.WithoutKey(patch)
	for i := range c.items {
		if sameKey(c.items[i].RecordID(), key) {
			entity.ApplyPatch(&c.items[i], patch)
			return true
		}
	}
	return false
}

// DeleteLocal removes the record with the given key, tolerating absence.
func (c *Collection[T]) DeleteLocal(key any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if sameKey(c.items[i].RecordID(), key) {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

// applier lets the layer dispatch change events without knowing the
// concrete record type.
type applier interface {
	Apply(ev store.Event)
}

// Apply folds one change event into the mirror.
func (c *Collection[T]) Apply(ev store.Event) {
	key := ev.Row[c.keyCol]
	switch ev.Kind {
	case store.KindInsert:
		c.InsertLocal(entity.FromRow[T](ev.Row))
	case store.KindUpdate:
		c.UpdateLocal(key, ev.Row)
	case store.KindDelete:
		c.DeleteLocal(key)
	}
}
