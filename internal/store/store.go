// Package store defines the persistence contract the data layer runs
// against. The primary backend is the hosted Postgres store; when it is
// unreachable at startup the local blob store takes over.
package store

import (
	"context"

	"inkhub/internal/domain/entity"
)

// Kind classifies a change event, matching the values emitted by the
// database notification triggers.
type Kind string

const (
	KindInsert Kind = "INSERT"
	KindUpdate Kind = "UPDATE"
	KindDelete Kind = "DELETE"
)

// Event is a single change observed on a table. For deletes Row carries
// only the key column.
type Event struct {
	Table string     `json:"table"`
	Kind  Kind       `json:"kind"`
	Row   entity.Row `json:"row"`
}

// Backend persists one collection of records. Implementations must be safe
// for concurrent use.
type Backend[T entity.Record] interface {
	// SelectAll returns every record in the collection.
	SelectAll(ctx context.Context) ([]T, error)
	// Insert persists a new record.
	Insert(ctx context.Context, rec T) error
	// Update applies a partial row to the record with the given key.
	Update(ctx context.Context, key any, patch entity.Row) error
	// Delete removes the record with the given key.
	Delete(ctx context.Context, key any) error
}

// Notifier streams change events from the backend. Only the Postgres store
// supports subscriptions; in local mode there is no second writer to hear
// from.
type Notifier interface {
	Subscribe(ctx context.Context) (<-chan Event, error)
}
