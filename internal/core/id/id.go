// Package id provides client-generated numeric identifiers.
// Identifiers are derived from the current time in unix milliseconds, which
// keeps them naturally ordered by creation time and compatible with rows
// created by earlier exports of the system.
package id

import (
	"sync/atomic"
	"time"
)

// ID is the numeric identifier used by all entities except users.
type ID = int64

var last atomic.Int64

// New returns a fresh identifier. When two calls land on the same
// millisecond, the later one is bumped so identifiers stay unique and
// strictly increasing within the process.
func New() ID {
	for {
		now := time.Now().UnixMilli()
		prev := last.Load()
		if now <= prev {
			now = prev + 1
		}
		if last.CompareAndSwap(prev, now) {
			return now
		}
	}
}

// At returns the identifier a record created at t would have carried.
// Used by tests and the import utility for deterministic fixtures.
func At(t time.Time) ID {
	return t.UnixMilli()
}
