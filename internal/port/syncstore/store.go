// Package syncstore defines the persistence port for sync run records.
package syncstore

import (
	"context"
	"time"

	"github.com/taskgate/taskgate/internal/domain/gateway"
)

// Store is the port interface for sync record persistence.
type Store interface {
	// FindSyncRecord returns the record for the given source,
	// or domain.ErrNotFound when no run has been recorded yet.
	FindSyncRecord(ctx context.Context, source string) (*gateway.SyncRecord, error)

	// RecordSuccess upserts the record for source with the completion
	// time and item count of a successful run.
	RecordSuccess(ctx context.Context, source string, at time.Time, itemsSynced int) error

	// RecordFailure upserts only the error message for source, leaving
	// the last successful sync timestamp untouched.
	RecordFailure(ctx context.Context, source, message string) error

	// Ping reports whether the database is reachable.
	Ping(ctx context.Context) error
}
