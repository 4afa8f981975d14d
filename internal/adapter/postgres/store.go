package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskgate/taskgate/internal/domain"
	"github.com/taskgate/taskgate/internal/domain/gateway"
)

// Store implements syncstore.Store using PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) FindSyncRecord(ctx context.Context, source string) (*gateway.SyncRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT source, last_successful_sync, items_synced, error_message
		 FROM sync_records WHERE source = $1`, source)

	var rec gateway.SyncRecord
	err := row.Scan(&rec.Source, &rec.LastSuccessfulSync, &rec.ItemsSynced, &rec.ErrorMessage)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("find sync record %s: %w", source, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("find sync record %s: %w", source, err)
	}
	return &rec, nil
}

func (s *Store) RecordSuccess(ctx context.Context, source string, at time.Time, itemsSynced int) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO sync_records (source, last_successful_sync, items_synced, error_message, updated_at)
		 VALUES ($1, $2, $3, '', now())
		 ON CONFLICT (source) DO UPDATE SET
		   last_successful_sync = EXCLUDED.last_successful_sync,
		   items_synced = EXCLUDED.items_synced,
		   error_message = '',
		   updated_at = now()`,
		source, at, itemsSynced)
	if err != nil {
		return fmt.Errorf("record sync success %s: %w", source, err)
	}
	return nil
}

func (s *Store) RecordFailure(ctx context.Context, source, message string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO sync_records (source, error_message, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (source) DO UPDATE SET
		   error_message = EXCLUDED.error_message,
		   updated_at = now()`,
		source, message)
	if err != nil {
		return fmt.Errorf("record sync failure %s: %w", source, err)
	}
	return nil
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
