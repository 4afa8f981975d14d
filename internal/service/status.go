package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taskgate/taskgate/internal/domain"
	"github.com/taskgate/taskgate/internal/domain/gateway"
	"github.com/taskgate/taskgate/internal/port/boardclient"
	"github.com/taskgate/taskgate/internal/port/syncstore"
	"github.com/taskgate/taskgate/internal/port/trackerclient"
)

// StatusService assembles the gateway health report from the two external
// clients and the sync record store.
type StatusService struct {
	board   boardclient.Client
	tracker trackerclient.Client
	store   syncstore.Store
}

// NewStatusService creates a StatusService. All dependencies are optional;
// missing ones render as their degraded literals in the report.
func NewStatusService(board boardclient.Client, tracker trackerclient.Client, store syncstore.Store) *StatusService {
	return &StatusService{board: board, tracker: tracker, store: store}
}

// Report builds the health report. It never returns an error: each section
// is assembled independently and degrades to its fallback literal, so a
// dead database still yields breaker and rate-limit state.
func (s *StatusService) Report(ctx context.Context) gateway.HealthReport {
	return gateway.HealthReport{
		Source: s.sourceHealth(),
		Mirror: s.mirrorHealth(),
		Sync:   s.syncHealth(ctx),
	}
}

func (s *StatusService) sourceHealth() gateway.SourceHealth {
	if s.board == nil {
		return gateway.SourceHealth{Circuit: gateway.NotConfigured}
	}
	cb := s.board.CircuitState()
	return gateway.SourceHealth{
		Configured: true,
		Circuit:    cb.Status,
		Failures:   cb.Failures,
	}
}

func (s *StatusService) mirrorHealth() gateway.MirrorHealth {
	if s.tracker == nil {
		return gateway.MirrorHealth{RateLimit: gateway.NotConfigured}
	}
	health := gateway.MirrorHealth{
		Configured: true,
		RateLimit:  gateway.RateLimitConfigured,
	}
	if rl := s.tracker.RateLimit(); rl != nil {
		health.RateLimit = fmt.Sprintf("%d remaining", rl.Remaining)
	}
	return health
}

func (s *StatusService) syncHealth(ctx context.Context) gateway.SyncHealth {
	if s.store == nil {
		return gateway.SyncHealth{Detail: gateway.DatabaseUnavailable}
	}
	rec, err := s.store.FindSyncRecord(ctx, gateway.SourceID)
	if errors.Is(err, domain.ErrNotFound) {
		return gateway.SyncHealth{Available: true, LastSuccessfulSync: gateway.SyncNever}
	}
	if err != nil {
		slog.Error("read sync record", "error", err)
		return gateway.SyncHealth{Detail: gateway.DatabaseUnavailable}
	}

	health := gateway.SyncHealth{
		Available:          true,
		LastSuccessfulSync: gateway.SyncNever,
		ItemsSynced:        rec.ItemsSynced,
		LastError:          rec.ErrorMessage,
	}
	if rec.LastSuccessfulSync != nil {
		health.LastSuccessfulSync = rec.LastSuccessfulSync.UTC().Format(time.RFC3339)
	}
	return health
}
