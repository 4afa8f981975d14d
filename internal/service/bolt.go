package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/taskgate/taskgate/internal/domain/gateway"
)

// defaultBoltInterval is used when no interval is configured.
const defaultBoltInterval = 15 * time.Minute

// BoltRunner drives recurring syncs on a fixed interval. It is the one
// component that honors the orchestrator's pause flag: a paused
// orchestrator skips ticks, while manual and webhook syncs keep working.
type BoltRunner struct {
	orch     *Orchestrator
	sync     *SyncService
	gate     *Gate
	interval time.Duration
}

// NewBoltRunner creates a BoltRunner.
func NewBoltRunner(orch *Orchestrator, sync *SyncService, gate *Gate, interval time.Duration) *BoltRunner {
	if interval <= 0 {
		interval = defaultBoltInterval
	}
	return &BoltRunner{
		orch:     orch,
		sync:     sync,
		gate:     gate,
		interval: interval,
	}
}

// Start launches the periodic sync goroutine and returns a stop function.
// The goroutine also exits when ctx is cancelled.
func (b *BoltRunner) Start(ctx context.Context) func() {
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(b.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				b.tick(ctx)
			}
		}
	}()
	slog.Info("bolt loop started", "interval", b.interval)
	return cancel
}

// tick runs one scheduled sync unless the orchestrator is paused or the
// sync pair is not configured.
func (b *BoltRunner) tick(ctx context.Context) {
	if b.orch != nil && b.orch.Paused() {
		slog.Debug("bolt tick skipped", "reason", "paused")
		return
	}
	if b.gate != nil && !b.gate.SyncAvailable() {
		slog.Debug("bolt tick skipped", "reason", "sync unavailable")
		return
	}

	outcome := b.sync.RunSync(ctx, gateway.TriggerBolt)
	if outcome.Failed() {
		slog.Warn("bolt sync failed", "run_id", outcome.RunID, "message", outcome.Message)
		return
	}
	slog.Info("bolt sync completed", "run_id", outcome.RunID, "message", outcome.Message)
}
