package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	tgotel "github.com/taskgate/taskgate/internal/adapter/otel"
	"github.com/taskgate/taskgate/internal/adapter/ws"
	"github.com/taskgate/taskgate/internal/domain/gateway"
	"github.com/taskgate/taskgate/internal/port/boardclient"
	"github.com/taskgate/taskgate/internal/port/broadcast"
	"github.com/taskgate/taskgate/internal/port/messagequeue"
	"github.com/taskgate/taskgate/internal/port/trackerclient"
)

// defaultSyncPageSize caps how many board tasks one sync or preview run
// pulls from the board.
const defaultSyncPageSize = 100

// SyncRunner is the reconciliation routine the sync executor delegates to.
// The routine owns the create/update decisions against the tracker,
// performs the writes, and persists the outcome on the sync record.
type SyncRunner interface {
	Reconcile(ctx context.Context) *gateway.SyncResult
}

// SyncService exposes the dry-run preview and the production sync run.
// The queue, hub, and metrics dependencies are optional; a nil value
// disables that side effect. Lifecycle events reach WebSocket clients on
// exactly one path: through the queue (which the hub bridges) when one is
// wired, directly via the hub otherwise.
type SyncService struct {
	board    boardclient.Client
	tracker  trackerclient.Client
	runner   SyncRunner
	queue    messagequeue.Queue
	hub      broadcast.Broadcaster
	metrics  *tgotel.Metrics
	pageSize int
}

// NewSyncService creates a SyncService.
func NewSyncService(
	board boardclient.Client,
	tracker trackerclient.Client,
	runner SyncRunner,
	queue messagequeue.Queue,
	hub broadcast.Broadcaster,
	metrics *tgotel.Metrics,
	pageSize int,
) *SyncService {
	if pageSize <= 0 {
		pageSize = defaultSyncPageSize
	}
	return &SyncService{
		board:    board,
		tracker:  tracker,
		runner:   runner,
		queue:    queue,
		hub:      hub,
		metrics:  metrics,
		pageSize: pageSize,
	}
}

// RunSync executes one production sync through the injected runner and
// formats the outcome. Classification uses the result's Success flag
// alone: a successful run with a non-empty Errors slice is reported as a
// success carrying warnings, and a failed run is reported as a failure
// even when some items were created before it failed. RunSync never
// returns an error; every path produces an explicit outcome.
func (s *SyncService) RunSync(ctx context.Context, trigger string) *gateway.SyncOutcome {
	runID := uuid.New().String()
	ctx, span := tgotel.StartSyncSpan(ctx, runID, trigger, false)
	defer span.End()

	slog.Info("sync run started", "run_id", runID, "trigger", trigger)
	if s.metrics != nil {
		s.metrics.SyncsStarted.Add(ctx, 1, metric.WithAttributes(
			attribute.String("trigger", trigger),
		))
	}
	s.publish(ctx, messagequeue.SubjectSyncStarted, messagequeue.SyncStartedPayload{
		RunID:   runID,
		Trigger: trigger,
	})
	s.broadcastLocal(ctx, ws.EventSyncStarted, ws.SyncStartedEvent{
		RunID:   runID,
		Trigger: trigger,
	})

	result := s.runner.Reconcile(ctx)

	outcome := &gateway.SyncOutcome{RunID: runID, Result: *result}
	if result.Success {
		outcome.Status = gateway.SyncStatusSuccess
		outcome.Message = fmt.Sprintf("sync completed: %d created, %d updated, %d skipped",
			result.Created, result.Updated, result.Skipped)
		if len(result.Errors) > 0 {
			outcome.Message += fmt.Sprintf("; %d warnings: %s",
				len(result.Errors), strings.Join(result.Errors, "; "))
		}
	} else {
		outcome.Status = gateway.SyncStatusFailed
		outcome.Message = "sync failed: " + strings.Join(result.Errors, "; ")
		span.SetStatus(codes.Error, outcome.Message)
	}

	s.report(ctx, trigger, outcome)
	return outcome
}

// report records metrics and emits the completion events for an outcome.
func (s *SyncService) report(ctx context.Context, trigger string, outcome *gateway.SyncOutcome) {
	result := outcome.Result

	if s.metrics != nil {
		attrs := metric.WithAttributes(
			attribute.String("trigger", trigger),
			attribute.String("status", outcome.Status),
		)
		if result.Success {
			s.metrics.SyncsCompleted.Add(ctx, 1, attrs)
		} else {
			s.metrics.SyncsFailed.Add(ctx, 1, attrs)
		}
		s.metrics.ItemsCreated.Add(ctx, int64(result.Created), attrs)
		s.metrics.ItemsUpdated.Add(ctx, int64(result.Updated), attrs)
		s.metrics.ItemsSkipped.Add(ctx, int64(result.Skipped), attrs)
		s.metrics.SyncDuration.Record(ctx, float64(result.DurationMs)/1000, attrs)
	}

	if result.Success {
		s.publish(ctx, messagequeue.SubjectSyncCompleted, messagequeue.SyncCompletedPayload{
			RunID:      outcome.RunID,
			Status:     outcome.Status,
			Created:    result.Created,
			Updated:    result.Updated,
			Skipped:    result.Skipped,
			Errors:     result.Errors,
			DurationMs: result.DurationMs,
		})
		s.broadcastLocal(ctx, ws.EventSyncCompleted, ws.SyncCompletedEvent{
			RunID:      outcome.RunID,
			Status:     outcome.Status,
			Created:    result.Created,
			Updated:    result.Updated,
			Skipped:    result.Skipped,
			Errors:     result.Errors,
			DurationMs: result.DurationMs,
		})
		slog.Info("sync run completed", "run_id", outcome.RunID,
			"created", result.Created, "updated", result.Updated,
			"skipped", result.Skipped, "warnings", len(result.Errors))
		return
	}

	s.publish(ctx, messagequeue.SubjectSyncFailed, messagequeue.SyncFailedPayload{
		RunID:   outcome.RunID,
		Message: outcome.Message,
	})
	s.broadcastLocal(ctx, ws.EventSyncFailed, ws.SyncFailedEvent{
		RunID:   outcome.RunID,
		Message: outcome.Message,
	})
	slog.Error("sync run failed", "run_id", outcome.RunID, "message", outcome.Message)
}

// publish sends a payload to the queue, logging instead of failing when
// the queue is absent or down. Sync outcomes never depend on the queue.
func (s *SyncService) publish(ctx context.Context, subject string, payload any) {
	if s.queue == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal sync event", "subject", subject, "error", err)
		return
	}
	if err := s.queue.Publish(ctx, subject, data); err != nil {
		slog.Error("publish sync event", "subject", subject, "error", err)
	}
}

// broadcastLocal delivers an event straight to the WebSocket hub. It is a
// no-op when a queue is wired: the hub's queue bridge rebroadcasts the
// published subjects, so sending here too would deliver every event twice.
func (s *SyncService) broadcastLocal(ctx context.Context, eventType string, payload any) {
	if s.queue != nil || s.hub == nil {
		return
	}
	s.hub.BroadcastEvent(ctx, eventType, payload)
}
