package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	tgotel "github.com/taskgate/taskgate/internal/adapter/otel"
	"github.com/taskgate/taskgate/internal/domain"
	"github.com/taskgate/taskgate/internal/domain/gateway"
	"github.com/taskgate/taskgate/internal/port/messagequeue"
)

// WebhookService processes inbound board webhooks: each task event is
// republished on the queue and kicks off a sync run in the background.
type WebhookService struct {
	sync  *SyncService
	queue messagequeue.Queue
}

// NewWebhookService creates a WebhookService. Both dependencies are
// optional; a nil sync service turns webhooks into republish-only.
func NewWebhookService(syncSvc *SyncService, queue messagequeue.Queue) *WebhookService {
	return &WebhookService{sync: syncSvc, queue: queue}
}

// HandleBoardEvent parses a board task-event payload. The event name maps
// to the republish subject: "created" goes out as board.tasks.created.
// The sync runs in a goroutine detached from the request lifetime, so the
// caller gets its acknowledgement before the run finishes.
func (s *WebhookService) HandleBoardEvent(ctx context.Context, data []byte) (*gateway.BoardEvent, error) {
	var raw struct {
		Event string `json:"event"`
		Task  struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"task"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse board webhook: %w", err)
	}
	if raw.Event == "" {
		return nil, fmt.Errorf("board webhook missing event: %w", domain.ErrValidation)
	}

	evt := &gateway.BoardEvent{
		Event:  raw.Event,
		TaskID: raw.Task.ID,
		Title:  raw.Task.Title,
	}

	ctx, span := tgotel.StartWebhookSpan(ctx, evt.Event)
	defer span.End()

	slog.Info("board webhook received", "event", evt.Event, "task_id", evt.TaskID)

	if s.queue != nil {
		subject := messagequeue.SubjectBoardTasks + "." + evt.Event
		if err := s.queue.Publish(ctx, subject, data); err != nil {
			slog.Error("republish board webhook", "subject", subject, "error", err)
		}
	}

	if s.sync != nil {
		go s.triggerSync(context.WithoutCancel(ctx))
	}
	return evt, nil
}

// triggerSync runs in a goroutine. Errors are logged, not returned.
func (s *WebhookService) triggerSync(ctx context.Context) {
	outcome := s.sync.RunSync(ctx, gateway.TriggerWebhook)
	if outcome.Failed() {
		slog.Error("webhook: sync failed", "run_id", outcome.RunID, "message", outcome.Message)
		return
	}
	slog.Info("webhook: sync completed", "run_id", outcome.RunID, "message", outcome.Message)
}
