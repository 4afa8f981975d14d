package ws

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Event type constants for WebSocket messages.
const (
	EventSyncStarted       = "sync.started"
	EventSyncCompleted     = "sync.completed"
	EventSyncFailed        = "sync.failed"
	EventOrchestratorState = "orchestrator.state"
)

// SyncStartedEvent is broadcast when a sync run begins.
type SyncStartedEvent struct {
	RunID   string `json:"run_id"`
	DryRun  bool   `json:"dry_run"`
	Trigger string `json:"trigger"`
}

// SyncCompletedEvent is broadcast when a sync run finishes.
type SyncCompletedEvent struct {
	RunID      string   `json:"run_id"`
	Status     string   `json:"status"`
	Created    int      `json:"created"`
	Updated    int      `json:"updated"`
	Skipped    int      `json:"skipped"`
	Errors     []string `json:"errors"`
	DurationMs int64    `json:"duration_ms"`
}

// SyncFailedEvent is broadcast when a sync run fails outright.
type SyncFailedEvent struct {
	RunID   string `json:"run_id"`
	Message string `json:"message"`
}

// OrchestratorStateEvent is broadcast when the orchestrator is paused or resumed.
type OrchestratorStateEvent struct {
	State string `json:"state"`
}

// BroadcastEvent is a convenience method that marshals a typed event and broadcasts it.
func (h *Hub) BroadcastEvent(ctx context.Context, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal ws event payload", "type", eventType, "error", err)
		return
	}

	h.Broadcast(ctx, Message{
		Type:    eventType,
		Payload: json.RawMessage(data),
	})
}
