package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"

	"github.com/taskgate/taskgate/internal/adapter/ws"
	"github.com/taskgate/taskgate/internal/domain/gateway"
	"github.com/taskgate/taskgate/internal/port/boardclient"
	"github.com/taskgate/taskgate/internal/port/broadcast"
	"github.com/taskgate/taskgate/internal/port/messagequeue"
	"github.com/taskgate/taskgate/internal/port/trackerclient"
)

// Orchestrator is the control plane for the Bolt automation loop. It owns
// a single process-wide pause flag and reports control-plane status.
//
// The flag is advisory: it gates the Bolt loop only. Manual and
// webhook-triggered syncs proceed regardless of the pause state, and
// RunSync never consults it.
type Orchestrator struct {
	board   boardclient.Client
	tracker trackerclient.Client
	queue   messagequeue.Queue
	hub     broadcast.Broadcaster

	paused atomic.Bool
}

// NewOrchestrator creates an Orchestrator in the running state. Every
// dependency is optional: nil clients render as not configured in Status;
// state changes notify through the queue when one is wired, or straight
// to the hub otherwise.
func NewOrchestrator(
	board boardclient.Client,
	tracker trackerclient.Client,
	queue messagequeue.Queue,
	hub broadcast.Broadcaster,
) *Orchestrator {
	return &Orchestrator{
		board:   board,
		tracker: tracker,
		queue:   queue,
		hub:     hub,
	}
}

// Pause stops the Bolt loop from starting new runs. Pausing an already
// paused orchestrator is a no-op and emits no events.
func (o *Orchestrator) Pause(ctx context.Context) {
	if o.paused.Swap(true) {
		return
	}
	slog.Info("orchestrator paused")
	o.notify(ctx, messagequeue.SubjectOrchestratorPaused, gateway.OrchestratorPaused)
}

// Resume lets the Bolt loop start runs again. Resuming an already running
// orchestrator is a no-op and emits no events.
func (o *Orchestrator) Resume(ctx context.Context) {
	if !o.paused.Swap(false) {
		return
	}
	slog.Info("orchestrator resumed")
	o.notify(ctx, messagequeue.SubjectOrchestratorResumed, gateway.OrchestratorRunning)
}

// Paused reports whether the Bolt loop is paused.
func (o *Orchestrator) Paused() bool { return o.paused.Load() }

// State returns the current control-plane state.
func (o *Orchestrator) State() gateway.OrchestratorState {
	if o.paused.Load() {
		return gateway.OrchestratorPaused
	}
	return gateway.OrchestratorRunning
}

// Status returns the control-plane state together with each integration's
// circuit breaker status, or the not-configured literal for integrations
// without a client.
func (o *Orchestrator) Status() gateway.OrchestratorStatus {
	status := gateway.OrchestratorStatus{
		State:  o.State(),
		Source: gateway.NotConfigured,
		Mirror: gateway.NotConfigured,
	}
	if o.board != nil {
		status.Source = o.board.CircuitState().Status
	}
	if o.tracker != nil {
		status.Mirror = o.tracker.CircuitState().Status
	}
	return status
}

// Reset restores the initial running state without emitting events.
// It exists so tests can start from a known state.
func (o *Orchestrator) Reset() { o.paused.Store(false) }

// notify emits the state change, best effort. With a queue wired the hub
// picks the event up through its queue bridge; the direct hub broadcast
// is the fallback so the event is never delivered on both paths.
func (o *Orchestrator) notify(ctx context.Context, subject string, state gateway.OrchestratorState) {
	if o.queue != nil {
		data, err := json.Marshal(messagequeue.OrchestratorStatePayload{State: string(state)})
		if err != nil {
			slog.Error("marshal orchestrator event", "subject", subject, "error", err)
		} else if err := o.queue.Publish(ctx, subject, data); err != nil {
			slog.Error("publish orchestrator event", "subject", subject, "error", err)
		}
		return
	}
	if o.hub != nil {
		o.hub.BroadcastEvent(ctx, ws.EventOrchestratorState, ws.OrchestratorStateEvent{State: string(state)})
	}
}
