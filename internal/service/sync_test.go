package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	tgotel "github.com/taskgate/taskgate/internal/adapter/otel"
	"github.com/taskgate/taskgate/internal/adapter/ws"
	"github.com/taskgate/taskgate/internal/domain/gateway"
	"github.com/taskgate/taskgate/internal/port/messagequeue"
)

// mockQueue implements messagequeue.Queue for testing.
type mockQueue struct {
	published  []publishedMsg
	publishErr error
}

type publishedMsg struct {
	subject string
	data    []byte
}

func (q *mockQueue) Publish(_ context.Context, subject string, data []byte) error {
	if q.publishErr != nil {
		return q.publishErr
	}
	q.published = append(q.published, publishedMsg{subject, data})
	return nil
}

func (q *mockQueue) Subscribe(_ context.Context, _ string, _ messagequeue.Handler) (func(), error) {
	return func() {}, nil
}

func (q *mockQueue) Drain() error      { return nil }
func (q *mockQueue) Close() error      { return nil }
func (q *mockQueue) IsConnected() bool { return true }

func (q *mockQueue) subjects() []string {
	out := make([]string, len(q.published))
	for i, p := range q.published {
		out[i] = p.subject
	}
	return out
}

// mockHub records broadcast events.
type mockHub struct {
	events []broadcastEvent
}

type broadcastEvent struct {
	eventType string
	payload   any
}

func (h *mockHub) BroadcastEvent(_ context.Context, eventType string, payload any) {
	h.events = append(h.events, broadcastEvent{eventType, payload})
}

// mockRunner is a canned SyncRunner. It is safe for concurrent use so
// tests can drive it from background goroutines.
type mockRunner struct {
	mu     sync.Mutex
	result *gateway.SyncResult
	calls  int
	notify chan struct{} // receives one send per Reconcile call when set
}

func (r *mockRunner) Reconcile(_ context.Context) *gateway.SyncResult {
	r.mu.Lock()
	r.calls++
	res := r.result
	r.mu.Unlock()
	if r.notify != nil {
		r.notify <- struct{}{}
	}
	if res != nil {
		return res
	}
	return &gateway.SyncResult{Success: true}
}

func (r *mockRunner) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// --- RunSync Tests ---

func TestRunSyncSuccess(t *testing.T) {
	runner := &mockRunner{result: &gateway.SyncResult{
		Success: true, Created: 2, Updated: 1, Skipped: 3, DurationMs: 42,
	}}
	queue := &mockQueue{}
	hub := &mockHub{}
	svc := NewSyncService(&mockBoard{}, &mockTracker{}, runner, queue, hub, nil, 0)

	outcome := svc.RunSync(context.Background(), gateway.TriggerManual)

	if outcome.Status != gateway.SyncStatusSuccess {
		t.Errorf("Status = %q, want %q", outcome.Status, gateway.SyncStatusSuccess)
	}
	if outcome.Failed() {
		t.Error("Failed() = true for a successful run")
	}
	if outcome.RunID == "" {
		t.Error("RunID is empty")
	}
	if !strings.Contains(outcome.Message, "2 created, 1 updated, 3 skipped") {
		t.Errorf("Message = %q, want counts in it", outcome.Message)
	}
	if runner.callCount() != 1 {
		t.Errorf("runner called %d times, want 1", runner.callCount())
	}

	subjects := queue.subjects()
	if len(subjects) != 2 || subjects[0] != messagequeue.SubjectSyncStarted || subjects[1] != messagequeue.SubjectSyncCompleted {
		t.Fatalf("published subjects = %v, want [started completed]", subjects)
	}

	var started messagequeue.SyncStartedPayload
	if err := json.Unmarshal(queue.published[0].data, &started); err != nil {
		t.Fatalf("unmarshal started payload: %v", err)
	}
	if started.RunID != outcome.RunID || started.Trigger != gateway.TriggerManual || started.DryRun {
		t.Errorf("started payload = %+v", started)
	}

	var completed messagequeue.SyncCompletedPayload
	if err := json.Unmarshal(queue.published[1].data, &completed); err != nil {
		t.Fatalf("unmarshal completed payload: %v", err)
	}
	if completed.RunID != outcome.RunID || completed.Created != 2 || completed.Status != gateway.SyncStatusSuccess {
		t.Errorf("completed payload = %+v", completed)
	}

	// The hub's queue bridge is the delivery path when a queue is wired;
	// broadcasting here too would hand clients every event twice.
	if len(hub.events) != 0 {
		t.Errorf("hub events = %d, want 0 with a queue wired", len(hub.events))
	}
}

func TestRunSyncBroadcastsDirectlyOnlyWithoutQueue(t *testing.T) {
	runner := &mockRunner{result: &gateway.SyncResult{Success: true, Created: 1}}
	hub := &mockHub{}
	svc := NewSyncService(&mockBoard{}, &mockTracker{}, runner, nil, hub, nil, 0)

	outcome := svc.RunSync(context.Background(), gateway.TriggerManual)

	if len(hub.events) != 2 {
		t.Fatalf("hub events = %d, want 2 without a queue", len(hub.events))
	}
	if hub.events[0].eventType != ws.EventSyncStarted || hub.events[1].eventType != ws.EventSyncCompleted {
		t.Errorf("hub event types = [%s %s]", hub.events[0].eventType, hub.events[1].eventType)
	}
	started, ok := hub.events[0].payload.(ws.SyncStartedEvent)
	if !ok || started.RunID != outcome.RunID {
		t.Errorf("started event payload = %+v", hub.events[0].payload)
	}
}

func TestRunSyncFailureDespiteCreates(t *testing.T) {
	// Success=false is a failure even when items were created before the
	// run fell over.
	runner := &mockRunner{result: &gateway.SyncResult{
		Success: false,
		Created: 3,
		Errors:  []string{"list tracker items: tracker down"},
	}}
	queue := &mockQueue{}
	hub := &mockHub{}
	svc := NewSyncService(&mockBoard{}, &mockTracker{}, runner, queue, hub, nil, 0)

	outcome := svc.RunSync(context.Background(), gateway.TriggerManual)

	if outcome.Status != gateway.SyncStatusFailed {
		t.Errorf("Status = %q, want %q", outcome.Status, gateway.SyncStatusFailed)
	}
	if !outcome.Failed() {
		t.Error("Failed() = false for a failed run")
	}
	if !strings.Contains(outcome.Message, "sync failed") || !strings.Contains(outcome.Message, "tracker down") {
		t.Errorf("Message = %q", outcome.Message)
	}

	subjects := queue.subjects()
	if len(subjects) != 2 || subjects[1] != messagequeue.SubjectSyncFailed {
		t.Fatalf("published subjects = %v, want failure event", subjects)
	}
	var failed messagequeue.SyncFailedPayload
	if err := json.Unmarshal(queue.published[1].data, &failed); err != nil {
		t.Fatalf("unmarshal failed payload: %v", err)
	}
	if failed.RunID != outcome.RunID || failed.Message != outcome.Message {
		t.Errorf("failed payload = %+v", failed)
	}

	if len(hub.events) != 0 {
		t.Errorf("hub events = %d, want 0 with a queue wired", len(hub.events))
	}
}

func TestRunSyncFailureBroadcastsDirectlyOnlyWithoutQueue(t *testing.T) {
	runner := &mockRunner{result: &gateway.SyncResult{
		Success: false,
		Errors:  []string{"list tracker items: tracker down"},
	}}
	hub := &mockHub{}
	svc := NewSyncService(&mockBoard{}, &mockTracker{}, runner, nil, hub, nil, 0)

	svc.RunSync(context.Background(), gateway.TriggerManual)

	if len(hub.events) != 2 || hub.events[1].eventType != ws.EventSyncFailed {
		t.Errorf("hub events = %+v, want sync.failed last", hub.events)
	}
}

func TestRunSyncSuccessWithWarnings(t *testing.T) {
	// Success=true with collected errors is still reported as a success;
	// the warnings ride along in the message and payload.
	runner := &mockRunner{result: &gateway.SyncResult{
		Success: true,
		Created: 1,
		Errors:  []string{`update "Task B": tracker flaked`},
	}}
	queue := &mockQueue{}
	svc := NewSyncService(&mockBoard{}, &mockTracker{}, runner, queue, nil, nil, 0)

	outcome := svc.RunSync(context.Background(), gateway.TriggerBolt)

	if outcome.Status != gateway.SyncStatusSuccess {
		t.Fatalf("Status = %q, want success", outcome.Status)
	}
	if !strings.Contains(outcome.Message, "warnings") || !strings.Contains(outcome.Message, "tracker flaked") {
		t.Errorf("Message = %q, want warnings surfaced", outcome.Message)
	}

	var completed messagequeue.SyncCompletedPayload
	if err := json.Unmarshal(queue.published[1].data, &completed); err != nil {
		t.Fatalf("unmarshal completed payload: %v", err)
	}
	if len(completed.Errors) != 1 {
		t.Errorf("completed payload errors = %v, want the warning", completed.Errors)
	}
}

func TestRunSyncWithoutQueueOrHub(t *testing.T) {
	runner := &mockRunner{}
	svc := NewSyncService(&mockBoard{}, &mockTracker{}, runner, nil, nil, nil, 0)

	outcome := svc.RunSync(context.Background(), gateway.TriggerManual)
	if outcome.Status != gateway.SyncStatusSuccess {
		t.Errorf("Status = %q, want success", outcome.Status)
	}
}

func TestRunSyncPublishFailureDoesNotAffectOutcome(t *testing.T) {
	runner := &mockRunner{}
	queue := &mockQueue{publishErr: errors.New("nats down")}
	svc := NewSyncService(&mockBoard{}, &mockTracker{}, runner, queue, nil, nil, 0)

	outcome := svc.RunSync(context.Background(), gateway.TriggerManual)
	if outcome.Status != gateway.SyncStatusSuccess {
		t.Errorf("Status = %q, want success despite publish failure", outcome.Status)
	}
}

func TestRunSyncRecordsItemCounters(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	prev := otel.GetMeterProvider()
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	t.Cleanup(func() { otel.SetMeterProvider(prev) })

	metrics, err := tgotel.NewMetrics()
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	runner := &mockRunner{result: &gateway.SyncResult{
		Success: true, Created: 2, Updated: 5, Skipped: 3,
	}}
	svc := NewSyncService(&mockBoard{}, &mockTracker{}, runner, nil, nil, metrics, 0)

	svc.RunSync(context.Background(), gateway.TriggerManual)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}

	counts := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				counts[m.Name] += dp.Value
			}
		}
	}
	want := map[string]int64{
		"taskgate.items.created": 2,
		"taskgate.items.updated": 5,
		"taskgate.items.skipped": 3,
	}
	for name, n := range want {
		if counts[name] != n {
			t.Errorf("%s = %d, want %d", name, counts[name], n)
		}
	}
}

func TestRunSyncRunIDsAreUnique(t *testing.T) {
	runner := &mockRunner{}
	svc := NewSyncService(&mockBoard{}, &mockTracker{}, runner, nil, nil, nil, 0)

	a := svc.RunSync(context.Background(), gateway.TriggerManual)
	b := svc.RunSync(context.Background(), gateway.TriggerManual)
	if a.RunID == b.RunID {
		t.Errorf("two runs share RunID %q", a.RunID)
	}
}
