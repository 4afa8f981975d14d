package mcp_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	tgmcp "github.com/taskgate/taskgate/internal/adapter/mcp"
	tgotel "github.com/taskgate/taskgate/internal/adapter/otel"
	"github.com/taskgate/taskgate/internal/domain/board"
	"github.com/taskgate/taskgate/internal/domain/gateway"
	"github.com/taskgate/taskgate/internal/domain/tracker"
	"github.com/taskgate/taskgate/internal/port/boardclient"
)

// --- Mocks ---

// gate is a fixed availability snapshot.
type gate struct {
	source bool
	mirror bool
}

func (g gate) SourceAvailable() bool { return g.source }
func (g gate) MirrorAvailable() bool { return g.mirror }
func (g gate) SyncAvailable() bool   { return g.source && g.mirror }

type mockBoard struct {
	tasks     []board.Task
	knowledge []board.KnowledgeEntry
	sprints   []board.Sprint

	lastListOpts boardclient.ListOptions
	created      []board.CreateTaskRequest
	err          error
}

func (m *mockBoard) ListTasks(_ context.Context, opts boardclient.ListOptions) ([]board.Task, error) {
	m.lastListOpts = opts
	return m.tasks, m.err
}

func (m *mockBoard) CreateTask(_ context.Context, req board.CreateTaskRequest) (*board.Task, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.created = append(m.created, req)
	return &board.Task{ID: "task-1", Title: req.Title, Status: "todo", Labels: req.Labels}, nil
}

func (m *mockBoard) UpdateTask(_ context.Context, id string, req board.UpdateTaskRequest) (*board.Task, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &board.Task{ID: id, Title: req.Title, Status: req.Status}, nil
}

func (m *mockBoard) SearchKnowledge(_ context.Context, _ string) ([]board.KnowledgeEntry, error) {
	return m.knowledge, m.err
}

func (m *mockBoard) AddKnowledge(_ context.Context, req board.CreateKnowledgeRequest) (*board.KnowledgeEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &board.KnowledgeEntry{ID: "k1", Title: req.Title, Content: req.Content, Tags: req.Tags}, nil
}

func (m *mockBoard) ListSprints(_ context.Context) ([]board.Sprint, error) {
	return m.sprints, m.err
}

type mockTracker struct {
	items []tracker.ProjectItem
	pull  *tracker.PullRequest
	err   error
}

func (m *mockTracker) ListIssues(_ context.Context) ([]tracker.ProjectItem, error) {
	return m.items, m.err
}

func (m *mockTracker) CreateIssue(_ context.Context, req tracker.CreateIssueRequest) (*tracker.ProjectItem, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &tracker.ProjectItem{ID: "item-1", Title: req.Title, Status: "Todo", Labels: req.Labels}, nil
}

func (m *mockTracker) UpdateProjectItem(_ context.Context, id string, req tracker.UpdateItemRequest) (*tracker.ProjectItem, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &tracker.ProjectItem{ID: id, Title: req.Title, Status: req.Status}, nil
}

func (m *mockTracker) PullRequestStatus(_ context.Context, number int) (*tracker.PullRequest, error) {
	if m.pull != nil && m.pull.Number == number {
		return m.pull, nil
	}
	return nil, m.err
}

type mockSyncer struct {
	outcome      *gateway.SyncOutcome
	report       *gateway.DryRunReport
	runCalls     int
	previewCalls int
	lastTrigger  string
	previewErr   error
}

func (m *mockSyncer) RunSync(_ context.Context, trigger string) *gateway.SyncOutcome {
	m.runCalls++
	m.lastTrigger = trigger
	if m.outcome != nil {
		return m.outcome
	}
	return &gateway.SyncOutcome{RunID: "run-1", Status: gateway.SyncStatusSuccess}
}

func (m *mockSyncer) PreviewSync(_ context.Context) (*gateway.DryRunReport, error) {
	m.previewCalls++
	if m.previewErr != nil {
		return nil, m.previewErr
	}
	return m.report, nil
}

type mockOrchestrator struct {
	state gateway.OrchestratorState
}

func (m *mockOrchestrator) Pause(_ context.Context)  { m.state = gateway.OrchestratorPaused }
func (m *mockOrchestrator) Resume(_ context.Context) { m.state = gateway.OrchestratorRunning }

func (m *mockOrchestrator) Status() gateway.OrchestratorStatus {
	return gateway.OrchestratorStatus{
		State:  m.state,
		Source: gateway.CircuitClosed,
		Mirror: gateway.NotConfigured,
	}
}

type mockStatus struct {
	report gateway.HealthReport
}

func (m *mockStatus) Report(_ context.Context) gateway.HealthReport { return m.report }

// --- Helpers ---

func newTestServer(t *testing.T, deps tgmcp.ServerDeps) *tgmcp.Server {
	t.Helper()
	return tgmcp.NewServer(tgmcp.ServerConfig{Name: "test", Version: "0.1.0"}, deps)
}

func callTool(t *testing.T, s *tgmcp.Server, name string, args map[string]any) *mcplib.CallToolResult {
	t.Helper()
	tool, ok := s.MCPServer().ListTools()[name]
	if !ok {
		t.Fatalf("tool %q not registered", name)
	}
	result, err := tool.Handler(context.Background(), mcplib.CallToolRequest{
		Params: mcplib.CallToolParams{Name: name, Arguments: args},
	})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return result
}

func resultText(t *testing.T, result *mcplib.CallToolResult) string {
	t.Helper()
	if result.IsError {
		t.Fatalf("tool returned error: %v", result.Content)
	}
	text, ok := result.Content[0].(mcplib.TextContent)
	if !ok {
		t.Fatal("expected TextContent")
	}
	return text.Text
}

// --- Tests ---

func TestNewServer(t *testing.T) {
	cfg := tgmcp.ServerConfig{
		Addr:    ":3001",
		Name:    "test-server",
		Version: "0.1.0",
	}
	s := tgmcp.NewServer(cfg, tgmcp.ServerDeps{})
	if s == nil {
		t.Fatal("NewServer returned nil")
	}
	if s.MCPServer() == nil {
		t.Fatal("MCPServer() returned nil")
	}
}

func TestServerStartStop(t *testing.T) {
	cfg := tgmcp.ServerConfig{
		Addr:    "127.0.0.1:0",
		Name:    "test-server",
		Version: "0.1.0",
	}
	s := tgmcp.NewServer(cfg, tgmcp.ServerDeps{})

	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
}

func TestToolExposure(t *testing.T) {
	cases := []struct {
		name   string
		source bool
		mirror bool
		want   int
	}{
		{"nothing configured", false, false, 3},
		{"source only", true, false, 9},
		{"mirror only", false, true, 7},
		{"both configured", true, true, 15},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(t, tgmcp.ServerDeps{Gate: gate{source: tc.source, mirror: tc.mirror}})
			tools := s.MCPServer().ListTools()
			if len(tools) != tc.want {
				t.Fatalf("expected %d tools, got %d", tc.want, len(tools))
			}
			for _, name := range []string{"orchestrator_status", "orchestrator_pause", "orchestrator_resume"} {
				if _, ok := tools[name]; !ok {
					t.Errorf("always-on tool %q not registered", name)
				}
			}
			if _, ok := tools["source_list_tasks"]; ok != tc.source {
				t.Errorf("source_list_tasks exposed=%v, want %v", ok, tc.source)
			}
			if _, ok := tools["mirror_list_issues"]; ok != tc.mirror {
				t.Errorf("mirror_list_issues exposed=%v, want %v", ok, tc.mirror)
			}
			if _, ok := tools["sync_run"]; ok != (tc.source && tc.mirror) {
				t.Errorf("sync_run exposed=%v, want %v", ok, tc.source && tc.mirror)
			}
		})
	}
}

func TestToolExposureNames(t *testing.T) {
	s := newTestServer(t, tgmcp.ServerDeps{Gate: gate{source: true, mirror: true}})

	expectedTools := map[string]bool{
		"source_list_tasks":          false,
		"source_create_task":         false,
		"source_update_task":         false,
		"source_get_knowledge":       false,
		"source_add_knowledge":       false,
		"source_list_sprints":        false,
		"mirror_list_issues":         false,
		"mirror_create_issue":        false,
		"mirror_update_project_item": false,
		"mirror_get_pr_status":       false,
		"sync_run":                   false,
		"sync_status":                false,
		"orchestrator_status":        false,
		"orchestrator_pause":         false,
		"orchestrator_resume":        false,
	}
	for name := range s.MCPServer().ListTools() {
		if _, ok := expectedTools[name]; ok {
			expectedTools[name] = true
		} else {
			t.Errorf("unexpected tool: %s", name)
		}
	}
	for name, found := range expectedTools {
		if !found {
			t.Errorf("expected tool %q not registered", name)
		}
	}
}

func TestNilGateExposesOnlyOrchestratorTools(t *testing.T) {
	s := newTestServer(t, tgmcp.ServerDeps{})
	tools := s.MCPServer().ListTools()
	if len(tools) != 3 {
		t.Fatalf("expected 3 tools with nil gate, got %d", len(tools))
	}
}

func TestHandleSourceListTasks(t *testing.T) {
	source := &mockBoard{
		tasks: []board.Task{
			{ID: "t1", Title: "Alpha", Status: "todo"},
			{ID: "t2", Title: "Beta", Status: "doing"},
		},
	}
	s := newTestServer(t, tgmcp.ServerDeps{
		Gate:  gate{source: true},
		Board: source,
	})

	result := callTool(t, s, "source_list_tasks", map[string]any{
		"status":    "todo",
		"sprint_id": "s1",
	})

	var tasks []board.Task
	if err := json.Unmarshal([]byte(resultText(t, result)), &tasks); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if source.lastListOpts.Status != "todo" || source.lastListOpts.SprintID != "s1" {
		t.Fatalf("filters not passed through: %+v", source.lastListOpts)
	}
}

func TestHandleSourceCreateTask(t *testing.T) {
	source := &mockBoard{}
	s := newTestServer(t, tgmcp.ServerDeps{
		Gate:  gate{source: true},
		Board: source,
	})

	result := callTool(t, s, "source_create_task", map[string]any{
		"title":  "New task",
		"labels": "api, backend",
	})

	var created board.Task
	if err := json.Unmarshal([]byte(resultText(t, result)), &created); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if created.Title != "New task" {
		t.Fatalf("expected title %q, got %q", "New task", created.Title)
	}
	if len(source.created) != 1 {
		t.Fatalf("expected 1 create call, got %d", len(source.created))
	}
	labels := source.created[0].Labels
	if len(labels) != 2 || labels[0] != "api" || labels[1] != "backend" {
		t.Fatalf("labels not split: %v", labels)
	}
}

func TestHandleSourceCreateTaskMissingTitle(t *testing.T) {
	s := newTestServer(t, tgmcp.ServerDeps{
		Gate:  gate{source: true},
		Board: &mockBoard{},
	})

	result := callTool(t, s, "source_create_task", nil)
	if !result.IsError {
		t.Fatal("expected error result for missing title")
	}
}

func TestHandleSourceUpdateTaskMissingID(t *testing.T) {
	s := newTestServer(t, tgmcp.ServerDeps{
		Gate:  gate{source: true},
		Board: &mockBoard{},
	})

	result := callTool(t, s, "source_update_task", map[string]any{"status": "done"})
	if !result.IsError {
		t.Fatal("expected error result for missing task_id")
	}
}

func TestHandleSourceGetKnowledge(t *testing.T) {
	source := &mockBoard{
		knowledge: []board.KnowledgeEntry{{ID: "k1", Title: "Auth flow", Content: "..."}},
	}
	s := newTestServer(t, tgmcp.ServerDeps{
		Gate:  gate{source: true},
		Board: source,
	})

	result := callTool(t, s, "source_get_knowledge", map[string]any{"query": "auth"})

	var entries []board.KnowledgeEntry
	if err := json.Unmarshal([]byte(resultText(t, result)), &entries); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if len(entries) != 1 || entries[0].Title != "Auth flow" {
		t.Fatalf("unexpected entries: %+v", entries)
	}

	missing := callTool(t, s, "source_get_knowledge", nil)
	if !missing.IsError {
		t.Fatal("expected error result for missing query")
	}
}

func TestHandleSourceAddKnowledge(t *testing.T) {
	s := newTestServer(t, tgmcp.ServerDeps{
		Gate:  gate{source: true},
		Board: &mockBoard{},
	})

	result := callTool(t, s, "source_add_knowledge", map[string]any{
		"title":   "Deploy runbook",
		"content": "Step one.",
		"tags":    "ops,runbook",
	})

	var entry board.KnowledgeEntry
	if err := json.Unmarshal([]byte(resultText(t, result)), &entry); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if len(entry.Tags) != 2 {
		t.Fatalf("tags not split: %v", entry.Tags)
	}

	missing := callTool(t, s, "source_add_knowledge", map[string]any{"title": "No content"})
	if !missing.IsError {
		t.Fatal("expected error result for missing content")
	}
}

func TestHandleMirrorGetPRStatus(t *testing.T) {
	mirror := &mockTracker{
		pull: &tracker.PullRequest{Number: 42, State: "open", Merged: false, ChecksStatus: "passing"},
	}
	s := newTestServer(t, tgmcp.ServerDeps{
		Gate:    gate{mirror: true},
		Tracker: mirror,
	})

	result := callTool(t, s, "mirror_get_pr_status", map[string]any{"number": float64(42)})

	var pr tracker.PullRequest
	if err := json.Unmarshal([]byte(resultText(t, result)), &pr); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if pr.Number != 42 || pr.ChecksStatus != "passing" {
		t.Fatalf("unexpected pull request: %+v", pr)
	}

	missing := callTool(t, s, "mirror_get_pr_status", nil)
	if !missing.IsError {
		t.Fatal("expected error result for missing number")
	}
}

func TestHandleMirrorCreateIssue(t *testing.T) {
	s := newTestServer(t, tgmcp.ServerDeps{
		Gate:    gate{mirror: true},
		Tracker: &mockTracker{},
	})

	result := callTool(t, s, "mirror_create_issue", map[string]any{
		"title":  "Mirror me",
		"labels": "sync",
	})

	var item tracker.ProjectItem
	if err := json.Unmarshal([]byte(resultText(t, result)), &item); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if item.Title != "Mirror me" || len(item.Labels) != 1 {
		t.Fatalf("unexpected item: %+v", item)
	}
}

func TestHandleSyncRunDryRun(t *testing.T) {
	syncer := &mockSyncer{
		report: &gateway.DryRunReport{
			SourceTasks: 5,
			MirrorItems: 3,
			NewCount:    2,
			NewTasks: []gateway.NewTask{
				{Title: "Task A", Status: "todo"},
				{Title: "Task B", Status: "doing"},
			},
		},
	}
	s := newTestServer(t, tgmcp.ServerDeps{
		Gate:   gate{source: true, mirror: true},
		Syncer: syncer,
	})

	result := callTool(t, s, "sync_run", map[string]any{"dry_run": true})

	var report gateway.DryRunReport
	if err := json.Unmarshal([]byte(resultText(t, result)), &report); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if report.NewCount != 2 || len(report.NewTasks) != 2 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if syncer.runCalls != 0 {
		t.Fatalf("dry run must not execute a sync, got %d run calls", syncer.runCalls)
	}
	if syncer.previewCalls != 1 {
		t.Fatalf("expected 1 preview call, got %d", syncer.previewCalls)
	}
}

func TestHandleSyncRunDefaultsToExecution(t *testing.T) {
	syncer := &mockSyncer{
		outcome: &gateway.SyncOutcome{
			RunID:   "run-9",
			Status:  gateway.SyncStatusSuccess,
			Message: "sync completed: 1 created, 0 updated, 2 skipped",
			Result:  gateway.SyncResult{Success: true, Created: 1, Skipped: 2},
		},
	}
	s := newTestServer(t, tgmcp.ServerDeps{
		Gate:   gate{source: true, mirror: true},
		Syncer: syncer,
	})

	result := callTool(t, s, "sync_run", nil)

	var outcome gateway.SyncOutcome
	if err := json.Unmarshal([]byte(resultText(t, result)), &outcome); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if outcome.RunID != "run-9" || outcome.Result.Created != 1 {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if syncer.runCalls != 1 || syncer.previewCalls != 0 {
		t.Fatalf("expected exactly one run call, got run=%d preview=%d", syncer.runCalls, syncer.previewCalls)
	}
	if syncer.lastTrigger != gateway.TriggerManual {
		t.Fatalf("expected manual trigger, got %q", syncer.lastTrigger)
	}
}

func TestHandleSyncRunReportsFailureAsOutcome(t *testing.T) {
	syncer := &mockSyncer{
		outcome: &gateway.SyncOutcome{
			RunID:   "run-f",
			Status:  gateway.SyncStatusFailed,
			Message: "sync failed: list board tasks: boom",
			Result:  gateway.SyncResult{Success: false, Errors: []string{"list board tasks: boom"}},
		},
	}
	s := newTestServer(t, tgmcp.ServerDeps{
		Gate:   gate{source: true, mirror: true},
		Syncer: syncer,
	})

	result := callTool(t, s, "sync_run", nil)

	var outcome gateway.SyncOutcome
	if err := json.Unmarshal([]byte(resultText(t, result)), &outcome); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if !outcome.Failed() {
		t.Fatalf("expected failed outcome, got %+v", outcome)
	}
}

func TestHandleSyncStatus(t *testing.T) {
	status := &mockStatus{
		report: gateway.HealthReport{
			Source: gateway.SourceHealth{Configured: true, Circuit: gateway.CircuitClosed},
			Mirror: gateway.MirrorHealth{Configured: true, RateLimit: "42 remaining"},
			Sync:   gateway.SyncHealth{Available: true, LastSuccessfulSync: gateway.SyncNever},
		},
	}
	s := newTestServer(t, tgmcp.ServerDeps{
		Gate:   gate{source: true, mirror: true},
		Status: status,
	})

	result := callTool(t, s, "sync_status", nil)

	var report gateway.HealthReport
	if err := json.Unmarshal([]byte(resultText(t, result)), &report); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if report.Sync.LastSuccessfulSync != gateway.SyncNever {
		t.Fatalf("expected %q, got %q", gateway.SyncNever, report.Sync.LastSuccessfulSync)
	}
}

func TestHandleOrchestratorPauseResume(t *testing.T) {
	orch := &mockOrchestrator{state: gateway.OrchestratorRunning}
	s := newTestServer(t, tgmcp.ServerDeps{Orchestrator: orch})

	result := callTool(t, s, "orchestrator_pause", nil)
	var status gateway.OrchestratorStatus
	if err := json.Unmarshal([]byte(resultText(t, result)), &status); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if status.State != gateway.OrchestratorPaused {
		t.Fatalf("expected PAUSED after pause, got %q", status.State)
	}

	result = callTool(t, s, "orchestrator_resume", nil)
	if err := json.Unmarshal([]byte(resultText(t, result)), &status); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if status.State != gateway.OrchestratorRunning {
		t.Fatalf("expected RUNNING after resume, got %q", status.State)
	}
	if status.Mirror != gateway.NotConfigured {
		t.Fatalf("expected mirror %q, got %q", gateway.NotConfigured, status.Mirror)
	}
}

func TestHandleNilDeps(t *testing.T) {
	s := newTestServer(t, tgmcp.ServerDeps{Gate: gate{source: true, mirror: true}})

	for _, name := range []string{
		"source_list_tasks",
		"mirror_list_issues",
		"sync_run",
		"sync_status",
		"orchestrator_status",
	} {
		result := callTool(t, s, name, nil)
		if !result.IsError {
			t.Errorf("tool %q: expected error result when deps are nil", name)
		}
	}
}

func TestToolInvocationsCounted(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	prev := otel.GetMeterProvider()
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	t.Cleanup(func() { otel.SetMeterProvider(prev) })

	metrics, err := tgotel.NewMetrics()
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	s := newTestServer(t, tgmcp.ServerDeps{
		Orchestrator: &mockOrchestrator{state: gateway.OrchestratorRunning},
		Metrics:      metrics,
	})

	callTool(t, s, "orchestrator_status", nil)
	callTool(t, s, "orchestrator_status", nil)
	callTool(t, s, "orchestrator_pause", nil)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "taskgate.toolcalls" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("taskgate.toolcalls is %T, want Sum[int64]", m.Data)
			}
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	if total != 3 {
		t.Fatalf("taskgate.toolcalls = %d, want 3", total)
	}
}

func TestAuthMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("disabled when key empty", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		tgmcp.AuthMiddleware("", next).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		tgmcp.AuthMiddleware("secret", next).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("wrong key", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer nope")
		tgmcp.AuthMiddleware("secret", next).ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("bearer token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer secret")
		tgmcp.AuthMiddleware("secret", next).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("plain key", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "secret")
		tgmcp.AuthMiddleware("secret", next).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})
}
