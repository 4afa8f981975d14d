package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/taskgate/taskgate/internal/domain/board"
	"github.com/taskgate/taskgate/internal/domain/gateway"
	"github.com/taskgate/taskgate/internal/domain/tracker"
	"github.com/taskgate/taskgate/internal/port/boardclient"
)

const maxRequestBodySize = 1 << 20 // 1 MB

// Boards is the board service surface the ops API calls.
type Boards interface {
	ListTasks(ctx context.Context, opts boardclient.ListOptions) ([]board.Task, error)
	CreateTask(ctx context.Context, req board.CreateTaskRequest) (*board.Task, error)
	UpdateTask(ctx context.Context, id string, req board.UpdateTaskRequest) (*board.Task, error)
	SearchKnowledge(ctx context.Context, query string) ([]board.KnowledgeEntry, error)
	AddKnowledge(ctx context.Context, req board.CreateKnowledgeRequest) (*board.KnowledgeEntry, error)
	ListSprints(ctx context.Context) ([]board.Sprint, error)
}

// Trackers is the tracker service surface the ops API calls.
type Trackers interface {
	ListIssues(ctx context.Context) ([]tracker.ProjectItem, error)
	CreateIssue(ctx context.Context, req tracker.CreateIssueRequest) (*tracker.ProjectItem, error)
	UpdateProjectItem(ctx context.Context, id string, req tracker.UpdateItemRequest) (*tracker.ProjectItem, error)
	PullRequestStatus(ctx context.Context, number int) (*tracker.PullRequest, error)
}

// Syncer runs and previews board-to-tracker synchronization.
type Syncer interface {
	RunSync(ctx context.Context, trigger string) *gateway.SyncOutcome
	PreviewSync(ctx context.Context) (*gateway.DryRunReport, error)
}

// Orchestrator controls the background sync loop.
type Orchestrator interface {
	Pause(ctx context.Context)
	Resume(ctx context.Context)
	Status() gateway.OrchestratorStatus
}

// StatusReporter assembles the gateway health report.
type StatusReporter interface {
	Report(ctx context.Context) gateway.HealthReport
}

// WebhookSink ingests inbound board webhook payloads.
type WebhookSink interface {
	HandleBoardEvent(ctx context.Context, data []byte) (*gateway.BoardEvent, error)
}

// Handlers holds the services the ops API exposes. Routes whose service is
// not mounted are simply not registered; see MountRoutes.
type Handlers struct {
	Board        Boards
	Tracker      Trackers
	Sync         Syncer
	Orchestrator Orchestrator
	Status       StatusReporter
	Webhook      WebhookSink
}

// --- Board ---

// ListTasks handles GET /board/tasks.
func (h *Handlers) ListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := boardclient.ListOptions{
		SprintID: q.Get("sprint_id"),
		Status:   q.Get("status"),
	}
	if limit := q.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		opts.Limit = n
	}

	tasks, err := h.Board.ListTasks(r.Context(), opts)
	if err != nil {
		writeDomainError(w, err, "failed to list tasks")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": orEmpty(tasks)})
}

// CreateTask handles POST /board/tasks.
func (h *Handlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[board.CreateTaskRequest](w, r, maxRequestBodySize)
	if !ok {
		return
	}
	t, err := h.Board.CreateTask(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, "failed to create task")
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// UpdateTask handles PUT /board/tasks/{id}.
func (h *Handlers) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	req, ok := readJSON[board.UpdateTaskRequest](w, r, maxRequestBodySize)
	if !ok {
		return
	}
	t, err := h.Board.UpdateTask(r.Context(), id, req)
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// SearchKnowledge handles GET /board/knowledge.
func (h *Handlers) SearchKnowledge(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if !requireField(w, query, "q") {
		return
	}
	entries, err := h.Board.SearchKnowledge(r.Context(), query)
	if err != nil {
		writeDomainError(w, err, "failed to search knowledge")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": orEmpty(entries)})
}

// AddKnowledge handles POST /board/knowledge.
func (h *Handlers) AddKnowledge(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[board.CreateKnowledgeRequest](w, r, maxRequestBodySize)
	if !ok {
		return
	}
	entry, err := h.Board.AddKnowledge(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, "failed to add knowledge")
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// ListSprints handles GET /board/sprints.
func (h *Handlers) ListSprints(w http.ResponseWriter, r *http.Request) {
	sprints, err := h.Board.ListSprints(r.Context())
	if err != nil {
		writeDomainError(w, err, "failed to list sprints")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sprints": orEmpty(sprints)})
}

// --- Tracker ---

// ListIssues handles GET /tracker/issues.
func (h *Handlers) ListIssues(w http.ResponseWriter, r *http.Request) {
	items, err := h.Tracker.ListIssues(r.Context())
	if err != nil {
		writeDomainError(w, err, "failed to list issues")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": orEmpty(items)})
}

// CreateIssue handles POST /tracker/issues.
func (h *Handlers) CreateIssue(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[tracker.CreateIssueRequest](w, r, maxRequestBodySize)
	if !ok {
		return
	}
	item, err := h.Tracker.CreateIssue(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, "failed to create issue")
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// UpdateProjectItem handles PUT /tracker/items/{id}.
func (h *Handlers) UpdateProjectItem(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	req, ok := readJSON[tracker.UpdateItemRequest](w, r, maxRequestBodySize)
	if !ok {
		return
	}
	item, err := h.Tracker.UpdateProjectItem(r.Context(), id, req)
	if err != nil {
		writeDomainError(w, err, "project item not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// PullRequestStatus handles GET /tracker/pulls/{number}.
func (h *Handlers) PullRequestStatus(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(urlParam(r, "number"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "pull request number must be an integer")
		return
	}
	pr, err := h.Tracker.PullRequestStatus(r.Context(), number)
	if err != nil {
		writeDomainError(w, err, "pull request not found")
		return
	}
	writeJSON(w, http.StatusOK, pr)
}

// --- Sync ---

type runSyncRequest struct {
	DryRun bool `json:"dry_run"`
}

// RunSync handles POST /sync/run. With dry_run set, the response is the
// preview report; otherwise it is the outcome of a production run. A
// failed run is still a 200: the outcome body carries the classification.
func (h *Handlers) RunSync(w http.ResponseWriter, r *http.Request) {
	var req runSyncRequest
	if r.ContentLength > 0 {
		var ok bool
		req, ok = readJSON[runSyncRequest](w, r, maxRequestBodySize)
		if !ok {
			return
		}
	}

	if req.DryRun {
		report, err := h.Sync.PreviewSync(r.Context())
		if err != nil {
			writeDomainError(w, err, "failed to preview sync")
			return
		}
		writeJSON(w, http.StatusOK, report)
		return
	}

	outcome := h.Sync.RunSync(r.Context(), gateway.TriggerManual)
	writeJSON(w, http.StatusOK, outcome)
}

// SyncStatus handles GET /sync/status.
func (h *Handlers) SyncStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Status.Report(r.Context()))
}

// --- Orchestrator ---

// OrchestratorStatus handles GET /orchestrator/status.
func (h *Handlers) OrchestratorStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.Orchestrator.Status())
}

// PauseOrchestrator handles POST /orchestrator/pause.
func (h *Handlers) PauseOrchestrator(w http.ResponseWriter, r *http.Request) {
	h.Orchestrator.Pause(r.Context())
	writeJSON(w, http.StatusOK, h.Orchestrator.Status())
}

// ResumeOrchestrator handles POST /orchestrator/resume.
func (h *Handlers) ResumeOrchestrator(w http.ResponseWriter, r *http.Request) {
	h.Orchestrator.Resume(r.Context())
	writeJSON(w, http.StatusOK, h.Orchestrator.Status())
}

// --- Webhooks ---

// HandleBoardWebhook handles POST /webhooks/board. The HMAC middleware has
// already verified the signature by the time this runs.
func (h *Handlers) HandleBoardWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r, maxRequestBodySize)
	if err != nil {
		return
	}
	evt, err := h.Webhook.HandleBoardEvent(r.Context(), body)
	if err != nil {
		writeDomainError(w, err, "failed to process webhook")
		return
	}
	writeJSON(w, http.StatusAccepted, evt)
}
