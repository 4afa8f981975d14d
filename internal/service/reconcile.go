package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taskgate/taskgate/internal/domain/gateway"
	"github.com/taskgate/taskgate/internal/domain/tracker"
	"github.com/taskgate/taskgate/internal/port/boardclient"
	"github.com/taskgate/taskgate/internal/port/syncstore"
	"github.com/taskgate/taskgate/internal/port/trackerclient"
)

// Reconciler is the production reconciliation routine: it walks the board's
// tasks and creates or updates tracker project items until every board task
// has a title-matched mirror. It is the default SyncRunner.
//
// A listing failure on either side aborts the run as a failure. Per-item
// write failures do not: the pass continues, the failure is collected as a
// warning, and the run still counts as a success. The outcome is persisted
// on the sync record either way; the store is optional and a nil store
// skips persistence.
type Reconciler struct {
	board    boardclient.Client
	tracker  trackerclient.Client
	store    syncstore.Store
	pageSize int
	now      func() time.Time
}

// NewReconciler creates a Reconciler.
func NewReconciler(
	board boardclient.Client,
	tracker trackerclient.Client,
	store syncstore.Store,
	pageSize int,
) *Reconciler {
	if pageSize <= 0 {
		pageSize = defaultSyncPageSize
	}
	return &Reconciler{
		board:    board,
		tracker:  tracker,
		store:    store,
		pageSize: pageSize,
		now:      time.Now,
	}
}

// Reconcile runs one synchronization pass from board to tracker.
func (r *Reconciler) Reconcile(ctx context.Context) *gateway.SyncResult {
	start := r.now()

	tasks, err := r.board.ListTasks(ctx, boardclient.ListOptions{Limit: r.pageSize})
	if err != nil {
		return r.fail(ctx, start, fmt.Sprintf("list board tasks: %s", err))
	}

	items, err := r.tracker.ListItems(ctx)
	if err != nil {
		return r.fail(ctx, start, fmt.Sprintf("list tracker items: %s", err))
	}

	existing := make(map[string]*tracker.ProjectItem, len(items))
	for i := range items {
		existing[items[i].Title] = &items[i]
	}

	result := &gateway.SyncResult{Success: true}
	for i := range tasks {
		t := &tasks[i]
		item, ok := existing[t.Title]
		switch {
		case !ok:
			req := tracker.CreateIssueRequest{
				Title:  t.Title,
				Body:   t.Description,
				Labels: t.Labels,
			}
			if _, err := r.tracker.CreateIssue(ctx, req); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("create %q: %s", t.Title, err))
				continue
			}
			result.Created++
		case t.Status != "" && item.Status != t.Status:
			if _, err := r.tracker.UpdateItem(ctx, item.ID, tracker.UpdateItemRequest{Status: t.Status}); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("update %q: %s", t.Title, err))
				continue
			}
			result.Updated++
		default:
			result.Skipped++
		}
	}

	finished := r.now()
	result.DurationMs = finished.Sub(start).Milliseconds()

	if r.store != nil {
		if err := r.store.RecordSuccess(ctx, gateway.SourceID, finished.UTC(), result.Created+result.Updated); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("record sync outcome: %s", err))
		}
	}

	slog.Info("reconcile completed",
		"created", result.Created,
		"updated", result.Updated,
		"skipped", result.Skipped,
		"warnings", len(result.Errors))
	return result
}

// fail builds the failure result for a listing error and persists it.
func (r *Reconciler) fail(ctx context.Context, start time.Time, msg string) *gateway.SyncResult {
	if r.store != nil {
		if err := r.store.RecordFailure(ctx, gateway.SourceID, msg); err != nil {
			slog.Error("record sync failure", "error", err)
		}
	}
	slog.Error("reconcile failed", "error", msg)
	return &gateway.SyncResult{
		Success:    false,
		Errors:     []string{msg},
		DurationMs: r.now().Sub(start).Milliseconds(),
	}
}
