package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taskgate/taskgate/internal/domain/gateway"
	"github.com/taskgate/taskgate/internal/port/boardclient"
)

// PreviewSync reports what a production sync would do without doing it:
// which board tasks have no title match among the tracker's project items.
// Matching is by exact, case-sensitive title. The preview reads both sides
// and writes nothing; it publishes no events and leaves the sync record
// untouched.
//
// The board is read first and a board failure returns immediately, before
// the tracker is queried at all. Empty listings on either side are valid
// results, not errors.
func (s *SyncService) PreviewSync(ctx context.Context) (*gateway.DryRunReport, error) {
	tasks, err := s.board.ListTasks(ctx, boardclient.ListOptions{Limit: s.pageSize})
	if err != nil {
		return nil, fmt.Errorf("list board tasks: %w", err)
	}

	items, err := s.tracker.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tracker items: %w", err)
	}

	mirrored := make(map[string]struct{}, len(items))
	for i := range items {
		mirrored[items[i].Title] = struct{}{}
	}

	report := &gateway.DryRunReport{
		SourceTasks: len(tasks),
		MirrorItems: len(items),
	}
	for i := range tasks {
		if _, ok := mirrored[tasks[i].Title]; ok {
			continue
		}
		report.NewTasks = append(report.NewTasks, gateway.NewTask{
			Title:  tasks[i].Title,
			Status: tasks[i].Status,
		})
	}
	report.NewCount = len(report.NewTasks)

	slog.Info("sync preview completed",
		"source_tasks", report.SourceTasks,
		"mirror_items", report.MirrorItems,
		"new", report.NewCount)
	return report, nil
}
