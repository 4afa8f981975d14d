// Package boardclient defines the port interface for the task board that
// acts as the source of truth for synchronization.
package boardclient

import (
	"context"

	"github.com/taskgate/taskgate/internal/domain/board"
	"github.com/taskgate/taskgate/internal/domain/gateway"
)

// ListOptions filters task listings.
type ListOptions struct {
	SprintID string
	Status   string
	Limit    int
}

// Client is the port interface for the task board API.
type Client interface {
	// ListTasks returns tasks from the board, newest first.
	ListTasks(ctx context.Context, opts ListOptions) ([]board.Task, error)

	// CreateTask creates a new task on the board.
	CreateTask(ctx context.Context, req board.CreateTaskRequest) (*board.Task, error)

	// UpdateTask applies a partial update to an existing task.
	UpdateTask(ctx context.Context, id string, req board.UpdateTaskRequest) (*board.Task, error)

	// SearchKnowledge queries the board's knowledge base.
	SearchKnowledge(ctx context.Context, query string) ([]board.KnowledgeEntry, error)

	// AddKnowledge stores a new knowledge base entry.
	AddKnowledge(ctx context.Context, req board.CreateKnowledgeRequest) (*board.KnowledgeEntry, error)

	// ListSprints returns the board's sprints.
	ListSprints(ctx context.Context) ([]board.Sprint, error)

	// CircuitState reports the client's circuit breaker state.
	CircuitState() gateway.CircuitBreakerState
}
