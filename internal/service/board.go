package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/taskgate/taskgate/internal/domain"
	"github.com/taskgate/taskgate/internal/domain/board"
	"github.com/taskgate/taskgate/internal/port/boardclient"
	"github.com/taskgate/taskgate/internal/port/cache"
	"github.com/taskgate/taskgate/internal/port/messagequeue"
)

// knowledgeKeyPrefix namespaces cached knowledge searches.
const knowledgeKeyPrefix = "knowledge:"

// BoardService exposes the board's task, knowledge, and sprint operations.
// The queue and cache are optional; a nil value disables that side effect.
type BoardService struct {
	client   boardclient.Client
	queue    messagequeue.Queue
	cache    cache.Cache
	cacheTTL time.Duration
}

// NewBoardService creates a BoardService. cacheTTL bounds how long
// knowledge search results are served from cache.
func NewBoardService(client boardclient.Client, queue messagequeue.Queue, kcache cache.Cache, cacheTTL time.Duration) *BoardService {
	return &BoardService{
		client:   client,
		queue:    queue,
		cache:    kcache,
		cacheTTL: cacheTTL,
	}
}

// ListTasks returns board tasks, optionally filtered by status and sprint.
func (s *BoardService) ListTasks(ctx context.Context, opts boardclient.ListOptions) ([]board.Task, error) {
	return s.client.ListTasks(ctx, opts)
}

// CreateTask validates and creates a task on the board, then announces it
// on the queue. The task is created either way; a publish failure is
// logged, not returned.
func (s *BoardService) CreateTask(ctx context.Context, req board.CreateTaskRequest) (*board.Task, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	t, err := s.client.CreateTask(ctx, req)
	if err != nil {
		return nil, err
	}

	if s.queue != nil {
		data, err := json.Marshal(t)
		if err != nil {
			slog.Error("marshal task event", "task_id", t.ID, "error", err)
		} else if err := s.queue.Publish(ctx, messagequeue.SubjectBoardTasks+".created", data); err != nil {
			slog.Error("publish task created", "task_id", t.ID, "error", err)
		}
	}
	return t, nil
}

// UpdateTask applies a partial update to a board task.
func (s *BoardService) UpdateTask(ctx context.Context, id string, req board.UpdateTaskRequest) (*board.Task, error) {
	if id == "" {
		return nil, fmt.Errorf("task id is required: %w", domain.ErrValidation)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.client.UpdateTask(ctx, id, req)
}

// SearchKnowledge queries the board's knowledge base through the cache.
// Results are cached per query string for cacheTTL.
func (s *BoardService) SearchKnowledge(ctx context.Context, query string) ([]board.KnowledgeEntry, error) {
	if query == "" {
		return nil, fmt.Errorf("query is required: %w", domain.ErrValidation)
	}

	key := knowledgeKeyPrefix + query
	if s.cache != nil {
		if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
			var entries []board.KnowledgeEntry
			if err := json.Unmarshal(data, &entries); err == nil {
				return entries, nil
			}
			// Undecodable entry; drop it and ask the board.
			_ = s.cache.Delete(ctx, key)
		}
	}

	entries, err := s.client.SearchKnowledge(ctx, query)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(entries); err == nil {
			if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
				slog.Debug("cache knowledge results", "query", query, "error", err)
			}
		}
	}
	return entries, nil
}

// AddKnowledge stores a knowledge entry on the board. Cached search
// results are left to expire on their TTL rather than invalidated.
func (s *BoardService) AddKnowledge(ctx context.Context, req board.CreateKnowledgeRequest) (*board.KnowledgeEntry, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.client.AddKnowledge(ctx, req)
}

// ListSprints returns the board's sprints.
func (s *BoardService) ListSprints(ctx context.Context) ([]board.Sprint, error) {
	return s.client.ListSprints(ctx)
}
