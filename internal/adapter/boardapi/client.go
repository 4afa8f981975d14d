// Package boardapi implements a boardclient.Client for the task board REST API.
package boardapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/taskgate/taskgate/internal/domain/board"
	"github.com/taskgate/taskgate/internal/domain/gateway"
	"github.com/taskgate/taskgate/internal/port/boardclient"
	"github.com/taskgate/taskgate/internal/resilience"
)

const (
	defaultRequestTimeout = 30 * time.Second
	defaultMaxFailures    = 5
	defaultBreakerTimeout = 30 * time.Second
)

// Options configures a board API client.
type Options struct {
	BaseURL   string
	Token     string
	ProjectID string
	Timeout   time.Duration
	Breaker   *resilience.Breaker
}

// Client talks to the task board over its REST API. All calls go through
// a circuit breaker so a flapping board cannot stall every sync attempt.
type Client struct {
	baseURL    string
	token      string
	projectID  string
	breaker    *resilience.Breaker
	httpClient *http.Client
}

// NewClient creates a board API client.
func NewClient(opts Options) *Client {
	breaker := opts.Breaker
	if breaker == nil {
		breaker = resilience.NewBreaker(defaultMaxFailures, defaultBreakerTimeout)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Client{
		baseURL:    strings.TrimSuffix(opts.BaseURL, "/"),
		token:      opts.Token,
		projectID:  opts.ProjectID,
		breaker:    breaker,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// boardTask mirrors the JSON shape of a task in the board API.
type boardTask struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	Priority    string   `json:"priority"`
	Labels      []string `json:"labels"`
	SprintID    string   `json:"sprint_id"`
}

// taskListResponse is the board's listing envelope. The data field is null
// when a project has no tasks, which must read as an empty list.
type taskListResponse struct {
	Data []boardTask `json:"data"`
}

type boardSprint struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
	Active   bool       `json:"active"`
}

type sprintListResponse struct {
	Data []boardSprint `json:"data"`
}

type boardKnowledge struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	UpdatedAt time.Time `json:"updated_at"`
}

type knowledgeListResponse struct {
	Data []boardKnowledge `json:"data"`
}

func (c *Client) ListTasks(ctx context.Context, opts boardclient.ListOptions) ([]board.Task, error) {
	q := url.Values{}
	if c.projectID != "" {
		q.Set("project_id", c.projectID)
	}
	if opts.SprintID != "" {
		q.Set("sprint_id", opts.SprintID)
	}
	if opts.Status != "" {
		q.Set("status", opts.Status)
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}

	reqURL := c.baseURL + "/api/v1/tasks"
	if enc := q.Encode(); enc != "" {
		reqURL += "?" + enc
	}

	body, err := c.doRequest(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("board list tasks: %w", err)
	}

	var resp taskListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("board parse response: %w", err)
	}

	tasks := make([]board.Task, 0, len(resp.Data))
	for i := range resp.Data {
		tasks = append(tasks, taskToDomain(&resp.Data[i]))
	}
	return tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, req board.CreateTaskRequest) (*board.Task, error) {
	payload := map[string]any{
		"title": req.Title,
	}
	if c.projectID != "" {
		payload["project_id"] = c.projectID
	}
	if req.Description != "" {
		payload["description"] = req.Description
	}
	if req.Priority != "" {
		payload["priority"] = req.Priority
	}
	if len(req.Labels) > 0 {
		payload["labels"] = req.Labels
	}
	if req.SprintID != "" {
		payload["sprint_id"] = req.SprintID
	}
	payloadJSON, _ := json.Marshal(payload)

	body, err := c.doRequest(ctx, http.MethodPost, c.baseURL+"/api/v1/tasks", strings.NewReader(string(payloadJSON)))
	if err != nil {
		return nil, fmt.Errorf("board create task: %w", err)
	}

	var created boardTask
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("board parse response: %w", err)
	}

	task := taskToDomain(&created)
	return &task, nil
}

func (c *Client) UpdateTask(ctx context.Context, id string, req board.UpdateTaskRequest) (*board.Task, error) {
	payload := map[string]string{}
	if req.Title != "" {
		payload["title"] = req.Title
	}
	if req.Description != "" {
		payload["description"] = req.Description
	}
	if req.Status != "" {
		payload["status"] = req.Status
	}
	if req.Priority != "" {
		payload["priority"] = req.Priority
	}
	payloadJSON, _ := json.Marshal(payload)

	reqURL := fmt.Sprintf("%s/api/v1/tasks/%s", c.baseURL, url.PathEscape(id))
	body, err := c.doRequest(ctx, http.MethodPatch, reqURL, strings.NewReader(string(payloadJSON)))
	if err != nil {
		return nil, fmt.Errorf("board update task: %w", err)
	}

	var updated boardTask
	if err := json.Unmarshal(body, &updated); err != nil {
		return nil, fmt.Errorf("board parse response: %w", err)
	}

	task := taskToDomain(&updated)
	return &task, nil
}

func (c *Client) SearchKnowledge(ctx context.Context, query string) ([]board.KnowledgeEntry, error) {
	q := url.Values{}
	q.Set("query", query)
	if c.projectID != "" {
		q.Set("project_id", c.projectID)
	}

	body, err := c.doRequest(ctx, http.MethodGet, c.baseURL+"/api/v1/knowledge?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("board search knowledge: %w", err)
	}

	var resp knowledgeListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("board parse response: %w", err)
	}

	entries := make([]board.KnowledgeEntry, 0, len(resp.Data))
	for i := range resp.Data {
		entries = append(entries, knowledgeToDomain(&resp.Data[i]))
	}
	return entries, nil
}

func (c *Client) AddKnowledge(ctx context.Context, req board.CreateKnowledgeRequest) (*board.KnowledgeEntry, error) {
	payload := map[string]any{
		"title":   req.Title,
		"content": req.Content,
	}
	if len(req.Tags) > 0 {
		payload["tags"] = req.Tags
	}
	if c.projectID != "" {
		payload["project_id"] = c.projectID
	}
	payloadJSON, _ := json.Marshal(payload)

	body, err := c.doRequest(ctx, http.MethodPost, c.baseURL+"/api/v1/knowledge", strings.NewReader(string(payloadJSON)))
	if err != nil {
		return nil, fmt.Errorf("board add knowledge: %w", err)
	}

	var created boardKnowledge
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("board parse response: %w", err)
	}

	entry := knowledgeToDomain(&created)
	return &entry, nil
}

func (c *Client) ListSprints(ctx context.Context) ([]board.Sprint, error) {
	reqURL := c.baseURL + "/api/v1/sprints"
	if c.projectID != "" {
		reqURL += "?project_id=" + url.QueryEscape(c.projectID)
	}

	body, err := c.doRequest(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("board list sprints: %w", err)
	}

	var resp sprintListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("board parse response: %w", err)
	}

	sprints := make([]board.Sprint, 0, len(resp.Data))
	for i := range resp.Data {
		sprints = append(sprints, sprintToDomain(&resp.Data[i]))
	}
	return sprints, nil
}

// CircuitState reports the breaker protecting board calls.
func (c *Client) CircuitState() gateway.CircuitBreakerState {
	return gateway.CircuitBreakerState{
		Status:   c.breaker.State(),
		Failures: c.breaker.Failures(),
	}
}

func (c *Client) doRequest(ctx context.Context, method, reqURL string, body io.Reader) ([]byte, error) {
	var respBody []byte
	err := c.breaker.Execute(func() error {
		req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("http request: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		respBody, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		if resp.StatusCode >= 400 {
			return fmt.Errorf("board API %d: %s", resp.StatusCode, string(respBody))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return respBody, nil
}

func taskToDomain(t *boardTask) board.Task {
	return board.Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		Labels:      t.Labels,
		SprintID:    t.SprintID,
	}
}

func sprintToDomain(s *boardSprint) board.Sprint {
	return board.Sprint{
		ID:       s.ID,
		Name:     s.Name,
		StartsAt: s.StartsAt,
		EndsAt:   s.EndsAt,
		Active:   s.Active,
	}
}

func knowledgeToDomain(k *boardKnowledge) board.KnowledgeEntry {
	return board.KnowledgeEntry{
		ID:        k.ID,
		Title:     k.Title,
		Content:   k.Content,
		Tags:      k.Tags,
		UpdatedAt: k.UpdatedAt,
	}
}
