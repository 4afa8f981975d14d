// Package trackerapi implements a trackerclient.Client for the project
// tracker REST API.
package trackerapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/taskgate/taskgate/internal/domain/gateway"
	"github.com/taskgate/taskgate/internal/domain/tracker"
	"github.com/taskgate/taskgate/internal/outbound"
	"github.com/taskgate/taskgate/internal/resilience"
)

const (
	defaultRequestTimeout = 30 * time.Second
	defaultMaxFailures    = 5
	defaultBreakerTimeout = 30 * time.Second

	// listPageSize is the tracker's maximum page size for issue listings.
	listPageSize = 100
)

// Options configures a tracker API client.
type Options struct {
	BaseURL string
	Token   string
	Owner   string
	Repo    string
	Timeout time.Duration
	Breaker *resilience.Breaker
	Pool    *outbound.Pool
}

// Client talks to the project tracker over its REST API. Calls are bounded
// by a shared outbound pool and guarded by a circuit breaker. The client
// records the X-RateLimit-Remaining header from every response.
type Client struct {
	baseURL    string
	token      string
	owner      string
	repo       string
	breaker    *resilience.Breaker
	pool       *outbound.Pool
	httpClient *http.Client

	rateMu   sync.Mutex
	rateInfo *gateway.RateLimitInfo
}

// NewClient creates a tracker API client.
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
		owner:      opts.Owner,
		repo:       opts.Repo,
		breaker:    breaker,
		pool:       opts.Pool,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// trackerIssue mirrors the JSON shape of an issue in the tracker API.
type trackerIssue struct {
	ID     string         `json:"id"`
	Number int            `json:"number"`
	Title  string         `json:"title"`
	Body   string         `json:"body"`
	State  string         `json:"state"`
	Labels []trackerLabel `json:"labels"`
}

type trackerLabel struct {
	Name string `json:"name"`
}

type trackerPull struct {
	Number       int    `json:"number"`
	Title        string `json:"title"`
	State        string `json:"state"`
	Merged       bool   `json:"merged"`
	ChecksStatus string `json:"checks_status"`
}

// ListItems returns every project item, following pagination until the
// tracker returns a short page.
func (c *Client) ListItems(ctx context.Context) ([]tracker.ProjectItem, error) {
	var items []tracker.ProjectItem

	for page := 1; ; page++ {
		reqURL := fmt.Sprintf("%s/repos/%s/%s/issues?state=all&per_page=%d&page=%d",
			c.baseURL, c.owner, c.repo, listPageSize, page)

		body, err := c.doRequest(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("tracker list issues: %w", err)
		}

		var issues []trackerIssue
		if err := json.Unmarshal(body, &issues); err != nil {
			return nil, fmt.Errorf("tracker parse response: %w", err)
		}

		for i := range issues {
			items = append(items, issueToItem(&issues[i]))
		}

		if len(issues) < listPageSize {
			break
		}
	}

	if items == nil {
		items = []tracker.ProjectItem{}
	}
	return items, nil
}

func (c *Client) CreateIssue(ctx context.Context, req tracker.CreateIssueRequest) (*tracker.ProjectItem, error) {
	payload := map[string]any{
		"title": req.Title,
	}
	if req.Body != "" {
		payload["body"] = req.Body
	}
	if len(req.Labels) > 0 {
		payload["labels"] = req.Labels
	}
	payloadJSON, _ := json.Marshal(payload)

	reqURL := fmt.Sprintf("%s/repos/%s/%s/issues", c.baseURL, c.owner, c.repo)
	body, err := c.doRequest(ctx, http.MethodPost, reqURL, strings.NewReader(string(payloadJSON)))
	if err != nil {
		return nil, fmt.Errorf("tracker create issue: %w", err)
	}

	var created trackerIssue
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("tracker parse response: %w", err)
	}

	item := issueToItem(&created)
	return &item, nil
}

func (c *Client) UpdateItem(ctx context.Context, id string, req tracker.UpdateItemRequest) (*tracker.ProjectItem, error) {
	payload := map[string]string{}
	if req.Title != "" {
		payload["title"] = req.Title
	}
	if req.Status != "" {
		payload["status"] = req.Status
	}
	payloadJSON, _ := json.Marshal(payload)

	reqURL := fmt.Sprintf("%s/projects/items/%s", c.baseURL, url.PathEscape(id))
	body, err := c.doRequest(ctx, http.MethodPatch, reqURL, strings.NewReader(string(payloadJSON)))
	if err != nil {
		return nil, fmt.Errorf("tracker update item: %w", err)
	}

	var updated trackerIssue
	if err := json.Unmarshal(body, &updated); err != nil {
		return nil, fmt.Errorf("tracker parse response: %w", err)
	}

	item := issueToItem(&updated)
	return &item, nil
}

func (c *Client) PullRequestStatus(ctx context.Context, number int) (*tracker.PullRequest, error) {
	reqURL := fmt.Sprintf("%s/repos/%s/%s/pulls/%d", c.baseURL, c.owner, c.repo, number)
	body, err := c.doRequest(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("tracker get pull: %w", err)
	}

	var pull trackerPull
	if err := json.Unmarshal(body, &pull); err != nil {
		return nil, fmt.Errorf("tracker parse response: %w", err)
	}

	return &tracker.PullRequest{
		Number:       pull.Number,
		Title:        pull.Title,
		State:        strings.ToLower(pull.State),
		Merged:       pull.Merged,
		ChecksStatus: pull.ChecksStatus,
	}, nil
}

// CircuitState reports the breaker protecting tracker calls.
func (c *Client) CircuitState() gateway.CircuitBreakerState {
	return gateway.CircuitBreakerState{
		Status:   c.breaker.State(),
		Failures: c.breaker.Failures(),
	}
}

// RateLimit returns the last rate limit headers the tracker reported,
// or nil if no response has carried them yet.
func (c *Client) RateLimit() *gateway.RateLimitInfo {
	c.rateMu.Lock()
	defer c.rateMu.Unlock()
	if c.rateInfo == nil {
		return nil
	}
	info := *c.rateInfo
	return &info
}

func (c *Client) doRequest(ctx context.Context, method, reqURL string, body io.Reader) ([]byte, error) {
	var respBody []byte
	err := c.pool.Run(ctx, func() error {
		return c.breaker.Execute(func() error {
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

			c.captureRateLimit(resp)

			respBody, err = io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("read response: %w", err)
			}

			if resp.StatusCode >= 400 {
				return fmt.Errorf("tracker API %d: %s", resp.StatusCode, string(respBody))
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return respBody, nil
}

func (c *Client) captureRateLimit(resp *http.Response) {
	v := resp.Header.Get("X-RateLimit-Remaining")
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return
	}
	c.rateMu.Lock()
	c.rateInfo = &gateway.RateLimitInfo{Remaining: n}
	c.rateMu.Unlock()
}

func issueToItem(issue *trackerIssue) tracker.ProjectItem {
	labels := make([]string, 0, len(issue.Labels))
	for _, l := range issue.Labels {
		labels = append(labels, l.Name)
	}

	id := issue.ID
	if id == "" {
		id = strconv.Itoa(issue.Number)
	}

	return tracker.ProjectItem{
		ID:          id,
		Title:       issue.Title,
		Status:      strings.ToLower(issue.State),
		IssueNumber: issue.Number,
		Labels:      labels,
	}
}
