// Package trackerclient defines the port interface for the project tracker
// that mirrors board tasks.
package trackerclient

import (
	"context"

	"github.com/taskgate/taskgate/internal/domain/gateway"
	"github.com/taskgate/taskgate/internal/domain/tracker"
)

// Client is the port interface for the project tracker API.
type Client interface {
	// ListItems returns all project items in the tracker.
	ListItems(ctx context.Context) ([]tracker.ProjectItem, error)

	// CreateIssue opens a new issue in the tracker repository.
	CreateIssue(ctx context.Context, req tracker.CreateIssueRequest) (*tracker.ProjectItem, error)

	// UpdateItem applies a partial update to a project item.
	UpdateItem(ctx context.Context, id string, req tracker.UpdateItemRequest) (*tracker.ProjectItem, error)

	// PullRequestStatus returns merge and check state for a pull request.
	PullRequestStatus(ctx context.Context, number int) (*tracker.PullRequest, error)

	// CircuitState reports the client's circuit breaker state.
	CircuitState() gateway.CircuitBreakerState

	// RateLimit returns the most recent rate limit headers seen, or nil
	// if the tracker has not reported any.
	RateLimit() *gateway.RateLimitInfo
}
