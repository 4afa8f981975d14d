package service

import (
	"context"
	"fmt"

	"github.com/taskgate/taskgate/internal/domain"
	"github.com/taskgate/taskgate/internal/domain/tracker"
	"github.com/taskgate/taskgate/internal/port/trackerclient"
)

// TrackerService exposes the tracker's issue and project-item operations.
type TrackerService struct {
	client trackerclient.Client
}

// NewTrackerService creates a TrackerService.
func NewTrackerService(client trackerclient.Client) *TrackerService {
	return &TrackerService{client: client}
}

// ListIssues returns all project items in the tracker.
func (s *TrackerService) ListIssues(ctx context.Context) ([]tracker.ProjectItem, error) {
	return s.client.ListItems(ctx)
}

// CreateIssue validates and opens a tracker issue.
func (s *TrackerService) CreateIssue(ctx context.Context, req tracker.CreateIssueRequest) (*tracker.ProjectItem, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.client.CreateIssue(ctx, req)
}

// UpdateProjectItem applies a partial update to a project item.
func (s *TrackerService) UpdateProjectItem(ctx context.Context, id string, req tracker.UpdateItemRequest) (*tracker.ProjectItem, error) {
	if id == "" {
		return nil, fmt.Errorf("item id is required: %w", domain.ErrValidation)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.client.UpdateItem(ctx, id, req)
}

// PullRequestStatus returns merge and check state for a pull request.
func (s *TrackerService) PullRequestStatus(ctx context.Context, number int) (*tracker.PullRequest, error) {
	if number <= 0 {
		return nil, fmt.Errorf("pull request number must be positive: %w", domain.ErrValidation)
	}
	return s.client.PullRequestStatus(ctx, number)
}
