// Package tracker contains the domain models for the Mirror project tracker.
package tracker

import (
	"fmt"

	"github.com/taskgate/taskgate/internal/domain"
)

// ProjectItem is an entry on the tracker's project board. Identity is the
// tracker-assigned ID; IssueNumber is the human-facing reference when the
// item is backed by an issue.
type ProjectItem struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Status      string   `json:"status"`
	IssueNumber int      `json:"issue_number,omitempty"`
	Labels      []string `json:"labels,omitempty"`
}

// CreateIssueRequest is the input for opening a tracker issue.
type CreateIssueRequest struct {
	Title  string   `json:"title"`
	Body   string   `json:"body,omitempty"`
	Labels []string `json:"labels,omitempty"`
}

// Validate checks required fields on a CreateIssueRequest.
func (r *CreateIssueRequest) Validate() error {
	if r.Title == "" {
		return fmt.Errorf("title is required: %w", domain.ErrValidation)
	}
	return nil
}

// UpdateItemRequest is the input for updating a project item.
// Empty fields are left unchanged by the tracker.
type UpdateItemRequest struct {
	Title  string `json:"title,omitempty"`
	Status string `json:"status,omitempty"`
}

// Validate checks that an UpdateItemRequest changes at least one field.
func (r *UpdateItemRequest) Validate() error {
	if r.Title == "" && r.Status == "" {
		return fmt.Errorf("at least one field must be set: %w", domain.ErrValidation)
	}
	return nil
}
