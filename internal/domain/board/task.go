// Package board contains the domain models for the Source task board.
package board

import (
	"fmt"

	"github.com/taskgate/taskgate/internal/domain"
)

// Task is a work item owned by the board. The board assigns IDs and is the
// system of record; taskgate never deletes tasks.
type Task struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Status      string   `json:"status"`
	Priority    string   `json:"priority,omitempty"`
	Labels      []string `json:"labels,omitempty"`
	SprintID    string   `json:"sprint_id,omitempty"`
}

// CreateTaskRequest is the input for creating a board task.
type CreateTaskRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Priority    string   `json:"priority,omitempty"`
	Labels      []string `json:"labels,omitempty"`
	SprintID    string   `json:"sprint_id,omitempty"`
}

// Validate checks required fields on a CreateTaskRequest.
func (r *CreateTaskRequest) Validate() error {
	if r.Title == "" {
		return fmt.Errorf("title is required: %w", domain.ErrValidation)
	}
	return nil
}

// UpdateTaskRequest is the input for updating a board task.
// Empty fields are left unchanged by the board.
type UpdateTaskRequest struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
	Priority    string `json:"priority,omitempty"`
}

// Validate checks that an UpdateTaskRequest changes at least one field.
func (r *UpdateTaskRequest) Validate() error {
	if r.Title == "" && r.Description == "" && r.Status == "" && r.Priority == "" {
		return fmt.Errorf("at least one field must be set: %w", domain.ErrValidation)
	}
	return nil
}
