package board

import (
	"fmt"
	"time"

	"github.com/taskgate/taskgate/internal/domain"
)

// KnowledgeEntry is a page in the board's knowledge base.
type KnowledgeEntry struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateKnowledgeRequest is the input for adding a knowledge entry.
type CreateKnowledgeRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags,omitempty"`
}

// Validate checks required fields on a CreateKnowledgeRequest.
func (r *CreateKnowledgeRequest) Validate() error {
	if r.Title == "" {
		return fmt.Errorf("title is required: %w", domain.ErrValidation)
	}
	if r.Content == "" {
		return fmt.Errorf("content is required: %w", domain.ErrValidation)
	}
	return nil
}
