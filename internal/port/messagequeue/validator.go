package messagequeue

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Validate checks whether data is valid JSON conforming to the schema
// associated with the given subject. Unknown subjects pass validation
// (future-proof for new message types).
func Validate(subject string, data []byte) error {
	if !json.Valid(data) {
		return fmt.Errorf("invalid JSON on subject %s", subject)
	}

	// Map subject to payload struct for structural validation.
	var target any
	switch {
	case subject == SubjectSyncStarted:
		target = &SyncStartedPayload{}
	case subject == SubjectSyncCompleted:
		target = &SyncCompletedPayload{}
	case subject == SubjectSyncFailed:
		target = &SyncFailedPayload{}
	case subject == SubjectOrchestratorPaused, subject == SubjectOrchestratorResumed:
		target = &OrchestratorStatePayload{}
	case strings.HasPrefix(subject, SubjectBoardTasks+"."):
		// board.tasks.{event} — the payload shape is set by the board's
		// webhook, which varies per event. Accept any valid JSON.
		return nil
	default:
		return nil
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("schema validation failed for %s: %w", subject, err)
	}
	return nil
}
