package messagequeue

// SyncStartedPayload is the schema for gateway.sync.started messages.
type SyncStartedPayload struct {
	RunID   string `json:"run_id"`
	DryRun  bool   `json:"dry_run"`
	Trigger string `json:"trigger"` // "manual", "bolt" or "webhook"
}

// SyncCompletedPayload is the schema for gateway.sync.completed messages.
type SyncCompletedPayload struct {
	RunID      string   `json:"run_id"`
	Status     string   `json:"status"`
	Created    int      `json:"created"`
	Updated    int      `json:"updated"`
	Skipped    int      `json:"skipped"`
	Errors     []string `json:"errors"`
	DurationMs int64    `json:"duration_ms"`
}

// SyncFailedPayload is the schema for gateway.sync.failed messages.
type SyncFailedPayload struct {
	RunID   string `json:"run_id"`
	Message string `json:"message"`
}

// OrchestratorStatePayload is the schema for gateway.orchestrator.* messages.
type OrchestratorStatePayload struct {
	State string `json:"state"`
}
