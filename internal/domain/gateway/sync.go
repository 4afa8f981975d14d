// Package gateway contains the domain models owned by the synchronization
// and orchestration subsystem: sync results, health reports, and the
// orchestrator control-plane state.
package gateway

import "time"

// SourceID is the logical identifier for the one sync source this gateway
// mirrors. SyncRecord rows are keyed by it.
const SourceID = "SOURCE"

// Sync trigger labels stamped on events and metrics.
const (
	TriggerManual  = "manual"
	TriggerBolt    = "bolt"
	TriggerWebhook = "webhook"
)

// SyncRecord is the persisted outcome of the most recent synchronization
// for a source. One logical row per source; written by the reconciliation
// routine, read by the status reporter.
type SyncRecord struct {
	Source             string     `json:"source"`
	LastSuccessfulSync *time.Time `json:"last_successful_sync,omitempty"`
	ItemsSynced        int        `json:"items_synced"`
	ErrorMessage       string     `json:"error_message,omitempty"`
}

// SyncResult is the structured outcome of one reconciliation run.
// Success is the sole outcome classifier: a run with Success=true and a
// non-empty Errors slice is a success that carries warnings, and a run
// with Success=false is a failure even when Created is positive.
type SyncResult struct {
	Success    bool     `json:"success"`
	Created    int      `json:"created"`
	Updated    int      `json:"updated"`
	Skipped    int      `json:"skipped"`
	Errors     []string `json:"errors,omitempty"`
	DurationMs int64    `json:"duration_ms"`
}

// Sync outcome statuses as reported to callers.
const (
	SyncStatusSuccess = "success"
	SyncStatusFailed  = "failed"
)

// SyncOutcome is the executor's formatted report of a sync run.
type SyncOutcome struct {
	RunID   string     `json:"run_id"`
	Status  string     `json:"status"`
	Message string     `json:"message"`
	Result  SyncResult `json:"result"`
}

// Failed reports whether the outcome was classified as a failure.
func (o *SyncOutcome) Failed() bool { return o.Status == SyncStatusFailed }

// NewTask is a board task that has no title match on the tracker yet,
// reported by the dry-run preview with title and status only.
type NewTask struct {
	Title  string `json:"title"`
	Status string `json:"status"`
}

// DryRunReport is the non-mutating preview of what a sync would do.
type DryRunReport struct {
	SourceTasks int       `json:"source_tasks"`
	MirrorItems int       `json:"mirror_items"`
	NewCount    int       `json:"new_count"`
	NewTasks    []NewTask `json:"new_tasks,omitempty"`
}
