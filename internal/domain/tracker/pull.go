package tracker

// PullRequest is a read-only snapshot of a tracker pull request, used by
// agents to check review and CI state before acting on a task.
type PullRequest struct {
	Number       int    `json:"number"`
	Title        string `json:"title"`
	State        string `json:"state"`
	Merged       bool   `json:"merged"`
	ChecksStatus string `json:"checks_status,omitempty"`
}
