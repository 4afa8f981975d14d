package gateway

// Circuit breaker statuses as reported by the external clients.
const (
	CircuitClosed   = "closed"
	CircuitOpen     = "open"
	CircuitHalfOpen = "half-open"
)

// CircuitBreakerState is a read-only snapshot of an external client's
// circuit breaker.
type CircuitBreakerState struct {
	Status   string `json:"status"`
	Failures int    `json:"failures"`
}

// RateLimitInfo is a read-only snapshot of the tracker client's remaining
// call budget. A nil *RateLimitInfo means the client has not observed any
// rate-limit signal yet.
type RateLimitInfo struct {
	Remaining int `json:"remaining"`
}

// Literals rendered into reports when a section has no live data.
const (
	NotConfigured       = "not configured"
	RateLimitConfigured = "configured"
	SyncNever           = "never"
	DatabaseUnavailable = "(database unavailable)"
)

// SourceHealth is the board section of a health report.
type SourceHealth struct {
	Configured bool   `json:"configured"`
	Circuit    string `json:"circuit"`
	Failures   int    `json:"failures"`
}

// MirrorHealth is the tracker section of a health report.
type MirrorHealth struct {
	Configured bool   `json:"configured"`
	RateLimit  string `json:"rate_limit"`
}

// SyncHealth is the persisted-record section of a health report.
// Available is false only when the store read itself failed, in which case
// Detail carries the degraded marker and the other fields are zero.
type SyncHealth struct {
	Available          bool   `json:"available"`
	LastSuccessfulSync string `json:"last_successful_sync"`
	ItemsSynced        int    `json:"items_synced"`
	LastError          string `json:"last_error,omitempty"`
	Detail             string `json:"detail,omitempty"`
}

// HealthReport merges breaker, rate-limit, and last-sync state into one
// view. Each section is assembled independently; a failure in one never
// suppresses the others.
type HealthReport struct {
	Source SourceHealth `json:"source"`
	Mirror MirrorHealth `json:"mirror"`
	Sync   SyncHealth   `json:"sync"`
}
