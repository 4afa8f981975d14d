package secrets

import "os"

// Environment variable names for credentials the gateway consumes at startup.
const (
	KeyBoardToken    = "TASKGATE_BOARD_TOKEN"
	KeyTrackerToken  = "TASKGATE_TRACKER_TOKEN"
	KeyWebhookSecret = "TASKGATE_WEBHOOK_BOARD_SECRET"
	KeyMCPAPIKey     = "TASKGATE_MCP_API_KEY"
)

// EnvLoader returns a Loader that reads the specified environment variables.
// Missing variables are silently omitted from the result map.
func EnvLoader(keys ...string) Loader {
	return func() (map[string]string, error) {
		vals := make(map[string]string, len(keys))
		for _, k := range keys {
			if v := os.Getenv(k); v != "" {
				vals[k] = v
			}
		}
		return vals, nil
	}
}
