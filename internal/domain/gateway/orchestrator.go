package gateway

// OrchestratorState is the control-plane state of the Bolt automation loop.
type OrchestratorState string

const (
	// OrchestratorRunning is the initial state.
	OrchestratorRunning OrchestratorState = "RUNNING"
	OrchestratorPaused  OrchestratorState = "PAUSED"
)

// OrchestratorStatus is the control-plane view returned by status calls:
// the loop state plus, per integration, the circuit-breaker status string
// or the NotConfigured literal when the integration is absent.
type OrchestratorStatus struct {
	State  OrchestratorState `json:"state"`
	Source string            `json:"source"`
	Mirror string            `json:"mirror"`
}
