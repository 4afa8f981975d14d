package gateway

// BoardEvent is a parsed inbound webhook notification from the board.
type BoardEvent struct {
	Event  string `json:"event"`
	TaskID string `json:"task_id"`
	Title  string `json:"title"`
}
