package ws

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/taskgate/taskgate/internal/port/messagequeue"
)

// bridgedSubjects maps queue subjects to WebSocket event types.
var bridgedSubjects = map[string]string{
	messagequeue.SubjectSyncStarted:         EventSyncStarted,
	messagequeue.SubjectSyncCompleted:       EventSyncCompleted,
	messagequeue.SubjectSyncFailed:          EventSyncFailed,
	messagequeue.SubjectOrchestratorPaused:  EventOrchestratorState,
	messagequeue.SubjectOrchestratorResumed: EventOrchestratorState,
}

// BridgeQueue subscribes the hub to gateway subjects on the message queue
// and rebroadcasts each message to connected WebSocket clients. It returns
// a function that cancels all bridge subscriptions.
func (h *Hub) BridgeQueue(ctx context.Context, q messagequeue.Queue) (func(), error) {
	var stops []func()

	stopAll := func() {
		for _, stop := range stops {
			stop()
		}
	}

	for subject, eventType := range bridgedSubjects {
		et := eventType
		stop, err := q.Subscribe(ctx, subject, func(msgCtx context.Context, _ string, data []byte) error {
			h.Broadcast(msgCtx, Message{
				Type:    et,
				Payload: json.RawMessage(data),
			})
			return nil
		})
		if err != nil {
			stopAll()
			return nil, fmt.Errorf("bridge subscribe %s: %w", subject, err)
		}
		stops = append(stops, stop)
	}

	return stopAll, nil
}
