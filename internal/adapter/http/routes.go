package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskgate/taskgate/internal/config"
	"github.com/taskgate/taskgate/internal/middleware"
)

// Availability is the view of the startup gate the route table consults.
type Availability interface {
	SourceAvailable() bool
	MirrorAvailable() bool
	SyncAvailable() bool
}

// MountRoutes registers the ops API on the given chi router. Routes for an
// unconfigured integration are not registered at all; the orchestrator
// control plane is always mounted and reports "not configured" per side.
func MountRoutes(r chi.Router, h *Handlers, gate Availability, webhookCfg config.Webhook) {
	// Board webhooks (outside auth, HMAC-verified against the raw body).
	if gate.SourceAvailable() {
		r.Route("/api/v1/webhooks", func(r chi.Router) {
			r.With(middleware.WebhookHMAC(webhookCfg.BoardSecret, "X-Board-Signature")).
				Post("/board", h.HandleBoardWebhook)
		})
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Version
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"version":"0.1.0"}`))
		})

		// Board (Source)
		if gate.SourceAvailable() {
			r.Get("/board/tasks", h.ListTasks)
			r.Post("/board/tasks", h.CreateTask)
			r.Put("/board/tasks/{id}", h.UpdateTask)
			r.Get("/board/knowledge", h.SearchKnowledge)
			r.Post("/board/knowledge", h.AddKnowledge)
			r.Get("/board/sprints", h.ListSprints)
		}

		// Tracker (Mirror)
		if gate.MirrorAvailable() {
			r.Get("/tracker/issues", h.ListIssues)
			r.Post("/tracker/issues", h.CreateIssue)
			r.Put("/tracker/items/{id}", h.UpdateProjectItem)
			r.Get("/tracker/pulls/{number}", h.PullRequestStatus)
		}

		// Sync pair; needs both sides configured.
		if gate.SyncAvailable() {
			r.Post("/sync/run", h.RunSync)
			r.Get("/sync/status", h.SyncStatus)
		}

		// Orchestrator control plane, always mounted.
		r.Get("/orchestrator/status", h.OrchestratorStatus)
		r.Post("/orchestrator/pause", h.PauseOrchestrator)
		r.Post("/orchestrator/resume", h.ResumeOrchestrator)
	})
}
