// Package mcp exposes the gateway to AI agents over the Model Context
// Protocol. Every tool the server can serve is declared in a single table
// pairing the tool with an availability predicate; registration filters
// that table once at startup, so the tools of an unconfigured integration
// are never visible to clients.
package mcp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	tgotel "github.com/taskgate/taskgate/internal/adapter/otel"
	"github.com/taskgate/taskgate/internal/domain/board"
	"github.com/taskgate/taskgate/internal/domain/gateway"
	"github.com/taskgate/taskgate/internal/domain/tracker"
	"github.com/taskgate/taskgate/internal/port/boardclient"
)

// ServerConfig holds the MCP server settings.
type ServerConfig struct {
	Addr    string
	Name    string
	Version string
	APIKey  string
}

// Availability is the view of the startup gate the tool table consults.
type Availability interface {
	SourceAvailable() bool
	MirrorAvailable() bool
	SyncAvailable() bool
}

// TaskBoard is the board surface the source tools call.
type TaskBoard interface {
	ListTasks(ctx context.Context, opts boardclient.ListOptions) ([]board.Task, error)
	CreateTask(ctx context.Context, req board.CreateTaskRequest) (*board.Task, error)
	UpdateTask(ctx context.Context, id string, req board.UpdateTaskRequest) (*board.Task, error)
	SearchKnowledge(ctx context.Context, query string) ([]board.KnowledgeEntry, error)
	AddKnowledge(ctx context.Context, req board.CreateKnowledgeRequest) (*board.KnowledgeEntry, error)
	ListSprints(ctx context.Context) ([]board.Sprint, error)
}

// ProjectTracker is the tracker surface the mirror tools call.
type ProjectTracker interface {
	ListIssues(ctx context.Context) ([]tracker.ProjectItem, error)
	CreateIssue(ctx context.Context, req tracker.CreateIssueRequest) (*tracker.ProjectItem, error)
	UpdateProjectItem(ctx context.Context, id string, req tracker.UpdateItemRequest) (*tracker.ProjectItem, error)
	PullRequestStatus(ctx context.Context, number int) (*tracker.PullRequest, error)
}

// Syncer runs and previews board-to-tracker synchronization.
type Syncer interface {
	RunSync(ctx context.Context, trigger string) *gateway.SyncOutcome
	PreviewSync(ctx context.Context) (*gateway.DryRunReport, error)
}

// Orchestrator controls the background sync loop.
type Orchestrator interface {
	Pause(ctx context.Context)
	Resume(ctx context.Context)
	Status() gateway.OrchestratorStatus
}

// StatusReporter assembles the gateway health report.
type StatusReporter interface {
	Report(ctx context.Context) gateway.HealthReport
}

// RecordFinder reads the persisted sync record.
type RecordFinder interface {
	FindSyncRecord(ctx context.Context, source string) (*gateway.SyncRecord, error)
}

// ServerDeps carries the collaborators the tools and resources call.
// Any field may be nil; handlers that need a missing one return a
// "not configured" error result rather than failing the call.
type ServerDeps struct {
	Gate         Availability
	Board        TaskBoard
	Tracker      ProjectTracker
	Syncer       Syncer
	Orchestrator Orchestrator
	Status       StatusReporter
	Records      RecordFinder
	Metrics      *tgotel.Metrics
}

// Server serves the gateway tools and resources over MCP's streamable
// HTTP transport.
type Server struct {
	cfg        ServerConfig
	deps       ServerDeps
	gate       Availability
	mcpServer  *mcpserver.MCPServer
	httpServer *http.Server
}

// NewServer builds the MCP server and registers the tools and resources
// that pass the availability gate. A nil gate exposes only the tools that
// are always available.
func NewServer(cfg ServerConfig, deps ServerDeps) *Server {
	s := &Server{
		cfg:  cfg,
		deps: deps,
		gate: deps.Gate,
		mcpServer: mcpserver.NewMCPServer(cfg.Name, cfg.Version,
			mcpserver.WithToolCapabilities(true),
			mcpserver.WithResourceCapabilities(false, true),
			mcpserver.WithRecovery(),
		),
	}
	if s.gate == nil {
		s.gate = nothingAvailable{}
	}
	s.registerTools()
	s.registerResources()
	return s
}

// nothingAvailable stands in when no gate is supplied.
type nothingAvailable struct{}

func (nothingAvailable) SourceAvailable() bool { return false }
func (nothingAvailable) MirrorAvailable() bool { return false }
func (nothingAvailable) SyncAvailable() bool   { return false }

// MCPServer returns the underlying MCP server, mainly for tests.
func (s *Server) MCPServer() *mcpserver.MCPServer { return s.mcpServer }

// Start begins serving on the configured address and returns immediately.
// Serve errors after startup are logged, not returned.
func (s *Server) Start() error {
	transport := mcpserver.NewStreamableHTTPServer(s.mcpServer)
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           AuthMiddleware(s.cfg.APIKey, transport),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("mcp server", "error", err)
		}
	}()
	slog.Info("mcp server listening", "addr", s.cfg.Addr)
	return nil
}

// Stop gracefully shuts the transport down.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// toolResultJSON wraps an already-marshaled JSON payload as a text result.
func toolResultJSON(data string) *mcplib.CallToolResult {
	return mcplib.NewToolResultText(data)
}
