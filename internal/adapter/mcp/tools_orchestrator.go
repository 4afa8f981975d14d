package mcp

import (
	"context"
	"encoding/json"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

func (s *Server) orchestratorStatusTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("orchestrator_status",
		mcplib.WithDescription("Get the Bolt loop state and per-integration circuit status"),
	)
	return mcpserver.ServerTool{
		Tool:    tool,
		Handler: s.handleOrchestratorStatus,
	}
}

func (s *Server) orchestratorPauseTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("orchestrator_pause",
		mcplib.WithDescription("Pause the Bolt loop; manual and webhook syncs keep working"),
	)
	return mcpserver.ServerTool{
		Tool:    tool,
		Handler: s.handleOrchestratorPause,
	}
}

func (s *Server) orchestratorResumeTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("orchestrator_resume",
		mcplib.WithDescription("Resume the Bolt loop"),
	)
	return mcpserver.ServerTool{
		Tool:    tool,
		Handler: s.handleOrchestratorResume,
	}
}

func (s *Server) handleOrchestratorStatus(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Orchestrator == nil {
		return mcplib.NewToolResultError("orchestrator not configured"), nil
	}
	return s.orchestratorStatusResult()
}

func (s *Server) handleOrchestratorPause(ctx context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Orchestrator == nil {
		return mcplib.NewToolResultError("orchestrator not configured"), nil
	}
	s.deps.Orchestrator.Pause(ctx)
	return s.orchestratorStatusResult()
}

func (s *Server) handleOrchestratorResume(ctx context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Orchestrator == nil {
		return mcplib.NewToolResultError("orchestrator not configured"), nil
	}
	s.deps.Orchestrator.Resume(ctx)
	return s.orchestratorStatusResult()
}

// orchestratorStatusResult renders the current control-plane view, so
// pause and resume return the state they produced.
func (s *Server) orchestratorStatusResult() (*mcplib.CallToolResult, error) {
	status := s.deps.Orchestrator.Status()
	data, err := json.Marshal(status)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to marshal orchestrator status", err), nil
	}
	return toolResultJSON(string(data)), nil
}
