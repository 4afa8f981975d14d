package mcp

import (
	"context"
	"encoding/json"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/taskgate/taskgate/internal/domain/gateway"
)

func (s *Server) syncRunTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("sync_run",
		mcplib.WithDescription("Synchronize board tasks to the tracker; set dry_run to preview without writing"),
		mcplib.WithBoolean("dry_run",
			mcplib.Description("Report what a sync would do instead of doing it"),
		),
	)
	return mcpserver.ServerTool{
		Tool:    tool,
		Handler: s.handleSyncRun,
	}
}

func (s *Server) syncStatusTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("sync_status",
		mcplib.WithDescription("Get the gateway health report: breakers, rate limit, and last sync"),
	)
	return mcpserver.ServerTool{
		Tool:    tool,
		Handler: s.handleSyncStatus,
	}
}

func (s *Server) handleSyncRun(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Syncer == nil {
		return mcplib.NewToolResultError("sync not configured"), nil
	}
	args := req.GetArguments()
	dryRun, _ := args["dry_run"].(bool)

	if dryRun {
		report, err := s.deps.Syncer.PreviewSync(ctx)
		if err != nil {
			return mcplib.NewToolResultErrorFromErr("failed to preview sync", err), nil
		}
		data, err := json.Marshal(report)
		if err != nil {
			return mcplib.NewToolResultErrorFromErr("failed to marshal preview", err), nil
		}
		return toolResultJSON(string(data)), nil
	}

	// A failed run is still a reported outcome, not a tool error.
	outcome := s.deps.Syncer.RunSync(ctx, gateway.TriggerManual)
	data, err := json.Marshal(outcome)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to marshal sync outcome", err), nil
	}
	return toolResultJSON(string(data)), nil
}

func (s *Server) handleSyncStatus(ctx context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Status == nil {
		return mcplib.NewToolResultError("status reporter not configured"), nil
	}
	report := s.deps.Status.Report(ctx)
	data, err := json.Marshal(report)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to marshal status report", err), nil
	}
	return toolResultJSON(string(data)), nil
}
