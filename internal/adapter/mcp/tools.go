package mcp

import (
	"context"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	tgotel "github.com/taskgate/taskgate/internal/adapter/otel"
)

// toolSpec pairs a tool with the availability predicate that decides
// whether it registers.
type toolSpec struct {
	tool   mcpserver.ServerTool
	expose func(Availability) bool
}

func exposeAlways(Availability) bool     { return true }
func exposeSource(g Availability) bool   { return g.SourceAvailable() }
func exposeMirror(g Availability) bool   { return g.MirrorAvailable() }
func exposeSyncPair(g Availability) bool { return g.SyncAvailable() }

// toolTable declares every tool the server can expose. The orchestrator
// tools are always exposed and degrade to error results when their
// dependency is missing; everything else hides behind its gate.
func (s *Server) toolTable() []toolSpec {
	return []toolSpec{
		{s.sourceListTasksTool(), exposeSource},
		{s.sourceCreateTaskTool(), exposeSource},
		{s.sourceUpdateTaskTool(), exposeSource},
		{s.sourceGetKnowledgeTool(), exposeSource},
		{s.sourceAddKnowledgeTool(), exposeSource},
		{s.sourceListSprintsTool(), exposeSource},
		{s.mirrorListIssuesTool(), exposeMirror},
		{s.mirrorCreateIssueTool(), exposeMirror},
		{s.mirrorUpdateProjectItemTool(), exposeMirror},
		{s.mirrorGetPRStatusTool(), exposeMirror},
		{s.syncRunTool(), exposeSyncPair},
		{s.syncStatusTool(), exposeSyncPair},
		{s.orchestratorStatusTool(), exposeAlways},
		{s.orchestratorPauseTool(), exposeAlways},
		{s.orchestratorResumeTool(), exposeAlways},
	}
}

// registerTools filters the tool table through the availability gate and
// registers what remains, wrapping every handler with tracing and the
// invocation counter.
func (s *Server) registerTools() {
	table := s.toolTable()
	exposed := make([]mcpserver.ServerTool, 0, len(table))
	for _, entry := range table {
		if entry.expose(s.gate) {
			entry.tool.Handler = s.instrument(entry.tool.Tool.Name, entry.tool.Handler)
			exposed = append(exposed, entry.tool)
		}
	}
	s.mcpServer.AddTools(exposed...)
}

// instrument spans each invocation of a tool and counts it, keyed by the
// tool's name.
func (s *Server) instrument(name string, h mcpserver.ToolHandlerFunc) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		ctx, span := tgotel.StartToolSpan(ctx, name)
		defer span.End()
		if s.deps.Metrics != nil {
			s.deps.Metrics.ToolCalls.Add(ctx, 1, metric.WithAttributes(
				attribute.String("tool", name),
			))
		}
		return h(ctx, req)
	}
}

// splitCSV turns a comma-separated tool argument into a trimmed slice.
func splitCSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
