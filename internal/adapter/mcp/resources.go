package mcp

import (
	"context"
	"encoding/json"
	"errors"

	mcplib "github.com/mark3labs/mcp-go/mcp"

	"github.com/taskgate/taskgate/internal/domain"
	"github.com/taskgate/taskgate/internal/domain/gateway"
)

// registerResources registers the read-only MCP resources.
func (s *Server) registerResources() {
	s.mcpServer.AddResource(
		mcplib.NewResource(
			"taskgate://status",
			"Gateway Status",
			mcplib.WithResourceDescription("Breaker, rate-limit, and last-sync health of the gateway"),
			mcplib.WithMIMEType("application/json"),
		),
		s.handleStatusResource,
	)

	s.mcpServer.AddResource(
		mcplib.NewResource(
			"taskgate://sync/record",
			"Sync Record",
			mcplib.WithResourceDescription("Persisted outcome of the most recent sync run"),
			mcplib.WithMIMEType("application/json"),
		),
		s.handleSyncRecordResource,
	)
}

func (s *Server) handleStatusResource(ctx context.Context, req mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	if s.deps.Status == nil {
		return jsonResourceContents(req.Params.URI, `{"error":"status reporter not configured"}`), nil
	}
	report := s.deps.Status.Report(ctx)
	data, err := json.Marshal(report)
	if err != nil {
		return nil, err
	}
	return jsonResourceContents(req.Params.URI, string(data)), nil
}

func (s *Server) handleSyncRecordResource(ctx context.Context, req mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	if s.deps.Records == nil {
		return jsonResourceContents(req.Params.URI, `{"error":"sync store not configured"}`), nil
	}
	rec, err := s.deps.Records.FindSyncRecord(ctx, gateway.SourceID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return jsonResourceContents(req.Params.URI, `{"error":"no sync recorded yet"}`), nil
	case err != nil:
		return nil, err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	return jsonResourceContents(req.Params.URI, string(data)), nil
}

func jsonResourceContents(uri, text string) []mcplib.ResourceContents {
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     text,
		},
	}
}
