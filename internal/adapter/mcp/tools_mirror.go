package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/taskgate/taskgate/internal/domain/tracker"
)

func (s *Server) mirrorListIssuesTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("mirror_list_issues",
		mcplib.WithDescription("List all project items in the tracker"),
	)
	return mcpserver.ServerTool{
		Tool:    tool,
		Handler: s.handleMirrorListIssues,
	}
}

func (s *Server) mirrorCreateIssueTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("mirror_create_issue",
		mcplib.WithDescription("Open an issue in the tracker"),
		mcplib.WithString("title",
			mcplib.Required(),
			mcplib.Description("Issue title"),
		),
		mcplib.WithString("body",
			mcplib.Description("Issue body"),
		),
		mcplib.WithString("labels",
			mcplib.Description("Comma-separated labels"),
		),
	)
	return mcpserver.ServerTool{
		Tool:    tool,
		Handler: s.handleMirrorCreateIssue,
	}
}

func (s *Server) mirrorUpdateProjectItemTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("mirror_update_project_item",
		mcplib.WithDescription("Update a tracker project item; empty fields are left unchanged"),
		mcplib.WithString("item_id",
			mcplib.Required(),
			mcplib.Description("The project item ID to update"),
		),
		mcplib.WithString("status",
			mcplib.Description("New status"),
		),
		mcplib.WithString("title",
			mcplib.Description("New title"),
		),
	)
	return mcpserver.ServerTool{
		Tool:    tool,
		Handler: s.handleMirrorUpdateProjectItem,
	}
}

func (s *Server) mirrorGetPRStatusTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("mirror_get_pr_status",
		mcplib.WithDescription("Get merge and check state for a tracker pull request"),
		mcplib.WithNumber("number",
			mcplib.Required(),
			mcplib.Description("Pull request number"),
		),
	)
	return mcpserver.ServerTool{
		Tool:    tool,
		Handler: s.handleMirrorGetPRStatus,
	}
}

func (s *Server) handleMirrorListIssues(ctx context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Tracker == nil {
		return mcplib.NewToolResultError("tracker not configured"), nil
	}
	items, err := s.deps.Tracker.ListIssues(ctx)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to list issues", err), nil
	}
	data, err := json.Marshal(items)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to marshal issues", err), nil
	}
	return toolResultJSON(string(data)), nil
}

func (s *Server) handleMirrorCreateIssue(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Tracker == nil {
		return mcplib.NewToolResultError("tracker not configured"), nil
	}
	args := req.GetArguments()
	title, ok := args["title"].(string)
	if !ok || title == "" {
		return mcplib.NewToolResultError("title is required"), nil
	}
	body, _ := args["body"].(string)
	labels, _ := args["labels"].(string)

	item, err := s.deps.Tracker.CreateIssue(ctx, tracker.CreateIssueRequest{
		Title:  title,
		Body:   body,
		Labels: splitCSV(labels),
	})
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to create issue", err), nil
	}
	data, err := json.Marshal(item)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to marshal issue", err), nil
	}
	return toolResultJSON(string(data)), nil
}

func (s *Server) handleMirrorUpdateProjectItem(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Tracker == nil {
		return mcplib.NewToolResultError("tracker not configured"), nil
	}
	args := req.GetArguments()
	itemID, ok := args["item_id"].(string)
	if !ok || itemID == "" {
		return mcplib.NewToolResultError("item_id is required"), nil
	}
	status, _ := args["status"].(string)
	title, _ := args["title"].(string)

	item, err := s.deps.Tracker.UpdateProjectItem(ctx, itemID, tracker.UpdateItemRequest{
		Title:  title,
		Status: status,
	})
	if err != nil {
		return mcplib.NewToolResultErrorFromErr(
			fmt.Sprintf("failed to update project item %s", itemID), err,
		), nil
	}
	data, err := json.Marshal(item)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to marshal project item", err), nil
	}
	return toolResultJSON(string(data)), nil
}

func (s *Server) handleMirrorGetPRStatus(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Tracker == nil {
		return mcplib.NewToolResultError("tracker not configured"), nil
	}
	args := req.GetArguments()
	number, ok := args["number"].(float64)
	if !ok {
		return mcplib.NewToolResultError("number is required"), nil
	}
	pr, err := s.deps.Tracker.PullRequestStatus(ctx, int(number))
	if err != nil {
		return mcplib.NewToolResultErrorFromErr(
			fmt.Sprintf("failed to get pull request %d", int(number)), err,
		), nil
	}
	data, err := json.Marshal(pr)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to marshal pull request", err), nil
	}
	return toolResultJSON(string(data)), nil
}
