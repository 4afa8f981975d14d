package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/taskgate/taskgate/internal/domain/board"
	"github.com/taskgate/taskgate/internal/port/boardclient"
)

func (s *Server) sourceListTasksTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("source_list_tasks",
		mcplib.WithDescription("List tasks on the board, optionally filtered by status and sprint"),
		mcplib.WithString("status",
			mcplib.Description("Only return tasks with this status"),
		),
		mcplib.WithString("sprint_id",
			mcplib.Description("Only return tasks in this sprint"),
		),
	)
	return mcpserver.ServerTool{
		Tool:    tool,
		Handler: s.handleSourceListTasks,
	}
}

func (s *Server) sourceCreateTaskTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("source_create_task",
		mcplib.WithDescription("Create a task on the board"),
		mcplib.WithString("title",
			mcplib.Required(),
			mcplib.Description("Task title"),
		),
		mcplib.WithString("description",
			mcplib.Description("Task description"),
		),
		mcplib.WithString("priority",
			mcplib.Description("Task priority"),
		),
		mcplib.WithString("labels",
			mcplib.Description("Comma-separated labels"),
		),
		mcplib.WithString("sprint_id",
			mcplib.Description("Sprint to assign the task to"),
		),
	)
	return mcpserver.ServerTool{
		Tool:    tool,
		Handler: s.handleSourceCreateTask,
	}
}

func (s *Server) sourceUpdateTaskTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("source_update_task",
		mcplib.WithDescription("Update a board task; empty fields are left unchanged"),
		mcplib.WithString("task_id",
			mcplib.Required(),
			mcplib.Description("The task ID to update"),
		),
		mcplib.WithString("title",
			mcplib.Description("New title"),
		),
		mcplib.WithString("description",
			mcplib.Description("New description"),
		),
		mcplib.WithString("status",
			mcplib.Description("New status"),
		),
		mcplib.WithString("priority",
			mcplib.Description("New priority"),
		),
	)
	return mcpserver.ServerTool{
		Tool:    tool,
		Handler: s.handleSourceUpdateTask,
	}
}

func (s *Server) sourceGetKnowledgeTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("source_get_knowledge",
		mcplib.WithDescription("Search the board's knowledge base"),
		mcplib.WithString("query",
			mcplib.Required(),
			mcplib.Description("Search query"),
		),
	)
	return mcpserver.ServerTool{
		Tool:    tool,
		Handler: s.handleSourceGetKnowledge,
	}
}

func (s *Server) sourceAddKnowledgeTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("source_add_knowledge",
		mcplib.WithDescription("Add an entry to the board's knowledge base"),
		mcplib.WithString("title",
			mcplib.Required(),
			mcplib.Description("Entry title"),
		),
		mcplib.WithString("content",
			mcplib.Required(),
			mcplib.Description("Entry content"),
		),
		mcplib.WithString("tags",
			mcplib.Description("Comma-separated tags"),
		),
	)
	return mcpserver.ServerTool{
		Tool:    tool,
		Handler: s.handleSourceAddKnowledge,
	}
}

func (s *Server) sourceListSprintsTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("source_list_sprints",
		mcplib.WithDescription("List the board's sprints"),
	)
	return mcpserver.ServerTool{
		Tool:    tool,
		Handler: s.handleSourceListSprints,
	}
}

func (s *Server) handleSourceListTasks(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Board == nil {
		return mcplib.NewToolResultError("board not configured"), nil
	}
	args := req.GetArguments()
	status, _ := args["status"].(string)
	sprintID, _ := args["sprint_id"].(string)
	tasks, err := s.deps.Board.ListTasks(ctx, boardclient.ListOptions{
		Status:   status,
		SprintID: sprintID,
	})
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to list tasks", err), nil
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to marshal tasks", err), nil
	}
	return toolResultJSON(string(data)), nil
}

func (s *Server) handleSourceCreateTask(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Board == nil {
		return mcplib.NewToolResultError("board not configured"), nil
	}
	args := req.GetArguments()
	title, ok := args["title"].(string)
	if !ok || title == "" {
		return mcplib.NewToolResultError("title is required"), nil
	}
	description, _ := args["description"].(string)
	priority, _ := args["priority"].(string)
	labels, _ := args["labels"].(string)
	sprintID, _ := args["sprint_id"].(string)

	t, err := s.deps.Board.CreateTask(ctx, board.CreateTaskRequest{
		Title:       title,
		Description: description,
		Priority:    priority,
		Labels:      splitCSV(labels),
		SprintID:    sprintID,
	})
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to create task", err), nil
	}
	data, err := json.Marshal(t)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to marshal task", err), nil
	}
	return toolResultJSON(string(data)), nil
}

func (s *Server) handleSourceUpdateTask(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Board == nil {
		return mcplib.NewToolResultError("board not configured"), nil
	}
	args := req.GetArguments()
	taskID, ok := args["task_id"].(string)
	if !ok || taskID == "" {
		return mcplib.NewToolResultError("task_id is required"), nil
	}
	title, _ := args["title"].(string)
	description, _ := args["description"].(string)
	status, _ := args["status"].(string)
	priority, _ := args["priority"].(string)

	t, err := s.deps.Board.UpdateTask(ctx, taskID, board.UpdateTaskRequest{
		Title:       title,
		Description: description,
		Status:      status,
		Priority:    priority,
	})
	if err != nil {
		return mcplib.NewToolResultErrorFromErr(
			fmt.Sprintf("failed to update task %s", taskID), err,
		), nil
	}
	data, err := json.Marshal(t)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to marshal task", err), nil
	}
	return toolResultJSON(string(data)), nil
}

func (s *Server) handleSourceGetKnowledge(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Board == nil {
		return mcplib.NewToolResultError("board not configured"), nil
	}
	args := req.GetArguments()
	query, ok := args["query"].(string)
	if !ok || query == "" {
		return mcplib.NewToolResultError("query is required"), nil
	}
	entries, err := s.deps.Board.SearchKnowledge(ctx, query)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to search knowledge", err), nil
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to marshal knowledge entries", err), nil
	}
	return toolResultJSON(string(data)), nil
}

func (s *Server) handleSourceAddKnowledge(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Board == nil {
		return mcplib.NewToolResultError("board not configured"), nil
	}
	args := req.GetArguments()
	title, ok := args["title"].(string)
	if !ok || title == "" {
		return mcplib.NewToolResultError("title is required"), nil
	}
	content, ok := args["content"].(string)
	if !ok || content == "" {
		return mcplib.NewToolResultError("content is required"), nil
	}
	tags, _ := args["tags"].(string)

	entry, err := s.deps.Board.AddKnowledge(ctx, board.CreateKnowledgeRequest{
		Title:   title,
		Content: content,
		Tags:    splitCSV(tags),
	})
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to add knowledge entry", err), nil
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to marshal knowledge entry", err), nil
	}
	return toolResultJSON(string(data)), nil
}

func (s *Server) handleSourceListSprints(ctx context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Board == nil {
		return mcplib.NewToolResultError("board not configured"), nil
	}
	sprints, err := s.deps.Board.ListSprints(ctx)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to list sprints", err), nil
	}
	data, err := json.Marshal(sprints)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to marshal sprints", err), nil
	}
	return toolResultJSON(string(data)), nil
}
