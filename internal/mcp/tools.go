package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/tgienger/todo/internal/logger"
	"github.com/tgienger/todo/internal/models"
)

// Tool names
const (
	ToolCreate = "task_create"
	ToolGet    = "task_get"
	ToolUpdate = "task_update"
	ToolDelete = "task_delete"
	ToolList   = "task_list"
)

// toolFunc returns the text of a successful result; errors become error results
type toolFunc func(ctx context.Context, req mcplib.CallToolRequest) (string, error)

// registerTools registers all MCP tools on the server.
func (s *Server) registerTools() {
	s.mcpServer.AddTools(
		s.createTool(),
		s.getTool(),
		s.updateTool(),
		s.deleteTool(),
		s.listTool(),
	)
}

func priorityOption() mcplib.PropertyOption {
	return mcplib.Enum(stringsOf(models.Priorities)...)
}

func statusOption() mcplib.PropertyOption {
	return mcplib.Enum(stringsOf(models.Statuses)...)
}

func stringsOf[T ~string](vals []T) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = string(v)
	}
	return out
}

func idParam(desc string) mcplib.ToolOption {
	return mcplib.WithNumber("id", mcplib.Required(), mcplib.Description(desc))
}

func (s *Server) createTool() mcpserver.ServerTool {
	tool := mcplib.NewTool(ToolCreate,
		mcplib.WithDescription("Create a new task"),
		mcplib.WithString("name", mcplib.Required(), mcplib.Description("Task name")),
		mcplib.WithString("desc", mcplib.Description("Task description")),
		mcplib.WithArray("tags", mcplib.WithStringItems(), mcplib.Description("Tags for the task")),
		mcplib.WithString("due_date", mcplib.Description("Due date, YYYY-MM-DD")),
		mcplib.WithString("priority", priorityOption(), mcplib.Description("Task priority")),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.wrap(ToolCreate, s.handleCreate)}
}

func (s *Server) getTool() mcpserver.ServerTool {
	tool := mcplib.NewTool(ToolGet,
		mcplib.WithDescription("Get a task by ID"),
		idParam("Task ID"),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.wrap(ToolGet, s.handleGet)}
}

func (s *Server) updateTool() mcpserver.ServerTool {
	tool := mcplib.NewTool(ToolUpdate,
		mcplib.WithDescription("Update an existing task"),
		idParam("ID of the task to update"),
		mcplib.WithString("name", mcplib.Description("New task name")),
		mcplib.WithString("desc", mcplib.Description("New task description")),
		mcplib.WithArray("tags", mcplib.WithStringItems(), mcplib.Description("Replacement tags")),
		mcplib.WithString("due_date", mcplib.Description("New due date, YYYY-MM-DD")),
		mcplib.WithString("priority", priorityOption(), mcplib.Description("New task priority")),
		mcplib.WithString("status", statusOption(), mcplib.Description("New task status")),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.wrap(ToolUpdate, s.handleUpdate)}
}

func (s *Server) deleteTool() mcpserver.ServerTool {
	tool := mcplib.NewTool(ToolDelete,
		mcplib.WithDescription("Delete a task"),
		idParam("ID of the task to delete"),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.wrap(ToolDelete, s.handleDelete)}
}

func (s *Server) listTool() mcpserver.ServerTool {
	tool := mcplib.NewTool(ToolList,
		mcplib.WithDescription("List tasks with optional filters"),
		mcplib.WithString("keyword", mcplib.Description("Case-insensitive match on name or description")),
		mcplib.WithArray("tags", mcplib.WithStringItems(), mcplib.Description("Match tasks carrying any of these tags")),
		mcplib.WithString("priority", priorityOption(), mcplib.Description("Filter by priority")),
		mcplib.WithString("status", statusOption(), mcplib.Description("Filter by status (default: active)")),
		mcplib.WithString("range", mcplib.Enum(stringsOf(models.Ranges)...), mcplib.Description("Filter by due date window")),
		mcplib.WithString("orderby", mcplib.Enum(stringsOf(models.OrderBys)...), mcplib.Description("Sort key (default: due-date)")),
		mcplib.WithString("order", mcplib.Enum(string(models.OrderAsc), string(models.OrderDesc)), mcplib.Description("Sort direction (default: asc)")),
		mcplib.WithNumber("limit", mcplib.Min(0), mcplib.Description("Maximum number of tasks (default: 10, 0 for no limit)")),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.wrap(ToolList, s.handleList)}
}

// wrap tags each call with a request id, logs it and turns failures into
// "Error: ..." tool results instead of protocol errors.
func (s *Server) wrap(name string, fn toolFunc) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
		ctx = logger.WithRequestID(ctx, uuid.NewString())
		log := logger.FromContext(ctx, s.logger).With("tool", name)
		start := time.Now()

		text, err := fn(ctx, req)
		if err != nil {
			log.Error("tool call failed", "error", err)
			return mcplib.NewToolResultError("Error: " + err.Error()), nil
		}
		log.Debug("tool call", "duration", time.Since(start))
		return mcplib.NewToolResultText(text), nil
	}
}

type idArgs struct {
	ID *int `json:"id"`
}

func bindID(req mcplib.CallToolRequest) (int, error) { //nolint:gocritic // hugeParam: mcp-go request type
	var args idArgs
	if err := req.BindArguments(&args); err != nil {
		return 0, fmt.Errorf("invalid arguments: %w", err)
	}
	if args.ID == nil {
		return 0, fmt.Errorf("id is required: %w", models.ErrValidation)
	}
	return *args.ID, nil
}

func (s *Server) handleCreate(ctx context.Context, req mcplib.CallToolRequest) (string, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	var in models.CreateTask
	if err := req.BindArguments(&in); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	task, err := s.repo.Create(ctx, in)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Task created successfully with ID: %d", task.ID), nil
}

func (s *Server) handleGet(ctx context.Context, req mcplib.CallToolRequest) (string, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	id, err := bindID(req)
	if err != nil {
		return "", err
	}
	task, ok, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if !ok {
		return "Task not found", nil
	}
	return marshalIndent(task)
}

func (s *Server) handleUpdate(ctx context.Context, req mcplib.CallToolRequest) (string, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	id, err := bindID(req)
	if err != nil {
		return "", err
	}
	var in models.UpdateTask
	if err := req.BindArguments(&in); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	in.ID = id
	task, err := s.repo.Update(ctx, in)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Task %d updated successfully", task.ID), nil
}

func (s *Server) handleDelete(ctx context.Context, req mcplib.CallToolRequest) (string, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	id, err := bindID(req)
	if err != nil {
		return "", err
	}
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return "", err
	}
	if !removed {
		return "Task not found", nil
	}
	return "Task deleted successfully", nil
}

func (s *Server) handleList(ctx context.Context, req mcplib.CallToolRequest) (string, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	var in models.ListTasks
	if err := req.BindArguments(&in); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	tasks, err := s.repo.List(ctx, in)
	if err != nil {
		return "", err
	}
	return marshalIndent(tasks)
}

// marshalIndent renders v as two-space indented JSON without HTML escaping
func marshalIndent(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
