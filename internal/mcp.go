package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const mcpServerName = "remindme"

// MCPServer exposes reminder creation and listing as MCP tools.
type MCPServer struct {
	mcpServer *server.MCPServer
	set       *SetReminderUseCase
	list      *ListPendingUseCase
}

func NewMCPServer(version string, set *SetReminderUseCase, list *ListPendingUseCase) *MCPServer {
	s := &MCPServer{set: set, list: list}

	s.mcpServer = server.NewMCPServer(
		mcpServerName,
		version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()
	return s
}

func (s *MCPServer) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio blocks serving MCP over standard input and output.
func (s *MCPServer) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *MCPServer) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("add_reminder",
			mcp.WithDescription("Create a reminder from natural language, e.g. 'call mom at 5pm' or 'check oven in 30 minutes'"),
			mcp.WithString("text", mcp.Required(), mcp.Description("Reminder text including when it should fire")),
		),
		s.handleAdd,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("parse_reminder",
			mcp.WithDescription("Show how reminder text would be understood without saving it"),
			mcp.WithString("text", mcp.Required(), mcp.Description("Reminder text including when it should fire")),
		),
		s.handleParse,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_reminders",
			mcp.WithDescription("List pending reminders ordered by trigger time"),
		),
		s.handleList,
	)
}

type reminderView struct {
	Message        string `json:"message"`
	TriggerTime    string `json:"trigger_time"`
	TimeExpression string `json:"time_expression,omitempty"`
	Until          string `json:"until,omitempty"`
	DaemonStarted  bool   `json:"daemon_started,omitempty"`
}

func (s *MCPServer) handleAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.setReminder(ctx, req, false)
}

func (s *MCPServer) handleParse(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.setReminder(ctx, req, true)
}

func (s *MCPServer) setReminder(ctx context.Context, req mcp.CallToolRequest, dryRun bool) (*mcp.CallToolResult, error) {
	text := req.GetString("text", "")
	if text == "" {
		return mcp.NewToolResultError("text is required"), nil
	}

	out, err := s.set.Execute(ctx, SetReminderInput{Text: text, FullCommand: text, DryRun: dryRun})
	if out == nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to set reminder: %v", err)), nil
	}

	view := reminderView{
		Message:        out.Reminder.Message,
		TriggerTime:    out.Reminder.TriggerAt.Format(time.RFC3339),
		TimeExpression: out.TimeExpression,
		Until:          FormatTimeUntil(out.Reminder.TriggerAt.Sub(out.Reminder.CreatedAt)),
		DaemonStarted:  out.DaemonStarted,
	}
	output, _ := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("reminder saved but %v\n%s", err, output)), nil
	}
	return mcp.NewToolResultText(string(output)), nil
}

func (s *MCPServer) handleList(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := s.list.Execute(ctx, ListPendingInput{})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list reminders: %v", err)), nil
	}

	if len(out.Reminders) == 0 {
		return mcp.NewToolResultText("No pending reminders."), nil
	}

	views := make([]reminderView, 0, len(out.Reminders))
	for _, r := range out.Reminders {
		views = append(views, reminderView{
			Message:     r.Message,
			TriggerTime: r.TriggerAt.Format(time.RFC3339),
			Until:       r.Until,
		})
	}
	output, _ := json.MarshalIndent(views, "", "  ")
	return mcp.NewToolResultText(string(output)), nil
}
