// Package server wires the Dooray dispatchers into an MCP server. It owns
// the tool schema declarations and transports; no Dooray logic lives here.
package server

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/nhn-tools/dooray-mcp/internal/config"
	"github.com/nhn-tools/dooray-mcp/internal/dooray"
	"github.com/nhn-tools/dooray-mcp/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// toolHandler is the shape every dispatcher exposes. Handlers always
// return a JSON string, errors already folded in, so the MCP layer can
// answer every call with a plain text result.
type toolHandler interface {
	Handle(ctx context.Context, args map[string]any) string
}

// New builds the MCP server with all seven Dooray tools registered.
func New(client *dooray.Client, cfg *config.Config, logger *zap.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		"dooray-mcp",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	s.AddTool(tasksTool(), adapt(tools.NewTasksTool(client, cfg, logger)))
	s.AddTool(commentsTool(), adapt(tools.NewCommentsTool(client, cfg, logger)))
	s.AddTool(tagsTool(), adapt(tools.NewTagsTool(client, cfg, logger)))
	s.AddTool(searchTool(), adapt(tools.NewSearchTool(client, cfg, logger)))
	s.AddTool(membersTool(), adapt(tools.NewMembersTool(client, cfg, logger)))
	s.AddTool(filesTool(), adapt(tools.NewFilesTool(client, cfg, logger)))
	s.AddTool(workflowsTool(), adapt(tools.NewWorkflowsTool(client, cfg, logger)))

	return s
}

func adapt(h toolHandler) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(h.Handle(ctx, req.GetArguments())), nil
	}
}

func tasksTool() mcp.Tool {
	return mcp.NewTool("dooray_tasks",
		mcp.WithDescription("Manage Dooray tasks - list, get details, create, update, delete, change status, assign members"),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Enum("list", "get", "create", "update", "delete", "change_status", "assign"),
			mcp.Description("Action to perform"),
		),
		mcp.WithString("projectId", mcp.Description("Project ID (falls back to the configured default)")),
		mcp.WithString("taskId", mcp.Description("Task ID (required for get/update/delete/change_status/assign)")),
		mcp.WithString("title", mcp.Description("Task title (for create/update)")),
		mcp.WithString("description", mcp.Description("Task description in markdown (for create/update)")),
		mcp.WithString("status", mcp.Description("Status label: workflow ID, name, localized name, or class such as open/working/closed")),
		mcp.WithString("workflowId", mcp.Description("Concrete workflow ID (for change_status; takes precedence over status)")),
		mcp.WithString("assigneeId", mcp.Description("Assignee member ID (for create/update/assign)")),
		mcp.WithString("priority", mcp.Description("Task priority (for create/update)")),
		mcp.WithNumber("limit", mcp.Description("Maximum results for list")),
	)
}

func commentsTool() mcp.Tool {
	return mcp.NewTool("dooray_comments",
		mcp.WithDescription("Manage Dooray task comments - list, create, update, delete comments with mention support"),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Enum("list", "create", "update", "delete"),
			mcp.Description("Action to perform on comments"),
		),
		mcp.WithString("projectId", mcp.Description("Project ID (falls back to the configured default)")),
		mcp.WithString("taskId", mcp.Required(), mcp.Description("Task ID")),
		mcp.WithString("commentId", mcp.Description("Comment ID (required for update/delete)")),
		mcp.WithString("content", mcp.Description("Comment content (for create/update)")),
		mcp.WithArray("mentions",
			mcp.Description("Member IDs to mention (optional)"),
			mcp.Items(map[string]any{"type": "string"}),
		),
	)
}

func tagsTool() mcp.Tool {
	return mcp.NewTool("dooray_tags",
		mcp.WithDescription("Manage Dooray tags - list available tags, create new tags, add/remove tags from tasks"),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Enum("list", "create", "add_to_task", "remove_from_task"),
			mcp.Description("Action to perform on tags"),
		),
		mcp.WithString("projectId", mcp.Description("Project ID (falls back to the configured default)")),
		mcp.WithString("taskId", mcp.Description("Task ID (required for add_to_task/remove_from_task)")),
		mcp.WithString("tagName", mcp.Description("Tag name (for create/add_to_task/remove_from_task)")),
		mcp.WithString("tagColor", mcp.Description("Tag color hex without '#' (for create, optional)")),
	)
}

func searchTool() mcp.Tool {
	return mcp.NewTool("dooray_search",
		mcp.WithDescription("Search Dooray tasks by text, assignee, status, tag, workflow, date range, or combined conditions"),
		mcp.WithString("searchType",
			mcp.Required(),
			mcp.Enum("tasks", "by_assignee", "by_status", "by_tag", "by_date_range", "by_workflow", "advanced"),
			mcp.Description("Type of search to perform"),
		),
		mcp.WithString("projectId", mcp.Description("Project ID (falls back to the configured default)")),
		mcp.WithString("query", mcp.Description("Search query text (for tasks search)")),
		mcp.WithString("assigneeId", mcp.Description("Assignee ID (for by_assignee)")),
		mcp.WithString("status", mcp.Description("Workflow class (for by_status)")),
		mcp.WithString("tagName", mcp.Description("Tag name (for by_tag)")),
		mcp.WithString("workflowId", mcp.Description("Workflow ID (for by_workflow)")),
		mcp.WithString("startDate", mcp.Description("Start date (for by_date_range)")),
		mcp.WithString("endDate", mcp.Description("End date (for by_date_range)")),
		mcp.WithArray("conditions",
			mcp.Description("Conditions as key=value strings (for advanced search)"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("logicOperator", mcp.Description("AND (single merged query) or OR (union per condition), default AND")),
		mcp.WithNumber("limit", mcp.Description("Maximum results to return")),
	)
}

func membersTool() mcp.Tool {
	return mcp.NewTool("dooray_members",
		mcp.WithDescription("Manage Dooray members - search by email/ID, get member details, list project members"),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Enum("search_by_email", "search_by_id", "get_details", "list_project_members"),
			mcp.Description("Action to perform on members"),
		),
		mcp.WithString("email", mcp.Description("Email address (for search_by_email)")),
		mcp.WithString("userId", mcp.Description("User ID (for search_by_id/get_details)")),
		mcp.WithString("projectId", mcp.Description("Project ID (for list_project_members)")),
	)
}

func filesTool() mcp.Tool {
	return mcp.NewTool("dooray_files",
		mcp.WithDescription("Access Dooray files - list task attachments, fetch metadata, download content from tasks or Drive"),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Enum("list_task_files", "get_task_file_metadata", "get_task_file_content", "get_drive_file_metadata", "get_drive_file_content"),
			mcp.Description("Action to perform on files"),
		),
		mcp.WithString("projectId", mcp.Description("Project ID (for task file actions)")),
		mcp.WithString("taskId", mcp.Description("Task ID (for task file actions)")),
		mcp.WithString("fileId", mcp.Description("File ID")),
	)
}

func workflowsTool() mcp.Tool {
	return mcp.NewTool("dooray_workflows",
		mcp.WithDescription("Manage Dooray workflows - list, get, create, update, delete project workflows"),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Enum("list", "get", "create", "update", "delete"),
			mcp.Description("Action to perform on workflows"),
		),
		mcp.WithString("projectId", mcp.Description("Project ID (falls back to the configured default)")),
		mcp.WithString("workflowId", mcp.Description("Workflow ID (for get/update/delete)")),
		mcp.WithString("name", mcp.Description("Workflow name (for create/update)")),
	)
}
