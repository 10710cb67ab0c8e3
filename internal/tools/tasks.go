package tools

import (
	"context"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/nhn-tools/dooray-mcp/internal/config"
	"github.com/nhn-tools/dooray-mcp/internal/dooray"
)

type taskAction string

const (
	taskList         taskAction = "list"
	taskGet          taskAction = "get"
	taskCreate       taskAction = "create"
	taskUpdate       taskAction = "update"
	taskDelete       taskAction = "delete"
	taskChangeStatus taskAction = "change_status"
	taskAssign       taskAction = "assign"
)

// TasksTool dispatches task actions: CRUD, status change, assignment.
type TasksTool struct {
	base
}

func NewTasksTool(client *dooray.Client, cfg *config.Config, logger *zap.Logger) *TasksTool {
	return &TasksTool{base{client: client, cfg: cfg, logger: logger}}
}

func (t *TasksTool) Handle(ctx context.Context, args map[string]any) string {
	out, err := t.dispatch(ctx, args)
	return t.respond("tasks", out, err)
}

func (t *TasksTool) dispatch(ctx context.Context, args map[string]any) (string, error) {
	action, err := t.action(args)
	if err != nil {
		return "", err
	}
	switch taskAction(action) {
	case taskList:
		return t.list(ctx, args)
	case taskGet:
		return t.get(ctx, args)
	case taskCreate:
		return t.create(ctx, args)
	case taskUpdate:
		return t.update(ctx, args)
	case taskDelete:
		return t.delete(ctx, args)
	case taskChangeStatus:
		return t.changeStatus(ctx, args)
	case taskAssign:
		return t.assign(ctx, args)
	default:
		return "", unknownAction(action)
	}
}

func (t *TasksTool) list(ctx context.Context, args map[string]any) (string, error) {
	projectID, err := t.projectID(args)
	if err != nil {
		return "", err
	}

	query := url.Values{}
	if status := stringArg(args, "status"); status != "" {
		query.Set("workflowClass", status)
	}
	if assignee := stringArg(args, "assigneeId"); assignee != "" {
		query.Set("assigneeId", assignee)
	}
	if limit := intArg(args, "limit"); limit > 0 {
		query.Set("size", strconv.Itoa(limit))
	}

	raw, err := t.client.ListTasks(ctx, projectID, query)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (t *TasksTool) get(ctx context.Context, args map[string]any) (string, error) {
	projectID, err := t.projectID(args)
	if err != nil {
		return "", err
	}
	if err := requireArgs(args, "get", "taskId"); err != nil {
		return "", err
	}

	raw, err := t.client.GetTask(ctx, projectID, stringArg(args, "taskId"))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (t *TasksTool) create(ctx context.Context, args map[string]any) (string, error) {
	projectID, err := t.projectID(args)
	if err != nil {
		return "", err
	}
	if err := requireArgs(args, "create", "title"); err != nil {
		return "", err
	}

	task := &dooray.TaskUpdate{
		Subject: stringArg(args, "title"),
		Body: &dooray.Body{
			MimeType: "text/x-markdown",
			Content:  stringArg(args, "description"),
		},
		Priority: stringArg(args, "priority"),
	}
	if assignee := stringArg(args, "assigneeId"); assignee != "" {
		task.Users = []dooray.TaskUser{{Member: dooray.MemberRef{ID: assignee}}}
	}
	if status := stringArg(args, "status"); status != "" {
		workflowID, err := t.client.ResolveWorkflow(ctx, projectID, status)
		if err != nil {
			return "", err
		}
		task.WorkflowID = workflowID
	}

	raw, err := t.client.CreateTask(ctx, projectID, task)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (t *TasksTool) update(ctx context.Context, args map[string]any) (string, error) {
	projectID, err := t.projectID(args)
	if err != nil {
		return "", err
	}
	if err := requireArgs(args, "update", "taskId"); err != nil {
		return "", err
	}

	task := &dooray.TaskUpdate{
		Subject:  stringArg(args, "title"),
		Priority: stringArg(args, "priority"),
	}
	if description := stringArg(args, "description"); description != "" {
		task.Body = &dooray.Body{MimeType: "text/x-markdown", Content: description}
	}
	if assignee := stringArg(args, "assigneeId"); assignee != "" {
		task.Users = []dooray.TaskUser{{Member: dooray.MemberRef{ID: assignee}}}
	}
	if status := stringArg(args, "status"); status != "" {
		workflowID, err := t.client.ResolveWorkflow(ctx, projectID, status)
		if err != nil {
			return "", err
		}
		task.WorkflowID = workflowID
	}

	raw, err := t.client.UpdateTask(ctx, projectID, stringArg(args, "taskId"), task)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (t *TasksTool) delete(ctx context.Context, args map[string]any) (string, error) {
	projectID, err := t.projectID(args)
	if err != nil {
		return "", err
	}
	if err := requireArgs(args, "delete", "taskId"); err != nil {
		return "", err
	}

	if _, err := t.client.DeleteTask(ctx, projectID, stringArg(args, "taskId")); err != nil {
		return "", err
	}
	return marshalResult(map[string]any{"success": true, "message": "Task deleted successfully"})
}

// changeStatus moves a task to another workflow. A concrete workflowId
// takes precedence; a status label goes through the resolver. One of the
// two must be present.
func (t *TasksTool) changeStatus(ctx context.Context, args map[string]any) (string, error) {
	projectID, err := t.projectID(args)
	if err != nil {
		return "", err
	}
	if err := requireArgs(args, "change_status", "taskId"); err != nil {
		return "", err
	}

	workflowID := stringArg(args, "workflowId")
	if workflowID == "" {
		status := stringArg(args, "status")
		if status == "" {
			return "", validationErrorf("workflowId or status is required for change_status action")
		}
		workflowID, err = t.client.ResolveWorkflow(ctx, projectID, status)
		if err != nil {
			return "", err
		}
	}

	raw, err := t.client.UpdateTask(ctx, projectID, stringArg(args, "taskId"), &dooray.TaskUpdate{WorkflowID: workflowID})
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (t *TasksTool) assign(ctx context.Context, args map[string]any) (string, error) {
	projectID, err := t.projectID(args)
	if err != nil {
		return "", err
	}
	if err := requireArgs(args, "assign", "taskId", "assigneeId"); err != nil {
		return "", err
	}

	update := &dooray.TaskUpdate{
		Users: []dooray.TaskUser{{Member: dooray.MemberRef{ID: stringArg(args, "assigneeId")}}},
	}
	raw, err := t.client.UpdateTask(ctx, projectID, stringArg(args, "taskId"), update)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
