package tools

import (
	"context"

	"go.uber.org/zap"

	"github.com/nhn-tools/dooray-mcp/internal/config"
	"github.com/nhn-tools/dooray-mcp/internal/dooray"
)

type workflowAction string

const (
	workflowList   workflowAction = "list"
	workflowGet    workflowAction = "get"
	workflowCreate workflowAction = "create"
	workflowUpdate workflowAction = "update"
	workflowDelete workflowAction = "delete"
)

// WorkflowsTool dispatches workflow management actions.
type WorkflowsTool struct {
	base
}

func NewWorkflowsTool(client *dooray.Client, cfg *config.Config, logger *zap.Logger) *WorkflowsTool {
	return &WorkflowsTool{base{client: client, cfg: cfg, logger: logger}}
}

func (t *WorkflowsTool) Handle(ctx context.Context, args map[string]any) string {
	out, err := t.dispatch(ctx, args)
	return t.respond("workflows", out, err)
}

func (t *WorkflowsTool) dispatch(ctx context.Context, args map[string]any) (string, error) {
	action, err := t.action(args)
	if err != nil {
		return "", err
	}
	projectID, err := t.projectID(args)
	if err != nil {
		return "", err
	}

	switch workflowAction(action) {
	case workflowList:
		raw, err := t.client.ListWorkflowsRaw(ctx, projectID)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	case workflowGet:
		if err := requireArgs(args, "get", "workflowId"); err != nil {
			return "", err
		}
		raw, err := t.client.GetWorkflow(ctx, projectID, stringArg(args, "workflowId"))
		if err != nil {
			return "", err
		}
		return string(raw), nil
	case workflowCreate:
		if err := requireArgs(args, "create", "name"); err != nil {
			return "", err
		}
		raw, err := t.client.CreateWorkflow(ctx, projectID, stringArg(args, "name"))
		if err != nil {
			return "", err
		}
		return string(raw), nil
	case workflowUpdate:
		if err := requireArgs(args, "update", "workflowId", "name"); err != nil {
			return "", err
		}
		raw, err := t.client.UpdateWorkflow(ctx, projectID, stringArg(args, "workflowId"), stringArg(args, "name"))
		if err != nil {
			return "", err
		}
		return string(raw), nil
	case workflowDelete:
		if err := requireArgs(args, "delete", "workflowId"); err != nil {
			return "", err
		}
		if _, err := t.client.DeleteWorkflow(ctx, projectID, stringArg(args, "workflowId")); err != nil {
			return "", err
		}
		return marshalResult(map[string]any{"success": true, "message": "Workflow deleted successfully"})
	default:
		return "", unknownAction(action)
	}
}
