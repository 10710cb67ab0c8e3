package tools

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/nhn-tools/dooray-mcp/internal/config"
	"github.com/nhn-tools/dooray-mcp/internal/dooray"
)

type commentAction string

const (
	commentList   commentAction = "list"
	commentCreate commentAction = "create"
	commentUpdate commentAction = "update"
	commentDelete commentAction = "delete"
)

// CommentsTool dispatches comment actions on a task's log endpoint.
type CommentsTool struct {
	base
}

func NewCommentsTool(client *dooray.Client, cfg *config.Config, logger *zap.Logger) *CommentsTool {
	return &CommentsTool{base{client: client, cfg: cfg, logger: logger}}
}

func (t *CommentsTool) Handle(ctx context.Context, args map[string]any) string {
	out, err := t.dispatch(ctx, args)
	return t.respond("comments", out, err)
}

func (t *CommentsTool) dispatch(ctx context.Context, args map[string]any) (string, error) {
	action, err := t.action(args)
	if err != nil {
		return "", err
	}
	if err := requireArgs(args, action, "taskId"); err != nil {
		return "", err
	}
	switch commentAction(action) {
	case commentList:
		return t.list(ctx, args)
	case commentCreate:
		return t.create(ctx, args)
	case commentUpdate:
		return t.update(ctx, args)
	case commentDelete:
		return t.delete(ctx, args)
	default:
		return "", unknownAction(action)
	}
}

func (t *CommentsTool) list(ctx context.Context, args map[string]any) (string, error) {
	projectID, err := t.projectID(args)
	if err != nil {
		return "", err
	}

	raw, err := t.client.ListComments(ctx, projectID, stringArg(args, "taskId"))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (t *CommentsTool) create(ctx context.Context, args map[string]any) (string, error) {
	projectID, err := t.projectID(args)
	if err != nil {
		return "", err
	}
	if err := requireArgs(args, "create", "content"); err != nil {
		return "", err
	}

	body := commentBody(stringArg(args, "content"), stringSliceArg(args, "mentions"))
	raw, err := t.client.CreateComment(ctx, projectID, stringArg(args, "taskId"), body)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (t *CommentsTool) update(ctx context.Context, args map[string]any) (string, error) {
	projectID, err := t.projectID(args)
	if err != nil {
		return "", err
	}
	if err := requireArgs(args, "update", "commentId", "content"); err != nil {
		return "", err
	}

	body := commentBody(stringArg(args, "content"), stringSliceArg(args, "mentions"))
	raw, err := t.client.UpdateComment(ctx, projectID, stringArg(args, "taskId"), stringArg(args, "commentId"), body)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (t *CommentsTool) delete(ctx context.Context, args map[string]any) (string, error) {
	projectID, err := t.projectID(args)
	if err != nil {
		return "", err
	}
	if err := requireArgs(args, "delete", "commentId"); err != nil {
		return "", err
	}

	if _, err := t.client.DeleteComment(ctx, projectID, stringArg(args, "taskId"), stringArg(args, "commentId")); err != nil {
		return "", err
	}
	return marshalResult(map[string]any{"success": true, "message": "Comment deleted successfully"})
}

// commentBody builds a markdown body, prefixing @mentions when given.
func commentBody(content string, mentions []string) *dooray.Body {
	if len(mentions) > 0 {
		var sb strings.Builder
		for _, id := range mentions {
			sb.WriteString("@")
			sb.WriteString(id)
			sb.WriteString(" ")
		}
		content = sb.String() + content
	}
	return &dooray.Body{MimeType: "text/x-markdown", Content: content}
}
