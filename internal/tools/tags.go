package tools

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/nhn-tools/dooray-mcp/internal/config"
	"github.com/nhn-tools/dooray-mcp/internal/dooray"
)

type tagAction string

const (
	tagList           tagAction = "list"
	tagCreate         tagAction = "create"
	tagAddToTask      tagAction = "add_to_task"
	tagRemoveFromTask tagAction = "remove_from_task"
)

const defaultTagColor = "4CAF50"

// TagNotFoundError means no tag in the project carries the requested name.
type TagNotFoundError struct {
	Name string
}

func (e *TagNotFoundError) Error() string {
	return fmt.Sprintf("tag %q not found in project", e.Name)
}

// TagNotAssignedError means a removal targeted a tag the task doesn't have.
type TagNotAssignedError struct {
	Name string
}

func (e *TagNotAssignedError) Error() string {
	return fmt.Sprintf("tag %q is not assigned to this task", e.Name)
}

// TagsTool dispatches tag actions. Attaching and detaching tags is a
// read-modify-write: the API only accepts a full tagIds set on task update.
type TagsTool struct {
	base
}

func NewTagsTool(client *dooray.Client, cfg *config.Config, logger *zap.Logger) *TagsTool {
	return &TagsTool{base{client: client, cfg: cfg, logger: logger}}
}

func (t *TagsTool) Handle(ctx context.Context, args map[string]any) string {
	out, err := t.dispatch(ctx, args)
	return t.respond("tags", out, err)
}

func (t *TagsTool) dispatch(ctx context.Context, args map[string]any) (string, error) {
	action, err := t.action(args)
	if err != nil {
		return "", err
	}
	switch tagAction(action) {
	case tagList:
		return t.list(ctx, args)
	case tagCreate:
		return t.create(ctx, args)
	case tagAddToTask:
		return t.mutateTask(ctx, args, true)
	case tagRemoveFromTask:
		return t.mutateTask(ctx, args, false)
	default:
		return "", unknownAction(action)
	}
}

func (t *TagsTool) list(ctx context.Context, args map[string]any) (string, error) {
	projectID, err := t.projectID(args)
	if err != nil {
		return "", err
	}

	raw, err := t.client.ListTagsRaw(ctx, projectID)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (t *TagsTool) create(ctx context.Context, args map[string]any) (string, error) {
	projectID, err := t.projectID(args)
	if err != nil {
		return "", err
	}
	if err := requireArgs(args, "create", "tagName"); err != nil {
		return "", err
	}

	color := stringArg(args, "tagColor")
	if color == "" {
		color = defaultTagColor
	}
	color = strings.TrimPrefix(color, "#")

	raw, err := t.client.CreateTag(ctx, projectID, stringArg(args, "tagName"), color)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// mutateTask attaches or detaches a tag by name. It fetches the current
// task and the project's tag list, recomputes the tagIds set, and issues
// one update carrying the task's subject and body — the API clears those
// fields when a partial update omits them.
func (t *TagsTool) mutateTask(ctx context.Context, args map[string]any, add bool) (string, error) {
	projectID, err := t.projectID(args)
	if err != nil {
		return "", err
	}
	action := "add_to_task"
	if !add {
		action = "remove_from_task"
	}
	if err := requireArgs(args, action, "taskId", "tagName"); err != nil {
		return "", err
	}
	taskID := stringArg(args, "taskId")
	tagName := stringArg(args, "tagName")

	task, err := t.client.GetTaskDetail(ctx, projectID, taskID)
	if err != nil {
		return "", err
	}

	tags, err := t.client.ListTags(ctx, projectID)
	if err != nil {
		return "", err
	}
	tagID := ""
	for _, tag := range tags {
		if tag.Name == tagName {
			tagID = tag.ID
			break
		}
	}
	if tagID == "" {
		return "", &TagNotFoundError{Name: tagName}
	}

	current := make([]string, 0, len(task.Tags)+1)
	for _, tag := range task.Tags {
		current = append(current, tag.ID)
	}

	var next []string
	if add {
		next = current
		if !contains(current, tagID) {
			next = append(next, tagID)
		}
	} else {
		if !contains(current, tagID) {
			return "", &TagNotAssignedError{Name: tagName}
		}
		next = make([]string, 0, len(current)-1)
		for _, id := range current {
			if id != tagID {
				next = append(next, id)
			}
		}
	}

	update := &dooray.TaskUpdate{
		Subject: task.Subject,
		Body:    task.Body,
		TagIDs:  &next,
	}
	raw, err := t.client.UpdateTask(ctx, projectID, taskID, update)
	if err != nil {
		return "", err
	}

	if add {
		return string(raw), nil
	}
	return marshalResult(map[string]any{
		"success": true,
		"message": fmt.Sprintf("Tag %q removed from task", tagName),
	})
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
