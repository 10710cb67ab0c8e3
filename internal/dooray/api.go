package dooray

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Thin wrappers over Request, one per Dooray endpoint the tools use. Read
// endpoints return the raw JSON so tool results can pass the API payload
// through verbatim.

func (c *Client) ListTasks(ctx context.Context, projectID string, query url.Values) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodGet, fmt.Sprintf("/project/v1/projects/%s/posts", projectID), query, nil)
}

func (c *Client) GetTask(ctx context.Context, projectID, taskID string) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodGet, fmt.Sprintf("/project/v1/projects/%s/posts/%s", projectID, taskID), nil, nil)
}

func (c *Client) CreateTask(ctx context.Context, projectID string, task *TaskUpdate) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodPost, fmt.Sprintf("/project/v1/projects/%s/posts", projectID), nil, task)
}

func (c *Client) UpdateTask(ctx context.Context, projectID, taskID string, task *TaskUpdate) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodPut, fmt.Sprintf("/project/v1/projects/%s/posts/%s", projectID, taskID), nil, task)
}

func (c *Client) DeleteTask(ctx context.Context, projectID, taskID string) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodDelete, fmt.Sprintf("/project/v1/projects/%s/posts/%s", projectID, taskID), nil, nil)
}

// GetTaskDetail fetches a task and decodes the fields needed for tag
// read-modify-write (subject, body, current tags).
func (c *Client) GetTaskDetail(ctx context.Context, projectID, taskID string) (*TaskDetail, error) {
	raw, err := c.GetTask(ctx, projectID, taskID)
	if err != nil {
		return nil, err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode task response: %w", err)
	}
	if len(env.Result) == 0 {
		return nil, fmt.Errorf("task %s not found", taskID)
	}
	var task TaskDetail
	if err := json.Unmarshal(env.Result, &task); err != nil {
		return nil, fmt.Errorf("decode task %s: %w", taskID, err)
	}
	return &task, nil
}

// Comments ride on the task's log endpoint.

func (c *Client) ListComments(ctx context.Context, projectID, taskID string) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodGet, fmt.Sprintf("/project/v1/projects/%s/posts/%s/logs", projectID, taskID), nil, nil)
}

func (c *Client) CreateComment(ctx context.Context, projectID, taskID string, body *Body) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodPost, fmt.Sprintf("/project/v1/projects/%s/posts/%s/logs", projectID, taskID), nil, map[string]any{"body": body})
}

func (c *Client) UpdateComment(ctx context.Context, projectID, taskID, commentID string, body *Body) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodPut, fmt.Sprintf("/project/v1/projects/%s/posts/%s/logs/%s", projectID, taskID, commentID), nil, map[string]any{"body": body})
}

func (c *Client) DeleteComment(ctx context.Context, projectID, taskID, commentID string) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodDelete, fmt.Sprintf("/project/v1/projects/%s/posts/%s/logs/%s", projectID, taskID, commentID), nil, nil)
}

func (c *Client) ListTagsRaw(ctx context.Context, projectID string) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodGet, fmt.Sprintf("/project/v1/projects/%s/tags", projectID), nil, nil)
}

// ListTags decodes the project's tag list for name-to-ID resolution.
func (c *Client) ListTags(ctx context.Context, projectID string) ([]Tag, error) {
	raw, err := c.ListTagsRaw(ctx, projectID)
	if err != nil {
		return nil, err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode tag list: %w", err)
	}
	var tags []Tag
	if err := json.Unmarshal(env.Result, &tags); err != nil {
		return nil, fmt.Errorf("decode tag list: %w", err)
	}
	return tags, nil
}

func (c *Client) CreateTag(ctx context.Context, projectID, name, color string) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodPost, fmt.Sprintf("/project/v1/projects/%s/tags", projectID), nil, map[string]string{"name": name, "color": color})
}

func (c *Client) ListWorkflowsRaw(ctx context.Context, projectID string) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodGet, fmt.Sprintf("/project/v1/projects/%s/workflows", projectID), nil, nil)
}

// ListWorkflows decodes the project's workflow list for status resolution.
func (c *Client) ListWorkflows(ctx context.Context, projectID string) ([]Workflow, error) {
	raw, err := c.ListWorkflowsRaw(ctx, projectID)
	if err != nil {
		return nil, err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode workflow list: %w", err)
	}
	var workflows []Workflow
	if err := json.Unmarshal(env.Result, &workflows); err != nil {
		return nil, fmt.Errorf("decode workflow list: %w", err)
	}
	return workflows, nil
}

func (c *Client) GetWorkflow(ctx context.Context, projectID, workflowID string) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodGet, fmt.Sprintf("/project/v1/projects/%s/workflows/%s", projectID, workflowID), nil, nil)
}

func (c *Client) CreateWorkflow(ctx context.Context, projectID, name string) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodPost, fmt.Sprintf("/project/v1/projects/%s/workflows", projectID), nil, map[string]string{"name": name})
}

func (c *Client) UpdateWorkflow(ctx context.Context, projectID, workflowID, name string) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodPut, fmt.Sprintf("/project/v1/projects/%s/workflows/%s", projectID, workflowID), nil, map[string]string{"name": name})
}

// DeleteWorkflow deletes through a POST to the /delete sub-resource; the
// Dooray API has no DELETE verb for workflows.
func (c *Client) DeleteWorkflow(ctx context.Context, projectID, workflowID string) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodPost, fmt.Sprintf("/project/v1/projects/%s/workflows/%s/delete", projectID, workflowID), nil, map[string]any{})
}

func (c *Client) SearchMembers(ctx context.Context, query url.Values) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodGet, "/common/v1/members", query, nil)
}

func (c *Client) GetMember(ctx context.Context, memberID string) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodGet, fmt.Sprintf("/common/v1/members/%s", memberID), nil, nil)
}

func (c *Client) ListProjectMembers(ctx context.Context, projectID string) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodGet, fmt.Sprintf("/project/v1/projects/%s/members", projectID), nil, nil)
}

func (c *Client) ListTaskFiles(ctx context.Context, projectID, taskID string) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodGet, fmt.Sprintf("/project/v1/projects/%s/posts/%s/files", projectID, taskID), nil, nil)
}

func (c *Client) GetTaskFileMetadata(ctx context.Context, projectID, taskID, fileID string) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodGet, fmt.Sprintf("/project/v1/projects/%s/posts/%s/files/%s", projectID, taskID, fileID), metaQuery(), nil)
}

func (c *Client) GetTaskFileContent(ctx context.Context, projectID, taskID, fileID string) ([]byte, error) {
	return c.FetchRaw(ctx, fmt.Sprintf("/project/v1/projects/%s/posts/%s/files/%s", projectID, taskID, fileID), rawQuery())
}

func (c *Client) GetDriveFileMetadata(ctx context.Context, fileID string) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodGet, fmt.Sprintf("/drive/v1/files/%s", fileID), metaQuery(), nil)
}

func (c *Client) GetDriveFileContent(ctx context.Context, fileID string) ([]byte, error) {
	return c.FetchRaw(ctx, fmt.Sprintf("/drive/v1/files/%s", fileID), rawQuery())
}

func metaQuery() url.Values {
	return url.Values{"media": {"meta"}}
}

func rawQuery() url.Values {
	return url.Values{"media": {"raw"}}
}

// TaskFileMetadata fetches and decodes a task file's metadata down to the
// fields used when persisting downloaded content.
func (c *Client) TaskFileMetadata(ctx context.Context, projectID, taskID, fileID string) (*FileMetadata, error) {
	raw, err := c.GetTaskFileMetadata(ctx, projectID, taskID, fileID)
	if err != nil {
		return nil, err
	}
	return decodeFileMetadata(raw)
}

// DriveFileMetadata is the Drive counterpart of TaskFileMetadata.
func (c *Client) DriveFileMetadata(ctx context.Context, fileID string) (*FileMetadata, error) {
	raw, err := c.GetDriveFileMetadata(ctx, fileID)
	if err != nil {
		return nil, err
	}
	return decodeFileMetadata(raw)
}

func decodeFileMetadata(raw json.RawMessage) (*FileMetadata, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode file metadata: %w", err)
	}
	var meta FileMetadata
	if err := json.Unmarshal(env.Result, &meta); err != nil {
		return nil, fmt.Errorf("decode file metadata: %w", err)
	}
	return &meta, nil
}
