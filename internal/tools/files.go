package tools

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/nhn-tools/dooray-mcp/internal/config"
	"github.com/nhn-tools/dooray-mcp/internal/dooray"
)

type fileAction string

const (
	fileListTaskFiles    fileAction = "list_task_files"
	fileGetTaskMetadata  fileAction = "get_task_file_metadata"
	fileGetTaskContent   fileAction = "get_task_file_content"
	fileGetDriveMetadata fileAction = "get_drive_file_metadata"
	fileGetDriveContent  fileAction = "get_drive_file_content"
)

const maxFileNameLength = 100

// FilesTool dispatches file actions against task attachments and Drive.
// Content downloads are persisted under the configured download directory
// and the result carries the location and size instead of the bytes, so a
// large binary cannot blow up the tool response. When the host cannot see
// this filesystem, InlineFileContent switches to base64 in the payload.
type FilesTool struct {
	base
}

func NewFilesTool(client *dooray.Client, cfg *config.Config, logger *zap.Logger) *FilesTool {
	return &FilesTool{base{client: client, cfg: cfg, logger: logger}}
}

func (t *FilesTool) Handle(ctx context.Context, args map[string]any) string {
	out, err := t.dispatch(ctx, args)
	return t.respond("files", out, err)
}

func (t *FilesTool) dispatch(ctx context.Context, args map[string]any) (string, error) {
	action, err := t.action(args)
	if err != nil {
		return "", err
	}
	switch fileAction(action) {
	case fileListTaskFiles:
		return t.listTaskFiles(ctx, args)
	case fileGetTaskMetadata:
		return t.taskFileMetadata(ctx, args)
	case fileGetTaskContent:
		return t.taskFileContent(ctx, args)
	case fileGetDriveMetadata:
		return t.driveFileMetadata(ctx, args)
	case fileGetDriveContent:
		return t.driveFileContent(ctx, args)
	default:
		return "", unknownAction(action)
	}
}

func (t *FilesTool) listTaskFiles(ctx context.Context, args map[string]any) (string, error) {
	projectID, err := t.projectID(args)
	if err != nil {
		return "", err
	}
	if err := requireArgs(args, "list_task_files", "taskId"); err != nil {
		return "", err
	}

	raw, err := t.client.ListTaskFiles(ctx, projectID, stringArg(args, "taskId"))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (t *FilesTool) taskFileMetadata(ctx context.Context, args map[string]any) (string, error) {
	projectID, err := t.projectID(args)
	if err != nil {
		return "", err
	}
	if err := requireArgs(args, "get_task_file_metadata", "taskId", "fileId"); err != nil {
		return "", err
	}

	raw, err := t.client.GetTaskFileMetadata(ctx, projectID, stringArg(args, "taskId"), stringArg(args, "fileId"))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (t *FilesTool) taskFileContent(ctx context.Context, args map[string]any) (string, error) {
	projectID, err := t.projectID(args)
	if err != nil {
		return "", err
	}
	if err := requireArgs(args, "get_task_file_content", "taskId", "fileId"); err != nil {
		return "", err
	}
	taskID := stringArg(args, "taskId")
	fileID := stringArg(args, "fileId")

	meta, err := t.client.TaskFileMetadata(ctx, projectID, taskID, fileID)
	if err != nil {
		return "", err
	}
	content, err := t.client.GetTaskFileContent(ctx, projectID, taskID, fileID)
	if err != nil {
		return "", err
	}

	return t.deliver(content, meta.Name, fmt.Sprintf("task-%s-file-%s", taskID, fileID))
}

func (t *FilesTool) driveFileMetadata(ctx context.Context, args map[string]any) (string, error) {
	if err := requireArgs(args, "get_drive_file_metadata", "fileId"); err != nil {
		return "", err
	}

	raw, err := t.client.GetDriveFileMetadata(ctx, stringArg(args, "fileId"))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (t *FilesTool) driveFileContent(ctx context.Context, args map[string]any) (string, error) {
	if err := requireArgs(args, "get_drive_file_content", "fileId"); err != nil {
		return "", err
	}
	fileID := stringArg(args, "fileId")

	meta, err := t.client.DriveFileMetadata(ctx, fileID)
	if err != nil {
		return "", err
	}
	content, err := t.client.GetDriveFileContent(ctx, fileID)
	if err != nil {
		return "", err
	}

	return t.deliver(content, meta.Name, fmt.Sprintf("drive-file-%s", fileID))
}

// deliver hands the downloaded bytes back, either inlined as base64 or
// written to the download directory under a deterministic, collision-free
// name derived from the owning identifiers and the sanitized remote name.
func (t *FilesTool) deliver(content []byte, remoteName, scope string) (string, error) {
	if t.cfg.InlineFileContent {
		return marshalResult(map[string]any{
			"content":  base64.StdEncoding.EncodeToString(content),
			"encoding": "base64",
			"fileName": remoteName,
			"size":     len(content),
		})
	}

	if err := os.MkdirAll(t.cfg.DownloadDir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}
	name := scope + "-" + SanitizeFileName(remoteName)
	path := filepath.Join(t.cfg.DownloadDir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("write downloaded file: %w", err)
	}

	t.logger.Info("file downloaded",
		zap.String("path", path),
		zap.Int("size", len(content)),
	)
	return marshalResult(map[string]any{
		"path":     path,
		"fileName": remoteName,
		"size":     len(content),
	})
}

// SanitizeFileName strips path-unsafe characters from a remote filename and
// caps its length, keeping the extension when truncating.
func SanitizeFileName(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "download"
	}

	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	name = sb.String()
	name = strings.Trim(name, ".")
	if name == "" {
		return "download"
	}

	if len(name) > maxFileNameLength {
		ext := filepath.Ext(name)
		if len(ext) >= maxFileNameLength {
			ext = ""
		}
		name = name[:maxFileNameLength-len(ext)] + ext
	}
	return name
}
