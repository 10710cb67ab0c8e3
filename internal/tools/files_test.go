package tools

import (
	"context"
	"encoding/base64"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func fileServer(t *testing.T) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/project/v1/projects/p1/posts/t1/files/f1" && r.URL.Query().Get("media") == "meta":
			w.Write([]byte(`{"result":{"id":"f1","name":"design spec.pdf","size":11}}`))
		case r.URL.Path == "/project/v1/projects/p1/posts/t1/files/f1" && r.URL.Query().Get("media") == "raw":
			w.Write([]byte("pdf-content"))
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.String())
		}
	}
}

func TestFilesTaskContentPersistsToDownloadDir(t *testing.T) {
	client, cfg := testClient(t, fileServer(t))

	tool := NewFilesTool(client, cfg, zap.NewNop())
	out := tool.Handle(context.Background(), map[string]any{
		"action": "get_task_file_content",
		"taskId": "t1",
		"fileId": "f1",
	})

	payload := decodeResult(t, out)
	if payload["error"] != nil {
		t.Fatalf("unexpected error: %v", payload["error"])
	}
	path, _ := payload["path"].(string)
	if path == "" {
		t.Fatalf("result must carry a path, got %q", out)
	}
	if !strings.HasPrefix(filepath.Base(path), "task-t1-file-f1-") {
		t.Fatalf("path must be scoped to task and file ids, got %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read persisted file: %v", err)
	}
	if string(data) != "pdf-content" {
		t.Fatalf("unexpected persisted content %q", data)
	}
	if payload["size"] != float64(len("pdf-content")) {
		t.Fatalf("size must match content length, got %v", payload["size"])
	}
}

func TestFilesInlineContentMode(t *testing.T) {
	client, cfg := testClient(t, fileServer(t))
	cfg.InlineFileContent = true

	tool := NewFilesTool(client, cfg, zap.NewNop())
	out := tool.Handle(context.Background(), map[string]any{
		"action": "get_task_file_content",
		"taskId": "t1",
		"fileId": "f1",
	})

	payload := decodeResult(t, out)
	if payload["encoding"] != "base64" {
		t.Fatalf("expected base64 encoding marker, got %q", out)
	}
	decoded, err := base64.StdEncoding.DecodeString(payload["content"].(string))
	if err != nil {
		t.Fatalf("decode content: %v", err)
	}
	if string(decoded) != "pdf-content" {
		t.Fatalf("unexpected inline content %q", decoded)
	}
	if payload["path"] != nil {
		t.Fatalf("inline mode must not write files, got path %v", payload["path"])
	}
}

func TestFilesMetadataPassthrough(t *testing.T) {
	client, cfg := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/drive/v1/files/f9" || r.URL.Query().Get("media") != "meta" {
			t.Fatalf("unexpected request %s", r.URL.String())
		}
		w.Write([]byte(`{"result":{"id":"f9","name":"report.xlsx","size":2048}}`))
	})

	tool := NewFilesTool(client, cfg, zap.NewNop())
	out := tool.Handle(context.Background(), map[string]any{
		"action": "get_drive_file_metadata",
		"fileId": "f9",
	})

	payload := decodeResult(t, out)
	result, _ := payload["result"].(map[string]any)
	if result["name"] != "report.xlsx" {
		t.Fatalf("metadata must pass through verbatim, got %q", out)
	}
}

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "report.pdf", "report.pdf"},
		{"spaces", "design spec.pdf", "design_spec.pdf"},
		{"path traversal", "../../etc/passwd", "passwd"},
		{"separators", "a/b\\c.txt", "b_c.txt"},
		{"unicode", "보고서.pdf", "___.pdf"},
		{"empty", "", "download"},
		{"dots only", "...", "download"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeFileName(tc.in); got != tc.want {
				t.Fatalf("SanitizeFileName(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSanitizeFileNameCapsLengthKeepingExtension(t *testing.T) {
	long := strings.Repeat("a", 200) + ".tar.gz"
	got := SanitizeFileName(long)
	if len(got) > 100 {
		t.Fatalf("name too long: %d", len(got))
	}
	if !strings.HasSuffix(got, ".gz") {
		t.Fatalf("extension must survive truncation, got %q", got)
	}
}

func TestFilesMissingFileID(t *testing.T) {
	client, cfg := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("validation failure must not reach the network")
	})

	tool := NewFilesTool(client, cfg, zap.NewNop())
	out := tool.Handle(context.Background(), map[string]any{"action": "get_drive_file_content"})

	payload := decodeResult(t, out)
	if payload["error"] == nil {
		t.Fatalf("expected validation error, got %q", out)
	}
}
