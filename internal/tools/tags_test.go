package tools

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/nhn-tools/dooray-mcp/internal/config"
	"github.com/nhn-tools/dooray-mcp/internal/dooray"
)

func testClient(t *testing.T, handler http.HandlerFunc) (*dooray.Client, *config.Config) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := &config.Config{
		BaseURL:          srv.URL,
		DefaultProjectID: "p1",
		DownloadDir:      t.TempDir(),
	}
	return dooray.NewClient(srv.URL, "token", 2*time.Second, zap.NewNop()), cfg
}

func decodeResult(t *testing.T, out string) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("tool returned invalid JSON %q: %v", out, err)
	}
	return payload
}

const taskFixture = `{"result":{"id":"t1","subject":"Fix login","body":{"mimeType":"text/x-markdown","content":"steps"},"tags":[{"id":"tag1","name":"bug"}]}}`

const tagListFixture = `{"result":[{"id":"tag1","name":"bug","color":"FF0000"},{"id":"tag2","name":"urgent","color":"4CAF50"}]}`

func TestTagsAddToTask(t *testing.T) {
	var updateBody map[string]any
	client, cfg := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/project/v1/projects/p1/posts/t1":
			w.Write([]byte(taskFixture))
		case r.Method == http.MethodGet && r.URL.Path == "/project/v1/projects/p1/tags":
			w.Write([]byte(tagListFixture))
		case r.Method == http.MethodPut && r.URL.Path == "/project/v1/projects/p1/posts/t1":
			if err := json.NewDecoder(r.Body).Decode(&updateBody); err != nil {
				t.Fatalf("decode update: %v", err)
			}
			w.Write([]byte(`{"result":{}}`))
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	})

	tool := NewTagsTool(client, cfg, zap.NewNop())
	out := tool.Handle(context.Background(), map[string]any{
		"action":  "add_to_task",
		"taskId":  "t1",
		"tagName": "urgent",
	})

	payload := decodeResult(t, out)
	if _, failed := payload["error"]; failed {
		t.Fatalf("unexpected error: %v", payload["error"])
	}
	tagIDs, ok := updateBody["tagIds"].([]any)
	if !ok {
		t.Fatalf("update missing tagIds: %v", updateBody)
	}
	if len(tagIDs) != 2 || tagIDs[0] != "tag1" || tagIDs[1] != "tag2" {
		t.Fatalf("unexpected tagIds %v", tagIDs)
	}
	// Partial-update quirk: subject and body must ride along.
	if updateBody["subject"] != "Fix login" {
		t.Fatalf("update must resend subject, got %v", updateBody["subject"])
	}
	if updateBody["body"] == nil {
		t.Fatalf("update must resend body")
	}
}

func TestTagsRemoveNotAssignedIssuesNoUpdate(t *testing.T) {
	updates := 0
	client, cfg := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/project/v1/projects/p1/posts/t1":
			w.Write([]byte(taskFixture))
		case r.Method == http.MethodGet && r.URL.Path == "/project/v1/projects/p1/tags":
			w.Write([]byte(tagListFixture))
		case r.Method == http.MethodPut:
			updates++
			w.Write([]byte(`{"result":{}}`))
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	})

	tool := NewTagsTool(client, cfg, zap.NewNop())
	out := tool.Handle(context.Background(), map[string]any{
		"action":  "remove_from_task",
		"taskId":  "t1",
		"tagName": "urgent", // exists in project, not on the task
	})

	payload := decodeResult(t, out)
	if payload["error"] == nil {
		t.Fatalf("expected tag-not-assigned error, got %q", out)
	}
	if updates != 0 {
		t.Fatalf("no update call may be issued, saw %d", updates)
	}
}

func TestTagsRemoveLastTagSendsEmptySet(t *testing.T) {
	var updateRaw []byte
	client, cfg := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/project/v1/projects/p1/posts/t1":
			w.Write([]byte(taskFixture))
		case r.Method == http.MethodGet && r.URL.Path == "/project/v1/projects/p1/tags":
			w.Write([]byte(tagListFixture))
		case r.Method == http.MethodPut && r.URL.Path == "/project/v1/projects/p1/posts/t1":
			updateRaw, _ = io.ReadAll(r.Body)
			w.Write([]byte(`{"result":{}}`))
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	})

	tool := NewTagsTool(client, cfg, zap.NewNop())
	out := tool.Handle(context.Background(), map[string]any{
		"action":  "remove_from_task",
		"taskId":  "t1",
		"tagName": "bug",
	})

	payload := decodeResult(t, out)
	if payload["success"] != true {
		t.Fatalf("expected success payload, got %q", out)
	}
	var update map[string]any
	if err := json.Unmarshal(updateRaw, &update); err != nil {
		t.Fatalf("decode update: %v", err)
	}
	tagIDs, ok := update["tagIds"].([]any)
	if !ok {
		t.Fatalf("empty tag set must still be sent, got %v", update)
	}
	if len(tagIDs) != 0 {
		t.Fatalf("expected empty tagIds, got %v", tagIDs)
	}
}

func TestTagsUnknownTagName(t *testing.T) {
	client, cfg := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/project/v1/projects/p1/posts/t1":
			w.Write([]byte(taskFixture))
		case r.URL.Path == "/project/v1/projects/p1/tags":
			w.Write([]byte(tagListFixture))
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	})

	tool := NewTagsTool(client, cfg, zap.NewNop())
	out := tool.Handle(context.Background(), map[string]any{
		"action":  "add_to_task",
		"taskId":  "t1",
		"tagName": "nonexistent",
	})

	payload := decodeResult(t, out)
	if payload["error"] == nil {
		t.Fatalf("expected tag-not-found error, got %q", out)
	}
}

func TestTagsCreateStripsColorHash(t *testing.T) {
	var created map[string]string
	client, cfg := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/project/v1/projects/p1/tags" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&created); err != nil {
			t.Fatalf("decode create: %v", err)
		}
		w.Write([]byte(`{"result":{"id":"tag9"}}`))
	})

	tool := NewTagsTool(client, cfg, zap.NewNop())
	tool.Handle(context.Background(), map[string]any{
		"action":   "create",
		"tagName":  "design",
		"tagColor": "#AABBCC",
	})

	if created["color"] != "AABBCC" {
		t.Fatalf("expected leading # stripped, got %q", created["color"])
	}
}

func TestTagsUnknownAction(t *testing.T) {
	client, cfg := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unknown action must not reach the network")
	})

	tool := NewTagsTool(client, cfg, zap.NewNop())
	out := tool.Handle(context.Background(), map[string]any{"action": "explode"})

	payload := decodeResult(t, out)
	if payload["error"] != "unknown action: explode" {
		t.Fatalf("unexpected payload %q", out)
	}
}
