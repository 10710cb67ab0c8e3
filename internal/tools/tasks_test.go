package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"go.uber.org/zap"
)

const workflowListFixture = `{"result":[` +
	`{"id":"w1","name":"Backlog","class":"open","order":0},` +
	`{"id":"w2","name":"In Progress","class":"working","order":1},` +
	`{"id":"w3","name":"Done","class":"closed","order":2}]}`

func TestTasksChangeStatusResolvesLabel(t *testing.T) {
	var update map[string]any
	client, cfg := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/project/v1/projects/p1/workflows":
			w.Write([]byte(workflowListFixture))
		case r.Method == http.MethodPut && r.URL.Path == "/project/v1/projects/p1/posts/t1":
			if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
				t.Fatalf("decode update: %v", err)
			}
			w.Write([]byte(`{"result":{}}`))
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	})

	tool := NewTasksTool(client, cfg, zap.NewNop())
	out := tool.Handle(context.Background(), map[string]any{
		"action": "change_status",
		"taskId": "t1",
		"status": "done",
	})

	payload := decodeResult(t, out)
	if payload["error"] != nil {
		t.Fatalf("unexpected error: %v", payload["error"])
	}
	if update["workflowId"] != "w3" {
		t.Fatalf("expected resolved workflow w3, got %v", update["workflowId"])
	}
}

func TestTasksChangeStatusWorkflowIDSkipsResolver(t *testing.T) {
	workflowFetches := 0
	client, cfg := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/workflows") {
			workflowFetches++
		}
		w.Write([]byte(`{"result":{}}`))
	})

	tool := NewTasksTool(client, cfg, zap.NewNop())
	out := tool.Handle(context.Background(), map[string]any{
		"action":     "change_status",
		"taskId":     "t1",
		"workflowId": "w9",
		"status":     "done", // workflowId takes precedence
	})

	payload := decodeResult(t, out)
	if payload["error"] != nil {
		t.Fatalf("unexpected error: %v", payload["error"])
	}
	if workflowFetches != 0 {
		t.Fatalf("direct workflowId must skip resolution, saw %d fetches", workflowFetches)
	}
}

func TestTasksChangeStatusNeitherGiven(t *testing.T) {
	client, cfg := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("validation failure must not reach the network")
	})

	tool := NewTasksTool(client, cfg, zap.NewNop())
	out := tool.Handle(context.Background(), map[string]any{
		"action": "change_status",
		"taskId": "t1",
	})

	payload := decodeResult(t, out)
	if payload["error"] == nil {
		t.Fatalf("expected validation error, got %q", out)
	}
}

func TestTasksChangeStatusUnknownLabel(t *testing.T) {
	client, cfg := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/workflows") {
			w.Write([]byte(workflowListFixture))
			return
		}
		t.Fatalf("resolution failure must not update the task: %s %s", r.Method, r.URL.Path)
	})

	tool := NewTasksTool(client, cfg, zap.NewNop())
	out := tool.Handle(context.Background(), map[string]any{
		"action": "change_status",
		"taskId": "t1",
		"status": "no-such-state",
	})

	payload := decodeResult(t, out)
	errMsg, _ := payload["error"].(string)
	if !strings.Contains(errMsg, "not found") {
		t.Fatalf("expected not-found error, got %q", out)
	}
}

func TestTasksCreateThenGetRoundTrip(t *testing.T) {
	var stored map[string]any
	client, cfg := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/project/v1/projects/p1/posts":
			if err := json.NewDecoder(r.Body).Decode(&stored); err != nil {
				t.Fatalf("decode create: %v", err)
			}
			w.Write([]byte(`{"result":{"id":"t100"}}`))
		case r.Method == http.MethodGet && r.URL.Path == "/project/v1/projects/p1/posts/t100":
			payload, _ := json.Marshal(map[string]any{"result": map[string]any{
				"id":      "t100",
				"subject": stored["subject"],
			}})
			w.Write(payload)
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	})

	tool := NewTasksTool(client, cfg, zap.NewNop())
	created := tool.Handle(context.Background(), map[string]any{
		"action": "create",
		"title":  "Ship the adapter",
	})
	if decodeResult(t, created)["error"] != nil {
		t.Fatalf("create failed: %q", created)
	}

	got := tool.Handle(context.Background(), map[string]any{
		"action": "get",
		"taskId": "t100",
	})
	payload := decodeResult(t, got)
	result, _ := payload["result"].(map[string]any)
	if result["subject"] != "Ship the adapter" {
		t.Fatalf("round-trip subject mismatch: %q", got)
	}
}

func TestTasksMissingTaskID(t *testing.T) {
	client, cfg := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("validation failure must not reach the network")
	})

	tool := NewTasksTool(client, cfg, zap.NewNop())
	out := tool.Handle(context.Background(), map[string]any{"action": "get"})

	payload := decodeResult(t, out)
	errMsg, _ := payload["error"].(string)
	if !strings.Contains(errMsg, "taskId") {
		t.Fatalf("error should name the missing field, got %q", out)
	}
}

func TestTasksMissingProjectWithoutDefault(t *testing.T) {
	client, cfg := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("validation failure must not reach the network")
	})
	cfg.DefaultProjectID = ""

	tool := NewTasksTool(client, cfg, zap.NewNop())
	out := tool.Handle(context.Background(), map[string]any{"action": "list"})

	payload := decodeResult(t, out)
	errMsg, _ := payload["error"].(string)
	if !strings.Contains(errMsg, "projectId") {
		t.Fatalf("expected projectId validation error, got %q", out)
	}
}

func TestTasksAssign(t *testing.T) {
	var update map[string]any
	client, cfg := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			t.Fatalf("decode update: %v", err)
		}
		w.Write([]byte(`{"result":{}}`))
	})

	tool := NewTasksTool(client, cfg, zap.NewNop())
	out := tool.Handle(context.Background(), map[string]any{
		"action":     "assign",
		"taskId":     "t1",
		"assigneeId": "m7",
	})

	if decodeResult(t, out)["error"] != nil {
		t.Fatalf("assign failed: %q", out)
	}
	users, _ := update["users"].([]any)
	if len(users) != 1 {
		t.Fatalf("expected one assignee, got %v", update["users"])
	}
}
