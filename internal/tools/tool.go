// Package tools contains one dispatcher per Dooray domain object. Each
// dispatcher validates the requested action and its parameters before any
// network call, delegates to the API client, and always answers with a JSON
// string — errors included — so the protocol boundary never has to handle
// a failure itself.
package tools

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/nhn-tools/dooray-mcp/internal/config"
	"github.com/nhn-tools/dooray-mcp/internal/dooray"
)

// ValidationError flags missing or malformed caller input. It is detected
// before any network call and never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func unknownAction(action string) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf("unknown action: %s", action)}
}

// base carries the dependencies every dispatcher shares. Config is
// read-only after startup, so dispatchers are safe for concurrent calls.
type base struct {
	client *dooray.Client
	cfg    *config.Config
	logger *zap.Logger
}

// action pulls the action discriminator out of the argument map.
func (b base) action(args map[string]any) (string, error) {
	name := stringArg(args, "action")
	if name == "" {
		return "", &ValidationError{Msg: "action parameter is required"}
	}
	return name, nil
}

// projectID returns the caller's projectId or falls back to the configured
// default. Absence of both is a validation failure, not a remote error.
func (b base) projectID(args map[string]any) (string, error) {
	if id := stringArg(args, "projectId"); id != "" {
		return id, nil
	}
	if b.cfg.DefaultProjectID != "" {
		return b.cfg.DefaultProjectID, nil
	}
	return "", &ValidationError{Msg: "projectId is required (either as parameter or DOORAY_DEFAULT_PROJECT_ID)"}
}

// respond converts a dispatch outcome into the single text payload the
// protocol boundary returns. Failures become {"error": ...} rather than
// escaping upward.
func (b base) respond(tool string, out string, err error) string {
	if err == nil {
		return out
	}
	b.logger.Error("tool call failed", zap.String("tool", tool), zap.Error(err))
	return errorJSON(err)
}

func errorJSON(err error) string {
	payload, merr := json.Marshal(map[string]string{"error": err.Error()})
	if merr != nil {
		return `{"error":"internal error"}`
	}
	return string(payload)
}

func marshalResult(v any) (string, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}
	return string(payload), nil
}

func stringArg(args map[string]any, key string) string {
	v, ok := args[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

func intArg(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

func stringSliceArg(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// requireArgs verifies that every named string parameter is present,
// reporting all missing fields at once.
func requireArgs(args map[string]any, action string, names ...string) error {
	var missing []string
	for _, name := range names {
		if stringArg(args, name) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return validationErrorf("%s is required for %s action", strings.Join(missing, ", "), action)
	}
	return nil
}
