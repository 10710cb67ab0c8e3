package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/nhn-tools/dooray-mcp/internal/config"
	"github.com/nhn-tools/dooray-mcp/internal/dooray"
)

type searchType string

const (
	searchTasks       searchType = "tasks"
	searchByAssignee  searchType = "by_assignee"
	searchByStatus    searchType = "by_status"
	searchByTag       searchType = "by_tag"
	searchByDateRange searchType = "by_date_range"
	searchByWorkflow  searchType = "by_workflow"
	searchAdvanced    searchType = "advanced"
)

// SearchTool dispatches task searches. Every search is a query over the
// project's posts endpoint; advanced mode combines multiple conditions
// with AND (one merged call) or OR (one call per condition, results
// unioned client-side).
type SearchTool struct {
	base
}

func NewSearchTool(client *dooray.Client, cfg *config.Config, logger *zap.Logger) *SearchTool {
	return &SearchTool{base{client: client, cfg: cfg, logger: logger}}
}

func (t *SearchTool) Handle(ctx context.Context, args map[string]any) string {
	out, err := t.dispatch(ctx, args)
	return t.respond("search", out, err)
}

func (t *SearchTool) dispatch(ctx context.Context, args map[string]any) (string, error) {
	kind := stringArg(args, "searchType")
	if kind == "" {
		return "", &ValidationError{Msg: "searchType parameter is required"}
	}
	switch searchType(kind) {
	case searchTasks:
		return t.byParam(ctx, args, "query", "query", "tasks")
	case searchByAssignee:
		return t.byParam(ctx, args, "assigneeId", "assigneeId", "by_assignee")
	case searchByStatus:
		return t.byParam(ctx, args, "status", "workflowClass", "by_status")
	case searchByTag:
		return t.byParam(ctx, args, "tagName", "tagName", "by_tag")
	case searchByWorkflow:
		return t.byParam(ctx, args, "workflowId", "workflowIds", "by_workflow")
	case searchByDateRange:
		return t.byDateRange(ctx, args)
	case searchAdvanced:
		return t.advanced(ctx, args)
	default:
		return "", validationErrorf("unknown search type: %s", kind)
	}
}

// byParam covers the single-condition searches: one argument mapped onto
// one query parameter.
func (t *SearchTool) byParam(ctx context.Context, args map[string]any, argName, queryName, kind string) (string, error) {
	projectID, err := t.projectID(args)
	if err != nil {
		return "", err
	}
	value := stringArg(args, argName)
	if value == "" {
		return "", validationErrorf("%s is required for %s search", argName, kind)
	}

	query := t.baseQuery(args)
	query.Set(queryName, value)

	raw, err := t.client.ListTasks(ctx, projectID, query)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (t *SearchTool) byDateRange(ctx context.Context, args map[string]any) (string, error) {
	projectID, err := t.projectID(args)
	if err != nil {
		return "", err
	}
	start := stringArg(args, "startDate")
	end := stringArg(args, "endDate")
	if start == "" || end == "" {
		return "", validationErrorf("startDate and endDate are required for by_date_range search")
	}

	query := t.baseQuery(args)
	query.Set("from", start)
	query.Set("to", end)

	raw, err := t.client.ListTasks(ctx, projectID, query)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// searchCondition is one key/value pair of an advanced search.
type searchCondition struct {
	Key   string
	Value string
}

// advanced combines several conditions. AND merges everything into a
// single remote query. OR issues one query per condition sequentially and
// unions the results by task ID, first occurrence winning; a failing
// condition is logged, recorded in skippedConditions, and skipped rather
// than aborting the whole search.
func (t *SearchTool) advanced(ctx context.Context, args map[string]any) (string, error) {
	projectID, err := t.projectID(args)
	if err != nil {
		return "", err
	}
	conditions, err := parseConditions(args["conditions"])
	if err != nil {
		return "", err
	}
	if len(conditions) == 0 {
		return "", &ValidationError{Msg: "conditions array is required for advanced search"}
	}

	operator := stringArg(args, "logicOperator")
	if operator == "" {
		operator = "AND"
	}

	switch operator {
	case "AND":
		query := t.baseQuery(args)
		for _, cond := range conditions {
			query.Set(cond.Key, cond.Value)
		}
		raw, err := t.client.ListTasks(ctx, projectID, query)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	case "OR":
		return t.orSearch(ctx, projectID, conditions, args)
	default:
		return "", validationErrorf("logicOperator must be AND or OR, got %s", operator)
	}
}

func (t *SearchTool) orSearch(ctx context.Context, projectID string, conditions []searchCondition, args map[string]any) (string, error) {
	seen := make(map[string]bool)
	var merged []json.RawMessage
	var skipped []string

	for _, cond := range conditions {
		query := t.baseQuery(args)
		query.Set(cond.Key, cond.Value)

		raw, err := t.client.ListTasks(ctx, projectID, query)
		if err != nil {
			t.logger.Warn("advanced search condition failed",
				zap.String("key", cond.Key),
				zap.String("value", cond.Value),
				zap.Error(err),
			)
			skipped = append(skipped, fmt.Sprintf("%s=%s", cond.Key, cond.Value))
			continue
		}

		var env struct {
			Result []json.RawMessage `json:"result"`
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			t.logger.Warn("advanced search condition returned malformed response",
				zap.String("key", cond.Key),
				zap.Error(err),
			)
			skipped = append(skipped, fmt.Sprintf("%s=%s", cond.Key, cond.Value))
			continue
		}

		for _, item := range env.Result {
			var probe struct {
				ID string `json:"id"`
			}
			if err := json.Unmarshal(item, &probe); err != nil || probe.ID == "" {
				continue
			}
			if seen[probe.ID] {
				continue
			}
			seen[probe.ID] = true
			merged = append(merged, item)
		}
	}

	if merged == nil {
		merged = []json.RawMessage{}
	}
	response := map[string]any{
		"result":     merged,
		"totalCount": len(merged),
	}
	if len(skipped) > 0 {
		response["skippedConditions"] = skipped
	}
	return marshalResult(response)
}

func (t *SearchTool) baseQuery(args map[string]any) url.Values {
	query := url.Values{}
	if limit := intArg(args, "limit"); limit > 0 {
		query.Set("size", strconv.Itoa(limit))
	}
	return query
}

func parseConditions(raw any) ([]searchCondition, error) {
	items, ok := raw.([]any)
	if !ok {
		return nil, nil
	}
	out := make([]searchCondition, 0, len(items))
	for i, item := range items {
		switch entry := item.(type) {
		case string:
			// Conditions arrive as "key=value" strings from the tool
			// schema; structured objects are accepted too.
			key, value, ok := strings.Cut(entry, "=")
			if !ok || key == "" || value == "" {
				return nil, validationErrorf("condition %d must look like key=value, got %q", i, entry)
			}
			out = append(out, searchCondition{Key: key, Value: value})
		case map[string]any:
			key, _ := entry["key"].(string)
			value := conditionValue(entry["value"])
			if key == "" || value == "" {
				return nil, validationErrorf("condition %d must carry a non-empty key and value", i)
			}
			out = append(out, searchCondition{Key: key, Value: value})
		default:
			return nil, validationErrorf("condition %d must be a key=value string or an object", i)
		}
	}
	return out, nil
}

func conditionValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	}
	return ""
}
