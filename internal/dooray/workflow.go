package dooray

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// ErrEmptyStatus is returned when a status identifier is empty or
// whitespace-only. Distinct from WorkflowNotFoundError so callers can tell
// "you sent nothing" from "your label doesn't exist".
var ErrEmptyStatus = errors.New("status identifier is empty")

// WorkflowNotFoundError means the identifier matched nothing in the
// project's workflow list across any tier.
type WorkflowNotFoundError struct {
	ProjectID  string
	Identifier string
}

func (e *WorkflowNotFoundError) Error() string {
	return fmt.Sprintf("workflow %q not found in project %s", e.Identifier, e.ProjectID)
}

// ResolveWorkflow maps a human-supplied status token to a concrete workflow
// ID. The token may already be a workflow ID, a display name, a localized
// name, or a workflow class keyword ("open", "working", "closed"). Matching
// tiers, first hit wins:
//
//  1. exact ID
//  2. case-insensitive name
//  3. case-insensitive localized name (workflow list order outer,
//     localized-name order inner)
//  4. class keyword, picking the matching workflow with the smallest order
//
// Classes are coarse buckets — a project often has several "closed"-class
// workflows like Done and Rejected — so exact ID and name always outrank
// the class scan. The workflow list is re-fetched on every resolution;
// lists are small and freshness beats the saved round trip.
func (c *Client) ResolveWorkflow(ctx context.Context, projectID, identifier string) (string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return "", ErrEmptyStatus
	}

	workflows, err := c.ListWorkflows(ctx, projectID)
	if err != nil {
		return "", err
	}

	for _, w := range workflows {
		if w.ID == identifier {
			return w.ID, nil
		}
	}

	for _, w := range workflows {
		if strings.EqualFold(w.Name, identifier) {
			c.logger.Debug("resolved workflow by name",
				zap.String("identifier", identifier),
				zap.String("workflowId", w.ID),
			)
			return w.ID, nil
		}
	}

	for _, w := range workflows {
		for _, ln := range w.Names {
			if strings.EqualFold(ln.Name, identifier) {
				c.logger.Debug("resolved workflow by localized name",
					zap.String("identifier", identifier),
					zap.String("locale", ln.Locale),
					zap.String("workflowId", w.ID),
				)
				return w.ID, nil
			}
		}
	}

	// Class scan: among workflows whose class matches, the smallest order
	// wins; the first seen wins ties.
	bestID := ""
	bestOrder := 0
	for _, w := range workflows {
		if !strings.EqualFold(w.Class, identifier) {
			continue
		}
		order := orderValue(w.Order)
		if bestID == "" || order < bestOrder {
			bestID = w.ID
			bestOrder = order
		}
	}
	if bestID != "" {
		c.logger.Debug("resolved workflow by class",
			zap.String("identifier", identifier),
			zap.String("workflowId", bestID),
			zap.Int("order", bestOrder),
		)
		return bestID, nil
	}

	return "", &WorkflowNotFoundError{ProjectID: projectID, Identifier: identifier}
}

// orderValue reads a workflow order leniently. The API is supposed to send
// a number but numeric strings and junk have been seen in the wild; anything
// unreadable counts as 0 so a malformed entry cannot break resolution.
func orderValue(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case string:
		if parsed, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return parsed
		}
	}
	return 0
}
