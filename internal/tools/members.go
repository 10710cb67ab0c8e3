package tools

import (
	"context"
	"net/url"

	"go.uber.org/zap"

	"github.com/nhn-tools/dooray-mcp/internal/config"
	"github.com/nhn-tools/dooray-mcp/internal/dooray"
)

type memberAction string

const (
	memberSearchByEmail      memberAction = "search_by_email"
	memberSearchByID         memberAction = "search_by_id"
	memberGetDetails         memberAction = "get_details"
	memberListProjectMembers memberAction = "list_project_members"
)

// MembersTool dispatches member lookups. All actions are read-only.
type MembersTool struct {
	base
}

func NewMembersTool(client *dooray.Client, cfg *config.Config, logger *zap.Logger) *MembersTool {
	return &MembersTool{base{client: client, cfg: cfg, logger: logger}}
}

func (t *MembersTool) Handle(ctx context.Context, args map[string]any) string {
	out, err := t.dispatch(ctx, args)
	return t.respond("members", out, err)
}

func (t *MembersTool) dispatch(ctx context.Context, args map[string]any) (string, error) {
	action, err := t.action(args)
	if err != nil {
		return "", err
	}
	switch memberAction(action) {
	case memberSearchByEmail:
		if err := requireArgs(args, "search_by_email", "email"); err != nil {
			return "", err
		}
		raw, err := t.client.SearchMembers(ctx, url.Values{"externalEmailAddresses": {stringArg(args, "email")}})
		if err != nil {
			return "", err
		}
		return string(raw), nil
	case memberSearchByID:
		if err := requireArgs(args, "search_by_id", "userId"); err != nil {
			return "", err
		}
		raw, err := t.client.SearchMembers(ctx, url.Values{"userCode": {stringArg(args, "userId")}})
		if err != nil {
			return "", err
		}
		return string(raw), nil
	case memberGetDetails:
		if err := requireArgs(args, "get_details", "userId"); err != nil {
			return "", err
		}
		raw, err := t.client.GetMember(ctx, stringArg(args, "userId"))
		if err != nil {
			return "", err
		}
		return string(raw), nil
	case memberListProjectMembers:
		projectID, err := t.projectID(args)
		if err != nil {
			return "", err
		}
		raw, err := t.client.ListProjectMembers(ctx, projectID)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	default:
		return "", unknownAction(action)
	}
}
