package tools

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/MrWong99/pylonmcp/internal/view"
)

type emptyInput struct{}

type getTeamInput struct {
	ID string `json:"id" jsonschema:"Team identifier"`
}

func (t *Toolset) listTeams(ctx context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, any, error) {
	failed := false
	defer t.instrument(ctx, "list_teams", time.Now(), &failed)

	data, err := t.client.ListTeams(ctx)
	if err != nil {
		failed = true
		return errorResult(err), nil, nil
	}
	if len(data) == 0 {
		return textResult("No teams defined."), nil, nil
	}
	views := make([]view.Team, len(data))
	for i, raw := range data {
		views[i] = view.NewTeam(view.Record(raw), view.Minimal)
	}
	return textResult(view.TeamTable(views)), nil, nil
}

func (t *Toolset) getTeam(ctx context.Context, _ *mcp.CallToolRequest, in getTeamInput) (*mcp.CallToolResult, any, error) {
	failed := false
	defer t.instrument(ctx, "get_team", time.Now(), &failed)

	if strings.TrimSpace(in.ID) == "" {
		failed = true
		return errorResult(errors.New("id is required")), nil, nil
	}

	raw, err := t.client.GetTeam(ctx, in.ID)
	if err != nil {
		failed = true
		return errorResult(notFound(err, "team", in.ID)), nil, nil
	}
	return jsonResult(view.NewTeam(view.Record(raw), view.Standard)), nil, nil
}

func (t *Toolset) listTags(ctx context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, any, error) {
	failed := false
	defer t.instrument(ctx, "list_tags", time.Now(), &failed)

	data, err := t.client.ListTags(ctx)
	if err != nil {
		failed = true
		return errorResult(err), nil, nil
	}
	if len(data) == 0 {
		return textResult("No tags defined."), nil, nil
	}
	views := make([]view.Tag, len(data))
	for i, raw := range data {
		views[i] = view.NewTag(view.Record(raw))
	}
	return textResult(view.TagTable(views)), nil, nil
}

func (t *Toolset) getCurrentUser(ctx context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, any, error) {
	failed := false
	defer t.instrument(ctx, "get_current_user", time.Now(), &failed)

	raw, err := t.client.Me(ctx)
	if err != nil {
		failed = true
		return errorResult(err), nil, nil
	}
	return jsonResult(raw), nil, nil
}
