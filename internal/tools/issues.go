package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/MrWong99/pylonmcp/internal/filter"
	"github.com/MrWong99/pylonmcp/internal/view"
)

type searchIssuesInput struct {
	Filter map[string]any `json:"filter,omitempty" jsonschema:"Field → {operator: value} mapping; unsupported operators are dropped"`
	Limit  int            `json:"limit,omitempty" jsonschema:"Page size (1-1000, default 50)"`
	Cursor string         `json:"cursor,omitempty" jsonschema:"Opaque cursor from a previous page"`
}

type listIssuesInput struct {
	StartTime string `json:"start_time" jsonschema:"RFC 3339 start of the created_at window"`
	EndTime   string `json:"end_time" jsonschema:"RFC 3339 end of the window, at most 30 days after start_time"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Page size (1-1000, default 50)"`
	Cursor    string `json:"cursor,omitempty" jsonschema:"Opaque cursor from a previous page"`
}

type getIssueInput struct {
	ID          string `json:"id" jsonschema:"Issue identifier"`
	IncludeBody bool   `json:"include_body,omitempty" jsonschema:"Include a 500-character body preview"`
}

type getIssueBodyInput struct {
	ID        string `json:"id" jsonschema:"Issue identifier"`
	MaxLength int    `json:"max_length,omitempty" jsonschema:"Maximum characters to return (100-10000, default 2000)"`
}

type updateIssueInput struct {
	ID         string   `json:"id" jsonschema:"Issue identifier"`
	State      string   `json:"state,omitempty" jsonschema:"New state; omit to leave unchanged"`
	AssigneeID string   `json:"assignee_id,omitempty" jsonschema:"New assignee user ID; omit to leave unchanged"`
	Tags       []string `json:"tags,omitempty" jsonschema:"Replacement tag list; omit to leave unchanged"`
}

func (t *Toolset) searchIssues(ctx context.Context, _ *mcp.CallToolRequest, in searchIssuesInput) (*mcp.CallToolResult, any, error) {
	failed := false
	defer t.instrument(ctx, "search_issues", time.Now(), &failed)

	payload, err := t.sanitizeFilter(ctx, in.Filter)
	if err != nil {
		failed = true
		return errorResult(err), nil, nil
	}

	res, err := t.client.SearchIssues(ctx, payload, t.clampLimit(in.Limit), in.Cursor)
	if err != nil {
		failed = true
		return errorResult(err), nil, nil
	}
	return textResult(issuePage(res.Data, paginationTrailer(res.Pagination))), nil, nil
}

func (t *Toolset) listIssues(ctx context.Context, _ *mcp.CallToolRequest, in listIssuesInput) (*mcp.CallToolResult, any, error) {
	failed := false
	defer t.instrument(ctx, "list_issues", time.Now(), &failed)

	if err := filter.ValidateTimeRange(in.StartTime, in.EndTime); err != nil {
		failed = true
		return errorResult(err), nil, nil
	}
	window := filter.Filter{
		"created_at": map[string]any{
			"time_range": map[string]any{"start": in.StartTime, "end": in.EndTime},
		},
	}

	res, err := t.client.SearchIssues(ctx, window, t.clampLimit(in.Limit), in.Cursor)
	if err != nil {
		failed = true
		return errorResult(err), nil, nil
	}
	return textResult(issuePage(res.Data, paginationTrailer(res.Pagination))), nil, nil
}

func (t *Toolset) getIssue(ctx context.Context, _ *mcp.CallToolRequest, in getIssueInput) (*mcp.CallToolResult, any, error) {
	failed := false
	defer t.instrument(ctx, "get_issue", time.Now(), &failed)

	if strings.TrimSpace(in.ID) == "" {
		failed = true
		return errorResult(errors.New("id is required")), nil, nil
	}

	raw, err := t.client.GetIssue(ctx, in.ID)
	if err != nil {
		failed = true
		return errorResult(notFound(err, "issue", in.ID)), nil, nil
	}

	detail := view.Standard
	if in.IncludeBody {
		detail = view.Full
	}
	return jsonResult(view.NewIssue(view.Record(raw), detail)), nil, nil
}

func (t *Toolset) getIssueBody(ctx context.Context, _ *mcp.CallToolRequest, in getIssueBodyInput) (*mcp.CallToolResult, any, error) {
	failed := false
	defer t.instrument(ctx, "get_issue_body", time.Now(), &failed)

	if strings.TrimSpace(in.ID) == "" {
		failed = true
		return errorResult(errors.New("id is required")), nil, nil
	}
	maxLen := in.MaxLength
	if maxLen == 0 {
		maxLen = view.DefaultBodyLimit
	}
	maxLen = min(max(maxLen, view.MinBodyLimit), view.MaxBodyLimit)

	raw, err := t.client.GetIssue(ctx, in.ID)
	if err != nil {
		failed = true
		return errorResult(notFound(err, "issue", in.ID)), nil, nil
	}

	html, _ := raw["body_html"].(string)
	body, total := view.StripBody(html, maxLen)
	if total == 0 {
		return textResult("Issue has no body content."), nil, nil
	}

	var b strings.Builder
	b.WriteString(body)
	fmt.Fprintf(&b, "\n\nTotal body length: %d characters.", total)
	if total > maxLen {
		fmt.Fprintf(&b, " Truncated to %d; raise max_length (up to %d) to see more.", maxLen, view.MaxBodyLimit)
	}
	return textResult(b.String()), nil, nil
}

func (t *Toolset) updateIssue(ctx context.Context, _ *mcp.CallToolRequest, in updateIssueInput) (*mcp.CallToolResult, any, error) {
	failed := false
	defer t.instrument(ctx, "update_issue", time.Now(), &failed)

	if strings.TrimSpace(in.ID) == "" {
		failed = true
		return errorResult(errors.New("id is required")), nil, nil
	}
	patch := map[string]any{}
	if in.State != "" {
		patch["state"] = in.State
	}
	if in.AssigneeID != "" {
		patch["assignee_id"] = in.AssigneeID
	}
	if in.Tags != nil {
		patch["tags"] = in.Tags
	}
	if len(patch) == 0 {
		failed = true
		return errorResult(errors.New("nothing to update: provide state, assignee_id, or tags")), nil, nil
	}

	raw, err := t.client.UpdateIssue(ctx, in.ID, patch)
	if err != nil {
		failed = true
		return errorResult(notFound(err, "issue", in.ID)), nil, nil
	}
	return jsonResult(view.NewIssue(view.Record(raw), view.Standard)), nil, nil
}

// issuePage renders one page of raw issue records as a Minimal table with the
// pagination trailer below.
func issuePage(data []map[string]any, trailer string) string {
	if len(data) == 0 {
		return "No issues matched.\n" + trailer
	}
	views := make([]view.Issue, len(data))
	for i, raw := range data {
		views[i] = view.NewIssue(view.Record(raw), view.Minimal)
	}
	return view.IssueTable(views) + "\n" + trailer
}

// jsonResult marshals v as indented JSON into a successful tool result.
func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}
	return textResult(string(data))
}
