// Package tools implements the MCP tools exposed by pylonmcp.
//
// Every tool is a stateless pass-through around the filter and view packages:
// inputs are validated and sanitized before any network call, the Pylon API
// response is projected down to a bounded view, and failures surface as tool
// error results carrying the underlying message verbatim. No tool retries,
// caches, or reinterprets what the API returned.
package tools

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/metric"

	"github.com/MrWong99/pylonmcp/internal/filter"
	"github.com/MrWong99/pylonmcp/internal/observe"
	"github.com/MrWong99/pylonmcp/internal/pylon"
)

// Page size bounds for the search tools.
const (
	minLimit     = 1
	maxLimit     = 1000
	defaultLimit = 50
)

// Toolset holds the shared collaborators of all tool handlers.
type Toolset struct {
	client       *pylon.Client
	metrics      *observe.Metrics
	defaultLimit int
}

// Option configures a [Toolset].
type Option func(*Toolset)

// WithDefaultLimit overrides the page size used when a search tool is called
// without a limit. Values outside [minLimit, maxLimit] are clamped.
func WithDefaultLimit(n int) Option {
	return func(t *Toolset) {
		if n > 0 {
			t.defaultLimit = min(n, maxLimit)
		}
	}
}

// WithMetrics sets the metrics instruments used by the handlers.
func WithMetrics(m *observe.Metrics) Option {
	return func(t *Toolset) { t.metrics = m }
}

// New creates a [Toolset] around the given Pylon client.
func New(client *pylon.Client, opts ...Option) *Toolset {
	t := &Toolset{
		client:       client,
		defaultLimit: defaultLimit,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.metrics == nil {
		t.metrics = observe.DefaultMetrics()
	}
	return t
}

// Register adds every tool to server.
func (t *Toolset) Register(server *mcp.Server) {
	readOnly := &mcp.ToolAnnotations{ReadOnlyHint: true}
	boolPtr := func(b bool) *bool { return &b }
	writeNonDestructive := &mcp.ToolAnnotations{DestructiveHint: boolPtr(false), IdempotentHint: true}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_issues",
		Description: "Search support issues with a structured filter.\n\nArgs:\n  filter: Field → {operator: value} mapping, e.g. {\"state\": {\"in\": [\"new\", \"on_hold\"]}}. Combine with {\"and\": [...]} / {\"or\": [...]}. Unsupported operators are dropped silently; time_range windows must be valid RFC 3339 and span at most 30 days.\n  limit: Page size (1-1000, default 50)\n  cursor: Opaque cursor from a previous page\n\nReturns a table of matching issues plus pagination info.",
		Annotations: readOnly,
	}, t.searchIssues)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_issues",
		Description: "List issues created inside a time window.\n\nArgs:\n  start_time: RFC 3339 start of the window (inclusive)\n  end_time: RFC 3339 end of the window; at most 30 days after start_time\n  limit: Page size (1-1000, default 50)\n  cursor: Opaque cursor from a previous page\n\nReturns a table of issues created in the window plus pagination info.",
		Annotations: readOnly,
	}, t.listIssues)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_issue",
		Description: "Fetch a single issue by ID.\n\nArgs:\n  id: Issue identifier (UUID)\n  include_body: Include a 500-character body preview (default false)\n\nReturns the issue's fields. Use get_issue_body for longer body content.",
		Annotations: readOnly,
	}, t.getIssue)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_issue_body",
		Description: "Fetch the text content of an issue's body, stripped of HTML.\n\nArgs:\n  id: Issue identifier (UUID)\n  max_length: Maximum characters to return (100-10000, default 2000)\n\nReturns the stripped body and the total character count before truncation.",
		Annotations: readOnly,
	}, t.getIssueBody)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_issue",
		Description: "Update a single issue.\n\nArgs:\n  id: Issue identifier (UUID)\n  state: New state (e.g. 'on_hold', 'closed'); omit to leave unchanged\n  assignee_id: New assignee user ID; omit to leave unchanged\n  tags: Replacement tag list; omit to leave unchanged\n\nReturns the updated issue.",
		Annotations: writeNonDestructive,
	}, t.updateIssue)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_accounts",
		Description: "Search customer accounts with a structured filter.\n\nArgs:\n  filter: Field → {operator: value} mapping, e.g. {\"domain\": {\"string_contains\": \"example\"}}. Unsupported operators are dropped silently.\n  limit: Page size (1-1000, default 50)\n  cursor: Opaque cursor from a previous page\n\nReturns a table of matching accounts plus pagination info.",
		Annotations: readOnly,
	}, t.searchAccounts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_account",
		Description: "Fetch a single customer account by ID.\n\nArgs:\n  id: Account identifier (UUID)\n\nReturns the account's fields.",
		Annotations: readOnly,
	}, t.getAccount)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "account_overview",
		Description: "Fetch an account together with its contacts and most recent issues in one call.\n\nArgs:\n  id: Account identifier (UUID)\n  recent_issue_count: How many recent issues to include (1-50, default 10)\n\nReturns the account, a contact table, and a recent-issue table.",
		Annotations: readOnly,
	}, t.accountOverview)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_contacts",
		Description: "Search contacts with a structured filter.\n\nArgs:\n  filter: Field → {operator: value} mapping, e.g. {\"email\": {\"string_contains\": \"@example.com\"}}. Unsupported operators are dropped silently.\n  limit: Page size (1-1000, default 50)\n  cursor: Opaque cursor from a previous page\n\nReturns a table of matching contacts plus pagination info.",
		Annotations: readOnly,
	}, t.searchContacts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_contact",
		Description: "Fetch a single contact by ID.\n\nArgs:\n  id: Contact identifier (UUID)\n\nReturns the contact's fields.",
		Annotations: readOnly,
	}, t.getContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_teams",
		Description: "List all support teams.\n\nReturns a table of teams with member counts.",
		Annotations: readOnly,
	}, t.listTeams)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_team",
		Description: "Fetch a single team by ID.\n\nArgs:\n  id: Team identifier (UUID)\n\nReturns the team including its member IDs.",
		Annotations: readOnly,
	}, t.getTeam)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_tags",
		Description: "List all tags defined in the workspace.\n\nReturns a table of tags.",
		Annotations: readOnly,
	}, t.listTags)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_current_user",
		Description: "Identify the user the configured API token belongs to.\n\nReturns the authenticated user's identity.",
		Annotations: readOnly,
	}, t.getCurrentUser)
}

// ── shared handler plumbing ──────────────────────────────────────────────────

// clampLimit resolves a caller-supplied page size: 0 means the configured
// default, anything else is clamped to [minLimit, maxLimit].
func (t *Toolset) clampLimit(n int) int {
	if n == 0 {
		return t.defaultLimit
	}
	return min(max(n, minLimit), maxLimit)
}

// sanitizeFilter validates and cleans a caller-supplied filter. The returned
// payload is untyped nil when nothing survives, so the transport omits the
// filter key entirely.
func (t *Toolset) sanitizeFilter(ctx context.Context, raw map[string]any) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	f, err := filter.Sanitize(filter.Filter(raw))
	if err != nil {
		return nil, err
	}
	t.metrics.RecordFilterCleaned(ctx, !reflect.DeepEqual(map[string]any(f), raw))
	if f == nil {
		return nil, nil
	}
	return f, nil
}

// instrument records latency and outcome of one tool invocation. Call it
// deferred with the start time captured at handler entry.
func (t *Toolset) instrument(ctx context.Context, tool string, start time.Time, failed *bool) {
	status := "ok"
	if *failed {
		status = "error"
	}
	t.metrics.ToolDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(observe.Attr("tool", tool), observe.Attr("status", status)))
	t.metrics.RecordToolCall(ctx, tool, status)
}

// textResult wraps plain text as a successful tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// errorResult wraps err as a tool error result. The message is passed through
// verbatim so the caller sees exactly what failed, including remote API
// status and body for transport errors.
func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
	}
}

// notFound prefixes a 404 with the entity kind and requested id so the caller
// can tell a bad id from a transport failure. The upstream error stays
// attached verbatim; every other error passes through unchanged.
func notFound(err error, kind, id string) error {
	if pylon.IsNotFound(err) {
		return fmt.Errorf("%s %q not found: %w", kind, id, err)
	}
	return err
}

// paginationTrailer renders the cursor state appended below every search
// table.
func paginationTrailer(p pylon.Pagination) string {
	if !p.HasNextPage {
		return "No further pages."
	}
	return fmt.Sprintf("More results available; pass cursor %q to fetch the next page.", p.Cursor)
}
