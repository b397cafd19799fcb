package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/pylonmcp/internal/filter"
	"github.com/MrWong99/pylonmcp/internal/pylon"
	"github.com/MrWong99/pylonmcp/internal/view"
)

// Bounds for the recent-issue list of account_overview.
const (
	minOverviewIssues     = 1
	maxOverviewIssues     = 50
	defaultOverviewIssues = 10

	// overviewContactLimit caps how many contacts one overview fetches.
	overviewContactLimit = 50
)

type searchAccountsInput struct {
	Filter map[string]any `json:"filter,omitempty" jsonschema:"Field → {operator: value} mapping; unsupported operators are dropped"`
	Limit  int            `json:"limit,omitempty" jsonschema:"Page size (1-1000, default 50)"`
	Cursor string         `json:"cursor,omitempty" jsonschema:"Opaque cursor from a previous page"`
}

type getAccountInput struct {
	ID string `json:"id" jsonschema:"Account identifier"`
}

type accountOverviewInput struct {
	ID               string `json:"id" jsonschema:"Account identifier"`
	RecentIssueCount int    `json:"recent_issue_count,omitempty" jsonschema:"How many recent issues to include (1-50, default 10)"`
}

type searchContactsInput struct {
	Filter map[string]any `json:"filter,omitempty" jsonschema:"Field → {operator: value} mapping; unsupported operators are dropped"`
	Limit  int            `json:"limit,omitempty" jsonschema:"Page size (1-1000, default 50)"`
	Cursor string         `json:"cursor,omitempty" jsonschema:"Opaque cursor from a previous page"`
}

type getContactInput struct {
	ID string `json:"id" jsonschema:"Contact identifier"`
}

func (t *Toolset) searchAccounts(ctx context.Context, _ *mcp.CallToolRequest, in searchAccountsInput) (*mcp.CallToolResult, any, error) {
	failed := false
	defer t.instrument(ctx, "search_accounts", time.Now(), &failed)

	payload, err := t.sanitizeFilter(ctx, in.Filter)
	if err != nil {
		failed = true
		return errorResult(err), nil, nil
	}

	res, err := t.client.SearchAccounts(ctx, payload, t.clampLimit(in.Limit), in.Cursor)
	if err != nil {
		failed = true
		return errorResult(err), nil, nil
	}
	if len(res.Data) == 0 {
		return textResult("No accounts matched.\n" + paginationTrailer(res.Pagination)), nil, nil
	}
	views := make([]view.Account, len(res.Data))
	for i, raw := range res.Data {
		views[i] = view.NewAccount(view.Record(raw), view.Minimal)
	}
	return textResult(view.AccountTable(views) + "\n" + paginationTrailer(res.Pagination)), nil, nil
}

func (t *Toolset) getAccount(ctx context.Context, _ *mcp.CallToolRequest, in getAccountInput) (*mcp.CallToolResult, any, error) {
	failed := false
	defer t.instrument(ctx, "get_account", time.Now(), &failed)

	if strings.TrimSpace(in.ID) == "" {
		failed = true
		return errorResult(errors.New("id is required")), nil, nil
	}

	raw, err := t.client.GetAccount(ctx, in.ID)
	if err != nil {
		failed = true
		return errorResult(notFound(err, "account", in.ID)), nil, nil
	}
	return jsonResult(view.NewAccount(view.Record(raw), view.Standard)), nil, nil
}

// accountOverview bundles the account record, its contacts, and its most
// recent issues into one response. The three fetches run concurrently; the
// first failure cancels the rest and is reported verbatim.
func (t *Toolset) accountOverview(ctx context.Context, _ *mcp.CallToolRequest, in accountOverviewInput) (*mcp.CallToolResult, any, error) {
	failed := false
	defer t.instrument(ctx, "account_overview", time.Now(), &failed)

	if strings.TrimSpace(in.ID) == "" {
		failed = true
		return errorResult(errors.New("id is required")), nil, nil
	}
	issueCount := in.RecentIssueCount
	if issueCount == 0 {
		issueCount = defaultOverviewIssues
	}
	issueCount = min(max(issueCount, minOverviewIssues), maxOverviewIssues)

	byAccount := filter.Filter{"account_id": map[string]any{"equals": in.ID}}

	var (
		account  map[string]any
		contacts *pylon.SearchResult
		issues   *pylon.SearchResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		account, err = t.client.GetAccount(gctx, in.ID)
		return notFound(err, "account", in.ID)
	})
	g.Go(func() error {
		var err error
		contacts, err = t.client.SearchContacts(gctx, byAccount, overviewContactLimit, "")
		return err
	})
	g.Go(func() error {
		var err error
		issues, err = t.client.SearchIssues(gctx, byAccount, issueCount, "")
		return err
	})
	if err := g.Wait(); err != nil {
		failed = true
		return errorResult(err), nil, nil
	}

	contactViews := make([]view.Contact, len(contacts.Data))
	for i, raw := range contacts.Data {
		contactViews[i] = view.NewContact(view.Record(raw), view.Minimal)
	}
	issueViews := make([]view.Issue, len(issues.Data))
	for i, raw := range issues.Data {
		issueViews[i] = view.NewIssue(view.Record(raw), view.Minimal)
	}

	var b strings.Builder
	b.WriteString("Account:\n")
	accountJSON := jsonResult(view.NewAccount(view.Record(account), view.Standard))
	if accountJSON.IsError {
		failed = true
		return accountJSON, nil, nil
	}
	b.WriteString(accountJSON.Content[0].(*mcp.TextContent).Text)
	fmt.Fprintf(&b, "\n\nContacts (%d):\n", len(contactViews))
	if len(contactViews) == 0 {
		b.WriteString("none\n")
	} else {
		b.WriteString(view.ContactTable(contactViews))
	}
	fmt.Fprintf(&b, "\nRecent issues (%d):\n", len(issueViews))
	if len(issueViews) == 0 {
		b.WriteString("none\n")
	} else {
		b.WriteString(view.IssueTable(issueViews))
	}
	return textResult(b.String()), nil, nil
}

func (t *Toolset) searchContacts(ctx context.Context, _ *mcp.CallToolRequest, in searchContactsInput) (*mcp.CallToolResult, any, error) {
	failed := false
	defer t.instrument(ctx, "search_contacts", time.Now(), &failed)

	payload, err := t.sanitizeFilter(ctx, in.Filter)
	if err != nil {
		failed = true
		return errorResult(err), nil, nil
	}

	res, err := t.client.SearchContacts(ctx, payload, t.clampLimit(in.Limit), in.Cursor)
	if err != nil {
		failed = true
		return errorResult(err), nil, nil
	}
	if len(res.Data) == 0 {
		return textResult("No contacts matched.\n" + paginationTrailer(res.Pagination)), nil, nil
	}
	views := make([]view.Contact, len(res.Data))
	for i, raw := range res.Data {
		views[i] = view.NewContact(view.Record(raw), view.Minimal)
	}
	return textResult(view.ContactTable(views) + "\n" + paginationTrailer(res.Pagination)), nil, nil
}

func (t *Toolset) getContact(ctx context.Context, _ *mcp.CallToolRequest, in getContactInput) (*mcp.CallToolResult, any, error) {
	failed := false
	defer t.instrument(ctx, "get_contact", time.Now(), &failed)

	if strings.TrimSpace(in.ID) == "" {
		failed = true
		return errorResult(errors.New("id is required")), nil, nil
	}

	raw, err := t.client.GetContact(ctx, in.ID)
	if err != nil {
		failed = true
		return errorResult(notFound(err, "contact", in.ID)), nil, nil
	}
	return jsonResult(view.NewContact(view.Record(raw), view.Standard)), nil, nil
}
