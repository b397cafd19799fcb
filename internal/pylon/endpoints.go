package pylon

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Pagination is the cursor envelope returned by the search endpoints. The
// cursor is opaque: issued by the remote service and echoed back verbatim on
// the next request, never inspected or decoded here.
type Pagination struct {
	Cursor      string `json:"cursor"`
	HasNextPage bool   `json:"has_next_page"`
}

// SearchResult is one page of raw records from a search endpoint.
type SearchResult struct {
	Data       []map[string]any `json:"data"`
	Pagination Pagination       `json:"pagination"`
}

// searchRequest is the JSON body of the search endpoints. A nil filter is
// omitted entirely — the canonical "no filter" payload — rather than sent as
// an ambiguous empty object.
type searchRequest struct {
	Filter any    `json:"filter,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Cursor string `json:"cursor,omitempty"`
}

// recordEnvelope is the JSON body of the single-record endpoints.
type recordEnvelope struct {
	Data map[string]any `json:"data"`
}

// listEnvelope is the JSON body of the plain list endpoints.
type listEnvelope struct {
	Data []map[string]any `json:"data"`
}

// search posts a filter to the given search path and decodes one result page.
func (c *Client) search(ctx context.Context, path string, filter any, limit int, cursor string) (*SearchResult, error) {
	raw, err := c.Request(ctx, http.MethodPost, path, searchRequest{
		Filter: filter,
		Limit:  limit,
		Cursor: cursor,
	})
	if err != nil {
		return nil, err
	}
	res := &SearchResult{}
	if err := json.Unmarshal(raw, res); err != nil {
		return nil, fmt.Errorf("pylon: decode search response: %w", err)
	}
	return res, nil
}

// getRecord fetches a single record from the given path.
func (c *Client) getRecord(ctx context.Context, path string) (map[string]any, error) {
	raw, err := c.Request(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	env := recordEnvelope{}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("pylon: decode record: %w", err)
	}
	return env.Data, nil
}

// list fetches every record from a plain (non-search) list path.
func (c *Client) list(ctx context.Context, path string) ([]map[string]any, error) {
	raw, err := c.Request(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	env := listEnvelope{}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("pylon: decode list: %w", err)
	}
	return env.Data, nil
}

// SearchIssues returns one page of issues matching filter. filter must
// already be sanitized; pass nil for an unfiltered search.
func (c *Client) SearchIssues(ctx context.Context, filter any, limit int, cursor string) (*SearchResult, error) {
	return c.search(ctx, "/issues/search", filter, limit, cursor)
}

// GetIssue fetches a single issue by ID.
func (c *Client) GetIssue(ctx context.Context, id string) (map[string]any, error) {
	return c.getRecord(ctx, "/issues/"+url.PathEscape(id))
}

// UpdateIssue patches mutable fields of an issue and returns the updated
// record.
func (c *Client) UpdateIssue(ctx context.Context, id string, patch map[string]any) (map[string]any, error) {
	raw, err := c.Request(ctx, http.MethodPatch, "/issues/"+url.PathEscape(id), patch)
	if err != nil {
		return nil, err
	}
	env := recordEnvelope{}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("pylon: decode record: %w", err)
	}
	return env.Data, nil
}

// SearchAccounts returns one page of accounts matching filter.
func (c *Client) SearchAccounts(ctx context.Context, filter any, limit int, cursor string) (*SearchResult, error) {
	return c.search(ctx, "/accounts/search", filter, limit, cursor)
}

// GetAccount fetches a single account by ID.
func (c *Client) GetAccount(ctx context.Context, id string) (map[string]any, error) {
	return c.getRecord(ctx, "/accounts/"+url.PathEscape(id))
}

// SearchContacts returns one page of contacts matching filter.
func (c *Client) SearchContacts(ctx context.Context, filter any, limit int, cursor string) (*SearchResult, error) {
	return c.search(ctx, "/contacts/search", filter, limit, cursor)
}

// GetContact fetches a single contact by ID.
func (c *Client) GetContact(ctx context.Context, id string) (map[string]any, error) {
	return c.getRecord(ctx, "/contacts/"+url.PathEscape(id))
}

// ListTeams fetches all teams.
func (c *Client) ListTeams(ctx context.Context) ([]map[string]any, error) {
	return c.list(ctx, "/teams")
}

// GetTeam fetches a single team by ID.
func (c *Client) GetTeam(ctx context.Context, id string) (map[string]any, error) {
	return c.getRecord(ctx, "/teams/"+url.PathEscape(id))
}

// ListTags fetches all tags.
func (c *Client) ListTags(ctx context.Context) ([]map[string]any, error) {
	return c.list(ctx, "/tags")
}

// Me returns the identity attached to the API token. Doubles as the
// readiness probe of the ops endpoint.
func (c *Client) Me(ctx context.Context) (map[string]any, error) {
	return c.getRecord(ctx, "/me")
}
