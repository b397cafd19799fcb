package view

import (
	"encoding/json"
	"strings"
	"testing"
)

// rawIssue is a representative wide issue record with expanded relations and
// an HTML body, as the API returns when relations are expanded.
func rawIssue() Record {
	return Record{
		"id":     "iss_1",
		"title":  "Login broken",
		"state":  "open",
		"number": float64(4711),
		"source": "email",
		"link":   "https://app.usepylon.com/issues/iss_1",
		"account": map[string]any{
			"id":   "acc_1",
			"name": "Acme Corp",
		},
		"assignee":   map[string]any{"id": "usr_9"},
		"requester":  map[string]any{"id": "con_3"},
		"team_id":    "team_2",
		"tags":       []any{"bug", "vip"},
		"created_at": "2024-02-01T08:30:00Z",
		"updated_at": "2024-02-02T10:00:00Z",
		"body_html":  "<p>Hello,</p><p>login is <b>broken</b> since Monday.</p>",
		"custom_fields": map[string]any{
			"severity": map[string]any{"value": "high"},
		},
	}
}

func TestNewIssue_Minimal(t *testing.T) {
	t.Parallel()

	v := NewIssue(rawIssue(), Minimal)

	if v.ID != "iss_1" || v.Title != "Login broken" || v.State != "open" {
		t.Errorf("unexpected minimal fields: %+v", v)
	}
	if v.AccountID != "acc_1" || v.AssigneeID != "usr_9" || v.RequesterID != "con_3" || v.TeamID != "team_2" {
		t.Errorf("identifier extraction failed: %+v", v)
	}
	if len(v.Tags) != 2 {
		t.Errorf("tags = %v, want 2 entries", v.Tags)
	}
	if v.CreatedAt != "" || v.Source != "" || v.Number != 0 {
		t.Errorf("minimal view must not carry standard fields: %+v", v)
	}
	if v.Body != nil {
		t.Errorf("minimal view must not carry a body")
	}
}

func TestNewIssue_Standard(t *testing.T) {
	t.Parallel()

	v := NewIssue(rawIssue(), Standard)

	if v.Number != 4711 || v.Source != "email" || v.CreatedAt != "2024-02-01T08:30:00Z" {
		t.Errorf("standard fields missing: %+v", v)
	}
	if v.Body != nil {
		t.Errorf("standard view must not carry a body")
	}
}

func TestNewIssue_Full(t *testing.T) {
	t.Parallel()

	v := NewIssue(rawIssue(), Full)

	if v.Body == nil {
		t.Fatal("full view must carry a body field")
	}
	// Tag markup is removed without inserting whitespace in its place.
	if want := "Hello,login is broken since Monday."; *v.Body != want {
		t.Errorf("body = %q, want %q", *v.Body, want)
	}
}

func TestNewIssue_FullBodyTruncated(t *testing.T) {
	t.Parallel()

	raw := rawIssue()
	raw["body_html"] = "<div>" + strings.Repeat("word ", 400) + "</div>"

	v := NewIssue(raw, Full)
	if v.Body == nil {
		t.Fatal("full view must carry a body field")
	}
	if n := len([]rune(*v.Body)); n > InlineBodyLimit {
		t.Errorf("inline body has %d characters, cap is %d", n, InlineBodyLimit)
	}
	if !strings.HasSuffix(*v.Body, "...") {
		t.Errorf("truncated inline body should end with ellipsis")
	}
}

// TestViewContainment verifies the superset chain: every JSON field of the
// Minimal view appears with the same value in Standard and Full; a body key
// appears only in Full.
func TestViewContainment(t *testing.T) {
	t.Parallel()

	raw := rawIssue()
	levels := map[string]map[string]any{
		"minimal":  asJSON(t, NewIssue(raw, Minimal)),
		"standard": asJSON(t, NewIssue(raw, Standard)),
		"full":     asJSON(t, NewIssue(raw, Full)),
	}

	for field, minVal := range levels["minimal"] {
		for _, level := range []string{"standard", "full"} {
			got, ok := levels[level][field]
			if !ok {
				t.Errorf("field %q of minimal view missing from %s view", field, level)
				continue
			}
			a, _ := json.Marshal(minVal)
			b, _ := json.Marshal(got)
			if string(a) != string(b) {
				t.Errorf("field %q differs: minimal=%s %s=%s", field, a, level, b)
			}
		}
	}

	if _, ok := levels["minimal"]["body"]; ok {
		t.Error("minimal view must not contain a body key")
	}
	if _, ok := levels["standard"]["body"]; ok {
		t.Error("standard view must not contain a body key")
	}
	if _, ok := levels["full"]["body"]; !ok {
		t.Error("full view must contain a body key")
	}
}

func asJSON(t *testing.T, v any) map[string]any {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := map[string]any{}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return out
}

func TestNewAccount(t *testing.T) {
	t.Parallel()

	raw := Record{
		"id":     "acc_1",
		"name":   "Acme Corp",
		"type":   "customer",
		"domain": "acme.example",
		"owner":  map[string]any{"id": "usr_1"},
		"tags":   []any{"enterprise"},
		"created_at": "2023-11-20T00:00:00Z",
	}

	min := NewAccount(raw, Minimal)
	if min.ID != "acc_1" || min.Name != "Acme Corp" || min.Domain != "acme.example" {
		t.Errorf("unexpected minimal account: %+v", min)
	}
	if min.OwnerID != "" || min.CreatedAt != "" {
		t.Errorf("minimal account must not carry standard fields: %+v", min)
	}

	std := NewAccount(raw, Standard)
	if std.OwnerID != "usr_1" || std.CreatedAt != "2023-11-20T00:00:00Z" {
		t.Errorf("standard account fields missing: %+v", std)
	}
}

func TestNewContact(t *testing.T) {
	t.Parallel()

	raw := Record{
		"id":      "con_3",
		"name":    "Dana Example",
		"email":   "dana@acme.example",
		"account": map[string]any{"id": "acc_1"},
	}

	v := NewContact(raw, Minimal)
	if v.ID != "con_3" || v.Email != "dana@acme.example" || v.AccountID != "acc_1" {
		t.Errorf("unexpected contact view: %+v", v)
	}
}

func TestNewTeam_MemberCount(t *testing.T) {
	t.Parallel()

	raw := Record{
		"id":   "team_2",
		"name": "Support Tier 1",
		"users": []any{
			map[string]any{"id": "usr_1"},
			map[string]any{"id": "usr_2"},
			map[string]any{"id": "usr_3"},
		},
	}

	min := NewTeam(raw, Minimal)
	if min.MemberCount != 3 {
		t.Errorf("member_count = %d, want 3", min.MemberCount)
	}
	if min.MemberIDs != nil {
		t.Errorf("minimal team must not carry member IDs")
	}

	std := NewTeam(raw, Standard)
	if len(std.MemberIDs) != 3 || std.MemberIDs[0] != "usr_1" {
		t.Errorf("standard team member IDs = %v", std.MemberIDs)
	}
}

func TestNewTag(t *testing.T) {
	t.Parallel()

	v := NewTag(Record{"id": "tag_1", "value": "vip", "hex_color": "#ff0000", "object_type": "issue"})
	if v.ID != "tag_1" || v.Value != "vip" || v.HexColor != "#ff0000" {
		t.Errorf("unexpected tag view: %+v", v)
	}
}
