package view

// Issue is the projected view of a Pylon issue. Standard-level fields carry
// omitempty so a Minimal projection serialises without them; Body is a
// pointer so the key appears exactly when the projection is Full.
type Issue struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	State       string   `json:"state,omitempty"`
	AccountID   string   `json:"account_id,omitempty"`
	AssigneeID  string   `json:"assignee_id,omitempty"`
	RequesterID string   `json:"requester_id,omitempty"`
	TeamID      string   `json:"team_id,omitempty"`
	Tags        []string `json:"tags,omitempty"`

	// Standard and above.
	Number    int64  `json:"number,omitempty"`
	Source    string `json:"source,omitempty"`
	Link      string `json:"link,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`

	// Full only. Always HTML-stripped and truncated to [InlineBodyLimit].
	Body *string `json:"body,omitempty"`
}

// NewIssue projects a raw issue record at the requested detail level.
func NewIssue(raw Record, d Detail) Issue {
	v := Issue{
		ID:          raw.str("id"),
		Title:       raw.str("title"),
		State:       raw.str("state"),
		AccountID:   raw.id("account_id", "account"),
		AssigneeID:  raw.id("assignee_id", "assignee"),
		RequesterID: raw.id("requester_id", "requester"),
		TeamID:      raw.id("team_id", "team"),
		Tags:        raw.strs("tags"),
	}
	if d >= Standard {
		if n, ok := raw["number"].(float64); ok {
			v.Number = int64(n)
		}
		v.Source = raw.str("source")
		v.Link = raw.str("link")
		v.CreatedAt = raw.str("created_at")
		v.UpdatedAt = raw.str("updated_at")
	}
	if d >= Full {
		body := StripAndTruncate(raw.str("body_html"), InlineBodyLimit)
		v.Body = &body
	}
	return v
}

// Account is the projected view of a Pylon account. Accounts carry no body
// content, so the Full projection equals Standard.
type Account struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Type   string   `json:"type,omitempty"`
	Domain string   `json:"domain,omitempty"`
	Tags   []string `json:"tags,omitempty"`

	// Standard and above.
	OwnerID            string `json:"owner_id,omitempty"`
	CreatedAt          string `json:"created_at,omitempty"`
	LatestActivityTime string `json:"latest_customer_activity_time,omitempty"`
}

// NewAccount projects a raw account record at the requested detail level.
func NewAccount(raw Record, d Detail) Account {
	v := Account{
		ID:     raw.str("id"),
		Name:   raw.str("name"),
		Type:   raw.str("type"),
		Domain: raw.str("domain"),
		Tags:   raw.strs("tags"),
	}
	if d >= Standard {
		v.OwnerID = raw.id("owner_id", "owner")
		v.CreatedAt = raw.str("created_at")
		v.LatestActivityTime = raw.str("latest_customer_activity_time")
	}
	return v
}

// Contact is the projected view of a Pylon contact. Contacts carry no body
// content, so the Full projection equals Standard.
type Contact struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	AccountID string `json:"account_id,omitempty"`

	// Standard and above.
	Role      string `json:"role,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// NewContact projects a raw contact record at the requested detail level.
func NewContact(raw Record, d Detail) Contact {
	v := Contact{
		ID:        raw.str("id"),
		Name:      raw.str("name"),
		Email:     raw.str("email"),
		AccountID: raw.id("account_id", "account"),
	}
	if d >= Standard {
		v.Role = raw.str("role")
		v.AvatarURL = raw.str("avatar_url")
		v.CreatedAt = raw.str("created_at")
	}
	return v
}

// Team is the projected view of a Pylon team. The Minimal view reports the
// size of the member list rather than the list itself; member identifiers
// appear from Standard upward.
type Team struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MemberCount int    `json:"member_count"`

	// Standard and above.
	MemberIDs []string `json:"member_ids,omitempty"`
}

// NewTeam projects a raw team record at the requested detail level.
func NewTeam(raw Record, d Detail) Team {
	v := Team{
		ID:          raw.str("id"),
		Name:        raw.str("name"),
		MemberCount: raw.listLen("users"),
	}
	if d >= Standard {
		if users, ok := raw["users"].([]any); ok {
			ids := make([]string, 0, len(users))
			for _, u := range users {
				if obj, ok := u.(map[string]any); ok {
					if id, ok := obj["id"].(string); ok {
						ids = append(ids, id)
					}
				}
			}
			if len(ids) > 0 {
				v.MemberIDs = ids
			}
		}
	}
	return v
}

// Tag is the projected view of a Pylon tag. Tags are already flat and small;
// a single shape serves every detail level.
type Tag struct {
	ID         string `json:"id"`
	Value      string `json:"value"`
	HexColor   string `json:"hex_color,omitempty"`
	ObjectType string `json:"object_type,omitempty"`
}

// NewTag projects a raw tag record.
func NewTag(raw Record) Tag {
	return Tag{
		ID:         raw.str("id"),
		Value:      raw.str("value"),
		HexColor:   raw.str("hex_color"),
		ObjectType: raw.str("object_type"),
	}
}
