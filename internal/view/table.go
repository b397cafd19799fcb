package view

import (
	"strconv"
	"strings"
)

// maxCellWidth bounds the width of a single table cell. Long text is
// truncated before escaping so the ellipsis can never be split by an escape.
const maxCellWidth = 80

// IssueTable renders Minimal issue views as a pipe table.
func IssueTable(issues []Issue) string {
	rows := make([][]string, len(issues))
	for i, v := range issues {
		rows[i] = []string{
			v.ID, v.Title, v.State, v.AccountID, v.AssigneeID, v.TeamID,
			strings.Join(v.Tags, ", "),
		}
	}
	return renderTable([]string{"id", "title", "state", "account_id", "assignee_id", "team_id", "tags"}, rows)
}

// AccountTable renders Minimal account views as a pipe table.
func AccountTable(accounts []Account) string {
	rows := make([][]string, len(accounts))
	for i, v := range accounts {
		rows[i] = []string{v.ID, v.Name, v.Type, v.Domain, strings.Join(v.Tags, ", ")}
	}
	return renderTable([]string{"id", "name", "type", "domain", "tags"}, rows)
}

// ContactTable renders Minimal contact views as a pipe table.
func ContactTable(contacts []Contact) string {
	rows := make([][]string, len(contacts))
	for i, v := range contacts {
		rows[i] = []string{v.ID, v.Name, v.Email, v.AccountID}
	}
	return renderTable([]string{"id", "name", "email", "account_id"}, rows)
}

// TeamTable renders Minimal team views as a pipe table.
func TeamTable(teams []Team) string {
	rows := make([][]string, len(teams))
	for i, v := range teams {
		rows[i] = []string{v.ID, v.Name, strconv.Itoa(v.MemberCount)}
	}
	return renderTable([]string{"id", "name", "member_count"}, rows)
}

// TagTable renders tag views as a pipe table.
func TagTable(tags []Tag) string {
	rows := make([][]string, len(tags))
	for i, v := range tags {
		rows[i] = []string{v.ID, v.Value, v.ObjectType}
	}
	return renderTable([]string{"id", "value", "object_type"}, rows)
}

// renderTable renders a fixed-column pipe table. Every cell is truncated to
// [maxCellWidth] and then escaped so no cell content can break the row or
// column structure.
func renderTable(headers []string, rows [][]string) string {
	var b strings.Builder

	writeRow := func(cells []string) {
		b.WriteString("|")
		for i := range headers {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			b.WriteString(" ")
			b.WriteString(escapeCell(truncate(cell, maxCellWidth)))
			b.WriteString(" |")
		}
		b.WriteString("\n")
	}

	writeRow(headers)
	b.WriteString("|")
	for range headers {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for _, row := range rows {
		writeRow(row)
	}
	return b.String()
}

// escapeCell neutralises the characters that would corrupt table structure:
// the column delimiter and line breaks.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return s
}
