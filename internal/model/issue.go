package model

import "time"

// Issue is a bug, feature or task inside a project.
type Issue struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ProjectID   string    `json:"project_id"`
	AuthorID    string    `json:"author_id"`
	AssigneeID  *string   `json:"assignee_id"` // nil when unassigned or the assignee was deleted
	Priority    Priority  `json:"priority"`
	Tag         Tag       `json:"tag"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_time"`
}

// Comment IDs are random UUIDs, not derived from insertion order.
type Comment struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	IssueID     string    `json:"issue_id"`
	AuthorID    string    `json:"author_id"`
	CreatedAt   time.Time `json:"created_time"`
}
