package model

import "time"

// Project groups issues and their contributors.
type Project struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Type        ProjectType `json:"type"`
	AuthorID    string      `json:"author_id"`
	CreatedAt   time.Time   `json:"created_time"`
}

// Contributor links a user to a project they may work on.
type Contributor struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	ProjectID string `json:"project_id"`
}
