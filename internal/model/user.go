// Package model defines the entities of the issue tracker.
package model

import "time"

const (
	MinAge = 15
	MaxAge = 120
)

// User is an account. Age is nil only for superusers.
//
// PasswordHash never leaves the server: it is excluded from JSON.
type User struct {
	ID              string    `json:"id"                 db:"id"`
	Username        string    `json:"username"           db:"username"`
	PasswordHash    string    `json:"-"                  db:"password_hash"`
	Age             *int      `json:"age"                db:"age"`
	CanBeContacted  bool      `json:"can_be_contacted"   db:"can_be_contacted"`
	CanDataBeShared bool      `json:"can_data_be_shared" db:"can_data_be_shared"`
	IsStaff         bool      `json:"is_staff"           db:"is_staff"`
	IsSuperuser     bool      `json:"is_superuser"       db:"is_superuser"`
	IsActive        bool      `json:"is_active"          db:"is_active"`
	GitHubID        *int64    `json:"github_id,omitempty" db:"github_id"`
	CreatedAt       time.Time `json:"created_at"         db:"created_at"`
}

// IsAdmin reports whether the account bypasses ownership checks.
func (u *User) IsAdmin() bool {
	return u != nil && u.IsActive && u.IsSuperuser
}
