package sqlite

import (
	"context"
	"testing"

	"github.com/sakif/softdesk/internal/model"
)

// newTestDB returns a fresh in-memory database, closed when the test ends.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func intPtr(v int) *int { return &v }

func createTestUser(t *testing.T, db *DB, username string) *model.User {
	t.Helper()
	u := &model.User{
		Username:     username,
		PasswordHash: "$2a$04$not-a-real-hash",
		Age:          intPtr(30),
		IsActive:     true,
	}
	if err := db.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("failed to create test user %q: %v", username, err)
	}
	return u
}

func createTestProject(t *testing.T, db *DB, author *model.User, name string) *model.Project {
	t.Helper()
	p := &model.Project{
		Name:        name,
		Description: "a project",
		Type:        model.ProjectBackEnd,
		AuthorID:    author.ID,
	}
	if err := db.CreateProject(context.Background(), p); err != nil {
		t.Fatalf("failed to create test project: %v", err)
	}
	return p
}

func createTestIssue(t *testing.T, db *DB, project *model.Project, author *model.User) *model.Issue {
	t.Helper()
	i := &model.Issue{
		Title:     "crash on save",
		ProjectID: project.ID,
		AuthorID:  author.ID,
		Priority:  model.PriorityHigh,
		Tag:       model.TagBug,
	}
	if err := db.CreateIssue(context.Background(), i); err != nil {
		t.Fatalf("failed to create test issue: %v", err)
	}
	return i
}

func createTestComment(t *testing.T, db *DB, issue *model.Issue, author *model.User, text string) *model.Comment {
	t.Helper()
	c := &model.Comment{Description: text, IssueID: issue.ID, AuthorID: author.ID}
	if err := db.CreateComment(context.Background(), c); err != nil {
		t.Fatalf("failed to create test comment: %v", err)
	}
	return c
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	if err := db.migrate(); err != nil {
		t.Fatalf("second migrate() error = %v", err)
	}
}

func TestForeignKeysEnabled(t *testing.T) {
	db := newTestDB(t)

	var on int
	if err := db.conn.QueryRow(`PRAGMA foreign_keys`).Scan(&on); err != nil {
		t.Fatalf("reading foreign_keys pragma: %v", err)
	}
	if on != 1 {
		t.Fatalf("foreign_keys = %d, want 1", on)
	}
}
