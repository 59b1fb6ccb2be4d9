package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/sakif/softdesk/internal/apperror"
	"github.com/sakif/softdesk/internal/repository"
)

func TestCreateComment_RandomUUIDs(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")
	p := createTestProject(t, db, alice, "Tracker")
	issue := createTestIssue(t, db, p, alice)

	seen := map[string]bool{}
	for range 5 {
		c := createTestComment(t, db, issue, alice, "hi")
		id, err := uuid.Parse(c.ID)
		if err != nil {
			t.Fatalf("comment id %q is not a UUID: %v", c.ID, err)
		}
		if id.Version() != 4 {
			t.Errorf("comment id version = %d, want 4", id.Version())
		}
		if seen[c.ID] {
			t.Fatalf("duplicate comment id %s", c.ID)
		}
		seen[c.ID] = true
	}
}

func TestListComments_InWritingOrder(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")
	p := createTestProject(t, db, alice, "Tracker")
	issue := createTestIssue(t, db, p, alice)

	for _, text := range []string{"one", "two", "three"} {
		createTestComment(t, db, issue, alice, text)
	}

	comments, err := db.ListComments(context.Background(), issue.ID, repository.ListOptions{})
	if err != nil {
		t.Fatalf("ListComments() error = %v", err)
	}
	if len(comments) != 3 {
		t.Fatalf("ListComments() returned %d comments, want 3", len(comments))
	}
	for i, want := range []string{"one", "two", "three"} {
		if comments[i].Description != want {
			t.Errorf("comments[%d] = %q, want %q", i, comments[i].Description, want)
		}
	}
}

func TestUpdateAndDeleteComment(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice")
	p := createTestProject(t, db, alice, "Tracker")
	issue := createTestIssue(t, db, p, alice)
	c := createTestComment(t, db, issue, alice, "typo")

	c.Description = "fixed"
	if err := db.UpdateComment(ctx, c); err != nil {
		t.Fatalf("UpdateComment() error = %v", err)
	}
	got, err := db.GetCommentByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetCommentByID() error = %v", err)
	}
	if got.Description != "fixed" {
		t.Errorf("Description = %q, want fixed", got.Description)
	}

	if err := db.DeleteComment(ctx, c.ID); err != nil {
		t.Fatalf("DeleteComment() error = %v", err)
	}
	if err := db.DeleteComment(ctx, c.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second DeleteComment() error = %v, want ErrNotFound", err)
	}
}
