package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/softdesk/internal/apperror"
	"github.com/sakif/softdesk/internal/model"
	"github.com/sakif/softdesk/internal/repository"
)

func TestCommentPermissions(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	alice := e.register(t, "alice")
	bob := e.register(t, "bob")
	carol := e.register(t, "carol")
	root := e.admin(t)
	p := e.project(t, alice)
	e.join(t, alice, p, bob)
	i := e.issue(t, alice, p)

	c, err := e.comments.Create(ctx, bob, i.ID, CommentInput{Description: "looks good"})
	require.NoError(t, err)

	_, err = e.comments.Create(ctx, carol, i.ID, CommentInput{Description: "drive-by"})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = e.comments.Update(ctx, alice, c.ID, CommentInput{Description: "edited by the project author"})
	assert.ErrorIs(t, err, apperror.ErrForbidden, "only the comment author or an admin edits a comment")

	updated, err := e.comments.Update(ctx, bob, c.ID, CommentInput{Description: "looks great"})
	require.NoError(t, err)
	assert.Equal(t, "looks great", updated.Description)

	_, err = e.comments.Update(ctx, bob, c.ID, CommentInput{Description: "  "})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	assert.ErrorIs(t, e.comments.Delete(ctx, carol, c.ID), apperror.ErrForbidden)
	require.NoError(t, e.comments.Delete(ctx, root, c.ID))
}

func TestCommentIDsAreRandom(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	alice := e.register(t, "alice")
	p := e.project(t, alice)
	i := e.issue(t, alice, p)

	first, err := e.comments.Create(ctx, alice, i.ID, CommentInput{Description: "one"})
	require.NoError(t, err)
	second, err := e.comments.Create(ctx, alice, i.ID, CommentInput{Description: "two"})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	for _, id := range []string{first.ID, second.ID} {
		parsed, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(4), parsed.Version())
	}

	list, err := e.comments.List(ctx, alice, i.ID, repository.ListOptions{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "one", list[0].Description)
}

// alice creates a project and a bug, bob (a contributor) comments on it and
// carol, a stranger, is refused when she tries to delete it.
func TestScenario_AliceBobCarol(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	alice := e.register(t, "alice")
	bob := e.register(t, "bob")
	carol := e.register(t, "carol")

	p, err := e.projects.Create(ctx, alice, CreateProjectInput{Name: "P", Type: "BAE"})
	require.NoError(t, err)
	e.join(t, alice, p, bob)

	i, err := e.issues.Create(ctx, alice, p.ID, CreateIssueInput{Title: "I", Priority: "HIGH", Tag: "BUG"})
	require.NoError(t, err)
	assert.Equal(t, model.StatusTodo, i.Status)

	_, err = e.comments.Create(ctx, bob, i.ID, CommentInput{Description: "looks good"})
	require.NoError(t, err)

	err = e.issues.Delete(ctx, carol, i.ID)
	require.ErrorIs(t, err, apperror.ErrForbidden)
	assert.Contains(t, err.Error(), "Forbidden action")

	require.NoError(t, e.projects.Delete(ctx, alice, p.ID))
	_, err = e.issues.Get(ctx, alice, i.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound, "deleting the project removes its issues")
}

func TestLongDescriptionsAreAccepted(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	alice := e.register(t, "alice")
	long := strings.Repeat("a", 5000)

	p, err := e.projects.Create(ctx, alice, CreateProjectInput{Name: "P", Description: long, Type: model.ProjectIOS})
	require.NoError(t, err)
	assert.Len(t, p.Description, 5000)

	i, err := e.issues.Create(ctx, alice, p.ID, CreateIssueInput{
		Title: "I", Description: long, Priority: model.PriorityLow, Tag: model.TagTask,
	})
	require.NoError(t, err)

	c, err := e.comments.Create(ctx, alice, i.ID, CommentInput{Description: long})
	require.NoError(t, err)
	assert.Len(t, c.Description, 5000)

	_, err = e.comments.Update(ctx, alice, c.ID, CommentInput{Description: long + long})
	assert.NoError(t, err)
}
