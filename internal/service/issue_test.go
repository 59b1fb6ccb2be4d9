package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/softdesk/internal/apperror"
	"github.com/sakif/softdesk/internal/model"
	"github.com/sakif/softdesk/internal/repository"
)

func TestIssueCreate(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	alice := e.register(t, "alice")
	bob := e.register(t, "bob")
	carol := e.register(t, "carol")
	p := e.project(t, alice)
	e.join(t, alice, p, bob)

	i := e.issue(t, alice, p)
	assert.Equal(t, model.StatusTodo, i.Status)
	assert.Equal(t, alice.ID, i.AuthorID)
	assert.Nil(t, i.AssigneeID)

	t.Run("contributor may open issues", func(t *testing.T) {
		e.issue(t, bob, p)
	})

	t.Run("stranger may not", func(t *testing.T) {
		_, err := e.issues.Create(ctx, carol, p.ID, CreateIssueInput{Title: "x", Priority: "LOW", Tag: "BUG"})
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("enum validation", func(t *testing.T) {
		_, err := e.issues.Create(ctx, alice, p.ID, CreateIssueInput{Title: "x", Priority: "URGENT", Tag: "BUG", Status: "DONE"})
		require.ErrorIs(t, err, apperror.ErrValidation)
		fields := fieldErrors(t, err)
		assert.Contains(t, fields, "priority")
		assert.Contains(t, fields, "status")
		assert.NotContains(t, fields, "tag")
	})

	t.Run("explicit status", func(t *testing.T) {
		i, err := e.issues.Create(ctx, alice, p.ID, CreateIssueInput{Title: "x", Priority: "LOW", Tag: "TASK", Status: model.StatusInProgress})
		require.NoError(t, err)
		assert.Equal(t, model.StatusInProgress, i.Status)
	})
}

func TestIssueAssignee_MustContribute(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	alice := e.register(t, "alice")
	bob := e.register(t, "bob")
	carol := e.register(t, "carol")
	p := e.project(t, alice)
	e.join(t, alice, p, bob)

	i, err := e.issues.Create(ctx, alice, p.ID, CreateIssueInput{Title: "x", Priority: "LOW", Tag: "BUG", AssigneeID: &bob.ID})
	require.NoError(t, err)
	require.NotNil(t, i.AssigneeID)
	assert.Equal(t, bob.ID, *i.AssigneeID)

	_, err = e.issues.Create(ctx, alice, p.ID, CreateIssueInput{Title: "x", Priority: "LOW", Tag: "BUG", AssigneeID: &carol.ID})
	require.ErrorIs(t, err, apperror.ErrValidation)
	assert.Contains(t, fieldErrors(t, err), "assignee_id")

	_, err = e.issues.Create(ctx, alice, p.ID, CreateIssueInput{Title: "x", Priority: "LOW", Tag: "BUG", AssigneeID: strPtr("ghost")})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestIssueAssignee_RuleOff(t *testing.T) {
	ctx := context.Background()
	e := newEnvWith(t, envOptions{scope: "authenticated", assigneeMustContribute: false})
	alice := e.register(t, "alice")
	carol := e.register(t, "carol")
	p := e.project(t, alice)

	i, err := e.issues.Create(ctx, alice, p.ID, CreateIssueInput{Title: "x", Priority: "LOW", Tag: "BUG", AssigneeID: &carol.ID})
	require.NoError(t, err)
	assert.Equal(t, carol.ID, *i.AssigneeID)
}

func TestIssueUpdate(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	alice := e.register(t, "alice")
	bob := e.register(t, "bob")
	carol := e.register(t, "carol")
	root := e.admin(t)
	p := e.project(t, alice)
	e.join(t, alice, p, bob)

	byBob := e.issue(t, bob, p)

	t.Run("issue author", func(t *testing.T) {
		i, err := e.issues.Update(ctx, bob, byBob.ID, UpdateIssueInput{Status: statusPtr(model.StatusFinished)})
		require.NoError(t, err)
		assert.Equal(t, model.StatusFinished, i.Status)
	})

	t.Run("project author, and transitions are unrestricted", func(t *testing.T) {
		i, err := e.issues.Update(ctx, alice, byBob.ID, UpdateIssueInput{Status: statusPtr(model.StatusTodo)})
		require.NoError(t, err)
		assert.Equal(t, model.StatusTodo, i.Status)
	})

	t.Run("administrator", func(t *testing.T) {
		_, err := e.issues.Update(ctx, root, byBob.ID, UpdateIssueInput{Title: strPtr("Renamed")})
		assert.NoError(t, err)
	})

	t.Run("stranger gets 403", func(t *testing.T) {
		_, err := e.issues.Update(ctx, carol, byBob.ID, UpdateIssueInput{Title: strPtr("mine")})
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("another contributor gets 403", func(t *testing.T) {
		byAlice := e.issue(t, alice, p)
		_, err := e.issues.Update(ctx, bob, byAlice.ID, UpdateIssueInput{Title: strPtr("mine")})
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("assign and unassign through JSON", func(t *testing.T) {
		var in UpdateIssueInput
		require.NoError(t, json.Unmarshal([]byte(`{"assignee_id":"`+bob.ID+`"}`), &in))
		i, err := e.issues.Update(ctx, alice, byBob.ID, in)
		require.NoError(t, err)
		require.NotNil(t, i.AssigneeID)

		in = UpdateIssueInput{}
		require.NoError(t, json.Unmarshal([]byte(`{"title":"still assigned"}`), &in))
		i, err = e.issues.Update(ctx, alice, byBob.ID, in)
		require.NoError(t, err)
		assert.NotNil(t, i.AssigneeID, "an absent assignee_id leaves the assignee alone")

		in = UpdateIssueInput{}
		require.NoError(t, json.Unmarshal([]byte(`{"assignee_id":null}`), &in))
		i, err = e.issues.Update(ctx, alice, byBob.ID, in)
		require.NoError(t, err)
		assert.Nil(t, i.AssigneeID)
	})

	t.Run("empty title", func(t *testing.T) {
		_, err := e.issues.Update(ctx, alice, byBob.ID, UpdateIssueInput{Title: strPtr(" ")})
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})
}

func TestIssueDelete_CascadesComments(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	alice := e.register(t, "alice")
	p := e.project(t, alice)
	i := e.issue(t, alice, p)
	c, err := e.comments.Create(ctx, alice, i.ID, CommentInput{Description: "note"})
	require.NoError(t, err)

	require.NoError(t, e.issues.Delete(ctx, alice, i.ID))

	_, err = e.comments.Get(ctx, alice, c.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDeletingAssigneeKeepsIssue(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	alice := e.register(t, "alice")
	bob := e.register(t, "bob")
	p := e.project(t, alice)
	e.join(t, alice, p, bob)

	i, err := e.issues.Create(ctx, alice, p.ID, CreateIssueInput{Title: "x", Priority: "LOW", Tag: "BUG", AssigneeID: &bob.ID})
	require.NoError(t, err)

	require.NoError(t, e.users.Delete(ctx, bob, bob.ID))

	got, err := e.issues.Get(ctx, alice, i.ID)
	require.NoError(t, err)
	assert.Nil(t, got.AssigneeID)
}

func TestIssueListAll_PagesThroughEverything(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	alice := e.register(t, "alice")
	carol := e.register(t, "carol")
	p := e.project(t, alice)
	for range exportPageSize + 5 {
		e.issue(t, alice, p)
	}

	page, err := e.issues.List(ctx, alice, p.ID, repository.ListOptions{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, page, 10)

	project, all, err := e.issues.ListAll(ctx, alice, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, project.ID)
	assert.Len(t, all, exportPageSize+5)

	_, _, err = e.issues.ListAll(ctx, carol, p.ID)
	assert.NoError(t, err, "any signed-in user reads under the default scope")
}
