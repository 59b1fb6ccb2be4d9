package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/softdesk/internal/apperror"
	"github.com/sakif/softdesk/internal/model"
	"github.com/sakif/softdesk/internal/policy"
	"github.com/sakif/softdesk/internal/repository"
)

func TestProjectCreate(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	alice := e.register(t, "alice")

	p := e.project(t, alice)
	assert.Equal(t, alice.ID, p.AuthorID)
	assert.Equal(t, model.ProjectBackEnd, p.Type)

	member, err := e.db.IsContributor(ctx, p.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, member, "the author contributes to their own project")

	t.Run("anonymous", func(t *testing.T) {
		_, err := e.projects.Create(ctx, nil, CreateProjectInput{Name: "x", Type: model.ProjectIOS})
		assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
	})

	t.Run("invalid type", func(t *testing.T) {
		_, err := e.projects.Create(ctx, alice, CreateProjectInput{Name: "x", Type: "Back-End"})
		require.ErrorIs(t, err, apperror.ErrValidation)
		assert.Contains(t, fieldErrors(t, err), "type")
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := e.projects.Create(ctx, alice, CreateProjectInput{Name: "   ", Type: model.ProjectIOS})
		require.ErrorIs(t, err, apperror.ErrValidation)
		assert.Contains(t, fieldErrors(t, err), "name")
	})

	t.Run("names need not be unique", func(t *testing.T) {
		e.project(t, alice)
	})
}

func TestProjectUpdateAndDelete_OwnerOrAdmin(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	alice := e.register(t, "alice")
	bob := e.register(t, "bob")
	root := e.admin(t)
	p := e.project(t, alice)
	e.join(t, alice, p, bob)

	_, err := e.projects.Update(ctx, bob, p.ID, UpdateProjectInput{Name: strPtr("mine now")})
	assert.ErrorIs(t, err, apperror.ErrForbidden, "contributors may not edit the project")

	typ := model.ProjectAndroid
	updated, err := e.projects.Update(ctx, alice, p.ID, UpdateProjectInput{Type: &typ})
	require.NoError(t, err)
	assert.Equal(t, model.ProjectAndroid, updated.Type)
	assert.Equal(t, "SoftDesk", updated.Name)

	assert.ErrorIs(t, e.projects.Delete(ctx, bob, p.ID), apperror.ErrForbidden)
	require.NoError(t, e.projects.Delete(ctx, root, p.ID))

	_, err = e.projects.Get(ctx, alice, p.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestProjectRead_Scope(t *testing.T) {
	ctx := context.Background()

	t.Run("authenticated scope lets anyone signed in read", func(t *testing.T) {
		e := newEnv(t)
		alice := e.register(t, "alice")
		carol := e.register(t, "carol")
		p := e.project(t, alice)

		_, err := e.projects.Get(ctx, carol, p.ID)
		assert.NoError(t, err)

		list, err := e.projects.List(ctx, carol, repository.ListOptions{})
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("contributors scope hides other projects", func(t *testing.T) {
		e := newEnvWith(t, envOptions{scope: policy.ReadContributors, assigneeMustContribute: true})
		alice := e.register(t, "alice")
		bob := e.register(t, "bob")
		carol := e.register(t, "carol")
		root := e.admin(t)
		p := e.project(t, alice)
		e.join(t, alice, p, bob)

		_, err := e.projects.Get(ctx, carol, p.ID)
		assert.ErrorIs(t, err, apperror.ErrForbidden)

		_, err = e.projects.Get(ctx, bob, p.ID)
		assert.NoError(t, err)

		list, err := e.projects.List(ctx, carol, repository.ListOptions{})
		require.NoError(t, err)
		assert.Empty(t, list)

		list, err = e.projects.List(ctx, bob, repository.ListOptions{})
		require.NoError(t, err)
		assert.Len(t, list, 1)

		list, err = e.projects.List(ctx, root, repository.ListOptions{})
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("anonymous", func(t *testing.T) {
		e := newEnv(t)
		_, err := e.projects.List(ctx, nil, repository.ListOptions{})
		assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
	})
}
