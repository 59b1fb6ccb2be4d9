package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/softdesk/internal/auth"
	"github.com/sakif/softdesk/internal/model"
	"github.com/sakif/softdesk/internal/policy"
	"github.com/sakif/softdesk/internal/repository/sqlite"
)

// env wires every service over one in-memory database.
type env struct {
	db           *sqlite.DB
	users        *UserService
	auth         *AuthService
	projects     *ProjectService
	contributors *ContributorService
	issues       *IssueService
	comments     *CommentService
	tokens       *auth.TokenService
}

type envOptions struct {
	scope                  policy.ReadScope
	assigneeMustContribute bool
}

func newEnv(t *testing.T) *env {
	return newEnvWith(t, envOptions{scope: policy.ReadAuthenticated, assigneeMustContribute: true})
}

func newEnvWith(t *testing.T, opts envOptions) *env {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!", 0)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	passwords := auth.NewPasswordServiceForTest(bcrypt.MinCost)
	pol := policy.New(opts.scope)
	rules := IssueRules{AssigneeMustContribute: opts.assigneeMustContribute}

	return &env{
		db:           db,
		users:        NewUserService(db, passwords, pol, logger),
		auth:         NewAuthService(db, tokens, passwords, logger),
		projects:     NewProjectService(db, pol, logger),
		contributors: NewContributorService(db, pol, rules, logger),
		issues:       NewIssueService(db, pol, rules, logger),
		comments:     NewCommentService(db, pol, logger),
		tokens:       tokens,
	}
}

func intPtr(v int) *int                      { return &v }
func strPtr(v string) *string                { return &v }
func boolPtr(v bool) *bool                   { return &v }
func statusPtr(v model.Status) *model.Status { return &v }

func (e *env) register(t *testing.T, username string) *model.User {
	t.Helper()
	u, err := e.users.Register(context.Background(), RegisterInput{
		Username: username,
		Password: "correct-horse",
		Age:      intPtr(30),
	})
	require.NoError(t, err)
	return u
}

func (e *env) admin(t *testing.T) *model.User {
	t.Helper()
	u, err := e.users.CreateSuperuser(context.Background(), "root", "correct-horse")
	require.NoError(t, err)
	return u
}

func (e *env) project(t *testing.T, author *model.User) *model.Project {
	t.Helper()
	p, err := e.projects.Create(context.Background(), author, CreateProjectInput{
		Name: "SoftDesk",
		Type: model.ProjectBackEnd,
	})
	require.NoError(t, err)
	return p
}

func (e *env) join(t *testing.T, owner *model.User, p *model.Project, u *model.User) *model.Contributor {
	t.Helper()
	c, err := e.contributors.Add(context.Background(), owner, p.ID, AddContributorInput{UserID: u.ID})
	require.NoError(t, err)
	return c
}

func (e *env) issue(t *testing.T, author *model.User, p *model.Project) *model.Issue {
	t.Helper()
	i, err := e.issues.Create(context.Background(), author, p.ID, CreateIssueInput{
		Title:    "Crash on save",
		Priority: model.PriorityHigh,
		Tag:      model.TagBug,
	})
	require.NoError(t, err)
	return i
}
