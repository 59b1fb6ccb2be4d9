// Package repository declares the storage contracts used by the service layer.
package repository

import (
	"context"

	"github.com/sakif/softdesk/internal/model"
)

// ListOptions pages a list query.
type ListOptions struct {
	Limit  int
	Offset int
}

// ProjectFilter narrows a project listing. An empty MemberID lists every
// project.
type ProjectFilter struct {
	ListOptions
	MemberID string
}

// UserRepository persists accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByGitHubID(ctx context.Context, githubID int64) (*model.User, error)
	ListUsers(ctx context.Context, opts ListOptions) ([]model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, id string) error
}

// ProjectRepository stores projects. CreateProject also records the author
// as the first contributor.
type ProjectRepository interface {
	CreateProject(ctx context.Context, project *model.Project) error
	GetProjectByID(ctx context.Context, id string) (*model.Project, error)
	ListProjects(ctx context.Context, filter ProjectFilter) ([]model.Project, error)
	UpdateProject(ctx context.Context, project *model.Project) error
	DeleteProject(ctx context.Context, id string) error
}

// ContributorRepository stores project membership. RemoveContributor with
// unassign set also clears the user from the project's issue assignees.
type ContributorRepository interface {
	AddContributor(ctx context.Context, c *model.Contributor) error
	GetContributorByID(ctx context.Context, id string) (*model.Contributor, error)
	ListContributors(ctx context.Context, projectID string, opts ListOptions) ([]model.Contributor, error)
	IsContributor(ctx context.Context, projectID, userID string) (bool, error)
	RemoveContributor(ctx context.Context, id string, unassign bool) error
}

type IssueRepository interface {
	CreateIssue(ctx context.Context, issue *model.Issue) error
	GetIssueByID(ctx context.Context, id string) (*model.Issue, error)
	ListIssues(ctx context.Context, projectID string, opts ListOptions) ([]model.Issue, error)
	UpdateIssue(ctx context.Context, issue *model.Issue) error
	DeleteIssue(ctx context.Context, id string) error
}

type CommentRepository interface {
	CreateComment(ctx context.Context, comment *model.Comment) error
	GetCommentByID(ctx context.Context, id string) (*model.Comment, error)
	ListComments(ctx context.Context, issueID string, opts ListOptions) ([]model.Comment, error)
	UpdateComment(ctx context.Context, comment *model.Comment) error
	DeleteComment(ctx context.Context, id string) error
}

// Store is everything the services need from persistence.
type Store interface {
	UserRepository
	ProjectRepository
	ContributorRepository
	IssueRepository
	CommentRepository
}
