package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sakif/softdesk/internal/model"
	"github.com/sakif/softdesk/internal/policy"
	"github.com/sakif/softdesk/internal/repository"
)

// CommentInput is the body of a comment create or update.
type CommentInput struct {
	Description string `json:"description" validate:"required"`
}

// CommentService handles comments on issues.
type CommentService struct {
	store  repository.Store
	policy policy.Policy
	logger *slog.Logger
}

// NewCommentService returns a CommentService.
func NewCommentService(store repository.Store, pol policy.Policy, logger *slog.Logger) *CommentService {
	return &CommentService{store: store, policy: pol, logger: logger}
}

// Create adds a comment to the issue. Contributors of the issue's project,
// its author and administrators may comment.
func (s *CommentService) Create(ctx context.Context, actor *model.User, issueID string, in CommentInput) (*model.Comment, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	issue, project, err := s.issueAndProject(ctx, issueID)
	if err != nil {
		return nil, err
	}
	target, err := projectTarget(ctx, s.store, actor, policy.ResourceComment, project)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(actor, policy.Create, target); err != nil {
		return nil, err
	}

	in.Description = strings.TrimSpace(in.Description)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		Description: in.Description,
		IssueID:     issue.ID,
		AuthorID:    actor.ID,
	}
	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	s.logger.Info("comment created",
		slog.String("commentID", comment.ID),
		slog.String("issueID", issue.ID),
		slog.String("authorID", actor.ID),
	)
	return comment, nil
}

// Get returns comment id if the actor may read its project.
func (s *CommentService) Get(ctx context.Context, actor *model.User, id string) (*model.Comment, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	comment, err := s.store.GetCommentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	_, project, err := s.issueAndProject(ctx, comment.IssueID)
	if err != nil {
		return nil, err
	}
	target, err := projectTarget(ctx, s.store, actor, policy.ResourceComment, project, comment.AuthorID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(actor, policy.Read, target); err != nil {
		return nil, err
	}
	return comment, nil
}

// List returns the issue's comments, oldest first, to readers of its project.
func (s *CommentService) List(ctx context.Context, actor *model.User, issueID string, opts repository.ListOptions) ([]model.Comment, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	issue, project, err := s.issueAndProject(ctx, issueID)
	if err != nil {
		return nil, err
	}
	target, err := projectTarget(ctx, s.store, actor, policy.ResourceComment, project)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(actor, policy.Read, target); err != nil {
		return nil, err
	}
	return s.store.ListComments(ctx, issue.ID, opts)
}

// Update rewrites the comment text. Only its author or an administrator may.
func (s *CommentService) Update(ctx context.Context, actor *model.User, id string, in CommentInput) (*model.Comment, error) {
	comment, err := s.loadOwned(ctx, actor, policy.Update, id)
	if err != nil {
		return nil, err
	}

	in.Description = strings.TrimSpace(in.Description)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	comment.Description = in.Description
	if err := s.store.UpdateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Delete removes comment id. Authors and administrators only.
func (s *CommentService) Delete(ctx context.Context, actor *model.User, id string) error {
	if _, err := s.loadOwned(ctx, actor, policy.Delete, id); err != nil {
		return err
	}
	if err := s.store.DeleteComment(ctx, id); err != nil {
		return err
	}

	s.logger.Info("comment deleted",
		slog.String("commentID", id),
		slog.String("by", actor.ID),
	)
	return nil
}

// loadOwned checks a mutation. Only the comment author is an owner here.
func (s *CommentService) loadOwned(ctx context.Context, actor *model.User, action policy.Action, id string) (*model.Comment, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	comment, err := s.store.GetCommentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	target := policy.Target{Resource: policy.ResourceComment, OwnerIDs: []string{comment.AuthorID}}
	if err := s.policy.Authorize(actor, action, target); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) issueAndProject(ctx context.Context, issueID string) (*model.Issue, *model.Project, error) {
	issue, err := s.store.GetIssueByID(ctx, issueID)
	if err != nil {
		return nil, nil, err
	}
	project, err := s.store.GetProjectByID(ctx, issue.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	return issue, project, nil
}
