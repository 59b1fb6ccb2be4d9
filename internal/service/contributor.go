package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sakif/softdesk/internal/apperror"
	"github.com/sakif/softdesk/internal/model"
	"github.com/sakif/softdesk/internal/policy"
	"github.com/sakif/softdesk/internal/repository"
)

// AddContributorInput names the user to add by id.
type AddContributorInput struct {
	UserID string `json:"user_id" validate:"required"`
}

// ContributorStore is the storage a ContributorService needs.
type ContributorStore interface {
	repository.UserRepository
	repository.ProjectRepository
	repository.ContributorRepository
}

// ContributorService manages who works on a project.
type ContributorService struct {
	store  ContributorStore
	policy policy.Policy
	rules  IssueRules
	logger *slog.Logger
}

// NewContributorService returns a ContributorService.
func NewContributorService(store ContributorStore, pol policy.Policy, rules IssueRules, logger *slog.Logger) *ContributorService {
	return &ContributorService{store: store, policy: pol, rules: rules, logger: logger}
}

// Add makes a user a contributor of the project. Only the project author
// or an administrator may do it; adding someone twice is a Conflict.
func (s *ContributorService) Add(ctx context.Context, actor *model.User, projectID string, in AddContributorInput) (*model.Contributor, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	project, err := s.store.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	target, err := projectTarget(ctx, s.store, actor, policy.ResourceContributor, project)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(actor, policy.Create, target); err != nil {
		return nil, err
	}

	in.UserID = strings.TrimSpace(in.UserID)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if _, err := s.store.GetUserByID(ctx, in.UserID); err != nil {
		if isNotFound(err) {
			return nil, apperror.ValidationFailed("user_id", "Unknown user.")
		}
		return nil, err
	}

	c := &model.Contributor{UserID: in.UserID, ProjectID: project.ID}
	if err := s.store.AddContributor(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("contributor added",
		slog.String("projectID", project.ID),
		slog.String("userID", in.UserID),
		slog.String("by", actor.ID),
	)
	return c, nil
}

// List returns the project's contributors to anyone who may read the project.
func (s *ContributorService) List(ctx context.Context, actor *model.User, projectID string, opts repository.ListOptions) ([]model.Contributor, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	project, err := s.store.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	target, err := projectTarget(ctx, s.store, actor, policy.ResourceContributor, project)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(actor, policy.Read, target); err != nil {
		return nil, err
	}
	return s.store.ListContributors(ctx, project.ID, opts)
}

// Remove deletes the contributor link. What the user wrote in the project
// stays. The project author cannot be removed. When assignees must
// contribute, the user is unassigned from the project's issues as well.
func (s *ContributorService) Remove(ctx context.Context, actor *model.User, projectID, contributorID string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	project, err := s.store.GetProjectByID(ctx, projectID)
	if err != nil {
		return err
	}
	link, err := s.store.GetContributorByID(ctx, contributorID)
	if err != nil {
		return err
	}
	if link.ProjectID != project.ID {
		return apperror.NotFound("contributor", contributorID)
	}

	target, err := projectTarget(ctx, s.store, actor, policy.ResourceContributor, project)
	if err != nil {
		return err
	}
	if err := s.policy.Authorize(actor, policy.Delete, target); err != nil {
		return err
	}
	if link.UserID == project.AuthorID {
		return apperror.BadRequest("The project author cannot be removed from its contributors.")
	}

	if err := s.store.RemoveContributor(ctx, contributorID, s.rules.AssigneeMustContribute); err != nil {
		return err
	}

	s.logger.Info("contributor removed",
		slog.String("projectID", project.ID),
		slog.String("userID", link.UserID),
		slog.String("by", actor.ID),
	)
	return nil
}
