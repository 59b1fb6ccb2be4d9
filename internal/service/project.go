package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sakif/softdesk/internal/model"
	"github.com/sakif/softdesk/internal/policy"
	"github.com/sakif/softdesk/internal/repository"
)

// CreateProjectInput is the body of a project create.
type CreateProjectInput struct {
	Name        string            `json:"name" validate:"required,max=100"`
	Description string            `json:"description"`
	Type        model.ProjectType `json:"type" validate:"required,project_type"`
}

// UpdateProjectInput is a partial project update; nil fields are left alone.
type UpdateProjectInput struct {
	Name        *string            `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string            `json:"description"`
	Type        *model.ProjectType `json:"type" validate:"omitempty,project_type"`
}

// ProjectStore is what ProjectService needs from persistence.
type ProjectStore interface {
	repository.ProjectRepository
	repository.ContributorRepository
}

// ProjectService creates projects and enforces author-only edits.
type ProjectService struct {
	store  ProjectStore
	policy policy.Policy
	logger *slog.Logger
}

// NewProjectService returns a ProjectService.
func NewProjectService(store ProjectStore, pol policy.Policy, logger *slog.Logger) *ProjectService {
	return &ProjectService{store: store, policy: pol, logger: logger}
}

// Create stores a project authored by the actor, who also becomes its first
// contributor.
func (s *ProjectService) Create(ctx context.Context, actor *model.User, in CreateProjectInput) (*model.Project, error) {
	if err := s.policy.Authorize(actor, policy.Create, policy.Target{Resource: policy.ResourceProject}); err != nil {
		return nil, err
	}

	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	project := &model.Project{
		Name:        in.Name,
		Description: in.Description,
		Type:        in.Type,
		AuthorID:    actor.ID,
	}
	if err := s.store.CreateProject(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("project created",
		slog.String("projectID", project.ID),
		slog.String("authorID", actor.ID),
	)
	return project, nil
}

// Get returns the project if the actor may read it.
func (s *ProjectService) Get(ctx context.Context, actor *model.User, id string) (*model.Project, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	project, err := s.store.GetProjectByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actor, policy.Read, policy.ResourceProject, project); err != nil {
		return nil, err
	}
	return project, nil
}

// List returns every project, or only the actor's projects when reads are
// restricted to contributors. Administrators always see everything.
func (s *ProjectService) List(ctx context.Context, actor *model.User, opts repository.ListOptions) ([]model.Project, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	filter := repository.ProjectFilter{ListOptions: opts}
	if s.policy.ReadScope == policy.ReadContributors && !actor.IsAdmin() {
		filter.MemberID = actor.ID
	}
	return s.store.ListProjects(ctx, filter)
}

// Update applies in to project id. Only the author or an administrator may.
func (s *ProjectService) Update(ctx context.Context, actor *model.User, id string, in UpdateProjectInput) (*model.Project, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	project, err := s.store.GetProjectByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actor, policy.Update, policy.ResourceProject, project); err != nil {
		return nil, err
	}

	if in.Name != nil {
		trimmed := strings.TrimSpace(*in.Name)
		in.Name = &trimmed
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	if in.Name != nil {
		project.Name = *in.Name
	}
	if in.Description != nil {
		project.Description = *in.Description
	}
	if in.Type != nil {
		project.Type = *in.Type
	}
	if err := s.store.UpdateProject(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// Delete removes the project with its contributors, issues and comments.
func (s *ProjectService) Delete(ctx context.Context, actor *model.User, id string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	project, err := s.store.GetProjectByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, actor, policy.Delete, policy.ResourceProject, project); err != nil {
		return err
	}
	if err := s.store.DeleteProject(ctx, id); err != nil {
		return err
	}

	s.logger.Info("project deleted",
		slog.String("projectID", id),
		slog.String("by", actor.ID),
	)
	return nil
}

func (s *ProjectService) authorize(ctx context.Context, actor *model.User, action policy.Action, res policy.Resource, project *model.Project) error {
	target, err := projectTarget(ctx, s.store, actor, res, project)
	if err != nil {
		return err
	}
	return s.policy.Authorize(actor, action, target)
}
