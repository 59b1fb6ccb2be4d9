package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/softdesk/internal/apperror"
	"github.com/sakif/softdesk/internal/model"
	"github.com/sakif/softdesk/internal/policy"
	"github.com/sakif/softdesk/internal/repository"
)

// exportPageSize is the page size used to walk a whole project's issues.
const exportPageSize = 100

// CreateIssueInput is the body of an issue create. Status defaults to To Do.
type CreateIssueInput struct {
	Title       string         `json:"title" validate:"required,max=100"`
	Description string         `json:"description"`
	AssigneeID  *string        `json:"assignee_id"`
	Priority    model.Priority `json:"priority" validate:"required,priority"`
	Tag         model.Tag      `json:"tag" validate:"required,tag"`
	Status      model.Status   `json:"status" validate:"omitempty,status"`
}

// UpdateIssueInput is a partial update. An explicit null or empty
// assignee_id unassigns the issue; an absent one leaves it alone.
type UpdateIssueInput struct {
	Title       *string         `json:"title" validate:"omitempty,min=1,max=100"`
	Description *string         `json:"description"`
	AssigneeID  NullableString  `json:"assignee_id" validate:"-"`
	Priority    *model.Priority `json:"priority" validate:"omitempty,priority"`
	Tag         *model.Tag      `json:"tag" validate:"omitempty,tag"`
	Status      *model.Status   `json:"status" validate:"omitempty,status"`
}

// IssueRules are the operator-configurable issue rules.
type IssueRules struct {
	AssigneeMustContribute bool
}

// IssueService handles issues and their assignee rules.
type IssueService struct {
	store  repository.Store
	policy policy.Policy
	rules  IssueRules
	logger *slog.Logger
}

// NewIssueService returns an IssueService applying rules.
func NewIssueService(store repository.Store, pol policy.Policy, rules IssueRules, logger *slog.Logger) *IssueService {
	return &IssueService{store: store, policy: pol, rules: rules, logger: logger}
}

// Create opens an issue on the project. Contributors, the project author and
// administrators may do so. The status defaults to TODO.
func (s *IssueService) Create(ctx context.Context, actor *model.User, projectID string, in CreateIssueInput) (*model.Issue, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	project, err := s.store.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeProject(ctx, actor, policy.Create, project); err != nil {
		return nil, err
	}

	in.Title = strings.TrimSpace(in.Title)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	assignee := normalizeID(in.AssigneeID)
	if err := s.checkAssignee(ctx, project.ID, assignee); err != nil {
		return nil, err
	}

	issue := &model.Issue{
		Title:       in.Title,
		Description: in.Description,
		ProjectID:   project.ID,
		AuthorID:    actor.ID,
		AssigneeID:  assignee,
		Priority:    in.Priority,
		Tag:         in.Tag,
		Status:      in.Status,
	}
	if issue.Status == "" {
		issue.Status = model.StatusTodo
	}
	if err := s.store.CreateIssue(ctx, issue); err != nil {
		return nil, err
	}

	s.logger.Info("issue created",
		slog.String("issueID", issue.ID),
		slog.String("projectID", project.ID),
		slog.String("authorID", actor.ID),
	)
	return issue, nil
}

// Get returns issue id if the actor may read its project.
func (s *IssueService) Get(ctx context.Context, actor *model.User, id string) (*model.Issue, error) {
	issue, _, err := s.load(ctx, actor, policy.Read, id)
	return issue, err
}

// List returns a page of the project's issues to its readers.
func (s *IssueService) List(ctx context.Context, actor *model.User, projectID string, opts repository.ListOptions) ([]model.Issue, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	project, err := s.store.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeProject(ctx, actor, policy.Read, project); err != nil {
		return nil, err
	}
	return s.store.ListIssues(ctx, project.ID, opts)
}

// ListAll returns the project and every one of its issues, for export.
func (s *IssueService) ListAll(ctx context.Context, actor *model.User, projectID string) (*model.Project, []model.Issue, error) {
	if err := requireActor(actor); err != nil {
		return nil, nil, err
	}
	project, err := s.store.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.authorizeProject(ctx, actor, policy.Read, project); err != nil {
		return nil, nil, err
	}

	var all []model.Issue
	for offset := 0; ; offset += exportPageSize {
		page, err := s.store.ListIssues(ctx, project.ID, repository.ListOptions{Limit: exportPageSize, Offset: offset})
		if err != nil {
			return nil, nil, fmt.Errorf("service/issue: listing issues for export: %w", err)
		}
		all = append(all, page...)
		if len(page) < exportPageSize {
			break
		}
	}
	return project, all, nil
}

// Update edits the issue. The issue author, the project author and
// administrators may do so. Any status may follow any other.
func (s *IssueService) Update(ctx context.Context, actor *model.User, id string, in UpdateIssueInput) (*model.Issue, error) {
	issue, _, err := s.load(ctx, actor, policy.Update, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		trimmed := strings.TrimSpace(*in.Title)
		in.Title = &trimmed
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	switch {
	case in.AssigneeID.Clear():
		issue.AssigneeID = nil
	case in.AssigneeID.Set:
		assignee := normalizeID(in.AssigneeID.Value)
		if err := s.checkAssignee(ctx, issue.ProjectID, assignee); err != nil {
			return nil, err
		}
		issue.AssigneeID = assignee
	}
	if in.Title != nil {
		issue.Title = *in.Title
	}
	if in.Description != nil {
		issue.Description = *in.Description
	}
	if in.Priority != nil {
		issue.Priority = *in.Priority
	}
	if in.Tag != nil {
		issue.Tag = *in.Tag
	}
	if in.Status != nil {
		issue.Status = *in.Status
	}

	if err := s.store.UpdateIssue(ctx, issue); err != nil {
		return nil, err
	}
	return issue, nil
}

// Delete removes the issue and its comments.
func (s *IssueService) Delete(ctx context.Context, actor *model.User, id string) error {
	if _, _, err := s.load(ctx, actor, policy.Delete, id); err != nil {
		return err
	}
	if err := s.store.DeleteIssue(ctx, id); err != nil {
		return err
	}

	s.logger.Info("issue deleted",
		slog.String("issueID", id),
		slog.String("by", actor.ID),
	)
	return nil
}

// load fetches the issue and its project and checks action against them.
func (s *IssueService) load(ctx context.Context, actor *model.User, action policy.Action, id string) (*model.Issue, *model.Project, error) {
	if err := requireActor(actor); err != nil {
		return nil, nil, err
	}
	issue, err := s.store.GetIssueByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	project, err := s.store.GetProjectByID(ctx, issue.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	target, err := projectTarget(ctx, s.store, actor, policy.ResourceIssue, project, issue.AuthorID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.policy.Authorize(actor, action, target); err != nil {
		return nil, nil, err
	}
	return issue, project, nil
}

func (s *IssueService) authorizeProject(ctx context.Context, actor *model.User, action policy.Action, project *model.Project) error {
	target, err := projectTarget(ctx, s.store, actor, policy.ResourceIssue, project)
	if err != nil {
		return err
	}
	return s.policy.Authorize(actor, action, target)
}

// checkAssignee requires an existing user and, when the rule is on, a
// contributor of the project. A nil assignee always passes.
func (s *IssueService) checkAssignee(ctx context.Context, projectID string, assignee *string) error {
	if assignee == nil {
		return nil
	}
	if _, err := s.store.GetUserByID(ctx, *assignee); err != nil {
		if isNotFound(err) {
			return apperror.ValidationFailed("assignee_id", "Unknown user.")
		}
		return err
	}
	if !s.rules.AssigneeMustContribute {
		return nil
	}
	ok, err := s.store.IsContributor(ctx, projectID, *assignee)
	if err != nil {
		return fmt.Errorf("service/issue: checking assignee %s: %w", *assignee, err)
	}
	if !ok {
		return apperror.ValidationFailed("assignee_id", "The assignee must be a contributor of the project.")
	}
	return nil
}

// normalizeID maps nil and blank ids to nil.
func normalizeID(id *string) *string {
	if id == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*id)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
