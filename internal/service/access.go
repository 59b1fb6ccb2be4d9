package service

import (
	"context"
	"fmt"

	"github.com/sakif/softdesk/internal/apperror"
	"github.com/sakif/softdesk/internal/model"
	"github.com/sakif/softdesk/internal/policy"
	"github.com/sakif/softdesk/internal/repository"
)

// requireActor rejects anonymous and inactive callers.
func requireActor(actor *model.User) error {
	if actor == nil || actor.ID == "" || !actor.IsActive {
		return apperror.Unauthenticated("")
	}
	return nil
}

// projectTarget describes something inside project for the policy: the
// project author is always an owner, extra owners are added after it, and
// Member says whether the actor contributes to the project.
func projectTarget(
	ctx context.Context,
	members repository.ContributorRepository,
	actor *model.User,
	res policy.Resource,
	project *model.Project,
	owners ...string,
) (policy.Target, error) {
	t := policy.Target{
		Resource: res,
		OwnerIDs: append([]string{project.AuthorID}, owners...),
	}
	if actor == nil || actor.ID == "" || actor.IsAdmin() {
		return t, nil
	}
	member, err := members.IsContributor(ctx, project.ID, actor.ID)
	if err != nil {
		return policy.Target{}, fmt.Errorf("service: resolving membership in %s: %w", project.ID, err)
	}
	t.Member = member
	return t, nil
}
