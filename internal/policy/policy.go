// Package policy decides whether an actor may perform an action on an entity.
//
// The decision runs over a closed set of roles, resolved per target:
//
//	Administrator  active superuser, allowed everything
//	Owner          listed in Target.OwnerIDs, allowed everything on the target
//	Contributor    member of the enclosing project: may read, and may create
//	               issues and comments
//	Other          any other authenticated user: may read when the read scope
//	               is "authenticated", may create projects
//	Anonymous      no (active) user: denied
package policy

import (
	"fmt"
	"slices"

	"github.com/sakif/softdesk/internal/apperror"
	"github.com/sakif/softdesk/internal/model"
)

// Action is what an actor tries to do to a resource.
type Action int

const (
	Read Action = iota
	Create
	Update
	Delete
)

func (a Action) String() string {
	switch a {
	case Read:
		return "read"
	case Create:
		return "create"
	case Update:
		return "update"
	case Delete:
		return "delete"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// Resource names the kind of object being acted on.
type Resource int

const (
	ResourceUser Resource = iota
	ResourceProject
	ResourceContributor
	ResourceIssue
	ResourceComment
)

func (r Resource) String() string {
	switch r {
	case ResourceUser:
		return "user"
	case ResourceProject:
		return "project"
	case ResourceContributor:
		return "contributor"
	case ResourceIssue:
		return "issue"
	case ResourceComment:
		return "comment"
	}
	return fmt.Sprintf("resource(%d)", int(r))
}

// Role is the relationship between an actor and a target, ordered from
// least to most privileged.
type Role int

const (
	RoleAnonymous Role = iota
	RoleOther
	RoleContributor
	RoleOwner
	RoleAdministrator
)

func (r Role) String() string {
	switch r {
	case RoleAnonymous:
		return "anonymous"
	case RoleOther:
		return "other"
	case RoleContributor:
		return "contributor"
	case RoleOwner:
		return "owner"
	case RoleAdministrator:
		return "administrator"
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// ReadScope selects who may read projects and everything under them.
type ReadScope string

const (
	ReadAuthenticated ReadScope = "authenticated"
	ReadContributors  ReadScope = "contributors"
)

// Valid reports whether s is a known scope.
func (s ReadScope) Valid() bool {
	return s == ReadAuthenticated || s == ReadContributors
}

// Target describes the entity an action is aimed at. For Create it describes
// the entity about to exist: its container's owners and the actor's
// membership in the enclosing project.
type Target struct {
	Resource Resource
	// OwnerIDs may mutate the target. For an issue: its author and the
	// project author. For a contributor link: the project author. For a user
	// account: the account itself.
	OwnerIDs []string
	// Member is true when the actor contributes to the enclosing project.
	Member bool
}

// Policy answers authorization questions for every service.
type Policy struct {
	ReadScope ReadScope
}

// New returns a Policy that applies scope to project reads.
func New(scope ReadScope) Policy {
	if !scope.Valid() {
		scope = ReadAuthenticated
	}
	return Policy{ReadScope: scope}
}

// RoleOf resolves the strongest role the actor holds on the target.
func (p Policy) RoleOf(actor *model.User, t Target) Role {
	switch {
	case actor == nil || actor.ID == "" || !actor.IsActive:
		return RoleAnonymous
	case actor.IsAdmin():
		return RoleAdministrator
	case slices.Contains(t.OwnerIDs, actor.ID):
		return RoleOwner
	case t.Member:
		return RoleContributor
	}
	return RoleOther
}

// Allowed is the decision table.
func (p Policy) Allowed(role Role, action Action, t Target) bool {
	switch role {
	case RoleAdministrator, RoleOwner:
		return true
	case RoleContributor:
		switch action {
		case Read:
			return true
		case Create:
			return t.Resource == ResourceIssue || t.Resource == ResourceComment || t.Resource == ResourceProject
		}
		return false
	case RoleOther:
		switch action {
		case Read:
			return t.Resource == ResourceUser || p.ReadScope != ReadContributors
		case Create:
			return t.Resource == ResourceProject
		}
		return false
	}
	return false
}

// Authorize returns nil when the action is allowed. Anonymous actors get an
// Unauthenticated error, everybody else a Forbidden one.
func (p Policy) Authorize(actor *model.User, action Action, t Target) error {
	role := p.RoleOf(actor, t)
	if p.Allowed(role, action, t) {
		return nil
	}
	if role == RoleAnonymous {
		return apperror.Unauthenticated("")
	}
	return apperror.Forbidden(fmt.Sprintf("Forbidden action: you may not %s this %s.", action, t.Resource))
}
