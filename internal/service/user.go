package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/softdesk/internal/apperror"
	"github.com/sakif/softdesk/internal/auth"
	"github.com/sakif/softdesk/internal/model"
	"github.com/sakif/softdesk/internal/policy"
	"github.com/sakif/softdesk/internal/repository"
)

// RegisterInput is the public sign-up payload. Age is required here; only
// superusers, created from the command line, may go without one.
type RegisterInput struct {
	Username        string `json:"username" validate:"required,max=150,username"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	Age             *int   `json:"age" validate:"required,gte=15,lte=120"`
	CanBeContacted  bool   `json:"can_be_contacted"`
	CanDataBeShared bool   `json:"can_data_be_shared"`
}

type superuserInput struct {
	Username string `json:"username" validate:"required,max=150,username"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// UpdateUserInput is a partial update; nil fields are left alone. IsStaff and
// IsActive are reserved to administrators.
type UpdateUserInput struct {
	Username        *string `json:"username" validate:"omitempty,min=1,max=150,username"`
	Password        *string `json:"password" validate:"omitempty,min=8,max=72"`
	Age             *int    `json:"age" validate:"omitempty,gte=15,lte=120"`
	CanBeContacted  *bool   `json:"can_be_contacted"`
	CanDataBeShared *bool   `json:"can_data_be_shared"`
	IsStaff         *bool   `json:"is_staff"`
	IsActive        *bool   `json:"is_active"`
}

// UserService manages accounts: sign-up, profile reads and edits, deletion.
type UserService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	policy    policy.Policy
	logger    *slog.Logger
}

// NewUserService returns a UserService backed by users.
func NewUserService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	pol policy.Policy,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		users:     users,
		passwords: passwords,
		policy:    pol,
		logger:    logger,
	}
}

// Register creates an ordinary account. A taken username is a Conflict,
// which the HTTP layer reports as 400 on the username field.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if err := checkPasswordBytes(in.Password); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("service/user: %w", err)
	}

	user := &model.User{
		Username:        in.Username,
		PasswordHash:    hash,
		Age:             in.Age,
		CanBeContacted:  in.CanBeContacted,
		CanDataBeShared: in.CanDataBeShared,
		IsActive:        true,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)
	return user, nil
}

// CreateSuperuser creates an active staff superuser without an age.
func (s *UserService) CreateSuperuser(ctx context.Context, username, password string) (*model.User, error) {
	in := superuserInput{Username: strings.TrimSpace(username), Password: password}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if err := checkPasswordBytes(in.Password); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("service/user: %w", err)
	}

	user := &model.User{
		Username:     in.Username,
		PasswordHash: hash,
		IsStaff:      true,
		IsSuperuser:  true,
		IsActive:     true,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("superuser created",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)
	return user, nil
}

// Get returns one account. Personal data is hidden as described on
// redactFor.
func (s *UserService) Get(ctx context.Context, actor *model.User, id string) (*model.User, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(actor, policy.Read, userTarget(user)); err != nil {
		return nil, err
	}
	redactFor(actor, user)
	return user, nil
}

// List pages through accounts ordered by username.
func (s *UserService) List(ctx context.Context, actor *model.User, opts repository.ListOptions) ([]model.User, error) {
	if err := s.policy.Authorize(actor, policy.Read, policy.Target{Resource: policy.ResourceUser}); err != nil {
		return nil, err
	}
	users, err := s.users.ListUsers(ctx, opts)
	if err != nil {
		return nil, err
	}
	for i := range users {
		redactFor(actor, &users[i])
	}
	return users, nil
}

// redactFor hides age and GitHub id from other users when the account has
// not agreed to share its data. The account itself and administrators see
// everything.
func redactFor(actor *model.User, u *model.User) {
	if u.CanDataBeShared || actor.IsAdmin() || (actor != nil && actor.ID == u.ID) {
		return
	}
	u.Age = nil
	u.GitHubID = nil
}

// Update applies a partial update to the account id. Users edit themselves;
// administrators edit anyone and alone may touch is_staff and is_active.
func (s *UserService) Update(ctx context.Context, actor *model.User, id string, in UpdateUserInput) (*model.User, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(actor, policy.Update, userTarget(user)); err != nil {
		return nil, err
	}
	if (in.IsStaff != nil || in.IsActive != nil) && !actor.IsAdmin() {
		return nil, apperror.Forbidden("Forbidden action: only administrators may change staff or active flags.")
	}

	if in.Username != nil {
		trimmed := strings.TrimSpace(*in.Username)
		in.Username = &trimmed
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	if in.Username != nil {
		user.Username = *in.Username
	}
	if in.Password != nil {
		if err := checkPasswordBytes(*in.Password); err != nil {
			return nil, err
		}
		hash, err := s.passwords.Hash(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("service/user: %w", err)
		}
		user.PasswordHash = hash
	}
	if in.Age != nil {
		user.Age = in.Age
	}
	if in.CanBeContacted != nil {
		user.CanBeContacted = *in.CanBeContacted
	}
	if in.CanDataBeShared != nil {
		user.CanDataBeShared = *in.CanDataBeShared
	}
	if in.IsStaff != nil {
		user.IsStaff = *in.IsStaff
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes the account. Projects, issues and comments it authored go
// with it; issues assigned to it become unassigned.
func (s *UserService) Delete(ctx context.Context, actor *model.User, id string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.policy.Authorize(actor, policy.Delete, userTarget(user)); err != nil {
		return err
	}
	if err := s.users.DeleteUser(ctx, id); err != nil {
		return err
	}

	s.logger.Info("user deleted",
		slog.String("userID", id),
		slog.String("by", actor.ID),
	)
	return nil
}

func userTarget(u *model.User) policy.Target {
	return policy.Target{Resource: policy.ResourceUser, OwnerIDs: []string{u.ID}}
}

// checkPasswordBytes enforces the bcrypt limit, which counts bytes where the
// validator counts characters.
func checkPasswordBytes(password string) error {
	if len(password) > auth.MaxPasswordLength {
		return apperror.ValidationFailed("password",
			fmt.Sprintf("Ensure this field has no more than %d bytes.", auth.MaxPasswordLength))
	}
	return nil
}

// isNotFound reports whether err is an apperror NotFound.
func isNotFound(err error) bool {
	return errors.Is(err, apperror.ErrNotFound)
}
