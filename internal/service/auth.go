package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/sakif/softdesk/internal/apperror"
	"github.com/sakif/softdesk/internal/auth"
	"github.com/sakif/softdesk/internal/model"
	"github.com/sakif/softdesk/internal/repository"
)

const (
	msgBadCredentials = "No active account found with the given credentials."
	msgGitHubUnlinked = "No account is linked to this GitHub profile. Sign in with your password and link GitHub first."
)

// AuthService turns credentials into access tokens.
//
//	AuthHandler (HTTP) → AuthService → UserRepository (DB)
//	                                 ↘ TokenService (JWT), PasswordService (bcrypt)
//
// GitHub sign-in only ever resolves to an existing account: a GitHub profile
// cannot supply the age and consent answers an account needs.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService wires the login flows to their stores.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the user with a freshly issued token so the handler can
// set the cookie and respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// Login checks username and password. Unknown users, wrong passwords and
// inactive accounts all get the same Unauthenticated error.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	if username == "" || password == "" {
		return nil, apperror.Invalid(missingCredentials(username, password))
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if isNotFound(err) {
			// Unknown usernames pay for a bcrypt compare like known ones.
			_ = s.passwords.Verify(s.dummy(), password)
			return nil, apperror.Unauthenticated(msgBadCredentials)
		}
		return nil, fmt.Errorf("service/auth: looking up %q: %w", username, err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if !errors.Is(err, auth.ErrInvalidPassword) {
			s.logger.Warn("password verification failed",
				slog.String("userID", user.ID),
				slog.String("error", err.Error()),
			)
		}
		return nil, apperror.Unauthenticated(msgBadCredentials)
	}
	if !user.IsActive {
		return nil, apperror.Unauthenticated(msgBadCredentials)
	}

	return s.issue(user, "password")
}

// LoginWithGitHub signs in the account linked to the GitHub profile.
func (s *AuthService) LoginWithGitHub(ctx context.Context, gh *auth.GitHubUser) (*AuthResult, error) {
	if gh == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}

	user, err := s.users.GetUserByGitHubID(ctx, gh.ID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.Unauthenticated(msgGitHubUnlinked)
		}
		return nil, fmt.Errorf("service/auth: looking up GitHub id %d: %w", gh.ID, err)
	}
	if !user.IsActive {
		return nil, apperror.Unauthenticated(msgBadCredentials)
	}

	return s.issue(user, "github")
}

// LinkGitHub attaches the GitHub profile to the acting account. A profile
// already linked elsewhere is a Conflict.
func (s *AuthService) LinkGitHub(ctx context.Context, actor *model.User, gh *auth.GitHubUser) (*model.User, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if gh == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}

	user, err := s.users.GetUserByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	id := gh.ID
	user.GitHubID = &id
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("GitHub profile linked",
		slog.String("userID", user.ID),
		slog.String("login", gh.Login),
	)
	return user, nil
}

// dummy returns a hash of a random password at the service's bcrypt cost.
func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		hash, err := s.passwords.Hash(uuid.NewString())
		if err != nil {
			s.logger.Warn("dummy hash failed", slog.String("error", err.Error()))
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func (s *AuthService) issue(user *model.User, method string) (*AuthResult, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user authenticated",
		slog.String("userID", user.ID),
		slog.String("method", method),
	)
	return &AuthResult{User: user, Token: token}, nil
}

func missingCredentials(username, password string) map[string][]string {
	fields := map[string][]string{}
	if username == "" {
		fields["username"] = []string{"This field is required."}
	}
	if password == "" {
		fields["password"] = []string{"This field is required."}
	}
	return fields
}
