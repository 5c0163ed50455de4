package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nomadhire/marketplace/internal/core/domain"
	"github.com/nomadhire/marketplace/internal/core/ports"
)

// UserService handles signup, profile lookup, role promotion and the admin guard.
type UserService struct {
	users    ports.UserRepository
	identity ports.IdentityProvider
	logger   zerolog.Logger
	now      func() time.Time
}

func NewUserService(users ports.UserRepository, identity ports.IdentityProvider, logger zerolog.Logger) *UserService {
	return &UserService{users: users, identity: identity, logger: logger, now: time.Now}
}

// Signup creates credentials with the identity provider, then stores the
// local user record with the default role.
func (s *UserService) Signup(ctx context.Context, input ports.SignupInput) (*domain.User, error) {
	email := strings.TrimSpace(input.Email)
	username := strings.TrimSpace(input.Username)
	if email == "" || username == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: email, username, and password are required", domain.ErrValidation)
	}

	id, err := s.identity.CreateUser(ctx, email, input.Password, username)
	if errors.Is(err, domain.ErrUserExists) {
		id, err = s.reclaimCredential(ctx, email, input.Password)
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("email", email).Msg("identity provider refused signup")
		return nil, err
	}

	user := &domain.User{
		ID:        id.UserID,
		Email:     email,
		Username:  username,
		Role:      domain.RoleUser,
		CreatedAt: s.now().UTC(),
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user signed up")
	return user, nil
}

// reclaimCredential covers a credential whose user record was never saved,
// e.g. the store failed between the two writes of an earlier signup. The
// record is recreated only when the provider can check the password, the
// password matches, and no user record exists for email.
func (s *UserService) reclaimCredential(ctx context.Context, email, password string) (*ports.Identity, error) {
	auth, ok := s.identity.(ports.PasswordAuthenticator)
	if !ok {
		return nil, domain.ErrUserExists
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("find user: %w", err)
	}

	_, id, err := auth.Login(ctx, email, password)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		return nil, domain.ErrUserExists
	}
	if err != nil {
		return nil, err
	}

	s.logger.Warn().Str("user_id", id.UserID).Msg("recreating user record for existing credential")
	return id, nil
}

func (s *UserService) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

// PromoteToAdmin grants the admin role to the user registered under email.
// Promoting an existing admin is a no-op.
func (s *UserService) PromoteToAdmin(ctx context.Context, email string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrValidation)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user.IsAdmin() {
		return user, nil
	}

	user.Role = domain.RoleAdmin
	if err := s.users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("promote user: %w", err)
	}

	s.logger.Warn().Str("user_id", user.ID).Str("email", user.Email).Msg("user promoted to admin")
	return user, nil
}

// RequireAdmin checks the stored role, not anything carried in the token.
func (s *UserService) RequireAdmin(ctx context.Context, userID string) error {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.ErrForbidden
	}
	if err != nil {
		return fmt.Errorf("admin check: %w", err)
	}
	if !user.IsAdmin() {
		return domain.ErrForbidden
	}
	return nil
}
