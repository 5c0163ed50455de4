package ports

import (
	"context"

	"github.com/nomadhire/marketplace/internal/core/domain"
)

// SignupInput carries the fields of a new account.
type SignupInput struct {
	Email    string
	Username string
	Password string
}

// UserService covers account lifecycle and the admin guard.
type UserService interface {
	Signup(ctx context.Context, input SignupInput) (*domain.User, error)
	Me(ctx context.Context, userID string) (*domain.User, error)
	PromoteToAdmin(ctx context.Context, email string) (*domain.User, error)
	// RequireAdmin returns domain.ErrForbidden unless userID belongs to an admin.
	RequireAdmin(ctx context.Context, userID string) error
}
