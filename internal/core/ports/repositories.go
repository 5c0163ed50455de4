package ports

import (
	"context"

	"github.com/nomadhire/marketplace/internal/core/domain"
)

// UserRepository persists marketplace user records.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Save(ctx context.Context, user *domain.User) error
}

// DeveloperRepository persists the developer roster.
type DeveloperRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Developer, error)
	List(ctx context.Context) ([]*domain.Developer, error)
	Save(ctx context.Context, dev *domain.Developer) error
}

// ProjectRepository persists projects and the per-user project index.
type ProjectRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context) ([]*domain.Project, error)
	// ListIDsByUser returns the user's project ids in submission order, or an
	// empty slice when the user has none.
	ListIDsByUser(ctx context.Context, userID string) ([]string, error)
	// Create writes the project record, then appends its id to the owner's index.
	Create(ctx context.Context, p *domain.Project) error
	Save(ctx context.Context, p *domain.Project) error
	// SaveApproval writes the approved project and the now-unavailable
	// developer together.
	SaveApproval(ctx context.Context, p *domain.Project, dev *domain.Developer) error
	// FindByIdempotencyKey returns domain.ErrProjectNotFound when key is unused.
	FindByIdempotencyKey(ctx context.Context, userID, key string) (*domain.Project, error)
	RememberIdempotencyKey(ctx context.Context, userID, key, projectID string) error
}
