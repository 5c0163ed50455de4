package ports

import (
	"context"

	"github.com/nomadhire/marketplace/internal/core/domain"
)

// SubmitProjectInput carries everything needed to create a project request.
type SubmitProjectInput struct {
	UserID        string
	ProjectName   string
	Description   string
	DeveloperType string
	// IdempotencyKey is optional; a repeated key returns the original project.
	IdempotencyKey string
}

// SubmitProjectResult is returned by Submit.
type SubmitProjectResult struct {
	Project *domain.Project
	// AlreadyExisted is true when the Idempotency-Key matched an earlier submission.
	AlreadyExisted bool
}

// ListProjectsFilter narrows the admin project listing.
type ListProjectsFilter struct {
	Status domain.ProjectStatus // empty = all
}

// ListDevelopersFilter narrows the roster listing.
type ListDevelopersFilter struct {
	Type      string // empty = any type
	Available *bool  // nil = any availability
}

// ProjectService defines the project lifecycle use cases.
type ProjectService interface {
	Submit(ctx context.Context, input SubmitProjectInput) (*SubmitProjectResult, error)
	ListOwn(ctx context.Context, userID string) ([]*domain.Project, error)
	ListAll(ctx context.Context, filter ListProjectsFilter) ([]*domain.ProjectWithOwner, error)
	Approve(ctx context.Context, projectID, developerID string) (*domain.Project, error)
	Reject(ctx context.Context, projectID, reason string) (*domain.Project, error)
}

// DeveloperService exposes the developer roster.
type DeveloperService interface {
	ListDevelopers(ctx context.Context, filter ListDevelopersFilter) ([]*domain.Developer, error)
}

// ReconcileReport summarises one reconciliation pass.
type ReconcileReport struct {
	Checked  int `json:"checked"`
	Repaired int `json:"repaired"`
	Missing  int `json:"missing"`
}

// Reconciler repairs approvals whose two writes did not both land.
type Reconciler interface {
	Run(ctx context.Context) (ReconcileReport, error)
}
