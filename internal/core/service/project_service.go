package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nomadhire/marketplace/internal/core/domain"
	"github.com/nomadhire/marketplace/internal/core/ports"
)

// ProjectService implements the project request lifecycle.
type ProjectService struct {
	projects   ports.ProjectRepository
	developers ports.DeveloperRepository
	users      ports.UserRepository
	logger     zerolog.Logger
	now        func() time.Time
	newID      func() string
}

func NewProjectService(
	projects ports.ProjectRepository,
	developers ports.DeveloperRepository,
	users ports.UserRepository,
	logger zerolog.Logger,
) *ProjectService {
	return &ProjectService{
		projects:   projects,
		developers: developers,
		users:      users,
		logger:     logger,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// Submit creates a pending project. If an idempotency key is provided and
// already seen for this user, the earlier project is returned without side effects.
func (s *ProjectService) Submit(ctx context.Context, input ports.SubmitProjectInput) (*ports.SubmitProjectResult, error) {
	if input.IdempotencyKey != "" {
		existing, err := s.projects.FindByIdempotencyKey(ctx, input.UserID, input.IdempotencyKey)
		switch {
		case err == nil:
			s.logger.Info().Str("idempotency_key", input.IdempotencyKey).Str("project_id", existing.ID).Msg("idempotent replay")
			return &ports.SubmitProjectResult{Project: existing, AlreadyExisted: true}, nil
		case !errors.Is(err, domain.ErrProjectNotFound):
			return nil, fmt.Errorf("submit project: idempotency lookup: %w", err)
		}
	}

	project, err := domain.NewProject(s.newID(), input.UserID, input.ProjectName, input.Description, input.DeveloperType, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.projects.Create(ctx, project); err != nil {
		s.logger.Error().Err(err).Str("user_id", input.UserID).Msg("failed to create project")
		return nil, err
	}

	if input.IdempotencyKey != "" {
		if err := s.projects.RememberIdempotencyKey(ctx, input.UserID, input.IdempotencyKey, project.ID); err != nil {
			s.logger.Warn().Err(err).Str("project_id", project.ID).Msg("failed to store idempotency key")
		}
	}

	s.logger.Info().
		Str("project_id", project.ID).
		Str("user_id", project.UserID).
		Str("developer_type", project.DeveloperType).
		Msg("project submitted")

	return &ports.SubmitProjectResult{Project: project}, nil
}

// ListOwn returns the user's projects, newest first. Index entries whose
// record is missing are skipped.
func (s *ProjectService) ListOwn(ctx context.Context, userID string) ([]*domain.Project, error) {
	ids, err := s.projects.ListIDsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list own projects: %w", err)
	}

	projects := make([]*domain.Project, 0, len(ids))
	for _, id := range ids {
		p, err := s.projects.FindByID(ctx, id)
		if errors.Is(err, domain.ErrProjectNotFound) {
			s.logger.Warn().Str("project_id", id).Str("user_id", userID).Msg("dangling project index entry")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("list own projects: %w", err)
		}
		projects = append(projects, p)
	}

	slices.SortStableFunc(projects, func(a, b *domain.Project) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return projects, nil
}

// ListAll returns every project joined with its owner's username, newest first.
func (s *ProjectService) ListAll(ctx context.Context, filter ports.ListProjectsFilter) ([]*domain.ProjectWithOwner, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, filter.Status)
	}

	all, err := s.projects.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	usernames := make(map[string]string)
	out := make([]*domain.ProjectWithOwner, 0, len(all))
	for _, p := range all {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}

		name, ok := usernames[p.UserID]
		if !ok {
			name, err = s.username(ctx, p.UserID)
			if err != nil {
				return nil, fmt.Errorf("list projects: %w", err)
			}
			usernames[p.UserID] = name
		}
		out = append(out, &domain.ProjectWithOwner{Project: *p, Username: name})
	}

	slices.SortStableFunc(out, func(a, b *domain.ProjectWithOwner) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (s *ProjectService) username(ctx context.Context, userID string) (string, error) {
	u, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.UnknownUsername, nil
	}
	if err != nil {
		return "", err
	}
	return u.Username, nil
}

// Approve assigns a developer to a pending project and records the commission.
// The project and the developer are written in one SetMany call.
func (s *ProjectService) Approve(ctx context.Context, projectID, developerID string) (*domain.Project, error) {
	developerID = strings.TrimSpace(developerID)
	if developerID == "" {
		return nil, fmt.Errorf("%w: developerId required", domain.ErrValidation)
	}

	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	dev, err := s.developers.FindByID(ctx, developerID)
	if err != nil {
		return nil, err
	}

	if err := project.Approve(*dev, s.now()); err != nil {
		return nil, err
	}
	dev.Available = false

	if err := s.projects.SaveApproval(ctx, project, dev); err != nil {
		s.logger.Error().Err(err).Str("project_id", projectID).Str("developer_id", developerID).Msg("failed to save approval")
		return nil, err
	}

	s.logger.Info().
		Str("project_id", projectID).
		Str("developer_id", developerID).
		Int("commission", domain.CommissionPercent).
		Msg("project approved")

	return project, nil
}

// Reject closes a pending project with the given reason.
func (s *ProjectService) Reject(ctx context.Context, projectID, reason string) (*domain.Project, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if err := project.Reject(reason, s.now()); err != nil {
		return nil, err
	}

	if err := s.projects.Save(ctx, project); err != nil {
		s.logger.Error().Err(err).Str("project_id", projectID).Msg("failed to save rejection")
		return nil, err
	}

	s.logger.Info().Str("project_id", projectID).Msg("project rejected")
	return project, nil
}
