package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nomadhire/marketplace/internal/core/domain"
	"github.com/nomadhire/marketplace/internal/core/ports"
)

// DeveloperService reads the roster.
type DeveloperService struct {
	developers ports.DeveloperRepository
}

func NewDeveloperService(developers ports.DeveloperRepository) *DeveloperService {
	return &DeveloperService{developers: developers}
}

// ListDevelopers returns the roster sorted by name, optionally narrowed by
// type and availability.
func (s *DeveloperService) ListDevelopers(ctx context.Context, filter ports.ListDevelopersFilter) ([]*domain.Developer, error) {
	all, err := s.developers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list developers: %w", err)
	}

	out := make([]*domain.Developer, 0, len(all))
	for _, d := range all {
		if filter.Type != "" && !strings.EqualFold(d.Type, filter.Type) {
			continue
		}
		if filter.Available != nil && d.Available != *filter.Available {
			continue
		}
		out = append(out, d)
	}

	slices.SortFunc(out, func(a, b *domain.Developer) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

// DirectorySeeder populates the developer roster on first boot.
type DirectorySeeder struct {
	developers ports.DeveloperRepository
	roster     []domain.RosterEntry
	logger     zerolog.Logger
	newID      func() string
}

func NewDirectorySeeder(developers ports.DeveloperRepository, logger zerolog.Logger) *DirectorySeeder {
	return &DirectorySeeder{
		developers: developers,
		roster:     domain.DefaultRoster,
		logger:     logger,
		newID:      uuid.NewString,
	}
}

// Seed writes the roster only when no developer exists and returns how many
// records it wrote. The emptiness check and the writes are not atomic: two
// instances starting together may both seed, leaving duplicate names with
// distinct ids.
func (s *DirectorySeeder) Seed(ctx context.Context) (int, error) {
	existing, err := s.developers.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed developers: %w", err)
	}
	if len(existing) > 0 {
		s.logger.Debug().Int("developers", len(existing)).Msg("developer roster already present")
		return 0, nil
	}

	for i, entry := range s.roster {
		dev := &domain.Developer{
			ID:        s.newID(),
			Name:      entry.Name,
			Type:      entry.Type,
			Available: true,
		}
		if err := s.developers.Save(ctx, dev); err != nil {
			return i, fmt.Errorf("seed developer %s: %w", entry.Name, err)
		}
	}

	s.logger.Info().Int("developers", len(s.roster)).Msg("initialized developer roster")
	return len(s.roster), nil
}
