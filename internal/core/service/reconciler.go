package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/nomadhire/marketplace/internal/core/domain"
	"github.com/nomadhire/marketplace/internal/core/ports"
)

// ApprovalReconciler repairs approvals whose developer write was lost. It
// relies on approvals writing the project before the developer.
type ApprovalReconciler struct {
	projects   ports.ProjectRepository
	developers ports.DeveloperRepository
	logger     zerolog.Logger
}

func NewApprovalReconciler(projects ports.ProjectRepository, developers ports.DeveloperRepository, logger zerolog.Logger) *ApprovalReconciler {
	return &ApprovalReconciler{projects: projects, developers: developers, logger: logger}
}

// Run scans approved projects and marks their assigned developers unavailable.
// Developer records that no longer exist are counted but never recreated.
func (r *ApprovalReconciler) Run(ctx context.Context) (ports.ReconcileReport, error) {
	var report ports.ReconcileReport

	projects, err := r.projects.List(ctx)
	if err != nil {
		return report, fmt.Errorf("reconcile: list projects: %w", err)
	}

	for _, p := range projects {
		if p.Status != domain.StatusApproved || p.AssignedDeveloper == nil {
			continue
		}
		report.Checked++

		dev, err := r.developers.FindByID(ctx, p.AssignedDeveloper.ID)
		if errors.Is(err, domain.ErrDeveloperNotFound) {
			report.Missing++
			r.logger.Warn().Str("project_id", p.ID).Str("developer_id", p.AssignedDeveloper.ID).Msg("approved project references missing developer")
			continue
		}
		if err != nil {
			return report, fmt.Errorf("reconcile: load developer: %w", err)
		}
		if !dev.Available {
			continue
		}

		dev.Available = false
		if err := r.developers.Save(ctx, dev); err != nil {
			return report, fmt.Errorf("reconcile: save developer: %w", err)
		}
		report.Repaired++
		r.logger.Warn().Str("project_id", p.ID).Str("developer_id", dev.ID).Msg("repaired developer availability")
	}

	return report, nil
}
