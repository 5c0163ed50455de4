package domain

import (
	"fmt"
	"strings"
	"time"
)

// ProjectStatus represents the lifecycle state of a project request.
type ProjectStatus string

const (
	StatusPending  ProjectStatus = "pending"
	StatusApproved ProjectStatus = "approved"
	StatusRejected ProjectStatus = "rejected"
)

// CommissionPercent is the platform fee recorded on every approval.
const CommissionPercent = 20

// DefaultRejectionReason is stored when an admin rejects without a reason.
const DefaultRejectionReason = "No reason provided"

// validTransitions defines the allowed state machine transitions.
// Approved and rejected are terminal.
var validTransitions = map[ProjectStatus][]ProjectStatus{
	StatusPending: {StatusApproved, StatusRejected},
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s ProjectStatus) CanTransitionTo(next ProjectStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known status.
func (s ProjectStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// StatusHistoryEntry records a single status change on a project.
type StatusHistoryEntry struct {
	Status    ProjectStatus `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Notes     string        `json:"notes,omitempty"`
}

// Project is a user's request for development work.
//
// AssignedDeveloper is set iff Status is approved; RejectionReason is set iff
// Status is rejected. Both are only written through Approve and Reject.
type Project struct {
	ID                string               `json:"id"`
	UserID            string               `json:"userId"`
	ProjectName       string               `json:"projectName"`
	Description       string               `json:"description"`
	DeveloperType     string               `json:"developerType"`
	Status            ProjectStatus        `json:"status"`
	AssignedDeveloper *Developer           `json:"assignedDeveloper"`
	RejectionReason   *string              `json:"rejectionReason,omitempty"`
	NomadCommission   *int                 `json:"nomadCommission,omitempty"`
	CreatedAt         time.Time            `json:"createdAt"`
	UpdatedAt         time.Time            `json:"updatedAt"`
	StatusHistory     []StatusHistoryEntry `json:"statusHistory,omitempty"`
}

// NewProject builds a pending project after checking that every
// user-supplied field is present.
func NewProject(id, userID, projectName, description, developerType string, now time.Time) (*Project, error) {
	projectName = strings.TrimSpace(projectName)
	description = strings.TrimSpace(description)
	developerType = strings.TrimSpace(developerType)

	var missing []string
	if projectName == "" {
		missing = append(missing, "projectName")
	}
	if description == "" {
		missing = append(missing, "description")
	}
	if developerType == "" {
		missing = append(missing, "developerType")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s required", ErrValidation, strings.Join(missing, ", "))
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: userId required", ErrValidation)
	}

	now = now.UTC()
	return &Project{
		ID:            id,
		UserID:        userID,
		ProjectName:   projectName,
		Description:   description,
		DeveloperType: developerType,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
		StatusHistory: []StatusHistoryEntry{{Status: StatusPending, Timestamp: now}},
	}, nil
}

// Approve moves a pending project to approved and attaches a snapshot of dev.
// The caller persists dev with Available=false alongside the project.
func (p *Project) Approve(dev Developer, now time.Time) error {
	if !p.Status.CanTransitionTo(StatusApproved) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, p.Status, StatusApproved)
	}
	if !dev.Available {
		return fmt.Errorf("%w: %s", ErrDeveloperUnavailable, dev.Name)
	}
	if !strings.EqualFold(dev.Type, p.DeveloperType) {
		return fmt.Errorf("%w: %q requested, %q offered", ErrDeveloperTypeMismatch, p.DeveloperType, dev.Type)
	}

	dev.Available = false
	commission := CommissionPercent
	now = now.UTC()

	p.Status = StatusApproved
	p.AssignedDeveloper = &dev
	p.RejectionReason = nil
	p.NomadCommission = &commission
	p.UpdatedAt = now
	p.StatusHistory = append(p.StatusHistory, StatusHistoryEntry{
		Status:    StatusApproved,
		Timestamp: now,
		Notes:     "assigned " + dev.Name,
	})
	return nil
}

// Reject moves a pending project to rejected. An empty reason is replaced by
// DefaultRejectionReason.
func (p *Project) Reject(reason string, now time.Time) error {
	if !p.Status.CanTransitionTo(StatusRejected) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, p.Status, StatusRejected)
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = DefaultRejectionReason
	}
	now = now.UTC()

	p.Status = StatusRejected
	p.AssignedDeveloper = nil
	p.RejectionReason = &reason
	p.UpdatedAt = now
	p.StatusHistory = append(p.StatusHistory, StatusHistoryEntry{
		Status:    StatusRejected,
		Timestamp: now,
		Notes:     reason,
	})
	return nil
}

// ProjectWithOwner is the admin view of a project joined with its owner's username.
type ProjectWithOwner struct {
	Project
	Username string `json:"username"`
}

// UnknownUsername is shown when a project's owner record is missing.
const UnknownUsername = "Unknown"
