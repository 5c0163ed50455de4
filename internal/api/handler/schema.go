package handler

import "github.com/nomadhire/marketplace/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Account ---

type signupRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type makeAdminRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type userMessageResponse struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

type userResponse struct {
	User *domain.User `json:"user"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// --- Projects ---

type submitProjectRequest struct {
	ProjectName   string `json:"projectName"   validate:"required,max=200"`
	Description   string `json:"description"   validate:"required,max=5000"`
	DeveloperType string `json:"developerType" validate:"required,max=100"`
}

type approveProjectRequest struct {
	DeveloperID string `json:"developerId" validate:"required"`
}

type rejectProjectRequest struct {
	Reason string `json:"reason" validate:"max=1000"`
}

type projectMessageResponse struct {
	Message string          `json:"message"`
	Project *domain.Project `json:"project"`
}

type projectsResponse struct {
	Projects []*domain.Project `json:"projects"`
}

type adminProjectsResponse struct {
	Projects []*domain.ProjectWithOwner `json:"projects"`
}

// --- Developers ---

type developersResponse struct {
	Developers []*domain.Developer `json:"developers"`
}
