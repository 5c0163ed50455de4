package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/nomadhire/marketplace/internal/api/metrics"
	"github.com/nomadhire/marketplace/internal/core/domain"
	"github.com/nomadhire/marketplace/internal/core/ports"
)

// IdempotencyKeyHeader lets clients retry a submission safely.
const IdempotencyKeyHeader = "Idempotency-Key"

// ProjectHandler handles HTTP requests for project requests.
type ProjectHandler struct {
	service ports.ProjectService
}

func NewProjectHandler(service ports.ProjectService) *ProjectHandler {
	return &ProjectHandler{service: service}
}

// Submit handles POST /projects.
//
// A repeated Idempotency-Key answers 200 with the project created the first time.
//
// @Summary      Submit a project request
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string                false  "Idempotency key to prevent duplicate submissions"
// @Param        body             body      submitProjectRequest  true   "Project details"
// @Success      201              {object}  projectMessageResponse
// @Success      200              {object}  projectMessageResponse
// @Failure      400              {object}  errorResponse
// @Failure      401              {object}  errorResponse
// @Failure      500              {object}  errorResponse
// @Router       /projects [post]
func (h *ProjectHandler) Submit(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req submitProjectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.service.Submit(c.Request().Context(), ports.SubmitProjectInput{
		UserID:         userID,
		ProjectName:    req.ProjectName,
		Description:    req.Description,
		DeveloperType:  req.DeveloperType,
		IdempotencyKey: strings.TrimSpace(c.Request().Header.Get(IdempotencyKeyHeader)),
	})
	if err != nil {
		return err
	}

	if result.AlreadyExisted {
		metrics.ProjectsReplayedTotal.Inc()
		return c.JSON(http.StatusOK, projectMessageResponse{Message: "Project already submitted", Project: result.Project})
	}

	metrics.ProjectsSubmittedTotal.WithLabelValues(result.Project.DeveloperType).Inc()
	return c.JSON(http.StatusCreated, projectMessageResponse{Message: "Project submitted successfully", Project: result.Project})
}

// ListOwn handles GET /projects.
//
// @Summary      List my projects
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  projectsResponse
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /projects [get]
func (h *ProjectHandler) ListOwn(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	projects, err := h.service.ListOwn(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, projectsResponse{Projects: projects})
}

// ListAll handles GET /admin/projects.
//
// @Summary      List all projects
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Filter by status"  Enums(pending, approved, rejected)
// @Success      200     {object}  adminProjectsResponse
// @Failure      400     {object}  errorResponse
// @Failure      401     {object}  errorResponse
// @Failure      403     {object}  errorResponse
// @Router       /admin/projects [get]
func (h *ProjectHandler) ListAll(c echo.Context) error {
	filter := ports.ListProjectsFilter{
		Status: domain.ProjectStatus(strings.ToLower(strings.TrimSpace(c.QueryParam("status")))),
	}

	projects, err := h.service.ListAll(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, adminProjectsResponse{Projects: projects})
}

// Approve handles POST /admin/projects/:id/approve.
//
// @Summary      Approve a project and assign a developer
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Project ID"
// @Param        body  body      approveProjectRequest  true  "Developer to assign"
// @Success      200   {object}  projectMessageResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /admin/projects/{id}/approve [post]
func (h *ProjectHandler) Approve(c echo.Context) error {
	var req approveProjectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	project, err := h.service.Approve(c.Request().Context(), c.Param("id"), req.DeveloperID)
	if err != nil {
		metrics.ProjectTransitionErrorsTotal.WithLabelValues(transitionErrorReason(err)).Inc()
		return err
	}

	metrics.ProjectTransitionsTotal.WithLabelValues(string(domain.StatusApproved)).Inc()
	return c.JSON(http.StatusOK, projectMessageResponse{Message: "Project approved and developer assigned", Project: project})
}

// Reject handles POST /admin/projects/:id/reject.
//
// @Summary      Reject a project
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true   "Project ID"
// @Param        body  body      rejectProjectRequest  false  "Rejection reason"
// @Success      200   {object}  projectMessageResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /admin/projects/{id}/reject [post]
func (h *ProjectHandler) Reject(c echo.Context) error {
	var req rejectProjectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	project, err := h.service.Reject(c.Request().Context(), c.Param("id"), req.Reason)
	if err != nil {
		metrics.ProjectTransitionErrorsTotal.WithLabelValues(transitionErrorReason(err)).Inc()
		return err
	}

	metrics.ProjectTransitionsTotal.WithLabelValues(string(domain.StatusRejected)).Inc()
	return c.JSON(http.StatusOK, projectMessageResponse{Message: "Project rejected", Project: project})
}

func transitionErrorReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, domain.ErrDeveloperUnavailable):
		return "developer_unavailable"
	case errors.Is(err, domain.ErrDeveloperTypeMismatch):
		return "type_mismatch"
	case errors.Is(err, domain.ErrProjectNotFound), errors.Is(err, domain.ErrDeveloperNotFound):
		return "not_found"
	default:
		return "error"
	}
}
