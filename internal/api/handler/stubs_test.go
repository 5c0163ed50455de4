package handler

import (
	"context"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/nomadhire/marketplace/internal/api/middleware"
	"github.com/nomadhire/marketplace/internal/core/domain"
	"github.com/nomadhire/marketplace/internal/core/ports"
)

type stubUserService struct {
	signupFn  func(ctx context.Context, in ports.SignupInput) (*domain.User, error)
	meFn      func(ctx context.Context, userID string) (*domain.User, error)
	promoteFn func(ctx context.Context, email string) (*domain.User, error)
}

func (s *stubUserService) Signup(ctx context.Context, in ports.SignupInput) (*domain.User, error) {
	return s.signupFn(ctx, in)
}

func (s *stubUserService) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.meFn(ctx, userID)
}

func (s *stubUserService) PromoteToAdmin(ctx context.Context, email string) (*domain.User, error) {
	return s.promoteFn(ctx, email)
}

func (s *stubUserService) RequireAdmin(context.Context, string) error { return nil }

type stubPasswords struct {
	loginFn func(ctx context.Context, email, password string) (string, *ports.Identity, error)
}

func (s *stubPasswords) Login(ctx context.Context, email, password string) (string, *ports.Identity, error) {
	return s.loginFn(ctx, email, password)
}

type stubProjectService struct {
	submitFn  func(ctx context.Context, in ports.SubmitProjectInput) (*ports.SubmitProjectResult, error)
	listOwnFn func(ctx context.Context, userID string) ([]*domain.Project, error)
	listAllFn func(ctx context.Context, f ports.ListProjectsFilter) ([]*domain.ProjectWithOwner, error)
	approveFn func(ctx context.Context, projectID, developerID string) (*domain.Project, error)
	rejectFn  func(ctx context.Context, projectID, reason string) (*domain.Project, error)
}

func (s *stubProjectService) Submit(ctx context.Context, in ports.SubmitProjectInput) (*ports.SubmitProjectResult, error) {
	return s.submitFn(ctx, in)
}

func (s *stubProjectService) ListOwn(ctx context.Context, userID string) ([]*domain.Project, error) {
	return s.listOwnFn(ctx, userID)
}

func (s *stubProjectService) ListAll(ctx context.Context, f ports.ListProjectsFilter) ([]*domain.ProjectWithOwner, error) {
	return s.listAllFn(ctx, f)
}

func (s *stubProjectService) Approve(ctx context.Context, projectID, developerID string) (*domain.Project, error) {
	return s.approveFn(ctx, projectID, developerID)
}

func (s *stubProjectService) Reject(ctx context.Context, projectID, reason string) (*domain.Project, error) {
	return s.rejectFn(ctx, projectID, reason)
}

type stubDeveloperService struct {
	listFn func(ctx context.Context, f ports.ListDevelopersFilter) ([]*domain.Developer, error)
}

func (s *stubDeveloperService) ListDevelopers(ctx context.Context, f ports.ListDevelopersFilter) ([]*domain.Developer, error) {
	return s.listFn(ctx, f)
}

type stubReconciler struct {
	report ports.ReconcileReport
	err    error
}

func (s *stubReconciler) Run(context.Context) (ports.ReconcileReport, error) {
	return s.report, s.err
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

// newContext builds an echo context with the validator registered. A non-empty
// userID simulates the Auth middleware.
func newContext(method, target, body, userID string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != "" {
		c.Set(middleware.ContextUserID, userID)
	}
	return c, rec
}
