package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/nomadhire/marketplace/docs"
	"github.com/nomadhire/marketplace/internal/api/handler"
	"github.com/nomadhire/marketplace/internal/api/middleware"
	"github.com/nomadhire/marketplace/internal/core/ports"
)

// Deps is everything the router needs. Passwords is nil unless the identity
// provider issues its own tokens; BootstrapToken empty leaves make-admin
// unmounted.
type Deps struct {
	Logger     zerolog.Logger
	Users      ports.UserService
	Projects   ports.ProjectService
	Developers ports.DeveloperService
	Reconciler ports.Reconciler
	Verifier   ports.TokenVerifier
	Passwords  ports.PasswordAuthenticator
	Readiness  map[string]handler.Pinger

	BootstrapToken string
	CORSOrigins    []string
	// MetricsRegisterer defaults to prometheus.DefaultRegisterer.
	MetricsRegisterer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: corsOrigins(d.CORSOrigins),
		AllowHeaders: []string{
			echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization,
			handler.IdempotencyKeyHeader, middleware.BootstrapTokenHeader,
		},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: d.MetricsRegisterer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Users, d.Passwords)
	projectHandler := handler.NewProjectHandler(d.Projects)
	developerHandler := handler.NewDeveloperHandler(d.Developers)
	reconcileHandler := handler.NewReconcileHandler(d.Reconciler)
	healthHandler := handler.NewHealthHandler(d.Readiness)

	authenticated := middleware.Auth(d.Verifier)
	adminOnly := middleware.RequireAdmin(d.Users)

	// --- Account routes ---
	e.POST("/signup", authHandler.Signup)
	if d.Passwords != nil {
		e.POST("/login", authHandler.Login)
	}
	e.GET("/user", authHandler.Me, authenticated)

	// --- Project routes ---
	e.POST("/projects", projectHandler.Submit, authenticated)
	e.GET("/projects", projectHandler.ListOwn, authenticated)

	// --- Admin routes ---
	e.GET("/developers", developerHandler.List, authenticated, adminOnly)

	admin := e.Group("/admin")
	if d.BootstrapToken != "" {
		admin.POST("/make-admin", authHandler.MakeAdmin, middleware.BootstrapToken(d.BootstrapToken))
	}
	admin.GET("/projects", projectHandler.ListAll, authenticated, adminOnly)
	admin.POST("/projects/:id/approve", projectHandler.Approve, authenticated, adminOnly)
	admin.POST("/projects/:id/reject", projectHandler.Reject, authenticated, adminOnly)
	admin.POST("/reconcile", reconcileHandler.Run, authenticated, adminOnly)

	// --- Health probes (no auth required) ---
	e.GET("/health", healthHandler.Liveness)       // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – is the store reachable?

	// --- Observability ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func corsOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
