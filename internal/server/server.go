// Package server wires configuration, storage, identity, services and the
// HTTP router into a runnable API process.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/nomadhire/marketplace/internal/api"
	"github.com/nomadhire/marketplace/internal/api/handler"
	"github.com/nomadhire/marketplace/internal/api/metrics"
	"github.com/nomadhire/marketplace/internal/core/ports"
	"github.com/nomadhire/marketplace/internal/core/service"
	"github.com/nomadhire/marketplace/internal/infrastructure/config"
	"github.com/nomadhire/marketplace/internal/infrastructure/identity"
	"github.com/nomadhire/marketplace/internal/infrastructure/repository"
	"github.com/nomadhire/marketplace/internal/infrastructure/scheduler"
	"github.com/nomadhire/marketplace/pkg/logger"
)

type Server struct {
	cfg        *config.Config
	log        zerolog.Logger
	echo       *echo.Echo
	jobs       *scheduler.Scheduler
	closeStore CloseFunc
}

// New connects the store, seeds the developer roster and builds the router.
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	log := logger.Get()

	store, closeStore, err := OpenStore(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	provider, passwords := NewIdentity(cfg, store, log)

	users := repository.NewUserRepository(store)
	developers := repository.NewDeveloperRepository(store)
	projects := repository.NewProjectRepository(store)

	userService := service.NewUserService(users, provider, logger.Component("users"))
	projectService := service.NewProjectService(projects, developers, users, logger.Component("projects"))
	developerService := service.NewDeveloperService(developers)
	reconciler := service.NewApprovalReconciler(projects, developers, logger.Component("reconciler"))

	// A failed seed leaves the roster empty; the API still serves everything else.
	if n, err := service.NewDirectorySeeder(developers, logger.Component("seeder")).Seed(ctx); err != nil {
		log.Error().Err(err).Int("seeded", n).Msg("developer roster seeding failed")
	}

	jobs := scheduler.New(logger.Component("scheduler"))
	if err := jobs.ScheduleReconcile(cfg.Jobs.ReconcileSchedule, reconciler, metrics.ObserveReconcile); err != nil {
		_ = closeStore(ctx)
		return nil, err
	}

	e := api.NewRouter(api.Deps{
		Logger:         log,
		Users:          userService,
		Projects:       projectService,
		Developers:     developerService,
		Reconciler:     reconciler,
		Verifier:       provider,
		Passwords:      passwords,
		Readiness:      map[string]handler.Pinger{cfg.StoreBackend: store},
		BootstrapToken: cfg.Admin.BootstrapToken,
		CORSOrigins:    cfg.CORSOrigins,
	})

	if cfg.Admin.BootstrapToken != "" {
		log.Warn().Msg("POST /admin/make-admin is enabled; unset ADMIN_BOOTSTRAP_TOKEN once an admin exists")
	}

	return &Server{cfg: cfg, log: log, echo: e, jobs: jobs, closeStore: closeStore}, nil
}

// NewIdentity returns the configured identity provider. The second value is
// non-nil only for providers that accept passwords through this API.
func NewIdentity(cfg *config.Config, store ports.KVStore, log zerolog.Logger) (ports.IdentityProvider, ports.PasswordAuthenticator) {
	if cfg.Identity.Provider == config.IdentitySupabase {
		return identity.NewSupabase(identity.SupabaseConfig{
			URL:            cfg.Identity.SupabaseURL,
			AnonKey:        cfg.Identity.SupabaseAnonKey,
			ServiceRoleKey: cfg.Identity.SupabaseServiceRoleKey,
			JWTSecret:      cfg.Identity.SupabaseJWTSecret,
		}, log.With().Str("component", "supabase").Logger()), nil
	}

	local := identity.NewLocal(store, cfg.Identity.JWTSecret, cfg.Identity.TokenTTL)
	return local, local
}

// Start runs the scheduler and blocks serving HTTP until Shutdown.
func (s *Server) Start() error {
	s.jobs.Start()

	s.log.Info().
		Str("port", s.cfg.Port).
		Str("store", s.cfg.StoreBackend).
		Str("identity", s.cfg.Identity.Provider).
		Msg("marketplace api listening")

	if err := s.echo.Start(":" + s.cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains HTTP, waits for running jobs, then closes the store.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if err := s.echo.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if err := s.jobs.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("scheduler stop: %w", err))
	}
	if err := s.closeStore(ctx); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	return errors.Join(errs...)
}
