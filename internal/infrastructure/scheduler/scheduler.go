// Package scheduler runs background jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/nomadhire/marketplace/internal/core/ports"
)

const reconcileTimeout = 2 * time.Minute

// ReconcileObserver receives the outcome of every scheduled pass.
type ReconcileObserver func(repaired int, err error)

type Scheduler struct {
	cron   *cron.Cron
	logger zerolog.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// New returns a stopped scheduler. Overlapping runs of the same job are
// skipped and panics are recovered.
func New(logger zerolog.Logger) *Scheduler {
	cl := cronLogger{log: logger}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// ScheduleReconcile registers r under spec, e.g. "@every 5m" or "0 3 * * *".
func (s *Scheduler) ScheduleReconcile(spec string, r ports.Reconciler, observe ReconcileObserver) error {
	if _, err := s.cron.AddFunc(spec, s.reconcileJob(r, observe)); err != nil {
		return fmt.Errorf("schedule reconcile %q: %w", spec, err)
	}
	s.logger.Info().Str("schedule", spec).Msg("reconciler scheduled")
	return nil
}

func (s *Scheduler) reconcileJob(r ports.Reconciler, observe ReconcileObserver) func() {
	return func() {
		ctx, cancel := context.WithTimeout(s.ctx, reconcileTimeout)
		defer cancel()

		start := time.Now()
		report, err := r.Run(ctx)
		if observe != nil {
			observe(report.Repaired, err)
		}
		if err != nil {
			s.logger.Error().Err(err).Msg("scheduled reconcile failed")
			return
		}
		s.logger.Info().
			Int("checked", report.Checked).
			Int("repaired", report.Repaired).
			Int("missing", report.Missing).
			Dur("took", time.Since(start)).
			Msg("scheduled reconcile finished")
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels running jobs and waits for them until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
