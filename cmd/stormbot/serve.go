package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"stormbot/internal/config"
	"stormbot/internal/infra/worker"
	"stormbot/internal/observability/logging"
	"stormbot/internal/usecase/report"
)

// runServe runs the scheduler daemon: a cron-driven draft (and, when
// auto-publish is on, publish) loop with health and metrics servers around
// it. It blocks until a signal arrives or a server fails.
func runServe(logger *slog.Logger) error {
	runMetrics := worker.NewRunMetrics()
	workerCfg := worker.LoadFromEnv(logger, runMetrics)

	appCfg := config.Load()
	action := config.Action{Draft: true, Publish: workerCfg.AutoPublish}
	if err := appCfg.Validate(action); err != nil {
		return err
	}

	svc, err := buildService(logger, appCfg)
	if err != nil {
		return err
	}

	loc, err := workerCfg.Location()
	if err != nil {
		return fmt.Errorf("load timezone: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	health := worker.NewHealthServer(fmt.Sprintf(":%d", workerCfg.HealthPort), logger)
	startMetricsServer(ctx, logger, workerCfg.MetricsPort)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := health.Start(gctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("health server: %w", err)
		}
		return nil
	})

	// SkipIfStillRunning keeps a slow run from overlapping the next tick;
	// the digest pipeline is strictly one run at a time.
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(newCronLogger(logger))),
	)
	if _, err := c.AddFunc(workerCfg.Schedule, func() {
		runDigestJob(logger, svc, workerCfg, runMetrics, health)
	}); err != nil {
		return fmt.Errorf("schedule digest job: %w", err)
	}
	c.Start()

	health.SetDigestState(svc.State())
	health.SetReady(true)
	logger.Info("scheduler started",
		slog.String("schedule", workerCfg.Schedule),
		slog.String("timezone", workerCfg.Timezone),
		slog.Bool("auto_publish", workerCfg.AutoPublish))

	<-gctx.Done()
	health.SetReady(false)
	logger.Info("scheduler shutting down")

	// Let a digest job in flight finish; it is bounded by the run timeout.
	select {
	case <-c.Stop().Done():
	case <-time.After(workerCfg.RunTimeout):
		logger.Warn("digest job still running at shutdown deadline")
	}

	return g.Wait()
}

// runDigestJob executes one scheduled run: draft, optionally publish, with
// metrics and the health endpoint's digest state kept current.
func runDigestJob(logger *slog.Logger, svc *report.Service, cfg *worker.Config, metrics *worker.RunMetrics, health *worker.HealthServer) {
	start := time.Now()
	logger.Info("scheduled digest run started", slog.Bool("auto_publish", cfg.AutoPublish))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RunTimeout)
	defer cancel()

	stats, err := svc.Draft(ctx)
	if err != nil {
		metrics.RecordRun(worker.ModeDraft, worker.StatusFailure)
		metrics.RecordRunDuration(time.Since(start))
		logger.Error("scheduled draft failed", slog.String("error", logging.SanitizeError(err)))
		return
	}
	metrics.RecordRun(worker.ModeDraft, worker.StatusSuccess)
	health.SetDigestState(svc.State())
	logger.Info("scheduled draft composed",
		slog.Int("degraded", stats.Degraded),
		slog.Duration("duration", stats.Duration),
		slog.String("path", stats.Path))

	if cfg.AutoPublish {
		pub, err := svc.Publish(ctx)
		if err != nil {
			metrics.RecordRun(worker.ModePublish, worker.StatusFailure)
			metrics.RecordRunDuration(time.Since(start))
			logger.Error("scheduled publish failed", slog.String("error", logging.SanitizeError(err)))
			return
		}
		metrics.RecordRun(worker.ModePublish, worker.StatusSuccess)
		metrics.RecordSectionsPublished(pub.Sections)
		health.SetDigestState(svc.State())
		logger.Info("scheduled publish delivered",
			slog.Int("sections", pub.Sections),
			slog.String("archived", pub.ArchivePath))
	}

	metrics.RecordRunDuration(time.Since(start))
	metrics.RecordLastSuccess()
}

// cronLogger adapts slog to the cron.Logger interface.
type cronLogger struct {
	logger *slog.Logger
}

func newCronLogger(logger *slog.Logger) cron.Logger {
	return &cronLogger{logger: logger}
}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, keysAndValues...)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
