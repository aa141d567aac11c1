// Package worker carries the scheduler daemon's operational pieces: its
// configuration, the health endpoints, and the run metrics. The digest run
// itself stays single-threaded; everything here is infrastructure around it.
package worker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"stormbot/internal/pkg/config"
)

// Config holds the scheduler daemon settings. Zero values are not usable;
// start from DefaultConfig or LoadFromEnv.
type Config struct {
	// Schedule is the five-field cron expression for the weekly run.
	Schedule string

	// Timezone is the IANA location the schedule is evaluated in.
	Timezone string

	// AutoPublish delivers the digest immediately after drafting it. Off by
	// default so an operator reviews the draft before it goes out.
	AutoPublish bool

	// RunTimeout bounds one scheduled run. Generation backoff alone can hold
	// a run for several minutes, so keep this comfortably above the worst
	// case backoff sum.
	RunTimeout time.Duration

	// HealthPort and MetricsPort serve the probe and Prometheus endpoints.
	HealthPort  int
	MetricsPort int
}

// DefaultConfig returns the production defaults: draft Fridays at 08:00 UTC,
// leave publishing to the operator, and give a run ten minutes.
func DefaultConfig() Config {
	return Config{
		Schedule:    "0 8 * * 5",
		Timezone:    "UTC",
		AutoPublish: false,
		RunTimeout:  10 * time.Minute,
		HealthPort:  9091,
		MetricsPort: 9090,
	}
}

// Validate checks every field and returns the joined errors, so an operator
// sees all problems at once instead of fixing them one restart at a time.
func (c *Config) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.Schedule); err != nil {
		errs = append(errs, fmt.Errorf("schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidateDuration(c.RunTimeout, time.Minute, 4*time.Hour); err != nil {
		errs = append(errs, fmt.Errorf("run timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}
	if err := config.ValidateIntRange(c.MetricsPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("metrics port: %w", err))
	}
	if c.HealthPort == c.MetricsPort {
		errs = append(errs, fmt.Errorf("health port and metrics port must differ, both are %d", c.HealthPort))
	}

	return errors.Join(errs...)
}

// Location loads the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// LoadFromEnv loads the scheduler configuration fail-open: a rejected value
// is replaced by its default, logged, and counted in metrics, and the daemon
// starts anyway. The returned Config always passes Validate.
//
// Environment variables: STORMBOT_SCHEDULE, STORMBOT_TIMEZONE,
// STORMBOT_AUTO_PUBLISH, STORMBOT_RUN_TIMEOUT, HEALTH_PORT, METRICS_PORT.
func LoadFromEnv(logger *slog.Logger, metrics *RunMetrics) *Config {
	cfg := DefaultConfig()
	anyFallback := false

	schedule := config.LoadString("STORMBOT_SCHEDULE", cfg.Schedule, config.ValidateCronSchedule)
	cfg.Schedule = schedule.Value
	if noteFallback(logger, metrics, "schedule", schedule.Warning, schedule.FallbackApplied) {
		anyFallback = true
	}

	timezone := config.LoadString("STORMBOT_TIMEZONE", cfg.Timezone, config.ValidateTimezone)
	cfg.Timezone = timezone.Value
	if noteFallback(logger, metrics, "timezone", timezone.Warning, timezone.FallbackApplied) {
		anyFallback = true
	}

	autoPublish := config.LoadBool("STORMBOT_AUTO_PUBLISH", cfg.AutoPublish)
	cfg.AutoPublish = autoPublish.Value
	if noteFallback(logger, metrics, "auto_publish", autoPublish.Warning, autoPublish.FallbackApplied) {
		anyFallback = true
	}

	runTimeout := config.LoadDuration("STORMBOT_RUN_TIMEOUT", cfg.RunTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, time.Minute, 4*time.Hour)
	})
	cfg.RunTimeout = runTimeout.Value
	if noteFallback(logger, metrics, "run_timeout", runTimeout.Warning, runTimeout.FallbackApplied) {
		anyFallback = true
	}

	healthPort := config.LoadInt("HEALTH_PORT", cfg.HealthPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.HealthPort = healthPort.Value
	if noteFallback(logger, metrics, "health_port", healthPort.Warning, healthPort.FallbackApplied) {
		anyFallback = true
	}

	metricsPort := config.LoadInt("METRICS_PORT", cfg.MetricsPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.MetricsPort = metricsPort.Value
	if noteFallback(logger, metrics, "metrics_port", metricsPort.Warning, metricsPort.FallbackApplied) {
		anyFallback = true
	}

	metrics.SetFallbackActive(anyFallback)
	metrics.RecordLoadTimestamp()

	return &cfg
}

func noteFallback(logger *slog.Logger, metrics *RunMetrics, field, warning string, applied bool) bool {
	if !applied {
		return false
	}
	metrics.RecordValidationError(field)
	metrics.RecordFallback(field)
	logger.Warn("configuration fallback applied",
		slog.String("field", field),
		slog.String("warning", warning),
	)
	return true
}
