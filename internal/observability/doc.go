// Package observability provides the observability infrastructure for stormbot:
// structured logging and Prometheus metrics.
//
// Subpackages:
//   - logging: Structured logging utilities with slog
//
// Run metrics live next to the code they instrument (generator attempt
// metrics in internal/infra/generator, scheduler run metrics in
// internal/infra/worker) and are exposed by the worker metrics endpoint.
package observability
