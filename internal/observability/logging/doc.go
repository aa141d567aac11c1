// Package logging provides structured logging utilities with context propagation.
//
// This package wraps the standard library's log/slog package with helper functions
// for common logging patterns used throughout the application.
//
// Key features:
//   - JSON and text output formats on stderr
//   - Digest-run ID propagation
//   - Context-aware logging
//   - Configurable log levels
//
// Example usage:
//
//	import "stormbot/internal/observability/logging"
//
//	func main() {
//	    logger := logging.NewLogger()
//	    logger.Info("stormbot started", slog.String("version", "1.0"))
//	}
//
//	func runDigest(ctx context.Context) {
//	    logger := logging.WithRunID(ctx, slog.Default())
//	    logger.Info("drafting digest")
//	}
package logging
