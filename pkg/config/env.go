// Package config provides generic helpers for reading configuration from
// environment variables with typed defaults.
//
// Malformed values never fail the caller: the helper logs a warning and
// returns the supplied default, so startup validation stays in the config
// structs that consume these values.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// GetEnvString returns the value of an environment variable or the default
// value if the variable is unset or empty.
//
// Example:
//
//	dir := GetEnvString("STORMBOT_CONTENT_DIR", "content")
func GetEnvString(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetEnvInt returns the value of an environment variable parsed as an
// integer. Unset, empty, or unparseable values yield the default and a
// warning log.
func GetEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		slog.Warn("invalid integer value for environment variable, using default",
			slog.String("key", key),
			slog.String("value", valueStr),
			slog.Int("default", defaultValue))
		return defaultValue
	}

	return value
}

// GetEnvBool returns the value of an environment variable parsed as a
// boolean. Accepted forms are those of strconv.ParseBool ("1", "t", "true",
// "0", "f", "false" in any canonical casing). Invalid values yield the
// default and a warning log.
func GetEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		slog.Warn("invalid boolean value for environment variable, using default",
			slog.String("key", key),
			slog.String("value", valueStr),
			slog.Bool("default", defaultValue))
		return defaultValue
	}

	return value
}

// GetEnvFloat returns the value of an environment variable parsed as a
// float64. Unset, empty, or unparseable values yield the default and a
// warning log.
func GetEnvFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		slog.Warn("invalid float value for environment variable, using default",
			slog.String("key", key),
			slog.String("value", valueStr),
			slog.Float64("default", defaultValue))
		return defaultValue
	}

	return value
}

// GetEnvDuration returns the value of an environment variable parsed by
// time.ParseDuration (e.g. "30s", "1h30m"). Unset, empty, or unparseable
// values yield the default and a warning log.
//
// Example:
//
//	timeout := GetEnvDuration("STORMBOT_RUN_TIMEOUT", 10*time.Minute)
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		slog.Warn("invalid duration value for environment variable, using default",
			slog.String("key", key),
			slog.String("value", valueStr),
			slog.String("default", defaultValue.String()))
		return defaultValue
	}

	return value
}

// GetEnvStringList returns a comma-separated list from an environment
// variable. Entries are whitespace-trimmed and empty entries are dropped;
// an unset variable or an all-empty list yields the default.
//
// Example:
//
//	keywords := GetEnvStringList("STORMBOT_SCAN_KEYWORDS", []string{"hurricane"})
func GetEnvStringList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return defaultValue
	}

	return result
}

// ValidatePositiveDuration validates that a duration is greater than zero.
// Used for timeouts and intervals where zero would disable the guard.
func ValidatePositiveDuration(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("duration must be positive, got %v", d)
	}
	return nil
}

// ValidateDurationRange validates that a duration lies within [min, max].
func ValidateDurationRange(d, min, max time.Duration) error {
	if min > max {
		return fmt.Errorf("invalid range: min (%v) cannot be greater than max (%v)", min, max)
	}
	if d < min {
		return fmt.Errorf("duration %v is below minimum %v", d, min)
	}
	if d > max {
		return fmt.Errorf("duration %v exceeds maximum %v", d, max)
	}
	return nil
}
