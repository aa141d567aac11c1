// Package config implements fail-open loading of the scheduler daemon's
// operational settings. A malformed or out-of-range environment value never
// stops the daemon: the loader falls back to the shipped default, surfaces a
// warning for the operator, and counts the event in Prometheus so a fleet
// running on fallbacks is visible.
//
// Required credentials are deliberately out of scope here; those fail closed
// at startup in the application config.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Result is the outcome of loading one configuration value. Value is always
// usable: either the parsed and validated environment value or the supplied
// default. Warning is set only when a fallback was applied.
type Result[T any] struct {
	Value           T
	Warning         string
	FallbackApplied bool
}

func fallback[T any](key, raw string, err error, def T) Result[T] {
	return Result[T]{
		Value:           def,
		Warning:         fmt.Sprintf("invalid %s=%q: %v, falling back to default %v", key, raw, err, def),
		FallbackApplied: true,
	}
}

// LoadString reads key from the environment and validates it with validate
// (nil skips validation). Unset or empty variables yield the default without
// a warning; values that fail validation yield the default with one.
//
// Example:
//
//	schedule := LoadString("STORMBOT_SCHEDULE", "0 8 * * 5", ValidateCronSchedule)
func LoadString(key, def string, validate func(string) error) Result[string] {
	raw := os.Getenv(key)
	if raw == "" {
		return Result[string]{Value: def}
	}
	if validate != nil {
		if err := validate(raw); err != nil {
			return fallback(key, raw, err, def)
		}
	}
	return Result[string]{Value: raw}
}

// LoadDuration reads key as a Go duration string ("90s", "1h30m"). Parse
// failures and validation failures both fall back to the default.
func LoadDuration(key string, def time.Duration, validate func(time.Duration) error) Result[time.Duration] {
	raw := os.Getenv(key)
	if raw == "" {
		return Result[time.Duration]{Value: def}
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fallback(key, raw, err, def)
	}
	if validate != nil {
		if err := validate(parsed); err != nil {
			return fallback(key, raw, err, def)
		}
	}
	return Result[time.Duration]{Value: parsed}
}

// LoadInt reads key as a decimal integer. Trailing garbage is rejected, so
// "9091x" falls back rather than silently loading 9091.
func LoadInt(key string, def int, validate func(int) error) Result[int] {
	raw := os.Getenv(key)
	if raw == "" {
		return Result[int]{Value: def}
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback(key, raw, fmt.Errorf("not an integer"), def)
	}
	if validate != nil {
		if err := validate(parsed); err != nil {
			return fallback(key, raw, err, def)
		}
	}
	return Result[int]{Value: parsed}
}

// LoadBool reads key in the forms strconv.ParseBool accepts ("1", "t",
// "true", "0", "f", "false" in any canonical casing).
func LoadBool(key string, def bool) Result[bool] {
	raw := os.Getenv(key)
	if raw == "" {
		return Result[bool]{Value: def}
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback(key, raw, fmt.Errorf("not a boolean"), def)
	}
	return Result[bool]{Value: parsed}
}
