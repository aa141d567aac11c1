// Package generator produces the AI-written passages of the weekly
// digest. It wraps the Claude and OpenAI APIs behind one Backend
// interface and turns provider failures into explicit outcomes instead
// of errors: the digest always gets a line, even when the provider is
// down.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// maxAttempts bounds one generation. Only rate limits are retried;
// any other provider failure ends the generation immediately.
const maxAttempts = 5

// Placeholder lines published when a generation could not produce text.
const (
	busyPlaceholder   = "<Servers are busy!>"
	failedPlaceholder = "<Unexpected error!>"
)

// Request describes one completion to generate.
type Request struct {
	// System primes the model, e.g. a meteorologist persona. Empty
	// means no system prompt.
	System string

	// Prompt is the user prompt.
	Prompt string

	// MaxTokens bounds the response length.
	MaxTokens int

	// Temperature overrides the provider default when non-zero.
	Temperature float32
}

// OutcomeKind tags how a generation ended.
type OutcomeKind int

const (
	// OutcomeText means the provider returned a completion.
	OutcomeText OutcomeKind = iota

	// OutcomeBusy means every attempt was rate limited.
	OutcomeBusy

	// OutcomeFailed means a non-rate-limit failure ended the generation.
	OutcomeFailed
)

// String returns the kind as a metrics label value.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeText:
		return "text"
	case OutcomeBusy:
		return "busy"
	default:
		return "failed"
	}
}

// Outcome is the result of a generation. Failures travel through the
// draft pipeline as tagged values and are only flattened to placeholder
// text by Render, so callers can still tell a real completion from a
// failure notice.
type Outcome struct {
	Kind OutcomeKind
	Text string
	Err  error
}

// TextOutcome wraps a successful completion.
func TextOutcome(text string) Outcome {
	return Outcome{Kind: OutcomeText, Text: text}
}

// BusyOutcome records that all attempts were rate limited.
func BusyOutcome(err error) Outcome {
	return Outcome{Kind: OutcomeBusy, Err: err}
}

// FailedOutcome records a non-retryable generation failure.
func FailedOutcome(err error) Outcome {
	return Outcome{Kind: OutcomeFailed, Err: err}
}

// OK reports whether the outcome carries real text.
func (o Outcome) OK() bool {
	return o.Kind == OutcomeText
}

// Render flattens the outcome into the line that goes to readers:
// the completion itself, or a placeholder naming what went wrong.
func (o Outcome) Render() string {
	switch o.Kind {
	case OutcomeText:
		return o.Text
	case OutcomeBusy:
		return busyPlaceholder
	default:
		return failedPlaceholder
	}
}

// Backend is one completion provider.
type Backend interface {
	// Name identifies the provider in logs and metrics.
	Name() string

	// Complete performs a single API call. Rate limits must be
	// reported as *RateLimitError so the client knows to back off.
	Complete(ctx context.Context, req Request) (string, error)
}

// RateLimitError marks a provider rejection that is worth waiting out.
type RateLimitError struct {
	Backend string
	Err     error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited: %v", e.Backend, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// IsRateLimit reports whether err is a rate limit anywhere in its chain.
func IsRateLimit(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

// RetryPolicy controls the wait between rate-limited attempts. The
// wait doubles each attempt: BaseDelay, 2x, 4x, and so on, capped at
// MaxDelay.
type RetryPolicy struct {
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// DefaultRetryPolicy waits a minute after the first rate limit.
// Provider windows usually reset within that.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		BaseDelay: time.Minute,
		MaxDelay:  8 * time.Minute,
	}
}

func (p RetryPolicy) delay(attempt int) time.Duration {
	delay := p.BaseDelay
	for i := 0; i < attempt; i++ {
		delay *= 2
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}

// Client runs generations against a backend with bounded retries.
type Client struct {
	backend Backend
	policy  RetryPolicy
	metrics MetricsRecorder
}

// NewClient creates a generation client around the given backend.
func NewClient(backend Backend, policy RetryPolicy) *Client {
	return &Client{
		backend: backend,
		policy:  policy,
		metrics: NewPrometheusGenerationMetrics(),
	}
}

// NewClientWithMetrics is NewClient with an explicit metrics recorder.
func NewClientWithMetrics(backend Backend, policy RetryPolicy, metrics MetricsRecorder) *Client {
	return &Client{backend: backend, policy: policy, metrics: metrics}
}

// Generate runs the request until it produces text, hits a hard
// failure, or exhausts its attempts. It never returns an error; the
// outcome carries the failure mode instead.
func (c *Client) Generate(ctx context.Context, req Request) Outcome {
	start := time.Now()
	outcome := c.generate(ctx, req)
	c.metrics.RecordOutcome(outcome.Kind.String())
	c.metrics.RecordDuration(time.Since(start))
	return outcome
}

func (c *Client) generate(ctx context.Context, req Request) Outcome {
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		slog.InfoContext(ctx, "generation attempt",
			slog.String("backend", c.backend.Name()),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", maxAttempts),
			slog.String("prompt", req.Prompt))

		text, err := c.backend.Complete(ctx, req)
		if err == nil {
			c.metrics.RecordAttempt("success")
			return TextOutcome(text)
		}
		lastErr = err

		if !IsRateLimit(err) {
			c.metrics.RecordAttempt("error")
			slog.ErrorContext(ctx, "generation failed",
				slog.String("backend", c.backend.Name()),
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()))
			return FailedOutcome(err)
		}

		c.metrics.RecordAttempt("rate_limited")
		if attempt == maxAttempts {
			break
		}

		delay := c.policy.delay(attempt - 1)
		slog.WarnContext(ctx, "generation rate limited, backing off",
			slog.String("backend", c.backend.Name()),
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return FailedOutcome(ctx.Err())
		}
	}

	slog.ErrorContext(ctx, "generation attempts exhausted",
		slog.String("backend", c.backend.Name()),
		slog.Int("attempts", maxAttempts),
		slog.String("error", lastErr.Error()))
	return BusyOutcome(lastErr)
}
