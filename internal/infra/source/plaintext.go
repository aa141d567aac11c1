package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"stormbot/internal/resilience/circuitbreaker"
	"stormbot/internal/resilience/retry"

	"github.com/sony/gobreaker"
)

// Forecaster discussions run a few KB; anything near this limit is not
// the document we asked for.
const maxTextBodySize = 1 << 20

// PlainTextFetcher retrieves discussion bulletins published as raw text
// files.
type PlainTextFetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// NewPlainTextFetcher creates a PlainTextFetcher backed by the given
// HTTP client.
func NewPlainTextFetcher(client *http.Client) *PlainTextFetcher {
	return &PlainTextFetcher{
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.PlainTextConfig()),
		retryConfig:    retry.PlainTextConfig(),
	}
}

// Fetch returns the document body with surrounding whitespace trimmed,
// or "" when the source is unreachable.
func (f *PlainTextFetcher) Fetch(ctx context.Context, rawURL string) string {
	var body string

	err := retry.WithBackoff(ctx, f.retryConfig, func() error {
		result, err := f.circuitBreaker.Execute(func() (interface{}, error) {
			return f.doFetch(ctx, rawURL)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("plain text circuit breaker open, skipping fetch",
					slog.String("url", rawURL))
			}
			return err
		}
		body = result.(string)
		return nil
	})
	if err != nil {
		slog.Warn("plain text source unavailable",
			slog.String("url", rawURL),
			slog.String("error", err.Error()))
		return ""
	}
	return body
}

func (f *PlainTextFetcher) doFetch(ctx context.Context, rawURL string) (interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", feedUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch plain text: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", &retry.HTTPError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxTextBodySize))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
