package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"stormbot/internal/digest"
	"stormbot/internal/resilience/circuitbreaker"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
)

// SlackConfig contains configuration for Slack webhook delivery.
type SlackConfig struct {
	// WebhookURL is the Slack Incoming Webhook URL (includes the token).
	WebhookURL string

	// Timeout is the HTTP request timeout for the webhook POST.
	Timeout time.Duration
}

// SlackNotifier posts digest documents to a Slack Incoming Webhook.
// Each digest section becomes one mrkdwn block, so Slack renders the
// report as separate paragraphs with working quote formatting.
type SlackNotifier struct {
	config         SlackConfig
	httpClient     *http.Client
	rateLimiter    *RateLimiter
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewSlackNotifier creates a SlackNotifier. The rate limiter matches
// the Slack webhook limit of one message per second.
func NewSlackNotifier(config SlackConfig) *SlackNotifier {
	return &SlackNotifier{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimiter:    NewRateLimiter(1.0, 1),
		circuitBreaker: circuitbreaker.New(circuitbreaker.WebhookConfig()),
	}
}

// SlackWebhookPayload is the Block Kit JSON body sent to the webhook.
type SlackWebhookPayload struct {
	Text   string       `json:"text"`
	Blocks []SlackBlock `json:"blocks"`
}

// SlackBlock is one Block Kit block.
type SlackBlock struct {
	Type string           `json:"type"`
	Text *SlackTextObject `json:"text,omitempty"`
}

// SlackTextObject is a Block Kit text object.
type SlackTextObject struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

const (
	// Block Kit limits
	maxSectionTextLength = 3000
	maxFallbackLength    = 150

	truncationSuffix = "..."
)

// buildPayload splits the digest document into sections and wraps each
// one in an mrkdwn section block. Blocks longer than the Block Kit
// limit are truncated rather than rejected.
func buildPayload(document string) (SlackWebhookPayload, error) {
	sections := digest.Split(document)
	if len(sections) == 0 {
		return SlackWebhookPayload{}, fmt.Errorf("digest has no sections to deliver")
	}

	blocks := make([]SlackBlock, 0, len(sections))
	for _, section := range sections {
		blocks = append(blocks, SlackBlock{
			Type: "section",
			Text: &SlackTextObject{
				Type: "mrkdwn",
				Text: truncateBlockText(section, maxSectionTextLength, truncationSuffix),
			},
		})
	}

	// Fallback text shows up in desktop and mobile notifications.
	fallback := sections[0]
	if idx := strings.IndexByte(fallback, '\n'); idx >= 0 {
		fallback = fallback[:idx]
	}
	fallback = truncateBlockText(fallback, maxFallbackLength, truncationSuffix)

	return SlackWebhookPayload{Text: fallback, Blocks: blocks}, nil
}

// Deliver implements DigestNotifier. It performs exactly one POST:
// delivery failures end the publish run instead of being retried, so a
// flaky webhook cannot double-post the report.
func (s *SlackNotifier) Deliver(ctx context.Context, document string) error {
	deliveryID := uuid.New().String()
	ctx = context.WithValue(ctx, deliveryIDKey, deliveryID)

	payload, err := buildPayload(document)
	if err != nil {
		return err
	}

	slog.Info("starting digest delivery",
		slog.String("delivery_id", deliveryID),
		slog.Int("blocks", len(payload.Blocks)),
		slog.Int("chars", len(document)))

	if err := s.rateLimiter.Allow(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	_, err = s.circuitBreaker.Execute(func() (interface{}, error) {
		return nil, s.post(ctx, payload)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			slog.Warn("webhook circuit breaker open, delivery rejected",
				slog.String("delivery_id", deliveryID))
		}
		slog.Error("digest delivery failed",
			slog.String("delivery_id", deliveryID),
			slog.String("error", err.Error()))
		return err
	}

	slog.Info("digest delivered",
		slog.String("delivery_id", deliveryID),
		slog.Int("blocks", len(payload.Blocks)))
	return nil
}

// post sends the webhook request and classifies non-2xx responses.
func (s *SlackNotifier) post(ctx context.Context, payload SlackWebhookPayload) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.WebhookURL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{
			Message:    "Slack rate limit exceeded",
			RetryAfter: extractRetryAfter(resp, body),
		}
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return &ClientError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Slack API client error: %s", string(body)),
		}
	}

	if resp.StatusCode >= 500 {
		return &ServerError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Slack API server error: %s", string(body)),
		}
	}

	return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
}
