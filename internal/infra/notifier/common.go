package notifier

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const deliveryIDKey contextKey = "delivery_id"

// Webhook error types. A publish is a single POST, so these are not
// used to drive retries; they tell the caller and the logs what kind
// of failure ended the run.

// RateLimitError represents a 429 response from the webhook service.
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (retry after %v)", e.Message, e.RetryAfter)
	}
	return fmt.Sprintf("rate limit exceeded (retry after %v)", e.RetryAfter)
}

// ClientError represents a 4xx response, usually a bad payload or a
// revoked webhook URL.
type ClientError struct {
	StatusCode int
	Message    string
}

func (e *ClientError) Error() string {
	return e.Message
}

// ServerError represents a 5xx response from the webhook service.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return e.Message
}

// extractRetryAfter pulls the retry hint out of a 429 response. It
// tries the JSON body first, then the Retry-After header, and defaults
// to 5 seconds.
func extractRetryAfter(resp *http.Response, body []byte) time.Duration {
	var payload struct {
		RetryAfter float64 `json:"retry_after"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.RetryAfter > 0 {
		return time.Duration(payload.RetryAfter * float64(time.Second))
	}

	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}

	return 5 * time.Second
}

// truncateBlockText truncates text to maxLength bytes, appending suffix
// when anything was cut.
func truncateBlockText(text string, maxLength int, suffix string) string {
	if len(text) <= maxLength {
		return text
	}

	truncateAt := maxLength - len(suffix)
	if truncateAt < 0 {
		truncateAt = 0
	}
	return text[:truncateAt] + suffix
}
