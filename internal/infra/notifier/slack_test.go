package notifier_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"stormbot/internal/digest"
	"stormbot/internal/infra/notifier"
)

func sampleDocument() string {
	d := digest.New()
	d.Append("*Beep boop! Here is your weekly tropical outlook report:*")
	d.AppendQuoted("No tropical cyclones are expected this week.")
	d.StartSection()
	d.Append("*Here are a few notes about this week:*")
	d.AppendQuoted("1. A cultural note.")
	return d.String()
}

func newNotifier(url string) *notifier.SlackNotifier {
	return notifier.NewSlackNotifier(notifier.SlackConfig{
		WebhookURL: url,
		Timeout:    5 * time.Second,
	})
}

func TestSlackNotifier_Deliver(t *testing.T) {
	var captured notifier.SlackWebhookPayload
	var hits atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if _, err := w.Write([]byte("ok")); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	if err := newNotifier(server.URL).Deliver(context.Background(), sampleDocument()); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	if hits.Load() != 1 {
		t.Fatalf("webhook hits = %d, want 1", hits.Load())
	}
	if len(captured.Blocks) != 2 {
		t.Fatalf("blocks length = %d, want 2", len(captured.Blocks))
	}
	for i, block := range captured.Blocks {
		if block.Type != "section" {
			t.Errorf("blocks[%d].Type = %q, want section", i, block.Type)
		}
		if block.Text == nil || block.Text.Type != "mrkdwn" {
			t.Errorf("blocks[%d].Text = %+v, want mrkdwn text object", i, block.Text)
		}
	}
	wantFirst := "*Beep boop! Here is your weekly tropical outlook report:*\n> No tropical cyclones are expected this week."
	if captured.Blocks[0].Text.Text != wantFirst {
		t.Errorf("blocks[0] text = %q, want %q", captured.Blocks[0].Text.Text, wantFirst)
	}
	if captured.Text != "*Beep boop! Here is your weekly tropical outlook report:*" {
		t.Errorf("fallback text = %q, want first digest line", captured.Text)
	}
}

func TestSlackNotifier_Deliver_NoRetryOnServerError(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer server.Close()

	err := newNotifier(server.URL).Deliver(context.Background(), sampleDocument())

	var serverErr *notifier.ServerError
	if !errors.As(err, &serverErr) {
		t.Fatalf("Deliver() error = %v, want *ServerError", err)
	}
	if hits.Load() != 1 {
		t.Errorf("webhook hits = %d, want exactly 1 (no retry)", hits.Load())
	}
}

func TestSlackNotifier_Deliver_RateLimited(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	err := newNotifier(server.URL).Deliver(context.Background(), sampleDocument())

	var rateLimitErr *notifier.RateLimitError
	if !errors.As(err, &rateLimitErr) {
		t.Fatalf("Deliver() error = %v, want *RateLimitError", err)
	}
	if rateLimitErr.RetryAfter != 7*time.Second {
		t.Errorf("RetryAfter = %v, want 7s from header", rateLimitErr.RetryAfter)
	}
	if hits.Load() != 1 {
		t.Errorf("webhook hits = %d, want exactly 1 (no retry)", hits.Load())
	}
}

func TestSlackNotifier_Deliver_ClientError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid_blocks", http.StatusBadRequest)
	}))
	defer server.Close()

	err := newNotifier(server.URL).Deliver(context.Background(), sampleDocument())

	var clientErr *notifier.ClientError
	if !errors.As(err, &clientErr) {
		t.Fatalf("Deliver() error = %v, want *ClientError", err)
	}
	if clientErr.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d, want 400", clientErr.StatusCode)
	}
}

func TestSlackNotifier_Deliver_EmptyDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("webhook called for empty document")
	}))
	defer server.Close()

	if err := newNotifier(server.URL).Deliver(context.Background(), "   \n  "); err == nil {
		t.Fatal("Deliver() error = nil, want error for empty document")
	}
}

func TestSlackNotifier_Deliver_TruncatesLongSection(t *testing.T) {
	var captured notifier.SlackWebhookPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if _, err := w.Write([]byte("ok")); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	d := digest.New()
	d.Append(strings.Repeat("x", 5000))

	if err := newNotifier(server.URL).Deliver(context.Background(), d.String()); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	got := captured.Blocks[0].Text.Text
	if len(got) > 3000 {
		t.Errorf("block text length = %d, want at most 3000", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("block text = %q..., want truncation suffix", got[len(got)-10:])
	}
}
