package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"stormbot/internal/resilience/circuitbreaker"
	"stormbot/internal/resilience/retry"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/sony/gobreaker"
)

const feedUserAgent = "Stormbot/1.0"

// Entry is one feed item reduced to the fields the digest cares about.
// PublishedAt is nil when the feed does not date the item.
type Entry struct {
	Title       string
	Summary     string
	URL         string
	PublishedAt *time.Time
}

// ScanConfig controls how Scan filters a news feed.
type ScanConfig struct {
	// Keywords are matched case-insensitively against entry titles.
	Keywords []string

	// Window is how far back a dated entry may be and still count.
	// Undated entries never match.
	Window time.Duration
}

// DefaultScanConfig matches the tropical systems the digest reports on.
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		Keywords: []string{"hurricane", "tropical storm", "tropical cyclone"},
		Window:   7 * 24 * time.Hour,
	}
}

// FeedReader pulls RSS/Atom feeds with retry and circuit breaker
// protection. The read methods swallow failures and return "" so that
// one dead feed costs a section of the prompt, not the whole run.
type FeedReader struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	scan           ScanConfig
}

// NewFeedReader creates a FeedReader backed by the given HTTP client.
func NewFeedReader(client *http.Client, scan ScanConfig) *FeedReader {
	return &FeedReader{
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.FeedFetchConfig()),
		retryConfig:    retry.FeedFetchConfig(),
		scan:           scan,
	}
}

// LatestEntry returns the newest entry's text with markup stripped.
// Feeds list newest first, so this is the first item. Returns "" when
// the feed is empty or unreachable.
func (r *FeedReader) LatestEntry(ctx context.Context, feedURL string) string {
	entries, err := r.fetch(ctx, feedURL)
	if err != nil {
		slog.Warn("latest entry unavailable",
			slog.String("url", feedURL),
			slog.String("error", err.Error()))
		return ""
	}
	if len(entries) == 0 {
		slog.Warn("feed has no entries", slog.String("url", feedURL))
		return ""
	}
	return stripMarkup(entries[0].Summary)
}

// Scan walks the feed in order and returns the first entry published
// within the scan window whose title mentions a tracked keyword. The
// second result is false when nothing matches or the feed is
// unreachable.
func (r *FeedReader) Scan(ctx context.Context, feedURL string) (Entry, bool) {
	entries, err := r.fetch(ctx, feedURL)
	if err != nil {
		slog.Warn("news scan unavailable",
			slog.String("url", feedURL),
			slog.String("error", err.Error()))
		return Entry{}, false
	}

	cutoff := time.Now().Add(-r.scan.Window)
	for _, entry := range entries {
		if entry.PublishedAt == nil || entry.PublishedAt.Before(cutoff) {
			continue
		}
		title := strings.ToLower(entry.Title)
		for _, keyword := range r.scan.Keywords {
			if strings.Contains(title, strings.ToLower(keyword)) {
				return entry, true
			}
		}
	}
	return Entry{}, false
}

// ScanForKeywords is the string form of Scan: the matched entry's
// headline and summary separated by a newline, or "" when nothing in
// the window matches.
func (r *FeedReader) ScanForKeywords(ctx context.Context, feedURL string) string {
	entry, ok := r.Scan(ctx, feedURL)
	if !ok {
		return ""
	}
	return entry.scanText()
}

// scanText renders a matched entry for prompt use.
func (e Entry) scanText() string {
	text := stripMarkup(e.Title)
	if summary := stripMarkup(e.Summary); summary != "" {
		text += "\n" + summary
	}
	return text
}

func (r *FeedReader) fetch(ctx context.Context, feedURL string) ([]Entry, error) {
	var entries []Entry

	err := retry.WithBackoff(ctx, r.retryConfig, func() error {
		result, err := r.circuitBreaker.Execute(func() (interface{}, error) {
			return r.doFetch(ctx, feedURL)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("feed circuit breaker open, skipping fetch",
					slog.String("url", feedURL))
			}
			return err
		}
		entries = result.([]Entry)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", feedURL, err)
	}
	return entries, nil
}

func (r *FeedReader) doFetch(ctx context.Context, feedURL string) ([]Entry, error) {
	fp := gofeed.NewParser()
	fp.UserAgent = feedUserAgent
	if r.client != nil {
		fp.Client = r.client
	}

	feed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	entries := make([]Entry, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		summary := item.Description
		if summary == "" {
			summary = item.Content
		}
		entries = append(entries, Entry{
			Title:       item.Title,
			Summary:     summary,
			URL:         item.Link,
			PublishedAt: item.PublishedParsed,
		})
	}
	return entries, nil
}

// stripMarkup flattens feed markup to plain text. Tags become word
// boundaries so adjacent elements do not run together, and whitespace
// collapses to single spaces.
func stripMarkup(markup string) string {
	if markup == "" {
		return ""
	}
	spaced := strings.ReplaceAll(markup, "<", " <")
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(spaced))
	if err != nil {
		return strings.TrimSpace(markup)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
