package source

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"stormbot/internal/resilience/circuitbreaker"

	"github.com/go-shiori/go-readability"
)

// ArticleConfig controls how matched news entries are enhanced with the
// full article text behind their link.
type ArticleConfig struct {
	// Enabled toggles enhancement. When false the scan result is used
	// as-is.
	Enabled bool

	// Timeout bounds a single article request.
	Timeout time.Duration

	// MaxBodySize rejects oversized responses before extraction.
	MaxBodySize int64

	// MaxRedirects bounds the redirect chain. Every redirect target is
	// re-validated.
	MaxRedirects int

	// MaxExtractLen caps the extracted text so one long article cannot
	// crowd everything else out of the prompt.
	MaxExtractLen int

	// SummaryThreshold is the minimum summary length (in characters)
	// before the linked article is fetched. Summaries at least this
	// long already carry enough context and are used as-is.
	SummaryThreshold int

	// DenyPrivateIPs rejects links that resolve to private addresses.
	// Links come from third-party feeds, so leave this on.
	DenyPrivateIPs bool
}

// DefaultArticleConfig returns production defaults for article
// enhancement.
func DefaultArticleConfig() ArticleConfig {
	return ArticleConfig{
		Enabled:          true,
		Timeout:          10 * time.Second,
		MaxBodySize:      10 * 1024 * 1024,
		MaxRedirects:     5,
		MaxExtractLen:    4000,
		SummaryThreshold: 300,
		DenyPrivateIPs:   true,
	}
}

// ArticleFetcher pulls the article behind a news entry link and
// extracts its readable text. Enhancement is best effort: callers fall
// back to the feed summary when it fails.
type ArticleFetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	config         ArticleConfig
}

// NewArticleFetcher creates an ArticleFetcher. The HTTP client it
// builds validates every redirect target, so a safe-looking link cannot
// bounce the request to an internal address.
func NewArticleFetcher(config ArticleConfig) *ArticleFetcher {
	fetcher := &ArticleFetcher{
		circuitBreaker: circuitbreaker.New(circuitbreaker.ArticleFetchConfig()),
		config:         config,
	}

	fetcher.client = &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= fetcher.config.MaxRedirects {
				return fmt.Errorf("%w: %d redirects", ErrTooManyRedirects, len(via))
			}
			if err := validateURL(req.URL.String(), fetcher.config.DenyPrivateIPs); err != nil {
				return fmt.Errorf("redirect target rejected: %w", err)
			}
			return nil
		},
	}
	return fetcher
}

// ShouldEnhance reports whether summary is short enough to justify
// fetching the full article behind it.
func (f *ArticleFetcher) ShouldEnhance(summary string) bool {
	return len(summary) < f.config.SummaryThreshold
}

// FetchExtract fetches the article at urlStr and returns its readable
// text, truncated to the configured length.
func (f *ArticleFetcher) FetchExtract(ctx context.Context, urlStr string) (string, error) {
	if !f.config.Enabled {
		return "", nil
	}
	if err := validateURL(urlStr, f.config.DenyPrivateIPs); err != nil {
		return "", err
	}

	result, err := f.circuitBreaker.Execute(func() (interface{}, error) {
		return f.doFetch(ctx, urlStr)
	})
	if err != nil {
		return "", err
	}
	return truncateRunes(result.(string), f.config.MaxExtractLen), nil
}

func (f *ArticleFetcher) doFetch(ctx context.Context, urlStr string) (interface{}, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, urlStr, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", feedUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		// Surface redirect validation failures instead of the generic
		// url.Error wrapper.
		if urlErr, ok := err.(*url.Error); ok && urlErr.Err != nil {
			return "", urlErr.Err
		}
		return "", fmt.Errorf("fetch article: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	limited := io.LimitReader(resp.Body, f.config.MaxBodySize+1)
	htmlBytes, err := io.ReadAll(limited)
	if err != nil {
		return "", fmt.Errorf("read article body: %w", err)
	}
	if int64(len(htmlBytes)) > f.config.MaxBodySize {
		return "", fmt.Errorf("%w: response exceeds %d bytes", ErrBodyTooLarge, f.config.MaxBodySize)
	}

	// Prefer the final URL so extraction resolves relative links
	// correctly after redirects.
	pageURL, err := url.Parse(urlStr)
	if err != nil {
		pageURL = nil
	}
	if resp.Request != nil && resp.Request.URL != nil {
		pageURL = resp.Request.URL
	}

	article, err := readability.FromReader(bytes.NewReader(htmlBytes), pageURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoContent, err)
	}

	if article.TextContent == "" {
		if article.Content == "" {
			return "", ErrNoContent
		}
		slog.Debug("falling back to raw article content",
			slog.String("url", urlStr),
			slog.Int("content_length", len(article.Content)))
		return stripMarkup(article.Content), nil
	}
	return article.TextContent, nil
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
