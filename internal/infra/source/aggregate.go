package source

import (
	"context"
	"log/slog"
	"time"
)

// Aggregator walks the source catalog and collects the raw material for
// a storm report prompt.
type Aggregator struct {
	catalog  Catalog
	feeds    *FeedReader
	texts    *PlainTextFetcher
	articles *ArticleFetcher
}

// NewAggregator wires the catalog to its fetchers. The article fetcher
// may be nil to disable enhancement of scanned news entries.
func NewAggregator(catalog Catalog, feeds *FeedReader, texts *PlainTextFetcher, articles *ArticleFetcher) *Aggregator {
	return &Aggregator{
		catalog:  catalog,
		feeds:    feeds,
		texts:    texts,
		articles: articles,
	}
}

// GatherStormContent visits every cataloged source in order and returns
// the non-empty results: outlook feeds first, then news scans, then
// discussion texts. Sources are fetched one at a time. A source that
// yields nothing is logged and skipped, so a partial outage still
// produces a usable prompt.
func (a *Aggregator) GatherStormContent(ctx context.Context) []string {
	parts := make([]string, 0, a.catalog.Size())

	for _, ep := range a.catalog.OutlookFeeds {
		start := time.Now()
		text := a.feeds.LatestEntry(ctx, ep.URL)
		slog.Info("outlook feed read",
			slog.String("source", ep.Name),
			slog.Int("chars", len(text)),
			slog.Duration("elapsed", time.Since(start)))
		if text != "" {
			parts = append(parts, text)
		}
	}

	for _, ep := range a.catalog.NewsFeeds {
		start := time.Now()
		text := a.scanNews(ctx, ep)
		slog.Info("news feed scanned",
			slog.String("source", ep.Name),
			slog.Bool("matched", text != ""),
			slog.Duration("elapsed", time.Since(start)))
		if text != "" {
			parts = append(parts, text)
		}
	}

	for _, ep := range a.catalog.DiscussionTexts {
		start := time.Now()
		text := a.texts.Fetch(ctx, ep.URL)
		slog.Info("discussion text read",
			slog.String("source", ep.Name),
			slog.Int("chars", len(text)),
			slog.Duration("elapsed", time.Since(start)))
		if text != "" {
			parts = append(parts, text)
		}
	}

	return parts
}

// scanNews runs the keyword scan for one feed and, when a headline
// matches, tries to extend it with the readable text of the linked
// article. Enhancement failures fall back to the feed's own summary.
func (a *Aggregator) scanNews(ctx context.Context, ep Endpoint) string {
	entry, ok := a.feeds.Scan(ctx, ep.URL)
	if !ok {
		return ""
	}

	text := entry.scanText()
	if a.articles == nil || entry.URL == "" {
		return text
	}
	if !a.articles.ShouldEnhance(entry.Summary) {
		slog.Debug("summary sufficient, skipping article fetch",
			slog.String("source", ep.Name),
			slog.Int("summary_len", len(entry.Summary)))
		return text
	}

	extract, err := a.articles.FetchExtract(ctx, entry.URL)
	if err != nil {
		slog.Debug("article enhancement skipped",
			slog.String("source", ep.Name),
			slog.String("url", entry.URL),
			slog.String("error", err.Error()))
		return text
	}
	if extract != "" {
		text += "\n" + extract
	}
	return text
}
