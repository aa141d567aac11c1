package source_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"stormbot/internal/infra/source"
)

func serveRSS(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		if _, err := w.Write([]byte(body)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func rssItem(title, description, link string, published time.Time) string {
	return fmt.Sprintf(`<item>
  <title>%s</title>
  <link>%s</link>
  <description><![CDATA[%s]]></description>
  <pubDate>%s</pubDate>
</item>`, title, link, description, published.UTC().Format(time.RFC1123Z))
}

func rssFeed(items ...string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <link>https://example.com</link>
` + strings.Join(items, "\n") + `
  </channel>
</rss>`
}

func newReader() *source.FeedReader {
	client := &http.Client{Timeout: 10 * time.Second}
	return source.NewFeedReader(client, source.DefaultScanConfig())
}

func TestFeedReader_LatestEntry(t *testing.T) {
	server := serveRSS(t, rssFeed(
		rssItem("Tropical Weather Outlook", "<p>Atlantic basin:</p><br/>No cyclones expected.", "https://example.com/1", time.Now()),
		rssItem("Older Outlook", "Stale text.", "https://example.com/2", time.Now().Add(-6*time.Hour)),
	))

	got := newReader().LatestEntry(context.Background(), server.URL)

	want := "Atlantic basin: No cyclones expected."
	if got != want {
		t.Errorf("LatestEntry() = %q, want %q", got, want)
	}
}

func TestFeedReader_LatestEntry_EmptyFeed(t *testing.T) {
	server := serveRSS(t, rssFeed())

	if got := newReader().LatestEntry(context.Background(), server.URL); got != "" {
		t.Errorf("LatestEntry() = %q, want empty string", got)
	}
}

func TestFeedReader_LatestEntry_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	if got := newReader().LatestEntry(context.Background(), server.URL); got != "" {
		t.Errorf("LatestEntry() = %q, want empty string", got)
	}
}

func TestFeedReader_LatestEntry_InvalidXML(t *testing.T) {
	server := serveRSS(t, "not a feed <><><>")

	if got := newReader().LatestEntry(context.Background(), server.URL); got != "" {
		t.Errorf("LatestEntry() = %q, want empty string", got)
	}
}

func TestFeedReader_ScanForKeywords_Match(t *testing.T) {
	server := serveRSS(t, rssFeed(
		rssItem("Local bake sale raises funds", "Nothing stormy here.", "https://example.com/bake", time.Now().Add(-2*time.Hour)),
		rssItem("Hurricane Milton strengthens offshore", "Forecasters expect landfall on <b>Friday</b>", "https://example.com/milton", time.Now().Add(-48*time.Hour)),
	))

	got := newReader().ScanForKeywords(context.Background(), server.URL)

	want := "Hurricane Milton strengthens offshore\nForecasters expect landfall on Friday"
	if got != want {
		t.Errorf("ScanForKeywords() = %q, want %q", got, want)
	}
}

func TestFeedReader_ScanForKeywords_CaseInsensitive(t *testing.T) {
	server := serveRSS(t, rssFeed(
		rssItem("TROPICAL STORM warning issued for coast", "Details inside.", "https://example.com/ts", time.Now().Add(-time.Hour)),
	))

	got := newReader().ScanForKeywords(context.Background(), server.URL)
	if !strings.HasPrefix(got, "TROPICAL STORM warning") {
		t.Errorf("ScanForKeywords() = %q, want match on uppercase title", got)
	}
}

func TestFeedReader_ScanForKeywords_OutsideWindow(t *testing.T) {
	// A matching headline older than the scan window must not count.
	server := serveRSS(t, rssFeed(
		rssItem("Hurricane recap from last season", "Old news.", "https://example.com/old", time.Now().Add(-10*24*time.Hour)),
	))

	if got := newReader().ScanForKeywords(context.Background(), server.URL); got != "" {
		t.Errorf("ScanForKeywords() = %q, want empty string for stale entry", got)
	}
}

func TestFeedReader_ScanForKeywords_UndatedSkipped(t *testing.T) {
	undated := `<item>
  <title>Hurricane chatter with no date</title>
  <link>https://example.com/undated</link>
  <description>No pubDate element.</description>
</item>`
	server := serveRSS(t, rssFeed(undated))

	if got := newReader().ScanForKeywords(context.Background(), server.URL); got != "" {
		t.Errorf("ScanForKeywords() = %q, want empty string for undated entry", got)
	}
}

func TestFeedReader_ScanForKeywords_NoMatch(t *testing.T) {
	server := serveRSS(t, rssFeed(
		rssItem("Sunny skies all week", "Pleasant weather continues.", "https://example.com/sunny", time.Now()),
	))

	if got := newReader().ScanForKeywords(context.Background(), server.URL); got != "" {
		t.Errorf("ScanForKeywords() = %q, want empty string", got)
	}
}

func TestFeedReader_Scan_ReturnsEntry(t *testing.T) {
	published := time.Now().Add(-3 * time.Hour)
	server := serveRSS(t, rssFeed(
		rssItem("Tropical cyclone forms in basin", "Summary text.", "https://example.com/cyclone", published),
	))

	entry, ok := newReader().Scan(context.Background(), server.URL)
	if !ok {
		t.Fatal("Scan() ok = false, want true")
	}
	if entry.URL != "https://example.com/cyclone" {
		t.Errorf("entry.URL = %q, want %q", entry.URL, "https://example.com/cyclone")
	}
	if entry.PublishedAt == nil {
		t.Error("entry.PublishedAt = nil, want timestamp")
	}
}

func TestFeedReader_CustomKeywords(t *testing.T) {
	server := serveRSS(t, rssFeed(
		rssItem("Typhoon approaches the coast", "West Pacific system.", "https://example.com/typhoon", time.Now()),
	))

	client := &http.Client{Timeout: 10 * time.Second}
	reader := source.NewFeedReader(client, source.ScanConfig{
		Keywords: []string{"Typhoon"},
		Window:   7 * 24 * time.Hour,
	})

	got := reader.ScanForKeywords(context.Background(), server.URL)
	if !strings.HasPrefix(got, "Typhoon approaches") {
		t.Errorf("ScanForKeywords() = %q, want custom keyword match", got)
	}
}
