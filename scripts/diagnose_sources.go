// Diagnoses every endpoint in the stormbot source catalog: fetches it,
// parses feeds, and reports item counts and freshness so an operator can
// spot a dead NOAA product before the scheduled run degrades silently.
//
// Usage:
//
//	go run scripts/diagnose_sources.go
//
// Honors STORMBOT_SOURCES_FILE the same way the bot does. Writes a JSON
// report next to the text summary on stdout.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/mmcdole/gofeed"

	"stormbot/internal/infra/source"
)

// EndpointDiagnostic is the per-source result of one probe.
type EndpointDiagnostic struct {
	Name         string `json:"name"`
	Kind         string `json:"kind"` // "outlook-feed", "news-feed", "discussion-text"
	URL          string `json:"url"`
	Status       string `json:"status"` // "OK", "HTTP_ERROR", "PARSE_ERROR", "EMPTY", "TIMEOUT"
	HTTPCode     int    `json:"http_code,omitempty"`
	ItemCount    int    `json:"item_count,omitempty"`
	LatestDate   string `json:"latest_date,omitempty"`
	ContentBytes int    `json:"content_bytes"`
	ResponseTime int64  `json:"response_time_ms"`
	ErrorMessage string `json:"error_message,omitempty"`
}

const probeTimeout = 30 * time.Second

func main() {
	catalog := source.DefaultCatalog()
	if path := os.Getenv("STORMBOT_SOURCES_FILE"); path != "" {
		loaded, err := source.LoadCatalog(path)
		if err != nil {
			log.Fatalf("Failed to load catalog %s: %v", path, err)
		}
		catalog = loaded
		log.Printf("Using catalog override: %s", path)
	}

	log.Printf("Diagnosing %d catalog endpoints...", catalog.Size())

	diagnostics := make([]EndpointDiagnostic, 0, catalog.Size())
	probe := func(kind string, ep source.Endpoint, diagnose func(string, source.Endpoint) EndpointDiagnostic) {
		log.Printf("[%d/%d] %s (%s)", len(diagnostics)+1, catalog.Size(), ep.Name, kind)
		diagnostics = append(diagnostics, diagnose(kind, ep))
		// Rate limiting to be nice to servers
		time.Sleep(500 * time.Millisecond)
	}

	for _, ep := range catalog.OutlookFeeds {
		probe("outlook-feed", ep, diagnoseFeed)
	}
	for _, ep := range catalog.NewsFeeds {
		probe("news-feed", ep, diagnoseFeed)
	}
	for _, ep := range catalog.DiscussionTexts {
		probe("discussion-text", ep, diagnoseText)
	}

	printSummary(diagnostics)
	writeJSONReport(diagnostics)
}

func diagnoseFeed(kind string, ep source.Endpoint) EndpointDiagnostic {
	diag, body := fetchEndpoint(kind, ep, "application/rss+xml, application/atom+xml, application/xml, text/xml")
	if diag.Status != "" {
		return diag
	}

	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		diag.Status = "PARSE_ERROR"
		diag.ErrorMessage = err.Error()
		return diag
	}

	diag.ItemCount = len(feed.Items)
	if diag.ItemCount == 0 {
		diag.Status = "EMPTY"
		diag.ErrorMessage = "feed has no items"
		return diag
	}
	if newest := feed.Items[0]; newest.PublishedParsed != nil {
		diag.LatestDate = newest.PublishedParsed.Format(time.RFC3339)
	} else {
		diag.LatestDate = newest.Published
	}

	diag.Status = "OK"
	return diag
}

func diagnoseText(kind string, ep source.Endpoint) EndpointDiagnostic {
	diag, body := fetchEndpoint(kind, ep, "text/plain")
	if diag.Status != "" {
		return diag
	}

	if len(body) == 0 {
		diag.Status = "EMPTY"
		diag.ErrorMessage = "discussion text is empty"
		return diag
	}

	diag.Status = "OK"
	return diag
}

// fetchEndpoint GETs the endpoint and returns a partially filled diagnostic.
// A non-empty Status means the probe already failed and body is nil.
func fetchEndpoint(kind string, ep source.Endpoint, accept string) (EndpointDiagnostic, []byte) {
	diag := EndpointDiagnostic{
		Name: ep.Name,
		Kind: kind,
		URL:  ep.URL,
	}

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ep.URL, nil)
	if err != nil {
		diag.Status = "REQUEST_ERROR"
		diag.ErrorMessage = err.Error()
		return diag, nil
	}
	req.Header.Set("User-Agent", "Stormbot-Diagnostic/1.0")
	req.Header.Set("Accept", accept)

	start := time.Now()
	resp, err := http.DefaultClient.Do(req)
	diag.ResponseTime = time.Since(start).Milliseconds()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			diag.Status = "TIMEOUT"
			diag.ErrorMessage = fmt.Sprintf("request timeout after %v", probeTimeout)
		} else {
			diag.Status = "HTTP_ERROR"
			diag.ErrorMessage = err.Error()
		}
		return diag, nil
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("Failed to close response body: %v", err)
		}
	}()

	diag.HTTPCode = resp.StatusCode
	if resp.StatusCode != http.StatusOK {
		diag.Status = "HTTP_ERROR"
		diag.ErrorMessage = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, resp.Status)
		return diag, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		diag.Status = "READ_ERROR"
		diag.ErrorMessage = err.Error()
		return diag, nil
	}
	diag.ContentBytes = len(body)

	return diag, body
}

func printSummary(diagnostics []EndpointDiagnostic) {
	var okCount, errorCount int
	for _, d := range diagnostics {
		if d.Status == "OK" {
			okCount++
		} else {
			errorCount++
		}
	}

	fmt.Printf("\n===============================================\n")
	fmt.Printf("Stormbot Source Diagnostic Report\n")
	fmt.Printf("Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Printf("===============================================\n\n")
	fmt.Printf("  ✅ Working: %d\n", okCount)
	fmt.Printf("  ❌ Broken:  %d\n\n", errorCount)

	for _, d := range diagnostics {
		if d.Status == "OK" {
			fmt.Printf("✅ %s [%s]\n", d.Name, d.Kind)
			if d.ItemCount > 0 {
				fmt.Printf("   items: %d | latest: %s\n", d.ItemCount, d.LatestDate)
			}
			fmt.Printf("   %d bytes in %dms\n\n", d.ContentBytes, d.ResponseTime)
		} else {
			fmt.Printf("❌ %s [%s]: %s\n", d.Name, d.Kind, d.Status)
			fmt.Printf("   %s\n", d.URL)
			fmt.Printf("   %s\n\n", d.ErrorMessage)
		}
	}
}

func writeJSONReport(diagnostics []EndpointDiagnostic) {
	f, err := os.Create("source_diagnostic_report.json")
	if err != nil {
		log.Printf("Failed to create JSON report: %v", err)
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Failed to close JSON report file: %v", err)
		}
	}()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(diagnostics); err != nil {
		log.Printf("Failed to write JSON report: %v", err)
		return
	}

	log.Println("✅ JSON report generated: source_diagnostic_report.json")
}
