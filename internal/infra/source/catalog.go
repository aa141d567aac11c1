// Package source fetches the raw weather material that seeds the weekly
// digest: official tropical outlook feeds, keyword scans of news feeds,
// and plain text forecaster discussions. Every read path degrades to an
// empty string on failure so one dead source never sinks the report.
package source

import (
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"
)

// Endpoint names a single remote source.
type Endpoint struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Catalog lists the remote sources consulted when drafting a report.
// Outlook feeds contribute their newest entry, news feeds are scanned
// for storm keywords, and discussion texts are pulled verbatim.
type Catalog struct {
	OutlookFeeds    []Endpoint `yaml:"outlook_feeds"`
	NewsFeeds       []Endpoint `yaml:"news_feeds"`
	DiscussionTexts []Endpoint `yaml:"discussion_texts"`
}

// DefaultCatalog returns the built-in source list: the National
// Hurricane Center outlooks for the Atlantic and Pacific basins, a
// Google News weather feed for named-storm headlines, and the UW-SSEC
// mirror of forecaster discussions for basins the NHC does not cover.
func DefaultCatalog() Catalog {
	return Catalog{
		OutlookFeeds: []Endpoint{
			{Name: "nhc-atlantic", URL: "https://www.nhc.noaa.gov/xml/TWOAT.xml"},
			{Name: "nhc-east-pacific", URL: "https://www.nhc.noaa.gov/xml/TWOEP.xml"},
			{Name: "nhc-central-pacific", URL: "https://www.nhc.noaa.gov/xml/TWOCP.xml"},
		},
		NewsFeeds: []Endpoint{
			{Name: "google-news-weather", URL: "https://news.google.com/rss/topics/CAAqJggKIiBDQkFTRWdvSUwyMHZNRGx1YlY4U0FtVnVHZ0pWVXlnQVAB?hl=en-US&gl=US&ceid=US:en"},
		},
		DiscussionTexts: []Endpoint{
			{Name: "south-pacific", URL: "https://tropic.ssec.wisc.edu/real-time/misc/wxdisc21.txt"},
			{Name: "indian-ocean", URL: "https://tropic.ssec.wisc.edu/real-time/misc/wxdisc41.txt"},
			{Name: "west-pacific", URL: "https://tropic.ssec.wisc.edu/real-time/misc/wxdisc31.txt"},
		},
	}
}

// LoadCatalog reads a catalog override from a YAML file. Sections left
// empty in the file fall back to the built-in defaults, so an operator
// can swap the news feed without re-listing the NHC outlooks.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from operator configuration
	if err != nil {
		return Catalog{}, fmt.Errorf("read source catalog: %w", err)
	}

	var loaded Catalog
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return Catalog{}, fmt.Errorf("parse source catalog: %w", err)
	}

	defaults := DefaultCatalog()
	if len(loaded.OutlookFeeds) == 0 {
		loaded.OutlookFeeds = defaults.OutlookFeeds
	}
	if len(loaded.NewsFeeds) == 0 {
		loaded.NewsFeeds = defaults.NewsFeeds
	}
	if len(loaded.DiscussionTexts) == 0 {
		loaded.DiscussionTexts = defaults.DiscussionTexts
	}

	if err := loaded.Validate(); err != nil {
		return Catalog{}, fmt.Errorf("invalid source catalog: %w", err)
	}
	return loaded, nil
}

// Validate checks that every endpoint carries a name and an absolute
// http(s) URL.
func (c Catalog) Validate() error {
	for _, group := range [][]Endpoint{c.OutlookFeeds, c.NewsFeeds, c.DiscussionTexts} {
		for _, ep := range group {
			if ep.Name == "" {
				return fmt.Errorf("endpoint %q has no name", ep.URL)
			}
			u, err := url.Parse(ep.URL)
			if err != nil {
				return fmt.Errorf("endpoint %s: %w", ep.Name, err)
			}
			if u.Scheme != "http" && u.Scheme != "https" {
				return fmt.Errorf("endpoint %s: scheme %q not allowed (only http/https)", ep.Name, u.Scheme)
			}
			if u.Host == "" {
				return fmt.Errorf("endpoint %s: empty host", ep.Name)
			}
		}
	}
	return nil
}

// Size returns the total number of cataloged sources.
func (c Catalog) Size() int {
	return len(c.OutlookFeeds) + len(c.NewsFeeds) + len(c.DiscussionTexts)
}
