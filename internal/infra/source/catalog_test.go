package source_test

import (
	"os"
	"path/filepath"
	"testing"

	"stormbot/internal/infra/source"
)

func TestDefaultCatalog(t *testing.T) {
	catalog := source.DefaultCatalog()

	if len(catalog.OutlookFeeds) != 3 {
		t.Errorf("OutlookFeeds length = %d, want 3", len(catalog.OutlookFeeds))
	}
	if len(catalog.NewsFeeds) != 1 {
		t.Errorf("NewsFeeds length = %d, want 1", len(catalog.NewsFeeds))
	}
	if len(catalog.DiscussionTexts) != 3 {
		t.Errorf("DiscussionTexts length = %d, want 3", len(catalog.DiscussionTexts))
	}
	if catalog.Size() != 7 {
		t.Errorf("Size() = %d, want 7", catalog.Size())
	}
	if err := catalog.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestLoadCatalog_PartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	yaml := `news_feeds:
  - name: custom-news
    url: https://news.example.com/rss
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	catalog, err := source.LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}

	if len(catalog.NewsFeeds) != 1 || catalog.NewsFeeds[0].Name != "custom-news" {
		t.Errorf("NewsFeeds = %+v, want the override", catalog.NewsFeeds)
	}
	// Sections absent from the file keep their defaults.
	if len(catalog.OutlookFeeds) != 3 {
		t.Errorf("OutlookFeeds length = %d, want 3 defaults", len(catalog.OutlookFeeds))
	}
	if len(catalog.DiscussionTexts) != 3 {
		t.Errorf("DiscussionTexts length = %d, want 3 defaults", len(catalog.DiscussionTexts))
	}
}

func TestLoadCatalog_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	if err := os.WriteFile(path, []byte(":\n  - not yaml"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if _, err := source.LoadCatalog(path); err == nil {
		t.Fatal("LoadCatalog() error = nil, want parse error")
	}
}

func TestLoadCatalog_MissingFile(t *testing.T) {
	if _, err := source.LoadCatalog(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("LoadCatalog() error = nil, want read error")
	}
}

func TestLoadCatalog_RejectsBadScheme(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	yaml := `discussion_texts:
  - name: local-file
    url: file:///etc/passwd
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if _, err := source.LoadCatalog(path); err == nil {
		t.Fatal("LoadCatalog() error = nil, want scheme validation error")
	}
}

func TestCatalog_Validate_RequiresName(t *testing.T) {
	catalog := source.Catalog{
		OutlookFeeds: []source.Endpoint{{URL: "https://example.com/feed.xml"}},
	}
	if err := catalog.Validate(); err == nil {
		t.Fatal("Validate() error = nil, want missing-name error")
	}
}
