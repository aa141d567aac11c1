// Package config loads Stormbot's runtime configuration from the environment
// and validates it against the actions an invocation performs. Loading never
// fails; validation does, because a missing credential should stop the
// process before it fetches a single source.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	env "stormbot/pkg/config"
)

// Generation backends selectable through STORMBOT_GENERATOR.
const (
	BackendOpenAI = "openai"
	BackendClaude = "claude"

	// BackendNoop drafts placeholder text without calling any provider.
	// Useful for wiring checks and cron dry runs.
	BackendNoop = "noop"
)

// Action describes what one invocation will do. Validate only demands the
// settings those actions need, so a draft-only run works without a webhook
// and a publish-only run works without an API key.
type Action struct {
	Draft   bool
	Publish bool
}

// GeneratorConfig selects and authenticates the text generation backend.
type GeneratorConfig struct {
	// Backend is one of openai, claude, or noop.
	Backend string

	// Model overrides the backend's default model when non-empty.
	Model string

	// OpenAIKey and OpenAIOrg authenticate the openai backend. The
	// organization is optional.
	OpenAIKey string
	OpenAIOrg string

	// AnthropicKey authenticates the claude backend.
	AnthropicKey string
}

// WebhookConfig points at the Slack Incoming Webhook that receives the
// published digest.
type WebhookConfig struct {
	URL     string
	Timeout time.Duration
}

// SourceConfig tunes where storm content comes from.
type SourceConfig struct {
	// CatalogFile optionally replaces the built-in source catalog with a
	// YAML file. Empty means built-in.
	CatalogFile string

	// ScanKeywords optionally replaces the default news scanning keywords.
	ScanKeywords []string

	// ScanWindow bounds how old a scanned news entry may be.
	ScanWindow time.Duration

	// ArticlesEnabled controls whether scanner hits are expanded with the
	// linked article body. Disabling it keeps runs to feed text only.
	ArticlesEnabled bool
}

// Config is the full runtime configuration for one invocation.
type Config struct {
	Generator GeneratorConfig
	Webhook   WebhookConfig
	Source    SourceConfig

	// ContentDir holds the working draft and the archived digests.
	ContentDir string
}

// Load reads the configuration from the environment, applying defaults for
// anything unset. Nothing is validated here; call Validate with the actions
// the invocation performs.
func Load() *Config {
	return &Config{
		Generator: GeneratorConfig{
			Backend:      env.GetEnvString("STORMBOT_GENERATOR", BackendOpenAI),
			Model:        env.GetEnvString("STORMBOT_MODEL", ""),
			OpenAIKey:    env.GetEnvString("OPENAI_API_KEY", ""),
			OpenAIOrg:    env.GetEnvString("OPENAI_ORG", ""),
			AnthropicKey: env.GetEnvString("ANTHROPIC_API_KEY", ""),
		},
		Webhook: WebhookConfig{
			URL:     env.GetEnvString("STORMBOT_SLACK_WEBHOOK", ""),
			Timeout: env.GetEnvDuration("STORMBOT_WEBHOOK_TIMEOUT", 30*time.Second),
		},
		Source: SourceConfig{
			CatalogFile:     env.GetEnvString("STORMBOT_SOURCES_FILE", ""),
			ScanKeywords:    env.GetEnvStringList("STORMBOT_SCAN_KEYWORDS", nil),
			ScanWindow:      env.GetEnvDuration("STORMBOT_SCAN_WINDOW", 7*24*time.Hour),
			ArticlesEnabled: env.GetEnvBool("STORMBOT_ARTICLES_ENABLED", true),
		},
		ContentDir: env.GetEnvString("STORMBOT_CONTENT_DIR", "content"),
	}
}

// Validate checks that the settings the requested actions need are present
// and well formed.
func (c *Config) Validate(action Action) error {
	if c.ContentDir == "" {
		return fmt.Errorf("STORMBOT_CONTENT_DIR cannot be empty")
	}
	if err := env.ValidatePositiveDuration(c.Source.ScanWindow); err != nil {
		return fmt.Errorf("STORMBOT_SCAN_WINDOW: %w", err)
	}
	if action.Draft {
		if err := c.Generator.validate(); err != nil {
			return err
		}
	}
	if action.Publish {
		if err := c.Webhook.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (g *GeneratorConfig) validate() error {
	switch g.Backend {
	case BackendOpenAI:
		if g.OpenAIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when STORMBOT_GENERATOR=%s", BackendOpenAI)
		}
	case BackendClaude:
		if g.AnthropicKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required when STORMBOT_GENERATOR=%s", BackendClaude)
		}
	case BackendNoop:
		// No credentials needed.
	default:
		return fmt.Errorf("STORMBOT_GENERATOR must be one of %s, %s, %s; got %q",
			BackendOpenAI, BackendClaude, BackendNoop, g.Backend)
	}
	return nil
}

// validate rejects anything that is not an HTTPS Slack Incoming Webhook URL.
func (w *WebhookConfig) validate() error {
	if w.URL == "" {
		return fmt.Errorf("STORMBOT_SLACK_WEBHOOK is required when publishing")
	}
	u, err := url.Parse(w.URL)
	if err != nil {
		return fmt.Errorf("STORMBOT_SLACK_WEBHOOK is not a valid URL: %w", err)
	}
	if u.Scheme != "https" {
		return fmt.Errorf("STORMBOT_SLACK_WEBHOOK must use https, got %q", u.Scheme)
	}
	if u.Host != "hooks.slack.com" {
		return fmt.Errorf("STORMBOT_SLACK_WEBHOOK host must be hooks.slack.com, got %q", u.Host)
	}
	if !strings.HasPrefix(u.Path, "/services/") {
		return fmt.Errorf("STORMBOT_SLACK_WEBHOOK path must start with /services/")
	}
	if err := env.ValidatePositiveDuration(w.Timeout); err != nil {
		return fmt.Errorf("STORMBOT_WEBHOOK_TIMEOUT: %w", err)
	}
	return nil
}
