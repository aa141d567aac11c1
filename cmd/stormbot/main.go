package main

import (
	"bufio"
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"stormbot/internal/config"
	"stormbot/internal/infra/generator"
	"stormbot/internal/infra/notifier"
	"stormbot/internal/infra/source"
	"stormbot/internal/infra/store"
	"stormbot/internal/observability/logging"
	"stormbot/internal/usecase/report"
)

func main() {
	draft := flag.Bool("draft", false, "compose a new draft digest")
	publish := flag.Bool("publish", false, "deliver the stored draft to Slack and archive it")
	serve := flag.Bool("serve", false, "run as a scheduler daemon instead of a one-shot command")
	flag.Parse()

	logger := initLogger()

	if *serve {
		if *draft || *publish {
			logger.Error("-serve cannot be combined with -draft or -publish")
			os.Exit(1)
		}
		if err := runServe(logger); err != nil {
			logger.Error("scheduler stopped", slog.Any("error", err))
			os.Exit(1)
		}
		return
	}

	action := config.Action{Draft: *draft, Publish: *publish}
	if !action.Draft && !action.Publish {
		var err error
		action, err = promptAction(os.Stdin, os.Stdout)
		if err != nil {
			logger.Error("could not determine action", slog.Any("error", err))
			os.Exit(1)
		}
	}

	cfg := config.Load()
	if err := cfg.Validate(action); err != nil {
		logger.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	svc, err := buildService(logger, cfg)
	if err != nil {
		logger.Error("failed to assemble digest pipeline", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if action.Draft {
		if _, err := svc.Draft(ctx); err != nil {
			logger.Error("draft failed", slog.String("error", logging.SanitizeError(err)))
			os.Exit(1)
		}
	}
	if action.Publish {
		if _, err := svc.Publish(ctx); err != nil {
			logger.Error("publish failed", slog.String("error", logging.SanitizeError(err)))
			os.Exit(1)
		}
	}
}

// initLogger installs the JSON logger as the process default so the
// packages that log through slog.Default share its level and output.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// promptAction asks the operator what to do when neither flag said so.
// EOF without a newline still counts as an answer, so piped input works.
func promptAction(in io.Reader, out io.Writer) (config.Action, error) {
	fmt.Fprint(out, "Draft or publish? ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return config.Action{}, fmt.Errorf("read answer: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "draft":
		return config.Action{Draft: true}, nil
	case "publish":
		return config.Action{Publish: true}, nil
	default:
		return config.Action{}, fmt.Errorf("answer %q is not draft or publish", strings.TrimSpace(line))
	}
}

// buildService wires the full digest pipeline from the loaded configuration:
// source catalog and fetchers, generation backend with its retry client, the
// draft store, and the Slack notifier.
func buildService(logger *slog.Logger, cfg *config.Config) (*report.Service, error) {
	catalog, err := loadCatalog(logger, cfg)
	if err != nil {
		return nil, err
	}

	httpClient := createHTTPClient()

	scan := source.DefaultScanConfig()
	if len(cfg.Source.ScanKeywords) > 0 {
		scan.Keywords = cfg.Source.ScanKeywords
	}
	scan.Window = cfg.Source.ScanWindow

	feeds := source.NewFeedReader(httpClient, scan)
	texts := source.NewPlainTextFetcher(httpClient)

	var articles *source.ArticleFetcher
	if cfg.Source.ArticlesEnabled {
		articles = source.NewArticleFetcher(source.DefaultArticleConfig())
	} else {
		logger.Info("article enhancement disabled")
	}

	aggregator := source.NewAggregator(catalog, feeds, texts, articles)

	backend, err := createBackend(logger, cfg.Generator)
	if err != nil {
		return nil, err
	}
	gen := generator.NewClient(backend, generator.DefaultRetryPolicy())

	drafts := store.NewDraftStore(cfg.ContentDir)

	var digests report.DigestNotifier
	if cfg.Webhook.URL != "" {
		digests = notifier.NewSlackNotifier(notifier.SlackConfig{
			WebhookURL: cfg.Webhook.URL,
			Timeout:    cfg.Webhook.Timeout,
		})
	} else {
		// Draft-only invocations carry no webhook; a publish without one
		// was already rejected by Validate.
		digests = notifier.NewNoOp()
	}

	return report.NewService(aggregator, gen, drafts, digests, report.Options{}), nil
}

// loadCatalog returns the built-in source catalog, or the operator's YAML
// override when STORMBOT_SOURCES_FILE points at one.
func loadCatalog(logger *slog.Logger, cfg *config.Config) (source.Catalog, error) {
	if cfg.Source.CatalogFile == "" {
		return source.DefaultCatalog(), nil
	}

	catalog, err := source.LoadCatalog(cfg.Source.CatalogFile)
	if err != nil {
		return source.Catalog{}, fmt.Errorf("load source catalog: %w", err)
	}
	logger.Info("source catalog loaded",
		slog.String("file", cfg.Source.CatalogFile),
		slog.Int("sources", catalog.Size()))
	return catalog, nil
}

// createBackend selects the generation backend named by STORMBOT_GENERATOR.
func createBackend(logger *slog.Logger, cfg config.GeneratorConfig) (generator.Backend, error) {
	switch cfg.Backend {
	case config.BackendOpenAI:
		model := cfg.Model
		if model == "" {
			model = generator.DefaultOpenAIModel
		}
		logger.Info("using OpenAI for generation", slog.String("model", model))
		return generator.NewOpenAIBackend(cfg.OpenAIKey, cfg.OpenAIOrg, cfg.Model), nil
	case config.BackendClaude:
		model := cfg.Model
		if model == "" {
			model = generator.DefaultClaudeModel
		}
		logger.Info("using Claude for generation", slog.String("model", model))
		return generator.NewClaudeBackend(cfg.AnthropicKey, cfg.Model), nil
	case config.BackendNoop:
		logger.Info("using dry-run generation backend")
		return generator.NewNoOpBackend(), nil
	default:
		return nil, fmt.Errorf("unknown generator backend %q", cfg.Backend)
	}
}

// createHTTPClient creates the HTTP client shared by the feed and plain text
// fetchers, with connection pooling and TLS 1.2+ enforced.
func createHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
}
