package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobscout/internal/adapter"
	"github.com/amishk599/jobscout/internal/ai"
	"github.com/amishk599/jobscout/internal/cache"
	"github.com/amishk599/jobscout/internal/company"
	"github.com/amishk599/jobscout/internal/config"
	"github.com/amishk599/jobscout/internal/model"
	"github.com/amishk599/jobscout/internal/ratelimit"
	"github.com/amishk599/jobscout/internal/retry"
	"github.com/amishk599/jobscout/internal/store"
)

var (
	cfgPath   string
	debug     bool
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:           "jobscout",
	Short:         "Discover, dedupe and summarize job postings",
	Long:          "jobscout searches public job sources, stores each posting once, and summarizes new postings with an LLM for review.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runStart,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBSCOUT_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log output format: text or json")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > JOBSCOUT_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("JOBSCOUT_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: logLevel}
	if strings.EqualFold(logFormat, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// setup loads config and logger for a command. Failures are logged and
// returned so main exits non-zero.
func setup() (*config.Config, *slog.Logger, error) {
	logger := setupLogger(debug)
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return nil, logger, err
	}
	return cfg, logger, nil
}

// openStore opens the configured storage engine. dryRun forces the in-memory store.
func openStore(ctx context.Context, cfg config.StorageConfig, dryRun bool, logger *slog.Logger) (model.Store, error) {
	driver := cfg.Driver
	if dryRun {
		logger.Info("dry-run mode enabled, nothing will be persisted")
		driver = "memory"
	}

	switch driver {
	case "memory":
		return store.NewMemoryStore(), nil
	case "postgres":
		s, err := store.NewPostgresStore(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return s, nil
	default:
		s, err := store.NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store %s: %w", cfg.Path, err)
		}
		logger.Debug("opened sqlite store", "path", cfg.Path)
		return s, nil
	}
}

// createAdapters builds the raw adapters in registration order.
func createAdapters(cfg config.SourcesConfig, httpClient *http.Client, logger *slog.Logger) []model.SourceAdapter {
	var adapters []model.SourceAdapter
	if cfg.RemoteOK {
		adapters = append(adapters, adapter.NewRemoteOKAdapter(httpClient))
	}
	if cfg.Indeed {
		adapters = append(adapters, adapter.NewIndeedAdapter(httpClient))
	}
	if cfg.SerpAPI.Enabled {
		adapters = append(adapters, adapter.NewSerpAPIAdapter(cfg.SerpAPI.APIKey, httpClient))
	}
	if cfg.Adzuna.Enabled {
		adapters = append(adapters, adapter.NewAdzunaAdapter(cfg.Adzuna.AppID, cfg.Adzuna.AppKey, cfg.Adzuna.Country, httpClient))
	}
	for _, b := range cfg.Boards {
		if !b.Enabled {
			continue
		}
		switch b.ATS {
		case "greenhouse":
			adapters = append(adapters, adapter.NewGreenhouseAdapter(b.BoardToken, b.Name, httpClient))
		case "lever":
			adapters = append(adapters, adapter.NewLeverAdapter(b.BoardToken, b.Name, httpClient))
		default:
			logger.Warn("unsupported ATS, skipping", "board", b.Name, "ats", b.ATS)
		}
	}
	return adapters
}

// buildAdapters wraps every adapter with retries and, when enabled, the
// Redis fetch cache. The returned close func releases the cache connection.
func buildAdapters(ctx context.Context, cfg config.SourcesConfig, logger *slog.Logger) ([]model.SourceAdapter, func() error, error) {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	raw := createAdapters(cfg, httpClient, logger)

	closeFn := func() error { return nil }
	var fetchCache cache.Cache
	if cfg.Cache.Enabled {
		rc, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL)
		if err != nil {
			return nil, closeFn, fmt.Errorf("connect fetch cache: %w", err)
		}
		fetchCache = rc
		closeFn = rc.Close
		logger.Info("fetch cache enabled", "ttl", cfg.Cache.TTL.String())
	}

	adapters := make([]model.SourceAdapter, 0, len(raw))
	for _, a := range raw {
		var wrapped model.SourceAdapter = retry.NewAdapter(a, cfg.Retry.MaxRetries, cfg.Retry.BaseDelay, logger)
		if fetchCache != nil {
			wrapped = cache.NewAdapter(wrapped, fetchCache, cfg.Cache.TTL, logger)
		}
		adapters = append(adapters, wrapped)
	}
	return adapters, closeFn, nil
}

var errAIDisabled = errors.New("ai.enabled is false; enable it in the config to summarize postings")

// buildProvider returns the configured LLM provider, rate limited when
// ai.requests_per_minute is set. Share one provider to share the limit.
func buildProvider(cfg config.AIConfig) (ai.LLMProvider, error) {
	if !cfg.Enabled {
		return nil, errAIDisabled
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	var provider ai.LLMProvider
	switch cfg.Provider {
	case "ollama":
		provider = ai.NewOllamaProvider(cfg.BaseURL, cfg.Model, httpClient)
	default:
		provider = ai.NewOpenAIProvider(cfg.BaseURL, cfg.APIKey, cfg.Model, httpClient)
	}
	if cfg.RequestsPerMinute > 0 {
		provider = ratelimit.NewProvider(provider, cfg.RequestsPerMinute)
	}
	return provider, nil
}

// buildExtractor returns the configured LLM-backed extractor.
func buildExtractor(cfg config.AIConfig, logger *slog.Logger) (model.Extractor, error) {
	provider, err := buildProvider(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("ai extraction enabled", "provider", cfg.Provider, "model", cfg.Model)
	return ai.NewLLMExtractor(provider, ai.SummaryTemplate, logger), nil
}

// buildCompanies returns the company profile service. Without AI it only
// serves profiles that are already stored.
func buildCompanies(st model.CompanyStore, cfg config.AIConfig, logger *slog.Logger) *company.Service {
	provider, err := buildProvider(cfg)
	if err != nil {
		logger.Debug("company reviews disabled", "reason", err)
		return company.NewService(st, nil, logger)
	}
	return company.NewService(st, ai.NewLLMCompanyReviewer(provider, ai.CompanyTemplate, logger), logger)
}
