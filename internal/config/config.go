package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/amishk599/jobscout/internal/model"
)

// Config is the root configuration for jobscout.
type Config struct {
	Storage    StorageConfig
	Sources    SourcesConfig
	Searches   []model.SearchQuery
	Filters    FilterConfig
	Enrichment EnrichmentConfig
	Discovery  DiscoveryConfig
	AI         AIConfig
	Server     ServerConfig
}

// StorageConfig selects the storage engine.
type StorageConfig struct {
	Driver string `yaml:"driver"` // "sqlite", "postgres" or "memory"
	Path   string `yaml:"path"`   // sqlite database file
	DSN    string `yaml:"dsn"`    // postgres connection string
}

// SourcesConfig lists the posting sources and how they are called.
type SourcesConfig struct {
	RemoteOK bool
	Indeed   bool
	SerpAPI  SerpAPIConfig
	Adzuna   AdzunaConfig
	Boards   []BoardConfig
	Timeout  time.Duration // per-source fetch timeout
	Retry    RetryConfig
	Cache    CacheConfig
}

type SerpAPIConfig struct {
	Enabled bool   `yaml:"enabled"`
	APIKey  string `yaml:"api_key"`
}

type AdzunaConfig struct {
	Enabled bool   `yaml:"enabled"`
	AppID   string `yaml:"app_id"`
	AppKey  string `yaml:"app_key"`
	Country string `yaml:"country"`
}

// BoardConfig describes a single company board on a hosted ATS.
type BoardConfig struct {
	Name       string `yaml:"name"`
	ATS        string `yaml:"ats"` // "greenhouse" or "lever"
	BoardToken string `yaml:"board_token"`
	Enabled    bool   `yaml:"enabled"`
}

// RetryConfig controls retries of transient source failures.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// CacheConfig controls the optional Redis read-through cache for source fetches.
type CacheConfig struct {
	Enabled  bool
	RedisURL string
	TTL      time.Duration
}

// FilterConfig narrows aggregated results before they are stored. Empty
// lists match everything.
type FilterConfig struct {
	TitleKeywords []string `yaml:"title_keywords"`
	Locations     []string `yaml:"locations"`
}

// Enabled reports whether any filter term is configured.
func (f FilterConfig) Enabled() bool {
	return len(f.TitleKeywords) > 0 || len(f.Locations) > 0
}

// EnrichmentConfig tunes the enrichment pipeline.
type EnrichmentConfig struct {
	Workers  int
	Timeout  time.Duration // per-extraction timeout
	Schedule string        // cron spec; empty runs after each discovery cycle
}

// DiscoveryConfig holds the cron spec for discovery runs.
type DiscoveryConfig struct {
	Schedule string
}

// AIConfig controls the LLM used for structured extraction.
type AIConfig struct {
	Enabled           bool
	Provider          string // "openai" or "ollama"
	BaseURL           string
	Model             string
	APIKey            string        // expanded from env var by Load
	Timeout           time.Duration // per-request timeout
	RequestsPerMinute int           // 0 disables throttling
}

// ServerConfig holds the read API listen address.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

const (
	defaultSQLitePath     = "jobscout.db"
	defaultOpenAIBaseURL  = "https://api.openai.com/v1"
	defaultOpenAIModel    = "gpt-4o-mini"
	defaultOllamaBaseURL  = "http://localhost:11434"
	defaultOllamaModel    = "llama3.1"
	defaultDiscoverySpec  = "@every 6h"
	defaultServerAddr     = ":8080"
	defaultEnrichWorkers  = 4
	defaultSourceTimeout  = 30 * time.Second
	defaultEnrichTimeout  = 60 * time.Second
	defaultAITimeout      = 30 * time.Second
	defaultRetryBaseDelay = time.Second
	defaultCacheTTL       = time.Hour
)

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	Storage    StorageConfig       `yaml:"storage"`
	Sources    rawSourcesConfig    `yaml:"sources"`
	Searches   []rawSearch         `yaml:"searches"`
	Filters    FilterConfig        `yaml:"filters"`
	Enrichment rawEnrichmentConfig `yaml:"enrichment"`
	Discovery  rawDiscoveryConfig  `yaml:"discovery"`
	AI         rawAIConfig         `yaml:"ai"`
	Server     ServerConfig        `yaml:"server"`
}

type rawSourcesConfig struct {
	RemoteOK bool           `yaml:"remoteok"`
	Indeed   bool           `yaml:"indeed"`
	SerpAPI  SerpAPIConfig  `yaml:"serpapi"`
	Adzuna   AdzunaConfig   `yaml:"adzuna"`
	Boards   []BoardConfig  `yaml:"boards"`
	Timeout  string         `yaml:"timeout"`
	Retry    rawRetryConfig `yaml:"retry"`
	Cache    rawCacheConfig `yaml:"cache"`
}

type rawRetryConfig struct {
	MaxRetries *int   `yaml:"max_retries"`
	BaseDelay  string `yaml:"base_delay"`
}

type rawCacheConfig struct {
	Enabled  bool   `yaml:"enabled"`
	RedisURL string `yaml:"redis_url"`
	TTL      string `yaml:"ttl"`
}

type rawSearch struct {
	Keywords        string `yaml:"keywords"`
	Location        string `yaml:"location"`
	JobType         string `yaml:"job_type"`
	ExperienceLevel string `yaml:"experience_level"`
	RemoteOK        bool   `yaml:"remote_ok"`
	MaxResults      int    `yaml:"max_results"`
}

type rawEnrichmentConfig struct {
	Workers  int    `yaml:"workers"`
	Timeout  string `yaml:"timeout"`
	Schedule string `yaml:"schedule"`
}

type rawDiscoveryConfig struct {
	Schedule string `yaml:"schedule"`
}

type rawAIConfig struct {
	Enabled           bool   `yaml:"enabled"`
	Provider          string `yaml:"provider"`
	BaseURL           string `yaml:"base_url"`
	Model             string `yaml:"model"`
	APIKey            string `yaml:"api_key"`
	Timeout           string `yaml:"timeout"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse builds a Config from YAML bytes. ${VAR} references are expanded first.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	sourceTimeout, err := parseDuration("sources.timeout", raw.Sources.Timeout, defaultSourceTimeout)
	if err != nil {
		return nil, err
	}
	retryDelay, err := parseDuration("sources.retry.base_delay", raw.Sources.Retry.BaseDelay, defaultRetryBaseDelay)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parseDuration("sources.cache.ttl", raw.Sources.Cache.TTL, defaultCacheTTL)
	if err != nil {
		return nil, err
	}
	enrichTimeout, err := parseDuration("enrichment.timeout", raw.Enrichment.Timeout, defaultEnrichTimeout)
	if err != nil {
		return nil, err
	}
	aiTimeout, err := parseDuration("ai.timeout", raw.AI.Timeout, defaultAITimeout)
	if err != nil {
		return nil, err
	}

	maxRetries := 2
	if raw.Sources.Retry.MaxRetries != nil {
		maxRetries = *raw.Sources.Retry.MaxRetries
	}

	searches, err := buildSearches(raw.Searches)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Storage: raw.Storage,
		Sources: SourcesConfig{
			RemoteOK: raw.Sources.RemoteOK,
			Indeed:   raw.Sources.Indeed,
			SerpAPI:  raw.Sources.SerpAPI,
			Adzuna:   raw.Sources.Adzuna,
			Boards:   raw.Sources.Boards,
			Timeout:  sourceTimeout,
			Retry: RetryConfig{
				MaxRetries: maxRetries,
				BaseDelay:  retryDelay,
			},
			Cache: CacheConfig{
				Enabled:  raw.Sources.Cache.Enabled,
				RedisURL: raw.Sources.Cache.RedisURL,
				TTL:      cacheTTL,
			},
		},
		Searches: searches,
		Filters:  raw.Filters,
		Enrichment: EnrichmentConfig{
			Workers:  raw.Enrichment.Workers,
			Timeout:  enrichTimeout,
			Schedule: strings.TrimSpace(raw.Enrichment.Schedule),
		},
		Discovery: DiscoveryConfig{Schedule: strings.TrimSpace(raw.Discovery.Schedule)},
		AI: AIConfig{
			Enabled:           raw.AI.Enabled,
			Provider:          strings.ToLower(strings.TrimSpace(raw.AI.Provider)),
			BaseURL:           strings.TrimRight(raw.AI.BaseURL, "/"),
			Model:             raw.AI.Model,
			APIKey:            raw.AI.APIKey,
			Timeout:           aiTimeout,
			RequestsPerMinute: raw.AI.RequestsPerMinute,
		},
		Server: raw.Server,
	}
	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseDuration(field, value string, def time.Duration) (time.Duration, error) {
	if value == "" {
		return def, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", field, value, err)
	}
	return d, nil
}

// buildSearches converts configured searches, falling back to the default
// query when none are listed.
func buildSearches(raws []rawSearch) ([]model.SearchQuery, error) {
	if len(raws) == 0 {
		return []model.SearchQuery{DefaultSearch()}, nil
	}

	searches := make([]model.SearchQuery, 0, len(raws))
	for i, r := range raws {
		q := model.SearchQuery{
			Keywords:   strings.TrimSpace(r.Keywords),
			Location:   strings.TrimSpace(r.Location),
			RemoteOK:   r.RemoteOK,
			MaxResults: r.MaxResults,
		}
		if r.JobType != "" {
			jt := model.JobType(strings.ToUpper(r.JobType))
			q.JobType = &jt
		}
		if r.ExperienceLevel != "" {
			lvl := model.ExperienceLevel(strings.ToUpper(r.ExperienceLevel))
			q.ExperienceLevel = &lvl
		}
		q = q.WithDefaults()
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("searches[%d]: %w", i, err)
		}
		searches = append(searches, q)
	}
	return searches, nil
}

// DefaultSearch is the query used when no searches are configured.
func DefaultSearch() model.SearchQuery {
	return model.SearchQuery{Keywords: model.DefaultKeywords}.WithDefaults()
}

func applyDefaults(cfg *Config) {
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "sqlite"
	}
	if cfg.Storage.Driver == "sqlite" && cfg.Storage.Path == "" {
		cfg.Storage.Path = defaultSQLitePath
	}
	if cfg.Enrichment.Workers == 0 {
		cfg.Enrichment.Workers = defaultEnrichWorkers
	}
	if cfg.Discovery.Schedule == "" {
		cfg.Discovery.Schedule = defaultDiscoverySpec
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultServerAddr
	}
	if cfg.Sources.Adzuna.Country == "" {
		cfg.Sources.Adzuna.Country = "us"
	}

	if cfg.AI.Provider == "" {
		cfg.AI.Provider = "openai"
	}
	switch cfg.AI.Provider {
	case "openai":
		if cfg.AI.BaseURL == "" {
			cfg.AI.BaseURL = defaultOpenAIBaseURL
		}
		if cfg.AI.Model == "" {
			cfg.AI.Model = defaultOpenAIModel
		}
	case "ollama":
		if cfg.AI.BaseURL == "" {
			cfg.AI.BaseURL = defaultOllamaBaseURL
		}
		if cfg.AI.Model == "" {
			cfg.AI.Model = defaultOllamaModel
		}
	}
}

func validate(cfg *Config) error {
	switch cfg.Storage.Driver {
	case "sqlite", "memory":
	case "postgres":
		if cfg.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required when storage.driver is \"postgres\"")
		}
	default:
		return fmt.Errorf("storage.driver must be sqlite, postgres or memory, got %q", cfg.Storage.Driver)
	}

	enabled := 0
	if cfg.Sources.RemoteOK {
		enabled++
	}
	if cfg.Sources.Indeed {
		enabled++
	}
	if cfg.Sources.SerpAPI.Enabled {
		enabled++
	}
	if cfg.Sources.Adzuna.Enabled {
		enabled++
	}
	for i, b := range cfg.Sources.Boards {
		if !b.Enabled {
			continue
		}
		enabled++
		if b.Name == "" {
			return fmt.Errorf("sources.boards[%d].name is required", i)
		}
		if b.ATS != "greenhouse" && b.ATS != "lever" {
			return fmt.Errorf("sources.boards[%d] (%s): ats must be greenhouse or lever, got %q", i, b.Name, b.ATS)
		}
	}
	if enabled == 0 {
		return fmt.Errorf("at least one source must be enabled")
	}

	if cfg.Sources.Timeout <= 0 {
		return fmt.Errorf("sources.timeout must be positive, got %v", cfg.Sources.Timeout)
	}
	if cfg.Sources.Retry.MaxRetries < 0 {
		return fmt.Errorf("sources.retry.max_retries must not be negative, got %d", cfg.Sources.Retry.MaxRetries)
	}
	if cfg.Sources.Cache.Enabled {
		if cfg.Sources.Cache.RedisURL == "" {
			return fmt.Errorf("sources.cache.redis_url is required when sources.cache.enabled is true")
		}
		if cfg.Sources.Cache.TTL <= 0 {
			return fmt.Errorf("sources.cache.ttl must be positive, got %v", cfg.Sources.Cache.TTL)
		}
	}

	if cfg.Enrichment.Workers < 1 {
		return fmt.Errorf("enrichment.workers must be at least 1, got %d", cfg.Enrichment.Workers)
	}
	if cfg.Enrichment.Timeout <= 0 {
		return fmt.Errorf("enrichment.timeout must be positive, got %v", cfg.Enrichment.Timeout)
	}

	if cfg.AI.Provider != "openai" && cfg.AI.Provider != "ollama" {
		return fmt.Errorf("ai.provider must be openai or ollama, got %q", cfg.AI.Provider)
	}
	if cfg.AI.RequestsPerMinute < 0 {
		return fmt.Errorf("ai.requests_per_minute must not be negative, got %d", cfg.AI.RequestsPerMinute)
	}
	if cfg.AI.Enabled && cfg.AI.Provider == "openai" && cfg.AI.APIKey == "" {
		return fmt.Errorf("ai.api_key is required when ai.provider is \"openai\"")
	}

	return nil
}
