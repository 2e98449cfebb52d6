package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/amishk599/jobscout/internal/model"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	t.Setenv("JOBSCOUT_TEST_OPENAI_KEY", "sk-test")
	path := writeConfig(t, `
storage:
  driver: sqlite
  path: /tmp/jobs.db
sources:
  remoteok: true
  adzuna:
    enabled: true
    app_id: id
    app_key: key
    country: GB
  boards:
    - name: Acme
      ats: greenhouse
      board_token: acme
      enabled: true
  timeout: 10s
  retry:
    max_retries: 0
    base_delay: 500ms
  cache:
    enabled: true
    redis_url: redis://localhost:6379/0
    ttl: 15m
searches:
  - keywords: go engineer
    location: Remote
    job_type: full_time
    max_results: 5
enrichment:
  workers: 2
  timeout: 45s
  schedule: "@every 30m"
discovery:
  schedule: "0 */2 * * *"
ai:
  enabled: true
  api_key: ${JOBSCOUT_TEST_OPENAI_KEY}
  requests_per_minute: 30
server:
  addr: 127.0.0.1:9090
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Storage.Driver != "sqlite" || cfg.Storage.Path != "/tmp/jobs.db" {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if !cfg.Sources.RemoteOK || cfg.Sources.Indeed {
		t.Errorf("RemoteOK/Indeed = %v/%v", cfg.Sources.RemoteOK, cfg.Sources.Indeed)
	}
	if cfg.Sources.Adzuna.AppID != "id" || cfg.Sources.Adzuna.Country != "GB" {
		t.Errorf("Adzuna = %+v", cfg.Sources.Adzuna)
	}
	if len(cfg.Sources.Boards) != 1 || cfg.Sources.Boards[0].BoardToken != "acme" {
		t.Errorf("Boards = %+v", cfg.Sources.Boards)
	}
	if cfg.Sources.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v", cfg.Sources.Timeout)
	}
	if cfg.Sources.Retry.MaxRetries != 0 || cfg.Sources.Retry.BaseDelay != 500*time.Millisecond {
		t.Errorf("Retry = %+v", cfg.Sources.Retry)
	}
	if !cfg.Sources.Cache.Enabled || cfg.Sources.Cache.TTL != 15*time.Minute {
		t.Errorf("Cache = %+v", cfg.Sources.Cache)
	}

	if len(cfg.Searches) != 1 {
		t.Fatalf("Searches = %+v", cfg.Searches)
	}
	q := cfg.Searches[0]
	if q.Keywords != "go engineer" || q.Location != "Remote" || q.MaxResults != 5 {
		t.Errorf("search = %+v", q)
	}
	if q.JobType == nil || *q.JobType != model.JobTypeFullTime {
		t.Errorf("JobType = %v", q.JobType)
	}

	if cfg.Enrichment.Workers != 2 || cfg.Enrichment.Timeout != 45*time.Second || cfg.Enrichment.Schedule != "@every 30m" {
		t.Errorf("Enrichment = %+v", cfg.Enrichment)
	}
	if cfg.Discovery.Schedule != "0 */2 * * *" {
		t.Errorf("Discovery = %+v", cfg.Discovery)
	}
	if cfg.AI.APIKey != "sk-test" || cfg.AI.Provider != "openai" || cfg.AI.BaseURL != defaultOpenAIBaseURL || cfg.AI.Model != defaultOpenAIModel {
		t.Errorf("AI = %+v", cfg.AI)
	}
	if cfg.AI.RequestsPerMinute != 30 {
		t.Errorf("RequestsPerMinute = %d", cfg.AI.RequestsPerMinute)
	}
	if cfg.Server.Addr != "127.0.0.1:9090" {
		t.Errorf("Server = %+v", cfg.Server)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "sources:\n  remoteok: true\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Storage.Driver != "sqlite" || cfg.Storage.Path != defaultSQLitePath {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.Sources.Timeout != defaultSourceTimeout || cfg.Sources.Retry.MaxRetries != 2 {
		t.Errorf("Sources = %+v", cfg.Sources)
	}
	if cfg.Enrichment.Workers != defaultEnrichWorkers || cfg.Enrichment.Timeout != defaultEnrichTimeout {
		t.Errorf("Enrichment = %+v", cfg.Enrichment)
	}
	if cfg.Discovery.Schedule != defaultDiscoverySpec || cfg.Server.Addr != defaultServerAddr {
		t.Errorf("Discovery/Server = %+v/%+v", cfg.Discovery, cfg.Server)
	}

	want := model.SearchQuery{Keywords: "AI Engineer", Location: "United States", MaxResults: 20}
	if len(cfg.Searches) != 1 || cfg.Searches[0] != want {
		t.Errorf("Searches = %+v, want [%+v]", cfg.Searches, want)
	}
}

func TestLoad_Filters(t *testing.T) {
	cfg, err := Load(writeConfig(t, "sources:\n  remoteok: true\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Filters.Enabled() {
		t.Errorf("filters should be off by default: %+v", cfg.Filters)
	}

	cfg, err = Load(writeConfig(t, `
sources:
  remoteok: true
filters:
  title_keywords: [engineer, developer]
  locations: [remote]
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Filters.Enabled() || len(cfg.Filters.TitleKeywords) != 2 || cfg.Filters.Locations[0] != "remote" {
		t.Errorf("Filters = %+v", cfg.Filters)
	}
}

func TestLoad_OllamaDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "sources:\n  indeed: true\nai:\n  enabled: true\n  provider: Ollama\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AI.Provider != "ollama" || cfg.AI.BaseURL != defaultOllamaBaseURL || cfg.AI.Model != defaultOllamaModel {
		t.Errorf("AI = %+v", cfg.AI)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err == nil {
		t.Fatal("Load: expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "sources: [broken")); err == nil {
		t.Fatal("Load: expected error for invalid YAML")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"no sources", "storage:\n  driver: memory\n", "at least one source"},
		{"disabled board only", "sources:\n  boards:\n    - name: x\n      ats: greenhouse\n      enabled: false\n", "at least one source"},
		{"unknown ats", "sources:\n  boards:\n    - name: x\n      ats: workday\n      enabled: true\n", "ats must be"},
		{"unknown driver", "storage:\n  driver: mysql\nsources:\n  remoteok: true\n", "storage.driver"},
		{"postgres without dsn", "storage:\n  driver: postgres\nsources:\n  remoteok: true\n", "storage.dsn"},
		{"bad timeout", "sources:\n  remoteok: true\n  timeout: soon\n", "sources.timeout"},
		{"negative timeout", "sources:\n  remoteok: true\n  timeout: -1s\n", "sources.timeout"},
		{"cache without url", "sources:\n  remoteok: true\n  cache:\n    enabled: true\n", "redis_url"},
		{"negative workers", "sources:\n  remoteok: true\nenrichment:\n  workers: -1\n", "enrichment.workers"},
		{"unknown provider", "sources:\n  remoteok: true\nai:\n  provider: claude\n", "ai.provider"},
		{"openai without key", "sources:\n  remoteok: true\nai:\n  enabled: true\n", "ai.api_key"},
		{"empty search keywords", "sources:\n  remoteok: true\nsearches:\n  - location: Remote\n", "searches[0]"},
		{"bad search job type", "sources:\n  remoteok: true\nsearches:\n  - keywords: go\n    job_type: part_time\n", "searches[0]"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			if err == nil {
				t.Fatalf("expected error containing %q", tc.wantErr)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error = %v, want it to contain %q", err, tc.wantErr)
			}
		})
	}
}

func TestLoad_InvalidSearchIsInvalidQuery(t *testing.T) {
	_, err := Load(writeConfig(t, "sources:\n  remoteok: true\nsearches:\n  - keywords: go\n    max_results: -1\n"))
	if !errors.Is(err, model.ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
}
