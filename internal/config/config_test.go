package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// validEnv sets the minimum required env vars for a valid config.
func validEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_DSN", "postgres://u:p@localhost:5432/testdb")
	t.Setenv("LEXICON_ANALYZER_TABLE_PATH", writeFile(t, t.TempDir(), "analyzer.tsv", "acâhkos\tacâhkos+N+A+Sg\n"))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	return writeFile(t, dir, "config.yaml", content)
}

const validYAMLTemplate = `
server:
  host: "127.0.0.1"
  port: 9090
  read_timeout: "5s"
  write_timeout: "15s"
  idle_timeout: "30s"
  shutdown_timeout: "5s"

database:
  dsn: "postgres://u:p@localhost:5432/testdb"
  max_conns: 10
  min_conns: 2

log:
  level: "debug"
  format: "text"

search:
  default_include_auto_definitions: true
  request_timeout: "2s"
  max_results: 40
  verbose_allowed: false
  preverbs: false

lexicon:
  analyzer_table_path: %q
  morpheme_rankings_path: %q

rate_limit:
  enabled: true
  per_minute: 30
  cleanup_interval: "1m"
`

// validYAML renders the template with data files that exist on disk.
func validYAML(t *testing.T, dir string) string {
	t.Helper()
	table := writeFile(t, dir, "analyzer.tsv", "acâhkos\tacâhkos+N+A+Sg\n")
	rankings := writeFile(t, dir, "rankings.tsv", "acâhkos\t1.5\n")
	return fmt.Sprintf(validYAMLTemplate, table, rankings)
}

func TestLoad_ValidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, validYAML(t, dir))
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Server
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("server.host = %q, want %q", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("server.port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("server.read_timeout = %v, want %v", cfg.Server.ReadTimeout, 5*time.Second)
	}

	// Database
	if cfg.Database.DSN != "postgres://u:p@localhost:5432/testdb" {
		t.Errorf("database.dsn = %q", cfg.Database.DSN)
	}
	if cfg.Database.MaxConns != 10 {
		t.Errorf("database.max_conns = %d, want 10", cfg.Database.MaxConns)
	}

	// Log
	if cfg.Log.Level != "debug" {
		t.Errorf("log.level = %q, want %q", cfg.Log.Level, "debug")
	}
	if cfg.Log.Format != "text" {
		t.Errorf("log.format = %q, want %q", cfg.Log.Format, "text")
	}

	// Search
	if !cfg.Search.DefaultIncludeAutoDefinitions {
		t.Error("search.default_include_auto_definitions should be true")
	}
	if cfg.Search.RequestTimeout != 2*time.Second {
		t.Errorf("search.request_timeout = %v, want 2s", cfg.Search.RequestTimeout)
	}
	if cfg.Search.MaxResults != 40 {
		t.Errorf("search.max_results = %d, want 40", cfg.Search.MaxResults)
	}
	if cfg.Search.VerboseAllowed {
		t.Error("search.verbose_allowed should be false")
	}
	if cfg.Search.Preverbs {
		t.Error("search.preverbs should be false")
	}

	// Lexicon
	if filepath.Base(cfg.Lexicon.AnalyzerTablePath) != "analyzer.tsv" {
		t.Errorf("lexicon.analyzer_table_path = %q", cfg.Lexicon.AnalyzerTablePath)
	}
	if filepath.Base(cfg.Lexicon.MorphemeRankingsPath) != "rankings.tsv" {
		t.Errorf("lexicon.morpheme_rankings_path = %q", cfg.Lexicon.MorphemeRankingsPath)
	}

	// Rate limit
	if cfg.RateLimit.PerMinute != 30 {
		t.Errorf("rate_limit.per_minute = %d, want 30", cfg.RateLimit.PerMinute)
	}
	if cfg.RateLimit.CleanupInterval != time.Minute {
		t.Errorf("rate_limit.cleanup_interval = %v, want 1m", cfg.RateLimit.CleanupInterval)
	}
}

func TestLoad_ENVOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, validYAML(t, dir))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("SERVER_PORT", "3000")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("SEARCH_MAX_RESULTS", "7")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("server.port = %d, want 3000 (ENV override)", cfg.Server.Port)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log.level = %q, want %q (ENV override)", cfg.Log.Level, "warn")
	}
	if cfg.Search.MaxResults != 7 {
		t.Errorf("search.max_results = %d, want 7 (ENV override)", cfg.Search.MaxResults)
	}
}

func TestLoad_NoFile_ENVOnly(t *testing.T) {
	validEnv(t)

	t.Setenv("CONFIG_PATH", "")
	origDir, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	_ = os.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080 (default)", cfg.Server.Port)
	}
	if cfg.Search.MaxResults != 100 {
		t.Errorf("search.max_results = %d, want 100 (default)", cfg.Search.MaxResults)
	}
	if cfg.Search.RequestTimeout != 5*time.Second {
		t.Errorf("search.request_timeout = %v, want 5s (default)", cfg.Search.RequestTimeout)
	}
	if !cfg.Search.Preverbs {
		t.Error("search.preverbs should default to true")
	}
	if cfg.Search.DefaultIncludeAutoDefinitions {
		t.Error("search.default_include_auto_definitions should default to false")
	}
	if !cfg.Search.VerboseAllowed {
		t.Error("search.verbose_allowed should default to true")
	}
	if !cfg.RateLimit.Enabled {
		t.Error("rate_limit.enabled should default to true")
	}
}

func TestLoad_YAMLBooleans(t *testing.T) {
	tests := []struct {
		name        string
		yaml        string
		env         map[string]string
		wantVerbose bool
		wantPreverb bool
		wantLimit   bool
	}{
		{
			name:        "omitted keys keep defaults",
			yaml:        "search:\n  max_results: 10\n",
			wantVerbose: true, wantPreverb: true, wantLimit: true,
		},
		{
			name:        "false disables",
			yaml:        "search:\n  verbose_allowed: false\n  preverbs: false\nrate_limit:\n  enabled: false\n",
			wantVerbose: false, wantPreverb: false, wantLimit: false,
		},
		{
			name:        "env wins over yaml false",
			yaml:        "search:\n  preverbs: false\nrate_limit:\n  enabled: false\n",
			env:         map[string]string{"SEARCH_PREVERBS": "true", "RATE_LIMIT_ENABLED": "true"},
			wantVerbose: true, wantPreverb: true, wantLimit: true,
		},
		{
			name:        "env false over yaml true",
			yaml:        "search:\n  verbose_allowed: true\n",
			env:         map[string]string{"SEARCH_VERBOSE_ALLOWED": "false"},
			wantVerbose: false, wantPreverb: true, wantLimit: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validEnv(t)
			t.Setenv("CONFIG_PATH", writeYAML(t, t.TempDir(), tt.yaml))
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.Search.VerboseAllowed != tt.wantVerbose {
				t.Errorf("search.verbose_allowed = %v, want %v", cfg.Search.VerboseAllowed, tt.wantVerbose)
			}
			if cfg.Search.Preverbs != tt.wantPreverb {
				t.Errorf("search.preverbs = %v, want %v", cfg.Search.Preverbs, tt.wantPreverb)
			}
			if cfg.RateLimit.Enabled != tt.wantLimit {
				t.Errorf("rate_limit.enabled = %v, want %v", cfg.RateLimit.Enabled, tt.wantLimit)
			}
		})
	}
}

func TestLoad_ExplicitPathNotFound(t *testing.T) {
	t.Setenv("CONFIG_PATH", "/nonexistent/config.yaml")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing explicit config path")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, `{{{invalid yaml`)
	t.Setenv("CONFIG_PATH", path)

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig(t)

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_DSNEmpty(t *testing.T) {
	cfg := validConfig(t)
	cfg.Database.DSN = "  "

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty DSN")
	}
}

func TestValidate_PortOutOfRange(t *testing.T) {
	for _, port := range []int{0, -1, 65536} {
		cfg := validConfig(t)
		cfg.Server.Port = port

		if err := cfg.Validate(); err == nil {
			t.Errorf("expected error for port %d", port)
		}
	}
}

func TestValidate_LogFormatUnknown(t *testing.T) {
	cfg := validConfig(t)
	cfg.Log.Format = "xml"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown log format")
	}
}

func TestValidate_Search_RequestTimeoutZero(t *testing.T) {
	cfg := validConfig(t)
	cfg.Search.RequestTimeout = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for RequestTimeout = 0")
	}
}

func TestValidate_Search_MaxResultsZero(t *testing.T) {
	cfg := validConfig(t)
	cfg.Search.MaxResults = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for MaxResults = 0")
	}
}

func TestValidate_Search_MaxResultsTooLarge(t *testing.T) {
	cfg := validConfig(t)
	cfg.Search.MaxResults = 501

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for MaxResults > 500")
	}
}

func TestValidate_Search_ValidBoundaryValues(t *testing.T) {
	cfg := validConfig(t)
	cfg.Search.MaxResults = 1

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error for boundary values: %v", err)
	}

	cfg.Search.MaxResults = 500

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error for upper boundary values: %v", err)
	}
}

func TestValidate_Lexicon_AnalyzerTableMissing(t *testing.T) {
	cfg := validConfig(t)
	cfg.Lexicon.AnalyzerTablePath = filepath.Join(t.TempDir(), "missing.tsv")

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing analyzer table")
	}
}

func TestValidate_Lexicon_AnalyzerTableIsDirectory(t *testing.T) {
	cfg := validConfig(t)
	cfg.Lexicon.AnalyzerTablePath = t.TempDir()

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for directory analyzer table")
	}
}

func TestValidate_Lexicon_RankingsOptional(t *testing.T) {
	cfg := validConfig(t)
	cfg.Lexicon.MorphemeRankingsPath = ""

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error without rankings: %v", err)
	}

	cfg.Lexicon.MorphemeRankingsPath = "/nonexistent/rankings.tsv"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing rankings file")
	}
}

func TestValidate_RateLimit(t *testing.T) {
	cfg := validConfig(t)
	cfg.RateLimit.PerMinute = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for PerMinute = 0 when enabled")
	}

	cfg.RateLimit.Enabled = false

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error with rate limit disabled: %v", err)
	}
}

// validConfig returns a Config that passes all validation checks.
func validConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		Server:   ServerConfig{Port: 8080},
		Database: DatabaseConfig{DSN: "postgres://u:p@localhost:5432/testdb"},
		Log:      LogConfig{Level: "info", Format: "json"},
		Search: SearchConfig{
			RequestTimeout: 5 * time.Second,
			MaxResults:     100,
		},
		Lexicon: LexiconConfig{
			AnalyzerTablePath: writeFile(t, t.TempDir(), "analyzer.tsv", "acâhkos\tacâhkos+N+A+Sg\n"),
		},
		RateLimit: RateLimitConfig{Enabled: true, PerMinute: 60},
	}
}

func TestLoadDatabase_NoLexiconFiles(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("DATABASE_DSN", "postgres://u:p@localhost:5432/testdb")
	t.Setenv("LEXICON_ANALYZER_TABLE_PATH", "")
	origDir, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	_ = os.Chdir(t.TempDir())

	if _, err := Load(); err == nil {
		t.Fatal("expected Load to require the analyzer table")
	}

	cfg, err := LoadDatabase()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.DSN == "" {
		t.Error("database.dsn should be set")
	}
}

func TestValidateDatabase_MinConnsAboveMax(t *testing.T) {
	cfg := validConfig(t)
	cfg.Database.MaxConns = 2
	cfg.Database.MinConns = 5

	if err := cfg.ValidateDatabase(); err == nil {
		t.Fatal("expected error for min_conns > max_conns")
	}
}
