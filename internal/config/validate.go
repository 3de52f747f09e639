package config

import (
	"fmt"
	"os"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.ValidateDatabase(); err != nil {
		return err
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535] (got %d)", c.Server.Port)
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text (got %q)", c.Log.Format)
	}

	if err := c.Search.validate(); err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if err := c.Lexicon.validate(); err != nil {
		return fmt.Errorf("lexicon: %w", err)
	}

	if c.RateLimit.Enabled && c.RateLimit.PerMinute <= 0 {
		return fmt.Errorf("rate_limit.per_minute must be > 0 (got %d)", c.RateLimit.PerMinute)
	}

	return nil
}

// ValidateDatabase checks only what database tooling needs.
func (c *Config) ValidateDatabase() error {
	if strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.Database.MinConns > c.Database.MaxConns && c.Database.MaxConns > 0 {
		return fmt.Errorf("database.min_conns (%d) exceeds max_conns (%d)", c.Database.MinConns, c.Database.MaxConns)
	}
	return nil
}

func (s *SearchConfig) validate() error {
	if s.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be > 0 (got %v)", s.RequestTimeout)
	}
	if s.MaxResults < 1 || s.MaxResults > 500 {
		return fmt.Errorf("max_results must be in [1, 500] (got %d)", s.MaxResults)
	}
	return nil
}

func (l *LexiconConfig) validate() error {
	if err := readable(l.AnalyzerTablePath); err != nil {
		return fmt.Errorf("analyzer_table_path: %w", err)
	}
	if l.MorphemeRankingsPath != "" {
		if err := readable(l.MorphemeRankingsPath); err != nil {
			return fmt.Errorf("morpheme_rankings_path: %w", err)
		}
	}
	return nil
}

func readable(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path is required")
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}
