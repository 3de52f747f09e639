package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Log       LogConfig       `yaml:"log"`
	CORS      CORSConfig      `yaml:"cors"`
	Search    SearchConfig    `yaml:"search"`
	Lexicon   LexiconConfig   `yaml:"lexicon"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// newDefault seeds the booleans that default to true. cleanenv fills
// env-default into zero values only, so these fields carry no such tag.
func newDefault() Config {
	return Config{
		Search:    SearchConfig{VerboseAllowed: true, Preverbs: true},
		RateLimit: RateLimitConfig{Enabled: true},
	}
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Content-Type"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"false"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// SearchConfig holds search engine settings.
type SearchConfig struct {
	DefaultIncludeAutoDefinitions bool          `yaml:"default_include_auto_definitions" env:"SEARCH_INCLUDE_AUTO_DEFINITIONS" env-default:"false"`
	RequestTimeout                time.Duration `yaml:"request_timeout"                  env:"SEARCH_REQUEST_TIMEOUT"          env-default:"5s"`
	MaxResults                    int           `yaml:"max_results"                      env:"SEARCH_MAX_RESULTS"              env-default:"100"`
	VerboseAllowed                bool          `yaml:"verbose_allowed"                  env:"SEARCH_VERBOSE_ALLOWED"`
	Preverbs                      bool          `yaml:"preverbs"                         env:"SEARCH_PREVERBS"`
}

// LexiconConfig points at the data files loaded once at startup.
type LexiconConfig struct {
	// AnalyzerTablePath is a surface/analysis TSV, optionally .gz or .zst.
	AnalyzerTablePath    string `yaml:"analyzer_table_path"    env:"LEXICON_ANALYZER_TABLE_PATH"`
	MorphemeRankingsPath string `yaml:"morpheme_rankings_path" env:"LEXICON_MORPHEME_RANKINGS_PATH"`
}

// RateLimitConfig holds per-IP request limits for the public API.
type RateLimitConfig struct {
	Enabled         bool          `yaml:"enabled"          env:"RATE_LIMIT_ENABLED"`
	PerMinute       int           `yaml:"per_minute"       env:"RATE_LIMIT_PER_MINUTE"       env-default:"120"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" env:"RATE_LIMIT_CLEANUP_INTERVAL" env-default:"5m"`
}
