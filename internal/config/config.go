// Package config provides configuration management for the paper aggregator.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "PAPERAGG"

// SSL mode constants for database connections.
const (
	// SSLModeDisable disables SSL (use only for local development).
	SSLModeDisable = "disable"
	// SSLModeRequire requires SSL but does not verify certificates.
	SSLModeRequire = "require"
	// SSLModeVerifyCA verifies the server certificate against a CA.
	SSLModeVerifyCA = "verify-ca"
	// SSLModeVerifyFull verifies the server certificate and hostname.
	SSLModeVerifyFull = "verify-full"
)

// Config holds all configuration for the paper aggregator.
type Config struct {
	// Server contains HTTP server settings.
	Server ServerConfig `mapstructure:"server"`
	// Database contains optional PostgreSQL persistence settings.
	Database DatabaseConfig `mapstructure:"database"`
	// Logging contains structured logging settings.
	Logging LoggingConfig `mapstructure:"logging"`
	// Metrics contains Prometheus metrics exposure settings.
	Metrics MetricsConfig `mapstructure:"metrics"`
	// Kafka contains pipeline event publisher settings.
	Kafka KafkaConfig `mapstructure:"kafka"`
	// PaperSources contains per-provider API settings.
	PaperSources PaperSourcesConfig `mapstructure:"paper_sources"`
	// Aggregator contains search pipeline settings.
	Aggregator AggregatorConfig `mapstructure:"aggregator"`
	// Graph contains relationship scoring settings.
	Graph GraphConfig `mapstructure:"graph"`
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	// Host is the address to bind the server to (default: 0.0.0.0).
	Host string `mapstructure:"host"`
	// HTTPPort is the HTTP server port (default: 8080).
	HTTPPort int `mapstructure:"http_port"`
	// MetricsPort is the metrics server port (default: 9090).
	MetricsPort int `mapstructure:"metrics_port"`
	// ReadTimeout is the maximum duration for reading request body.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the maximum duration for writing response.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	// Enabled turns on persistence of ranked papers and graph edges.
	Enabled bool `mapstructure:"enabled"`
	// Host is the PostgreSQL server hostname.
	Host string `mapstructure:"host"`
	// Port is the PostgreSQL server port (default: 5432).
	Port int `mapstructure:"port"`
	// User is the database username.
	User string `mapstructure:"user"`
	// Password is the database password (use environment variable in production).
	Password string `mapstructure:"password"`
	// Name is the database name.
	Name string `mapstructure:"name"`
	// SSLMode controls SSL connection security (require, verify-ca, verify-full, disable).
	SSLMode string `mapstructure:"ssl_mode"`
	// MaxConns is the maximum number of connections in the pool (default: 20).
	MaxConns int32 `mapstructure:"max_conns"`
	// MinConns is the minimum number of connections to keep open (default: 2).
	MinConns int32 `mapstructure:"min_conns"`
	// MaxConnLifetime is the maximum lifetime of a connection before it's closed.
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	// MaxConnIdleTime is the maximum time a connection can be idle before it's closed.
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
	// HealthCheckPeriod is the interval between health checks of idle connections.
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
	// ConnectTimeout is the maximum time to wait for a connection.
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	// MigrationPath is the path to migration files (relative or absolute).
	MigrationPath string `mapstructure:"migration_path"`
	// MigrationAutoRun enables automatic migration on startup (default: false).
	MigrationAutoRun bool `mapstructure:"migration_auto_run"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level (trace, debug, info, warn, error, fatal, panic).
	Level string `mapstructure:"level"`
	// Format is the log format (json, console).
	Format string `mapstructure:"format"`
	// Output is the log output destination (stdout, stderr).
	Output string `mapstructure:"output"`
	// AddSource adds source file and line to log output.
	AddSource bool `mapstructure:"add_source"`
	// TimeFormat is the timestamp format.
	TimeFormat string `mapstructure:"time_format"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	// Enabled enables metrics collection and exposure.
	Enabled bool `mapstructure:"enabled"`
	// Path is the HTTP path for metrics endpoint.
	Path string `mapstructure:"path"`
	// Namespace prefixes every metric name.
	Namespace string `mapstructure:"namespace"`
}

// KafkaConfig holds pipeline event publisher settings.
type KafkaConfig struct {
	// Enabled controls whether Kafka publishing is active.
	Enabled bool `mapstructure:"enabled"`
	// Brokers is the list of Kafka broker addresses.
	Brokers []string `mapstructure:"brokers"`
	// Topic receives papers.searched and graph.built events.
	Topic string `mapstructure:"topic"`
	// BatchSize is the maximum number of messages to batch before sending.
	BatchSize int `mapstructure:"batch_size"`
	// BatchTimeout is the maximum time to wait for a batch to fill before sending.
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
}

// PaperSourcesConfig holds configuration for all providers.
type PaperSourcesConfig struct {
	ScholarGraph     PaperSourceConfig `mapstructure:"scholar_graph"`
	WorkIndex        PaperSourceConfig `mapstructure:"work_index"`
	CitationRegistry PaperSourceConfig `mapstructure:"citation_registry"`
	PreprintArchive  PaperSourceConfig `mapstructure:"preprint_archive"`
}

// PaperSourceConfig holds configuration for a single provider.
type PaperSourceConfig struct {
	// Enabled controls whether this source is used.
	Enabled bool `mapstructure:"enabled"`
	// APIKey is loaded from the environment only.
	APIKey string `mapstructure:"-"`
	// Mailto is the polite-pool contact address, loaded from the environment only.
	Mailto string `mapstructure:"-"`
	// BaseURL is the API base URL.
	BaseURL string `mapstructure:"base_url"`
	// Timeout is the timeout for API calls.
	Timeout time.Duration `mapstructure:"timeout"`
	// RateLimit is the maximum requests per second.
	RateLimit float64 `mapstructure:"rate_limit"`
	// BurstSize is the rate limiter burst.
	BurstSize int `mapstructure:"burst_size"`
	// TrustWeight is the ranking weight of this source in [0,1].
	TrustWeight float64 `mapstructure:"trust_weight"`
}

// AggregatorConfig holds search pipeline settings.
type AggregatorConfig struct {
	// DefaultLimit applies when a caller passes no limit.
	DefaultLimit int `mapstructure:"default_limit"`
	// MaxLimit caps the caller limit.
	MaxLimit int `mapstructure:"max_limit"`
	// MinQueryLength is the shortest trimmed query that reaches the providers.
	MinQueryLength int `mapstructure:"min_query_length"`
	// ProviderTimeout bounds each provider call.
	ProviderTimeout time.Duration `mapstructure:"provider_timeout"`
	// SearchURLBase builds fallback URLs for papers without one.
	SearchURLBase string `mapstructure:"search_url_base"`
}

// GraphConfig holds relationship scoring settings.
type GraphConfig struct {
	// EdgeThreshold is the minimum combined weight for an edge.
	EdgeThreshold float64 `mapstructure:"edge_threshold"`
	// VectorDimensions is the hashing embedder width.
	VectorDimensions int `mapstructure:"vector_dimensions"`
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	params := url.Values{}
	params.Set("sslmode", c.SSLMode)
	if c.ConnectTimeout > 0 {
		params.Set("connect_timeout", fmt.Sprintf("%d", int(c.ConnectTimeout.Seconds())))
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?%s",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		c.Name,
		params.Encode(),
	)
}

// HTTPAddress returns the HTTP server address.
func (c *ServerConfig) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.HTTPPort)
}

// MetricsAddress returns the metrics server address.
func (c *ServerConfig) MetricsAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.MetricsPort)
}

// Load loads configuration from environment variables and an optional
// config.yaml in the working directory, ./config or /etc/paper-aggregator.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file. An empty path falls back
// to the standard search locations.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/paper-aggregator")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Secrets never come from config files.
	loadSecrets(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadSecrets populates secret fields from environment variables. The
// prefixed name wins over the bare one.
func loadSecrets(cfg *Config) {
	cfg.PaperSources.ScholarGraph.APIKey = firstEnv(EnvPrefix+"_PAPER_SOURCES_SCHOLAR_GRAPH_API_KEY", "SCHOLAR_GRAPH_API_KEY")
	cfg.PaperSources.WorkIndex.Mailto = firstEnv(EnvPrefix+"_PAPER_SOURCES_WORK_INDEX_MAILTO", "WORK_INDEX_MAILTO")
	cfg.PaperSources.CitationRegistry.Mailto = firstEnv(EnvPrefix+"_PAPER_SOURCES_CITATION_REGISTRY_MAILTO", "CITATION_REGISTRY_MAILTO")
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.metrics_port", 9090)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "30s")

	// Database defaults
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "paperagg")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "paper_aggregator")
	v.SetDefault("database.ssl_mode", SSLModeRequire)
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")
	v.SetDefault("database.health_check_period", "30s")
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.migration_path", "migrations")
	v.SetDefault("database.migration_auto_run", false)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.namespace", "paper_aggregator")

	// Kafka defaults
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "paper-aggregator.events")
	v.SetDefault("kafka.batch_size", 100)
	v.SetDefault("kafka.batch_timeout", "10ms")

	// Paper sources. API keys and mailto addresses are read by loadSecrets.
	v.SetDefault("paper_sources.scholar_graph.enabled", true)
	v.SetDefault("paper_sources.scholar_graph.base_url", "https://api.semanticscholar.org/graph/v1")
	v.SetDefault("paper_sources.scholar_graph.timeout", "20s")
	v.SetDefault("paper_sources.scholar_graph.rate_limit", 1.0)
	v.SetDefault("paper_sources.scholar_graph.burst_size", 5)
	v.SetDefault("paper_sources.scholar_graph.trust_weight", 1.0)

	v.SetDefault("paper_sources.work_index.enabled", true)
	v.SetDefault("paper_sources.work_index.base_url", "https://api.openalex.org")
	v.SetDefault("paper_sources.work_index.timeout", "20s")
	v.SetDefault("paper_sources.work_index.rate_limit", 10.0)
	v.SetDefault("paper_sources.work_index.burst_size", 10)
	v.SetDefault("paper_sources.work_index.trust_weight", 0.9)

	v.SetDefault("paper_sources.citation_registry.enabled", true)
	v.SetDefault("paper_sources.citation_registry.base_url", "https://api.crossref.org")
	v.SetDefault("paper_sources.citation_registry.timeout", "20s")
	v.SetDefault("paper_sources.citation_registry.rate_limit", 5.0)
	v.SetDefault("paper_sources.citation_registry.burst_size", 5)
	v.SetDefault("paper_sources.citation_registry.trust_weight", 0.75)

	v.SetDefault("paper_sources.preprint_archive.enabled", true)
	v.SetDefault("paper_sources.preprint_archive.base_url", "http://export.arxiv.org/api")
	v.SetDefault("paper_sources.preprint_archive.timeout", "20s")
	v.SetDefault("paper_sources.preprint_archive.rate_limit", 0.33) // one request every three seconds
	v.SetDefault("paper_sources.preprint_archive.burst_size", 1)
	v.SetDefault("paper_sources.preprint_archive.trust_weight", 0.7)

	// Aggregator defaults
	v.SetDefault("aggregator.default_limit", 10)
	v.SetDefault("aggregator.max_limit", 50)
	v.SetDefault("aggregator.min_query_length", 3)
	v.SetDefault("aggregator.provider_timeout", "20s")
	v.SetDefault("aggregator.search_url_base", "https://scholar.google.com/scholar?q=")

	// Graph defaults
	v.SetDefault("graph.edge_threshold", 0.55)
	v.SetDefault("graph.vector_dimensions", 256)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.Server.HTTPPort)
	}
	if c.Server.MetricsPort <= 0 || c.Server.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", c.Server.MetricsPort)
	}

	if c.Database.Enabled {
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			return fmt.Errorf("invalid database port: %d", c.Database.Port)
		}
		if c.Database.Name == "" {
			return fmt.Errorf("database name is required")
		}
		if c.Database.MaxConns < c.Database.MinConns {
			return fmt.Errorf("max_conns (%d) must be >= min_conns (%d)", c.Database.MaxConns, c.Database.MinConns)
		}
	}

	validLogLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return fmt.Errorf("metrics namespace is required when metrics are enabled")
	}

	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka brokers are required when kafka is enabled")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("kafka topic is required when kafka is enabled")
		}
	}

	sources := map[string]PaperSourceConfig{
		"scholar_graph":     c.PaperSources.ScholarGraph,
		"work_index":        c.PaperSources.WorkIndex,
		"citation_registry": c.PaperSources.CitationRegistry,
		"preprint_archive":  c.PaperSources.PreprintArchive,
	}
	for name, s := range sources {
		if s.TrustWeight < 0 || s.TrustWeight > 1 {
			return fmt.Errorf("paper source %s trust_weight must be between 0 and 1", name)
		}
		if s.RateLimit < 0 {
			return fmt.Errorf("paper source %s rate_limit must not be negative", name)
		}
		if s.Timeout < 0 {
			return fmt.Errorf("paper source %s timeout must not be negative", name)
		}
	}

	a := c.Aggregator
	if a.DefaultLimit <= 0 {
		return fmt.Errorf("aggregator default_limit must be positive")
	}
	if a.MaxLimit < a.DefaultLimit {
		return fmt.Errorf("aggregator max_limit (%d) must be >= default_limit (%d)", a.MaxLimit, a.DefaultLimit)
	}
	if a.MinQueryLength < 1 {
		return fmt.Errorf("aggregator min_query_length must be positive")
	}
	if a.ProviderTimeout <= 0 {
		return fmt.Errorf("aggregator provider_timeout must be positive")
	}

	if c.Graph.EdgeThreshold <= 0 || c.Graph.EdgeThreshold > 1 {
		return fmt.Errorf("graph edge_threshold must be in (0, 1]")
	}
	if c.Graph.VectorDimensions <= 0 {
		return fmt.Errorf("graph vector_dimensions must be positive")
	}

	return nil
}
