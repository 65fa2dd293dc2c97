package config

import (
	_ "embed"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// QueryPlaceholder is replaced by the user's query in the graph template.
const QueryPlaceholder = "$QUERY"

//go:embed query.sparql
var defaultQueryTemplate string

// Session store backends.
const (
	SessionStoreMemory = "memory"
	SessionStoreSQLite = "sqlite"
	SessionStoreRedis  = "redis"
	SessionStoreS3     = "s3"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	GraphEndpoint          string `envconfig:"GRAPH_ENDPOINT" default:"http://localhost:3030/"`
	GraphService           string `envconfig:"GRAPH_SERVICE" default:"dataset/"`
	GraphProbePath         string `envconfig:"GRAPH_PROBE_PATH" default:"$/ping"`
	GraphQueryTemplate     string `envconfig:"GRAPH_QUERY_TEMPLATE"`
	GraphQueryTemplateFile string `envconfig:"GRAPH_QUERY_TEMPLATE_FILE"`

	DocumentEndpoint   string `envconfig:"DOCUMENT_ENDPOINT"`
	DocumentSearchPath string `envconfig:"DOCUMENT_SEARCH_PATH" default:"rest/api/search"`
	DocumentEmail      string `envconfig:"DOCUMENT_EMAIL"`
	DocumentToken      string `envconfig:"DOCUMENT_TOKEN"`
	DocumentLimit      int    `envconfig:"DOCUMENT_LIMIT" default:"100"`

	LoggingEndpoint string `envconfig:"LOGGING_ENDPOINT"`

	PageSize              int `envconfig:"PAGE_SIZE" default:"10"`
	GraphSnippetLength    int `envconfig:"GRAPH_SNIPPET_LENGTH" default:"200"`
	DocumentSnippetLength int `envconfig:"DOCUMENT_SNIPPET_LENGTH" default:"300"`

	ProbeInterval    time.Duration `envconfig:"PROBE_INTERVAL" default:"3s"`
	ErrorClearDelay  time.Duration `envconfig:"ERROR_CLEAR_DELAY" default:"2s"`
	HTTPTimeout      time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`
	RequireReachable bool          `envconfig:"REQUIRE_REACHABLE" default:"true"`

	SessionStore     string `envconfig:"SESSION_STORE" default:"memory"`
	SessionCacheSize int    `envconfig:"SESSION_CACHE_SIZE" default:"1024"`
	SQLitePath       string `envconfig:"SQLITE_PATH" default:"khub-sessions.db"`
	RedisURL         string `envconfig:"REDIS_URL"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"khub-sessions"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	// Enables the telemetry collector on POST /logs.
	DatabaseURL string `envconfig:"DATABASE_URL"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("KHUB", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.GraphQueryTemplateFile != "" {
		data, err := os.ReadFile(cfg.GraphQueryTemplateFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read query template: %w", err)
		}
		cfg.GraphQueryTemplate = string(data)
	}
	if cfg.GraphQueryTemplate == "" {
		cfg.GraphQueryTemplate = defaultQueryTemplate
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// Validate checks values envconfig cannot.
func (c *Config) Validate() error {
	if c.PageSize < 1 {
		return fmt.Errorf("KHUB_PAGE_SIZE must be positive, got %d", c.PageSize)
	}
	if !strings.Contains(c.GraphQueryTemplate, QueryPlaceholder) {
		return fmt.Errorf("graph query template has no %s placeholder", QueryPlaceholder)
	}
	switch c.SessionStore {
	case SessionStoreMemory, SessionStoreSQLite:
	case SessionStoreRedis:
		if !c.HasRedis() {
			return fmt.Errorf("session store %q requires KHUB_REDIS_URL", c.SessionStore)
		}
	case SessionStoreS3:
		if !c.HasS3() {
			return fmt.Errorf("session store %q requires KHUB_S3_ENDPOINT and credentials", c.SessionStore)
		}
	default:
		return fmt.Errorf("unknown session store %q", c.SessionStore)
	}
	return nil
}

// DefaultQueryTemplate returns the built-in SPARQL template.
func DefaultQueryTemplate() string {
	return defaultQueryTemplate
}

// GraphQueryURL is where SPARQL queries are posted.
func (c *Config) GraphQueryURL() string {
	return c.GraphEndpoint + c.GraphService
}

// GraphProbeURL is polled by the liveness monitor.
func (c *Config) GraphProbeURL() string {
	return c.GraphEndpoint + c.GraphProbePath
}

func (c *Config) HasDocumentSource() bool {
	return c.DocumentEndpoint != "" && c.DocumentEmail != "" && c.DocumentToken != ""
}

func (c *Config) HasTelemetry() bool {
	return c.LoggingEndpoint != ""
}

func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasRedis() bool {
	return c.RedisURL != ""
}
