// Package config provides unified configuration loading for the support engine.
// Supports YAML files, environment variables, and programmatic overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the support engine.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Dynamo        DynamoConfig        `yaml:"dynamo"`
	Analytics     AnalyticsConfig     `yaml:"analytics"`
	Cache         CacheConfig         `yaml:"cache"`
	Lookup        LookupConfig        `yaml:"lookup"`
	Audit         AuditConfig         `yaml:"audit"`
	Observability ObservabilityConfig `yaml:"observability"`
	Auth          AuthConfig          `yaml:"auth"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
}

// DynamoConfig holds wide-column store settings.
type DynamoConfig struct {
	Region    string `yaml:"region"`
	Table     string `yaml:"table"`
	IndexName string `yaml:"index_name"`
	Endpoint  string `yaml:"endpoint"` // optional, for dynamodb-local
}

// AnalyticsConfig holds analytical engine settings.
type AnalyticsConfig struct {
	Engine          string        `yaml:"engine"` // athena or sql
	Database        string        `yaml:"database"`
	OutputLocation  string        `yaml:"output_location"`
	MaxWait         time.Duration `yaml:"max_wait"`
	MaxRows         int           `yaml:"max_rows"`
	ResultReuseAge  time.Duration `yaml:"result_reuse_age"`
	CacheTTL        time.Duration `yaml:"cache_ttl"`
	SQL             SQLConfig     `yaml:"sql"`
}

// SQLConfig holds local SQL engine settings (development profile).
type SQLConfig struct {
	Driver string `yaml:"driver"` // postgres or sqlite3
	DSN    string `yaml:"dsn"`
}

// CacheConfig holds cache settings.
type CacheConfig struct {
	Driver     string      `yaml:"driver"` // memory or redis
	MaxEntries int         `yaml:"max_entries"`
	Redis      RedisConfig `yaml:"redis"`
}

// RedisConfig holds Redis-specific settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// LookupConfig holds fast-lookup settings.
type LookupConfig struct {
	WarmOnStart  bool `yaml:"warm_on_start"`
	ScanPageSize int  `yaml:"scan_page_size"`
}

// AuditConfig holds audit trail settings.
type AuditConfig struct {
	RingSize int `yaml:"ring_size"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	ServiceName string `yaml:"service_name"`
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"`
}

// Load reads configuration from a YAML file and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults for development.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8086,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     30 * time.Second,
			IdleTimeout:      120 * time.Second,
			GracefulShutdown: 10 * time.Second,
		},
		Dynamo: DynamoConfig{
			Region:    "us-east-2",
			Table:     "OmniRetailData",
			IndexName: "GSI1",
		},
		Analytics: AnalyticsConfig{
			Engine:         "athena",
			Database:       "dataton-db",
			OutputLocation: "s3://omniretail-athena-results/",
			MaxWait:        20 * time.Second,
			MaxRows:        20,
			ResultReuseAge: 60 * time.Minute,
			CacheTTL:       5 * time.Minute,
			SQL: SQLConfig{
				Driver: "sqlite3",
				DSN:    "/tmp/support-engine.db",
			},
		},
		Cache: CacheConfig{
			Driver:     "memory",
			MaxEntries: 10000,
			Redis: RedisConfig{
				Addr:     "localhost:6379",
				DB:       0,
				PoolSize: 10,
			},
		},
		Lookup: LookupConfig{
			WarmOnStart:  true,
			ScanPageSize: 500,
		},
		Audit: AuditConfig{
			RingSize: 256,
		},
		Observability: ObservabilityConfig{
			LogLevel:    "info",
			LogFormat:   "json",
			ServiceName: "support-engine",
		},
		Auth: AuthConfig{
			Enabled: false,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Dynamo.Table == "" {
		return fmt.Errorf("dynamo table is required")
	}

	if c.Analytics.Engine != "athena" && c.Analytics.Engine != "sql" {
		return fmt.Errorf("invalid analytics engine: %s", c.Analytics.Engine)
	}

	if c.Analytics.Engine == "sql" && c.Analytics.SQL.Driver != "postgres" && c.Analytics.SQL.Driver != "sqlite3" {
		return fmt.Errorf("invalid sql driver: %s", c.Analytics.SQL.Driver)
	}

	if c.Cache.Driver != "memory" && c.Cache.Driver != "redis" {
		return fmt.Errorf("invalid cache driver: %s", c.Cache.Driver)
	}

	if c.Analytics.MaxRows < 1 {
		return fmt.Errorf("analytics max_rows must be positive")
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SUPPORT_ENGINE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("SUPPORT_ENGINE_HOST"); v != "" {
		cfg.Server.Host = v
	}

	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.Dynamo.Region = v
	}

	if v := os.Getenv("DYNAMO_TABLE"); v != "" {
		cfg.Dynamo.Table = v
	}

	if v := os.Getenv("DYNAMO_ENDPOINT"); v != "" {
		cfg.Dynamo.Endpoint = v
	}

	if v := os.Getenv("ATHENA_DATABASE"); v != "" {
		cfg.Analytics.Database = v
	}

	if v := os.Getenv("ATHENA_OUTPUT"); v != "" {
		cfg.Analytics.OutputLocation = v
	}

	if v := os.Getenv("ANALYTICS_ENGINE"); v != "" {
		cfg.Analytics.Engine = v
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Analytics.Engine = "sql"
		if strings.HasPrefix(v, "sqlite:") {
			cfg.Analytics.SQL.Driver = "sqlite3"
			cfg.Analytics.SQL.DSN = strings.TrimPrefix(v, "sqlite:")
		} else if strings.HasPrefix(v, "postgres") {
			cfg.Analytics.SQL.Driver = "postgres"
			cfg.Analytics.SQL.DSN = v
		}
	}

	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Cache.Driver = "redis"
		cfg.Cache.Redis.Addr = strings.TrimPrefix(v, "redis://")
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}

	if v := os.Getenv("SUPPORT_ENGINE_TOKEN"); v != "" {
		cfg.Auth.Enabled = true
		cfg.Auth.Token = v
	}
}
