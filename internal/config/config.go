package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server      ServerConfig    `yaml:"server"`
	Database    DatabaseConfig  `yaml:"database"`
	Storage     StorageConfig   `yaml:"storage"`
	Logging     LoggingConfig   `yaml:"logging"`
	CORS        CORSConfig      `yaml:"cors"`
	RateLimit   RateLimitConfig `yaml:"rate_limit"`
	Tracing     TracingConfig   `yaml:"tracing"`
	Environment string          `yaml:"environment"`
}

type ServerConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	BaseURL string `yaml:"base_url"`
}

type DatabaseConfig struct {
	URL            string `yaml:"url"`
	MaxConnections int    `yaml:"max_connections"`
	MaxIdle        int    `yaml:"max_idle_connections"`
}

// StorageConfig selects the persistence backend. Driver is either
// "postgres" or "memory"; the memory driver keeps all state in process
// and is intended for local development and tests.
type StorageConfig struct {
	Driver string `yaml:"driver"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type CORSConfig struct {
	AllowAllOrigins bool     `yaml:"allow_all_origins"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
}

// RateLimitConfig tunes the per-client token bucket. PerMinute of zero
// disables limiting; Burst defaults to PerMinute when unset. Forwarding
// headers are honored only from peers inside TrustedProxyCIDRs.
type RateLimitConfig struct {
	PerMinute         int      `yaml:"per_minute"`
	Burst             int      `yaml:"burst"`
	TrustedProxyCIDRs []string `yaml:"trusted_proxy_cidrs"`
}

type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	ServiceName  string  `yaml:"service_name"`
	OTLPEndpoint string  `yaml:"otlp_endpoint"`
	SampleRate   float64 `yaml:"sample_rate"`
}

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Load reads configuration from environment variables. A .env file in
// the working directory is consulted first when present.
func Load() (Config, error) {
	cfg := fromEnv()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile reads configuration from the environment, then overlays any
// values set in the YAML file at path. File values win because the file
// is passed explicitly via --config.
func LoadFile(path string) (Config, error) {
	cfg := fromEnv()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func fromEnv() Config {
	_ = godotenv.Load()

	env := envString("ENVIRONMENT", "development")

	return Config{
		Server: ServerConfig{
			Host:    envString("SERVER_HOST", "0.0.0.0"),
			Port:    envInt("SERVER_PORT", 8080),
			BaseURL: envString("SERVER_BASE_URL", "http://localhost:8080"),
		},
		Database: DatabaseConfig{
			URL:            envString("DATABASE_URL", ""),
			MaxConnections: envInt("DATABASE_MAX_CONNECTIONS", 25),
			MaxIdle:        envInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
		},
		Storage: StorageConfig{
			Driver: envString("STORAGE_DRIVER", DriverPostgres),
		},
		Logging: LoggingConfig{
			Level:  envString("LOG_LEVEL", "info"),
			Format: envString("LOG_FORMAT", "json"),
		},
		CORS: CORSConfig{
			AllowAllOrigins: env != "production",
			AllowedOrigins:  splitList(envString("CORS_ALLOWED_ORIGINS", "")),
		},
		RateLimit: RateLimitConfig{
			PerMinute:         envInt("RATE_LIMIT_PER_MINUTE", 0),
			Burst:             envInt("RATE_LIMIT_BURST", 0),
			TrustedProxyCIDRs: splitList(envString("TRUSTED_PROXY_CIDRS", "")),
		},
		Tracing: TracingConfig{
			Enabled:      envBool("TRACING_ENABLED", false),
			Exporter:     envString("TRACING_EXPORTER", "stdout"),
			ServiceName:  envString("TRACING_SERVICE_NAME", "guestlist-server"),
			OTLPEndpoint: envString("TRACING_OTLP_ENDPOINT", "localhost:4317"),
			SampleRate:   envFloat("TRACING_SAMPLE_RATE", 1.0),
		},
		Environment: env,
	}
}

func (c Config) validate() error {
	switch c.Storage.Driver {
	case DriverPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORAGE_DRIVER is %q", DriverPostgres)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q (must be %q or %q)", c.Storage.Driver, DriverPostgres, DriverMemory)
	}

	if c.Environment == "production" {
		if len(c.CORS.AllowedOrigins) == 0 {
			return fmt.Errorf("CORS_ALLOWED_ORIGINS is required in production")
		}
		if c.CORS.AllowAllOrigins {
			return fmt.Errorf("cors: allow_all_origins must not be set in production")
		}
	}
	return nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Unset and empty variables fall back to the default, as do numbers
// and booleans that fail to parse.
func envString(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
