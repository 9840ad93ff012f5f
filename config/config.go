package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration settings.
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	HTTP          HTTPConfig          `yaml:"http"`
	Queue         QueueConfig         `yaml:"queue"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// HTTPConfig holds the read API configuration.
type HTTPConfig struct {
	Addr           string  `yaml:"addr"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
}

// QueueConfig holds the River job queue configuration.
type QueueConfig struct {
	Enabled       bool          `yaml:"enabled"`
	ReminderDelay time.Duration `yaml:"reminder_delay"`
}

// ObservabilityConfig holds configuration for observability components.
type ObservabilityConfig struct {
	MetricsAddress string `yaml:"metrics_address"`
	LogLevel       string `yaml:"log_level"`
	Environment    string `yaml:"environment"`
}

// LoadConfig loads the configuration from a YAML file, falling back to
// environment variables when the file is missing. Env vars always win over
// file values.
func LoadConfig(filename string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(filename)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("postgres DSN is required (config file or DATABASE_URL)")
	}
	if cfg.NATS.URL == "" {
		return nil, fmt.Errorf("NATS URL is required (config file or NATS_URL)")
	}

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Addr:           ":8080",
			RateLimitRPS:   10,
			RateLimitBurst: 20,
		},
		Queue: QueueConfig{
			Enabled:       true,
			ReminderDelay: 24 * time.Hour,
		},
		Observability: ObservabilityConfig{
			MetricsAddress: ":9090",
			LogLevel:       "info",
			Environment:    "development",
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Observability.MetricsAddress = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.Observability.Environment = v
	}
}
