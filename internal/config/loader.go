package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "vehix.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// The YAML file is optional; a missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "VEHIX_PORT")
	setString(&cfg.Server.CORSOrigin, "VEHIX_CORS_ORIGIN")
	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "VEHIX_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "VEHIX_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "VEHIX_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "VEHIX_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "VEHIX_PG_HEALTH_CHECK")
	setInt(&cfg.Postgres.ConnectAttempts, "VEHIX_PG_CONNECT_ATTEMPTS")
	setString(&cfg.NATS.URL, "NATS_URL")
	setBool(&cfg.Auth.Enabled, "VEHIX_AUTH_ENABLED")
	setString(&cfg.Auth.JWTSecret, "VEHIX_JWT_SECRET")
	setDuration(&cfg.Auth.AccessTokenExpiry, "VEHIX_ACCESS_TOKEN_EXPIRY")
	setInt(&cfg.Auth.BcryptCost, "VEHIX_BCRYPT_COST")
	setString(&cfg.Logging.Level, "VEHIX_LOG_LEVEL")
	setString(&cfg.Logging.Service, "VEHIX_LOG_SERVICE")
	setBool(&cfg.Logging.Async, "VEHIX_LOG_ASYNC")
	setDuration(&cfg.Assignment.MaxFutureStart, "VEHIX_ASSIGNMENT_MAX_FUTURE_START")
	setDuration(&cfg.Integrity.SweepInterval, "VEHIX_INTEGRITY_SWEEP_INTERVAL")
	setBool(&cfg.Integrity.RunOnStartup, "VEHIX_INTEGRITY_RUN_ON_STARTUP")
	setInt(&cfg.Integrity.SweepAttempts, "VEHIX_INTEGRITY_SWEEP_ATTEMPTS")
	setInt64(&cfg.Cache.MaxSizeMB, "VEHIX_CACHE_SIZE_MB")
	setDuration(&cfg.Cache.CatalogTTL, "VEHIX_CACHE_CATALOG_TTL")
	setBool(&cfg.Telemetry.Enabled, "VEHIX_OTEL_ENABLED")
	setString(&cfg.Telemetry.OTLPEndpoint, "VEHIX_OTEL_ENDPOINT")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required")
	}
	if cfg.NATS.URL == "" {
		return errors.New("nats.url is required")
	}
	if cfg.Postgres.MaxConns < 1 {
		return errors.New("postgres.max_conns must be >= 1")
	}
	if cfg.Auth.Enabled && cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required when auth is enabled")
	}
	if cfg.Assignment.MaxFutureStart < 0 {
		return errors.New("assignment.max_future_start must not be negative")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt32(dst *int32, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(n)
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
