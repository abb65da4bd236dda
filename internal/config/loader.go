package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "github-integration.yaml"

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
	data, err := os.ReadFile(path)
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
	setString(&cfg.Server.Port, "GITRELLO_GH_PORT")
	setString(&cfg.Server.CORSOrigin, "GITRELLO_GH_CORS_ORIGIN")
	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "GITRELLO_GH_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "GITRELLO_GH_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "GITRELLO_GH_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "GITRELLO_GH_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "GITRELLO_GH_PG_HEALTH_CHECK")
	setString(&cfg.NATS.URL, "NATS_URL")
	setString(&cfg.GitHub.BaseURL, "GITHUB_API_URL")
	setString(&cfg.GitHub.CallbackURL, "GITRELLO_GH_CALLBACK_URL")
	setDuration(&cfg.GitHub.Timeout, "GITRELLO_GH_GITHUB_TIMEOUT")
	setString(&cfg.GITrello.URL, "GITRELLO_URL")
	setString(&cfg.GITrello.AccessToken, "GITRELLO_ACCESS_TOKEN")
	setDuration(&cfg.GITrello.Timeout, "GITRELLO_GH_GITRELLO_TIMEOUT")
	setString(&cfg.Auth.JWTSecret, "GITRELLO_GH_JWT_SECRET")
	setDuration(&cfg.Cache.PermissionTTL, "GITRELLO_GH_PERMISSION_TTL")
	setInt64(&cfg.Cache.MaxCostBytes, "GITRELLO_GH_CACHE_MAX_COST")
	setString(&cfg.Logging.Level, "GITRELLO_GH_LOG_LEVEL")
	setString(&cfg.Logging.Service, "GITRELLO_GH_LOG_SERVICE")
}

// validate rejects configurations the service cannot run with.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port must not be empty")
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("postgres.dsn must not be empty")
	}
	if _, err := url.ParseRequestURI(cfg.GitHub.CallbackURL); err != nil {
		return fmt.Errorf("github.callback_url: %w", err)
	}
	if _, err := url.ParseRequestURI(cfg.GITrello.URL); err != nil {
		return fmt.Errorf("gitrello.url: %w", err)
	}
	if cfg.GitHub.Timeout <= 0 {
		return errors.New("github.timeout must be positive")
	}
	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret must not be empty")
	}
	return nil
}

// --- env helpers ---

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt32(dst *int32, key string) {
	if v := os.Getenv(key); v != "" {
		var n int32
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		var n int64
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			*dst = n
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
