package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/taskgate/taskgate/internal/secrets"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "taskgate.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
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
// Only non-empty env values override the current config. Credentials are
// deliberately absent here: they resolve through the secrets vault (see
// ApplySecrets), so this overlay never touches them.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "TASKGATE_PORT")
	setString(&cfg.Server.CORSOrigin, "TASKGATE_CORS_ORIGIN")

	setString(&cfg.MCP.Addr, "TASKGATE_MCP_ADDR")
	setString(&cfg.MCP.Name, "TASKGATE_MCP_NAME")
	setString(&cfg.MCP.Version, "TASKGATE_MCP_VERSION")

	setString(&cfg.Board.BaseURL, "TASKGATE_BOARD_URL")
	setString(&cfg.Board.ProjectID, "TASKGATE_BOARD_PROJECT")
	setDuration(&cfg.Board.Timeout, "TASKGATE_BOARD_TIMEOUT")

	setString(&cfg.Tracker.BaseURL, "TASKGATE_TRACKER_URL")
	setString(&cfg.Tracker.Owner, "TASKGATE_TRACKER_OWNER")
	setString(&cfg.Tracker.Repo, "TASKGATE_TRACKER_REPO")
	setDuration(&cfg.Tracker.Timeout, "TASKGATE_TRACKER_TIMEOUT")

	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "TASKGATE_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "TASKGATE_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "TASKGATE_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "TASKGATE_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "TASKGATE_PG_HEALTH_CHECK")

	setString(&cfg.NATS.URL, "NATS_URL")

	setInt64(&cfg.Cache.L1MaxSizeMB, "TASKGATE_CACHE_L1_SIZE_MB")
	setDuration(&cfg.Cache.L1Expire, "TASKGATE_CACHE_L1_EXPIRE")
	setString(&cfg.Cache.L2Bucket, "TASKGATE_CACHE_L2_BUCKET")
	setDuration(&cfg.Cache.TTL, "TASKGATE_CACHE_TTL")

	setInt(&cfg.Sync.PageSize, "TASKGATE_SYNC_PAGE_SIZE")

	setBool(&cfg.Bolt.Enabled, "TASKGATE_BOLT_ENABLED")
	setDuration(&cfg.Bolt.Interval, "TASKGATE_BOLT_INTERVAL")

	setString(&cfg.Logging.Level, "TASKGATE_LOG_LEVEL")
	setString(&cfg.Logging.Service, "TASKGATE_LOG_SERVICE")
	setBool(&cfg.Logging.Async, "TASKGATE_LOG_ASYNC")

	setInt(&cfg.Breaker.MaxFailures, "TASKGATE_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "TASKGATE_BREAKER_TIMEOUT")

	setFloat64(&cfg.Rate.RequestsPerSecond, "TASKGATE_RATE_RPS")
	setInt(&cfg.Rate.Burst, "TASKGATE_RATE_BURST")
	setDuration(&cfg.Rate.CleanupInterval, "TASKGATE_RATE_CLEANUP_INTERVAL")
	setDuration(&cfg.Rate.MaxIdleTime, "TASKGATE_RATE_MAX_IDLE_TIME")

	setInt(&cfg.Outbound.MaxConcurrent, "TASKGATE_OUTBOUND_MAX_CONCURRENT")

	setString(&cfg.Telemetry.Endpoint, "TASKGATE_OTLP_ENDPOINT")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required")
	}
	if cfg.Postgres.MaxConns < 1 {
		return errors.New("postgres.max_conns must be >= 1")
	}
	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	if cfg.Rate.Burst < 1 {
		return errors.New("rate.burst must be >= 1")
	}
	if cfg.Sync.PageSize < 1 {
		return errors.New("sync.page_size must be >= 1")
	}
	if cfg.Bolt.Enabled && cfg.Bolt.Interval < time.Second {
		return errors.New("bolt.interval must be >= 1s when bolt is enabled")
	}
	return nil
}

// ApplySecrets overlays vault-resolved credentials onto the config. The
// vault is the only resolution path for credentials; an empty lookup
// leaves any YAML-provided value in place for local development.
func (c *Config) ApplySecrets(get func(key string) string) {
	overlay := func(dst *string, key string) {
		if v := get(key); v != "" {
			*dst = v
		}
	}
	overlay(&c.Board.Token, secrets.KeyBoardToken)
	overlay(&c.Tracker.Token, secrets.KeyTrackerToken)
	overlay(&c.Webhook.BoardSecret, secrets.KeyWebhookSecret)
	overlay(&c.MCP.APIKey, secrets.KeyMCPAPIKey)
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

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
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
