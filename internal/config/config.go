package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Was      WasConfig
	Sync     SyncConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" envDefault:"8080"`
}

// DatabaseConfig holds run-history database configuration.
type DatabaseConfig struct {
	Driver string `env:"DB_DRIVER" envDefault:"sqlite3"`
	DSN    string `env:"DB_DSN" envDefault:"data/wasconverge.db"`
}

// WasConfig holds deployment manager and wsadmin configuration.
type WasConfig struct {
	ProfileBase string `env:"WAS_PROFILE_BASE"`
	DmgrProfile string `env:"WAS_DMGR_PROFILE" envDefault:"PROFILE_DMGR_01"`
	WsadminPath string `env:"WAS_WSADMIN_PATH"`
	User        string `env:"WAS_USER"`
	Password    string `env:"WAS_PASSWORD"`

	// RecorderShim, when set, records scripts to memory instead of
	// spawning wsadmin. Dry-run and test wiring only.
	RecorderShim bool `env:"WAS_RECORDER_SHIM" envDefault:"false"`
}

// SyncConfig holds reconciliation behavior configuration.
type SyncConfig struct {
	ManifestDir     string        `env:"MANIFEST_DIR" envDefault:"manifests"`
	AutoSync        bool          `env:"AUTO_SYNC" envDefault:"true"`
	Debounce        time.Duration `env:"SYNC_DEBOUNCE" envDefault:"5s"`
	BootstrapAPIKey string        `env:"BOOTSTRAP_API_KEY"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Pretty bool   `env:"LOG_PRETTY" envDefault:"false"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(&cfg.Server); err != nil {
		return nil, fmt.Errorf("parsing server config: %w", err)
	}
	if err := env.Parse(&cfg.Database); err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	if err := env.Parse(&cfg.Was); err != nil {
		return nil, fmt.Errorf("parsing websphere config: %w", err)
	}
	if err := env.Parse(&cfg.Sync); err != nil {
		return nil, fmt.Errorf("parsing sync config: %w", err)
	}
	if err := env.Parse(&cfg.Log); err != nil {
		return nil, fmt.Errorf("parsing log config: %w", err)
	}

	return cfg, nil
}

// Addr returns the server address in host:port format.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Was.ProfileBase == "" {
		return fmt.Errorf("WAS_PROFILE_BASE is required")
	}
	if !c.Was.RecorderShim && c.Was.WsadminPath == "" {
		return fmt.Errorf("WAS_WSADMIN_PATH is required (or set WAS_RECORDER_SHIM for testing)")
	}
	if c.Sync.ManifestDir == "" {
		return fmt.Errorf("MANIFEST_DIR is required")
	}
	return nil
}
