// Package config loads service configuration in three layers: struct
// defaults, an optional YAML file, then SOULSYNC_* environment variables
// (highest priority).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the config file search path.
const ConfigPathEnvVar = "SOULSYNC_CONFIG"

// defaultConfigPaths are searched in order; the first existing file wins.
var defaultConfigPaths = []string{
	"soulsync.yaml",
	"soulsync.yml",
	"/etc/soulsync/soulsync.yaml",
}

// Config holds all service configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	DB         DBConfig         `koanf:"db"`
	Drift      DriftConfig      `koanf:"drift"`
	Media      MediaConfig      `koanf:"media"`
	Classifier ClassifierConfig `koanf:"classifier"`
	Ingest     IngestConfig     `koanf:"ingest"`
	Log        LogConfig        `koanf:"log"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	RateLimitPerMin int           `koanf:"rate_limit_per_min"`
}

// DBConfig configures the SQLite history store.
type DBConfig struct {
	DataDir string `koanf:"data_dir"`
	Path    string `koanf:"path"`
}

// DriftConfig configures the stability analyzer.
type DriftConfig struct {
	Threshold int `koanf:"threshold"`
}

// MediaConfig configures the two media capabilities. Empty credentials
// leave the corresponding capability unconfigured; requests for it report
// provider-unavailable instead of failing at startup.
type MediaConfig struct {
	CatalogBaseURL      string        `koanf:"catalog_base_url"`
	CatalogTokenURL     string        `koanf:"catalog_token_url"`
	CatalogClientID     string        `koanf:"catalog_client_id"`
	CatalogClientSecret string        `koanf:"catalog_client_secret"`
	SynthAPIKey         string        `koanf:"synth_api_key"`
	SynthModel          string        `koanf:"synth_model"`
	SynthVoice          string        `koanf:"synth_voice"`
	LookupTimeout       time.Duration `koanf:"lookup_timeout"`
	SynthesisTimeout    time.Duration `koanf:"synthesis_timeout"`
}

// ClassifierConfig points at the external inference service.
type ClassifierConfig struct {
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
}

// IngestConfig configures the watch-folder audio ingester. An empty
// WatchDir disables it.
type IngestConfig struct {
	WatchDir string        `koanf:"watch_dir"`
	Debounce time.Duration `koanf:"debounce"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Level  string `koanf:"level"`
	Pretty bool   `koanf:"pretty"`
}

// DefaultDataDir returns the default data directory (~/.soulsync).
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".soulsync")
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	dataDir := DefaultDataDir()
	return &Config{
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8000,
			ShutdownTimeout: 10 * time.Second,
			RateLimitPerMin: 300,
		},
		DB: DBConfig{
			DataDir: dataDir,
			Path:    "", // derived from DataDir when empty
		},
		Drift: DriftConfig{
			Threshold: 2,
		},
		Media: MediaConfig{
			CatalogBaseURL:   "https://api.spotify.com",
			CatalogTokenURL:  "https://accounts.spotify.com/api/token",
			LookupTimeout:    5 * time.Second,
			SynthesisTimeout: 45 * time.Second,
		},
		Classifier: ClassifierConfig{
			Timeout: 30 * time.Second,
		},
		Ingest: IngestConfig{
			Debounce: 500 * time.Millisecond,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds the effective configuration: defaults, then the config file
// if one exists, then environment variables. A missing config file is fine.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// SOULSYNC_SERVER_PORT -> server.port; the first underscore separates
	// the section, the rest stays a single key (keys themselves contain
	// underscores, e.g. media.catalog_client_id).
	envProvider := env.Provider("SOULSYNC_", ".", func(s string) string {
		trimmed := strings.ToLower(strings.TrimPrefix(s, "SOULSYNC_"))
		parts := strings.SplitN(trimmed, "_", 2)
		return strings.Join(parts, ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.applyDerived()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDerived fills paths that default relative to the data directory.
func (c *Config) applyDerived() {
	if c.DB.DataDir == "" {
		c.DB.DataDir = DefaultDataDir()
	}
	if c.DB.Path == "" {
		c.DB.Path = filepath.Join(c.DB.DataDir, "soulsync.db")
	}
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Drift.Threshold < 1 {
		return fmt.Errorf("drift.threshold must be positive, got %d", c.Drift.Threshold)
	}
	return nil
}

// EnsureDataDir creates the data directory if it does not exist.
func (c *Config) EnsureDataDir() error {
	return os.MkdirAll(c.DB.DataDir, 0755)
}

// Addr returns the HTTP listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
		return ""
	}
	for _, p := range defaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
