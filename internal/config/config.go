package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Version-history cleanup policies applied when a note is deleted.
const (
	// HistoryClear rewrites the note's version-history collection to an
	// empty list, keeping the storage key as a cheap tombstone.
	HistoryClear = "clear"

	// HistoryKeep leaves the version history untouched after the note
	// itself is deleted.
	HistoryKeep = "keep"
)

// ServerConfig holds settings for the storage HTTP server.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8420".
	Addr string `mapstructure:"addr" yaml:"addr"`

	// DataDir is the root directory for the per-entity JSON file tree.
	DataDir string `mapstructure:"data_dir" yaml:"data_dir"`
}

// StorageConfig holds settings for the client-side storage gateway.
type StorageConfig struct {
	// UseServer routes reads and writes to the remote storage API
	// instead of the local store.
	UseServer bool `mapstructure:"use_server" yaml:"use_server"`

	// LocalFallback enables the transparent degrade to the local store
	// when a remote call fails.
	LocalFallback bool `mapstructure:"local_fallback" yaml:"local_fallback"`

	// RemoteBaseURL is the root URL of the storage API.
	RemoteBaseURL string `mapstructure:"remote_base_url" yaml:"remote_base_url"`

	// RemoteTimeoutSec bounds each remote call.
	RemoteTimeoutSec int `mapstructure:"remote_timeout_sec" yaml:"remote_timeout_sec"`

	// LocalPath is the SQLite file backing the local store.
	LocalPath string `mapstructure:"local_path" yaml:"local_path"`

	// KeyPrefix scopes local-store keys, mirroring the browser
	// localStorage key prefix.
	KeyPrefix string `mapstructure:"key_prefix" yaml:"key_prefix"`

	// VersionHistoryCleanup is "clear" or "keep"; see the History
	// constants.
	VersionHistoryCleanup string `mapstructure:"version_history_cleanup" yaml:"version_history_cleanup"`
}

// Config is the top-level application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
}

// DefaultConfigPath returns the default path for the configuration
// file, located at ~/.config/prodman/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "prodman", "config.yaml")
}

// defaultConfig returns a sensible default configuration.
func defaultConfig() *Config {
	dataDir := "data"
	localPath := "prodman.db"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".local", "share", "prodman", "data")
		localPath = filepath.Join(home, ".local", "share", "prodman", "local.db")
	}
	return &Config{
		Server: ServerConfig{
			Addr:    ":8420",
			DataDir: dataDir,
		},
		Storage: StorageConfig{
			UseServer:             true,
			LocalFallback:         true,
			RemoteBaseURL:         "http://localhost:8420",
			RemoteTimeoutSec:      30,
			LocalPath:             localPath,
			KeyPrefix:             "prodman",
			VersionHistoryCleanup: HistoryClear,
		},
	}
}

// Load reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	def := defaultConfig()

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("server.addr", def.Server.Addr)
	v.SetDefault("server.data_dir", def.Server.DataDir)
	v.SetDefault("storage.use_server", def.Storage.UseServer)
	v.SetDefault("storage.local_fallback", def.Storage.LocalFallback)
	v.SetDefault("storage.remote_base_url", def.Storage.RemoteBaseURL)
	v.SetDefault("storage.remote_timeout_sec", def.Storage.RemoteTimeoutSec)
	v.SetDefault("storage.local_path", def.Storage.LocalPath)
	v.SetDefault("storage.key_prefix", def.Storage.KeyPrefix)
	v.SetDefault("storage.version_history_cleanup", def.Storage.VersionHistoryCleanup)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return def, nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return def, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Storage.VersionHistoryCleanup != HistoryClear &&
		cfg.Storage.VersionHistoryCleanup != HistoryKeep {
		return nil, fmt.Errorf(
			"config %s: storage.version_history_cleanup must be %q or %q, got %q",
			path, HistoryClear, HistoryKeep, cfg.Storage.VersionHistoryCleanup,
		)
	}

	return cfg, nil
}

// Save writes the given configuration to a YAML file at path, creating
// parent directories if needed.
func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("server", cfg.Server)
	v.Set("storage", cfg.Storage)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
