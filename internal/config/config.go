// Package config provides configuration loading and structs for the shabd server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug        bool               `yaml:"debug"`
	Server       ServerConfig       `yaml:"server"`
	Storage      StorageConfig      `yaml:"storage"`
	Languages    []string           `yaml:"languages"`
	Sync         SyncConfig         `yaml:"sync"`
	Translate    TranslateConfig    `yaml:"translate"`
	Connectivity ConnectivityConfig `yaml:"connectivity"`
	Ingest       IngestConfig       `yaml:"ingest"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the database, pending file, and search index.
type StorageConfig struct {
	DatabasePath    string `yaml:"database_path"`
	PendingPath     string `yaml:"pending_path"`
	SearchIndexPath string `yaml:"search_index_path"`
}

// SyncConfig holds background reconciliation settings.
type SyncConfig struct {
	IntervalSeconds int `yaml:"interval_seconds"`
	MaxConcurrent   int `yaml:"max_concurrent"`
}

// TranslateConfig holds translation provider settings.
type TranslateConfig struct {
	Endpoint       string `yaml:"endpoint"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	RetryAttempts  int    `yaml:"retry_attempts"`
	RetryDelayMS   int    `yaml:"retry_delay_ms"`
}

// ConnectivityConfig holds reachability probe settings.
type ConnectivityConfig struct {
	Address        string `yaml:"address"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// IngestConfig holds transcript drop-directory settings. When Directory is
// empty, ingest watching is disabled.
type IngestConfig struct {
	Directory string `yaml:"directory"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.PendingPath = expandPath(cfg.Storage.PendingPath, configDir)
	cfg.Storage.SearchIndexPath = expandPath(cfg.Storage.SearchIndexPath, configDir)
	if cfg.Ingest.Directory != "" {
		cfg.Ingest.Directory = expandPath(cfg.Ingest.Directory, configDir)
	}

	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
