// Package config loads daemon configuration: defaults, then an
// optional YAML file, then CLIPVAULT_* environment variables, each
// layer overriding the previous.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the daemon's process configuration. Clipboard behavior
// (retention, encryption toggle, excluded apps) lives in the persisted
// Settings aggregate, not here.
type Config struct {
	DataDir string `yaml:"data_dir"` // base directory for db, salt and pid files
	DBPath  string `yaml:"db_path"`  // defaults to <data_dir>/clipvault.db

	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	LogLevel  string `yaml:"log_level"` // "debug" | "info" | "warn" | "error"
	PrettyLog bool   `yaml:"pretty_log"`

	// Passphrase unlocks history encryption. Only read from the
	// environment, never from the config file.
	Passphrase string `yaml:"-"`
}

// Load builds the configuration. configFile may be empty; a missing
// explicit file is an error, a missing default file is not.
func Load(configFile string) (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	cfg := &Config{
		DataDir:         filepath.Join(homeDir, ".clipvault"),
		Port:            7632,
		ShutdownTimeout: 5 * time.Second,
		LogLevel:        "info",
		PrettyLog:       false,
	}

	explicit := configFile != ""
	if configFile == "" {
		configFile = filepath.Join(cfg.DataDir, "config.yaml")
	}
	if data, err := os.ReadFile(configFile); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	cfg.DataDir = getenv("CLIPVAULT_DATA_DIR", cfg.DataDir)
	cfg.DBPath = getenv("CLIPVAULT_DB_PATH", cfg.DBPath)
	cfg.Port = getenvInt("CLIPVAULT_PORT", cfg.Port)
	cfg.LogLevel = getenv("CLIPVAULT_LOG_LEVEL", cfg.LogLevel)
	cfg.PrettyLog = getenvBool("CLIPVAULT_PRETTY_LOG", cfg.PrettyLog)
	cfg.Passphrase = os.Getenv("CLIPVAULT_PASSPHRASE")

	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.DataDir, "clipvault.db")
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port out of range: %d", cfg.Port)
	}
	return cfg, nil
}

// SaltPath is where the encryption key-derivation salt lives.
func (c *Config) SaltPath() string {
	return filepath.Join(c.DataDir, "salt")
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
