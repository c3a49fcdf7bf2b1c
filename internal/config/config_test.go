package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CLIPVAULT_DATA_DIR", "CLIPVAULT_DB_PATH", "CLIPVAULT_PORT",
		"CLIPVAULT_LOG_LEVEL", "CLIPVAULT_PRETTY_LOG", "CLIPVAULT_PASSPHRASE",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Port != 7632 {
		t.Errorf("Port = %d, want 7632", cfg.Port)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("ShutdownTimeout = %v", cfg.ShutdownTimeout)
	}
	if cfg.DBPath != filepath.Join(cfg.DataDir, "clipvault.db") {
		t.Errorf("DBPath = %q, want under %q", cfg.DBPath, cfg.DataDir)
	}
	if cfg.SaltPath() != filepath.Join(cfg.DataDir, "salt") {
		t.Errorf("SaltPath = %q", cfg.SaltPath())
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "data_dir: /tmp/cv-test\nport: 9000\nlog_level: debug\npretty_log: true\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.DataDir != "/tmp/cv-test" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Port)
	}
	if cfg.LogLevel != "debug" || !cfg.PrettyLog {
		t.Errorf("logging config not applied: %q %v", cfg.LogLevel, cfg.PrettyLog)
	}
	if cfg.DBPath != filepath.Join("/tmp/cv-test", "clipvault.db") {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	clearEnv(t)

	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("a missing explicit config file must be an error")
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("port: [not a number"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("a malformed config file must be an error")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("port: 9000\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CLIPVAULT_PORT", "9100")
	t.Setenv("CLIPVAULT_PASSPHRASE", "hunter2")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Port != 9100 {
		t.Errorf("Port = %d, want env override 9100", cfg.Port)
	}
	if cfg.Passphrase != "hunter2" {
		t.Error("passphrase must come from the environment")
	}
}

func TestLoad_PortOutOfRange(t *testing.T) {
	clearEnv(t)

	t.Setenv("CLIPVAULT_PORT", "70000")
	if _, err := Load(""); err == nil {
		t.Error("out-of-range port must be rejected")
	}
}
