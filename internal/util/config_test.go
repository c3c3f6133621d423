package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfiguration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kestrel.toml")
	content := `
log_level = "debug"

[[database]]
name = "main"
driver = "sqlite3"
dsn = ":memory:"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	base := Configuration{Version: "test", LogLevel: "error", LogFile: "base.log"}
	config, err := LoadConfiguration(path, base)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if config.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", config.LogLevel)
	}
	if config.LogFile != "base.log" {
		t.Errorf("absent fields should keep base values, LogFile = %q", config.LogFile)
	}
	if config.Version != "test" {
		t.Errorf("Version = %q, want test", config.Version)
	}
	if len(config.Databases) != 1 || config.Databases[0].Driver != "sqlite3" {
		t.Errorf("databases not decoded: %+v", config.Databases)
	}
}

func TestLoadConfigurationMissingFile(t *testing.T) {
	base := Configuration{LogLevel: "warn"}
	config, err := LoadConfiguration(filepath.Join(t.TempDir(), "absent.toml"), base)
	if err == nil {
		t.Fatalf("expected an error for a missing file")
	}
	if config.LogLevel != "warn" {
		t.Errorf("base configuration should come back unchanged on error")
	}
}
