package config

import (
	"os"
	"path/filepath"
	"testing"
)

func useTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("TSS_CONFIG", path)
	if content != "" {
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write config: %v", err)
		}
	}
	return path
}

func TestLoadMissingFile(t *testing.T) {
	useTempConfig(t, "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Sources) != 0 {
		t.Errorf("sources = %+v, want empty", cfg.Sources)
	}
}

func TestLoadAndSave(t *testing.T) {
	useTempConfig(t, "")

	in := &Config{
		Database: "/tmp/tss.db",
		Sources: map[string]SourceConfig{
			"pocket": {APIKey: "pk-12345678", DefaultTag: "standup"},
		},
	}
	if err := Save(in); err != nil {
		t.Fatalf("save: %v", err)
	}

	out, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out.Database != "/tmp/tss.db" {
		t.Errorf("database = %q", out.Database)
	}
	if out.Sources["pocket"].DefaultTag != "standup" {
		t.Errorf("sources = %+v", out.Sources)
	}
}

func TestAPIKeyPrecedence(t *testing.T) {
	useTempConfig(t, "sources:\n  fireflies:\n    api_key: from-file\n")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	// Flag beats everything.
	key, err := cfg.APIKey("fireflies", "from-flag")
	if err != nil {
		t.Fatalf("api key: %v", err)
	}
	if key != "from-flag" {
		t.Errorf("key = %q, want from-flag", key)
	}

	// Environment beats the file.
	t.Setenv("TSS_FIREFLIES_API_KEY", "from-env")
	key, err = cfg.APIKey("fireflies", "")
	if err != nil {
		t.Fatalf("api key: %v", err)
	}
	if key != "from-env" {
		t.Errorf("key = %q, want from-env", key)
	}

	// The stored key is the fallback.
	t.Setenv("TSS_FIREFLIES_API_KEY", "")
	key, err = cfg.APIKey("fireflies", "")
	if err != nil {
		t.Fatalf("api key: %v", err)
	}
	if key != "from-file" {
		t.Errorf("key = %q, want from-file", key)
	}
}

func TestAPIKeyCommand(t *testing.T) {
	useTempConfig(t, "sources:\n  pocket:\n    api_key_command: \"echo from-command\"\n")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	key, err := cfg.APIKey("pocket", "")
	if err != nil {
		t.Fatalf("api key: %v", err)
	}
	if key != "from-command" {
		t.Errorf("key = %q, want from-command", key)
	}
}

func TestAPIKeyMissing(t *testing.T) {
	useTempConfig(t, "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := cfg.APIKey("fireflies", ""); err == nil {
		t.Fatal("expected error when no credential is configured")
	}
}

func TestRedacted(t *testing.T) {
	cfg := &Config{
		Sources: map[string]SourceConfig{
			"pocket":    {APIKey: "pk-1234567890abcdef", DefaultTag: "standup"},
			"fireflies": {APIKey: "short"},
		},
	}

	red := cfg.Redacted()
	if got := red.Sources["pocket"].APIKey; got != "pk-1...cdef" {
		t.Errorf("redacted = %q", got)
	}
	if got := red.Sources["fireflies"].APIKey; got != "********" {
		t.Errorf("short key redacted = %q", got)
	}
	// Non-secret fields pass through, and the original is untouched.
	if red.Sources["pocket"].DefaultTag != "standup" {
		t.Errorf("default tag = %q", red.Sources["pocket"].DefaultTag)
	}
	if cfg.Sources["pocket"].APIKey != "pk-1234567890abcdef" {
		t.Error("Redacted mutated the original config")
	}
}

func TestInitRefusesOverwrite(t *testing.T) {
	useTempConfig(t, "")

	path, err := Init()
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("starter config missing: %v", err)
	}
	if _, err := Init(); err == nil {
		t.Fatal("expected error when the config already exists")
	}
}
