package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.BaseURL != "http://localhost:8080" {
		t.Errorf("default base URL = %q", cfg.Server.BaseURL)
	}
	if cfg.Quiz.DefaultCount != 5 {
		t.Errorf("default count = %d", cfg.Quiz.DefaultCount)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  baseUrl: https://quiz.example.com
quiz:
  defaultCount: 10
  modeOverride: exam
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.BaseURL != "https://quiz.example.com" {
		t.Errorf("base URL = %q", cfg.Server.BaseURL)
	}
	if cfg.Quiz.DefaultCount != 10 || cfg.Quiz.ModeOverride != "exam" {
		t.Errorf("quiz section = %+v", cfg.Quiz)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  baseUrl: https://file.example.com\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BELLRING_SERVER", "https://env.example.com")
	t.Setenv("BELLRING_DB", "/tmp/env.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.BaseURL != "https://env.example.com" {
		t.Errorf("env should win over file, got %q", cfg.Server.BaseURL)
	}
	if cfg.Cache.Path != "/tmp/env.db" {
		t.Errorf("cache path = %q", cfg.Cache.Path)
	}
}

func TestLoadRejectsBrokenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [broken"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}
