package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if cfg.Listen != ":8080" {
		t.Fatalf("unexpected listen address: %q", cfg.Listen)
	}
	if cfg.SessionTTL.Duration != 4*time.Hour {
		t.Fatalf("unexpected session TTL: %v", cfg.SessionTTL.Duration)
	}
	if len(cfg.InputHeaders) == 0 || len(cfg.CategoryFills) == 0 {
		t.Fatalf("expected default labels and fills")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ims.toml")
	content := `
listen = ":9090"
template_dir = "/srv/templates"
session_ttl = "2h"
input_headers = ["OK"]
category_fills = ["FF0000"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen != ":9090" || cfg.TemplateDir != "/srv/templates" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.SessionTTL.Duration != 2*time.Hour {
		t.Fatalf("unexpected TTL: %v", cfg.SessionTTL.Duration)
	}
	if len(cfg.InputHeaders) != 1 || cfg.InputHeaders[0] != "OK" {
		t.Fatalf("headers not replaced: %v", cfg.InputHeaders)
	}
	if cfg.OutputDir != "output" {
		t.Fatalf("expected default output dir to survive, got %q", cfg.OutputDir)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("IMS_LISTEN", ":7000")
	t.Setenv("IMS_SESSION_TTL", "30m")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen != ":7000" {
		t.Fatalf("env listen not applied: %q", cfg.Listen)
	}
	if cfg.SessionTTL.Duration != 30*time.Minute {
		t.Fatalf("env TTL not applied: %v", cfg.SessionTTL.Duration)
	}
}

func TestLoadRejectsBadTTL(t *testing.T) {
	t.Setenv("IMS_SESSION_TTL", "soon")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for unparseable TTL")
	}
}
