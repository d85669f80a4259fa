package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration wraps time.Duration so TOML values like "4h" decode directly.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// Config holds everything the server needs at startup. Values come from
// defaults, then an optional TOML file, then environment overrides.
type Config struct {
	Listen        string   `toml:"listen"`
	TemplateDir   string   `toml:"template_dir"`
	OutputDir     string   `toml:"output_dir"`
	SessionTTL    Duration `toml:"session_ttl"`
	InputHeaders  []string `toml:"input_headers"`
	CategoryFills []string `toml:"category_fills"`
}

// Default returns the built-in configuration. The header labels and the
// category highlight color are the documented template styling convention.
func Default() Config {
	return Config{
		Listen:      ":8080",
		TemplateDir: "templates",
		OutputDir:   "output",
		SessionTTL:  Duration{4 * time.Hour},
		InputHeaders: []string{
			"Date Inspected by who?",
			"Date Inspected by who",
			"OK",
			"OK?",
			"What to look for:",
			"What to look for?",
		},
		CategoryFills: []string{"FFFFFF00"},
	}
}

// Load builds the configuration. path may be empty, in which case only
// defaults and environment variables apply; a non-empty path must exist.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	cfg.Listen = getenv("IMS_LISTEN", cfg.Listen)
	cfg.TemplateDir = getenv("IMS_TEMPLATE_DIR", cfg.TemplateDir)
	cfg.OutputDir = getenv("IMS_OUTPUT_DIR", cfg.OutputDir)
	if raw := os.Getenv("IMS_SESSION_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("IMS_SESSION_TTL: %w", err)
		}
		cfg.SessionTTL = Duration{ttl}
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
