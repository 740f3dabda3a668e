// Package config loads the CLI/daemon configuration file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds settings shared by the CLI commands. All fields have
// working defaults; a config file only overrides what it names.
type Config struct {
	// Database is the path to the SQLite database.
	Database string `yaml:"database"`

	// SnapshotEvery is the automatic snapshot cadence in committed events
	// per document. 0 disables automatic snapshots.
	SnapshotEvery int64 `yaml:"snapshot_every"`

	// IdempotencyWindow is how many revisions idempotency keys are
	// retained for.
	IdempotencyWindow int64 `yaml:"idempotency_window"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Database:          "tabula.db",
		SnapshotEvery:     64,
		IdempotencyWindow: 1024,
	}
}

// Load reads a YAML config file and overlays it on the defaults.
// A missing file is not an error: defaults are returned unchanged.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

func (c Config) validate() error {
	if c.Database == "" {
		return fmt.Errorf("database path is required")
	}
	if c.SnapshotEvery < 0 {
		return fmt.Errorf("snapshot_every must be non-negative, got %d", c.SnapshotEvery)
	}
	if c.IdempotencyWindow < 0 {
		return fmt.Errorf("idempotency_window must be non-negative, got %d", c.IdempotencyWindow)
	}
	return nil
}
