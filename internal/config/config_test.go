package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() error = %v", err)
	}
}

func TestLoadWithoutEnvVarReturnsDefaults(t *testing.T) {
	t.Setenv(EnvVar, "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.WorldSize != 1 || cfg.Rank != 0 {
		t.Errorf("Load() = %+v, want single-rank defaults", cfg)
	}
}

func TestLoadOverlaysYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")
	contents := "world_size: 4\nrank: 2\nthreads: 8\nbound_scheme: A\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Setenv(EnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.WorldSize != 4 || cfg.Rank != 2 || cfg.Threads != 8 || cfg.BoundScheme != "A" {
		t.Errorf("Load() = %+v, want overlaid values", cfg)
	}
}

func TestValidateRejectsRankOutOfRange(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WorldSize = 2
	cfg.Rank = 2
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() error = nil, want error for rank >= world_size")
	}
}

func TestValidateRejectsUnknownScheme(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BoundScheme = "C"
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() error = nil, want error for unknown bound scheme")
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	t.Setenv(EnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Error("Load() error = nil, want error for missing config file")
	}
}
