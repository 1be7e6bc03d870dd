package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		// viper treats an explicit missing file as an error; fall back to
		// default discovery for the defaults check below.
		t.Fatalf("expected error for explicit missing file")
	}

	cfg, err = LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig with defaults: %v", err)
	}
	if cfg.Agents.MaxHistory != 10 {
		t.Fatalf("expected default max_history 10, got %d", cfg.Agents.MaxHistory)
	}
	if cfg.Agents.MaxClarifications != 2 {
		t.Fatalf("expected default max_clarifications 2, got %d", cfg.Agents.MaxClarifications)
	}
	if cfg.Retrieval.MinSimilarity != 0.5 {
		t.Fatalf("expected default min_similarity 0.5, got %v", cfg.Retrieval.MinSimilarity)
	}
	if cfg.Memory.TTL != 24*time.Hour {
		t.Fatalf("expected default memory ttl 24h, got %v", cfg.Memory.TTL)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte("agents:\n  max_clarifications: 3\nretrieval:\n  top_k: 7\nmemory:\n  provider: redis\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Agents.MaxClarifications != 3 {
		t.Fatalf("expected max_clarifications 3, got %d", cfg.Agents.MaxClarifications)
	}
	if cfg.Retrieval.TopK != 7 {
		t.Fatalf("expected top_k 7, got %d", cfg.Retrieval.TopK)
	}
	if cfg.Memory.Provider != "redis" {
		t.Fatalf("expected memory provider redis, got %q", cfg.Memory.Provider)
	}
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	cfg.Retrieval.TopK = 50
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation error for top_k out of range")
	}
	cfg.Retrieval.TopK = 5
	cfg.Retrieval.MinSimilarity = 1.5
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation error for min_similarity out of range")
	}
}
