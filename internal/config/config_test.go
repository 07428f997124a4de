package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigPopulatesPaths(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.CorpusPath == "" || cfg.IndexPath == "" || cfg.ClassifierPath == "" {
		t.Errorf("DefaultConfig() = %+v, want all paths populated", cfg)
	}
}

func TestLoadMissingOverlayReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.CorpusPath == "" {
		t.Errorf("Load() with missing overlay = %+v, want default paths", cfg)
	}
}

func TestLoadOverlayOverridesPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pubsearch.yaml")
	if err := os.WriteFile(path, []byte("corpusPath: /tmp/custom-corpus.json\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.CorpusPath != "/tmp/custom-corpus.json" {
		t.Errorf("CorpusPath = %q, want overlay value", cfg.CorpusPath)
	}
}

func TestValidateRejectsEmptyPaths(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() on empty Config = nil error, want error")
	}
}
