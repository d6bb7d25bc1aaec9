package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Chunker.ChunkSize != 1000 || cfg.Chunker.Overlap != 200 {
		t.Errorf("chunker defaults = %+v", cfg.Chunker)
	}
	if cfg.Embedder.Provider != "openai" {
		t.Errorf("provider = %q", cfg.Embedder.Provider)
	}
	if cfg.Embedder.OpenAI == nil || cfg.Embedder.OpenAI.Dims != 1536 {
		t.Errorf("openai embedder defaults = %+v", cfg.Embedder.OpenAI)
	}
	if cfg.Import.BatchSize != 10 {
		t.Errorf("batch size = %d", cfg.Import.BatchSize)
	}
}

func TestLoadAppliesPartialDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("chunker:\n  chunk_size: 500\nembedder:\n  provider: ollama\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Chunker.ChunkSize != 500 {
		t.Errorf("explicit chunk size lost: %d", cfg.Chunker.ChunkSize)
	}
	if cfg.Chunker.Overlap != 200 {
		t.Errorf("overlap default not applied: %d", cfg.Chunker.Overlap)
	}
	if cfg.Embedder.Ollama == nil || cfg.Embedder.Ollama.Model != "nomic-embed-text" {
		t.Errorf("ollama defaults = %+v", cfg.Embedder.Ollama)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := defaultConfig()
	cfg.Chat.Model = "gpt-4o"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Chat.Model != "gpt-4o" {
		t.Errorf("model = %q", got.Chat.Model)
	}
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("chunker: [not a mapping"), 0o644)

	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}
