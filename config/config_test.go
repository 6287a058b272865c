package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Chunk.TargetWords != 50 {
		t.Errorf("expected TargetWords=50, got %d", cfg.Chunk.TargetWords)
	}
	if cfg.Embedding.Dimension != 384 {
		t.Errorf("expected Dimension=384, got %d", cfg.Embedding.Dimension)
	}
	if cfg.Embedding.Provider != "local" {
		t.Errorf("expected Provider=local, got %s", cfg.Embedding.Provider)
	}
	if cfg.Retrieve.TopK != 3 {
		t.Errorf("expected TopK=3, got %d", cfg.Retrieve.TopK)
	}
	if cfg.Ingest.FailureMarker != "Transcription failed due to an error." {
		t.Errorf("unexpected FailureMarker %q", cfg.Ingest.FailureMarker)
	}
	if cfg.Server.Addr != ":8000" {
		t.Errorf("expected Addr=:8000, got %s", cfg.Server.Addr)
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Errorf("expected no error for non-existent file, got %v", err)
	}
	if cfg == nil {
		t.Error("expected default config, got nil")
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "videorag.yaml")

	content := `
chunk:
  target_words: 120
embedding:
  provider: ollama
  model: all-minilm
retrieve:
  top_k: 10
  cache_ttl: 30s
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Chunk.TargetWords != 120 {
		t.Errorf("expected TargetWords=120, got %d", cfg.Chunk.TargetWords)
	}
	if cfg.Embedding.Provider != "ollama" {
		t.Errorf("expected Provider=ollama, got %s", cfg.Embedding.Provider)
	}
	if cfg.Retrieve.TopK != 10 {
		t.Errorf("expected TopK=10, got %d", cfg.Retrieve.TopK)
	}
	if cfg.Retrieve.CacheTTL != 30*time.Second {
		t.Errorf("expected CacheTTL=30s, got %v", cfg.Retrieve.CacheTTL)
	}
	// untouched sections keep their defaults
	if cfg.Embedding.Dimension != 384 {
		t.Errorf("expected default Dimension=384, got %d", cfg.Embedding.Dimension)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "videorag.yaml")
	if err := os.WriteFile(configPath, []byte("chunk: [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(configPath); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestLoadFromDir(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tmpDir, ".videorag"), 0755); err != nil {
		t.Fatal(err)
	}
	configPath := filepath.Join(tmpDir, ".videorag", "config.yaml")

	content := `
server:
  addr: ":9090"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("expected Addr=:9090, got %s", cfg.Server.Addr)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "videorag.yaml")

	cfg := DefaultConfig()
	cfg.Chunk.TargetWords = 77
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Chunk.TargetWords != 77 {
		t.Errorf("expected TargetWords=77, got %d", loaded.Chunk.TargetWords)
	}
}

func TestDataPaths(t *testing.T) {
	cfg := DefaultConfig()

	corpus := cfg.CorpusPath("/home/user/videos")
	expected := filepath.Join("/home/user/videos", ".videorag", "corpus.db")
	if corpus != expected {
		t.Errorf("expected %s, got %s", expected, corpus)
	}

	cfg.Data.Dir = "/var/lib/videorag"
	index := cfg.IndexPath("/home/user/videos")
	expected = filepath.Join("/var/lib/videorag", "vectors.idx")
	if index != expected {
		t.Errorf("expected %s, got %s", expected, index)
	}
}
