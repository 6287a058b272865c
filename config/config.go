package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for videorag.
type Config struct {
	Data      DataConfig      `yaml:"data"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Chunk     ChunkConfig     `yaml:"chunk"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Index     IndexConfig     `yaml:"index"`
	Retrieve  RetrieveConfig  `yaml:"retrieve"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DataConfig locates the persisted snapshot files.
type DataConfig struct {
	Dir        string `yaml:"dir"` // relative paths resolve against the root dir
	CorpusFile string `yaml:"corpus_file"`
	IndexFile  string `yaml:"index_file"`
}

// IngestConfig controls transcript discovery.
type IngestConfig struct {
	Includes       []string `yaml:"includes"`
	Excludes       []string `yaml:"excludes"`
	NoSpeechMarker string   `yaml:"no_speech_marker"`
	FailureMarker  string   `yaml:"failure_marker"`
}

// ChunkConfig holds chunking configuration.
type ChunkConfig struct {
	TargetWords int `yaml:"target_words"`
}

// EmbeddingConfig holds embedding configuration.
type EmbeddingConfig struct {
	Provider    string `yaml:"provider"` // "local", "openai", "ollama"
	Model       string `yaml:"model"`
	APIKeyEnv   string `yaml:"api_key_env"`
	BaseURL     string `yaml:"base_url"`
	Dimension   int    `yaml:"dimension"`
	BatchSize   int    `yaml:"batch_size"`
	Concurrency int    `yaml:"concurrency"`
	Stemming    bool   `yaml:"stemming"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// IndexConfig holds vector index configuration.
type IndexConfig struct {
	Compress bool `yaml:"compress"`
}

// RetrieveConfig holds query-time configuration.
type RetrieveConfig struct {
	TopK      int           `yaml:"top_k"`
	CacheSize int           `yaml:"cache_size"` // 0 disables the query cache
	CacheTTL  time.Duration `yaml:"cache_ttl"`
}

// ServerConfig holds HTTP adapter configuration.
type ServerConfig struct {
	Addr  string `yaml:"addr"`
	Watch bool   `yaml:"watch"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Dir:        ".videorag",
			CorpusFile: "corpus.db",
			IndexFile:  "vectors.idx",
		},
		Ingest: IngestConfig{
			Includes:       []string{"**/*.txt"},
			Excludes:       []string{"**/.videorag/**", "**/.git/**"},
			NoSpeechMarker: "No speech detected.",
			FailureMarker:  "Transcription failed due to an error.",
		},
		Chunk: ChunkConfig{
			TargetWords: 50,
		},
		Embedding: EmbeddingConfig{
			Provider:    "local",
			Model:       "hashing-v1",
			APIKeyEnv:   "OPENAI_API_KEY",
			Dimension:   384,
			BatchSize:   64,
			Concurrency: 4,
			Stemming:    true,
			TimeoutSecs: 60,
		},
		Index: IndexConfig{
			Compress: true,
		},
		Retrieve: RetrieveConfig{
			TopK:      3,
			CacheSize: 256,
			CacheTTL:  5 * time.Minute,
		},
		Server: ServerConfig{
			Addr: ":8000",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for videorag.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "videorag.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".videorag", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// DataDir returns the absolute data directory for root.
func (c *Config) DataDir(root string) string {
	if filepath.IsAbs(c.Data.Dir) {
		return c.Data.Dir
	}
	return filepath.Join(root, c.Data.Dir)
}

// CorpusPath returns the path to the corpus database.
func (c *Config) CorpusPath(root string) string {
	return filepath.Join(c.DataDir(root), c.Data.CorpusFile)
}

// IndexPath returns the path to the vector index file.
func (c *Config) IndexPath(root string) string {
	return filepath.Join(c.DataDir(root), c.Data.IndexFile)
}

// EnsureDataDir ensures the data directory exists.
func (c *Config) EnsureDataDir(root string) error {
	return os.MkdirAll(c.DataDir(root), 0755)
}

// Timeout returns the remote embedding request timeout.
func (e EmbeddingConfig) Timeout() time.Duration {
	if e.TimeoutSecs <= 0 {
		return 60 * time.Second
	}
	return time.Duration(e.TimeoutSecs) * time.Second
}
