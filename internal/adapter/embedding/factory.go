package embedding

import (
	"fmt"

	"videorag/config"
	"videorag/internal/adapter/analyzer"
	"videorag/internal/port"
)

// NewFromConfig builds the embedder selected by cfg.Provider. An error here
// means the model is unavailable and the caller must not continue.
func NewFromConfig(cfg config.EmbeddingConfig) (port.Embedder, error) {
	opts := RemoteOptions{
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		Dimension:   cfg.Dimension,
		BatchSize:   cfg.BatchSize,
		Concurrency: cfg.Concurrency,
		Timeout:     cfg.Timeout(),
	}

	var (
		emb port.Embedder
		err error
	)
	switch cfg.Provider {
	case "local", "":
		emb, err = newLocal(cfg)
	case "openai":
		if cfg.Model == HashingModelName {
			opts.Model = ""
		}
		emb, err = newOpenAI(cfg.APIKeyEnv, opts)
	case "ollama":
		if cfg.Model == HashingModelName {
			opts.Model = ""
		}
		emb, err = newOllama(opts)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return emb, nil
}

// The wrappers below keep typed nil pointers out of the port.Embedder
// interface on error.

func newLocal(cfg config.EmbeddingConfig) (port.Embedder, error) {
	e, err := NewHashingEmbedder(cfg.Dimension, analyzer.NewTokenizer(cfg.Stemming))
	if err != nil {
		return nil, err
	}
	return e, nil
}

func newOpenAI(apiKeyEnv string, opts RemoteOptions) (port.Embedder, error) {
	e, err := NewOpenAIEmbedder(apiKeyEnv, opts)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func newOllama(opts RemoteOptions) (port.Embedder, error) {
	e, err := NewOllamaEmbedder(opts)
	if err != nil {
		return nil, err
	}
	return e, nil
}
