package embedding

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/sync/errgroup"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOllamaBaseURL = "http://localhost:11434/v1"
)

// RemoteEmbedder calls an OpenAI-compatible embeddings endpoint. Large
// inputs are split into batches that run concurrently and are reassembled
// in input order.
type RemoteEmbedder struct {
	client      *openai.Client
	model       string
	dimension   int
	batchSize   int
	concurrency int
}

// RemoteOptions configures a RemoteEmbedder.
type RemoteOptions struct {
	APIKey      string
	BaseURL     string
	Model       string
	Dimension   int // used when the model name is not recognized
	BatchSize   int
	Concurrency int
	Timeout     time.Duration
}

func NewOpenAIEmbedder(apiKeyEnv string, opts RemoteOptions) (*RemoteEmbedder, error) {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in environment variable: %s", apiKeyEnv)
	}
	opts.APIKey = apiKey
	if opts.BaseURL == "" {
		opts.BaseURL = defaultOpenAIBaseURL
	}
	if opts.Model == "" {
		opts.Model = "text-embedding-3-small"
	}
	return NewRemoteEmbedder(opts)
}

func NewOllamaEmbedder(opts RemoteOptions) (*RemoteEmbedder, error) {
	opts.APIKey = "ollama"
	if opts.BaseURL == "" {
		opts.BaseURL = defaultOllamaBaseURL
	}
	if opts.Model == "" {
		opts.Model = "all-minilm"
	}
	return NewRemoteEmbedder(opts)
}

func NewRemoteEmbedder(opts RemoteOptions) (*RemoteEmbedder, error) {
	if opts.Model == "" {
		return nil, fmt.Errorf("embedding model not configured")
	}

	dimension := modelDimension(opts.Model)
	if dimension == 0 {
		dimension = opts.Dimension
	}
	if dimension <= 0 {
		return nil, fmt.Errorf("unknown dimension for model %s; set embedding.dimension", opts.Model)
	}

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = 64
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	cfg := openai.DefaultConfig(opts.APIKey)
	cfg.BaseURL = opts.BaseURL
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	return &RemoteEmbedder{
		client:      openai.NewClientWithConfig(cfg),
		model:       opts.Model,
		dimension:   dimension,
		batchSize:   batchSize,
		concurrency: concurrency,
	}, nil
}

func modelDimension(model string) int {
	switch model {
	case "text-embedding-3-small", "text-embedding-ada-002":
		return 1536
	case "text-embedding-3-large":
		return 3072
	case "all-minilm", "all-minilm:l6-v2", "all-MiniLM-L6-v2":
		return 384
	case "nomic-embed-text":
		return 768
	case "mxbai-embed-large":
		return 1024
	default:
		return 0
	}
}

func (e *RemoteEmbedder) Embed(texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	if len(texts) == 0 {
		return embeddings, nil
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(e.concurrency)

	for start := 0; start < len(texts); start += e.batchSize {
		end := min(start+e.batchSize, len(texts))
		g.Go(func() error {
			batch, err := e.embedBatch(ctx, texts[start:end])
			if err != nil {
				return fmt.Errorf("embedding batch %d-%d failed: %w", start, end, err)
			}
			copy(embeddings[start:end], batch)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return embeddings, nil
}

func (e *RemoteEmbedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	embeddings := make([][]float32, len(texts))
	for _, data := range resp.Data {
		if data.Index < 0 || data.Index >= len(embeddings) {
			return nil, fmt.Errorf("response index %d out of range", data.Index)
		}
		if len(data.Embedding) != e.dimension {
			return nil, fmt.Errorf("vector dimension mismatch: expected %d, got %d", e.dimension, len(data.Embedding))
		}
		embeddings[data.Index] = data.Embedding
	}
	for i, v := range embeddings {
		if v == nil {
			return nil, fmt.Errorf("no embedding returned for input %d", i)
		}
	}

	return embeddings, nil
}

func (e *RemoteEmbedder) Dimension() int {
	return e.dimension
}

func (e *RemoteEmbedder) ModelName() string {
	return e.model
}

func (e *RemoteEmbedder) ConcurrencySafe() bool {
	return true
}
