package embedding

import (
	"fmt"
	"hash/fnv"
	"math"
	"sort"

	"videorag/internal/adapter/analyzer"
	"videorag/internal/port"
)

// HashingModelName identifies the local feature-hashing model. Bump the
// suffix whenever the vectorization changes.
const HashingModelName = "hashing-v1"

// HashingEmbedder is an offline embedder that feature-hashes stemmed terms
// into a fixed number of buckets with sublinear term frequency. Output is a
// pure function of the input text and the dimension.
type HashingEmbedder struct {
	tokenizer port.Tokenizer
	dimension int
}

func NewHashingEmbedder(dimension int, tokenizer port.Tokenizer) (*HashingEmbedder, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("invalid embedding dimension: %d", dimension)
	}
	if tokenizer == nil {
		tokenizer = analyzer.NewTokenizer(true)
	}
	return &HashingEmbedder{
		tokenizer: tokenizer,
		dimension: dimension,
	}, nil
}

func (e *HashingEmbedder) Embed(texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embeddings[i] = e.vectorize(text)
	}
	return embeddings, nil
}

func (e *HashingEmbedder) vectorize(text string) []float32 {
	vec := make([]float32, e.dimension)

	tf := e.tokenizer.TermFrequencies(text)
	// Fixed term order keeps bucket sums bit-identical across runs.
	terms := make([]string, 0, len(tf))
	for term := range tf {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	for _, term := range terms {
		weight := 1 + math.Log(float64(tf[term]))
		vec[bucket(term, e.dimension)] += float32(weight)
	}
	return vec
}

func bucket(term string, dimension int) int {
	h := fnv.New32a()
	h.Write([]byte(term))
	return int(h.Sum32() % uint32(dimension))
}

func (e *HashingEmbedder) Dimension() int {
	return e.dimension
}

func (e *HashingEmbedder) ModelName() string {
	return HashingModelName
}

func (e *HashingEmbedder) ConcurrencySafe() bool {
	return true
}
