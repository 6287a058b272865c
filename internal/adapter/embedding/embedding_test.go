package embedding

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"videorag/config"
	"videorag/internal/adapter/analyzer"
)

func TestHashingEmbedderDeterministic(t *testing.T) {
	emb, err := NewHashingEmbedder(384, analyzer.NewTokenizer(true))
	if err != nil {
		t.Fatal(err)
	}

	texts := []string{"The cat sat on the mat.", "Stocks rose today."}
	first, err := emb.Embed(texts)
	if err != nil {
		t.Fatal(err)
	}
	second, err := emb.Embed(texts)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("expected identical vectors for identical input")
	}
	for i, v := range first {
		if len(v) != 384 {
			t.Errorf("vector %d: expected dimension 384, got %d", i, len(v))
		}
	}
}

func TestHashingEmbedderEmptyInput(t *testing.T) {
	emb, err := NewHashingEmbedder(16, nil)
	if err != nil {
		t.Fatal(err)
	}

	vectors, err := emb.Embed(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(vectors) != 0 {
		t.Errorf("expected no vectors, got %d", len(vectors))
	}
}

func TestHashingEmbedderInvalidDimension(t *testing.T) {
	if _, err := NewHashingEmbedder(0, nil); err == nil {
		t.Error("expected error for zero dimension")
	}
}

func TestHashingEmbedderSimilarity(t *testing.T) {
	emb, err := NewHashingEmbedder(384, analyzer.NewTokenizer(true))
	if err != nil {
		t.Fatal(err)
	}

	vectors, err := emb.Embed([]string{
		"Where did the cat sit?",
		"The cat sat on the mat.",
		"Stocks rose today.",
	})
	if err != nil {
		t.Fatal(err)
	}

	related := cosine(vectors[0], vectors[1])
	unrelated := cosine(vectors[0], vectors[2])
	if related <= unrelated {
		t.Errorf("expected cat sentence to be closer: related=%f unrelated=%f", related, unrelated)
	}
}

func TestHashingEmbedderLargeBatch(t *testing.T) {
	emb, err := NewHashingEmbedder(32, nil)
	if err != nil {
		t.Fatal(err)
	}

	texts := make([]string, 5000)
	for i := range texts {
		texts[i] = strings.Repeat("word ", i%7+1)
	}
	vectors, err := emb.Embed(texts)
	if err != nil {
		t.Fatal(err)
	}
	if len(vectors) != len(texts) {
		t.Errorf("expected %d vectors, got %d", len(texts), len(vectors))
	}
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// fakeEmbeddingsServer answers like an OpenAI embeddings endpoint. Each
// vector is [len(input), 1, 0].
func fakeEmbeddingsServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/embeddings") {
			http.NotFound(w, r)
			return
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			w.Write([]byte(`{"error":{"message":"model not loaded","type":"server_error"}}`))
			return
		}

		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		type item struct {
			Object    string    `json:"object"`
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}
		data := make([]item, len(req.Input))
		// Reverse order: the client must reassemble by index.
		for i := range req.Input {
			j := len(req.Input) - 1 - i
			data[i] = item{
				Object:    "embedding",
				Embedding: []float32{float32(len(req.Input[j])), 1, 0},
				Index:     j,
			}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"model":  req.Model,
			"usage":  map[string]int{"prompt_tokens": 1, "total_tokens": 1},
		})
	}))
}

func TestRemoteEmbedderBatchesPreserveOrder(t *testing.T) {
	srv := fakeEmbeddingsServer(t, http.StatusOK)
	defer srv.Close()

	emb, err := NewRemoteEmbedder(RemoteOptions{
		APIKey:      "test",
		BaseURL:     srv.URL + "/v1",
		Model:       "custom-model",
		Dimension:   3,
		BatchSize:   2,
		Concurrency: 3,
	})
	if err != nil {
		t.Fatal(err)
	}

	texts := []string{"a", "bb", "ccc", "dddd", "eeeee"}
	vectors, err := emb.Embed(texts)
	if err != nil {
		t.Fatal(err)
	}
	if len(vectors) != len(texts) {
		t.Fatalf("expected %d vectors, got %d", len(texts), len(vectors))
	}
	for i, v := range vectors {
		if int(v[0]) != len(texts[i]) {
			t.Errorf("vector %d belongs to another input: %v", i, v)
		}
	}
}

func TestRemoteEmbedderServerError(t *testing.T) {
	srv := fakeEmbeddingsServer(t, http.StatusInternalServerError)
	defer srv.Close()

	emb, err := NewRemoteEmbedder(RemoteOptions{
		APIKey:    "test",
		BaseURL:   srv.URL + "/v1",
		Model:     "custom-model",
		Dimension: 3,
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := emb.Embed([]string{"hello"}); err == nil {
		t.Error("expected error from failing backend")
	}
}

func TestRemoteEmbedderDimensionMismatch(t *testing.T) {
	srv := fakeEmbeddingsServer(t, http.StatusOK)
	defer srv.Close()

	emb, err := NewRemoteEmbedder(RemoteOptions{
		APIKey:  "test",
		BaseURL: srv.URL + "/v1",
		Model:   "all-minilm", // 384, server returns 3
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := emb.Embed([]string{"hello"}); err == nil {
		t.Error("expected dimension mismatch error")
	}
}

func TestRemoteEmbedderUnknownModel(t *testing.T) {
	if _, err := NewRemoteEmbedder(RemoteOptions{Model: "mystery"}); err == nil {
		t.Error("expected error for unknown model without dimension")
	}
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.DefaultConfig().Embedding

	emb, err := NewFromConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if emb.ModelName() != HashingModelName {
		t.Errorf("expected %s, got %s", HashingModelName, emb.ModelName())
	}

	cfg.Provider = "ollama"
	emb, err = NewFromConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if emb.ModelName() != "all-minilm" || emb.Dimension() != 384 {
		t.Errorf("unexpected ollama defaults: %s/%d", emb.ModelName(), emb.Dimension())
	}

	cfg.Provider = "openai"
	cfg.APIKeyEnv = "VIDEORAG_TEST_MISSING_KEY"
	if _, err := NewFromConfig(cfg); err == nil {
		t.Error("expected error when API key is missing")
	}

	cfg.Provider = "bogus"
	if _, err := NewFromConfig(cfg); err == nil {
		t.Error("expected error for unknown provider")
	}
}
