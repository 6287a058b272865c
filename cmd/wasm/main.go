//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"videorag/internal/adapter/analyzer"
	"videorag/internal/adapter/chunker"
	"videorag/internal/adapter/embedding"
	"videorag/internal/adapter/index"
	"videorag/internal/adapter/memstore"
	"videorag/internal/domain"
	"videorag/internal/usecase"
)

const (
	targetWords = 50
	dimension   = 384
)

var (
	store     *memstore.MemoryStore
	chk       *chunker.SentenceChunker
	embedder  *embedding.HashingEmbedder
	retriever *usecase.RetrieveUseCase
	chunks    []string
	sources   []string
)

func init() {
	store = memstore.NewMemoryStore()
	chk = chunker.NewSentenceChunker(nil)
	embedder, _ = embedding.NewHashingEmbedder(dimension, analyzer.NewTokenizer(true))
}

func main() {
	c := make(chan struct{})

	js.Global().Set("videoragAdd", js.FuncOf(addTranscript))
	js.Global().Set("videoragAsk", js.FuncOf(ask))
	js.Global().Set("videoragClear", js.FuncOf(clearAll))
	js.Global().Set("videoragStats", js.FuncOf(getStats))

	<-c
}

func addTranscript(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return makeError("usage: videoragAdd(name, transcript)")
	}

	name := args[0].String()
	added := chk.Split(args[1].String(), targetWords)
	if len(added) == 0 {
		return makeError("transcript is empty")
	}
	chunks = append(chunks, added...)
	sources = append(sources, name)

	units, err := rebuild()
	if err != nil {
		return makeError("indexing failed: " + err.Error())
	}

	return makeResult(map[string]interface{}{
		"success": true,
		"name":    name,
		"chunks":  len(added),
		"units":   units,
	})
}

// rebuild re-embeds every chunk; the demo corpus is small enough that
// an incremental path is not worth having.
func rebuild() (int, error) {
	units, err := store.Save(chunks, domain.Snapshot{Model: embedder.ModelName(), Dimension: dimension})
	if err != nil {
		return 0, err
	}

	texts := make([]string, len(units))
	for i, u := range units {
		texts[i] = u.Text
	}
	vectors, err := embedder.Embed(texts)
	if err != nil {
		return 0, err
	}
	for _, v := range vectors {
		index.NormalizeL2InPlace(v)
	}

	idx, err := index.Build(vectors)
	if err != nil {
		return 0, err
	}
	retriever = usecase.NewRetrieveUseCase(embedder, idx, units, nil)
	return len(units), nil
}

func ask(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: videoragAsk(query, [topK])")
	}

	query := args[0].String()
	topK := 3
	if len(args) > 1 {
		topK = args[1].Int()
	}

	responses := []string{}
	if retriever != nil {
		responses = retriever.Ask(query, topK)
	}

	return makeResult(map[string]interface{}{
		"query":     query,
		"responses": responses,
	})
}

func clearAll(this js.Value, args []js.Value) interface{} {
	store = memstore.NewMemoryStore()
	retriever = nil
	chunks = nil
	sources = nil
	return makeResult(map[string]interface{}{
		"success": true,
	})
}

func getStats(this js.Value, args []js.Value) interface{} {
	units, _, _ := store.Load()
	return makeResult(map[string]interface{}{
		"transcripts": sources,
		"chunks":      len(chunks),
		"units":       len(units),
		"model":       embedder.ModelName(),
	})
}

func makeError(msg string) interface{} {
	result, _ := json.Marshal(map[string]interface{}{
		"error": msg,
	})
	return string(result)
}

func makeResult(data map[string]interface{}) interface{} {
	result, _ := json.Marshal(data)
	return string(result)
}
