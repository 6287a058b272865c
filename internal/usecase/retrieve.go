package usecase

import (
	"log/slog"
	"sync"

	"videorag/internal/adapter/index"
	"videorag/internal/domain"
	"videorag/internal/port"
)

// RetrieveUseCase answers a query with the nearest stored text units.
// It holds immutable corpus and index data; only the embed call may be
// serialized.
type RetrieveUseCase struct {
	embedder port.Embedder
	index    port.VectorIndex
	units    []domain.TextUnit
	gate     *sync.Mutex // nil when the embedder is reentrant
	logger   *slog.Logger
}

// NewRetrieveUseCase creates a new retrieve use case. units must be
// ordered by ID and aligned with index positions.
func NewRetrieveUseCase(
	embedder port.Embedder,
	idx port.VectorIndex,
	units []domain.TextUnit,
	logger *slog.Logger,
) *RetrieveUseCase {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	u := &RetrieveUseCase{
		embedder: embedder,
		index:    idx,
		units:    units,
		logger:   logger,
	}
	if cs, ok := embedder.(port.ConcurrencySafe); !ok || !cs.ConcurrencySafe() {
		u.gate = &sync.Mutex{}
	}
	return u
}

// Ask returns up to topK unit texts ordered by ascending distance. It never
// fails: embedding errors are logged and produce an empty result.
func (u *RetrieveUseCase) Ask(query string, topK int) []string {
	if topK <= 0 {
		return []string{}
	}

	vector, ok := u.embedQuery(query)
	if !ok {
		return []string{}
	}

	// The index pads to k, so k never needs to exceed the corpus.
	topK = min(topK, len(u.units))
	neighbors := u.index.Search(vector, topK)

	// Sentinel and out-of-range positions are dropped, order is kept.
	results := make([]string, 0, len(neighbors))
	for _, n := range neighbors {
		if n.Position < 0 || n.Position >= len(u.units) {
			continue
		}
		results = append(results, u.units[n.Position].Text)
	}
	return results
}

func (u *RetrieveUseCase) embedQuery(query string) ([]float32, bool) {
	if u.gate != nil {
		u.gate.Lock()
		defer u.gate.Unlock()
	}

	vectors, err := u.embedder.Embed([]string{query})
	if err != nil {
		u.logger.Error("query embedding failed", "error", err)
		return nil, false
	}
	if len(vectors) != 1 {
		u.logger.Error("query embedding failed", "vectors", len(vectors))
		return nil, false
	}

	index.NormalizeL2InPlace(vectors[0])
	return vectors[0], true
}
