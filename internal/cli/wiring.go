package cli

import (
	"errors"
	"fmt"

	"videorag/internal/adapter/embedding"
	"videorag/internal/adapter/index"
	"videorag/internal/adapter/store"
	"videorag/internal/domain"
	"videorag/internal/port"
	"videorag/internal/usecase"
)

func newEmbedder() (port.Embedder, error) {
	emb, err := embedding.NewFromConfig(cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return emb, nil
}

// openService loads the snapshot under root and checks that it is servable.
func openService(root string) (*usecase.Service, error) {
	emb, err := newEmbedder()
	if err != nil {
		return nil, err
	}

	svc, err := usecase.NewService(usecase.Dependencies{
		Embedder:  emb,
		Corpus:    store.NewBoltCorpusStore(cfg.CorpusPath(root)),
		IndexPath: cfg.IndexPath(root),
		CacheSize: cfg.Retrieve.CacheSize,
		CacheTTL:  cfg.Retrieve.CacheTTL,
		Logger:    logger,
	})
	if err != nil {
		if needsIngest(err) {
			return nil, fmt.Errorf("%w\nrun 'videorag ingest' to build the index", err)
		}
		return nil, err
	}
	return svc, nil
}

// needsIngest reports whether err is fixed by rebuilding the snapshot.
func needsIngest(err error) bool {
	for _, target := range []error{
		domain.ErrCorpusMissing,
		domain.ErrCorpusEmpty,
		domain.ErrCorpusCorrupt,
		store.ErrCorpusSchema,
		index.ErrIndexMissing,
		index.ErrIndexEmpty,
		index.ErrIndexCorrupt,
		usecase.ErrSnapshotMismatch,
		usecase.ErrCountMismatch,
		usecase.ErrDimensionMismatch,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
