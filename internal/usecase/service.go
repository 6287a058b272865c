package usecase

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"videorag/internal/adapter/cache"
	"videorag/internal/adapter/index"
	"videorag/internal/domain"
	"videorag/internal/port"
)

// Dependencies wires a Service.
type Dependencies struct {
	Embedder  port.Embedder
	Corpus    port.CorpusStore
	IndexPath string

	// CacheSize > 0 enables the per-snapshot query cache.
	CacheSize int
	CacheTTL  time.Duration

	Logger *slog.Logger
}

// Service owns the loaded snapshot and answers queries against it.
type Service struct {
	deps    Dependencies
	logger  *slog.Logger
	current atomic.Pointer[serving]
	reload  sync.Mutex
}

type serving struct {
	retriever port.Retriever
	cache     *cache.QueryCache
	index     *index.Flat
	units     []domain.TextUnit
	snapshot  domain.Snapshot
}

// NewService initializes in a fixed order: embedder probe, corpus load,
// index load, pairing checks, retriever assembly. Any failure is fatal.
func NewService(deps Dependencies) (*Service, error) {
	if deps.Embedder == nil || deps.Corpus == nil {
		return nil, errors.New("service requires an embedder and a corpus store")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Service{deps: deps, logger: logger}

	if err := s.probe(); err != nil {
		return nil, err
	}

	st, err := s.load()
	if err != nil {
		return nil, err
	}
	s.current.Store(st)

	logger.Info("serving snapshot",
		"snapshot", st.snapshot.ID,
		"units", len(st.units),
		"dimension", st.index.Dimension(),
		"model", st.snapshot.Model,
	)
	return s, nil
}

func (s *Service) probe() error {
	vectors, err := s.deps.Embedder.Embed([]string{"ping"})
	if err != nil {
		return fmt.Errorf("embedder unavailable: %w", err)
	}
	if len(vectors) != 1 || len(vectors[0]) != s.deps.Embedder.Dimension() {
		return fmt.Errorf("embedder probe returned an unexpected shape")
	}
	return nil
}

func (s *Service) load() (*serving, error) {
	units, snapshot, err := s.deps.Corpus.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}

	idx, err := index.Load(s.deps.IndexPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load index: %w", err)
	}

	if err := checkPairing(units, snapshot, idx, s.deps.Embedder); err != nil {
		return nil, err
	}

	st := &serving{
		index:    idx,
		units:    units,
		snapshot: snapshot,
	}
	var r port.Retriever = NewRetrieveUseCase(s.deps.Embedder, idx, units, s.logger)
	if s.deps.CacheSize > 0 {
		st.cache = cache.NewQueryCache(s.deps.CacheSize, s.deps.CacheTTL)
		r = cache.NewCachedRetriever(r, st.cache)
	}
	st.retriever = r
	return st, nil
}

func checkPairing(units []domain.TextUnit, snapshot domain.Snapshot, idx *index.Flat, embedder port.Embedder) error {
	if snapshot.ID != idx.SnapshotID() {
		return fmt.Errorf("%w: corpus %q, index %q, re-run ingest", ErrSnapshotMismatch, snapshot.ID, idx.SnapshotID())
	}
	if len(units) != idx.Len() {
		return fmt.Errorf("%w: corpus %d, index %d", ErrCountMismatch, len(units), idx.Len())
	}
	if idx.Dimension() != embedder.Dimension() {
		return fmt.Errorf("%w: index %d, embedder %s %d",
			ErrDimensionMismatch, idx.Dimension(), embedder.ModelName(), embedder.Dimension())
	}
	return nil
}

// Ask answers against the snapshot current at call time.
func (s *Service) Ask(query string, topK int) []string {
	return s.current.Load().retriever.Ask(query, topK)
}

// Reload loads the snapshot on disk again and swaps it in. On error the
// previous snapshot keeps serving. In-flight queries finish on the
// snapshot they started with.
func (s *Service) Reload() error {
	s.reload.Lock()
	defer s.reload.Unlock()

	st, err := s.load()
	if err != nil {
		return err
	}

	old := s.current.Swap(st)
	if old != nil && old.cache != nil {
		old.cache.Invalidate()
	}

	s.logger.Info("reloaded snapshot", "snapshot", st.snapshot.ID, "units", len(st.units))
	return nil
}

// Stats describes the snapshot being served.
func (s *Service) Stats() domain.Stats {
	st := s.current.Load()
	return domain.Stats{
		Snapshot:  st.snapshot,
		Units:     len(st.units),
		IndexSize: st.index.Len(),
		IndexPath: s.deps.IndexPath,
	}
}

func (s *Service) Close() error {
	return s.deps.Corpus.Close()
}
