package memstore

import (
	"sync"

	"videorag/internal/domain"
)

// MemoryStore is an in-process corpus store, used by tests and by
// ingest dry runs.
type MemoryStore struct {
	mu       sync.RWMutex
	units    []domain.TextUnit
	snapshot domain.Snapshot
	saved    bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(texts []string, snapshot domain.Snapshot) ([]domain.TextUnit, error) {
	units := domain.Units(domain.Dedup(texts))
	snapshot.Units = len(units)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.units = units
	s.snapshot = snapshot
	s.saved = true

	out := make([]domain.TextUnit, len(units))
	copy(out, units)
	return out, nil
}

func (s *MemoryStore) Load() ([]domain.TextUnit, domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.saved {
		return nil, domain.Snapshot{}, domain.ErrCorpusMissing
	}
	if len(s.units) == 0 {
		return nil, s.snapshot, domain.ErrCorpusEmpty
	}
	out := make([]domain.TextUnit, len(s.units))
	copy(out, s.units)
	return out, s.snapshot, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
