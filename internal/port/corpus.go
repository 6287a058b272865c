package port

import "videorag/internal/domain"

// CorpusStore persists the deduplicated, order-stable set of text units.
type CorpusStore interface {
	// Save replaces the stored corpus with the deduplicated texts and
	// returns the units with their assigned IDs.
	Save(texts []string, snapshot domain.Snapshot) ([]domain.TextUnit, error)

	// Load returns every stored unit ordered by ID together with the
	// snapshot that wrote them.
	Load() ([]domain.TextUnit, domain.Snapshot, error)

	Close() error
}
