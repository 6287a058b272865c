package port

import "videorag/internal/domain"

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Embed generates embeddings for the given texts.
	// Returns a slice of vectors, one per input text, in input order.
	// An empty input returns an empty slice.
	Embed(texts []string) ([][]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}

// ConcurrencySafe is implemented by embedders that may be called from
// several goroutines at once. Embedders without it are serialized.
type ConcurrencySafe interface {
	ConcurrencySafe() bool
}

// VectorIndex is a read-only exact nearest-neighbor index over vectors
// addressed by position.
type VectorIndex interface {
	// Search returns exactly k neighbors ordered by ascending distance,
	// padded with domain.NoMatch entries when fewer vectors exist.
	Search(query []float32, k int) []domain.Neighbor

	// Len returns the number of stored vectors.
	Len() int

	// Dimension returns the vector dimension.
	Dimension() int

	// SnapshotID returns the build snapshot the index belongs to.
	SnapshotID() string
}
