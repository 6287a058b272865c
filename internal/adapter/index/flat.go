// Package index implements the exact flat vector index. It only knows
// squared L2 distance; callers that want cosine similarity normalize
// vectors before Build and Search.
package index

import (
	"container/heap"
	"errors"
	"fmt"
	"math"

	"videorag/internal/domain"
)

var (
	ErrNoVectors         = errors.New("no vectors to index")
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// Flat is an immutable brute-force index. Vectors are stored contiguously
// and addressed by their insertion position.
type Flat struct {
	data      []float32
	dimension int
	count     int
	snapshot  string
}

// Build copies vectors into a new index. All vectors must share one
// non-zero dimension.
func Build(vectors [][]float32) (*Flat, error) {
	if len(vectors) == 0 {
		return nil, ErrNoVectors
	}
	dim := len(vectors[0])
	if dim == 0 {
		return nil, fmt.Errorf("%w: zero-length vector at position 0", ErrDimensionMismatch)
	}

	data := make([]float32, 0, dim*len(vectors))
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: expected %d, got %d at position %d", ErrDimensionMismatch, dim, len(v), i)
		}
		data = append(data, v...)
	}

	return &Flat{
		data:      data,
		dimension: dim,
		count:     len(vectors),
	}, nil
}

// WithSnapshot returns the index tagged with a build snapshot ID.
func (f *Flat) WithSnapshot(id string) *Flat {
	f.snapshot = id
	return f
}

func (f *Flat) Len() int { return f.count }

func (f *Flat) Dimension() int { return f.dimension }

func (f *Flat) SnapshotID() string { return f.snapshot }

// Vector returns the stored vector at pos. The slice aliases index memory
// and must not be modified.
func (f *Flat) Vector(pos int) []float32 {
	return f.data[pos*f.dimension : (pos+1)*f.dimension]
}

// Search returns the k nearest vectors to query by ascending squared L2
// distance, ties broken by lower position. The result always has length k
// (for k > 0); missing entries are domain.NoMatch sentinels with +Inf
// distance. A query of the wrong dimension matches nothing.
func (f *Flat) Search(query []float32, k int) []domain.Neighbor {
	if k <= 0 {
		return []domain.Neighbor{}
	}

	results := make([]domain.Neighbor, k)
	for i := range results {
		results[i] = domain.Neighbor{Position: domain.NoMatch, Distance: float32(math.Inf(1))}
	}
	if len(query) != f.dimension {
		return results
	}

	h := make(worstFirst, 0, min(k, f.count)+1)
	for pos := 0; pos < f.count; pos++ {
		d := SquaredL2(query, f.Vector(pos))
		if math.IsNaN(float64(d)) {
			d = float32(math.Inf(1))
		}
		n := domain.Neighbor{Position: pos, Distance: d}
		if h.Len() < k {
			heap.Push(&h, n)
			continue
		}
		if closer(n, h[0]) {
			h[0] = n
			heap.Fix(&h, 0)
		}
	}

	// Popping yields worst first; fill from the back.
	for i := h.Len() - 1; i >= 0; i-- {
		results[i] = heap.Pop(&h).(domain.Neighbor)
	}
	return results
}

// closer orders neighbors by distance, then by position.
func closer(a, b domain.Neighbor) bool {
	if a.Distance != b.Distance {
		return a.Distance < b.Distance
	}
	return a.Position < b.Position
}

// worstFirst is a max-heap on (distance, position).
type worstFirst []domain.Neighbor

func (h worstFirst) Len() int           { return len(h) }
func (h worstFirst) Less(i, j int) bool { return closer(h[j], h[i]) }
func (h worstFirst) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *worstFirst) Push(x any) { *h = append(*h, x.(domain.Neighbor)) }

func (h *worstFirst) Pop() any {
	old := *h
	n := old[len(old)-1]
	*h = old[:len(old)-1]
	return n
}
