package usecase

import (
	"fmt"

	"videorag/internal/adapter/index"
	"videorag/internal/domain"
)

// verifyTolerance absorbs float noise from remote embedders that do not
// reproduce a vector bit for bit.
const verifyTolerance = 1e-4

// VerifyFailure is a unit whose own text does not retrieve it first.
type VerifyFailure struct {
	ID          int
	Text        string
	Top         domain.Neighbor
	OwnDistance float32
}

// VerifyReport summarizes an alignment self-check.
type VerifyReport struct {
	Snapshot string
	Checked  int
	Failures []VerifyFailure
}

func (r *VerifyReport) OK() bool {
	return len(r.Failures) == 0
}

// Verify re-embeds every unit and checks that the index returns that unit
// as the top or tied-top hit, which proves corpus IDs and index positions
// line up.
func (s *Service) Verify(batchSize int) (*VerifyReport, error) {
	if batchSize <= 0 {
		batchSize = 64
	}
	st := s.current.Load()
	report := &VerifyReport{Snapshot: st.snapshot.ID}

	for start := 0; start < len(st.units); start += batchSize {
		end := min(start+batchSize, len(st.units))
		batch := st.units[start:end]

		texts := make([]string, len(batch))
		for i, u := range batch {
			texts[i] = u.Text
		}
		vectors, err := s.deps.Embedder.Embed(texts)
		if err != nil {
			return report, fmt.Errorf("failed to embed units %d-%d: %w", start, end-1, err)
		}
		if len(vectors) != len(batch) {
			return report, fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), len(batch))
		}

		for i, u := range batch {
			q := vectors[i]
			index.NormalizeL2InPlace(q)

			top := st.index.Search(q, 1)[0]
			own := index.SquaredL2(q, st.index.Vector(u.ID))
			report.Checked++

			if top.Position == u.ID || own <= top.Distance+verifyTolerance {
				continue
			}
			report.Failures = append(report.Failures, VerifyFailure{
				ID:          u.ID,
				Text:        u.Text,
				Top:         top,
				OwnDistance: own,
			})
		}
	}

	if !report.OK() {
		s.logger.Warn("alignment check failed", "failures", len(report.Failures), "checked", report.Checked)
	}
	return report, nil
}
