package usecase

import "errors"

var (
	// ErrNothingToIndex is returned when ingestion produced no text units.
	ErrNothingToIndex = errors.New("no text units to index")

	ErrSnapshotMismatch  = errors.New("corpus and index belong to different snapshots")
	ErrCountMismatch     = errors.New("corpus and index sizes differ")
	ErrDimensionMismatch = errors.New("index dimension does not match embedder")
)
