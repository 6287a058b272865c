package domain

import "time"

// TextUnit is one retrievable span of transcript text. ID is its position
// in the deduplicated corpus and doubles as the vector index position.
type TextUnit struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// Neighbor is a single index hit. Position is -1 for padding entries.
type Neighbor struct {
	Position int
	Distance float32
}

// NoMatch is the position used for sentinel neighbors.
const NoMatch = -1

// Snapshot identifies one full ingestion build. The corpus file and the
// index file written by the same build carry the same ID.
type Snapshot struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Units     int       `json:"units"`
	Dimension int       `json:"dimension"`
	Model     string    `json:"model"`
}

// Transcript is one unit of ingestion input.
type Transcript struct {
	Source string
	Text   string
}

// TranscriptStatus classifies the outcome of reading one transcript.
type TranscriptStatus int

const (
	StatusOK TranscriptStatus = iota
	StatusSkipped
	StatusFailed
)

func (s TranscriptStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// TranscriptResult is the typed per-item ingestion outcome.
type TranscriptResult struct {
	Source string
	Status TranscriptStatus
	Reason string
	Err    error
	Chunks int
}

// Stats summarizes a loaded snapshot for status output.
type Stats struct {
	Snapshot   Snapshot `json:"snapshot"`
	Units      int      `json:"units"`
	IndexSize  int      `json:"index_size"`
	CorpusPath string   `json:"corpus_path"`
	IndexPath  string   `json:"index_path"`
}
