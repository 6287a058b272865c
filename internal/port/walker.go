package port

import "videorag/internal/domain"

// FileInfo describes one discovered transcript file.
type FileInfo struct {
	Path    string
	ModTime int64
	Size    int64
}

// TranscriptReader produces transcripts for ingestion. A reader reports a
// per-item outcome instead of failing the whole batch.
type TranscriptReader interface {
	Read(source string) (domain.Transcript, domain.TranscriptResult)
}
