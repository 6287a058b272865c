package usecase

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"videorag/internal/adapter/index"
	"videorag/internal/domain"
	"videorag/internal/port"
)

// IngestOptions controls one ingestion build.
type IngestOptions struct {
	TargetWords int
	BatchSize   int
	IndexPath   string
	Compress    bool

	// Progress, when set, is called after every embedded batch.
	Progress func(done, total int)
}

// IngestUseCase turns transcripts into a paired corpus and vector index.
type IngestUseCase struct {
	reader   port.TranscriptReader
	chunker  port.Chunker
	embedder port.Embedder
	corpus   port.CorpusStore
	opts     IngestOptions
	logger   *slog.Logger
}

// NewIngestUseCase creates a new ingest use case.
func NewIngestUseCase(
	reader port.TranscriptReader,
	chunker port.Chunker,
	embedder port.Embedder,
	corpus port.CorpusStore,
	opts IngestOptions,
	logger *slog.Logger,
) *IngestUseCase {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 64
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &IngestUseCase{
		reader:   reader,
		chunker:  chunker,
		embedder: embedder,
		corpus:   corpus,
		opts:     opts,
		logger:   logger,
	}
}

// IngestResult contains the results of an ingestion run.
type IngestResult struct {
	Snapshot    domain.Snapshot
	Transcripts []domain.TranscriptResult
	Ingested    int
	Skipped     int
	Failed      int
	Chunks      int // before deduplication
	Units       int
}

func (r *IngestResult) Duplicates() int {
	return r.Chunks - r.Units
}

// Ingest reads, chunks and indexes the given transcript sources in order.
// Unreadable or silent transcripts are recorded, never fatal.
func (u *IngestUseCase) Ingest(sources []string) (*IngestResult, error) {
	result := &IngestResult{}
	var texts []string

	for _, source := range sources {
		transcript, tr := u.reader.Read(source)

		switch tr.Status {
		case domain.StatusSkipped:
			result.Skipped++
			u.logger.Info("skipping transcript", "source", source, "reason", tr.Reason)
		case domain.StatusFailed:
			result.Failed++
			u.logger.Warn("transcript failed", "source", source, "reason", tr.Reason, "error", tr.Err)
		case domain.StatusOK:
			chunks := u.chunker.Split(transcript.Text, u.opts.TargetWords)
			tr.Chunks = len(chunks)
			texts = append(texts, chunks...)
			result.Ingested++
			u.logger.Debug("chunked transcript", "source", source, "chunks", len(chunks))
		}

		result.Transcripts = append(result.Transcripts, tr)
	}

	if err := u.build(texts, result); err != nil {
		return result, err
	}
	return result, nil
}

// IngestTexts indexes already-split text units, skipping transcript
// handling. Used for pre-chunked input.
func (u *IngestUseCase) IngestTexts(texts []string) (*IngestResult, error) {
	result := &IngestResult{}
	if err := u.build(texts, result); err != nil {
		return result, err
	}
	return result, nil
}

func (u *IngestUseCase) build(texts []string, result *IngestResult) error {
	result.Chunks = len(texts)

	unique := domain.Dedup(texts)
	if len(unique) == 0 {
		return ErrNothingToIndex
	}
	result.Units = len(unique)

	vectors, err := u.embedAll(unique)
	if err != nil {
		return err
	}

	idx, err := index.Build(vectors)
	if err != nil {
		return fmt.Errorf("failed to build index: %w", err)
	}

	snapshot := domain.Snapshot{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Units:     len(unique),
		Dimension: idx.Dimension(),
		Model:     u.embedder.ModelName(),
	}
	idx = idx.WithSnapshot(snapshot.ID)

	// Index first, corpus second. A crash in between leaves two different
	// snapshot IDs on disk and the service refuses to serve the pair.
	if err := idx.Save(u.opts.IndexPath, index.SaveOptions{Compress: u.opts.Compress}); err != nil {
		return fmt.Errorf("failed to save index: %w", err)
	}
	units, err := u.corpus.Save(unique, snapshot)
	if err != nil {
		return fmt.Errorf("failed to save corpus: %w", err)
	}
	if len(units) != idx.Len() {
		return fmt.Errorf("%w: corpus %d, index %d", ErrCountMismatch, len(units), idx.Len())
	}

	result.Snapshot = snapshot
	u.logger.Info("ingestion complete",
		"snapshot", snapshot.ID,
		"units", len(units),
		"duplicates", result.Duplicates(),
		"dimension", snapshot.Dimension,
	)
	return nil
}

// embedAll embeds texts batch by batch and L2-normalizes every vector.
func (u *IngestUseCase) embedAll(texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	zero := 0

	for start := 0; start < len(texts); start += u.opts.BatchSize {
		end := min(start+u.opts.BatchSize, len(texts))
		batch, err := u.embedder.Embed(texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("failed to embed units %d-%d: %w", start, end-1, err)
		}
		if len(batch) != end-start {
			return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(batch), end-start)
		}

		for _, v := range batch {
			if !index.NormalizeL2InPlace(v) {
				zero++
			}
			vectors = append(vectors, v)
		}

		if u.opts.Progress != nil {
			u.opts.Progress(end, len(texts))
		}
	}

	if zero > 0 {
		u.logger.Warn("units embedded to zero vectors", "count", zero)
	}
	return vectors, nil
}
