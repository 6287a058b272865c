package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"videorag/internal/adapter/chunker"
	"videorag/internal/adapter/fs"
	"videorag/internal/adapter/store"
	"videorag/internal/domain"
	"videorag/internal/usecase"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Build the corpus and vector index from transcripts",
	Long: `Read every transcript under the given directory, split it into
sentence-aligned chunks, embed the chunks and write a fresh corpus and
vector index. The previous snapshot is replaced.

The snapshot is stored in .videorag/ within the root directory (--dir),
where ask, serve and stats look for it.

Examples:
  videorag ingest                    # Ingest *.txt transcripts under the root directory
  videorag ingest /data/transcripts  # Ingest a specific directory`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	root := GetRootDir()
	path := root
	if len(args) > 0 {
		var err error
		path, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	cfg := GetConfig()
	if err := cfg.EnsureDataDir(root); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	walker := fs.NewWalker(cfg.Ingest.Includes, cfg.Ingest.Excludes)
	files, err := walker.Walk(path)
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", path, err)
	}
	sources := make([]string, len(files))
	for i, f := range files {
		sources[i] = f.Path
	}
	fmt.Printf("Found %d transcripts in %s\n", len(sources), path)

	embedder, err := newEmbedder()
	if err != nil {
		return err
	}

	corpus := store.NewBoltCorpusStore(cfg.CorpusPath(root))
	defer corpus.Close()

	start := time.Now()
	ingestUC := usecase.NewIngestUseCase(
		fs.NewTranscriptReader(cfg.Ingest.NoSpeechMarker, cfg.Ingest.FailureMarker),
		chunker.NewSentenceChunker(logger),
		embedder,
		corpus,
		usecase.IngestOptions{
			TargetWords: cfg.Chunk.TargetWords,
			BatchSize:   cfg.Embedding.BatchSize,
			IndexPath:   cfg.IndexPath(root),
			Compress:    cfg.Index.Compress,
			Progress:    embedProgress(),
		},
		logger,
	)

	result, err := ingestUC.Ingest(sources)
	if result != nil {
		printTranscriptIssues(result.Transcripts)
	}
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("\nIngestion complete in %s:\n", formatDuration(time.Since(start)))
	fmt.Printf("  Transcripts:  %d ingested, %d skipped, %d failed\n", result.Ingested, result.Skipped, result.Failed)
	fmt.Printf("  Chunks:       %d (%d duplicates dropped)\n", result.Chunks, result.Duplicates())
	fmt.Printf("  Text units:   %d\n", result.Units)
	fmt.Printf("  Model:        %s (%d dims)\n", result.Snapshot.Model, result.Snapshot.Dimension)
	fmt.Printf("  Snapshot:     %s\n", result.Snapshot.ID)
	fmt.Printf("\nCorpus stored at: %s\n", cfg.CorpusPath(root))
	fmt.Printf("Index stored at:  %s\n", cfg.IndexPath(root))
	return nil
}

// embedProgress returns a callback that lazily creates a progress bar once
// the number of units is known.
func embedProgress() func(done, total int) {
	var bar *progressbar.ProgressBar
	return func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Embedding[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}
		bar.Set(done)
	}
}

func printTranscriptIssues(results []domain.TranscriptResult) {
	var issues []domain.TranscriptResult
	for _, r := range results {
		if r.Status != domain.StatusOK {
			issues = append(issues, r)
		}
	}
	if len(issues) == 0 {
		return
	}

	fmt.Printf("\nTranscripts not ingested:\n")
	for _, r := range issues {
		if r.Err != nil {
			fmt.Printf("  - [%s] %s: %s (%v)\n", r.Status, r.Source, r.Reason, r.Err)
		} else {
			fmt.Printf("  - [%s] %s: %s\n", r.Status, r.Source, r.Reason)
		}
	}
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}
