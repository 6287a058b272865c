package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"videorag/config"
	"videorag/internal/adapter/embedding"
	"videorag/internal/adapter/index"
	"videorag/internal/adapter/store"
	"videorag/internal/domain"
)

func main() {
	dir := flag.String("dir", ".", "Path to ingested directory")
	query := flag.String("q", "", "Query to test")
	topK := flag.Int("k", 5, "Number of results")
	runs := flag.Int("runs", 100, "Timed query repetitions")
	flag.Parse()

	if *query == "" {
		fmt.Println("Usage: go run ./cmd/benchmark -dir ./transcripts -q \"query\"")
		fmt.Println("\nReports:")
		fmt.Println("  1. Snapshot pairing (corpus and index agree)")
		fmt.Println("  2. Cosine similarity of the top matches")
		fmt.Println("  3. Query latency split into embedding and search")
		os.Exit(1)
	}

	cfg, err := config.LoadFromDir(*dir)
	if err != nil {
		fail("Error loading config: %v", err)
	}

	units, snapshot, err := store.NewBoltCorpusStore(cfg.CorpusPath(*dir)).Load()
	if err != nil {
		fail("Error loading corpus: %v", err)
	}
	idx, err := index.Load(cfg.IndexPath(*dir))
	if err != nil {
		fail("Error loading index: %v", err)
	}
	if idx.SnapshotID() != snapshot.ID || idx.Len() != len(units) {
		fail("Corpus (%s, %d units) and index (%s, %d vectors) do not pair up",
			snapshot.ID, len(units), idx.SnapshotID(), idx.Len())
	}

	embedder, err := embedding.NewFromConfig(cfg.Embedding)
	if err != nil {
		fail("Embedder init failed: %v", err)
	}

	fmt.Println("RETRIEVAL BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Snapshot:   %s\n", snapshot.ID)
	fmt.Printf("Text units: %d\n", len(units))
	fmt.Printf("Model:      %s (%d dims)\n", embedder.ModelName(), idx.Dimension())
	fmt.Println()

	fmt.Printf("Query: \"%s\"\n", *query)
	fmt.Println(strings.Repeat("-", 70))

	q, err := embedQuery(embedder.Embed, *query)
	if err != nil {
		fail("Embedding error: %v", err)
	}

	results := idx.Search(q, *topK)
	fmt.Printf("Top %d matches:\n\n", *topK)
	for i, n := range results {
		if n.Position == domain.NoMatch {
			fmt.Printf("%d. (no match)\n", i+1)
			continue
		}

		preview := strings.ReplaceAll(units[n.Position].Text, "\n", " ")
		if len(preview) > 150 {
			preview = preview[:150] + "..."
		}

		sim := similarity(n.Distance)
		fmt.Printf("%d. [%s %.3f] unit %d\n", i+1, rating(sim), sim, n.Position)
		fmt.Printf("   %s\n\n", preview)
	}

	embedTimes := make([]time.Duration, 0, *runs)
	searchTimes := make([]time.Duration, 0, *runs)
	for i := 0; i < *runs; i++ {
		start := time.Now()
		q, err := embedQuery(embedder.Embed, *query)
		if err != nil {
			fail("Embedding error: %v", err)
		}
		embedTimes = append(embedTimes, time.Since(start))

		start = time.Now()
		idx.Search(q, *topK)
		searchTimes = append(searchTimes, time.Since(start))
	}

	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("LATENCY over %d runs:\n", *runs)
	fmt.Printf("  Embed   p50 %-10s p95 %s\n", percentile(embedTimes, 50), percentile(embedTimes, 95))
	fmt.Printf("  Search  p50 %-10s p95 %s\n", percentile(searchTimes, 50), percentile(searchTimes, 95))
}

func embedQuery(embed func([]string) ([][]float32, error), query string) ([]float32, error) {
	vectors, err := embed([]string{query})
	if err != nil {
		return nil, err
	}
	index.NormalizeL2InPlace(vectors[0])
	return vectors[0], nil
}

// similarity converts squared L2 between unit vectors to cosine similarity.
func similarity(d float32) float64 {
	return 1 - float64(d)/2
}

func rating(sim float64) string {
	switch {
	case sim > 0.7:
		return "HIGH"
	case sim > 0.5:
		return "GOOD"
	case sim > 0.3:
		return "OK"
	default:
		return "LOW"
	}
}

func percentile(d []time.Duration, p int) time.Duration {
	if len(d) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), d...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted[(len(sorted)-1)*p/100]
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
