package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the snapshot being served",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output as JSON")
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	root := GetRootDir()

	svc, err := openService(root)
	if err != nil {
		return err
	}
	defer svc.Close()

	stats := svc.Stats()
	stats.CorpusPath = cfg.CorpusPath(root)

	if statsJSON {
		output, _ := json.MarshalIndent(stats, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Snapshot:    %s\n", stats.Snapshot.ID)
	fmt.Printf("Created:     %s\n", stats.Snapshot.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("Model:       %s (%d dims)\n", stats.Snapshot.Model, stats.Snapshot.Dimension)
	fmt.Printf("Text units:  %d\n", stats.Units)
	fmt.Printf("Corpus:      %s (%s)\n", stats.CorpusPath, fileSize(stats.CorpusPath))
	fmt.Printf("Index:       %s (%s)\n", stats.IndexPath, fileSize(stats.IndexPath))
	return nil
}

func fileSize(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return "missing"
	}
	size := info.Size()
	switch {
	case size >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(size)/(1<<20))
	case size >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(size)/(1<<10))
	default:
		return fmt.Sprintf("%d B", size)
	}
}
