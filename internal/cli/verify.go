package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that corpus IDs and index positions line up",
	Long: `Re-embed every stored text unit and confirm the index returns it as the
top (or tied-top) hit. Any failure means the corpus and the index are out
of step and the snapshot should be rebuilt.`,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	svc, err := openService(GetRootDir())
	if err != nil {
		return err
	}
	defer svc.Close()

	report, err := svc.Verify(cfg.Embedding.BatchSize)
	if err != nil {
		return fmt.Errorf("verification aborted: %w", err)
	}

	fmt.Printf("Snapshot %s: checked %d units\n", report.Snapshot, report.Checked)
	if report.OK() {
		fmt.Println("All units retrieve themselves.")
		return nil
	}

	fmt.Printf("\n%d units are misaligned:\n", len(report.Failures))
	for _, f := range report.Failures {
		text := f.Text
		if len(text) > 80 {
			text = text[:80] + "..."
		}
		fmt.Printf("  - unit %d (own distance %.4f) lost to position %d (%.4f): %s\n",
			f.ID, f.OwnDistance, f.Top.Position, f.Top.Distance, text)
	}
	return fmt.Errorf("%d of %d units failed verification", len(report.Failures), report.Checked)
}
