package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"videorag/internal/transport/httpapi"
)

var (
	askQuery string
	askTopK  int
	askJSON  bool
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Query the transcript index",
	Long: `Return the transcript chunks most similar to a question, nearest first.

Examples:
  videorag ask -q "where did the cat sit"
  videorag ask -q "what happened to stocks" -k 5 --json`,
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askQuery, "query", "q", "", "question (required)")
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of results (default from config)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output as JSON")
	askCmd.MarkFlagRequired("query")
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	svc, err := openService(GetRootDir())
	if err != nil {
		return err
	}
	defer svc.Close()

	topK := cfg.Retrieve.TopK
	if cmd.Flags().Changed("top-k") {
		topK = askTopK
	}

	responses := svc.Ask(askQuery, topK)

	if askJSON {
		output, _ := json.MarshalIndent(httpapi.AskResponse{Query: askQuery, Responses: responses}, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(responses) == 0 {
		fmt.Println("No results found.")
		return nil
	}
	fmt.Printf("Found %d results for: %s\n\n", len(responses), askQuery)
	for i, r := range responses {
		fmt.Printf("--- [%d] ---\n%s\n\n", i+1, r)
	}
	return nil
}
