package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ragqa/internal/domain"
)

var (
	askQuestion string
	askTopK     int
	askSources  bool
	askContext  bool
	askJSON     bool
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Answer a question from the collection",
	Long: `Retrieve the passages most relevant to a question and have the language
model answer from them.

Examples:
  ragqa ask -q "What are the key findings?"
  ragqa ask -q "Who wrote the report?" -k 8 --context
  ragqa ask -q "Summarize chapter 2" --json`,
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askQuestion, "question", "q", "", "question to ask (required)")
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of chunks to retrieve (default from config)")
	askCmd.Flags().BoolVar(&askSources, "sources", true, "show sources")
	askCmd.Flags().BoolVar(&askContext, "context", false, "show the retrieved context")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output as JSON")
	askCmd.MarkFlagRequired("question")
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), GetConfig(), GetRootDir(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	record, err := a.session.Ask(cmd.Context(), askQuestion, askTopK)
	if errors.Is(err, domain.ErrNoDocuments) {
		return fmt.Errorf("please ingest documents first: %w", err)
	}
	if errors.Is(err, domain.ErrEmptyQuestion) {
		return err
	}

	if askJSON {
		output, _ := json.MarshalIndent(record, "", "  ")
		fmt.Println(string(output))
	} else {
		printRecord(record, askSources, askContext)
	}
	return err
}

func printRecord(record domain.AnswerRecord, sources, context bool) {
	fmt.Println(record.Answer)

	if sources && len(record.Sources) > 0 {
		fmt.Printf("\nSources:\n")
		for i, s := range record.Sources {
			fmt.Fprintf(os.Stdout, "--- [%d] %s ---\n%s\n\n", i+1, s.Filename, s.ContentPreview)
		}
	}

	if context && record.Context != "" {
		fmt.Printf("\nContext:\n%s\n", record.Context)
	}
}
