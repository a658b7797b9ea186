package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ragqa/internal/domain"
)

var (
	promptQuestion string
	promptTopK     int
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Print the prompt a question would send to the model",
	Long: `Retrieve context for a question and print the filled answer prompt without
calling the language model. Useful for inspecting retrieval or for pasting
into another model.

Examples:
  ragqa prompt -q "What does section 3 say about costs?"`,
	RunE: runPrompt,
}

func init() {
	rootCmd.AddCommand(promptCmd)
	promptCmd.Flags().StringVarP(&promptQuestion, "question", "q", "", "question (required)")
	promptCmd.Flags().IntVarP(&promptTopK, "top-k", "k", 0, "number of chunks to retrieve (default from config)")
	promptCmd.MarkFlagRequired("question")
}

func runPrompt(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), GetConfig(), GetRootDir(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	prompt, ok, err := a.session.Prompt(cmd.Context(), promptQuestion, promptTopK)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(os.Stderr, domain.NotFoundAnswer)
		return nil
	}

	fmt.Println(prompt)
	return nil
}
