package cli

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"ragqa/internal/logger"
	"ragqa/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive question answering",
	Long: `Open a terminal chat over the collection. Each question is answered on its
own; the most recent questions are listed below the answer.

Keys:
  enter    ask
  ctrl+s   toggle sources
  ctrl+t   toggle retrieved context
  esc      quit`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	a, err := newApp(cmd.Context(), cfg, GetRootDir(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	// Log lines would corrupt the alternate screen.
	var logOut io.Writer = io.Discard
	if verbose {
		f, err := tea.LogToFile("ragqa-debug.log", "")
		if err != nil {
			return fmt.Errorf("failed to open debug log: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	defer logger.Redirect(logOut)()

	m := tui.New(cmd.Context(), a.session, tui.Options{
		TopK:           cfg.Retrieve.TopK,
		HistoryDisplay: cfg.Chat.HistoryDisplay,
		ShowSources:    cfg.Chat.ShowSources,
		ShowContext:    cfg.Chat.ShowContext,
	})
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run(); err != nil {
		return fmt.Errorf("chat failed: %w", err)
	}
	return nil
}
