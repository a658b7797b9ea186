package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var clearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the collection",
	Long: `Delete the persisted collection and everything in it. This cannot be
undone; documents must be ingested again afterwards.`,
	RunE: runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "do not ask for confirmation")
}

func runClear(cmd *cobra.Command, args []string) error {
	if !clearYes {
		fmt.Print("Delete the collection and all indexed documents? [y/N] ")
		answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	a, err := newApp(cmd.Context(), GetConfig(), GetRootDir(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.session.Clear(cmd.Context()); err != nil {
		return err
	}
	fmt.Println("Vector store cleared.")
	return nil
}
