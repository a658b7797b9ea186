package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"ragqa/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default ragqa.yaml",
	Long: `Write the default configuration to ragqa.yaml in the root directory so it
can be edited. An existing file is left alone unless --force is given.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing ragqa.yaml")
}

func runInit(cmd *cobra.Command, args []string) error {
	path, err := writeDefaultConfig(GetRootDir(), initForce)
	if err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

func writeDefaultConfig(dir string, force bool) (string, error) {
	path := filepath.Join(dir, "ragqa.yaml")
	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
	}
	if err := config.DefaultConfig().Save(path); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}
	return path, nil
}
