package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hargabyte/stepgraph/internal/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .stepgraph/config.yaml with the default settings",
	Long: `Create the .stepgraph directory and a config.yaml holding the default
settings in the current directory. The metrics cache (cache.db) is kept in
the same directory.

Examples:
  stepgraph init`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	path := filepath.Join(cwd, config.ConfigDirName, config.ConfigFileName)
	if _, err := os.Stat(path); err == nil {
		rel, _ := filepath.Rel(cwd, path)
		fmt.Fprintf(cmd.OutOrStdout(), "Already initialized at %s\n", rel)
		return nil
	}

	path, err = config.SaveDefault(cwd)
	if err != nil {
		return err
	}
	rel, _ := filepath.Rel(cwd, path)
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", rel)
	return nil
}
