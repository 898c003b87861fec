package cmd

import (
	"github.com/spf13/cobra"

	"github.com/hargabyte/stepgraph/internal/graph"
	"github.com/hargabyte/stepgraph/internal/output"
)

// pathCmd represents the path command
var pathCmd = &cobra.Command{
	Use:   "path <input> <from> <to>",
	Short: "Find the shortest reference path between two entities",
	Long: `Find the shortest chain of references from one entity to another.

By default only references are followed (out), so the path answers "how
does <from> depend on <to>". Use --direction in to follow referrers, or
both to ignore edge direction.

Examples:
  stepgraph path part.stp 120 7                  # How #120 reaches #7
  stepgraph path part.stp 7 120 --direction in   # Same path, walked backwards
  stepgraph path part.stp 7 9 --direction both   # Any connection`,
	Args: cobra.ExactArgs(3),
	RunE: runPath,
}

var pathDirection string

func init() {
	rootCmd.AddCommand(pathCmd)
	pathCmd.Flags().StringVar(&pathDirection, "direction", "out", "Edges to follow: out, in, or both")
}

func runPath(cmd *cobra.Command, args []string) error {
	from, err := graph.ParseID(args[1])
	if err != nil {
		return err
	}
	to, err := graph.ParseID(args[2])
	if err != nil {
		return err
	}
	dir, err := graph.ParseDirection(pathDirection)
	if err != nil {
		return err
	}

	in, err := loadInput(args[0])
	if err != nil {
		return err
	}

	out, err := output.Path(in.graph, from, to, dir)
	if err != nil {
		return err
	}
	if !out.Found {
		logger.Info("no path", "from", out.From, "to", out.To, "direction", out.Direction)
	}
	return writeReport(cmd.OutOrStdout(), out)
}
