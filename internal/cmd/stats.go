package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hargabyte/stepgraph/internal/output"
	"github.com/hargabyte/stepgraph/internal/render"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats <input>",
	Short: "Summarize the entities and references of a file",
	Long: `Summarize a file: header schema, entity and reference counts, a
histogram of entity types, dangling references, roots (entities nothing
references), leaves (entities that reference nothing) and whether the
references form a cycle, with an example.

With --pie the type histogram is printed as a Mermaid pie chart instead.

Examples:
  stepgraph stats model.ifc                # YAML summary
  stepgraph stats model.ifc --format json  # JSON summary
  stepgraph stats model.ifc --pie 12       # Pie chart of the 12 largest types`,
	Args: cobra.ExactArgs(1),
	RunE: runStats,
}

var statsPie int

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().IntVar(&statsPie, "pie", 0, "Print a Mermaid pie chart of the N most frequent types")
}

func runStats(cmd *cobra.Command, args []string) error {
	in, err := loadInput(args[0])
	if err != nil {
		return err
	}

	if statsPie > 0 {
		_, err := fmt.Fprint(cmd.OutOrStdout(), render.TypePieChart(in.graph.TypeCounts(), in.name(), statsPie))
		return err
	}
	return writeReport(cmd.OutOrStdout(), output.Stats(args[0], in.file, in.graph))
}
