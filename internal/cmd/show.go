package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hargabyte/stepgraph/internal/cache"
	"github.com/hargabyte/stepgraph/internal/config"
	"github.com/hargabyte/stepgraph/internal/graph"
	"github.com/hargabyte/stepgraph/internal/output"
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <input> <entity-id>",
	Short: "Show one entity with its attributes and references",
	Long: `Show the type, line, attributes and references of one entity.

Density Levels:
  sparse:  id, type and line
  medium:  adds attributes in STEP syntax and outgoing references (default)
  dense:   adds incoming references, the decoded, wrapped text and the
           cached rank scores when stepgraph rank has seen the file

Attribute positions are 1-based; nested positions are dotted ("2.1" is the
first item of the list in attribute 2). For complex instances the position
is prefixed with the segment type.

Examples:
  stepgraph show part.stp 42                    # Entity #42
  stepgraph show part.stp '#42' --density dense # With referrers
  stepgraph show model.ifc 7 --format json      # JSON output`,
	Args: cobra.ExactArgs(2),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := graph.ParseID(args[1])
	if err != nil {
		return err
	}
	density, err := output.ParseDensity(settings.GetString("output.density"))
	if err != nil {
		return err
	}

	in, err := loadInput(args[0])
	if err != nil {
		return err
	}

	out, err := output.Entity(in.graph, id, density)
	if err != nil {
		return err
	}
	if density == output.DensityDense {
		out.Metrics = cachedMetrics(in, id)
	}
	return writeReport(cmd.OutOrStdout(), out)
}

// cachedMetrics looks up the rank scores of id in an existing cache. It
// never creates a cache and never computes metrics.
func cachedMetrics(in *input, id int) *output.RankEntry {
	dir, err := config.FindConfigDir(".")
	if err != nil {
		return nil
	}
	if _, err := os.Stat(filepath.Join(dir, cache.FileName)); err != nil {
		return nil
	}
	c, err := cache.Open(dir)
	if err != nil {
		logger.Debug("cache unavailable", "error", err)
		return nil
	}
	defer c.Close()

	m, err := c.GetEntityMetrics(cache.HashContent(in.data), id)
	if err != nil {
		return nil
	}
	return output.RankEntryFor(*m)
}
