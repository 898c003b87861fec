package cmd

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hargabyte/stepgraph/internal/graph"
	"github.com/hargabyte/stepgraph/internal/output"
	"github.com/hargabyte/stepgraph/internal/present"
	"github.com/hargabyte/stepgraph/internal/render"
)

// renderCmd represents the stepgraph render command
var renderCmd = &cobra.Command{
	Use:   "render <input> <output> [entity-id]",
	Short: "Render the entity graph, or one entity's neighborhood",
	Long: `Parse a STEP or IFC file, build its entity graph and render it.

Without an entity id the whole graph is rendered. With one, only the
neighborhood of that entity: everything within --radius references of it,
following references (out), referrers (in) or both, plus every reference
between those entities. The entity itself is highlighted.

Output Formats:
  html (default)  Interactive vis-network page with type tooltips
  d2              D2 diagram source
  mermaid         Mermaid flowchart (.mmd)
  json, yaml      Neutral node/edge model

The format follows the output file extension unless --to is given. Use -
as the output to write to stdout.

HTML pages load the vis-network script from unpkg.com when opened, so
viewing them needs network access. The other formats are self-contained.

An unknown entity id is an error and no output file is written. Dangling
references (to ids that are not declared) are logged as warnings; with
--show-dangling they are drawn as placeholder nodes.

Examples:
  stepgraph render model.ifc model.html                 # Whole graph
  stepgraph render model.ifc wall.html '#4213'          # One-hop neighborhood
  stepgraph render part.stp part.d2 42 --radius 2       # Two hops, D2
  stepgraph render part.stp.gz - 42 --to mermaid        # Mermaid on stdout
  stepgraph render part.stp out.html 42 --radius -1 --direction out  # Everything 42 depends on`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runRender,
}

var (
	renderTo           string // --to html|d2|mermaid|json|yaml
	renderRadius       int
	renderDirection    string
	renderShowDangling bool
	renderJSON         bool
	renderLayout       string // --layout right|down
	renderTheme        string
)

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVar(&renderTo, "to", "", "Output format: html, d2, mermaid, json, yaml (default: from output extension)")
	renderCmd.Flags().IntVar(&renderRadius, "radius", 1, "Neighborhood radius in references (0 = entity only, negative = unbounded)")
	renderCmd.Flags().StringVar(&renderDirection, "direction", "both", "Neighborhood direction: out, in, or both")
	renderCmd.Flags().BoolVar(&renderShowDangling, "show-dangling", false, "Draw dangling references as placeholder nodes")
	renderCmd.Flags().BoolVar(&renderJSON, "json", false, "Print the summary, or a fatal error report, as JSON on stdout")
	renderCmd.Flags().StringVar(&renderLayout, "layout", "right", "Diagram direction for d2 and mermaid: right or down")
	renderCmd.Flags().StringVar(&renderTheme, "theme", "default", "D2 theme name")

	bindFlag("render.format", renderCmd.Flags().Lookup("to"))
	bindFlag("render.radius", renderCmd.Flags().Lookup("radius"))
	bindFlag("render.direction", renderCmd.Flags().Lookup("direction"))
	bindFlag("render.show_dangling", renderCmd.Flags().Lookup("show-dangling"))
	bindFlag("render.theme", renderCmd.Flags().Lookup("theme"))
}

func runRender(cmd *cobra.Command, args []string) error {
	start := time.Now()
	inputPath, outputPath := args[0], args[1]

	err := renderFile(cmd, inputPath, outputPath, args[2:], start)
	if err != nil && renderJSON {
		writeErrorReport(cmd.OutOrStdout(), err)
	}
	return err
}

func renderFile(cmd *cobra.Command, inputPath, outputPath string, target []string, start time.Time) error {
	format, err := renderFormat(outputPath)
	if err != nil {
		return err
	}
	dir, err := graph.ParseDirection(settings.GetString("render.direction"))
	if err != nil {
		return err
	}
	targetID := -1
	if len(target) == 1 {
		if targetID, err = graph.ParseID(target[0]); err != nil {
			return err
		}
	}

	in, err := loadInput(inputPath)
	if err != nil {
		return err
	}

	var view graph.View = in.graph
	if targetID >= 0 {
		// Resolve the target before the output is touched: an unknown id
		// must not leave an empty or stale file behind.
		sub, err := graph.Extract(in.graph, targetID, graph.ExtractOptions{
			Radius:    settings.GetInt("render.radius"),
			Direction: dir,
		})
		if err != nil {
			return err
		}
		view = sub
		logger.Debug("extracted neighborhood", "target", targetID, "entities", sub.NodeCount(), "edges", sub.EdgeCount())
	}

	popts := present.DefaultOptions()
	popts.Title = in.name()
	popts.Palette = palette(cfg)
	popts.ShowDangling = settings.GetBool("render.show_dangling")
	popts.WrapWidth = uint(cfg.Render.WrapWidth)
	model := present.FromView(view, popts)

	r, err := render.ForFormat(format, renderOptions())
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := r.Render(&buf, model); err != nil {
		return fmt.Errorf("render %s: %w", format, err)
	}

	if outputPath == "-" {
		if _, err := cmd.OutOrStdout().Write(buf.Bytes()); err != nil {
			return err
		}
	} else if err := os.WriteFile(outputPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	summary := output.Summary(inputPath, in.file, in.graph)
	summary.Elapsed = formatElapsed(time.Since(start))
	if outputPath != "-" {
		summary.Output = outputPath
	}
	if targetID >= 0 {
		summary.Target = output.FormatID(targetID)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "entities: %d, edges: %d, warnings: %d, elapsed: %s\n",
		summary.Entities, summary.Edges, summary.Warnings, summary.Elapsed)
	if renderJSON && outputPath != "-" {
		return output.Write(cmd.OutOrStdout(), output.FormatJSON, summary)
	}
	return nil
}

// renderFormat picks the output format: --to, then the config file, then
// the output extension.
func renderFormat(outputPath string) (render.Format, error) {
	if f := settings.GetString("render.format"); f != "" {
		return render.ParseFormat(f)
	}
	return render.FormatFromPath(outputPath), nil
}

func renderOptions() render.Options {
	opts := render.DefaultOptions()
	opts.Height = cfg.Render.Height
	opts.Width = cfg.Render.Width
	opts.Physics = cfg.Render.PhysicsValue()
	opts.Theme = settings.GetString("render.theme")
	opts.Direction = renderLayout
	return opts
}
