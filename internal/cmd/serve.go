package cmd

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hargabyte/stepgraph/internal/mcp"
	"github.com/hargabyte/stepgraph/internal/metrics"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve --mcp <input>",
	Short: "Start an MCP server over one file for AI agent integration",
	Long: `Start an MCP (Model Context Protocol) server on stdin/stdout that answers
queries about one STEP or IFC file. The file is parsed once; every tool call
reuses the graph.

Available Tools:
  step_summary       Schema, counts, type histogram, cycles
  step_show          One entity with attributes and references
  step_neighborhood  Neighborhood as a model, Mermaid or D2 diagram
  step_find          Entities by type name
  step_path          Shortest reference path
  step_rank          Entities by PageRank

Examples:
  stepgraph serve --mcp model.ifc                       # All tools
  stepgraph serve --mcp model.ifc --tools show,find     # Selected tools
  stepgraph serve --mcp model.ifc --timeout 30m         # Stop when idle
  stepgraph serve --list-tools                          # Describe the tools`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

var (
	serveMCP       bool
	serveTools     string
	serveTimeout   time.Duration
	serveListTools bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveMCP, "mcp", false, "Start MCP server (stdio transport)")
	serveCmd.Flags().StringVar(&serveTools, "tools", "", "Comma-separated list of tools to expose (default: all)")
	serveCmd.Flags().DurationVar(&serveTimeout, "timeout", 0, "Inactivity timeout (0 for no timeout)")
	serveCmd.Flags().BoolVar(&serveListTools, "list-tools", false, "List available tools")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveListTools {
		s, err := mcp.New(nil, nil, mcp.Config{})
		if err != nil {
			return err
		}
		return writeReport(cmd.OutOrStdout(), s.GetToolSchemas())
	}

	if !serveMCP {
		return fmt.Errorf("no transport selected: use --mcp")
	}
	if len(args) != 1 {
		return fmt.Errorf("serve --mcp needs an input file")
	}

	in, err := loadInput(args[0])
	if err != nil {
		return err
	}

	prConfig := metrics.DefaultPageRankConfig()
	prConfig.Damping = cfg.Rank.PageRankDamping
	prConfig.MaxIterations = cfg.Rank.PageRankIterations

	s, err := mcp.New(in.file, in.graph, mcp.Config{
		Name:     in.name(),
		Version:  Version,
		Tools:    parseToolList(serveTools),
		Timeout:  serveTimeout,
		Palette:  palette(cfg),
		PageRank: prConfig,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("serving MCP on stdio", "file", args[0], "tools", s.ListTools())
	return s.ServeStdio(ctx)
}

// parseToolList accepts full tool names or short ones ("show" for
// "step_show").
func parseToolList(list string) []string {
	if list == "" {
		return nil
	}
	var tools []string
	for _, t := range strings.Split(list, ",") {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if !strings.HasPrefix(t, "step_") {
			t = "step_" + t
		}
		tools = append(tools, t)
	}
	return tools
}
