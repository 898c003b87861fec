// Package cmd contains all CLI commands for stepgraph.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hargabyte/stepgraph/internal/config"
)

var (
	// Version is the current version of stepgraph
	Version = "0.1.0"

	// Global flags
	verbose       bool
	configPath    string
	forAgents     bool
	outputFormat  string
	outputDensity string

	// settings layers flags over STEPGRAPH_* environment variables over
	// the config file over built-in defaults.
	settings = viper.New()

	// cfg is the loaded config file, merged with defaults.
	cfg *config.Config

	logger = slog.New(slog.DiscardHandler)
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stepgraph",
	Short: "Entity graphs of STEP and IFC files",
	Long: `stepgraph parses ISO 10303-21 (STEP / IFC) physical files and builds the
graph of references between their entity instances.

It renders the whole graph, or the neighborhood of one entity, as an
interactive HTML page, a D2 or Mermaid diagram, or a JSON/YAML node and edge
model. It can also check files, inspect single entities, rank entities by
importance and export the graph to a SQLite or Dolt database.

Output Format:
  Reports are YAML by default. Use --format json for JSON.

Configuration:
  Settings are read from .stepgraph/config.yaml (found by walking up from the
  working directory) or --config. Environment variables override the file:
  STEPGRAPH_RENDER_RADIUS, STEPGRAPH_RENDER_DIRECTION, STEPGRAPH_EXPORT_BACKEND, ...
  Flags override both.

Examples:
  stepgraph render model.ifc model.html          # Whole graph
  stepgraph render model.ifc wall.html '#4213'   # Neighborhood of one entity
  stepgraph check models/                        # Parse every file under a directory
  stepgraph show model.ifc 42                    # One entity in detail
  stepgraph rank model.ifc --top 10              # Most central entities

See 'stepgraph <command> --help' for command-specific options.`,
	Version:           Version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SilenceErrors = true

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: .stepgraph/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "yaml", "Report format (yaml|json)")
	rootCmd.PersistentFlags().StringVar(&outputDensity, "density", "medium", "Entity detail level (sparse|medium|dense)")
	rootCmd.Flags().BoolVar(&forAgents, "for-agents", false, "Output machine-readable capability discovery JSON")

	bindFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	bindFlag("output.format", rootCmd.PersistentFlags().Lookup("format"))
	bindFlag("output.density", rootCmd.PersistentFlags().Lookup("density"))

	settings.SetEnvPrefix("STEPGRAPH")
	settings.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	settings.AutomaticEnv()

	// Set custom help function to intercept --for-agents flag
	originalHelp := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if forAgents {
			outputAgentHelp(cmd)
			return
		}
		originalHelp(cmd, args)
	})
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if forAgents {
			outputAgentHelp(cmd)
			return nil
		}
		return cmd.Help()
	}
}

func bindFlag(key string, f *pflag.Flag) {
	if err := settings.BindPFlag(key, f); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", key, err))
	}
}

// setup loads the config file, layers it under flags and environment, and
// configures logging. It runs before every command.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := loadConfig()
	if err != nil {
		return err
	}
	cfg = loaded
	applyConfigDefaults(cfg)

	level := slog.LevelInfo
	if settings.GetBool("verbose") {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	logger.Debug("configuration loaded", "config", configPath)
	return nil
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		return config.LoadFromPath(configPath)
	}
	return config.Load(".")
}

// applyConfigDefaults makes the config file values the defaults of the
// flag-bound settings, so a changed flag or a set environment variable
// still wins.
func applyConfigDefaults(c *config.Config) {
	settings.SetDefault("render.format", c.Render.Format)
	settings.SetDefault("render.radius", c.Render.RadiusValue())
	settings.SetDefault("render.direction", c.Render.Direction)
	settings.SetDefault("render.show_dangling", c.Render.ShowDanglingValue())
	settings.SetDefault("render.theme", c.Render.Theme)
	settings.SetDefault("rank.top", c.Rank.Top)
	settings.SetDefault("check.exclude", c.Check.Exclude)
	settings.SetDefault("export.backend", c.Export.Backend)
	settings.SetDefault("output.format", c.Output.Format)
	settings.SetDefault("output.density", c.Output.Density)
}

// CommandInfo represents a command for agent discovery
type CommandInfo struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Usage       string        `json:"usage"`
	Flags       []FlagInfo    `json:"flags,omitempty"`
	Subcommands []CommandInfo `json:"subcommands,omitempty"`
	Examples    []string      `json:"examples,omitempty"`
}

// FlagInfo represents a command flag for agent discovery
type FlagInfo struct {
	Name        string `json:"name"`
	Shorthand   string `json:"shorthand,omitempty"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Default     string `json:"default,omitempty"`
}

// outputAgentHelp writes machine-readable JSON describing all commands
func outputAgentHelp(cmd *cobra.Command) {
	root := buildCommandInfo(cmd.Root())
	writeAgentHelp(cmd.OutOrStdout(), root)
}

func writeAgentHelp(w io.Writer, root CommandInfo) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(map[string]any{
		"version":      Version,
		"commands":     root.Subcommands,
		"global_flags": root.Flags,
	})
}

// buildCommandInfo recursively builds command information for agent discovery
func buildCommandInfo(cmd *cobra.Command) CommandInfo {
	info := CommandInfo{
		Name:        cmd.Name(),
		Description: cmd.Short,
		Usage:       cmd.UseLine(),
	}

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		info.Flags = append(info.Flags, FlagInfo{
			Name:        f.Name,
			Shorthand:   f.Shorthand,
			Description: f.Usage,
			Type:        f.Value.Type(),
			Default:     f.DefValue,
		})
	})

	for _, sub := range cmd.Commands() {
		if !sub.Hidden && sub.Name() != "help" && sub.Name() != "completion" {
			info.Subcommands = append(info.Subcommands, buildCommandInfo(sub))
		}
	}

	if cmd.Example != "" {
		for _, line := range strings.Split(cmd.Example, "\n") {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				info.Examples = append(info.Examples, trimmed)
			}
		}
	}

	return info
}
