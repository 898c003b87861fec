package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hargabyte/stepgraph/internal/cache"
	"github.com/hargabyte/stepgraph/internal/output"
	"github.com/hargabyte/stepgraph/internal/source"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <path>...",
	Short: "Parse files and resolve their references without rendering",
	Long: `Parse STEP and IFC files and build their entity graphs, reporting
errors and dangling references.

Directories are searched recursively for .step, .stp, .ifc and .p21 files
and their compressed forms (.gz, .zst, .ifczip, .stpz). Hidden directories,
paths matched by the root .gitignore and paths matched by --exclude (or
check.exclude in the config file) are skipped.

Files that passed before and whose content is unchanged are not parsed
again; --force checks everything.

The command fails when any file fails. With --json, error reports are
printed as JSON.

Examples:
  stepgraph check part.stp                     # One file
  stepgraph check models/                      # Every STEP file below models/
  stepgraph check models/ --exclude 'old/**'   # Skip a subtree
  stepgraph check models/ --json               # Machine-readable results`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

var (
	checkExclude []string
	checkJSON    bool
	checkForce   bool
)

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringSliceVar(&checkExclude, "exclude", nil, "Gitignore-style patterns to skip (default: check.exclude from config)")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Print results and error reports as JSON")
	checkCmd.Flags().BoolVar(&checkForce, "force", false, "Check files even if unchanged since they last passed")

	bindFlag("check.exclude", checkCmd.Flags().Lookup("exclude"))
}

func runCheck(cmd *cobra.Command, args []string) error {
	exclude := settings.GetStringSlice("check.exclude")

	var files []string
	for _, root := range args {
		found, err := source.Discover(root, exclude)
		if err != nil {
			return err
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		return fmt.Errorf("no STEP files found in %v", args)
	}

	c, err := openCache()
	if err != nil {
		return err
	}
	defer c.Close()

	result := &output.CheckOutput{Files: make([]output.CheckResult, 0, len(files))}
	for _, path := range files {
		r := checkFile(c, path)
		if r.OK {
			result.Passed++
		} else {
			result.Failed++
			if !checkJSON {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", path, r.Error.Message)
			}
		}
		result.Files = append(result.Files, r)
	}

	if checkJSON {
		err = output.Write(cmd.OutOrStdout(), output.FormatJSON, result)
	} else {
		err = writeReport(cmd.OutOrStdout(), result)
	}
	if err != nil {
		return err
	}

	if result.Failed > 0 {
		return fmt.Errorf("%d of %d files failed", result.Failed, len(files))
	}
	return nil
}

// checkFile parses and builds one file. Successful results are recorded
// in the file index so an unchanged file is skipped next time.
func checkFile(c *cache.Cache, path string) output.CheckResult {
	start := time.Now()
	r := output.CheckResult{Path: path}

	data, err := source.Load(path)
	if err != nil {
		r.Error = ioErrorReport(err)
		return r
	}

	hash := cache.HashContent(data)
	if !checkForce {
		if changed, err := c.IsFileChanged(path, hash); err == nil && !changed {
			if entry, err := c.GetFileEntry(path); err == nil {
				logger.Debug("unchanged since last check", "file", path)
				r.OK = true
				r.Cached = true
				r.Entities = entry.Entities
				r.Edges = entry.Edges
				r.Warnings = entry.Warnings
				return r
			}
		}
	}

	in, err := parseInput(path, data)
	if err != nil {
		if rep, ok := errorReport(err); ok {
			r.Error = rep
		} else {
			r.Error = ioErrorReport(err)
		}
		return r
	}

	r.OK = true
	r.Entities = in.graph.NodeCount()
	r.Edges = in.graph.EdgeCount()
	r.Warnings = len(in.graph.Dangling())
	if err := c.SetFileScanned(path, hash, r.Entities, r.Edges, r.Warnings); err != nil {
		logger.Warn("failed to update file index", "file", path, "error", err)
	}
	logger.Debug("checked", "file", path, "entities", r.Entities, "elapsed", time.Since(start))
	return r
}
