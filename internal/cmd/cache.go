package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/hargabyte/stepgraph/internal/cache"
	"github.com/hargabyte/stepgraph/internal/config"
	"github.com/hargabyte/stepgraph/internal/output"
	"github.com/hargabyte/stepgraph/internal/source"
)

// cacheCmd represents the cache command group
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and clean the metrics cache",
	Long: `Manage .stepgraph/cache.db, which holds rank metrics keyed by file
content and the index of files that passed stepgraph check.

Examples:
  stepgraph cache status          # Counts and indexed files
  stepgraph cache prune           # Drop entries of deleted or changed files
  stepgraph cache clear --dry-run # Show what would be removed`,
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what the cache holds",
	Args:  cobra.NoArgs,
	RunE:  runCacheStatus,
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove entries of files that no longer exist or have changed",
	Long: `Remove file index entries whose file is gone or whose content no longer
matches, then remove metrics that no indexed file refers to.`,
	Args: cobra.NoArgs,
	RunE: runCachePrune,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached metrics and file index entries",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

var cacheDryRun bool

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatusCmd, cachePruneCmd, cacheClearCmd)

	cacheClearCmd.Flags().BoolVar(&cacheDryRun, "dry-run", false, "Show what would be removed without changing anything")
}

// openExistingCache opens the cache without creating a .stepgraph
// directory.
func openExistingCache() (*cache.Cache, error) {
	dir, err := config.FindConfigDir(".")
	if err != nil {
		return nil, fmt.Errorf("no cache: %w", err)
	}
	if _, err := os.Stat(filepath.Join(dir, cache.FileName)); err != nil {
		return nil, fmt.Errorf("no cache in %s", dir)
	}
	return cache.Open(dir)
}

func runCacheStatus(cmd *cobra.Command, args []string) error {
	c, err := openExistingCache()
	if err != nil {
		return err
	}
	defer c.Close()

	stats, err := c.GetStats()
	if err != nil {
		return err
	}
	entries, err := c.GetAllFileEntries()
	if err != nil {
		return err
	}

	out := &output.CacheStatusOutput{
		Path:    c.Path(),
		Metrics: stats.MetricsCount,
		Content: stats.ContentCount,
	}
	for _, e := range entries {
		out.Files = append(out.Files, output.CacheFileOutput{
			Path:      e.FilePath,
			Entities:  e.Entities,
			CheckedAt: e.ScannedAt.Format(time.RFC3339),
			Stale:     isStale(e),
		})
	}
	return writeReport(cmd.OutOrStdout(), out)
}

// isStale reports whether the indexed file is gone or has new content.
func isStale(e cache.FileEntry) bool {
	data, err := source.Load(e.FilePath)
	if err != nil {
		return true
	}
	return cache.HashContent(data) != e.ScanHash
}

func runCachePrune(cmd *cobra.Command, args []string) error {
	c, err := openExistingCache()
	if err != nil {
		return err
	}
	defer c.Close()

	entries, err := c.GetAllFileEntries()
	if err != nil {
		return err
	}
	valid := make(map[string]bool, len(entries))
	for _, e := range entries {
		if !isStale(e) {
			valid[e.FilePath] = true
		}
	}

	files, err := c.PruneStaleEntries(valid)
	if err != nil {
		return err
	}
	rows, err := c.PruneMetrics()
	if err != nil {
		return err
	}
	logger.Debug("pruned cache", "files", files, "metrics", rows)
	fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d file entries and %d metrics rows\n", files, rows)
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	c, err := openExistingCache()
	if err != nil {
		return err
	}
	defer c.Close()

	stats, err := c.GetStats()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cache: %s\n", c.Path())
	fmt.Fprintf(cmd.OutOrStdout(), "Will clear: %d metrics rows, %d file entries\n", stats.MetricsCount, stats.FileIndexCount)
	if cacheDryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "[dry-run] No changes made")
		return nil
	}
	if err := c.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Cleared")
	return nil
}
