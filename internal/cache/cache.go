// Package cache stores computed entity metrics in .stepgraph/cache.db so
// that ranking an unchanged file does not recompute PageRank and
// betweenness. Metrics are keyed by the SHA-256 of the file content, and a
// file index remembers the last content hash seen for each path.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// FileName is the name of the database inside the .stepgraph directory.
const FileName = "cache.db"

// Cache manages the cache database.
type Cache struct {
	db     *sql.DB
	dbPath string
}

// Open opens or creates cache.db inside dir and initializes the schema.
func Open(dir string) (*Cache, error) {
	dbPath := filepath.Join(dir, FileName)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	c := &Cache{db: db, dbPath: dbPath}
	if err := c.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return c, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Path returns the database file path.
func (c *Cache) Path() string {
	return c.dbPath
}

// HashContent returns the key under which metrics for data are cached.
func HashContent(data []byte) string {
	sum := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(sum[:])
}

// Clear removes all cached metrics and file index entries.
func (c *Cache) Clear() error {
	if _, err := c.db.Exec("DELETE FROM metrics; DELETE FROM file_index;"); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

// Stats counts what the cache holds.
type Stats struct {
	MetricsCount   int64 `yaml:"metrics" json:"metrics"`
	ContentCount   int64 `yaml:"contents" json:"contents"`
	FileIndexCount int64 `yaml:"files" json:"files"`
}

// GetStats returns statistics about the cache contents.
func (c *Cache) GetStats() (*Stats, error) {
	var stats Stats
	err := c.db.QueryRow("SELECT COUNT(*), COUNT(DISTINCT file_hash) FROM metrics").
		Scan(&stats.MetricsCount, &stats.ContentCount)
	if err != nil {
		return nil, fmt.Errorf("count metrics: %w", err)
	}
	if err := c.db.QueryRow("SELECT COUNT(*) FROM file_index").Scan(&stats.FileIndexCount); err != nil {
		return nil, fmt.Errorf("count file index: %w", err)
	}
	return &stats, nil
}
