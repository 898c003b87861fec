package cache

import (
	"database/sql"
	"fmt"
	"time"
)

// FileEntry is the last content seen for an input path.
type FileEntry struct {
	FilePath  string
	ScanHash  string
	Entities  int
	Edges     int
	Warnings  int
	ScannedAt time.Time
}

// SetFileScanned records the content hash of path with the entity, edge
// and dangling reference counts of its graph.
func (c *Cache) SetFileScanned(path, hash string, entities, edges, warnings int) error {
	_, err := c.db.Exec(`
		INSERT OR REPLACE INTO file_index (file_path, scan_hash, entities, edges, warnings, scanned_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		path, hash, entities, edges, warnings, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("set file scanned %s: %w", path, err)
	}
	return nil
}

// GetFileEntry returns the entry for path, or sql.ErrNoRows.
func (c *Cache) GetFileEntry(path string) (*FileEntry, error) {
	var entry FileEntry
	var scannedAt string
	err := c.db.QueryRow(`
		SELECT file_path, scan_hash, entities, edges, warnings, scanned_at FROM file_index WHERE file_path = ?`,
		path).Scan(&entry.FilePath, &entry.ScanHash, &entry.Entities, &entry.Edges, &entry.Warnings, &scannedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("get file entry %s: %w", path, err)
	}
	entry.ScannedAt, _ = time.Parse(time.RFC3339, scannedAt)
	return &entry, nil
}

// IsFileChanged reports whether path has a different hash than last time,
// or has never been seen.
func (c *Cache) IsFileChanged(path, newHash string) (bool, error) {
	entry, err := c.GetFileEntry(path)
	if err == sql.ErrNoRows {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return entry.ScanHash != newHash, nil
}

// GetAllFileEntries returns every entry ordered by path.
func (c *Cache) GetAllFileEntries() ([]FileEntry, error) {
	rows, err := c.db.Query(`
		SELECT file_path, scan_hash, entities, edges, warnings, scanned_at FROM file_index ORDER BY file_path`)
	if err != nil {
		return nil, fmt.Errorf("query file entries: %w", err)
	}
	defer rows.Close()

	var entries []FileEntry
	for rows.Next() {
		var entry FileEntry
		var scannedAt string
		if err := rows.Scan(&entry.FilePath, &entry.ScanHash, &entry.Entities, &entry.Edges, &entry.Warnings, &scannedAt); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		entry.ScannedAt, _ = time.Parse(time.RFC3339, scannedAt)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return entries, nil
}

// PruneStaleEntries removes entries for paths not in validPaths, for
// example files deleted since the last check of a directory.
func (c *Cache) PruneStaleEntries(validPaths map[string]bool) (int, error) {
	entries, err := c.GetAllFileEntries()
	if err != nil {
		return 0, err
	}
	var pruned int
	for _, entry := range entries {
		if validPaths[entry.FilePath] {
			continue
		}
		if _, err := c.db.Exec("DELETE FROM file_index WHERE file_path = ?", entry.FilePath); err != nil {
			return pruned, fmt.Errorf("delete file entry %s: %w", entry.FilePath, err)
		}
		pruned++
	}
	return pruned, nil
}
