package cache

import "fmt"

// Tables:
//   - metrics: scores per entity of one file content, keyed by content hash
//   - file_index: last content hash seen per input path
const schemaSQL = `
CREATE TABLE IF NOT EXISTS metrics (
    file_hash TEXT NOT NULL,
    entity_id INTEGER NOT NULL,
    type TEXT NOT NULL DEFAULT '',
    pagerank REAL NOT NULL DEFAULT 0,
    in_degree INTEGER NOT NULL DEFAULT 0,
    out_degree INTEGER NOT NULL DEFAULT 0,
    betweenness REAL NOT NULL DEFAULT 0,
    computed_at TEXT NOT NULL,
    PRIMARY KEY (file_hash, entity_id)
);

CREATE TABLE IF NOT EXISTS file_index (
    file_path TEXT PRIMARY KEY,
    scan_hash TEXT NOT NULL,
    entities INTEGER NOT NULL DEFAULT 0,
    edges INTEGER NOT NULL DEFAULT 0,
    warnings INTEGER NOT NULL DEFAULT 0,
    scanned_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_metrics_pagerank ON metrics(file_hash, pagerank DESC);
`

// fileIndexAdded lists file_index columns that caches created by older
// releases lack.
var fileIndexAdded = []string{"edges", "warnings"}

func (c *Cache) initSchema() error {
	if _, err := c.db.Exec(schemaSQL); err != nil {
		return err
	}
	return c.migrateFileIndex()
}

func (c *Cache) migrateFileIndex() error {
	rows, err := c.db.Query("SELECT name FROM pragma_table_info('file_index')")
	if err != nil {
		return fmt.Errorf("read file_index columns: %w", err)
	}
	have := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return err
		}
		have[name] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, col := range fileIndexAdded {
		if have[col] {
			continue
		}
		if _, err := c.db.Exec("ALTER TABLE file_index ADD COLUMN " + col + " INTEGER NOT NULL DEFAULT 0"); err != nil {
			return fmt.Errorf("add file_index.%s: %w", col, err)
		}
	}
	return nil
}
