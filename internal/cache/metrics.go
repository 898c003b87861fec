package cache

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/hargabyte/stepgraph/internal/metrics"
)

// SaveMetrics replaces the cached metrics of one file content.
func (c *Cache) SaveMetrics(fileHash string, ms []metrics.Metrics) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM metrics WHERE file_hash = ?", fileHash); err != nil {
		return fmt.Errorf("delete old metrics: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO metrics (file_hash, entity_id, type, pagerank, in_degree, out_degree, betweenness, computed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, m := range ms {
		computedAt := m.ComputedAt
		if computedAt.IsZero() {
			computedAt = time.Now()
		}
		_, err := stmt.Exec(fileHash, m.EntityID, m.Type, m.PageRank, m.InDegree, m.OutDegree,
			m.Betweenness, computedAt.UTC().Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("save metrics #%d: %w", m.EntityID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetMetrics returns the cached metrics of one file content, highest
// PageRank first. It returns sql.ErrNoRows when nothing is cached.
func (c *Cache) GetMetrics(fileHash string) ([]metrics.Metrics, error) {
	rows, err := c.db.Query(`
		SELECT entity_id, type, pagerank, in_degree, out_degree, betweenness, computed_at
		FROM metrics WHERE file_hash = ?
		ORDER BY pagerank DESC, entity_id`, fileHash)
	if err != nil {
		return nil, fmt.Errorf("query metrics: %w", err)
	}
	defer rows.Close()

	var out []metrics.Metrics
	for rows.Next() {
		m, err := scanMetrics(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	if len(out) == 0 {
		return nil, sql.ErrNoRows
	}
	return out, nil
}

// GetEntityMetrics returns the cached metrics of one entity. It returns
// sql.ErrNoRows when nothing is cached.
func (c *Cache) GetEntityMetrics(fileHash string, id int) (*metrics.Metrics, error) {
	row := c.db.QueryRow(`
		SELECT entity_id, type, pagerank, in_degree, out_degree, betweenness, computed_at
		FROM metrics WHERE file_hash = ? AND entity_id = ?`, fileHash, id)
	m, err := scanMetrics(row)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("get metrics #%d: %w", id, err)
	}
	return m, nil
}

// PruneMetrics removes metrics whose content hash no indexed file has any
// more and returns the number of rows deleted.
func (c *Cache) PruneMetrics() (int64, error) {
	res, err := c.db.Exec(`
		DELETE FROM metrics
		WHERE file_hash NOT IN (SELECT scan_hash FROM file_index)`)
	if err != nil {
		return 0, fmt.Errorf("prune metrics: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMetrics(s scanner) (*metrics.Metrics, error) {
	var m metrics.Metrics
	var computedAt string
	if err := s.Scan(&m.EntityID, &m.Type, &m.PageRank, &m.InDegree, &m.OutDegree, &m.Betweenness, &computedAt); err != nil {
		return nil, err
	}
	m.ComputedAt, _ = time.Parse(time.RFC3339, computedAt)
	return &m, nil
}
