package cache

import (
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hargabyte/stepgraph/internal/metrics"
)

func setupTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func sampleMetrics() []metrics.Metrics {
	now := time.Now().Truncate(time.Second)
	return []metrics.Metrics{
		{EntityID: 1, Type: "IFCCARTESIANPOINT", PageRank: 0.5, InDegree: 4, Betweenness: 0, ComputedAt: now},
		{EntityID: 3, Type: "IFCLOCALPLACEMENT", PageRank: 0.2, InDegree: 2, OutDegree: 1, Betweenness: 0.25, ComputedAt: now},
		{EntityID: 7, Type: "IFCWALL", PageRank: 0.05, OutDegree: 1, ComputedAt: now},
	}
}

func TestCacheOpenClose(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(dir)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	if want := filepath.Join(dir, "cache.db"); c.Path() != want {
		t.Errorf("path = %q, want %q", c.Path(), want)
	}
	if err := c.SaveMetrics("h", sampleMetrics()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("close: %v", err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen cache: %v", err)
	}
	defer reopened.Close()
	got, err := reopened.GetMetrics("h")
	if err != nil || len(got) != 3 {
		t.Errorf("metrics after reopen = %d, %v", len(got), err)
	}
}

func TestHashContent(t *testing.T) {
	a := HashContent([]byte("#1=A();"))
	b := HashContent([]byte("#1=A();"))
	c := HashContent([]byte("#1=B();"))
	if a != b {
		t.Error("same content should hash the same")
	}
	if a == c {
		t.Error("different content should hash differently")
	}
	if !strings.HasPrefix(a, "sha256:") || len(a) != len("sha256:")+64 {
		t.Errorf("unexpected hash format %q", a)
	}
}

func TestMetricsSaveAndGet(t *testing.T) {
	c := setupTestCache(t)
	want := sampleMetrics()
	if err := c.SaveMetrics("h1", want); err != nil {
		t.Fatalf("save metrics: %v", err)
	}

	got, err := c.GetMetrics("h1")
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d rows, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].EntityID != want[i].EntityID || got[i].Type != want[i].Type ||
			got[i].PageRank != want[i].PageRank || got[i].InDegree != want[i].InDegree ||
			got[i].OutDegree != want[i].OutDegree || got[i].Betweenness != want[i].Betweenness {
			t.Errorf("row %d = %+v, want %+v", i, got[i], want[i])
		}
		if !got[i].ComputedAt.Equal(want[i].ComputedAt) {
			t.Errorf("row %d computed_at = %v, want %v", i, got[i].ComputedAt, want[i].ComputedAt)
		}
	}

	one, err := c.GetEntityMetrics("h1", 3)
	if err != nil {
		t.Fatalf("get entity metrics: %v", err)
	}
	if one.Betweenness != 0.25 {
		t.Errorf("betweenness = %f, want 0.25", one.Betweenness)
	}
}

func TestMetricsNotFound(t *testing.T) {
	c := setupTestCache(t)
	if _, err := c.GetMetrics("missing"); err != sql.ErrNoRows {
		t.Errorf("GetMetrics: expected sql.ErrNoRows, got %v", err)
	}
	if _, err := c.GetEntityMetrics("missing", 1); err != sql.ErrNoRows {
		t.Errorf("GetEntityMetrics: expected sql.ErrNoRows, got %v", err)
	}
}

func TestSaveMetricsReplaces(t *testing.T) {
	c := setupTestCache(t)
	if err := c.SaveMetrics("h1", sampleMetrics()); err != nil {
		t.Fatal(err)
	}
	if err := c.SaveMetrics("h1", sampleMetrics()[:1]); err != nil {
		t.Fatal(err)
	}
	got, err := c.GetMetrics("h1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("got %d rows after replace, want 1", len(got))
	}
}

func TestFileIndex(t *testing.T) {
	c := setupTestCache(t)
	if err := c.SetFileScanned("models/house.ifc", "sha256:abc", 42, 57, 2); err != nil {
		t.Fatalf("set file scanned: %v", err)
	}
	entry, err := c.GetFileEntry("models/house.ifc")
	if err != nil {
		t.Fatalf("get file entry: %v", err)
	}
	if entry.ScanHash != "sha256:abc" || entry.Entities != 42 || entry.Edges != 57 || entry.Warnings != 2 {
		t.Errorf("entry = %+v", entry)
	}
	if entry.ScannedAt.IsZero() {
		t.Error("ScannedAt is zero")
	}

	if _, err := c.GetFileEntry("other.ifc"); err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestFileIndexAddsCountColumns(t *testing.T) {
	dir := t.TempDir()
	old, err := sql.Open("sqlite", filepath.Join(dir, FileName))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := old.Exec(`
		CREATE TABLE file_index (
		    file_path TEXT PRIMARY KEY,
		    scan_hash TEXT NOT NULL,
		    entities INTEGER NOT NULL DEFAULT 0,
		    scanned_at TEXT NOT NULL
		);
		INSERT INTO file_index VALUES ('a.stp', 'h1', 5, '2026-01-02T03:04:05Z');`); err != nil {
		t.Fatal(err)
	}
	old.Close()

	c, err := Open(dir)
	if err != nil {
		t.Fatalf("open cache with old file_index: %v", err)
	}
	defer c.Close()

	entry, err := c.GetFileEntry("a.stp")
	if err != nil {
		t.Fatalf("get file entry: %v", err)
	}
	if entry.Entities != 5 || entry.Edges != 0 || entry.Warnings != 0 {
		t.Errorf("migrated entry = %+v", entry)
	}

	if err := c.SetFileScanned("a.stp", "h2", 5, 4, 1); err != nil {
		t.Fatalf("set file scanned: %v", err)
	}
	entry, _ = c.GetFileEntry("a.stp")
	if entry.Edges != 4 || entry.Warnings != 1 {
		t.Errorf("entry after update = %+v", entry)
	}
}

func TestIsFileChanged(t *testing.T) {
	c := setupTestCache(t)

	changed, err := c.IsFileChanged("a.stp", "h1")
	if err != nil || !changed {
		t.Errorf("new file: changed=%v err=%v, want true", changed, err)
	}

	c.SetFileScanned("a.stp", "h1", 1, 0, 0)
	if changed, _ := c.IsFileChanged("a.stp", "h1"); changed {
		t.Error("same hash should not be reported as changed")
	}
	if changed, _ := c.IsFileChanged("a.stp", "h2"); !changed {
		t.Error("different hash should be reported as changed")
	}
}

func TestPruneMetrics(t *testing.T) {
	c := setupTestCache(t)
	c.SaveMetrics("old", sampleMetrics())
	c.SaveMetrics("new", sampleMetrics())
	c.SetFileScanned("a.stp", "new", 3, 0, 0)

	n, err := c.PruneMetrics()
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if n != 3 {
		t.Errorf("pruned %d rows, want 3", n)
	}
	if _, err := c.GetMetrics("old"); err != sql.ErrNoRows {
		t.Errorf("old metrics should be gone, got %v", err)
	}
	if _, err := c.GetMetrics("new"); err != nil {
		t.Errorf("new metrics should remain: %v", err)
	}
}

func TestPruneStaleEntries(t *testing.T) {
	c := setupTestCache(t)
	for _, p := range []string{"a.stp", "b.stp", "c.stp"} {
		c.SetFileScanned(p, "h-"+p, 1, 0, 0)
	}

	pruned, err := c.PruneStaleEntries(map[string]bool{"a.stp": true, "c.stp": true})
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if pruned != 1 {
		t.Errorf("pruned = %d, want 1", pruned)
	}
	entries, _ := c.GetAllFileEntries()
	if len(entries) != 2 || entries[0].FilePath != "a.stp" || entries[1].FilePath != "c.stp" {
		t.Errorf("remaining entries = %+v", entries)
	}
}

func TestCacheClearAndStats(t *testing.T) {
	c := setupTestCache(t)
	c.SaveMetrics("h1", sampleMetrics())
	c.SaveMetrics("h2", sampleMetrics()[:1])
	c.SetFileScanned("a.stp", "h1", 3, 0, 0)

	stats, err := c.GetStats()
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	if stats.MetricsCount != 4 || stats.ContentCount != 2 || stats.FileIndexCount != 1 {
		t.Errorf("stats = %+v", stats)
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	stats, _ = c.GetStats()
	if stats.MetricsCount != 0 || stats.FileIndexCount != 0 {
		t.Errorf("stats after clear = %+v", stats)
	}
}
