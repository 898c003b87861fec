package output

import "github.com/hargabyte/stepgraph/internal/step"

// SummaryOutput is the result of a successful render or check of one file.
type SummaryOutput struct {
	File     string   `yaml:"file" json:"file"`
	Schemas  []string `yaml:"schemas,omitempty" json:"schemas,omitempty"`
	Entities int      `yaml:"entities" json:"entities"`
	Edges    int      `yaml:"edges" json:"edges"`
	Warnings int      `yaml:"warnings" json:"warnings"`

	// Dangling lists the unresolved references as "#from.attr -> #to".
	Dangling []string `yaml:"dangling,omitempty" json:"dangling,omitempty"`

	// Target is set for single-entity renders.
	Target  string `yaml:"target,omitempty" json:"target,omitempty"`
	Output  string `yaml:"output,omitempty" json:"output,omitempty"`
	Elapsed string `yaml:"elapsed" json:"elapsed"`
}

// CheckOutput collects the results of checking several files.
type CheckOutput struct {
	Files  []CheckResult `yaml:"files" json:"files"`
	Passed int           `yaml:"passed" json:"passed"`
	Failed int           `yaml:"failed" json:"failed"`
}

// CheckResult is the outcome for one file. Error is set when the file
// failed to parse or build.
type CheckResult struct {
	Path     string            `yaml:"path" json:"path"`
	OK       bool              `yaml:"ok" json:"ok"`
	Cached   bool              `yaml:"cached,omitempty" json:"cached,omitempty"`
	Entities int               `yaml:"entities,omitempty" json:"entities,omitempty"`
	Edges    int               `yaml:"edges,omitempty" json:"edges,omitempty"`
	Warnings int               `yaml:"warnings,omitempty" json:"warnings,omitempty"`
	Error    *step.ErrorReport `yaml:"error,omitempty" json:"error,omitempty"`
}

// EntityOutput describes one entity for stepgraph show.
type EntityOutput struct {
	ID   string `yaml:"id" json:"id"`
	Type string `yaml:"type" json:"type"`
	Line int    `yaml:"line" json:"line"`

	// Attributes lists each attribute in STEP syntax, keyed by position.
	// Complex instances prefix the position with the segment type.
	Attributes []AttributeOutput `yaml:"attributes,omitempty" json:"attributes,omitempty"`

	References   []ReferenceOutput `yaml:"references,omitempty" json:"references,omitempty"`
	ReferencedBy []ReferenceOutput `yaml:"referenced_by,omitempty" json:"referenced_by,omitempty"`

	// Text is the decoded, wrapped tooltip text (dense only).
	Text string `yaml:"text,omitempty" json:"text,omitempty"`

	// Metrics are the cached rank scores, when stepgraph rank has seen
	// this content before (dense only).
	Metrics *RankEntry `yaml:"metrics,omitempty" json:"metrics,omitempty"`
}

// AttributeOutput is one attribute value.
type AttributeOutput struct {
	Position string `yaml:"position" json:"position"`
	Value    string `yaml:"value" json:"value"`
}

// ReferenceOutput is one edge seen from an entity. Entity is the other
// end; Attribute is the position on the referencing side.
type ReferenceOutput struct {
	Attribute string `yaml:"attribute" json:"attribute"`
	Entity    string `yaml:"entity" json:"entity"`
	Type      string `yaml:"type,omitempty" json:"type,omitempty"`
	Missing   bool   `yaml:"missing,omitempty" json:"missing,omitempty"`
}

// StatsOutput summarizes the content of a file.
type StatsOutput struct {
	File     string       `yaml:"file" json:"file"`
	Schemas  []string     `yaml:"schemas,omitempty" json:"schemas,omitempty"`
	Entities int          `yaml:"entities" json:"entities"`
	Edges    int          `yaml:"edges" json:"edges"`
	Dangling int          `yaml:"dangling" json:"dangling"`
	Types    []TypeCount  `yaml:"types" json:"types"`
	Cycles   *CycleOutput `yaml:"cycles" json:"cycles"`
	Roots    int          `yaml:"roots" json:"roots"`
	Leaves   int          `yaml:"leaves" json:"leaves"`
}

// TypeCount is one row of the type histogram.
type TypeCount struct {
	Type  string `yaml:"type" json:"type"`
	Count int    `yaml:"count" json:"count"`
}

// CycleOutput reports whether references form a cycle, with one example.
type CycleOutput struct {
	Found   bool     `yaml:"found" json:"found"`
	Example []string `yaml:"example,omitempty" json:"example,omitempty"`
}

// RankOutput lists entities by importance.
type RankOutput struct {
	File    string      `yaml:"file" json:"file"`
	Count   int         `yaml:"count" json:"count"`
	Cached  bool        `yaml:"cached" json:"cached"`
	Results []RankEntry `yaml:"results" json:"results"`
}

// RankEntry is one ranked entity.
type RankEntry struct {
	ID          string  `yaml:"id" json:"id"`
	Type        string  `yaml:"type" json:"type"`
	PageRank    float64 `yaml:"pagerank" json:"pagerank"`
	Betweenness float64 `yaml:"betweenness" json:"betweenness"`
	InDegree    int     `yaml:"in_degree" json:"in_degree"`
	OutDegree   int     `yaml:"out_degree" json:"out_degree"`
	Importance  string  `yaml:"importance,omitempty" json:"importance,omitempty"`
}

// PathOutput is a shortest reference path between two entities.
type PathOutput struct {
	From      string     `yaml:"from" json:"from"`
	To        string     `yaml:"to" json:"to"`
	Direction string     `yaml:"direction" json:"direction"`
	Found     bool       `yaml:"found" json:"found"`
	Hops      int        `yaml:"hops" json:"hops"`
	Path      []PathStep `yaml:"path,omitempty" json:"path,omitempty"`
}

// PathStep is one entity on a path.
type PathStep struct {
	ID   string `yaml:"id" json:"id"`
	Type string `yaml:"type" json:"type"`
}

// CacheStatusOutput describes the metrics cache.
type CacheStatusOutput struct {
	Path    string            `yaml:"path" json:"path"`
	Metrics int64             `yaml:"metrics" json:"metrics"`
	Content int64             `yaml:"contents" json:"contents"`
	Files   []CacheFileOutput `yaml:"files,omitempty" json:"files,omitempty"`
}

// CacheFileOutput is one file index entry. Stale is set when the file no
// longer exists or its content changed.
type CacheFileOutput struct {
	Path      string `yaml:"path" json:"path"`
	Entities  int    `yaml:"entities" json:"entities"`
	CheckedAt string `yaml:"checked_at" json:"checked_at"`
	Stale     bool   `yaml:"stale,omitempty" json:"stale,omitempty"`
}

// ExportOutput reports what was written to a database.
type ExportOutput struct {
	Backend    string `yaml:"backend" json:"backend"`
	Path       string `yaml:"path" json:"path"`
	Entities   int    `yaml:"entities" json:"entities"`
	References int    `yaml:"references" json:"references"`
	Unchanged  bool   `yaml:"unchanged,omitempty" json:"unchanged,omitempty"`
	Elapsed    string `yaml:"elapsed" json:"elapsed"`
}
