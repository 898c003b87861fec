// Package output provides the YAML/JSON report types printed by stepgraph
// commands.
//
// # Output Types
//
//   - SummaryOutput: one parsed file (stepgraph render --json, check)
//   - CheckOutput: several files (stepgraph check)
//   - EntityOutput: one entity with attributes and references (stepgraph show)
//   - StatsOutput: type histogram and graph shape (stepgraph stats)
//   - RankOutput: importance ranking (stepgraph rank)
//   - PathOutput: shortest reference path (stepgraph path)
//   - ExportOutput: database export result (stepgraph export)
//
// # Format Types
//
//   - YAML (default): human-readable, keys in snake_case
//   - JSON: same structure as YAML, indented
//
// # Density Modes
//
// Density applies to EntityOutput only:
//
//   - Sparse: id, type and line
//   - Medium (default): adds attributes and outgoing references
//   - Dense: adds incoming references and the decoded text
//
// # Example Usage
//
//	out := &output.StatsOutput{File: "wall.ifc", Entities: 120}
//	if err := output.Write(os.Stdout, output.FormatYAML, out); err != nil {
//	    return err
//	}
package output
