package mcp

import "github.com/mark3labs/mcp-go/mcp"

// ToolSchema describes a tool's name, description, and parameters.
type ToolSchema struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description" yaml:"description"`
	Parameters  []ParameterSchema `json:"parameters" yaml:"parameters"`
}

// ParameterSchema describes a single tool parameter.
type ParameterSchema struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"` // string, number or boolean
	Description string `json:"description" yaml:"description"`
	Required    bool   `json:"required" yaml:"required"`
}

// Tool converts the schema to an mcp-go tool definition.
func (ts ToolSchema) Tool() mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(ts.Description)}
	for _, p := range ts.Parameters {
		popts := []mcp.PropertyOption{mcp.Description(p.Description)}
		if p.Required {
			popts = append(popts, mcp.Required())
		}
		switch p.Type {
		case "number":
			opts = append(opts, mcp.WithNumber(p.Name, popts...))
		case "boolean":
			opts = append(opts, mcp.WithBoolean(p.Name, popts...))
		default:
			opts = append(opts, mcp.WithString(p.Name, popts...))
		}
	}
	return mcp.NewTool(ts.Name, opts...)
}

// toolSchemaRegistry holds the definitions of every tool. Ids may be
// passed as numbers or as "#42" strings, so they are declared as strings.
var toolSchemaRegistry = map[string]ToolSchema{
	"step_summary": {
		Name:        "step_summary",
		Description: "Summarize the loaded STEP file: schema, entity and reference counts, type histogram, dangling references and reference cycles.",
	},
	"step_show": {
		Name:        "step_show",
		Description: "Show one entity: type, line, attributes in STEP syntax, references and referrers.",
		Parameters: []ParameterSchema{
			{Name: "id", Type: "string", Description: "Entity id, e.g. 42 or #42", Required: true},
			{Name: "density", Type: "string", Description: "Detail level: sparse, medium, dense (default: medium)"},
		},
	},
	"step_neighborhood": {
		Name:        "step_neighborhood",
		Description: "Extract the neighborhood of an entity as a node/edge model, a Mermaid flowchart or a D2 diagram.",
		Parameters: []ParameterSchema{
			{Name: "id", Type: "string", Description: "Entity id, e.g. 42 or #42", Required: true},
			{Name: "radius", Type: "number", Description: "Hops from the entity; negative for unbounded (default: 1)"},
			{Name: "direction", Type: "string", Description: "out, in or both (default: both)"},
			{Name: "format", Type: "string", Description: "json, mermaid or d2 (default: json)"},
		},
	},
	"step_find": {
		Name:        "step_find",
		Description: "Find entities whose type name contains a substring, case-insensitively.",
		Parameters: []ParameterSchema{
			{Name: "type", Type: "string", Description: "Type name or fragment, e.g. IFCWALL or POINT", Required: true},
			{Name: "limit", Type: "number", Description: "Maximum results (default: 20)"},
		},
	},
	"step_path": {
		Name:        "step_path",
		Description: "Find the shortest reference path between two entities.",
		Parameters: []ParameterSchema{
			{Name: "from", Type: "string", Description: "Start entity id", Required: true},
			{Name: "to", Type: "string", Description: "End entity id", Required: true},
			{Name: "direction", Type: "string", Description: "out, in or both (default: out)"},
		},
	},
	"step_rank": {
		Name:        "step_rank",
		Description: "Rank entities by PageRank over the reference graph, with betweenness, degrees and an importance class.",
		Parameters: []ParameterSchema{
			{Name: "top", Type: "number", Description: "Number of entities to return (default: 20)"},
			{Name: "keystones", Type: "boolean", Description: "Only highly ranked entities with many referrers"},
			{Name: "bottlenecks", Type: "boolean", Description: "Only entities with high betweenness"},
		},
	},
}
