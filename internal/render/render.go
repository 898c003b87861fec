// Package render writes a present.Model in a concrete output format: a
// self-contained interactive HTML page, D2 or Mermaid diagram source, or
// the model itself as JSON or YAML.
package render

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/hargabyte/stepgraph/internal/output"
	"github.com/hargabyte/stepgraph/internal/present"
)

// Format names an output format.
type Format string

const (
	FormatHTML    Format = "html"
	FormatD2      Format = "d2"
	FormatMermaid Format = "mermaid"
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
)

// ParseFormat accepts html, d2, mermaid (or mmd), json and yaml.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "html", "htm":
		return FormatHTML, nil
	case "d2":
		return FormatD2, nil
	case "mermaid", "mmd":
		return FormatMermaid, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("invalid output format: %q (expected html, d2, mermaid, json, or yaml)", s)
	}
}

// FormatFromPath picks a format from the output file extension, falling
// back to HTML.
func FormatFromPath(path string) Format {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if f, err := ParseFormat(ext); err == nil {
		return f
	}
	return FormatHTML
}

// Renderer writes a model to w.
type Renderer interface {
	Render(w io.Writer, m *present.Model) error
}

// Options holds the settings shared by the renderers. Each renderer reads
// the fields that apply to it.
type Options struct {
	// HTML
	Height  string // CSS height of the canvas, e.g. "800px"
	Width   string // CSS width, e.g. "100%"
	Physics bool   // enable the force-directed layout simulation

	// D2 and Mermaid
	Direction string // "right" or "down"
	Theme     string // D2 theme name, see D2Themes
}

// DefaultOptions returns the defaults used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Height:    "800px",
		Width:     "100%",
		Physics:   true,
		Direction: "right",
		Theme:     "default",
	}
}

// ForFormat returns the renderer for f.
func ForFormat(f Format, opts Options) (Renderer, error) {
	switch f {
	case FormatHTML:
		return &HTMLRenderer{opts: opts}, nil
	case FormatD2:
		return &D2Renderer{opts: opts}, nil
	case FormatMermaid:
		return &MermaidRenderer{opts: opts}, nil
	case FormatJSON:
		return &DataRenderer{format: output.FormatJSON}, nil
	case FormatYAML:
		return &DataRenderer{format: output.FormatYAML}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", f)
	}
}

// DataRenderer writes the model itself through the report formatters.
type DataRenderer struct {
	format output.Format
}

// Render writes m as JSON or YAML.
func (r *DataRenderer) Render(w io.Writer, m *present.Model) error {
	return output.Write(w, r.format, m)
}

// nodeText is the two-line caption used by the diagram formats.
func nodeText(n present.Node) string {
	return n.Name + "\n" + n.Label
}
