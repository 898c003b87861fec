package cmd

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/hargabyte/stepgraph/internal/cache"
	"github.com/hargabyte/stepgraph/internal/config"
	"github.com/hargabyte/stepgraph/internal/graph"
	"github.com/hargabyte/stepgraph/internal/output"
	"github.com/hargabyte/stepgraph/internal/present"
	"github.com/hargabyte/stepgraph/internal/source"
	"github.com/hargabyte/stepgraph/internal/step"
)

// Shared helpers for command implementations

// input is one loaded, parsed and resolved file.
type input struct {
	path  string
	data  []byte
	file  *step.File
	graph *graph.Graph
}

// loadInput reads path, unpacking compressed containers, parses it and
// builds its entity graph. Dangling references are logged as warnings.
func loadInput(path string) (*input, error) {
	data, err := source.Load(path)
	if err != nil {
		return nil, err
	}
	return parseInput(path, data)
}

func parseInput(path string, data []byte) (*input, error) {
	f, err := step.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	g, err := graph.Build(f.Records, graph.Options{Logger: logger.With("file", path)})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &input{path: path, data: data, file: f, graph: g}, nil
}

// name returns the base name of the input, used as a title.
func (in *input) name() string {
	return filepath.Base(in.path)
}

// reportable is a fatal input error with a machine-readable form:
// *step.ParseError and *graph.DuplicateEntityError.
type reportable interface {
	error
	Report() step.ErrorReport
}

// errorReport extracts the report of a reportable error, if err is one.
func errorReport(err error) (*step.ErrorReport, bool) {
	var r reportable
	if errors.As(err, &r) {
		rep := r.Report()
		return &rep, true
	}
	return nil, false
}

// ioErrorReport wraps an error without a report of its own, such as a
// read failure.
func ioErrorReport(err error) *step.ErrorReport {
	return &step.ErrorReport{Type: "io", Message: err.Error()}
}

// writeErrorReport prints the JSON report of err to w when it has one.
func writeErrorReport(w io.Writer, err error) {
	if rep, ok := errorReport(err); ok {
		_ = output.Write(w, output.FormatJSON, rep)
	}
}

// reportFormat returns the configured report format.
func reportFormat() (output.Format, error) {
	return output.ParseFormat(settings.GetString("output.format"))
}

// writeReport prints v in the configured report format.
func writeReport(w io.Writer, v any) error {
	format, err := reportFormat()
	if err != nil {
		return err
	}
	return output.Write(w, format, v)
}

// palette builds the node palette from the config file.
func palette(c *config.Config) present.Palette {
	p := present.DefaultPalette()
	if len(c.Palette.Colors) > 0 {
		p.Colors = append([]string(nil), c.Palette.Colors...)
	}
	for typ, color := range c.Palette.Types {
		p.Types[typ] = color
	}
	if c.Palette.Entry != "" {
		p.Entry = c.Palette.Entry
	}
	if c.Palette.Dangling != "" {
		p.Dangling = c.Palette.Dangling
	}
	return p
}

// openCache opens the metrics cache in the project's .stepgraph
// directory, creating the directory in the working directory when no
// project is found.
func openCache() (*cache.Cache, error) {
	dir, err := config.FindConfigDir(".")
	if err != nil {
		if dir, err = config.EnsureConfigDir("."); err != nil {
			return nil, err
		}
	}
	c, err := cache.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	return c, nil
}

// formatElapsed rounds a duration for display.
func formatElapsed(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return d.Round(time.Microsecond).String()
	case d < time.Second:
		return d.Round(100 * time.Microsecond).String()
	default:
		return d.Round(time.Millisecond).String()
	}
}
