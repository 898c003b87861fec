package step

import (
	"strconv"
	"strings"
)

// EntityRecord is one parsed `#id = ...;` instance statement.
type EntityRecord struct {
	ID       int
	Segments []Segment // one for simple instances, several for complex ones
	Pos      Position  // position of the '#' that opens the statement
}

// IsComplex reports whether the record was written as a complex instance.
func (r *EntityRecord) IsComplex() bool {
	return len(r.Segments) > 1
}

// TypeName returns the entity type. Complex instances join their segment
// types with '+', e.g. "GEOMETRIC_REPRESENTATION_CONTEXT+REPRESENTATION_CONTEXT".
func (r *EntityRecord) TypeName() string {
	if len(r.Segments) == 1 {
		return r.Segments[0].Type
	}
	names := make([]string, len(r.Segments))
	for i, s := range r.Segments {
		names[i] = s.Type
	}
	return strings.Join(names, "+")
}

// Params returns the attribute list of a simple instance, or of the first
// segment of a complex one.
func (r *EntityRecord) Params() []Value {
	if len(r.Segments) == 0 {
		return nil
	}
	return r.Segments[0].Params
}

// Refs returns every reference in the record, in attribute order, with the
// path of the attribute that holds it.
func (r *EntityRecord) Refs() []RefAt {
	var refs []RefAt
	for i, seg := range r.Segments {
		WalkRefs(i, seg.Params, func(target int, path Path) {
			refs = append(refs, RefAt{Target: target, Path: path})
		})
	}
	return refs
}

// RefAt is a reference together with where it occurs.
type RefAt struct {
	Target int
	Path   Path
}

// PathLabel renders a Path as a 1-based dotted attribute position. For
// complex instances the segment type is prepended: "REPRESENTATION_ITEM:1".
func (r *EntityRecord) PathLabel(p Path) string {
	parts := make([]string, len(p.Indices))
	for i, idx := range p.Indices {
		parts[i] = strconv.Itoa(idx + 1)
	}
	label := strings.Join(parts, ".")
	if r.IsComplex() && p.Segment < len(r.Segments) {
		return r.Segments[p.Segment].Type + ":" + label
	}
	return label
}

// String renders the record back to a STEP instance statement.
func (r *EntityRecord) String() string {
	var sb strings.Builder
	sb.WriteByte('#')
	sb.WriteString(strconv.Itoa(r.ID))
	sb.WriteByte('=')
	if r.IsComplex() {
		sb.WriteByte('(')
		for _, seg := range r.Segments {
			writeSegment(&sb, seg)
		}
		sb.WriteByte(')')
	} else if len(r.Segments) == 1 {
		writeSegment(&sb, r.Segments[0])
	}
	sb.WriteByte(';')
	return sb.String()
}

// File is a parsed exchange structure.
type File struct {
	Header  []Segment       // FILE_DESCRIPTION, FILE_NAME, FILE_SCHEMA, ...
	Records []*EntityRecord // DATA section instances in declaration order
}

// Schemas returns the schema identifiers named by FILE_SCHEMA, if any.
func (f *File) Schemas() []string {
	var schemas []string
	for _, h := range f.Header {
		if h.Type != "FILE_SCHEMA" {
			continue
		}
		for _, p := range h.Params {
			collectStrings(p, &schemas)
		}
	}
	return schemas
}

func collectStrings(v Value, out *[]string) {
	switch v.Kind {
	case ValueString:
		*out = append(*out, v.Str)
	case ValueList:
		for _, item := range v.List {
			collectStrings(item, out)
		}
	}
}
