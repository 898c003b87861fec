package step

import (
	"strconv"
	"strings"
)

// FormatValue renders a value in STEP parameter syntax. The output parses
// back to an equal Value.
func FormatValue(v Value) string {
	var sb strings.Builder
	writeValue(&sb, v)
	return sb.String()
}

// FormatParams renders a parameter list without the enclosing parentheses.
func FormatParams(params []Value) string {
	var sb strings.Builder
	writeParams(&sb, params)
	return sb.String()
}

// FormatSegment renders TYPE(params).
func FormatSegment(seg Segment) string {
	var sb strings.Builder
	writeSegment(&sb, seg)
	return sb.String()
}

func writeSegment(sb *strings.Builder, seg Segment) {
	sb.WriteString(seg.Type)
	sb.WriteByte('(')
	writeParams(sb, seg.Params)
	sb.WriteByte(')')
}

func writeParams(sb *strings.Builder, params []Value) {
	for i, p := range params {
		if i > 0 {
			sb.WriteByte(',')
		}
		writeValue(sb, p)
	}
}

func writeValue(sb *strings.Builder, v Value) {
	switch v.Kind {
	case ValueUnset:
		sb.WriteByte('$')
	case ValueDerived:
		sb.WriteByte('*')
	case ValueString:
		sb.WriteByte('\'')
		sb.WriteString(strings.ReplaceAll(v.Str, "'", "''"))
		sb.WriteByte('\'')
	case ValueInteger:
		sb.WriteString(strconv.FormatInt(v.Int, 10))
	case ValueReal:
		if v.Str != "" {
			sb.WriteString(v.Str)
		} else {
			sb.WriteString(formatReal(v.Real))
		}
	case ValueBoolean:
		if v.Bool {
			sb.WriteString(".T.")
		} else {
			sb.WriteString(".F.")
		}
	case ValueEnum:
		sb.WriteByte('.')
		sb.WriteString(v.Str)
		sb.WriteByte('.')
	case ValueBinary:
		sb.WriteByte('"')
		sb.WriteString(v.Str)
		sb.WriteByte('"')
	case ValueRef:
		sb.WriteByte('#')
		sb.WriteString(strconv.Itoa(v.Ref))
	case ValueList:
		sb.WriteByte('(')
		writeParams(sb, v.List)
		sb.WriteByte(')')
	case ValueTyped:
		writeSegment(sb, *v.Typed)
	}
}

// formatReal spells f the way STEP requires: a decimal point is mandatory,
// and exponents use an upper-case E.
func formatReal(f float64) string {
	s := strconv.FormatFloat(f, 'G', -1, 64)
	mantissa, exp, hasExp := strings.Cut(s, "E")
	if !strings.Contains(mantissa, ".") {
		mantissa += "."
	}
	if hasExp {
		return mantissa + "E" + exp
	}
	return mantissa
}
