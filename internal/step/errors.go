package step

import (
	"bytes"
	"fmt"
	"strings"
)

// LexError describes input the lexer could not recognize. The lexer itself
// never fails; a LexError surfaces when the parser meets the invalid token.
type LexError struct {
	Pos     Position
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// ParseError reports a malformed statement. Parsing stops at the first one.
type ParseError struct {
	Pos        Position
	Expected   string    // human-readable expectation, e.g. "';'"
	Found      TokenKind // kind of the offending token
	FoundValue string    // its literal text
	Message    string    // overrides the expected/found wording when set
	Line       string    // the source line containing Pos
	Cause      error     // *LexError when the offending token was invalid
}

func (e *ParseError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.summary())
	if e.Line != "" {
		fmt.Fprintf(&sb, "\n%05d | %s\n%s^", e.Pos.Line, e.Line, strings.Repeat(" ", 8+max(e.Pos.Column-1, 0)))
	}
	return sb.String()
}

func (e *ParseError) summary() string {
	if e.Message != "" {
		return e.Message
	}
	if e.FoundValue != "" {
		return fmt.Sprintf("expected %s, found %s (%q)", e.Expected, e.Found, e.FoundValue)
	}
	return fmt.Sprintf("expected %s, found %s", e.Expected, e.Found)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// ErrorReport is the machine-readable form of a fatal input error.
type ErrorReport struct {
	Type       string `json:"type" yaml:"type"`
	Line       int    `json:"lineno" yaml:"lineno"`
	Column     int    `json:"column,omitempty" yaml:"column,omitempty"`
	FoundType  string `json:"found_type,omitempty" yaml:"found_type,omitempty"`
	FoundValue string `json:"found_value,omitempty" yaml:"found_value,omitempty"`
	Expected   string `json:"expected,omitempty" yaml:"expected,omitempty"`
	Name       string `json:"name,omitempty" yaml:"name,omitempty"`
	SourceLine string `json:"line,omitempty" yaml:"line,omitempty"`
	Message    string `json:"message" yaml:"message"`
}

// Report returns the error as an ErrorReport.
func (e *ParseError) Report() ErrorReport {
	kind := "unexpected_token"
	if _, ok := e.Cause.(*LexError); ok {
		kind = "unexpected_character"
	}
	return ErrorReport{
		Type:       kind,
		Line:       e.Pos.Line,
		Column:     e.Pos.Column,
		FoundType:  e.Found.String(),
		FoundValue: e.FoundValue,
		Expected:   e.Expected,
		SourceLine: e.Line,
		Message:    e.Error(),
	}
}

// SourceLine returns the text of the line containing offset, without its
// line terminator.
func SourceLine(src []byte, offset int) string {
	if offset > len(src) {
		offset = len(src)
	}
	start := bytes.LastIndexByte(src[:offset], '\n') + 1
	end := bytes.IndexByte(src[offset:], '\n')
	if end < 0 {
		end = len(src)
	} else {
		end += offset
	}
	return strings.TrimRight(string(src[start:end]), "\r")
}
