// Package step reads ISO 10303-21 ("STEP physical file") exchange structures,
// the plain-text encoding used by STEP AP203/AP214/AP242 and IFC models.
//
// The package has three layers:
//
//   - Lexer: turns raw bytes into tokens, skipping whitespace and /* */
//     comments. It never fails; unrecognized input becomes a TokenInvalid
//     token that the parser reports.
//   - Parser: consumes tokens for the HEADER and DATA sections and produces
//     one EntityRecord per `#id = ...;` statement, including complex
//     instances and nested aggregates.
//   - Values: Value is a tagged union over the parameter kinds of the
//     format ($, *, strings, numbers, enumerations, binaries, references,
//     lists and typed parameters). FormatValue writes a Value back out in
//     a form that parses to an equal Value.
//
// Usage:
//
//	f, err := step.Parse(src)
//	if err != nil {
//	    var perr *step.ParseError
//	    if errors.As(err, &perr) {
//	        fmt.Fprintln(os.Stderr, perr)
//	    }
//	    return err
//	}
//	for _, rec := range f.Records {
//	    fmt.Println(rec.ID, rec.TypeName(), len(rec.Refs()))
//	}
//
// Attribute counts and types are not checked against any EXPRESS schema.
package step
