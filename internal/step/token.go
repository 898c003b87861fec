package step

import "fmt"

// TokenKind identifies the type of a lexical token.
type TokenKind int

const (
	TokenEOF        TokenKind = iota
	TokenInvalid              // unrecognized input; Literal holds the lexer's message
	TokenIdentifier           // FILE_NAME, IFCWALL, !USER_KEYWORD
	TokenKeyword              // ISO-10303-21, HEADER, DATA, ENDSEC, END-ISO-10303-21
	TokenInteger              // [+-]?[0-9]+
	TokenReal                 // [+-]?[0-9]+.[0-9]*(E[+-]?[0-9]+)?
	TokenString               // '...' with '' decoded to '
	TokenBinary               // "0A3F"
	TokenEnum                 // .T., .UNDEFINED.
	TokenRef                  // #123
	TokenLParen               // (
	TokenRParen               // )
	TokenComma                // ,
	TokenSemicolon            // ;
	TokenEquals               // =
	TokenDollar               // $
	TokenStar                 // *
)

var tokenNames = map[TokenKind]string{
	TokenEOF:        "EOF",
	TokenInvalid:    "invalid",
	TokenIdentifier: "identifier",
	TokenKeyword:    "keyword",
	TokenInteger:    "integer",
	TokenReal:       "real",
	TokenString:     "string",
	TokenBinary:     "binary",
	TokenEnum:       "enumeration",
	TokenRef:        "reference",
	TokenLParen:     "'('",
	TokenRParen:     "')'",
	TokenComma:      "','",
	TokenSemicolon:  "';'",
	TokenEquals:     "'='",
	TokenDollar:     "'$'",
	TokenStar:       "'*'",
}

func (k TokenKind) String() string {
	if name, ok := tokenNames[k]; ok {
		return name
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// Position is a location in the source text.
type Position struct {
	Offset int // byte offset, 0-based
	Line   int // 1-based
	Column int // 1-based, in bytes
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Kind TokenKind
	// Literal is the token text. Strings are unquoted with doubled quotes
	// collapsed; enumerations and binaries have their delimiters stripped;
	// references omit the leading '#'.
	Literal string
	Pos     Position
}

// Section keywords of the exchange structure.
const (
	KeywordISO    = "ISO-10303-21"
	KeywordEndISO = "END-ISO-10303-21"
	KeywordHeader = "HEADER"
	KeywordData   = "DATA"
	KeywordEndSec = "ENDSEC"
)

var keywords = map[string]struct{}{
	KeywordISO:    {},
	KeywordEndISO: {},
	KeywordHeader: {},
	KeywordData:   {},
	KeywordEndSec: {},
}
