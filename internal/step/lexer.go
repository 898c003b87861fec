package step

import (
	"fmt"
	"iter"
	"strings"
)

// Lexer tokenizes STEP physical-file text. It never fails: unrecognized
// input is returned as a TokenInvalid token whose Literal describes the
// problem, and the parser decides what to do with it.
//
// A Lexer makes a single forward pass over its input and cannot be rewound.
type Lexer struct {
	src    []byte
	pos    int // current byte offset
	line   int // current line (1-based)
	col    int // current column (1-based)
	peeked *Token
}

// NewLexer creates a new Lexer for the given source bytes.
func NewLexer(src []byte) *Lexer {
	return &Lexer{src: src, line: 1, col: 1}
}

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() Token {
	if l.peeked == nil {
		tok := l.scan()
		l.peeked = &tok
	}
	return *l.peeked
}

// Next returns the next token and advances the lexer. After the end of
// input it keeps returning TokenEOF.
func (l *Lexer) Next() Token {
	if l.peeked != nil {
		tok := *l.peeked
		l.peeked = nil
		return tok
	}
	return l.scan()
}

// Tokens returns the remaining tokens as a sequence ending with TokenEOF.
// The sequence shares the lexer's cursor, so it can be consumed only once.
func (l *Lexer) Tokens() iter.Seq[Token] {
	return func(yield func(Token) bool) {
		for {
			tok := l.Next()
			if !yield(tok) || tok.Kind == TokenEOF {
				return
			}
		}
	}
}

func (l *Lexer) currentPos() Position {
	return Position{Offset: l.pos, Line: l.line, Column: l.col}
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.src)
}

func (l *Lexer) peek() byte {
	if l.atEnd() {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekAt(n int) byte {
	if l.pos+n >= len(l.src) {
		return 0
	}
	return l.src[l.pos+n]
}

func (l *Lexer) advance() byte {
	ch := l.src[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

func (l *Lexer) invalid(pos Position, format string, args ...any) Token {
	return Token{Kind: TokenInvalid, Literal: fmt.Sprintf(format, args...), Pos: pos}
}

// skipTrivia skips whitespace and /* */ comments. An unterminated comment
// is reported as an invalid token.
func (l *Lexer) skipTrivia() *Token {
	for !l.atEnd() {
		ch := l.peek()
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == '\f' || ch == '\v':
			l.advance()
		case ch == '/' && l.peekAt(1) == '*':
			start := l.currentPos()
			l.advance()
			l.advance()
			for {
				if l.atEnd() {
					tok := l.invalid(start, "unterminated comment")
					return &tok
				}
				if l.peek() == '*' && l.peekAt(1) == '/' {
					l.advance()
					l.advance()
					break
				}
				l.advance()
			}
		default:
			return nil
		}
	}
	return nil
}

func (l *Lexer) scan() Token {
	if bad := l.skipTrivia(); bad != nil {
		return *bad
	}

	pos := l.currentPos()
	if l.atEnd() {
		return Token{Kind: TokenEOF, Pos: pos}
	}

	ch := l.peek()
	switch ch {
	case '(':
		l.advance()
		return Token{Kind: TokenLParen, Literal: "(", Pos: pos}
	case ')':
		l.advance()
		return Token{Kind: TokenRParen, Literal: ")", Pos: pos}
	case ',':
		l.advance()
		return Token{Kind: TokenComma, Literal: ",", Pos: pos}
	case ';':
		l.advance()
		return Token{Kind: TokenSemicolon, Literal: ";", Pos: pos}
	case '=':
		l.advance()
		return Token{Kind: TokenEquals, Literal: "=", Pos: pos}
	case '$':
		l.advance()
		return Token{Kind: TokenDollar, Literal: "$", Pos: pos}
	case '*':
		l.advance()
		return Token{Kind: TokenStar, Literal: "*", Pos: pos}
	case '\'':
		return l.scanString()
	case '"':
		return l.scanBinary()
	case '#':
		return l.scanRef()
	case '.':
		if isLetter(l.peekAt(1)) {
			return l.scanEnum()
		}
	case '+', '-':
		if isDigit(l.peekAt(1)) {
			return l.scanNumber()
		}
	}

	if isDigit(ch) {
		return l.scanNumber()
	}
	if isLetter(ch) || ch == '_' || ch == '!' {
		return l.scanWord()
	}

	l.advance()
	return l.invalid(pos, "unexpected character %q", ch)
}

// scanString reads a quoted string. Two consecutive apostrophes stand for
// one literal apostrophe. Backslash directives are kept verbatim; see
// DecodeString.
func (l *Lexer) scanString() Token {
	pos := l.currentPos()
	l.advance() // opening '

	var sb strings.Builder
	for {
		if l.atEnd() {
			return l.invalid(pos, "unterminated string")
		}
		ch := l.advance()
		if ch == '\'' {
			if l.peek() == '\'' {
				l.advance()
				sb.WriteByte('\'')
				continue
			}
			return Token{Kind: TokenString, Literal: sb.String(), Pos: pos}
		}
		sb.WriteByte(ch)
	}
}

func (l *Lexer) scanBinary() Token {
	pos := l.currentPos()
	l.advance() // opening "

	start := l.pos
	for {
		if l.atEnd() {
			return l.invalid(pos, "unterminated binary literal")
		}
		ch := l.peek()
		if ch == '"' {
			lit := string(l.src[start:l.pos])
			l.advance()
			if lit == "" || lit[0] < '0' || lit[0] > '3' {
				return l.invalid(pos, "binary literal must start with a digit 0-3")
			}
			return Token{Kind: TokenBinary, Literal: lit, Pos: pos}
		}
		if !isHex(ch) {
			l.advance()
			return l.invalid(pos, "invalid character %q in binary literal", ch)
		}
		l.advance()
	}
}

func (l *Lexer) scanRef() Token {
	pos := l.currentPos()
	l.advance() // #

	start := l.pos
	for isDigit(l.peek()) {
		l.advance()
	}
	if l.pos == start {
		return l.invalid(pos, "expected digits after '#'")
	}
	return Token{Kind: TokenRef, Literal: string(l.src[start:l.pos]), Pos: pos}
}

func (l *Lexer) scanEnum() Token {
	pos := l.currentPos()
	l.advance() // leading .

	start := l.pos
	for isLetter(l.peek()) || isDigit(l.peek()) || l.peek() == '_' {
		l.advance()
	}
	lit := string(l.src[start:l.pos])
	if l.peek() != '.' {
		return l.invalid(pos, "unterminated enumeration .%s", lit)
	}
	l.advance() // trailing .
	return Token{Kind: TokenEnum, Literal: lit, Pos: pos}
}

func (l *Lexer) scanNumber() Token {
	pos := l.currentPos()
	start := l.pos

	if l.peek() == '+' || l.peek() == '-' {
		l.advance()
	}
	for isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() != '.' {
		return Token{Kind: TokenInteger, Literal: string(l.src[start:l.pos]), Pos: pos}
	}

	l.advance() // .
	for isDigit(l.peek()) {
		l.advance()
	}
	if e := l.peek(); e == 'E' || e == 'e' {
		next := l.peekAt(1)
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.peekAt(2))) {
			l.advance()
			if l.peek() == '+' || l.peek() == '-' {
				l.advance()
			}
			for isDigit(l.peek()) {
				l.advance()
			}
		}
	}
	return Token{Kind: TokenReal, Literal: string(l.src[start:l.pos]), Pos: pos}
}

// scanWord reads an identifier or a section keyword. Hyphens are only
// accepted when they complete a keyword such as END-ISO-10303-21.
func (l *Lexer) scanWord() Token {
	pos := l.currentPos()
	start := l.pos

	if l.peek() == '!' {
		l.advance()
	}
	for isWordChar(l.peek()) {
		l.advance()
	}
	end := l.pos

	probe := l.pos
	for probe < len(l.src) && (isWordChar(l.src[probe]) || l.src[probe] == '-') {
		probe++
	}
	if probe > end {
		if _, ok := keywords[string(l.src[start:probe])]; ok {
			for l.pos < probe {
				l.advance()
			}
			end = probe
		}
	}

	word := string(l.src[start:end])
	if _, ok := keywords[word]; ok {
		return Token{Kind: TokenKeyword, Literal: word, Pos: pos}
	}
	if word == "!" {
		return l.invalid(pos, "expected keyword after '!'")
	}
	return Token{Kind: TokenIdentifier, Literal: word, Pos: pos}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isLetter(ch byte) bool {
	return (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z')
}

func isWordChar(ch byte) bool {
	return isLetter(ch) || isDigit(ch) || ch == '_'
}

func isHex(ch byte) bool {
	return isDigit(ch) || (ch >= 'A' && ch <= 'F') || (ch >= 'a' && ch <= 'f')
}
