package step

import (
	"fmt"
	"strconv"
)

// Parse parses a STEP physical file and returns its header and DATA section
// records. Input that does not begin with ISO-10303-21 is treated as a bare
// DATA section body, so fragments such as "#1=A();#2=B(#1);" parse too.
//
// Parsing stops at the first error, which is a *ParseError. When the error
// was caused by unrecognized input, errors.As also finds a *LexError.
func Parse(src []byte) (*File, error) {
	p := newParser(src)
	return p.parseFile()
}

// ParseParameters parses a comma-separated parameter list such as
// "'a',(1,2),#5" (without enclosing parentheses).
func ParseParameters(src []byte) ([]Value, error) {
	p := newParser(src)
	if p.peek().Kind == TokenEOF {
		return []Value{}, nil
	}
	var params []Value
	for {
		v, err := p.parseParameter()
		if err != nil {
			return nil, err
		}
		params = append(params, v)
		if p.peek().Kind != TokenComma {
			break
		}
		p.next()
	}
	if _, err := p.expect(TokenEOF, "end of input"); err != nil {
		return nil, err
	}
	return params, nil
}

type parser struct {
	src []byte
	lex *Lexer
}

func newParser(src []byte) *parser {
	return &parser{src: src, lex: NewLexer(src)}
}

func (p *parser) peek() Token { return p.lex.Peek() }
func (p *parser) next() Token { return p.lex.Next() }

func (p *parser) errorAt(tok Token, expected string) *ParseError {
	err := &ParseError{
		Pos:        tok.Pos,
		Expected:   expected,
		Found:      tok.Kind,
		FoundValue: tok.Literal,
		Line:       SourceLine(p.src, tok.Pos.Offset),
	}
	if tok.Kind == TokenInvalid {
		err.FoundValue = ""
		err.Message = tok.Literal
		err.Cause = &LexError{Pos: tok.Pos, Message: tok.Literal}
	}
	return err
}

func (p *parser) expect(kind TokenKind, expected string) (Token, error) {
	tok := p.next()
	if tok.Kind != kind {
		return Token{}, p.errorAt(tok, expected)
	}
	return tok, nil
}

func (p *parser) expectKeyword(word string) error {
	tok := p.next()
	if tok.Kind != TokenKeyword || tok.Literal != word {
		return p.errorAt(tok, word)
	}
	return nil
}

func (p *parser) isKeyword(tok Token, word string) bool {
	return tok.Kind == TokenKeyword && tok.Literal == word
}

func (p *parser) parseFile() (*File, error) {
	f := &File{}
	if !p.isKeyword(p.peek(), KeywordISO) {
		records, err := p.parseInstances(TokenEOF)
		if err != nil {
			return nil, err
		}
		f.Records = records
		return f, nil
	}

	p.next()
	if _, err := p.expect(TokenSemicolon, "';'"); err != nil {
		return nil, err
	}

	header, err := p.parseHeader()
	if err != nil {
		return nil, err
	}
	f.Header = header

	for {
		tok := p.peek()
		switch {
		case p.isKeyword(tok, KeywordData):
			records, err := p.parseDataSection()
			if err != nil {
				return nil, err
			}
			f.Records = append(f.Records, records...)
		case p.isKeyword(tok, KeywordEndISO):
			p.next()
			if _, err := p.expect(TokenSemicolon, "';'"); err != nil {
				return nil, err
			}
			if _, err := p.expect(TokenEOF, "end of file"); err != nil {
				return nil, err
			}
			return f, nil
		case tok.Kind == TokenIdentifier:
			// ANCHOR, REFERENCE and SIGNATURE sections are not graph content.
			if err := p.skipSection(); err != nil {
				return nil, err
			}
		default:
			return nil, p.errorAt(p.next(), "DATA or END-ISO-10303-21")
		}
	}
}

func (p *parser) parseHeader() ([]Segment, error) {
	if err := p.expectKeyword(KeywordHeader); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenSemicolon, "';'"); err != nil {
		return nil, err
	}

	var header []Segment
	for !p.isKeyword(p.peek(), KeywordEndSec) {
		seg, err := p.parseSegment()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenSemicolon, "';'"); err != nil {
			return nil, err
		}
		header = append(header, seg)
	}
	p.next()
	if _, err := p.expect(TokenSemicolon, "';'"); err != nil {
		return nil, err
	}
	return header, nil
}

func (p *parser) parseDataSection() ([]*EntityRecord, error) {
	p.next() // DATA

	// Edition 3 allows DATA('name',('SCHEMA'));
	if p.peek().Kind == TokenLParen {
		p.next()
		if _, err := p.parseParamList(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(TokenSemicolon, "';'"); err != nil {
		return nil, err
	}

	records, err := p.parseInstances(TokenKeyword)
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword(KeywordEndSec); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenSemicolon, "';'"); err != nil {
		return nil, err
	}
	return records, nil
}

// parseInstances reads instance statements until a token of kind stop.
func (p *parser) parseInstances(stop TokenKind) ([]*EntityRecord, error) {
	var records []*EntityRecord
	for {
		tok := p.peek()
		if tok.Kind == stop {
			return records, nil
		}
		if tok.Kind == TokenEOF {
			return nil, p.errorAt(p.next(), KeywordEndSec)
		}
		rec, err := p.parseInstance()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
}

// skipSection discards a section the graph has no use for. Its body may use
// syntax outside the DATA grammar (ANCHOR has <name> tags), so invalid
// tokens are ignored here.
func (p *parser) skipSection() error {
	p.next() // section name
	for {
		tok := p.next()
		switch {
		case tok.Kind == TokenEOF:
			return p.errorAt(tok, KeywordEndSec)
		case p.isKeyword(tok, KeywordEndSec):
			_, err := p.expect(TokenSemicolon, "';'")
			return err
		}
	}
}

func (p *parser) parseInstance() (*EntityRecord, error) {
	idTok, err := p.expect(TokenRef, "entity instance name '#<id>'")
	if err != nil {
		return nil, err
	}
	id, err := strconv.Atoi(idTok.Literal)
	if err != nil {
		return nil, &ParseError{
			Pos:        idTok.Pos,
			Expected:   "entity instance name '#<id>'",
			Found:      TokenRef,
			FoundValue: idTok.Literal,
			Message:    fmt.Sprintf("entity id #%s out of range", idTok.Literal),
			Line:       SourceLine(p.src, idTok.Pos.Offset),
		}
	}
	if _, err := p.expect(TokenEquals, "'='"); err != nil {
		return nil, err
	}

	rec := &EntityRecord{ID: id, Pos: idTok.Pos}

	switch tok := p.peek(); tok.Kind {
	case TokenLParen:
		p.next()
		for p.peek().Kind != TokenRParen {
			seg, err := p.parseSegment()
			if err != nil {
				return nil, err
			}
			rec.Segments = append(rec.Segments, seg)
		}
		if len(rec.Segments) == 0 {
			return nil, p.errorAt(p.next(), "entity type name")
		}
		p.next() // )
	case TokenIdentifier:
		for p.peek().Kind == TokenIdentifier {
			seg, err := p.parseSegment()
			if err != nil {
				return nil, err
			}
			rec.Segments = append(rec.Segments, seg)
		}
	default:
		return nil, p.errorAt(p.next(), "entity type name")
	}

	if _, err := p.expect(TokenSemicolon, "';'"); err != nil {
		return nil, err
	}
	return rec, nil
}

// parseSegment reads TYPE(params).
func (p *parser) parseSegment() (Segment, error) {
	nameTok, err := p.expect(TokenIdentifier, "entity type name")
	if err != nil {
		return Segment{}, err
	}
	if _, err := p.expect(TokenLParen, "'('"); err != nil {
		return Segment{}, err
	}
	params, err := p.parseParamList()
	if err != nil {
		return Segment{}, err
	}
	return Segment{Type: nameTok.Literal, Params: params}, nil
}

// parseParamList reads parameters up to and including the closing ')'.
// The opening '(' has already been consumed.
func (p *parser) parseParamList() ([]Value, error) {
	params := []Value{}
	if p.peek().Kind == TokenRParen {
		p.next()
		return params, nil
	}
	for {
		v, err := p.parseParameter()
		if err != nil {
			return nil, err
		}
		params = append(params, v)

		tok := p.next()
		switch tok.Kind {
		case TokenComma:
			continue
		case TokenRParen:
			return params, nil
		default:
			return nil, p.errorAt(tok, "',' or ')'")
		}
	}
}

func (p *parser) parseParameter() (Value, error) {
	tok := p.next()
	switch tok.Kind {
	case TokenDollar:
		return Unset(), nil
	case TokenStar:
		return Derived(), nil
	case TokenString:
		return String(tok.Literal), nil
	case TokenBinary:
		return Binary(tok.Literal), nil
	case TokenInteger:
		n, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			return Value{}, p.valueError(tok, "integer", err)
		}
		return Integer(n), nil
	case TokenReal:
		f, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return Value{}, p.valueError(tok, "real", err)
		}
		return Value{Kind: ValueReal, Real: f, Str: tok.Literal}, nil
	case TokenEnum:
		switch tok.Literal {
		case "T":
			return Boolean(true), nil
		case "F":
			return Boolean(false), nil
		}
		return Enum(tok.Literal), nil
	case TokenRef:
		id, err := strconv.Atoi(tok.Literal)
		if err != nil {
			return Value{}, p.valueError(tok, "reference", err)
		}
		return Ref(id), nil
	case TokenLParen:
		items, err := p.parseParamList()
		if err != nil {
			return Value{}, err
		}
		return List(items...), nil
	case TokenIdentifier:
		if _, err := p.expect(TokenLParen, "'(' after typed parameter name"); err != nil {
			return Value{}, err
		}
		params, err := p.parseParamList()
		if err != nil {
			return Value{}, err
		}
		return Typed(tok.Literal, params...), nil
	default:
		return Value{}, p.errorAt(tok, "parameter")
	}
}

func (p *parser) valueError(tok Token, what string, cause error) *ParseError {
	return &ParseError{
		Pos:        tok.Pos,
		Expected:   what,
		Found:      tok.Kind,
		FoundValue: tok.Literal,
		Message:    fmt.Sprintf("invalid %s %q", what, tok.Literal),
		Line:       SourceLine(p.src, tok.Pos.Offset),
		Cause:      cause,
	}
}
