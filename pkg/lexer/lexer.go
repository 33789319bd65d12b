// Package lexer implements the scorex expression tokenizer.
package lexer

import (
	"fmt"

	"github.com/thomasrohde/scorex/pkg/ast"
	"github.com/thomasrohde/scorex/pkg/diagnostics"
)

// TokenType identifies the type of a lexer token.
type TokenType int

const (
	// Literals
	TokHex TokenType = iota
	TokOctal
	TokDecimal

	// Identifiers
	TokIdent

	// Punctuation
	TokLParen   // (
	TokRParen   // )
	TokComma    // ,
	TokQuestion // ?
	TokColon    // :

	// Arithmetic operators
	TokPlus    // +
	TokMinus   // -
	TokStar    // *
	TokSlash   // /
	TokPercent // %

	// Bitwise operators
	TokShl   // <<
	TokShr   // >>
	TokUshr  // >>>
	TokAmp   // &
	TokPipe  // |
	TokCaret // ^
	TokTilde // ~

	// Comparison operators
	TokEqEq   // ==
	TokBangEq // !=
	TokLt     // <
	TokGt     // >
	TokLtEq   // <=
	TokGtEq   // >=

	// Boolean operators
	TokAmpAmp   // &&
	TokPipePipe // ||
	TokBang     // !

	// Special
	TokEOF
)

// Token represents a single lexer token.
type Token struct {
	Type  TokenType
	Value string
	Span  ast.Span
}

type scanner struct {
	source   string
	filename string
	pos      int
	line     int
	col      int
}

func newScanner(source, filename string) *scanner {
	return &scanner{
		source:   source,
		filename: filename,
		pos:      0,
		line:     1,
		col:      1,
	}
}

func (s *scanner) atEnd() bool {
	return s.pos >= len(s.source)
}

func (s *scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.source[s.pos]
}

func (s *scanner) peekAt(offset int) byte {
	p := s.pos + offset
	if p >= len(s.source) {
		return 0
	}
	return s.source[p]
}

func (s *scanner) advance() byte {
	ch := s.source[s.pos]
	s.pos++
	if ch == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return ch
}

func (s *scanner) span(startLine, startCol int) ast.Span {
	return ast.Span{
		File:      s.filename,
		StartLine: startLine,
		StartCol:  startCol,
		EndLine:   s.line,
		EndCol:    s.col,
	}
}

func (s *scanner) skipWhitespace() {
	for !s.atEnd() {
		ch := s.peek()
		if ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' {
			s.advance()
		} else {
			break
		}
	}
}

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_' || ch == '$'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isOctalDigit(ch byte) bool {
	return ch >= '0' && ch <= '7'
}

func isAlphaNumeric(ch byte) bool {
	return isAlpha(ch) || isDigit(ch)
}

// scanNumber scans a hex, octal, or decimal literal. Classification follows
// the literal's spelling: 0x prefix is hex, a leading zero followed by octal
// digits is octal, anything else (including a bare "0") is decimal.
func (s *scanner) scanNumber() (Token, error) {
	startLine, startCol := s.line, s.col
	startPos := s.pos

	// Hex: 0x / 0X prefix
	if s.peek() == '0' && (s.peekAt(1) == 'x' || s.peekAt(1) == 'X') {
		s.advance()
		s.advance()
		if !isHexDigit(s.peek()) {
			return Token{}, s.lexError(startLine, startCol, "hex literal has no digits")
		}
		for !s.atEnd() && isHexDigit(s.peek()) {
			s.advance()
		}
		return Token{
			Type:  TokHex,
			Value: s.source[startPos:s.pos],
			Span:  s.span(startLine, startCol),
		}, nil
	}

	isFloat := false

	// Integer part (may be empty for literals like ".5")
	for !s.atEnd() && isDigit(s.peek()) {
		s.advance()
	}

	// Fractional part
	if !s.atEnd() && s.peek() == '.' && isDigit(s.peekAt(1)) {
		isFloat = true
		s.advance() // consume '.'
		for !s.atEnd() && isDigit(s.peek()) {
			s.advance()
		}
	}

	// Exponent
	if !s.atEnd() && (s.peek() == 'e' || s.peek() == 'E') {
		next := s.peekAt(1)
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(s.peekAt(2))) {
			isFloat = true
			s.advance() // consume e/E
			if s.peek() == '+' || s.peek() == '-' {
				s.advance()
			}
			for !s.atEnd() && isDigit(s.peek()) {
				s.advance()
			}
		}
	}

	text := s.source[startPos:s.pos]

	// A leading zero on a multi-digit integer means octal.
	if !isFloat && len(text) > 1 && text[0] == '0' {
		for i := 1; i < len(text); i++ {
			if !isOctalDigit(text[i]) {
				return Token{}, s.lexError(startLine, startCol,
					fmt.Sprintf("invalid digit '%c' in octal literal '%s'", text[i], text))
			}
		}
		return Token{
			Type:  TokOctal,
			Value: text,
			Span:  s.span(startLine, startCol),
		}, nil
	}

	return Token{
		Type:  TokDecimal,
		Value: text,
		Span:  s.span(startLine, startCol),
	}, nil
}

func (s *scanner) scanIdent() Token {
	startLine, startCol := s.line, s.col
	startPos := s.pos

	for !s.atEnd() && isAlphaNumeric(s.peek()) {
		s.advance()
	}

	return Token{
		Type:  TokIdent,
		Value: s.source[startPos:s.pos],
		Span:  s.span(startLine, startCol),
	}
}

func (s *scanner) lexError(line, col int, msg string) error {
	diag := diagnostics.MakeDiag(
		diagnostics.ELex,
		msg,
		&ast.Span{File: s.filename, StartLine: line, StartCol: col, EndLine: line, EndCol: col + 1},
		"",
	)
	return &LexError{Diag: diag}
}

// LexError wraps a diagnostic for lex errors.
type LexError struct {
	Diag diagnostics.Diagnostic
}

func (e *LexError) Error() string {
	return e.Diag.Message
}

func (s *scanner) nextToken() (Token, error) {
	s.skipWhitespace()

	if s.atEnd() {
		return Token{
			Type:  TokEOF,
			Value: "",
			Span:  s.span(s.line, s.col),
		}, nil
	}

	ch := s.peek()
	startLine, startCol := s.line, s.col

	// Single-char tokens
	switch ch {
	case '(':
		s.advance()
		return Token{Type: TokLParen, Value: "(", Span: s.span(startLine, startCol)}, nil
	case ')':
		s.advance()
		return Token{Type: TokRParen, Value: ")", Span: s.span(startLine, startCol)}, nil
	case ',':
		s.advance()
		return Token{Type: TokComma, Value: ",", Span: s.span(startLine, startCol)}, nil
	case '?':
		s.advance()
		return Token{Type: TokQuestion, Value: "?", Span: s.span(startLine, startCol)}, nil
	case ':':
		s.advance()
		return Token{Type: TokColon, Value: ":", Span: s.span(startLine, startCol)}, nil
	case '+':
		s.advance()
		return Token{Type: TokPlus, Value: "+", Span: s.span(startLine, startCol)}, nil
	case '-':
		s.advance()
		return Token{Type: TokMinus, Value: "-", Span: s.span(startLine, startCol)}, nil
	case '*':
		s.advance()
		return Token{Type: TokStar, Value: "*", Span: s.span(startLine, startCol)}, nil
	case '/':
		s.advance()
		return Token{Type: TokSlash, Value: "/", Span: s.span(startLine, startCol)}, nil
	case '%':
		s.advance()
		return Token{Type: TokPercent, Value: "%", Span: s.span(startLine, startCol)}, nil
	case '^':
		s.advance()
		return Token{Type: TokCaret, Value: "^", Span: s.span(startLine, startCol)}, nil
	case '~':
		s.advance()
		return Token{Type: TokTilde, Value: "~", Span: s.span(startLine, startCol)}, nil
	}

	// Multi-char tokens
	switch ch {
	case '&':
		s.advance()
		if !s.atEnd() && s.peek() == '&' {
			s.advance()
			return Token{Type: TokAmpAmp, Value: "&&", Span: s.span(startLine, startCol)}, nil
		}
		return Token{Type: TokAmp, Value: "&", Span: s.span(startLine, startCol)}, nil

	case '|':
		s.advance()
		if !s.atEnd() && s.peek() == '|' {
			s.advance()
			return Token{Type: TokPipePipe, Value: "||", Span: s.span(startLine, startCol)}, nil
		}
		return Token{Type: TokPipe, Value: "|", Span: s.span(startLine, startCol)}, nil

	case '=':
		s.advance()
		if !s.atEnd() && s.peek() == '=' {
			s.advance()
			return Token{Type: TokEqEq, Value: "==", Span: s.span(startLine, startCol)}, nil
		}
		return Token{}, s.lexErrorHint(startLine, startCol,
			"unexpected character '='", "expressions have no assignment; did you mean '=='?")

	case '!':
		s.advance()
		if !s.atEnd() && s.peek() == '=' {
			s.advance()
			return Token{Type: TokBangEq, Value: "!=", Span: s.span(startLine, startCol)}, nil
		}
		return Token{Type: TokBang, Value: "!", Span: s.span(startLine, startCol)}, nil

	case '<':
		s.advance()
		if !s.atEnd() && s.peek() == '<' {
			s.advance()
			return Token{Type: TokShl, Value: "<<", Span: s.span(startLine, startCol)}, nil
		}
		if !s.atEnd() && s.peek() == '=' {
			s.advance()
			return Token{Type: TokLtEq, Value: "<=", Span: s.span(startLine, startCol)}, nil
		}
		return Token{Type: TokLt, Value: "<", Span: s.span(startLine, startCol)}, nil

	case '>':
		s.advance()
		if !s.atEnd() && s.peek() == '>' {
			s.advance()
			if !s.atEnd() && s.peek() == '>' {
				s.advance()
				return Token{Type: TokUshr, Value: ">>>", Span: s.span(startLine, startCol)}, nil
			}
			return Token{Type: TokShr, Value: ">>", Span: s.span(startLine, startCol)}, nil
		}
		if !s.atEnd() && s.peek() == '=' {
			s.advance()
			return Token{Type: TokGtEq, Value: ">=", Span: s.span(startLine, startCol)}, nil
		}
		return Token{Type: TokGt, Value: ">", Span: s.span(startLine, startCol)}, nil
	}

	// Numbers, including fraction-first literals like ".5"
	if isDigit(ch) || (ch == '.' && isDigit(s.peekAt(1))) {
		return s.scanNumber()
	}

	// Identifiers
	if isAlpha(ch) {
		return s.scanIdent(), nil
	}

	s.advance()
	return Token{}, s.lexError(startLine, startCol, fmt.Sprintf("unexpected character '%c'", ch))
}

func (s *scanner) lexErrorHint(line, col int, msg, hint string) error {
	diag := diagnostics.MakeDiag(
		diagnostics.ELex,
		msg,
		&ast.Span{File: s.filename, StartLine: line, StartCol: col, EndLine: line, EndCol: col + 1},
		hint,
	)
	return &LexError{Diag: diag}
}

// Tokenize breaks expression source into a slice of tokens.
func Tokenize(source, filename string) ([]Token, error) {
	s := newScanner(source, filename)
	var tokens []Token

	for {
		tok, err := s.nextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokEOF {
			break
		}
	}

	return tokens, nil
}
