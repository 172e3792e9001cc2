// lexer.go
//
// Tokenizer for LispKit source text. The token set is small: parentheses,
// unsigned decimal numbers, and symbols. A ';' starts a comment that runs
// to the end of the line.
package lispkit

import (
	"fmt"
	"strconv"
)

// TokenType represents the kind of token.
type TokenType int

const (
	// Special
	EOF TokenType = iota
	ILLEGAL

	// Punctuation
	LROUND // "("
	RROUND // ")"

	// Atoms
	SYMBOL
	NUMBER
)

func (t TokenType) String() string {
	switch t {
	case EOF:
		return "end of input"
	case LROUND:
		return "'('"
	case RROUND:
		return "')'"
	case SYMBOL:
		return "symbol"
	case NUMBER:
		return "number"
	default:
		return "illegal token"
	}
}

// Token is a lexical token with optional literal value.
type Token struct {
	Type    TokenType
	Lexeme  string      // raw text slice
	Literal interface{} // uint64 for NUMBER, string for SYMBOL
	Line    int
	Col     int
}

// Lexer scans a LispKit source string into tokens.
type Lexer struct {
	src    string
	start  int // start index of current token
	cur    int // current index
	line   int // 1-based
	col    int // 0-based column within line
	tokens []Token

	tokStartLine int
	tokStartCol  int
}

// NewLexer creates a new lexer for the given source.
func NewLexer(src string) *Lexer {
	return &Lexer{
		src:  src,
		line: 1,
		col:  0,
	}
}

func (l *Lexer) isAtEnd() bool { return l.cur >= len(l.src) }

func (l *Lexer) peek() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	return l.src[l.cur], true
}

func (l *Lexer) advance() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	ch := l.src[l.cur]
	l.cur++
	if ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
	return ch, true
}

func (l *Lexer) addToken(tt TokenType, lit interface{}) Token {
	tok := Token{
		Type:    tt,
		Lexeme:  l.src[l.start:l.cur],
		Literal: lit,
		Line:    l.tokStartLine,
		Col:     l.tokStartCol,
	}
	l.tokens = append(l.tokens, tok)
	l.start = l.cur
	return tok
}

// skipBlank consumes whitespace and ';' comments.
func (l *Lexer) skipBlank() {
	for !l.isAtEnd() {
		ch, _ := l.peek()
		switch ch {
		case ' ', '\r', '\n', '\t', '\f':
			l.advance()
		case ';':
			for {
				b, ok := l.peek()
				if !ok || b == '\n' {
					break
				}
				l.advance()
			}
		default:
			l.start = l.cur
			return
		}
	}
	l.start = l.cur
}

// helpers

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isSymbolStart(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z':
		return true
	}
	switch b {
	case '_', '+', '-', '*', '/', '<', '>', '=', '!', '?':
		return true
	}
	return false
}

func isSymbolPart(b byte) bool { return isSymbolStart(b) || isDigit(b) }

// IsSymbolText reports whether s lexes as exactly one symbol token.
func IsSymbolText(s string) bool {
	if s == "" || !isSymbolStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isSymbolPart(s[i]) {
			return false
		}
	}
	return true
}

// ----- errors -----

type LexError struct {
	Line int
	Col  int
	Msg  string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("LEXICAL ERROR at %d:%d: %s", e.Line, e.Col, e.Msg)
}

func (l *Lexer) err(msg string) error {
	return &LexError{Line: l.tokStartLine, Col: l.tokStartCol, Msg: msg}
}

// ----- scanners -----

// scanSymbol parses a symbol; the first byte is already consumed.
func (l *Lexer) scanSymbol() string {
	for {
		b, ok := l.peek()
		if !ok || !isSymbolPart(b) {
			break
		}
		l.advance()
	}
	return l.src[l.start:l.cur]
}

// scanNumber parses an unsigned decimal literal; the first digit is already
// consumed. A digit run glued to symbol characters ("12ab") is rejected.
func (l *Lexer) scanNumber() (uint64, error) {
	for {
		b, ok := l.peek()
		if !ok || !isDigit(b) {
			break
		}
		l.advance()
	}
	if b, ok := l.peek(); ok && isSymbolStart(b) {
		return 0, l.err(fmt.Sprintf("malformed number %q", l.src[l.start:l.cur+1]))
	}
	v, err := strconv.ParseUint(l.src[l.start:l.cur], 10, 64)
	if err != nil {
		return 0, l.err(fmt.Sprintf("number %s does not fit in 64 bits", l.src[l.start:l.cur]))
	}
	return v, nil
}

func (l *Lexer) scanToken() (Token, error) {
	l.skipBlank()
	l.tokStartLine, l.tokStartCol = l.line, l.col
	ch, ok := l.advance()
	if !ok {
		return l.addToken(EOF, nil), nil
	}
	switch {
	case ch == '(':
		return l.addToken(LROUND, nil), nil
	case ch == ')':
		return l.addToken(RROUND, nil), nil
	case isDigit(ch):
		v, err := l.scanNumber()
		if err != nil {
			return Token{}, err
		}
		return l.addToken(NUMBER, v), nil
	case isSymbolStart(ch):
		s := l.scanSymbol()
		return l.addToken(SYMBOL, s), nil
	default:
		return Token{}, l.err(fmt.Sprintf("unexpected character %q", ch))
	}
}

// Scan tokenizes the whole source. The final token is always EOF.
func (l *Lexer) Scan() ([]Token, error) {
	for {
		tok, err := l.scanToken()
		if err != nil {
			return nil, err
		}
		if tok.Type == EOF {
			return l.tokens, nil
		}
	}
}
