// parser.go: recursive-descent reader from tokens to Nodes.
//
// Grammar
// -------
//
//	program := expr*
//	expr    := NUMBER | SYMBOL | '(' expr* ')'
//
// Nodes are built directly as persistent lists (types.go); the parser does
// no keyword checking. Structural rules for special forms live in
// validate.go.
//
// Interactive use
// ---------------
// When input ends inside an open list the parser returns a *ParseError with
// Incomplete set. The REPL uses IsIncomplete to ask for a continuation line
// instead of reporting an error.
package lispkit

import (
	"errors"
	"fmt"
)

////////////////////////////////////////////////////////////////////////////////
//                                  PUBLIC API
////////////////////////////////////////////////////////////////////////////////

// ParseError is a grammar failure at a token position (Line 1-based,
// Col 0-based).
type ParseError struct {
	Line       int
	Col        int
	Msg        string
	Incomplete bool
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("PARSE ERROR at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// IsIncomplete reports whether err means "input ended inside a list".
func IsIncomplete(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe) && pe.Incomplete
}

// ParseSource parses exactly one expression. Anything but comments after
// it is an error.
func ParseSource(src string) (Node, error) {
	p, err := newParser(src)
	if err != nil {
		return Nil, err
	}
	if p.at(EOF) {
		return Nil, p.errAt(p.peek(), "expected an expression", true)
	}
	n, err := p.expr()
	if err != nil {
		return Nil, err
	}
	if !p.at(EOF) {
		return Nil, p.errAt(p.peek(), "unexpected input after expression", false)
	}
	return n, nil
}

// ParseProgram parses a sequence of top-level expressions.
func ParseProgram(src string) ([]Node, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	var out []Node
	for !p.at(EOF) {
		n, err := p.expr()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

//// END_OF_PUBLIC

////////////////////////////////////////////////////////////////////////////////
///////////////////////////// PRIVATE IMPLEMENTATION ///////////////////////////
////////////////////////////////////////////////////////////////////////////////

type parser struct {
	toks []Token
	pos  int
}

func newParser(src string) (*parser, error) {
	toks, err := NewLexer(src).Scan()
	if err != nil {
		return nil, err
	}
	return &parser{toks: toks}, nil
}

func (p *parser) peek() Token        { return p.toks[p.pos] }
func (p *parser) at(t TokenType) bool { return p.peek().Type == t }

func (p *parser) next() Token {
	t := p.toks[p.pos]
	if t.Type != EOF {
		p.pos++
	}
	return t
}

func (p *parser) errAt(t Token, msg string, incomplete bool) error {
	return &ParseError{Line: t.Line, Col: t.Col, Msg: msg, Incomplete: incomplete}
}

func (p *parser) expr() (Node, error) {
	t := p.next()
	switch t.Type {
	case NUMBER:
		return Num(t.Literal.(uint64)), nil
	case SYMBOL:
		return Sym(t.Literal.(string)), nil
	case LROUND:
		var items []Node
		for !p.at(RROUND) {
			if p.at(EOF) {
				return Nil, p.errAt(p.peek(), fmt.Sprintf("expected ')' to close list opened at %d:%d", t.Line, t.Col+1), true)
			}
			n, err := p.expr()
			if err != nil {
				return Nil, err
			}
			items = append(items, n)
		}
		p.next()
		return ListOf(items...), nil
	case RROUND:
		return Nil, p.errAt(t, "unexpected ')'", false)
	default:
		return Nil, p.errAt(t, "expected an expression", true)
	}
}
