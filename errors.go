// errors.go: LispKit error kinds, one-line reporting, and caret snippets
//
// What this file does
// -------------------
// Every failure raised by the validator, the evaluator, the compiler or the
// SECD machine is an *Error carrying an ErrorKind. Its message is one line:
//
//	Error in CAR expression '(CAR (QUOTE A))' - argument should be a list
//
// Warnings (*Warning) use the same shape with a "Warning" prefix and never
// stop evaluation.
//
// Reader failures (*LexError, *ParseError) carry 1-based line and 0-based
// column coordinates; WrapErrorWithSource renders them as a multi-line
// snippet with a caret under the offending column:
//
//	PARSE ERROR at 1:9: expected ')' before end of input
//
//	   1 | (CAR (QUOTE
//	     |         ^
//
// Scope of the public API
// -----------------------
// Public:   ErrorKind, Error, Warning, IsKind, WrapErrorWithSource,
//
//	WrapErrorWithName.
//
// Private:  constructors used by the engines and the caret renderer.
package lispkit

import (
	"errors"
	"fmt"
	"strings"
)

/* ===========================
   PUBLIC API
   =========================== */

// ErrorKind classifies a failure. It is a value, not a type hierarchy.
type ErrorKind int

const (
	SyntaxArity ErrorKind = iota
	SyntaxShape
	SyntaxName
	UnresolvedSymbol
	TypeMismatch
	ArityMismatchAtCall
	MissingBindings
	ExtraBindings
	MachineCorruption
	DivideByZero
	ArithmeticOverflow
	RecursionLimit
)

var kindNames = [...]string{
	SyntaxArity:         "SyntaxArity",
	SyntaxShape:         "SyntaxShape",
	SyntaxName:          "SyntaxName",
	UnresolvedSymbol:    "UnresolvedSymbol",
	TypeMismatch:        "TypeMismatch",
	ArityMismatchAtCall: "ArityMismatchAtCall",
	MissingBindings:     "MissingBindings",
	ExtraBindings:       "ExtraBindings",
	MachineCorruption:   "MachineCorruption",
	DivideByZero:        "DivideByZero",
	ArithmeticOverflow:  "ArithmeticOverflow",
	RecursionLimit:      "RecursionLimit",
}

func (k ErrorKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
	return kindNames[k]
}

// ErrorExprDepth is the print depth used for the expression quoted in
// error and warning lines.
var ErrorExprDepth = 3

// Error is a reportable LispKit failure.
//
// Where names the construct that failed (a keyword, "symbol", "call",
// or "SECD" for the machine). Expr is the offending subexpression; it is
// printed truncated to ErrorExprDepth.
type Error struct {
	Kind  ErrorKind
	Where string
	Expr  Node
	Msg   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("Error in %s expression '%s' - %s", e.Where, FormatNodeDepth(e.Expr, ErrorExprDepth), e.Msg)
}

// Warning is a non-fatal diagnostic. It implements error so callers can
// route it through the same writer, but engines never return it.
type Warning struct {
	Kind  ErrorKind
	Where string
	Expr  Node
	Msg   string
}

func (w *Warning) Error() string {
	return fmt.Sprintf("Warning in %s expression '%s' - %s", w.Where, FormatNodeDepth(w.Expr, ErrorExprDepth), w.Msg)
}

// IsKind reports whether err (or anything it wraps) is an *Error of kind k.
func IsKind(err error, k ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == k
	}
	return false
}

// KindOf returns the kind of the *Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// WrapErrorWithSource returns err augmented with a caret-annotated snippet
// of src when err is a *LexError or *ParseError. Other errors are returned
// unchanged.
func WrapErrorWithSource(err error, src string) error {
	return WrapErrorWithName(err, "", src)
}

// WrapErrorWithName is WrapErrorWithSource with a source name in the header.
func WrapErrorWithName(err error, srcName string, src string) error {
	var le *LexError
	var pe *ParseError
	switch {
	case errors.As(err, &le):
		return fmt.Errorf("%s", prettyErrorStringLabeled(src, "LEXICAL ERROR", srcName, le.Line, le.Col+1, le.Msg))
	case errors.As(err, &pe):
		return fmt.Errorf("%s", prettyErrorStringLabeled(src, "PARSE ERROR", srcName, pe.Line, pe.Col+1, pe.Msg))
	default:
		return err
	}
}

//// END_OF_PUBLIC

/* ===========================
   PRIVATE: constructors & rendering
   =========================== */

func newError(k ErrorKind, where string, expr Node, format string, args ...interface{}) *Error {
	return &Error{Kind: k, Where: where, Expr: expr, Msg: fmt.Sprintf(format, args...)}
}

func newWarning(k ErrorKind, where string, expr Node, format string, args ...interface{}) *Warning {
	return &Warning{Kind: k, Where: where, Expr: expr, Msg: fmt.Sprintf(format, args...)}
}

// corrupt reports a malformed machine state.
func corrupt(op string, format string, args ...interface{}) *Error {
	return newError(MachineCorruption, "SECD", Sym(op), format, args...)
}

// prettyErrorStringLabeled builds a snippet with a header and a caret.
// It shows at most one previous and one next line when available.
// Coordinates are 1-based and clamped to the source bounds.
func prettyErrorStringLabeled(src, header, name string, line, col int, msg string) string {
	lines := strings.Split(src, "\n")
	if line < 1 {
		line = 1
	}
	if col < 1 {
		col = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	lineTxt := lines[line-1]

	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "%s in %s at %d:%d: %s\n\n", header, name, line, col, msg)
	} else {
		fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, col, msg)
	}
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lineTxt)
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
