package lispkit

import (
	"strconv"
	"strings"
)

/* ---------- globals & tiny helpers ---------- */

var EnableColor = false // REPL-only; tests can leave this false
var MaxInlineWidth = 72 // width threshold for single-line lists in Pretty

const (
	colorReset = "\033[0m"
	colorGreen = "\033[32m"
	colorBlue  = "\033[34m"
)

func colorize(s, c string) string {
	if !EnableColor {
		return s
	}
	return c + s + colorReset
}
func blue(s string) string  { return colorize(s, colorBlue) }
func green(s string) string { return colorize(s, colorGreen) }

/* ---------- small writer with indentation ---------- */

type out struct {
	b     *strings.Builder
	depth int
}

func (o *out) write(s string) { o.b.WriteString(s) }
func (o *out) nl()            { o.b.WriteByte('\n') }
func (o *out) pad() {
	for i := 0; i < o.depth; i++ {
		o.b.WriteString("  ")
	}
}
func (o *out) withIndent(fn func()) { o.depth++; fn(); o.depth-- }

/* ---------- one-line rendering ---------- */

// FormatNode renders n as nested parenthesized tokens with no depth limit.
func FormatNode(n Node) string { return FormatNodeDepth(n, -1) }

// FormatNodeDepth renders n; once depth reaches zero the remaining structure
// is printed as "...". A negative depth means unlimited.
func FormatNodeDepth(n Node, depth int) string {
	var b strings.Builder
	writeNode(&b, n, depth, false)
	return b.String()
}

// FormatValue is FormatNodeDepth with REPL colors applied to atoms.
func FormatValue(n Node, depth int) string {
	var b strings.Builder
	writeNode(&b, n, depth, EnableColor)
	return b.String()
}

// FormatStack renders machine stack elements top first, space-separated.
func FormatStack(s Node, depth int) string {
	parts := make([]string, 0, s.Len())
	for _, v := range s.Items() {
		parts = append(parts, FormatValue(v, depth))
	}
	return strings.Join(parts, " ")
}

func writeNode(b *strings.Builder, n Node, depth int, color bool) {
	if depth == 0 {
		b.WriteString("...")
		return
	}
	switch n.Tag {
	case NTSymbol:
		if color && (n.IsSym("TRUE") || n.IsSym("FALSE")) {
			b.WriteString(green(n.Text()))
			return
		}
		b.WriteString(n.Text())
	case NTNumber:
		s := strconv.FormatUint(n.Number(), 10)
		if color {
			s = blue(s)
		}
		b.WriteString(s)
	default:
		b.WriteByte('(')
		for i, x := range n.Items() {
			if i > 0 {
				b.WriteByte(' ')
			}
			writeNode(b, x, depth-1, color)
		}
		b.WriteByte(')')
	}
}

/* ---------- pretty printer ---------- */

// Pretty parses src and reprints it with one nested form per line once a
// list no longer fits MaxInlineWidth. Comments are not preserved.
func Pretty(src string) (string, error) {
	n, err := ParseSource(src)
	if err != nil {
		return "", err
	}
	return FormatPretty(n), nil
}

// FormatPretty is Pretty for an already parsed node.
func FormatPretty(n Node) string {
	o := &out{b: &strings.Builder{}}
	printPretty(o, n)
	o.nl()
	return o.b.String()
}

func printPretty(o *out, n Node) {
	flat := FormatNode(n)
	if !n.IsList() || n.Len() < 2 || len(flat)+2*o.depth <= MaxInlineWidth {
		o.write(flat)
		return
	}
	items := n.Items()
	o.write("(")
	printPretty(o, items[0])
	rest := items[1:]
	// Keyword forms keep their first argument on the head line.
	if b := BuiltinOf(n); b != NotBuiltin && b != BQuote && !items[1].IsList() {
		o.write(" ")
		o.write(FormatNode(items[1]))
		rest = items[2:]
	}
	o.withIndent(func() {
		for _, x := range rest {
			o.nl()
			o.pad()
			printPretty(o, x)
		}
	})
	o.write(")")
}
