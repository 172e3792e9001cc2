// types.go
//
// The LispKit value model shared by every engine.
//
// A LispKit program and every value it computes is a Node: a tagged union
// with exactly one active variant (symbol, unsigned number, or list). Lists
// are persistent cons lists: prepending, taking the tail, or stripping a
// keyword returns a new node and leaves the original untouched, so subtrees
// can be shared freely between the evaluator, the compiler and the machine.
//
// Truth values are the symbols TRUE and FALSE; the empty list is nil and is
// distinct from FALSE.
package lispkit

import "strconv"

// NodeTag enumerates the variants a Node may hold.
type NodeTag int

const (
	NTList   NodeTag = iota // *List (nil is the empty list)
	NTSymbol                // string
	NTNumber                // uint64
)

func (t NodeTag) String() string {
	switch t {
	case NTSymbol:
		return "symbol"
	case NTNumber:
		return "number"
	case NTList:
		return "list"
	default:
		return "unknown"
	}
}

// Node is the universal carrier for programs and data.
//
// Invariants:
//   - Tag==NTSymbol ⇒ Data is string.
//   - Tag==NTNumber ⇒ Data is uint64.
//   - Tag==NTList   ⇒ Data is *List; a nil *List is the empty list.
//
// The zero Node is the empty list.
type Node struct {
	Tag  NodeTag
	Data interface{}
}

// List is one immutable cons cell. Cells are never modified after
// construction; n caches the length of the list starting at this cell.
type List struct {
	head Node
	tail *List
	n    int
}

// Nil is the empty list.
var Nil = Node{Tag: NTList, Data: (*List)(nil)}

// Boolean symbols.
var (
	True  = Sym("TRUE")
	False = Sym("FALSE")
)

func Sym(s string) Node { return Node{Tag: NTSymbol, Data: s} }
func Num(n uint64) Node { return Node{Tag: NTNumber, Data: n} }
func Bool(b bool) Node {
	if b {
		return True
	}
	return False
}

// ListOf builds a list from its elements in order.
func ListOf(items ...Node) Node {
	var l *List
	for i := len(items) - 1; i >= 0; i-- {
		l = &List{head: items[i], tail: l, n: l.len() + 1}
	}
	return Node{Tag: NTList, Data: l}
}

func (l *List) len() int {
	if l == nil {
		return 0
	}
	return l.n
}

func (n Node) IsSymbol() bool { return n.Tag == NTSymbol }
func (n Node) IsNumber() bool { return n.Tag == NTNumber }
func (n Node) IsList() bool   { return n.Tag == NTList }

// IsNil reports whether n is the empty list.
func (n Node) IsNil() bool { return n.IsList() && n.cells() == nil }

// IsSym reports whether n is the symbol s.
func (n Node) IsSym(s string) bool { return n.Tag == NTSymbol && n.Data.(string) == s }

// Text returns the symbol text, or "" for other variants.
func (n Node) Text() string {
	if n.Tag != NTSymbol {
		return ""
	}
	return n.Data.(string)
}

// Number returns the numeric payload, or 0 for other variants.
func (n Node) Number() uint64 {
	if n.Tag != NTNumber {
		return 0
	}
	return n.Data.(uint64)
}

func (n Node) cells() *List {
	if n.Tag != NTList || n.Data == nil {
		return nil
	}
	return n.Data.(*List)
}

// Len returns the number of elements of a list (0 for atoms).
func (n Node) Len() int { return n.cells().len() }

// Head returns the first element; the empty list for atoms and nil.
func (n Node) Head() Node {
	l := n.cells()
	if l == nil {
		return Nil
	}
	return l.head
}

// Tail returns the list without its first element; the empty list for atoms and nil.
func (n Node) Tail() Node {
	l := n.cells()
	if l == nil {
		return Nil
	}
	return Node{Tag: NTList, Data: l.tail}
}

// Cons returns a new list with x prepended to n. n must be a list.
func (n Node) Cons(x Node) Node {
	l := n.cells()
	return Node{Tag: NTList, Data: &List{head: x, tail: l, n: l.len() + 1}}
}

// Index returns the i-th element of a list.
func (n Node) Index(i int) (Node, bool) {
	if i < 0 {
		return Nil, false
	}
	for l := n.cells(); l != nil; l = l.tail {
		if i == 0 {
			return l.head, true
		}
		i--
	}
	return Nil, false
}

// Items copies the elements of a list into a slice.
func (n Node) Items() []Node {
	l := n.cells()
	out := make([]Node, 0, l.len())
	for ; l != nil; l = l.tail {
		out = append(out, l.head)
	}
	return out
}

// Append returns a new list holding the elements of n followed by xs.
// The cells of n are copied; xs share nothing with the result.
func (n Node) Append(xs ...Node) Node {
	return ListOf(append(n.Items(), xs...)...)
}

// Equal reports structural equality.
func Equal(a, b Node) bool {
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case NTSymbol:
		return a.Data.(string) == b.Data.(string)
	case NTNumber:
		return a.Data.(uint64) == b.Data.(uint64)
	}
	x, y := a.cells(), b.cells()
	if x.len() != y.len() {
		return false
	}
	for ; x != nil; x, y = x.tail, y.tail {
		if x == y {
			return true
		}
		if !Equal(x.head, y.head) {
			return false
		}
	}
	return true
}

// String renders the node without a depth limit.
func (n Node) String() string {
	switch n.Tag {
	case NTSymbol:
		return n.Data.(string)
	case NTNumber:
		return strconv.FormatUint(n.Data.(uint64), 10)
	default:
		return FormatNode(n)
	}
}
