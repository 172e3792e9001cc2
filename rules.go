// rules.go
//
// The closed set of LispKit special forms and their arity traits. Both
// engines switch exhaustively over Builtin; the table is read-only.
package lispkit

// Builtin identifies a special-form keyword.
type Builtin int

const (
	NotBuiltin Builtin = iota
	BQuote
	BCar
	BCdr
	BCons
	BAtom
	BEqual
	BAdd
	BSub
	BMul
	BDive
	BRem
	BLeq
	BCond
	BLambda
	BLet
	BLetrec
)

// Arity is the argument-count trait of a keyword: exactly Args arguments
// when Exact, otherwise at least Args.
type Arity struct {
	Args  int
	Exact bool
}

var builtinNames = [...]string{
	NotBuiltin: "",
	BQuote:     "QUOTE",
	BCar:       "CAR",
	BCdr:       "CDR",
	BCons:      "CONS",
	BAtom:      "ATOM",
	BEqual:     "EQUAL",
	BAdd:       "ADD",
	BSub:       "SUB",
	BMul:       "MUL",
	BDive:      "DIVE",
	BRem:       "REM",
	BLeq:       "LEQ",
	BCond:      "COND",
	BLambda:    "LAMBDA",
	BLet:       "LET",
	BLetrec:    "LETREC",
}

var arityTable = [...]Arity{
	BQuote:  {1, true},
	BCar:    {1, true},
	BCdr:    {1, true},
	BCons:   {2, true},
	BAtom:   {1, true},
	BEqual:  {2, true},
	BAdd:    {2, true},
	BSub:    {2, true},
	BMul:    {2, true},
	BDive:   {2, true},
	BRem:    {2, true},
	BLeq:    {2, true},
	BCond:   {3, true},
	BLambda: {2, true},
	BLet:    {2, false},
	BLetrec: {2, false},
}

var builtinByName = func() map[string]Builtin {
	m := make(map[string]Builtin, len(builtinNames))
	for b, name := range builtinNames {
		if name != "" {
			m[name] = Builtin(b)
		}
	}
	return m
}()

// LookupBuiltin maps a keyword to its Builtin, or NotBuiltin.
func LookupBuiltin(name string) Builtin { return builtinByName[name] }

// BuiltinOf returns the keyword at the head of a list node, if any.
func BuiltinOf(n Node) Builtin {
	if !n.IsList() {
		return NotBuiltin
	}
	h := n.Head()
	if !h.IsSymbol() {
		return NotBuiltin
	}
	return LookupBuiltin(h.Text())
}

func (b Builtin) String() string {
	if b <= NotBuiltin || int(b) >= len(builtinNames) {
		return "<call>"
	}
	return builtinNames[b]
}

// Arity returns the keyword's trait. NotBuiltin has none.
func (b Builtin) Arity() (Arity, bool) {
	if b <= NotBuiltin || int(b) >= len(arityTable) {
		return Arity{}, false
	}
	return arityTable[b], true
}

// Accepts reports whether argc satisfies the trait.
func (a Arity) Accepts(argc int) bool {
	if a.Exact {
		return argc == a.Args
	}
	return argc >= a.Args
}

// IsBinary reports keywords that take two evaluated operands and map to one
// machine opcode.
func (b Builtin) IsBinary() bool {
	switch b {
	case BCons, BEqual, BAdd, BSub, BMul, BDive, BRem, BLeq:
		return true
	}
	return false
}

// IsUnary reports keywords that take one evaluated operand.
func (b Builtin) IsUnary() bool {
	switch b {
	case BCar, BCdr, BAtom:
		return true
	}
	return false
}

// Opcode is the machine mnemonic emitted for a primitive keyword.
func (b Builtin) Opcode() string {
	if b == BEqual {
		return "EQ"
	}
	return b.String()
}
