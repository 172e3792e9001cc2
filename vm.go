// vm.go
package lispkit

// The SECD machine.
// - Four registers: S (stack), E (environment), C (control), D (dump).
// - S, E and C are persistent lists; D is a persistent vector of saved
//   states, so a register snapshot is O(1) and never aliases live state.
// - Errors raised by primitives keep their kind; any register shape
//   violation is MachineCorruption.

import (
	"fmt"
	"io"

	"src.elv.sh/pkg/persistent/vector"
)

// -----------------------------
// Environment frame markers
// -----------------------------

// A frame pushed by DUM and not yet filled by RAP. The reader cannot
// produce '#', so no program value can collide with these markers.
var pendingFrame = Sym("#PENDING")

// recTag heads a recursive frame (#REC code1 ... codeN) installed by RAP.
// Loading slot j of such a frame builds the closure (code_j env) where env
// starts at that frame, so closures never contain themselves.
const recTag = "#REC"

// -----------------------------
// Dump entries
// -----------------------------

type dumpKind int

const (
	dumpJoin dumpKind = iota // saved C from SEL
	dumpCall                 // saved S, E, C from AP/RAP
)

func (k dumpKind) String() string {
	if k == dumpJoin {
		return "join"
	}
	return "call"
}

type dumpEntry struct {
	kind    dumpKind
	s, e, c Node
}

// DumpFrame is a read-only view of one dump entry.
type DumpFrame struct {
	Kind    string // "join" or "call"
	S, E, C Node   // S and E are empty for join entries
}

// Registers is a snapshot of the machine state. Dump is ordered oldest
// first.
type Registers struct {
	S, E, C Node
	Dump    []DumpFrame
}

// -----------------------------
// Machine
// -----------------------------

// Machine executes compiled control lists. A Machine is not safe for
// concurrent use; independent machines share nothing.
type Machine struct {
	S, E, C Node
	D       vector.Vector

	// Trace, when set, receives one line per executed instruction.
	Trace      io.Writer
	TraceDepth int

	steps  int
	halted bool
}

// NewMachine returns a machine ready to run control.
func NewMachine(control Node) *Machine {
	m := &Machine{}
	m.Reset(control)
	return m
}

// Run executes control on a fresh machine and returns the final stack.
func Run(control Node) (Node, error) {
	return NewMachine(control).Run()
}

// Reset reinitializes every register; control becomes the new program.
func (m *Machine) Reset(control Node) {
	m.S, m.E, m.C = Nil, Nil, control
	m.D = vector.Empty
	m.steps = 0
	m.halted = false
}

// Halted reports whether STOP has executed.
func (m *Machine) Halted() bool { return m.halted }

// Steps is the number of instructions executed since the last Reset.
func (m *Machine) Steps() int { return m.steps }

// Registers returns a snapshot of S, E, C and D.
func (m *Machine) Registers() Registers {
	r := Registers{S: m.S, E: m.E, C: m.C}
	for it := m.dump().Iterator(); it.HasElem(); it.Next() {
		d := it.Elem().(dumpEntry)
		r.Dump = append(r.Dump, DumpFrame{Kind: d.kind.String(), S: d.s, E: d.e, C: d.c})
	}
	return r
}

// Run steps until STOP and returns S.
func (m *Machine) Run() (Node, error) {
	for !m.halted {
		if err := m.Step(); err != nil {
			return Nil, err
		}
	}
	return m.S, nil
}

// -----------------------------
// Register helpers
// -----------------------------

func (m *Machine) push(v Node) { m.S = m.S.Cons(v) }

func (m *Machine) pop(op string) (Node, error) {
	if !m.S.IsList() {
		return Nil, corrupt(op, "stack register is not a list")
	}
	if m.S.IsNil() {
		return Nil, corrupt(op, "stack underflow")
	}
	v := m.S.Head()
	m.S = m.S.Tail()
	return v, nil
}

// operand takes the inline operand that follows op in C.
func (m *Machine) operand(op string) (Node, error) {
	if m.C.IsNil() {
		return Nil, corrupt(op, "missing inline operand")
	}
	v := m.C.Head()
	m.C = m.C.Tail()
	return v, nil
}

func (m *Machine) dump() vector.Vector {
	if m.D == nil {
		m.D = vector.Empty
	}
	return m.D
}

func (m *Machine) pushDump(d dumpEntry) { m.D = m.dump().Conj(d) }

func (m *Machine) popDump(op string, want dumpKind) (dumpEntry, error) {
	n := m.dump().Len()
	if n == 0 {
		return dumpEntry{}, corrupt(op, "dump is empty")
	}
	top, _ := m.D.Index(n - 1)
	d := top.(dumpEntry)
	if d.kind != want {
		return dumpEntry{}, corrupt(op, "expected a %s entry on the dump, found a %s entry", want, d.kind)
	}
	m.D = m.D.Pop()
	return d, nil
}

// lookup resolves a lexical address against E.
func (m *Machine) lookup(addr Node) (Node, error) {
	if !addr.IsList() || addr.Len() != 2 || !addr.Head().IsNumber() || !addr.Tail().Head().IsNumber() {
		return Nil, corrupt(opLD, "operand %s is not an (i j) address", FormatNodeDepth(addr, ErrorExprDepth))
	}
	i, j := addr.Head().Number(), addr.Tail().Head().Number()
	env := m.E
	for k := uint64(0); k < i; k++ {
		if env.IsNil() {
			break
		}
		env = env.Tail()
	}
	if env.IsNil() {
		return Nil, corrupt(opLD, "frame %d is beyond the environment (%d frames)", i, m.E.Len())
	}
	frame := env.Head()
	if Equal(frame, pendingFrame) {
		return Nil, corrupt(opLD, "frame %d is not yet defined", i)
	}
	if !frame.IsList() {
		return Nil, corrupt(opLD, "frame %d is not a list", i)
	}
	if frame.Head().IsSym(recTag) {
		if j >= uint64(frame.Len()-1) {
			return Nil, corrupt(opLD, "slot %d is beyond frame %d (%d slots)", j, i, frame.Len()-1)
		}
		code, _ := frame.Index(int(j) + 1)
		return ListOf(code, env), nil
	}
	if j >= uint64(frame.Len()) {
		return Nil, corrupt(opLD, "slot %d is beyond frame %d (%d slots)", j, i, frame.Len())
	}
	v, _ := frame.Index(int(j))
	return v, nil
}

// closure checks that v is (code env).
func closure(op string, v Node) (code, env Node, err error) {
	if !v.IsList() || v.Len() != 2 || !v.Head().IsList() || !v.Tail().Head().IsList() {
		return Nil, Nil, newError(TypeMismatch, op, v, "expected a closure (code env)")
	}
	return v.Head(), v.Tail().Head(), nil
}

// -----------------------------
// Step
// -----------------------------

// Step executes one instruction.
func (m *Machine) Step() error {
	if m.halted {
		return nil
	}
	if !m.S.IsList() || !m.E.IsList() || !m.C.IsList() {
		return corrupt("STEP", "register is not a list")
	}
	if m.C.IsNil() {
		return corrupt("STEP", "control register is empty before STOP")
	}
	ins := m.C.Head()
	if !ins.IsSymbol() {
		return corrupt("STEP", "instruction %s is not an opcode", FormatNodeDepth(ins, ErrorExprDepth))
	}
	op := ins.Text()
	m.C = m.C.Tail()
	m.steps++
	if m.Trace != nil {
		m.trace(op)
	}

	switch op {
	case opSTOP:
		m.halted = true
		return nil

	case opLDC:
		v, err := m.operand(op)
		if err != nil {
			return err
		}
		m.push(v)
		return nil

	case opLD:
		addr, err := m.operand(op)
		if err != nil {
			return err
		}
		v, err := m.lookup(addr)
		if err != nil {
			return err
		}
		m.push(v)
		return nil

	case opLDF:
		code, err := m.operand(op)
		if err != nil {
			return err
		}
		if !code.IsList() {
			return corrupt(op, "function code is not a list")
		}
		m.push(ListOf(code, m.E))
		return nil

	case opSEL:
		t, err := m.operand(op)
		if err != nil {
			return err
		}
		f, err := m.operand(op)
		if err != nil {
			return err
		}
		if !t.IsList() || !f.IsList() {
			return corrupt(op, "branches are not lists")
		}
		c, err := m.pop(op)
		if err != nil {
			return err
		}
		m.pushDump(dumpEntry{kind: dumpJoin, c: m.C})
		switch {
		case c.IsSym("TRUE"):
			m.C = t
		case c.IsSym("FALSE"):
			m.C = f
		default:
			return newError(TypeMismatch, op, c, "condition should be TRUE or FALSE")
		}
		return nil

	case opJOIN:
		d, err := m.popDump(op, dumpJoin)
		if err != nil {
			return err
		}
		m.C = d.c
		return nil

	case opAP:
		fn, err := m.pop(op)
		if err != nil {
			return err
		}
		args, err := m.pop(op)
		if err != nil {
			return err
		}
		code, env, err := closure(op, fn)
		if err != nil {
			return err
		}
		if !args.IsList() {
			return corrupt(op, "argument frame is not a list")
		}
		m.pushDump(dumpEntry{kind: dumpCall, s: m.S, e: m.E, c: m.C})
		m.S, m.E, m.C = Nil, env.Cons(args), code
		return nil

	case opRTN:
		v, err := m.pop(op)
		if err != nil {
			return err
		}
		d, err := m.popDump(op, dumpCall)
		if err != nil {
			return err
		}
		m.S, m.E, m.C = d.s.Cons(v), d.e, d.c
		return nil

	case opDUM:
		m.E = m.E.Cons(pendingFrame)
		return nil

	case opRAP:
		fn, err := m.pop(op)
		if err != nil {
			return err
		}
		args, err := m.pop(op)
		if err != nil {
			return err
		}
		code, _, err := closure(op, fn)
		if err != nil {
			return err
		}
		if m.E.IsNil() || !Equal(m.E.Head(), pendingFrame) {
			return corrupt(op, "no pending frame from DUM")
		}
		if !args.IsList() {
			return corrupt(op, "argument frame is not a list")
		}
		rec := []Node{Sym(recTag)}
		for _, a := range args.Items() {
			c, _, err := closure(op, a)
			if err != nil {
				return err
			}
			rec = append(rec, c)
		}
		outer := m.E.Tail()
		m.pushDump(dumpEntry{kind: dumpCall, s: m.S, e: outer, c: m.C})
		m.S, m.E, m.C = Nil, outer.Cons(ListOf(rec...)), code
		return nil
	}

	if b := primitiveOf(op); b != NotBuiltin {
		return m.primitive(op, b)
	}
	return corrupt(op, "unknown opcode")
}

// primitiveOf maps an opcode to the keyword whose primitive it runs.
func primitiveOf(op string) Builtin {
	if op == "EQ" {
		return BEqual
	}
	b := LookupBuiltin(op)
	if b.IsUnary() || (b.IsBinary() && b != BEqual) {
		return b
	}
	return NotBuiltin
}

func (m *Machine) primitive(op string, b Builtin) error {
	if b.IsUnary() {
		x, err := m.pop(op)
		if err != nil {
			return err
		}
		v, err := applyUnary(b, x, op, ListOf(Sym(op), x))
		if err != nil {
			return err
		}
		m.push(v)
		return nil
	}
	// CONS finds the head on top; the others find the right operand on top.
	top, err := m.pop(op)
	if err != nil {
		return err
	}
	next, err := m.pop(op)
	if err != nil {
		return err
	}
	x, y := next, top
	if b == BCons {
		x, y = top, next
	}
	v, err := applyBinary(b, x, y, op, ListOf(Sym(op), x, y))
	if err != nil {
		return err
	}
	m.push(v)
	return nil
}

func (m *Machine) trace(op string) {
	d := m.TraceDepth
	if d == 0 {
		d = ErrorExprDepth
	}
	fmt.Fprintf(m.Trace, "%5d %-4s S=%s E=%s C=%s D=%d\n",
		m.steps, op,
		FormatNodeDepth(m.S, d), FormatNodeDepth(m.E, d), FormatNodeDepth(m.C, d), m.dump().Len())
}
