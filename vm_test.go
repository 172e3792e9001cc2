package lispkit

import (
	"bytes"
	"strings"
	"testing"
)

func runText(t *testing.T, control string) (Node, error) {
	t.Helper()
	return Run(mustParse(t, control))
}

func mustRunText(t *testing.T, control string) string {
	t.Helper()
	s, err := runText(t, control)
	if err != nil {
		t.Fatalf("run %s: %v", control, err)
	}
	return FormatStack(s, -1)
}

func Test_VM_Load_And_Stop(t *testing.T) {
	if got := mustRunText(t, "(LDC 1 LDC (A B) STOP)"); got != "(A B) 1" {
		t.Fatalf("got %q", got)
	}
	if got := mustRunText(t, "(STOP)"); got != "" {
		t.Fatalf("empty program should leave an empty stack, got %q", got)
	}
}

func Test_VM_Operand_Order(t *testing.T) {
	cases := []struct{ control, want string }{
		{"(LDC 5 LDC 3 SUB STOP)", "2"},
		{"(LDC 7 LDC 2 DIVE STOP)", "3"},
		{"(LDC 7 LDC 2 REM STOP)", "1"},
		{"(LDC 1 LDC 2 LEQ STOP)", "TRUE"},
		{"(LDC (B) LDC A CONS STOP)", "(A B)"},
		{"(LDC A LDC A EQ STOP)", "TRUE"},
		{"(LDC (1 2) CDR STOP)", "(2)"},
		{"(LDC () CAR STOP)", "()"},
		{"(LDC A ATOM STOP)", "TRUE"},
	}
	for _, c := range cases {
		if got := mustRunText(t, c.control); got != c.want {
			t.Fatalf("%s: want %s, got %s", c.control, c.want, got)
		}
	}
}

func Test_VM_Select_And_Join(t *testing.T) {
	got := mustRunText(t, "(LDC FALSE SEL (LDC A JOIN) (LDC B JOIN) LDC C STOP)")
	if got != "C B" {
		t.Fatalf("got %q", got)
	}
}

func Test_VM_Apply_Return_Restores_State(t *testing.T) {
	m := NewMachine(mustParse(t, "(LDC 9 LDC () LDC 5 CONS LDF (LD (0 0) RTN) AP STOP)"))
	for i := 0; i < 5; i++ {
		if err := m.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	before := m.Registers()
	if err := m.Step(); err != nil { // AP
		t.Fatalf("AP: %v", err)
	}
	r := m.Registers()
	if len(r.Dump) != 1 || r.Dump[0].Kind != "call" {
		t.Fatalf("want one call entry on the dump, got %+v", r.Dump)
	}
	wantPrint(t, r.Dump[0].S, "(9)")
	if !Equal(r.Dump[0].E, before.E) {
		t.Fatalf("dump E = %s, want %s", r.Dump[0].E, before.E)
	}
	wantPrint(t, r.Dump[0].C, "(STOP)")
	wantPrint(t, r.E, "((5))")
	wantPrint(t, r.S, "()")

	s, err := m.Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if FormatStack(s, -1) != "5 9" {
		t.Fatalf("got %s", FormatStack(s, -1))
	}
	if !m.Halted() || !Equal(m.E, before.E) || len(m.Registers().Dump) != 0 {
		t.Fatalf("state not restored after RTN")
	}
	if m.Steps() != 9 {
		t.Fatalf("want 9 steps, got %d", m.Steps())
	}
}

func Test_VM_Registers_Snapshot_Is_Stable(t *testing.T) {
	m := NewMachine(mustParse(t, "(LDC 1 LDC 2 ADD STOP)"))
	_ = m.Step()
	snap := m.Registers()
	if _, err := m.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	wantPrint(t, snap.S, "(1)")
	wantPrint(t, snap.C, "(LDC 2 ADD STOP)")
}

func Test_VM_Letrec_Factorial(t *testing.T) {
	code, err := Compile(mustParse(t, factSrc))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	s, err := Run(code)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if FormatStack(s, -1) != "120" {
		t.Fatalf("got %s", FormatStack(s, -1))
	}
}

func Test_VM_Reset(t *testing.T) {
	m := NewMachine(mustParse(t, "(LDC 1 STOP)"))
	if _, err := m.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	m.Reset(mustParse(t, "(LDC 2 STOP)"))
	if m.Halted() || m.Steps() != 0 || !m.S.IsNil() {
		t.Fatalf("Reset did not clear the machine")
	}
	s, err := m.Run()
	if err != nil || FormatStack(s, -1) != "2" {
		t.Fatalf("after reset: %s %v", FormatStack(s, -1), err)
	}
}

func Test_VM_Zero_Machine_Is_Usable(t *testing.T) {
	m := &Machine{C: mustParse(t, "(LDC A STOP)")}
	s, err := m.Run()
	if err != nil || FormatStack(s, -1) != "A" {
		t.Fatalf("got %s %v", FormatStack(s, -1), err)
	}
}

func Test_VM_Corruption(t *testing.T) {
	cases := []struct{ name, control, msg string }{
		{"underflow", "(ADD STOP)", "stack underflow"},
		{"no stop", "(LDC 1)", "control register is empty"},
		{"missing operand", "(LDC)", "missing inline operand"},
		{"join without sel", "(JOIN STOP)", "dump is empty"},
		{"rtn without call", "(LDC 1 RTN STOP)", "dump is empty"},
		{"unknown opcode", "(FOO STOP)", "unknown opcode"},
		{"non-symbol instruction", "(1 STOP)", "is not an opcode"},
		{"frame out of range", "(LD (0 0) STOP)", "beyond the environment"},
		{"slot out of range", "(LDC () LDC 1 CONS LDF (LD (0 3) RTN) AP STOP)", "slot 3 is beyond frame 0"},
		{"pending frame", "(DUM LD (0 0) STOP)", "not yet defined"},
		{"bad address", "(LDC () LDF (LD 0 RTN) AP STOP)", "is not an (i j) address"},
		{"rap without dum", "(LDC () LDF (LDC 1 RTN) RAP STOP)", "no pending frame"},
		{"join on call entry", "(LDC () LDF (JOIN) AP STOP)", "expected a join entry"},
	}
	for _, c := range cases {
		_, err := runText(t, c.control)
		if !IsKind(err, MachineCorruption) {
			t.Fatalf("%s: want MachineCorruption, got %v", c.name, err)
		}
		mustContain(t, err.Error(), c.msg)
		mustContain(t, err.Error(), "Error in SECD expression")
	}
}

func Test_VM_Primitive_Errors_Keep_Their_Kind(t *testing.T) {
	cases := []struct {
		control string
		kind    ErrorKind
	}{
		{"(LDC A CAR STOP)", TypeMismatch},
		{"(LDC (A) CDR STOP)", TypeMismatch},
		{"(LDC 1 LDC 0 DIVE STOP)", DivideByZero},
		{"(LDC 1 LDC 0 REM STOP)", DivideByZero},
		{"(LDC 0 LDC 1 SUB STOP)", ArithmeticOverflow},
		{"(LDC 1 SEL (LDC A JOIN) (LDC B JOIN) STOP)", TypeMismatch},
		{"(LDC () LDC A AP STOP)", TypeMismatch},
		{"(LDC (A) LDC (B) EQ STOP)", TypeMismatch},
	}
	for _, c := range cases {
		_, err := runText(t, c.control)
		wantKind(t, err, c.kind)
	}
}

func Test_VM_Trace(t *testing.T) {
	var buf bytes.Buffer
	m := NewMachine(mustParse(t, "(LDC 1 LDC 2 ADD STOP)"))
	m.Trace = &buf
	if _, err := m.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("want 4 lines, got %d:\n%s", len(lines), buf.String())
	}
	mustContain(t, lines[2], "ADD")
	mustContain(t, lines[2], "S=(2 1)")
	mustContain(t, lines[3], "S=(3)")
}
