package lispkit

import "testing"

func Test_Types_Zero_Node_Is_Empty_List(t *testing.T) {
	var n Node
	if !n.IsList() || !n.IsNil() || n.Len() != 0 {
		t.Fatalf("zero Node should be the empty list, got %#v", n)
	}
	if !Equal(n, Nil) {
		t.Fatalf("zero Node should equal Nil")
	}
	if FormatNode(n) != "()" {
		t.Fatalf("want (), got %s", FormatNode(n))
	}
}

func Test_Types_List_Accessors(t *testing.T) {
	l := ListOf(Num(1), Sym("A"), ListOf(Num(2)))
	if l.Len() != 3 {
		t.Fatalf("want len 3, got %d", l.Len())
	}
	wantPrint(t, l.Head(), "1")
	wantPrint(t, l.Tail(), "(A (2))")
	if x, ok := l.Index(2); !ok || FormatNode(x) != "(2)" {
		t.Fatalf("Index(2) = %s, %v", x, ok)
	}
	if _, ok := l.Index(3); ok {
		t.Fatalf("Index(3) should be out of range")
	}
	if _, ok := l.Index(-1); ok {
		t.Fatalf("Index(-1) should be out of range")
	}
	if len(l.Items()) != 3 {
		t.Fatalf("Items should copy every element")
	}
	wantPrint(t, Sym("A").Head(), "()")
	wantPrint(t, Nil.Tail(), "()")
}

func Test_Types_Persistent_Operations_Do_Not_Mutate(t *testing.T) {
	base := ListOf(Num(2), Num(3))
	a := base.Cons(Num(1))
	b := base.Cons(Sym("X"))
	wantPrint(t, base, "(2 3)")
	wantPrint(t, a, "(1 2 3)")
	wantPrint(t, b, "(X 2 3)")
	if a.Len() != 3 || base.Len() != 2 {
		t.Fatalf("cached lengths wrong: %d %d", a.Len(), base.Len())
	}

	c := base.Append(Num(4))
	wantPrint(t, c, "(2 3 4)")
	wantPrint(t, base, "(2 3)")
}

func Test_Types_Equal(t *testing.T) {
	cases := []struct {
		a, b Node
		want bool
	}{
		{Sym("A"), Sym("A"), true},
		{Sym("A"), Sym("B"), false},
		{Num(1), Num(1), true},
		{Num(1), Sym("1"), false},
		{ListOf(Num(1), ListOf(Sym("A"))), ListOf(Num(1), ListOf(Sym("A"))), true},
		{ListOf(Num(1)), ListOf(Num(1), Num(2)), false},
		{Nil, ListOf(), true},
		{Nil, Sym("FALSE"), false},
	}
	for i, c := range cases {
		if got := Equal(c.a, c.b); got != c.want {
			t.Fatalf("case %d: Equal(%s, %s) = %v", i, c.a, c.b, got)
		}
	}
}

func Test_Types_Accessors_On_Wrong_Variant(t *testing.T) {
	if Num(5).Text() != "" || Sym("A").Number() != 0 {
		t.Fatalf("accessors should return zero values for other variants")
	}
	if !True.IsSym("TRUE") || !False.IsSym("FALSE") || !Bool(true).IsSym("TRUE") {
		t.Fatalf("boolean symbols wrong")
	}
	if NTSymbol.String() != "symbol" || NTNumber.String() != "number" || NTList.String() != "list" {
		t.Fatalf("tag names wrong")
	}
}

func Test_Rules_Arity_Table(t *testing.T) {
	cases := []struct {
		kw    string
		args  int
		exact bool
	}{
		{"QUOTE", 1, true}, {"CAR", 1, true}, {"CDR", 1, true}, {"ATOM", 1, true},
		{"CONS", 2, true}, {"EQUAL", 2, true}, {"ADD", 2, true}, {"SUB", 2, true},
		{"MUL", 2, true}, {"DIVE", 2, true}, {"REM", 2, true}, {"LEQ", 2, true},
		{"COND", 3, true}, {"LAMBDA", 2, true}, {"LET", 2, false}, {"LETREC", 2, false},
	}
	for _, c := range cases {
		b := LookupBuiltin(c.kw)
		if b == NotBuiltin {
			t.Fatalf("%s not found", c.kw)
		}
		a, ok := b.Arity()
		if !ok || a.Args != c.args || a.Exact != c.exact {
			t.Fatalf("%s: got %+v", c.kw, a)
		}
		if b.String() != c.kw {
			t.Fatalf("%s: String() = %s", c.kw, b)
		}
	}
	if LookupBuiltin("FOO") != NotBuiltin {
		t.Fatalf("FOO should not be a keyword")
	}
	if BEqual.Opcode() != "EQ" || BAdd.Opcode() != "ADD" {
		t.Fatalf("opcode names wrong")
	}
	let, _ := BLet.Arity()
	if !let.Accepts(5) || let.Accepts(1) {
		t.Fatalf("LET arity should be 2 or more")
	}
}
