package lispkit

import "testing"

func Test_Validate_Syntax_Errors(t *testing.T) {
	cases := []struct {
		src  string
		kind ErrorKind
		msg  string
	}{
		{"(QUOTE)", SyntaxArity, "QUOTE statement. 1 expected, but 0 provided"},
		{"(QUOTE A B)", SyntaxArity, "QUOTE statement. 1 expected, but 2 provided"},
		{"(CAR)", SyntaxArity, "CAR statement. 1 expected, but 0 provided"},
		{"(COND (QUOTE TRUE) (QUOTE A))", SyntaxArity, "COND statement. 3 expected, but 2 provided"},
		{"(LET X)", SyntaxArity, "LET statement. 2 or more expected, but 1 provided"},
		{"(LETREC)", SyntaxArity, "LETREC statement. 2 or more expected, but 0 provided"},
		{"(LAMBDA X X)", SyntaxShape, "parameters of LAMBDA should be a list"},
		{"(LAMBDA (X 1) X)", SyntaxName, "parameter 2: name of symbol should be a symbol"},
		{"(LAMBDA (X X) X)", SyntaxShape, "parameter X declared twice"},
		{"(LET X X)", SyntaxShape, "arg 2 should be pair"},
		{"(LET X (X))", SyntaxShape, "arg 2 should be pair"},
		{"(LET X (1 (QUOTE 2)))", SyntaxName, "arg 2: name of symbol should be a symbol"},
		{"(LETREC X (X (QUOTE 1)) (X (QUOTE 2)))", SyntaxShape, "arg 3: X is bound twice"},
	}
	for _, c := range cases {
		err := Validate(mustParse(t, c.src))
		if err == nil {
			t.Fatalf("%s: expected error", c.src)
		}
		wantKind(t, err, c.kind)
		mustContain(t, err.Error(), c.msg)
	}
}

func Test_Validate_Quote_Data_Is_Not_Checked(t *testing.T) {
	for _, src := range []string{"(QUOTE (CAR))", "(QUOTE (LET))", "(CONS (QUOTE (LAMBDA X)) (QUOTE ()))"} {
		if err := Validate(mustParse(t, src)); err != nil {
			t.Fatalf("%s: unexpected error %v", src, err)
		}
	}
}

func Test_Validate_Nested_Forms(t *testing.T) {
	err := Validate(mustParse(t, "(ADD (QUOTE 1) (CAR))"))
	wantKind(t, err, SyntaxArity)
	if e := err.(*Error); e.Where != "CAR" {
		t.Fatalf("the innermost failing form should be reported, got %s", e.Where)
	}

	err = Validate(mustParse(t, "(LET (F (QUOTE 1)) (F (LAMBDA (A A) A)))"))
	wantKind(t, err, SyntaxShape)
}

func Test_Validate_Non_Keyword_Heads_Pass(t *testing.T) {
	for _, src := range []string{
		"(F (QUOTE 1) (QUOTE 2) (QUOTE 3))",
		"((LAMBDA (X) X) (QUOTE 1))",
		"X",
		"42",
		"()",
		"(car X)",
	} {
		if err := Validate(mustParse(t, src)); err != nil {
			t.Fatalf("%s: unexpected error %v", src, err)
		}
	}
}

func Test_Validate_Does_Not_Resolve_Symbols(t *testing.T) {
	if err := CheckCommandSyntax(mustParse(t, "(ADD X Y)")); err != nil {
		t.Fatalf("unbound symbols are not a syntax error: %v", err)
	}
}
