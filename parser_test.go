package lispkit

import (
	"errors"
	"testing"
)

func Test_Parser_Single_Expression(t *testing.T) {
	cases := []string{
		"A",
		"42",
		"()",
		"(A (B 1) ())",
		"(LET (F X) (F (LAMBDA (A) (MUL A A))) (X (QUOTE 7)))",
	}
	for _, src := range cases {
		wantPrint(t, mustParse(t, src), src)
	}
}

func Test_Parser_Whitespace_And_Comments_Normalize(t *testing.T) {
	n := mustParse(t, "; square\n(MUL   X\n\t X) ; done\n")
	wantPrint(t, n, "(MUL X X)")
}

func Test_Parser_Trailing_Input(t *testing.T) {
	_, err := ParseSource("(A) (B)")
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("want *ParseError, got %v", err)
	}
	if pe.Incomplete {
		t.Fatalf("trailing input is not incomplete")
	}
}

func Test_Parser_Incomplete(t *testing.T) {
	for _, src := range []string{"(A (B", "(", "", "  ; only a comment"} {
		_, err := ParseSource(src)
		if !IsIncomplete(err) {
			t.Fatalf("%q: want incomplete, got %v", src, err)
		}
	}
	_, err := ParseProgram("(A\n(B C)")
	if !IsIncomplete(err) {
		t.Fatalf("program: want incomplete, got %v", err)
	}
}

func Test_Parser_Unbalanced_Close(t *testing.T) {
	_, err := ParseSource(")")
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Incomplete {
		t.Fatalf("want a hard parse error, got %v", err)
	}
	if pe.Line != 1 || pe.Col != 0 {
		t.Fatalf("error at %d:%d, want 1:0", pe.Line, pe.Col)
	}
}

func Test_Parser_Program(t *testing.T) {
	nodes, err := ParseProgram("(QUOTE A)\n; comment\n(QUOTE B) X")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 3 {
		t.Fatalf("want 3 expressions, got %d", len(nodes))
	}
	wantPrint(t, nodes[2], "X")

	nodes, err = ParseProgram("")
	if err != nil || len(nodes) != 0 {
		t.Fatalf("empty program: %v %v", nodes, err)
	}
}

func Test_Parser_Lex_Errors_Pass_Through(t *testing.T) {
	_, err := ParseSource("(A @)")
	var le *LexError
	if !errors.As(err, &le) {
		t.Fatalf("want *LexError, got %v", err)
	}
}

func Test_Parser_Reads_Compiler_Output(t *testing.T) {
	for _, src := range []string{
		"(ADD (QUOTE 2) (QUOTE 3))",
		"(COND (ATOM (QUOTE A)) (QUOTE (1 2)) (QUOTE ()))",
		factSrc,
	} {
		code, err := Compile(mustParse(t, src))
		if err != nil {
			t.Fatalf("compile %q: %v", src, err)
		}
		back := mustParse(t, FormatNode(code))
		if !Equal(back, code) {
			t.Fatalf("round trip mismatch:\n%s\n%s", FormatNode(code), FormatNode(back))
		}
	}
}
