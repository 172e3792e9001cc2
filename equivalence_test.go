package lispkit

import "testing"

// Closed programs that both pipelines must agree on, value for value and
// error kind for error kind.
var equivalencePrograms = []struct {
	src  string
	want string // printed value; empty when kind is set
	kind ErrorKind
}{
	{src: "(QUOTE A)", want: "A"},
	{src: "()", want: "()"},
	{src: "(QUOTE ())", want: "()"},
	{src: "(ADD (QUOTE 2) (QUOTE 3))", want: "5"},
	{src: "(SUB (QUOTE 10) (QUOTE 4))", want: "6"},
	{src: "(REM (DIVE (QUOTE 47) (QUOTE 2)) (QUOTE 5))", want: "3"},
	{src: "(CONS (QUOTE 1) (QUOTE (2 3)))", want: "(1 2 3)"},
	{src: "(CAR (QUOTE (A B)))", want: "A"},
	{src: "(CDR (QUOTE (A B C)))", want: "(B C)"},
	{src: "(ATOM (QUOTE ()))", want: "FALSE"},
	{src: "(EQUAL (QUOTE A) (QUOTE A))", want: "TRUE"},
	{src: "(EQUAL (QUOTE 1) (QUOTE (1)))", want: "FALSE"},
	{src: "(EQUAL (QUOTE 1) (QUOTE A))", want: "FALSE"},
	{src: "(COND (LEQ (QUOTE 1) (QUOTE 2)) (QUOTE Y) (QUOTE N))", want: "Y"},
	{src: "((LAMBDA (X Y) (SUB X Y)) (QUOTE 10) (QUOTE 4))", want: "6"},
	{src: "((LAMBDA (F) (F (QUOTE 3))) (LAMBDA (X) (MUL X X)))", want: "9"},
	{src: "(LET (MUL X Y) (X (QUOTE 6)) (Y (QUOTE 7)))", want: "42"},
	{src: "(LET (F (QUOTE 2)) (F (LAMBDA (N) (ADD N (QUOTE 1)))))", want: "3"},
	{src: factSrc, want: "120"},
	{src: `
(LETREC (EVEN (QUOTE 6))
  (EVEN (LAMBDA (N) (COND (EQUAL N (QUOTE 0)) (QUOTE TRUE) (ODD (SUB N (QUOTE 1))))))
  (ODD (LAMBDA (N) (COND (EQUAL N (QUOTE 0)) (QUOTE FALSE) (EVEN (SUB N (QUOTE 1)))))))`, want: "TRUE"},
	{src: `
(LETREC (LEN (QUOTE (A B C D)))
  (LEN (LAMBDA (L) (COND (EQUAL L (QUOTE ())) (QUOTE 0) (ADD (QUOTE 1) (LEN (CDR L)))))))`, kind: TypeMismatch},

	{src: "X", kind: UnresolvedSymbol},
	{src: "7", kind: UnresolvedSymbol},
	{src: "(ADD (QUOTE 1))", kind: SyntaxArity},
	{src: "(CAR (QUOTE A))", kind: TypeMismatch},
	{src: "(CDR (QUOTE (A)))", kind: TypeMismatch},
	{src: "(EQUAL (QUOTE (A)) (QUOTE (B)))", kind: TypeMismatch},
	{src: "(COND (QUOTE 1) (QUOTE A) (QUOTE B))", kind: TypeMismatch},
	{src: "((QUOTE A) (QUOTE 1))", kind: TypeMismatch},
	{src: "(DIVE (QUOTE 1) (QUOTE 0))", kind: DivideByZero},
	{src: "(SUB (QUOTE 1) (QUOTE 2))", kind: ArithmeticOverflow},
	{src: "(MUL (QUOTE 4294967296) (QUOTE 4294967296))", kind: ArithmeticOverflow},
}

func Test_Equivalence_Evaluator_And_Machine(t *testing.T) {
	for _, p := range equivalencePrograms {
		n := mustParse(t, p.src)

		ev, evErr := Evaluate(n, NewContext())

		var vm Node
		code, vmErr := Compile(n)
		if vmErr == nil {
			var stack Node
			stack, vmErr = Run(code)
			if vmErr == nil {
				if stack.Len() != 1 {
					t.Fatalf("%s: machine left %d values", p.src, stack.Len())
				}
				vm = stack.Head()
			}
		}

		if p.want != "" {
			if evErr != nil || vmErr != nil {
				t.Fatalf("%s: unexpected errors: eval=%v secd=%v", p.src, evErr, vmErr)
			}
			wantPrint(t, ev, p.want)
			wantPrint(t, vm, p.want)
			continue
		}
		wantKind(t, evErr, p.kind)
		wantKind(t, vmErr, p.kind)
	}
}
