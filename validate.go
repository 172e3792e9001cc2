package lispkit

import "fmt"

// CheckCommandSyntax checks a single node against the arity table and the
// per-keyword shape rules. Atoms, the empty list, and lists whose head is
// not a keyword pass unchanged. Nothing is evaluated or resolved.
func CheckCommandSyntax(n Node) error {
	b := BuiltinOf(n)
	if b == NotBuiltin {
		return nil
	}
	kw := b.String()
	trait, _ := b.Arity()
	argc := n.Len() - 1
	if !trait.Accepts(argc) {
		if trait.Exact {
			return newError(SyntaxArity, kw, n, "%s statement. %d expected, but %d provided", kw, trait.Args, argc)
		}
		return newError(SyntaxArity, kw, n, "%s statement. %d or more expected, but %d provided", kw, trait.Args, argc)
	}

	switch b {
	case BLambda:
		params, _ := n.Index(1)
		if !params.IsList() {
			return newError(SyntaxShape, kw, n, "parameters of %s should be a list", kw)
		}
		seen := map[string]bool{}
		for i, p := range params.Items() {
			if !p.IsSymbol() {
				return newError(SyntaxName, kw, n, "parameter %d: name of symbol should be a symbol", i+1)
			}
			if seen[p.Text()] {
				return newError(SyntaxShape, kw, n, "parameter %s declared twice", p.Text())
			}
			seen[p.Text()] = true
		}
	case BLet, BLetrec:
		seen := map[string]bool{}
		for i, pair := range n.Items()[2:] {
			arg := i + 2
			if !pair.IsList() || pair.Len() != 2 {
				return newError(SyntaxShape, kw, n, "arg %d should be pair", arg)
			}
			name := pair.Head()
			if !name.IsSymbol() {
				return newError(SyntaxName, kw, n, "arg %d: name of symbol should be a symbol", arg)
			}
			if seen[name.Text()] {
				return newError(SyntaxShape, kw, n, "arg %d: %s is bound twice", arg, name.Text())
			}
			seen[name.Text()] = true
		}
	}
	return nil
}

// Validate checks every list node of a program, children before parents.
// The argument of QUOTE is data and is not checked.
func Validate(n Node) error {
	if !n.IsList() || n.IsNil() {
		return nil
	}
	if BuiltinOf(n) != BQuote {
		for _, x := range n.Items() {
			if err := Validate(x); err != nil {
				return err
			}
		}
	}
	return CheckCommandSyntax(n)
}

// letPairs splits a validated LET/LETREC node into its body and binding
// pairs as (name, expr) slices.
func letPairs(n Node) (body Node, names []string, exprs []Node) {
	items := n.Items()
	body = items[1]
	for _, pair := range items[2:] {
		names = append(names, pair.Head().Text())
		e, _ := pair.Index(1)
		exprs = append(exprs, e)
	}
	return body, names, exprs
}

// lambdaParts returns the parameter names and body of a validated LAMBDA
// form or of a (params body) function value.
func lambdaParts(fn Node) ([]string, Node, error) {
	if fn.Len() != 2 {
		return nil, Nil, fmt.Errorf("function value should be (params body)")
	}
	params, body := fn.Head(), fn.Tail().Head()
	if !params.IsList() {
		return nil, Nil, fmt.Errorf("function parameters should be a list")
	}
	names := make([]string, 0, params.Len())
	for _, p := range params.Items() {
		if !p.IsSymbol() {
			return nil, Nil, fmt.Errorf("function parameter %s is not a symbol", p)
		}
		names = append(names, p.Text())
	}
	return names, body, nil
}
