// interpreter_exec.go: PRIVATE tree-walking evaluator.
//
// Evaluation model
// ----------------
//   - A bare number is never an expression; it fails with UnresolvedSymbol.
//   - A symbol is looked up in the current Context.
//   - A list headed by a keyword runs that keyword's rule.
//   - Any other non-empty list is an application. Its head must evaluate to
//     a function value (params body). Arguments are evaluated in the caller's
//     Context and the body runs in a fresh Context holding only the
//     parameters; nothing else from the caller is visible.
//   - The empty list evaluates to itself.
//
// LET and LETREC
// --------------
//
//	(LET body (name expr) ...)
//	(LETREC body (name expr) ...)
//
// Every free symbol of the bodies that is not a keyword must be bound by a
// pair or by the enclosing Context; otherwise the form fails with
// MissingBindings before any pair is evaluated. A pair nobody references
// yields an ExtraBindings warning.
//
// LETREC binds each LAMBDA pair to (params (LETREC fbody group...)), where
// group repeats the group's pairs, so a recursive call re-establishes the
// group inside the callee's fresh Context. Those synthesized LETREC forms
// are tracked per evaluation and skip the binding checks.
//
// Errors are returned, never panicked. Recursion is bounded by MaxDepth.
package lispkit

import (
	"strings"
)

// DefaultMaxDepth bounds evaluator recursion when Evaluator.MaxDepth is 0.
const DefaultMaxDepth = 10000

// Evaluator runs programs by walking the tree. The zero value is ready to
// use; it drops warnings and uses DefaultMaxDepth.
type Evaluator struct {
	Warn     func(*Warning)
	MaxDepth int
}

// Evaluate computes the value of n in ctx. It has no state beyond its
// arguments: repeated calls with equal inputs give equal results.
func (ev *Evaluator) Evaluate(n Node, ctx Context) (Node, error) {
	limit := ev.MaxDepth
	if limit <= 0 {
		limit = DefaultMaxDepth
	}
	st := &evalState{warn: ev.Warn, max: limit, synthetic: map[*List]bool{}}
	return st.eval(n, ctx)
}

// Evaluate is a convenience wrapper using a zero Evaluator.
func Evaluate(n Node, ctx Context) (Node, error) {
	var ev Evaluator
	return ev.Evaluate(n, ctx)
}

////////////////////////////////////////////////////////////////////////////////
//                                 EVAL CORE
////////////////////////////////////////////////////////////////////////////////

type evalState struct {
	warn      func(*Warning)
	depth     int
	max       int
	synthetic map[*List]bool
}

func (st *evalState) emit(w *Warning) {
	if st.warn != nil {
		st.warn(w)
	}
}

func (st *evalState) eval(n Node, ctx Context) (Node, error) {
	st.depth++
	defer func() { st.depth-- }()
	if st.depth > st.max {
		return Nil, newError(RecursionLimit, "evaluation", n, "recursion deeper than %d", st.max)
	}

	switch n.Tag {
	case NTNumber:
		return Nil, newError(UnresolvedSymbol, "symbol", n, "a number is not an expression; use QUOTE")
	case NTSymbol:
		v, ok := ctx.Lookup(n.Text())
		if !ok {
			return Nil, newError(UnresolvedSymbol, "symbol", n, "symbol %s is not bound", n.Text())
		}
		return v, nil
	}
	if n.IsNil() {
		return Nil, nil
	}

	b := BuiltinOf(n)
	if b == NotBuiltin {
		return st.apply(n, ctx)
	}
	if err := CheckCommandSyntax(n); err != nil {
		return Nil, err
	}
	kw := b.String()
	switch {
	case b == BQuote:
		return n.Tail().Head(), nil
	case b.IsUnary():
		x, err := st.eval(n.Tail().Head(), ctx)
		if err != nil {
			return Nil, err
		}
		return applyUnary(b, x, kw, n)
	case b.IsBinary():
		args := n.Tail()
		x, err := st.eval(args.Head(), ctx)
		if err != nil {
			return Nil, err
		}
		y, err := st.eval(args.Tail().Head(), ctx)
		if err != nil {
			return Nil, err
		}
		return applyBinary(b, x, y, kw, n)
	}

	switch b {
	case BCond:
		args := n.Items()
		c, err := st.eval(args[1], ctx)
		if err != nil {
			return Nil, err
		}
		switch {
		case c.IsSym("TRUE"):
			return st.eval(args[2], ctx)
		case c.IsSym("FALSE"):
			return st.eval(args[3], ctx)
		}
		return Nil, newError(TypeMismatch, kw, n, "condition should be TRUE or FALSE, got %s", FormatNodeDepth(c, ErrorExprDepth))
	case BLambda:
		return n.Tail(), nil
	case BLet:
		return st.let(n, ctx)
	case BLetrec:
		return st.letrec(n, ctx)
	}
	return Nil, newError(MachineCorruption, kw, n, "keyword has no evaluation rule")
}

// apply evaluates a user-function application.
func (st *evalState) apply(n Node, ctx Context) (Node, error) {
	fn, err := st.eval(n.Head(), ctx)
	if err != nil {
		return Nil, err
	}
	params, body, perr := lambdaParts(fn)
	if perr != nil {
		return Nil, newError(TypeMismatch, "call", n, "%s is not a function: %v", FormatNodeDepth(n.Head(), ErrorExprDepth), perr)
	}
	argExprs := n.Tail().Items()
	if len(argExprs) != len(params) {
		return Nil, newError(ArityMismatchAtCall, "call", n, "function expects %d arguments, but %d provided", len(params), len(argExprs))
	}
	args := make([]Node, len(argExprs))
	for i, a := range argExprs {
		v, err := st.eval(a, ctx)
		if err != nil {
			return Nil, err
		}
		args[i] = v
	}
	return st.eval(body, NewContext().BindAll(params, args))
}

////////////////////////////////////////////////////////////////////////////////
//                                 LET / LETREC
////////////////////////////////////////////////////////////////////////////////

func (st *evalState) let(n Node, ctx Context) (Node, error) {
	body, names, exprs := letPairs(n)
	if err := st.checkBindings(n, names, ctx, []Node{body}); err != nil {
		return Nil, err
	}
	values := make([]Node, len(exprs))
	for i, e := range exprs {
		v, err := st.eval(e, ctx)
		if err != nil {
			return Nil, err
		}
		values[i] = v
	}
	return st.eval(body, ctx.BindAll(names, values))
}

func (st *evalState) letrec(n Node, ctx Context) (Node, error) {
	body, names, exprs := letPairs(n)
	if !st.synthetic[n.cells()] {
		if err := st.checkBindings(n, names, ctx, append([]Node{body}, exprs...)); err != nil {
			return Nil, err
		}
	}

	var fnNames, constNames []string
	var fnExprs, constExprs []Node
	for i, e := range exprs {
		if BuiltinOf(e) == BLambda {
			if err := Validate(e); err != nil {
				return Nil, err
			}
			fnNames = append(fnNames, names[i])
			fnExprs = append(fnExprs, e)
			continue
		}
		constNames = append(constNames, names[i])
		constExprs = append(constExprs, e)
	}

	// Non-function pairs see the recursive functions but not each other.
	fns := st.closeGroup(fnNames, fnExprs, nil, nil)
	inner := ctx.BindAll(fnNames, fns)
	consts := make([]Node, len(constExprs))
	for i, e := range constExprs {
		v, err := st.eval(e, inner)
		if err != nil {
			return Nil, err
		}
		consts[i] = v
	}

	fns = st.closeGroup(fnNames, fnExprs, constNames, consts)
	return st.eval(body, ctx.BindAll(fnNames, fns).BindAll(constNames, consts))
}

// closeGroup turns each LAMBDA pair into a function value whose body
// rebinds the whole group (functions plus already computed constants),
// except names shadowed by the function's own parameters.
func (st *evalState) closeGroup(fnNames []string, fnExprs []Node, constNames []string, consts []Node) []Node {
	out := make([]Node, len(fnExprs))
	for i, e := range fnExprs {
		params, fbody := e.Tail().Head(), e.Tail().Tail().Head()
		shadow := map[string]bool{}
		for _, p := range params.Items() {
			shadow[p.Text()] = true
		}
		var pairs []Node
		for j, name := range fnNames {
			if !shadow[name] {
				pairs = append(pairs, ListOf(Sym(name), fnExprs[j]))
			}
		}
		for j, name := range constNames {
			if !shadow[name] {
				pairs = append(pairs, ListOf(Sym(name), ListOf(Sym("QUOTE"), consts[j])))
			}
		}
		if len(pairs) == 0 {
			out[i] = ListOf(params, fbody)
			continue
		}
		group := ListOf(append([]Node{Sym("LETREC"), fbody}, pairs...)...)
		st.synthetic[group.cells()] = true
		out[i] = ListOf(params, group)
	}
	return out
}

// checkBindings fails with MissingBindings if scopes reference a symbol
// bound neither by names nor by ctx, and warns about names nobody uses.
func (st *evalState) checkBindings(n Node, names []string, ctx Context, scopes []Node) error {
	kw := BuiltinOf(n).String()
	bound := map[string]bool{}
	for _, name := range names {
		bound[name] = true
	}
	fv := newSymSet()
	for _, s := range scopes {
		freeSymbols(s, nil, fv)
	}
	var missing []string
	for _, s := range fv.order {
		if !bound[s] && !ctx.Has(s) {
			missing = append(missing, s)
		}
	}
	if len(missing) > 0 {
		return newError(MissingBindings, kw, n, "missing bindings for %s", strings.Join(missing, ", "))
	}
	for _, name := range names {
		if !fv.has[name] {
			st.emit(newWarning(ExtraBindings, kw, n, "binding %s is never used", name))
		}
	}
	return nil
}

////////////////////////////////////////////////////////////////////////////////
//                               FREE SYMBOLS
////////////////////////////////////////////////////////////////////////////////

type symSet struct {
	has   map[string]bool
	order []string
}

func newSymSet() *symSet { return &symSet{has: map[string]bool{}} }

func (s *symSet) add(name string) {
	if !s.has[name] {
		s.has[name] = true
		s.order = append(s.order, name)
	}
}

// freeSymbols collects symbols of n that would be looked up in a Context:
// keywords, QUOTE data, and names bound by inner LAMBDA/LET/LETREC forms
// are excluded.
func freeSymbols(n Node, bound map[string]bool, out *symSet) {
	switch n.Tag {
	case NTSymbol:
		if !bound[n.Text()] && LookupBuiltin(n.Text()) == NotBuiltin {
			out.add(n.Text())
		}
		return
	case NTNumber:
		return
	}
	b := BuiltinOf(n)
	if b == NotBuiltin {
		for _, x := range n.Items() {
			freeSymbols(x, bound, out)
		}
		return
	}
	if CheckCommandSyntax(n) != nil {
		// Malformed forms fail on evaluation; only scan their operands.
		for _, x := range n.Tail().Items() {
			freeSymbols(x, bound, out)
		}
		return
	}
	switch b {
	case BQuote:
	case BLambda:
		inner := extend(bound, n.Tail().Head().Items())
		freeSymbols(n.Tail().Tail().Head(), inner, out)
	case BLet, BLetrec:
		body, names, exprs := letPairs(n)
		syms := make([]Node, len(names))
		for i, name := range names {
			syms[i] = Sym(name)
		}
		inner := extend(bound, syms)
		exprScope := bound
		if b == BLetrec {
			exprScope = inner
		}
		for _, e := range exprs {
			freeSymbols(e, exprScope, out)
		}
		freeSymbols(body, inner, out)
	default:
		for _, x := range n.Tail().Items() {
			freeSymbols(x, bound, out)
		}
	}
}

func extend(bound map[string]bool, syms []Node) map[string]bool {
	m := make(map[string]bool, len(bound)+len(syms))
	for k := range bound {
		m[k] = true
	}
	for _, s := range syms {
		m[s.Text()] = true
	}
	return m
}
