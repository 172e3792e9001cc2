// compiler.go
//
// Lowers LispKit expressions to SECD instruction lists. Output is itself a
// Node: a flat list of opcode symbols with their inline operands, e.g.
//
//	(ADD (QUOTE 2) (QUOTE 3))  =>  (LDC 2 LDC 3 ADD STOP)
//
// Symbols are resolved at compile time to lexical addresses (frame, slot)
// against a StaticEnv, which mirrors the shape of the runtime environment.
package lispkit

// Opcode mnemonics beyond the primitive keywords (rules.go).
const (
	opSTOP = "STOP"
	opLDC  = "LDC"
	opLD   = "LD"
	opLDF  = "LDF"
	opSEL  = "SEL"
	opJOIN = "JOIN"
	opAP   = "AP"
	opRTN  = "RTN"
	opDUM  = "DUM"
	opRAP  = "RAP"
	opCONS = "CONS"
)

// StaticEnv is the compile-time environment: frames of names, innermost
// first. The zero value is the empty environment.
type StaticEnv struct {
	frames [][]string
}

// Push returns env with a new innermost frame.
func (env StaticEnv) Push(names []string) StaticEnv {
	frames := make([][]string, 0, len(env.frames)+1)
	frames = append(frames, names)
	frames = append(frames, env.frames...)
	return StaticEnv{frames: frames}
}

// Lookup returns the lexical address of name, scanning innermost first.
func (env StaticEnv) Lookup(name string) (frame, slot int, ok bool) {
	for i, f := range env.frames {
		for j, s := range f {
			if s == name {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

// Depth is the number of frames.
func (env StaticEnv) Depth() int { return len(env.frames) }

// Compile translates a top-level program and terminates it with STOP.
func Compile(n Node) (Node, error) {
	code, err := CompileIn(n, StaticEnv{})
	if err != nil {
		return Nil, err
	}
	return code.Append(Sym(opSTOP)), nil
}

// CompileIn translates n under env without a trailing STOP.
func CompileIn(n Node, env StaticEnv) (Node, error) {
	c := &compiler{}
	if err := c.expr(n, env); err != nil {
		return Nil, err
	}
	return ListOf(c.code...), nil
}

type compiler struct {
	code []Node
}

func (c *compiler) emit(xs ...Node) { c.code = append(c.code, xs...) }
func (c *compiler) op(name string)  { c.code = append(c.code, Sym(name)) }

// block compiles n into a separate instruction list followed by tail.
func (c *compiler) block(n Node, env StaticEnv, tail string) (Node, error) {
	sub := &compiler{}
	if err := sub.expr(n, env); err != nil {
		return Nil, err
	}
	sub.op(tail)
	return ListOf(sub.code...), nil
}

func (c *compiler) expr(n Node, env StaticEnv) error {
	switch n.Tag {
	case NTNumber:
		return newError(UnresolvedSymbol, "symbol", n, "a number is not an expression; use QUOTE")
	case NTSymbol:
		i, j, ok := env.Lookup(n.Text())
		if !ok {
			return newError(UnresolvedSymbol, "symbol", n, "symbol %s is not bound", n.Text())
		}
		c.op(opLD)
		c.emit(ListOf(Num(uint64(i)), Num(uint64(j))))
		return nil
	}
	if n.IsNil() {
		c.op(opLDC)
		c.emit(Nil)
		return nil
	}

	b := BuiltinOf(n)
	if b == NotBuiltin {
		return c.apply(n, env)
	}
	if err := CheckCommandSyntax(n); err != nil {
		return err
	}
	args := n.Tail().Items()
	switch {
	case b == BQuote:
		c.op(opLDC)
		c.emit(args[0])
		return nil
	case b == BCons:
		if err := c.expr(args[1], env); err != nil {
			return err
		}
		if err := c.expr(args[0], env); err != nil {
			return err
		}
		c.op(opCONS)
		return nil
	case b.IsBinary():
		if err := c.expr(args[0], env); err != nil {
			return err
		}
		if err := c.expr(args[1], env); err != nil {
			return err
		}
		c.op(b.Opcode())
		return nil
	case b.IsUnary():
		if err := c.expr(args[0], env); err != nil {
			return err
		}
		c.op(b.Opcode())
		return nil
	}

	switch b {
	case BCond:
		if err := c.expr(args[0], env); err != nil {
			return err
		}
		t, err := c.block(args[1], env, opJOIN)
		if err != nil {
			return err
		}
		f, err := c.block(args[2], env, opJOIN)
		if err != nil {
			return err
		}
		c.op(opSEL)
		c.emit(t, f)
		return nil
	case BLambda:
		return c.lambda(args[0], args[1], env)
	case BLet:
		return c.let(n, env)
	case BLetrec:
		return c.letrec(n, env)
	}
	return newError(MachineCorruption, b.String(), n, "keyword has no compilation rule")
}

func (c *compiler) lambda(params, body Node, env StaticEnv) error {
	names := make([]string, 0, params.Len())
	for _, p := range params.Items() {
		names = append(names, p.Text())
	}
	code, err := c.block(body, env.Push(names), opRTN)
	if err != nil {
		return err
	}
	c.op(opLDF)
	c.emit(code)
	return nil
}

// args emits LDC () followed by each expression, rightmost first, consed
// onto the list, leaving the values in source order on the stack.
func (c *compiler) args(exprs []Node, env StaticEnv) error {
	c.op(opLDC)
	c.emit(Nil)
	for i := len(exprs) - 1; i >= 0; i-- {
		if err := c.expr(exprs[i], env); err != nil {
			return err
		}
		c.op(opCONS)
	}
	return nil
}

func (c *compiler) apply(n Node, env StaticEnv) error {
	if err := c.args(n.Tail().Items(), env); err != nil {
		return err
	}
	if err := c.expr(n.Head(), env); err != nil {
		return err
	}
	c.op(opAP)
	return nil
}

func (c *compiler) let(n Node, env StaticEnv) error {
	body, names, exprs := letPairs(n)
	if err := c.args(exprs, env); err != nil {
		return err
	}
	code, err := c.block(body, env.Push(names), opRTN)
	if err != nil {
		return err
	}
	c.op(opLDF)
	c.emit(code)
	c.op(opAP)
	return nil
}

func (c *compiler) letrec(n Node, env StaticEnv) error {
	body, names, exprs := letPairs(n)
	for i, e := range exprs {
		if BuiltinOf(e) != BLambda {
			return newError(SyntaxShape, "LETREC", n, "binding %s should be a LAMBDA", names[i])
		}
	}
	inner := env.Push(names)
	c.op(opDUM)
	if err := c.args(exprs, inner); err != nil {
		return err
	}
	code, err := c.block(body, inner, opRTN)
	if err != nil {
		return err
	}
	c.op(opLDF)
	c.emit(code)
	c.op(opRAP)
	return nil
}
