// interpreter.go: PUBLIC session API for LispKit.
//
// OVERVIEW
// ========
// A Session ties the reader, the validator and the two execution pipelines
// together behind one output writer:
//
//	eval:     source -> Node -> Validate -> Evaluate          -> printed value
//	compile:  source -> Node -> Validate -> Compile           -> instruction text
//	secd:     source -> Node -> Validate -> Compile -> Run    -> printed stack
//	exec:     instruction text -> Node -> VerifyControl -> Run -> printed stack
//
// Every top-level expression of the source is processed in order. Results,
// warnings and errors are all written to Options.Out, one line each:
//
//	5
//	Warning in LET expression '(LET X (X ...) (Y ...))' - binding Y is never used
//	Error in CAR expression '(CAR (QUOTE A))' - argument should be a list, got symbol
//
// ERRORS
// ------
// Nothing escapes a Session call: every error, including a recovered Go
// panic (reported as MachineCorruption), is printed, sets the session's
// failure flag, and is also returned so hosts can inspect its kind with
// IsKind. Processing stops at the first failing expression. Reset clears
// the flag; no other state survives between calls.
package lispkit

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Mode selects a pipeline.
type Mode int

const (
	ModeEval Mode = iota
	ModeSECD
	ModeCompile
	ModeExec
)

var modeNames = map[string]Mode{
	"eval":    ModeEval,
	"secd":    ModeSECD,
	"compile": ModeCompile,
	"exec":    ModeExec,
}

func (m Mode) String() string {
	for name, v := range modeNames {
		if v == m {
			return name
		}
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode maps "eval", "secd", "compile" or "exec" to a Mode.
func ParseMode(s string) (Mode, error) {
	m, ok := modeNames[strings.ToLower(s)]
	if !ok {
		return 0, fmt.Errorf("unknown mode %q (want eval, secd, compile or exec)", s)
	}
	return m, nil
}

// Options configures a Session.
type Options struct {
	// Out receives results, warnings and errors. Defaults to os.Stdout.
	Out io.Writer
	// PrintDepth limits printed values; deeper structure prints as "...".
	// Zero or negative means unlimited. Instruction text is never truncated.
	PrintDepth int
	// MaxDepth bounds evaluator recursion (DefaultMaxDepth when zero).
	MaxDepth int
	// Trace receives one line per SECD step. DebuggingMode traces to
	// stderr when Trace is nil.
	Trace io.Writer
	// Name labels source snippets in reader errors.
	Name string
}

// Session runs LispKit programs. It is not safe for concurrent use; create
// one Session per goroutine.
type Session struct {
	opts     Options
	failed   bool
	warnings int
}

// NewSession returns a Session with defaults applied.
func NewSession(opts Options) *Session {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.PrintDepth <= 0 {
		opts.PrintDepth = -1
	}
	return &Session{opts: opts}
}

// Failed reports whether any call since the last Reset reported an error.
func (s *Session) Failed() bool { return s.failed }

// Warnings is the number of warnings printed since the last Reset.
func (s *Session) Warnings() int { return s.warnings }

// Reset clears the failure flag and warning count.
func (s *Session) Reset() {
	s.failed = false
	s.warnings = 0
}

// Run processes src through the pipeline selected by mode.
func (s *Session) Run(mode Mode, src string) error {
	switch mode {
	case ModeEval:
		return s.Execute(src)
	case ModeSECD:
		return s.RunSECD(src)
	case ModeCompile:
		return s.Compile(src)
	case ModeExec:
		return s.ExecSECD(src)
	}
	return s.report(fmt.Errorf("unknown mode %d", int(mode)))
}

// Execute evaluates every expression of src with the tree-walking
// evaluator and prints each value.
func (s *Session) Execute(src string) error {
	return s.each(src, func(n Node) error {
		v, err := s.Evaluate(n)
		if err != nil {
			return err
		}
		s.println(FormatValue(v, s.opts.PrintDepth))
		return nil
	})
}

// Compile prints the instruction text of every expression of src.
func (s *Session) Compile(src string) error {
	return s.each(src, func(n Node) error {
		code, err := s.CompileNode(n)
		if err != nil {
			return err
		}
		s.println(FormatNode(code))
		return nil
	})
}

// RunSECD compiles every expression of src, runs it on a fresh machine,
// and prints the final stack.
func (s *Session) RunSECD(src string) error {
	return s.each(src, func(n Node) error {
		code, err := s.CompileNode(n)
		if err != nil {
			return err
		}
		stack, err := s.RunControl(code)
		if err != nil {
			return err
		}
		s.println(FormatStack(stack, s.opts.PrintDepth))
		return nil
	})
}

// ExecSECD reads src as instruction text (one control list per
// expression), runs each, and prints the final stack.
func (s *Session) ExecSECD(src string) error {
	return s.each(src, func(code Node) error {
		if err := VerifyControl(code); err != nil {
			return err
		}
		stack, err := s.RunControl(code)
		if err != nil {
			return err
		}
		s.println(FormatStack(stack, s.opts.PrintDepth))
		return nil
	})
}

// Evaluate validates and evaluates one parsed program in an empty Context.
// Warnings are printed; the error is returned unprinted.
func (s *Session) Evaluate(n Node) (v Node, err error) {
	defer s.recoverInto(&err)
	if err := Validate(n); err != nil {
		return Nil, err
	}
	ev := &Evaluator{Warn: s.warn, MaxDepth: s.opts.MaxDepth}
	return ev.Evaluate(n, NewContext())
}

// CompileNode validates and compiles one parsed program.
func (s *Session) CompileNode(n Node) (code Node, err error) {
	defer s.recoverInto(&err)
	if err := Validate(n); err != nil {
		return Nil, err
	}
	code, err = Compile(n)
	if err == nil && DebuggingMode {
		debugf("compiled %d instructions", code.Len())
		if verr := VerifyControl(code); verr != nil {
			return Nil, verr
		}
	}
	return code, err
}

// RunControl runs a control list on a fresh machine and returns its stack.
func (s *Session) RunControl(code Node) (stack Node, err error) {
	defer s.recoverInto(&err)
	m := NewMachine(code)
	m.Trace = s.opts.Trace
	if m.Trace == nil && DebuggingMode {
		m.Trace = os.Stderr
	}
	m.TraceDepth = s.opts.PrintDepth
	if m.TraceDepth < 0 {
		m.TraceDepth = ErrorExprDepth
	}
	stack, err = m.Run()
	if err == nil {
		debugf("machine halted after %d steps", m.Steps())
	}
	return stack, err
}

//// END_OF_PUBLIC

// each parses src and runs fn on every top-level expression, reporting the
// first failure.
func (s *Session) each(src string, fn func(Node) error) error {
	nodes, err := ParseProgram(src)
	if err != nil {
		return s.report(WrapErrorWithName(err, s.opts.Name, src))
	}
	for _, n := range nodes {
		if err := fn(n); err != nil {
			return s.report(err)
		}
	}
	return nil
}

func (s *Session) report(err error) error {
	s.failed = true
	s.println(strings.TrimRight(err.Error(), "\n"))
	return err
}

func (s *Session) warn(w *Warning) {
	s.warnings++
	s.println(w.Error())
}

func (s *Session) println(line string) {
	fmt.Fprintln(s.opts.Out, line)
}

// recoverInto converts a Go panic into a MachineCorruption error.
func (s *Session) recoverInto(err *error) {
	if r := recover(); r != nil {
		*err = newError(MachineCorruption, "host", Nil, "internal error: %v", r)
	}
}
