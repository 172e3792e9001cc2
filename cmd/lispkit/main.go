package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	lispkit "github.com/arhebs/lispkit-compiler"
)

const (
	appName     = "lispkit"
	historyFile = ".lispkit_history"
	promptCont  = "... "
)

var (
	banner   = fmt.Sprintf("LispKit %s REPL\nCtrl+C cancels input, Ctrl+D exits. Type :help for commands.", lispkit.Version)
	helpText = `REPL commands:
  :mode eval|secd|compile|exec   Switch pipeline (default eval)
  :depth N                       Limit printed depth (0 = unlimited)
  :trace on|off                  Trace SECD steps to stderr
  :quit                          Exit the REPL`
)

func red(s string) string { return "\x1b[31m" + s + "\x1b[0m" }

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	switch cmd {
	case "run", "eval":
		os.Exit(cmdRun(cmd, lispkit.ModeEval, os.Args[2:]))
	case "secd":
		os.Exit(cmdRun(cmd, lispkit.ModeSECD, os.Args[2:]))
	case "compile":
		os.Exit(cmdRun(cmd, lispkit.ModeCompile, os.Args[2:]))
	case "exec":
		os.Exit(cmdRun(cmd, lispkit.ModeExec, os.Args[2:]))
	case "fmt":
		os.Exit(cmdFmt(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl(os.Args[2:]))
	case "version":
		fmt.Println(lispkit.Version)
		return
	case "-h", "--help", "help":
		usage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", appName, cmd)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Printf(`LispKit %s (built %s)

Usage:
  %s run [flags] <file|->        Evaluate with the tree-walking evaluator.
  %s secd [flags] <file|->       Compile and run on the SECD machine.
  %s compile [flags] <file|->    Print SECD instruction text.
  %s exec [flags] <file|->       Run SECD instruction text.
  %s fmt <file|->                Pretty-print source.
  %s repl [flags]                Start the REPL.
  %s version                     Print the compiled version

Flags:
  -e <expr>        Use <expr> as the source instead of a file.
  -depth N         Limit printed depth (0 = unlimited).
  -max-depth N     Evaluator recursion limit.
  -trace           Trace SECD steps to stderr.

`, lispkit.Version, lispkit.BuildDate, appName, appName, appName, appName, appName, appName, appName)
}

// -----------------------------------------------------------------------------
// flags & sources
// -----------------------------------------------------------------------------

type commonFlags struct {
	expr     string
	depth    int
	maxDepth int
	trace    bool
}

func newFlagSet(name string, cf *commonFlags) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&cf.expr, "e", "", "source expression")
	fs.IntVar(&cf.depth, "depth", 0, "print depth limit (0 = unlimited)")
	fs.IntVar(&cf.maxDepth, "max-depth", lispkit.DefaultMaxDepth, "evaluator recursion limit")
	fs.BoolVar(&cf.trace, "trace", false, "trace SECD steps to stderr")
	return fs
}

func (cf *commonFlags) options(name string) lispkit.Options {
	opts := lispkit.Options{
		Out:        os.Stdout,
		PrintDepth: cf.depth,
		MaxDepth:   cf.maxDepth,
		Name:       name,
	}
	if cf.trace {
		opts.Trace = os.Stderr
	}
	return opts
}

// readSource returns the program text and a display name.
func readSource(cf *commonFlags, args []string) (string, string, error) {
	if cf.expr != "" {
		return cf.expr, "<expr>", nil
	}
	if len(args) < 1 {
		return "", "", errors.New("missing source file")
	}
	file := args[0]
	if file == "-" {
		b, err := io.ReadAll(os.Stdin)
		return string(b), "<stdin>", err
	}
	b, err := os.ReadFile(file)
	if err != nil {
		return "", "", fmt.Errorf("cannot read %s: %w", file, err)
	}
	return string(b), filepath.Base(file), nil
}

// -----------------------------------------------------------------------------
// run / secd / compile / exec
// -----------------------------------------------------------------------------

func cmdRun(name string, mode lispkit.Mode, args []string) int {
	var cf commonFlags
	fs := newFlagSet(name, &cf)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	src, srcName, err := readSource(&cf, fs.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %s: %v\n", appName, name, err)
		return 2
	}

	s := lispkit.NewSession(cf.options(srcName))
	_ = s.Run(mode, src)
	if s.Failed() {
		return 1
	}
	return 0
}

// -----------------------------------------------------------------------------
// fmt
// -----------------------------------------------------------------------------

func cmdFmt(args []string) int {
	var cf commonFlags
	fs := newFlagSet("fmt", &cf)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	src, srcName, err := readSource(&cf, fs.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s fmt: %v\n", appName, err)
		return 2
	}
	nodes, err := lispkit.ParseProgram(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, lispkit.WrapErrorWithName(err, srcName, src).Error())
		return 1
	}
	for _, n := range nodes {
		fmt.Print(lispkit.FormatPretty(n))
	}
	return 0
}

// -----------------------------------------------------------------------------
// repl
// -----------------------------------------------------------------------------

func cmdRepl(args []string) (ret int) {
	var cf commonFlags
	fs := newFlagSet("repl", &cf)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	fmt.Println(banner)
	lispkit.EnableColor = true

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	mode := lispkit.ModeEval
	opts := cf.options("<repl>")
	opts.Out = &colorErrors{w: os.Stdout}

	for {
		code, ok := readByParseProbe(ln, prompt(mode), promptCont)
		if !ok {
			fmt.Println()
			break
		}
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))

		if strings.HasPrefix(trimmed, ":") {
			if quit := replCommand(trimmed, &mode, &opts); quit {
				return 0
			}
			continue
		}

		// Each input runs in a fresh session; nothing persists between lines.
		s := lispkit.NewSession(opts)
		_ = s.Run(mode, code)
	}
	return 0
}

func prompt(mode lispkit.Mode) string { return mode.String() + "> " }

func replCommand(line string, mode *lispkit.Mode, opts *lispkit.Options) (quit bool) {
	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case ":quit", ":q":
		return true
	case ":help":
		fmt.Println(helpText)
	case ":mode":
		if len(fields) != 2 {
			fmt.Println("usage: :mode eval|secd|compile|exec")
			return false
		}
		m, err := lispkit.ParseMode(fields[1])
		if err != nil {
			fmt.Println(red(err.Error()))
			return false
		}
		*mode = m
	case ":depth":
		var d int
		if len(fields) != 2 {
			fmt.Println("usage: :depth N")
			return false
		}
		if _, err := fmt.Sscan(fields[1], &d); err != nil {
			fmt.Println(red("depth must be a number"))
			return false
		}
		opts.PrintDepth = d
	case ":trace":
		if len(fields) == 2 && fields[1] == "on" {
			opts.Trace = os.Stderr
		} else {
			opts.Trace = nil
		}
	default:
		fmt.Println("unknown command. Type :help for commands.")
	}
	return false
}

// colorErrors paints error lines red on their way to the terminal.
type colorErrors struct{ w io.Writer }

func (c *colorErrors) Write(p []byte) (int, error) {
	s := string(p)
	if strings.HasPrefix(s, "Error in ") || strings.Contains(s, " ERROR ") || strings.HasPrefix(s, "PARSE ERROR") || strings.HasPrefix(s, "LEXICAL ERROR") {
		if _, err := io.WriteString(c.w, red(strings.TrimRight(s, "\n"))+"\n"); err != nil {
			return 0, err
		}
		return len(p), nil
	}
	return c.w.Write(p)
}

func readByParseProbe(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			b.Reset()
			continue
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		_, perr := lispkit.ParseProgram(src)
		if perr != nil && lispkit.IsIncomplete(perr) {
			continue
		}
		return src, true
	}
}
