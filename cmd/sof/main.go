// Command sof is the SOF interpreter's entry point: it loads an optional
// .env file, resolves a handful of environment variables and flags into an
// Engine, and runs either a source file or an inline command string
// (spec.md §6.2). Flag parsing itself uses only the standard library's flag
// package, never a third-party arg parser: argument parsing is explicitly
// out of scope for the specification, so the surface here is deliberately
// the bare minimum needed to drive the engine.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/klfr/sof/pkg/engine"
	"github.com/klfr/sof/pkg/sof"
)

func main() {
	// Loaded before flags are even defined, same as the teacher's own
	// interpreter entry point: a local .env can set SOF_LIB_ROOT et al.
	// without requiring them on the invoking shell.
	_ = godotenv.Load()

	libRoot := envOr("SOF_LIB_ROOT", ".")
	var (
		command     = flag.String("c", "", "run this command string instead of a file")
		interactive = flag.Bool("i", false, "read-eval-print loop (line-at-a-time; no history or multi-line editing)")
		libRootFlag = flag.String("l", libRoot, "standard-library root directory (default: $SOF_LIB_ROOT or \".\")")
		debugOpts   sof.DebugOptions
	)
	flag.Var(&debugOpts, "D", "debug option `key=value` (log=off|self-debug|all-debug|trace, export-snapshot=path); repeatable")
	flag.Var(&debugOpts, "debug-opt", "long form of -D")
	flag.Parse()

	if envLevel := os.Getenv("SOF_LOG_LEVEL"); envLevel != "" && debugOpts.LogLevel == engine.LogOff {
		if err := debugOpts.Set("log=" + envLevel); err != nil {
			fail(err)
		}
	}
	if err := debugOpts.ValidateSnapshot(); err != nil {
		fail(err)
	}

	e, err := engine.New(*libRootFlag, os.Stdout, os.Stdin)
	if err != nil {
		fail(fmt.Errorf("sof: failed to start engine: %w", err))
	}
	if debugOpts.LogLevel != engine.LogOff {
		e.SetLogLevel(debugOpts.LogLevel, os.Stderr)
	}
	if threshold := os.Getenv("SOF_GC_DEBT_THRESHOLD"); threshold != "" {
		n, err := strconv.ParseUint(threshold, 10, 64)
		if err != nil {
			fail(fmt.Errorf("sof: invalid SOF_GC_DEBT_THRESHOLD %q: %w", threshold, err))
		}
		e.SetGCDebtThreshold(n)
	}

	switch {
	case *command != "":
		runSource(e, "<command>", *command)
	case *interactive:
		// A real REPL needs line-editing (history, multi-line blocks) that
		// spec.md names out of scope; this is a minimal line-at-a-time
		// fallback so -i isn't simply a dead flag.
		runREPL(e)
	case flag.NArg() == 1:
		path := flag.Arg(0)
		content, err := os.ReadFile(path)
		if err != nil {
			fail(fmt.Errorf("sof: cannot read %s: %w", path, err))
		}
		runSource(e, path, string(content))
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func runSource(e *engine.Engine, path, source string) {
	if err := e.Execute(path, source); err != nil {
		fail(err)
	}
}

func runREPL(e *engine.Engine) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if err := e.Execute("<repl>", line); err != nil {
			fmt.Fprintf(os.Stderr, "sof: %v\n", err)
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "sof: %v\n", err)
	os.Exit(1)
}
