// Command sof-trace runs a file with the engine's most verbose log level
// enabled, so every token it executes is reported on stderr while the
// program's own output goes to stdout undisturbed. Grounded on the
// teacher's cmd/debug_vm/main.go (run a hardcoded program, dump machine
// state), adapted to take a real file argument and to dump an execution
// trace instead of bytecode, since this engine never compiles to bytecode.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/klfr/sof/pkg/engine"
)

func main() {
	libRoot := flag.String("l", ".", "standard-library root directory")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [-l libroot] <file.sof>\n", os.Args[0])
		os.Exit(2)
	}
	path := flag.Arg(0)
	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sof-trace: %v\n", err)
		os.Exit(1)
	}

	e, err := engine.New(*libRoot, os.Stdout, os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sof-trace: failed to start engine: %v\n", err)
		os.Exit(1)
	}
	e.SetLogLevel(engine.LogTrace, os.Stderr)

	if err := e.Execute(path, string(content)); err != nil {
		fmt.Fprintf(os.Stderr, "sof-trace: %v\n", err)
		os.Exit(1)
	}
}
