// Command sof-parse parses a file into its token tree and prints it
// indented by nesting depth, one token per line. Grounded on the teacher's
// cmd/debug_parser/main.go (parse, report errors, print the tree) but
// without an AST String() method to lean on: SOF's parser produces a token
// tree, not an expression tree, so this walks it directly.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/klfr/sof/pkg/parser"
	"github.com/klfr/sof/pkg/token"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <file.sof>\n", os.Args[0])
		os.Exit(2)
	}
	content, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "sof-parse: %v\n", err)
		os.Exit(1)
	}

	tokens, err := parser.Parse(string(content))
	if err != nil {
		fmt.Fprintf(os.Stderr, "sof-parse: %v\n", err)
		os.Exit(1)
	}
	printTree(tokens, 0)
}

func printTree(tokens []token.Token, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, tok := range tokens {
		fmt.Printf("%s%s %s\n", indent, tok.Span, describe(tok.Inner))
		if block, ok := tok.Inner.(token.CodeBlock); ok {
			printTree(block.Body, depth+1)
		}
	}
}

func describe(inner token.Inner) string {
	switch t := inner.(type) {
	case token.Integer:
		return fmt.Sprintf("Integer(%d)", t.Value)
	case token.Decimal:
		return fmt.Sprintf("Decimal(%g)", t.Value)
	case token.Boolean:
		return fmt.Sprintf("Boolean(%t)", t.Value)
	case token.String:
		return fmt.Sprintf("String(%q)", t.Value)
	case token.Identifier:
		return fmt.Sprintf("Identifier(%s)", t.Name)
	case token.ListStart:
		return "ListStart"
	case token.Curry:
		return "Curry"
	case token.Command:
		return fmt.Sprintf("Command(%s)", t.Op)
	case token.CodeBlock:
		return "CodeBlock"
	default:
		return inner.Kind().String()
	}
}
