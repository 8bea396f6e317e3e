// Command sof-tokens lexes a file and prints every raw lexical token with
// its source span, one per line. Grounded on the teacher's
// cmd/debug_tokens/main.go, adapted to the Lexer.Next()/Lexical shape
// pkg/lexer exposes instead of the teacher's NextToken()/token.EOF loop.
package main

import (
	"fmt"
	"os"

	"github.com/klfr/sof/pkg/lexer"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <file.sof>\n", os.Args[0])
		os.Exit(2)
	}
	content, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "sof-tokens: %v\n", err)
		os.Exit(1)
	}

	l := lexer.New(string(content))
	for {
		tok, err := l.Next()
		if err != nil {
			fmt.Fprintf(os.Stderr, "sof-tokens: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%-14s %-10s %s\n", kindName(tok.Kind), tok.Span, payload(tok))
		if tok.Kind == lexer.KindEOF {
			break
		}
	}
}

func kindName(k lexer.Kind) string {
	switch k {
	case lexer.KindEOF:
		return "EOF"
	case lexer.KindInteger:
		return "Integer"
	case lexer.KindDecimal:
		return "Decimal"
	case lexer.KindBoolean:
		return "Boolean"
	case lexer.KindString:
		return "String"
	case lexer.KindIdentifier:
		return "Identifier"
	case lexer.KindListStart:
		return "ListStart"
	case lexer.KindCurry:
		return "Curry"
	case lexer.KindCreateList:
		return "CreateList"
	case lexer.KindLBrace:
		return "LBrace"
	case lexer.KindRBrace:
		return "RBrace"
	case lexer.KindCommand:
		return "Command"
	case lexer.KindDoubleCall:
		return "DoubleCall"
	default:
		return "?"
	}
}

func payload(tok lexer.Lexical) string {
	switch tok.Kind {
	case lexer.KindInteger:
		return fmt.Sprintf("%d", tok.Int)
	case lexer.KindDecimal:
		return fmt.Sprintf("%g", tok.Float)
	case lexer.KindBoolean:
		return fmt.Sprintf("%t", tok.Bool)
	case lexer.KindString:
		return fmt.Sprintf("%q", tok.Str)
	case lexer.KindIdentifier:
		return tok.Ident.String()
	case lexer.KindCommand:
		return tok.Op.String()
	default:
		return ""
	}
}
