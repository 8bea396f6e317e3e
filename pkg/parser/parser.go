// Package parser flattens the lexical token stream into a nested token
// tree (spec.md §4.3): code blocks between matching '{'/'}' become
// token.CodeBlock values, and `::` is desugared into two adjacent Call
// commands sharing one span. Unlike the teacher's pkg/parser/parser.go
// (which builds an expression-precedence AST), SOF has no expression
// grammar: parsing here is a single left-to-right pass with one stack of
// in-progress code blocks, matching the flat, order-preserving nature of a
// concatenative language.
package parser

import (
	"fmt"

	"github.com/klfr/sof/pkg/langerr"
	"github.com/klfr/sof/pkg/lexer"
	"github.com/klfr/sof/pkg/token"
)

// Parser consumes a Lexer's output and produces a token tree. It never
// recovers from an error: the first one encountered is returned.
type Parser struct {
	lex *lexer.Lexer
}

// New constructs a Parser reading from source.
func New(source string) *Parser {
	return &Parser{lex: lexer.New(source)}
}

// Parse lexes and parses source in one call.
func Parse(source string) ([]token.Token, error) {
	return New(source).ParseProgram()
}

// ParseProgram parses the whole input as a top-level token sequence (no
// enclosing code block).
func (p *Parser) ParseProgram() ([]token.Token, error) {
	var out []token.Token
	for {
		lx, err := p.lex.Next()
		if err != nil {
			return nil, err
		}
		if lx.Kind == lexer.KindEOF {
			return out, nil
		}
		if lx.Kind == lexer.KindRBrace {
			return nil, langerr.UnclosedCodeBlock(lx.Span, nil)
		}
		toks, err := p.convert(lx)
		if err != nil {
			return nil, err
		}
		out = append(out, toks...)
	}
}

// parseBlock consumes tokens after an opening '{' (whose span is openSpan)
// until the matching '}', returning the finished CodeBlock token.
func (p *Parser) parseBlock(openSpan token.Span) (token.Token, error) {
	var body []token.Token
	var lastSeen *token.Span
	for {
		lx, err := p.lex.Next()
		if err != nil {
			return token.Token{}, err
		}
		if lx.Kind == lexer.KindEOF {
			return token.Token{}, langerr.UnclosedCodeBlock(openSpan, lastSeen)
		}
		if lx.Kind == lexer.KindRBrace {
			full := openSpan.Cover(lx.Span)
			return token.New(token.CodeBlock{Body: body}, full), nil
		}
		toks, err := p.convert(lx)
		if err != nil {
			return token.Token{}, err
		}
		body = append(body, toks...)
		sp := lx.Span
		lastSeen = &sp
	}
}

// convert maps one non-brace, non-EOF lexical token to the one or two
// structured tokens it produces (`::` yields two).
func (p *Parser) convert(lx lexer.Lexical) ([]token.Token, error) {
	switch lx.Kind {
	case lexer.KindLBrace:
		block, err := p.parseBlock(lx.Span)
		if err != nil {
			return nil, err
		}
		return []token.Token{block}, nil
	case lexer.KindDoubleCall:
		call := token.New(token.Command{Op: token.OpCall}, lx.Span)
		return []token.Token{call, call}, nil
	case lexer.KindInteger:
		return []token.Token{token.New(token.Integer{Value: lx.Int}, lx.Span)}, nil
	case lexer.KindDecimal:
		return []token.Token{token.New(token.Decimal{Value: lx.Float}, lx.Span)}, nil
	case lexer.KindBoolean:
		return []token.Token{token.New(token.Boolean{Value: lx.Bool}, lx.Span)}, nil
	case lexer.KindString:
		return []token.Token{token.New(token.String{Value: lx.Str}, lx.Span)}, nil
	case lexer.KindIdentifier:
		return []token.Token{token.New(token.Identifier{Name: lx.Ident}, lx.Span)}, nil
	case lexer.KindListStart:
		return []token.Token{token.New(token.ListStart{}, lx.Span)}, nil
	case lexer.KindCurry:
		return []token.Token{token.New(token.Curry{}, lx.Span)}, nil
	case lexer.KindCreateList:
		return []token.Token{token.New(token.Command{Op: token.OpCreateList}, lx.Span)}, nil
	case lexer.KindCommand:
		return []token.Token{token.New(token.Command{Op: lx.Op}, lx.Span)}, nil
	case lexer.KindRBrace:
		return nil, langerr.UnclosedCodeBlock(lx.Span, nil)
	default:
		return nil, fmt.Errorf("parser: unhandled lexical kind %d", lx.Kind)
	}
}
