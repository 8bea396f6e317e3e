package optimizer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/klfr/sof/pkg/intern"
	"github.com/klfr/sof/pkg/parser"
	"github.com/klfr/sof/pkg/token"
)

func mustParse(t *testing.T, src string) []token.Token {
	t.Helper()
	toks, err := parser.Parse(src)
	require.NoError(t, err)
	return toks
}

func TestCombineIDCallsSingle(t *testing.T) {
	toks := mustParse(t, "greet .")
	out := Optimize(toks)
	require.Len(t, out, 1)
	ln, ok := out[0].Inner.(token.LookupName)
	require.True(t, ok)
	require.Equal(t, intern.Intern("greet"), ln.Name)
}

func TestCombineIDCallsDouble(t *testing.T) {
	toks := mustParse(t, "greet ::")
	out := Optimize(toks)
	require.Len(t, out, 1)
	cn, ok := out[0].Inner.(token.CallName)
	require.True(t, ok)
	require.Equal(t, intern.Intern("greet"), cn.Name)
}

func TestCombineLiteralPushes(t *testing.T) {
	toks := mustParse(t, "1 2 3 write")
	out := Optimize(toks)
	require.Len(t, out, 2)
	lits, ok := out[0].Inner.(token.Literals)
	require.True(t, ok)
	require.Len(t, lits.Items, 3)
	require.Equal(t, token.Integer{Value: 1}, lits.Items[0])
	require.Equal(t, token.Integer{Value: 2}, lits.Items[1])
	require.Equal(t, token.Integer{Value: 3}, lits.Items[2])
}

func TestSingleLiteralNotFused(t *testing.T) {
	toks := mustParse(t, "1 write")
	out := Optimize(toks)
	require.Len(t, out, 2)
	require.Equal(t, token.KindInteger, out[0].Inner.Kind())
}

func TestOptimizeRecursesIntoCodeBlocks(t *testing.T) {
	toks := mustParse(t, "{ 1 2 3 } function")
	out := Optimize(toks)
	require.Len(t, out, 2)
	block := out[0].Inner.(token.CodeBlock)
	require.Len(t, block.Body, 1)
	require.Equal(t, token.KindLiterals, block.Body[0].Inner.Kind())
}

func TestOptimizeIdempotent(t *testing.T) {
	toks := mustParse(t, "{ greet:: } 1 2 3 write if")
	once := Optimize(toks)
	twice := Optimize(once)
	require.Equal(t, once, twice)
}

func TestCombineLiteralPushesPreservesOrder(t *testing.T) {
	toks := mustParse(t, `1 "two" true`)
	out := Optimize(toks)
	require.Len(t, out, 1)
	lits := out[0].Inner.(token.Literals)
	require.Equal(t, token.Integer{Value: 1}, lits.Items[0])
	require.Equal(t, token.String{Value: "two"}, lits.Items[1])
	require.Equal(t, token.Boolean{Value: true}, lits.Items[2])
}
