package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/klfr/sof/pkg/langerr"
	"github.com/klfr/sof/pkg/token"
)

func TestParseFlatSequence(t *testing.T) {
	toks, err := Parse("1 2 + write")
	require.NoError(t, err)
	require.Len(t, toks, 4)
	require.Equal(t, token.KindInteger, toks[0].Inner.Kind())
	require.Equal(t, token.KindInteger, toks[1].Inner.Kind())
	require.Equal(t, token.KindCommand, toks[2].Inner.Kind())
	require.Equal(t, token.OpAdd, toks[2].Inner.(token.Command).Op)
	require.Equal(t, token.KindCommand, toks[3].Inner.Kind())
}

func TestParseNestedCodeBlock(t *testing.T) {
	toks, err := Parse("{ 1 2 + } function")
	require.NoError(t, err)
	require.Len(t, toks, 2)

	require.Equal(t, token.KindCodeBlock, toks[0].Inner.Kind())
	block := toks[0].Inner.(token.CodeBlock)
	require.Len(t, block.Body, 3)

	require.Equal(t, token.KindCommand, toks[1].Inner.Kind())
	require.Equal(t, token.OpFunction, toks[1].Inner.(token.Command).Op)
}

func TestParseDoubleNestedCodeBlock(t *testing.T) {
	toks, err := Parse("{ { 1 } if }")
	require.NoError(t, err)
	require.Len(t, toks, 1)

	outer := toks[0].Inner.(token.CodeBlock)
	require.Len(t, outer.Body, 2)
	require.Equal(t, token.KindCodeBlock, outer.Body[0].Inner.Kind())
}

func TestParseDoubleCallDesugars(t *testing.T) {
	toks, err := Parse("greet ::")
	require.NoError(t, err)
	require.Len(t, toks, 3)
	require.Equal(t, token.KindIdentifier, toks[0].Inner.Kind())
	require.Equal(t, token.KindCommand, toks[1].Inner.Kind())
	require.Equal(t, token.OpCall, toks[1].Inner.(token.Command).Op)
	require.Equal(t, token.KindCommand, toks[2].Inner.Kind())
	require.Equal(t, token.OpCall, toks[2].Inner.(token.Command).Op)
	require.Equal(t, toks[1].Span, toks[2].Span)
}

func TestParseUnclosedCodeBlockAtEOF(t *testing.T) {
	_, err := Parse("{ 1 2")
	require.Error(t, err)
	require.True(t, langerr.IsKind(err, langerr.KindUnclosedCodeBlock))
}

func TestParseStrayClosingBrace(t *testing.T) {
	_, err := Parse("1 2 }")
	require.Error(t, err)
	require.True(t, langerr.IsKind(err, langerr.KindUnclosedCodeBlock))
}

func TestParseCodeBlockSpanCoversBraces(t *testing.T) {
	toks, err := Parse("{ 1 }")
	require.NoError(t, err)
	require.Len(t, toks, 1)
	require.Equal(t, 0, toks[0].Span.Offset)
	require.Equal(t, 5, toks[0].Span.End())
}

func TestParseListLiteral(t *testing.T) {
	toks, err := Parse("[ 1 2 3 ]")
	require.NoError(t, err)
	require.Len(t, toks, 5)
	require.Equal(t, token.KindListStart, toks[0].Inner.Kind())
	require.Equal(t, token.KindCommand, toks[4].Inner.Kind())
	require.Equal(t, token.OpCreateList, toks[4].Inner.(token.Command).Op)
}

func TestParseCurryMarker(t *testing.T) {
	toks, err := Parse("add 1 |")
	require.NoError(t, err)
	require.Len(t, toks, 3)
	require.Equal(t, token.KindCurry, toks[2].Inner.Kind())
}

func TestParsePropagatesLexError(t *testing.T) {
	_, err := Parse(`"unterminated`)
	require.Error(t, err)
	require.True(t, langerr.IsKind(err, langerr.KindUnclosedString))
}
