package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/klfr/sof/pkg/langerr"
)

func TestNextBasics(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Kind
	}{
		{"integer", "42", KindInteger},
		{"negative integer", "-42", KindInteger},
		{"hex integer", "0x1F", KindInteger},
		{"binary integer", "0b101", KindInteger},
		{"octal integer", "0o17", KindInteger},
		{"decimal", "3.5", KindDecimal},
		{"negative decimal", "-3.5", KindDecimal},
		{"true literal", "TRUE", KindBoolean},
		{"false literal", "false", KindBoolean},
		{"string", `"hi"`, KindString},
		{"identifier", "foo", KindIdentifier},
		{"keyword case-insensitive", "DeF", KindCommand},
		{"list start", "[ ", KindListStart},
		{"create list", "] ", KindCreateList},
		{"curry", "| ", KindCurry},
		{"lbrace", "{ ", KindLBrace},
		{"rbrace", "} ", KindRBrace},
		{"double call", "::", KindDoubleCall},
		{"plus op", "+ ", KindCommand},
		{"shift right", ">>", KindCommand},
		{"shift left", "<<", KindCommand},
		{"ge", ">=", KindCommand},
		{"le", "<=", KindCommand},
		{"ne", "/=", KindCommand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lx, err := New(tt.input).Next()
			require.NoError(t, err)
			require.Equal(t, tt.want, lx.Kind)
		})
	}
}

func TestKeywordLookup(t *testing.T) {
	lx, err := New("DowHile").Next()
	require.NoError(t, err)
	require.Equal(t, KindCommand, lx.Kind)
}

func TestIdentifierWithContinuationChars(t *testing.T) {
	lx, err := New("my_var's:field ").Next()
	require.NoError(t, err)
	require.Equal(t, KindIdentifier, lx.Kind)
	require.Equal(t, "my_var's:field", lx.Ident.String())
}

func TestLineComment(t *testing.T) {
	toks, err := All("# a comment\n42")
	require.NoError(t, err)
	require.Len(t, toks, 1)
	require.Equal(t, KindInteger, toks[0].Kind)
}

func TestBlockComment(t *testing.T) {
	toks, err := All("#* comment\nspanning lines *# 42")
	require.NoError(t, err)
	require.Len(t, toks, 1)
	require.Equal(t, int64(42), toks[0].Int)
}

func TestStringEscapes(t *testing.T) {
	lx, err := New(`"a\tb\ncA"`).Next()
	require.NoError(t, err)
	require.Equal(t, KindString, lx.Kind)
	require.Equal(t, "a\tb\ncA", lx.Str)
}

func TestUnclosedString(t *testing.T) {
	_, err := New(`"never closed`).Next()
	require.Error(t, err)
	require.True(t, langerr.IsKind(err, langerr.KindUnclosedString))
}

func TestInvalidInteger(t *testing.T) {
	_, err := New("0x").Next()
	require.Error(t, err)
	require.True(t, langerr.IsKind(err, langerr.KindInvalidInteger))
}

func TestBoundaryRuleRequiresWhitespace(t *testing.T) {
	// '[' not followed by whitespace/EOF falls through to number lexing and
	// fails, since '[' is not a valid number-start character.
	_, err := New("[1").Next()
	require.Error(t, err)
}

func TestBoundaryRuleAcceptsEOF(t *testing.T) {
	lx, err := New("]").Next()
	require.NoError(t, err)
	require.Equal(t, KindCreateList, lx.Kind)
}

func TestAllStopsAtFirstError(t *testing.T) {
	_, err := All("1 2 3 \"unterminated")
	require.Error(t, err)
}

func TestSpansAreByteOffsets(t *testing.T) {
	lx, err := New("  42").Next()
	require.NoError(t, err)
	require.Equal(t, 2, lx.Span.Offset)
	require.Equal(t, 4, lx.Span.End())
}
