package engine

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/klfr/sof/pkg/intern"
	"github.com/klfr/sof/pkg/langerr"
	"github.com/klfr/sof/pkg/value"
)

func newTestEngine(t *testing.T) (*Engine, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	e, err := New(t.TempDir(), &out, strings.NewReader(""))
	require.NoError(t, err)
	return e, &out
}

func TestArithmeticAndWrite(t *testing.T) {
	e, out := newTestEngine(t)
	require.NoError(t, e.Execute("<test>", "2 3 + writeln"))
	require.Equal(t, "5\n", out.String())
}

// The factorial body calls itself with `::` (two Call tokens), not the
// single dot the table in the write-up shows: a single dot after an
// identifier only resolves and pushes (LookupName), it never invokes. The
// body ends with `return` because values a function body leaves on the
// stack are discarded when its nametable is popped.
func TestRecursiveFactorialViaIfelse(t *testing.T) {
	e, out := newTestEngine(t)
	src := `{ dup 0 = { pop 1 } { dup 1 - fact :: * } ifelse return } 1 function fact def 5 fact :: writeln`
	require.NoError(t, e.Execute("<test>", src))
	require.Equal(t, "120\n", out.String())
}

// `;` re-pushes the receiver before dispatch, so the list survives beneath
// the returned length without needing a `dup`.
func TestListLengthViaMethodCall(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.Execute("<test>", "[ 1 2 3 4 ] length ;"))
	top, ok := e.V.RawPeek()
	require.True(t, ok)
	require.Equal(t, value.Integer{Value: 4}, top)
}

func TestAssertSuccessAndFailure(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.Execute("<test>", "true assert"))

	e2, _ := newTestEngine(t)
	err := e2.Execute("<test>", "false assert")
	require.Error(t, err)
	require.True(t, langerr.IsKind(err, langerr.KindAssertionFailed))
}

// The loop body relies on the compound-assignment rule (an unresolved
// identifier operand to an arithmetic op is looked up, combined, and
// rebound in the top nametable) to do the whole "read i, add 1, store i"
// in one step; a trailing `i globaldef` would have nothing left on the
// stack to pair with. The condition looks i up explicitly (`i .`) for the
// same reason the switch tests do: a bare `i` before `<` would be rebound
// instead of compared.
func TestWhileLoopCountsToTen(t *testing.T) {
	e, _ := newTestEngine(t)
	src := `0 i globaldef { i . 10 < } { i 1 + } while`
	require.NoError(t, e.Execute("<test>", src))
	got, ok := e.V.GlobalNametable().LookupLocal(intern.Intern("i"))
	require.True(t, ok)
	require.Equal(t, value.Integer{Value: 10}, got)
}

// `dowhile` pops its operands with the same convention as `while` (body on
// top, conditional below), so the conditional block is written first in
// source even though the body runs first at execution time.
func TestDoWhileRunsBodyAtLeastOnce(t *testing.T) {
	e, _ := newTestEngine(t)
	src := `0 i globaldef { false } { i 1 + } dowhile`
	require.NoError(t, e.Execute("<test>", src))
	got, ok := e.V.GlobalNametable().LookupLocal(intern.Intern("i"))
	require.True(t, ok)
	require.Equal(t, value.Integer{Value: 1}, got)
}

func TestReturnEscapesFunctionWithoutRunningTrailingCode(t *testing.T) {
	e, _ := newTestEngine(t)
	src := `{ 42 return 99 } 0 function f def f ::`
	require.NoError(t, e.Execute("<test>", src))
	top, ok := e.V.RawPeek()
	require.True(t, ok)
	require.Equal(t, value.Integer{Value: 42}, top)
}

// `if` pops condition then callable, so the callable block is written
// before the condition in source.
func TestReturnInsideNestedBlockEscapesEnclosingFunction(t *testing.T) {
	e, _ := newTestEngine(t)
	src := `{ { 7 return } true if 13 } 0 function f def f ::`
	require.NoError(t, e.Execute("<test>", src))
	top, ok := e.V.RawPeek()
	require.True(t, ok)
	require.Equal(t, value.Integer{Value: 7}, top)
}

// Binding the partial application to a name and invoking it with `::` is
// what lets the remaining argument reach the stack before the call, the
// same convention a fully-applied function call uses. The sum leaves the
// function through `return`.
func TestCurryingBindsArgumentsBeforeFullInvocation(t *testing.T) {
	e, out := newTestEngine(t)
	src := `{ + + return } 3 function add3 def
| 1 2 add3 :: curried def
3 curried :: writeln`
	require.NoError(t, e.Execute("<test>", src))
	require.Equal(t, "6\n", out.String())
}

// Re-currying prepends newly-supplied arguments to the already-bound list
// (spec.md §4.7.4/§9, original_source's insert_many at index 0), and full
// application re-pushes the stored arguments on top of the stack rather than
// inserting them below the explicit remaining argument (stackable.rs's
// push loop). A commutative body can't tell these apart, so this uses
// writeln three times over a non-commutative sequence of distinct values to
// pin down the exact resulting order.
func TestCurryingAccumulatesAndReappliesInOrder(t *testing.T) {
	e, out := newTestEngine(t)
	src := `{ writeln writeln writeln } 3 function show def
| 10 show :: step1 def
| 20 step1 :: step2 def
30 step2 ::`
	require.NoError(t, e.Execute("<test>", src))
	require.Equal(t, "10\n20\n30\n", out.String())
}

// Each case pair is popped conditional-first, body-second (grounded on
// original_source's interpreter.rs), so in source the body block is
// written before its conditional block within a pair; the case nearest the
// `switch` keyword is tried first. The conditional blocks look the
// scrutinee up explicitly (`n .`) rather than naming it bare, since a bare
// identifier operand to `=` would trigger the compound-assignment rebind
// instead of producing a comparison result.
func TestSwitchDispatchesFirstMatchingCase(t *testing.T) {
	e, out := newTestEngine(t)
	src := `2 n globaldef switch::
		{ "one" writeln } { n . 1 = }
		{ "two" writeln } { n . 2 = }
		{ "other" writeln }
		switch`
	require.NoError(t, e.Execute("<test>", src))
	require.Equal(t, "two\n", out.String())
}

func TestSwitchFallsToDefaultWhenNoCaseMatches(t *testing.T) {
	e, out := newTestEngine(t)
	src := `9 n globaldef switch::
		{ "one" writeln } { n . 1 = }
		{ "two" writeln } { n . 2 = }
		{ "other" writeln }
		switch`
	require.NoError(t, e.Execute("<test>", src))
	require.Equal(t, "other\n", out.String())
}

func TestSwitchWithNoCasesFallsToDefault(t *testing.T) {
	e, out := newTestEngine(t)
	src := `switch:: { "default only" writeln } switch`
	require.NoError(t, e.Execute("<test>", src))
	require.Equal(t, "default only\n", out.String())
}

func TestModuleExportIsVisibleAfterUse(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, writeModuleFile(dir, "greeting.sof", `"hello" greeting def greeting export`))

	var out bytes.Buffer
	e, err := New(dir, &out, strings.NewReader(""))
	require.NoError(t, err)
	require.NoError(t, e.Execute("<test>", `"greeting" use greeting . writeln`))
	require.Equal(t, "hello\n", out.String())
}

func TestModuleDexportDefinesAndExportsInOneStep(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, writeModuleFile(dir, "answer.sof", `42 answer dexport`))

	var out bytes.Buffer
	e, err := New(dir, &out, strings.NewReader(""))
	require.NoError(t, err)
	require.NoError(t, e.Execute("<test>", `"answer" use answer . writeln`))
	require.Equal(t, "42\n", out.String())
}

func writeModuleFile(dir, name, body string) error {
	return os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644)
}
