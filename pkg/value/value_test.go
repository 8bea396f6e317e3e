package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/klfr/sof/pkg/intern"
	"github.com/klfr/sof/pkg/langerr"
	"github.com/klfr/sof/pkg/token"
)

var noSpan = token.Span{}

func TestAddIntInt(t *testing.T) {
	v, err := Add(noSpan, Integer{1}, Integer{2})
	require.NoError(t, err)
	require.Equal(t, Integer{3}, v)
}

func TestAddIntDecimalCoercesToDecimal(t *testing.T) {
	v, err := Add(noSpan, Integer{1}, Decimal{2.5})
	require.NoError(t, err)
	require.Equal(t, Decimal{3.5}, v)
}

func TestAddTypeError(t *testing.T) {
	_, err := Add(noSpan, Integer{1}, Boolean{true})
	require.Error(t, err)
	require.True(t, langerr.IsKind(err, langerr.KindInvalidTypes))
}

func TestDivideByZeroInt(t *testing.T) {
	_, err := Divide(noSpan, Integer{5}, Integer{0})
	require.True(t, langerr.IsKind(err, langerr.KindDivideByZero))
}

func TestDivideByZeroDecimal(t *testing.T) {
	_, err := Divide(noSpan, Decimal{5}, Decimal{0})
	require.True(t, langerr.IsKind(err, langerr.KindDivideByZero))
}

func TestModulusInt(t *testing.T) {
	v, err := Modulus(noSpan, Integer{7}, Integer{3})
	require.NoError(t, err)
	require.Equal(t, Integer{1}, v)
}

// The shift amount is masked to the low 32 bits of the right operand
// (spec.md §4.5), not 5 bits, so shifting by 33 is still a shift by 33.
func TestShiftUsesLow32Bits(t *testing.T) {
	v, err := ShiftLeft(noSpan, Integer{1}, Integer{33})
	require.NoError(t, err)
	require.Equal(t, Integer{8589934592}, v)
}

func TestLogicOps(t *testing.T) {
	v, err := And(noSpan, Boolean{true}, Boolean{false})
	require.NoError(t, err)
	require.Equal(t, Boolean{false}, v)

	v, err = Or(noSpan, Boolean{true}, Boolean{false})
	require.NoError(t, err)
	require.Equal(t, Boolean{true}, v)

	v, err = Xor(noSpan, Boolean{true}, Boolean{true})
	require.NoError(t, err)
	require.Equal(t, Boolean{false}, v)
}

func TestNotTypeError(t *testing.T) {
	_, err := Not(noSpan, Integer{1})
	require.True(t, langerr.IsKind(err, langerr.KindInvalidType))
}

func TestCat(t *testing.T) {
	v, err := Cat(noSpan, String{"foo"}, String{"bar"})
	require.NoError(t, err)
	require.Equal(t, String{"foobar"}, v)
}

func TestCatTypeError(t *testing.T) {
	_, err := Cat(noSpan, String{"foo"}, Integer{1})
	require.True(t, langerr.IsKind(err, langerr.KindInvalidTypes))
}

func TestNumericEqualityCrossKind(t *testing.T) {
	require.True(t, Equal(Integer{4}, Decimal{4.0}))
	require.True(t, Equal(Decimal{4.0}, Integer{4}))
	require.False(t, Equal(Integer{4}, Decimal{4.5}))
}

func TestSentinelsEqualOnlyThemselves(t *testing.T) {
	require.True(t, Equal(ListStart{}, ListStart{}))
	require.True(t, Equal(Curry{}, Curry{}))
	require.False(t, Equal(ListStart{}, Curry{}))
}

func TestMixedKindsUnequal(t *testing.T) {
	require.False(t, Equal(Integer{1}, String{"1"}))
	require.False(t, Equal(Boolean{true}, Integer{1}))
}

func TestListElementwiseEquality(t *testing.T) {
	a := List{Items: []Value{Integer{1}, String{"x"}}}
	b := List{Items: []Value{Integer{1}, String{"x"}}}
	c := List{Items: []Value{Integer{1}, String{"y"}}}
	require.True(t, Equal(a, b))
	require.False(t, Equal(a, c))
}

func TestNametableIdentityEquality(t *testing.T) {
	a := New(NametableGlobal)
	b := New(NametableGlobal)
	require.True(t, Equal(a, a))
	require.False(t, Equal(a, b))
}

func TestCompareOrdersNumerically(t *testing.T) {
	o, err := Compare(noSpan, Integer{1}, Integer{2})
	require.NoError(t, err)
	require.Equal(t, Less, o)

	o, err = Compare(noSpan, Decimal{3}, Integer{2})
	require.NoError(t, err)
	require.Equal(t, Greater, o)

	o, err = Compare(noSpan, Integer{2}, Decimal{2.0})
	require.NoError(t, err)
	require.Equal(t, EqualOrder, o)
}

func TestCompareNaNIsIncomparable(t *testing.T) {
	_, err := Compare(noSpan, Decimal{math.NaN()}, Integer{1})
	require.True(t, langerr.IsKind(err, langerr.KindIncomparable))
}

func TestCompareIncomparableTypes(t *testing.T) {
	_, err := Compare(noSpan, String{"a"}, Integer{1})
	require.True(t, langerr.IsKind(err, langerr.KindIncomparable))
}

func TestNametableDefineAndLookupLocal(t *testing.T) {
	nt := New(NametableFunction)
	name := intern.Intern("x")
	nt.Define(name, Integer{42})
	v, ok := nt.LookupLocal(name)
	require.True(t, ok)
	require.Equal(t, Integer{42}, v)
}

func TestNametableReturnValue(t *testing.T) {
	nt := New(NametableFunction)
	_, ok := nt.TakeReturnValue()
	require.False(t, ok)
	nt.SetReturnValue(Integer{7})
	v, ok := nt.TakeReturnValue()
	require.True(t, ok)
	require.Equal(t, Integer{7}, v)
}
