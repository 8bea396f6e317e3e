package native

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/klfr/sof/pkg/langerr"
	"github.com/klfr/sof/pkg/token"
	"github.com/klfr/sof/pkg/value"
)

// fakeStack is a minimal Popper for registry tests, independent of
// pkg/stack so this package stays a leaf in the import graph.
type fakeStack struct {
	values []value.Value
}

func (f *fakeStack) Push(v value.Value) { f.values = append(f.values, v) }

func (f *fakeStack) Pop(span token.Span) (value.Value, error) {
	if len(f.values) == 0 {
		return nil, langerr.MissingValue(span)
	}
	v := f.values[len(f.values)-1]
	f.values = f.values[:len(f.values)-1]
	return v, nil
}

func TestRegisterAndCallSingleArity(t *testing.T) {
	r := NewRegistry()
	r.Register("double", 1, func(args []value.Value) (value.Value, error) {
		i := args[0].(value.Integer)
		return value.Integer{Value: i.Value * 2}, nil
	})
	s := &fakeStack{values: []value.Value{value.Integer{Value: 21}}}
	require.NoError(t, r.Call(s, token.Span{}, "double"))
	require.Equal(t, value.Integer{Value: 42}, s.values[len(s.values)-1])
}

func TestCallPreservesArgumentOrder(t *testing.T) {
	r := NewRegistry()
	var seen []value.Value
	r.Register("pair", 2, func(args []value.Value) (value.Value, error) {
		seen = args
		return nil, nil
	})
	s := &fakeStack{values: []value.Value{value.Integer{Value: 1}, value.Integer{Value: 2}}}
	require.NoError(t, r.Call(s, token.Span{}, "pair"))
	require.Equal(t, value.Integer{Value: 1}, seen[0])
	require.Equal(t, value.Integer{Value: 2}, seen[1])
}

func TestUnknownNativeFunction(t *testing.T) {
	r := NewRegistry()
	err := r.Call(&fakeStack{}, token.Span{}, "nope")
	require.True(t, langerr.IsKind(err, langerr.KindUnknownNativeFunction))
}

func TestConvertIntFromString(t *testing.T) {
	v, err := convertInt([]value.Value{value.String{Value: "42"}})
	require.NoError(t, err)
	require.Equal(t, value.Integer{Value: 42}, v)
}

func TestConvertIntFromDecimalTruncates(t *testing.T) {
	v, err := convertInt([]value.Value{value.Decimal{Value: 3.9}})
	require.NoError(t, err)
	require.Equal(t, value.Integer{Value: 3}, v)
}

func TestConvertFloatFromBool(t *testing.T) {
	v, err := convertFloat([]value.Value{value.Boolean{Value: true}})
	require.NoError(t, err)
	require.Equal(t, value.Decimal{Value: 1}, v)
}

func TestConvertStringInspectsValue(t *testing.T) {
	v, err := convertString([]value.Value{value.Integer{Value: 7}})
	require.NoError(t, err)
	require.Equal(t, value.String{Value: "7"}, v)
}

func TestHashBlake2bIsDeterministic(t *testing.T) {
	a, err := hashBlake2b([]value.Value{value.String{Value: "sof"}})
	require.NoError(t, err)
	b, err := hashBlake2b([]value.Value{value.String{Value: "sof"}})
	require.NoError(t, err)
	require.Equal(t, a, b)

	c, err := hashBlake2b([]value.Value{value.String{Value: "different"}})
	require.NoError(t, err)
	require.NotEqual(t, a, c)
}

func TestRegisterPreambleWiresAllFour(t *testing.T) {
	r := NewRegistry()
	RegisterPreamble(r)
	require.Len(t, r.functions, 4)
}
