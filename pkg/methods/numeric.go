package methods

import (
	"math"

	"github.com/klfr/sof/pkg/token"
	"github.com/klfr/sof/pkg/value"
)

// spec.md §4.11 only spells out the list methods in full ("illustrative
// contents; a concrete engine must implement these"); it leaves the
// primitive-kind tables open. The resolution here keeps them small and
// symmetric with the conversion natives in pkg/native/preamble.go rather
// than inventing a parallel numeric API: each primitive kind gets an
// "abs"/"tofloat"/"toint"-shaped method set plus whatever its kind already
// implies (sign, negation, string length).

var integerMethods = map[string]Func{
	"abs":     integerAbs,
	"tofloat": integerToFloat,
	"sign":    integerSign,
}

func integerAbs(receiver value.Value, s Stack, span token.Span) (value.Value, error) {
	i := receiver.(value.Integer)
	if i.Value < 0 {
		return value.Integer{Value: -i.Value}, nil
	}
	return i, nil
}

func integerToFloat(receiver value.Value, s Stack, span token.Span) (value.Value, error) {
	i := receiver.(value.Integer)
	return value.Decimal{Value: float64(i.Value)}, nil
}

func integerSign(receiver value.Value, s Stack, span token.Span) (value.Value, error) {
	i := receiver.(value.Integer)
	switch {
	case i.Value < 0:
		return value.Integer{Value: -1}, nil
	case i.Value > 0:
		return value.Integer{Value: 1}, nil
	default:
		return value.Integer{Value: 0}, nil
	}
}

var decimalMethods = map[string]Func{
	"abs":     decimalAbs,
	"toint":   decimalToInt,
	"floor":   decimalFloor,
	"ceil":    decimalCeil,
	"isnan":   decimalIsNaN,
	"isinf":   decimalIsInf,
}

func decimalAbs(receiver value.Value, s Stack, span token.Span) (value.Value, error) {
	d := receiver.(value.Decimal)
	return value.Decimal{Value: math.Abs(d.Value)}, nil
}

func decimalToInt(receiver value.Value, s Stack, span token.Span) (value.Value, error) {
	d := receiver.(value.Decimal)
	return value.Integer{Value: int64(d.Value)}, nil
}

func decimalFloor(receiver value.Value, s Stack, span token.Span) (value.Value, error) {
	d := receiver.(value.Decimal)
	return value.Decimal{Value: math.Floor(d.Value)}, nil
}

func decimalCeil(receiver value.Value, s Stack, span token.Span) (value.Value, error) {
	d := receiver.(value.Decimal)
	return value.Decimal{Value: math.Ceil(d.Value)}, nil
}

func decimalIsNaN(receiver value.Value, s Stack, span token.Span) (value.Value, error) {
	d := receiver.(value.Decimal)
	return value.Boolean{Value: math.IsNaN(d.Value)}, nil
}

func decimalIsInf(receiver value.Value, s Stack, span token.Span) (value.Value, error) {
	d := receiver.(value.Decimal)
	return value.Boolean{Value: math.IsInf(d.Value, 0)}, nil
}

var booleanMethods = map[string]Func{
	"negate": booleanNegate,
}

func booleanNegate(receiver value.Value, s Stack, span token.Span) (value.Value, error) {
	b := receiver.(value.Boolean)
	return value.Boolean{Value: !b.Value}, nil
}
