// Package value implements SOF's tagged value sum (spec.md §3.2) and the
// scope frame (Nametable, spec.md §3.3) that several of its variants close
// over. The two live in one package, not the two the component table
// implies, because Function.DefiningGlobals and the Nametable value variant
// each need the other's concrete type — a cycle the teacher resolves the
// same way by keeping its Object and Environment types in one eval package.
// pkg/nametable is a thin facade over the Nametable type defined here.
package value

import (
	"fmt"
	"math"

	"github.com/klfr/sof/pkg/intern"
	"github.com/klfr/sof/pkg/langerr"
	"github.com/klfr/sof/pkg/token"
)

// Kind discriminates a Value's variant (mirrors the teacher's ObjectKind).
type Kind uint8

const (
	KindInteger Kind = iota
	KindDecimal
	KindBoolean
	KindIdentifier
	KindString
	KindCodeBlock
	KindFunction
	KindCurriedFunction
	KindBuiltinMethod
	KindObject
	KindList
	KindNametable
	KindListStart
	KindCurry
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "Integer"
	case KindDecimal:
		return "Decimal"
	case KindBoolean:
		return "Boolean"
	case KindIdentifier:
		return "Identifier"
	case KindString:
		return "String"
	case KindCodeBlock:
		return "CodeBlock"
	case KindFunction:
		return "Function"
	case KindCurriedFunction:
		return "CurriedFunction"
	case KindBuiltinMethod:
		return "BuiltinMethod"
	case KindObject:
		return "Object"
	case KindList:
		return "List"
	case KindNametable:
		return "Nametable"
	case KindListStart:
		return "ListStart"
	case KindCurry:
		return "Curry"
	default:
		return "<unknown value kind>"
	}
}

// Value is the interface every stackable SOF value implements.
type Value interface {
	Kind() Kind
	Inspect() string
}

// --- primitives --------------------------------------------------------

type Integer struct{ Value int64 }

func (Integer) Kind() Kind           { return KindInteger }
func (i Integer) Inspect() string    { return fmt.Sprintf("%d", i.Value) }

type Decimal struct{ Value float64 }

func (Decimal) Kind() Kind        { return KindDecimal }
func (d Decimal) Inspect() string { return fmt.Sprintf("%g", d.Value) }

type Boolean struct{ Value bool }

func (Boolean) Kind() Kind        { return KindBoolean }
func (b Boolean) Inspect() string { return fmt.Sprintf("%t", b.Value) }

type Identifier struct{ Name intern.Identifier }

func (Identifier) Kind() Kind        { return KindIdentifier }
func (i Identifier) Inspect() string { return i.Name.String() }

type String struct{ Value string }

func (String) Kind() Kind        { return KindString }
func (s String) Inspect() string { return s.Value }

// --- sentinels ---------------------------------------------------------

type ListStart struct{}

func (ListStart) Kind() Kind      { return KindListStart }
func (ListStart) Inspect() string { return "[" }

type Curry struct{}

func (Curry) Kind() Kind      { return KindCurry }
func (Curry) Inspect() string { return "|" }

// --- code and callables --------------------------------------------------

// CodeBlock is shared, immutable executable code captured as a value (e.g.
// pushed by `{ ... }` or taken as a function/constructor body).
type CodeBlock struct{ Body []token.Token }

func (CodeBlock) Kind() Kind      { return KindCodeBlock }
func (CodeBlock) Inspect() string { return "<code block>" }

// Function closes over the nametable that was the current module/global
// scope at definition time, giving it module-scoped, not lexical, closure
// semantics (spec.md §3.2).
type Function struct {
	Arity           uint32
	IsConstructor   bool
	Code            []token.Token
	DefiningGlobals *Nametable
}

func (Function) Kind() Kind { return KindFunction }
func (f Function) Inspect() string {
	if f.IsConstructor {
		return fmt.Sprintf("<constructor/%d>", f.Arity)
	}
	return fmt.Sprintf("<function/%d>", f.Arity)
}

// CurriedFunction accumulates bound arguments ahead of a Function's
// remaining arity.
type CurriedFunction struct {
	AlreadyBound []Value
	Target       Function
}

func (CurriedFunction) Kind() Kind { return KindCurriedFunction }
func (c CurriedFunction) Inspect() string {
	return fmt.Sprintf("<curried %s, %d/%d bound>", c.Target.Inspect(), len(c.AlreadyBound), c.Target.Arity)
}

// RemainingArity is how many more arguments must be supplied before Target
// can be called.
func (c CurriedFunction) RemainingArity() uint32 {
	return c.Target.Arity - uint32(len(c.AlreadyBound))
}

// BuiltinMethod is an un-applied method captured by field access on a
// primitive receiver kind (spec.md §3.2, §4.11).
type BuiltinMethod struct {
	ReceiverKind Kind
	Name         string
}

func (BuiltinMethod) Kind() Kind        { return KindBuiltinMethod }
func (b BuiltinMethod) Inspect() string { return fmt.Sprintf("<method %s::%s>", b.ReceiverKind, b.Name) }

// --- aggregates ----------------------------------------------------------

// Object is a user-defined struct-like value: a bag of fields in a
// dedicated Object-kind nametable.
type Object struct{ Fields *Nametable }

func (Object) Kind() Kind        { return KindObject }
func (o Object) Inspect() string { return "<object>" }

// List is value-persistent: every mutating operation returns a new List
// rather than mutating Items in place (spec.md §3.2).
type List struct{ Items []Value }

func (List) Kind() Kind        { return KindList }
func (l List) Inspect() string {
	s := "["
	for i, it := range l.Items {
		if i > 0 {
			s += " "
		}
		s += it.Inspect()
	}
	return s + "]"
}

// --- equality ------------------------------------------------------------

// Equal implements spec.md §3.2's equality rules: structural on primitives
// with numeric cross-equality, identity on Function/CodeBlock/Object/
// Nametable, element-wise on List, sentinels equal only themselves, and any
// mixed-kind comparison not covered above is unequal.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Integer:
		switch bv := b.(type) {
		case Integer:
			return av.Value == bv.Value
		case Decimal:
			return float64(av.Value) == bv.Value
		}
		return false
	case Decimal:
		switch bv := b.(type) {
		case Integer:
			return av.Value == float64(bv.Value)
		case Decimal:
			return av.Value == bv.Value
		}
		return false
	case Boolean:
		bv, ok := b.(Boolean)
		return ok && av.Value == bv.Value
	case String:
		bv, ok := b.(String)
		return ok && av.Value == bv.Value
	case Identifier:
		bv, ok := b.(Identifier)
		return ok && intern.Equal(av.Name, bv.Name)
	case ListStart:
		_, ok := b.(ListStart)
		return ok
	case Curry:
		_, ok := b.(Curry)
		return ok
	case List:
		bv, ok := b.(List)
		if !ok || len(av.Items) != len(bv.Items) {
			return false
		}
		for i := range av.Items {
			if !Equal(av.Items[i], bv.Items[i]) {
				return false
			}
		}
		return true
	case Function:
		bv, ok := b.(Function)
		return ok && sameFunction(av, bv)
	case CodeBlock:
		bv, ok := b.(CodeBlock)
		return ok && sameSlice(av.Body, bv.Body)
	case Object:
		bv, ok := b.(Object)
		return ok && av.Fields == bv.Fields
	case *Nametable:
		bv, ok := b.(*Nametable)
		return ok && av == bv
	}
	return false
}

func sameFunction(a, b Function) bool {
	return sameSlice(a.Code, b.Code) && a.DefiningGlobals == b.DefiningGlobals && a.Arity == b.Arity
}

func sameSlice[T any](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return &a[0] == &b[0]
}

// --- arithmetic, logic and comparison (spec.md §4.5) ----------------------

func typeName(v Value) string { return v.Kind().String() }

func Add(span token.Span, a, b Value) (Value, error) { return numericOp(span, "add", a, b, func(x, y int64) int64 { return x + y }, func(x, y float64) float64 { return x + y }) }

func Subtract(span token.Span, a, b Value) (Value, error) {
	return numericOp(span, "subtract", a, b, func(x, y int64) int64 { return x - y }, func(x, y float64) float64 { return x - y })
}

func Multiply(span token.Span, a, b Value) (Value, error) {
	return numericOp(span, "multiply", a, b, func(x, y int64) int64 { return x * y }, func(x, y float64) float64 { return x * y })
}

func numericOp(span token.Span, op string, a, b Value, intOp func(int64, int64) int64, floatOp func(float64, float64) float64) (Value, error) {
	ai, aIsInt := a.(Integer)
	bi, bIsInt := b.(Integer)
	if aIsInt && bIsInt {
		return Integer{Value: intOp(ai.Value, bi.Value)}, nil
	}
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if aok && bok {
		return Decimal{Value: floatOp(af, bf)}, nil
	}
	return nil, langerr.InvalidTypes(span, op, typeName(a), typeName(b))
}

func asFloat(v Value) (float64, bool) {
	switch x := v.(type) {
	case Integer:
		return float64(x.Value), true
	case Decimal:
		return x.Value, true
	}
	return 0, false
}

func Divide(span token.Span, a, b Value) (Value, error) {
	if isZero(b) {
		return nil, langerr.DivideByZero(span, a.Inspect(), b.Inspect())
	}
	ai, aIsInt := a.(Integer)
	bi, bIsInt := b.(Integer)
	if aIsInt && bIsInt {
		return Integer{Value: ai.Value / bi.Value}, nil
	}
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if aok && bok {
		return Decimal{Value: af / bf}, nil
	}
	return nil, langerr.InvalidTypes(span, "divide", typeName(a), typeName(b))
}

func Modulus(span token.Span, a, b Value) (Value, error) {
	if isZero(b) {
		return nil, langerr.DivideByZero(span, a.Inspect(), b.Inspect())
	}
	ai, aIsInt := a.(Integer)
	bi, bIsInt := b.(Integer)
	if aIsInt && bIsInt {
		return Integer{Value: ai.Value % bi.Value}, nil
	}
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if aok && bok {
		return Decimal{Value: math.Mod(af, bf)}, nil
	}
	return nil, langerr.InvalidTypes(span, "modulus", typeName(a), typeName(b))
}

func isZero(v Value) bool {
	switch x := v.(type) {
	case Integer:
		return x.Value == 0
	case Decimal:
		return x.Value == 0.0
	}
	return false
}

func ShiftLeft(span token.Span, a, b Value) (Value, error) { return shift(span, "shift_left", a, b, true) }
func ShiftRight(span token.Span, a, b Value) (Value, error) {
	return shift(span, "shift_right", a, b, false)
}

func shift(span token.Span, op string, a, b Value, left bool) (Value, error) {
	ai, aok := a.(Integer)
	bi, bok := b.(Integer)
	if !aok || !bok {
		return nil, langerr.InvalidTypes(span, op, typeName(a), typeName(b))
	}
	amount := uint32(bi.Value) & 0xFFFFFFFF
	if left {
		return Integer{Value: ai.Value << amount}, nil
	}
	return Integer{Value: ai.Value >> amount}, nil
}

func And(span token.Span, a, b Value) (Value, error) { return logicOp(span, "and", a, b, func(x, y bool) bool { return x && y }) }
func Or(span token.Span, a, b Value) (Value, error) {
	return logicOp(span, "or", a, b, func(x, y bool) bool { return x || y })
}
func Xor(span token.Span, a, b Value) (Value, error) {
	return logicOp(span, "xor", a, b, func(x, y bool) bool { return x != y })
}

func logicOp(span token.Span, op string, a, b Value, f func(bool, bool) bool) (Value, error) {
	ab, aok := a.(Boolean)
	bb, bok := b.(Boolean)
	if !aok || !bok {
		return nil, langerr.InvalidTypes(span, op, typeName(a), typeName(b))
	}
	return Boolean{Value: f(ab.Value, bb.Value)}, nil
}

func Not(span token.Span, a Value) (Value, error) {
	ab, ok := a.(Boolean)
	if !ok {
		return nil, langerr.InvalidType(span, "not", typeName(a))
	}
	return Boolean{Value: !ab.Value}, nil
}

func Cat(span token.Span, a, b Value) (Value, error) {
	as, aok := a.(String)
	bs, bok := b.(String)
	if !aok || !bok {
		return nil, langerr.InvalidTypes(span, "cat", typeName(a), typeName(b))
	}
	return String{Value: as.Value + bs.Value}, nil
}

// Ordering is the three-valued result of Compare.
type Ordering int

const (
	Less Ordering = iota - 1
	EqualOrder
	Greater
)

// Compare implements spec.md §4.5: numeric cross-compare via float64
// conversion, NaN on either side is an Incomparable error.
func Compare(span token.Span, a, b Value) (Ordering, error) {
	if Equal(a, b) {
		return EqualOrder, nil
	}
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if aok && bok {
		if math.IsNaN(af) || math.IsNaN(bf) {
			return 0, langerr.Incomparable(span, a.Inspect(), b.Inspect())
		}
		switch {
		case af < bf:
			return Less, nil
		case af > bf:
			return Greater, nil
		default:
			return EqualOrder, nil
		}
	}
	return 0, langerr.Incomparable(span, typeName(a), typeName(b))
}
