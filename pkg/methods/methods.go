// Package methods implements the per-kind builtin-method tables that back
// field access and method-call syntax on primitive receivers (spec.md
// §4.11). It generalizes the teacher's type-switch-driven builtins (see
// pkg/eval/eval.go's handling of len() across String/Array) into one
// map[string]Func table per value.Kind, because SOF wants separate,
// independently-dispatched tables per receiver kind rather than one global
// switch.
package methods

import (
	"github.com/klfr/sof/pkg/langerr"
	"github.com/klfr/sof/pkg/token"
	"github.com/klfr/sof/pkg/value"
)

// Func is one builtin method body: it receives the receiver value, the
// surrounding stack (for methods that need to pop further arguments), and
// the call-site span, and returns the value to push, if any.
type Func func(receiver value.Value, s Stack, span token.Span) (value.Value, error)

// Stack is the subset of the engine's value stack a builtin method needs.
type Stack interface {
	Pop(span token.Span) (value.Value, error)
}

var registries = map[value.Kind]map[string]Func{
	value.KindList:    listMethods,
	value.KindInteger: integerMethods,
	value.KindDecimal: decimalMethods,
	value.KindBoolean: booleanMethods,
	value.KindString:  stringMethods,
}

// Lookup finds the method named name for receiverKind, if any.
func Lookup(receiverKind value.Kind, name string) (Func, bool) {
	table, ok := registries[receiverKind]
	if !ok {
		return nil, false
	}
	fn, ok := table[name]
	return fn, ok
}

// Call dispatches name against receiver, leaving the receiver on the stack
// untouched (the caller re-pushes it) and returning the method's result.
func Call(receiver value.Value, s Stack, span token.Span, name string) (value.Value, error) {
	fn, ok := Lookup(receiver.Kind(), name)
	if !ok {
		return nil, langerr.UndefinedValue(span, name)
	}
	return fn(receiver, s, span)
}
