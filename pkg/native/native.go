// Package native is the host-function registry the `nativecall` command
// dispatches through (spec.md §4.9). It is grounded almost directly on
// original_source/sof-rs/src/runtime/native.rs's arity-tagged NativeFunction
// enum: Go has no variadic-by-arity function types, so the arity is carried
// as data (Arity int) instead of as five distinct Go function types, but the
// registration and dispatch shape — register by string key, pop that many
// arguments in argument order, call, push the optional result — is the same.
package native

import (
	"github.com/klfr/sof/pkg/langerr"
	"github.com/klfr/sof/pkg/token"
	"github.com/klfr/sof/pkg/value"
)

// Func is a host-implemented native function body. args are in left-to-right
// call order (argument 1 first). A nil result means nothing is pushed.
type Func func(args []value.Value) (value.Value, error)

// Popper is the minimal stack capability a native function call needs,
// satisfied by *stack.Stack without importing it here (pkg/stack already
// imports pkg/value; importing pkg/stack from here would cycle back through
// the engine that wires both together).
type Popper interface {
	Pop(span token.Span) (value.Value, error)
	Push(v value.Value)
}

type entry struct {
	arity int
	fn    Func
}

// Registry maps native-function keys (spec.md §6.4,
// `klfr.sof.lib.Builtins#convertInt(Stackable)`-shaped) to host callables.
type Registry struct {
	functions map[string]entry
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{functions: make(map[string]entry)}
}

// Register adds or replaces the function stored under name with the given
// fixed arity (1..5, per spec.md §4.9).
func (r *Registry) Register(name string, arity int, fn Func) {
	r.functions[name] = entry{arity: arity, fn: fn}
}

// Call pops arity values in reverse order (topmost first -> last positional
// argument, restoring call order), invokes the named function, and pushes
// its result if any.
func (r *Registry) Call(s Popper, span token.Span, name string) error {
	e, ok := r.functions[name]
	if !ok {
		return langerr.UnknownNativeFunction(span, name)
	}
	args := make([]value.Value, e.arity)
	for i := e.arity - 1; i >= 0; i-- {
		v, err := s.Pop(span)
		if err != nil {
			return err
		}
		args[i] = v
	}
	result, err := e.fn(args)
	if err != nil {
		return err
	}
	if result != nil {
		s.Push(result)
	}
	return nil
}
