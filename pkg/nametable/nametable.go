// Package nametable is a thin facade over value.Nametable. The type itself
// lives in pkg/value (see that package's doc comment for why: Function's
// defining_globals field and the Nametable value variant need each other's
// concrete type, and Go has no forward declarations across packages).
package nametable

import (
	"github.com/klfr/sof/pkg/intern"
	"github.com/klfr/sof/pkg/value"
)

type Kind = value.NametableKind

const (
	Global   = value.NametableGlobal
	Module   = value.NametableModule
	Function = value.NametableFunction
	Object   = value.NametableObject
)

type Nametable = value.Nametable

// New constructs an empty Nametable of the given kind.
func New(kind Kind) *Nametable { return value.New(kind) }

// Define binds name to v in nt, overwriting any previous binding.
func Define(nt *Nametable, name intern.Identifier, v value.Value) { nt.Define(name, v) }

// Lookup finds name in nt's own entries only; scope-chain search across the
// value stack is pkg/stack's job (spec.md §4.6 lookup).
func Lookup(nt *Nametable, name intern.Identifier) (value.Value, bool) {
	return nt.LookupLocal(name)
}

// Export re-publishes a binding of nt for importers of the module it backs.
func Export(nt *Nametable, name intern.Identifier, v value.Value) { nt.Export(name, v) }

// SetReturnValue records the value a `return` inside nt (a Function-kind
// frame) produced.
func SetReturnValue(nt *Nametable, v value.Value) { nt.SetReturnValue(v) }

// TakeReturnValue reports whether `return` fired inside nt and, if so, the
// value it set.
func TakeReturnValue(nt *Nametable) (value.Value, bool) { return nt.TakeReturnValue() }
