package value

import "github.com/klfr/sof/pkg/intern"

// NametableKind distinguishes the four scope roles a Nametable can play
// (spec.md §3.3). Lexical chaining is not encoded in the Nametable itself:
// pkg/stack walks the value stack's nametables top-down on lookup instead.
type NametableKind uint8

const (
	NametableGlobal NametableKind = iota
	NametableModule
	NametableFunction
	NametableObject
)

func (k NametableKind) String() string {
	switch k {
	case NametableGlobal:
		return "Global"
	case NametableModule:
		return "Module"
	case NametableFunction:
		return "Function"
	case NametableObject:
		return "Object"
	default:
		return "<unknown nametable kind>"
	}
}

// Nametable is a scope frame: a kind tag, its own bindings, the subset of
// those bindings re-exported to importers (Module kind only), and the slot
// a `return` inside a Function-kind frame writes into.
type Nametable struct {
	NtKind       NametableKind
	Entries      map[intern.Identifier]Value
	Exports      map[intern.Identifier]Value
	ReturnValue  Value
	hasReturn    bool
}

// New constructs an empty Nametable of the given kind.
func New(kind NametableKind) *Nametable {
	return &Nametable{NtKind: kind, Entries: make(map[intern.Identifier]Value)}
}

func (nt *Nametable) Kind() Kind        { return KindNametable }
func (nt *Nametable) Inspect() string   { return "<nametable " + nt.NtKind.String() + ">" }

// Define binds name to v in this frame, overwriting any previous binding.
func (nt *Nametable) Define(name intern.Identifier, v Value) {
	nt.Entries[name] = v
}

// LookupLocal finds name in this frame only, without consulting the stack.
func (nt *Nametable) LookupLocal(name intern.Identifier) (Value, bool) {
	v, ok := nt.Entries[name]
	return v, ok
}

// Export re-publishes a binding for importers. Neither Export nor the
// engine's `export`/`dexport` handling checks the frame's kind, so a
// top-level export lands in the Global root's Exports; only a Module-kind
// frame's Exports are merged into the importer when the module exits.
func (nt *Nametable) Export(name intern.Identifier, v Value) {
	if nt.Exports == nil {
		nt.Exports = make(map[intern.Identifier]Value)
	}
	nt.Exports[name] = v
}

// SetReturnValue records the value a `return` inside this Function-kind
// frame produced.
func (nt *Nametable) SetReturnValue(v Value) {
	nt.ReturnValue = v
	nt.hasReturn = true
}

// TakeReturnValue reports whether a `return` occurred in this frame and, if
// so, returns the value it set.
func (nt *Nametable) TakeReturnValue() (Value, bool) {
	return nt.ReturnValue, nt.hasReturn
}
