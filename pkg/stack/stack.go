// Package stack implements the engine's value stack (spec.md §3.4, §4.6): a
// single heterogeneous sequence of values, nametables and sentinel markers,
// plus a parallel sequence of utility frames driving while/switch control
// flow. It plays the role of the teacher's pkg/vm.go stack/sp pair, but
// tracks "where the current nametable is" the way the VM tracks a base
// pointer, because SOF has no fixed frame size to compute one from.
package stack

import (
	"github.com/klfr/sof/pkg/intern"
	"github.com/klfr/sof/pkg/langerr"
	"github.com/klfr/sof/pkg/token"
	"github.com/klfr/sof/pkg/value"
)

// WhileFrame drives a while/dowhile loop (spec.md §3.4, §4.7.2).
type WhileFrame struct {
	Body               value.Value
	ConditionalCallable value.Value
	ConditionalResult  bool
}

// SwitchCase is one (condition, body) pair of a switch statement.
type SwitchCase struct {
	Conditional value.Value
	Body        value.Value
}

// SwitchFrame drives a switch statement (spec.md §3.4, §4.7.2).
type SwitchFrame struct {
	RemainingCases []SwitchCase
	Default        value.Value
	NextBody       value.Value
}

// UtilityFrame is the tagged union of control-flow bookkeeping frames.
type UtilityFrame struct {
	While  *WhileFrame
	Switch *SwitchFrame
}

// Stack is the engine's root value stack plus its utility stack.
type Stack struct {
	main    []value.Value
	utility []UtilityFrame

	topNametableIdx    int
	moduleNametableIdx int
}

// New constructs a Stack with root on main[0] as the never-popped Global
// nametable (spec.md §3.4 invariant).
func New(root *value.Nametable) *Stack {
	return &Stack{main: []value.Value{root}}
}

func (s *Stack) Len() int { return len(s.main) }

func isNametable(v value.Value) bool {
	_, ok := v.(*value.Nametable)
	return ok
}

// Push appends a plain value. Caller must not push a nametable this way.
func (s *Stack) Push(v value.Value) {
	s.main = append(s.main, v)
}

// PushN bulk-pushes values in order; same constraint as Push.
func (s *Stack) PushN(vs []value.Value) {
	s.main = append(s.main, vs...)
}

// Pop pops the top value, silently discarding any Curry markers above it
// first. Never pops a nametable: if the next value found is one, it is left
// in place and a MissingValue error is returned.
func (s *Stack) Pop(span token.Span) (value.Value, error) {
	for {
		if len(s.main) == 0 {
			return nil, langerr.MissingValue(span)
		}
		top := s.main[len(s.main)-1]
		if _, ok := top.(value.Curry); ok {
			s.main = s.main[:len(s.main)-1]
			continue
		}
		if isNametable(top) {
			return nil, langerr.MissingValue(span)
		}
		s.main = s.main[:len(s.main)-1]
		return top, nil
	}
}

// PopN unchecked bulk-pops k plain values; caller guarantees none of them is
// a nametable.
func (s *Stack) PopN(k int) []value.Value {
	start := len(s.main) - k
	out := make([]value.Value, k)
	copy(out, s.main[start:])
	s.main = s.main[:start]
	return out
}

// RawPop unconditionally pops the top entry, which may be a marker or a
// nametable. The caller must restore stack invariants itself.
func (s *Stack) RawPop() (value.Value, bool) {
	if len(s.main) == 0 {
		return nil, false
	}
	top := s.main[len(s.main)-1]
	s.main = s.main[:len(s.main)-1]
	return top, true
}

// RawPeek returns the top value without popping it, or false if empty.
func (s *Stack) RawPeek() (value.Value, bool) {
	if len(s.main) == 0 {
		return nil, false
	}
	return s.main[len(s.main)-1], true
}

// PushNametable pushes nt and updates top_nametable_idx.
func (s *Stack) PushNametable(nt *value.Nametable) {
	s.main = append(s.main, nt)
	s.topNametableIdx = len(s.main) - 1
}

// PushModuleNametable pushes nt (which must be Module-kind) and updates both
// cached indices.
func (s *Stack) PushModuleNametable(nt *value.Nametable) {
	s.PushNametable(nt)
	s.moduleNametableIdx = s.topNametableIdx
}

// InsertNametableAt inserts nt exactly k values below the current top (the
// function-call prologue: below the already-pushed arguments). Fails if
// k > len(main) or any of the top k values is itself a nametable.
func (s *Stack) InsertNametableAt(span token.Span, k int, nt *value.Nametable) error {
	if k > len(s.main) {
		return langerr.MissingValue(span)
	}
	at := len(s.main) - k
	for _, v := range s.main[at:] {
		if isNametable(v) {
			return langerr.MissingValue(span)
		}
	}
	s.main = append(s.main, nil)
	copy(s.main[at+1:], s.main[at:])
	s.main[at] = nt
	s.recomputeTopNametableIdx()
	return nil
}

// InsertFunctionSpecificGlobalNametable inserts gnt k slots below the top
// and updates module_nametable_idx, used when a function is invoked from a
// module other than the one that defined it. Unlike InsertNametableAt it
// accepts a nametable inside the window: the call prologue places gnt
// directly below the function nametable it has just inserted.
func (s *Stack) InsertFunctionSpecificGlobalNametable(span token.Span, k int, gnt *value.Nametable) error {
	if k > len(s.main) {
		return langerr.MissingValue(span)
	}
	at := len(s.main) - k
	s.main = append(s.main, nil)
	copy(s.main[at+1:], s.main[at:])
	s.main[at] = gnt
	s.recomputeTopNametableIdx()
	s.moduleNametableIdx = at
	return nil
}

// InsertValuesAt splices vs in order k slots below the current top, shifting
// everything in that window upward and adjusting the cached nametable
// indices that sit inside it.
func (s *Stack) InsertValuesAt(span token.Span, k int, vs []value.Value) error {
	if k > len(s.main) {
		return langerr.MissingValue(span)
	}
	at := len(s.main) - k
	n := len(vs)
	if n == 0 {
		return nil
	}
	s.main = append(s.main, make([]value.Value, n)...)
	copy(s.main[at+n:], s.main[at:len(s.main)-n])
	copy(s.main[at:at+n], vs)
	if s.topNametableIdx >= at {
		s.topNametableIdx += n
	}
	if s.moduleNametableIdx >= at {
		s.moduleNametableIdx += n
	}
	return nil
}

func (s *Stack) recomputeTopNametableIdx() {
	for i := len(s.main) - 1; i >= 0; i-- {
		if isNametable(s.main[i]) {
			s.topNametableIdx = i
			return
		}
	}
	s.topNametableIdx = 0
}

// TopNametable returns the nametable at top_nametable_idx.
func (s *Stack) TopNametable() *value.Nametable {
	return s.main[s.topNametableIdx].(*value.Nametable)
}

// GlobalNametable returns the nametable at module_nametable_idx: the
// module's own nametable inside a module, the true global otherwise.
func (s *Stack) GlobalNametable() *value.Nametable {
	return s.main[s.moduleNametableIdx].(*value.Nametable)
}

// Lookup searches from the top nametable downward through every nametable
// in main, returning the first binding found.
func (s *Stack) Lookup(span token.Span, name intern.Identifier) (value.Value, error) {
	for i := len(s.main) - 1; i >= 0; i-- {
		nt, ok := s.main[i].(*value.Nametable)
		if !ok {
			continue
		}
		if v, ok := nt.LookupLocal(name); ok {
			return v, nil
		}
	}
	return nil, langerr.UndefinedValue(span, name.String())
}

// NextCurryingMarker scans up to maxArgs slots from the top (bounded by
// top_nametable_idx+1 so it never looks below the current scope) and
// reports how many slots above the top a Curry marker sits, if any.
func (s *Stack) NextCurryingMarker(maxArgs uint32) (int, bool) {
	limit := len(s.main) - (s.topNametableIdx + 1)
	if int(maxArgs) < limit {
		limit = int(maxArgs)
	}
	for n := 0; n < limit; n++ {
		idx := len(s.main) - 1 - n
		if idx < 0 {
			break
		}
		if _, ok := s.main[idx].(value.Curry); ok {
			return n, true
		}
	}
	return 0, false
}

// PopNametable repeatedly pops plain values until a nametable is
// encountered, returning it, and recomputes top_nametable_idx. When the
// popped slot held module_nametable_idx, that index moves to the scope now
// on top: the defining-module nametable directly below a function
// nametable, a module nametable itself, or the root. Fails if only the
// root would remain popped.
func (s *Stack) PopNametable(span token.Span) (*value.Nametable, error) {
	if s.topNametableIdx == 0 {
		return nil, langerr.MissingNametable(span)
	}
	for {
		if len(s.main) == 0 {
			return nil, langerr.MissingNametable(span)
		}
		top := s.main[len(s.main)-1]
		s.main = s.main[:len(s.main)-1]
		if nt, ok := top.(*value.Nametable); ok {
			s.recomputeTopNametableIdx()
			if s.moduleNametableIdx >= len(s.main) {
				switch s.TopNametable().NtKind {
				case value.NametableFunction:
					s.moduleNametableIdx = s.topNametableIdx - 1
				case value.NametableModule:
					s.moduleNametableIdx = s.topNametableIdx
				default:
					s.moduleNametableIdx = 0
				}
			}
			return nt, nil
		}
	}
}

// PopModuleNametable pops nametables until one of kind Module is popped,
// recomputing both cached indices.
func (s *Stack) PopModuleNametable(span token.Span) (*value.Nametable, error) {
	for {
		nt, err := s.PopNametable(span)
		if err != nil {
			return nil, err
		}
		if nt.NtKind == value.NametableModule {
			s.recomputeModuleNametableIdx()
			return nt, nil
		}
	}
}

func (s *Stack) recomputeModuleNametableIdx() {
	for i := len(s.main) - 1; i >= 0; i-- {
		if nt, ok := s.main[i].(*value.Nametable); ok && nt.NtKind == value.NametableModule {
			s.moduleNametableIdx = i
			return
		}
	}
	s.moduleNametableIdx = 0
}

// --- utility stack ---------------------------------------------------------

// PushWhile pushes a While utility frame.
func (s *Stack) PushWhile(f *WhileFrame) { s.utility = append(s.utility, UtilityFrame{While: f}) }

// PushSwitch pushes a Switch utility frame.
func (s *Stack) PushSwitch(f *SwitchFrame) { s.utility = append(s.utility, UtilityFrame{Switch: f}) }

// TopUtility returns the topmost utility frame, or false if none.
func (s *Stack) TopUtility() (UtilityFrame, bool) {
	if len(s.utility) == 0 {
		return UtilityFrame{}, false
	}
	return s.utility[len(s.utility)-1], true
}

// PopUtility discards the topmost utility frame.
func (s *Stack) PopUtility() {
	if len(s.utility) > 0 {
		s.utility = s.utility[:len(s.utility)-1]
	}
}

// Roots exposes every traced value for the (external) garbage collector:
// the full value stack plus every value referenced from utility frames
// (spec.md §4.7 "roots are the full value stack plus the utility stack").
func (s *Stack) Roots() []value.Value {
	roots := make([]value.Value, len(s.main))
	copy(roots, s.main)
	for _, u := range s.utility {
		if u.While != nil {
			roots = append(roots, u.While.Body, u.While.ConditionalCallable)
		}
		if u.Switch != nil {
			roots = append(roots, u.Switch.Default, u.Switch.NextBody)
			for _, c := range u.Switch.RemainingCases {
				roots = append(roots, c.Conditional, c.Body)
			}
		}
	}
	return roots
}
