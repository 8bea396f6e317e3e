// Package engine implements SOF's trampoline execution loop (spec.md §4.7):
// a call stack of token-iterator frames plus the value stack (pkg/stack),
// driven one token at a time with no AST walker and no bytecode. It plays
// the role of the teacher's pkg/vm.VM.Run, but iterates a tree of tokens
// instead of a flat instruction tape, because SOF compiles to neither an
// AST nor bytecode.
package engine

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"

	"github.com/klfr/sof/pkg/intern"
	"github.com/klfr/sof/pkg/langerr"
	"github.com/klfr/sof/pkg/methods"
	"github.com/klfr/sof/pkg/module"
	"github.com/klfr/sof/pkg/native"
	"github.com/klfr/sof/pkg/nametable"
	"github.com/klfr/sof/pkg/parser"
	"github.com/klfr/sof/pkg/stack"
	"github.com/klfr/sof/pkg/token"
	"github.com/klfr/sof/pkg/value"
)

//go:embed preamble.sof
var preambleSource string

// defaultGCCadence is how many tokens the engine executes between
// allocation-debt checks (spec.md §4.7: "every 128 tokens"). SOF_GC_DEBT_THRESHOLD
// overrides it via SetGCDebtThreshold.
const defaultGCCadence = 128

// LogLevel controls how much execution detail the engine reports while it
// runs (spec.md §6.2's "log=<level>" debug option; pkg/sof parses a flag
// value into one of these and cmd/sof wires it in via SetLogLevel). Each
// level is a superset of the ones before it: Trace, the most verbose, also
// emits everything AllDebug and SelfDebug would.
type LogLevel uint8

const (
	LogOff LogLevel = iota
	LogSelfDebug
	LogAllDebug
	LogTrace
)

// ReturnBehavior tags what a call frame does once its token iterator is
// exhausted (spec.md §3.5, §4.7.1).
type ReturnBehavior uint8

const (
	BlockCall ReturnBehavior = iota
	FunctionCall
	ExitModule
	Loop
)

// Frame is one entry of the call stack C: a token iterator plus the
// behavior to run when it is exhausted.
type Frame struct {
	Tokens     []token.Token
	Pos        int
	ModulePath string
	Behavior   ReturnBehavior
}

func (f *Frame) next() (token.Token, bool) {
	if f.Pos >= len(f.Tokens) {
		return token.Token{}, false
	}
	t := f.Tokens[f.Pos]
	f.Pos++
	return t, true
}

func (f *Frame) exhaust() { f.Pos = len(f.Tokens) }

// --- interpreter actions (spec.md §4.7.3) -----------------------------------

type action interface{ isAction() }

type actionExecuteCall struct {
	Tokens   []token.Token
	Behavior ReturnBehavior
}

func (actionExecuteCall) isAction() {}

type actionReturn struct{}

func (actionReturn) isAction() {}

type actionInvokeModule struct {
	Name string
	Span token.Span
}

func (actionInvokeModule) isAction() {}

// Engine owns the call stack, the value stack, and the host-facing registries
// (spec.md §4.7).
type Engine struct {
	V           *stack.Stack
	C           []*Frame
	isUnwinding bool

	modules *module.Loader
	natives *native.Registry

	out        io.Writer
	in         *bufio.Reader
	tokenCount uint64
	gcCadence  uint64

	logLevel LogLevel
	logOut   io.Writer
}

// New constructs an Engine rooted at libRoot for module resolution, wires the
// native-function preamble (pkg/native), and bootstraps the standard-library
// preamble module into the global scope (spec.md §4.10: "the canned token
// sequence 'preamble' use is executed on a fresh arena").
func New(libRoot string, out io.Writer, in io.Reader) (*Engine, error) {
	root := nametable.New(nametable.Global)
	e := &Engine{
		V:         stack.New(root),
		modules:   module.NewLoader(libRoot),
		natives:   native.NewRegistry(),
		out:       out,
		in:        bufio.NewReader(in),
		gcCadence: defaultGCCadence,
	}
	native.RegisterPreamble(e.natives)
	if err := e.bootstrapPreamble(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) bootstrapPreamble() error {
	body, err := parser.Parse(preambleSource)
	if err != nil {
		return err
	}
	path := e.modules.ResolvePath("preamble", "")
	e.modules.Preload(path, body)
	if err := e.invokeModule(token.Span{}, "preamble", ""); err != nil {
		return err
	}
	return e.Run()
}

// Execute parses source and runs it to completion as a fresh top-level
// program (spec.md §4.7's outer loop, entered with an empty call stack).
func (e *Engine) Execute(path, source string) error {
	tokens, err := parser.Parse(source)
	if err != nil {
		return err
	}
	e.C = append(e.C, &Frame{Tokens: tokens, ModulePath: path, Behavior: BlockCall})
	return e.Run()
}

// SetLogLevel raises the engine's execution-trace verbosity, writing
// diagnostic lines to w as it runs. LogOff (the zero value) disables this
// entirely regardless of w.
func (e *Engine) SetLogLevel(level LogLevel, w io.Writer) {
	e.logLevel = level
	e.logOut = w
}

func (e *Engine) logf(level LogLevel, format string, args ...interface{}) {
	if e.logOut == nil || e.logLevel < level || level == LogOff {
		return
	}
	fmt.Fprintf(e.logOut, format+"\n", args...)
}

// SetGCDebtThreshold overrides the token cadence between allocation-debt
// checks (see defaultGCCadence). Zero leaves the default in place; cmd/sof
// wires this to SOF_GC_DEBT_THRESHOLD.
func (e *Engine) SetGCDebtThreshold(n uint64) {
	if n == 0 {
		return
	}
	e.gcCadence = n
}

func (e *Engine) currentModulePath() string {
	if len(e.C) == 0 {
		return ""
	}
	return e.C[len(e.C)-1].ModulePath
}

// Run drains the call stack: the trampoline outer loop (spec.md §4.7).
func (e *Engine) Run() error {
	for len(e.C) > 0 {
		frame := e.C[len(e.C)-1]
		tok, ok := frame.next()
		if !ok {
			if err := e.dispatchReturn(frame); err != nil {
				return err
			}
			continue
		}
		e.logf(LogTrace, "%s %s: %s", frame.ModulePath, tok.Span, tok.Inner.Kind())
		actions, err := e.execute(tok)
		if err != nil {
			return err
		}
		if err := e.applyActions(actions); err != nil {
			return err
		}
		e.tokenCount++
		if e.tokenCount%e.gcCadence == 0 {
			e.gcStep()
		}
	}
	return nil
}

// gcStep simulates consulting the allocation-debt signal and performing an
// incremental collection step (spec.md §4.7, §5). No real collector is
// wired — SOF values are ordinary Go-GC'd heap objects — so this is a no-op
// that exists to keep the cadence and root set (pkg/stack.Roots) exercised
// the way a real incremental collector's write barrier would be.
func (e *Engine) gcStep() {
	_ = e.V.Roots()
}

// --- return-behavior dispatch (spec.md §4.7.1) ------------------------------

func (e *Engine) dispatchReturn(frame *Frame) error {
	switch frame.Behavior {
	case BlockCall:
		e.C = e.C[:len(e.C)-1]
	case FunctionCall:
		e.isUnwinding = false
		e.C = e.C[:len(e.C)-1]
		fnt, err := e.V.PopNametable(token.Span{})
		if err != nil {
			return err
		}
		if _, err := e.V.PopNametable(token.Span{}); err != nil {
			return err
		}
		if rv, ok := fnt.TakeReturnValue(); ok {
			e.V.Push(rv)
		}
	case ExitModule:
		e.isUnwinding = false
		e.C = e.C[:len(e.C)-1]
		modNt, err := e.V.PopModuleNametable(token.Span{})
		if err != nil {
			return err
		}
		enclosing := e.V.GlobalNametable()
		for k, v := range modNt.Exports {
			enclosing.Define(k, v)
		}
	case Loop:
		return e.dispatchLoop(frame)
	}
	return nil
}

func (e *Engine) dispatchLoop(frame *Frame) error {
	util, ok := e.V.TopUtility()
	if !ok || util.While == nil {
		return langerr.MissingNametable(token.Span{})
	}
	if !util.While.ConditionalResult || e.isUnwinding {
		e.V.PopUtility()
		e.C = e.C[:len(e.C)-1]
		return nil
	}
	cond := util.While.ConditionalCallable
	e.V.Push(cond)
	e.C = e.C[:len(e.C)-1]
	e.C = append(e.C, &Frame{
		Tokens:     whileBodyTokens(),
		ModulePath: frame.ModulePath,
		Behavior:   Loop,
	})
	return nil
}

func whileBodyTokens() []token.Token {
	return []token.Token{
		token.New(token.Command{Op: token.OpCall}, token.Span{}),
		token.New(token.WhileBody{}, token.Span{}),
	}
}

// --- applying interpreter actions (spec.md §4.7.3) --------------------------

func (e *Engine) applyActions(actions []action) error {
	for _, a := range actions {
		switch act := a.(type) {
		case actionExecuteCall:
			e.C = append(e.C, &Frame{Tokens: act.Tokens, ModulePath: e.currentModulePath(), Behavior: act.Behavior})
		case actionReturn:
			e.unwindToFunctionCall()
		case actionInvokeModule:
			if err := e.invokeModule(act.Span, act.Name, e.currentModulePath()); err != nil {
				return err
			}
		}
	}
	return nil
}

// unwindToFunctionCall empties every frame's iterator from the top down to
// and including the nearest FunctionCall frame, so the outer loop drains
// each in turn via dispatchReturn, giving Loop/ExitModule frames in between a
// chance to run their own cleanup (spec.md §4.7.3).
func (e *Engine) unwindToFunctionCall() {
	e.isUnwinding = true
	for i := len(e.C) - 1; i >= 0; i-- {
		e.C[i].exhaust()
		if e.C[i].Behavior == FunctionCall {
			return
		}
	}
}

func (e *Engine) invokeModule(span token.Span, name, callingPath string) error {
	loaded, err := e.modules.Load(span, name, callingPath)
	if err != nil {
		return err
	}
	e.logf(LogAllDebug, "use %q -> %s", name, loaded.Path)
	nt := nametable.New(nametable.Module)
	e.V.PushModuleNametable(nt)
	e.C = append(e.C, &Frame{Tokens: loaded.Body, ModulePath: loaded.Path, Behavior: ExitModule})
	return nil
}

// --- per-token execution (spec.md §4.7.2) -----------------------------------

func (e *Engine) execute(tok token.Token) ([]action, error) {
	span := tok.Span
	switch inner := tok.Inner.(type) {
	case token.Integer, token.Decimal, token.Boolean, token.String, token.Identifier, token.ListStart, token.Curry:
		e.V.Push(literalToValue(inner))
		return nil, nil
	case token.Literals:
		for _, item := range inner.Items {
			e.V.Push(literalToValue(item))
		}
		return nil, nil
	case token.CodeBlock:
		e.V.Push(value.CodeBlock{Body: inner.Body})
		return nil, nil
	case token.LookupName:
		v, err := e.V.Lookup(span, inner.Name)
		if err != nil {
			return nil, err
		}
		e.V.Push(v)
		return nil, nil
	case token.CallName:
		v, err := e.V.Lookup(span, inner.Name)
		if err != nil {
			return nil, err
		}
		return e.enterCall(v, span)
	case token.WhileBody:
		return e.execWhileBody(span)
	case token.SwitchBody:
		return e.execSwitchBody(span)
	case token.Command:
		return e.execCommand(span, inner.Op)
	default:
		return nil, fmt.Errorf("engine: unhandled token kind %s", tok.Inner.Kind())
	}
}

// literalToValue maps a literal-like token.Inner to its runtime value.Value
// (spec.md §3.1/§3.2 are the same shapes by design).
func literalToValue(inner token.Inner) value.Value {
	switch t := inner.(type) {
	case token.Integer:
		return value.Integer{Value: t.Value}
	case token.Decimal:
		return value.Decimal{Value: t.Value}
	case token.Boolean:
		return value.Boolean{Value: t.Value}
	case token.String:
		return value.String{Value: t.Value}
	case token.Identifier:
		return value.Identifier{Name: t.Name}
	case token.ListStart:
		return value.ListStart{}
	case token.Curry:
		return value.Curry{}
	default:
		panic(fmt.Sprintf("engine: %T is not literal-like", inner))
	}
}

// --- enter_call (spec.md §4.7.4) --------------------------------------------

func (e *Engine) enterCall(v value.Value, span token.Span) ([]action, error) {
	switch callee := v.(type) {
	case value.Identifier:
		resolved, err := e.V.Lookup(span, callee.Name)
		if err != nil {
			return nil, err
		}
		e.V.Push(resolved)
		return nil, nil
	case value.CodeBlock:
		return []action{actionExecuteCall{Tokens: callee.Body, Behavior: BlockCall}}, nil
	case value.Function:
		return e.enterFunction(callee, span)
	case value.CurriedFunction:
		return e.enterCurried(callee, span)
	case value.BuiltinMethod:
		return e.enterBuiltinMethod(callee, span)
	default:
		return nil, langerr.InvalidType(span, "call", v.Kind().String())
	}
}

func (e *Engine) enterFunction(f value.Function, span token.Span) ([]action, error) {
	if k, ok := e.V.NextCurryingMarker(f.Arity); ok {
		bound := e.V.PopN(k)
		marker, present := e.V.RawPop()
		if !present {
			return nil, langerr.MissingValue(span)
		}
		if _, ok := marker.(value.Curry); !ok {
			return nil, langerr.MissingValue(span)
		}
		e.V.Push(value.CurriedFunction{AlreadyBound: bound, Target: f})
		return nil, nil
	}
	return e.callFunction(f, span)
}

// callFunction performs a full (fully-applied) function invocation: installs
// the function's own scope frame plus its defining module globals below the
// arguments already on the stack, then emits the function-body execute-call.
func (e *Engine) callFunction(f value.Function, span token.Span) ([]action, error) {
	e.logf(LogSelfDebug, "call arity=%d at %s", f.Arity, span)
	fnt := nametable.New(nametable.Function)
	if err := e.V.InsertNametableAt(span, int(f.Arity), fnt); err != nil {
		return nil, err
	}
	if err := e.V.InsertFunctionSpecificGlobalNametable(span, int(f.Arity)+1, f.DefiningGlobals); err != nil {
		return nil, err
	}
	// f.IsConstructor is reserved for object construction (spec.md §4.7.4);
	// no concrete semantics beyond a regular call are specified.
	return []action{actionExecuteCall{Tokens: f.Code, Behavior: FunctionCall}}, nil
}

func (e *Engine) enterCurried(c value.CurriedFunction, span token.Span) ([]action, error) {
	remaining := c.RemainingArity()
	if k, ok := e.V.NextCurryingMarker(remaining); ok {
		more := e.V.PopN(k)
		marker, present := e.V.RawPop()
		if !present {
			return nil, langerr.MissingValue(span)
		}
		if _, ok := marker.(value.Curry); !ok {
			return nil, langerr.MissingValue(span)
		}
		// §4.7.4: re-curried arguments are prepended to the stored list, not
		// appended (spec.md §9, original_source's insert_many at index 0).
		merged := make([]value.Value, 0, len(more)+len(c.AlreadyBound))
		merged = append(merged, more...)
		merged = append(merged, c.AlreadyBound...)
		e.V.Push(value.CurriedFunction{AlreadyBound: merged, Target: c.Target})
		return nil, nil
	}
	// §4.7.4: the stored arguments are re-pushed in order on top of whatever
	// remaining arguments are already on the stack, then the call proceeds
	// as a full Function call (stackable.rs:354-357's push loop).
	for _, v := range c.AlreadyBound {
		e.V.Push(v)
	}
	return e.callFunction(c.Target, span)
}

func (e *Engine) enterBuiltinMethod(b value.BuiltinMethod, span token.Span) ([]action, error) {
	receiver, err := e.V.Pop(span)
	if err != nil {
		return nil, err
	}
	result, err := methods.Call(receiver, e.V, span, b.Name)
	if err != nil {
		return nil, err
	}
	e.V.Push(receiver)
	if result != nil {
		e.V.Push(result)
	}
	return nil, nil
}

// --- while / switch synthetic tokens ----------------------------------------

func (e *Engine) execWhileBody(span token.Span) ([]action, error) {
	result, err := e.V.Pop(span)
	if err != nil {
		return nil, err
	}
	resBool, ok := result.(value.Boolean)
	if !ok {
		return nil, langerr.InvalidType(span, "while", result.Kind().String())
	}
	util, ok := e.V.TopUtility()
	if !ok || util.While == nil {
		return nil, langerr.MissingNametable(span)
	}
	util.While.ConditionalResult = resBool.Value
	if !resBool.Value {
		return nil, nil
	}
	return e.enterCall(util.While.Body, span)
}

func (e *Engine) execSwitchBody(span token.Span) ([]action, error) {
	result, err := e.V.Pop(span)
	if err != nil {
		return nil, err
	}
	resBool, ok := result.(value.Boolean)
	if !ok {
		return nil, langerr.InvalidType(span, "switch", result.Kind().String())
	}
	util, ok := e.V.TopUtility()
	if !ok || util.Switch == nil {
		return nil, langerr.MissingNametable(span)
	}
	sw := util.Switch
	if resBool.Value {
		body := sw.NextBody
		e.V.PopUtility()
		return e.enterCall(body, span)
	}
	if len(sw.RemainingCases) > 0 {
		next := sw.RemainingCases[0]
		sw.RemainingCases = sw.RemainingCases[1:]
		sw.NextBody = next.Body
		e.V.Push(next.Conditional)
		return []action{actionExecuteCall{Tokens: switchBodyTokens(), Behavior: BlockCall}}, nil
	}
	def := sw.Default
	e.V.PopUtility()
	return e.enterCall(def, span)
}

func switchBodyTokens() []token.Token {
	return []token.Token{
		token.New(token.Command{Op: token.OpCall}, token.Span{}),
		token.New(token.SwitchBody{}, token.Span{}),
	}
}

// switchSentinel is the identifier that delimits the case list a `switch`
// invocation's case-building preamble pushes (spec.md §4.7.2).
var switchSentinel = intern.Intern("switch::")
