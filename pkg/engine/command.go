package engine

import (
	"errors"
	"fmt"
	"io"

	"github.com/klfr/sof/pkg/intern"
	"github.com/klfr/sof/pkg/langerr"
	"github.com/klfr/sof/pkg/methods"
	"github.com/klfr/sof/pkg/stack"
	"github.com/klfr/sof/pkg/token"
	"github.com/klfr/sof/pkg/value"
)

// execCommand dispatches one of the fixed command-set operators (spec.md
// §4.7.2, §6.1).
func (e *Engine) execCommand(span token.Span, op token.Op) ([]action, error) {
	if op.IsArithmeticOrLogic() {
		return nil, e.applyOperator(span, op)
	}
	switch op {
	case token.OpNot:
		return nil, e.applyNot(span)
	case token.OpPop:
		_, err := e.V.Pop(span)
		return nil, err
	case token.OpDup:
		return nil, e.opDup(span)
	case token.OpSwap:
		return nil, e.opSwap(span)
	case token.OpOver:
		return nil, e.opOver(span)
	case token.OpRot:
		return nil, e.opRot(span)
	case token.OpAssert:
		return nil, e.opAssert(span)
	case token.OpCall:
		callee, err := e.V.Pop(span)
		if err != nil {
			return nil, err
		}
		return e.enterCall(callee, span)
	case token.OpIf:
		return e.opIf(span)
	case token.OpIfElse:
		return e.opIfElse(span)
	case token.OpWhile:
		return e.opWhile(span)
	case token.OpDoWhile:
		return e.opDoWhile(span)
	case token.OpSwitch:
		return e.opSwitch(span)
	case token.OpDef:
		return nil, e.opDef(span, e.V.TopNametable())
	case token.OpGlobalDef:
		return nil, e.opDef(span, e.V.GlobalNametable())
	case token.OpExport:
		return nil, e.opExport(span)
	case token.OpDExport:
		return nil, e.opDExport(span)
	case token.OpFunction:
		return nil, e.opFunction(span, false)
	case token.OpConstructor:
		return nil, e.opFunction(span, true)
	case token.OpReturn:
		v, err := e.V.Pop(span)
		if err != nil {
			return nil, err
		}
		e.V.TopNametable().SetReturnValue(v)
		return []action{actionReturn{}}, nil
	case token.OpReturn0:
		return []action{actionReturn{}}, nil
	case token.OpUse:
		name, err := e.popString(span)
		if err != nil {
			return nil, err
		}
		return []action{actionInvokeModule{Name: name, Span: span}}, nil
	case token.OpNativeCall:
		name, err := e.popString(span)
		if err != nil {
			return nil, err
		}
		return nil, e.natives.Call(e.V, span, name)
	case token.OpFieldAccess:
		return nil, e.opFieldAccess(span)
	case token.OpMethodCall:
		return nil, e.opMethodCall(span)
	case token.OpCreateList:
		return nil, e.opCreateList(span)
	case token.OpWrite:
		return nil, e.opWrite(span, false)
	case token.OpWriteln:
		return nil, e.opWrite(span, true)
	case token.OpInput:
		return nil, e.opInput(span, false)
	case token.OpInputln:
		return nil, e.opInput(span, true)
	case token.OpDescribe:
		return nil, e.opDescribe(span)
	case token.OpDescribes:
		return nil, e.opDescribes(span)
	default:
		return nil, fmt.Errorf("engine: unhandled command %s", op)
	}
}

// --- arithmetic / logic / compare (spec.md §4.5, §4.7.2) --------------------

// applyOperator implements the compound-assignment rule: when the
// left-hand operand is still an unresolved Identifier value (pushed but
// never looked up), the operator is applied to its current binding and the
// result is rebound in place instead of being pushed.
func (e *Engine) applyOperator(span token.Span, op token.Op) error {
	b, err := e.V.Pop(span)
	if err != nil {
		return err
	}
	a, err := e.V.Pop(span)
	if err != nil {
		return err
	}
	if ident, ok := a.(value.Identifier); ok {
		cur, err := e.V.Lookup(span, ident.Name)
		if err != nil {
			return err
		}
		result, err := binaryOp(span, op, cur, b)
		if err != nil {
			return err
		}
		e.V.TopNametable().Define(ident.Name, result)
		return nil
	}
	result, err := binaryOp(span, op, a, b)
	if err != nil {
		return err
	}
	e.V.Push(result)
	return nil
}

func (e *Engine) applyNot(span token.Span) error {
	a, err := e.V.Pop(span)
	if err != nil {
		return err
	}
	if ident, ok := a.(value.Identifier); ok {
		cur, err := e.V.Lookup(span, ident.Name)
		if err != nil {
			return err
		}
		result, err := value.Not(span, cur)
		if err != nil {
			return err
		}
		e.V.TopNametable().Define(ident.Name, result)
		return nil
	}
	result, err := value.Not(span, a)
	if err != nil {
		return err
	}
	e.V.Push(result)
	return nil
}

func binaryOp(span token.Span, op token.Op, a, b value.Value) (value.Value, error) {
	switch op {
	case token.OpAdd:
		return value.Add(span, a, b)
	case token.OpSubtract:
		return value.Subtract(span, a, b)
	case token.OpMultiply:
		return value.Multiply(span, a, b)
	case token.OpDivide:
		return value.Divide(span, a, b)
	case token.OpModulus:
		return value.Modulus(span, a, b)
	case token.OpShiftLeft:
		return value.ShiftLeft(span, a, b)
	case token.OpShiftRight:
		return value.ShiftRight(span, a, b)
	case token.OpAnd:
		return value.And(span, a, b)
	case token.OpOr:
		return value.Or(span, a, b)
	case token.OpXor:
		return value.Xor(span, a, b)
	case token.OpCat:
		return value.Cat(span, a, b)
	case token.OpEquals:
		return value.Boolean{Value: value.Equal(a, b)}, nil
	case token.OpNotEquals:
		return value.Boolean{Value: !value.Equal(a, b)}, nil
	case token.OpLess, token.OpLessEq, token.OpGreater, token.OpGreaterEq:
		ord, err := value.Compare(span, a, b)
		if err != nil {
			return nil, err
		}
		return value.Boolean{Value: orderingSatisfies(op, ord)}, nil
	default:
		return nil, langerr.InvalidTypes(span, op.String(), a.Kind().String(), b.Kind().String())
	}
}

func orderingSatisfies(op token.Op, ord value.Ordering) bool {
	switch op {
	case token.OpLess:
		return ord == value.Less
	case token.OpLessEq:
		return ord != value.Greater
	case token.OpGreater:
		return ord == value.Greater
	case token.OpGreaterEq:
		return ord != value.Less
	default:
		return false
	}
}

// --- stack shuffles (spec.md §4.7.2) ----------------------------------------

func (e *Engine) opDup(span token.Span) error {
	v, err := e.V.Pop(span)
	if err != nil {
		return err
	}
	e.V.Push(v)
	e.V.Push(v)
	return nil
}

func (e *Engine) opSwap(span token.Span) error {
	b, err := e.V.Pop(span)
	if err != nil {
		return err
	}
	a, err := e.V.Pop(span)
	if err != nil {
		return err
	}
	e.V.Push(b)
	e.V.Push(a)
	return nil
}

func (e *Engine) opOver(span token.Span) error {
	b, err := e.V.Pop(span)
	if err != nil {
		return err
	}
	a, err := e.V.Pop(span)
	if err != nil {
		return err
	}
	e.V.Push(a)
	e.V.Push(b)
	e.V.Push(a)
	return nil
}

func (e *Engine) opRot(span token.Span) error {
	c, err := e.V.Pop(span)
	if err != nil {
		return err
	}
	b, err := e.V.Pop(span)
	if err != nil {
		return err
	}
	a, err := e.V.Pop(span)
	if err != nil {
		return err
	}
	e.V.Push(b)
	e.V.Push(c)
	e.V.Push(a)
	return nil
}

func (e *Engine) opAssert(span token.Span) error {
	v, err := e.V.Pop(span)
	if err != nil {
		return err
	}
	if b, ok := v.(value.Boolean); ok && !b.Value {
		return langerr.AssertionFailed(span)
	}
	return nil
}

// --- conditionals and loops (spec.md §4.7.2) --------------------------------

func (e *Engine) opIf(span token.Span) ([]action, error) {
	cond, err := e.V.Pop(span)
	if err != nil {
		return nil, err
	}
	callable, err := e.V.Pop(span)
	if err != nil {
		return nil, err
	}
	b, ok := cond.(value.Boolean)
	if !ok {
		return nil, langerr.InvalidType(span, "if", cond.Kind().String())
	}
	if b.Value {
		return e.enterCall(callable, span)
	}
	return nil, nil
}

// Pushed as `condition if-callable else-callable ifelse`, so the
// else-callable sits on top and is popped first.
func (e *Engine) opIfElse(span token.Span) ([]action, error) {
	elseCallable, err := e.V.Pop(span)
	if err != nil {
		return nil, err
	}
	ifCallable, err := e.V.Pop(span)
	if err != nil {
		return nil, err
	}
	cond, err := e.V.Pop(span)
	if err != nil {
		return nil, err
	}
	b, ok := cond.(value.Boolean)
	if !ok {
		return nil, langerr.InvalidType(span, "ifelse", cond.Kind().String())
	}
	if b.Value {
		return e.enterCall(ifCallable, span)
	}
	return e.enterCall(elseCallable, span)
}

// The conditional block is pushed before the body block (`{ cond } { body }
// while`), so the body sits on top and is popped first.
func (e *Engine) opWhile(span token.Span) ([]action, error) {
	body, err := e.V.Pop(span)
	if err != nil {
		return nil, err
	}
	condCallable, err := e.V.Pop(span)
	if err != nil {
		return nil, err
	}
	e.V.PushWhile(&stack.WhileFrame{Body: body, ConditionalCallable: condCallable, ConditionalResult: false})
	e.V.Push(condCallable)
	return []action{actionExecuteCall{Tokens: whileBodyTokens(), Behavior: Loop}}, nil
}

func (e *Engine) opDoWhile(span token.Span) ([]action, error) {
	body, err := e.V.Pop(span)
	if err != nil {
		return nil, err
	}
	condCallable, err := e.V.Pop(span)
	if err != nil {
		return nil, err
	}
	bodyActions, err := e.enterCall(body, span)
	if err != nil {
		return nil, err
	}
	e.V.PushWhile(&stack.WhileFrame{Body: body, ConditionalCallable: condCallable, ConditionalResult: true})
	actions := make([]action, 0, len(bodyActions)+1)
	actions = append(actions, actionExecuteCall{Behavior: Loop})
	actions = append(actions, bodyActions...)
	return actions, nil
}

func (e *Engine) opSwitch(span token.Span) ([]action, error) {
	defaultCase, err := e.V.Pop(span)
	if err != nil {
		return nil, err
	}
	var cases []stack.SwitchCase
	for {
		v, err := e.V.Pop(span)
		if err != nil {
			return nil, err
		}
		if ident, ok := v.(value.Identifier); ok && intern.Equal(ident.Name, switchSentinel) {
			break
		}
		body, err := e.V.Pop(span)
		if err != nil {
			return nil, err
		}
		cases = append(cases, stack.SwitchCase{Conditional: v, Body: body})
	}
	if len(cases) == 0 {
		return e.enterCall(defaultCase, span)
	}
	first := cases[0]
	e.V.PushSwitch(&stack.SwitchFrame{RemainingCases: cases[1:], Default: defaultCase, NextBody: first.Body})
	e.V.Push(first.Conditional)
	return []action{actionExecuteCall{Tokens: switchBodyTokens(), Behavior: BlockCall}}, nil
}

// --- name binding (spec.md §4.7.2, §4.8) ------------------------------------

func (e *Engine) popIdentifier(span token.Span) (value.Identifier, error) {
	v, err := e.V.Pop(span)
	if err != nil {
		return value.Identifier{}, err
	}
	ident, ok := v.(value.Identifier)
	if !ok {
		return value.Identifier{}, langerr.InvalidType(span, "identifier", v.Kind().String())
	}
	return ident, nil
}

func (e *Engine) popString(span token.Span) (string, error) {
	v, err := e.V.Pop(span)
	if err != nil {
		return "", err
	}
	s, ok := v.(value.String)
	if !ok {
		return "", langerr.InvalidType(span, "string", v.Kind().String())
	}
	return s.Value, nil
}

func (e *Engine) opDef(span token.Span, target *value.Nametable) error {
	ident, err := e.popIdentifier(span)
	if err != nil {
		return err
	}
	v, err := e.V.Pop(span)
	if err != nil {
		return err
	}
	target.Define(ident.Name, v)
	return nil
}

func (e *Engine) opExport(span token.Span) error {
	ident, err := e.popIdentifier(span)
	if err != nil {
		return err
	}
	v, err := e.V.Lookup(span, ident.Name)
	if err != nil {
		return err
	}
	e.V.GlobalNametable().Export(ident.Name, v)
	return nil
}

func (e *Engine) opDExport(span token.Span) error {
	ident, err := e.popIdentifier(span)
	if err != nil {
		return err
	}
	v, err := e.V.Pop(span)
	if err != nil {
		return err
	}
	global := e.V.GlobalNametable()
	global.Define(ident.Name, v)
	global.Export(ident.Name, v)
	return nil
}

func (e *Engine) opFunction(span token.Span, constructor bool) error {
	arityVal, err := e.V.Pop(span)
	if err != nil {
		return err
	}
	arityInt, ok := arityVal.(value.Integer)
	if !ok {
		return langerr.InvalidType(span, "function", arityVal.Kind().String())
	}
	if arityInt.Value < 0 {
		return langerr.InvalidArgumentCount(span, arityInt.Value)
	}
	codeVal, err := e.V.Pop(span)
	if err != nil {
		return err
	}
	code, ok := codeVal.(value.CodeBlock)
	if !ok {
		return langerr.InvalidType(span, "function", codeVal.Kind().String())
	}
	e.V.Push(value.Function{
		Arity:           uint32(arityInt.Value),
		IsConstructor:   constructor,
		Code:            code.Body,
		DefiningGlobals: e.V.GlobalNametable(),
	})
	return nil
}

// --- field access / method call / lists (spec.md §4.7.2) -------------------

func (e *Engine) opFieldAccess(span token.Span) error {
	rhs, err := e.popIdentifier(span)
	if err != nil {
		return err
	}
	receiver, err := e.V.Pop(span)
	if err != nil {
		return err
	}
	if obj, ok := receiver.(value.Object); ok {
		v, found := obj.Fields.LookupLocal(rhs.Name)
		if !found {
			return langerr.UndefinedValue(span, rhs.Name.String())
		}
		e.V.Push(v)
		return nil
	}
	e.V.Push(value.BuiltinMethod{ReceiverKind: receiver.Kind(), Name: rhs.Name.String()})
	return nil
}

func (e *Engine) opMethodCall(span token.Span) error {
	name, err := e.popIdentifier(span)
	if err != nil {
		return err
	}
	receiver, err := e.V.Pop(span)
	if err != nil {
		return err
	}
	e.V.Push(receiver)
	result, err := methods.Call(receiver, e.V, span, name.Name.String())
	if err != nil {
		return err
	}
	if result != nil {
		e.V.Push(result)
	}
	return nil
}

func (e *Engine) opCreateList(span token.Span) error {
	var items []value.Value
	for {
		v, ok := e.V.RawPop()
		if !ok {
			return langerr.MissingValue(span)
		}
		if _, ok := v.(value.ListStart); ok {
			break
		}
		items = append(items, v)
	}
	out := make([]value.Value, len(items))
	for i, v := range items {
		out[len(out)-1-i] = v
	}
	e.V.Push(value.List{Items: out})
	return nil
}

// --- host I/O (spec.md §4.7.2) ----------------------------------------------

func (e *Engine) opWrite(span token.Span, newline bool) error {
	v, err := e.V.Pop(span)
	if err != nil {
		return err
	}
	if newline {
		fmt.Fprintln(e.out, v.Inspect())
	} else {
		fmt.Fprint(e.out, v.Inspect())
	}
	return nil
}

func (e *Engine) opInput(span token.Span, line bool) error {
	var text string
	var err error
	if line {
		text, err = e.in.ReadString('\n')
	} else {
		_, err = fmt.Fscan(e.in, &text)
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	e.V.Push(value.String{Value: trimNewline(text)})
	return nil
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

func (e *Engine) opDescribe(span token.Span) error {
	v, ok := e.V.RawPeek()
	if !ok {
		fmt.Fprintln(e.out, "<empty>")
		return nil
	}
	fmt.Fprintln(e.out, v.Inspect())
	return nil
}

func (e *Engine) opDescribes(span token.Span) error {
	for _, v := range e.V.Roots() {
		fmt.Fprintln(e.out, v.Inspect())
	}
	return nil
}
