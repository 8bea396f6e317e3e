// Package token defines the token tree that flows from the lexer through
// the parser and optimizer into the execution engine (spec.md §3.1). It is
// deliberately not an AST: SOF has no expression grammar above the flat,
// order-preserving sequence of tokens a concatenative language executes
// left to right, with CodeBlock as the only nesting construct.
package token

import "github.com/klfr/sof/pkg/intern"

// Kind discriminates the Inner variants without a type switch on the hot
// path (mirrors the teacher's ObjectKind enum in pkg/eval/object_kind.go).
type Kind uint8

const (
	KindInteger Kind = iota
	KindDecimal
	KindBoolean
	KindString
	KindIdentifier
	KindListStart
	KindCurry
	KindLiterals
	KindCodeBlock
	KindCommand
	KindWhileBody
	KindSwitchBody
	KindLookupName
	KindCallName
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "Integer"
	case KindDecimal:
		return "Decimal"
	case KindBoolean:
		return "Boolean"
	case KindString:
		return "String"
	case KindIdentifier:
		return "Identifier"
	case KindListStart:
		return "ListStart"
	case KindCurry:
		return "Curry"
	case KindLiterals:
		return "Literals"
	case KindCodeBlock:
		return "CodeBlock"
	case KindCommand:
		return "Command"
	case KindWhileBody:
		return "WhileBody"
	case KindSwitchBody:
		return "SwitchBody"
	case KindLookupName:
		return "LookupName"
	case KindCallName:
		return "CallName"
	default:
		return "<unknown token kind>"
	}
}

// Inner is the payload of a Token. Every literal, marker, command and
// synthetic node implements it.
type Inner interface {
	Kind() Kind
}

// Token pairs an Inner payload with the source span it was produced from.
type Token struct {
	Inner Inner
	Span  Span
}

// --- literal inners -------------------------------------------------------

type Integer struct{ Value int64 }

func (Integer) Kind() Kind { return KindInteger }

type Decimal struct{ Value float64 }

func (Decimal) Kind() Kind { return KindDecimal }

type Boolean struct{ Value bool }

func (Boolean) Kind() Kind { return KindBoolean }

type String struct{ Value string }

func (String) Kind() Kind { return KindString }

type Identifier struct{ Name intern.Identifier }

func (Identifier) Kind() Kind { return KindIdentifier }

// --- sentinel literals -----------------------------------------------------

type ListStart struct{}

func (ListStart) Kind() Kind { return KindListStart }

type Curry struct{}

func (Curry) Kind() Kind { return KindCurry }

// --- optimizer-produced bulk forms -----------------------------------------

// Literals is a maximal run of literal tokens fused by combine_literal_pushes
// (spec.md §4.4). Items must push in source order.
type Literals struct{ Items []Inner }

func (Literals) Kind() Kind { return KindLiterals }

// LookupName is ident + one Call fused by combine_id_calls.
type LookupName struct{ Name intern.Identifier }

func (LookupName) Kind() Kind { return KindLookupName }

// CallName is ident + two Calls (i.e. `ident . .`) fused by combine_id_calls.
type CallName struct{ Name intern.Identifier }

func (CallName) Kind() Kind { return KindCallName }

// --- structural ------------------------------------------------------------

// CodeBlock is a nested, parsed token sequence. Its Body is treated as
// immutable after parsing: optimizer rewrites produce a new Body slice
// rather than mutating this one in place.
type CodeBlock struct{ Body []Token }

func (CodeBlock) Kind() Kind { return KindCodeBlock }

// Command wraps one of the fixed command-set operators/keywords.
type Command struct{ Op Op }

func (Command) Kind() Kind { return KindCommand }

// --- engine-synthetic tokens: never produced by the parser ------------------

// WhileBody is injected by the engine to drive while/dowhile loops through
// the Loop return-behavior trampoline (spec.md §4.7.1, §4.7.2).
type WhileBody struct{}

func (WhileBody) Kind() Kind { return KindWhileBody }

// SwitchBody is injected by the engine to drive switch-case evaluation.
type SwitchBody struct{}

func (SwitchBody) Kind() Kind { return KindSwitchBody }

// --- constructors -----------------------------------------------------------

func New(inner Inner, span Span) Token { return Token{Inner: inner, Span: span} }

// IsLiteralLike reports whether a token is eligible to participate in a
// combine_literal_pushes run: a plain literal/marker/fused-literals token,
// never a command, control token or code block.
func IsLiteralLike(t Token) bool {
	switch t.Inner.(type) {
	case Integer, Decimal, Boolean, String, Identifier, ListStart, Curry, Literals:
		return true
	default:
		return false
	}
}
