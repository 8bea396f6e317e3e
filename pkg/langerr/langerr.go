// Package langerr defines SOF's flat tagged-sum error model (spec.md §7).
// Every kind carries the source span that produced it, following the
// field shapes of the Rust reference implementation's error.rs so
// diagnostics render with the same information.
package langerr

import (
	"fmt"

	"golang.org/x/xerrors"

	"github.com/klfr/sof/pkg/token"
)

// Kind discriminates an Error's variant for callers that want to branch on
// error category (e.g. a REPL deciding whether to keep reading).
type Kind uint8

const (
	KindInvalidCharacter Kind = iota
	KindInvalidIdentifier
	KindInvalidInteger
	KindInvalidFloat
	KindUnclosedString
	KindUnclosedCodeBlock
	KindMissingValue
	KindMissingNametable
	KindUndefinedValue
	KindInvalidType
	KindInvalidTypes
	KindInvalidTypeNative
	KindInvalidArgumentCount
	KindDivideByZero
	KindIncomparable
	KindOverflow
	KindAssertionFailed
	KindIndexOutOfBounds
	KindNegativeIndexOutOfBounds
	KindUnknownNativeFunction
	KindModuleFileNotReadable
	KindNotEnoughArguments
)

func (k Kind) String() string {
	switch k {
	case KindInvalidCharacter:
		return "InvalidCharacter"
	case KindInvalidIdentifier:
		return "InvalidIdentifier"
	case KindInvalidInteger:
		return "InvalidInteger"
	case KindInvalidFloat:
		return "InvalidFloat"
	case KindUnclosedString:
		return "UnclosedString"
	case KindUnclosedCodeBlock:
		return "UnclosedCodeBlock"
	case KindMissingValue:
		return "MissingValue"
	case KindMissingNametable:
		return "MissingNametable"
	case KindUndefinedValue:
		return "UndefinedValue"
	case KindInvalidType:
		return "InvalidType"
	case KindInvalidTypes:
		return "InvalidTypes"
	case KindInvalidTypeNative:
		return "InvalidTypeNative"
	case KindInvalidArgumentCount:
		return "InvalidArgumentCount"
	case KindDivideByZero:
		return "DivideByZero"
	case KindIncomparable:
		return "Incomparable"
	case KindOverflow:
		return "Overflow"
	case KindAssertionFailed:
		return "AssertionFailed"
	case KindIndexOutOfBounds:
		return "IndexOutOfBounds"
	case KindNegativeIndexOutOfBounds:
		return "NegativeIndexOutOfBounds"
	case KindUnknownNativeFunction:
		return "UnknownNativeFunction"
	case KindModuleFileNotReadable:
		return "ModuleFileNotReadable"
	case KindNotEnoughArguments:
		return "NotEnoughArguments"
	default:
		return "<unknown error kind>"
	}
}

// Error is SOF's single error type: a Kind, a Span and a formatted Message,
// plus an optional wrapped cause. Kind-specific details are formatted into
// Message by the helper constructors below, so call sites never build an
// Error by hand.
type Error struct {
	Kind    Kind
	Span    token.Span
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s at %s: %s: %v", e.Kind, e.Span, e.Message, e.cause)
	}
	return fmt.Sprintf("%s at %s: %s", e.Kind, e.Span, e.Message)
}

// Unwrap exposes the wrapped cause, if any, to errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.cause }

func newErr(kind Kind, span token.Span, format string, args ...any) *Error {
	return &Error{Kind: kind, Span: span, Message: fmt.Sprintf(format, args...)}
}

func wrapErr(kind Kind, span token.Span, cause error, format string, args ...any) *Error {
	e := newErr(kind, span, format, args...)
	e.cause = cause
	return e
}

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if xerrors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// --- syntax ------------------------------------------------------------

func InvalidCharacter(span token.Span, ch rune) error {
	return newErr(KindInvalidCharacter, span, "invalid character %q", ch)
}

func InvalidIdentifier(span token.Span, ch rune, ident string) error {
	return newErr(KindInvalidIdentifier, span, "invalid character %q in identifier %q", ch, ident)
}

func InvalidInteger(span token.Span, text string, cause error) error {
	return wrapErr(KindInvalidInteger, span, cause, "invalid integer %q", text)
}

func InvalidFloat(span token.Span, text string, cause error) error {
	return wrapErr(KindInvalidFloat, span, cause, "invalid float %q", text)
}

func UnclosedString(span token.Span) error {
	return newErr(KindUnclosedString, span, "unclosed string")
}

func UnclosedCodeBlock(start token.Span, lastSeen *token.Span) error {
	if lastSeen == nil {
		return newErr(KindUnclosedCodeBlock, start, "unclosed code block opened here")
	}
	return newErr(KindUnclosedCodeBlock, start, "unclosed code block opened here, last seen token at %s", *lastSeen)
}

// --- stack access --------------------------------------------------------

func MissingValue(span token.Span) error {
	return newErr(KindMissingValue, span, "cannot pop value from empty stack")
}

func MissingNametable(span token.Span) error {
	return newErr(KindMissingNametable, span, "no nametable available")
}

// --- name ----------------------------------------------------------------

func UndefinedValue(span token.Span, name string) error {
	return newErr(KindUndefinedValue, span, "name %s is not defined", name)
}

// --- type ------------------------------------------------------------------

func InvalidType(span token.Span, operation, value string) error {
	return newErr(KindInvalidType, span, "invalid type for operation %s: %s", operation, value)
}

func InvalidTypes(span token.Span, operation, lhs, rhs string) error {
	return newErr(KindInvalidTypes, span, "invalid types for operation %s: %s and %s", operation, lhs, rhs)
}

func InvalidTypeNative(span token.Span, name, value string) error {
	return newErr(KindInvalidTypeNative, span, "invalid type in %s: %s", name, value)
}

func InvalidArgumentCount(span token.Span, count int64) error {
	return newErr(KindInvalidArgumentCount, span, "invalid argument count %d, must not be negative", count)
}

// --- arithmetic --------------------------------------------------------

func DivideByZero(span token.Span, lhs, rhs string) error {
	return newErr(KindDivideByZero, span, "divide by zero: %s / %s", lhs, rhs)
}

func Incomparable(span token.Span, lhs, rhs string) error {
	return newErr(KindIncomparable, span, "non-comparable values: %s and %s", lhs, rhs)
}

func Overflow(span token.Span, operation string) error {
	return newErr(KindOverflow, span, "arithmetic overflow in %s", operation)
}

// --- assertion -----------------------------------------------------------

func AssertionFailed(span token.Span) error {
	return newErr(KindAssertionFailed, span, "assertion failed")
}

// --- index -----------------------------------------------------------------

func IndexOutOfBounds(span token.Span, index, length int) error {
	return newErr(KindIndexOutOfBounds, span, "index %d is out of bounds for list of length %d", index, length)
}

func NegativeIndexOutOfBounds(span token.Span, index, length int) error {
	return newErr(KindNegativeIndexOutOfBounds, span, "negative index %d is out of bounds for list of length %d", index, length)
}

// --- native ----------------------------------------------------------------

func UnknownNativeFunction(span token.Span, name string) error {
	return newErr(KindUnknownNativeFunction, span, "native function %s not found", name)
}

// --- module ----------------------------------------------------------------

func ModuleFileNotReadable(span token.Span, path string, cause error) error {
	return wrapErr(KindModuleFileNotReadable, span, cause, "module file %q not readable", path)
}

func NotEnoughArguments(span token.Span, count int) error {
	return newErr(KindNotEnoughArguments, span, "not enough arguments, needed %d", count)
}
