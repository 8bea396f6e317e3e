package token

import "fmt"

// Span is a half-open (offset, length) range into the original source text.
// Every token and every error the lexer, parser, optimizer or engine produce
// carries one, so diagnostics can always point back at source text.
type Span struct {
	Offset int
	Length int
}

// End returns the offset one past the last byte covered by the span.
func (s Span) End() int { return s.Offset + s.Length }

// Cover returns the smallest span that contains both s and other.
func (s Span) Cover(other Span) Span {
	start := s.Offset
	if other.Offset < start {
		start = other.Offset
	}
	end := s.End()
	if other.End() > end {
		end = other.End()
	}
	return Span{Offset: start, Length: end - start}
}

func (s Span) String() string {
	return fmt.Sprintf("%d..%d", s.Offset, s.End())
}
