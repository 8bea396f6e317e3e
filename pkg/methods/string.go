package methods

import (
	"strings"

	"github.com/klfr/sof/pkg/langerr"
	"github.com/klfr/sof/pkg/token"
	"github.com/klfr/sof/pkg/value"
)

var stringMethods = map[string]Func{
	"length":  stringLength,
	"upper":   stringUpper,
	"lower":   stringLower,
	"reverse": stringReverse,
	"idx":     stringIdx,
	"empty":   stringEmpty,
}

func stringLength(receiver value.Value, s Stack, span token.Span) (value.Value, error) {
	str := receiver.(value.String)
	return value.Integer{Value: int64(len([]rune(str.Value)))}, nil
}

func stringEmpty(receiver value.Value, s Stack, span token.Span) (value.Value, error) {
	str := receiver.(value.String)
	return value.Boolean{Value: len(str.Value) == 0}, nil
}

func stringUpper(receiver value.Value, s Stack, span token.Span) (value.Value, error) {
	str := receiver.(value.String)
	return value.String{Value: strings.ToUpper(str.Value)}, nil
}

func stringLower(receiver value.Value, s Stack, span token.Span) (value.Value, error) {
	str := receiver.(value.String)
	return value.String{Value: strings.ToLower(str.Value)}, nil
}

func stringReverse(receiver value.Value, s Stack, span token.Span) (value.Value, error) {
	str := receiver.(value.String)
	runes := []rune(str.Value)
	out := make([]rune, len(runes))
	for i, r := range runes {
		out[len(out)-1-i] = r
	}
	return value.String{Value: string(out)}, nil
}

func stringIdx(receiver value.Value, s Stack, span token.Span) (value.Value, error) {
	str := receiver.(value.String)
	runes := []rune(str.Value)
	iv, err := s.Pop(span)
	if err != nil {
		return nil, err
	}
	i, ok := iv.(value.Integer)
	if !ok {
		return nil, langerr.InvalidType(span, "idx", i.Kind().String())
	}
	idx, err := resolveIndex(span, len(runes), i.Value)
	if err != nil {
		return nil, err
	}
	return value.String{Value: string(runes[idx])}, nil
}
