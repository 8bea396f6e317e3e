package methods

import (
	"github.com/klfr/sof/pkg/langerr"
	"github.com/klfr/sof/pkg/token"
	"github.com/klfr/sof/pkg/value"
)

var listMethods = map[string]Func{
	"length":  listLength,
	"idx":     listIdx,
	"head":    listHead,
	"first":   listHead,
	"tail":    listTail,
	"second":  listSecond,
	"take":    listTake,
	"after":   listAfter,
	"reverse": listReverse,
	"split":   listSplit,
	"push":    listPush,
	"empty":   listEmpty,
}

func asList(v value.Value) value.List { return v.(value.List) }

func listLength(receiver value.Value, s Stack, span token.Span) (value.Value, error) {
	return value.Integer{Value: int64(len(asList(receiver).Items))}, nil
}

func listEmpty(receiver value.Value, s Stack, span token.Span) (value.Value, error) {
	return value.Boolean{Value: len(asList(receiver).Items) == 0}, nil
}

// resolveIndex implements negative-index wraparound: -1 is the last
// element. The wrapped index must still land in [0, length) or it fails.
func resolveIndex(span token.Span, length int, i int64) (int, error) {
	idx := i
	if idx < 0 {
		idx += int64(length)
	}
	if idx < 0 {
		return 0, langerr.NegativeIndexOutOfBounds(span, int(i), length)
	}
	if idx >= int64(length) {
		return 0, langerr.IndexOutOfBounds(span, int(i), length)
	}
	return int(idx), nil
}

func listIdx(receiver value.Value, s Stack, span token.Span) (value.Value, error) {
	list := asList(receiver)
	iv, err := s.Pop(span)
	if err != nil {
		return nil, err
	}
	i, ok := iv.(value.Integer)
	if !ok {
		return nil, langerr.InvalidType(span, "idx", i.Kind().String())
	}
	idx, err := resolveIndex(span, len(list.Items), i.Value)
	if err != nil {
		return nil, err
	}
	return list.Items[idx], nil
}

func listHead(receiver value.Value, s Stack, span token.Span) (value.Value, error) {
	list := asList(receiver)
	if len(list.Items) == 0 {
		return nil, langerr.IndexOutOfBounds(span, 0, 0)
	}
	return list.Items[0], nil
}

func listSecond(receiver value.Value, s Stack, span token.Span) (value.Value, error) {
	list := asList(receiver)
	if len(list.Items) < 2 {
		return nil, langerr.IndexOutOfBounds(span, 1, len(list.Items))
	}
	return list.Items[1], nil
}

func listTail(receiver value.Value, s Stack, span token.Span) (value.Value, error) {
	list := asList(receiver)
	if len(list.Items) == 0 {
		return nil, langerr.IndexOutOfBounds(span, 0, 0)
	}
	rest := make([]value.Value, len(list.Items)-1)
	copy(rest, list.Items[1:])
	return value.List{Items: rest}, nil
}

func popCount(span token.Span, s Stack) (int, error) {
	kv, err := s.Pop(span)
	if err != nil {
		return 0, err
	}
	k, ok := kv.(value.Integer)
	if !ok {
		return 0, langerr.InvalidType(span, "take/after", k.Kind().String())
	}
	return int(k.Value), nil
}

func listTake(receiver value.Value, s Stack, span token.Span) (value.Value, error) {
	list := asList(receiver)
	k, err := popCount(span, s)
	if err != nil {
		return nil, err
	}
	if k < 0 || k > len(list.Items) {
		return nil, langerr.IndexOutOfBounds(span, k, len(list.Items))
	}
	out := make([]value.Value, k)
	copy(out, list.Items[:k])
	return value.List{Items: out}, nil
}

func listAfter(receiver value.Value, s Stack, span token.Span) (value.Value, error) {
	list := asList(receiver)
	k, err := popCount(span, s)
	if err != nil {
		return nil, err
	}
	if k < 0 || k > len(list.Items) {
		return nil, langerr.IndexOutOfBounds(span, k, len(list.Items))
	}
	out := make([]value.Value, len(list.Items)-k)
	copy(out, list.Items[k:])
	return value.List{Items: out}, nil
}

func listReverse(receiver value.Value, s Stack, span token.Span) (value.Value, error) {
	list := asList(receiver)
	out := make([]value.Value, len(list.Items))
	for i, v := range list.Items {
		out[len(out)-1-i] = v
	}
	return value.List{Items: out}, nil
}

func listSplit(receiver value.Value, s Stack, span token.Span) (value.Value, error) {
	list := asList(receiver)
	k, err := popCount(span, s)
	if err != nil {
		return nil, err
	}
	if k < 0 || k > len(list.Items) {
		return nil, langerr.IndexOutOfBounds(span, k, len(list.Items))
	}
	left := make([]value.Value, k)
	copy(left, list.Items[:k])
	right := make([]value.Value, len(list.Items)-k)
	copy(right, list.Items[k:])
	return value.List{Items: []value.Value{
		value.List{Items: left},
		value.List{Items: right},
	}}, nil
}

func listPush(receiver value.Value, s Stack, span token.Span) (value.Value, error) {
	list := asList(receiver)
	v, err := s.Pop(span)
	if err != nil {
		return nil, err
	}
	out := make([]value.Value, len(list.Items)+1)
	copy(out, list.Items)
	out[len(out)-1] = v
	return value.List{Items: out}, nil
}
