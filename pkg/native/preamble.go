package native

import (
	"encoding/hex"
	"strconv"

	"golang.org/x/crypto/blake2b"

	"github.com/klfr/sof/pkg/langerr"
	"github.com/klfr/sof/pkg/token"
	"github.com/klfr/sof/pkg/value"
)

// RegisterPreamble installs the native functions the bootstrap preamble
// (spec.md §4.10) binds into the global scope: the convert:* coercions
// grounded on original_source/sof-rs/src/lib/preamble.rs's to_integer/
// to_float/to_string, plus a hash:blake2b native exercising
// golang.org/x/crypto, the teacher's own crypto dependency (pkg/vm/
// websocket.go and smtp.go auth use it for HMAC/TLS; SOF has no network
// surface to host that concern, so a content-hashing native is where the
// dependency lands instead).
func RegisterPreamble(r *Registry) {
	r.Register("klfr.sof.lib.Builtins#convertInt(Stackable)", 1, convertInt)
	r.Register("klfr.sof.lib.Builtins#convertFloat(Stackable)", 1, convertFloat)
	r.Register("klfr.sof.lib.Builtins#convertString(Stackable)", 1, convertString)
	r.Register("klfr.sof.lib.Builtins#hashBlake2b(Stackable)", 1, hashBlake2b)
}

func convertInt(args []value.Value) (value.Value, error) {
	v := args[0]
	switch x := v.(type) {
	case value.Integer:
		return x, nil
	case value.Decimal:
		return value.Integer{Value: int64(x.Value)}, nil
	case value.Boolean:
		if x.Value {
			return value.Integer{Value: 1}, nil
		}
		return value.Integer{Value: 0}, nil
	case value.String:
		n, err := strconv.ParseInt(x.Value, 10, 64)
		if err != nil {
			return nil, langerr.InvalidInteger(token.Span{}, x.Value, err)
		}
		return value.Integer{Value: n}, nil
	default:
		return nil, langerr.InvalidTypeNative(token.Span{}, "convert:int", v.Inspect())
	}
}

func convertFloat(args []value.Value) (value.Value, error) {
	v := args[0]
	switch x := v.(type) {
	case value.Integer:
		return value.Decimal{Value: float64(x.Value)}, nil
	case value.Decimal:
		return x, nil
	case value.Boolean:
		if x.Value {
			return value.Decimal{Value: 1}, nil
		}
		return value.Decimal{Value: 0}, nil
	case value.String:
		f, err := strconv.ParseFloat(x.Value, 64)
		if err != nil {
			return nil, langerr.InvalidFloat(token.Span{}, x.Value, err)
		}
		return value.Decimal{Value: f}, nil
	default:
		return nil, langerr.InvalidTypeNative(token.Span{}, "convert:float", v.Inspect())
	}
}

func convertString(args []value.Value) (value.Value, error) {
	return value.String{Value: args[0].Inspect()}, nil
}

func hashBlake2b(args []value.Value) (value.Value, error) {
	s, ok := args[0].(value.String)
	if !ok {
		return nil, langerr.InvalidTypeNative(token.Span{}, "hash:blake2b", args[0].Inspect())
	}
	sum := blake2b.Sum256([]byte(s.Value))
	return value.String{Value: hex.EncodeToString(sum[:])}, nil
}
