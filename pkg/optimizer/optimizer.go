// Package optimizer rewrites a parsed token tree into an equivalent,
// cheaper-to-execute one (spec.md §4.4). Both passes are stable and
// idempotent: running the optimizer twice yields the same tree as running
// it once. This plays the role the teacher's pkg/compiler constant-folding
// pass plays over bytecode, but operating on the token tree directly since
// SOF has no bytecode stage.
package optimizer

import "github.com/klfr/sof/pkg/token"

// Optimize applies combine_id_calls, then combine_literal_pushes, each
// recursively into every CodeBlock body, and returns the rewritten tree.
// The input is not mutated.
func Optimize(toks []token.Token) []token.Token {
	toks = mapRecursive(toks, combineIDCalls)
	toks = mapRecursive(toks, combineLiteralPushes)
	return toks
}

// mapRecursive applies pass to toks and to the body of every CodeBlock
// nested anywhere within it, innermost first, so a pass never has to know
// about nesting itself.
func mapRecursive(toks []token.Token, pass func([]token.Token) []token.Token) []token.Token {
	rewritten := make([]token.Token, len(toks))
	for i, t := range toks {
		if block, ok := t.Inner.(token.CodeBlock); ok {
			rewritten[i] = token.New(token.CodeBlock{Body: mapRecursive(block.Body, pass)}, t.Span)
			continue
		}
		rewritten[i] = t
	}
	return pass(rewritten)
}

// combineIDCalls fuses an identifier followed by one Call into a
// LookupName, or by two Calls into a CallName (spec.md §4.4).
func combineIDCalls(toks []token.Token) []token.Token {
	out := make([]token.Token, 0, len(toks))
	for i := 0; i < len(toks); i++ {
		ident, ok := toks[i].Inner.(token.Identifier)
		if !ok {
			out = append(out, toks[i])
			continue
		}
		calls := 0
		for calls < 2 && i+1+calls < len(toks) && isCall(toks[i+1+calls]) {
			calls++
		}
		switch calls {
		case 0:
			out = append(out, toks[i])
		case 1:
			span := toks[i].Span.Cover(toks[i+1].Span)
			out = append(out, token.New(token.LookupName{Name: ident.Name}, span))
			i++
		default:
			span := toks[i].Span.Cover(toks[i+2].Span)
			out = append(out, token.New(token.CallName{Name: ident.Name}, span))
			i += 2
		}
	}
	return out
}

func isCall(t token.Token) bool {
	cmd, ok := t.Inner.(token.Command)
	return ok && cmd.Op == token.OpCall
}

// combineLiteralPushes fuses a maximal run of ≥2 adjacent literal-like
// tokens into one Literals token, flattening any Literals already in the
// run so runs never nest (spec.md §4.4).
func combineLiteralPushes(toks []token.Token) []token.Token {
	out := make([]token.Token, 0, len(toks))
	i := 0
	for i < len(toks) {
		if !token.IsLiteralLike(toks[i]) {
			out = append(out, toks[i])
			i++
			continue
		}
		start := i
		for i < len(toks) && token.IsLiteralLike(toks[i]) {
			i++
		}
		run := toks[start:i]
		if len(run) < 2 {
			out = append(out, run[0])
			continue
		}
		var items []token.Inner
		span := run[0].Span
		for j, t := range run {
			if j > 0 {
				span = span.Cover(t.Span)
			}
			if lits, ok := t.Inner.(token.Literals); ok {
				items = append(items, lits.Items...)
				continue
			}
			items = append(items, t.Inner)
		}
		out = append(out, token.New(token.Literals{Items: items}, span))
	}
	return out
}
