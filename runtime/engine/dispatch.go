// Token dispatcher: spec.md §4.1. Classifies one token at a time into
// either a value to emit/accumulate, or a side effect (invoking the
// expansion driver for a macro call, which produces no direct value of
// its own — its output is pushed onto the input stack for the dispatcher
// to encounter again on a later pull).
package engine

import (
	"strings"

	"github.com/m4go/m4/core/types"
	"github.com/m4go/m4/core/value"
)

// Next reads and classifies the next token. The returned SymbolValue is
// what the caller (the top-level run loop, or the argument collector)
// should emit or accumulate; it is value.Empty (not nil) when the token
// triggered a macro call, since that call's output reaches the stream
// indirectly through rescanning, not as a direct return (spec.md §4.1
// "Word (macro): always safe, output is pushed through input stack").
//
// safe reports whether the returned bytes can be juxtaposed with
// surrounding output without forcing a re-lex under the current quote
// age (spec.md §4.1's per-token-kind safety table). Per spec.md §9 this
// is a conservative heuristic, not a precise proof.
func (e *Engine) Next() (tokType types.TokenType, val *value.SymbolValue, safe bool) {
	tok := e.lex.NextToken()

	switch tok.Type {
	case types.EOF:
		return types.EOF, value.Empty, true

	case types.MacDef:
		// A MacDef token is never itself invoked here — only a Word token
		// that resolves through symbol-table lookup triggers a call
		// (matching the source engine's expand_token, where the
		// TOKEN_MACDEF case is a no-op at the dispatcher level). A
		// pushed Procedure value (from `defn`) is meaningful only as the
		// sole content of an argument the collector is building — it is
		// the collector's job to capture it, not the dispatcher's to run
		// it; reached bare at the top level it contributes nothing, same
		// as the source engine's "obs == NULL" top-level pass.
		v, _ := tok.Proc.(*value.SymbolValue)
		if v == nil {
			return types.MacDef, value.Empty, true
		}
		return types.MacDef, v, true

	case types.String:
		return types.String, value.NewText(tok.Text, tok.Quote), e.lex.Syntax().SafeQuotes()

	case types.Open, types.Close, types.Comma, types.Space:
		return tok.Type, value.NewText(tok.Text, tok.Quote), e.lex.Syntax().SafeQuotes()

	case types.Simple:
		return types.Simple, value.NewText(tok.Text, tok.Quote), false

	case types.Word:
		name := string(tok.Text)
		sym, ok := e.table.Lookup(name)
		if !ok {
			e.suggestUnknown(name)
			return types.Word, value.NewText(tok.Text, tok.Quote), e.lex.Syntax().SafeQuotes()
		}
		result, invoked := e.classifyResolved(name, sym)
		if invoked {
			return types.Word, result, true
		}
		return types.Word, result, e.lex.Syntax().SafeQuotes()

	default:
		return tok.Type, value.Empty, true
	}
}

// suggestUnknown emits a "did you mean ...?" hint for an undefined Word
// token, when Config.SuggestUnknownMacros asked for it (off by default,
// since GNU m4 itself treats an undefined macro as ordinary literal text
// with no diagnostic at all).
func (e *Engine) suggestUnknown(name string) {
	if !e.cfg.SuggestUnknownMacros {
		return
	}
	suggestions := e.table.Suggest(name, 3)
	if len(suggestions) == 0 {
		return
	}
	e.Warnf("%s: undefined macro, did you mean %s?", name, strings.Join(suggestions, ", "))
}

// classifyResolved decides what to do with the symbol a Word token's
// lookup resolved to (MacDef tokens never reach it, see Next): blind macros without a following '(' are emitted as literal text;
// everything else invokes the expansion driver, which returns no direct
// value (spec.md §4.1). invoked reports which branch was taken, since
// only the invoke branch is unconditionally safe to juxtapose — the
// literal-text branch is an ordinary Word (non-macro) for quoting
// purposes and must fall back to the safe_quotes heuristic.
func (e *Engine) classifyResolved(name string, sym *value.SymbolValue) (result *value.SymbolValue, invoked bool) {
	if sym.IsProcedure() && sym.Proc.Flags.Has(value.FlagBlindArgs) && !e.lex.NextTokenIsOpen() {
		if name == "" {
			name = sym.Proc.Name
		}
		return value.NewText([]byte(name), 0), false
	}
	if name == "" && sym.IsProcedure() {
		name = sym.Proc.Name
	}
	e.invoke(name, sym)
	return value.Empty, true
}
