// Argument collector: spec.md §4.2, §4.6. Contract: the caller has
// already consumed the open-paren (or separating comma); this parses one
// argument at a time to the matching comma or close-paren, recursing
// through the dispatcher for nested tokens (so an inner macro call can
// interrupt collection, per spec.md §1's "recursive rescanning").
package engine

import (
	"github.com/m4go/m4/core/types"
	"github.com/m4go/m4/core/value"
	"github.com/m4go/m4/runtime/arena"
)

// collectArgs fills argv by repeatedly calling collectOneArg until a
// Close at depth 0 terminates the list. The caller must already have
// consumed the opening '('.
func (e *Engine) collectArgs(argv *value.Argv, level int) {
	argv.QuoteAge = 0 // set from the first argument; 0 until then is harmless (no args yet)
	first := true
	arrStart := e.arenas.At(level).PtrsTop()
	for {
		lv := e.arenas.At(level) // re-resolve by index: nested calls may have grown the vector (spec.md §9)
		arg, age, more := e.collectOneArg(lv, level)
		argv.Argc++
		if arg.IsComposite() {
			argv.HasRef = true
		}
		lv.AllocPtrs([]*value.SymbolValue{arg})
		argv.Array = lv.SliceFromPtrs(arrStart)
		if first {
			argv.QuoteAge = age
			first = false
		} else if argv.QuoteAge != age {
			argv.QuoteAge = 0
		}
		if !more {
			return
		}
	}
}

// collectOneArg implements the single-state-variable state machine of
// spec.md §4.6: paren_depth, transitioning on Open/Close/Comma/EOF.
func (e *Engine) collectOneArg(lv *arena.Level, level int) (result *value.SymbolValue, age types.QuoteAge, more bool) {
	depth := 0
	textStart := lv.BytesTop()
	pendingStart := textStart
	hasText := false
	var chain *value.Chain
	var soleProc *value.SymbolValue
	ageSet := false

	flushPending := func() {
		if !hasText {
			return
		}
		end := lv.BytesTop()
		if end <= pendingStart {
			hasText = false
			return
		}
		if chain == nil {
			chain = &value.Chain{}
		}
		chain.Append(value.NewStrLink(lv.SliceFrom(pendingStart), level, age))
		lv.Ref()
		hasText = false
	}

	appendVal := func(v *value.SymbolValue, safe bool) {
		if v == nil || v.IsEmpty() {
			return
		}
		if v.IsProcedure() && chain == nil && !hasText && soleProc == nil {
			soleProc = v
			return
		}
		soleProc = nil // text or a composite arrived: the FIXME behavior (spec.md §9 Open question) — a
		// concatenated procedure value silently becomes text rather than
		// keeping its callable identity, matching the observable legacy
		// behavior the spec calls out, without its accompanying warning.

		if v.IsProcedure() {
			// A procedure value concatenated with other content has no
			// textual representation of its own; it contributes nothing
			// (spec.md §9's FIXME covers the single-value case above).
			return
		}

		if v.IsComposite() {
			flushPending()
			if chain == nil {
				chain = &value.Chain{}
			}
			for link := v.Chain.Head; link != nil; link = link.Next {
				chain.Append(link)
			}
			pendingStart = lv.BytesTop()
			if !safe {
				age = 0
			}
			return
		}

		lv.AllocBytes(v.Text)
		hasText = true
		if !ageSet {
			age = v.QuoteAge
			ageSet = true
		} else if age != v.QuoteAge {
			age = 0
		}
		if !safe {
			age = 0
		}
	}

	skippingLeadingSpace := true
	for {
		tokType, val, safe := e.Next()
		switch tokType {
		case types.EOF:
			e.fatalf("end of file in argument list")
			return value.Empty, 0, false

		case types.Space:
			if skippingLeadingSpace && chain == nil && !hasText && soleProc == nil {
				continue
			}

		case types.Comma:
			if depth == 0 {
				return e.finalizeArg(lv, level, textStart, pendingStart, hasText, chain, soleProc, age), age, true
			}

		case types.Close:
			if depth == 0 {
				return e.finalizeArg(lv, level, textStart, pendingStart, hasText, chain, soleProc, age), age, false
			}
			depth--

		case types.Open:
			depth++
		}

		skippingLeadingSpace = false
		appendVal(val, safe)
	}
}

func (e *Engine) finalizeArg(lv *arena.Level, level, textStart, pendingStart int, hasText bool, chain *value.Chain, soleProc *value.SymbolValue, age types.QuoteAge) *value.SymbolValue {
	if chain != nil {
		if hasText && lv.BytesTop() > pendingStart {
			chain.Append(value.NewStrLink(lv.SliceFrom(pendingStart), level, age))
			lv.Ref()
		}
		return &value.SymbolValue{Kind: value.KindComposite, Chain: chain}
	}
	if soleProc != nil {
		return soleProc
	}
	return value.NewText(lv.SliceFrom(textStart), age)
}
