// Expansion driver: spec.md §4.3. Orchestrates one macro call end to end
// — bump the level, snapshot the symbol, collect arguments, invoke the
// body or procedure, install the result for rescanning, tear down.
package engine

import (
	"github.com/m4go/m4/core/value"
)

// invoke runs one macro call for name, whose value was already looked up
// (and thus already snapshotted against later redefinition — spec.md §4.3
// step 3, §5's snapshot-at-call-time requirement) as snapshot.
func (e *Engine) invoke(name string, snapshot *value.SymbolValue) {
	level := e.level
	lv := e.arenas.At(level)
	lv.Enter()

	e.level++
	if e.level > e.cfg.NestingLimit {
		e.level--
		e.fatalf("recursion limit of %d exceeded", e.cfg.NestingLimit)
		return
	}
	e.callSeq++
	callID := e.callSeq

	traced := e.table.IsTraced(name)
	if traced {
		e.tracer.Prepre(callID, name, snapshot)
	}

	argv := value.NewArgv([]byte(name))
	if e.lex.NextTokenIsOpen() {
		e.lex.NextToken() // consume '('
		e.collectArgs(argv, level)
	}

	if traced {
		e.tracer.Pre(callID, name, argv, e)
	}

	invokeOK := true
	if snapshot.IsProcedure() {
		p := snapshot.Proc
		uc := argv.UserArgc()
		tooFew := p.MinArgs >= 0 && uc < p.MinArgs
		tooMany := p.MaxArgs >= 0 && uc > p.MaxArgs
		if (tooFew || tooMany) && !p.Flags.Has(value.FlagSideEffectArgs) {
			which := "few"
			if tooMany {
				which = "many"
			}
			e.Warnf("%s: too %s arguments", name, which)
			invokeOK = false
		}
	}

	b := e.instack.PushStringInit(argv.QuoteAge)
	e.sinks = append(e.sinks, b)
	if invokeOK {
		switch {
		case snapshot.Kind == value.KindPlaceholder:
			e.Warnf("%s: undefined primitive from frozen state", snapshot.PlaceholderName)
		case snapshot.IsProcedure():
			snapshot.Proc.Fn(e, argv)
		case snapshot.IsText():
			e.runBody(snapshot.Text, argv)
		case snapshot.IsComposite():
			e.Emit(e.materializeChain(snapshot.Chain))
		}
	}
	e.sinks = e.sinks[:len(e.sinks)-1]

	if traced {
		e.tracer.Post(callID, b)
		e.tracer.Flush(e.diag, e.location())
	}

	e.instack.PushStringFinish(b)
	e.level--

	e.releaseArgRefs(argv)

	lv = e.arenas.At(level)
	lv.ExitOptimistic(argv.InUse)
	lv.Unref()
}

// releaseArgRefs decrements the refcount on every level a Composite
// argument's Str chain links reference (spec.md §4.3 step 13).
func (e *Engine) releaseArgRefs(argv *value.Argv) {
	for _, a := range argv.Array {
		if !a.IsComposite() {
			continue
		}
		for link := a.Chain.Head; link != nil; link = link.Next {
			if link.Kind == value.LinkStr && link.Level != value.SentinelLevel {
				e.arenas.At(link.Level).Unref()
			}
		}
	}
}
