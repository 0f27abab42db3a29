// Body processor: spec.md §4.4. Walks a macro's defining text byte by
// byte, substituting dollar-references against the call's argv, emitting
// everything else verbatim.
package engine

import (
	"github.com/m4go/m4/core/types"
	"github.com/m4go/m4/core/value"
	"github.com/m4go/m4/runtime/inputstack"
)

// runBody expands body against argv, writing to the current sink.
func (e *Engine) runBody(body []byte, argv *value.Argv) {
	i := 0
	n := len(body)
	for i < n {
		c := body[i]
		if c != '$' || i+1 >= n {
			e.Emit(body[i : i+1])
			i++
			continue
		}

		next := body[i+1]
		switch {
		case next >= '0' && next <= '9':
			idx, consumed := e.scanArgIndex(body, i+1)
			e.Emit(e.ArgText(argv, idx))
			i += 1 + consumed

		case next == '#':
			e.Emit(FormatInt(argv.UserArgc()))
			i += 2

		case next == '*':
			e.emitJoinedArgs(argv, false)
			i += 2

		case next == '@':
			e.emitArgvRef(argv)
			i += 2

		default:
			consumed := e.substituteNamedParam(body, i, argv)
			i += consumed
		}
	}
}

// scanArgIndex reads the digit at body[at] and, under GNU extensions,
// continues consuming a maximal run of further digits (spec.md §4.4 "$0
// ... $9 single digit ... if GNU-extensions mode and the next char is a
// digit, parse the maximal decimal integer instead").
func (e *Engine) scanArgIndex(body []byte, at int) (idx int, consumed int) {
	start := at
	idx = int(body[at] - '0')
	at++
	if e.cfg.GNUExtensions {
		for at < len(body) && body[at] >= '0' && body[at] <= '9' {
			idx = idx*10 + int(body[at]-'0')
			at++
		}
	}
	return idx, at - start
}

// emitJoinedArgs implements $* (and the text half of push_args-style
// joining): every user argument's text, comma-separated.
func (e *Engine) emitJoinedArgs(argv *value.Argv, quote bool) {
	open, close := e.Quotes()
	for i := 1; i < argv.Argc; i++ {
		if i > 1 {
			e.Emit([]byte(","))
		}
		if quote {
			e.Emit([]byte(open))
		}
		e.Emit(e.ArgText(argv, i))
		if quote {
			e.Emit([]byte(close))
		}
	}
}

// emitArgvRef implements $@: rather than materializing text, build an
// ArgvRef composite referencing argv starting at 1 and splice it into the
// current call's output builder as its own segment, so a later rescan
// still observes any Procedure-valued argument instead of its coerced
// text (spec.md §4.4's "crucially, $@ is emitted as an ArgvRef
// composite").
func (e *Engine) emitArgvRef(argv *value.Argv) {
	if argv.UserArgc() == 0 {
		return
	}
	link := value.NewArgvRefLink(argv, 1, false, argv.QuoteAge)
	chain := &value.Chain{}
	chain.Append(link)
	composite := &value.SymbolValue{Kind: value.KindComposite, Chain: chain}
	argv.HasRef = true
	argv.InUse = true
	if b, ok := e.currentSink().(*inputstack.Builder); ok {
		b.WriteSymbol(composite)
	} else {
		e.Emit(e.materializeChain(chain))
	}
}

// substituteNamedParam handles every dollar-form that isn't a digit, #, *,
// or @ (spec.md §4.4's final clause): POSIX mode or no declared signature
// copies the '$' literally; otherwise a maximal [alnum_]+ run is looked up
// in the signature, or reported as an unterminated reference.
func (e *Engine) substituteNamedParam(body []byte, dollarAt int, argv *value.Argv) (consumed int) {
	params := e.table.Params(string(argv.Argv0))
	if e.cfg.POSIXMode || params == nil {
		e.Emit(body[dollarAt : dollarAt+1])
		return 1
	}

	at := dollarAt + 1
	start := at
	for at < len(body) && isParamByte(body[at]) {
		at++
	}
	if at == start {
		e.Emit(body[dollarAt : dollarAt+1])
		return 1
	}
	key := string(body[start:at])
	if idx, ok := params[key]; ok {
		e.Emit(e.ArgText(argv, idx))
		return at - dollarAt
	}
	e.Warnf("unterminated parameter reference: $%s", key)
	return at - dollarAt
}

func isParamByte(b byte) bool {
	return types.IsIdentPart(b)
}
