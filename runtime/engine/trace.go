// Trace formatter: spec.md §6 "Tracing output format". Produces the
// m4trace: lines for a traced macro's prepre/pre/post phases, buffered
// per call and flushed as one diagnostic write.
package engine

import (
	"bytes"
	"fmt"

	"github.com/m4go/m4/core/value"
	"github.com/m4go/m4/runtime/inputstack"
)

// Tracer accumulates the m4trace: lines for one in-flight traced call.
type Tracer struct {
	maxArgLen   int
	traceModule bool
	traceQuote  bool

	level int
	id    int
	buf   bytes.Buffer
}

// NewTracer builds a Tracer from the engine's debug configuration
// (SPEC_FULL.md/spec.md §6: max_debug_arg_length, TRACE_QUOTE, TRACE_MODULE).
func NewTracer(maxArgLen int, traceModule, traceQuote bool) *Tracer {
	return &Tracer{maxArgLen: maxArgLen, traceModule: traceModule, traceQuote: traceQuote}
}

// Prepre writes the "<name> ... = <value-print>" line (spec.md §6: "up to
// three lines: prepre (<name> ... = <value-print>)").
func (t *Tracer) Prepre(callID int, name string, snapshot *value.SymbolValue) {
	t.buf.Reset()
	t.id = callID
	fmt.Fprintf(&t.buf, "%s ... = %s\n", name, t.describe(snapshot))
}

// Pre writes the "<name>[(arg1, arg2, …)]" line.
func (t *Tracer) Pre(callID int, name string, argv *value.Argv, e *Engine) {
	t.id = callID
	t.level = e.ExpansionLevel()
	t.buf.WriteString(name)
	if argv.UserArgc() == 0 {
		return
	}
	t.buf.WriteByte('(')
	open, close := "", ""
	if t.traceQuote {
		open, close = e.Quotes()
	}
	for i := 1; i < argv.Argc; i++ {
		if i > 1 {
			t.buf.WriteString(", ")
		}
		t.buf.WriteString(open)
		t.buf.Write(t.truncate(e.ArgText(argv, i)))
		t.buf.WriteString(close)
	}
	t.buf.WriteByte(')')
}

// Post appends " -> <expanded-print>" to the buffered pre line, reading
// the call's rendered output back out of its (not-yet-installed) builder.
func (t *Tracer) Post(callID int, out *inputstack.Builder) {
	fmt.Fprintf(&t.buf, " -> %s", t.truncate(out.Bytes()))
}

func (t *Tracer) truncate(b []byte) []byte {
	if t.maxArgLen <= 0 || len(b) <= t.maxArgLen {
		return b
	}
	return append(append([]byte{}, b[:t.maxArgLen]...), "..."...)
}

func (t *Tracer) describe(v *value.SymbolValue) string {
	if v.IsProcedure() {
		if t.traceModule {
			return fmt.Sprintf("<procedure %s, module builtin>", v.Proc.Name)
		}
		return fmt.Sprintf("<procedure %s>", v.Proc.Name)
	}
	return v.String()
}

// Flush writes the buffered m4trace: line for this call via diag, in the
// format spec.md §6 fixes: "m4trace:[<file>:][<line>:] -<level>-
// [id <n>: ]<message>".
func (t *Tracer) Flush(diag Diagnostics, at string) {
	diag.Warn("", "m4trace:%s -%d- id %d: %s\n", traceLocPrefix(at), t.level, t.id, t.buf.String())
}

func traceLocPrefix(at string) string {
	if at == "" {
		return ""
	}
	return at + ":"
}
