// Top-level driver loop: pulls tokens from the dispatcher until EOF,
// writing literal values to the current sink (spec.md §4.1's outer
// consumer, never named explicitly in the spec since it is simply "the
// caller" of next_token at nesting depth 0).
package engine

import (
	"github.com/m4go/m4/core/types"
)

// Run drains the input stack until EOF, expanding macros as it goes.
// Fatal errors raised via Diagnostics.Fatal unwind here as a recovered
// *FatalError, converted to a normal Go error (spec.md §7: "fatal errors
// propagate out of the engine to the process exit path").
func (e *Engine) Run() (err error) {
	defer func() {
		if r := recover(); r != nil {
			if fe, ok := r.(*FatalError); ok {
				err = fe
				return
			}
			panic(r)
		}
	}()

	for {
		tokType, val, _ := e.Next()
		if tokType == types.EOF {
			return nil
		}
		if val.IsEmpty() {
			continue
		}
		switch {
		case val.IsText():
			e.Emit(val.Text)
		case val.IsComposite():
			e.Emit(e.materializeChain(val.Chain))
		// A bare Procedure value (a `defn`-pushed MacDef token reaching
		// the top level unconsumed by any argument collection) produces
		// no output, matching the source engine's no-op top-level case
		// for TOKEN_MACDEF.
		}
	}
}
