// Argv accessors: spec.md §4.5. These need both the arena (to
// materialize composite chains into scratch bytes) and the input stack
// (to push an argument back for rescanning), so they live here rather
// than in core/value.
package engine

import (
	"strconv"

	"github.com/m4go/m4/core/value"
)

// resolveArg implements arg_symbol: direct indexing for a non-wrapper
// argv, or a walk through chain links for a wrapper built by MakeArgvRef.
func (e *Engine) resolveArg(argv *value.Argv, i int) *value.SymbolValue {
	if !argv.Wrapper {
		return argv.DirectArg(i)
	}
	if len(argv.Array) != 1 || !argv.Array[0].IsComposite() {
		return value.Empty
	}
	link := argv.Array[0].Chain.Head
	if link == nil || link.Kind != value.LinkArgvRef {
		return value.Empty
	}
	target := (i - 1) + link.Start
	v := e.resolveArg(link.Argv, target)
	if link.Flatten && v.IsProcedure() {
		return value.Empty
	}
	return v
}

// ArgText implements arg_text: the argument's textual representation,
// materializing a Composite chain on demand into the caller's level
// scratch arena.
func (e *Engine) ArgText(argv *value.Argv, i int) []byte {
	v := e.resolveArg(argv, i)
	switch {
	case v.IsText():
		return v.Text
	case v.IsComposite():
		return e.materializeChain(v.Chain)
	case v.IsProcedure():
		return []byte(v.Proc.Name)
	default:
		return nil
	}
}

// ArgLen implements arg_len.
func (e *Engine) ArgLen(argv *value.Argv, i int) int { return len(e.ArgText(argv, i)) }

// ArgEmpty implements arg_empty.
func (e *Engine) ArgEmpty(argv *value.Argv, i int) bool {
	v := e.resolveArg(argv, i)
	return v.IsEmpty() || (v.IsText() && len(v.Text) == 0)
}

// ArgFunc implements arg_func: the argument's Procedure, if it is one.
func (e *Engine) ArgFunc(argv *value.Argv, i int) (*value.Procedure, bool) {
	v := e.resolveArg(argv, i)
	if !v.IsProcedure() {
		return nil, false
	}
	return v.Proc, true
}

// ArgEqual implements arg_equal: byte-for-byte comparison without forcing
// materialization when both sides are plain text (the common case);
// falls back to materializing for composite arguments.
func (e *Engine) ArgEqual(argv *value.Argv, i int, s []byte) bool {
	v := e.resolveArg(argv, i)
	if v.IsText() {
		return string(v.Text) == string(s)
	}
	return string(e.ArgText(argv, i)) == string(s)
}

// ArgArgc implements arg_argc.
func (e *Engine) ArgArgc(argv *value.Argv) int { return argv.Argc }

// materializeChain flattens a Composite chain into a single byte slice,
// resolving nested ArgvRef links recursively (spec.md §3 ChainLink).
func (e *Engine) materializeChain(c *value.Chain) []byte {
	var out []byte
	for link := c.Head; link != nil; link = link.Next {
		switch link.Kind {
		case value.LinkStr:
			out = append(out, link.Bytes...)
		case value.LinkArgvRef:
			out = append(out, e.materializeArgvRef(link)...)
		}
	}
	return out
}

func (e *Engine) materializeArgvRef(link *value.ChainLink) []byte {
	argv := link.Argv
	var out []byte
	for i := link.Start; i < argv.Argc; i++ {
		if i > link.Start {
			out = append(out, ',')
		}
		v := e.resolveArg(argv, i)
		if link.Flatten && v.IsProcedure() {
			continue
		}
		switch {
		case v.IsText():
			out = append(out, v.Text...)
		case v.IsComposite():
			out = append(out, e.materializeChain(v.Chain)...)
		case v.IsProcedure():
			out = append(out, v.Proc.Name...)
		}
	}
	return out
}

// MakeArgvRef implements make_argv_ref: build a wrapper Argv that shares
// storage with argv (or, if argv is already a wrapper, with its
// underlying target) starting at 1-based index skip, under the new call
// name.
func (e *Engine) MakeArgvRef(argv *value.Argv, name []byte, skip int, flatten bool) *value.Argv {
	target := argv
	start := skip
	if argv.Wrapper && len(argv.Array) == 1 && argv.Array[0].IsComposite() {
		if head := argv.Array[0].Chain.Head; head != nil && head.Kind == value.LinkArgvRef {
			target = head.Argv
			start = (skip - 1) + head.Start
		}
	}
	wrapped := &value.Argv{
		Argc:  target.Argc - start + 1,
		Argv0: name,
		Array: []*value.SymbolValue{{
			Kind:  value.KindComposite,
			Chain: &value.Chain{},
		}},
		Wrapper: true,
	}
	link := value.NewArgvRefLink(target, start, flatten, target.QuoteAge)
	wrapped.Array[0].Chain.Append(link)
	return wrapped
}

// PushArg implements push_arg: push argument i back onto the input stack
// for rescanning. For an arena-owned composite, marks argv.InUse (and the
// underlying argv's, if this is a wrapper) so the expansion driver does
// not rewind the arena out from under the pending rescan.
func (e *Engine) PushArg(argv *value.Argv, i int) {
	v := e.resolveArg(argv, i)
	if v.IsEmpty() {
		return
	}
	retained := e.instack.PushSymbol(v, e.level-1)
	if retained {
		argv.InUse = true
		if argv.Wrapper && len(argv.Array) == 1 && argv.Array[0].IsComposite() {
			if head := argv.Array[0].Chain.Head; head != nil && head.Kind == value.LinkArgvRef {
				head.Argv.InUse = true
			}
		}
	}
}

// PushArgs implements push_args: push arguments skip..argc-1 separated by
// commas, each optionally wrapped in the current quote pair.
func (e *Engine) PushArgs(argv *value.Argv, skip int, quote bool) {
	open, close := e.Quotes()
	b := e.instack.PushStringInit(0)
	for i := skip; i < argv.Argc; i++ {
		if i > skip {
			b.WriteString(",")
		}
		if quote {
			b.WriteString(open)
		}
		b.Write(e.ArgText(argv, i))
		if quote {
			b.WriteString(close)
		}
	}
	e.instack.PushStringFinish(b)
	argv.InUse = true
}

// ArgScratch implements arg_scratch: the bytes arena one level below the
// current expansion level, for a primitive that needs a short-lived
// materialization buffer. Contract: must be empty on entry.
func (e *Engine) ArgScratch() []byte {
	if e.level == 0 {
		return nil
	}
	return e.arenas.At(e.level - 1).Scratch()
}

// FormatInt renders n the way $# and similar decimal substitutions do.
func FormatInt(n int) []byte { return []byte(strconv.Itoa(n)) }
