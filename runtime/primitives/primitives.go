// Package primitives implements a representative set of m4 builtins —
// define, undefine, dnl, ifelse, defn, pushdef/popdef, len, index,
// substr, translit — grounded on the call/argv contract spec.md §3/§4.5
// expose through value.CallCtx and value.Argv, so that nothing here needs
// to import runtime/engine directly (SPEC_FULL.md §4 "primitives/").
//
// Unlike the teacher's package-level init() self-registration into a
// single global decorator.Registry, each Engine owns its own symbol
// table, so registration happens explicitly through Register at startup
// rather than an import-time side effect (see DESIGN.md).
package primitives

import (
	"strconv"
	"strings"

	"github.com/m4go/m4/core/value"
)

// Register installs every builtin in this package into t.
func Register(t value.Symtab) {
	for _, b := range builtins {
		t.Define(b.name, value.NewProcedure(procOf(b)))
	}
}

// Lookup resolves name to its live *value.Procedure, for runtime/state's
// frozen-state reload path (a frozen Procedure slot is stored by name and
// relinked against whatever this process's builtin set actually has).
func Lookup(name string) (*value.Procedure, bool) {
	for _, b := range builtins {
		if b.name == name {
			return procOf(b), true
		}
	}
	return nil, false
}

func procOf(b builtin) *value.Procedure {
	return &value.Procedure{
		Name:    b.name,
		Fn:      b.fn,
		Flags:   b.flags,
		MinArgs: b.min,
		MaxArgs: b.max,
	}
}

type builtin struct {
	name  string
	fn    value.ProcFunc
	flags value.ProcFlags
	min   int
	max   int
}

var builtins = []builtin{
	{"define", biDefine, 0, 1, -1},
	{"undefine", biUndefine, 0, 1, 1},
	{"pushdef", biPushdef, 0, 1, -1},
	{"popdef", biPopdef, 0, 1, 1},
	{"defn", biDefn, value.FlagAcceptsMacroArgs, 1, 1},
	{"dnl", biDnl, 0, -1, -1},
	{"ifelse", biIfelse, 0, 1, -1},
	{"len", biLen, 0, 1, 1},
	{"index", biIndex, 0, 2, 2},
	{"substr", biSubstr, 0, 1, 3},
	{"translit", biTranslit, 0, 2, 3},
	{"changequote", biChangequote, 0, 0, 2},
	{"changecom", biChangecom, 0, 0, 2},
}

// biDefine implements `define(name, [body])`, plus a GNU-extension-shaped
// named-parameter signature when called as define(name, body, p1, p2,
// ...): each pN becomes a key in the value's parameter signature, 1-based
// (spec.md §4.4/§6 "parameter signature"), resolved so later calls to
// that macro can use $p1 in the body instead of positional $1 — an
// addition not named by spec.md, decided in DESIGN.md's Open Questions.
func biDefine(ctx value.CallCtx, argv *value.Argv) {
	if ctx.ArgArgc(argv) < 1 {
		ctx.Warnf("define: too few arguments")
		return
	}
	name := string(ctx.ArgText(argv, 1))
	if name == "" {
		ctx.Warnf("define: empty macro name")
		return
	}

	var body *value.SymbolValue
	switch {
	case ctx.ArgArgc(argv) < 2:
		body = value.NewText(nil, 0)
	default:
		if p, ok := ctx.ArgFunc(argv, 2); ok {
			body = value.NewProcedure(p)
		} else {
			body = value.NewText(ctx.ArgText(argv, 2), 0)
		}
	}
	ctx.Symtab().Define(name, body)

	if ctx.ArgArgc(argv) > 3 {
		params := make(map[string]int, ctx.ArgArgc(argv)-3)
		for i := 3; i < ctx.ArgArgc(argv); i++ {
			params[string(ctx.ArgText(argv, i))] = i - 2
		}
		ctx.Symtab().SetParams(name, params)
	}
}

func biUndefine(ctx value.CallCtx, argv *value.Argv) {
	ctx.Symtab().Undefine(string(ctx.ArgText(argv, 1)))
}

func biPushdef(ctx value.CallCtx, argv *value.Argv) {
	if ctx.ArgArgc(argv) < 1 {
		ctx.Warnf("pushdef: too few arguments")
		return
	}
	name := string(ctx.ArgText(argv, 1))
	var body *value.SymbolValue
	if p, ok := ctx.ArgFunc(argv, 2); ok {
		body = value.NewProcedure(p)
	} else if ctx.ArgArgc(argv) >= 2 {
		body = value.NewText(ctx.ArgText(argv, 2), 0)
	} else {
		body = value.NewText(nil, 0)
	}
	ctx.Symtab().PushDef(name, body)
}

func biPopdef(ctx value.CallCtx, argv *value.Argv) {
	ctx.Symtab().PopDef(string(ctx.ArgText(argv, 1)))
}

// biDefn implements `defn(name)`: emit the symbol's current value,
// preserving a Procedure's callable identity through ctx.EmitValue so
// `define(newname, defn(oldname))` can rename a builtin (spec.md §9's
// "Placeholder values" note on defn-of-unknown handled the same way: a
// Placeholder just has no useful textual form, same as any non-text,
// non-composite, non-procedure kind here).
func biDefn(ctx value.CallCtx, argv *value.Argv) {
	name := string(ctx.ArgText(argv, 1))
	v, ok := ctx.Symtab().Lookup(name)
	if !ok {
		return
	}
	ctx.EmitValue(v)
}

// biDnl implements `dnl`: discard input through the next newline,
// GNU m4's "delete through newline" builtin. Carries no special flags:
// dispatch.go's classifyResolved only suppresses invocation for a
// FlagBlindArgs macro used bare (without a following '('), and `dnl` is
// almost always used bare — it must invoke either way, which is exactly
// the default (unflagged) behavior.
func biDnl(ctx value.CallCtx, argv *value.Argv) {
	ctx.SkipLine()
}

// biChangequote implements `changequote([open, [close]])`: with no
// arguments, restores the default backquote/quote pair; with one, sets
// the open delimiter only (GNU m4's own somewhat-odd behavior of leaving
// close empty in that case); with two, sets both.
func biChangequote(ctx value.CallCtx, argv *value.Argv) {
	switch ctx.ArgArgc(argv) {
	case 1:
		ctx.ChangeQuotes("`", "'")
	case 2:
		ctx.ChangeQuotes(string(ctx.ArgText(argv, 1)), "")
	default:
		ctx.ChangeQuotes(string(ctx.ArgText(argv, 1)), string(ctx.ArgText(argv, 2)))
	}
}

// biChangecom implements `changecom([open, [close]])`: with no arguments,
// disables comment recognition entirely; with one, sets the open
// delimiter and defaults close to end-of-line; with two, sets both.
func biChangecom(ctx value.CallCtx, argv *value.Argv) {
	switch ctx.ArgArgc(argv) {
	case 1:
		ctx.ChangeComment("", "")
	case 2:
		ctx.ChangeComment(string(ctx.ArgText(argv, 1)), "\n")
	default:
		ctx.ChangeComment(string(ctx.ArgText(argv, 1)), string(ctx.ArgText(argv, 2)))
	}
}

// biIfelse implements `ifelse`: compares arg1/arg2 for equality, paired
// recursively across the remaining arguments (spec.md's representative
// builtin set; semantics match GNU m4's own ifelse exactly, since this is
// one of the oldest and most load-bearing m4 builtins and nothing about
// it is spec-ambiguous).
func biIfelse(ctx value.CallCtx, argv *value.Argv) {
	argc := ctx.ArgArgc(argv)
	if argc == 1 {
		return
	}
	if argc == 2 {
		ctx.Warnf("ifelse: too few arguments")
		return
	}
	if argc == 3 {
		ctx.Warnf("ifelse: too few arguments")
		return
	}

	i := 1
	for argc-i >= 3 {
		if ctx.ArgEqual(argv, i+1, ctx.ArgText(argv, i)) {
			ctx.Emit(ctx.ArgText(argv, i+2))
			return
		}
		i += 3
	}
	if argc-i == 1 {
		ctx.Emit(ctx.ArgText(argv, i))
	}
}

func biLen(ctx value.CallCtx, argv *value.Argv) {
	ctx.Emit([]byte(strconv.Itoa(ctx.ArgLen(argv, 1))))
}

// biIndex implements `index(haystack, needle)`: the byte offset of the
// first occurrence of needle in haystack, or -1.
func biIndex(ctx value.CallCtx, argv *value.Argv) {
	haystack := ctx.ArgText(argv, 1)
	needle := ctx.ArgText(argv, 2)
	ctx.Emit([]byte(strconv.Itoa(strings.Index(string(haystack), string(needle)))))
}

// biSubstr implements `substr(s, from, [length])`: from is 0-based;
// negative or out-of-range values clamp rather than error, matching GNU
// m4's own lenient substr.
func biSubstr(ctx value.CallCtx, argv *value.Argv) {
	s := ctx.ArgText(argv, 1)
	from, err := strconv.Atoi(string(ctx.ArgText(argv, 2)))
	if err != nil {
		ctx.Warnf("substr: non-numeric from argument")
		return
	}
	if from < 0 {
		from = 0
	}
	if from > len(s) {
		from = len(s)
	}

	end := len(s)
	if ctx.ArgArgc(argv) >= 4 {
		n, err := strconv.Atoi(string(ctx.ArgText(argv, 3)))
		if err != nil {
			ctx.Warnf("substr: non-numeric length argument")
			return
		}
		if n < 0 {
			n = 0
		}
		if from+n < end {
			end = from + n
		}
	}
	ctx.Emit(s[from:end])
}

// biTranslit implements `translit(s, from, [to])`: each byte of s found
// in from is replaced by the byte at the same position in to, or deleted
// if to is shorter than from (or omitted).
func biTranslit(ctx value.CallCtx, argv *value.Argv) {
	s := ctx.ArgText(argv, 1)
	from := ctx.ArgText(argv, 2)
	var to []byte
	if ctx.ArgArgc(argv) >= 3 {
		to = ctx.ArgText(argv, 3)
	}

	mapping := make(map[byte]int, len(from))
	for i, b := range from {
		if _, seen := mapping[b]; !seen {
			mapping[b] = i
		}
	}

	out := make([]byte, 0, len(s))
	for _, b := range s {
		idx, found := mapping[b]
		if !found {
			out = append(out, b)
			continue
		}
		if idx < len(to) {
			out = append(out, to[idx])
		}
		// else: in from but not in to — delete.
	}
	ctx.Emit(out)
}
