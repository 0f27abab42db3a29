package value

import "github.com/m4go/m4/core/types"

// Argv is the vector of arguments to one macro call, plus the metadata
// spec.md §3 requires (argc, quote_age, in_use, has_ref, wrapper).
type Argv struct {
	Argc     int // one greater than the user-visible argument count; slot 0 is the macro name
	Argv0    []byte
	Array    []*SymbolValue // array_len == len(Array); may be < Argc-1 when a slot is an ArgvRef expanding into many
	QuoteAge types.QuoteAge // 0 if any contained argument has heterogeneous quoting
	InUse    bool           // set once any argument has been re-pushed into the input stream
	HasRef   bool           // contains at least one Composite
	Wrapper  bool           // true when this Argv is a thin redirection built by MakeArgvRef
}

// NewArgv builds an Argv for a call named name, with no arguments yet.
// Slot 0 is always textual and independent of later symbol redefinition
// (spec.md invariant 4): callers must not mutate Argv0 after construction.
func NewArgv(name []byte) *Argv {
	return &Argv{Argc: 1, Argv0: name, Array: nil}
}

// AppendArg appends one fully-collected argument value and increments Argc.
func (a *Argv) AppendArg(v *SymbolValue) {
	a.Array = append(a.Array, v)
	a.Argc++
	if v.IsComposite() {
		a.HasRef = true
	}
}

// rawSlot returns the array slot directly backing logical argument i
// (1-based, i==0 is the macro name) for a non-wrapper Argv. Wrapper
// resolution lives in runtime/engine (it needs the arena to materialize
// ArgvRef chains), so this is intentionally the "easy" half of arg_symbol
// from spec.md §4.5.
func (a *Argv) rawSlot(i int) *SymbolValue {
	if i == 0 {
		return NewText(a.Argv0, a.QuoteAge)
	}
	idx := i - 1
	if idx < 0 || idx >= len(a.Array) {
		return Empty
	}
	return a.Array[idx]
}

// DirectArg returns arg i without resolving wrapper/ArgvRef indirection.
// Engine code should prefer the arena-aware accessor in runtime/engine for
// wrapper Argvs; this is exposed for the common (non-wrapper) case and for
// tests.
func (a *Argv) DirectArg(i int) *SymbolValue {
	if a.Wrapper {
		return nil
	}
	return a.rawSlot(i)
}

// UserArgc returns the number of user-visible arguments ($# in the body
// processor): one less than Argc, per spec.md §4.4.
func (a *Argv) UserArgc() int {
	if a.Argc < 1 {
		return 0
	}
	return a.Argc - 1
}

// CallCtx is the capability surface a Procedure body needs from the
// engine, expressed as an interface so core/value and runtime/primitives
// never import runtime/engine (spec.md's external-collaborator contracts
// in §6, reframed as a Go interface instead of free functions).
type CallCtx interface {
	// Emit appends bytes to the current call's output obstack.
	Emit(b []byte)

	// Warnf reports a recoverable diagnostic (spec.md §7).
	Warnf(format string, args ...any)

	// Symtab returns the engine's symbol table.
	Symtab() Symtab

	// ExpansionLevel returns the current nesting depth.
	ExpansionLevel() int

	// GNUExtensions and POSIXMode report engine-wide mode flags. None of
	// the builtins in runtime/primitives consult them.
	GNUExtensions() bool
	POSIXMode() bool

	// Quotes returns the current quote-delimiter pair.
	Quotes() (open, close string)

	// ChangeQuotes and ChangeComment implement changequote/changecom.
	ChangeQuotes(open, close string)
	ChangeComment(open, close string)

	// PushBack re-enters the dispatcher with s as new input, the way
	// push_symbol/push_string do for argument rescanning (spec.md §6).
	PushBack(s string)

	// SkipLine discards raw input through the next newline (the `dnl`
	// primitive).
	SkipLine()

	// ArgText, ArgLen, ArgEmpty, ArgEqual, ArgFunc, ArgArgc implement the
	// arena-aware Argv accessors (spec.md §4.5): they resolve wrapper
	// indirection and materialize Composite chains, which needs the
	// arena, so the implementation lives in runtime/engine rather than
	// here.
	ArgText(argv *Argv, i int) []byte
	ArgLen(argv *Argv, i int) int
	ArgEmpty(argv *Argv, i int) bool
	ArgEqual(argv *Argv, i int, s []byte) bool
	ArgFunc(argv *Argv, i int) (*Procedure, bool)
	ArgArgc(argv *Argv) int

	// MakeArgvRef, PushArg, PushArgs implement the `$@`/`$*`-style
	// argument re-passing primitives need (spec.md §4.5).
	MakeArgvRef(argv *Argv, name []byte, skip int, flatten bool) *Argv
	PushArg(argv *Argv, i int)
	PushArgs(argv *Argv, skip int, quote bool)

	// EmitValue writes v to the current call's output, preserving a
	// Procedure's callable identity (rather than coercing it to its
	// name) when the current output sink can carry a MacDef-style value
	// through rescanning — the `defn` primitive's contract.
	EmitValue(v *SymbolValue)
}

// Symtab is the subset of the symbol-table contract (spec.md §6) that
// builtin procedures need: define/undefine/pushdef/popdef and lookup.
type Symtab interface {
	Lookup(name string) (*SymbolValue, bool)
	Define(name string, v *SymbolValue)
	Undefine(name string)
	PushDef(name string, v *SymbolValue)
	PopDef(name string)
	IsTraced(name string) bool
	SetTraced(name string, traced bool)

	// SetParams attaches a named-parameter signature to name's current
	// definition, for the `define`/`pushdef` GNU-extension-shaped
	// named-parameter form (see runtime/primitives).
	SetParams(name string, params map[string]int)
}
