// Package engine implements the expansion core spec.md §2 lists: the
// token dispatcher, argument collector, expansion driver, body processor,
// and trace formatter, plus the arena-aware Argv accessors (§4.5) that
// need both the arena and the input stack and so cannot live in
// core/value without an import cycle.
package engine

import (
	"fmt"
	"io"

	"github.com/m4go/m4/core/value"
	"github.com/m4go/m4/runtime/arena"
	"github.com/m4go/m4/runtime/inputstack"
	"github.com/m4go/m4/runtime/lexer"
	"github.com/m4go/m4/runtime/symtab"
)

// Config is the ambient, user-facing configuration the CLI's cobra flags
// populate (SPEC_FULL.md §2 "configuration").
type Config struct {
	NestingLimit      int
	GNUExtensions     bool
	POSIXMode         bool
	DebugBits         int // 1 = argcount changes, 2 = refcount increases, 4 = refcount decreases
	MaxDebugArgLength int // 0 = unlimited
	TraceModule       bool
	TraceQuote        bool

	// SuggestUnknownMacros enables the "did you mean ...?" diagnostic
	// (runtime/symtab.Table.Suggest) when a Word token fails symbol
	// lookup — off by default, matching GNU m4's own silent treatment of
	// an undefined macro as plain text; an interactive/verbose session
	// turns it on (SPEC_FULL.md §3 domain-stack, fuzzysearch entry).
	SuggestUnknownMacros bool
}

// DefaultConfig matches GNU m4's own defaults closely enough to be a
// reasonable starting point: a four-digit nesting limit, GNU extensions
// on, POSIX mode off, no debug output, no argument truncation.
func DefaultConfig() Config {
	return Config{
		NestingLimit:      1024,
		GNUExtensions:     true,
		MaxDebugArgLength: 0,
	}
}

// Diagnostics is the error-reporting sink spec.md §6 calls the
// "Diagnostic contract": warn continues, Fatal aborts the whole process.
type Diagnostics interface {
	Warn(at string, format string, args ...any)
	Fatal(at string, format string, args ...any)
}

// FatalError is the typed error an Engine's default Diagnostics raises
// from Fatal via panic; Run recovers it and returns it as a normal error
// so callers (cmd/m4) can set the process exit status without a bare
// os.Exit buried inside the engine.
type FatalError struct {
	At  string
	Msg string
}

func (e *FatalError) Error() string {
	if e.At != "" {
		return fmt.Sprintf("%s: %s", e.At, e.Msg)
	}
	return e.Msg
}

// Engine holds all state threaded through one expansion run: the arena
// vector, symbol table, input stack, lexer, and the active output sink
// stack (spec.md §5: all of it touched by exactly one logical control
// flow, no locking).
type Engine struct {
	cfg Config

	arenas  *arena.Stacks
	table   *symtab.Table
	instack *inputstack.Stack
	lex     *lexer.Lexer

	level   int
	sinks   []io.Writer
	diag    Diagnostics
	tracer  *Tracer
	callSeq int
}

// New creates an Engine over out, ready to run once input is pushed onto
// its input stack via PushFile.
func New(cfg Config, out io.Writer, diag Diagnostics) *Engine {
	if diag == nil {
		diag = NewStderrDiagnostics()
	}
	e := &Engine{
		cfg:     cfg,
		arenas:  arena.NewStacks(),
		table:   symtab.New(),
		instack: inputstack.New(),
		diag:    diag,
		sinks:   []io.Writer{out},
	}
	e.lex = lexer.New(e.instack, lexer.NewSyntax())
	e.tracer = NewTracer(cfg.MaxDebugArgLength, cfg.TraceModule, cfg.TraceQuote)
	return e
}

// PushFile installs source as the next input to scan (spec.md's lexer/
// input-stack split keeps file I/O outside the core; cmd/m4 reads the
// file and hands the bytes here).
func (e *Engine) PushFile(name string, content []byte) { e.instack.PushFile(name, content) }

// Table returns the engine's symbol table, for primitive registration at
// startup.
func (e *Engine) Table() *symtab.Table { return e.table }

// currentSink returns the top of the output-sink stack: the builder for
// the innermost macro call currently executing, or the Engine's final
// writer if no call is in progress.
func (e *Engine) currentSink() io.Writer { return e.sinks[len(e.sinks)-1] }

// --- value.CallCtx ---

// Emit implements value.CallCtx: append to the current call's output (or
// the final writer, at top level).
func (e *Engine) Emit(b []byte) {
	if len(b) == 0 {
		return
	}
	_, _ = e.currentSink().Write(b)
}

func (e *Engine) location() string {
	file, line := e.instack.Location()
	if file == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", file, line)
}

// Warnf implements value.CallCtx.
func (e *Engine) Warnf(format string, args ...any) {
	e.diag.Warn(e.location(), format, args...)
}

func (e *Engine) fatalf(format string, args ...any) {
	e.diag.Fatal(e.location(), format, args...)
}

// Symtab implements value.CallCtx.
func (e *Engine) Symtab() value.Symtab { return e.table }

// ExpansionLevel implements value.CallCtx.
func (e *Engine) ExpansionLevel() int { return e.level }

// GNUExtensions implements value.CallCtx.
func (e *Engine) GNUExtensions() bool { return e.cfg.GNUExtensions }

// POSIXMode implements value.CallCtx.
func (e *Engine) POSIXMode() bool { return e.cfg.POSIXMode }

// Quotes implements value.CallCtx.
func (e *Engine) Quotes() (string, string) { return e.lex.Syntax().Quotes() }

// ChangeQuotes implements value.CallCtx.
func (e *Engine) ChangeQuotes(open, close string) { e.lex.Syntax().ChangeQuote(open, close) }

// ChangeComment implements value.CallCtx.
func (e *Engine) ChangeComment(open, close string) { e.lex.Syntax().ChangeComment(open, close) }

// CurrentComments reports the current comment delimiter pair. It is not
// part of value.CallCtx, so the builtins in runtime/primitives cannot
// reach it.
func (e *Engine) CurrentComments() (string, string) { return e.lex.Syntax().Comments() }

// EmitValue implements value.CallCtx: the `defn` primitive's contract of
// writing a value — including a Procedure's callable identity — to the
// current call's output.
func (e *Engine) EmitValue(v *value.SymbolValue) {
	switch {
	case v.IsText():
		e.Emit(v.Text)
	case v.IsComposite():
		e.Emit(e.materializeChain(v.Chain))
	case v.IsProcedure():
		if b, ok := e.currentSink().(*inputstack.Builder); ok {
			b.WriteSymbol(v)
		}
		// At the top level (no enclosing call) a Procedure value has no
		// textual form and is dropped, matching run.go's top-level
		// MacDef handling.
	}
}

// SkipLine implements value.CallCtx: discard raw input through the next
// newline, for the `dnl` primitive.
func (e *Engine) SkipLine() { e.lex.SkipLine() }

// PushBack implements value.CallCtx: reinject literal text for rescanning.
// None of the builtins in runtime/primitives call it.
func (e *Engine) PushBack(s string) {
	if s == "" {
		return
	}
	b := e.instack.PushStringInit(0)
	b.WriteString(s)
	e.instack.PushStringFinish(b)
}
