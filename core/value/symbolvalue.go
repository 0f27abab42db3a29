// Package value implements the argument-value model from spec.md §3: a
// tagged variant (SymbolValue), its composite chain links (ChainLink), and
// the Argv object a macro call is dispatched with. The package is
// deliberately free of any dependency on the engine, arena, or symbol
// table packages — it expresses the data model and the small set of
// interfaces (CallCtx, Symtab) that let runtime/primitives write builtin
// procedures without importing runtime/engine, avoiding an import cycle.
package value

import (
	"fmt"

	"github.com/m4go/m4/core/types"
)

// Kind tags a SymbolValue's active variant.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindText
	KindProcedure
	KindComposite
	KindPlaceholder
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindText:
		return "text"
	case KindProcedure:
		return "procedure"
	case KindComposite:
		return "composite"
	case KindPlaceholder:
		return "placeholder"
	default:
		return "unknown"
	}
}

// ProcFlags are the per-procedure behavior bits from spec.md §3.
type ProcFlags uint8

const (
	FlagAcceptsMacroArgs ProcFlags = 1 << iota // does not coerce Procedure-valued args to empty text
	FlagBlindArgs                              // bare name (no following open-paren) is never expanded
	FlagSideEffectArgs                         // still invoked even when argc is out of [Min,Max]
)

func (f ProcFlags) Has(bit ProcFlags) bool { return f&bit != 0 }

// Procedure is a primitive callable, either a Go builtin or a primitive
// loaded from a frozen state file.
type Procedure struct {
	Name    string
	Fn      ProcFunc
	Flags   ProcFlags
	MinArgs int // -1 means unbounded
	MaxArgs int // -1 means unbounded
}

// ProcFunc is the signature every builtin procedure implements. argv.Argc
// is always >= 1 (slot 0 is the macro name). Output goes to ctx.Emit.
type ProcFunc func(ctx CallCtx, argv *Argv)

// Empty is the shared, immutable sentinel for a missing/empty argument.
var Empty = &SymbolValue{Kind: KindEmpty}

// SymbolValue is the tagged variant described in spec.md §3.
type SymbolValue struct {
	Kind Kind

	// KindText
	Text     []byte
	QuoteAge types.QuoteAge

	// KindProcedure
	Proc *Procedure

	// KindComposite
	Chain *Chain

	// KindPlaceholder: an unknown primitive referenced by a frozen state
	// file. Invoking it warns and produces no output (spec.md §3, §7).
	PlaceholderName string

	// Deleted marks a value snapshotted by the driver whose symbol was
	// redefined while the call was still pending (spec.md §4.3 step 12).
	// Nothing in this module sets or reads it; the driver does not free
	// snapshotted values.
	Deleted bool
}

// IsEmpty reports whether v is the Empty sentinel (or nil).
func (v *SymbolValue) IsEmpty() bool {
	return v == nil || v.Kind == KindEmpty
}

// IsText reports whether v holds literal text.
func (v *SymbolValue) IsText() bool { return v != nil && v.Kind == KindText }

// IsProcedure reports whether v holds a primitive procedure.
func (v *SymbolValue) IsProcedure() bool { return v != nil && v.Kind == KindProcedure }

// IsComposite reports whether v holds a composite chain.
func (v *SymbolValue) IsComposite() bool { return v != nil && v.Kind == KindComposite }

// NewText builds a text SymbolValue.
func NewText(b []byte, age types.QuoteAge) *SymbolValue {
	return &SymbolValue{Kind: KindText, Text: b, QuoteAge: age}
}

// NewProcedure builds a procedure SymbolValue.
func NewProcedure(p *Procedure) *SymbolValue {
	return &SymbolValue{Kind: KindProcedure, Proc: p}
}

// NewPlaceholder builds a placeholder SymbolValue for an unresolved
// primitive name loaded from a frozen state file.
func NewPlaceholder(name string) *SymbolValue {
	return &SymbolValue{Kind: KindPlaceholder, PlaceholderName: name}
}

// Clone makes a shallow copy suitable for the driver's call-time snapshot
// (spec.md §4.3 step 3, §5 "the driver must snapshot the symbol value").
// Chain/Proc are shared, not deep-copied: the snapshot only needs to
// protect against the *symbol table slot* being overwritten during
// argument collection, not against mutation of the value's own fields
// (none of the variants are mutated in place after construction).
func (v *SymbolValue) Clone() *SymbolValue {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}

func (v *SymbolValue) String() string {
	if v == nil {
		return "<nil>"
	}
	switch v.Kind {
	case KindText:
		return string(v.Text)
	case KindProcedure:
		return fmt.Sprintf("<procedure:%s>", v.Proc.Name)
	case KindComposite:
		return "<composite>"
	case KindPlaceholder:
		return fmt.Sprintf("<placeholder:%s>", v.PlaceholderName)
	default:
		return ""
	}
}
