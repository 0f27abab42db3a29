// Package symtab implements the symbol-table contract spec.md §6 requires
// of its caller: lookup by name, traced flag, and parameter signature
// (flags and min/max args live on the stored value.Procedure; there is no
// deleted flag) (name -> 1-based index, for named-parameter
// substitution bodies defined with pushdef/define-like constructs).
package symtab

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/m4go/m4/core/value"
)

// entry is one symbol's pushdef stack: index 0 is the oldest definition,
// the last element is the one lookups see (spec.md's "most recent wins"
// pushdef/popdef stack discipline, GLOSSARY "pushdef").
type entry struct {
	stack  []*value.SymbolValue
	traced bool
	params map[string]int // name -> 1-based index, nil if none declared
}

// Table is the symbol table: a single flat map, no scoping beyond the
// pushdef stack itself (spec.md §5: the engine has no lexical scoping,
// only the one dynamic pushdef/popdef stack per name).
//
// Unlike the teacher's Registry, this carries no mutex: spec.md §5
// commits the whole engine to a single logical control flow with exactly
// one goroutine ever touching the symbol table, so a lock would be
// decorative (see DESIGN.md).
type Table struct {
	entries map[string]*entry
}

// New creates an empty symbol table.
func New() *Table {
	return &Table{entries: make(map[string]*entry)}
}

// Lookup returns the top-of-stack value for name, if any.
func (t *Table) Lookup(name string) (*value.SymbolValue, bool) {
	e, ok := t.entries[name]
	if !ok || len(e.stack) == 0 {
		return nil, false
	}
	return e.stack[len(e.stack)-1], true
}

// Define replaces the top-of-stack value for name (or creates a
// single-entry stack), the `define` builtin's semantics.
func (t *Table) Define(name string, v *value.SymbolValue) {
	e := t.entries[name]
	if e == nil {
		e = &entry{}
		t.entries[name] = e
	}
	if len(e.stack) == 0 {
		e.stack = append(e.stack, v)
		return
	}
	e.stack[len(e.stack)-1] = v
}

// PushDef pushes a new definition for name, shadowing but preserving any
// earlier one (the `pushdef` builtin).
func (t *Table) PushDef(name string, v *value.SymbolValue) {
	e := t.entries[name]
	if e == nil {
		e = &entry{}
		t.entries[name] = e
	}
	e.stack = append(e.stack, v)
}

// PopDef removes the top definition for name (the `popdef` builtin). If
// the stack becomes empty the name is forgotten entirely, matching
// Undefine.
func (t *Table) PopDef(name string) {
	e := t.entries[name]
	if e == nil || len(e.stack) == 0 {
		return
	}
	e.stack = e.stack[:len(e.stack)-1]
	if len(e.stack) == 0 {
		delete(t.entries, name)
	}
}

// Undefine removes all definitions for name (the `undefine` builtin).
func (t *Table) Undefine(name string) {
	delete(t.entries, name)
}

// IsTraced reports whether name is marked for call tracing (spec.md §6's
// "pre"/"post" trace hooks).
func (t *Table) IsTraced(name string) bool {
	e, ok := t.entries[name]
	return ok && e.traced
}

// SetTraced sets or clears the traced flag for name (cmd/m4's -t flag;
// runtime/primitives has no traceon/traceoff builtins). Tracing a currently-undefined name still records
// the flag, so a later define picks it up, matching GNU m4's behavior of
// traceon accepting names that don't yet exist.
func (t *Table) SetTraced(name string, traced bool) {
	e := t.entries[name]
	if e == nil {
		e = &entry{}
		t.entries[name] = e
	}
	e.traced = traced
}

// SetParams attaches a named-parameter signature to name's current
// top-of-stack definition (spec.md §4.4's "$name" substitution and §6's
// "parameter signature" contract field).
func (t *Table) SetParams(name string, params map[string]int) {
	e := t.entries[name]
	if e == nil {
		return
	}
	e.params = params
}

// Params returns the named-parameter signature for name, or nil if none
// was declared.
func (t *Table) Params(name string) map[string]int {
	e, ok := t.entries[name]
	if !ok {
		return nil
	}
	return e.params
}

// Stack returns the full pushdef stack for name, oldest definition first,
// for frozen-state export (runtime/state). Returns nil if name is
// undefined. The returned slice aliases the table's own storage and must
// not be mutated by the caller.
func (t *Table) Stack(name string) []*value.SymbolValue {
	e, ok := t.entries[name]
	if !ok {
		return nil
	}
	return e.stack
}

// Restore installs a full pushdef stack for name, replacing whatever (if
// anything) is already there — the frozen-state load path (runtime/state),
// the mirror image of Stack.
func (t *Table) Restore(name string, stack []*value.SymbolValue, traced bool, params map[string]int) {
	if len(stack) == 0 {
		return
	}
	t.entries[name] = &entry{stack: stack, traced: traced, params: params}
}

// Names returns all currently-defined symbol names, sorted, for
// runtime/state's Save and for Suggest's candidate pool.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.entries))
	for name, e := range t.entries {
		if len(e.stack) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Suggest returns the closest defined macro names to a misspelled lookup,
// for the "unknown macro, did you mean ... ?" diagnostic (spec.md §7,
// SPEC_FULL.md domain-stack entry for fuzzysearch). Only names that
// contain every character of name in the same order (case-insensitively)
// are candidates, so a typo with transposed or extra letters matches
// nothing. Returns at most n names, ranked by Levenshtein distance.
func (t *Table) Suggest(name string, n int) []string {
	candidates := t.Names()
	ranked := fuzzy.RankFindNormalizedFold(name, candidates)
	sort.Sort(ranked)
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.Target
	}
	return out
}
