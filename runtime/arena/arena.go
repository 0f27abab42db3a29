// Package arena implements the per-expansion-level bump allocators and
// refcount table from spec.md §3 ("PerLevelArena") and §4.3/§4.6 (lifetime
// management across nested macro calls).
//
// Go's garbage collector would reclaim argument storage the bump
// allocator's backing array points to, but the bump/rewind discipline
// still matters for two independent reasons. First, correctness: a slice
// returned by AllocBytes aliases the level's single backing array, so a
// later AllocBytes call that appends past a premature rewind can silently
// overwrite bytes an earlier caller is still holding — exactly the hazard
// `in_use` (spec.md §4.3 step 14, §4.5 push_arg) exists to prevent by
// skipping the rewind while a reference is still pending rescan. Second,
// bounded memory: without rewinding on refcount zero, a long-running
// stream of macro calls would otherwise grow the backing array without
// limit (spec.md §9 "per-level optimistic free").
package arena

import "github.com/m4go/m4/core/value"

// Level is an arena's bump allocator pair plus its refcount bookkeeping.
// Arenas are created lazily on first entry to a level and then retained
// for the lifetime of the process (spec.md §3 Lifecycle): Level never
// transitions back to Uninit.
type Level struct {
	bytes []byte
	ptrs  []*value.SymbolValue

	refcount int
	argcount int // consecutive calls that reused this arena since the last full rewind

	bytesBase int // rewind point recorded at call entry
	ptrsBase  int
}

// Stacks is the vector of per-level arenas, indexed by expansion level.
// Each Level is heap-allocated and the vector holds pointers, so growing
// the vector never invalidates a *Level returned earlier; the engine
// still re-resolves by index at call boundaries to mirror the source
// algorithm (spec.md §9 "Arena reallocation hazard").
type Stacks struct {
	levels []*Level
}

// NewStacks creates an empty arena vector.
func NewStacks() *Stacks { return &Stacks{} }

// At lazily materializes and returns the arena for level l. Repeated calls
// for the same l return the same *Level.
func (s *Stacks) At(l int) *Level {
	for len(s.levels) <= l {
		s.levels = append(s.levels, nil)
	}
	if s.levels[l] == nil {
		s.levels[l] = &Level{}
	}
	return s.levels[l]
}

// Enter records the rewind base points and increments refcount/argcount
// for a call entering this level (spec.md §4.3 steps 1-2).
func (lv *Level) Enter() {
	lv.bytesBase = len(lv.bytes)
	lv.ptrsBase = len(lv.ptrs)
	lv.refcount++
	lv.argcount++
}

// Ref increments the refcount without moving the rewind base, for a
// Composite/ArgvRef link that extends this level's lifetime beyond the
// call that created it (spec.md §3 Lifecycle, "Composite/ArgvRef links
// carry an extra refcount").
func (lv *Level) Ref() { lv.refcount++ }

// Unref decrements the refcount. When it reaches zero, both bump
// allocators are rewound to base 0 (spec.md §3 Lifecycle, §4.6 "Live to
// Idle: rewind both arenas").
func (lv *Level) Unref() {
	lv.refcount--
	if lv.refcount == 0 {
		lv.bytes = lv.bytes[:0]
		lv.ptrs = lv.ptrs[:0]
		lv.argcount = 0
	}
}

// Refcount reports the current refcount, for invariant checks (spec.md §8
// invariant 1) and tracing (the debug bit 2/4 print hooks in spec.md §6).
func (lv *Level) Refcount() int { return lv.refcount }

// ExitOptimistic implements spec.md §4.3 step 14's three-way choice at
// call exit: if the call is still referenced but added nothing external,
// roll back just this call's bytes; if some argument was pushed to input
// (inUse), keep the bytes and just note the reuse; otherwise, if this was
// the last reference, Unref performs the full rewind.
func (lv *Level) ExitOptimistic(inUse bool) {
	if lv.refcount == 0 {
		// Unref already rewound fully; nothing left to scratch-trim.
		return
	}
	if inUse {
		return
	}
	// No outgoing references survive this call: reclaim its bytes, but
	// only its bytes, since another live call on this level may have
	// appended `ptrs` entries of its own before this one's bytesBase.
	lv.bytes = lv.bytes[:lv.bytesBase]
}

// AllocBytes copies b onto the level's byte arena and returns the owned
// slice (the argument collector's equivalent of obstack_grow).
func (lv *Level) AllocBytes(b []byte) []byte {
	start := len(lv.bytes)
	lv.bytes = append(lv.bytes, b...)
	return lv.bytes[start:len(lv.bytes):len(lv.bytes)]
}

// SliceFrom returns the owned span of the byte arena from start to the
// current top, capped so a caller's append cannot spill into bytes the
// arena itself appends next.
func (lv *Level) SliceFrom(start int) []byte {
	end := len(lv.bytes)
	return lv.bytes[start:end:end]
}

// BytesTop returns the current length of the byte arena, the "bytes_scratch"
// high-water mark referenced by spec.md §4.3 step 14.
func (lv *Level) BytesTop() int { return len(lv.bytes) }

// RewindBytesTo truncates the byte arena back to mark (must be <= BytesTop()).
func (lv *Level) RewindBytesTo(mark int) { lv.bytes = lv.bytes[:mark] }

// AllocPtrs appends ptrs to the level's pointer arena and returns the
// owned slice (the argv-array equivalent of obstack_grow on argptr).
func (lv *Level) AllocPtrs(ptrs []*value.SymbolValue) []*value.SymbolValue {
	start := len(lv.ptrs)
	lv.ptrs = append(lv.ptrs, ptrs...)
	return lv.ptrs[start:len(lv.ptrs):len(lv.ptrs)]
}

// PtrsTop returns the current length of the pointer arena, the argv-array
// high-water mark analogous to BytesTop.
func (lv *Level) PtrsTop() int { return len(lv.ptrs) }

// SliceFromPtrs returns the owned span of the pointer arena from start to
// the current top, capped the same way SliceFrom caps the byte arena.
func (lv *Level) SliceFromPtrs(start int) []*value.SymbolValue {
	end := len(lv.ptrs)
	return lv.ptrs[start:end:end]
}

// Scratch returns a zero-length view at the current top of the byte arena,
// for callers (arg_scratch, spec.md §4.5) that need a temporary
// materialization buffer which "must be empty on entry." Its capacity is
// the arena's spare room, so appends to it reuse the arena's backing array
// without moving the arena's top; the next AllocBytes overwrites them.
func (lv *Level) Scratch() []byte {
	top := len(lv.bytes)
	return lv.bytes[top:top:cap(lv.bytes)]
}
