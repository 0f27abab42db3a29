// Package inputstack implements the input-stack contract spec.md §6 lists
// as an external collaborator of the engine: push_string_init/finish (body
// output gets rescanned), push_symbol (an already-resolved value gets
// rescanned without re-lexing its text), and the raw byte feed the lexer
// pulls from.
package inputstack

import (
	"github.com/m4go/m4/core/types"
	"github.com/m4go/m4/core/value"
)

// block is one pushed input source. Only one of text/sym is set.
type block struct {
	text  []byte
	pos   int
	quote types.QuoteAge

	sym      *value.SymbolValue
	symLevel int
	consumed bool

	name string // source name for diagnostics (file path, or "" for rescanned text)
	line int
}

// Stack is a LIFO of input blocks. The lexer pulls raw bytes from the top
// of the stack; the engine pushes rescanned text or symbol values onto it.
type Stack struct {
	blocks []*block
}

// New creates an empty input stack.
func New() *Stack { return &Stack{} }

// PushFile installs the initial top-level source (spec.md's lexer/input
// stack split puts file I/O outside the core; the CLI reads the file and
// hands the bytes here).
func (s *Stack) PushFile(name string, content []byte) {
	s.blocks = append(s.blocks, &block{text: content, name: name, line: 1})
}

// segment is one piece of a Builder's accumulated output: either a run of
// plain bytes or an already-resolved value (an ArgvRef composite spliced
// in by $@ substitution, spec.md §4.4) that must reach the dispatcher as
// a MacDef token rather than be flattened to text.
type segment struct {
	text []byte
	sym  *value.SymbolValue
}

// Builder accumulates a macro body's expansion output before it is
// installed as a new input source (push_string_init's obstack handle).
type Builder struct {
	segs  []segment
	buf   []byte // the in-progress trailing text segment
	quote types.QuoteAge
}

// WriteString appends to the builder.
func (b *Builder) WriteString(s string) { b.buf = append(b.buf, s...) }

// Write appends to the builder (io.Writer).
func (b *Builder) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	return len(p), nil
}

// WriteSymbol flushes any pending text and appends v as its own segment,
// so it later reaches the dispatcher as a MacDef token rather than being
// flattened into the surrounding text (spec.md §4.4 "$@ is emitted as an
// ArgvRef composite, not materialized text").
func (b *Builder) WriteSymbol(v *value.SymbolValue) {
	b.flush()
	b.segs = append(b.segs, segment{sym: v})
}

func (b *Builder) flush() {
	if len(b.buf) == 0 {
		return
	}
	b.segs = append(b.segs, segment{text: b.buf})
	b.buf = nil
}

// Len reports bytes written so far (text only; symbol segments have no
// byte length of their own).
func (b *Builder) Len() int {
	n := len(b.buf)
	for _, s := range b.segs {
		n += len(s.text)
	}
	return n
}

func (b *Builder) empty() bool { return len(b.buf) == 0 && len(b.segs) == 0 }

// Bytes renders the builder's accumulated text for diagnostics (trace
// output, spec.md §6 "post ... with the expanded text rendered"). Symbol
// segments render as an opaque placeholder since they have no flat byte
// form without an arena-aware materializer.
func (b *Builder) Bytes() []byte {
	out := make([]byte, 0, b.Len())
	for _, s := range b.segs {
		if s.sym != nil {
			out = append(out, "<argv-ref>"...)
			continue
		}
		out = append(out, s.text...)
	}
	return append(out, b.buf...)
}

// PushStringInit returns a fresh Builder for the caller (the expansion
// driver) to accumulate a macro's substituted body into.
func (s *Stack) PushStringInit(age types.QuoteAge) *Builder {
	return &Builder{quote: age}
}

// PushStringFinish installs b's accumulated output as new top-of-stack
// input blocks, so the dispatcher rescans them next (spec.md §6
// push_string_finish). Segments are pushed in reverse so the first
// segment written ends up read first despite the stack's LIFO order. An
// empty builder installs nothing: there is nothing to rescan.
func (s *Stack) PushStringFinish(b *Builder) {
	if b == nil || b.empty() {
		return
	}
	b.flush()
	for i := len(b.segs) - 1; i >= 0; i-- {
		seg := b.segs[i]
		if seg.sym != nil {
			s.blocks = append(s.blocks, &block{sym: seg.sym})
			continue
		}
		s.blocks = append(s.blocks, &block{text: seg.text, quote: b.quote, line: 1})
	}
}

// PushSymbol pushes an already-resolved value back for rescanning without
// re-lexing its text (used for $@/$* argv-ref splicing and for plain
// procedure-valued arguments passed through push_arg). Returns true if the
// value carries an arena-backed reference at level — the caller must then
// mark the owning argv's in_use flag so the expansion driver does not
// rewind that level's arena out from under this pending rescan.
func (s *Stack) PushSymbol(v *value.SymbolValue, level int) bool {
	s.blocks = append(s.blocks, &block{sym: v, symLevel: level})
	return v.IsComposite() && level != -1
}

// NextByte pulls the next raw byte from the top text block, popping
// exhausted or symbol blocks along the way. ok is false at true EOF (the
// whole stack is empty).
func (s *Stack) NextByte() (b byte, ok bool) {
	for len(s.blocks) > 0 {
		top := s.blocks[len(s.blocks)-1]
		if top.sym != nil {
			// Symbol blocks are consumed whole by PeekSymbol, not byte by
			// byte; if we get here it means the caller never drained it.
			s.blocks = s.blocks[:len(s.blocks)-1]
			continue
		}
		if top.pos >= len(top.text) {
			s.blocks = s.blocks[:len(s.blocks)-1]
			continue
		}
		b = top.text[top.pos]
		if b == '\n' {
			top.line++
		}
		top.pos++
		return b, true
	}
	return 0, false
}

// PeekByte returns the next raw byte without consuming it, looking past
// exhausted blocks without popping them; a symbol block ends the search
// (ok is false).
func (s *Stack) PeekByte() (b byte, ok bool) {
	for i := len(s.blocks) - 1; i >= 0; i-- {
		top := s.blocks[i]
		if top.sym != nil {
			return 0, false
		}
		if top.pos < len(top.text) {
			return top.text[top.pos], true
		}
	}
	return 0, false
}

// TopQuoteAge reports the quote age the current top-of-stack text was
// produced under, 0 if the stack is empty or the top block predates
// quote-age tracking.
func (s *Stack) TopQuoteAge() types.QuoteAge {
	if len(s.blocks) == 0 {
		return 0
	}
	return s.blocks[len(s.blocks)-1].quote
}

// PeekSymbol reports whether the top block is an unconsumed symbol push,
// and if so consumes it and returns the value plus the arena level it was
// pushed from (spec.md's MacDef token kind: "carries a procedure value
// inline").
func (s *Stack) PeekSymbol() (*value.SymbolValue, int, bool) {
	for len(s.blocks) > 0 {
		top := s.blocks[len(s.blocks)-1]
		if top.sym == nil {
			if top.pos >= len(top.text) {
				s.blocks = s.blocks[:len(s.blocks)-1]
				continue
			}
			return nil, 0, false
		}
		s.blocks = s.blocks[:len(s.blocks)-1]
		return top.sym, top.symLevel, true
	}
	return nil, 0, false
}

// Location reports the current top block's source name and line, for
// diagnostics and trace output (spec.md §6 tracing format "[<file>:]
// [<line>:]").
func (s *Stack) Location() (file string, line int) {
	for i := len(s.blocks) - 1; i >= 0; i-- {
		if s.blocks[i].sym == nil {
			return s.blocks[i].name, s.blocks[i].line
		}
	}
	return "", 0
}

// Empty reports whether the stack has no more input at all.
func (s *Stack) Empty() bool {
	for len(s.blocks) > 0 {
		top := s.blocks[len(s.blocks)-1]
		if top.sym != nil {
			return false
		}
		if top.pos < len(top.text) {
			return false
		}
		s.blocks = s.blocks[:len(s.blocks)-1]
	}
	return true
}
