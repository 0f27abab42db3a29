// Package lexer implements the lexer contract spec.md §6 describes as an
// external collaborator of the engine: next_token, next_token_is_open,
// quote_age, safe_quotes and syntax_quotes, plus changequote/changecom.
//
// The overall shape — ASCII lookup tables shared with core/types, a debug
// logger gated by an environment variable, a struct that tracks position
// for error reporting, and a single dispatch-by-leading-byte NextToken —
// mirrors the token-classification layer this codebase's lexer has always
// used; only the token vocabulary and the quote/comment delimiter handling
// are specific to this engine.
package lexer

import (
	"log/slog"
	"os"

	"github.com/m4go/m4/core/types"
	"github.com/m4go/m4/runtime/inputstack"
)

var debugLogger = func() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("M4_DEBUG_LEXER") != "" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}()

// Syntax holds the mutable quote and comment delimiters (changequote,
// changecom) and the monotonic quote-age counter spec.md §6 requires:
// every reconfiguration bumps the age, and age 0 is reserved to mean
// "unknown, must rescan" (spec.md §9 "Quote-age cache").
type Syntax struct {
	quoteOpen, quoteClose     string
	commentOpen, commentClose string
	age                       types.QuoteAge
}

// NewSyntax builds the default m4 syntax: backquote/quote for quoting,
// "#" to end-of-line for comments.
func NewSyntax() *Syntax {
	return &Syntax{
		quoteOpen: "`", quoteClose: "'",
		commentOpen: "#", commentClose: "\n",
		age: 1,
	}
}

// ChangeQuote implements changequote(open, close).
func (s *Syntax) ChangeQuote(open, close string) {
	s.quoteOpen, s.quoteClose = open, close
	s.bump()
}

// ChangeComment implements changecom(open, close).
func (s *Syntax) ChangeComment(open, close string) {
	s.commentOpen, s.commentClose = open, close
	s.bump()
}

func (s *Syntax) bump() {
	s.age++
	if s.age == 0 {
		s.age = 1
	}
}

// Quotes returns the current quote delimiter pair (syntax_quotes).
func (s *Syntax) Quotes() (string, string) { return s.quoteOpen, s.quoteClose }

// Comments returns the current comment delimiter pair.
func (s *Syntax) Comments() (string, string) { return s.commentOpen, s.commentClose }

// Age returns the current quote-age generation number.
func (s *Syntax) Age() types.QuoteAge { return s.age }

// SafeQuotes reports whether the current quote and comment delimiters are
// each a single non-alphanumeric, non-whitespace byte, with the comment
// opener differing from the quote opener — the static property spec.md §4.1/GLOSSARY calls "safe quotes":
// juxtaposing two already-lexed tokens cannot accidentally spell a
// delimiter across the boundary.
func (s *Syntax) SafeQuotes() bool {
	return isSafeDelim(s.quoteOpen) && isSafeDelim(s.quoteClose) &&
		isSafeDelim(s.commentOpen) && isSafeDelim(s.commentClose) &&
		s.quoteOpen != s.commentOpen
}

func isSafeDelim(d string) bool {
	if len(d) != 1 {
		return false
	}
	c := d[0]
	return c >= 128 || (!types.IsIdentPart(c) && !types.IsWhitespace(c))
}

// Lexer pulls raw bytes from an inputstack.Stack and classifies them into
// the token vocabulary spec.md §4.1 dispatches on.
type Lexer struct {
	in     *inputstack.Stack
	syntax *Syntax

	lookahead []byte // small pending-byte buffer for multi-char delimiter matching
	line      int
}

// New creates a Lexer reading from in under syntax.
func New(in *inputstack.Stack, syntax *Syntax) *Lexer {
	return &Lexer{in: in, syntax: syntax, line: 1}
}

// Syntax returns the lexer's mutable syntax, for changequote/changecom
// primitives to mutate directly.
func (l *Lexer) Syntax() *Syntax { return l.syntax }

func (l *Lexer) fill(n int) {
	for len(l.lookahead) < n {
		b, ok := l.in.NextByte()
		if !ok {
			return
		}
		l.lookahead = append(l.lookahead, b)
	}
}

func (l *Lexer) peekN(n int) []byte {
	l.fill(n)
	if len(l.lookahead) < n {
		return l.lookahead
	}
	return l.lookahead[:n]
}

func (l *Lexer) consume(n int) { l.lookahead = l.lookahead[n:] }

// matchAt reports whether seq occurs next in the stream, consuming it if so.
func (l *Lexer) matchAt(seq string) bool {
	if seq == "" {
		return false
	}
	got := l.peekN(len(seq))
	if string(got) != seq {
		return false
	}
	l.consume(len(seq))
	for i := 0; i < len(seq); i++ {
		if seq[i] == '\n' {
			l.line++
		}
	}
	return true
}

func (l *Lexer) readByte() (byte, bool) {
	b := l.peekN(1)
	if len(b) == 0 {
		return 0, false
	}
	r := b[0]
	l.consume(1)
	if r == '\n' {
		l.line++
	}
	return r, true
}

func (l *Lexer) peekByte() (byte, bool) {
	b := l.peekN(1)
	if len(b) == 0 {
		return 0, false
	}
	return b[0], true
}

// NextTokenIsOpen is next_token_is_open: non-consuming lookahead for a
// following '(' immediately after the current position (spec.md §6, used
// by the dispatcher to decide whether a blind macro's name is actually
// being called).
func (l *Lexer) NextTokenIsOpen() bool {
	b, ok := l.peekByte()
	return ok && b == '('
}

// QuoteAge returns the lexer's current quote-age generation.
func (l *Lexer) QuoteAge() types.QuoteAge { return l.syntax.Age() }

// SkipLine discards raw input through and including the next newline, or
// to EOF if none remains. Used by the `dnl` primitive (GNU m4's "discard
// to next line" builtin), which must bypass tokenization entirely rather
// than discard already-classified tokens.
func (l *Lexer) SkipLine() {
	for {
		b, ok := l.readByte()
		if !ok || b == '\n' {
			return
		}
	}
}

// NextToken reads and classifies the next token (spec.md §4.1, §6).
func (l *Lexer) NextToken() types.Token {
	if v, level, ok := l.in.PeekSymbol(); ok {
		return types.Token{Type: types.MacDef, Proc: v, Pos: l.pos(), Quote: l.syntax.Age(), MacLevel: level}
	}

	start := l.pos()

	if l.matchAt(l.syntax.commentOpen) {
		return l.lexComment(start)
	}
	if l.matchAt(l.syntax.quoteOpen) {
		return l.lexQuoted(start)
	}

	b, ok := l.peekByte()
	if !ok {
		return types.Token{Type: types.EOF, Pos: start}
	}

	switch {
	case b == '(':
		l.readByte()
		return types.Token{Type: types.Open, Text: []byte("("), Pos: start, Quote: l.syntax.Age()}
	case b == ')':
		l.readByte()
		return types.Token{Type: types.Close, Text: []byte(")"), Pos: start, Quote: l.syntax.Age()}
	case b == ',':
		l.readByte()
		return types.Token{Type: types.Comma, Text: []byte(","), Pos: start, Quote: l.syntax.Age()}
	case types.IsWhitespace(b):
		return l.lexSpace(start)
	case types.IsIdentStart(b):
		return l.lexWord(start)
	default:
		l.readByte()
		debugLogger.Debug("lexer: simple token", "byte", string(b), "line", l.line)
		return types.Token{Type: types.Simple, Text: []byte{b}, Pos: start, Quote: l.syntax.Age()}
	}
}

func (l *Lexer) pos() types.Position {
	_, line := l.in.Location()
	if line == 0 {
		line = l.line
	}
	return types.Position{Line: line}
}

// lexComment consumes through the comment-close delimiter (or EOF) and
// returns the whole span, delimiters included, as a String token: comment
// text is never macro-expanded, matching GNU m4's own treatment of
// comments as a literal pass-through rather than a distinct token kind.
func (l *Lexer) lexComment(start types.Position) types.Token {
	text := []byte(l.syntax.commentOpen)
	for {
		if l.matchAt(l.syntax.commentClose) {
			text = append(text, l.syntax.commentClose...)
			break
		}
		b, ok := l.readByte()
		if !ok {
			break
		}
		text = append(text, b)
	}
	return types.Token{Type: types.String, Text: text, Pos: start, Quote: l.syntax.Age()}
}

// lexQuoted consumes a (possibly nested) quoted string. Nesting matches
// GNU m4's own quoting rule: an inner quoteOpen increments depth, and only
// the close at depth 0 terminates the token; the returned text excludes
// the outermost delimiter pair but keeps any inner ones literal.
func (l *Lexer) lexQuoted(start types.Position) types.Token {
	depth := 1
	var text []byte
	for {
		if l.matchAt(l.syntax.quoteClose) {
			depth--
			if depth == 0 {
				break
			}
			text = append(text, l.syntax.quoteClose...)
			continue
		}
		if l.matchAt(l.syntax.quoteOpen) {
			depth++
			text = append(text, l.syntax.quoteOpen...)
			continue
		}
		b, ok := l.readByte()
		if !ok {
			break // unterminated quote at EOF: return what we have
		}
		text = append(text, b)
	}
	return types.Token{Type: types.String, Text: text, Pos: start, Quote: l.syntax.Age()}
}

func (l *Lexer) lexSpace(start types.Position) types.Token {
	var text []byte
	for {
		b, ok := l.peekByte()
		if !ok || !types.IsWhitespace(b) {
			break
		}
		l.readByte()
		text = append(text, b)
	}
	return types.Token{Type: types.Space, Text: text, Pos: start, Quote: l.syntax.Age()}
}

func (l *Lexer) lexWord(start types.Position) types.Token {
	var text []byte
	for {
		b, ok := l.peekByte()
		if !ok || !types.IsIdentPart(b) {
			break
		}
		l.readByte()
		text = append(text, b)
	}
	return types.Token{Type: types.Word, Text: text, Pos: start, Quote: l.syntax.Age()}
}
