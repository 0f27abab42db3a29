package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m4go/m4/core/types"
	"github.com/m4go/m4/core/value"
	"github.com/m4go/m4/runtime/inputstack"
)

func newLexer(input string) *Lexer {
	in := inputstack.New()
	in.PushFile("test", []byte(input))
	return New(in, NewSyntax())
}

func TestNewSyntaxDefaults(t *testing.T) {
	s := NewSyntax()
	open, close := s.Quotes()
	assert.Equal(t, "`", open)
	assert.Equal(t, "'", close)

	cOpen, cClose := s.Comments()
	assert.Equal(t, "#", cOpen)
	assert.Equal(t, "\n", cClose)
	assert.Equal(t, types.QuoteAge(1), s.Age())
}

func TestChangeQuoteBumpsAge(t *testing.T) {
	s := NewSyntax()
	before := s.Age()
	s.ChangeQuote("[", "]")

	open, close := s.Quotes()
	assert.Equal(t, "[", open)
	assert.Equal(t, "]", close)
	assert.Greater(t, s.Age(), before)
}

func TestChangeCommentBumpsAge(t *testing.T) {
	s := NewSyntax()
	before := s.Age()
	s.ChangeComment("//", "\n")

	open, close := s.Comments()
	assert.Equal(t, "//", open)
	assert.Equal(t, "\n", close)
	assert.Greater(t, s.Age(), before)
}

func TestSafeQuotesTrueForDefaultDelimiters(t *testing.T) {
	s := NewSyntax()
	assert.True(t, s.SafeQuotes())
}

func TestSafeQuotesFalseForMultiCharDelimiter(t *testing.T) {
	s := NewSyntax()
	s.ChangeQuote("<<", ">>")
	assert.False(t, s.SafeQuotes())
}

func TestSafeQuotesFalseWhenQuoteAndCommentCollide(t *testing.T) {
	s := NewSyntax()
	s.ChangeQuote("#", "'")
	assert.False(t, s.SafeQuotes())
}

func TestNextTokenWordStopsAtNonIdentChar(t *testing.T) {
	l := newLexer("foo(bar)")
	tok := l.NextToken()
	assert.Equal(t, types.Word, tok.Type)
	assert.Equal(t, "foo", string(tok.Text))
}

func TestNextTokenOpenCloseComma(t *testing.T) {
	l := newLexer("(,)")
	assert.Equal(t, types.Open, l.NextToken().Type)
	assert.Equal(t, types.Comma, l.NextToken().Type)
	assert.Equal(t, types.Close, l.NextToken().Type)
}

func TestNextTokenSpaceCollectsRun(t *testing.T) {
	l := newLexer("   x")
	tok := l.NextToken()
	assert.Equal(t, types.Space, tok.Type)
	assert.Equal(t, "   ", string(tok.Text))
}

func TestNextTokenQuotedStringStripsOutermostDelimiters(t *testing.T) {
	l := newLexer("`hello'")
	tok := l.NextToken()
	assert.Equal(t, types.String, tok.Type)
	assert.Equal(t, "hello", string(tok.Text))
}

func TestNextTokenQuotedStringKeepsNestedDelimitersLiteral(t *testing.T) {
	l := newLexer("`a `b' c'")
	tok := l.NextToken()
	assert.Equal(t, types.String, tok.Type)
	assert.Equal(t, "a `b' c", string(tok.Text))
}

func TestNextTokenUnterminatedQuoteReturnsWhatItHas(t *testing.T) {
	l := newLexer("`abc")
	tok := l.NextToken()
	assert.Equal(t, types.String, tok.Type)
	assert.Equal(t, "abc", string(tok.Text))
}

func TestNextTokenCommentPassesThroughWithDelimiters(t *testing.T) {
	l := newLexer("# a comment\nrest")
	tok := l.NextToken()
	assert.Equal(t, types.String, tok.Type)
	assert.Equal(t, "# a comment\n", string(tok.Text))

	tok = l.NextToken()
	assert.Equal(t, types.Word, tok.Type)
	assert.Equal(t, "rest", string(tok.Text))
}

func TestNextTokenSimpleForOtherPunctuation(t *testing.T) {
	l := newLexer("!")
	tok := l.NextToken()
	assert.Equal(t, types.Simple, tok.Type)
	assert.Equal(t, "!", string(tok.Text))
}

func TestNextTokenEOFAtEndOfInput(t *testing.T) {
	l := newLexer("")
	tok := l.NextToken()
	assert.Equal(t, types.EOF, tok.Type)
}

func TestNextTokenIsOpenLookaheadDoesNotConsume(t *testing.T) {
	l := newLexer("(x)")
	require.True(t, l.NextTokenIsOpen())
	tok := l.NextToken()
	assert.Equal(t, types.Open, tok.Type)
}

func TestNextTokenIsOpenFalseWhenNotFollowedByParen(t *testing.T) {
	l := newLexer("x)")
	assert.False(t, l.NextTokenIsOpen())
}

func TestSkipLineDiscardsThroughNewline(t *testing.T) {
	l := newLexer("skip this\nkept")
	l.SkipLine()
	tok := l.NextToken()
	assert.Equal(t, types.Word, tok.Type)
	assert.Equal(t, "kept", string(tok.Text))
}

func TestSkipLineToEOFWhenNoNewlineRemains(t *testing.T) {
	l := newLexer("nothing left")
	l.SkipLine()
	tok := l.NextToken()
	assert.Equal(t, types.EOF, tok.Type)
}

func TestNextTokenReturnsMacDefForPushedSymbol(t *testing.T) {
	in := inputstack.New()
	in.PushSymbol(value.NewText([]byte("x"), 0), 3)
	l := New(in, NewSyntax())

	tok := l.NextToken()
	assert.Equal(t, types.MacDef, tok.Type)
	assert.Equal(t, 3, tok.MacLevel)
}

func TestSyntaxReturnsSameMutableInstance(t *testing.T) {
	l := newLexer("x")
	s := l.Syntax()
	s.ChangeQuote("[", "]")

	open, _ := l.Syntax().Quotes()
	assert.Equal(t, "[", open)
}

func TestQuoteAgeMatchesSyntaxAge(t *testing.T) {
	l := newLexer("x")
	assert.Equal(t, l.Syntax().Age(), l.QuoteAge())
}

func TestChangedQuoteDelimitersTakeEffectOnNextToken(t *testing.T) {
	l := newLexer("[hello]")
	l.Syntax().ChangeQuote("[", "]")

	tok := l.NextToken()
	assert.Equal(t, types.String, tok.Type)
	assert.Equal(t, "hello", string(tok.Text))
}
