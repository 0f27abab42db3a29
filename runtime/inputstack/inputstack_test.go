package inputstack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m4go/m4/core/types"
	"github.com/m4go/m4/core/value"
)

func drain(s *Stack) string {
	var out []byte
	for {
		b, ok := s.NextByte()
		if !ok {
			break
		}
		out = append(out, b)
	}
	return string(out)
}

func TestPushFileThenNextByteReadsInOrder(t *testing.T) {
	s := New()
	s.PushFile("test", []byte("abc"))
	assert.Equal(t, "abc", drain(s))
}

func TestNextByteReturnsFalseAtEmptyStack(t *testing.T) {
	s := New()
	_, ok := s.NextByte()
	assert.False(t, ok)
}

func TestPeekByteDoesNotConsume(t *testing.T) {
	s := New()
	s.PushFile("test", []byte("xy"))

	b, ok := s.PeekByte()
	require.True(t, ok)
	assert.Equal(t, byte('x'), b)

	b, ok = s.NextByte()
	require.True(t, ok)
	assert.Equal(t, byte('x'), b)
}

func TestEmptyPopsExhaustedBlocks(t *testing.T) {
	s := New()
	s.PushFile("test", []byte(""))
	assert.True(t, s.Empty())
}

func TestEmptyFalseWhileBytesRemain(t *testing.T) {
	s := New()
	s.PushFile("test", []byte("x"))
	assert.False(t, s.Empty())
}

func TestBuilderWriteStringThenPushStringFinishRescans(t *testing.T) {
	s := New()
	b := s.PushStringInit(1)
	b.WriteString("hello")
	s.PushStringFinish(b)

	assert.Equal(t, "hello", drain(s))
}

func TestPushStringFinishNoopOnEmptyBuilder(t *testing.T) {
	s := New()
	s.PushFile("test", []byte("x"))
	b := s.PushStringInit(0)
	s.PushStringFinish(b)

	assert.Equal(t, "x", drain(s))
}

func TestBuilderWriteSymbolPreservesSegmentOrder(t *testing.T) {
	s := New()
	b := s.PushStringInit(0)
	b.WriteString("before-")
	sym := value.NewText([]byte("sym"), 0)
	b.WriteSymbol(sym)
	b.WriteString("-after")
	s.PushStringFinish(b)

	var gotBytes []byte
	for {
		peek, ok := s.PeekByte()
		if !ok {
			break
		}
		gotBytes = append(gotBytes, peek)
		s.NextByte()
	}
	assert.Equal(t, "before-", string(gotBytes))

	v, _, ok := s.PeekSymbol()
	require.True(t, ok)
	assert.Same(t, sym, v)

	assert.Equal(t, "-after", drain(s))
}

func TestPushSymbolReportsArenaBackedComposite(t *testing.T) {
	s := New()
	composite := &value.SymbolValue{Kind: value.KindComposite, Chain: &value.Chain{}}

	inUse := s.PushSymbol(composite, 2)
	assert.True(t, inUse)

	v, level, ok := s.PeekSymbol()
	require.True(t, ok)
	assert.Same(t, composite, v)
	assert.Equal(t, 2, level)
}

func TestPushSymbolTextNotArenaBacked(t *testing.T) {
	s := New()
	text := value.NewText([]byte("x"), 0)

	inUse := s.PushSymbol(text, -1)
	assert.False(t, inUse)
}

func TestLocationReportsNameAndLine(t *testing.T) {
	s := New()
	s.PushFile("myfile.m4", []byte("a\nb"))

	name, line := s.Location()
	assert.Equal(t, "myfile.m4", name)
	assert.Equal(t, 1, line)

	s.NextByte()
	s.NextByte()
	_, line = s.Location()
	assert.Equal(t, 2, line)
}

func TestTopQuoteAgeReflectsRescannedBlock(t *testing.T) {
	s := New()
	b := s.PushStringInit(types.QuoteAge(7))
	b.WriteString("x")
	s.PushStringFinish(b)

	assert.Equal(t, types.QuoteAge(7), s.TopQuoteAge())
}

func TestBuilderLenCountsTextSegmentsOnly(t *testing.T) {
	b := &Builder{}
	b.WriteString("ab")
	b.WriteSymbol(value.NewText([]byte("ignored"), 0))
	b.WriteString("cd")

	assert.Equal(t, 4, b.Len())
}

func TestBuilderBytesRendersSymbolPlaceholder(t *testing.T) {
	b := &Builder{}
	b.WriteString("a")
	b.WriteSymbol(value.NewText([]byte("x"), 0))
	b.WriteString("b")

	assert.Equal(t, "a<argv-ref>b", string(b.Bytes()))
}
