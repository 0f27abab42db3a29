package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m4go/m4/core/value"
)

func TestAtLazilyMaterializesLevels(t *testing.T) {
	s := NewStacks()
	lv := s.At(3)
	require.NotNil(t, lv)
	assert.Same(t, lv, s.At(3))
}

func TestEnterRecordsRewindBaseAndBumpsRefcount(t *testing.T) {
	lv := &Level{}
	lv.AllocBytes([]byte("preexisting"))
	lv.Enter()

	assert.Equal(t, 1, lv.Refcount())
	assert.Equal(t, len("preexisting"), lv.bytesBase)
}

func TestRefIncrementsWithoutMovingBase(t *testing.T) {
	lv := &Level{}
	lv.Enter()
	before := lv.bytesBase
	lv.Ref()

	assert.Equal(t, 2, lv.Refcount())
	assert.Equal(t, before, lv.bytesBase)
}

func TestUnrefToZeroRewindsBothArenas(t *testing.T) {
	lv := &Level{}
	lv.Enter()
	lv.AllocBytes([]byte("hello"))
	lv.AllocPtrs([]*value.SymbolValue{value.NewText([]byte("x"), 0)})

	lv.Unref()

	assert.Equal(t, 0, lv.Refcount())
	assert.Equal(t, 0, lv.BytesTop())
}

func TestUnrefAboveZeroKeepsBytes(t *testing.T) {
	lv := &Level{}
	lv.Enter()
	lv.Ref()
	lv.AllocBytes([]byte("hello"))

	lv.Unref()

	assert.Equal(t, 1, lv.Refcount())
	assert.Equal(t, 5, lv.BytesTop())
}

func TestAllocBytesReturnsOwnedSlice(t *testing.T) {
	lv := &Level{}
	first := lv.AllocBytes([]byte("ab"))
	second := lv.AllocBytes([]byte("cd"))

	assert.Equal(t, "ab", string(first))
	assert.Equal(t, "cd", string(second))
	assert.Equal(t, "abcd", string(lv.bytes))
}

func TestSliceFromReturnsCappedSpan(t *testing.T) {
	lv := &Level{}
	lv.AllocBytes([]byte("abc"))
	mark := lv.BytesTop()
	lv.AllocBytes([]byte("def"))

	span := lv.SliceFrom(mark)
	assert.Equal(t, "def", string(span))
	assert.Equal(t, len(span), cap(span))
}

func TestRewindBytesToTruncates(t *testing.T) {
	lv := &Level{}
	lv.AllocBytes([]byte("abc"))
	mark := lv.BytesTop()
	lv.AllocBytes([]byte("def"))

	lv.RewindBytesTo(mark)
	assert.Equal(t, "abc", string(lv.bytes))
}

func TestExitOptimisticScratchTrimsWhenNotInUse(t *testing.T) {
	lv := &Level{}
	lv.Enter()
	lv.Ref()
	mark := lv.bytesBase
	lv.AllocBytes([]byte("scratch"))

	lv.ExitOptimistic(false)

	assert.Equal(t, mark, lv.BytesTop())
	assert.Equal(t, 2, lv.Refcount())
}

func TestExitOptimisticKeepsBytesWhenInUse(t *testing.T) {
	lv := &Level{}
	lv.Enter()
	lv.Ref()
	lv.AllocBytes([]byte("kept"))

	lv.ExitOptimistic(true)

	assert.Equal(t, 4, lv.BytesTop())
}

func TestExitOptimisticNoopAfterFullUnref(t *testing.T) {
	lv := &Level{}
	lv.Enter()
	lv.AllocBytes([]byte("x"))
	lv.Unref()

	lv.ExitOptimistic(false)
	assert.Equal(t, 0, lv.BytesTop())
}

func TestScratchReturnsEmptyViewAtCurrentTop(t *testing.T) {
	lv := &Level{}
	lv.AllocBytes([]byte("abc"))

	scratch := lv.Scratch()
	assert.Len(t, scratch, 0)
}
