package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m4go/m4/core/types"
)

func TestNewArgvSlot0IsNameIndependentOfLaterArgs(t *testing.T) {
	a := NewArgv([]byte("mymacro"))
	assert.Equal(t, 1, a.Argc)
	assert.Equal(t, 0, a.UserArgc())

	v := a.DirectArg(0)
	require.True(t, v.IsText())
	assert.Equal(t, "mymacro", string(v.Text))
}

func TestAppendArgIncrementsArgcAndUserArgc(t *testing.T) {
	a := NewArgv([]byte("m"))
	a.AppendArg(NewText([]byte("one"), 0))
	a.AppendArg(NewText([]byte("two"), 0))

	assert.Equal(t, 3, a.Argc)
	assert.Equal(t, 2, a.UserArgc())
	assert.Equal(t, "one", string(a.DirectArg(1).Text))
	assert.Equal(t, "two", string(a.DirectArg(2).Text))
}

func TestAppendCompositeArgSetsHasRef(t *testing.T) {
	a := NewArgv([]byte("m"))
	composite := &SymbolValue{Kind: KindComposite, Chain: &Chain{}}
	a.AppendArg(composite)

	assert.True(t, a.HasRef)
}

func TestDirectArgOutOfRangeReturnsEmpty(t *testing.T) {
	a := NewArgv([]byte("m"))
	a.AppendArg(NewText([]byte("only"), 0))

	assert.True(t, a.DirectArg(5).IsEmpty())
}

func TestDirectArgOnWrapperReturnsNil(t *testing.T) {
	a := &Argv{Argc: 1, Wrapper: true}
	assert.Nil(t, a.DirectArg(0))
}

func TestSymbolValueKindPredicates(t *testing.T) {
	assert.True(t, NewText([]byte("x"), types.QuoteAge(1)).IsText())
	assert.True(t, NewProcedure(&Procedure{Name: "p"}).IsProcedure())
	assert.True(t, (&SymbolValue{Kind: KindComposite, Chain: &Chain{}}).IsComposite())
	assert.True(t, Empty.IsEmpty())
	assert.True(t, (*SymbolValue)(nil).IsEmpty())
}

func TestCloneIsShallowAndIndependent(t *testing.T) {
	orig := NewText([]byte("a"), 0)
	clone := orig.Clone()

	clone.Text = []byte("b")
	assert.Equal(t, "a", string(orig.Text))
	assert.Equal(t, "b", string(clone.Text))
}

func TestProcFlagsHas(t *testing.T) {
	flags := FlagBlindArgs | FlagSideEffectArgs
	assert.True(t, flags.Has(FlagBlindArgs))
	assert.True(t, flags.Has(FlagSideEffectArgs))
	assert.False(t, flags.Has(FlagAcceptsMacroArgs))
}

func TestChainAppendPreservesOrder(t *testing.T) {
	c := &Chain{}
	c.Append(NewStrLink([]byte("a"), SentinelLevel, 0))
	c.Append(NewStrLink([]byte("b"), SentinelLevel, 0))

	var got []byte
	for l := c.Head; l != nil; l = l.Next {
		got = append(got, l.Bytes...)
	}
	assert.Equal(t, "ab", string(got))
}
