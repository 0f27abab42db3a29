package symtab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m4go/m4/core/value"
)

func text(s string) *value.SymbolValue { return value.NewText([]byte(s), 0) }

func TestDefineThenLookup(t *testing.T) {
	tbl := New()
	tbl.Define("x", text("1"))

	v, ok := tbl.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, "1", string(v.Text))
}

func TestDefineOverwritesTopOfStack(t *testing.T) {
	tbl := New()
	tbl.Define("x", text("1"))
	tbl.Define("x", text("2"))

	v, ok := tbl.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, "2", string(v.Text))
	assert.Len(t, tbl.Stack("x"), 1)
}

func TestPushdefShadowsThenPopdefRestores(t *testing.T) {
	tbl := New()
	tbl.Define("x", text("outer"))
	tbl.PushDef("x", text("inner"))

	v, _ := tbl.Lookup("x")
	assert.Equal(t, "inner", string(v.Text))

	tbl.PopDef("x")
	v, ok := tbl.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, "outer", string(v.Text))
}

func TestPopdefToEmptyForgetsName(t *testing.T) {
	tbl := New()
	tbl.Define("x", text("1"))
	tbl.PopDef("x")

	_, ok := tbl.Lookup("x")
	assert.False(t, ok)
	assert.NotContains(t, tbl.Names(), "x")
}

func TestUndefineRemovesWholeStack(t *testing.T) {
	tbl := New()
	tbl.Define("x", text("1"))
	tbl.PushDef("x", text("2"))
	tbl.Undefine("x")

	_, ok := tbl.Lookup("x")
	assert.False(t, ok)
}

func TestTracedSurvivesBeforeDefine(t *testing.T) {
	tbl := New()
	tbl.SetTraced("willexist", true)
	tbl.Define("willexist", text("1"))

	assert.True(t, tbl.IsTraced("willexist"))
}

func TestSetParamsNoopOnUndefinedName(t *testing.T) {
	tbl := New()
	tbl.SetParams("nope", map[string]int{"a": 1})
	assert.Nil(t, tbl.Params("nope"))
}

func TestParamsAttachToCurrentDefinition(t *testing.T) {
	tbl := New()
	tbl.Define("greet", text("hi $name"))
	tbl.SetParams("greet", map[string]int{"name": 1})

	assert.Equal(t, map[string]int{"name": 1}, tbl.Params("greet"))
}

func TestNamesReturnsSortedDefinedNames(t *testing.T) {
	tbl := New()
	tbl.Define("zeta", text("1"))
	tbl.Define("alpha", text("2"))

	assert.Equal(t, []string{"alpha", "zeta"}, tbl.Names())
}

func TestStackAndRestoreRoundTrip(t *testing.T) {
	tbl := New()
	tbl.Define("x", text("one"))
	tbl.PushDef("x", text("two"))

	stack := tbl.Stack("x")
	require.Len(t, stack, 2)

	other := New()
	other.Restore("x", stack, true, map[string]int{"k": 1})

	v, ok := other.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, "two", string(v.Text))
	assert.True(t, other.IsTraced("x"))
}

func TestSuggestRanksCloseNames(t *testing.T) {
	tbl := New()
	tbl.Define("define", text(""))
	tbl.Define("undefine", text(""))
	tbl.Define("pushdef", text(""))

	suggestions := tbl.Suggest("defne", 2)
	assert.Contains(t, suggestions, "define")
}
