package engine

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m4go/m4/core/value"
	"github.com/m4go/m4/runtime/primitives"
)

func expand(t *testing.T, input string) string {
	t.Helper()
	var out bytes.Buffer
	e := New(DefaultConfig(), &out, nil)
	primitives.Register(e.Table())
	e.PushFile("test", []byte(input))
	require.NoError(t, e.Run())
	return out.String()
}

func TestPlainTextPassesThrough(t *testing.T) {
	assert.Equal(t, "hello world", expand(t, "hello world"))
}

func TestDefineAndExpand(t *testing.T) {
	out := expand(t, "define(`greeting', `hello')greeting")
	assert.Equal(t, "hello", out)
}

func TestQuotedTextIsNotExpanded(t *testing.T) {
	out := expand(t, "define(`x', `y')`x'")
	assert.Equal(t, "x", out)
}

func TestPositionalParameterSubstitution(t *testing.T) {
	out := expand(t, "define(`double', `$1$1')double(`ab')")
	assert.Equal(t, "abab", out)
}

func TestUndefinedMacroIsLiteral(t *testing.T) {
	out := expand(t, "nosuchmacro")
	assert.Equal(t, "nosuchmacro", out)
}

func TestDnlDiscardsRestOfLine(t *testing.T) {
	out := expand(t, "before\ndnl this whole line disappears\nafter")
	assert.Equal(t, "before\nafter", out)
}

func TestIfelseThroughFullPipeline(t *testing.T) {
	out := expand(t, "define(`f', `ifelse($1, yes, `matched', `fallback')')f(`yes')f(`no')")
	assert.Equal(t, "matchedfallback", out)
}

func TestNestedMacroExpansion(t *testing.T) {
	out := expand(t, "define(`a', `A')define(`b', `a and a')b")
	assert.Equal(t, "A and A", out)
}

func TestArgCountEmptyParensIsOneArg(t *testing.T) {
	out := expand(t, "define(`f', `[$#]')f()f(`x')f(`x', `y')")
	assert.Equal(t, "[1][1][2]", out)
}

func TestDollarStarJoinsWithCommas(t *testing.T) {
	out := expand(t, "define(`f', `[$*]')f(`a', `b', `c')")
	assert.Equal(t, "[a,b,c]", out)
}

func TestDollarAtSplicesArgsThroughCall(t *testing.T) {
	out := expand(t, "define(`pass', `$@')define(`f', `[$*]')f(pass(`a', `b'))")
	assert.Equal(t, "[a,b]", out)
}

func TestDollarAtArgSurvivesRepeatedMaterialization(t *testing.T) {
	out := expand(t, "define(`pass', `$@')define(`twice', `$1$1')twice(pass(`x'))")
	assert.Equal(t, "xx", out)
}

func TestRecursionLimitRaisesFatalError(t *testing.T) {
	var out bytes.Buffer
	cfg := DefaultConfig()
	cfg.NestingLimit = 4
	e := New(cfg, &out, nil)
	primitives.Register(e.Table())
	e.PushFile("test", []byte("define(`loop', `loop')loop"))
	err := e.Run()
	require.Error(t, err)
	var fe *FatalError
	assert.ErrorAs(t, err, &fe)
}

func TestDefnRenamesBuiltin(t *testing.T) {
	out := expand(t, "define(`l', defn(`len'))l(`abcd')")
	assert.Equal(t, "4", out)
}

func TestWrongArgcSkipsInvocation(t *testing.T) {
	out := expand(t, "index(`onlyone')")
	assert.Equal(t, "", out)
}

func TestChangequoteAffectsSubsequentQuoting(t *testing.T) {
	out := expand(t, "changequote([,])define([x], [y])[x]")
	assert.Equal(t, "x", out)
}

func TestPlaceholderInvocationWarnsAndProducesNoOutput(t *testing.T) {
	var out bytes.Buffer
	e := New(DefaultConfig(), &out, nil)
	e.Table().Define("ghost", value.NewPlaceholder("ghost"))
	e.PushFile("test", []byte("ghost(`a')"))
	require.NoError(t, e.Run())
	assert.Empty(t, out.String())
}
