package value

import "github.com/m4go/m4/core/types"

// SentinelLevel marks a Str chain link as not arena-owned: refcounts are
// never adjusted for it (spec.md §3 ChainLink).
const SentinelLevel = -1

// LinkKind tags a ChainLink's variant.
type LinkKind uint8

const (
	LinkStr LinkKind = iota
	LinkArgvRef
)

// ChainLink is one element of a Composite value's ordered chain
// (spec.md §3 ChainLink, GLOSSARY "Composite value").
//
// A singly linked list (rather than a slice) matches the construction
// pattern: links are appended one at a time during argument collection
// and never randomly indexed while being built (spec.md §9 "Composite
// chain representation"). Random access only happens later, through
// ArgvRef indirection, which is itself sequential.
type ChainLink struct {
	Kind LinkKind
	Next *ChainLink

	// LinkStr
	Bytes []byte
	Level int // arena level that owns Bytes, or SentinelLevel
	Quote types.QuoteAge

	// LinkArgvRef: a $@/$* back-reference into an earlier Argv.
	Argv    *Argv
	Start   int  // 1-based index into Argv where this reference begins
	Flatten bool // replace embedded Procedure values with Empty when materialized
}

// Chain is the head/tail pair for a Composite SymbolValue.
type Chain struct {
	Head *ChainLink
	Tail *ChainLink
}

// Append adds a link to the end of the chain in O(1).
func (c *Chain) Append(link *ChainLink) {
	if c.Head == nil {
		c.Head = link
		c.Tail = link
		return
	}
	c.Tail.Next = link
	c.Tail = link
}

// NewStrLink builds a Str chain link.
func NewStrLink(b []byte, level int, age types.QuoteAge) *ChainLink {
	return &ChainLink{Kind: LinkStr, Bytes: b, Level: level, Quote: age}
}

// NewArgvRefLink builds an ArgvRef chain link.
func NewArgvRefLink(argv *Argv, start int, flatten bool, age types.QuoteAge) *ChainLink {
	return &ChainLink{Kind: LinkArgvRef, Argv: argv, Start: start, Flatten: flatten, Quote: age}
}
