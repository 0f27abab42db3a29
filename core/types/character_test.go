package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCharacterClassification(t *testing.T) {
	tests := []struct {
		name       string
		ch         byte
		letter     bool
		digit      bool
		identStart bool
		identPart  bool
		whitespace bool
	}{
		{name: "lowercase letter", ch: 'a', letter: true, identStart: true, identPart: true},
		{name: "uppercase letter", ch: 'Z', letter: true, identStart: true, identPart: true},
		{name: "underscore", ch: '_', letter: true, identStart: true, identPart: true},
		{name: "digit", ch: '5', digit: true, identPart: true},
		{name: "space", ch: ' ', whitespace: true},
		{name: "tab", ch: '\t', whitespace: true},
		{
			name:       "newline is whitespace, not a token boundary",
			ch:         '\n',
			whitespace: true,
		},
		{name: "hyphen is not identifier-shaped", ch: '-'},
		{name: "open paren is not identifier-shaped", ch: '('},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.letter, IsLetter(tt.ch))
			assert.Equal(t, tt.digit, IsDigit(tt.ch))
			assert.Equal(t, tt.identStart, IsIdentStart(tt.ch))
			assert.Equal(t, tt.identPart, IsIdentPart(tt.ch))
			assert.Equal(t, tt.whitespace, IsWhitespace(tt.ch))
		})
	}
}

func TestClassificationRejectsNonASCII(t *testing.T) {
	var high byte = 200
	assert.False(t, IsLetter(high))
	assert.False(t, IsDigit(high))
	assert.False(t, IsIdentStart(high))
	assert.False(t, IsIdentPart(high))
	assert.False(t, IsWhitespace(high))
}
