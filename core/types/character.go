package types

// ASCII character lookup tables for fast classification, used by the
// lexer while scanning identifiers and whitespace runs.
var (
	isWhitespace [128]bool // space, tab, carriage return, form feed, newline (m4 treats newline as ordinary whitespace text, not a token boundary)
	isLetter     [128]bool // a-z, A-Z, _
	isDigit      [128]bool // 0-9
	isIdentStart [128]bool // letter or _
	isIdentPart  [128]bool // letter, digit or _
)

func init() {
	for i := 0; i < 128; i++ {
		ch := byte(i)
		isWhitespace[i] = ch == ' ' || ch == '\t' || ch == '\r' || ch == '\f' || ch == '\n'
		isLetter[i] = ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch == '_'
		isDigit[i] = '0' <= ch && ch <= '9'
		isIdentStart[i] = isLetter[i]
		isIdentPart[i] = isLetter[i] || isDigit[i]
	}
}

// IsWhitespace reports whether b is m4 whitespace.
func IsWhitespace(b byte) bool { return b < 128 && isWhitespace[b] }

// IsLetter reports whether b is an ASCII letter or underscore.
func IsLetter(b byte) bool { return b < 128 && isLetter[b] }

// IsDigit reports whether b is an ASCII decimal digit.
func IsDigit(b byte) bool { return b < 128 && isDigit[b] }

// IsIdentStart reports whether b may begin an identifier.
func IsIdentStart(b byte) bool { return b < 128 && isIdentStart[b] }

// IsIdentPart reports whether b may continue an identifier.
func IsIdentPart(b byte) bool { return b < 128 && isIdentPart[b] }
