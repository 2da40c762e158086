package lexer

import (
	"bytes"

	"golang.org/x/text/unicode/norm"
)

var bomUTF8 = []byte{0xEF, 0xBB, 0xBF}

// Normalize strips a leading UTF-8 BOM and applies Unicode NFC
// normalization so that lexically equivalent source — a field name
// typed as a precomposed vs. a decomposed accent, say — produces
// identical token streams regardless of the editor that wrote it.
func Normalize(src []byte) []byte {
	src = bytes.TrimPrefix(src, bomUTF8)
	if !norm.NFC.IsNormal(src) {
		src = norm.NFC.Bytes(src)
	}
	return src
}

// NewFromBytes normalizes raw source bytes before handing them to New,
// the path every external caller (parser.NewFromSource, the compiler
// facade) should use instead of constructing a Lexer from an
// un-normalized string directly.
func NewFromBytes(src []byte) *Lexer {
	return New(string(Normalize(src)))
}
