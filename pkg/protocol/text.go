package protocol

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// The plain text codec is the legacy fixed-width C-string format: one byte per
// code point (ISO-8859-1) and a NUL byte ends the string even inside a longer
// length window. UTF-8 text must not go through it.

var legacyCharset = charmap.ISO8859_1

// legacyReplacement is written for runes outside ISO-8859-1.
const legacyReplacement = '?'

// EncodeLegacyText converts s to its single-byte wire form.
func EncodeLegacyText(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		b, ok := legacyCharset.EncodeRune(r)
		if !ok {
			b = legacyReplacement
		}
		out = append(out, b)
	}
	return out
}

// DecodeLegacyText converts wire bytes to a string, truncating at the first NUL.
func DecodeLegacyText(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		sb.WriteRune(legacyCharset.DecodeByte(c))
	}
	return sb.String()
}

// LegacyTextSize returns the encoded length of s without encoding it.
func LegacyTextSize(s string) int {
	return utf8.RuneCountInString(s)
}
