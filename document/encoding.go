package document

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// encodeWinAnsi maps text onto the single-byte code page simple fonts are
// declared with. Runes outside the code page become the substitute byte
// rather than failing the whole string.
func encodeWinAnsi(s string) []byte {
	enc := encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder())
	out, err := enc.Bytes([]byte(s))
	if err != nil {
		// ReplaceUnsupported never errors; keep the input bytes as a
		// fallback should that change.
		return []byte(s)
	}
	return out
}

// winAnsiRune reports which rune a code-page byte stands for, used to build
// the width array of a simple font.
func winAnsiRune(code byte) rune {
	return charmap.Windows1252.DecodeByte(code)
}
