package document

import (
	"bytes"
	"testing"
)

func TestEncodeWinAnsi(t *testing.T) {
	got := encodeWinAnsi("café")
	want := []byte{'c', 'a', 'f', 0xE9}
	if !bytes.Equal(got, want) {
		t.Errorf("encoded = % x, want % x", got, want)
	}
}

func TestEncodeWinAnsiSubstitutesUnmappable(t *testing.T) {
	got := encodeWinAnsi("a☃b")
	if len(got) != 3 || got[0] != 'a' || got[2] != 'b' {
		t.Fatalf("encoded = % x", got)
	}
	if got[1] == 'a' || got[1] > 0x7F {
		t.Errorf("substitute byte = %#x", got[1])
	}
}

func TestWinAnsiRoundTripThroughWidths(t *testing.T) {
	// The euro sign sits at 0x80 in this code page, outside latin-1.
	if r := winAnsiRune(0x80); r != '€' {
		t.Errorf("code 0x80 = %q, want euro sign", r)
	}
	if r := winAnsiRune('A'); r != 'A' {
		t.Errorf("code 'A' = %q", r)
	}
}
