package filters

import (
	"bytes"
	"compress/zlib"
	"context"
	"errors"
	"io"
	"testing"
)

func TestFlateRoundTrip(t *testing.T) {
	r := NewRegistry()
	payload := bytes.Repeat([]byte("0.5 0.5 0.5 rg\n"), 100)
	encoded, err := r.Encode(context.Background(), Flate, payload)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(encoded) >= len(payload) {
		t.Errorf("flate did not shrink repetitive payload: %d -> %d", len(payload), len(encoded))
	}
	zr, err := zlib.NewReader(bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("encoded stream is not zlib: %v", err)
	}
	decoded, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("inflate: %v", err)
	}
	if !bytes.Equal(decoded, payload) {
		t.Error("round trip mismatch")
	}
}

func TestDCTPassThrough(t *testing.T) {
	r := NewRegistry()
	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}
	out, err := r.Encode(context.Background(), DCT, jpeg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.Equal(out, jpeg) {
		t.Error("DCT encoding must pass JPEG data through unchanged")
	}
	if _, err := r.Encode(context.Background(), DCT, []byte("not a jpeg")); err == nil {
		t.Error("non-JPEG payload should be rejected")
	}
}

func TestASCIIEncoders(t *testing.T) {
	r := NewRegistry()
	out, err := r.Encode(context.Background(), ASCIIHex, []byte{0xAB, 0xCD})
	if err != nil {
		t.Fatalf("asciihex: %v", err)
	}
	if string(out) != "abcd>" {
		t.Errorf("asciihex = %q", out)
	}
	out, err = r.Encode(context.Background(), ASCII85, []byte("hello"))
	if err != nil {
		t.Fatalf("ascii85: %v", err)
	}
	if !bytes.HasSuffix(out, []byte("~>")) {
		t.Errorf("ascii85 missing terminator: %q", out)
	}
}

func TestUnknownFilterFails(t *testing.T) {
	r := NewRegistry()
	_, err := r.Encode(context.Background(), Filter("JBIG2Decode"), []byte("x"))
	var unsupported *UnsupportedFilterError
	if !errors.As(err, &unsupported) {
		t.Fatalf("got %v, want UnsupportedFilterError", err)
	}
}

func TestNonePassesThrough(t *testing.T) {
	r := NewRegistry()
	payload := []byte("raw")
	out, err := r.Encode(context.Background(), None, payload)
	if err != nil || !bytes.Equal(out, payload) {
		t.Fatalf("none filter: %q, %v", out, err)
	}
}
