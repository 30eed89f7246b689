// Package filters implements the stream encodings applied to content and
// image data before serialization. Only the write direction is provided;
// decoded payloads come from collaborators.
package filters

import (
	"bytes"
	"compress/zlib"
	"context"
	"encoding/ascii85"
	"encoding/hex"
	"fmt"
)

// Filter names a PDF stream filter.
type Filter string

const (
	// Auto lets the caller pick a filter based on the payload (see the
	// resources package for the image heuristic).
	Auto Filter = "AUTO"
	// None stores the payload verbatim with no /Filter entry.
	None Filter = ""
	// Flate is zlib-wrapped deflate, the default lossless filter.
	Flate Filter = "FlateDecode"
	// DCT marks data that is already a JPEG file; it is passed through
	// without re-encoding.
	DCT Filter = "DCTDecode"
	// ASCIIHex expands the payload to hexadecimal text.
	ASCIIHex Filter = "ASCIIHexDecode"
	// ASCII85 expands the payload to base-85 text.
	ASCII85 Filter = "ASCII85Decode"
)

// UnsupportedFilterError reports a request for a filter the library cannot
// encode with.
type UnsupportedFilterError struct {
	Filter Filter
}

func (e *UnsupportedFilterError) Error() string {
	return fmt.Sprintf("unsupported filter: %q", string(e.Filter))
}

// Encoder transforms stream data into its filtered on-disk form.
type Encoder interface {
	Name() Filter
	Encode(ctx context.Context, data []byte) ([]byte, error)
}

// Registry maps filter names to encoders.
type Registry struct {
	encoders map[Filter]Encoder
}

// NewRegistry returns a registry pre-populated with every built-in encoder.
func NewRegistry() *Registry {
	r := &Registry{}
	r.Register(flateEncoder{})
	r.Register(dctEncoder{})
	r.Register(asciiHexEncoder{})
	r.Register(ascii85Encoder{})
	return r
}

func (r *Registry) Register(e Encoder) {
	if r.encoders == nil {
		r.encoders = make(map[Filter]Encoder)
	}
	r.encoders[e.Name()] = e
}

// Get returns the encoder for name, or an UnsupportedFilterError.
func (r *Registry) Get(name Filter) (Encoder, error) {
	if e, ok := r.encoders[name]; ok {
		return e, nil
	}
	return nil, &UnsupportedFilterError{Filter: name}
}

// Encode applies the named filter to data. None passes data through.
func (r *Registry) Encode(ctx context.Context, name Filter, data []byte) ([]byte, error) {
	if name == None {
		return data, nil
	}
	enc, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	out, err := enc.Encode(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", name, err)
	}
	return out, nil
}

type flateEncoder struct{}

func (flateEncoder) Name() Filter { return Flate }

func (flateEncoder) Encode(ctx context.Context, data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// dctEncoder passes JPEG data through untouched: the payload is already in
// its compressed form and re-encoding would only lose quality.
type dctEncoder struct{}

func (dctEncoder) Name() Filter { return DCT }

func (dctEncoder) Encode(ctx context.Context, data []byte) ([]byte, error) {
	if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		return nil, fmt.Errorf("payload is not a JPEG stream")
	}
	return data, nil
}

type asciiHexEncoder struct{}

func (asciiHexEncoder) Name() Filter { return ASCIIHex }

func (asciiHexEncoder) Encode(ctx context.Context, data []byte) ([]byte, error) {
	out := make([]byte, hex.EncodedLen(len(data))+1)
	hex.Encode(out, data)
	out[len(out)-1] = '>'
	return out, nil
}

type ascii85Encoder struct{}

func (ascii85Encoder) Name() Filter { return ASCII85 }

func (ascii85Encoder) Encode(ctx context.Context, data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := ascii85.NewEncoder(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	buf.WriteString("~>")
	return buf.Bytes(), nil
}
