package graph

import "sort"

// Object is the base interface for every value that can live in the graph,
// either inline inside another object or registered as an indirect object.
type Object interface {
	Type() string
}

// Name is a PDF name object (written with a leading slash).
type Name struct{ Val string }

func (Name) Type() string { return "name" }

// Integer is a PDF integer.
type Integer struct{ Val int64 }

func (Integer) Type() string { return "integer" }

// Real is a PDF real number.
type Real struct{ Val float64 }

func (Real) Type() string { return "real" }

// Bool is a PDF boolean.
type Bool struct{ Val bool }

func (Bool) Type() string { return "boolean" }

// Null is the PDF null object.
type Null struct{}

func (Null) Type() string { return "null" }

// String is a PDF string. Hex selects hexadecimal form on output.
type String struct {
	Bytes []byte
	Hex   bool
}

func (String) Type() string { return "string" }

// Array is a PDF array.
type Array struct{ Items []Object }

func (*Array) Type() string { return "array" }

func (a *Array) Append(items ...Object) { a.Items = append(a.Items, items...) }
func (a *Array) Len() int               { return len(a.Items) }

// Dict is a PDF dictionary. Key order is not significant in the model; the
// serializer always writes keys sorted so output stays byte-stable.
type Dict struct{ KV map[string]Object }

func (*Dict) Type() string { return "dict" }

func (d *Dict) Set(key string, value Object) {
	if d.KV == nil {
		d.KV = make(map[string]Object)
	}
	d.KV[key] = value
}

func (d *Dict) Get(key string) (Object, bool) {
	o, ok := d.KV[key]
	return o, ok
}

func (d *Dict) Len() int { return len(d.KV) }

// SortedKeys returns the dictionary keys in lexical order.
func (d *Dict) SortedKeys() []string {
	keys := make([]string, 0, len(d.KV))
	for k := range d.KV {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Stream is a PDF stream: a dictionary plus raw (already encoded) data.
// The serializer maintains the /Length entry.
type Stream struct {
	Dict *Dict
	Data []byte
}

func (*Stream) Type() string { return "stream" }

// Ref is an inline reference to an indirect object.
type Ref struct{ Ref ObjectRef }

func (Ref) Type() string { return "ref" }

// Constructors, mirroring how callers build object trees.

func NameOf(v string) Name        { return Name{Val: v} }
func Int(v int64) Integer         { return Integer{Val: v} }
func Float(v float64) Real        { return Real{Val: v} }
func Boolean(v bool) Bool         { return Bool{Val: v} }
func Str(b []byte) String         { return String{Bytes: b} }
func Text(s string) String        { return String{Bytes: []byte(s)} }
func HexStr(b []byte) String      { return String{Bytes: b, Hex: true} }
func NewArray(it ...Object) *Array {
	return &Array{Items: it}
}
func NewDict() *Dict { return &Dict{KV: make(map[string]Object)} }
func NewStream(dict *Dict, data []byte) *Stream {
	if dict == nil {
		dict = NewDict()
	}
	return &Stream{Dict: dict, Data: data}
}
func RefTo(ref ObjectRef) Ref { return Ref{Ref: ref} }
