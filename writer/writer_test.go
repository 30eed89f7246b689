package writer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/docfold/pdfgen/graph"
)

// minimalGraph builds a catalog with an empty pages tree.
func minimalGraph(t *testing.T) (*graph.Graph, Trailer) {
	t.Helper()
	g := graph.New()
	pages := graph.NewDict()
	pages.Set("Type", graph.NameOf("Pages"))
	pages.Set("Kids", graph.NewArray())
	pages.Set("Count", graph.Int(0))
	pagesRef, err := g.Register(pages)
	if err != nil {
		t.Fatalf("register pages: %v", err)
	}
	catalog := graph.NewDict()
	catalog.Set("Type", graph.NameOf("Catalog"))
	catalog.Set("Pages", graph.RefTo(pagesRef))
	catalogRef, err := g.Register(catalog)
	if err != nil {
		t.Fatalf("register catalog: %v", err)
	}
	return g, Trailer{Root: catalogRef}
}

func TestSerializeProducesValidSkeleton(t *testing.T) {
	g, tr := minimalGraph(t)
	out, err := New().Serialize(context.Background(), g, tr, Config{})
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-1.7\n")) {
		t.Errorf("missing header: %q", out[:16])
	}
	if !bytes.HasSuffix(out, []byte("%%EOF\n")) {
		t.Error("missing EOF marker")
	}
	for _, want := range []string{"1 0 obj", "2 0 obj", "xref", "trailer", "/Root 2 0 R", "/Size 3", "startxref"} {
		if !bytes.Contains(out, []byte(want)) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestXrefOffsetsPointAtObjects(t *testing.T) {
	g, tr := minimalGraph(t)
	out, err := New().Serialize(context.Background(), g, tr, Config{})
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	text := string(out)
	xref := strings.Index(text, "xref\n")
	if xref < 0 {
		t.Fatal("no xref section")
	}
	lines := strings.Split(text[xref:], "\n")
	// lines[0]="xref", [1]="0 3", [2]=free entry, [3..]=object entries.
	for i := 1; i <= 2; i++ {
		entry := lines[2+i]
		off, err := strconv.Atoi(strings.Fields(entry)[0])
		if err != nil {
			t.Fatalf("bad xref entry %q", entry)
		}
		want := fmt.Sprintf("%d 0 obj", i)
		if !strings.HasPrefix(text[off:], want) {
			t.Errorf("xref entry %d points at %q, want %q", i, text[off:off+10], want)
		}
	}
	// startxref points at the xref keyword.
	sx := strings.Index(text, "startxref\n")
	offLine := strings.SplitN(text[sx+len("startxref\n"):], "\n", 2)[0]
	off, err := strconv.Atoi(offLine)
	if err != nil || !strings.HasPrefix(text[off:], "xref") {
		t.Errorf("startxref offset %q does not point at xref", offLine)
	}
}

func TestByteStability(t *testing.T) {
	g, tr := minimalGraph(t)
	w := New()
	first, err := w.Serialize(context.Background(), g, tr, Config{})
	if err != nil {
		t.Fatalf("first serialize: %v", err)
	}
	second, err := w.Serialize(context.Background(), g, tr, Config{})
	if err != nil {
		t.Fatalf("second serialize: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("repeated serialization produced different bytes")
	}
}

func TestSerializeFreezesGraph(t *testing.T) {
	g, tr := minimalGraph(t)
	if _, err := New().Serialize(context.Background(), g, tr, Config{}); err != nil {
		t.Fatalf("serialize: %v", err)
	}
	_, err := g.Register(graph.Int(1))
	var frozen *graph.FrozenDocumentError
	if !errors.As(err, &frozen) {
		t.Fatalf("register after serialize: got %v, want FrozenDocumentError", err)
	}
}

func TestDanglingReferenceAbortsBeforeOutput(t *testing.T) {
	g := graph.New()
	catalog := graph.NewDict()
	catalog.Set("Pages", graph.RefTo(graph.ObjectRef{Num: 17}))
	root, err := g.Register(catalog)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	var sink bytes.Buffer
	n, err := New().WriteTo(context.Background(), &sink, g, Trailer{Root: root}, Config{})
	var dangling *graph.DanglingReferenceError
	if !errors.As(err, &dangling) {
		t.Fatalf("got %v, want DanglingReferenceError", err)
	}
	if n != 0 || sink.Len() != 0 {
		t.Errorf("partial output written: %d bytes", sink.Len())
	}
}

func TestStreamLengthMaintained(t *testing.T) {
	g := graph.New()
	data := []byte("BT /F1 12 Tf ET")
	streamRef, err := g.Register(graph.NewStream(graph.NewDict(), data))
	if err != nil {
		t.Fatalf("register stream: %v", err)
	}
	catalog := graph.NewDict()
	catalog.Set("Contents", graph.RefTo(streamRef))
	root, _ := g.Register(catalog)
	out, err := New().Serialize(context.Background(), g, Trailer{Root: root}, Config{})
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	want := fmt.Sprintf("<</Length %d>>\nstream\n%s\nendstream", len(data), data)
	if !bytes.Contains(out, []byte(want)) {
		t.Errorf("stream not serialized as %q:\n%s", want, out)
	}
}

func TestDictKeysSorted(t *testing.T) {
	var buf bytes.Buffer
	d := graph.NewDict()
	d.Set("Zebra", graph.Int(1))
	d.Set("Alpha", graph.Int(2))
	d.Set("Mid", graph.Int(3))
	if err := writeObject(&buf, d); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got, want := buf.String(), "<</Alpha 2 /Mid 3 /Zebra 1>>"; got != want {
		t.Errorf("dict = %q, want %q", got, want)
	}
}

func TestNameEscaping(t *testing.T) {
	var buf bytes.Buffer
	writeName(&buf, "odd name#1")
	if got, want := buf.String(), "/odd#20name#231"; got != want {
		t.Errorf("name = %q, want %q", got, want)
	}
}

func TestStringForms(t *testing.T) {
	var buf bytes.Buffer
	if err := writeObject(&buf, graph.Text("a(b)\\")); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), `(a\(b\)\\)`; got != want {
		t.Errorf("literal string = %q, want %q", got, want)
	}
	buf.Reset()
	if err := writeObject(&buf, graph.HexStr([]byte{0xDE, 0xAD})); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "<dead>"; got != want {
		t.Errorf("hex string = %q, want %q", got, want)
	}
}
