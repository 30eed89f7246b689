package contentstream

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/docfold/pdfgen/coords"
)

func TestOperatorsAppendInCallOrder(t *testing.T) {
	b := NewBuilder()
	b.SetFillRGB(1, 0, 0).
		MoveTo(10, 20).
		LineTo(30, 40).
		Stroke()
	want := "1 0 0 rg\n10 20 m\n30 40 l\nS\n"
	if got := string(b.Bytes()); got != want {
		t.Errorf("stream = %q, want %q", got, want)
	}
}

func TestTextObjectEmission(t *testing.T) {
	b := NewBuilder()
	b.BeginText().
		SetFont("F1", 12).
		SetTextMatrix(coords.Translate(50, 50)).
		ShowText([]byte("Hello!")).
		EndText()
	got := string(b.Bytes())
	for _, want := range []string{"BT\n", "/F1 12 Tf\n", "1 0 0 1 50 50 Tm\n", "(Hello!) Tj\n", "ET\n"} {
		if !strings.Contains(got, want) {
			t.Errorf("stream missing %q:\n%s", want, got)
		}
	}
	if strings.Index(got, "BT") > strings.Index(got, "Tf") {
		t.Error("Tf emitted before BT")
	}
}

func TestStringEscaping(t *testing.T) {
	b := NewBuilder()
	b.ShowText([]byte(`a(b)c\d`))
	want := `(a\(b\)c\\d) Tj` + "\n"
	if got := string(b.Bytes()); got != want {
		t.Errorf("escaped = %q, want %q", got, want)
	}
}

func TestRestoreWithoutSaveFails(t *testing.T) {
	b := NewBuilder()
	b.Save()
	if err := b.Restore(); err != nil {
		t.Fatalf("balanced restore: %v", err)
	}
	err := b.Restore()
	var unbalanced *UnbalancedGraphicsStateError
	if !errors.As(err, &unbalanced) {
		t.Fatalf("got %v, want UnbalancedGraphicsStateError", err)
	}
	if bytes.Contains(b.Bytes(), []byte("Q\nQ")) {
		t.Error("failed restore must not emit an operator")
	}
}

func TestCloseReportsUnclosedSaves(t *testing.T) {
	b := NewBuilder()
	b.Save().Save()
	if err := b.Restore(); err != nil {
		t.Fatalf("restore: %v", err)
	}
	err := b.Close()
	var unbalanced *UnbalancedGraphicsStateError
	if !errors.As(err, &unbalanced) {
		t.Fatalf("close with open save: got %v", err)
	}
	if unbalanced.Depth != 1 {
		t.Errorf("depth = %d, want 1", unbalanced.Depth)
	}
}

func TestWithStateRestoresOnAllPaths(t *testing.T) {
	b := NewBuilder()
	sentinel := fmt.Errorf("draw failed")
	err := b.WithState(func(b *Builder) error {
		b.SetFillGray(0.5)
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("error not propagated: %v", err)
	}
	if b.Depth() != 0 {
		t.Errorf("depth = %d after WithState, want 0", b.Depth())
	}
	want := "q\n0.5 g\nQ\n"
	if got := string(b.Bytes()); got != want {
		t.Errorf("stream = %q, want %q", got, want)
	}
}

func TestNestedWithState(t *testing.T) {
	b := NewBuilder()
	err := b.WithState(func(b *Builder) error {
		b.Concat(coords.Scale(2, 2))
		return b.WithState(func(b *Builder) error {
			b.SetLineWidth(3)
			return nil
		})
	})
	if err != nil {
		t.Fatalf("nested WithState: %v", err)
	}
	want := "q\n2 0 0 2 0 0 cm\nq\n3 w\nQ\nQ\n"
	if got := string(b.Bytes()); got != want {
		t.Errorf("stream = %q, want %q", got, want)
	}
	if err := b.Close(); err != nil {
		t.Errorf("close: %v", err)
	}
}

func TestNumberFormattingIsStable(t *testing.T) {
	cases := map[float64]string{
		0:       "0",
		1:       "1",
		-3:      "-3",
		0.5:     "0.5",
		12.25:   "12.25",
		1.0 / 3: "0.3333333333333333",
	}
	for in, want := range cases {
		if got := formatNumber(in); got != want {
			t.Errorf("formatNumber(%v) = %q, want %q", in, got, want)
		}
	}
}
