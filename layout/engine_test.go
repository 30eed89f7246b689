package layout

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/docfold/pdfgen/document"
)

func renderAndOutput(t *testing.T, e *Engine, d *document.Document) []byte {
	t.Helper()
	out, err := d.Output(context.Background())
	if err != nil {
		t.Fatalf("output: %v", err)
	}
	return out
}

func TestEngineRendersMarkdown(t *testing.T) {
	d := document.New(document.WithoutCompression())
	e := NewEngine(d)
	src := "# Title\n\nBody text with **bold** words.\n\n- item one\n- item two\n"
	if err := e.RenderMarkdown(src); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := renderAndOutput(t, e, d)
	for _, want := range []string{
		"(Title) Tj",
		"(bold)",
		"/Helvetica-Bold",
		"(item one)",
	} {
		if !bytes.Contains(out, []byte(want)) {
			t.Errorf("output missing %q", want)
		}
	}
	// Bullets render as the code-page bullet glyph.
	if !bytes.Contains(out, []byte{'(', 0x95, ')'}) {
		t.Error("no bullet drawn for list items")
	}
}

func TestEngineRendersHTML(t *testing.T) {
	d := document.New(document.WithoutCompression())
	e := NewEngine(d)
	if err := e.RenderHTML("<h1>Head</h1><p>A <i>slanted</i> word.</p>"); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := renderAndOutput(t, e, d)
	for _, want := range []string{"(Head) Tj", "(slanted)", "/Helvetica-Oblique"} {
		if !bytes.Contains(out, []byte(want)) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestEngineBreaksPages(t *testing.T) {
	d := document.New(
		document.WithoutCompression(),
		document.WithPaperSize(document.PaperSize{Width: 300, Height: 120}),
	)
	e := NewEngine(d, WithMargins(Margins{Top: 20, Bottom: 20, Left: 20, Right: 20}))
	var src strings.Builder
	for i := 0; i < 12; i++ {
		src.WriteString("A paragraph that occupies vertical space on the page.\n\n")
	}
	if err := e.RenderMarkdown(src.String()); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := renderAndOutput(t, e, d)
	if got := bytes.Count(out, []byte("/Type /Page>>")); got < 2 {
		t.Errorf("page count = %d, want at least 2", got)
	}
}

func TestEngineJustifiesParagraphs(t *testing.T) {
	d := document.New(document.WithoutCompression())
	e := NewEngine(d, WithJustify())
	text := strings.Repeat("several words that will certainly wrap across lines ", 6)
	if err := e.RenderText(strings.TrimSpace(text)); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := renderAndOutput(t, e, d)
	if !bytes.Contains(out, []byte(" Tw\n")) {
		t.Error("no word spacing emitted for justified lines")
	}
}

func TestListBulletStaysWithFirstLine(t *testing.T) {
	d := document.New(document.WithoutCompression())
	e := NewEngine(d)
	if err := e.ensurePage(); err != nil {
		t.Fatalf("page: %v", err)
	}
	// Room for a default-size line above the bottom margin, but not for a
	// 40pt one.
	e.cursorY = e.Margins.Bottom + 20

	item := Block{Kind: BlockListItem, Fragments: []Fragment{
		{Style: Style{SizePt: 40}, Chars: []rune("tall")},
	}}
	if err := e.renderBlock(item); err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := d.PageCount(); got != 2 {
		t.Fatalf("page count = %d, want 2", got)
	}
	bullet := []byte{'(', 0x95, ')'}
	if bytes.Contains(d.Page(0).Content().Bytes(), bullet) {
		t.Error("bullet stranded on the first page")
	}
	second := d.Page(1).Content().Bytes()
	if !bytes.Contains(second, bullet) || !bytes.Contains(second, []byte("(tall) Tj")) {
		t.Error("bullet and first line not together on the new page")
	}
}

// runMetrics measures every rune at a fixed advance and, unless err is set,
// shapes whole runs at a different per-rune width so the two paths are
// distinguishable.
type runMetrics struct {
	advance float64
	shaped  float64
	err     error
}

func (m runMetrics) BaseName() string       { return "Run" }
func (m runMetrics) Advance(r rune) float64 { return m.advance }
func (m runMetrics) MeasureShaped(text string) (float64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.shaped * float64(len([]rune(text))), nil
}

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestFragmentWidthPrefersShapedMeasurement(t *testing.T) {
	frag := Fragment{Style: Style{SizePt: 10}, Chars: []rune("ab")}
	m := runMetrics{advance: 1000, shaped: 450}
	// 2 runes at 450/1000 em each at 10pt.
	if got := fragmentRunWidth(m, frag, 0); !almostEqual(got, 9) {
		t.Errorf("width = %v, want shaped 9", got)
	}
}

func TestFragmentWidthFallsBackToAdvances(t *testing.T) {
	frag := Fragment{Style: Style{SizePt: 10}, Chars: []rune("ab")}
	m := runMetrics{advance: 500, shaped: 450, err: errors.New("no shaper")}
	if got := fragmentRunWidth(m, frag, 0); !almostEqual(got, 10) {
		t.Errorf("width = %v, want advance sum 10", got)
	}
}

func TestFragmentWidthScalesSpacingWithStretching(t *testing.T) {
	frag := Fragment{Style: Style{SizePt: 10, Stretching: 50}, Chars: []rune("a b")}
	m := runMetrics{advance: 500, err: errors.New("no shaper")}
	// Glyphs: 3 * 500/1000 * 10pt * 0.5 = 7.5. The justification spacing
	// scales by the same factor the viewer applies, so 10 * 0.5 = 5.
	if got := fragmentRunWidth(m, frag, 10); !almostEqual(got, 12.5) {
		t.Errorf("width = %v, want 12.5", got)
	}
}

func TestEngineSharesFontAcrossBlocks(t *testing.T) {
	d := document.New()
	e := NewEngine(d)
	if err := e.RenderText("first"); err != nil {
		t.Fatalf("render: %v", err)
	}
	if err := e.RenderText("second"); err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := len(d.Resources().Fonts()); got != 1 {
		t.Errorf("registered fonts = %d, want 1", got)
	}
}
