package layout

import (
	"testing"
)

func TestParseMarkdownStructure(t *testing.T) {
	src := "# Title\n\nSome *italic* and **bold** text.\n\n- first\n- second\n"
	base := Style{Family: "helvetica", SizePt: 12}
	blocks, err := ParseMarkdown(src, base)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(blocks) != 4 {
		t.Fatalf("got %d blocks, want 4: %+v", len(blocks), blocks)
	}

	h := blocks[0]
	if h.Kind != BlockHeading || h.Level != 1 || h.Text() != "Title" {
		t.Errorf("heading = %+v", h)
	}
	if st := h.Fragments[0].Style; !st.Bold || st.SizePt != 24 {
		t.Errorf("heading style = %+v", st)
	}

	p := blocks[1]
	if p.Kind != BlockParagraph || p.Text() != "Some italic and bold text." {
		t.Errorf("paragraph = %q", p.Text())
	}
	var sawItalic, sawBold bool
	for _, f := range p.Fragments {
		switch {
		case f.Style.Italic && f.String() == "italic":
			sawItalic = true
		case f.Style.Bold && f.String() == "bold":
			sawBold = true
		}
	}
	if !sawItalic || !sawBold {
		t.Errorf("emphasis lost: italic=%v bold=%v in %+v", sawItalic, sawBold, p.Fragments)
	}

	for i, want := range []string{"first", "second"} {
		li := blocks[2+i]
		if li.Kind != BlockListItem || li.Text() != want {
			t.Errorf("list item %d = %+v", i, li)
		}
	}
}

func TestParseMarkdownHeadingLevels(t *testing.T) {
	base := Style{SizePt: 10}
	blocks, err := ParseMarkdown("# a\n\n## b\n\n### c\n", base)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	wantSizes := []float64{20, 15, 12.5}
	for i, want := range wantSizes {
		if got := blocks[i].Fragments[0].Style.SizePt; got != want {
			t.Errorf("level %d size = %v, want %v", i+1, got, want)
		}
	}
}

func TestParseMarkdownSoftBreakBecomesSpace(t *testing.T) {
	blocks, err := ParseMarkdown("one\ntwo\n", Style{SizePt: 12})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(blocks) != 1 || blocks[0].Text() != "one two" {
		t.Errorf("blocks = %+v", blocks)
	}
}

func TestParseMarkdownNestedList(t *testing.T) {
	src := "- parent\n  - child one\n  - child two\n- sibling\n"
	blocks, err := ParseMarkdown(src, Style{SizePt: 12})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []string{"parent", "child one", "child two", "sibling"}
	if len(blocks) != len(want) {
		t.Fatalf("got %d blocks, want %d: %+v", len(blocks), len(want), blocks)
	}
	for i, w := range want {
		if blocks[i].Kind != BlockListItem || blocks[i].Text() != w {
			t.Errorf("block %d = kind %v text %q, want list item %q",
				i, blocks[i].Kind, blocks[i].Text(), w)
		}
	}
}

func TestParseMarkdownNestedEmphasis(t *testing.T) {
	blocks, err := ParseMarkdown("***both***\n", Style{SizePt: 12})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(blocks) != 1 {
		t.Fatalf("blocks = %+v", blocks)
	}
	st := blocks[0].Fragments[0].Style
	if !st.Bold || !st.Italic {
		t.Errorf("style = %+v, want bold italic", st)
	}
}
