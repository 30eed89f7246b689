package fonts

import (
	"fmt"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// Embedded is a TrueType/OpenType font whose program is embedded in the
// document. Metrics are read from the font tables and cached per rune.
type Embedded struct {
	base       string
	data       []byte
	desc       Descriptor
	font       *sfnt.Font
	buf        sfnt.Buffer
	unitsPerEm int
	widths     map[rune]float64
}

// LoadTrueType parses a TrueType/OpenType font and extracts the metrics
// needed for layout and for the /FontDescriptor. The full font program is
// kept for embedding; no subsetting is performed.
func LoadTrueType(name string, data []byte) (*Embedded, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("truetype font data is empty")
	}
	font, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse truetype: %w", err)
	}
	unitsPerEm := int(font.UnitsPerEm())
	if unitsPerEm == 0 {
		return nil, fmt.Errorf("truetype font reports zero unitsPerEm")
	}

	e := &Embedded{
		base:       name,
		data:       data,
		font:       font,
		unitsPerEm: unitsPerEm,
		widths:     make(map[rune]float64),
	}
	ppem := fixed.Int26_6(unitsPerEm << 6)
	if ps, _ := font.Name(&e.buf, sfnt.NameIDPostScript); ps != "" {
		e.base = ps
	}
	if e.base == "" {
		e.base = "Embedded"
	}

	metrics, err := font.Metrics(&e.buf, ppem, xfont.HintingNone)
	if err != nil {
		return nil, fmt.Errorf("read font metrics: %w", err)
	}
	bounds, err := font.Bounds(&e.buf, ppem, xfont.HintingNone)
	if err != nil {
		return nil, fmt.Errorf("read font bounds: %w", err)
	}
	e.desc = Descriptor{
		FontName:     e.base,
		Flags:        4, // non-symbolic
		Ascent:       e.scale(metrics.Ascent),
		Descent:      -e.scale(metrics.Descent),
		CapHeight:    e.scale(metrics.CapHeight),
		StemV:        80,
		MissingWidth: 500,
		FontBBox: [4]float64{
			e.scale(bounds.Min.X),
			e.scale(bounds.Min.Y),
			e.scale(bounds.Max.X),
			e.scale(bounds.Max.Y),
		},
	}
	return e, nil
}

func (e *Embedded) BaseName() string { return e.base }

// Program returns the raw font file bytes for the /FontFile2 stream.
func (e *Embedded) Program() []byte { return e.data }

// Describe returns the descriptor numbers for this face.
func (e *Embedded) Describe() Descriptor { return e.desc }

// Advance returns the advance width of r in 1/1000 em units.
func (e *Embedded) Advance(r rune) float64 {
	if r == softHyphen {
		r = '-'
	}
	if w, ok := e.widths[r]; ok {
		return w
	}
	w := e.lookupAdvance(r)
	e.widths[r] = w
	return w
}

func (e *Embedded) lookupAdvance(r rune) float64 {
	gi, err := e.font.GlyphIndex(&e.buf, r)
	if err != nil || gi == 0 {
		return e.desc.MissingWidth
	}
	ppem := fixed.Int26_6(e.unitsPerEm << 6)
	adv, err := e.font.GlyphAdvance(&e.buf, gi, ppem, xfont.HintingNone)
	if err != nil {
		return e.desc.MissingWidth
	}
	return e.scale(adv)
}

// scale converts a metric at unitsPerEm pixels-per-em into 1/1000 em units.
func (e *Embedded) scale(v fixed.Int26_6) float64 {
	return float64(v) / 64 * 1000 / float64(e.unitsPerEm)
}
