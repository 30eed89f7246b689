// Package fonts supplies font metrics to the layout and document layers.
// Core (non-embedded) fonts use the standard AFM width tables; embedded
// TrueType fonts are measured from their glyf/hmtx data. The package never
// parses container formats beyond what metric extraction needs.
package fonts

import (
	"fmt"
	"strings"
)

// Metrics reports glyph advance widths in 1/1000 em units.
type Metrics interface {
	// BaseName is the PostScript name written as /BaseFont.
	BaseName() string
	// Advance returns the width of r. Unknown runes report the font's
	// missing width.
	Advance(r rune) float64
}

// RunMeasurer is implemented by metrics that can measure a whole run with a
// shaping pass, picking up the kerning that per-rune advances miss. The
// result is in 1/1000 em units, like Advance.
type RunMeasurer interface {
	MeasureShaped(text string) (float64, error)
}

// Descriptor carries the numbers written into a /FontDescriptor dictionary.
type Descriptor struct {
	FontName     string
	Flags        int
	ItalicAngle  float64
	Ascent       float64
	Descent      float64
	CapHeight    float64
	StemV        float64
	FontBBox     [4]float64
	MissingWidth float64
}

// Core is one of the built-in fonts every PDF viewer provides. Widths index
// by rune; no font program is embedded.
type Core struct {
	base         string
	widths       map[rune]float64
	missingWidth float64
}

func (c *Core) BaseName() string { return c.base }

func (c *Core) Advance(r rune) float64 {
	if r == softHyphen {
		r = '-'
	}
	if w, ok := c.widths[r]; ok {
		return w
	}
	return c.missingWidth
}

const softHyphen = '­'

// LoadCore resolves a core font by family and style. Family matching is
// case-insensitive; "helvetica", "courier" and "times" are recognized.
func LoadCore(family string, bold, italic bool) (*Core, error) {
	switch strings.ToLower(family) {
	case "helvetica", "arial", "":
		if bold {
			return &Core{base: styledName("Helvetica-Bold", "Helvetica-BoldOblique", italic), widths: helveticaBoldWidths, missingWidth: 556}, nil
		}
		return &Core{base: styledName("Helvetica", "Helvetica-Oblique", italic), widths: helveticaWidths, missingWidth: 556}, nil
	case "courier":
		name := "Courier"
		switch {
		case bold && italic:
			name = "Courier-BoldOblique"
		case bold:
			name = "Courier-Bold"
		case italic:
			name = "Courier-Oblique"
		}
		return &Core{base: name, widths: nil, missingWidth: 600}, nil
	case "times", "times-roman":
		if bold {
			return &Core{base: styledName("Times-Bold", "Times-BoldItalic", italic), widths: timesBoldWidths, missingWidth: 500}, nil
		}
		if italic {
			// Italic advance widths approximated with the roman table;
			// the italic AFM differs by a few units per glyph.
			return &Core{base: "Times-Italic", widths: timesRomanWidths, missingWidth: 500}, nil
		}
		return &Core{base: "Times-Roman", widths: timesRomanWidths, missingWidth: 500}, nil
	}
	return nil, fmt.Errorf("unknown core font family %q", family)
}

func styledName(upright, slanted string, italic bool) string {
	if italic {
		return slanted
	}
	return upright
}
