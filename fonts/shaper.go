package fonts

import (
	"bytes"
	"fmt"

	"github.com/go-text/typesetting/di"
	gofont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
)

// MeasureShaped measures text with a real shaping pass over the embedded
// font program. This picks up kerning and ligature substitutions the plain
// advance sum misses; the result is in 1/1000 em units. Layout uses plain
// advances for break decisions, so the two agree on unkerned text.
func (e *Embedded) MeasureShaped(text string) (float64, error) {
	face, err := gofont.ParseTTF(bytes.NewReader(e.data))
	if err != nil {
		return 0, fmt.Errorf("parse face for shaping: %w", err)
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return 0, nil
	}

	shaper := &shaping.HarfbuzzShaper{}
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      face,
		// 1000 units per em in 26.6 fixed point, so advances come back
		// directly in 1/1000 em units.
		Size:     fixed.Int26_6(1000 * 64),
		Script:   language.LookupScript(runes[0]),
		Language: language.DefaultLanguage(),
	}
	output := shaper.Shape(input)

	var total float64
	for _, g := range output.Glyphs {
		total += float64(g.XAdvance) / 64
	}
	return total, nil
}
