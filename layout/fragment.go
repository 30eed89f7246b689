// Package layout breaks styled text into lines and renders structured
// content (paragraphs, markdown, HTML) onto document pages. The line breaker
// is greedy: characters accumulate until the next one would overflow the
// limit, then the line breaks at the last space or soft hyphen seen, or
// force-breaks mid-word when there is no earlier opportunity.
package layout

// Style identifies the face a run of text is rendered with. Width accounting
// in the breaker is continuous across style changes; a bold word in the
// middle of a sentence does not reset the line width.
type Style struct {
	Family     string
	Bold       bool
	Italic     bool
	Underline  bool
	SizePt     float64
	Stretching float64 // horizontal scaling percentage; 0 means 100
}

// Fragment is a run of characters sharing one style.
type Fragment struct {
	Style Style
	Chars []rune
}

func (f Fragment) String() string { return string(f.Chars) }

// TextLine is one laid-out line produced by the breaker.
type TextLine struct {
	Fragments  []Fragment
	Width      float64
	SpaceCount int
	Justify    bool
	TrailingNL bool
}

func (l TextLine) String() string {
	var s string
	for _, f := range l.Fragments {
		s += string(f.Chars)
	}
	return s
}

// Measurer returns the advance width of r rendered in st, in points.
type Measurer func(r rune, st Style) float64

// Styled builds a single-style fragment list from a string.
func Styled(text string, st Style) []Fragment {
	return []Fragment{{Style: st, Chars: []rune(text)}}
}

const (
	softHyphen = '­'
	hyphen     = '-'
	space      = ' '
	newline    = '\n'
)
