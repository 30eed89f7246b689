package layout

import "errors"

// ErrNoHorizontalSpace is returned when the maximum width cannot fit even a
// single character, which would otherwise loop forever emitting empty lines.
var ErrNoHorizontalSpace = errors.New("not enough horizontal space to render a single character")

// breakHint remembers a position the current line can retroactively break
// at: the last space, or the last soft hyphen (which renders as a visible
// hyphen when used).
type breakHint struct {
	fragmentIndex  int // position in the source fragment sequence
	characterIndex int
	lineFragments  int // length of the line's fragment slice at hint time
	lineChars      int // length of the active fragment at hint time
	width          float64
	spaceCount     int
	// set for soft-hyphen hints only
	hyphenStyle Style
	hyphenWidth float64
	isHyphen    bool
}

// currentLine accumulates characters until the breaker decides to cut.
type currentLine struct {
	printSoftHyphens bool
	fragments        []Fragment
	width            float64
	spaceCount       int
	spaceHint        *breakHint
	hyphenHint       *breakHint
}

func (cl *currentLine) add(r rune, width float64, st Style, fragIdx, charIdx int) {
	if len(cl.fragments) == 0 || cl.fragments[len(cl.fragments)-1].Style != st {
		cl.fragments = append(cl.fragments, Fragment{Style: st})
	}
	active := &cl.fragments[len(cl.fragments)-1]

	switch {
	case r == space:
		cl.spaceHint = &breakHint{
			fragmentIndex:  fragIdx,
			characterIndex: charIdx,
			lineFragments:  len(cl.fragments),
			lineChars:      len(active.Chars),
			width:          cl.width,
			spaceCount:     cl.spaceCount,
		}
		cl.spaceCount++
	case r == softHyphen && !cl.printSoftHyphens:
		cl.hyphenHint = &breakHint{
			fragmentIndex:  fragIdx,
			characterIndex: charIdx,
			lineFragments:  len(cl.fragments),
			lineChars:      len(active.Chars),
			width:          cl.width,
			spaceCount:     cl.spaceCount,
			hyphenStyle:    st,
			hyphenWidth:    width,
			isHyphen:       true,
		}
	}

	if r != softHyphen || cl.printSoftHyphens {
		cl.width += width
		active.Chars = append(active.Chars, r)
	}
}

// rewind drops everything added after the hint was recorded.
func (cl *currentLine) rewind(h *breakHint) {
	cl.fragments = cl.fragments[:h.lineFragments]
	if len(cl.fragments) > 0 {
		last := &cl.fragments[len(cl.fragments)-1]
		last.Chars = last.Chars[:h.lineChars]
	}
	cl.width = h.width
	cl.spaceCount = h.spaceCount
}

func (cl *currentLine) manualBreak(justify, trailingNL bool) TextLine {
	return TextLine{
		Fragments:  cl.fragments,
		Width:      cl.width,
		SpaceCount: cl.spaceCount,
		Justify:    justify && cl.spaceCount > 0,
		TrailingNL: trailingNL,
	}
}

func (cl *currentLine) canAutoBreak() bool {
	return cl.spaceHint != nil || cl.hyphenHint != nil
}

// autoBreak rewinds to the best earlier break opportunity and returns the
// finished line plus the source position to resume from. Between a space and
// a soft hyphen the wider (rightmost) hint wins.
func (cl *currentLine) autoBreak(justify bool) (fragIdx, charIdx int, line TextLine) {
	if cl.hyphenHint != nil && (cl.spaceHint == nil || cl.hyphenHint.width > cl.spaceHint.width) {
		h := cl.hyphenHint
		cl.rewind(h)
		// The suppressed soft hyphen becomes a visible hyphen at the break.
		cl.add(hyphen, h.hyphenWidth, h.hyphenStyle, h.fragmentIndex, h.characterIndex)
		return h.fragmentIndex, h.characterIndex, cl.manualBreak(justify, false)
	}
	h := cl.spaceHint
	cl.rewind(h)
	return h.fragmentIndex, h.characterIndex, cl.manualBreak(justify, false)
}

// MultiLineBreak consumes a styled fragment sequence and produces lines of
// bounded width one at a time.
type MultiLineBreak struct {
	fragments []Fragment
	measure   Measurer
	justify   bool
	// PrintSoftHyphens renders soft hyphens as normal characters instead of
	// treating them as break opportunities.
	printSoftHyphens bool

	fragmentIndex   int
	characterIndex  int
	lastForcedBreak int // character index of the previous force-break, -1 otherwise
}

// Option configures a MultiLineBreak.
type Option func(*MultiLineBreak)

// WithJustifiedLines marks produced lines for justification (except ones
// ended by an explicit newline or at the end of input).
func WithJustifiedLines() Option {
	return func(m *MultiLineBreak) { m.justify = true }
}

// WithPrintedSoftHyphens disables soft-hyphen break handling.
func WithPrintedSoftHyphens() Option {
	return func(m *MultiLineBreak) { m.printSoftHyphens = true }
}

func NewMultiLineBreak(fragments []Fragment, measure Measurer, opts ...Option) *MultiLineBreak {
	m := &MultiLineBreak{fragments: fragments, measure: measure, lastForcedBreak: -1}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MultiLineBreak) charWidth(r rune, st Style) float64 {
	if r == softHyphen && !m.printSoftHyphens {
		// Measured as the hyphen that would appear at a break.
		r = hyphen
	}
	w := m.measure(r, st)
	if st.Stretching != 0 {
		w = w * st.Stretching / 100
	}
	return w
}

// Line returns the next line fitting maxWidth, or ok=false when the input
// is exhausted. A single token wider than maxWidth is force-broken at the
// boundary.
func (m *MultiLineBreak) Line(maxWidth float64) (TextLine, bool, error) {
	lastForced := m.lastForcedBreak
	m.lastForcedBreak = -1

	if m.fragmentIndex >= len(m.fragments) {
		return TextLine{}, false, nil
	}

	cl := &currentLine{printSoftHyphens: m.printSoftHyphens}
	for m.fragmentIndex < len(m.fragments) {
		fragment := m.fragments[m.fragmentIndex]
		if m.characterIndex >= len(fragment.Chars) {
			m.characterIndex = 0
			m.fragmentIndex++
			continue
		}

		r := fragment.Chars[m.characterIndex]
		if r == newline {
			m.characterIndex++
			return cl.manualBreak(false, true), true, nil
		}
		width := m.charWidth(r, fragment.Style)

		if cl.width+width > maxWidth {
			if r == space {
				// The overflowing space is swallowed by the break.
				m.characterIndex++
				return cl.manualBreak(m.justify, false), true, nil
			}
			if cl.canAutoBreak() {
				fragIdx, charIdx, line := cl.autoBreak(m.justify)
				m.fragmentIndex = fragIdx
				m.characterIndex = charIdx + 1
				return line, true, nil
			}
			// No break opportunity on this line: force-break the token at
			// the width boundary.
			if lastForced == m.characterIndex {
				return TextLine{}, false, ErrNoHorizontalSpace
			}
			m.lastForcedBreak = m.characterIndex
			return cl.manualBreak(false, false), true, nil
		}

		cl.add(r, width, fragment.Style, m.fragmentIndex, m.characterIndex)
		m.characterIndex++
	}

	if cl.width > 0 {
		return cl.manualBreak(false, false), true, nil
	}
	return TextLine{}, false, nil
}

// Lines runs the breaker to exhaustion with a fixed width.
func (m *MultiLineBreak) Lines(maxWidth float64) ([]TextLine, error) {
	var lines []TextLine
	for {
		line, ok, err := m.Line(maxWidth)
		if err != nil {
			return nil, err
		}
		if !ok {
			return lines, nil
		}
		lines = append(lines, line)
	}
}
