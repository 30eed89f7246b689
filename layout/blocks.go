package layout

// BlockKind distinguishes the structural elements the converters emit.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockListItem
)

// Block is one flow element extracted from markdown or HTML: a heading, a
// paragraph or a bulleted list item, carrying its styled text runs.
type Block struct {
	Kind      BlockKind
	Level     int // heading level 1..6, zero otherwise
	Fragments []Fragment
}

func (b Block) Text() string {
	var s string
	for _, f := range b.Fragments {
		s += string(f.Chars)
	}
	return s
}

// appendRun adds text to the fragment list, extending the last fragment when
// the style matches so converters do not fracture runs at every inline node.
func appendRun(frags []Fragment, st Style, text string) []Fragment {
	if text == "" {
		return frags
	}
	if n := len(frags); n > 0 && frags[n-1].Style == st {
		frags[n-1].Chars = append(frags[n-1].Chars, []rune(text)...)
		return frags
	}
	return append(frags, Fragment{Style: st, Chars: []rune(text)})
}

// headingStyle scales the base style for a heading level the same way for
// both converters.
func headingStyle(base Style, level int) Style {
	st := base
	st.Bold = true
	switch {
	case level <= 1:
		st.SizePt = base.SizePt * 2.0
	case level == 2:
		st.SizePt = base.SizePt * 1.5
	default:
		st.SizePt = base.SizePt * 1.25
	}
	return st
}
