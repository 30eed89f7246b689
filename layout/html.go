package layout

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseHTML converts an HTML document into flow blocks. Recognized block
// elements are h1..h6, p and li; b/strong, i/em and u set the style flags on
// the text they wrap. Everything else is traversed transparently, except
// script and style elements which are skipped.
func ParseHTML(source string, base Style) ([]Block, error) {
	doc, err := html.Parse(strings.NewReader(source))
	if err != nil {
		return nil, err
	}
	var blocks []Block
	collectHTMLBlocks(doc, base, &blocks)
	return blocks, nil
}

func collectHTMLBlocks(n *html.Node, base Style, out *[]Block) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Head:
			return
		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			level := int(n.Data[1] - '0')
			frags := trimFragments(htmlInline(n, headingStyle(base, level), nil))
			*out = append(*out, Block{Kind: BlockHeading, Level: level, Fragments: frags})
			return
		case atom.P:
			frags := trimFragments(htmlInline(n, base, nil))
			if len(frags) > 0 {
				*out = append(*out, Block{Kind: BlockParagraph, Fragments: frags})
			}
			return
		case atom.Li:
			frags := trimFragments(htmlInline(n, base, nil))
			*out = append(*out, Block{Kind: BlockListItem, Fragments: frags})
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectHTMLBlocks(c, base, out)
	}
}

func htmlInline(n *html.Node, st Style, frags []Fragment) []Fragment {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			frags = appendRun(frags, st, collapseSpace(c.Data))
		case html.ElementNode:
			inner := st
			switch c.DataAtom {
			case atom.B, atom.Strong:
				inner.Bold = true
			case atom.I, atom.Em:
				inner.Italic = true
			case atom.U:
				inner.Underline = true
			case atom.Br:
				frags = appendRun(frags, st, "\n")
				continue
			case atom.Script, atom.Style:
				continue
			}
			frags = htmlInline(c, inner, frags)
		}
	}
	return frags
}

// collapseSpace folds runs of HTML whitespace into single spaces without
// trimming, so word boundaries across inline elements survive.
func collapseSpace(s string) string {
	var b strings.Builder
	inSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			if !inSpace {
				b.WriteByte(' ')
				inSpace = true
			}
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// trimFragments strips leading and trailing whitespace from a block's runs.
func trimFragments(frags []Fragment) []Fragment {
	for len(frags) > 0 {
		first := &frags[0]
		for len(first.Chars) > 0 && first.Chars[0] == space {
			first.Chars = first.Chars[1:]
		}
		if len(first.Chars) == 0 {
			frags = frags[1:]
			continue
		}
		break
	}
	for len(frags) > 0 {
		last := &frags[len(frags)-1]
		for n := len(last.Chars); n > 0 && last.Chars[n-1] == space; n = len(last.Chars) {
			last.Chars = last.Chars[:n-1]
		}
		if len(last.Chars) == 0 {
			frags = frags[:len(frags)-1]
			continue
		}
		break
	}
	return frags
}
