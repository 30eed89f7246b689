package layout

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ParseMarkdown converts a markdown document into flow blocks using goldmark.
// Emphasis maps onto the style flags: *text* renders italic, **text** bold.
// Code spans and any unrecognized inline nodes contribute their plain text.
func ParseMarkdown(source string, base Style) ([]Block, error) {
	md := goldmark.New()
	src := []byte(source)
	doc := md.Parser().Parse(text.NewReader(src))

	var blocks []Block
	collectMarkdownBlocks(doc, src, base, &blocks)
	return blocks, nil
}

func collectMarkdownBlocks(node ast.Node, src []byte, base Style, out *[]Block) {
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch n := child.(type) {
		case *ast.Heading:
			st := headingStyle(base, n.Level)
			*out = append(*out, Block{
				Kind:      BlockHeading,
				Level:     n.Level,
				Fragments: markdownInline(n, src, st, nil),
			})
		case *ast.Paragraph:
			*out = append(*out, Block{
				Kind:      BlockParagraph,
				Fragments: markdownInline(n, src, base, nil),
			})
		case *ast.List:
			collectMarkdownBlocks(n, src, base, out)
		case *ast.ListItem:
			var frags []Fragment
			var sublists []*ast.List
			for c := n.FirstChild(); c != nil; c = c.NextSibling() {
				if list, ok := c.(*ast.List); ok {
					sublists = append(sublists, list)
					continue
				}
				frags = markdownInline(c, src, base, frags)
			}
			*out = append(*out, Block{Kind: BlockListItem, Fragments: frags})
			// Nested lists become their own items after the parent item.
			for _, list := range sublists {
				collectMarkdownBlocks(list, src, base, out)
			}
		case *ast.TextBlock:
			*out = append(*out, Block{
				Kind:      BlockParagraph,
				Fragments: markdownInline(n, src, base, nil),
			})
		}
	}
}

// markdownInline flattens the inline children of a block node into styled
// fragments. Nested emphasis combines, so ***text*** is bold italic.
func markdownInline(node ast.Node, src []byte, st Style, frags []Fragment) []Fragment {
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch n := child.(type) {
		case *ast.Text:
			frags = appendRun(frags, st, string(n.Segment.Value(src)))
			if n.SoftLineBreak() || n.HardLineBreak() {
				frags = appendRun(frags, st, " ")
			}
		case *ast.Emphasis:
			inner := st
			if n.Level >= 2 {
				inner.Bold = true
			} else {
				inner.Italic = true
			}
			frags = markdownInline(n, src, inner, frags)
		case *ast.CodeSpan:
			frags = appendRun(frags, st, string(n.Text(src)))
		default:
			if child.HasChildren() {
				frags = markdownInline(child, src, st, frags)
			} else {
				frags = appendRun(frags, st, string(child.Text(src)))
			}
		}
	}
	return frags
}
