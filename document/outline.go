package document

import (
	"fmt"

	"github.com/docfold/pdfgen/graph"
)

// Outline is a bookmark entry. Top is the page-space y coordinate the viewer
// scrolls to; zero jumps to the page as-is.
type Outline struct {
	Title     string
	PageIndex int
	Top       float64
	Children  []Outline
}

func (o Outline) descendants() int {
	n := len(o.Children)
	for _, c := range o.Children {
		n += c.descendants()
	}
	return n
}

// assembleOutlines lowers the bookmark tree into linked outline item
// dictionaries and returns the reference of the outline root.
func (d *Document) assembleOutlines(g *graph.Graph, pageRefs []graph.ObjectRef) (graph.ObjectRef, error) {
	rootRef, err := g.Allocate()
	if err != nil {
		return graph.ObjectRef{}, err
	}
	first, last, err := d.assembleOutlineLevel(g, d.outlines, rootRef, pageRefs)
	if err != nil {
		return graph.ObjectRef{}, err
	}

	total := 0
	for _, o := range d.outlines {
		total += 1 + o.descendants()
	}
	root := graph.NewDict()
	root.Set("Type", graph.NameOf("Outlines"))
	root.Set("First", graph.RefTo(first))
	root.Set("Last", graph.RefTo(last))
	root.Set("Count", graph.Int(int64(total)))
	if err := g.Set(rootRef, root); err != nil {
		return graph.ObjectRef{}, err
	}
	return rootRef, nil
}

// assembleOutlineLevel registers one sibling chain and returns the first and
// last references for the parent's /First and /Last entries.
func (d *Document) assembleOutlineLevel(g *graph.Graph, items []Outline, parent graph.ObjectRef, pageRefs []graph.ObjectRef) (first, last graph.ObjectRef, err error) {
	refs := make([]graph.ObjectRef, len(items))
	for i := range items {
		if refs[i], err = g.Allocate(); err != nil {
			return graph.ObjectRef{}, graph.ObjectRef{}, err
		}
	}
	for i, item := range items {
		if item.PageIndex < 0 || item.PageIndex >= len(pageRefs) {
			return graph.ObjectRef{}, graph.ObjectRef{}, fmt.Errorf("outline %q targets page %d of %d", item.Title, item.PageIndex, len(pageRefs))
		}
		dict := graph.NewDict()
		dict.Set("Title", graph.Text(string(encodeWinAnsi(item.Title))))
		dict.Set("Parent", graph.RefTo(parent))
		dict.Set("Dest", destArray(pageRefs[item.PageIndex], item.Top))
		if i > 0 {
			dict.Set("Prev", graph.RefTo(refs[i-1]))
		}
		if i < len(items)-1 {
			dict.Set("Next", graph.RefTo(refs[i+1]))
		}
		if len(item.Children) > 0 {
			cFirst, cLast, err := d.assembleOutlineLevel(g, item.Children, refs[i], pageRefs)
			if err != nil {
				return graph.ObjectRef{}, graph.ObjectRef{}, err
			}
			dict.Set("First", graph.RefTo(cFirst))
			dict.Set("Last", graph.RefTo(cLast))
			dict.Set("Count", graph.Int(int64(item.descendants())))
		}
		if err := g.Set(refs[i], dict); err != nil {
			return graph.ObjectRef{}, graph.ObjectRef{}, err
		}
	}
	return refs[0], refs[len(refs)-1], nil
}

// destArray builds an explicit /XYZ destination keeping the current x
// position and zoom.
func destArray(page graph.ObjectRef, top float64) *graph.Array {
	return graph.NewArray(
		graph.RefTo(page),
		graph.NameOf("XYZ"),
		graph.Null{},
		graph.Float(top),
		graph.Null{},
	)
}
