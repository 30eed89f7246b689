package document

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/docfold/pdfgen/filters"
	"github.com/docfold/pdfgen/graph"
	"github.com/docfold/pdfgen/observability"
	"github.com/docfold/pdfgen/resources"
	"github.com/docfold/pdfgen/writer"
)

// Finalize lowers the accumulated pages and resources into the object graph.
// It runs at most once; later calls return nil without touching anything, so
// Output can be called repeatedly. Object numbers are assigned in a fixed
// order (fonts, images, page contents and pages, document structure), which
// together with the sorted-key serializer keeps the output byte-stable.
func (d *Document) Finalize(ctx context.Context) error {
	if d.finalized {
		return nil
	}
	for i, p := range d.pages {
		if err := p.content.Close(); err != nil {
			return fmt.Errorf("page %d: %w", i+1, err)
		}
	}

	g := graph.New()
	if err := g.Advance(graph.StateFinalizing); err != nil {
		return err
	}

	pagesRef, err := g.Allocate()
	if err != nil {
		return err
	}
	pageRefs := make([]graph.ObjectRef, len(d.pages))
	for i := range d.pages {
		if pageRefs[i], err = g.Allocate(); err != nil {
			return err
		}
	}

	fontRefs, err := d.assembleFonts(ctx, g)
	if err != nil {
		return err
	}
	imageRefs, err := d.assembleImages(g)
	if err != nil {
		return err
	}

	for i, p := range d.pages {
		dict, err := d.assemblePage(ctx, g, p, pagesRef, pageRefs, fontRefs, imageRefs)
		if err != nil {
			return fmt.Errorf("page %d: %w", i+1, err)
		}
		if err := g.Set(pageRefs[i], dict); err != nil {
			return err
		}
	}

	kids := graph.NewArray()
	for _, ref := range pageRefs {
		kids.Append(graph.RefTo(ref))
	}
	pages := graph.NewDict()
	pages.Set("Type", graph.NameOf("Pages"))
	pages.Set("Kids", kids)
	pages.Set("Count", graph.Int(int64(len(pageRefs))))
	if err := g.Set(pagesRef, pages); err != nil {
		return err
	}

	catalog := graph.NewDict()
	catalog.Set("Type", graph.NameOf("Catalog"))
	catalog.Set("Pages", graph.RefTo(pagesRef))
	if d.lang != "" {
		catalog.Set("Lang", graph.Text(d.lang))
	}
	if len(d.outlines) > 0 {
		outRef, err := d.assembleOutlines(g, pageRefs)
		if err != nil {
			return err
		}
		catalog.Set("Outlines", graph.RefTo(outRef))
		catalog.Set("PageMode", graph.NameOf("UseOutlines"))
	}
	if len(d.labels) > 0 {
		catalog.Set("PageLabels", d.assemblePageLabels())
	}
	if len(d.metadata) > 0 {
		// The packet stays uncompressed so metadata scanners can read it
		// without inflating the stream.
		meta := graph.NewDict()
		meta.Set("Type", graph.NameOf("Metadata"))
		meta.Set("Subtype", graph.NameOf("XML"))
		metaRef, err := g.Register(graph.NewStream(meta, d.metadata))
		if err != nil {
			return err
		}
		catalog.Set("Metadata", graph.RefTo(metaRef))
	}

	var tr writer.Trailer
	if !d.info.empty() {
		infoRef, err := g.Register(d.assembleInfo())
		if err != nil {
			return err
		}
		tr.Info = &infoRef
	}
	if tr.Root, err = g.Register(catalog); err != nil {
		return err
	}

	d.g = g
	d.tr = tr
	d.finalized = true
	d.log.Info("document finalized",
		observability.Int(observability.MetricPageCount, len(d.pages)),
		observability.Int(observability.MetricObjectCount, g.Len()),
		observability.Int(observability.MetricResourceCount, len(d.res.Fonts())+len(d.res.Images())))
	return nil
}

// assembleFonts registers one font dictionary per resource and returns the
// references keyed by resource name.
func (d *Document) assembleFonts(ctx context.Context, g *graph.Graph) (map[string]graph.ObjectRef, error) {
	refs := make(map[string]graph.ObjectRef, len(d.res.Fonts()))
	for _, f := range d.res.Fonts() {
		dict := graph.NewDict()
		dict.Set("Type", graph.NameOf("Font"))
		dict.Set("BaseFont", graph.NameOf(f.Metrics.BaseName()))
		dict.Set("Encoding", graph.NameOf("WinAnsiEncoding"))
		if f.Embedded == nil {
			dict.Set("Subtype", graph.NameOf("Type1"))
		} else {
			descRef, err := d.assembleFontDescriptor(ctx, g, f)
			if err != nil {
				return nil, err
			}
			dict.Set("Subtype", graph.NameOf("TrueType"))
			dict.Set("FirstChar", graph.Int(32))
			dict.Set("LastChar", graph.Int(255))
			dict.Set("Widths", simpleFontWidths(f))
			dict.Set("FontDescriptor", graph.RefTo(descRef))
		}
		ref, err := g.Register(dict)
		if err != nil {
			return nil, err
		}
		refs[f.Ref.Name] = ref
	}
	return refs, nil
}

func (d *Document) assembleFontDescriptor(ctx context.Context, g *graph.Graph, f *resources.FontResource) (graph.ObjectRef, error) {
	program := f.Embedded.Program()
	stream := graph.NewDict()
	stream.Set("Length1", graph.Int(int64(len(program))))
	if d.compress {
		compressed, err := d.codecs.Encode(ctx, filters.Flate, program)
		if err != nil {
			return graph.ObjectRef{}, err
		}
		stream.Set("Filter", graph.NameOf(string(filters.Flate)))
		program = compressed
	}
	fileRef, err := g.Register(graph.NewStream(stream, program))
	if err != nil {
		return graph.ObjectRef{}, err
	}

	desc := f.Embedded.Describe()
	dict := graph.NewDict()
	dict.Set("Type", graph.NameOf("FontDescriptor"))
	dict.Set("FontName", graph.NameOf(desc.FontName))
	dict.Set("Flags", graph.Int(int64(desc.Flags)))
	dict.Set("FontBBox", graph.NewArray(
		graph.Float(desc.FontBBox[0]), graph.Float(desc.FontBBox[1]),
		graph.Float(desc.FontBBox[2]), graph.Float(desc.FontBBox[3])))
	dict.Set("ItalicAngle", graph.Float(desc.ItalicAngle))
	dict.Set("Ascent", graph.Float(desc.Ascent))
	dict.Set("Descent", graph.Float(desc.Descent))
	dict.Set("CapHeight", graph.Float(desc.CapHeight))
	dict.Set("StemV", graph.Float(desc.StemV))
	dict.Set("MissingWidth", graph.Float(desc.MissingWidth))
	dict.Set("FontFile2", graph.RefTo(fileRef))
	return g.Register(dict)
}

// simpleFontWidths builds the /Widths array for codes 32..255, mapping each
// code-page byte back to its rune before measuring.
func simpleFontWidths(f *resources.FontResource) *graph.Array {
	widths := graph.NewArray()
	for code := 32; code <= 255; code++ {
		w := f.Metrics.Advance(winAnsiRune(byte(code)))
		widths.Append(graph.Int(int64(math.Round(w))))
	}
	return widths
}

// assembleImages registers the image XObjects, soft mask first so the image
// dictionary can reference it.
func (d *Document) assembleImages(g *graph.Graph) (map[string]graph.ObjectRef, error) {
	refs := make(map[string]graph.ObjectRef, len(d.res.Images()))
	for _, img := range d.res.Images() {
		var smaskRef *graph.ObjectRef
		if img.HasSoftMask() {
			smask := graph.NewDict()
			smask.Set("Type", graph.NameOf("XObject"))
			smask.Set("Subtype", graph.NameOf("Image"))
			smask.Set("Width", graph.Int(int64(img.Width)))
			smask.Set("Height", graph.Int(int64(img.Height)))
			smask.Set("ColorSpace", graph.NameOf("DeviceGray"))
			smask.Set("BitsPerComponent", graph.Int(int64(img.BitsPerComponent)))
			if img.Filter != filters.None {
				smask.Set("Filter", graph.NameOf(string(img.Filter)))
			}
			ref, err := g.Register(graph.NewStream(smask, img.SMaskEncoded))
			if err != nil {
				return nil, err
			}
			smaskRef = &ref
		}

		dict := graph.NewDict()
		dict.Set("Type", graph.NameOf("XObject"))
		dict.Set("Subtype", graph.NameOf("Image"))
		dict.Set("Width", graph.Int(int64(img.Width)))
		dict.Set("Height", graph.Int(int64(img.Height)))
		dict.Set("ColorSpace", graph.NameOf(img.ColorSpace))
		dict.Set("BitsPerComponent", graph.Int(int64(img.BitsPerComponent)))
		if img.Filter != filters.None {
			dict.Set("Filter", graph.NameOf(string(img.Filter)))
		}
		if smaskRef != nil {
			dict.Set("SMask", graph.RefTo(*smaskRef))
		}
		ref, err := g.Register(graph.NewStream(dict, img.Encoded))
		if err != nil {
			return nil, err
		}
		refs[img.Ref.Name] = ref
	}
	return refs, nil
}

func (d *Document) assemblePage(ctx context.Context, g *graph.Graph, p *Page, parent graph.ObjectRef, pageRefs []graph.ObjectRef, fontRefs, imageRefs map[string]graph.ObjectRef) (*graph.Dict, error) {
	data := p.content.Bytes()
	streamDict := graph.NewDict()
	if d.compress && len(data) > 0 {
		compressed, err := d.codecs.Encode(ctx, filters.Flate, data)
		if err != nil {
			return nil, err
		}
		streamDict.Set("Filter", graph.NameOf(string(filters.Flate)))
		data = compressed
	}
	contentRef, err := g.Register(graph.NewStream(streamDict, data))
	if err != nil {
		return nil, err
	}

	res := graph.NewDict()
	if len(p.fontsUsed) > 0 {
		fd := graph.NewDict()
		for _, ref := range p.fontsUsed {
			fd.Set(ref.Name, graph.RefTo(fontRefs[ref.Name]))
		}
		res.Set("Font", fd)
	}
	if len(p.imagesUsed) > 0 {
		xd := graph.NewDict()
		for _, ref := range p.imagesUsed {
			xd.Set(ref.Name, graph.RefTo(imageRefs[ref.Name]))
		}
		res.Set("XObject", xd)
	}

	dict := graph.NewDict()
	dict.Set("Type", graph.NameOf("Page"))
	dict.Set("Parent", graph.RefTo(parent))
	dict.Set("MediaBox", graph.NewArray(
		graph.Int(0), graph.Int(0),
		graph.Float(p.size.Width), graph.Float(p.size.Height)))
	dict.Set("Contents", graph.RefTo(contentRef))
	dict.Set("Resources", res)
	if p.rotation != 0 {
		dict.Set("Rotate", graph.Int(int64(p.rotation)))
	}

	if len(p.links) > 0 {
		annots := graph.NewArray()
		for _, l := range p.links {
			annot, err := assembleLink(l, pageRefs)
			if err != nil {
				return nil, err
			}
			ref, err := g.Register(annot)
			if err != nil {
				return nil, err
			}
			annots.Append(graph.RefTo(ref))
		}
		dict.Set("Annots", annots)
	}
	return dict, nil
}

func assembleLink(l link, pageRefs []graph.ObjectRef) (*graph.Dict, error) {
	dict := graph.NewDict()
	dict.Set("Type", graph.NameOf("Annot"))
	dict.Set("Subtype", graph.NameOf("Link"))
	dict.Set("Rect", graph.NewArray(
		graph.Float(l.rect.LLX), graph.Float(l.rect.LLY),
		graph.Float(l.rect.URX), graph.Float(l.rect.URY)))
	dict.Set("Border", graph.NewArray(graph.Int(0), graph.Int(0), graph.Int(0)))
	if l.uri != "" {
		action := graph.NewDict()
		action.Set("S", graph.NameOf("URI"))
		action.Set("URI", graph.Text(l.uri))
		dict.Set("A", action)
		return dict, nil
	}
	if l.pageIndex < 0 || l.pageIndex >= len(pageRefs) {
		return nil, fmt.Errorf("link targets page %d of %d", l.pageIndex, len(pageRefs))
	}
	dict.Set("Dest", destArray(pageRefs[l.pageIndex], l.top))
	return dict, nil
}

func (d *Document) assemblePageLabels() *graph.Dict {
	indices := make([]int, 0, len(d.labels))
	for i := range d.labels {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	nums := graph.NewArray()
	for _, i := range indices {
		label := d.labels[i]
		entry := graph.NewDict()
		if label.Style != "" {
			entry.Set("S", graph.NameOf(label.Style))
		}
		if label.Prefix != "" {
			entry.Set("P", graph.Text(label.Prefix))
		}
		if label.Start > 0 {
			entry.Set("St", graph.Int(int64(label.Start)))
		}
		nums.Append(graph.Int(int64(i)), entry)
	}
	labels := graph.NewDict()
	labels.Set("Nums", nums)
	return labels
}

func (d *Document) assembleInfo() *graph.Dict {
	dict := graph.NewDict()
	set := func(key, val string) {
		if val != "" {
			dict.Set(key, graph.Text(string(encodeWinAnsi(val))))
		}
	}
	set("Title", d.info.Title)
	set("Author", d.info.Author)
	set("Subject", d.info.Subject)
	set("Keywords", d.info.Keywords)
	set("Creator", d.info.Creator)
	set("Producer", d.info.Producer)
	if !d.info.CreationDate.IsZero() {
		dict.Set("CreationDate", graph.Text(pdfDate(d.info.CreationDate)))
	}
	if !d.info.ModDate.IsZero() {
		dict.Set("ModDate", graph.Text(pdfDate(d.info.ModDate)))
	}
	return dict
}
