package document

import (
	"fmt"

	"github.com/docfold/pdfgen/contentstream"
	"github.com/docfold/pdfgen/coords"
	"github.com/docfold/pdfgen/resources"
)

// Rect is a rectangle in page coordinates, origin at the lower-left corner.
type Rect struct {
	LLX, LLY, URX, URY float64
}

// Color is an RGB color with components in [0,1].
type Color struct {
	R, G, B float64
}

// TextOptions configures DrawText.
type TextOptions struct {
	Font         resources.ResourceRef
	Size         float64
	Color        *Color
	CharSpacing  float64
	WordSpacing  float64
	HorizScaling float64 // percent; 0 means 100
	Rise         float64
	RenderMode   contentstream.TextRenderMode
}

// RectOptions configures DrawRect. With neither Fill nor Stroke set the
// rectangle is stroked.
type RectOptions struct {
	Fill        bool
	Stroke      bool
	FillColor   Color
	StrokeColor Color
	LineWidth   float64
}

type link struct {
	rect      Rect
	uri       string // empty for internal links
	pageIndex int
	top       float64
}

// Page is one page under construction. Drawing happens in page coordinates
// with the origin at the lower-left corner; operators paint in call order.
type Page struct {
	doc      *Document
	size     PaperSize
	rotation int
	content  *contentstream.Builder

	fontsUsed  []resources.ResourceRef
	imagesUsed []resources.ResourceRef
	seen       map[resources.ResourceRef]bool
	links      []link
}

func newPage(d *Document, size PaperSize) *Page {
	return &Page{
		doc:     d,
		size:    size,
		content: contentstream.NewBuilder(),
		seen:    make(map[resources.ResourceRef]bool),
	}
}

// Size returns the page size in points.
func (p *Page) Size() PaperSize { return p.size }

// Rotation returns the display rotation in degrees.
func (p *Page) Rotation() int { return p.rotation }

// SetRotation sets the display rotation; only quarter turns are valid.
func (p *Page) SetRotation(degrees int) error {
	if err := p.doc.frozen("set rotation"); err != nil {
		return err
	}
	if degrees%90 != 0 {
		return fmt.Errorf("rotation %d is not a multiple of 90", degrees)
	}
	p.rotation = ((degrees % 360) + 360) % 360
	return nil
}

// Content exposes the raw operator builder for drawing not covered by the
// helpers. Resources selected by name must be announced with UseFont or
// UseImage so they end up in the page resource dictionary.
func (p *Page) Content() *contentstream.Builder { return p.content }

// UseFont records that the page content selects the font by name.
func (p *Page) UseFont(ref resources.ResourceRef) {
	if !p.seen[ref] {
		p.seen[ref] = true
		p.fontsUsed = append(p.fontsUsed, ref)
	}
}

// UseImage records that the page content paints the image by name.
func (p *Page) UseImage(ref resources.ResourceRef) {
	if !p.seen[ref] {
		p.seen[ref] = true
		p.imagesUsed = append(p.imagesUsed, ref)
	}
}

// DrawText paints a single line of text with its baseline starting at (x, y).
// The text is encoded to the simple-font code page; unmappable runes are
// substituted.
func (p *Page) DrawText(text string, x, y float64, opts TextOptions) error {
	if err := p.doc.frozen("draw text"); err != nil {
		return err
	}
	if _, ok := p.doc.res.Font(opts.Font); !ok {
		return fmt.Errorf("font %q is not registered", opts.Font.Name)
	}
	size := opts.Size
	if size <= 0 {
		size = 12
	}
	p.UseFont(opts.Font)

	return p.content.WithState(func(b *contentstream.Builder) error {
		if opts.Color != nil {
			b.SetFillRGB(opts.Color.R, opts.Color.G, opts.Color.B)
		}
		b.BeginText()
		b.SetFont(opts.Font.Name, size)
		if opts.CharSpacing != 0 {
			b.SetCharSpacing(opts.CharSpacing)
		}
		if opts.WordSpacing != 0 {
			b.SetWordSpacing(opts.WordSpacing)
		}
		if opts.HorizScaling != 0 && opts.HorizScaling != 100 {
			b.SetHorizScaling(opts.HorizScaling)
		}
		if opts.Rise != 0 {
			b.SetTextRise(opts.Rise)
		}
		if opts.RenderMode != contentstream.TextFill {
			b.SetRenderMode(opts.RenderMode)
		}
		b.NextLineAt(x, y)
		b.ShowText(encodeWinAnsi(text))
		b.EndText()
		return nil
	})
}

// DrawImage paints a registered image into the rectangle with lower-left
// corner (x, y).
func (p *Page) DrawImage(ref resources.ResourceRef, x, y, w, h float64) error {
	if err := p.doc.frozen("draw image"); err != nil {
		return err
	}
	if _, ok := p.doc.res.Image(ref); !ok {
		return fmt.Errorf("image %q is not registered", ref.Name)
	}
	p.UseImage(ref)
	return p.content.WithState(func(b *contentstream.Builder) error {
		b.Concat(coords.Matrix{w, 0, 0, h, x, y})
		b.DrawXObject(ref.Name)
		return nil
	})
}

// DrawLine strokes a straight line.
func (p *Page) DrawLine(x1, y1, x2, y2, width float64, color Color) error {
	if err := p.doc.frozen("draw line"); err != nil {
		return err
	}
	return p.content.WithState(func(b *contentstream.Builder) error {
		if width > 0 {
			b.SetLineWidth(width)
		}
		b.SetStrokeRGB(color.R, color.G, color.B)
		b.MoveTo(x1, y1)
		b.LineTo(x2, y2)
		b.Stroke()
		return nil
	})
}

// DrawRect paints a rectangle.
func (p *Page) DrawRect(x, y, w, h float64, opts RectOptions) error {
	if err := p.doc.frozen("draw rect"); err != nil {
		return err
	}
	fill, stroke := opts.Fill, opts.Stroke
	if !fill && !stroke {
		stroke = true
	}
	return p.content.WithState(func(b *contentstream.Builder) error {
		if fill {
			b.SetFillRGB(opts.FillColor.R, opts.FillColor.G, opts.FillColor.B)
		}
		if stroke {
			if opts.LineWidth > 0 {
				b.SetLineWidth(opts.LineWidth)
			}
			b.SetStrokeRGB(opts.StrokeColor.R, opts.StrokeColor.G, opts.StrokeColor.B)
		}
		b.Rect(x, y, w, h)
		switch {
		case fill && stroke:
			b.FillStroke()
		case fill:
			b.Fill()
		default:
			b.Stroke()
		}
		return nil
	})
}

// AddLinkURI attaches an external link annotation covering rect.
func (p *Page) AddLinkURI(rect Rect, uri string) error {
	if err := p.doc.frozen("add link"); err != nil {
		return err
	}
	if uri == "" {
		return fmt.Errorf("link uri is empty")
	}
	p.links = append(p.links, link{rect: rect, uri: uri})
	return nil
}

// AddLinkInternal attaches a link annotation jumping to another page, with
// the viewport scrolled so top is at the window top. The target index is
// checked when the document is finalized.
func (p *Page) AddLinkInternal(rect Rect, pageIndex int, top float64) error {
	if err := p.doc.frozen("add link"); err != nil {
		return err
	}
	p.links = append(p.links, link{rect: rect, pageIndex: pageIndex, top: top})
	return nil
}
