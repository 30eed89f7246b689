// Package document is the high-level assembly API: pages are filled with
// content, fonts and images are registered once and shared, and Finalize
// lowers everything into an indirect object graph that the writer turns into
// the final byte stream. A document moves forward only; after Finalize the
// content is frozen and Output may be called any number of times with
// byte-identical results.
package document

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/docfold/pdfgen/filters"
	"github.com/docfold/pdfgen/graph"
	"github.com/docfold/pdfgen/observability"
	"github.com/docfold/pdfgen/resources"
	"github.com/docfold/pdfgen/writer"
)

// PaperSize is a page size in points.
type PaperSize struct {
	Width  float64
	Height float64
}

var (
	A3     = PaperSize{Width: 841.89, Height: 1190.55}
	A4     = PaperSize{Width: 595.28, Height: 841.89}
	A5     = PaperSize{Width: 420.94, Height: 595.28}
	Letter = PaperSize{Width: 612, Height: 792}
	Legal  = PaperSize{Width: 612, Height: 1008}
)

// Landscape returns the size with width and height swapped.
func (s PaperSize) Landscape() PaperSize { return PaperSize{Width: s.Height, Height: s.Width} }

// Info carries the document information dictionary entries. Zero-value
// fields are omitted from the output.
type Info struct {
	Title        string
	Author       string
	Subject      string
	Keywords     string
	Creator      string
	Producer     string
	CreationDate time.Time
	ModDate      time.Time
}

func (i Info) empty() bool { return i == Info{} }

// PageLabel names a numbering range starting at a page index. Style is one
// of the standard numbering styles ("D", "R", "r", "A", "a"); empty means
// no number, only the prefix.
type PageLabel struct {
	Style  string
	Prefix string
	Start  int
}

// Document accumulates pages and document-level structure.
type Document struct {
	log      observability.Logger
	paper    PaperSize
	version  string
	compress bool
	lang     string

	res    *resources.Manager
	codecs *filters.Registry
	pages  []*Page

	info     Info
	metadata []byte
	outlines []Outline
	labels   map[int]PageLabel

	finalized bool
	g         *graph.Graph
	tr        writer.Trailer
}

// Option configures a Document.
type Option func(*Document)

// WithPaperSize sets the default size for pages added without an explicit
// size. The default is A4 portrait.
func WithPaperSize(s PaperSize) Option {
	return func(d *Document) { d.paper = s }
}

// WithVersion overrides the header version.
func WithVersion(v string) Option {
	return func(d *Document) { d.version = v }
}

// WithoutCompression disables deflate compression of content streams and
// font programs, which keeps the output inspectable in a text editor.
func WithoutCompression() Option {
	return func(d *Document) { d.compress = false }
}

// WithLanguage sets the document language tag written as /Lang.
func WithLanguage(lang string) Option {
	return func(d *Document) { d.lang = lang }
}

// WithLogger installs a logger; the default discards everything.
func WithLogger(log observability.Logger) Option {
	return func(d *Document) { d.log = log }
}

func New(opts ...Option) *Document {
	d := &Document{
		log:      observability.NopLogger{},
		paper:    A4,
		compress: true,
		codecs:   filters.NewRegistry(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.res = resources.NewManager(resources.WithLogger(d.log))
	return d
}

// Resources exposes the font and image registry.
func (d *Document) Resources() *resources.Manager { return d.res }

// PageCount reports the number of pages added so far.
func (d *Document) PageCount() int { return len(d.pages) }

// Page returns the page at index, or nil when out of range.
func (d *Document) Page(index int) *Page {
	if index < 0 || index >= len(d.pages) {
		return nil
	}
	return d.pages[index]
}

func (d *Document) frozen(op string) error {
	if !d.finalized {
		return nil
	}
	st := graph.StateFinalizing
	if d.g != nil {
		st = d.g.State()
	}
	return &graph.FrozenDocumentError{Op: op, State: st}
}

// AddPage appends a page of the document's default size.
func (d *Document) AddPage() (*Page, error) { return d.AddPageSized(d.paper) }

// AddPageSized appends a page with an explicit size.
func (d *Document) AddPageSized(size PaperSize) (*Page, error) {
	if err := d.frozen("add page"); err != nil {
		return nil, err
	}
	if size.Width <= 0 || size.Height <= 0 {
		return nil, fmt.Errorf("page size %gx%g is not positive", size.Width, size.Height)
	}
	p := newPage(d, size)
	d.pages = append(d.pages, p)
	return p, nil
}

// RegisterFont registers a font with the resource manager. Identical specs
// return the same reference.
func (d *Document) RegisterFont(spec resources.FontSpec) (resources.ResourceRef, error) {
	if err := d.frozen("register font"); err != nil {
		return resources.ResourceRef{}, err
	}
	return d.res.RegisterFont(spec)
}

// RegisterImage registers an image with the resource manager. Identical
// pixel content returns the same reference.
func (d *Document) RegisterImage(ctx context.Context, img resources.RasterImage, filter filters.Filter) (resources.ResourceRef, error) {
	if err := d.frozen("register image"); err != nil {
		return resources.ResourceRef{}, err
	}
	return d.res.RegisterImage(ctx, img, filter)
}

// SetInfo replaces the information dictionary entries.
func (d *Document) SetInfo(info Info) error {
	if err := d.frozen("set info"); err != nil {
		return err
	}
	d.info = info
	return nil
}

// SetMetadata attaches a raw XMP packet, written as the catalog metadata
// stream. XMPFromInfo builds a minimal packet from Info.
func (d *Document) SetMetadata(xmp []byte) error {
	if err := d.frozen("set metadata"); err != nil {
		return err
	}
	d.metadata = append([]byte(nil), xmp...)
	return nil
}

// AddOutline appends a top-level bookmark.
func (d *Document) AddOutline(out Outline) error {
	if err := d.frozen("add outline"); err != nil {
		return err
	}
	d.outlines = append(d.outlines, out)
	return nil
}

// SetPageLabel starts a numbering range at the given page index.
func (d *Document) SetPageLabel(pageIndex int, label PageLabel) error {
	if err := d.frozen("set page label"); err != nil {
		return err
	}
	if pageIndex < 0 {
		return fmt.Errorf("page label index %d is negative", pageIndex)
	}
	if d.labels == nil {
		d.labels = make(map[int]PageLabel)
	}
	d.labels[pageIndex] = label
	return nil
}

// Output finalizes the document if needed and serializes it. Calling Output
// again returns the same bytes.
func (d *Document) Output(ctx context.Context) ([]byte, error) {
	if err := d.Finalize(ctx); err != nil {
		return nil, err
	}
	w := writer.New(writer.WithLogger(d.log))
	return w.Serialize(ctx, d.g, d.tr, writer.Config{Version: d.version})
}

// WriteTo finalizes and writes the document to out. Nothing is written on
// error.
func (d *Document) WriteTo(ctx context.Context, out io.Writer) (int64, error) {
	data, err := d.Output(ctx)
	if err != nil {
		return 0, err
	}
	n, err := out.Write(data)
	return int64(n), err
}

// pdfDate renders a date in the D:YYYYMMDDHHmmSSZ form.
func pdfDate(t time.Time) string {
	return "D:" + t.UTC().Format("20060102150405") + "Z"
}
