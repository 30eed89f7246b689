package layout

import (
	"fmt"

	"github.com/docfold/pdfgen/document"
	"github.com/docfold/pdfgen/fonts"
	"github.com/docfold/pdfgen/resources"
)

// Margins are page margins in points.
type Margins struct {
	Top, Bottom, Left, Right float64
}

// Engine flows structured content onto document pages: it breaks styled text
// into lines with real font metrics, starts new pages when the cursor runs
// past the bottom margin, and draws through the document page API.
type Engine struct {
	doc *document.Document

	DefaultStyle Style
	LineHeight   float64 // multiplier on the font size
	Margins      Margins
	Justify      bool

	faces map[string][]byte // family -> truetype program
	fonts map[fontKey]resources.ResourceRef

	currentPage *document.Page
	cursorY     float64
}

type fontKey struct {
	family string
	bold   bool
	italic bool
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithDefaultStyle sets the style used for plain paragraphs and as the base
// for headings.
func WithDefaultStyle(st Style) EngineOption {
	return func(e *Engine) { e.DefaultStyle = st }
}

// WithLineHeight sets the line height multiplier.
func WithLineHeight(h float64) EngineOption {
	return func(e *Engine) { e.LineHeight = h }
}

// WithMargins sets the page margins.
func WithMargins(m Margins) EngineOption {
	return func(e *Engine) { e.Margins = m }
}

// WithJustify justifies paragraph text to the full column width.
func WithJustify() EngineOption {
	return func(e *Engine) { e.Justify = true }
}

// NewEngine creates a layout engine rendering into doc.
func NewEngine(doc *document.Document, opts ...EngineOption) *Engine {
	e := &Engine{
		doc:          doc,
		DefaultStyle: Style{Family: "helvetica", SizePt: 12},
		LineHeight:   1.2,
		Margins:      Margins{Top: 50, Bottom: 50, Left: 50, Right: 50},
		faces:        make(map[string][]byte),
		fonts:        make(map[fontKey]resources.ResourceRef),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// UseTrueType embeds a font program and makes it selectable by family name.
func (e *Engine) UseTrueType(family string, data []byte) {
	e.faces[family] = data
}

// RenderMarkdown parses and renders a markdown document.
func (e *Engine) RenderMarkdown(source string) error {
	blocks, err := ParseMarkdown(source, e.DefaultStyle)
	if err != nil {
		return err
	}
	return e.RenderBlocks(blocks)
}

// RenderHTML parses and renders an HTML document.
func (e *Engine) RenderHTML(source string) error {
	blocks, err := ParseHTML(source, e.DefaultStyle)
	if err != nil {
		return err
	}
	return e.RenderBlocks(blocks)
}

// RenderText renders plain text as one paragraph.
func (e *Engine) RenderText(text string) error {
	return e.RenderBlocks([]Block{{Kind: BlockParagraph, Fragments: Styled(text, e.DefaultStyle)}})
}

// RenderBlocks flows blocks down the page in order.
func (e *Engine) RenderBlocks(blocks []Block) error {
	for _, b := range blocks {
		if err := e.renderBlock(b); err != nil {
			return err
		}
	}
	return nil
}

const listIndent = 15.0

func (e *Engine) renderBlock(b Block) error {
	if len(b.Fragments) == 0 {
		return nil
	}
	for _, f := range b.Fragments {
		if _, err := e.fontFor(f.Style); err != nil {
			return err
		}
	}
	if err := e.ensurePage(); err != nil {
		return err
	}

	indent := 0.0
	if b.Kind == BlockListItem {
		indent = listIndent
	}

	maxWidth := e.currentPage.Size().Width - e.Margins.Left - e.Margins.Right - indent
	var opts []Option
	justify := e.Justify && b.Kind == BlockParagraph
	if justify {
		opts = append(opts, WithJustifiedLines())
	}
	lines, err := NewMultiLineBreak(b.Fragments, e.measure, opts...).Lines(maxWidth)
	if err != nil {
		return err
	}

	if b.Kind == BlockListItem && len(lines) > 0 {
		// Break against the first line's height before the bullet goes
		// down, so the bullet and the line land on the same page.
		if err := e.checkPageBreak(e.lineSize(lines[0]) * e.LineHeight); err != nil {
			return err
		}
		if err := e.drawBullet(); err != nil {
			return err
		}
	}

	for _, line := range lines {
		if err := e.renderLine(line, indent, maxWidth); err != nil {
			return err
		}
	}
	if b.Kind != BlockListItem {
		e.cursorY -= e.DefaultStyle.SizePt * e.LineHeight * 0.5
	}
	return nil
}

// renderLine draws one broken line at the cursor and advances it.
func (e *Engine) renderLine(line TextLine, indent, maxWidth float64) error {
	size := e.lineSize(line)
	height := size * e.LineHeight
	if err := e.checkPageBreak(height); err != nil {
		return err
	}

	wordSpacing := 0.0
	if line.Justify && line.SpaceCount > 0 && line.Width < maxWidth {
		wordSpacing = (maxWidth - line.Width) / float64(line.SpaceCount)
	}

	x := e.Margins.Left + indent
	y := e.cursorY - size
	for _, f := range line.Fragments {
		if len(f.Chars) == 0 {
			continue
		}
		ref, err := e.fontFor(f.Style)
		if err != nil {
			return err
		}
		w := e.fragmentWidth(f, wordSpacing)
		err = e.currentPage.DrawText(string(f.Chars), x, y, document.TextOptions{
			Font:         ref,
			Size:         f.Style.SizePt,
			WordSpacing:  wordSpacing,
			HorizScaling: f.Style.Stretching,
		})
		if err != nil {
			return err
		}
		if f.Style.Underline {
			underY := y - f.Style.SizePt*0.08
			if err := e.currentPage.DrawLine(x, underY, x+w, underY, f.Style.SizePt*0.05, document.Color{}); err != nil {
				return err
			}
		}
		x += w
	}
	e.cursorY -= height
	return nil
}

func (e *Engine) drawBullet() error {
	ref, err := e.fontFor(e.DefaultStyle)
	if err != nil {
		return err
	}
	return e.currentPage.DrawText("•", e.Margins.Left, e.cursorY-e.DefaultStyle.SizePt, document.TextOptions{
		Font: ref,
		Size: e.DefaultStyle.SizePt,
	})
}

// lineSize is the largest font size on the line, which sets the line box.
func (e *Engine) lineSize(line TextLine) float64 {
	size := e.DefaultStyle.SizePt
	for _, f := range line.Fragments {
		if f.Style.SizePt > size {
			size = f.Style.SizePt
		}
	}
	return size
}

// fragmentWidth measures a fragment for placement, plus the justification
// spacing its spaces will receive.
func (e *Engine) fragmentWidth(f Fragment, wordSpacing float64) float64 {
	m, ok := e.metricsFor(f.Style)
	if !ok {
		return 0
	}
	return fragmentRunWidth(m, f, wordSpacing)
}

// fragmentRunWidth measures a whole fragment in points. Embedded faces shape
// the run so kerning matches what the viewer draws; core fonts sum per-rune
// advances, which is exact for them. Spacing is added per space and scaled
// like the glyphs when the run is stretched, since viewers apply the
// horizontal scaling factor to word spacing too.
func fragmentRunWidth(m fonts.Metrics, f Fragment, wordSpacing float64) float64 {
	st := f.Style
	stretch := 1.0
	if st.Stretching != 0 {
		stretch = st.Stretching / 100
	}

	var w float64
	if rm, ok := m.(fonts.RunMeasurer); ok {
		if shaped, err := rm.MeasureShaped(string(f.Chars)); err == nil {
			w = shaped / 1000 * st.SizePt * stretch
			return w + spacingWidth(f, wordSpacing*stretch)
		}
	}
	for _, r := range f.Chars {
		w += m.Advance(r) / 1000 * st.SizePt * stretch
	}
	return w + spacingWidth(f, wordSpacing*stretch)
}

func spacingWidth(f Fragment, spacing float64) float64 {
	if spacing == 0 {
		return 0
	}
	n := 0
	for _, r := range f.Chars {
		if r == space {
			n++
		}
	}
	return float64(n) * spacing
}

// measure is the Measurer handed to the breaker. Break decisions stay
// per-rune; shaped run widths only refine placement in fragmentWidth.
func (e *Engine) measure(r rune, st Style) float64 {
	m, ok := e.metricsFor(st)
	if !ok {
		return 0
	}
	return m.Advance(r) / 1000 * st.SizePt
}

// metricsFor looks up the metrics behind a style. Fonts are resolved before
// breaking starts, so the cache lookup cannot miss during rendering.
func (e *Engine) metricsFor(st Style) (fonts.Metrics, bool) {
	ref, ok := e.fonts[e.key(st)]
	if !ok {
		return nil, false
	}
	res, ok := e.doc.Resources().Font(ref)
	if !ok {
		return nil, false
	}
	return res.Metrics, true
}

func (e *Engine) key(st Style) fontKey {
	family := st.Family
	if family == "" {
		family = e.DefaultStyle.Family
	}
	return fontKey{family: family, bold: st.Bold, italic: st.Italic}
}

// fontFor resolves the registered font for a style, registering it on first
// use. Families loaded with UseTrueType map to their embedded program; other
// families resolve to core fonts.
func (e *Engine) fontFor(st Style) (resources.ResourceRef, error) {
	key := e.key(st)
	if ref, ok := e.fonts[key]; ok {
		return ref, nil
	}
	spec := resources.FontSpec{Family: key.family, Bold: key.bold, Italic: key.italic}
	if data, ok := e.faces[key.family]; ok {
		spec.Data = data
	}
	ref, err := e.doc.RegisterFont(spec)
	if err != nil {
		return resources.ResourceRef{}, fmt.Errorf("font for %q: %w", key.family, err)
	}
	e.fonts[key] = ref
	return ref, nil
}

func (e *Engine) ensurePage() error {
	if e.currentPage != nil {
		return nil
	}
	return e.newPage()
}

func (e *Engine) newPage() error {
	page, err := e.doc.AddPage()
	if err != nil {
		return err
	}
	e.currentPage = page
	e.cursorY = page.Size().Height - e.Margins.Top
	return nil
}

// checkPageBreak starts a new page when height does not fit above the
// bottom margin.
func (e *Engine) checkPageBreak(height float64) error {
	if e.currentPage == nil {
		return e.newPage()
	}
	if e.cursorY-height < e.Margins.Bottom {
		return e.newPage()
	}
	return nil
}
