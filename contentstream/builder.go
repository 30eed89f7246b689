// Package contentstream builds page content: a sequence of graphics and text
// operators appended to a byte buffer in exact call order. Later operators
// paint on top of earlier ones, and graphics-state changes apply only to
// operators emitted after them, so the buffer is strictly append-only.
package contentstream

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/docfold/pdfgen/coords"
)

// UnbalancedGraphicsStateError reports a Restore without a matching Save, or
// saves left open when the stream is closed.
type UnbalancedGraphicsStateError struct {
	Depth int
}

func (e *UnbalancedGraphicsStateError) Error() string {
	if e.Depth < 0 {
		return "graphics state restore without matching save"
	}
	return fmt.Sprintf("graphics state: %d save(s) left unrestored", e.Depth)
}

// TextRenderMode selects how show-text operators paint glyphs.
type TextRenderMode int

const (
	TextFill TextRenderMode = iota
	TextStroke
	TextFillStroke
	TextInvisible
)

// LineCap styles the ends of stroked paths.
type LineCap int

const (
	CapButt LineCap = iota
	CapRound
	CapSquare
)

// LineJoin styles the corners of stroked paths.
type LineJoin int

const (
	JoinMiter LineJoin = iota
	JoinRound
	JoinBevel
)

// Builder accumulates operators for one content stream.
type Builder struct {
	buf   bytes.Buffer
	depth int
}

func NewBuilder() *Builder { return &Builder{} }

// Bytes returns the operators emitted so far.
func (b *Builder) Bytes() []byte { return b.buf.Bytes() }

// Len reports the current stream length in bytes.
func (b *Builder) Len() int { return b.buf.Len() }

// Depth reports the current save/restore nesting depth.
func (b *Builder) Depth() int { return b.depth }

// Close verifies the graphics-state stack is balanced. It is called when a
// page is finalized.
func (b *Builder) Close() error {
	if b.depth != 0 {
		return &UnbalancedGraphicsStateError{Depth: b.depth}
	}
	return nil
}

// Save pushes the graphics state (q).
func (b *Builder) Save() *Builder {
	b.depth++
	b.op("q")
	return b
}

// Restore pops the graphics state (Q). Restoring past the bottom of the
// stack fails without emitting anything.
func (b *Builder) Restore() error {
	if b.depth == 0 {
		return &UnbalancedGraphicsStateError{Depth: -1}
	}
	b.depth--
	b.op("Q")
	return nil
}

// WithState runs fn inside a save/restore pair. The restore is emitted on
// every exit path, so state changes made by fn never leak into operators
// emitted afterwards.
func (b *Builder) WithState(fn func(*Builder) error) error {
	b.Save()
	err := fn(b)
	if rerr := b.Restore(); rerr != nil && err == nil {
		err = rerr
	}
	return err
}

// Concat appends the transform m to the current transformation matrix (cm).
func (b *Builder) Concat(m coords.Matrix) *Builder {
	b.op("cm", m[0], m[1], m[2], m[3], m[4], m[5])
	return b
}

// Path construction.

func (b *Builder) MoveTo(x, y float64) *Builder { b.op("m", x, y); return b }
func (b *Builder) LineTo(x, y float64) *Builder { b.op("l", x, y); return b }
func (b *Builder) CurveTo(x1, y1, x2, y2, x3, y3 float64) *Builder {
	b.op("c", x1, y1, x2, y2, x3, y3)
	return b
}
func (b *Builder) Rect(x, y, w, h float64) *Builder { b.op("re", x, y, w, h); return b }
func (b *Builder) ClosePath() *Builder              { b.op("h"); return b }

// Path painting.

func (b *Builder) Fill() *Builder       { b.op("f"); return b }
func (b *Builder) Stroke() *Builder     { b.op("S"); return b }
func (b *Builder) FillStroke() *Builder { b.op("B"); return b }
func (b *Builder) Clip() *Builder       { b.op("W"); b.op("n"); return b }

// Graphics state parameters.

func (b *Builder) SetLineWidth(w float64) *Builder  { b.op("w", w); return b }
func (b *Builder) SetLineCap(c LineCap) *Builder    { b.op("J", float64(c)); return b }
func (b *Builder) SetLineJoin(j LineJoin) *Builder  { b.op("j", float64(j)); return b }
func (b *Builder) SetFillGray(g float64) *Builder   { b.op("g", g); return b }
func (b *Builder) SetStrokeGray(g float64) *Builder { b.op("G", g); return b }
func (b *Builder) SetFillRGB(r, g, bl float64) *Builder {
	b.op("rg", r, g, bl)
	return b
}
func (b *Builder) SetStrokeRGB(r, g, bl float64) *Builder {
	b.op("RG", r, g, bl)
	return b
}

// SetDash sets the stroke dash pattern; an empty pattern means solid.
func (b *Builder) SetDash(pattern []float64, phase float64) *Builder {
	b.buf.WriteByte('[')
	for i, v := range pattern {
		if i > 0 {
			b.buf.WriteByte(' ')
		}
		b.buf.WriteString(formatNumber(v))
	}
	b.buf.WriteString("] ")
	b.buf.WriteString(formatNumber(phase))
	b.buf.WriteString(" d\n")
	return b
}

// SetExtGState selects a named /ExtGState resource (gs).
func (b *Builder) SetExtGState(name string) *Builder {
	b.name(name)
	b.op("gs")
	return b
}

// DrawXObject paints a named /XObject resource, typically an image (Do).
func (b *Builder) DrawXObject(name string) *Builder {
	b.name(name)
	b.op("Do")
	return b
}

// Text objects.

func (b *Builder) BeginText() *Builder { b.op("BT"); return b }
func (b *Builder) EndText() *Builder   { b.op("ET"); return b }

// SetFont selects a named font resource at the given size (Tf).
func (b *Builder) SetFont(name string, size float64) *Builder {
	b.name(name)
	b.op("Tf", size)
	return b
}

func (b *Builder) SetTextMatrix(m coords.Matrix) *Builder {
	b.op("Tm", m[0], m[1], m[2], m[3], m[4], m[5])
	return b
}

// NextLineAt moves the text position relative to the start of the current
// line (Td).
func (b *Builder) NextLineAt(tx, ty float64) *Builder { b.op("Td", tx, ty); return b }

func (b *Builder) SetCharSpacing(v float64) *Builder   { b.op("Tc", v); return b }
func (b *Builder) SetWordSpacing(v float64) *Builder   { b.op("Tw", v); return b }
func (b *Builder) SetHorizScaling(v float64) *Builder  { b.op("Tz", v); return b }
func (b *Builder) SetLeading(v float64) *Builder       { b.op("TL", v); return b }
func (b *Builder) SetTextRise(v float64) *Builder      { b.op("Ts", v); return b }
func (b *Builder) SetRenderMode(m TextRenderMode) *Builder {
	b.op("Tr", float64(m))
	return b
}

// ShowText paints an already-encoded string (Tj).
func (b *Builder) ShowText(encoded []byte) *Builder {
	b.string(encoded)
	b.op("Tj")
	return b
}

// op writes operands followed by the operator and a newline.
func (b *Builder) op(operator string, operands ...float64) {
	for _, v := range operands {
		b.buf.WriteString(formatNumber(v))
		b.buf.WriteByte(' ')
	}
	b.buf.WriteString(operator)
	b.buf.WriteByte('\n')
}

func (b *Builder) name(v string) {
	b.buf.WriteByte('/')
	b.buf.WriteString(v)
	b.buf.WriteByte(' ')
}

func (b *Builder) string(v []byte) {
	b.buf.WriteByte('(')
	for _, c := range v {
		switch c {
		case '(', ')', '\\':
			b.buf.WriteByte('\\')
			b.buf.WriteByte(c)
		case '\r':
			b.buf.WriteString(`\r`)
		case '\n':
			b.buf.WriteString(`\n`)
		default:
			b.buf.WriteByte(c)
		}
	}
	b.buf.WriteString(") ")
}

// formatNumber renders a coordinate or parameter without exponent notation
// and without trailing zeros, so identical input always produces identical
// bytes.
func formatNumber(v float64) string {
	if v > -1e15 && v < 1e15 && v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
