package writer

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/docfold/pdfgen/graph"
)

// writeObject renders obj into buf. Dictionary keys are written in sorted
// order so the same graph always produces the same bytes.
func writeObject(buf *bytes.Buffer, obj graph.Object) error {
	switch o := obj.(type) {
	case graph.Name:
		writeName(buf, o.Val)
	case graph.Integer:
		buf.WriteString(strconv.FormatInt(o.Val, 10))
	case graph.Real:
		buf.WriteString(formatReal(o.Val))
	case graph.Bool:
		if o.Val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case graph.Null:
		buf.WriteString("null")
	case graph.String:
		writeString(buf, o)
	case graph.Ref:
		buf.WriteString(o.Ref.String())
	case *graph.Array:
		buf.WriteByte('[')
		for i, item := range o.Items {
			if i > 0 {
				buf.WriteByte(' ')
			}
			if err := writeObject(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case *graph.Dict:
		if err := writeDict(buf, o); err != nil {
			return err
		}
	case *graph.Stream:
		dict := o.Dict
		if dict == nil {
			dict = graph.NewDict()
		}
		dict.Set("Length", graph.Int(int64(len(o.Data))))
		if err := writeDict(buf, dict); err != nil {
			return err
		}
		buf.WriteString("\nstream\n")
		buf.Write(o.Data)
		buf.WriteString("\nendstream")
	case nil:
		return fmt.Errorf("nil object in graph")
	default:
		return fmt.Errorf("cannot serialize object of type %q", obj.Type())
	}
	return nil
}

func writeDict(buf *bytes.Buffer, d *graph.Dict) error {
	buf.WriteString("<<")
	for i, k := range d.SortedKeys() {
		if i > 0 {
			buf.WriteByte(' ')
		}
		writeName(buf, k)
		buf.WriteByte(' ')
		if err := writeObject(buf, d.KV[k]); err != nil {
			return err
		}
	}
	buf.WriteString(">>")
	return nil
}

// writeName escapes delimiter and non-printable bytes with #XX per the name
// syntax rules.
func writeName(buf *bytes.Buffer, name string) {
	buf.WriteByte('/')
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c < '!' || c > '~':
			fmt.Fprintf(buf, "#%02X", c)
		case c == '#' || c == '/' || c == '(' || c == ')' || c == '<' || c == '>' ||
			c == '[' || c == ']' || c == '{' || c == '}' || c == '%':
			fmt.Fprintf(buf, "#%02X", c)
		default:
			buf.WriteByte(c)
		}
	}
}

func writeString(buf *bytes.Buffer, s graph.String) {
	if s.Hex {
		buf.WriteByte('<')
		buf.WriteString(hex.EncodeToString(s.Bytes))
		buf.WriteByte('>')
		return
	}
	buf.WriteByte('(')
	for _, c := range s.Bytes {
		switch c {
		case '(', ')', '\\':
			buf.WriteByte('\\')
			buf.WriteByte(c)
		case '\r':
			buf.WriteString(`\r`)
		case '\n':
			buf.WriteString(`\n`)
		default:
			buf.WriteByte(c)
		}
	}
	buf.WriteByte(')')
}

// formatReal renders a real without exponent notation or trailing zeros.
func formatReal(v float64) string {
	if v > -1e15 && v < 1e15 && v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
