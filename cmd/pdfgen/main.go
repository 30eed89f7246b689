// pdfgen converts a markdown, HTML or plain-text file into a PDF.
//
// Usage:
//
//	pdfgen -o out.pdf [-format md|html|text] [-font file.ttf] input
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/docfold/pdfgen/document"
	"github.com/docfold/pdfgen/layout"
)

func main() {
	out := flag.String("o", "out.pdf", "output file")
	format := flag.String("format", "", "input format: md, html or text (default: by extension)")
	title := flag.String("title", "", "document title")
	author := flag.String("author", "", "document author")
	paper := flag.String("paper", "a4", "paper size: a3, a4, a5, letter, legal")
	fontFile := flag.String("font", "", "truetype font to embed instead of the built-in fonts")
	fontSize := flag.Float64("size", 12, "base font size in points")
	justify := flag.Bool("justify", false, "justify paragraph text")
	uncompressed := flag.Bool("uncompressed", false, "keep content streams uncompressed")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: pdfgen [flags] input")
		flag.PrintDefaults()
		os.Exit(2)
	}
	input := flag.Arg(0)
	src, err := os.ReadFile(input)
	if err != nil {
		fatal("read input: %v", err)
	}

	size, ok := paperSizes[strings.ToLower(*paper)]
	if !ok {
		fatal("unknown paper size %q", *paper)
	}
	opts := []document.Option{document.WithPaperSize(size)}
	if *uncompressed {
		opts = append(opts, document.WithoutCompression())
	}
	doc := document.New(opts...)
	if *title != "" || *author != "" {
		info := document.Info{Title: *title, Author: *author, Producer: "pdfgen"}
		if err := doc.SetInfo(info); err != nil {
			fatal("set info: %v", err)
		}
		if err := doc.SetMetadata(document.XMPFromInfo(info)); err != nil {
			fatal("set metadata: %v", err)
		}
	}

	style := layout.Style{Family: "helvetica", SizePt: *fontSize}
	engineOpts := []layout.EngineOption{layout.WithDefaultStyle(style)}
	if *justify {
		engineOpts = append(engineOpts, layout.WithJustify())
	}
	engine := layout.NewEngine(doc, engineOpts...)
	if *fontFile != "" {
		data, err := os.ReadFile(*fontFile)
		if err != nil {
			fatal("read font: %v", err)
		}
		family := strings.TrimSuffix(filepath.Base(*fontFile), filepath.Ext(*fontFile))
		engine.UseTrueType(family, data)
		style.Family = family
		engine.DefaultStyle = style
	}

	switch resolveFormat(*format, input) {
	case "md":
		err = engine.RenderMarkdown(string(src))
	case "html":
		err = engine.RenderHTML(string(src))
	case "text":
		err = engine.RenderText(string(src))
	default:
		fatal("unknown format %q", *format)
	}
	if err != nil {
		fatal("render: %v", err)
	}

	f, err := os.Create(*out)
	if err != nil {
		fatal("create output: %v", err)
	}
	defer f.Close()
	n, err := doc.WriteTo(context.Background(), f)
	if err != nil {
		fatal("write pdf: %v", err)
	}
	fmt.Printf("wrote %s (%d bytes, %d pages)\n", *out, n, doc.PageCount())
}

var paperSizes = map[string]document.PaperSize{
	"a3":     document.A3,
	"a4":     document.A4,
	"a5":     document.A5,
	"letter": document.Letter,
	"legal":  document.Legal,
}

func resolveFormat(format, input string) string {
	if format != "" {
		return format
	}
	switch strings.ToLower(filepath.Ext(input)) {
	case ".md", ".markdown":
		return "md"
	case ".html", ".htm":
		return "html"
	}
	return "text"
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
