package document

import (
	"bytes"
	"encoding/xml"
	"time"
)

// XMPFromInfo builds a minimal XMP packet mirroring the information
// dictionary, suitable for SetMetadata. Only set fields are emitted.
func XMPFromInfo(info Info) []byte {
	var buf bytes.Buffer
	buf.WriteString(`<?xpacket begin="` + "\uFEFF" + `" id="W5M0MpCehiHzreSzNTczkc9d"?>` + "\n")
	buf.WriteString(`<x:xmpmeta xmlns:x="adobe:ns:meta/">` + "\n")
	buf.WriteString(` <rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">` + "\n")
	buf.WriteString(`  <rdf:Description rdf:about="" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:pdf="http://ns.adobe.com/pdf/1.3/" xmlns:xmp="http://ns.adobe.com/xap/1.0/">` + "\n")
	if info.Title != "" {
		buf.WriteString(`   <dc:title><rdf:Alt><rdf:li xml:lang="x-default">`)
		xmlEscape(&buf, info.Title)
		buf.WriteString(`</rdf:li></rdf:Alt></dc:title>` + "\n")
	}
	if info.Author != "" {
		buf.WriteString(`   <dc:creator><rdf:Seq><rdf:li>`)
		xmlEscape(&buf, info.Author)
		buf.WriteString(`</rdf:li></rdf:Seq></dc:creator>` + "\n")
	}
	if info.Subject != "" {
		buf.WriteString(`   <dc:description><rdf:Alt><rdf:li xml:lang="x-default">`)
		xmlEscape(&buf, info.Subject)
		buf.WriteString(`</rdf:li></rdf:Alt></dc:description>` + "\n")
	}
	if info.Keywords != "" {
		buf.WriteString(`   <pdf:Keywords>`)
		xmlEscape(&buf, info.Keywords)
		buf.WriteString(`</pdf:Keywords>` + "\n")
	}
	if info.Producer != "" {
		buf.WriteString(`   <pdf:Producer>`)
		xmlEscape(&buf, info.Producer)
		buf.WriteString(`</pdf:Producer>` + "\n")
	}
	if info.Creator != "" {
		buf.WriteString(`   <xmp:CreatorTool>`)
		xmlEscape(&buf, info.Creator)
		buf.WriteString(`</xmp:CreatorTool>` + "\n")
	}
	if !info.CreationDate.IsZero() {
		buf.WriteString(`   <xmp:CreateDate>`)
		buf.WriteString(info.CreationDate.UTC().Format(time.RFC3339))
		buf.WriteString(`</xmp:CreateDate>` + "\n")
	}
	buf.WriteString(`  </rdf:Description>` + "\n")
	buf.WriteString(` </rdf:RDF>` + "\n")
	buf.WriteString(`</x:xmpmeta>` + "\n")
	buf.WriteString(`<?xpacket end="w"?>`)
	return buf.Bytes()
}

func xmlEscape(buf *bytes.Buffer, s string) {
	// xml.EscapeText only fails on writer errors, which bytes.Buffer
	// never produces.
	_ = xml.EscapeText(buf, []byte(s))
}
