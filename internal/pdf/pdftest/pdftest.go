// Package pdftest builds small synthetic PDF files for tests. The output has
// just enough container structure for the stream locator: indirect objects
// with a dictionary, a stream body and an endstream marker.
package pdftest

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"strings"
)

// Object is one indirect object of a synthetic document
type Object struct {
	ID   int
	Dict string
	Body []byte
}

// FlateObject compresses content and declares the FlateDecode filter
func FlateObject(id int, content string) Object {
	return Object{ID: id, Dict: "/Filter /FlateDecode", Body: Deflate(content)}
}

// Deflate compresses content with zlib framing, as PDF writers do
func Deflate(content string) []byte {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, _ = w.Write([]byte(content))
	_ = w.Close()
	return buf.Bytes()
}

// Build serializes objects into a bare document with no cross-reference
// table. Only the stream locator can read it.
func Build(objects ...Object) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	for _, obj := range objects {
		fmt.Fprintf(&buf, "%d 0 obj\n<< %s /Length %d >>\nstream\r\n", obj.ID, obj.Dict, len(obj.Body))
		buf.Write(obj.Body)
		buf.WriteString("\r\nendstream\nendobj\n")
	}
	buf.WriteString("trailer\n<< /Size 1 >>\n%%EOF\n")
	return buf.Bytes()
}

// Document builds a complete PDF with one page per content stream, readable
// by general purpose PDF libraries. Content streams are written first and get
// object numbers 3..n+2, so the stream locator sees each one on its own.
func Document(pages ...string) []byte {
	n := len(pages)
	offsets := make([]int, 2*n+3)

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	for i, content := range pages {
		id := 3 + i
		body := Deflate(content)
		offsets[id] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n<< /Filter /FlateDecode /Length %d >>\nstream\r\n", id, len(body))
		buf.Write(body)
		buf.WriteString("\r\nendstream\nendobj\n")
	}

	offsets[1] = buf.Len()
	buf.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	kids := make([]string, n)
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 3+n+i)
	}
	offsets[2] = buf.Len()
	fmt.Fprintf(&buf, "2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n", strings.Join(kids, " "), n)

	for i := range pages {
		id := 3 + n + i
		offsets[id] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 1008] /Contents %d 0 R "+
			"/Resources << /Font << /F1 << /Type /Font /Subtype /Type1 /BaseFont /Helvetica >> >> >> >>\nendobj\n",
			id, 3+i)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets))
	for _, offset := range offsets[1:] {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offset)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets), xref)
	return buf.Bytes()
}

// Page writes content stream instructions in the shape the report generator
// emits: one Tm line followed by one Tj line per text fragment.
type Page struct {
	lines []string
}

// NewPage starts a page that already carries the report caption
func NewPage() *Page {
	p := &Page{lines: []string{"BT", "/F1 10 Tf"}}
	p.Text(40, 1000, "Incident ")
	p.Text(100, 1000, "Summary ")
	p.Text(170, 1000, "Report ")
	return p
}

// NewBlankPage starts a page without the caption
func NewBlankPage() *Page {
	return &Page{lines: []string{"BT", "/F1 10 Tf"}}
}

// Text places a literal at (x, y)
func (p *Page) Text(x, y float64, text string) *Page {
	p.lines = append(p.lines,
		fmt.Sprintf("1 0 0 1 %g %g Tm", x, y),
		"("+Escape(text)+") Tj",
	)
	return p
}

// Raw appends an instruction line verbatim
func (p *Page) Raw(line string) *Page {
	p.lines = append(p.lines, line)
	return p
}

// String returns the content stream text
func (p *Page) String() string {
	return strings.Join(append(append([]string{}, p.lines...), "ET"), "\n")
}

// Escape applies PDF literal string escaping for parentheses and backslashes
func Escape(text string) string {
	return strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`).Replace(text)
}
