// Package pdftest builds small, valid PDF documents for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"strings"
)

// Page describes one generated page.
type Page struct {
	Width, Height float64
	// Text is drawn with Helvetica 12pt near the top-left corner, one line
	// per element.
	Text []string
	// Rotate is written as the page's /Rotate entry when non-zero.
	Rotate int
}

// Letter returns a US Letter page carrying text.
func Letter(text ...string) Page {
	return Page{Width: 612, Height: 792, Text: text}
}

// Document returns a PDF with the given pages.
func Document(pages ...Page) []byte {
	w := &writer{}
	w.buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")

	// 1: catalog, 2: pages, 3: font, then a page and a content object per page.
	n := len(pages)
	kids := make([]string, n)
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}

	w.object(1, "<< /Type /Catalog /Pages 2 0 R >>")
	w.object(2, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), n))
	w.object(3, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	for i, p := range pages {
		pageID, contentID := 4+2*i, 5+2*i
		rotate := ""
		if p.Rotate != 0 {
			rotate = fmt.Sprintf(" /Rotate %d", p.Rotate)
		}
		w.object(pageID, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %s %s] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R%s >>",
			num(p.Width), num(p.Height), contentID, rotate))

		stream := content(p)
		w.object(contentID, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	}

	w.trailer(1)
	return w.buf.Bytes()
}

// Pages returns a document with n Letter pages labelled "Page 1".."Page n".
func Pages(n int) []byte {
	pages := make([]Page, n)
	for i := range pages {
		pages[i] = Letter(fmt.Sprintf("Page %d", i+1))
	}
	return Document(pages...)
}

func content(p Page) string {
	var b strings.Builder
	b.WriteString("0.9 g 0 0 20 20 re f 0 g")
	for i, line := range p.Text {
		fmt.Fprintf(&b, "\nBT /F1 12 Tf 72 %s Td (%s) Tj ET", num(p.Height-72-float64(i)*16), escape(line))
	}
	return b.String()
}

type writer struct {
	buf     bytes.Buffer
	offsets []int
}

func (w *writer) object(id int, body string) {
	for len(w.offsets) < id+1 {
		w.offsets = append(w.offsets, 0)
	}
	w.offsets[id] = w.buf.Len()
	fmt.Fprintf(&w.buf, "%d 0 obj\n%s\nendobj\n", id, body)
}

func (w *writer) trailer(root int) {
	xref := w.buf.Len()
	size := len(w.offsets)
	fmt.Fprintf(&w.buf, "xref\n0 %d\n", size)
	w.buf.WriteString("0000000000 65535 f \n")
	for _, off := range w.offsets[1:] {
		fmt.Fprintf(&w.buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&w.buf, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n", size, root, xref)
}

func num(f float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", f), "0"), ".")
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`)
	return r.Replace(s)
}
