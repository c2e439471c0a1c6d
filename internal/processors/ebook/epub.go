package ebook

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"text/template"
	"time"
)

// Chapter is one page of extracted text.
type Chapter struct {
	Page       int
	Paragraphs []string
}

// Book is the content of an EPUB 3 package.
type Book struct {
	Title      string
	Author     string
	Language   string
	Identifier string
	Modified   time.Time
	Chapters   []Chapter
}

// File names inside the container.
const (
	MimetypePath  = "mimetype"
	ContainerPath = "META-INF/container.xml"
	OPFPath       = "OEBPS/content.opf"
	NCXPath       = "OEBPS/toc.ncx"
	NavPath       = "OEBPS/nav.xhtml"

	epubMimetype = "application/epub+zip"
)

// ChapterFile is the container-relative name of chapter i (0-based).
func ChapterFile(i int) string {
	return fmt.Sprintf("chapter-%d.xhtml", i+1)
}

var templates = template.Must(template.New("epub").Funcs(template.FuncMap{
	"esc":     escapeXML,
	"chapter": ChapterFile,
	"inc":     func(i int) int { return i + 1 },
}).Parse(`
{{- define "container" -}}
<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>
{{end}}

{{- define "opf" -}}
<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="book-id">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:identifier id="book-id">{{esc .Identifier}}</dc:identifier>
    <dc:title>{{esc .Title}}</dc:title>
    <dc:language>{{esc .Language}}</dc:language>
{{- if .Author}}
    <dc:creator>{{esc .Author}}</dc:creator>
{{- end}}
    <meta property="dcterms:modified">{{.Modified.UTC.Format "2006-01-02T15:04:05Z"}}</meta>
  </metadata>
  <manifest>
    <item id="nav" href="nav.xhtml" media-type="application/xhtml+xml" properties="nav"/>
    <item id="ncx" href="toc.ncx" media-type="application/x-dtbncx+xml"/>
{{- range $i, $c := .Chapters}}
    <item id="chapter-{{inc $i}}" href="{{chapter $i}}" media-type="application/xhtml+xml"/>
{{- end}}
  </manifest>
  <spine toc="ncx">
{{- range $i, $c := .Chapters}}
    <itemref idref="chapter-{{inc $i}}"/>
{{- end}}
  </spine>
</package>
{{end}}

{{- define "ncx" -}}
<?xml version="1.0" encoding="UTF-8"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1">
  <head>
    <meta name="dtb:uid" content="{{esc .Identifier}}"/>
  </head>
  <docTitle><text>{{esc .Title}}</text></docTitle>
  <navMap>
    <navPoint id="nav-1" playOrder="1">
      <navLabel><text>{{esc .Title}}</text></navLabel>
      <content src="{{chapter 0}}"/>
    </navPoint>
  </navMap>
</ncx>
{{end}}

{{- define "nav" -}}
<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops" lang="{{esc .Language}}">
<head><title>{{esc .Title}}</title></head>
<body>
  <nav epub:type="toc">
    <ol>
{{- range $i, $c := .Chapters}}
      <li><a href="{{chapter $i}}">Page {{$c.Page}}</a></li>
{{- end}}
    </ol>
  </nav>
</body>
</html>
{{end}}

{{- define "chapter" -}}
<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml" lang="{{esc .Language}}">
<head><title>Page {{.Chapter.Page}}</title></head>
<body>
{{- range .Chapter.Paragraphs}}
  <p>{{esc .}}</p>
{{- end}}
</body>
</html>
{{end}}
`))

// Build writes b as a zipped EPUB 3 container. The mimetype entry comes
// first and is stored uncompressed.
func (b Book) Build() ([]byte, error) {
	if len(b.Chapters) == 0 {
		return nil, fmt.Errorf("book has no chapters")
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	w, err := zw.CreateHeader(&zip.FileHeader{Name: MimetypePath, Method: zip.Store})
	if err != nil {
		return nil, err
	}
	if _, err := w.Write([]byte(epubMimetype)); err != nil {
		return nil, err
	}

	entries := []entry{
		{ContainerPath, "container", b},
		{OPFPath, "opf", b},
		{NCXPath, "ncx", b},
		{NavPath, "nav", b},
	}
	for i, c := range b.Chapters {
		entries = append(entries, entry{"OEBPS/" + ChapterFile(i), "chapter", chapterPage{b.Language, c}})
	}

	for _, e := range entries {
		w, err := zw.Create(e.path)
		if err != nil {
			return nil, fmt.Errorf("failed to add %s: %w", e.path, err)
		}
		if err := templates.ExecuteTemplate(w, e.tmpl, e.data); err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", e.path, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish epub: %w", err)
	}
	return buf.Bytes(), nil
}

type entry struct {
	path, tmpl string
	data       any
}

type chapterPage struct {
	Language string
	Chapter  Chapter
}

func escapeXML(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
