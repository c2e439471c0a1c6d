package ebook

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// textReader extracts the plain text layer, one page at a time.
type textReader struct {
	r *pdf.Reader
}

func newTextReader(data []byte) (tr *textReader, err error) {
	defer func() {
		if r := recover(); r != nil {
			tr, err = nil, fmt.Errorf("open pdf: %v", r)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return &textReader{r: r}, nil
}

func (t *textReader) NumPage() int { return t.r.NumPage() }

// PageText returns the text of page n (1-based). Images and layout are
// dropped. The parser panics on some malformed content streams, which is
// reported as an error.
func (t *textReader) PageText(n int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page %d: unreadable content: %v", n, r)
		}
	}()
	page := t.r.Page(n)
	if page.V.IsNull() {
		return "", fmt.Errorf("page %d not found", n)
	}
	text, err = page.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("page %d: %w", n, err)
	}
	return strings.TrimSpace(text), nil
}

// Paragraphs splits extracted text on blank lines and folds the remaining
// line breaks into spaces.
func Paragraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, block := range strings.Split(text, "\n\n") {
		p := strings.Join(strings.Fields(block), " ")
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
