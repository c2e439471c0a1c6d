// Package pdf wraps pdfcpu for the processors.
//
// Functions:
//   - Load: parses and validates a PDF held in memory.
//     Input: raw bytes. Output: *model.Context or a classified *pdferr.PDFError.
//   - Save: serialises a context, writing object and xref streams.
//   - Merge: concatenates documents and drops the bookmarks merging creates.
//   - ExtractPage: copies one page into a standalone document.
//   - Optimize: rewrites a document with pdfcpu's optimiser.
//   - Grid: lays pages out on R×C grids.
//
// page.go holds the page-level helpers used to rewrite geometry and content.
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"go-pdftools/internal/pdferr"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// NewConfiguration returns the pdfcpu configuration every helper uses.
func NewConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.WriteObjectStream = true
	conf.WriteXRefStream = true
	return conf
}

// Load parses data into a pdfcpu context. Failures are classified as
// FILE_EMPTY, FILE_NOT_PDF, PDF_ENCRYPTED, FILE_CORRUPTED or PDF_NO_PAGES.
func Load(data []byte) (*model.Context, error) {
	if len(data) == 0 {
		return nil, pdferr.New(pdferr.FileEmpty, "", nil)
	}
	if !hasHeader(data) {
		return nil, pdferr.New(pdferr.FileNotPDF, "missing %PDF- header", nil)
	}

	ctx, err := pdfapi.ReadValidateAndOptimize(bytes.NewReader(data), NewConfiguration())
	if err != nil {
		return nil, classifyReadError(err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, pdferr.Wrap(pdferr.PDFMalformed, err, nil)
	}
	if ctx.PageCount == 0 {
		return nil, pdferr.New(pdferr.PDFNoPages, "", nil)
	}
	return ctx, nil
}

// LoadNamed is Load with the file name added to the error details.
func LoadNamed(name string, data []byte) (*model.Context, error) {
	ctx, err := Load(data)
	if err != nil {
		var pe *pdferr.PDFError
		if errors.As(err, &pe) {
			if pe.Details == "" {
				pe.Details = name
			} else {
				pe.Details = name + ": " + pe.Details
			}
		}
		return nil, err
	}
	return ctx, nil
}

// PageCount returns the number of pages in data.
func PageCount(data []byte) (int, error) {
	ctx, err := Load(data)
	if err != nil {
		return 0, err
	}
	return ctx.PageCount, nil
}

// Save writes ctx using object streams where possible.
func Save(ctx *model.Context) ([]byte, error) {
	ctx.Configuration.WriteObjectStream = true
	ctx.Configuration.WriteXRefStream = true

	var buf bytes.Buffer
	if err := pdfapi.WriteContext(ctx, &buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// Merge concatenates docs in order. Bookmarks pdfcpu adds per input file are
// removed from the result.
func Merge(docs [][]byte) ([]byte, error) {
	if len(docs) == 0 {
		return nil, errors.New("nothing to merge")
	}
	if len(docs) == 1 {
		return docs[0], nil
	}
	readers := make([]io.ReadSeeker, len(docs))
	for i, d := range docs {
		readers[i] = bytes.NewReader(d)
	}

	var out bytes.Buffer
	if err := pdfapi.MergeRaw(readers, &out, false, NewConfiguration()); err != nil {
		return nil, fmt.Errorf("failed to merge PDFs: %w", err)
	}
	return RemoveBookmarks(out.Bytes())
}

// RemoveBookmarks drops the document outline.
func RemoveBookmarks(data []byte) ([]byte, error) {
	ctx, err := Load(data)
	if err != nil {
		return nil, err
	}
	root, err := ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	delete(root, "Outlines")
	return Save(ctx)
}

// ExtractPage returns page pageNr of ctx as a standalone document.
func ExtractPage(ctx *model.Context, pageNr int) ([]byte, error) {
	pageCtx, err := pdfcpu.ExtractPages(ctx, []int{pageNr}, false)
	if err != nil {
		return nil, fmt.Errorf("failed to extract page %d: %w", pageNr, err)
	}
	return Save(pageCtx)
}

// Optimize runs pdfcpu's optimiser over data.
func Optimize(data []byte) ([]byte, error) {
	var out bytes.Buffer
	if err := pdfapi.Optimize(bytes.NewReader(data), &out, NewConfiguration()); err != nil {
		return nil, classifyReadError(err)
	}
	return out.Bytes(), nil
}

// Grid lays the pages of data out rows×cols per output page in row-major
// order. Each page is scaled to fit its cell and centred.
func Grid(data []byte, rows, cols int) ([]byte, error) {
	conf := NewConfiguration()
	nup, err := pdfapi.PDFGridConfig(rows, cols, "", conf)
	if err != nil {
		return nil, pdferr.Wrap(pdferr.InvalidOptions, err, nil)
	}
	nup.Border = false

	var out bytes.Buffer
	if err := pdfapi.NUp(bytes.NewReader(data), &out, nil, nil, nup, conf); err != nil {
		return nil, fmt.Errorf("failed to lay out grid: %w", err)
	}
	return out.Bytes(), nil
}

func hasHeader(data []byte) bool {
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	return bytes.Contains(head, []byte("%PDF-"))
}

func classifyReadError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case errors.Is(err, pdfcpu.ErrWrongPassword),
		strings.Contains(msg, "password"),
		strings.Contains(msg, "encrypt"):
		return pdferr.Wrap(pdferr.PDFEncrypted, err, nil)
	default:
		return pdferr.Wrap(pdferr.FileCorrupted, err, nil)
	}
}
