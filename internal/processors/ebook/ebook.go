// Package ebook converts the text layer of a PDF into a reflowable EPUB 3
// book. Formatting and images are not carried over.
//
// The MOBI variant produces the same EPUB container under a .mobi name. It is
// not a MOBI binary; readers that insist on the real format will reject it.
package ebook

import (
	"context"
	"fmt"
	"time"

	"go-pdftools/internal/pdferr"
	"go-pdftools/internal/processor"
	"go-pdftools/internal/utils"

	"github.com/rs/zerolog"
)

// Format selects the output container name.
type Format string

const (
	EPUB Format = "epub"
	MOBI Format = "mobi"
)

// ContentType is the MIME type the format is served with.
func (f Format) ContentType() string {
	if f == MOBI {
		return "application/x-mobipocket-ebook"
	}
	return epubMimetype
}

// Processor implements processor.Processor for PDF to e-book conversion.
type Processor struct {
	processor.Base
	format Format
	limits processor.Limits
	log    zerolog.Logger
	now    func() time.Time
}

// New creates a converter producing format.
func New(format Format, limits processor.Limits, log zerolog.Logger) *Processor {
	limits.MaxFiles = 1
	return &Processor{
		format: format,
		limits: limits,
		log:    log.With().Str("processor", "pdf-to-"+string(format)).Logger(),
		now:    time.Now,
	}
}

// Validate implements processor.Processor.
func (p *Processor) Validate(ctx context.Context, files []processor.File) processor.ValidationResult {
	return processor.ValidatePDFFiles(files, p.limits)
}

// Process implements processor.Processor.
//
// Options:
//   - pages: 1-based page list, default all pages
//   - title: default the file name without extension
//   - author
//   - language: default "en"
func (p *Processor) Process(ctx context.Context, in processor.Input, onProgress processor.ProgressFunc) processor.Output {
	return p.Run(ctx, onProgress, func(ctx context.Context, cp processor.Checkpointer) (processor.Output, error) {
		return p.convert(in, cp)
	})
}

func (p *Processor) convert(in processor.Input, cp processor.Checkpointer) (processor.Output, error) {
	if len(in.Files) != 1 {
		return processor.Output{}, pdferr.New(pdferr.InvalidOptions, "exactly one file is required", nil)
	}
	selected, err := in.Options.IntSlice("pages")
	if err != nil {
		return processor.Output{}, pdferr.Wrap(pdferr.InvalidOptions, err, nil)
	}

	file := in.Files[0]
	data, err := file.Bytes()
	if err != nil {
		return processor.Output{}, pdferr.Wrap(pdferr.FileReadFailed, err, nil)
	}
	if len(data) == 0 {
		return processor.Output{}, pdferr.New(pdferr.FileEmpty, file.Name(), nil)
	}
	if !processor.LooksLikePDF(data) {
		return processor.Output{}, pdferr.New(pdferr.FileNotPDF, file.Name(), nil)
	}
	cp.Report(5, "Opening document")

	tr, err := newTextReader(data)
	if err != nil {
		return processor.Output{}, pdferr.Wrap(pdferr.FileCorrupted, err, nil)
	}
	total := tr.NumPage()
	if total == 0 {
		return processor.Output{}, pdferr.New(pdferr.PDFNoPages, file.Name(), nil)
	}
	pages, err := selectPages(selected, total)
	if err != nil {
		return processor.Output{}, err
	}
	if err := cp.Checkpoint(10, "Extracting text"); err != nil {
		return processor.Output{}, err
	}

	chapters := make([]Chapter, 0, len(pages))
	for i, n := range pages {
		text, err := tr.PageText(n)
		if err != nil {
			return processor.Output{}, pdferr.Wrap(pdferr.ProcessingFailed, err, nil)
		}
		chapters = append(chapters, Chapter{Page: n, Paragraphs: Paragraphs(text)})
		if err := cp.Checkpoint(processor.Step(10, 85, i+1, len(pages)), fmt.Sprintf("Extracted page %d", n)); err != nil {
			return processor.Output{}, err
		}
	}

	book := Book{
		Title:      in.Options.String("title", utils.Stem(file.Name())),
		Author:     in.Options.String("author", ""),
		Language:   in.Options.String("language", "en"),
		Identifier: "urn:uuid:" + utils.GenerateUUID(),
		Modified:   p.now(),
		Chapters:   chapters,
	}
	cp.Report(90, "Packaging book")
	result, err := book.Build()
	if err != nil {
		return processor.Output{}, pdferr.Wrap(pdferr.ProcessingFailed, err, nil)
	}

	p.log.Debug().Int("chapters", len(chapters)).Int("bytes", len(result)).Msg("e-book built")

	return processor.Output{
		Result:      result,
		Filename:    utils.WithSuffix(file.Name(), "", "."+string(p.format)),
		ContentType: p.format.ContentType(),
		Metadata: map[string]any{
			"pageCount":    total,
			"chapterCount": len(chapters),
			"title":        book.Title,
			"format":       string(EPUB),
		},
	}, nil
}

// selectPages validates a 1-based page list; an empty list selects every page.
func selectPages(selected []int, total int) ([]int, error) {
	if len(selected) == 0 {
		all := make([]int, total)
		for i := range all {
			all[i] = i + 1
		}
		return all, nil
	}
	for _, n := range selected {
		if n < 1 || n > total {
			return nil, pdferr.New(pdferr.InvalidPageRange, fmt.Sprintf("document has %d pages", total), pdferr.Params{"range": n})
		}
	}
	return selected, nil
}
