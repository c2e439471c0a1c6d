// Package split breaks a PDF into one document per page.
package split

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"

	"go-pdftools/internal/pdf"
	"go-pdftools/internal/pdferr"
	"go-pdftools/internal/processor"
	"go-pdftools/internal/utils"

	"github.com/rs/zerolog"
)

// Processor implements processor.Processor for splitting.
type Processor struct {
	processor.Base
	limits processor.Limits
	log    zerolog.Logger
}

// New creates a split processor.
func New(limits processor.Limits, log zerolog.Logger) *Processor {
	limits.MaxFiles = 1
	return &Processor{limits: limits, log: log.With().Str("processor", "split").Logger()}
}

// Validate implements processor.Processor.
func (p *Processor) Validate(ctx context.Context, files []processor.File) processor.ValidationResult {
	return processor.ValidatePDFFiles(files, p.limits)
}

// Process implements processor.Processor. Every page becomes an Artifact in
// Results; Result holds the same documents as a ZIP archive.
//
// Options:
//   - pages: 1-based page list, default all pages
func (p *Processor) Process(ctx context.Context, in processor.Input, onProgress processor.ProgressFunc) processor.Output {
	return p.Run(ctx, onProgress, func(ctx context.Context, cp processor.Checkpointer) (processor.Output, error) {
		return p.split(in, cp)
	})
}

func (p *Processor) split(in processor.Input, cp processor.Checkpointer) (processor.Output, error) {
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
	cp.Report(5, "Loading document")
	ctx, err := pdf.LoadNamed(file.Name(), data)
	if err != nil {
		return processor.Output{}, err
	}

	pages := selected
	if len(pages) == 0 {
		pages = make([]int, ctx.PageCount)
		for i := range pages {
			pages[i] = i + 1
		}
	}
	for _, n := range pages {
		if n < 1 || n > ctx.PageCount {
			return processor.Output{}, pdferr.New(pdferr.InvalidPageRange, fmt.Sprintf("document has %d pages", ctx.PageCount), pdferr.Params{"range": n})
		}
	}

	stem := utils.Stem(file.Name())
	artifacts := make([]processor.Artifact, 0, len(pages))
	for i, n := range pages {
		if err := cp.Checkpoint(processor.Step(10, 85, i, len(pages)), fmt.Sprintf("Extracting page %d", n)); err != nil {
			return processor.Output{}, err
		}
		page, err := pdf.ExtractPage(ctx, n)
		if err != nil {
			return processor.Output{}, pdferr.Wrap(pdferr.ProcessingFailed, err, nil)
		}
		artifacts = append(artifacts, processor.Artifact{
			Filename: fmt.Sprintf("%s-page-%d.pdf", stem, n),
			Data:     page,
		})
	}

	if err := cp.Checkpoint(85, "Packaging pages"); err != nil {
		return processor.Output{}, err
	}
	archive, err := Archive(artifacts)
	if err != nil {
		return processor.Output{}, pdferr.Wrap(pdferr.ProcessingFailed, err, nil)
	}

	return processor.Output{
		Result:      archive,
		Results:     artifacts,
		Filename:    stem + "-pages.zip",
		ContentType: "application/zip",
		Metadata: map[string]any{
			"pageCount": ctx.PageCount,
			"fileCount": len(artifacts),
		},
	}, nil
}

// Archive zips artifacts in order.
func Archive(artifacts []processor.Artifact) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, a := range artifacts {
		w, err := zw.Create(a.Filename)
		if err != nil {
			return nil, fmt.Errorf("failed to add %s: %w", a.Filename, err)
		}
		if _, err := w.Write(a.Data); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", a.Filename, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish archive: %w", err)
	}
	return buf.Bytes(), nil
}
