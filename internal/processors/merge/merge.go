// Package merge concatenates PDFs in upload order.
package merge

import (
	"context"
	"fmt"

	"go-pdftools/internal/pdf"
	"go-pdftools/internal/pdferr"
	"go-pdftools/internal/processor"

	"github.com/rs/zerolog"
)

const OutputName = "merged.pdf"

// Processor implements processor.Processor for merging.
type Processor struct {
	processor.Base
	limits processor.Limits
	log    zerolog.Logger
}

// New creates a merge processor. At least two files are required.
func New(limits processor.Limits, log zerolog.Logger) *Processor {
	if limits.MinFiles < 2 {
		limits.MinFiles = 2
	}
	return &Processor{limits: limits, log: log.With().Str("processor", "merge").Logger()}
}

// Validate implements processor.Processor.
func (p *Processor) Validate(ctx context.Context, files []processor.File) processor.ValidationResult {
	return processor.ValidatePDFFiles(files, p.limits)
}

// Process implements processor.Processor. The merged document keeps no
// bookmarks.
func (p *Processor) Process(ctx context.Context, in processor.Input, onProgress processor.ProgressFunc) processor.Output {
	return p.Run(ctx, onProgress, func(ctx context.Context, cp processor.Checkpointer) (processor.Output, error) {
		return p.merge(in, cp)
	})
}

func (p *Processor) merge(in processor.Input, cp processor.Checkpointer) (processor.Output, error) {
	if len(in.Files) < p.limits.MinFiles {
		return processor.Output{}, pdferr.New(pdferr.TooFewFiles, "", pdferr.Params{"minFiles": p.limits.MinFiles})
	}
	raw, err := processor.ReadAll(in.Files)
	if err != nil {
		return processor.Output{}, err
	}

	pages := 0
	for i, data := range raw {
		if err := cp.Checkpoint(processor.Step(0, 50, i, len(raw)), fmt.Sprintf("Checking %s", in.Files[i].Name())); err != nil {
			return processor.Output{}, err
		}
		ctx, err := pdf.LoadNamed(in.Files[i].Name(), data)
		if err != nil {
			return processor.Output{}, err
		}
		pages += ctx.PageCount
	}

	if err := cp.Checkpoint(50, "Merging"); err != nil {
		return processor.Output{}, err
	}
	result, err := pdf.Merge(raw)
	if err != nil {
		return processor.Output{}, pdferr.Wrap(pdferr.ProcessingFailed, err, nil)
	}
	cp.Report(95, "Merged")

	p.log.Debug().Int("files", len(raw)).Int("pages", pages).Msg("merge complete")

	return processor.Output{
		Result:      result,
		Filename:    OutputName,
		ContentType: "application/pdf",
		Metadata: map[string]any{
			"fileCount": len(raw),
			"pageCount": pages,
		},
	}, nil
}
