package gridcombine

import (
	"context"
	"fmt"

	"go-pdftools/internal/pdf"
	"go-pdftools/internal/pdferr"
	"go-pdftools/internal/processor"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/rs/zerolog"
)

const (
	DefaultLayout = "2x2"
	OutputName    = "grid-combined.pdf"
)

// Processor implements processor.Processor for grid combination.
type Processor struct {
	processor.Base
	limits processor.Limits
	log    zerolog.Logger
}

// New creates a grid-combine processor.
func New(limits processor.Limits, log zerolog.Logger) *Processor {
	return &Processor{limits: limits, log: log.With().Str("processor", "grid-combine").Logger()}
}

// Validate implements processor.Processor.
func (p *Processor) Validate(ctx context.Context, files []processor.File) processor.ValidationResult {
	return processor.ValidatePDFFiles(files, p.limits)
}

// Process implements processor.Processor.
func (p *Processor) Process(ctx context.Context, in processor.Input, onProgress processor.ProgressFunc) processor.Output {
	return p.Run(ctx, onProgress, func(ctx context.Context, cp processor.Checkpointer) (processor.Output, error) {
		return p.combine(in, cp)
	})
}

type settings struct {
	layout   Layout
	pageMode PageMode
	fillMode FillMode
}

func parseSettings(opts processor.Options) (settings, error) {
	layout, err := ParseLayout(opts.String("gridLayout", DefaultLayout))
	if err != nil {
		return settings{}, pdferr.Wrap(pdferr.InvalidOptions, err, nil)
	}
	pageMode, err := ParsePageMode(opts.String("pageMode", ""))
	if err != nil {
		return settings{}, pdferr.Wrap(pdferr.InvalidOptions, err, nil)
	}
	fillMode, err := ParseFillMode(opts.String("fillMode", ""))
	if err != nil {
		return settings{}, pdferr.Wrap(pdferr.InvalidOptions, err, nil)
	}
	return settings{layout: layout, pageMode: pageMode, fillMode: fillMode}, nil
}

func (p *Processor) combine(in processor.Input, cp processor.Checkpointer) (processor.Output, error) {
	if len(in.Files) == 0 {
		return processor.Output{}, pdferr.New(pdferr.InvalidOptions, "no files provided", nil)
	}
	s, err := parseSettings(in.Options)
	if err != nil {
		return processor.Output{}, err
	}
	cp.Report(5, "Reading files")

	raw, err := processor.ReadAll(in.Files)
	if err != nil {
		return processor.Output{}, err
	}

	// Every file must parse before any output is produced.
	docs := make([]*model.Context, len(raw))
	counts := make([]int, len(raw))
	for i, data := range raw {
		if err := cp.Checkpoint(processor.Step(5, 10, i, len(raw)), fmt.Sprintf("Loading %s", in.Files[i].Name())); err != nil {
			return processor.Output{}, err
		}
		ctx, err := pdf.LoadNamed(in.Files[i].Name(), data)
		if err != nil {
			return processor.Output{}, err
		}
		docs[i], counts[i] = ctx, ctx.PageCount
	}

	plan := BuildPlan(counts, s.layout, s.pageMode, s.fillMode)
	p.log.Debug().
		Str("layout", s.layout.String()).
		Str("pageMode", string(s.pageMode)).
		Str("fillMode", string(s.fillMode)).
		Int("placed", len(plan.Placed)).
		Int("outputPages", plan.OutputPages).
		Msg("grid plan built")

	sequence, err := p.assemble(docs, plan, cp)
	if err != nil {
		return processor.Output{}, err
	}

	if err := cp.Checkpoint(70, "Laying out grid"); err != nil {
		return processor.Output{}, err
	}
	result, err := pdf.Grid(sequence, s.layout.Rows, s.layout.Cols)
	if err != nil {
		return processor.Output{}, err
	}
	cp.Report(95, "Saving")

	return processor.Output{
		Result:      result,
		Filename:    OutputName,
		ContentType: "application/pdf",
		Metadata: map[string]any{
			"outputPageCount":   plan.OutputPages,
			"originalPageCount": len(plan.Placed),
			"cellsPerPage":      s.layout.Cells(),
		},
	}, nil
}

// assemble builds one document holding the placed pages in cell order.
// Pages used more than once are extracted once.
func (p *Processor) assemble(docs []*model.Context, plan Plan, cp processor.Checkpointer) ([]byte, error) {
	cache := make(map[PageRef][]byte)
	parts := make([][]byte, 0, len(plan.Placed))
	for i, ref := range plan.Placed {
		if err := cp.Checkpoint(processor.Step(10, 70, i, len(plan.Placed)), fmt.Sprintf("Placing page %d of %d", i+1, len(plan.Placed))); err != nil {
			return nil, err
		}
		data, ok := cache[ref]
		if !ok {
			var err error
			data, err = pdf.ExtractPage(docs[ref.File], ref.Page)
			if err != nil {
				return nil, pdferr.Wrap(pdferr.ProcessingFailed, err, nil)
			}
			cache[ref] = data
		}
		parts = append(parts, data)
	}
	merged, err := pdf.Merge(parts)
	if err != nil {
		return nil, pdferr.Wrap(pdferr.ProcessingFailed, err, nil)
	}
	return merged, nil
}
