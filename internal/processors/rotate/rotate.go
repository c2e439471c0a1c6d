package rotate

import (
	"context"
	"fmt"
	"strconv"

	"go-pdftools/internal/pdf"
	"go-pdftools/internal/pdferr"
	"go-pdftools/internal/processor"
	"go-pdftools/internal/utils"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/rs/zerolog"
)

const formName = "Pg0"

// Processor implements processor.Processor for custom rotation.
type Processor struct {
	processor.Base
	limits processor.Limits
	log    zerolog.Logger
}

// New creates a rotate processor.
func New(limits processor.Limits, log zerolog.Logger) *Processor {
	limits.MaxFiles = 1
	return &Processor{limits: limits, log: log.With().Str("processor", "rotate").Logger()}
}

// Validate implements processor.Processor.
func (p *Processor) Validate(ctx context.Context, files []processor.File) processor.ValidationResult {
	return processor.ValidatePDFFiles(files, p.limits)
}

// Process implements processor.Processor.
//
// Options:
//   - rotations: map of zero-based page index to degrees
//   - angle: degrees for pages not listed in rotations (default 0)
func (p *Processor) Process(ctx context.Context, in processor.Input, onProgress processor.ProgressFunc) processor.Output {
	return p.Run(ctx, onProgress, func(ctx context.Context, cp processor.Checkpointer) (processor.Output, error) {
		return p.rotate(in, cp)
	})
}

// Rotations maps zero-based page indexes to degrees.
type Rotations map[int]int

// ParseRotations reads the rotations option. Keys may be strings, as they
// are after JSON decoding.
func ParseRotations(opts processor.Options) (Rotations, error) {
	var raw map[string]int
	if err := opts.Decode("rotations", &raw); err != nil {
		return nil, err
	}
	out := make(Rotations, len(raw))
	for k, v := range raw {
		idx, err := strconv.Atoi(k)
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("rotation key %q is not a page index", k)
		}
		out[idx] = v
	}
	return out, nil
}

func (p *Processor) rotate(in processor.Input, cp processor.Checkpointer) (processor.Output, error) {
	if len(in.Files) != 1 {
		return processor.Output{}, pdferr.New(pdferr.InvalidOptions, "exactly one file is required", nil)
	}
	rotations, err := ParseRotations(in.Options)
	if err != nil {
		return processor.Output{}, pdferr.Wrap(pdferr.InvalidOptions, err, nil)
	}
	angle, err := in.Options.Int("angle", 0)
	if err != nil {
		return processor.Output{}, pdferr.Wrap(pdferr.InvalidOptions, err, nil)
	}

	file := in.Files[0]
	data, err := file.Bytes()
	if err != nil {
		return processor.Output{}, pdferr.Wrap(pdferr.FileReadFailed, err, nil)
	}
	cp.Report(10, "Loading document")
	ctx, err := pdf.LoadNamed(file.Name(), data)
	if err != nil {
		return processor.Output{}, err
	}
	if err := cp.Checkpoint(30, "Rotating pages"); err != nil {
		return processor.Output{}, err
	}

	reembedded := 0
	for i := 0; i < ctx.PageCount; i++ {
		requested, ok := rotations[i]
		if !ok {
			requested = angle
		}
		changed, err := RotatePage(ctx, i+1, requested)
		if err != nil {
			return processor.Output{}, pdferr.Wrap(pdferr.ProcessingFailed, err, nil)
		}
		if changed {
			reembedded++
		}
		if err := cp.Checkpoint(processor.Step(30, 90, i+1, ctx.PageCount), fmt.Sprintf("Rotated page %d of %d", i+1, ctx.PageCount)); err != nil {
			return processor.Output{}, err
		}
	}

	result, err := pdf.Save(ctx)
	if err != nil {
		return processor.Output{}, err
	}
	cp.Report(95, "Saved")

	p.log.Debug().Int("pages", ctx.PageCount).Int("reembedded", reembedded).Msg("rotation complete")

	return processor.Output{
		Result:      result,
		Filename:    utils.WithSuffix(file.Name(), "-rotated", ".pdf"),
		ContentType: "application/pdf",
		Metadata: map[string]any{
			"pageCount":       ctx.PageCount,
			"reembeddedPages": reembedded,
		},
	}, nil
}

// RotatePage applies requested degrees on top of the page's current
// rotation. It reports whether the page had to be re-embedded.
func RotatePage(ctx *model.Context, pageNr, requested int) (bool, error) {
	page, err := pdf.PageInfo(ctx, pageNr)
	if err != nil {
		return false, err
	}
	total := page.Rotate + requested
	if IsQuarterTurn(total) {
		if requested != 0 {
			pdf.SetRotation(page, total)
		}
		return false, nil
	}

	form, err := pdf.EmbedPage(ctx, page)
	if err != nil {
		return false, err
	}
	box := page.Box
	newW, newH := RotatedSize(box.Width(), box.Height(), total)
	m := RotationMatrix(box.LL.X, box.LL.Y, box.Width(), box.Height(), total, newW, newH)

	content := fmt.Sprintf("q %s cm /%s Do Q\n", m, formName)
	resources := types.Dict{
		"XObject": types.Dict{formName: *form},
	}
	if err := pdf.ReplacePage(ctx, page, types.RectForWidthAndHeight(0, 0, newW, newH), []byte(content), resources); err != nil {
		return false, err
	}
	return true, nil
}
