// Package compress hands compress and linearize jobs to an engine and maps
// the engine's message stream onto the processor lifecycle.
package compress

import (
	"context"
	"errors"

	"go-pdftools/internal/engine"
	"go-pdftools/internal/pdferr"
	"go-pdftools/internal/processor"
	"go-pdftools/internal/utils"

	"github.com/rs/zerolog"
)

// Processor implements processor.Processor on top of an engine.Engine.
type Processor struct {
	processor.Base
	command engine.Command
	engine  engine.Engine
	limits  processor.Limits
	log     zerolog.Logger
}

// New creates a processor that runs command on eng.
func New(command engine.Command, eng engine.Engine, limits processor.Limits, log zerolog.Logger) *Processor {
	limits.MaxFiles = 1
	return &Processor{
		command: command,
		engine:  eng,
		limits:  limits,
		log:     log.With().Str("processor", string(command)).Str("engine", eng.Name()).Logger(),
	}
}

// Validate implements processor.Processor.
func (p *Processor) Validate(ctx context.Context, files []processor.File) processor.ValidationResult {
	return processor.ValidatePDFFiles(files, p.limits)
}

// Process implements processor.Processor. Options are passed through to the
// engine unchanged.
func (p *Processor) Process(ctx context.Context, in processor.Input, onProgress processor.ProgressFunc) processor.Output {
	return p.Run(ctx, onProgress, func(ctx context.Context, cp processor.Checkpointer) (processor.Output, error) {
		return p.run(ctx, in, cp)
	})
}

func (p *Processor) run(ctx context.Context, in processor.Input, cp processor.Checkpointer) (processor.Output, error) {
	if len(in.Files) != 1 {
		return processor.Output{}, pdferr.New(pdferr.InvalidOptions, "exactly one file is required", nil)
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
	if err := cp.Checkpoint(10, "Starting engine"); err != nil {
		return processor.Output{}, err
	}

	// Cancel flips the run context so the engine stops too.
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	result, err := engine.Invoke(runCtx, p.engine, engine.Request{
		Command: p.command,
		PDFData: data,
		Options: in.Options,
	}, func(pct int, msg string) {
		if cp.Checkpoint(processor.Step(10, 95, max(0, min(100, pct)), 100), msg) != nil {
			cancel()
		}
	})
	if cerr := cp.Checkpoint(95, "Finishing"); cerr != nil {
		return processor.Output{}, cerr
	}
	if err != nil {
		return processor.Output{}, err
	}
	if len(result) == 0 {
		return processor.Output{}, pdferr.Wrap(pdferr.WorkerFailed, errors.New("engine returned an empty document"), nil)
	}

	ratio := 0.0
	if len(data) > 0 {
		ratio = 1 - float64(len(result))/float64(len(data))
	}
	p.log.Debug().Int("originalSize", len(data)).Int("resultSize", len(result)).Msg("engine job complete")

	return processor.Output{
		Result:      result,
		Filename:    utils.WithSuffix(file.Name(), suffix(p.command), ".pdf"),
		ContentType: "application/pdf",
		Metadata: map[string]any{
			"engine":           p.engine.Name(),
			"originalSize":     len(data),
			"resultSize":       len(result),
			"compressionRatio": ratio,
		},
	}, nil
}

func suffix(c engine.Command) string {
	switch c {
	case engine.Compress:
		return "-compressed"
	case engine.Linearize:
		return "-linearized"
	}
	return "-" + string(c)
}
