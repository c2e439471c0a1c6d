package engine

import (
	"context"
	"fmt"

	"go-pdftools/internal/pdf"
)

// Native runs jobs in process with pdfcpu.
type Native struct{}

func (Native) Name() string { return "native" }

// Run implements Engine. Linearisation is not something pdfcpu can write,
// so linearize requests always end in an error message.
func (Native) Run(ctx context.Context, req Request, emit func(Message)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch req.Command {
	case Compress:
		emit(Message{Status: StatusProgress, Progress: 10, Message: "Optimizing"})
		out, err := pdf.Optimize(req.PDFData)
		if err != nil {
			emit(Message{Status: StatusError, Error: err.Error()})
			return nil
		}
		if len(out) > len(req.PDFData) {
			// Never hand back something larger than the input.
			out = req.PDFData
		}
		emit(Message{Status: StatusProgress, Progress: 90, Message: "Optimized"})
		emit(Message{Status: StatusSuccess, Data: out})
	case Linearize:
		emit(Message{Status: StatusError, Error: "linearization is not supported by the native engine"})
	default:
		emit(Message{Status: StatusError, Error: fmt.Sprintf("unknown command %q", req.Command)})
	}
	return nil
}
