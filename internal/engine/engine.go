// Package engine runs PDF jobs on an out-of-process style worker.
//
// A worker receives one Request and answers with a stream of Messages:
// zero or more "progress" messages followed by exactly one terminal
// "success" or "error" message. Native runs the job with pdfcpu in process;
// Wasm hosts a WASI build of an external tool under wazero.
package engine

import (
	"context"
	"errors"
	"fmt"

	"go-pdftools/internal/pdferr"
)

// Command names the job a worker runs.
type Command string

const (
	Compress  Command = "compress"
	Linearize Command = "linearize"
)

// Status marks a message as progress or terminal.
type Status string

const (
	StatusProgress Status = "progress"
	StatusSuccess  Status = "success"
	StatusError    Status = "error"
)

// Request is the job sent to a worker.
type Request struct {
	Command Command        `json:"command"`
	PDFData []byte         `json:"pdfData"`
	Options map[string]any `json:"options,omitempty"`
}

// Message is one worker reply.
type Message struct {
	Status   Status `json:"status"`
	Progress int    `json:"progress,omitempty"`
	Message  string `json:"message,omitempty"`
	Data     []byte `json:"data,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Terminal reports whether m ends the job.
func (m Message) Terminal() bool {
	return m.Status == StatusSuccess || m.Status == StatusError
}

// Engine runs requests. Run delivers messages to emit in order and returns
// a non-nil error only when the worker itself could not be driven.
type Engine interface {
	Name() string
	Run(ctx context.Context, req Request, emit func(Message)) error
}

var ErrNoResult = errors.New("worker finished without a result")

// Invoke runs req on e and folds the message stream into a result.
// Progress messages are forwarded to onProgress. Messages after the first
// terminal one are ignored.
func Invoke(ctx context.Context, e Engine, req Request, onProgress func(int, string)) ([]byte, error) {
	var (
		done   bool
		result []byte
		failed string
	)
	err := e.Run(ctx, req, func(m Message) {
		if done {
			return
		}
		switch m.Status {
		case StatusProgress:
			if onProgress != nil {
				onProgress(m.Progress, m.Message)
			}
		case StatusSuccess:
			done, result = true, m.Data
		case StatusError:
			done, failed = true, m.Error
			if failed == "" {
				failed = m.Message
			}
		}
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, pdferr.Wrap(pdferr.ProcessingCancelled, ctx.Err(), nil)
		}
		return nil, pdferr.Wrap(pdferr.WorkerFailed, fmt.Errorf("%s engine: %w", e.Name(), err), nil)
	}
	switch {
	case !done:
		return nil, pdferr.Wrap(pdferr.WorkerFailed, fmt.Errorf("%s engine: %w", e.Name(), ErrNoResult), nil)
	case failed != "":
		return nil, pdferr.New(pdferr.WorkerFailed, fmt.Sprintf("%s engine: %s", e.Name(), failed), nil)
	}
	return result, nil
}
