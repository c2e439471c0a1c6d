// Package processor defines the lifecycle every PDF transform follows.
//
// A processor validates its input files, runs one Process call at a time,
// reports monotonically increasing progress through a ProgressFunc and checks
// for cancellation at page or file boundaries. Failures never cross the
// Process boundary as raw errors or panics: they come back as an Output with
// Success set to false and a *pdferr.PDFError attached.
package processor

import (
	"context"

	"go-pdftools/internal/pdferr"
)

// ProgressFunc receives progress in [0,100] and an optional message. It is
// called synchronously from the goroutine running Process.
type ProgressFunc func(percent int, message string)

// Input is the immutable request passed to Process.
type Input struct {
	Files   []File
	Options Options
}

// Artifact is one named output blob.
type Artifact struct {
	Filename string
	Data     []byte
}

// Output is the result of Process. Result (or Results) is meaningful only
// when Success is true, Error only when it is false.
type Output struct {
	Success     bool
	Result      []byte
	Results     []Artifact
	Filename    string
	ContentType string
	Error       *pdferr.PDFError
	Metadata    map[string]any
}

// Failed builds an unsuccessful Output.
func Failed(err *pdferr.PDFError) Output {
	return Output{Success: false, Error: err}
}

// ValidationResult is the outcome of a pre-flight check.
type ValidationResult struct {
	Valid  bool
	Errors []*pdferr.PDFError
}

// Add appends err and marks the result invalid.
func (v *ValidationResult) Add(err *pdferr.PDFError) {
	v.Errors = append(v.Errors, err)
	v.Valid = false
}

// First returns the first collected error, or nil.
func (v ValidationResult) First() *pdferr.PDFError {
	if len(v.Errors) == 0 {
		return nil
	}
	return v.Errors[0]
}

// Processor is implemented by every PDF transform.
type Processor interface {
	Validate(ctx context.Context, files []File) ValidationResult
	Process(ctx context.Context, in Input, onProgress ProgressFunc) Output
	Cancel()
	Progress() int
	Reset()
}
