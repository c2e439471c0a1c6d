package processor

import (
	"context"
	"fmt"
	"sync/atomic"

	"go-pdftools/internal/pdferr"
)

// Checkpointer is what page-level loops receive. Checkpoint reports progress
// and returns a PROCESSING_CANCELLED error once the run should stop.
type Checkpointer interface {
	Checkpoint(percent int, message string) error
	Report(percent int, message string)
}

// Tracker holds the progress counter and cancellation flag of one run.
// Cancel and Progress may be called from any goroutine.
type Tracker struct {
	progress   atomic.Int32
	cancelled  atomic.Bool
	ctx        context.Context
	onProgress ProgressFunc
}

// NewTracker returns a tracker bound to ctx that forwards reports to fn.
func NewTracker(ctx context.Context, fn ProgressFunc) *Tracker {
	t := &Tracker{}
	t.begin(ctx, fn)
	return t
}

func (t *Tracker) begin(ctx context.Context, fn ProgressFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	t.progress.Store(0)
	t.ctx = ctx
	t.onProgress = fn
}

// Report records percent if it is higher than the last value and forwards it
// to the callback. Values are clamped to [0,100].
func (t *Tracker) Report(percent int, message string) {
	percent = max(0, min(100, percent))
	for {
		cur := t.progress.Load()
		if int32(percent) < cur {
			percent = int(cur)
			break
		}
		if t.progress.CompareAndSwap(cur, int32(percent)) {
			break
		}
	}
	if t.onProgress != nil {
		t.onProgress(percent, message)
	}
}

// Checkpoint reports progress, then returns an error if the run was
// cancelled or its context is done.
func (t *Tracker) Checkpoint(percent int, message string) error {
	if err := t.Err(); err != nil {
		return err
	}
	t.Report(percent, message)
	return nil
}

// Err returns the cancellation error without reporting progress.
func (t *Tracker) Err() error {
	if t.cancelled.Load() {
		return pdferr.New(pdferr.ProcessingCancelled, "", nil)
	}
	if t.ctx != nil {
		if err := t.ctx.Err(); err != nil {
			return pdferr.ToPDFError(err)
		}
	}
	return nil
}

// Cancel asks the run to stop at its next checkpoint.
func (t *Tracker) Cancel() {
	t.cancelled.Store(true)
}

// Progress returns the last reported percent.
func (t *Tracker) Progress() int {
	return int(t.progress.Load())
}

// Step maps item i of n onto the [from,to] progress band.
func Step(from, to, i, n int) int {
	if n <= 0 {
		return to
	}
	return from + (to-from)*i/n
}

// Base gives a processor implementation the Cancel, Progress, Reset and
// Process plumbing. Embed it and call Run from Process.
type Base struct {
	tracker Tracker
	busy    atomic.Bool
}

// Cancel implements Processor. A Cancel issued while no run is active applies
// to the next run, which then fails with PROCESSING_CANCELLED before doing any
// work. Reset discards it.
func (b *Base) Cancel() { b.tracker.Cancel() }

// Progress implements Processor.
func (b *Base) Progress() int { return b.tracker.Progress() }

// Reset implements Processor.
func (b *Base) Reset() {
	b.tracker.progress.Store(0)
	b.tracker.cancelled.Store(false)
}

// RunFunc is the body of a processor run.
type RunFunc func(ctx context.Context, cp Checkpointer) (Output, error)

// Run executes fn as a single run: it resets progress, refuses overlapping
// calls, converts errors and panics into a failed Output and reports 100 on
// success. The cancellation flag is cleared when the run returns.
func (b *Base) Run(ctx context.Context, onProgress ProgressFunc, fn RunFunc) (out Output) {
	if !b.busy.CompareAndSwap(false, true) {
		return Failed(pdferr.New(pdferr.ProcessingFailed, "processor is already running", nil))
	}
	defer b.busy.Store(false)

	b.tracker.begin(ctx, onProgress)
	defer b.tracker.cancelled.Store(false)

	defer func() {
		if r := recover(); r != nil {
			if err, ok := r.(error); ok {
				r = fmt.Errorf("panic: %w", err)
			}
			out = Failed(pdferr.ToPDFError(r))
		}
	}()

	if err := b.tracker.Err(); err != nil {
		return Failed(pdferr.ToPDFError(err))
	}
	res, err := fn(b.tracker.ctx, &b.tracker)
	if err != nil {
		return Failed(pdferr.ToPDFError(err))
	}
	if !res.Success && res.Error != nil {
		return res
	}
	res.Success = true
	res.Error = nil
	b.tracker.Report(100, "Done")
	return res
}
