package processor

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go-pdftools/internal/pdferr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProcessor struct {
	Base
	body RunFunc
}

func (p *fakeProcessor) Validate(ctx context.Context, files []File) ValidationResult {
	return ValidatePDFFiles(files, Limits{})
}

func (p *fakeProcessor) Process(ctx context.Context, in Input, onProgress ProgressFunc) Output {
	return p.Run(ctx, onProgress, p.body)
}

var _ Processor = (*fakeProcessor)(nil)

func TestTrackerReportIsMonotonicAndClamped(t *testing.T) {
	var seen []int
	tr := NewTracker(context.Background(), func(p int, _ string) { seen = append(seen, p) })

	tr.Report(-5, "")
	tr.Report(40, "")
	tr.Report(20, "")
	tr.Report(150, "")

	assert.Equal(t, []int{0, 40, 40, 100}, seen)
	assert.Equal(t, 100, tr.Progress())
}

func TestTrackerCheckpointCancelled(t *testing.T) {
	tr := NewTracker(context.Background(), nil)
	require.NoError(t, tr.Checkpoint(10, "page 1"))

	tr.Cancel()
	err := tr.Checkpoint(20, "page 2")
	require.Error(t, err)
	assert.True(t, pdferr.HasCode(err, pdferr.ProcessingCancelled))
	assert.Equal(t, 10, tr.Progress(), "cancelled checkpoint must not report")
}

func TestTrackerCheckpointContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	tr := NewTracker(ctx, nil)
	cancel()
	err := tr.Checkpoint(10, "")
	assert.True(t, pdferr.HasCode(err, pdferr.ProcessingCancelled))
}

func TestStep(t *testing.T) {
	assert.Equal(t, 30, Step(30, 90, 0, 4))
	assert.Equal(t, 60, Step(30, 90, 2, 4))
	assert.Equal(t, 90, Step(30, 90, 4, 4))
	assert.Equal(t, 90, Step(30, 90, 0, 0))
}

func TestBaseRunSuccessReportsHundred(t *testing.T) {
	p := &fakeProcessor{body: func(ctx context.Context, cp Checkpointer) (Output, error) {
		if err := cp.Checkpoint(50, "half"); err != nil {
			return Output{}, err
		}
		return Output{Result: []byte("ok"), Filename: "out.pdf"}, nil
	}}

	var last int
	out := p.Process(context.Background(), Input{}, func(pct int, _ string) { last = pct })
	require.True(t, out.Success)
	assert.Nil(t, out.Error)
	assert.Equal(t, []byte("ok"), out.Result)
	assert.Equal(t, 100, last)
	assert.Equal(t, 100, p.Progress())
}

func TestBaseRunConvertsErrors(t *testing.T) {
	p := &fakeProcessor{body: func(ctx context.Context, cp Checkpointer) (Output, error) {
		return Output{}, errors.New("boom")
	}}
	out := p.Process(context.Background(), Input{}, nil)
	require.False(t, out.Success)
	assert.Equal(t, pdferr.ProcessingFailed, out.Error.Code)
	assert.Equal(t, "boom", out.Error.Details)
}

func TestBaseRunRecoversPanics(t *testing.T) {
	p := &fakeProcessor{body: func(ctx context.Context, cp Checkpointer) (Output, error) {
		panic("unexpected")
	}}
	out := p.Process(context.Background(), Input{}, nil)
	require.False(t, out.Success)
	assert.Equal(t, pdferr.Unknown, out.Error.Code)
}

func TestBaseCancelBeforeCheckpoint(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	p := &fakeProcessor{}
	p.body = func(ctx context.Context, cp Checkpointer) (Output, error) {
		close(started)
		<-release
		if err := cp.Checkpoint(10, ""); err != nil {
			return Output{}, err
		}
		return Output{}, nil
	}

	var wg sync.WaitGroup
	var out Output
	wg.Add(1)
	go func() {
		defer wg.Done()
		out = p.Process(context.Background(), Input{}, nil)
	}()
	<-started
	p.Cancel()
	close(release)
	wg.Wait()

	require.False(t, out.Success)
	assert.Equal(t, pdferr.ProcessingCancelled, out.Error.Code)
}

func TestBaseCancelBeforeProcess(t *testing.T) {
	ran := false
	p := &fakeProcessor{body: func(ctx context.Context, cp Checkpointer) (Output, error) {
		ran = true
		return Output{}, nil
	}}

	p.Cancel()
	out := p.Process(context.Background(), Input{}, nil)
	require.False(t, out.Success)
	assert.Equal(t, pdferr.ProcessingCancelled, out.Error.Code)
	assert.False(t, ran, "cancelled run must not start")

	// The flag only covers one run.
	assert.True(t, p.Process(context.Background(), Input{}, nil).Success)
	assert.True(t, ran)
}

func TestBaseRejectsOverlappingRuns(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	p := &fakeProcessor{}
	p.body = func(ctx context.Context, cp Checkpointer) (Output, error) {
		close(started)
		<-release
		return Output{}, nil
	}

	done := make(chan Output)
	go func() { done <- p.Process(context.Background(), Input{}, nil) }()
	<-started

	second := p.Process(context.Background(), Input{}, nil)
	assert.False(t, second.Success)
	assert.Equal(t, pdferr.ProcessingFailed, second.Error.Code)

	close(release)
	assert.True(t, (<-done).Success)
}

func TestBaseReset(t *testing.T) {
	p := &fakeProcessor{body: func(ctx context.Context, cp Checkpointer) (Output, error) {
		return Output{}, nil
	}}
	p.Process(context.Background(), Input{}, nil)
	p.Cancel()
	p.Reset()
	assert.Equal(t, 0, p.Progress())
	assert.True(t, p.Process(context.Background(), Input{}, nil).Success)
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatSize(512))
	assert.Equal(t, "2.0 KiB", FormatSize(2048))
	assert.Equal(t, "50 MiB", FormatSize(50<<20))
	assert.Equal(t, "0 B", FormatSize(-1))
}

func TestValidatePDFFilesCollectsAll(t *testing.T) {
	files := []File{
		NewFile("empty.pdf", nil),
		NewFile("notes.txt", []byte("hello")),
		NewFile("big.pdf", append([]byte("%PDF-1.4\n"), make([]byte, 4096)...)),
		NewFile("ok.pdf", []byte("%PDF-1.7\n%%EOF")),
	}
	res := ValidatePDFFiles(files, Limits{MaxFiles: 3, MaxFileSize: 2048})
	require.False(t, res.Valid)

	var codes []pdferr.Code
	for _, e := range res.Errors {
		codes = append(codes, e.Code)
	}
	assert.ElementsMatch(t, []pdferr.Code{
		pdferr.TooManyFiles, pdferr.FileEmpty, pdferr.FileNotPDF, pdferr.FileTooLarge,
	}, codes)
	for _, e := range res.Errors {
		if e.Code == pdferr.FileTooLarge {
			assert.Contains(t, e.Message, "2.0 KiB")
		}
	}
}

func TestValidatePDFFilesEmptyList(t *testing.T) {
	res := ValidatePDFFiles(nil, Limits{})
	require.False(t, res.Valid)
	assert.Equal(t, pdferr.InvalidOptions, res.First().Code)
}

func TestOptions(t *testing.T) {
	o := Options{
		"layout": "2x2",
		"count":  float64(3),
		"ratio":  "1.5",
		"flag":   "true",
		"pages":  []any{float64(1), "3"},
		"csv":    "2, 4,6",
		"frac":   2.5,
	}

	assert.Equal(t, "2x2", o.String("layout", "1x1"))
	assert.Equal(t, "1x1", o.String("missing", "1x1"))

	n, err := o.Int("count", 0)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = o.Int("frac", 0)
	assert.Error(t, err)

	f, err := o.Float("ratio", 0)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, f, 1e-9)

	b, err := o.Bool("flag", false)
	require.NoError(t, err)
	assert.True(t, b)

	pages, err := o.IntSlice("pages")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, pages)

	csv, err := o.IntSlice("csv")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4, 6}, csv)
}

func TestOptionsDecode(t *testing.T) {
	type area struct {
		Page  int     `json:"page"`
		Width float64 `json:"width"`
	}
	o := Options{
		"areas": []any{map[string]any{"page": float64(2), "width": 10.5}},
		"json":  `[{"page":1,"width":3}]`,
		"yaml":  []any{map[any]any{"page": 4, "width": 1}},
	}

	var got []area
	require.NoError(t, o.Decode("areas", &got))
	assert.Equal(t, []area{{Page: 2, Width: 10.5}}, got)

	got = nil
	require.NoError(t, o.Decode("json", &got))
	assert.Equal(t, []area{{Page: 1, Width: 3}}, got)

	got = nil
	require.NoError(t, o.Decode("yaml", &got))
	assert.Equal(t, []area{{Page: 4, Width: 1}}, got)
}

func TestLooksLikePDF(t *testing.T) {
	assert.True(t, LooksLikePDF([]byte("%PDF-1.4")))
	assert.True(t, LooksLikePDF([]byte("\x00\x00junk%PDF-1.4")))
	assert.False(t, LooksLikePDF([]byte("PK\x03\x04")))
	assert.True(t, HasPDFExtension("A.PDF"))
	assert.False(t, HasPDFExtension("a.txt"))
}
