package compress

import (
	"context"
	"testing"

	"go-pdftools/internal/engine"
	"go-pdftools/internal/pdferr"
	"go-pdftools/internal/pdftest"
	"go-pdftools/internal/processor"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	messages []engine.Message
	got      engine.Request
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Run(ctx context.Context, req engine.Request, emit func(engine.Message)) error {
	f.got = req
	for _, m := range f.messages {
		if err := ctx.Err(); err != nil {
			return err
		}
		emit(m)
	}
	return nil
}

func input(doc []byte, opts processor.Options) processor.Input {
	return processor.Input{Files: []processor.File{processor.NewFile("scan.pdf", doc)}, Options: opts}
}

func TestCompressNative(t *testing.T) {
	doc := pdftest.Pages(2)
	out := New(engine.Compress, engine.Native{}, processor.Limits{}, zerolog.Nop()).
		Process(context.Background(), input(doc, nil), nil)
	require.True(t, out.Success, "%v", out.Error)
	assert.Equal(t, "scan-compressed.pdf", out.Filename)
	assert.Equal(t, "native", out.Metadata["engine"])
	assert.Equal(t, len(doc), out.Metadata["originalSize"])
	assert.LessOrEqual(t, out.Metadata["resultSize"], len(doc))
}

func TestLinearizeNativeFails(t *testing.T) {
	out := New(engine.Linearize, engine.Native{}, processor.Limits{}, zerolog.Nop()).
		Process(context.Background(), input(pdftest.Pages(1), nil), nil)
	require.False(t, out.Success)
	assert.Equal(t, pdferr.WorkerFailed, out.Error.Code)
	assert.True(t, out.Error.Recoverable)
}

func TestProgressIsMappedIntoBand(t *testing.T) {
	eng := &fakeEngine{messages: []engine.Message{
		{Status: engine.StatusProgress, Progress: 0},
		{Status: engine.StatusProgress, Progress: 50},
		{Status: engine.StatusProgress, Progress: 100},
		{Status: engine.StatusSuccess, Data: []byte("%PDF-1.4 small")},
	}}
	var progress []int
	out := New(engine.Compress, eng, processor.Limits{}, zerolog.Nop()).
		Process(context.Background(), input(pdftest.Pages(1), processor.Options{"level": "high"}), func(p int, _ string) {
			progress = append(progress, p)
		})
	require.True(t, out.Success, "%v", out.Error)
	assert.Equal(t, []int{10, 10, 52, 95, 95, 100}, progress)
	assert.Equal(t, engine.Compress, eng.got.Command)
	assert.Equal(t, "high", eng.got.Options["level"])
}

func TestCancelStopsEngine(t *testing.T) {
	eng := &fakeEngine{messages: []engine.Message{
		{Status: engine.StatusProgress, Progress: 10},
		{Status: engine.StatusProgress, Progress: 20},
		{Status: engine.StatusSuccess, Data: []byte("%PDF-1.4")},
	}}
	p := New(engine.Compress, eng, processor.Limits{}, zerolog.Nop())
	out := p.Process(context.Background(), input(pdftest.Pages(1), nil), func(pct int, _ string) {
		if pct > 10 {
			p.Cancel()
		}
	})
	require.False(t, out.Success)
	assert.Equal(t, pdferr.ProcessingCancelled, out.Error.Code)
}

func TestEmptyEngineResult(t *testing.T) {
	eng := &fakeEngine{messages: []engine.Message{{Status: engine.StatusSuccess}}}
	out := New(engine.Compress, eng, processor.Limits{}, zerolog.Nop()).
		Process(context.Background(), input(pdftest.Pages(1), nil), nil)
	require.False(t, out.Success)
	assert.Equal(t, pdferr.WorkerFailed, out.Error.Code)
}

func TestRejectsNonPDF(t *testing.T) {
	out := New(engine.Compress, &fakeEngine{}, processor.Limits{}, zerolog.Nop()).
		Process(context.Background(), input([]byte("GIF89a"), nil), nil)
	require.False(t, out.Success)
	assert.Equal(t, pdferr.FileNotPDF, out.Error.Code)
}
