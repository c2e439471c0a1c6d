package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go-pdftools/internal/pdf"
	"go-pdftools/internal/pdferr"
	"go-pdftools/internal/pdftest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scripted struct {
	messages []Message
	err      error
}

func (s scripted) Name() string { return "scripted" }

func (s scripted) Run(ctx context.Context, req Request, emit func(Message)) error {
	for _, m := range s.messages {
		emit(m)
	}
	return s.err
}

func TestInvokeSuccess(t *testing.T) {
	var progress []int
	data, err := Invoke(context.Background(), scripted{messages: []Message{
		{Status: StatusProgress, Progress: 20},
		{Status: StatusProgress, Progress: 60, Message: "half"},
		{Status: StatusSuccess, Data: []byte("pdf")},
		{Status: StatusError, Error: "ignored"},
	}}, Request{Command: Compress}, func(p int, _ string) { progress = append(progress, p) })
	require.NoError(t, err)
	assert.Equal(t, []byte("pdf"), data)
	assert.Equal(t, []int{20, 60}, progress)
}

func TestInvokeErrorMessage(t *testing.T) {
	_, err := Invoke(context.Background(), scripted{messages: []Message{
		{Status: StatusError, Error: "gs exploded"},
	}}, Request{Command: Compress}, nil)
	require.Error(t, err)
	assert.True(t, pdferr.HasCode(err, pdferr.WorkerFailed))
	assert.Contains(t, err.Error(), "gs exploded")
}

func TestInvokeNoTerminalMessage(t *testing.T) {
	_, err := Invoke(context.Background(), scripted{messages: []Message{
		{Status: StatusProgress, Progress: 50},
	}}, Request{Command: Compress}, nil)
	require.Error(t, err)
	assert.True(t, pdferr.HasCode(err, pdferr.WorkerFailed))
	assert.ErrorIs(t, err, ErrNoResult)
}

func TestInvokeTransportFailure(t *testing.T) {
	_, err := Invoke(context.Background(), scripted{err: errors.New("pipe closed")}, Request{}, nil)
	assert.True(t, pdferr.HasCode(err, pdferr.WorkerFailed))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Invoke(ctx, scripted{err: context.Canceled}, Request{}, nil)
	assert.True(t, pdferr.HasCode(err, pdferr.ProcessingCancelled))
}

func TestNativeCompress(t *testing.T) {
	doc := pdftest.Pages(3)
	var statuses []Status
	err := Native{}.Run(context.Background(), Request{Command: Compress, PDFData: doc}, func(m Message) {
		statuses = append(statuses, m.Status)
	})
	require.NoError(t, err)
	require.NotEmpty(t, statuses)
	assert.Equal(t, StatusSuccess, statuses[len(statuses)-1])

	out, err := Invoke(context.Background(), Native{}, Request{Command: Compress, PDFData: doc}, nil)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(out), len(doc))
	n, err := pdf.PageCount(out)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestNativeLinearizeUnsupported(t *testing.T) {
	_, err := Invoke(context.Background(), Native{}, Request{Command: Linearize, PDFData: pdftest.Pages(1)}, nil)
	require.Error(t, err)
	assert.True(t, pdferr.HasCode(err, pdferr.WorkerFailed))
	assert.Contains(t, err.Error(), "linearization")
}

func TestNativeCorruptInput(t *testing.T) {
	_, err := Invoke(context.Background(), Native{}, Request{Command: Compress, PDFData: []byte("%PDF-1.4 junk")}, nil)
	assert.True(t, pdferr.HasCode(err, pdferr.WorkerFailed))
}

func TestDecodeMessages(t *testing.T) {
	input := `{"status":"progress","progress":30}

{"status":"success","data":"AQID"}
`
	var got []Message
	require.NoError(t, DecodeMessages(strings.NewReader(input), func(m Message) { got = append(got, m) }))
	require.Len(t, got, 2)
	assert.Equal(t, 30, got[0].Progress)
	assert.True(t, got[1].Terminal())
	assert.Equal(t, []byte{1, 2, 3}, got[1].Data)

	err := DecodeMessages(strings.NewReader("not json\n"), func(Message) {})
	assert.Error(t, err)
}

// emptyModule is the smallest valid WebAssembly binary: magic and version.
var emptyModule = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

func TestWasmSilentGuest(t *testing.T) {
	ctx := context.Background()
	w, err := NewWasm(ctx, "noop", emptyModule, WasmConfig{})
	require.NoError(t, err)
	defer w.Close(ctx)
	assert.Equal(t, "wasm:noop", w.Name())

	_, err = Invoke(ctx, w, Request{Command: Compress, PDFData: pdftest.Pages(1)}, nil)
	assert.ErrorIs(t, err, ErrNoResult)
}

func TestWasmRejectsInvalidModule(t *testing.T) {
	_, err := NewWasm(context.Background(), "bad", []byte("not wasm"), WasmConfig{})
	assert.Error(t, err)
}

func TestLoadWasm(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qpdf.wasm")
	require.NoError(t, os.WriteFile(path, emptyModule, 0o644))

	ctx := context.Background()
	w, err := LoadWasm(ctx, path, WasmConfig{})
	require.NoError(t, err)
	defer w.Close(ctx)
	assert.Equal(t, "wasm:qpdf", w.Name())

	_, err = LoadWasm(ctx, filepath.Join(t.TempDir(), "missing.wasm"), WasmConfig{})
	assert.Error(t, err)
}
