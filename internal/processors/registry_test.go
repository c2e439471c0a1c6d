package processors

import (
	"context"
	"testing"

	"go-pdftools/internal/pdftest"
	"go-pdftools/internal/processor"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryHasEveryTool(t *testing.T) {
	r := NewRegistry(Config{Logger: zerolog.Nop()})
	names := []string{Compress, GridCombine, Linearize, Merge, PDFToEPUB, PDFToMOBI, Redact, Rotate, Split}

	var got []string
	for _, tool := range r.Tools() {
		got = append(got, tool.Name)
	}
	assert.Equal(t, names, got)

	for _, n := range names {
		p, ok := r.New(n)
		require.True(t, ok, n)
		assert.NotNil(t, p)
	}
	_, ok := r.New("watermark")
	assert.False(t, ok)
}

func TestRegistryReturnsFreshInstances(t *testing.T) {
	r := NewRegistry(Config{Logger: zerolog.Nop()})
	a, _ := r.New(Split)
	b, _ := r.New(Split)

	out := a.Process(context.Background(), processor.Input{
		Files: []processor.File{processor.NewFile("a.pdf", pdftest.Pages(1))},
	}, nil)
	require.True(t, out.Success, "%v", out.Error)
	assert.Equal(t, 100, a.Progress())
	assert.Equal(t, 0, b.Progress())
}

func TestMultiFileFlag(t *testing.T) {
	r := NewRegistry(Config{Logger: zerolog.Nop()})
	merge, _ := r.Lookup(Merge)
	rotate, _ := r.Lookup(Rotate)
	assert.True(t, merge.MultiFile)
	assert.False(t, rotate.MultiFile)
}
