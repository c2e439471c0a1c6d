package gridcombine

import (
	"context"
	"testing"

	"go-pdftools/internal/pdf"
	"go-pdftools/internal/pdferr"
	"go-pdftools/internal/pdftest"
	"go-pdftools/internal/processor"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLayout(t *testing.T) {
	l, err := ParseLayout("2x1")
	require.NoError(t, err)
	assert.Equal(t, Layout{Rows: 2, Cols: 1}, l)
	assert.Equal(t, 2, l.Cells())

	l, err = ParseLayout(" 3X4 ")
	require.NoError(t, err)
	assert.Equal(t, 12, l.Cells())

	l, err = ParseLayout("10x10")
	require.NoError(t, err)
	assert.Equal(t, 100, l.Cells())

	for _, bad := range []string{"", "2", "x2", "2x", "0x2", "2x-1", "axb", "11x1", "1x11", "40x40", "4294967296x4294967296", "99999999999999999999x1"} {
		_, err := ParseLayout(bad)
		assert.Error(t, err, bad)
	}
}

func TestOutputPagesIsCeil(t *testing.T) {
	for rows := 1; rows <= 4; rows++ {
		for cols := 1; cols <= 4; cols++ {
			cells := rows * cols
			for placed := 1; placed <= 40; placed++ {
				want := placed / cells
				if placed%cells != 0 {
					want++
				}
				assert.Equal(t, want, OutputPages(placed, cells), "%d pages on %dx%d", placed, rows, cols)
			}
		}
	}
	assert.Equal(t, 0, OutputPages(0, 4))
}

func TestBuildPlan(t *testing.T) {
	t.Run("first page only", func(t *testing.T) {
		plan := BuildPlan([]int{1, 1}, Layout{2, 1}, FirstPageOnly, FillBlank)
		assert.Equal(t, []PageRef{{0, 1}, {1, 1}}, plan.Placed)
		assert.Equal(t, 1, plan.OutputPages)
	})

	t.Run("first page of multi-page files", func(t *testing.T) {
		plan := BuildPlan([]int{3, 5}, Layout{2, 2}, FirstPageOnly, FillBlank)
		assert.Equal(t, []PageRef{{0, 1}, {1, 1}}, plan.Placed)
		assert.Equal(t, 1, plan.OutputPages)
	})

	t.Run("all pages aggregate in file order", func(t *testing.T) {
		plan := BuildPlan([]int{2, 3}, Layout{2, 2}, AllPages, FillBlank)
		assert.Equal(t, []PageRef{{0, 1}, {0, 2}, {1, 1}, {1, 2}, {1, 3}}, plan.Placed)
		assert.Equal(t, 2, plan.OutputPages)
	})

	t.Run("repeat fills one grid", func(t *testing.T) {
		plan := BuildPlan([]int{1}, Layout{2, 2}, FirstPageOnly, FillRepeat)
		assert.Len(t, plan.Placed, 4)
		assert.Equal(t, 1, plan.OutputPages)
	})

	t.Run("repeat cycles the sequence", func(t *testing.T) {
		plan := BuildPlan([]int{1, 1}, Layout{1, 3}, FirstPageOnly, FillRepeat)
		assert.Equal(t, []PageRef{{0, 1}, {1, 1}, {0, 1}}, plan.Placed)
	})

	t.Run("repeat leaves longer sequences alone", func(t *testing.T) {
		plan := BuildPlan([]int{5}, Layout{2, 2}, AllPages, FillRepeat)
		assert.Len(t, plan.Placed, 5)
		assert.Equal(t, 2, plan.OutputPages)
	})
}

func newProcessor() *Processor {
	return New(processor.Limits{}, zerolog.Nop())
}

func files(docs ...[]byte) []processor.File {
	out := make([]processor.File, len(docs))
	for i, d := range docs {
		out[i] = processor.NewFile("doc.pdf", d)
	}
	return out
}

func TestProcessFirstPageOnly(t *testing.T) {
	out := newProcessor().Process(context.Background(), processor.Input{
		Files:   files(pdftest.Pages(1), pdftest.Pages(1)),
		Options: processor.Options{"gridLayout": "2x1", "pageMode": "first-page-only"},
	}, nil)
	require.True(t, out.Success, "%v", out.Error)
	assert.Equal(t, 1, out.Metadata["outputPageCount"])
	assert.Equal(t, 2, out.Metadata["originalPageCount"])

	n, err := pdf.PageCount(out.Result)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestProcessAllPages(t *testing.T) {
	var progress []int
	out := newProcessor().Process(context.Background(), processor.Input{
		Files:   files(pdftest.Pages(2), pdftest.Pages(3)),
		Options: processor.Options{"gridLayout": "2x2", "pageMode": "all-pages"},
	}, func(p int, _ string) { progress = append(progress, p) })
	require.True(t, out.Success, "%v", out.Error)
	assert.Equal(t, 5, out.Metadata["originalPageCount"])
	assert.Equal(t, 2, out.Metadata["outputPageCount"])

	n, err := pdf.PageCount(out.Result)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NotEmpty(t, progress)
	assert.IsNonDecreasing(t, progress)
	assert.Equal(t, 100, progress[len(progress)-1])
}

func TestProcessRepeat(t *testing.T) {
	out := newProcessor().Process(context.Background(), processor.Input{
		Files:   files(pdftest.Pages(1)),
		Options: processor.Options{"gridLayout": "2x2", "fillMode": "repeat"},
	}, nil)
	require.True(t, out.Success, "%v", out.Error)
	assert.Equal(t, 4, out.Metadata["originalPageCount"])
	assert.Equal(t, 1, out.Metadata["outputPageCount"])
}

func TestProcessRejectsEmptyInput(t *testing.T) {
	out := newProcessor().Process(context.Background(), processor.Input{}, nil)
	require.False(t, out.Success)
	assert.Equal(t, pdferr.InvalidOptions, out.Error.Code)
}

func TestProcessRejectsBadLayout(t *testing.T) {
	out := newProcessor().Process(context.Background(), processor.Input{
		Files:   files(pdftest.Pages(1)),
		Options: processor.Options{"gridLayout": "two-by-two"},
	}, nil)
	require.False(t, out.Success)
	assert.Equal(t, pdferr.InvalidOptions, out.Error.Code)
}

func TestProcessRejectsOversizedLayout(t *testing.T) {
	for _, layout := range []string{"4294967296x4294967296", "40x40"} {
		out := newProcessor().Process(context.Background(), processor.Input{
			Files:   files(pdftest.Pages(1)),
			Options: processor.Options{"gridLayout": layout, "fillMode": "repeat"},
		}, nil)
		require.False(t, out.Success, layout)
		assert.Equal(t, pdferr.InvalidOptions, out.Error.Code, layout)
	}
}

func TestProcessAbortsOnBadFile(t *testing.T) {
	out := newProcessor().Process(context.Background(), processor.Input{
		Files: []processor.File{
			processor.NewFile("good.pdf", pdftest.Pages(1)),
			processor.NewFile("bad.pdf", []byte("not a pdf at all")),
		},
	}, nil)
	require.False(t, out.Success)
	assert.Equal(t, pdferr.FileNotPDF, out.Error.Code)
	assert.Contains(t, out.Error.Details, "bad.pdf")
	assert.Nil(t, out.Result)
}

func TestProcessCancelled(t *testing.T) {
	p := newProcessor()
	out := p.Process(context.Background(), processor.Input{
		Files:   files(pdftest.Pages(3)),
		Options: processor.Options{"pageMode": "all-pages"},
	}, func(pct int, _ string) {
		if pct >= 10 {
			p.Cancel()
		}
	})
	require.False(t, out.Success)
	assert.Equal(t, pdferr.ProcessingCancelled, out.Error.Code)
}
