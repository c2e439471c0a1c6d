package redact

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"go-pdftools/internal/pdf"
	"go-pdftools/internal/pdferr"
	"go-pdftools/internal/pdftest"
	"go-pdftools/internal/processor"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAreasAccumulates(t *testing.T) {
	res := ValidateAreas([]Area{{Page: 0, X: -100, Y: -200, Width: -50, Height: -50}}, 5)
	require.False(t, res.Valid)
	require.Greater(t, len(res.Errors), 1)

	var details []string
	for _, e := range res.Errors {
		assert.Equal(t, pdferr.InvalidRedactionArea, e.Code)
		details = append(details, e.Details)
	}
	joined := strings.Join(details, "\n")
	for _, want := range []string{"page number", "Width", "Height", "X coordinate", "Y coordinate"} {
		assert.Contains(t, joined, want)
	}
	assert.Len(t, res.Errors, 5)
}

func TestValidateAreasAcceptsGoodAreas(t *testing.T) {
	res := ValidateAreas([]Area{
		{Page: 1, X: 0, Y: 0, Width: 10, Height: 10},
		{Page: 5, X: 100, Y: 100, Width: 1, Height: 1},
	}, 5)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
}

func TestValidateAreasPageOutOfRange(t *testing.T) {
	res := ValidateAreas([]Area{{Page: 6, Width: 1, Height: 1}}, 5)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Details, "page number")
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#ff0000")
	require.NoError(t, err)
	assert.Equal(t, RGB{1, 0, 0}, c)

	c, err = ParseColor("0f0")
	require.NoError(t, err)
	assert.Equal(t, RGB{0, 1, 0}, c)

	for _, bad := range []string{"", "#12", "#gggggg", "red"} {
		_, err := ParseColor(bad)
		assert.Error(t, err, bad)
	}
}

func TestTextWidth(t *testing.T) {
	// "Hi" = 722 + 222 units.
	assert.InDelta(t, 9.44, TextWidth("Hi", 10), 1e-9)
	assert.Equal(t, TextWidth("?", 12), TextWidth("é", 12))
}

func TestPlaceText(t *testing.T) {
	size, tx, _ := placeText("X", 0, 0, 100, 50)
	assert.Equal(t, 12.0, size)
	assert.InDelta(t, (100-TextWidth("X", 12))/2, tx, 1e-9)

	size, _, _ = placeText("X", 0, 0, 100, 10)
	assert.InDelta(t, 6.0, size, 1e-9)

	label := "A very long replacement label"
	size, tx, _ = placeText(label, 0, 0, 20, 50)
	assert.Equal(t, 12.0, size)
	assert.InDelta(t, (20-TextWidth(label, 12))/2, tx, 1e-9)
	assert.Less(t, tx, 0.0)
}

func TestToPDFSpace(t *testing.T) {
	box := types.RectForWidthAndHeight(0, 0, 612, 792)
	x, y := ToPDFSpace(box, Area{X: 100, Y: 50, Width: 200, Height: 40})
	assert.Equal(t, 100.0, x)
	assert.Equal(t, 792.0-50-40, y)

	offset := types.RectForWidthAndHeight(10, 20, 612, 792)
	x, y = ToPDFSpace(offset, Area{X: 100, Y: 50, Width: 200, Height: 40})
	assert.Equal(t, 110.0, x)
	assert.Equal(t, 20+792.0-50-40, y)
}

func run(t *testing.T, doc []byte, opts processor.Options) processor.Output {
	t.Helper()
	return New(processor.Limits{}, zerolog.Nop()).Process(context.Background(), processor.Input{
		Files:   []processor.File{processor.NewFile("contract.pdf", doc)},
		Options: opts,
	}, nil)
}

var fillRect = regexp.MustCompile(`rg ([-\d.]+) ([-\d.]+) ([-\d.]+) ([-\d.]+) re f`)

func TestRedactionRoundTrip(t *testing.T) {
	const height = 792.0
	area := Area{Page: 1, X: 72, Y: 100, Width: 200, Height: 30}

	out := run(t, pdftest.Document(pdftest.Letter("Account 1234")), processor.Options{
		"areas": []Area{area},
	})
	require.True(t, out.Success, "%v", out.Error)
	assert.Equal(t, 1, out.Metadata["redactedCount"])
	assert.Equal(t, true, out.Metadata["visualOnly"])
	assert.Equal(t, "contract-redacted.pdf", out.Filename)

	ctx, err := pdf.Load(out.Result)
	require.NoError(t, err)
	page, err := pdf.PageInfo(ctx, 1)
	require.NoError(t, err)
	content, err := pdf.Content(ctx, page)
	require.NoError(t, err)

	m := fillRect.FindStringSubmatch(string(content))
	require.NotNil(t, m, string(content))
	x, _ := strconv.ParseFloat(m[1], 64)
	y, _ := strconv.ParseFloat(m[2], 64)
	w, _ := strconv.ParseFloat(m[3], 64)
	h, _ := strconv.ParseFloat(m[4], 64)
	assert.InDelta(t, area.X, x, 1e-6)
	assert.InDelta(t, height-area.Y-area.Height, y, 1e-6)
	assert.InDelta(t, area.Width, w, 1e-6)
	assert.InDelta(t, area.Height, h, 1e-6)

	// The original page is drawn underneath, black fill by default.
	assert.Contains(t, string(content), "/Pg0 Do")
	assert.Contains(t, string(content), "0 0 0 rg")
}

func TestRedactionStyleAndText(t *testing.T) {
	out := run(t, pdftest.Pages(1), processor.Options{
		"areas":       []any{map[string]any{"page": 1, "x": 10, "y": 10, "width": 100, "height": 20, "replacementText": "REDACTED"}},
		"color":       "#ff0000",
		"borderColor": "#0000ff",
		"borderWidth": 2,
	})
	require.True(t, out.Success, "%v", out.Error)

	ctx, err := pdf.Load(out.Result)
	require.NoError(t, err)
	page, err := pdf.PageInfo(ctx, 1)
	require.NoError(t, err)
	content, err := pdf.Content(ctx, page)
	require.NoError(t, err)

	s := string(content)
	assert.Contains(t, s, "1 0 0 rg")
	assert.Contains(t, s, "0 0 1 RG 2 w")
	assert.Contains(t, s, "(REDACTED) Tj")
	assert.Contains(t, s, "1 1 1 rg /F1 12 Tf")
}

func TestRedactionSkipsInvalidPages(t *testing.T) {
	out := run(t, pdftest.Pages(2), processor.Options{
		"areas": []Area{
			{Page: 1, X: 10, Y: 10, Width: 50, Height: 50},
			{Page: 9, X: 10, Y: 10, Width: 50, Height: 50},
			{Page: 2, X: 10, Y: 10, Width: 0, Height: 50},
			{Page: 2, X: 10, Y: 10, Width: 50, Height: 50},
		},
	})
	require.True(t, out.Success, "%v", out.Error)
	assert.Equal(t, 2, out.Metadata["redactedCount"])
	invalid, ok := out.Metadata["invalidAreas"].([]string)
	require.True(t, ok)
	require.Len(t, invalid, 2)
	assert.Contains(t, invalid[0], "area 2: invalid page number 9")
	assert.Contains(t, invalid[1], "area 3: Width")

	n, err := pdf.PageCount(out.Result)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRedactionReportsEveryInvalidArea(t *testing.T) {
	out := run(t, pdftest.Pages(1), processor.Options{
		"areas": []Area{
			{Page: 1, X: -5, Y: 10, Width: 50, Height: 50},
			{Page: 0, X: -100, Y: -200, Width: -50, Height: -50},
			{Page: 1, X: 10, Y: 10, Width: 50, Height: 50},
		},
	})
	require.True(t, out.Success, "%v", out.Error)
	assert.Equal(t, 1, out.Metadata["redactedCount"])

	invalid, ok := out.Metadata["invalidAreas"].([]string)
	require.True(t, ok)
	assert.Len(t, invalid, 6)
	joined := strings.Join(invalid, "\n")
	assert.Contains(t, joined, "area 1: X coordinate")
	for _, want := range []string{"invalid page number", "Width", "Height", "X coordinate", "Y coordinate"} {
		assert.Contains(t, joined, "area 2: "+want)
	}
	assert.NotContains(t, joined, "area 3")
}

func TestRedactionRejectsBadOptions(t *testing.T) {
	out := run(t, pdftest.Pages(1), processor.Options{})
	require.False(t, out.Success)
	assert.Equal(t, pdferr.InvalidOptions, out.Error.Code)

	out = run(t, pdftest.Pages(1), processor.Options{
		"areas": []Area{{Page: 1, Width: 1, Height: 1}},
		"color": "not-a-color",
	})
	require.False(t, out.Success)
	assert.Equal(t, pdferr.InvalidOptions, out.Error.Code)
}
