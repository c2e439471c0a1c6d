package redact

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"go-pdftools/internal/pdf"
	"go-pdftools/internal/pdferr"
	"go-pdftools/internal/processor"
	"go-pdftools/internal/utils"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/rs/zerolog"
)

const (
	formName = "Pg0"
	fontName = "F1"

	maxTextSize = 12.0
)

// Style controls how areas are painted.
type Style struct {
	Fill        RGB
	Border      *RGB
	BorderWidth float64
}

// Processor implements processor.Processor for visual redaction.
type Processor struct {
	processor.Base
	limits processor.Limits
	log    zerolog.Logger
}

// New creates a redaction processor.
func New(limits processor.Limits, log zerolog.Logger) *Processor {
	limits.MaxFiles = 1
	return &Processor{limits: limits, log: log.With().Str("processor", "redact").Logger()}
}

// Validate implements processor.Processor.
func (p *Processor) Validate(ctx context.Context, files []processor.File) processor.ValidationResult {
	return processor.ValidatePDFFiles(files, p.limits)
}

// Process implements processor.Processor.
//
// Options:
//   - areas: list of Area
//   - color: fill colour, hex (default #000000)
//   - borderColor: optional stroke colour, hex
//   - borderWidth: stroke width in points (default 1 when borderColor is set)
func (p *Processor) Process(ctx context.Context, in processor.Input, onProgress processor.ProgressFunc) processor.Output {
	return p.Run(ctx, onProgress, func(ctx context.Context, cp processor.Checkpointer) (processor.Output, error) {
		return p.redact(in, cp)
	})
}

// ParseStyle reads the colour options.
func ParseStyle(opts processor.Options) (Style, error) {
	fill, err := ParseColor(opts.String("color", "#000000"))
	if err != nil {
		return Style{}, err
	}
	style := Style{Fill: fill}
	if c := opts.String("borderColor", ""); c != "" {
		border, err := ParseColor(c)
		if err != nil {
			return Style{}, err
		}
		style.Border = &border
	}
	w, err := opts.Float("borderWidth", 1)
	if err != nil {
		return Style{}, err
	}
	if w < 0 {
		return Style{}, fmt.Errorf("borderWidth must not be negative")
	}
	style.BorderWidth = w
	return style, nil
}

func (p *Processor) redact(in processor.Input, cp processor.Checkpointer) (processor.Output, error) {
	if len(in.Files) != 1 {
		return processor.Output{}, pdferr.New(pdferr.InvalidOptions, "exactly one file is required", nil)
	}
	var areas []Area
	if err := in.Options.Decode("areas", &areas); err != nil {
		return processor.Output{}, pdferr.Wrap(pdferr.InvalidOptions, err, nil)
	}
	if len(areas) == 0 {
		return processor.Output{}, pdferr.New(pdferr.InvalidOptions, "no redaction areas provided", nil)
	}
	style, err := ParseStyle(in.Options)
	if err != nil {
		return processor.Output{}, pdferr.Wrap(pdferr.InvalidOptions, err, nil)
	}

	file := in.Files[0]
	data, err := file.Bytes()
	if err != nil {
		return processor.Output{}, pdferr.Wrap(pdferr.FileReadFailed, err, nil)
	}
	cp.Report(10, "Loading document")
	ctx, err := pdf.LoadNamed(file.Name(), data)
	if err != nil {
		return processor.Output{}, err
	}
	if err := cp.Checkpoint(20, "Applying redactions"); err != nil {
		return processor.Output{}, err
	}

	// Areas that fail validation are skipped and reported in the metadata;
	// the rest are still drawn.
	check := ValidateAreas(areas, ctx.PageCount)
	invalid := make([]string, 0, len(check.Errors))
	for _, e := range check.Errors {
		p.log.Warn().Str("problem", e.Details).Msg("skipping redaction area")
		invalid = append(invalid, e.Details)
	}
	byPage := make(map[int][]Area)
	for _, a := range areas {
		if len(areaProblems(a, ctx.PageCount)) > 0 {
			continue
		}
		byPage[a.Page] = append(byPage[a.Page], a)
	}
	pages := make([]int, 0, len(byPage))
	for n := range byPage {
		pages = append(pages, n)
	}
	sort.Ints(pages)

	var font *types.IndirectRef
	redacted := 0
	for i, n := range pages {
		if needsFont(byPage[n]) && font == nil {
			if font, err = pdf.AddStandardFont(ctx, "Helvetica"); err != nil {
				return processor.Output{}, pdferr.Wrap(pdferr.ProcessingFailed, err, nil)
			}
		}
		if err := Apply(ctx, n, byPage[n], style, font); err != nil {
			return processor.Output{}, pdferr.Wrap(pdferr.ProcessingFailed, err, nil)
		}
		redacted += len(byPage[n])
		if err := cp.Checkpoint(processor.Step(20, 90, i+1, len(pages)), fmt.Sprintf("Redacted page %d", n)); err != nil {
			return processor.Output{}, err
		}
	}

	result, err := pdf.Save(ctx)
	if err != nil {
		return processor.Output{}, err
	}
	cp.Report(95, "Saved")

	p.log.Debug().Int("requested", len(areas)).Int("redacted", redacted).Msg("redaction complete")

	return processor.Output{
		Result:      result,
		Filename:    utils.WithSuffix(file.Name(), "-redacted", ".pdf"),
		ContentType: "application/pdf",
		Metadata: map[string]any{
			"redactedCount": redacted,
			"visualOnly":    true,
			"invalidAreas":  invalid,
		},
	}, nil
}

func needsFont(areas []Area) bool {
	for _, a := range areas {
		if strings.TrimSpace(a.ReplacementText) != "" {
			return true
		}
	}
	return false
}

// Apply paints areas onto page pageNr. The original page is wrapped in a form
// XObject first so its graphics state cannot leak into the overlay. font may
// be nil when no area carries replacement text.
func Apply(ctx *model.Context, pageNr int, areas []Area, style Style, font *types.IndirectRef) error {
	page, err := pdf.PageInfo(ctx, pageNr)
	if err != nil {
		return err
	}
	form, err := pdf.EmbedPage(ctx, page)
	if err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "q /%s Do Q\n", formName)
	for _, a := range areas {
		writeArea(&b, page.Box, a, style, font != nil)
	}

	resources := types.Dict{
		"XObject": types.Dict{formName: *form},
	}
	if font != nil {
		resources["Font"] = types.Dict{fontName: *font}
	}
	return pdf.ReplacePage(ctx, page, nil, []byte(b.String()), resources)
}

// ToPDFSpace converts a UI area into the lower-left corner of the rectangle
// in the page's coordinate space.
func ToPDFSpace(box *types.Rectangle, a Area) (float64, float64) {
	return box.LL.X + a.X, box.LL.Y + box.Height() - a.Y - a.Height
}

func writeArea(b *strings.Builder, box *types.Rectangle, a Area, style Style, withText bool) {
	x, y := ToPDFSpace(box, a)

	fmt.Fprintf(b, "q %s %s f Q\n", style.Fill.fill(), pdf.Rect(x, y, a.Width, a.Height))
	if style.Border != nil && style.BorderWidth > 0 {
		fmt.Fprintf(b, "q %s %s w %s S Q\n", style.Border.stroke(), pdf.Num(style.BorderWidth), pdf.Rect(x, y, a.Width, a.Height))
	}

	text := pdf.EscapeString(strings.TrimSpace(a.ReplacementText))
	if !withText || text == "" {
		return
	}
	size, tx, ty := placeText(strings.TrimSpace(a.ReplacementText), x, y, a.Width, a.Height)
	fmt.Fprintf(b, "q BT %s /%s %s Tf %s %s Td (%s) Tj ET Q\n",
		White.fill(), fontName, pdf.Num(size), pdf.Num(tx), pdf.Num(ty), text)
}

// placeText centres s in the rectangle at (x, y) at size
// min(height*0.6, 12). Text wider than the box overhangs it on both sides.
func placeText(s string, x, y, w, h float64) (size, tx, ty float64) {
	size = math.Min(h*0.6, maxTextSize)
	tw := TextWidth(s, size)
	tx = x + (w-tw)/2
	// Helvetica cap height is about 0.72 em; centre that on the box.
	ty = y + (h-size*0.72)/2
	return size, tx, ty
}
