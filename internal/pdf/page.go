package pdf

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Page is a resolved view of one page dictionary.
type Page struct {
	Number int
	Dict   types.Dict
	// Box is the visible area: CropBox if present, else MediaBox.
	Box       *types.Rectangle
	MediaBox  *types.Rectangle
	Rotate    int
	Resources types.Object
}

// Width of the visible box.
func (p *Page) Width() float64 { return p.Box.Width() }

// Height of the visible box.
func (p *Page) Height() float64 { return p.Box.Height() }

// PageInfo resolves page pageNr (1-based) including inherited attributes.
func PageInfo(ctx *model.Context, pageNr int) (*Page, error) {
	d, _, inh, err := ctx.PageDict(pageNr, true)
	if err != nil {
		return nil, fmt.Errorf("failed to read page %d: %w", pageNr, err)
	}
	if d == nil || inh == nil {
		return nil, fmt.Errorf("page %d not found", pageNr)
	}

	media := inh.MediaBox
	box := inh.CropBox
	if box == nil {
		box = media
	}
	if box == nil {
		return nil, fmt.Errorf("page %d has no media box", pageNr)
	}
	if media == nil {
		media = box
	}

	res, ok := d["Resources"]
	if (!ok || res == nil) && inh.Resources != nil {
		res = inh.Resources
	}

	return &Page{
		Number:    pageNr,
		Dict:      d,
		Box:       box,
		MediaBox:  media,
		Rotate:    inh.Rotate,
		Resources: res,
	}, nil
}

// Content returns the decoded content stream of p, or nil for a page
// without content.
func Content(ctx *model.Context, p *Page) ([]byte, error) {
	if o, ok := p.Dict["Contents"]; !ok || o == nil {
		return nil, nil
	}
	content, err := ctx.PageContent(p.Dict)
	if err != nil {
		return nil, fmt.Errorf("failed to read content of page %d: %w", p.Number, err)
	}
	return content, nil
}

// EmbedPage wraps the content and resources of p in a form XObject so it can
// be drawn onto a page with an arbitrary transformation.
func EmbedPage(ctx *model.Context, p *Page) (*types.IndirectRef, error) {
	content, err := Content(ctx, p)
	if err != nil {
		return nil, err
	}
	sd, err := ctx.NewStreamDictForBuf(content)
	if err != nil {
		return nil, fmt.Errorf("failed to create form for page %d: %w", p.Number, err)
	}
	sd.Dict["Type"] = types.Name("XObject")
	sd.Dict["Subtype"] = types.Name("Form")
	sd.Dict["BBox"] = p.Box.Array()
	if p.Resources != nil {
		sd.Dict["Resources"] = p.Resources
	}
	if err := sd.Encode(); err != nil {
		return nil, fmt.Errorf("failed to encode form for page %d: %w", p.Number, err)
	}
	ref, err := ctx.IndRefForNewObject(*sd)
	if err != nil {
		return nil, fmt.Errorf("failed to register form for page %d: %w", p.Number, err)
	}
	return ref, nil
}

// AddStandardFont registers one of the 14 standard Type1 fonts.
func AddStandardFont(ctx *model.Context, baseFont string) (*types.IndirectRef, error) {
	d := types.Dict{
		"Type":     types.Name("Font"),
		"Subtype":  types.Name("Type1"),
		"BaseFont": types.Name(baseFont),
		"Encoding": types.Name("WinAnsiEncoding"),
	}
	ref, err := ctx.IndRefForNewObject(d)
	if err != nil {
		return nil, fmt.Errorf("failed to register font %s: %w", baseFont, err)
	}
	return ref, nil
}

// ReplacePage installs content and resources on p. A non-nil box becomes the
// page's MediaBox and CropBox and resets /Rotate.
func ReplacePage(ctx *model.Context, p *Page, box *types.Rectangle, content []byte, resources types.Dict) error {
	sd, err := ctx.NewStreamDictForBuf(content)
	if err != nil {
		return fmt.Errorf("failed to create content for page %d: %w", p.Number, err)
	}
	if err := sd.Encode(); err != nil {
		return fmt.Errorf("failed to encode content for page %d: %w", p.Number, err)
	}
	ref, err := ctx.IndRefForNewObject(*sd)
	if err != nil {
		return fmt.Errorf("failed to register content for page %d: %w", p.Number, err)
	}

	p.Dict["Contents"] = *ref
	p.Dict["Resources"] = resources
	if box != nil {
		p.Dict["MediaBox"] = box.Array()
		p.Dict["CropBox"] = box.Array()
		for _, k := range []string{"TrimBox", "BleedBox", "ArtBox"} {
			delete(p.Dict, k)
		}
		p.Dict["Rotate"] = types.Integer(0)
		p.Box, p.MediaBox, p.Rotate = box, box, 0
	}
	return nil
}

// SetRotation stores a /Rotate value, normalised into [0,360).
func SetRotation(p *Page, degrees int) {
	n := NormalizeDegrees(degrees)
	p.Dict["Rotate"] = types.Integer(n)
	p.Rotate = n
}

// NormalizeDegrees maps any angle into [0,360).
func NormalizeDegrees(degrees int) int {
	return ((degrees % 360) + 360) % 360
}

// Matrix is a PDF transformation matrix [a b c d e f].
type Matrix [6]float64

// Identity is the identity transform.
var Identity = Matrix{1, 0, 0, 1, 0, 0}

// Apply transforms the point (x, y).
func (m Matrix) Apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// String renders the matrix as a cm operand list.
func (m Matrix) String() string {
	parts := make([]string, len(m))
	for i, v := range m {
		parts[i] = Num(v)
	}
	return strings.Join(parts, " ")
}

// Num formats a number for a content stream.
func Num(f float64) string {
	f = math.Round(f*1e4) / 1e4
	if f == 0 {
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Rect formats a rectangle for the re operator.
func Rect(x, y, w, h float64) string {
	return fmt.Sprintf("%s %s %s %s re", Num(x), Num(y), Num(w), Num(h))
}

// EscapeString escapes s as a PDF literal string body. Runes outside
// WinAnsi's ASCII range are replaced with '?'.
func EscapeString(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '(' || r == ')' || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n' || r == '\r' || r == '\t':
			b.WriteByte(' ')
		case r < 32 || r > 126:
			b.WriteByte('?')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
