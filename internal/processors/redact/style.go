package redact

import (
	"fmt"
	"strconv"
	"strings"

	"go-pdftools/internal/pdf"
)

// RGB is a colour with components in [0,1].
type RGB struct {
	R, G, B float64
}

var (
	Black = RGB{0, 0, 0}
	White = RGB{1, 1, 1}
)

// ParseColor accepts "#RGB", "#RRGGBB" or the same without the hash.
func ParseColor(s string) (RGB, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return RGB{}, fmt.Errorf("color %q is not a hex color", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("color %q is not a hex color", s)
	}
	return RGB{
		R: float64(v>>16&0xff) / 255,
		G: float64(v>>8&0xff) / 255,
		B: float64(v&0xff) / 255,
	}, nil
}

func (c RGB) fill() string {
	return fmt.Sprintf("%s %s %s rg", pdf.Num(c.R), pdf.Num(c.G), pdf.Num(c.B))
}

func (c RGB) stroke() string {
	return fmt.Sprintf("%s %s %s RG", pdf.Num(c.R), pdf.Num(c.G), pdf.Num(c.B))
}

// helvetica holds the Helvetica advance widths for ASCII 32..126 in
// thousandths of an em.
var helvetica = [95]int{
	278, 278, 355, 556, 556, 889, 667, 191, 333, 333, 389, 584, 278, 333, 278, 278, // space../
	556, 556, 556, 556, 556, 556, 556, 556, 556, 556, // 0..9
	278, 278, 584, 584, 584, 556, 1015, // :..@
	667, 667, 722, 722, 667, 611, 778, 722, 278, 500, 667, 556, 833, // A..M
	722, 778, 667, 778, 722, 667, 611, 722, 667, 944, 667, 667, 611, // N..Z
	278, 278, 278, 469, 556, 333, // [..`
	556, 556, 500, 556, 556, 278, 556, 556, 222, 222, 500, 222, 833, // a..m
	556, 556, 556, 556, 333, 500, 278, 556, 500, 722, 500, 500, 500, // n..z
	334, 260, 334, 584, // {..~
}

// TextWidth is the width of s set in Helvetica at size points. s is
// measured after escaping, so unsupported runes count as '?'.
func TextWidth(s string, size float64) float64 {
	units := 0
	for _, r := range s {
		if r < 32 || r > 126 {
			r = '?'
		}
		units += helvetica[r-32]
	}
	return float64(units) * size / 1000
}
