// Package rotate turns pages by arbitrary angles.
//
// Multiples of 90° only change the page's /Rotate entry. Any other angle
// wraps the page in a form XObject and draws it, rotated and centred, onto a
// page sized to the rotated bounding box.
package rotate

import (
	"math"

	"go-pdftools/internal/pdf"
)

// IsQuarterTurn reports whether degrees is a multiple of 90.
func IsQuarterTurn(degrees int) bool {
	return degrees%90 == 0
}

// RotatedSize is the bounding box of a w×h rectangle turned by degrees.
func RotatedSize(w, h float64, degrees int) (float64, float64) {
	theta := float64(degrees) * math.Pi / 180
	cos, sin := math.Abs(math.Cos(theta)), math.Abs(math.Sin(theta))
	return w*cos + h*sin, w*sin + h*cos
}

// RotationMatrix turns a box with lower-left corner (x, y) and size w×h
// clockwise by degrees and centres it on a newW×newH page.
func RotationMatrix(x, y, w, h float64, degrees int, newW, newH float64) pdf.Matrix {
	theta := float64(degrees) * math.Pi / 180
	cos, sin := math.Cos(theta), math.Sin(theta)

	// Clockwise in PDF user space, where y points up.
	a, b, c, d := cos, -sin, sin, cos

	cx, cy := x+w/2, y+h/2
	e := newW/2 - (a*cx + c*cy)
	f := newH/2 - (b*cx + d*cy)
	return pdf.Matrix{a, b, c, d, e, f}
}
