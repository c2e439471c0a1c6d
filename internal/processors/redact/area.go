// Package redact draws opaque boxes over regions of PDF pages.
//
// Redaction here is visual only. The boxes are painted on top of the page
// and the text underneath stays in the content stream, so it can still be
// selected or extracted. Output metadata carries visualOnly=true to make
// that explicit.
package redact

import (
	"fmt"

	"go-pdftools/internal/pdferr"
	"go-pdftools/internal/processor"
)

// Area is a region to redact in UI coordinates: origin at the top-left of
// the page, y growing downwards, units in PDF points.
type Area struct {
	// Page is 1-based.
	Page            int     `json:"page" yaml:"page"`
	X               float64 `json:"x" yaml:"x"`
	Y               float64 `json:"y" yaml:"y"`
	Width           float64 `json:"width" yaml:"width"`
	Height          float64 `json:"height" yaml:"height"`
	ReplacementText string  `json:"replacementText,omitempty" yaml:"replacementText,omitempty"`
}

// ValidateAreas checks every area against a document of pageCount pages and
// reports all violations.
func ValidateAreas(areas []Area, pageCount int) processor.ValidationResult {
	res := processor.ValidationResult{Valid: true}
	for i, a := range areas {
		for _, msg := range areaProblems(a, pageCount) {
			res.Add(pdferr.New(pdferr.InvalidRedactionArea, fmt.Sprintf("area %d: %s", i+1, msg), nil))
		}
	}
	return res
}

func areaProblems(a Area, pageCount int) []string {
	var out []string
	if a.Page < 1 || a.Page > pageCount {
		out = append(out, fmt.Sprintf("invalid page number %d (document has %d pages)", a.Page, pageCount))
	}
	if a.Width <= 0 {
		out = append(out, fmt.Sprintf("Width must be positive, got %g", a.Width))
	}
	if a.Height <= 0 {
		out = append(out, fmt.Sprintf("Height must be positive, got %g", a.Height))
	}
	if a.X < 0 {
		out = append(out, fmt.Sprintf("X coordinate must not be negative, got %g", a.X))
	}
	if a.Y < 0 {
		out = append(out, fmt.Sprintf("Y coordinate must not be negative, got %g", a.Y))
	}
	return out
}
