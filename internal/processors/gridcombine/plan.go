// Package gridcombine packs the pages of several PDFs onto R×C grids.
package gridcombine

import (
	"fmt"
	"strconv"
	"strings"
)

// PageMode selects which source pages are placed.
type PageMode string

const (
	FirstPageOnly PageMode = "first-page-only"
	AllPages      PageMode = "all-pages"
)

// FillMode decides what happens to cells the source pages do not fill.
type FillMode string

const (
	FillBlank  FillMode = "blank"
	FillRepeat FillMode = "repeat"
)

// MaxSide bounds the rows and the columns of a layout.
const MaxSide = 10

// Layout is an R×C grid.
type Layout struct {
	Rows, Cols int
}

// Cells is the number of pages one output page holds.
func (l Layout) Cells() int { return l.Rows * l.Cols }

func (l Layout) String() string { return fmt.Sprintf("%dx%d", l.Rows, l.Cols) }

// ParseLayout parses an "RxC" token such as "2x1" or "3X3". Both sides must
// lie in 1..MaxSide.
func ParseLayout(token string) (Layout, error) {
	r, c, ok := strings.Cut(strings.ToLower(strings.TrimSpace(token)), "x")
	if !ok {
		return Layout{}, fmt.Errorf("grid layout %q is not of the form RxC", token)
	}
	rows, err := strconv.Atoi(strings.TrimSpace(r))
	if err != nil || rows < 1 {
		return Layout{}, fmt.Errorf("grid layout %q has an invalid row count", token)
	}
	if rows > MaxSide {
		return Layout{}, fmt.Errorf("grid layout %q has more than %d rows", token, MaxSide)
	}
	cols, err := strconv.Atoi(strings.TrimSpace(c))
	if err != nil || cols < 1 {
		return Layout{}, fmt.Errorf("grid layout %q has an invalid column count", token)
	}
	if cols > MaxSide {
		return Layout{}, fmt.Errorf("grid layout %q has more than %d columns", token, MaxSide)
	}
	return Layout{Rows: rows, Cols: cols}, nil
}

// ParsePageMode accepts the mode name; empty means first-page-only.
func ParsePageMode(s string) (PageMode, error) {
	switch PageMode(s) {
	case "", FirstPageOnly:
		return FirstPageOnly, nil
	case AllPages:
		return AllPages, nil
	}
	return "", fmt.Errorf("unknown page mode %q", s)
}

// ParseFillMode accepts the mode name; empty means blank.
func ParseFillMode(s string) (FillMode, error) {
	switch FillMode(s) {
	case "", FillBlank:
		return FillBlank, nil
	case FillRepeat:
		return FillRepeat, nil
	}
	return "", fmt.Errorf("unknown fill mode %q", s)
}

// PageRef points at page Page (1-based) of input file File (0-based).
type PageRef struct {
	File int
	Page int
}

// Plan is the placement order for one run.
type Plan struct {
	Layout Layout
	// Placed lists the pages in cell order, after repeat expansion.
	Placed      []PageRef
	OutputPages int
}

// BuildPlan orders the source pages for pageCounts (pages per input file).
//
// With FillRepeat, a sequence shorter than one grid is cycled until it is
// exactly one grid long. Longer sequences are left as they are and the last
// output page keeps its trailing cells blank.
func BuildPlan(pageCounts []int, layout Layout, pageMode PageMode, fillMode FillMode) Plan {
	var source []PageRef
	for f, n := range pageCounts {
		if n < 1 {
			continue
		}
		if pageMode == FirstPageOnly {
			source = append(source, PageRef{File: f, Page: 1})
			continue
		}
		for p := 1; p <= n; p++ {
			source = append(source, PageRef{File: f, Page: p})
		}
	}

	cells := layout.Cells()
	placed := source
	if fillMode == FillRepeat && len(source) > 0 && len(source) < cells {
		placed = make([]PageRef, cells)
		for i := range placed {
			placed[i] = source[i%len(source)]
		}
	}

	return Plan{
		Layout:      layout,
		Placed:      placed,
		OutputPages: OutputPages(len(placed), cells),
	}
}

// OutputPages is ceil(placed / cells).
func OutputPages(placed, cells int) int {
	if placed <= 0 || cells <= 0 {
		return 0
	}
	return (placed + cells - 1) / cells
}
