// Package processors maps tool names to processor constructors.
//
// Processors hold per-run state, so the registry hands out a fresh instance
// for every request.
package processors

import (
	"fmt"
	"sort"

	"go-pdftools/internal/engine"
	"go-pdftools/internal/processor"
	"go-pdftools/internal/processors/compress"
	"go-pdftools/internal/processors/ebook"
	"go-pdftools/internal/processors/gridcombine"
	"go-pdftools/internal/processors/merge"
	"go-pdftools/internal/processors/redact"
	"go-pdftools/internal/processors/rotate"
	"go-pdftools/internal/processors/split"

	"github.com/rs/zerolog"
)

// Tool names accepted by the API and the CLI.
const (
	Merge       = "merge"
	Split       = "split"
	Compress    = "compress"
	Linearize   = "linearize"
	GridCombine = "grid-combine"
	Rotate      = "rotate"
	Redact      = "redact"
	PDFToEPUB   = "pdf-to-epub"
	PDFToMOBI   = "pdf-to-mobi"
)

// Tool describes one registered processor.
type Tool struct {
	Name        string
	Description string
	// MultiFile tools accept several inputs.
	MultiFile bool
	New       func() processor.Processor
}

// Registry holds the tools available to a server or CLI.
type Registry struct {
	tools map[string]Tool
}

// Config carries what the constructors need.
type Config struct {
	Limits processor.Limits
	Engine engine.Engine
	Logger zerolog.Logger
}

// NewRegistry registers every tool. A nil Engine falls back to
// engine.Native.
func NewRegistry(cfg Config) *Registry {
	eng := cfg.Engine
	if eng == nil {
		eng = engine.Native{}
	}
	l, log := cfg.Limits, cfg.Logger

	r := &Registry{tools: make(map[string]Tool)}
	r.add(Tool{Name: Merge, Description: "Merge PDFs in upload order", MultiFile: true,
		New: func() processor.Processor { return merge.New(l, log) }})
	r.add(Tool{Name: Split, Description: "Split a PDF into single pages",
		New: func() processor.Processor { return split.New(l, log) }})
	r.add(Tool{Name: Compress, Description: "Reduce file size",
		New: func() processor.Processor { return compress.New(engine.Compress, eng, l, log) }})
	r.add(Tool{Name: Linearize, Description: "Optimize for fast web view",
		New: func() processor.Processor { return compress.New(engine.Linearize, eng, l, log) }})
	r.add(Tool{Name: GridCombine, Description: "Place pages of several PDFs on a grid", MultiFile: true,
		New: func() processor.Processor { return gridcombine.New(l, log) }})
	r.add(Tool{Name: Rotate, Description: "Rotate pages by any angle",
		New: func() processor.Processor { return rotate.New(l, log) }})
	r.add(Tool{Name: Redact, Description: "Cover regions of pages with opaque boxes",
		New: func() processor.Processor { return redact.New(l, log) }})
	r.add(Tool{Name: PDFToEPUB, Description: "Convert the text of a PDF to EPUB",
		New: func() processor.Processor { return ebook.New(ebook.EPUB, l, log) }})
	r.add(Tool{Name: PDFToMOBI, Description: "Convert the text of a PDF to a .mobi named EPUB",
		New: func() processor.Processor { return ebook.New(ebook.MOBI, l, log) }})
	return r
}

func (r *Registry) add(t Tool) {
	if _, dup := r.tools[t.Name]; dup {
		panic(fmt.Sprintf("processors: tool %q registered twice", t.Name))
	}
	r.tools[t.Name] = t
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// New returns a fresh processor for name.
func (r *Registry) New(name string) (processor.Processor, bool) {
	t, ok := r.tools[name]
	if !ok {
		return nil, false
	}
	return t.New(), true
}

// Tools lists registered tools sorted by name.
func (r *Registry) Tools() []Tool {
	out := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
