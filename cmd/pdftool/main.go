package main

import (
	"errors"
	"os"

	"go-pdftools/cmd/pdftool/commands"
	"go-pdftools/cmd/pdftool/ui"
	"go-pdftools/internal/pdferr"
)

func main() {
	if err := commands.Execute(); err != nil {
		var pe *pdferr.PDFError
		if errors.As(err, &pe) {
			ui.Error("[%s] %s", pe.Code, pe.Message)
			if pe.Details != "" {
				ui.Error("  %s", pe.Details)
			}
			if pe.SuggestedAction != "" {
				ui.Warn("%s", pe.SuggestedAction)
			}
		} else {
			ui.Error("%v", err)
		}
		os.Exit(1)
	}
}
