package processor

import (
	"go-pdftools/internal/pdferr"

	"github.com/dustin/go-humanize"
)

// Limits bounds the files a processor accepts. Zero values disable a check.
type Limits struct {
	MinFiles    int
	MaxFiles    int
	MaxFileSize int64
}

// ValidatePDFFiles runs the common pre-flight checks and collects every
// violation instead of stopping at the first.
func ValidatePDFFiles(files []File, limits Limits) ValidationResult {
	res := ValidationResult{Valid: true}

	if len(files) == 0 {
		res.Add(pdferr.New(pdferr.InvalidOptions, "no files provided", nil))
		return res
	}
	if limits.MinFiles > 0 && len(files) < limits.MinFiles {
		res.Add(pdferr.New(pdferr.TooFewFiles, "", pdferr.Params{"minFiles": limits.MinFiles}))
	}
	if limits.MaxFiles > 0 && len(files) > limits.MaxFiles {
		res.Add(pdferr.New(pdferr.TooManyFiles, "", pdferr.Params{"maxFiles": limits.MaxFiles}))
	}

	for _, f := range files {
		if f.Size() == 0 {
			res.Add(pdferr.New(pdferr.FileEmpty, f.Name(), nil))
			continue
		}
		if limits.MaxFileSize > 0 && f.Size() > limits.MaxFileSize {
			res.Add(pdferr.New(pdferr.FileTooLarge, f.Name(), pdferr.Params{"maxSize": FormatSize(limits.MaxFileSize)}))
			continue
		}
		data, err := f.Bytes()
		if err != nil {
			res.Add(pdferr.Wrap(pdferr.FileReadFailed, err, nil))
			continue
		}
		if !LooksLikePDF(data) {
			res.Add(pdferr.New(pdferr.FileNotPDF, f.Name(), nil))
		}
	}
	return res
}

// FormatSize renders a byte count for messages, in IEC units.
func FormatSize(n int64) string {
	return humanize.IBytes(uint64(max(n, 0)))
}
