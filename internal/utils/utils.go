// Package utils provides helpers for file names and IDs.
//
// Functions:
//   - SanitizeFilename: Returns a safe filename for storage.
//     Input: string (filename)
//     Output: string (sanitized filename)
//   - WithSuffix: Derives an output filename from an input filename.
//     Input: string (filename), suffix, extension
//     Output: string (e.g. "report-rotated.pdf")
//   - GenerateUUID: Returns a new UUID string.
//     Output: string (UUID)
//
// Used throughout the backend for safe file handling and unique IDs.
package utils

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

func SanitizeFilename(name string) string {
	base := filepath.Base(name)
	safe := unsafeChars.ReplaceAllString(base, "_")
	if len(safe) > 100 {
		safe = safe[:100]
	}
	return safe
}

// Stem is the sanitized base name of name without its extension. It falls
// back to "document" when nothing usable is left.
func Stem(name string) string {
	base := SanitizeFilename(name)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stem = strings.Trim(stem, "._")
	if stem == "" {
		return "document"
	}
	return stem
}

// WithSuffix builds "<stem><suffix><ext>" from name.
func WithSuffix(name, suffix, ext string) string {
	return Stem(name) + suffix + ext
}

func GenerateUUID() string {
	return uuid.New().String()
}
