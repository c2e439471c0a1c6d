// Package pdferr defines the error taxonomy shared by every PDF processor.
//
// Every code maps to exactly one category, one message template and one
// recoverability flag. The tables are fixed at compile time; nothing in this
// package has side effects.
package pdferr

// Code identifies a specific failure.
type Code string

const (
	FileTooLarge   Code = "FILE_TOO_LARGE"
	FileNotPDF     Code = "FILE_NOT_PDF"
	FileEmpty      Code = "FILE_EMPTY"
	FileCorrupted  Code = "FILE_CORRUPTED"
	FileReadFailed Code = "FILE_READ_FAILED"
	TooManyFiles   Code = "TOO_MANY_FILES"
	TooFewFiles    Code = "TOO_FEW_FILES"
	PDFEncrypted   Code = "PDF_ENCRYPTED"
	PDFMalformed   Code = "PDF_MALFORMED"
	PDFNoPages     Code = "PDF_NO_PAGES"

	ProcessingFailed    Code = "PROCESSING_FAILED"
	ProcessingCancelled Code = "PROCESSING_CANCELLED"
	ProcessingTimeout   Code = "PROCESSING_TIMEOUT"
	WorkerFailed        Code = "WORKER_FAILED"
	Unknown             Code = "UNKNOWN_ERROR"

	InvalidOptions       Code = "INVALID_OPTIONS"
	InvalidPageRange     Code = "INVALID_PAGE_RANGE"
	InvalidRedactionArea Code = "INVALID_REDACTION_AREA"

	MemoryExceeded      Code = "MEMORY_EXCEEDED"
	BrowserNotSupported Code = "BROWSER_NOT_SUPPORTED"
	WorkerUnavailable   Code = "WORKER_UNAVAILABLE"

	NetworkError  Code = "NETWORK_ERROR"
	APIKeyInvalid Code = "API_KEY_INVALID"
)

// Category groups codes by where the failure originated.
type Category string

const (
	CategoryFile       Category = "FILE_ERROR"
	CategoryProcessing Category = "PROCESSING_ERROR"
	CategoryValidation Category = "VALIDATION_ERROR"
	CategoryNetwork    Category = "NETWORK_ERROR"
	// CategoryBrowser covers resource limits of the host environment.
	CategoryBrowser Category = "BROWSER_ERROR"
)

// Severity tells a caller how loudly to surface an error.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// CodeCategory is the fixed code → category table.
var CodeCategory = map[Code]Category{
	FileTooLarge:   CategoryFile,
	FileNotPDF:     CategoryFile,
	FileEmpty:      CategoryFile,
	FileCorrupted:  CategoryFile,
	FileReadFailed: CategoryFile,
	TooManyFiles:   CategoryFile,
	TooFewFiles:    CategoryFile,
	PDFEncrypted:   CategoryFile,
	PDFMalformed:   CategoryFile,
	PDFNoPages:     CategoryFile,

	ProcessingFailed:    CategoryProcessing,
	ProcessingCancelled: CategoryProcessing,
	ProcessingTimeout:   CategoryProcessing,
	WorkerFailed:        CategoryProcessing,
	Unknown:             CategoryProcessing,

	InvalidOptions:       CategoryValidation,
	InvalidPageRange:     CategoryValidation,
	InvalidRedactionArea: CategoryValidation,

	MemoryExceeded:      CategoryBrowser,
	BrowserNotSupported: CategoryBrowser,
	WorkerUnavailable:   CategoryBrowser,

	NetworkError:  CategoryNetwork,
	APIKeyInvalid: CategoryNetwork,
}

var messages = map[Code]string{
	FileTooLarge:   "File is too large. Maximum size is {maxSize}.",
	FileNotPDF:     "The file is not a valid PDF document.",
	FileEmpty:      "The file is empty.",
	FileCorrupted:  "The PDF file appears to be corrupted.",
	FileReadFailed: "The file could not be read.",
	TooManyFiles:   "Too many files. A maximum of {maxFiles} files can be processed at once.",
	TooFewFiles:    "At least {minFiles} files are required.",
	PDFEncrypted:   "The PDF is password protected.",
	PDFMalformed:   "The PDF structure is malformed and cannot be processed.",
	PDFNoPages:     "The PDF does not contain any pages.",

	ProcessingFailed:    "Processing failed.",
	ProcessingCancelled: "Processing was cancelled.",
	ProcessingTimeout:   "Processing timed out.",
	WorkerFailed:        "The processing engine reported an error.",
	Unknown:             "An unknown error occurred.",

	InvalidOptions:       "Invalid options provided.",
	InvalidPageRange:     "Invalid page range: {range}.",
	InvalidRedactionArea: "Invalid redaction area.",

	MemoryExceeded:      "Not enough memory to complete the operation.",
	BrowserNotSupported: "This environment does not support the operation.",
	WorkerUnavailable:   "The processing engine is not available.",

	NetworkError:  "A network error occurred.",
	APIKeyInvalid: "Invalid or missing API key.",
}

var suggestedActions = map[Code]string{
	FileTooLarge:   "Compress or split the file and try again.",
	FileNotPDF:     "Select a PDF file.",
	FileEmpty:      "Select a file that is not empty.",
	FileCorrupted:  "Repair the file or export it again from the source application.",
	FileReadFailed: "Upload the file again.",
	TooManyFiles:   "Remove some files and try again.",
	TooFewFiles:    "Add more files and try again.",
	PDFEncrypted:   "Remove the password protection and try again.",
	PDFMalformed:   "Export the document again from the source application.",
	PDFNoPages:     "Select a PDF that contains pages.",

	ProcessingFailed:    "Try again. If the problem persists, try a different file.",
	ProcessingCancelled: "Start the operation again when ready.",
	ProcessingTimeout:   "Try again with a smaller file.",
	WorkerFailed:        "Try again later.",
	Unknown:             "Try again.",

	InvalidOptions:       "Check the options and try again.",
	InvalidPageRange:     "Enter page numbers that exist in the document.",
	InvalidRedactionArea: "Adjust the redaction areas and try again.",

	MemoryExceeded:      "Close other applications or process a smaller file.",
	BrowserNotSupported: "Use a supported environment.",
	WorkerUnavailable:   "Try again later.",

	NetworkError:  "Check the connection and try again.",
	APIKeyInvalid: "Provide a valid API key in the x-api-key header.",
}

var nonRecoverable = map[Code]bool{
	FileCorrupted:       true,
	PDFMalformed:        true,
	BrowserNotSupported: true,
}

var warnings = map[Code]bool{
	ProcessingCancelled: true,
	FileTooLarge:        true,
}

// AllCodes returns every defined code in declaration order.
func AllCodes() []Code {
	return []Code{
		FileTooLarge, FileNotPDF, FileEmpty, FileCorrupted, FileReadFailed,
		TooManyFiles, TooFewFiles, PDFEncrypted, PDFMalformed, PDFNoPages,
		ProcessingFailed, ProcessingCancelled, ProcessingTimeout, WorkerFailed, Unknown,
		InvalidOptions, InvalidPageRange, InvalidRedactionArea,
		MemoryExceeded, BrowserNotSupported, WorkerUnavailable,
		NetworkError, APIKeyInvalid,
	}
}

// CategoryOf returns the category for code. Codes outside the table fall
// into the processing category.
func CategoryOf(code Code) Category {
	if c, ok := CodeCategory[code]; ok {
		return c
	}
	return CategoryProcessing
}

// IsRecoverable reports whether retrying or fixing input can succeed.
func IsRecoverable(code Code) bool {
	return !nonRecoverable[code]
}

// SeverityOf classifies code for display.
func SeverityOf(code Code) Severity {
	switch {
	case nonRecoverable[code]:
		return SeverityCritical
	case warnings[code]:
		return SeverityWarning
	default:
		return SeverityError
	}
}

// DefaultMessage returns the unexpanded template for code.
func DefaultMessage(code Code) string {
	if m, ok := messages[code]; ok {
		return m
	}
	return messages[Unknown]
}

// SuggestedAction returns the remediation text for code.
func SuggestedAction(code Code) string {
	return suggestedActions[code]
}
