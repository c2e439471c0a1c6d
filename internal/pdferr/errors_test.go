package pdferr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryCodeHasOneCategory(t *testing.T) {
	codes := AllCodes()
	assert.Len(t, CodeCategory, len(codes), "table and code list disagree")
	for _, code := range codes {
		cat, ok := CodeCategory[code]
		require.True(t, ok, "missing category for %s", code)
		assert.Equal(t, cat, CategoryOf(code))
		assert.NotEmpty(t, messages[code], "missing message for %s", code)
		assert.NotEmpty(t, suggestedActions[code], "missing action for %s", code)
	}
}

func TestClassificationIsDeterministic(t *testing.T) {
	for _, code := range AllCodes() {
		first, firstRec, firstSev := CategoryOf(code), IsRecoverable(code), SeverityOf(code)
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, CategoryOf(code))
			assert.Equal(t, firstRec, IsRecoverable(code))
			assert.Equal(t, firstSev, SeverityOf(code))
		}
	}
}

func TestIsRecoverable(t *testing.T) {
	assert.False(t, IsRecoverable(FileCorrupted))
	assert.False(t, IsRecoverable(PDFMalformed))
	assert.False(t, IsRecoverable(BrowserNotSupported))
	assert.True(t, IsRecoverable(InvalidOptions))
	assert.True(t, IsRecoverable(ProcessingTimeout))
}

func TestSeverity(t *testing.T) {
	assert.Equal(t, SeverityCritical, SeverityOf(FileCorrupted))
	assert.Equal(t, SeverityWarning, SeverityOf(ProcessingCancelled))
	assert.Equal(t, SeverityError, SeverityOf(ProcessingFailed))
}

func TestNewSubstitutesPlaceholders(t *testing.T) {
	e := New(FileTooLarge, "report.pdf", Params{"maxSize": "50 MB"})
	assert.Equal(t, "File is too large. Maximum size is 50 MB.", e.Message)
	assert.Equal(t, CategoryFile, e.Category)
	assert.Equal(t, "report.pdf", e.Details)
	assert.True(t, e.Recoverable)
	assert.NotEmpty(t, e.SuggestedAction)

	unfilled := New(FileTooLarge, "", nil)
	assert.Contains(t, unfilled.Message, "{maxSize}")
}

func TestNewUnknownCodeFallsBack(t *testing.T) {
	e := New(Code("NOT_A_CODE"), "", nil)
	assert.Equal(t, CategoryProcessing, e.Category)
	assert.Equal(t, DefaultMessage(Unknown), e.Message)
}

func TestToPDFError(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Code
	}{
		{"passthrough", New(InvalidOptions, "", nil), InvalidOptions},
		{"wrapped passthrough", fmt.Errorf("load: %w", New(FileNotPDF, "", nil)), FileNotPDF},
		{"context cancelled", context.Canceled, ProcessingCancelled},
		{"deadline", fmt.Errorf("run: %w", context.DeadlineExceeded), ProcessingTimeout},
		{"timeout message", errors.New("engine timeout after 30s"), ProcessingTimeout},
		{"quota", fmt.Errorf("alloc: %w", ErrQuotaExceeded), MemoryExceeded},
		{"out of memory", errors.New("runtime: out of memory"), MemoryExceeded},
		{"encrypted", errors.New("document is Encrypted"), PDFEncrypted},
		{"password", errors.New("pdfcpu: please provide the correct password"), PDFEncrypted},
		{"generic", errors.New("boom"), ProcessingFailed},
		{"nil", nil, Unknown},
		{"non-error value", "panic string", Unknown},
		{"non-error int", 42, Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToPDFError(tt.in)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Code)
			assert.Equal(t, CategoryOf(tt.want), got.Category)
		})
	}
}

func TestToPDFErrorKeepsCause(t *testing.T) {
	cause := errors.New("boom")
	got := ToPDFError(cause)
	assert.ErrorIs(t, got, cause)
	assert.Equal(t, "boom", got.Details)
}

func TestHasCodeAndIs(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(PDFNoPages, "", nil))
	assert.True(t, HasCode(err, PDFNoPages))
	assert.False(t, HasCode(err, FileEmpty))
	assert.ErrorIs(t, err, New(PDFNoPages, "other details", nil))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(New(InvalidOptions, "", nil)))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(New(FileNotPDF, "", nil)))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(New(APIKeyInvalid, "", nil)))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(New(ProcessingFailed, "", nil)))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("plain")))
}
