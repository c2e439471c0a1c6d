package pdferr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrQuotaExceeded marks allocation or storage quota failures from lower
// layers. ToPDFError maps it to MemoryExceeded.
var ErrQuotaExceeded = errors.New("quota exceeded")

// PDFError is the structured error every processor returns.
type PDFError struct {
	Code            Code     `json:"code"`
	Category        Category `json:"category"`
	Message         string   `json:"message"`
	Details         string   `json:"details,omitempty"`
	Recoverable     bool     `json:"recoverable"`
	SuggestedAction string   `json:"suggestedAction,omitempty"`

	cause error
}

// Error implements the error interface
func (e *PDFError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *PDFError) Unwrap() error {
	return e.cause
}

// Severity returns the display severity of the error's code.
func (e *PDFError) Severity() Severity {
	return SeverityOf(e.Code)
}

// Params holds placeholder values for message templates.
type Params map[string]any

// New builds a fully populated error for code. Placeholders of the form
// {name} in the template are replaced from params; unknown placeholders are
// left as they are.
func New(code Code, details string, params Params) *PDFError {
	return &PDFError{
		Code:            code,
		Category:        CategoryOf(code),
		Message:         expand(DefaultMessage(code), params),
		Details:         details,
		Recoverable:     IsRecoverable(code),
		SuggestedAction: SuggestedAction(code),
	}
}

// Wrap is New with cause attached; details default to the cause's message.
func Wrap(code Code, cause error, params Params) *PDFError {
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	e := New(code, details, params)
	e.cause = cause
	return e
}

// Is matches a *PDFError by code so errors.Is(err, New(code, "", nil)) works.
func (e *PDFError) Is(target error) bool {
	t, ok := target.(*PDFError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// HasCode reports whether err is or wraps a *PDFError with code.
func HasCode(err error, code Code) bool {
	var pe *PDFError
	return errors.As(err, &pe) && pe.Code == code
}

// ToPDFError classifies an arbitrary value, typically an error returned by a
// library or a value recovered from a panic.
func ToPDFError(v any) *PDFError {
	err, ok := v.(error)
	if !ok || err == nil {
		details := ""
		if v != nil {
			details = fmt.Sprint(v)
		}
		return New(Unknown, details, nil)
	}

	var pe *PDFError
	if errors.As(err, &pe) {
		return pe
	}

	msg := strings.ToLower(err.Error())
	switch {
	case errors.Is(err, context.Canceled):
		return Wrap(ProcessingCancelled, err, nil)
	case errors.Is(err, context.DeadlineExceeded), strings.Contains(msg, "timeout"):
		return Wrap(ProcessingTimeout, err, nil)
	case errors.Is(err, ErrQuotaExceeded), strings.Contains(msg, "out of memory"):
		return Wrap(MemoryExceeded, err, nil)
	case strings.Contains(msg, "encrypted"), strings.Contains(msg, "password"):
		return Wrap(PDFEncrypted, err, nil)
	default:
		return Wrap(ProcessingFailed, err, nil)
	}
}

// HTTPStatus maps an error to the status code the API layer responds with.
func HTTPStatus(err error) int {
	var pe *PDFError
	if !errors.As(err, &pe) {
		return http.StatusInternalServerError
	}
	if pe.Code == APIKeyInvalid {
		return http.StatusUnauthorized
	}
	switch pe.Category {
	case CategoryFile, CategoryValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func expand(template string, params Params) string {
	if len(params) == 0 || !strings.Contains(template, "{") {
		return template
	}
	pairs := make([]string, 0, len(params)*2)
	for k, v := range params {
		pairs = append(pairs, "{"+k+"}", fmt.Sprint(v))
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
