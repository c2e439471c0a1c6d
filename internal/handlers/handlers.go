// Package handlers provides HTTP handlers for the PDF tools API.
//
// This package contains the endpoints that run a tool synchronously, the
// async job endpoints and the health check. Every failure is answered with
// a JSON body built from a *pdferr.PDFError.
//
// Example usage:
//
//	h := handlers.NewAPIHandler(handlers.Deps{Registry: reg, Jobs: jm})
//	r := chi.NewRouter()
//	r.Post("/api/v1/{tool}", h.RunTool)
//
// All handlers are designed to be used with the chi router.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go-pdftools/internal/apikey"
	"go-pdftools/internal/jobs"
	"go-pdftools/internal/pdferr"
	"go-pdftools/internal/processor"
	"go-pdftools/internal/processors"
	"go-pdftools/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// HistoryRecorder persists one entry per processed request.
type HistoryRecorder interface {
	RecordHistory(ctx context.Context, e store.Entry) error
}

// Deps bundles what the handlers need. Keys may be nil to disable auth and
// History may be nil to skip recording.
type Deps struct {
	Registry      *processors.Registry
	Jobs          *jobs.Manager
	Keys          *apikey.Validator
	History       HistoryRecorder
	UploadDir     string
	MaxUploadSize int64
	MaxFiles      int
	Logger        zerolog.Logger
}

type APIHandler struct {
	Registry      *processors.Registry
	Jobs          *jobs.Manager
	Keys          *apikey.Validator
	History       HistoryRecorder
	UploadDir     string
	MaxUploadSize int64
	MaxFiles      int
	log           zerolog.Logger
}

func NewAPIHandler(d Deps) *APIHandler {
	if d.MaxUploadSize <= 0 {
		d.MaxUploadSize = 50 << 20
	}
	if d.MaxFiles <= 0 {
		d.MaxFiles = 20
	}
	return &APIHandler{
		Registry:      d.Registry,
		Jobs:          d.Jobs,
		Keys:          d.Keys,
		History:       d.History,
		UploadDir:     d.UploadDir,
		MaxUploadSize: d.MaxUploadSize,
		MaxFiles:      d.MaxFiles,
		log:           d.Logger.With().Str("component", "handlers").Logger(),
	}
}

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error           string          `json:"error"`
	Code            pdferr.Code     `json:"code"`
	Recoverable     bool            `json:"recoverable"`
	SuggestedAction string          `json:"suggestedAction,omitempty"`
	Details         string          `json:"details,omitempty"`
	Errors          []ErrorResponse `json:"errors,omitempty"`
}

// ToolInfo describes a registered tool.
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	MultiFile   bool   `json:"multiFile"`
}

// Health godoc
// @Summary      Health check
// @Description  Reports that the service is up
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string  "{ status: ok }"
// @Router       /health [get]
func (h *APIHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListTools godoc
// @Summary      List tools
// @Description  Lists every tool the API can run
// @Tags         tools
// @Produce      json
// @Success      200  {array}  ToolInfo
// @Router       /api/v1/tools [get]
func (h *APIHandler) ListTools(w http.ResponseWriter, r *http.Request) {
	tools := h.Registry.Tools()
	out := make([]ToolInfo, 0, len(tools))
	for _, t := range tools {
		out = append(out, ToolInfo{Name: t.Name, Description: t.Description, MultiFile: t.MultiFile})
	}
	writeJSON(w, http.StatusOK, out)
}

// RequireAPIKey rejects requests without a valid x-api-key header. It is a
// no-op when no validator is configured.
func (h *APIHandler) RequireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Keys != nil && !h.Keys.ValidateAPIKey(r.Context(), r.Header.Get("x-api-key")) {
			writeError(w, pdferr.New(pdferr.APIKeyInvalid, "", nil))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RunTool godoc
// @Summary      Run a tool
// @Description  Processes the uploaded PDFs with the named tool and returns the result file
// @Tags         tools
// @Accept       multipart/form-data
// @Produce      application/pdf,application/zip,application/epub+zip,application/x-mobipocket-ebook
// @Security     ApiKeyAuth
// @Param        tool     path      string  true   "Tool name"
// @Param        file     formData  file    false  "PDF file"
// @Param        files    formData  file    false  "PDF files, in order"
// @Param        options  formData  string  false  "Tool options as JSON"
// @Success      200  {file}    file           "Result file"
// @Failure      400  {object}  ErrorResponse  "Invalid input"
// @Failure      401  {object}  ErrorResponse  "Invalid API key"
// @Failure      404  {object}  ErrorResponse  "Unknown tool"
// @Failure      500  {object}  ErrorResponse  "Processing failed"
// @Router       /api/v1/{tool} [post]
func (h *APIHandler) RunTool(w http.ResponseWriter, r *http.Request) {
	tool, ok := h.lookup(w, r)
	if !ok {
		return
	}
	in, names, _, err := h.readUpload(w, r, tool, false)
	if err != nil {
		writeError(w, err)
		return
	}

	p := tool.New()
	if res := p.Validate(r.Context(), in.Files); !res.Valid {
		writeValidation(w, res)
		return
	}

	start := time.Now()
	out := p.Process(r.Context(), in, nil)
	filename := ""
	if len(names) > 0 {
		filename = names[0]
	}
	h.record(r.Context(), tool.Name, filename, out, time.Since(start))
	if !out.Success {
		h.log.Warn().Str("tool", tool.Name).Str("code", string(out.Error.Code)).Msg(out.Error.Error())
		writeError(w, out.Error)
		return
	}
	writeFile(w, out)
}

func (h *APIHandler) lookup(w http.ResponseWriter, r *http.Request) (processors.Tool, bool) {
	name := chi.URLParam(r, "tool")
	tool, ok := h.Registry.Lookup(name)
	if !ok {
		writeErrorStatus(w, http.StatusNotFound, pdferr.New(pdferr.InvalidOptions, fmt.Sprintf("unknown tool %q", name), nil))
	}
	return tool, ok
}

// record stores a history entry. Failures are logged and otherwise ignored.
func (h *APIHandler) record(ctx context.Context, tool, filename string, out processor.Output, elapsed time.Duration) {
	recordHistory(ctx, h.History, h.log, tool, filename, out, elapsed)
}

func recordHistory(ctx context.Context, history HistoryRecorder, log zerolog.Logger, tool, filename string, out processor.Output, elapsed time.Duration) {
	if history == nil {
		return
	}
	e := store.Entry{Tool: tool, Filename: filename, Success: out.Success, Duration: elapsed}
	if out.Error != nil {
		e.ErrorCode = string(out.Error.Code)
	}
	if err := history.RecordHistory(context.WithoutCancel(ctx), e); err != nil {
		log.Warn().Err(err).Str("tool", tool).Msg("could not record history")
	}
}

func toResponse(e *pdferr.PDFError) ErrorResponse {
	return ErrorResponse{
		Error:           e.Message,
		Code:            e.Code,
		Recoverable:     e.Recoverable,
		SuggestedAction: e.SuggestedAction,
		Details:         e.Details,
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeErrorStatus(w, pdferr.HTTPStatus(err), pdferr.ToPDFError(err))
}

func writeErrorStatus(w http.ResponseWriter, status int, e *pdferr.PDFError) {
	writeJSON(w, status, toResponse(e))
}

func writeValidation(w http.ResponseWriter, res processor.ValidationResult) {
	first := res.First()
	if first == nil {
		first = pdferr.New(pdferr.InvalidOptions, "validation failed", nil)
	}
	body := toResponse(first)
	if len(res.Errors) > 1 {
		for _, e := range res.Errors {
			body.Errors = append(body.Errors, toResponse(e))
		}
	}
	writeJSON(w, pdferr.HTTPStatus(first), body)
}

func writeFile(w http.ResponseWriter, out processor.Output) {
	contentType := out.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", out.Filename))
	w.Header().Set("Content-Length", fmt.Sprint(len(out.Result)))
	w.WriteHeader(http.StatusOK)
	w.Write(out.Result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
