package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-pdftools/internal/apikey"
	"go-pdftools/internal/pdferr"
	"go-pdftools/internal/processor"
	"go-pdftools/internal/store"

	"github.com/rs/zerolog"
)

type failingHistory struct{ calls int }

func (f *failingHistory) RecordHistory(ctx context.Context, e store.Entry) error {
	f.calls++
	return errors.New("database is locked")
}

func TestWriteValidationListsEveryError(t *testing.T) {
	var res processor.ValidationResult
	res.Add(pdferr.New(pdferr.FileEmpty, "a.pdf", nil))
	res.Add(pdferr.New(pdferr.FileNotPDF, "b.pdf", nil))

	rec := httptest.NewRecorder()
	writeValidation(rec, res)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
	var body ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if body.Code != pdferr.FileEmpty {
		t.Errorf("Expected first error FILE_EMPTY, got %s", body.Code)
	}
	if len(body.Errors) != 2 {
		t.Errorf("Expected 2 listed errors, got %d", len(body.Errors))
	}
}

func TestWriteErrorClassifiesPlainErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("boom"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", rec.Code)
	}
	var body ErrorResponse
	json.NewDecoder(rec.Body).Decode(&body)
	if body.Code != pdferr.ProcessingFailed || body.Details != "boom" {
		t.Errorf("Unexpected body %+v", body)
	}
}

func TestRequireAPIKey(t *testing.T) {
	keys := store.NewMemory()
	key, _ := apikey.Generate()
	keys.AddKey(context.Background(), apikey.Hash(key), "test")

	h := NewAPIHandler(Deps{Keys: apikey.NewValidator(keys, zerolog.Nop()), Logger: zerolog.Nop()})
	next := h.RequireAPIKey(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/merge", nil)
	rec := httptest.NewRecorder()
	next.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without key, got %d", rec.Code)
	}

	req.Header.Set("x-api-key", key)
	rec = httptest.NewRecorder()
	next.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected 204 with key, got %d", rec.Code)
	}

	open := NewAPIHandler(Deps{Logger: zerolog.Nop()}).RequireAPIKey(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	req.Header.Del("x-api-key")
	rec = httptest.NewRecorder()
	open.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected auth to be skipped without a validator, got %d", rec.Code)
	}
}

func TestHistoryFailureIsNotSurfaced(t *testing.T) {
	hist := &failingHistory{}
	h := NewAPIHandler(Deps{History: hist, Logger: zerolog.Nop()})
	h.record(context.Background(), "merge", "a.pdf", processor.Output{Success: true}, 0)
	if hist.calls != 1 {
		t.Errorf("Expected one history call, got %d", hist.calls)
	}
}
