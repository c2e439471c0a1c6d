package handlers

import (
	"context"
	"net/http"
	"time"

	"go-pdftools/internal/jobs"
	"go-pdftools/internal/pdferr"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// JobCreated is returned when a job is accepted.
type JobCreated struct {
	JobID     string `json:"jobId"`
	StatusURL string `json:"statusUrl"`
}

// RecordJobs returns a jobs.FinishFunc that writes finished jobs to history.
func RecordJobs(history HistoryRecorder, log zerolog.Logger) jobs.FinishFunc {
	return func(j *jobs.Job, elapsed time.Duration) {
		out, _ := j.Result()
		recordHistory(context.Background(), history, log, j.Tool, out.Filename, out, elapsed)
	}
}

// CreateJob godoc
// @Summary      Start a job
// @Description  Uploads PDFs and runs the named tool in the background
// @Tags         jobs
// @Accept       multipart/form-data
// @Produce      json
// @Security     ApiKeyAuth
// @Param        tool     path      string  true   "Tool name"
// @Param        file     formData  file    false  "PDF file"
// @Param        files    formData  file    false  "PDF files, in order"
// @Param        options  formData  string  false  "Tool options as JSON"
// @Success      202  {object}  JobCreated
// @Failure      400  {object}  ErrorResponse  "Invalid input"
// @Failure      401  {object}  ErrorResponse  "Invalid API key"
// @Failure      404  {object}  ErrorResponse  "Unknown tool"
// @Router       /api/v1/jobs/{tool} [post]
func (h *APIHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	tool, ok := h.lookup(w, r)
	if !ok {
		return
	}
	in, _, paths, err := h.readUpload(w, r, tool, true)
	if err != nil {
		writeError(w, err)
		return
	}

	p := tool.New()
	if res := p.Validate(r.Context(), in.Files); !res.Valid {
		removeAll(paths)
		writeValidation(w, res)
		return
	}

	job := h.Jobs.Start(tool.Name, p, in, paths)
	h.log.Info().Str("job", job.ID).Str("tool", tool.Name).Int("files", len(in.Files)).Msg("job started")
	writeJSON(w, http.StatusAccepted, JobCreated{JobID: job.ID, StatusURL: "/api/v1/jobs/" + job.ID})
}

// GetJob godoc
// @Summary      Job status
// @Description  Returns the status and progress of a job
// @Tags         jobs
// @Produce      json
// @Security     ApiKeyAuth
// @Param        jobID  path      string  true  "Job ID"
// @Success      200  {object}  jobs.Snapshot
// @Failure      404  {object}  ErrorResponse  "Job not found"
// @Router       /api/v1/jobs/{jobID} [get]
func (h *APIHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, ok := h.job(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

// CancelJob godoc
// @Summary      Cancel a job
// @Description  Asks a running job to stop at its next checkpoint
// @Tags         jobs
// @Produce      json
// @Security     ApiKeyAuth
// @Param        jobID  path      string  true  "Job ID"
// @Success      200  {object}  jobs.Snapshot
// @Failure      404  {object}  ErrorResponse  "Job not found"
// @Router       /api/v1/jobs/{jobID} [delete]
func (h *APIHandler) CancelJob(w http.ResponseWriter, r *http.Request) {
	job, ok := h.job(w, r)
	if !ok {
		return
	}
	job.Cancel()
	writeJSON(w, http.StatusOK, job.Snapshot())
}

// JobResult godoc
// @Summary      Download a job result
// @Description  Downloads the output of a finished job
// @Tags         jobs
// @Produce      application/pdf,application/zip,application/epub+zip,application/x-mobipocket-ebook
// @Security     ApiKeyAuth
// @Param        jobID  path      string  true  "Job ID"
// @Success      200  {file}    file           "Result file"
// @Failure      404  {object}  ErrorResponse  "Job not found"
// @Failure      409  {object}  jobs.Snapshot  "Job still running"
// @Failure      500  {object}  ErrorResponse  "Job failed"
// @Router       /api/v1/jobs/{jobID}/result [get]
func (h *APIHandler) JobResult(w http.ResponseWriter, r *http.Request) {
	job, ok := h.job(w, r)
	if !ok {
		return
	}
	snap := job.Snapshot()
	if !snap.Status.Done() {
		writeJSON(w, http.StatusConflict, snap)
		return
	}
	out, ok := job.Result()
	if !ok {
		if out.Error == nil {
			out.Error = pdferr.New(pdferr.ProcessingFailed, "job did not succeed", nil)
		}
		writeError(w, out.Error)
		return
	}
	writeFile(w, out)
}

func (h *APIHandler) job(w http.ResponseWriter, r *http.Request) (*jobs.Job, bool) {
	id := chi.URLParam(r, "jobID")
	job, ok := h.Jobs.Get(id)
	if !ok {
		writeErrorStatus(w, http.StatusNotFound, pdferr.New(pdferr.InvalidOptions, "job not found: "+id, nil))
	}
	return job, ok
}
