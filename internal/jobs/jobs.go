// Package jobs runs processors in the background for the async API.
//
// Types:
//   - Job: One processor run with its uploaded files, progress and output.
//   - Manager: Holds all jobs and expires old ones.
//
// Expected outputs:
// - Job IDs are unique (UUID)
// - Progress is readable while the job runs
// - Cleanup removes the job's uploaded files
//
// Used by API handlers to serve /api/v1/jobs.
package jobs

import (
	"context"
	"os"
	"sync"
	"time"

	"go-pdftools/internal/pdferr"
	"go-pdftools/internal/processor"
	"go-pdftools/internal/utils"

	"github.com/rs/zerolog"
)

type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Done reports whether s is terminal.
func (s Status) Done() bool { return s != StatusRunning }

type Job struct {
	ID         string
	Tool       string
	Files      []string
	CreatedAt  time.Time
	FinishedAt time.Time
	Status     Status
	Message    string
	Output     processor.Output
	Mutex      sync.Mutex

	proc   processor.Processor
	cancel context.CancelFunc
	done   chan struct{}
}

// Snapshot is a consistent copy of a job's state.
type Snapshot struct {
	ID         string           `json:"jobId"`
	Tool       string           `json:"tool"`
	Status     Status           `json:"status"`
	Progress   int              `json:"progress"`
	Message    string           `json:"message,omitempty"`
	Filename   string           `json:"filename,omitempty"`
	Metadata   map[string]any   `json:"metadata,omitempty"`
	Error      *pdferr.PDFError `json:"error,omitempty"`
	CreatedAt  time.Time        `json:"createdAt"`
	FinishedAt *time.Time       `json:"finishedAt,omitempty"`
}

// FinishFunc is called once per job after it reaches a terminal status.
type FinishFunc func(j *Job, elapsed time.Duration)

type Manager struct {
	Jobs  map[string]*Job
	Mutex sync.RWMutex

	log      zerolog.Logger
	onFinish FinishFunc
}

func NewManager(log zerolog.Logger, onFinish FinishFunc) *Manager {
	return &Manager{
		Jobs:     make(map[string]*Job),
		log:      log.With().Str("component", "jobs").Logger(),
		onFinish: onFinish,
	}
}

// Start runs p on in in a new goroutine. files are removed by Cleanup.
func (m *Manager) Start(tool string, p processor.Processor, in processor.Input, files []string) *Job {
	ctx, cancel := context.WithCancel(context.Background())
	job := &Job{
		ID:        utils.GenerateUUID(),
		Tool:      tool,
		Files:     files,
		CreatedAt: time.Now(),
		Status:    StatusRunning,
		proc:      p,
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	m.Mutex.Lock()
	m.Jobs[job.ID] = job
	m.Mutex.Unlock()

	go m.run(ctx, job, in)
	return job
}

func (m *Manager) run(ctx context.Context, job *Job, in processor.Input) {
	defer close(job.done)
	defer job.cancel()

	out := job.proc.Process(ctx, in, func(_ int, msg string) {
		if msg == "" {
			return
		}
		job.Mutex.Lock()
		job.Message = msg
		job.Mutex.Unlock()
	})

	job.Mutex.Lock()
	job.Output = out
	job.FinishedAt = time.Now()
	switch {
	case out.Success:
		job.Status = StatusSucceeded
	case out.Error != nil && out.Error.Code == pdferr.ProcessingCancelled:
		job.Status = StatusCancelled
	default:
		job.Status = StatusFailed
	}
	elapsed := job.FinishedAt.Sub(job.CreatedAt)
	status := job.Status
	job.Mutex.Unlock()

	m.log.Info().Str("job", job.ID).Str("tool", job.Tool).Str("status", string(status)).Dur("elapsed", elapsed).Msg("job finished")
	if m.onFinish != nil {
		m.onFinish(job, elapsed)
	}
}

func (m *Manager) Get(id string) (*Job, bool) {
	m.Mutex.RLock()
	defer m.Mutex.RUnlock()
	job, exists := m.Jobs[id]
	return job, exists
}

// Cancel asks a running job to stop at its next checkpoint.
func (m *Manager) Cancel(id string) bool {
	job, ok := m.Get(id)
	if !ok {
		return false
	}
	job.Cancel()
	return true
}

func (m *Manager) Delete(id string) {
	m.Mutex.Lock()
	job, ok := m.Jobs[id]
	delete(m.Jobs, id)
	m.Mutex.Unlock()
	if ok {
		job.Cancel()
		job.Cleanup()
	}
}

// Expire removes jobs created more than ttl ago, cancelling any still
// running. It returns the number removed.
func (m *Manager) Expire(ttl time.Duration) int {
	m.Mutex.Lock()
	var expired []*Job
	for id, job := range m.Jobs {
		if time.Since(job.CreatedAt) > ttl {
			expired = append(expired, job)
			delete(m.Jobs, id)
		}
	}
	m.Mutex.Unlock()

	for _, job := range expired {
		job.Cancel()
		job.Cleanup()
	}
	if len(expired) > 0 {
		m.log.Debug().Int("count", len(expired)).Msg("expired jobs")
	}
	return len(expired)
}

// Shutdown cancels every job and waits for them to stop or ctx to end.
func (m *Manager) Shutdown(ctx context.Context) {
	m.Mutex.RLock()
	all := make([]*Job, 0, len(m.Jobs))
	for _, job := range m.Jobs {
		all = append(all, job)
	}
	m.Mutex.RUnlock()

	for _, job := range all {
		job.Cancel()
	}
	for _, job := range all {
		if job.Wait(ctx) != nil {
			return
		}
		job.Cleanup()
	}
}

// Cancel stops the job cooperatively.
func (j *Job) Cancel() {
	j.proc.Cancel()
	j.cancel()
}

// Wait blocks until the job finishes or ctx ends.
func (j *Job) Wait(ctx context.Context) error {
	select {
	case <-j.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot copies the job's state. Progress is read from the processor so it
// is current while the job runs.
func (j *Job) Snapshot() Snapshot {
	progress := j.proc.Progress()

	j.Mutex.Lock()
	defer j.Mutex.Unlock()
	s := Snapshot{
		ID:        j.ID,
		Tool:      j.Tool,
		Status:    j.Status,
		Progress:  progress,
		Message:   j.Message,
		CreatedAt: j.CreatedAt,
	}
	if j.Status.Done() {
		finished := j.FinishedAt
		s.FinishedAt = &finished
		s.Filename = j.Output.Filename
		s.Metadata = j.Output.Metadata
		s.Error = j.Output.Error
		if j.Status == StatusSucceeded {
			s.Progress = 100
		}
	}
	return s
}

// Result returns the output once the job has succeeded.
func (j *Job) Result() (processor.Output, bool) {
	j.Mutex.Lock()
	defer j.Mutex.Unlock()
	return j.Output, j.Status == StatusSucceeded
}

// Cleanup removes the job's uploaded files.
func (j *Job) Cleanup() {
	j.Mutex.Lock()
	defer j.Mutex.Unlock()
	for _, file := range j.Files {
		os.Remove(file)
	}
	j.Files = nil
}
