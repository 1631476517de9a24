package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"resume-parser/internal/types"
)

type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// ParseJob represents a background parse task
type ParseJob struct {
	ID        string
	Filename  string
	Data      []byte
	Timestamp time.Time
}

// JobState is what clients see when polling a job.
type JobState struct {
	ID          string        `json:"id"`
	Filename    string        `json:"filename"`
	Status      JobStatus     `json:"status"`
	Error       string        `json:"error,omitempty"`
	Result      *types.Result `json:"result,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
}

const defaultJobTTL = time.Hour

// jobRegistry holds job states. Finished jobs are dropped once they are
// older than ttl.
type jobRegistry struct {
	mu   sync.RWMutex
	jobs map[string]*JobState
	ttl  time.Duration
}

func newJobRegistry(ttl time.Duration) *jobRegistry {
	if ttl <= 0 {
		ttl = defaultJobTTL
	}
	return &jobRegistry{jobs: make(map[string]*JobState), ttl: ttl}
}

// prune removes jobs that finished more than ttl before now.
func (r *jobRegistry) prune(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, s := range r.jobs {
		if s.CompletedAt != nil && now.Sub(*s.CompletedAt) > r.ttl {
			delete(r.jobs, id)
			removed++
		}
	}
	return removed
}

func (r *jobRegistry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}

func (r *jobRegistry) add(s *JobState) {
	r.mu.Lock()
	r.jobs[s.ID] = s
	r.mu.Unlock()
}

func (r *jobRegistry) get(id string) (JobState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.jobs[id]
	if !ok {
		return JobState{}, false
	}
	return *s, true
}

func (r *jobRegistry) update(id string, fn func(*JobState)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.jobs[id]; ok {
		fn(s)
	}
}

// StartBackgroundWorkers starts n parse workers that stop when ctx is done.
func (a *API) StartBackgroundWorkers(ctx context.Context, n int) {
	if n <= 0 {
		n = 1
	}
	for i := 0; i < n; i++ {
		go a.parseWorker(ctx, i)
	}
	go a.pruneJobs(ctx)
	a.log.Info().Int("workers", n).Msg("background parse workers started")
}

// pruneJobs drops expired job states until ctx is done.
func (a *API) pruneJobs(ctx context.Context) {
	ticker := time.NewTicker(a.jobs.ttl / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := a.jobs.prune(now); n > 0 {
				a.log.Debug().Int("removed", n).Msg("expired jobs pruned")
			}
		}
	}
}

func (a *API) parseWorker(ctx context.Context, id int) {
	log := a.log.With().Int("worker", id).Logger()
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-a.parseQueue:
			log.Debug().Str("job", job.ID).Str("file", job.Filename).Msg("processing job")
			a.jobs.update(job.ID, func(s *JobState) { s.Status = JobProcessing })

			result, err := a.pipeline.RunUpload(ctx, job.Filename, bytes.NewReader(job.Data))
			now := time.Now()
			if err != nil {
				log.Error().Err(err).Str("job", job.ID).Msg("job failed")
				a.jobs.update(job.ID, func(s *JobState) {
					s.Status = JobFailed
					s.Error = err.Error()
					s.CompletedAt = &now
				})
				continue
			}
			a.setLatest(result)
			a.jobs.update(job.ID, func(s *JobState) {
				s.Status = JobCompleted
				s.Result = result
				s.CompletedAt = &now
			})
			log.Info().Str("job", job.ID).Dur("took", time.Since(job.Timestamp)).Msg("job completed")
		}
	}
}

// queueParseJob registers and enqueues a job. A full queue fails the job.
func (a *API) queueParseJob(filename string, data []byte) JobState {
	job := ParseJob{
		ID:        uuid.NewString(),
		Filename:  filename,
		Data:      data,
		Timestamp: time.Now(),
	}
	a.jobs.add(&JobState{ID: job.ID, Filename: filename, Status: JobPending, CreatedAt: job.Timestamp})

	// Non-blocking send
	select {
	case a.parseQueue <- job:
		a.log.Debug().Str("job", job.ID).Msg("queued parse job")
	default:
		a.log.Warn().Str("job", job.ID).Msg("queue full, dropping parse job")
		now := time.Now()
		a.jobs.update(job.ID, func(s *JobState) {
			s.Status = JobFailed
			s.Error = "queue full, job dropped"
			s.CompletedAt = &now
		})
	}
	state, _ := a.jobs.get(job.ID)
	return state
}

// SubmitJobHandler queues a resume for background parsing
// @Summary Submit an async parse job
// @Tags jobs
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Resume file (PDF or DOCX)"
// @Success 202 {object} JobState
// @Failure 400 {object} map[string]string
// @Router /resume/jobs [post]
func (a *API) SubmitJobHandler(w http.ResponseWriter, r *http.Request) {
	file, header, err := readUpload(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	state := a.queueParseJob(header.Filename, data)
	status := http.StatusAccepted
	if state.Status == JobFailed {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, state)
}

// JobStatusHandler reports the state of a background parse job
// @Summary Get job status
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} JobState
// @Failure 404 {object} map[string]string
// @Router /resume/jobs/{id} [get]
func (a *API) JobStatusHandler(w http.ResponseWriter, r *http.Request) {
	state, ok := a.jobs.get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, state)
}
