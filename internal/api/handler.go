package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"resume-parser/internal/cv"
	"resume-parser/internal/storage"
	"resume-parser/internal/types"
)

const maxUploadSize = 10 << 20

type API struct {
	pipeline *cv.Pipeline
	db       *storage.DB // nil when DATABASE_URL is unset
	log      zerolog.Logger

	jobs       *jobRegistry
	parseQueue chan ParseJob // Background queue for async parsing

	mu     sync.RWMutex
	latest *types.Result
}

type Options struct {
	Pipeline  *cv.Pipeline
	DB        *storage.DB
	Logger    zerolog.Logger
	QueueSize int
	JobTTL    time.Duration // how long finished jobs stay queryable, default 1h
}

func NewAPI(opts Options) *API {
	size := opts.QueueSize
	if size <= 0 {
		size = 50
	}
	return &API{
		pipeline:   opts.Pipeline,
		db:         opts.DB,
		log:        opts.Logger,
		jobs:       newJobRegistry(opts.JobTTL),
		parseQueue: make(chan ParseJob, size),
	}
}

func (a *API) setLatest(r *types.Result) {
	a.mu.Lock()
	a.latest = r
	a.mu.Unlock()
}

func (a *API) latestResult() *types.Result {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.latest
}

// SearchHandler searches stored parse results
// @Summary Search parsed resumes
// @Description Search stored results by name, email and skills (requires DATABASE_URL)
// @Tags resumes
// @Produce json
// @Param name query string false "Name contains"
// @Param email query string false "Email contains"
// @Param skill query []string false "Skill (repeatable, any matches)"
// @Success 200 {array} storage.ParsedResume
// @Failure 503 {object} map[string]string
// @Router /resumes [get]
func (a *API) SearchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if a.db == nil {
		writeError(w, http.StatusServiceUnavailable, "storage not configured")
		return
	}
	q := r.URL.Query()
	crit := &storage.Criteria{
		Name:  strings.TrimSpace(q.Get("name")),
		Email: strings.TrimSpace(q.Get("email")),
	}
	for _, s := range q["skill"] {
		if s = strings.TrimSpace(s); s != "" {
			crit.Skills = append(crit.Skills, s)
		}
	}
	results, err := a.db.SearchParsedResumes(r.Context(), crit)
	if err != nil {
		a.log.Error().Err(err).Msg("search failed")
		writeError(w, http.StatusInternalServerError, "search error")
		return
	}
	if results == nil {
		results = []*storage.ParsedResume{}
	}
	writeJSON(w, http.StatusOK, results)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
