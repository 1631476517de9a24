package api

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "resume-parser/docs" // swagger doc served at /swagger/doc.json
)

func NewRouter(a *API) http.Handler {
	mux := http.NewServeMux()

	// Swagger documentation
	mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Upload form
	mux.HandleFunc("/{$}", a.FormHandler)

	mux.HandleFunc("/api/resume/parse", a.ParseHandler)
	mux.HandleFunc("POST /api/resume/jobs", a.SubmitJobHandler)
	mux.HandleFunc("GET /api/resume/jobs/{id}", a.JobStatusHandler)
	mux.HandleFunc("GET /api/download/{format}", a.DownloadHandler)

	// Stored results
	mux.HandleFunc("/api/resumes", a.SearchHandler)
	mux.HandleFunc("GET /api/resumes/{id}", a.GetResumeHandler)

	return mux
}
