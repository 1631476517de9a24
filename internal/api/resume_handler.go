package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"time"

	"resume-parser/internal/cv"
	"resume-parser/internal/export"
	"resume-parser/internal/storage"
	"resume-parser/internal/types"
)

// ParseHandler handles resume uploads and returns the extracted fields
// @Summary Upload and parse a resume
// @Description Upload a resume (PDF/DOCX/TXT) and extract name, email, phone and skills
// @Tags resume
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Resume file (PDF or DOCX)"
// @Success 200 {object} types.Result
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /resume/parse [post]
func (a *API) ParseHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	startTime := time.Now()

	file, header, err := readUpload(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer file.Close()

	result, err := a.pipeline.RunUpload(r.Context(), header.Filename, file)
	if err != nil {
		a.log.Error().Err(err).Str("file", header.Filename).Msg("parse failed")
		writeError(w, statusFor(err), fmt.Sprintf("failed to parse file: %v", err))
		return
	}
	a.setLatest(result)

	a.log.Info().
		Str("file", result.Filename).
		Int64("processing_time_ms", time.Since(startTime).Milliseconds()).
		Msg("sending parse response")

	writeJSON(w, http.StatusOK, result)
}

// GetResumeHandler returns a stored parse result
// @Summary Get a parsed resume
// @Tags resumes
// @Produce json
// @Param id path string true "Result ID"
// @Success 200 {object} storage.ParsedResume
// @Failure 404 {object} map[string]string
// @Router /resumes/{id} [get]
func (a *API) GetResumeHandler(w http.ResponseWriter, r *http.Request) {
	if a.db == nil {
		writeError(w, http.StatusServiceUnavailable, "storage not configured")
		return
	}
	res, err := a.db.GetParsedResume(r.Context(), r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		a.log.Error().Err(err).Msg("get parsed resume failed")
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// DownloadHandler returns the most recent result as CSV or JSON
// @Summary Download latest result
// @Tags resume
// @Produce text/csv
// @Produce json
// @Param format path string true "csv or json"
// @Success 200 {file} file
// @Failure 404 {object} map[string]string
// @Router /download/{format} [get]
func (a *API) DownloadHandler(w http.ResponseWriter, r *http.Request) {
	latest := a.latestResult()
	if latest == nil {
		writeError(w, http.StatusNotFound, "no resume parsed yet")
		return
	}

	var write func(io.Writer, *types.Fields) error
	switch r.PathValue("format") {
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="parsed_resume.csv"`)
		write = export.WriteCSV
	case "json":
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="parsed_resume.json"`)
		write = export.WriteJSON
	default:
		writeError(w, http.StatusBadRequest, "format must be csv or json")
		return
	}
	if err := write(w, &latest.Fields); err != nil {
		a.log.Error().Err(err).Msg("download write failed")
	}
}

func readUpload(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1<<20)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, nil, errors.New("file too large or invalid (max 10MB)")
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, nil, errors.New("no file uploaded")
	}
	if !cv.SupportedExtension(filepath.Ext(header.Filename)) {
		file.Close()
		return nil, nil, errors.New("invalid file type (supported: PDF, DOCX, TXT)")
	}
	return file, header, nil
}

func statusFor(err error) int {
	if errors.Is(err, cv.ErrUnsupportedFormat) || errors.Is(err, cv.ErrTextExtraction) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
