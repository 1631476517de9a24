package storage

import (
	"time"

	"resume-parser/internal/types"
)

// ParsedResume is one stored extraction result.
type ParsedResume struct {
	ID         string `json:"id"`
	Filename   string `json:"filename"`
	Digest     string `json:"digest"`
	FileType   string `json:"file_type"`
	ParsedText string `json:"-"`
	types.Fields
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Criteria used to search stored results. Empty fields match everything.
type Criteria struct {
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	Skills []string `json:"skills"`
	Limit  int      `json:"limit"`
}
