package cv

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file type")
	ErrTextExtraction    = errors.New("failed to extract text")
	ErrRecognizerFailed  = errors.New("entity recognition failed")
	ErrExportFailed      = errors.New("failed to save results")
)

// ParseError records which file and which pipeline step failed.
type ParseError struct {
	File string
	Op   string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s (%s): %v", e.File, e.Op, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func newParseError(file, op string, err error) error {
	return &ParseError{File: file, Op: op, Err: err}
}
