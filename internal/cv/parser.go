package cv

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"
	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"
)

type CVParser struct {
	uploadsDir string
	log        zerolog.Logger
}

type ParsedCV struct {
	Filename string
	FilePath string
	FileType string
	FileSize int64
	Digest   string // hex SHA-256 of the original bytes
	FullText string
}

func NewCVParser(uploadsDir string, log zerolog.Logger) *CVParser {
	return &CVParser{
		uploadsDir: uploadsDir,
		log:        log,
	}
}

// SupportedExtension reports whether ExtractText can read files with ext.
func SupportedExtension(ext string) bool {
	switch strings.ToLower(ext) {
	case ".pdf", ".docx", ".txt":
		return true
	}
	return false
}

// ParseFile stores an uploaded document and extracts its text.
func (p *CVParser) ParseFile(filename string, reader io.Reader) (*ParsedCV, error) {
	filename = filepath.Base(filename)
	if !SupportedExtension(filepath.Ext(filename)) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}

	if err := os.MkdirAll(p.uploadsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir: %w", err)
	}

	filePath := filepath.Join(p.uploadsDir, uuid.NewString()+"_"+filename)
	file, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	hash := sha256.New()
	size, err := io.Copy(io.MultiWriter(file, hash), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	text, err := p.ExtractText(filePath)
	if err != nil {
		return nil, err
	}

	return &ParsedCV{
		Filename: filename,
		FilePath: filePath,
		FileType: strings.ToLower(filepath.Ext(filename)),
		FileSize: size,
		Digest:   hex.EncodeToString(hash.Sum(nil)),
		FullText: text,
	}, nil
}

// ParsePath extracts text from a document already on disk.
func (p *CVParser) ParsePath(path string) (*ParsedCV, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	text, err := p.ExtractText(path)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(data)
	return &ParsedCV{
		Filename: filepath.Base(path),
		FilePath: path,
		FileType: strings.ToLower(filepath.Ext(path)),
		FileSize: int64(len(data)),
		Digest:   hex.EncodeToString(sum[:]),
		FullText: text,
	}, nil
}

// ExtractText returns the plain text of a PDF, DOCX or TXT file.
func (p *CVParser) ExtractText(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		return p.extractPDF(path)
	case ".docx":
		f, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrTextExtraction, err)
		}
		defer f.Close()
		text, _, err := docconv.ConvertDocx(f)
		if err != nil {
			return "", fmt.Errorf("%w: docx: %v", ErrTextExtraction, err)
		}
		return text, nil
	case ".txt":
		content, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrTextExtraction, err)
		}
		return string(content), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// extractPDF prefers docconv (pdftotext) and falls back to the pure Go reader
// when pdftotext is unavailable or fails.
func (p *CVParser) extractPDF(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTextExtraction, err)
	}
	text, _, convErr := docconv.ConvertPDF(f)
	f.Close()
	if convErr == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}

	p.log.Debug().Err(convErr).Str("file", path).Msg("docconv pdf failed, using fallback reader")

	text, err = readPDFPlainText(path)
	if err != nil {
		if convErr != nil {
			return "", fmt.Errorf("%w: pdf: %v (fallback: %v)", ErrTextExtraction, convErr, err)
		}
		return "", fmt.Errorf("%w: pdf: %v", ErrTextExtraction, err)
	}
	return text, nil
}

func readPDFPlainText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}
