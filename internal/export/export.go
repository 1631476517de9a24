// Package export writes parsed resume fields as CSV and JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"resume-parser/internal/types"
)

var csvHeader = []string{"Name", "Email", "Phone", "Skills"}

// WriteCSV writes a header and a single row. Absent values become empty cells.
func WriteCSV(w io.Writer, f *types.Fields) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	row := []string{
		types.Value(f.Name),
		types.Value(f.Email),
		types.Value(f.Phone),
		strings.Join(f.Skills, ", "),
	}
	if err := cw.Write(row); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the four fields as an object indented by four spaces.
func WriteJSON(w io.Writer, f *types.Fields) error {
	out := *f
	if out.Skills == nil {
		out.Skills = []string{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	return enc.Encode(out)
}

func SaveCSV(path string, f *types.Fields) error {
	return save(path, f, WriteCSV)
}

func SaveJSON(path string, f *types.Fields) error {
	return save(path, f, WriteJSON)
}

func save(path string, f *types.Fields, write func(io.Writer, *types.Fields) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(file, f); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}

// Summary renders the fields the way the CLI and form display them.
func Summary(r *types.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📄 Name: %s\n", display(r.Name))
	fmt.Fprintf(&b, "✉️ Email: %s\n", display(r.Email))
	fmt.Fprintf(&b, "📞 Phone: %s\n", display(r.Phone))
	fmt.Fprintf(&b, "🛠️ Skills: %s\n", strings.Join(r.Skills, ", "))
	if r.CSVPath != "" || r.JSONPath != "" {
		fmt.Fprintf(&b, "\n✅ Data saved to %s and %s\n", r.CSVPath, r.JSONPath)
	}
	return b.String()
}

func display(s *string) string {
	if s == nil {
		return "None"
	}
	return *s
}
