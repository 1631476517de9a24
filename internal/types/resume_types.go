package types

// Fields are the values pulled out of one resume. Nil pointers mean the
// field was not found and serialize as null.
type Fields struct {
	Name   *string  `json:"name"`
	Email  *string  `json:"email"`
	Phone  *string  `json:"phone"`
	Skills []string `json:"skills"`
}

// Value dereferences an optional field, returning "" when absent.
func Value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Result is one processed document together with where its output went.
type Result struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Digest   string `json:"digest"`
	Fields
	CSVPath  string `json:"csv_path,omitempty"`
	JSONPath string `json:"json_path,omitempty"`
	Cached   bool   `json:"cached"`
}
