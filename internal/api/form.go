package api

import (
	"fmt"
	"html/template"
	"net/http"

	"resume-parser/internal/export"
	"resume-parser/internal/types"
)

var formTemplate = template.Must(template.New("form").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>AI Resume Parser</title>
<style>
body { font-family: Arial, sans-serif; max-width: 600px; margin: 2em auto; }
button { background: #4CAF50; color: white; padding: 5px 10px; border: 0; font-size: 12pt; }
pre { font-family: Consolas, monospace; background: #f4f4f4; padding: 1em; white-space: pre-wrap; min-height: 15em; }
.error { border: 1px solid #c00; color: #c00; padding: 0.5em; }
</style>
</head>
<body>
<h3>📁 Select a Resume File (.pdf / .docx)</h3>
<form method="post" action="/" enctype="multipart/form-data">
<input type="file" name="file" accept=".pdf,.docx">
<button type="submit">Browse Resume</button>
</form>
{{if .Error}}<div class="error"><strong>Error</strong><br>Failed to parse file:<br>{{.Error}}</div>{{end}}
<pre>{{.Output}}</pre>
{{if .Result}}<p><a href="/api/download/csv">Download CSV</a> | <a href="/api/download/json">Download JSON</a></p>{{end}}
</body>
</html>
`))

type formView struct {
	Output string
	Error  string
	Result *types.Result
}

// FormHandler serves the upload form and renders the parsed fields.
func (a *API) FormHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.renderForm(w, http.StatusOK, formView{})
	case http.MethodPost:
		file, header, err := readUpload(w, r)
		if err != nil {
			a.renderForm(w, http.StatusBadRequest, formView{Error: err.Error()})
			return
		}
		defer file.Close()

		result, err := a.pipeline.RunUpload(r.Context(), header.Filename, file)
		if err != nil {
			a.log.Error().Err(err).Str("file", header.Filename).Msg("form parse failed")
			a.renderForm(w, statusFor(err), formView{Error: err.Error()})
			return
		}
		a.setLatest(result)
		a.renderForm(w, http.StatusOK, formView{Output: export.Summary(result), Result: result})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (a *API) renderForm(w http.ResponseWriter, status int, v formView) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := formTemplate.Execute(w, v); err != nil {
		a.log.Error().Err(err).Msg("render form")
		fmt.Fprint(w, "render error")
	}
}
