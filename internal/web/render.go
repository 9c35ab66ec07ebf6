package web

import (
	"bytes"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/hpungsan/orden/internal/errors"
	"github.com/hpungsan/orden/internal/note"
	"github.com/hpungsan/orden/internal/tools"
)

// markdown renders note bodies. Task lists and tables are common in notes.
var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// NotePageData is the template data for the note page.
type NotePageData struct {
	Note         note.Note
	RenderedHTML template.HTML
	Version      string
}

var notePage = template.Must(template.New("note").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Note.Title}}</title>
<style>body{font-family:sans-serif;max-width:48rem;margin:2rem auto;padding:0 1rem}header p{color:#666}</style>
</head>
<body>
<header>
<p>{{.Note.FolderID}} · {{.Note.Kind}} · {{.Note.Date}}</p>
{{if .Note.Subtitle}}<p>{{.Note.Subtitle}}</p>{{end}}
</header>
<article>{{.RenderedHTML}}</article>
<footer><small>orden {{.Version}}</small></footer>
</body>
</html>
`))

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// renderError writes the error payload with the error's HTTP status.
// Errors that are not OrdenErrors are reported as 500.
func renderError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if oErr, ok := err.(*errors.OrdenError); ok {
		status = oErr.Status
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(tools.ErrorPayload(err))
}

// renderNote writes n as an HTML page.
func renderNote(w http.ResponseWriter, logger *slog.Logger, n note.Note, version string) {
	var buf bytes.Buffer
	err := notePage.Execute(&buf, NotePageData{
		Note:         n,
		RenderedHTML: renderMarkdown(n.Content),
		Version:      version,
	})
	if err != nil {
		logger.Error("template execution error", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// renderMarkdown converts markdown text to HTML using goldmark.
// Raw HTML in the source is not passed through.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}
