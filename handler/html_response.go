package handler

import (
	"bytes"
	"html/template"
	"net/http"
)

type htmlResponse struct {
	tmpl   *template.Template
	data   any
	status int
}

// Render executes the template into a buffer first so a template error never
// leaves a half-written page.
func (h htmlResponse) Render(w http.ResponseWriter, r *http.Request) error {
	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, h.data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(h.status)
	_, err := buf.WriteTo(w)
	return err
}

// HTML renders tmpl with data and 200 OK.
func HTML(tmpl *template.Template, data any) Response {
	return htmlResponse{tmpl: tmpl, data: data, status: http.StatusOK}
}

// HTMLWithStatus renders tmpl with data and a custom status.
func HTMLWithStatus(tmpl *template.Template, data any, status int) Response {
	return htmlResponse{tmpl: tmpl, data: data, status: status}
}
