package http

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"econguide/internal/core"
	appweb "econguide/web"
)

var templateFuncs = template.FuncMap{
	"result": core.FormatResult,
	"number": core.FormatNumber,
	"lower":  strings.ToLower,
	"hasOutput": func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
}

func parseTemplates() (*template.Template, error) {
	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return t, nil
}

// render executes a named template into a buffer so a failure never leaves
// a half-written response.
func (s *Server) render(name string, data any) ([]byte, error) {
	if s.templates == nil {
		return nil, errTemplatesNotLoaded
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
