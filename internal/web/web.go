// Package web holds the server-rendered page templates.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"strings"

	"coinhub/internal/format"
)

//go:embed templates/*.html
var files embed.FS

// Funcs are the helpers available to every page.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"currency": format.Currency,
		"percent":  format.Percent,
		"compact":  format.Compact,
		"upper":    strings.ToUpper,
		"change":   changeClass,
		"deref":    deref,
	}
}

// Templates parses the embedded page set. Each page is addressed by its
// file name, e.g. "home.html".
func Templates() (*template.Template, error) {
	tmpl, err := template.New("coinhub").Funcs(Funcs()).ParseFS(files, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}

func changeClass(v float64) string {
	switch {
	case v > 0:
		return "up"
	case v < 0:
		return "down"
	default:
		return "flat"
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
