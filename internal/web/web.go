// Package web holds the console's HTML pages.
package web

import (
	"embed"
	"html/template"
	"strings"

	"github.com/stemsi/institute-console/internal/model"
)

//go:embed templates/*.html
var files embed.FS

// Page is the part of every view the layout renders.
type Page struct {
	Title   string
	Session *model.Session
	Flash   string
	Error   string
	// Fields holds inline validation messages keyed by form field name.
	Fields map[string]string
	// Watch lists the resources whose invalidation reloads the page.
	Watch []string
}

// Parse parses all pages. media turns backend file references into URLs.
func Parse(media func(ref string) string) (*template.Template, error) {
	funcs := template.FuncMap{
		"media": func(ref string) string {
			if ref == "" {
				return ""
			}
			return media(ref)
		},
		"fieldError": func(fields map[string]string, name string) string {
			return fields[name]
		},
		"join": strings.Join,
	}
	return template.New("console").Funcs(funcs).ParseFS(files, "templates/*.html")
}
