// Package render turns a resolved summary into a release-note body.
package render

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"prsummary.dev/prsummary/internal/model"
)

//go:embed templates/default.tmpl
var defaultTemplate string

// Renderer executes a text/template against a model.Summary. Templates see
// the summary fields directly (.Contributors, .PullRequests, .Interval) and
// .Incomplete.
type Renderer struct {
	tmpl *template.Template
}

var funcs = template.FuncMap{
	"short": func(sha string) string {
		if len(sha) > 7 {
			return sha[:7]
		}
		return sha
	},
	"join": strings.Join,
}

// New parses text as the release-note template. Empty text selects the
// built-in layout.
func New(text string) (*Renderer, error) {
	name := "custom"
	if strings.TrimSpace(text) == "" {
		name, text = "default", defaultTemplate
	}
	tmpl, err := template.New(name).Funcs(funcs).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Load reads a template file, or the built-in layout when path is empty
func Load(path string) (*Renderer, error) {
	if path == "" {
		return New("")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", path, err)
	}
	return New(string(data))
}

// Render executes the template. The result always ends with exactly one newline.
func (r *Renderer) Render(summary *model.Summary) (string, error) {
	var b strings.Builder
	if err := r.tmpl.Execute(&b, summary); err != nil {
		return "", fmt.Errorf("failed to render %s template: %w", r.tmpl.Name(), err)
	}
	return strings.TrimRight(b.String(), "\n") + "\n", nil
}
