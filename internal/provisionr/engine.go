// Copyright 2026 The Provisionr Authors
// SPDX-License-Identifier: Apache-2.0

package provisionr

import (
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// TemplateEngine validates and renders template content against a flat
// string-to-string binding map. Implementations must reject references to
// undefined bindings at render time rather than silently producing empty
// output.
type TemplateEngine interface {
	Validate(content string) error
	Render(content string, values map[string]string) (string, error)
}

// GoTemplateEngine implements TemplateEngine on top of text/template with
// the sprig function library, using the dot-prefixed {{ .field }} binding
// syntax idiomatic to Go templates.
type GoTemplateEngine struct{}

func NewGoTemplateEngine() *GoTemplateEngine {
	return &GoTemplateEngine{}
}

func (e *GoTemplateEngine) parse(content string) (*template.Template, error) {
	return template.New("template").
		Funcs(sprig.FuncMap()).
		Option("missingkey=error").
		Parse(content)
}

func (e *GoTemplateEngine) Validate(content string) error {
	_, err := e.parse(content)
	return err
}

func (e *GoTemplateEngine) Render(content string, values map[string]string) (string, error) {
	tmpl, err := e.parse(content)
	if err != nil {
		return "", err
	}
	bindings := make(map[string]string, len(values))
	for k, v := range values {
		bindings[k] = v
	}
	var out strings.Builder
	if err := tmpl.Execute(&out, bindings); err != nil {
		return "", err
	}
	return out.String(), nil
}
