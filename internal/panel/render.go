package panel

import (
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"strings"
)

//go:embed panel.html
var panelHTML string

var panelTemplate = template.Must(template.New("panel").Funcs(template.FuncMap{
	"dict": dict,
}).Parse(panelHTML))

// Render returns the HTML fragment for v.
func Render(v View) (string, error) {
	var b strings.Builder
	if err := panelTemplate.Execute(&b, v); err != nil {
		return "", fmt.Errorf("render panel: %w", err)
	}
	return b.String(), nil
}

// dict builds a map from alternating keys and values for sub-templates.
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, errors.New("dict needs key/value pairs")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict key %v is not a string", pairs[i])
		}
		m[key] = pairs[i+1]
	}
	return m, nil
}
