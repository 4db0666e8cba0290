package render

import (
	"regexp"
	"strings"
	"text/template"
)

var missingKeyPattern = regexp.MustCompile(`map has no entry for key "([^"]*)"`)

// Template executes tmpl with data using text/template syntax, e.g.
// "Hi {{.name}}". Every referenced variable must be present in data.
func Template(tmpl string, data map[string]any) (string, error) {
	t, err := template.New("body").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", &TemplateError{Err: err}
	}

	if data == nil {
		data = map[string]any{}
	}

	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		if m := missingKeyPattern.FindStringSubmatch(err.Error()); m != nil {
			return "", &UndefinedVariableError{Name: m[1], Err: err}
		}
		return "", &TemplateError{Err: err}
	}
	return sb.String(), nil
}

// Body applies Template when data is non-nil, even if empty, and then
// Markdown when asMarkdown is set. A nil data leaves source untemplated.
func Body(source string, data map[string]any, asMarkdown bool) (string, error) {
	out := source
	if data != nil {
		var err error
		out, err = Template(source, data)
		if err != nil {
			return "", err
		}
	}
	if asMarkdown {
		out = Markdown(out)
	}
	return out, nil
}

// ParseVars parses KEY=VALUE pairs into template data. A pair without "="
// binds the key to an empty string. Returns nil for no pairs.
func ParseVars(pairs []string) map[string]any {
	if len(pairs) == 0 {
		return nil
	}
	data := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, _ := strings.Cut(pair, "=")
		data[strings.TrimSpace(key)] = value
	}
	return data
}
