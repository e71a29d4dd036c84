package nest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/valyala/fasttemplate"
)

// Render replaces every {key} placeholder in tmpl with the string form of
// ns[key]. Unknown keys and unterminated placeholders fail with ErrTemplate.
func Render(tmpl string, ns *Namespace) (string, error) {
	out, err := fasttemplate.ExecuteFuncStringWithErr(tmpl, "{", "}", func(w io.Writer, tag string) (int, error) {
		v, ok := ns.Get(tag)
		if !ok {
			return 0, fmt.Errorf("%w: unknown key %q in %q", ErrTemplate, tag, tmpl)
		}
		return io.WriteString(w, fmt.Sprint(v))
	})
	if err != nil {
		if errors.Is(err, ErrTemplate) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrTemplate, err)
	}
	return out, nil
}

var labelFuncs = template.FuncMap{
	"json": func(v any) string {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("<json error: %v>", err)
		}
		return string(b)
	},
	"first": func(v any) any {
		switch s := v.(type) {
		case []any:
			if len(s) > 0 {
				return s[0]
			}
		}
		return nil
	},
	"lower": func(v any) string {
		return strings.ToLower(fmt.Sprint(v))
	},
}

// TextLabel compiles a text/template into a LabelFunc. The template sees the
// namespace (after the level's own value is applied) as a map, plus the
// level value itself under .value when that key is not otherwise taken.
func TextLabel(tmpl string) (LabelFunc, error) {
	t, err := template.New("label").Funcs(labelFuncs).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return nil, fmt.Errorf("parse label template %q: %w", tmpl, err)
	}
	return func(value any, ns *Namespace) (string, error) {
		data := ns.Map()
		if _, taken := data["value"]; !taken {
			data["value"] = value
		}
		var buf bytes.Buffer
		if err := t.Execute(&buf, data); err != nil {
			return "", fmt.Errorf("%w: %v", ErrTemplate, err)
		}
		return buf.String(), nil
	}, nil
}
