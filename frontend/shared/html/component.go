package html

import (
	"context"
	"fmt"
	htmltemplate "html/template"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

// Funcs are available to every page template.
var Funcs = htmltemplate.FuncMap{
	"query": Query,
	"back":  Back,
	"join":  strings.Join,
	"int64": func(v int64) string { return strconv.FormatInt(v, 10) },
	"seq": func(n int) []int {
		out := make([]int, n)
		for i := range out {
			out[i] = i + 1
		}
		return out
	},
	"deref": func(v *int64) int64 {
		if v == nil {
			return 0
		}
		return *v
	},
}

// Must parses a page template with Funcs installed.
func Must(name, text string) *htmltemplate.Template {
	return htmltemplate.Must(htmltemplate.New(name).Funcs(Funcs).Parse(text))
}

// Template renders the named template as a templ component.
func Template(t *htmltemplate.Template, name string, data any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if err := t.ExecuteTemplate(w, name, data); err != nil {
			return fmt.Errorf("render %s: %w", name, err)
		}
		return nil
	})
}

// Query encodes key/value pairs, skipping empty values.
func Query(pairs ...any) htmltemplate.URL {
	v := url.Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		key := fmt.Sprint(pairs[i])
		val := fmt.Sprint(pairs[i+1])
		if val == "" || val == "0" {
			continue
		}
		v.Set(key, val)
	}
	if len(v) == 0 {
		return ""
	}
	return htmltemplate.URL("?" + v.Encode())
}

// Back is path with a previously encoded return query appended.
func Back(path, returnQuery string) htmltemplate.URL {
	q, err := url.ParseQuery(returnQuery)
	if err != nil || len(q) == 0 {
		return htmltemplate.URL(path)
	}
	return htmltemplate.URL(path + "?" + q.Encode())
}
