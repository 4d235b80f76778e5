package generate

import (
	"bufio"
	"embed"
	"io"
	"strconv"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var funcs = template.FuncMap{
	"quote": strconv.Quote,
	"lower": strings.ToLower,
	"expr": func(p Property) string {
		if p.Raw {
			return p.Type
		}
		return strconv.Quote(p.Type)
	},
}

var tmpl = template.Must(template.New("module").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl"))

// WriteTS renders the TypeScript module.
func (m *Model) WriteTS(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if err := tmpl.ExecuteTemplate(bw, "module.ts.tmpl", m); err != nil {
		return err
	}
	return bw.Flush()
}

// TS renders the TypeScript module into a string.
func (m *Model) TS() (string, error) {
	var b strings.Builder
	if err := m.WriteTS(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}
