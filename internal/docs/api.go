package docs

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"

	relerr "github.com/rusocsci/relkit/internal/errors"
	"github.com/rusocsci/relkit/internal/logfields"
)

// APIGenerator is the introspective backend: it reads the package modules
// and emits HTML in a single pass, with no intermediate scaffold.
type APIGenerator struct{}

func (g *APIGenerator) Name() string { return BackendAPI }

var moduleBodyTmpl = template.Must(template.New("module").Parse(`<h1>{{.Module.Name}}</h1>
{{- if .Module.Doc}}
<p class="docstring">{{.Module.Doc}}</p>
{{- end}}
{{- range .Module.Defs}}
<h2>{{.Kind}} {{.Name}}</h2>
<pre class="signature">{{.Signature}}</pre>
{{- if .Doc}}
<p class="docstring">{{.Doc}}</p>
{{- end}}
{{- end}}
`))

// Generate scans the package sources and writes one HTML page per module
// plus an index built from the readme.
func (g *APIGenerator) Generate(_ context.Context, opts Options) error {
	modules, err := ScanPackages(opts.SourceTree, opts.Meta.Packages)
	if err != nil {
		return relerr.DocsFailed(g.Name(), err)
	}
	if err := os.MkdirAll(opts.OutputDir, 0o750); err != nil {
		return relerr.DocsFailed(g.Name(), err)
	}

	nav := navFor(modules)
	for _, m := range modules {
		body, err := executeToHTML(moduleBodyTmpl, map[string]any{"Module": m})
		if err != nil {
			return relerr.DocsFailed(g.Name(), err)
		}
		p := page{SiteTitle: opts.Title, Title: m.Name, Nav: nav, Body: body}
		if err := renderPage(opts.OutputDir, modulePageName(m.Name), p); err != nil {
			return relerr.DocsFailed(g.Name(), err)
		}
	}

	indexBody, err := g.indexBody(opts, modules)
	if err != nil {
		return relerr.DocsFailed(g.Name(), err)
	}
	index := page{SiteTitle: opts.Title, Title: Heading("overview"), Nav: nav, Body: indexBody}
	if err := renderPage(opts.OutputDir, "index.html", index); err != nil {
		return relerr.DocsFailed(g.Name(), err)
	}
	if err := writeStatic(opts.OutputDir); err != nil {
		return relerr.DocsFailed(g.Name(), err)
	}

	slog.Info("Generated API documentation",
		logfields.Backend(g.Name()),
		slog.Int("modules", len(modules)),
		logfields.Path(opts.OutputDir))
	return nil
}

// indexBody renders the readme (when present) followed by the module list.
func (g *APIGenerator) indexBody(opts Options, modules []Module) (template.HTML, error) {
	var body template.HTML
	if opts.Meta.ReadmePath != "" {
		if data, err := os.ReadFile(filepath.Join(opts.SourceTree, opts.Meta.ReadmePath)); err == nil {
			rendered, err := markdownHTML(data)
			if err != nil {
				return "", err
			}
			body = rendered
		}
	}
	list := "<h2>Modules</h2>\n<ul>\n"
	for _, m := range modules {
		list += fmt.Sprintf("<li><a href=%q>%s</a></li>\n", modulePageName(m.Name), m.Name)
	}
	list += "</ul>\n"
	return body + template.HTML(list), nil //nolint:gosec // module names come from file paths we scanned
}

// executeToHTML runs a body template to an HTML fragment.
func executeToHTML(t *template.Template, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil //nolint:gosec // template output
}
