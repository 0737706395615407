package docs

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// titleCaser renders human-facing headings from identifier-ish names.
var titleCaser = cases.Title(language.English)

// Heading turns "buttonbox" into "Buttonbox" for page headers.
func Heading(name string) string {
	return titleCaser.String(strings.ReplaceAll(name, "_", " "))
}

// page is the data handed to the layout template.
type page struct {
	SiteTitle string
	Title     string
	Nav       []navEntry
	Body      template.HTML
}

type navEntry struct {
	Title string
	Href  string
}

var layoutTmpl = template.Must(template.New("layout").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}} — {{.SiteTitle}}</title>
<link rel="stylesheet" href="style.css">
</head>
<body>
<header><a href="index.html">{{.SiteTitle}}</a></header>
<nav><ul>
{{- range .Nav}}
<li><a href="{{.Href}}">{{.Title}}</a></li>
{{- end}}
</ul></nav>
<main>
{{.Body}}
</main>
</body>
</html>
`))

const styleSheet = `body { font-family: sans-serif; margin: 0; color: #222; }
header { background: #28425c; padding: 0.6em 1em; }
header a { color: #fff; text-decoration: none; font-weight: bold; }
nav { float: left; width: 14em; padding: 1em; }
nav ul { list-style: none; padding: 0; }
main { margin-left: 16em; padding: 1em 2em; max-width: 52em; }
code, pre { background: #f4f4f4; }
pre.signature { padding: 0.4em 0.6em; border-left: 3px solid #28425c; }
.docstring { white-space: pre-wrap; }
`

// modulePageName maps a dotted module name to its HTML file name; the doc
// tree is flat so the archive can be flat too.
func modulePageName(module string) string {
	return strings.ReplaceAll(module, ".", "_") + ".html"
}

// renderPage executes the layout and writes one HTML file.
func renderPage(outputDir, filename string, p page) error {
	var buf bytes.Buffer
	if err := layoutTmpl.Execute(&buf, p); err != nil {
		return fmt.Errorf("render %s: %w", filename, err)
	}
	return os.WriteFile(filepath.Join(outputDir, filename), buf.Bytes(), 0o644)
}

// writeStatic writes the shared stylesheet into the output tree.
func writeStatic(outputDir string) error {
	return os.WriteFile(filepath.Join(outputDir, "style.css"), []byte(styleSheet), 0o644)
}

// navFor builds the shared navigation from the module list.
func navFor(modules []Module) []navEntry {
	nav := []navEntry{{Title: "Overview", Href: "index.html"}}
	for _, m := range modules {
		nav = append(nav, navEntry{Title: m.Name, Href: modulePageName(m.Name)})
	}
	return nav
}

// markdownHTML converts markdown (or plain prose, which is valid markdown)
// to an HTML fragment.
func markdownHTML(src []byte) (template.HTML, error) {
	var buf bytes.Buffer
	if err := goldmark.New().Convert(src, &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil //nolint:gosec // goldmark output of our own sources
}
