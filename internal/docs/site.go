package docs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	relerr "github.com/rusocsci/relkit/internal/errors"
	"github.com/rusocsci/relkit/internal/logfields"
)

// SiteGenerator is the template-build backend: a first pass scaffolds one
// markdown stub per module plus an index page, and a second pass renders the
// stubs through the theme into final HTML. The two passes mirror an
// apidoc-then-static-site-build workflow while staying in-process.
type SiteGenerator struct{}

func (g *SiteGenerator) Name() string { return BackendSite }

// Generate scaffolds markdown stubs in a scratch directory and renders them
// into opts.OutputDir. The scratch directory never outlives the call.
func (g *SiteGenerator) Generate(_ context.Context, opts Options) error {
	modules, err := ScanPackages(opts.SourceTree, opts.Meta.Packages)
	if err != nil {
		return relerr.DocsFailed(g.Name(), err)
	}

	scratch, err := os.MkdirTemp("", "relkit-site-")
	if err != nil {
		return relerr.DocsFailed(g.Name(), err)
	}
	defer func() { _ = os.RemoveAll(scratch) }()

	if err := g.scaffold(scratch, opts, modules); err != nil {
		return relerr.DocsFailed(g.Name(), err)
	}
	if err := g.render(scratch, opts, modules); err != nil {
		return relerr.DocsFailed(g.Name(), err)
	}

	slog.Info("Generated documentation site",
		logfields.Backend(g.Name()),
		slog.Int("modules", len(modules)),
		logfields.Path(opts.OutputDir))
	return nil
}

// scaffold writes the markdown stub files: one per module and an index
// seeded from the readme.
func (g *SiteGenerator) scaffold(scratch string, opts Options, modules []Module) error {
	for _, m := range modules {
		var sb strings.Builder
		fmt.Fprintf(&sb, "# %s\n\n", m.Name)
		if m.Doc != "" {
			fmt.Fprintf(&sb, "%s\n\n", m.Doc)
		}
		for _, d := range m.Defs {
			fmt.Fprintf(&sb, "## %s %s\n\n", d.Kind, d.Name)
			fmt.Fprintf(&sb, "```python\n%s\n```\n\n", d.Signature)
			if d.Doc != "" {
				fmt.Fprintf(&sb, "%s\n\n", d.Doc)
			}
		}
		stub := strings.TrimSuffix(modulePageName(m.Name), ".html") + ".md"
		if err := os.WriteFile(filepath.Join(scratch, stub), []byte(sb.String()), 0o644); err != nil {
			return err
		}
	}

	var index strings.Builder
	fmt.Fprintf(&index, "# %s\n\n", opts.Title)
	if opts.Meta.ReadmePath != "" {
		if data, err := os.ReadFile(filepath.Join(opts.SourceTree, opts.Meta.ReadmePath)); err == nil {
			index.Write(data)
			index.WriteString("\n\n")
		}
	}
	index.WriteString("## Modules\n\n")
	for _, m := range modules {
		fmt.Fprintf(&index, "- [%s](%s)\n", m.Name, modulePageName(m.Name))
	}
	return os.WriteFile(filepath.Join(scratch, "index.md"), []byte(index.String()), 0o644)
}

// render converts every scaffolded stub through the theme into the output
// tree.
func (g *SiteGenerator) render(scratch string, opts Options, modules []Module) error {
	if err := os.MkdirAll(opts.OutputDir, 0o750); err != nil {
		return err
	}

	entries, err := os.ReadDir(scratch)
	if err != nil {
		return err
	}
	var stubs []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
			stubs = append(stubs, e.Name())
		}
	}
	sort.Strings(stubs)

	titles := map[string]string{"index.md": Heading("overview")}
	for _, m := range modules {
		stub := strings.TrimSuffix(modulePageName(m.Name), ".html") + ".md"
		titles[stub] = m.Name
	}

	nav := navFor(modules)
	for _, stub := range stubs {
		data, err := os.ReadFile(filepath.Join(scratch, stub))
		if err != nil {
			return err
		}
		body, err := markdownHTML(data)
		if err != nil {
			return fmt.Errorf("render %s: %w", stub, err)
		}
		title := titles[stub]
		if title == "" {
			title = strings.TrimSuffix(stub, ".md")
		}
		p := page{SiteTitle: opts.Title, Title: title, Nav: nav, Body: body}
		out := strings.TrimSuffix(stub, ".md") + ".html"
		if err := renderPage(opts.OutputDir, out, p); err != nil {
			return err
		}
	}
	return writeStatic(opts.OutputDir)
}
