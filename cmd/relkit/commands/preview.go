package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/rusocsci/relkit/internal/docs"
	"github.com/rusocsci/relkit/internal/logfields"
	"github.com/rusocsci/relkit/internal/metrics"
	"github.com/rusocsci/relkit/internal/pipeline"
	"github.com/rusocsci/relkit/internal/preview"
)

// PreviewCmd serves generated documentation locally and rebuilds it when
// the package source changes.
type PreviewCmd struct {
	Source  string `short:"C" help:"Working tree to document" default:"."`
	Addr    string `help:"Listen address" default:"127.0.0.1:8080"`
	Backend string `help:"Documentation backend (api or site); defaults to the configured one" enum:"api,site," default:""`
}

func (p *PreviewCmd) Run(_ *Global, root *CLI) error {
	workingTree, err := filepath.Abs(p.Source)
	if err != nil {
		return fmt.Errorf("resolve working tree: %w", err)
	}
	cfg, meta, err := loadRelease(root.Config, workingTree)
	if err != nil {
		return err
	}
	if err := meta.Validate(); err != nil {
		return err
	}

	backend := cfg.Docs.Backend
	if p.Backend != "" {
		backend = p.Backend
	}
	gen, err := docs.NewGenerator(backend)
	if err != nil {
		return err
	}

	docDir, err := os.MkdirTemp("", "relkit-preview-*")
	if err != nil {
		return fmt.Errorf("create preview output: %w", err)
	}
	defer func() { _ = os.RemoveAll(docDir) }()

	recorder := metrics.NewPrometheusRecorder(prom.NewRegistry())

	// Preview reads the working tree directly: generation never writes
	// into the source, so the staging copy would buy nothing here.
	rebuild := func(ctx context.Context) error {
		pl := pipeline.New("preview", recorder,
			pipeline.Stage{Name: "generate", Run: func(ctx context.Context, st *pipeline.State) error {
				return gen.Generate(ctx, docs.Options{
					Meta:       st.Meta,
					Title:      cfg.Docs.Title,
					SourceTree: st.WorkingTree,
					OutputDir:  st.DocDir,
				})
			}},
			pipeline.Stage{Name: "verify", Run: func(_ context.Context, st *pipeline.State) error {
				_, err := docs.VerifyTree(st.DocDir)
				return err
			}},
		)
		return pl.Run(ctx, &pipeline.State{Meta: meta, WorkingTree: workingTree, DocDir: docDir})
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	slog.Info("Starting documentation preview",
		slog.String("addr", p.Addr),
		logfields.Backend(backend),
		logfields.Package(meta.Name))
	fmt.Printf("Serving documentation on http://%s/ (metrics on /metrics)\n", p.Addr)

	return preview.Run(ctx, preview.Options{
		Addr:     p.Addr,
		DocDir:   docDir,
		WatchDir: workingTree,
		Rebuild:  rebuild,
		Registry: recorder.Registry(),
	})
}
