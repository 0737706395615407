package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rusocsci/relkit/internal/archive"
	"github.com/rusocsci/relkit/internal/docs"
	"github.com/rusocsci/relkit/internal/logfields"
	"github.com/rusocsci/relkit/internal/pipeline"
	"github.com/rusocsci/relkit/internal/stage"
	"github.com/rusocsci/relkit/internal/workspace"
)

// DocCmd implements the 'doc' command.
type DocCmd struct {
	Source  string `short:"C" help:"Working tree to document" default:"."`
	Backend string `help:"Documentation backend (api or site); defaults to the configured one" enum:"api,site," default:""`
	Output  string `short:"o" help:"Archive filename placed in the working tree root; defaults to the configured one"`
}

func (d *DocCmd) Run(_ *Global, root *CLI) error {
	workingTree, err := filepath.Abs(d.Source)
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
	if d.Backend != "" {
		backend = d.Backend
	}
	gen, err := docs.NewGenerator(backend)
	if err != nil {
		return err
	}
	archiveName := cfg.Docs.Archive
	if d.Output != "" {
		archiveName = d.Output
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	run := newRun("doc", workingTree, meta)
	slog.Info("Starting documentation build",
		logfields.RunID(run.ID),
		logfields.Package(meta.Name),
		logfields.Backend(backend))

	ws := workspace.NewManager(cfg.Staging.BaseDir)
	defer func() {
		if err := ws.Cleanup(); err != nil {
			slog.Warn("Failed to cleanup staging workspace", logfields.Error(err))
		}
	}()

	// The archive is assembled in the staging workspace and copied to the
	// working tree as the last stage, so a failed generation or verification
	// never leaves a new archive behind.
	var stagedZip string

	p := pipeline.New("doc", nil,
		pipeline.Stage{Name: "stage", Run: func(_ context.Context, st *pipeline.State) error {
			if err := ws.Create(); err != nil {
				return err
			}
			st.StagingTree = filepath.Join(ws.Path(), "src")
			if err := stage.New(st.WorkingTree).CopyTo(st.StagingTree); err != nil {
				return err
			}
			docDir, err := ws.Subdir("doc")
			if err != nil {
				return err
			}
			st.DocDir = docDir
			return nil
		}},
		pipeline.Stage{Name: "generate", Run: func(ctx context.Context, st *pipeline.State) error {
			return gen.Generate(ctx, docs.Options{
				Meta:       st.Meta,
				Title:      cfg.Docs.Title,
				SourceTree: st.StagingTree,
				OutputDir:  st.DocDir,
			})
		}},
		pipeline.Stage{Name: "verify", Run: func(_ context.Context, st *pipeline.State) error {
			pages, err := docs.VerifyTree(st.DocDir)
			if err != nil {
				return err
			}
			slog.Debug("Documentation tree verified", slog.Int("pages", len(pages)))
			return nil
		}},
		pipeline.Stage{Name: "package", Run: func(_ context.Context, st *pipeline.State) error {
			stagedZip = filepath.Join(ws.Path(), archiveName)
			return archive.Zip(st.DocDir, stagedZip)
		}},
		pipeline.Stage{Name: "collect", Run: func(_ context.Context, st *pipeline.State) error {
			dst := filepath.Join(st.WorkingTree, archiveName)
			if err := archive.CopyFile(stagedZip, dst); err != nil {
				return err
			}
			art, err := fileArtifact(dst, "doczip")
			if err != nil {
				return err
			}
			st.Artifacts = append(st.Artifacts, art)
			return nil
		}},
	)

	st := &pipeline.State{Meta: meta, WorkingTree: workingTree}
	err = p.Run(ctx, st)
	finishRun(cfg, workingTree, run, st, err)
	if err != nil {
		return err
	}

	fmt.Println(filepath.Join(workingTree, archiveName))
	return nil
}
