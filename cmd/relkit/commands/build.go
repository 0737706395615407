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
	"github.com/rusocsci/relkit/internal/logfields"
	"github.com/rusocsci/relkit/internal/pipeline"
	"github.com/rusocsci/relkit/internal/stage"
	"github.com/rusocsci/relkit/internal/wheel"
	"github.com/rusocsci/relkit/internal/workspace"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Source string `short:"C" help:"Working tree to release" default:"."`
	Sdist  bool   `help:"Also build a source distribution alongside the wheel"`
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	workingTree, err := filepath.Abs(b.Source)
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

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	run := newRun("build", workingTree, meta)
	slog.Info("Starting build",
		logfields.RunID(run.ID),
		logfields.Package(meta.Name),
		logfields.PkgVersion(meta.Version))

	ws := workspace.NewManager(cfg.Staging.BaseDir)
	defer func() {
		if err := ws.Cleanup(); err != nil {
			slog.Warn("Failed to cleanup staging workspace", logfields.Error(err))
		}
	}()

	// Artifacts are built inside the staging tree and only copied back to
	// the working tree once every build stage has succeeded.
	var built []string

	p := pipeline.New("build", nil,
		pipeline.Stage{Name: "stage", Run: func(_ context.Context, st *pipeline.State) error {
			if err := ws.Create(); err != nil {
				return err
			}
			st.StagingTree = filepath.Join(ws.Path(), "src")
			if err := stage.New(st.WorkingTree).CopyTo(st.StagingTree); err != nil {
				return err
			}
			distDir, err := ws.Subdir("dist")
			if err != nil {
				return err
			}
			st.DistDir = distDir
			return nil
		}},
		pipeline.Stage{Name: "wheel", Run: func(_ context.Context, st *pipeline.State) error {
			path, err := wheel.NewBuilder(st.Meta, st.StagingTree).BuildWheel(st.DistDir)
			if err != nil {
				return err
			}
			built = append(built, path)
			return nil
		}},
		pipeline.Stage{Name: "sdist", Run: func(_ context.Context, st *pipeline.State) error {
			if !b.Sdist {
				return nil
			}
			path, err := wheel.NewBuilder(st.Meta, st.StagingTree).BuildSdist(st.DistDir)
			if err != nil {
				return err
			}
			built = append(built, path)
			return nil
		}},
		pipeline.Stage{Name: "collect", Run: func(_ context.Context, st *pipeline.State) error {
			outDir := filepath.Join(st.WorkingTree, "dist")
			if err := os.MkdirAll(outDir, 0o750); err != nil {
				return fmt.Errorf("create dist directory: %w", err)
			}
			for _, src := range built {
				dst := filepath.Join(outDir, filepath.Base(src))
				if err := archive.CopyFile(src, dst); err != nil {
					return err
				}
				kind := "wheel"
				if filepath.Ext(src) != ".whl" {
					kind = "sdist"
				}
				art, err := fileArtifact(dst, kind)
				if err != nil {
					return err
				}
				st.Artifacts = append(st.Artifacts, art)
				slog.Info("Built distribution", logfields.Artifact(filepath.Base(dst)))
			}
			return nil
		}},
	)

	st := &pipeline.State{Meta: meta, WorkingTree: workingTree}
	err = p.Run(ctx, st)
	finishRun(cfg, workingTree, run, st, err)
	if err != nil {
		return err
	}

	for _, a := range st.Artifacts {
		fmt.Println(a.Path)
	}
	return nil
}
