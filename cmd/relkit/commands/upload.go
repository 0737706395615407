package commands

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	relerr "github.com/rusocsci/relkit/internal/errors"
	"github.com/rusocsci/relkit/internal/history"
	"github.com/rusocsci/relkit/internal/logfields"
	"github.com/rusocsci/relkit/internal/pipeline"
	"github.com/rusocsci/relkit/internal/publish"
)

// UploadCmd implements the 'upload' command.
type UploadCmd struct {
	Source  string `short:"C" help:"Working tree whose dist/ artifacts are uploaded" default:"."`
	ShowURL bool   `name:"show-url" help:"Print the package's index project URL after a successful upload"`
}

func (u *UploadCmd) Run(_ *Global, root *CLI) error {
	workingTree, err := filepath.Abs(u.Source)
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
	if cfg.Index.Username == "" {
		return relerr.ConfigRequired("index.username")
	}
	if cfg.Index.Password == "" {
		return relerr.ConfigRequired("index.password")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	run := newRun("upload", workingTree, meta)
	slog.Info("Starting upload",
		logfields.RunID(run.ID),
		logfields.Package(meta.Name),
		logfields.PkgVersion(meta.Version),
		logfields.IndexURL(cfg.Index.URL))

	publisher := publish.New(cfg.Index.URL, cfg.Index.Username, cfg.Index.Password, meta,
		&http.Client{Timeout: 5 * time.Minute})

	uploaded, err := publisher.UploadAll(ctx, filepath.Join(workingTree, "dist"))

	st := &pipeline.State{Meta: meta, WorkingTree: workingTree}
	for _, up := range uploaded {
		kind := "wheel"
		if up.Filetype == "sdist" {
			kind = "sdist"
		}
		fi, statErr := os.Stat(up.Path)
		var size int64
		if statErr == nil {
			size = fi.Size()
		}
		st.Artifacts = append(st.Artifacts, history.Artifact{
			Path:   up.Path,
			Kind:   kind,
			SHA256: up.SHA256,
			Size:   size,
		})
	}
	finishRun(cfg, workingTree, run, st, err)
	if err != nil {
		return err
	}

	for _, up := range uploaded {
		fmt.Printf("uploaded %s\n", filepath.Base(up.Path))
	}
	if u.ShowURL {
		fmt.Println(publisher.ProjectURL())
	}
	return nil
}
