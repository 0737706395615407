package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"

	"github.com/rusocsci/relkit/internal/config"
	"github.com/rusocsci/relkit/internal/gitinfo"
	"github.com/rusocsci/relkit/internal/history"
	"github.com/rusocsci/relkit/internal/logfields"
	"github.com/rusocsci/relkit/internal/pipeline"
	"github.com/rusocsci/relkit/internal/pkgmeta"
)

// Global context passed to subcommands if we need to share global state later.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"relkit.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" help:"Stage the working tree and build distribution artifacts"`
	Doc     DocCmd     `cmd:"" help:"Generate and package HTML documentation"`
	Upload  UploadCmd  `cmd:"" help:"Upload built distributions to the package index"`
	Clean   CleanCmd   `cmd:"" help:"Remove generated build artifacts from the working tree"`
	Init    InitCmd    `cmd:"" help:"Initialize a new configuration file"`
	History HistoryCmd `cmd:"" help:"Show recent release pipeline runs"`
	Preview PreviewCmd `cmd:"" help:"Serve documentation locally with live rebuild"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// loadRelease loads the configuration and resolves the release metadata,
// including "auto" version resolution from the working tree's git tag.
func loadRelease(configPath, workingTree string) (*config.Config, *pkgmeta.Metadata, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	meta := cfg.Metadata()
	if meta.Version == "auto" {
		resolved, err := gitinfo.ResolveVersion(workingTree)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("Resolved version from git tag", logfields.PkgVersion(resolved))
		meta.Version = resolved
	}
	return cfg, meta, nil
}

// recordRun writes one run into the history store. History is bookkeeping:
// a recording failure is logged, never escalated into a pipeline failure.
func recordRun(cfg *config.Config, workingTree string, run history.Run) {
	store, err := history.Open(filepath.Join(workingTree, cfg.History.Path))
	if err != nil {
		slog.Warn("Cannot open history store", logfields.Error(err))
		return
	}
	defer func() { _ = store.Close() }()

	if err := store.RecordRun(context.Background(), run); err != nil {
		slog.Warn("Cannot record run", logfields.Error(err))
	}
}

// newRun seeds a history record for a pipeline invocation.
func newRun(target, workingTree string, meta *pkgmeta.Metadata) history.Run {
	return history.Run{
		ID:        uuid.NewString(),
		Target:    target,
		Package:   meta.Name,
		Version:   meta.Version,
		Commit:    gitinfo.HeadCommit(workingTree),
		StartedAt: time.Now(),
	}
}

// finishRun completes and persists the run record after a pipeline result.
func finishRun(cfg *config.Config, workingTree string, run history.Run, st *pipeline.State, err error) {
	run.Duration = time.Since(run.StartedAt)
	run.Artifacts = st.Artifacts
	if err != nil {
		run.Status = "failed"
		run.Error = err.Error()
	} else {
		run.Status = "success"
	}
	recordRun(cfg, workingTree, run)
}

// fileArtifact describes a produced file for the history record.
func fileArtifact(path, kind string) (history.Artifact, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return history.Artifact{}, err
	}
	sum := sha256.Sum256(data)
	return history.Artifact{
		Path:   path,
		Kind:   kind,
		SHA256: hex.EncodeToString(sum[:]),
		Size:   int64(len(data)),
	}, nil
}
