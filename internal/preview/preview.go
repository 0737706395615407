// Package preview serves a generated documentation tree over HTTP and
// regenerates it when the package source changes. It exists for operator
// convenience while writing docstrings; the release pipeline itself never
// depends on it.
package preview

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rusocsci/relkit/internal/logfields"
)

// debounceWindow coalesces editor save bursts into one rebuild.
const debounceWindow = 300 * time.Millisecond

// Options configures a preview server.
type Options struct {
	// Addr is the listen address, e.g. "127.0.0.1:8080".
	Addr string
	// DocDir is the generated HTML tree to serve.
	DocDir string
	// WatchDir is the source directory whose changes trigger a rebuild.
	WatchDir string
	// Rebuild regenerates DocDir. It is called once before serving and
	// again after every (debounced) change.
	Rebuild func(ctx context.Context) error
	// Registry, when non-nil, is exposed on /metrics.
	Registry *prom.Registry
}

// Run builds once, then serves and watches until ctx is canceled.
func Run(ctx context.Context, opts Options) error {
	if opts.Rebuild == nil {
		return errors.New("preview: Rebuild callback is required")
	}
	if err := opts.Rebuild(ctx); err != nil {
		return fmt.Errorf("initial documentation build: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(opts.DocDir)))
	if opts.Registry != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))
	}
	server := &http.Server{
		Addr:              opts.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = watcher.Close() }()
	if err := addDirsRecursive(watcher, opts.WatchDir); err != nil {
		return fmt.Errorf("watch %s: %w", opts.WatchDir, err)
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("Preview server listening", slog.String("addr", opts.Addr), logfields.Path(opts.DocDir))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	var timer *time.Timer
	var timerC <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case err := <-errChan:
			return err
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			handleEvent(watcher, ev)
			if timer == nil {
				timer = time.NewTimer(debounceWindow)
			} else {
				timer.Reset(debounceWindow)
			}
			timerC = timer.C
		case err, ok := <-watcher.Errors:
			if ok && err != nil {
				slog.Warn("File watcher error", logfields.Error(err))
			}
		case <-timerC:
			timerC = nil
			slog.Info("Source changed, regenerating documentation")
			if err := opts.Rebuild(ctx); err != nil {
				// Keep serving the last good tree; the operator sees the error.
				slog.Error("Regeneration failed", logfields.Error(err))
			}
		}
	}
}

// handleEvent keeps the recursive watch up to date as directories appear.
func handleEvent(w *fsnotify.Watcher, ev fsnotify.Event) {
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = w.Add(ev.Name)
		}
	}
}

// addDirsRecursive watches root and every directory beneath it.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "__pycache__" {
				return filepath.SkipDir
			}
			return w.Add(p)
		}
		return nil
	})
}
