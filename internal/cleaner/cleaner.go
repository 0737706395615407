// Package cleaner restores a working tree to its pre-build state by
// removing recognized generated artifacts. It never touches source files:
// only the known build output names are candidates for removal.
package cleaner

import (
	"log/slog"
	"os"
	"path/filepath"

	relerr "github.com/rusocsci/relkit/internal/errors"
	"github.com/rusocsci/relkit/internal/logfields"
	"github.com/rusocsci/relkit/internal/stage"
)

// Options controls what Clean removes beyond the build directories.
type Options struct {
	// DocArchive is the documentation archive filename to remove (empty
	// skips it).
	DocArchive string
	// HistoryDir, when set, removes the local run-history directory too.
	HistoryDir string
}

// Clean removes generated artifacts from the working tree root. Absent
// targets are not an error; running twice leaves the same state as running
// once.
func Clean(workingTree string, opts Options) ([]string, error) {
	var removed []string

	entries, err := os.ReadDir(workingTree)
	if err != nil {
		return nil, relerr.Wrap(err, relerr.CategoryFileSystem, relerr.SeverityFatal, "cannot read working tree")
	}
	for _, entry := range entries {
		if !entry.IsDir() || !stage.IsGenerated(entry.Name()) {
			continue
		}
		path := filepath.Join(workingTree, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			return removed, relerr.Wrap(err, relerr.CategoryFileSystem, relerr.SeverityFatal, "cannot remove generated directory").
				WithContext("path", path)
		}
		removed = append(removed, entry.Name())
	}

	if opts.DocArchive != "" {
		path := filepath.Join(workingTree, opts.DocArchive)
		if err := os.Remove(path); err == nil {
			removed = append(removed, opts.DocArchive)
		} else if !os.IsNotExist(err) {
			return removed, relerr.Wrap(err, relerr.CategoryFileSystem, relerr.SeverityFatal, "cannot remove doc archive").
				WithContext("path", path)
		}
	}

	if opts.HistoryDir != "" {
		path := filepath.Join(workingTree, opts.HistoryDir)
		if _, err := os.Stat(path); err == nil {
			if err := os.RemoveAll(path); err != nil {
				return removed, relerr.Wrap(err, relerr.CategoryFileSystem, relerr.SeverityFatal, "cannot remove history directory").
					WithContext("path", path)
			}
			removed = append(removed, opts.HistoryDir)
		}
	}

	for _, name := range removed {
		slog.Info("Removed generated artifact", logfields.Path(name))
	}
	return removed, nil
}
