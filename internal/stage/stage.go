// Package stage implements the artifact stager: a full recursive copy of the
// working tree into an isolated staging tree. Build and documentation steps
// operate on the copy, never on the developer's checkout.
package stage

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	relerr "github.com/rusocsci/relkit/internal/errors"
	"github.com/rusocsci/relkit/internal/logfields"
)

// GeneratedDirs are the directory names the build toolchain produces in a
// tree. They are excluded from staging copies (a stale dist/ from a previous
// direct build must never ride along into a fresh staging tree) and they are
// what the cleaner removes.
var GeneratedDirs = []string{"dist", "build"}

// GeneratedSuffixes complement GeneratedDirs for pattern-shaped artifacts.
var GeneratedSuffixes = []string{".egg-info"}

// IsGenerated reports whether a top-level entry name is recognized build
// output rather than source.
func IsGenerated(name string) bool {
	for _, d := range GeneratedDirs {
		if name == d {
			return true
		}
	}
	for _, s := range GeneratedSuffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

// Stager copies a working tree into staging trees.
type Stager struct {
	// Source is the working tree root.
	Source string
}

// New returns a Stager for the given working tree root.
func New(source string) *Stager {
	return &Stager{Source: source}
}

// CopyTo copies the working tree into target. If target already exists (a
// leftover from a prior failed run) it is removed first, so the staged tree
// is always an exact copy of the current working tree. Recognized generated
// directories at the top level are skipped; everything else, including
// hidden metadata files, is copied.
func (s *Stager) CopyTo(target string) error {
	src, err := filepath.Abs(s.Source)
	if err != nil {
		return relerr.StagingFailed("resolve source", err)
	}
	dst, err := filepath.Abs(target)
	if err != nil {
		return relerr.StagingFailed("resolve target", err)
	}
	if src == dst {
		return relerr.StagingFailed("validate", fmt.Errorf("staging target equals source: %s", src))
	}
	if fi, err := os.Stat(src); err != nil || !fi.IsDir() {
		return relerr.StagingFailed("validate", fmt.Errorf("source is not a directory: %s", src))
	}

	if err := os.RemoveAll(dst); err != nil {
		return relerr.StagingFailed("remove stale target", err)
	}
	if err := os.MkdirAll(dst, 0o750); err != nil {
		return relerr.StagingFailed("create target", err)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return relerr.StagingFailed("read source", err)
	}
	for _, entry := range entries {
		if IsGenerated(entry.Name()) {
			slog.Debug("Skipping generated entry during staging", logfields.Path(entry.Name()))
			continue
		}
		from := filepath.Join(src, entry.Name())
		to := filepath.Join(dst, entry.Name())
		if entry.IsDir() {
			if err := copyDir(from, to); err != nil {
				return relerr.StagingFailed("copy", err)
			}
		} else {
			if err := copyFile(from, to); err != nil {
				return relerr.StagingFailed("copy", err)
			}
		}
	}

	slog.Info("Staged working tree", logfields.Path(dst))
	return nil
}

// copyDir recursively copies a directory tree, preserving file modes.
func copyDir(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dst, srcInfo.Mode()); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())
		if entry.IsDir() {
			if err := copyDir(srcPath, dstPath); err != nil {
				return err
			}
		} else {
			if err := copyFile(srcPath, dstPath); err != nil {
				return err
			}
		}
	}
	return nil
}

// copyFile copies a single file from src to dst
func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = srcFile.Close()
	}()

	dstFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		_ = dstFile.Close()
	}()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return err
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}
	return os.Chmod(dst, srcInfo.Mode())
}
