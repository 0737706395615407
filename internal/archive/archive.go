// Package archive packages a generated documentation tree into a single zip
// and places it in the working tree. The zip is always rebuilt from scratch
// in the staging area and copied over as one final file, so a failed run can
// never leave a partial or accumulated archive in the working tree.
package archive

import (
	"archive/zip"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	relerr "github.com/rusocsci/relkit/internal/errors"
	"github.com/rusocsci/relkit/internal/logfields"
)

// Zip writes a flat zip of srcDir's contents to outPath. Entries are named
// relative to srcDir: the tree's files sit at the archive root with no
// enclosing directory entry. Any pre-existing archive at outPath is removed
// first.
func Zip(srcDir, outPath string) error {
	if err := os.Remove(outPath); err != nil && !os.IsNotExist(err) {
		return relerr.ArchiveFailed(filepath.Base(outPath), err)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return relerr.ArchiveFailed(filepath.Base(outPath), err)
	}
	defer func() { _ = out.Close() }()

	zw := zip.NewWriter(out)
	err = filepath.WalkDir(srcDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil // no directory entries; files only
		}
		rel, err := filepath.Rel(srcDir, p)
		if err != nil {
			return err
		}
		w, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		f, err := os.Open(filepath.Clean(p))
		if err != nil {
			return err
		}
		_, err = io.Copy(w, f)
		_ = f.Close()
		return err
	})
	if err != nil {
		_ = zw.Close()
		return relerr.ArchiveFailed(filepath.Base(outPath), err)
	}
	if err := zw.Close(); err != nil {
		return relerr.ArchiveFailed(filepath.Base(outPath), err)
	}

	slog.Info("Packaged documentation archive", logfields.Artifact(outPath))
	return nil
}

// CopyFile copies src over dst, replacing any previous file. It is used to
// move final artifacts from the staging tree into the working tree.
func CopyFile(src, dst string) error {
	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return relerr.ArchiveFailed(filepath.Base(dst), err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return relerr.ArchiveFailed(filepath.Base(dst), err)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return relerr.ArchiveFailed(filepath.Base(dst), err)
	}
	return nil
}
