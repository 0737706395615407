package wheel

import (
	"archive/tar"
	"compress/gzip"
	"os"
	"path"
	"path/filepath"

	relerr "github.com/rusocsci/relkit/internal/errors"
)

// metadataFiles are working-tree files included in the sdist when present,
// in addition to the package payload and the generated PKG-INFO.
var metadataFiles = []string{"setup.py", "setup.cfg", "pyproject.toml", "MANIFEST.in"}

// BuildSdist writes the source distribution tarball into distDir and returns
// its full path. The tarball contains a single name-version/ root directory
// with PKG-INFO, the packaging metadata files and the package sources.
func (b *Builder) BuildSdist(distDir string) (string, error) {
	if err := b.meta.Validate(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(distDir, 0o750); err != nil {
		return "", relerr.BuildFailed(b.meta.SdistFilename(), err)
	}

	outPath := filepath.Join(distDir, b.meta.SdistFilename())
	out, err := os.Create(outPath)
	if err != nil {
		return "", relerr.BuildFailed(b.meta.SdistFilename(), err)
	}
	defer func() { _ = out.Close() }()

	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)
	root := b.meta.SdistRoot()

	writeEntry := func(arcname string, data []byte) error {
		hdr := &tar.Header{
			Name:    path.Join(root, arcname),
			Mode:    0o644,
			Size:    int64(len(data)),
			ModTime: archiveEpoch,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		_, err := tw.Write(data)
		return err
	}

	pkgInfo := b.meta.CoreMetadata(b.longDescription())
	if err := writeEntry("PKG-INFO", []byte(pkgInfo)); err != nil {
		return "", relerr.BuildFailed(b.meta.SdistFilename(), err)
	}

	extras := metadataFiles
	if b.meta.ReadmePath != "" {
		extras = append(extras, b.meta.ReadmePath)
	}
	if b.meta.ChangelogPath != "" {
		extras = append(extras, b.meta.ChangelogPath)
	}
	for _, name := range extras {
		data, err := os.ReadFile(filepath.Join(b.sourceTree, name))
		if err != nil {
			continue // optional; sdist carries what the tree has
		}
		if err := writeEntry(filepath.ToSlash(name), data); err != nil {
			return "", relerr.BuildFailed(b.meta.SdistFilename(), err)
		}
	}

	payload, err := b.collectPayload()
	if err != nil {
		return "", relerr.BuildFailed(b.meta.SdistFilename(), err)
	}
	for _, file := range payload {
		data, err := os.ReadFile(file.abs)
		if err != nil {
			return "", relerr.BuildFailed(b.meta.SdistFilename(), err)
		}
		if err := writeEntry(file.arcname, data); err != nil {
			return "", relerr.BuildFailed(b.meta.SdistFilename(), err)
		}
	}

	if err := tw.Close(); err != nil {
		return "", relerr.BuildFailed(b.meta.SdistFilename(), err)
	}
	if err := gz.Close(); err != nil {
		return "", relerr.BuildFailed(b.meta.SdistFilename(), err)
	}
	return outPath, nil
}
