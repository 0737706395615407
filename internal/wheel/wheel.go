// Package wheel builds distribution artifacts from a staged source tree: a
// pure-Python binary wheel and an optional source distribution tarball.
//
// A wheel is a zip archive with the package payload at the root and a
// *.dist-info directory holding METADATA, WHEEL and RECORD. RECORD lists
// every archived file with its sha256 digest (urlsafe base64, no padding)
// and size; the RECORD line for RECORD itself carries empty digest and size
// fields.
package wheel

import (
	"archive/zip"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	relerr "github.com/rusocsci/relkit/internal/errors"
	"github.com/rusocsci/relkit/internal/logfields"
	"github.com/rusocsci/relkit/internal/pkgmeta"
	"github.com/rusocsci/relkit/internal/version"
)

// archiveEpoch is the fixed timestamp written into archive entries, so two
// builds of the same tree produce byte-identical artifacts.
var archiveEpoch = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

// Builder produces distribution artifacts for one package.
type Builder struct {
	meta       *pkgmeta.Metadata
	sourceTree string
}

// NewBuilder returns a Builder for the package described by meta, reading
// sources from sourceTree (normally the staging tree).
func NewBuilder(meta *pkgmeta.Metadata, sourceTree string) *Builder {
	return &Builder{meta: meta, sourceTree: sourceTree}
}

// BuildWheel writes the wheel into distDir and returns its full path.
func (b *Builder) BuildWheel(distDir string) (string, error) {
	if err := b.meta.Validate(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(distDir, 0o750); err != nil {
		return "", relerr.BuildFailed(b.meta.WheelFilename(), err)
	}

	payload, err := b.collectPayload()
	if err != nil {
		return "", relerr.BuildFailed(b.meta.WheelFilename(), err)
	}

	outPath := filepath.Join(distDir, b.meta.WheelFilename())
	out, err := os.Create(outPath)
	if err != nil {
		return "", relerr.BuildFailed(b.meta.WheelFilename(), err)
	}
	defer func() { _ = out.Close() }()

	zw := zip.NewWriter(out)
	record := newRecord()

	for _, file := range payload {
		data, err := os.ReadFile(file.abs)
		if err != nil {
			_ = zw.Close()
			return "", relerr.BuildFailed(b.meta.WheelFilename(), err)
		}
		if err := writeZipEntry(zw, file.arcname, data, record); err != nil {
			_ = zw.Close()
			return "", relerr.BuildFailed(b.meta.WheelFilename(), err)
		}
	}

	distInfo := b.meta.DistInfoDir()
	metadata := b.meta.CoreMetadata(b.longDescription())
	wheelFile := b.wheelFileContents()

	if err := writeZipEntry(zw, path.Join(distInfo, "METADATA"), []byte(metadata), record); err != nil {
		_ = zw.Close()
		return "", relerr.BuildFailed(b.meta.WheelFilename(), err)
	}
	if err := writeZipEntry(zw, path.Join(distInfo, "WHEEL"), []byte(wheelFile), record); err != nil {
		_ = zw.Close()
		return "", relerr.BuildFailed(b.meta.WheelFilename(), err)
	}

	// RECORD goes last and lists itself without digest or size.
	recordName := path.Join(distInfo, "RECORD")
	record.addUnhashed(recordName)
	if err := writeZipEntry(zw, recordName, []byte(record.render()), nil); err != nil {
		_ = zw.Close()
		return "", relerr.BuildFailed(b.meta.WheelFilename(), err)
	}

	if err := zw.Close(); err != nil {
		return "", relerr.BuildFailed(b.meta.WheelFilename(), err)
	}

	slog.Info("Built wheel",
		logfields.Artifact(b.meta.WheelFilename()),
		logfields.Package(b.meta.Name),
		logfields.PkgVersion(b.meta.Version))
	return outPath, nil
}

// wheelFileContents renders the dist-info WHEEL file.
func (b *Builder) wheelFileContents() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Wheel-Version: 1.0\n")
	fmt.Fprintf(&sb, "Generator: relkit %s\n", version.Version)
	fmt.Fprintf(&sb, "Root-Is-Purelib: true\n")
	// Compound python tags ("py2.py3") expand to one Tag line each.
	parts := strings.SplitN(b.meta.WheelTag(), "-", 2)
	for _, py := range strings.Split(parts[0], ".") {
		fmt.Fprintf(&sb, "Tag: %s-%s\n", py, parts[1])
	}
	return sb.String()
}

// longDescription reads the configured readme from the source tree. A
// missing readme is not fatal; the description is simply empty.
func (b *Builder) longDescription() string {
	if b.meta.ReadmePath == "" {
		return ""
	}
	data, err := os.ReadFile(filepath.Join(b.sourceTree, b.meta.ReadmePath))
	if err != nil {
		slog.Warn("Readme not readable, omitting long description", logfields.Path(b.meta.ReadmePath))
		return ""
	}
	return string(data)
}

type payloadFile struct {
	abs     string // absolute path on disk
	arcname string // forward-slash path inside the archive
}

// collectPayload gathers every file under the declared package directories,
// sorted by archive name for deterministic output. Compiled caches are
// skipped.
func (b *Builder) collectPayload() ([]payloadFile, error) {
	var files []payloadFile
	for _, pkg := range b.meta.Packages {
		root := filepath.Join(b.sourceTree, pkg)
		if fi, err := os.Stat(root); err != nil || !fi.IsDir() {
			return nil, fmt.Errorf("package directory not found: %s", pkg)
		}
		err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if d.Name() == "__pycache__" {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.HasSuffix(d.Name(), ".pyc") {
				return nil
			}
			rel, err := filepath.Rel(b.sourceTree, p)
			if err != nil {
				return err
			}
			files = append(files, payloadFile{abs: p, arcname: filepath.ToSlash(rel)})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].arcname < files[j].arcname })
	return files, nil
}

// writeZipEntry writes one file into the archive with the fixed epoch and
// registers it in the record (when record is non-nil).
func writeZipEntry(zw *zip.Writer, name string, data []byte, record *record) error {
	hdr := &zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: archiveEpoch,
	}
	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if record != nil {
		record.add(name, data)
	}
	return nil
}
