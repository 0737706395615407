package archive

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zipNames(t *testing.T, path string) []string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer func() { _ = zr.Close() }()

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names
}

func TestZipIsFlat(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "index.html"), []byte("<html></html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "style.css"), []byte("body{}"), 0o644))

	out := filepath.Join(t.TempDir(), "doc.zip")
	require.NoError(t, Zip(src, out))

	names := zipNames(t, out)
	assert.ElementsMatch(t, []string{"index.html", "style.css"}, names)
	for _, name := range names {
		assert.False(t, strings.Contains(name, "/"), "entry nested under a directory: %s", name)
	}
}

func TestZipReplacesPreviousArchive(t *testing.T) {
	out := filepath.Join(t.TempDir(), "doc.zip")

	first := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(first, "old.html"), []byte("old"), 0o644))
	require.NoError(t, Zip(first, out))

	second := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(second, "new.html"), []byte("new"), 0o644))
	require.NoError(t, Zip(second, out))

	names := zipNames(t, out)
	assert.Equal(t, []string{"new.html"}, names, "archive accumulated files across runs")
}

func TestCopyFile(t *testing.T) {
	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "doc.zip")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0o644))

	dst := filepath.Join(t.TempDir(), "doc.zip")
	require.NoError(t, os.WriteFile(dst, []byte("previous"), 0o644))

	require.NoError(t, CopyFile(src, dst))
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}
