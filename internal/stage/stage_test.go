package stage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func makeWorkingTree(t *testing.T) string {
	t.Helper()
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "setup.py"), "# setup")
	writeFile(t, filepath.Join(src, "README"), "readme body")
	writeFile(t, filepath.Join(src, "MANIFEST.in"), "include README")
	writeFile(t, filepath.Join(src, ".hidden"), "hidden metadata")
	writeFile(t, filepath.Join(src, "rusocsci", "__init__.py"), "")
	writeFile(t, filepath.Join(src, "rusocsci", "buttonbox.py"), `"""Buttonbox module."""`)
	return src
}

func TestCopyToExactCopy(t *testing.T) {
	src := makeWorkingTree(t)
	dst := filepath.Join(t.TempDir(), "staged")

	require.NoError(t, New(src).CopyTo(dst))

	for _, rel := range []string{"setup.py", "README", "MANIFEST.in", ".hidden", "rusocsci/buttonbox.py"} {
		want, err := os.ReadFile(filepath.Join(src, rel))
		require.NoError(t, err)
		got, err := os.ReadFile(filepath.Join(dst, rel))
		require.NoError(t, err, "missing staged file %s", rel)
		assert.Equal(t, want, got, "content mismatch for %s", rel)
	}
}

func TestCopyToRemovesStaleTarget(t *testing.T) {
	src := makeWorkingTree(t)
	dst := filepath.Join(t.TempDir(), "staged")

	// Simulate a leftover from a prior failed run.
	writeFile(t, filepath.Join(dst, "stale.py"), "stale")
	writeFile(t, filepath.Join(dst, "rusocsci", "removed_module.py"), "stale")

	require.NoError(t, New(src).CopyTo(dst))

	_, err := os.Stat(filepath.Join(dst, "stale.py"))
	assert.True(t, os.IsNotExist(err), "stale file survived staging")
	_, err = os.Stat(filepath.Join(dst, "rusocsci", "removed_module.py"))
	assert.True(t, os.IsNotExist(err), "stale nested file survived staging")
}

func TestCopyToSkipsGeneratedDirs(t *testing.T) {
	src := makeWorkingTree(t)
	writeFile(t, filepath.Join(src, "dist", "old-0.1.whl"), "old wheel")
	writeFile(t, filepath.Join(src, "build", "lib", "x.py"), "x")
	writeFile(t, filepath.Join(src, "RuSocSci.egg-info", "PKG-INFO"), "old")

	dst := filepath.Join(t.TempDir(), "staged")
	require.NoError(t, New(src).CopyTo(dst))

	for _, rel := range []string{"dist", "build", "RuSocSci.egg-info"} {
		_, err := os.Stat(filepath.Join(dst, rel))
		assert.True(t, os.IsNotExist(err), "generated dir %s was staged", rel)
	}
}

func TestCopyToDoesNotMutateSource(t *testing.T) {
	src := makeWorkingTree(t)
	before := map[string][]byte{}
	require.NoError(t, filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		before[path] = data
		return nil
	}))

	require.NoError(t, New(src).CopyTo(filepath.Join(t.TempDir(), "staged")))

	after := 0
	require.NoError(t, filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		after++
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		assert.Equal(t, before[path], data, "source file changed: %s", path)
		return nil
	}))
	assert.Len(t, before, after, "source file count changed")
}

func TestCopyToRejectsSelfTarget(t *testing.T) {
	src := makeWorkingTree(t)
	assert.Error(t, New(src).CopyTo(src))
}

func TestIsGenerated(t *testing.T) {
	assert.True(t, IsGenerated("dist"))
	assert.True(t, IsGenerated("build"))
	assert.True(t, IsGenerated("RuSocSci.egg-info"))
	assert.False(t, IsGenerated("rusocsci"))
	assert.False(t, IsGenerated("setup.py"))
}
