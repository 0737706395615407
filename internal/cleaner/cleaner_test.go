package cleaner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTree(t *testing.T) string {
	t.Helper()
	tree := t.TempDir()
	for _, dir := range []string{"dist", "build", "RuSocSci.egg-info", "rusocsci"} {
		require.NoError(t, os.MkdirAll(filepath.Join(tree, dir), 0o750))
	}
	require.NoError(t, os.WriteFile(filepath.Join(tree, "setup.py"), []byte("# setup"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tree, "rusocsci", "utils.py"), []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tree, "doc.zip"), []byte("zip"), 0o644))
	return tree
}

func TestCleanRemovesOnlyGenerated(t *testing.T) {
	tree := makeTree(t)

	removed, err := Clean(tree, Options{DocArchive: "doc.zip"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"dist", "build", "RuSocSci.egg-info", "doc.zip"}, removed)

	// Source files and directories survive.
	_, err = os.Stat(filepath.Join(tree, "setup.py"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(tree, "rusocsci", "utils.py"))
	assert.NoError(t, err)

	for _, name := range []string{"dist", "build", "RuSocSci.egg-info", "doc.zip"} {
		_, err := os.Stat(filepath.Join(tree, name))
		assert.True(t, os.IsNotExist(err), "%s not removed", name)
	}
}

func TestCleanIdempotent(t *testing.T) {
	tree := makeTree(t)

	_, err := Clean(tree, Options{DocArchive: "doc.zip"})
	require.NoError(t, err)

	// Second run removes nothing and does not fail.
	removed, err := Clean(tree, Options{DocArchive: "doc.zip"})
	require.NoError(t, err)
	assert.Empty(t, removed)
}

func TestCleanHistoryDirOnlyWhenAsked(t *testing.T) {
	tree := makeTree(t)
	require.NoError(t, os.MkdirAll(filepath.Join(tree, ".relkit"), 0o750))

	_, err := Clean(tree, Options{})
	require.NoError(t, err)
	_, statErr := os.Stat(filepath.Join(tree, ".relkit"))
	assert.NoError(t, statErr, "history dir removed without opting in")

	_, err = Clean(tree, Options{HistoryDir: ".relkit"})
	require.NoError(t, err)
	_, statErr = os.Stat(filepath.Join(tree, ".relkit"))
	assert.True(t, os.IsNotExist(statErr))
}
