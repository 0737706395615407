package commands

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rusocsci/relkit/internal/history"
)

const testConfig = `package:
  name: rusocsci
  version: "0.8.0"
  summary: Support library for response boxes
  author: Wilbert van Ham
  packages:
    - rusocsci
  readme: README.md
docs:
  backend: api
  title: RuSocSci
`

// writeWorkingTree lays out a minimal releasable Python project.
func writeWorkingTree(t *testing.T) (tree, cfgPath string) {
	t.Helper()
	tree = t.TempDir()

	pkg := filepath.Join(tree, "rusocsci")
	require.NoError(t, os.MkdirAll(pkg, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(pkg, "__init__.py"),
		[]byte("\"\"\"Support library for response boxes.\"\"\"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(pkg, "buttonbox.py"),
		[]byte("\"\"\"Button box driver.\"\"\"\n\ndef waitButtons():\n    \"\"\"Wait for a button press.\"\"\"\n    pass\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tree, "README.md"),
		[]byte("# RuSocSci\n\nSupport library for *response boxes*.\n"), 0o644))

	cfgPath = filepath.Join(tree, "relkit.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(testConfig), 0o644))
	return tree, cfgPath
}

func TestBuildCommandProducesDistributions(t *testing.T) {
	tree, cfgPath := writeWorkingTree(t)

	cmd := BuildCmd{Source: tree, Sdist: true}
	require.NoError(t, cmd.Run(&Global{}, &CLI{Config: cfgPath}))

	assert.FileExists(t, filepath.Join(tree, "dist", "rusocsci-0.8.0-py2.py3-none-any.whl"))
	assert.FileExists(t, filepath.Join(tree, "dist", "rusocsci-0.8.0.tar.gz"))

	// The run was recorded with its artifacts.
	store, err := history.Open(filepath.Join(tree, ".relkit", "history.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	runs, err := store.ListRuns(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "build", runs[0].Target)
	assert.Equal(t, "success", runs[0].Status)
	assert.Len(t, runs[0].Artifacts, 2)
}

func TestDocCommandProducesFlatArchive(t *testing.T) {
	tree, cfgPath := writeWorkingTree(t)

	cmd := DocCmd{Source: tree}
	require.NoError(t, cmd.Run(&Global{}, &CLI{Config: cfgPath}))

	zipPath := filepath.Join(tree, "doc.zip")
	require.FileExists(t, zipPath)

	zr, err := zip.OpenReader(zipPath)
	require.NoError(t, err)
	defer func() { _ = zr.Close() }()
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		assert.NotContains(t, f.Name, "/", "doc archive must be flat")
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "index.html")
}

func TestDocCommandFailureLeavesNoArchive(t *testing.T) {
	tree, cfgPath := writeWorkingTree(t)
	// An unreadable package makes generation fail.
	require.NoError(t, os.RemoveAll(filepath.Join(tree, "rusocsci")))

	cmd := DocCmd{Source: tree}
	require.Error(t, cmd.Run(&Global{}, &CLI{Config: cfgPath}))
	assert.NoFileExists(t, filepath.Join(tree, "doc.zip"))
}

func TestCleanCommandResetsWorkingTree(t *testing.T) {
	tree, cfgPath := writeWorkingTree(t)

	build := BuildCmd{Source: tree}
	require.NoError(t, build.Run(&Global{}, &CLI{Config: cfgPath}))
	doc := DocCmd{Source: tree}
	require.NoError(t, doc.Run(&Global{}, &CLI{Config: cfgPath}))

	clean := CleanCmd{Source: tree, All: true}
	require.NoError(t, clean.Run(&Global{}, &CLI{Config: cfgPath}))

	assert.NoDirExists(t, filepath.Join(tree, "dist"))
	assert.NoFileExists(t, filepath.Join(tree, "doc.zip"))
	assert.NoDirExists(t, filepath.Join(tree, ".relkit"))
	// Sources are untouched.
	assert.FileExists(t, filepath.Join(tree, "rusocsci", "buttonbox.py"))
	assert.FileExists(t, filepath.Join(tree, "README.md"))
}

func TestBuildCommandDoesNotMutateSource(t *testing.T) {
	tree, cfgPath := writeWorkingTree(t)

	before := listTree(t, tree)
	cmd := BuildCmd{Source: tree}
	require.NoError(t, cmd.Run(&Global{}, &CLI{Config: cfgPath}))
	after := listTree(t, tree)

	// Only the declared outputs appear; nothing pre-existing changed.
	for path := range before {
		assert.Equal(t, before[path], after[path], path)
	}
	for path := range after {
		if _, ok := before[path]; !ok {
			generated := strings.HasPrefix(path, "dist"+string(filepath.Separator)) ||
				strings.HasPrefix(path, ".relkit"+string(filepath.Separator))
			assert.True(t, generated, "unexpected new file: %s", path)
		}
	}
}

// listTree maps relative file paths to sizes.
func listTree(t *testing.T, root string) map[string]int64 {
	t.Helper()
	out := map[string]int64{}
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		out[rel] = info.Size()
		return nil
	})
	require.NoError(t, err)
	return out
}
