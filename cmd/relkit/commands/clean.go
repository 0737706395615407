package commands

import (
	"fmt"
	"path/filepath"

	"github.com/rusocsci/relkit/internal/cleaner"
	"github.com/rusocsci/relkit/internal/config"
)

// CleanCmd implements the 'clean' command.
type CleanCmd struct {
	Source string `short:"C" help:"Working tree to clean" default:"."`
	All    bool   `help:"Also remove the local run-history directory"`
}

func (c *CleanCmd) Run(_ *Global, root *CLI) error {
	workingTree, err := filepath.Abs(c.Source)
	if err != nil {
		return fmt.Errorf("resolve working tree: %w", err)
	}

	// Clean works without a config file: it falls back to the default
	// archive and history locations so a half-set-up tree can still be
	// reset.
	docArchive := config.DefaultDocsArchive
	historyPath := config.DefaultHistoryPath
	if cfg, err := config.Load(root.Config); err == nil {
		docArchive = cfg.Docs.Archive
		historyPath = cfg.History.Path
	}

	opts := cleaner.Options{DocArchive: docArchive}
	if c.All {
		opts.HistoryDir = filepath.Dir(historyPath)
	}

	removed, err := cleaner.Clean(workingTree, opts)
	if err != nil {
		return err
	}
	if len(removed) == 0 {
		fmt.Println("nothing to clean")
		return nil
	}
	for _, name := range removed {
		fmt.Printf("removed %s\n", name)
	}
	return nil
}
