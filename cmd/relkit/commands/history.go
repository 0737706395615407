package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/rusocsci/relkit/internal/config"
	"github.com/rusocsci/relkit/internal/history"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Source string `short:"C" help:"Working tree whose history is shown" default:"."`
	Limit  int    `short:"n" help:"Maximum number of runs to show" default:"20"`
}

func (h *HistoryCmd) Run(_ *Global, root *CLI) error {
	workingTree, err := filepath.Abs(h.Source)
	if err != nil {
		return fmt.Errorf("resolve working tree: %w", err)
	}

	historyPath := config.DefaultHistoryPath
	if cfg, err := config.Load(root.Config); err == nil {
		historyPath = cfg.History.Path
	}

	dbPath := filepath.Join(workingTree, historyPath)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Println("no runs recorded")
		return nil
	}

	store, err := history.Open(dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	runs, err := store.ListRuns(context.Background(), h.Limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tTARGET\tPACKAGE\tVERSION\tCOMMIT\tSTATUS\tDURATION\tARTIFACTS")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			r.StartedAt.Format("2006-01-02 15:04:05"),
			r.Target, r.Package, r.Version, r.Commit, r.Status,
			r.Duration.Round(10*time.Millisecond), len(r.Artifacts))
	}
	return w.Flush()
}
