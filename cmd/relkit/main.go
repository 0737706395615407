package main

import (
	"fmt"
	"log/slog"

	"github.com/alecthomas/kong"

	"github.com/rusocsci/relkit/cmd/relkit/commands"
	"github.com/rusocsci/relkit/internal/version"
)

func main() {
	cli := commands.CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("relkit"),
		kong.Description("Release pipeline for Python packages: stage, build, document, and publish."),
		kong.UsageOnError(),
		kong.Vars{
			"version": fmt.Sprintf("relkit %s (commit %s, built %s)",
				version.Version, version.GitCommit, version.BuildTime),
		},
	)

	err := ctx.Run(&commands.Global{Logger: slog.Default()}, &cli)
	ctx.FatalIfErrorf(err)
}
