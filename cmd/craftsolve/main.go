// Command craftsolve runs the MacroSolver against a settings document
// and prints (or saves) the resulting action macro.
package main

import (
	"github.com/alecthomas/kong"
)

var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Solve   SolveCmd         `cmd:"" help:"Solve a recipe for the best rotation"`
	Replay  ReplayCmd        `cmd:"" help:"Replay a saved macro against a settings document"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("craftsolve"),
		kong.Description("Crafting rotation solver"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{"version": version},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
