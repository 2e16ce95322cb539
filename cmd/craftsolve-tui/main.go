package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lox/craftsolver/internal/config"
	"github.com/lox/craftsolver/solver"
)

type CLI struct {
	Settings string `arg:"" help:"Path to a recipe/crafter settings document (.json or .hcl)"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("craftsolve-tui"),
		kong.Description("Live progress view for a local solve"),
		kong.UsageOnError(),
	)

	settings, err := config.Load(cli.Settings)
	ctx.FatalIfErrorf(err)

	m := newModel()
	program := tea.NewProgram(m)

	solveCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		onProgress := func(p solver.Progress) {
			program.Send(progressMsg(p))
		}
		onSolution := func(s solver.Solution) {
			program.Send(solutionMsg(s))
		}

		macro := solver.NewMacroSolver(settings, onProgress, onSolution)
		solution, err := macro.Solve(solveCtx)
		program.Send(doneMsg{solution: solution, err: err})
	}()

	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "tui error: %v\n", err)
		os.Exit(1)
	}
}
