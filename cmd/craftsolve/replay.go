package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/lox/craftsolver/internal/config"
	"github.com/lox/craftsolver/simulator"
)

// ReplayCmd deterministically replays a saved macro against a settings
// document, the same check simulator.StateFromMacro exists for:
// confirming a solver's claimed score actually reproduces.
type ReplayCmd struct {
	Settings string `arg:"" help:"Path to the settings document the macro was solved against"`
	Macro    string `arg:"" help:"Path to a saved macro JSON file (as produced by 'craftsolve solve --out')"`
}

func (cmd *ReplayCmd) Run() error {
	settings, err := config.Load(cmd.Settings)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	data, err := os.ReadFile(cmd.Macro)
	if err != nil {
		return fmt.Errorf("read macro: %w", err)
	}
	var doc MacroDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse macro: %w", err)
	}

	combos := make([]simulator.ActionCombo, 0, len(doc.Actions))
	for _, name := range doc.Actions {
		action, ok := simulator.ParseAction(name)
		if !ok {
			return fmt.Errorf("unknown action %q in macro", name)
		}
		combos = append(combos, simulator.Single(action))
	}

	final, err := simulator.StateFromMacro(settings.Simulator, combos)
	if err != nil {
		return fmt.Errorf("replay macro: %w", err)
	}

	fmt.Printf("progress=%d quality=%d durability=%d success=%v\n",
		final.Progress, final.Quality, final.Durability, final.IsSuccess(settings.Simulator))
	return nil
}
