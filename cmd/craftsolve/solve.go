package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/craftsolver/internal/config"
	"github.com/lox/craftsolver/internal/fileutil"
	"github.com/lox/craftsolver/solver"
)

// SolveCmd loads a settings document, runs the MacroSolver and prints
// (or saves) the resulting rotation.
type SolveCmd struct {
	Settings string `arg:"" help:"Path to a recipe/crafter settings document (.json or .hcl)"`
	Out      string `help:"Write the solved macro as JSON to this path instead of stdout"`
	LogLevel string `help:"Log level" enum:"debug,info,warn,error" default:"info"`
	Quiet    bool   `help:"Suppress progress logging"`
}

// MacroDocument is the JSON shape a solved macro is saved/printed as.
type MacroDocument struct {
	Actions  []string `json:"actions"`
	Progress uint32   `json:"progress"`
	Quality  uint32   `json:"quality"`
	Steps    int      `json:"steps"`
	Duration int      `json:"duration"`
}

func (cmd *SolveCmd) Run() error {
	level, err := log.ParseLevel(cmd.LogLevel)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           level,
	})
	if cmd.Quiet {
		logger.SetLevel(log.ErrorLevel)
	}

	settings, err := config.Load(cmd.Settings)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Warn("Received interrupt, cancelling solve")
		cancel()
	}()

	onProgress := func(p solver.Progress) {
		logger.Info("progress", "nodes_expanded", p.NodesExpanded, "best_quality", p.BestQuality)
	}
	onSolution := func(s solver.Solution) {
		logger.Info("improved solution", "quality", s.Final.Quality, "steps", len(s.Actions()))
	}

	m := solver.NewMacroSolver(settings, onProgress, onSolution)

	start := time.Now()
	solution, err := m.Solve(ctx)
	if err != nil {
		return fmt.Errorf("solve: %w", err)
	}
	logger.Info("solve complete", "duration", time.Since(start))

	doc := macroDocument(solution)

	if cmd.Out != "" {
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("encode macro: %w", err)
		}
		if err := fileutil.WriteFileAtomic(cmd.Out, data, 0o644); err != nil {
			return fmt.Errorf("write macro: %w", err)
		}
		logger.Info("macro saved", "path", cmd.Out)
		return nil
	}

	for _, combo := range solution.Macro {
		fmt.Println(combo.String())
	}
	fmt.Printf("quality=%d progress=%d steps=%d duration=%d\n",
		solution.Final.Quality, solution.Final.Progress, doc.Steps, doc.Duration)
	return nil
}

func macroDocument(s solver.Solution) MacroDocument {
	doc := MacroDocument{
		Progress: s.Final.Progress,
		Quality:  s.Final.Quality,
	}
	for _, combo := range s.Macro {
		for _, a := range combo.Actions() {
			doc.Actions = append(doc.Actions, a.String())
		}
		doc.Steps += int(combo.Steps())
		doc.Duration += int(combo.Duration())
	}
	return doc
}
