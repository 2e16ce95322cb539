// Package config loads a SolverSettings document describing a recipe,
// a crafter's stats, and the solver knobs to run it with. Documents are
// accepted as HCL (hclparse + gohcl, defaults applied after decode) or
// as the same JSON shape the CLI and websocket server exchange over the
// wire.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/craftsolver/simulator"
	"github.com/lox/craftsolver/solver"
)

// Recipe is the recipe half of a settings document: the progress,
// quality and durability targets plus the base efficiency constants the
// simulator's arithmetic contract scales by.
type Recipe struct {
	MaxProgress   uint32 `json:"max_progress" hcl:"max_progress"`
	MaxQuality    uint32 `json:"max_quality" hcl:"max_quality"`
	MaxDurability int16  `json:"max_durability" hcl:"max_durability"`
	BaseProgress  uint32 `json:"base_progress" hcl:"base_progress"`
	BaseQuality   uint32 `json:"base_quality" hcl:"base_quality"`
}

// Crafter is the crafter half of a settings document: CP pool, job
// level, and which actions are unlocked.
type Crafter struct {
	MaxCP          int16    `json:"max_cp" hcl:"max_cp"`
	JobLevel       uint8    `json:"job_level" hcl:"job_level"`
	AllowedActions []string `json:"allowed_actions,omitempty" hcl:"allowed_actions,optional"`
}

// Solver is the optional solver-tuning block; a document that omits it
// gets DefaultSettings' conservative exact-search behavior.
type Solver struct {
	BackloadProgress            bool `json:"backload_progress,omitempty" hcl:"backload_progress,optional"`
	AllowUnsoundBranchPruning   bool `json:"allow_unsound_branch_pruning,omitempty" hcl:"allow_unsound_branch_pruning,optional"`
	// AllowNonMaxQualitySolutions is a pointer so a document that omits
	// it keeps DefaultSettings' exhaustive behavior rather than
	// silently switching the solver into its faster max-quality-only
	// mode.
	AllowNonMaxQualitySolutions *bool `json:"allow_non_max_quality_solutions,omitempty" hcl:"allow_non_max_quality_solutions,optional"`
	Adversarial                 bool `json:"adversarial,omitempty" hcl:"adversarial,optional"`
	MaxThreads                  int  `json:"max_threads,omitempty" hcl:"max_threads,optional"`
}

// Document is the top-level shape of a settings file, in either JSON or
// HCL form.
type Document struct {
	Recipe  Recipe  `json:"recipe" hcl:"recipe,block"`
	Crafter Crafter `json:"crafter" hcl:"crafter,block"`
	Solver  *Solver `json:"solver,omitempty" hcl:"solver,block"`
}

// Load reads a settings document from path, inferring the format from
// its extension (.json, or .hcl/anything else), and resolves it into a
// solver.Settings ready to hand to solver.NewMacroSolver.
func Load(path string) (solver.Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return solver.Settings{}, fmt.Errorf("read settings file: %w", err)
	}

	var doc Document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return solver.Settings{}, fmt.Errorf("parse JSON settings: %w", err)
		}
	default:
		parser := hclparse.NewParser()
		file, diags := parser.ParseHCL(data, path)
		if diags.HasErrors() {
			return solver.Settings{}, fmt.Errorf("parse HCL settings: %s", diags.Error())
		}
		diags = gohcl.DecodeBody(file.Body, nil, &doc)
		if diags.HasErrors() {
			return solver.Settings{}, fmt.Errorf("decode HCL settings: %s", diags.Error())
		}
	}

	return doc.Resolve()
}

// Resolve converts a parsed Document into solver.Settings, validating
// and resolving action names along the way.
func (d Document) Resolve() (solver.Settings, error) {
	mask := simulator.FullActionMask()
	if len(d.Crafter.AllowedActions) > 0 {
		mask = 0
		for _, name := range d.Crafter.AllowedActions {
			action, ok := simulator.ParseAction(name)
			if !ok {
				return solver.Settings{}, fmt.Errorf("unknown action %q in allowed_actions", name)
			}
			mask = mask.Add(action)
		}
	}

	settings := solver.DefaultSettings(simulator.Settings{
		MaxCP:          d.Crafter.MaxCP,
		MaxDurability:  d.Recipe.MaxDurability,
		MaxProgress:    d.Recipe.MaxProgress,
		MaxQuality:     d.Recipe.MaxQuality,
		BaseProgress:   d.Recipe.BaseProgress,
		BaseQuality:    d.Recipe.BaseQuality,
		JobLevel:       d.Crafter.JobLevel,
		AllowedActions: mask,
	})

	if d.Solver != nil {
		settings.Simulator.Adversarial = d.Solver.Adversarial
		settings.BackloadProgress = d.Solver.BackloadProgress
		settings.AllowUnsoundBranchPruning = d.Solver.AllowUnsoundBranchPruning
		if d.Solver.AllowNonMaxQualitySolutions != nil {
			settings.AllowNonMaxQualitySolutions = *d.Solver.AllowNonMaxQualitySolutions
		}
		settings.MaxThreads = d.Solver.MaxThreads
	}

	if err := settings.Validate(); err != nil {
		return solver.Settings{}, fmt.Errorf("invalid settings: %w", err)
	}
	return settings, nil
}
