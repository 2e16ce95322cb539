package solver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/craftsolver/simulator"
)

// scenario is one end-to-end recipe/crafter combination with a
// community-verified optimal rotation: the settings fields are
// (cp, durability, max_progress, max_quality, base_progress,
// base_quality, job_level) and the expectations are the capped
// quality, step count, and duration of the known optimum.
type scenario struct {
	name             string
	cp               int16
	durability       int16
	maxProgress      uint32
	maxQuality       uint32
	baseProgress     uint32
	baseQuality      uint32
	jobLevel         uint8
	backloadProgress bool
	adversarial      bool

	wantQuality  uint32
	wantSteps    int
	wantDuration int
	maxOverflow  uint32
}

func (s scenario) settings() Settings {
	mask := simulator.FullActionMask().
		Remove(simulator.TrainedEye).
		Remove(simulator.HeartAndSoul).
		Remove(simulator.QuickInnovation)

	return Settings{
		Simulator: simulator.Settings{
			MaxCP:            s.cp,
			MaxDurability:    s.durability,
			MaxProgress:      s.maxProgress,
			MaxQuality:       s.maxQuality,
			BaseProgress:     s.baseProgress,
			BaseQuality:      s.baseQuality,
			JobLevel:         s.jobLevel,
			AllowedActions:   mask,
			Adversarial:      s.adversarial,
			BackloadProgress: s.backloadProgress,
		},
		BackloadProgress: s.backloadProgress,
		// Several of these recipes top out below max quality, so the
		// max-quality-only cutoff must stay off for the expected
		// optima to be reachable at all.
		AllowNonMaxQualitySolutions: true,
	}
}

func TestMacroSolverScenarios(t *testing.T) {
	scenarios := []scenario{
		{
			name: "Rinascita 3700/3280", cp: 680, durability: 70,
			maxProgress: 5060, maxQuality: 12628, baseProgress: 229, baseQuality: 224, jobLevel: 90,
			wantQuality: 10623, wantSteps: 26, wantDuration: 70,
		},
		{
			name: "Pactmaker 3240/3130", cp: 600, durability: 70,
			maxProgress: 4300, maxQuality: 12800, baseProgress: 200, baseQuality: 215, jobLevel: 90,
			wantQuality: 8912, wantSteps: 21, wantDuration: 55,
		},
		{
			name: "Diadochos 4021/3660", cp: 640, durability: 70,
			maxProgress: 6600, maxQuality: 14040, baseProgress: 249, baseQuality: 247, jobLevel: 90,
			wantQuality: 9688, wantSteps: 25, wantDuration: 68,
		},
		{
			name: "Indagator 3858/4057", cp: 687, durability: 70,
			maxProgress: 5720, maxQuality: 12900, baseProgress: 239, baseQuality: 271, jobLevel: 90,
			wantQuality: 12793, wantSteps: 27, wantDuration: 72,
		},
		{
			name: "Rarefied Tacos 4785/4758", cp: 646, durability: 80,
			maxProgress: 6600, maxQuality: 12000, baseProgress: 256, baseQuality: 265, jobLevel: 100,
			wantQuality: 12000, wantSteps: 21, wantDuration: 56, maxOverflow: 123,
		},
		{
			name: "Ceviche no-quality", cp: 620, durability: 70,
			maxProgress: 8050, maxQuality: 0, baseProgress: 261, baseQuality: 266, jobLevel: 100,
			wantQuality: 0, wantSteps: 8, wantDuration: 22,
		},
		{
			name: "Rinascita backload", cp: 680, durability: 70,
			maxProgress: 5060, maxQuality: 12628, baseProgress: 229, baseQuality: 224, jobLevel: 90,
			backloadProgress: true,
			wantQuality:      10492, wantSteps: 25, wantDuration: 66,
		},
		{
			name: "Rarefied Tacos backload", cp: 646, durability: 80,
			maxProgress: 6600, maxQuality: 12000, baseProgress: 256, baseQuality: 265, jobLevel: 100,
			backloadProgress: true,
			wantQuality:      12000, wantSteps: 22, wantDuration: 58, maxOverflow: 123,
		},
		{
			name: "Stuffed Peppers adversarial", cp: 646, durability: 80,
			maxProgress: 6300, maxQuality: 11400, baseProgress: 289, baseQuality: 360, jobLevel: 100,
			adversarial: true,
			wantQuality: 11400, wantSteps: 16, wantDuration: 45,
		},
	}

	for _, sc := range scenarios {
		t.Run(sc.name, func(t *testing.T) {
			settings := sc.settings()

			m := NewMacroSolver(settings, nil, nil)
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			solution, err := m.Solve(ctx)
			require.NoError(t, err)

			replayed, err := simulator.StateFromMacro(settings.Simulator, solution.Macro)
			require.NoError(t, err)
			assert.Equal(t, solution.Final, replayed, "solution must replay to the claimed final state")

			assert.GreaterOrEqual(t, replayed.Progress, settings.MaxProgress(), "solution must complete progress")
			assert.LessOrEqual(t, replayed.Quality, settings.MaxQuality()+sc.maxOverflow, "quality must not exceed the allowed overflow")

			steps := 0
			duration := 0
			for _, combo := range solution.Macro {
				steps += int(combo.Steps())
				duration += int(combo.Duration())
			}
			assert.Equal(t, sc.wantSteps, steps, "step count")
			assert.Equal(t, sc.wantDuration, duration, "duration")
			assert.Equal(t, sc.wantQuality, replayed.Quality, "capped quality")
		})
	}
}

// TestBackloadNoQualityAfterProgress directly checks property 7: once a
// backloaded macro deals progress, no later step may deal quality.
func TestBackloadNoQualityAfterProgress(t *testing.T) {
	sc := scenario{
		cp: 680, durability: 70,
		maxProgress: 5060, maxQuality: 12628, baseProgress: 229, baseQuality: 224, jobLevel: 90,
		backloadProgress: true,
	}
	settings := sc.settings()

	m := NewMacroSolver(settings, nil, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	solution, err := m.Solve(ctx)
	require.NoError(t, err)

	state := simulator.NewState(settings.Simulator)
	progressDealt := false
	condition := simulator.Normal
	for _, combo := range solution.Macro {
		for _, a := range combo.Actions() {
			next, err := simulator.UseAction(settings.Simulator, state, a, condition)
			require.NoError(t, err)
			if next.Quality > state.Quality {
				assert.False(t, progressDealt, "quality action %s occurred after progress was dealt", a)
			}
			if next.Progress > state.Progress {
				progressDealt = true
			}
			state = next
		}
	}
}
