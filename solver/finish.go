package solver

import (
	"context"
	"sync"

	"github.com/lox/craftsolver/simulator"
)

// progressActions is the reduced action set FinishSolver explores: only
// actions that can ever move progress, or that set up a buff that
// benefits one. Quality-only actions never change whether a state can
// reach max progress, so leaving them out of the reachability search
// keeps it small and fast.
var progressActions = []simulator.Action{
	simulator.BasicSynthesis,
	simulator.CarefulSynthesis,
	simulator.Groundwork,
	simulator.DelicateSynthesis,
	simulator.IntensiveSynthesis,
	simulator.PrudentSynthesis,
	simulator.MuscleMemory,
	simulator.Veneration,
	simulator.WasteNot,
	simulator.WasteNot2,
	simulator.Manipulation,
	simulator.MasterMend,
	simulator.TricksOfTheTrade,
	simulator.ImmaculateMend,
	simulator.TrainedPerfection,
	simulator.HeartAndSoul,
}

// finishKey is the subset of SimulationState that affects whether max
// progress is reachable: resources, and the buffs that affect progress
// or resource regeneration. Quality, Inner Quiet, Innovation and Great
// Strides never matter here.
type finishKey struct {
	cp           int16
	durability   int16
	muscleMemory uint8
	veneration   uint8
	wasteNot     uint8
	manipulation uint8
	combo        simulator.Combo
	trainedPerf  simulator.TrainedPerfectionState
	heartAndSoul simulator.HeartAndSoulState
}

func finishKeyFrom(state simulator.SimulationState) finishKey {
	return finishKey{
		cp:           state.CP,
		durability:   state.Durability,
		muscleMemory: state.Effects.MuscleMemory,
		veneration:   state.Effects.Veneration,
		wasteNot:     state.Effects.WasteNot,
		manipulation: state.Effects.Manipulation,
		combo:        state.Effects.Combo,
		trainedPerf:  state.Effects.TrainedPerfection,
		heartAndSoul: state.Effects.HeartAndSoul,
	}
}

// FinishSolver answers, for a given in-progress state, whether the
// crafter can still reach max progress at all, ignoring quality
// entirely. It is queried on every candidate child in MacroSolver's
// expansion loop as a cheap admissibility filter before the more
// expensive quality/step bounds are computed.
type FinishSolver struct {
	settings Settings
	mu       sync.Mutex
	memo     map[finishKey]uint32
}

// NewFinishSolver builds a FinishSolver for settings.
func NewFinishSolver(settings Settings) *FinishSolver {
	return &FinishSolver{
		settings: settings,
		memo:     make(map[finishKey]uint32),
	}
}

// Precompute fills the reachability table from the initial state so the
// search loop's first batch doesn't pay for the full backwards sweep.
func (f *FinishSolver) Precompute(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return newInterrupted()
	}
	f.CanFinish(simulator.NewState(f.settings.Simulator))
	return nil
}

// CanFinish reports whether state can still reach the recipe's max
// progress using only progress-dealing actions and their supporting
// buffs.
//
// MacroSolver queries this concurrently from its batch worker pool, so
// the whole call (including the recursive DP below) runs under a
// single mutex per solver instance.
func (f *FinishSolver) CanFinish(state simulator.SimulationState) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if state.Progress >= f.settings.MaxProgress() {
		return true
	}
	remaining := f.settings.MaxProgress() - state.Progress
	return f.maxReachableProgress(finishKeyFrom(state)) >= remaining
}

// maxReachableProgress returns the most additional progress reachable
// from a zero-progress state matching key, memoized across queries.
func (f *FinishSolver) maxReachableProgress(key finishKey) uint32 {
	if v, ok := f.memo[key]; ok {
		return v
	}
	// Break cycles (e.g. repeated Manipulation/WasteNot refresh loops
	// that don't themselves add progress): while this key is being
	// computed, treat it as contributing nothing further.
	f.memo[key] = 0

	base := simulator.SimulationState{
		CP:         key.cp,
		Durability: key.durability,
		Effects: simulator.Effects{
			MuscleMemory:      key.muscleMemory,
			Veneration:        key.veneration,
			WasteNot:          key.wasteNot,
			Manipulation:      key.manipulation,
			Combo:             key.combo,
			TrainedPerfection: key.trainedPerf,
			HeartAndSoul:      key.heartAndSoul,
		},
	}

	var best uint32
	for _, action := range progressActions {
		next, err := simulator.UseAction(f.settings.Simulator, base, action, simulator.Normal)
		if err != nil {
			continue
		}
		if next.Durability <= 0 && next.Progress == base.Progress {
			continue
		}
		total := next.Progress + f.maxReachableProgress(finishKeyFrom(next))
		if total > best {
			best = total
		}
	}

	f.memo[key] = best
	return best
}
