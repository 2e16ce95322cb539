package solver

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/lox/craftsolver/pareto"
	"github.com/lox/craftsolver/simulator"
)

// stepLbKey is the state StepLbSolver memoizes on: everything that
// affects which actions are legal and how much progress/quality they
// deal, plus the steps budget being solved for. Unlike QualityUbSolver,
// durability is tracked exactly here: a steps budget gives no refund to
// spend on it, and mend actions cost steps like everything else.
type stepLbKey struct {
	cp              int16
	durability      int16
	innerQuiet      uint8
	innovation      uint8
	greatStrides    uint8
	veneration      uint8
	wasteNot        uint8
	manipulation    uint8
	muscleMemory    uint8
	combo           simulator.Combo
	trainedPerf     simulator.TrainedPerfectionState
	heartAndSoul    simulator.HeartAndSoulState
	quickInnovation bool
	qualityAllowed  bool
	stepsBudget     uint8
}

// StepLbSolver computes a lower bound on the number of additional steps
// needed to reach max quality from a state, used by MacroSolver to
// reject branches that cannot possibly finish within a competitive
// macro length even though their quality upper bound looks promising.
type StepLbSolver struct {
	settings                Settings
	mu                      sync.Mutex
	solved                  map[stepLbKey][]pareto.Value
	largestProgressIncrease uint32
}

// NewStepLbSolver builds a StepLbSolver for settings. The steps-lower-
// bound search always assumes non-adversarial condition rolls: it is a
// planning heuristic, not a guarantee, so using the friendliest
// conditions gives the most optimistic (and therefore safest to use as
// a lower bound) step count.
func NewStepLbSolver(settings Settings) *StepLbSolver {
	settings.Simulator.Adversarial = false
	return &StepLbSolver{
		settings:                settings,
		solved:                  make(map[stepLbKey][]pareto.Value),
		largestProgressIncrease: largestSingleActionProgressIncrease(settings.Simulator),
	}
}

// largestSingleActionProgressIncrease returns the most progress any
// single action can deal under settings, used to give MuscleMemory's
// shortcut (see qualityUpperBound) a safe, simple upper bound instead
// of tracking the effect through the reduced state space.
func largestSingleActionProgressIncrease(sim simulator.Settings) uint32 {
	state := simulator.NewState(sim)
	state.Effects.MuscleMemory = 5
	state.Effects.Veneration = 4
	var best uint32
	for _, action := range progressActions {
		next, err := simulator.UseAction(sim, state, action, simulator.Normal)
		if err != nil {
			continue
		}
		if next.Progress > best {
			best = next.Progress
		}
	}
	return best
}

// StepLowerBound returns the minimum number of additional steps needed
// to reach max quality from state, or 255 if it is impossible (for
// example because backloading has already locked quality actions out).
// The search starts at hint, the caller's best guess, typically carried
// down from the parent node's own bound, to avoid resolving from
// scratch at every level of the search tree.
//
// MacroSolver queries this concurrently from its batch worker pool, so
// the whole call (including the wavefront solve below) runs under a
// single mutex per solver instance.
func (s *StepLbSolver) StepLowerBound(state simulator.SimulationState, hint uint8) uint8 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state.Quality >= s.settings.MaxQuality() {
		return 0
	}
	if !state.Effects.QualityActionsAllowed {
		return 255
	}
	budget := hint
	if budget < 1 {
		budget = 1
	}
	for {
		if ub, ok := s.qualityUpperBound(state, budget); ok && ub >= s.settings.MaxQuality() {
			return budget
		}
		if budget == 255 {
			return 255
		}
		budget++
	}
}

func (s *StepLbSolver) qualityUpperBound(state simulator.SimulationState, stepBudget uint8) (uint32, bool) {
	requiredProgress := s.settings.MaxProgress() - state.Progress
	if state.Effects.MuscleMemory > 0 {
		// Assume MuscleMemory is used to its maximum potential and drop
		// the effect, shrinking the reduced space the budget DP visits.
		if s.largestProgressIncrease >= requiredProgress {
			requiredProgress = 0
		} else {
			requiredProgress -= s.largestProgressIncrease
		}
		state.Effects.MuscleMemory = 0
	}

	front := s.solveState(s.reduce(state, stepBudget))
	if gain, ok := bestSecondAtLeast(front, requiredProgress); ok {
		return state.Quality + gain, true
	}
	return 0, false
}

func (s *StepLbSolver) reduce(state simulator.SimulationState, stepsBudget uint8) stepLbKey {
	return stepLbKey{
		cp:              state.CP,
		durability:      state.Durability,
		innerQuiet:      state.Effects.InnerQuiet,
		innovation:      state.Effects.Innovation,
		greatStrides:    state.Effects.GreatStrides,
		veneration:      state.Effects.Veneration,
		wasteNot:        state.Effects.WasteNot,
		manipulation:    state.Effects.Manipulation,
		muscleMemory:    state.Effects.MuscleMemory,
		combo:           state.Effects.Combo,
		trainedPerf:     state.Effects.TrainedPerfection,
		heartAndSoul:    state.Effects.HeartAndSoul,
		quickInnovation: state.Effects.QuickInnovationUsed,
		qualityAllowed:  state.Effects.QualityActionsAllowed,
		stepsBudget:     stepsBudget,
	}
}

func (s *StepLbSolver) toState(key stepLbKey) simulator.SimulationState {
	return simulator.SimulationState{
		CP:         key.cp,
		Durability: key.durability,
		Effects: simulator.Effects{
			InnerQuiet:            key.innerQuiet,
			Innovation:            key.innovation,
			GreatStrides:          key.greatStrides,
			Veneration:            key.veneration,
			WasteNot:              key.wasteNot,
			Manipulation:          key.manipulation,
			MuscleMemory:          key.muscleMemory,
			Combo:                 key.combo,
			TrainedPerfection:     key.trainedPerf,
			HeartAndSoul:          key.heartAndSoul,
			QuickInnovationUsed:   key.quickInnovation,
			QualityActionsAllowed: key.qualityAllowed,
		},
	}
}

// Precompute warms the solver from the initial state at a minimal
// budget; the bulk of the reduced space is budget-dependent and filled
// on demand by the wavefront in solveState as the search deepens.
func (s *StepLbSolver) Precompute(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return newInterrupted()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.solveState(s.reduce(simulator.NewState(s.settings.Simulator), 1))
	return nil
}

// solveState solves a reduced state by the wavefront technique: BFS
// discovers every transitive child that still needs solving, grouped by
// remaining steps budget; a child's budget is always strictly smaller
// than its parent's, so solving budgets in increasing order guarantees
// every dependency is ready, and states within one budget level are
// independent and solved in parallel.
func (s *StepLbSolver) solveState(seed stepLbKey) []pareto.Value {
	if front, ok := s.solved[seed]; ok {
		return front
	}

	byBudget := make(map[uint8][]stepLbKey)
	visited := map[stepLbKey]bool{seed: true}
	queue := []stepLbKey{seed}
	for len(queue) > 0 {
		k := queue[0]
		queue = queue[1:]
		byBudget[k.stepsBudget] = append(byBudget[k.stepsBudget], k)

		parentState := s.toState(k)
		for _, combo := range simulator.FullSearchCombos() {
			steps := combo.Steps()
			if steps >= k.stepsBudget {
				continue
			}
			next, err := simulator.UseActionCombo(s.settings.Simulator, parentState, combo, simulator.Normal)
			if err != nil || next.IsFinal(s.settings.Simulator) {
				continue
			}
			childKey := s.reduce(next, k.stepsBudget-steps)
			if _, ok := s.solved[childKey]; ok {
				continue
			}
			if !visited[childKey] {
				visited[childKey] = true
				queue = append(queue, childKey)
			}
		}
	}

	budgets := make([]uint8, 0, len(byBudget))
	for b := range byBudget {
		budgets = append(budgets, b)
	}
	sort.Slice(budgets, func(i, j int) bool { return budgets[i] < budgets[j] })

	threads := s.settings.Threads()
	for _, b := range budgets {
		keys := byBudget[b]
		fronts := make([][]pareto.Value, len(keys))

		g := new(errgroup.Group)
		g.SetLimit(threads)
		for i, k := range keys {
			i, k := i, k
			g.Go(func() error {
				builder := pareto.NewBuilder(s.settings.MaxProgress(), s.settings.MaxQuality())
				fronts[i] = s.doSolveState(builder, k)
				return nil
			})
		}
		_ = g.Wait()
		for i, k := range keys {
			s.solved[k] = fronts[i]
		}
	}

	return s.solved[seed]
}

// doSolveState computes a single reduced state's front of additional
// (progress, quality) reachable within its steps budget, reading child
// fronts from the already-filled lower budget levels.
func (s *StepLbSolver) doSolveState(builder *pareto.Builder, key stepLbKey) []pareto.Value {
	state := s.toState(key)

	builder.Clear()
	builder.PushEmpty()
	for _, combo := range simulator.FullSearchCombos() {
		steps := combo.Steps()
		if steps > key.stepsBudget {
			continue
		}
		next, err := simulator.UseActionCombo(s.settings.Simulator, state, combo, simulator.Normal)
		if err != nil {
			continue
		}
		newBudget := key.stepsBudget - steps
		if newBudget > 0 && !next.IsFinal(s.settings.Simulator) {
			childFront := s.solved[s.reduce(next, newBudget)]
			builder.PushSlice(childFront)
			builder.Add(next.Progress, next.Quality)
			builder.Merge()
		} else if next.Progress > 0 {
			// Out of budget (or the craft ended): only a progress-
			// dealing last step contributes a usable outcome.
			builder.Push(pareto.Value{First: next.Progress, Second: next.Quality})
			builder.Merge()
		}
	}
	return append([]pareto.Value(nil), builder.Peek()...)
}
