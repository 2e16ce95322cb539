package solver

import (
	"context"
	"sort"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/craftsolver/simulator"
)

// Progress reports coarse-grained search statistics so a caller can
// render a live view of a long-running solve.
type Progress struct {
	NodesExpanded uint64
	BestQuality   uint32
}

// Solution is a completed macro: the action sequence MacroSolver
// recommends, and the final state it reaches.
type Solution struct {
	Macro []simulator.ActionCombo
	Final simulator.SimulationState
}

// Actions flattens the solution's combos into the underlying action
// sequence, the form external consumers (macro text, replays) want.
func (s Solution) Actions() []simulator.Action {
	var out []simulator.Action
	for _, combo := range s.Macro {
		out = append(out, combo.Actions()...)
	}
	return out
}

// searchNode is one frontier entry in the best-first queue: the state
// it reached, the backtrack entry that records how (-1 for the root),
// and the score it was ranked by when pushed.
type searchNode struct {
	state       simulator.SimulationState
	backtrackID int32
	score       SearchScore
}

// backtrackEntry records how a node was produced so a completed
// solution can be reconstructed by walking parent links to the root.
type backtrackEntry struct {
	parent int32
	combo  simulator.ActionCombo
}

// MacroSolver performs a best-first branch-and-bound search over
// ActionCombos, using FinishSolver, QualityUbSolver and StepLbSolver as
// admissible pruning oracles so the search never has to fully expand
// branches that cannot beat the best solution found so far.
type MacroSolver struct {
	settings   Settings
	finish     *FinishSolver
	qualityUb  *QualityUbSolver
	stepLb     *StepLbSolver
	onProgress func(Progress)
	onSolution func(Solution)
	logger     *log.Logger
}

// NewMacroSolver builds a MacroSolver for settings. onProgress and
// onSolution may be nil. The BackloadProgress knob is pushed down into
// the simulator settings here so the oracles, the expansion loop and
// any replay all see the same rules.
func NewMacroSolver(settings Settings, onProgress func(Progress), onSolution func(Solution)) *MacroSolver {
	settings.Simulator.BackloadProgress = settings.BackloadProgress
	return &MacroSolver{
		settings:   settings,
		finish:     NewFinishSolver(settings),
		qualityUb:  NewQualityUbSolver(settings),
		stepLb:     NewStepLbSolver(settings),
		onProgress: onProgress,
		onSolution: onSolution,
		logger:     log.Default().With("component", "macro_solver"),
	}
}

// Solve searches for the best macro reaching the settings' targets,
// returning the best Solution found or a SolverException describing why
// none could be produced. Cancelling ctx stops the search at the next
// batch boundary with an Interrupted exception.
func (m *MacroSolver) Solve(ctx context.Context) (Solution, error) {
	if err := m.settings.Validate(); err != nil {
		return Solution{}, internalError(err.Error())
	}

	initial := simulator.NewState(m.settings.Simulator)

	if err := m.finish.Precompute(ctx); err != nil {
		return Solution{}, err
	}
	if !m.finish.CanFinish(initial) {
		return Solution{}, newNoSolution()
	}
	if err := m.qualityUb.Precompute(ctx); err != nil {
		return Solution{}, err
	}
	if err := m.stepLb.Precompute(ctx); err != nil {
		return Solution{}, err
	}
	m.logger.Debug("oracles precomputed", "threads", m.settings.Threads())

	best, err := m.doSolve(ctx, initial)
	if err != nil {
		return Solution{}, err
	}
	if best == nil {
		return Solution{}, newNoSolution()
	}
	return *best, nil
}

// completion is a candidate final state: its ranking solution score and
// the final combo that produced it; the parent's backtrack id supplies
// the rest of the macro.
type completion struct {
	solution
	combo simulator.ActionCombo
	final simulator.SimulationState
}

// workerResult is one batch worker's output: new frontier candidates,
// completed solutions, and the strongest score floor the worker proved
// on its own share of the batch.
type workerResult struct {
	children    []searchNode
	childCombos []simulator.ActionCombo
	completions []completion
	localMin    SearchScore
}

func (m *MacroSolver) doSolve(ctx context.Context, initial simulator.SimulationState) (*Solution, error) {
	backtrack := []backtrackEntry{}
	queue := []searchNode{{
		state:       initial,
		backtrackID: -1,
		score: SearchScore{
			QualityUpperBound:  m.settings.MaxQuality(),
			StepsLowerBound:    0,
			DurationLowerBound: 0,
			CurrentSteps:       0,
			CurrentDuration:    0,
		},
	}}

	var best *completion
	var bestMacro []simulator.ActionCombo
	minAccepted := WorstSearchScore()
	var nodesExpanded uint64

	threads := m.settings.Threads()

	for len(queue) > 0 {
		select {
		case <-ctx.Done():
			return nil, newInterrupted()
		default:
		}

		// Pop every node tied at the top score as one batch so the
		// parallel expansion below is deterministic in what it sees.
		sort.SliceStable(queue, func(i, j int) bool { return queue[i].score.Better(queue[j].score) })
		if !queue[0].score.AtLeast(minAccepted) {
			break
		}
		batchEnd := 1
		for batchEnd < len(queue) && queue[batchEnd].score == queue[0].score {
			batchEnd++
		}
		batch := queue[:batchEnd]
		queue = queue[batchEnd:]

		results := make([]workerResult, len(batch))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(threads)
		for i, node := range batch {
			i, node := i, node
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				results[i] = m.processNode(node, minAccepted)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, newInterrupted()
		}
		nodesExpanded += uint64(len(batch))

		// Reduce the workers' floors deterministically (max over all),
		// then drop queued nodes that can no longer compete.
		for _, r := range results {
			if r.localMin.Better(minAccepted) {
				minAccepted = r.localMin
			}
		}
		queue = dropBelowScore(queue, minAccepted)

		for ri, r := range results {
			parentID := batch[ri].backtrackID
			for _, c := range r.completions {
				c := c
				if best == nil || c.solution.better(best.solution) {
					best = &c
					bestMacro = reconstruct(backtrack, parentID, c.combo)
					if m.onSolution != nil {
						m.onSolution(Solution{Macro: bestMacro, Final: c.final})
					}
				}
			}
			for i, child := range r.children {
				if !child.score.AtLeast(minAccepted) {
					continue
				}
				backtrack = append(backtrack, backtrackEntry{parent: parentID, combo: r.childCombos[i]})
				child.backtrackID = int32(len(backtrack) - 1)
				queue = append(queue, child)
			}
		}

		if m.onProgress != nil {
			bq := uint32(0)
			if best != nil {
				bq = best.quality
			}
			m.onProgress(Progress{NodesExpanded: nodesExpanded, BestQuality: bq})
		}
	}

	if best == nil {
		return nil, nil
	}
	m.logger.Debug("search finished", "nodes_expanded", nodesExpanded, "quality", best.quality)
	return &Solution{Macro: bestMacro, Final: best.final}, nil
}

// processNode expands a single frontier node by every search combo,
// classifying each child as a completion or a new frontier candidate
// and raising the worker's local score floor as it goes. The caller
// assigns backtrack ids when it pushes the surviving children.
func (m *MacroSolver) processNode(node searchNode, minAccepted SearchScore) workerResult {
	result := workerResult{localMin: minAccepted}

	for _, combo := range simulator.FullSearchCombos() {
		child, err := simulator.UseActionCombo(m.settings.Simulator, node.state, combo, simulator.Normal)
		if err != nil {
			continue
		}

		currentSteps := node.score.CurrentSteps + combo.Steps()
		currentDuration := node.score.CurrentDuration + uint32(combo.Duration())

		if !child.IsFinal(m.settings.Simulator) {
			if !m.finish.CanFinish(child) {
				continue
			}
			if m.settings.AllowUnsoundBranchPruning && m.unsoundPrune(node.state, child) {
				continue
			}

			// Whatever quality this child has already banked is a floor
			// on the best achievable solution: some continuation of it
			// finishes the craft (CanFinish just said so).
			floor := WorstSearchScore()
			floor.QualityUpperBound = minUint32(child.Quality, m.settings.MaxQuality())
			if floor.Better(result.localMin) {
				result.localMin = floor
			}

			qualityUB := m.settings.MaxQuality()
			if child.Quality < m.settings.MaxQuality() {
				// The oracle bound can only tighten the parent's.
				qualityUB = minUint32(node.score.QualityUpperBound, m.qualityUb.QualityUpperBound(child))
			}
			if !m.settings.AllowNonMaxQualitySolutions && qualityUB < m.settings.MaxQuality() {
				continue
			}

			stepsLB := currentSteps
			if qualityUB >= m.settings.MaxQuality() {
				hint := uint8(0)
				if node.score.StepsLowerBound > currentSteps {
					hint = node.score.StepsLowerBound - currentSteps
				}
				stepsLB = satAddUint8(m.stepLb.StepLowerBound(child, hint), currentSteps)
			}

			childScore := SearchScore{
				QualityUpperBound:  qualityUB,
				StepsLowerBound:    stepsLB,
				DurationLowerBound: currentDuration + 3,
				CurrentSteps:       currentSteps,
				CurrentDuration:    currentDuration,
			}
			if childScore.AtLeast(result.localMin) {
				result.children = append(result.children, searchNode{state: child, score: childScore})
				result.childCombos = append(result.childCombos, combo)
			}
		} else if child.IsSuccess(m.settings.Simulator) {
			solutionScore := SearchScore{
				QualityUpperBound:  minUint32(child.Quality, m.settings.MaxQuality()),
				StepsLowerBound:    currentSteps,
				DurationLowerBound: currentDuration,
				CurrentSteps:       currentSteps,
				CurrentDuration:    currentDuration,
			}
			if solutionScore.Better(result.localMin) {
				result.localMin = solutionScore
			}
			result.completions = append(result.completions, completion{
				solution: solution{score: solutionScore, quality: child.Quality},
				combo:    combo,
				final:    child,
			})
		}
	}

	return result
}

// unsoundPrune is the extra cut-off permitted by
// AllowUnsoundBranchPruning: once a branch has banked max quality, any
// child that still spends resources on quality is discarded, even
// though in rare corner cases the discarded ordering could have been
// part of a shorter finish.
func (m *MacroSolver) unsoundPrune(parent, child simulator.SimulationState) bool {
	return parent.Quality >= m.settings.MaxQuality() && child.Quality > parent.Quality
}

// reconstruct walks backtrack parent links from the given entry to the
// root and returns the macro in application order, ending with last.
func reconstruct(backtrack []backtrackEntry, parent int32, last simulator.ActionCombo) []simulator.ActionCombo {
	var reversed []simulator.ActionCombo
	reversed = append(reversed, last)
	for id := parent; id >= 0; id = backtrack[id].parent {
		reversed = append(reversed, backtrack[id].combo)
	}
	out := make([]simulator.ActionCombo, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		out = append(out, reversed[i])
	}
	return out
}

func dropBelowScore(queue []searchNode, min SearchScore) []searchNode {
	out := queue[:0]
	for _, n := range queue {
		if n.score.AtLeast(min) {
			out = append(out, n)
		}
	}
	return out
}

func satAddUint8(a, b uint8) uint8 {
	if int(a)+int(b) > 255 {
		return 255
	}
	return a + b
}

func minUint32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}
