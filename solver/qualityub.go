package solver

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/lox/craftsolver/pareto"
	"github.com/lox/craftsolver/simulator"
)

// qualityUbActions is the DP's search set: every action that can move
// progress or quality, the buffs that amplify them, and the Waste Not
// pair for durability economy. Master's Mend, Manipulation, Immaculate
// Mend and Trained Perfection are deliberately absent: the reduction
// below converts all durability restoration into CP up front, so
// searching the restore actions themselves would only re-spend CP the
// refund already granted.
var qualityUbActions = []simulator.Action{
	simulator.BasicSynthesis,
	simulator.MuscleMemory,
	simulator.CarefulSynthesis,
	simulator.Groundwork,
	simulator.DelicateSynthesis,
	simulator.IntensiveSynthesis,
	simulator.PrudentSynthesis,
	simulator.Veneration,
	simulator.BasicTouch,
	simulator.StandardTouch,
	simulator.AdvancedTouch,
	simulator.PreciseTouch,
	simulator.PrudentTouch,
	simulator.Reflect,
	simulator.PreparatoryTouch,
	simulator.TrainedFinesse,
	simulator.RefinedTouch,
	simulator.ByregotsBlessing,
	simulator.TrainedEye,
	simulator.Observe,
	simulator.Innovation,
	simulator.GreatStrides,
	simulator.WasteNot,
	simulator.WasteNot2,
	simulator.TricksOfTheTrade,
	simulator.HeartAndSoul,
	simulator.QuickInnovation,
}

// qualityKey is the reduced state QualityUbSolver memoizes on. CP
// carries the refunds computed in reduce; durability, Manipulation and
// Trained Perfection are gone entirely (they are the refunds), so the
// remaining fields are only the effects that change which actions are
// legal or how much they deal.
type qualityKey struct {
	cp              int16
	innerQuiet      uint8
	innovation      uint8
	greatStrides    uint8
	veneration      uint8
	wasteNot        uint8
	muscleMemory    uint8
	combo           simulator.Combo
	heartAndSoul    simulator.HeartAndSoulState
	quickInnovation bool
	qualityAllowed  bool
}

// QualityUbSolver computes an upper bound on the quality reachable from
// a given state while still finishing progress, under the optimistic
// assumption that durability is unlimited: the reduction converts the
// durability and Trained Perfection the crafter still has into extra
// CP, priced at the cheapest way the allowed actions can buy durability
// back.
type QualityUbSolver struct {
	settings             Settings
	mu                   sync.Mutex
	solved               map[qualityKey][]pareto.Value
	builder              *pareto.Builder
	durabilityCost       int16 // CP per 5 points of durability
	manipulationTickCost int16
}

// NewQualityUbSolver builds a QualityUbSolver for settings, pricing the
// durability refund from the cheapest available restore: Master's Mend
// per 30 flat, Manipulation per tick, Immaculate Mend per full restore.
//
// Like StepLbSolver, this search always assumes non-adversarial
// condition rolls: the reduction is already a relaxation (unlimited
// durability), so planning on the friendliest conditions keeps the
// result an optimistic, therefore sound, upper bound.
func NewQualityUbSolver(settings Settings) *QualityUbSolver {
	settings.Simulator.Adversarial = false
	allowed := settings.Simulator.AllowedActions

	durabilityCost := simulator.MasterMend.BaseCPCost() / 6
	if allowed.Has(simulator.Manipulation) {
		if c := simulator.Manipulation.BaseCPCost() / 8; c < durabilityCost {
			durabilityCost = c
		}
	}
	if allowed.Has(simulator.ImmaculateMend) {
		ticks := settings.Simulator.MaxDurability/5 - 1
		if ticks > 0 {
			if c := simulator.ImmaculateMend.BaseCPCost() / ticks; c < durabilityCost {
				durabilityCost = c
			}
		}
	}

	return &QualityUbSolver{
		settings:             settings,
		solved:               make(map[qualityKey][]pareto.Value),
		builder:              pareto.NewBuilder(settings.MaxProgress(), 2*settings.MaxQuality()),
		durabilityCost:       durabilityCost,
		manipulationTickCost: simulator.Manipulation.BaseCPCost() / 8,
	}
}

// reduce projects a full state into the DP key: every remaining
// Manipulation tick, durability point and unspent Trained Perfection
// is refunded into CP, so two states that differ only in how their
// durability economy is stored share one entry.
func (q *QualityUbSolver) reduce(state simulator.SimulationState) qualityKey {
	cp := state.CP
	cp += int16(state.Effects.Manipulation) * q.manipulationTickCost
	cp += state.Durability / 5 * q.durabilityCost
	if state.Effects.TrainedPerfection != simulator.TrainedPerfectionUnavailable &&
		q.settings.Simulator.AllowedActions.Has(simulator.TrainedPerfection) {
		cp += q.durabilityCost * 4
	}
	return qualityKey{
		cp:              cp,
		innerQuiet:      state.Effects.InnerQuiet,
		innovation:      state.Effects.Innovation,
		greatStrides:    state.Effects.GreatStrides,
		veneration:      state.Effects.Veneration,
		wasteNot:        state.Effects.WasteNot,
		muscleMemory:    state.Effects.MuscleMemory,
		combo:           state.Effects.Combo,
		heartAndSoul:    state.Effects.HeartAndSoul,
		quickInnovation: state.Effects.QuickInnovationUsed,
		qualityAllowed:  state.Effects.QualityActionsAllowed,
	}
}

// toState inverts reduce: a synthetic full-durability state whose
// reduction round-trips back to key.
func (q *QualityUbSolver) toState(key qualityKey) simulator.SimulationState {
	cp := key.cp - q.settings.Simulator.MaxDurability/5*q.durabilityCost
	return simulator.SimulationState{
		CP:         cp,
		Durability: q.settings.Simulator.MaxDurability,
		Effects: simulator.Effects{
			InnerQuiet:            key.innerQuiet,
			Innovation:            key.innovation,
			GreatStrides:          key.greatStrides,
			Veneration:            key.veneration,
			WasteNot:              key.wasteNot,
			MuscleMemory:          key.muscleMemory,
			Combo:                 key.combo,
			HeartAndSoul:          key.heartAndSoul,
			QuickInnovationUsed:   key.quickInnovation,
			QualityActionsAllowed: key.qualityAllowed,
			TrainedPerfection:     simulator.TrainedPerfectionUnavailable,
		},
	}
}

// QualityUpperBound returns an upper bound on the total quality
// reachable from state while still completing progress, clamped to
// twice the recipe's max quality. A return of 0 means no continuation
// reaches full progress at all within the relaxation.
//
// MacroSolver queries this concurrently from its batch worker pool, so
// the whole call runs under a single mutex per solver instance; bulk
// filling happens up front in Precompute, which parallelizes across
// reduced states instead.
func (q *QualityUbSolver) QualityUpperBound(state simulator.SimulationState) uint32 {
	q.mu.Lock()
	defer q.mu.Unlock()

	if state.Progress >= q.settings.MaxProgress() {
		return minUint32(state.Quality, 2*q.settings.MaxQuality())
	}
	requiredProgress := q.settings.MaxProgress() - state.Progress

	front := q.solveState(q.reduce(state))
	gain, ok := bestSecondAtLeast(front, requiredProgress)
	if !ok {
		return 0
	}
	return minUint32(state.Quality+gain, 2*q.settings.MaxQuality())
}

// Precompute discovers every reduced state reachable from the initial
// state and solves them bottom-up in parallel, wavefront by wavefront,
// so the search loop's queries mostly hit the finished map. States the
// search reaches that fall outside this closure are still solved
// sequentially on demand by QualityUpperBound.
func (q *QualityUbSolver) Precompute(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	seed := q.reduce(simulator.NewState(q.settings.Simulator))

	// Discover the reachable reduced space. Every transition strictly
	// decreases (heartAndSoul rank, quickInnovation rank, cp): all
	// searched actions either spend CP or durability, and the two free
	// ones (HeartAndSoul, QuickInnovation) burn their one-shot rank, so
	// grouping by that triple gives dependency-ordered wavefront levels.
	visited := map[qualityKey]bool{seed: true}
	queue := []qualityKey{seed}
	for len(queue) > 0 {
		key := queue[0]
		queue = queue[1:]
		base := q.toState(key)
		for _, action := range qualityUbActions {
			next, err := simulator.UseAction(q.settings.Simulator, base, action, simulator.Normal)
			if err != nil {
				continue
			}
			childKey := q.reduce(next)
			if next.Progress >= q.settings.MaxProgress() || childKey.cp < q.durabilityCost {
				continue
			}
			if !visited[childKey] {
				visited[childKey] = true
				queue = append(queue, childKey)
			}
		}
	}

	levels := make(map[qualityLevel][]qualityKey)
	for key := range visited {
		levels[levelOf(key)] = append(levels[levelOf(key)], key)
	}
	order := make([]qualityLevel, 0, len(levels))
	for lvl := range levels {
		order = append(order, lvl)
	}
	sort.Slice(order, func(i, j int) bool { return order[i].less(order[j]) })

	threads := q.settings.Threads()
	for _, lvl := range order {
		if err := ctx.Err(); err != nil {
			return newInterrupted()
		}
		keys := levels[lvl]
		fronts := make([][]pareto.Value, len(keys))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(threads)
		for i, key := range keys {
			i, key := i, key
			g.Go(func() error {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				builder := pareto.NewBuilder(q.settings.MaxProgress(), 2*q.settings.MaxQuality())
				fronts[i] = q.buildFront(builder, key, func(child qualityKey) []pareto.Value {
					return q.solved[child]
				})
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return newInterrupted()
		}
		for i, key := range keys {
			q.solved[key] = fronts[i]
		}
	}
	return nil
}

// qualityLevel orders reduced states so that every transition moves to
// a strictly earlier level; levels are solved earliest-first.
type qualityLevel struct {
	heartAndSoul    simulator.HeartAndSoulState
	quickInnovation bool
	cp              int16
}

func levelOf(key qualityKey) qualityLevel {
	return qualityLevel{heartAndSoul: key.heartAndSoul, quickInnovation: key.quickInnovation, cp: key.cp}
}

func (l qualityLevel) less(other qualityLevel) bool {
	if l.heartAndSoul != other.heartAndSoul {
		// Unavailable states have no one-shot left, so they sit at the
		// bottom of the dependency order; Available states at the top.
		return hnsRank(l.heartAndSoul) < hnsRank(other.heartAndSoul)
	}
	if l.quickInnovation != other.quickInnovation {
		return l.quickInnovation
	}
	return l.cp < other.cp
}

func hnsRank(s simulator.HeartAndSoulState) int {
	switch s {
	case simulator.HeartAndSoulUnavailable:
		return 0
	case simulator.HeartAndSoulActive:
		return 1
	default:
		return 2
	}
}

// solveState returns the memoized Pareto front for key, solving it (and
// any unsolved transitive children, depth-first) if needed. Transitions
// strictly decrease the wavefront level, so the recursion is acyclic.
func (q *QualityUbSolver) solveState(key qualityKey) []pareto.Value {
	if front, ok := q.solved[key]; ok {
		return front
	}
	front := q.buildFront(q.builder, key, q.solveState)
	q.solved[key] = front
	return front
}

// buildFront computes one reduced state's Pareto front of additional
// (progress, quality) reachable from it, given a way to obtain child
// fronts. The builder is cleared and used as scratch space.
func (q *QualityUbSolver) buildFront(builder *pareto.Builder, key qualityKey, child func(qualityKey) []pareto.Value) []pareto.Value {
	type expansion struct {
		progress uint32
		quality  uint32
		key      qualityKey
		leaf     bool
	}
	var expansions []expansion

	base := q.toState(key)
	for _, action := range qualityUbActions {
		next, err := simulator.UseAction(q.settings.Simulator, base, action, simulator.Normal)
		if err != nil {
			continue
		}
		childKey := q.reduce(next)
		switch {
		case next.Progress < q.settings.MaxProgress() && childKey.cp >= q.durabilityCost:
			expansions = append(expansions, expansion{progress: next.Progress, quality: next.Quality, key: childKey})
		case childKey.cp >= -q.durabilityCost && next.Progress > 0:
			// The reduced durability account may be overdrawn by one
			// final progress action, mirroring real play finishing on
			// its last point of durability.
			expansions = append(expansions, expansion{progress: next.Progress, quality: next.Quality, leaf: true})
		}
	}

	// Resolve children before touching the builder so the recursive
	// path leaves it untouched between nested solves.
	fronts := make([][]pareto.Value, len(expansions))
	for i, e := range expansions {
		if !e.leaf {
			fronts[i] = child(e.key)
		}
	}

	builder.Clear()
	builder.PushEmpty()
	for i, e := range expansions {
		if e.leaf {
			builder.Push(pareto.Value{First: e.progress, Second: e.quality})
		} else {
			builder.PushSlice(fronts[i])
			builder.Add(e.progress, e.quality)
		}
		builder.Merge()
	}
	return append([]pareto.Value(nil), builder.Peek()...)
}

// bestSecondAtLeast returns the largest Second value among entries whose
// First is at least required, exploiting that fronts are sorted
// descending by First and ascending by Second.
func bestSecondAtLeast(front []pareto.Value, required uint32) (uint32, bool) {
	found := false
	var best uint32
	for _, v := range front {
		if v.First < required {
			break
		}
		found = true
		best = v.Second
	}
	return best, found
}
