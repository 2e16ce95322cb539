package solver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lox/craftsolver/internal/randutil"
	"github.com/lox/craftsolver/simulator"
)

func monotonicityTestSettings() Settings {
	return Settings{
		Simulator: simulator.Settings{
			MaxCP:          640,
			MaxDurability:  70,
			MaxProgress:    5060,
			MaxQuality:     12628,
			BaseProgress:   229,
			BaseQuality:    224,
			JobLevel:       90,
			AllowedActions: simulator.FullActionMask().Remove(simulator.TrainedEye).Remove(simulator.HeartAndSoul).Remove(simulator.QuickInnovation),
		},
	}
}

// randomWalk takes up to n random legal steps from the initial state,
// returning the sequence of (parent, action, child) transitions actually
// taken, skipping any action illegal in the current state.
func randomWalk(settings simulator.Settings, seed int64, n int) []struct {
	parent, child simulator.SimulationState
	action        simulator.Action
} {
	rng := randutil.New(seed)
	actions := simulator.AllActions()

	state := simulator.NewState(settings)
	var steps []struct {
		parent, child simulator.SimulationState
		action        simulator.Action
	}
	for len(steps) < n {
		if state.IsFinal(settings) {
			break
		}
		action := actions[rng.IntN(len(actions))]
		next, err := simulator.UseAction(settings, state, action, simulator.Normal)
		if err != nil {
			continue
		}
		steps = append(steps, struct {
			parent, child simulator.SimulationState
			action        simulator.Action
		}{parent: state, child: next, action: action})
		state = next
	}
	return steps
}

// TestQualityUpperBoundMonotonicity fuzzes property 4: for any legal
// transition s -> s', QualityUb(s) >= QualityUb(s'). Each seed takes one
// random legal action from the initial state and checks that transition.
func TestQualityUpperBoundMonotonicity(t *testing.T) {
	settings := monotonicityTestSettings()
	qub := NewQualityUbSolver(settings)

	const trials = 10000
	for seed := int64(0); seed < trials; seed++ {
		steps := randomWalk(settings.Simulator, seed, 1)
		for _, step := range steps {
			parentUB := qub.QualityUpperBound(step.parent)
			childUB := qub.QualityUpperBound(step.child)
			require.GreaterOrEqualf(t, parentUB, childUB,
				"seed %d: action %s: QualityUb(parent)=%d < QualityUb(child)=%d", seed, step.action, parentUB, childUB)
		}
	}
}

// TestStepLowerBoundMonotonicity fuzzes property 5: for any legal
// transition, StepLb(s) <= StepLb(s') + action.steps(). Each seed takes
// one random legal action from the initial state and checks that
// transition.
//
// Adversarial settings are excluded: UnreliableQuality's worst-case
// rounding is not monotone step to step, so only the non-adversarial
// property is asserted.
func TestStepLowerBoundMonotonicity(t *testing.T) {
	settings := monotonicityTestSettings()
	steplb := NewStepLbSolver(settings)

	const trials = 500
	for seed := int64(0); seed < trials; seed++ {
		steps := randomWalk(settings.Simulator, seed, 1)
		for _, step := range steps {
			parentLB := steplb.StepLowerBound(step.parent, 0)
			childLB := steplb.StepLowerBound(step.child, 0)
			if parentLB == 255 || childLB == 255 {
				continue
			}
			require.LessOrEqualf(t, parentLB, childLB+1,
				"seed %d: action %s: StepLb(parent)=%d > StepLb(child)=%d+1", seed, step.action, parentLB, childLB)
		}
	}
}
