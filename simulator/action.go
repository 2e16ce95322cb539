// Package simulator implements the deterministic crafting state machine:
// a fixed catalog of actions transitions a SimulationState under a
// Condition and a Settings value, with a fixed integer arithmetic
// contract so replayed macros reproduce a solver's claimed score
// exactly.
package simulator

// Action is one atomic operation a crafter can take during a synthesis.
type Action uint8

const (
	BasicSynthesis Action = iota
	BasicTouch
	MasterMend
	Observe
	TricksOfTheTrade
	WasteNot
	Veneration
	StandardTouch
	GreatStrides
	Innovation
	WasteNot2
	ByregotsBlessing
	PreciseTouch
	MuscleMemory
	CarefulSynthesis
	Manipulation
	PrudentTouch
	AdvancedTouch
	Reflect
	PreparatoryTouch
	Groundwork
	DelicateSynthesis
	IntensiveSynthesis
	TrainedEye
	HeartAndSoul
	PrudentSynthesis
	TrainedFinesse
	RefinedTouch
	QuickInnovation
	ImmaculateMend
	TrainedPerfection

	numActions
)

var actionNames = [numActions]string{
	BasicSynthesis:       "BasicSynthesis",
	BasicTouch:           "BasicTouch",
	MasterMend:           "MasterMend",
	Observe:              "Observe",
	TricksOfTheTrade:     "TricksOfTheTrade",
	WasteNot:             "WasteNot",
	Veneration:           "Veneration",
	StandardTouch:        "StandardTouch",
	GreatStrides:         "GreatStrides",
	Innovation:           "Innovation",
	WasteNot2:            "WasteNot2",
	ByregotsBlessing:     "ByregotsBlessing",
	PreciseTouch:         "PreciseTouch",
	MuscleMemory:         "MuscleMemory",
	CarefulSynthesis:     "CarefulSynthesis",
	Manipulation:         "Manipulation",
	PrudentTouch:         "PrudentTouch",
	AdvancedTouch:        "AdvancedTouch",
	Reflect:              "Reflect",
	PreparatoryTouch:     "PreparatoryTouch",
	Groundwork:           "Groundwork",
	DelicateSynthesis:    "DelicateSynthesis",
	IntensiveSynthesis:   "IntensiveSynthesis",
	TrainedEye:           "TrainedEye",
	HeartAndSoul:         "HeartAndSoul",
	PrudentSynthesis:     "PrudentSynthesis",
	TrainedFinesse:       "TrainedFinesse",
	RefinedTouch:         "RefinedTouch",
	QuickInnovation:      "QuickInnovation",
	ImmaculateMend:       "ImmaculateMend",
	TrainedPerfection:    "TrainedPerfection",
}

func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return "Unknown"
}

// AllActions lists every action the simulator knows about, in a fixed
// enumeration order used by every solver for deterministic expansion.
func AllActions() []Action {
	out := make([]Action, numActions)
	for i := range out {
		out[i] = Action(i)
	}
	return out
}

// ParseAction resolves an action's name (as produced by Action.String)
// back to its value, for config files and CLI flags that name actions
// by their string form. Matching is exact, case-sensitive.
func ParseAction(name string) (Action, bool) {
	for _, a := range AllActions() {
		if actionNames[a] == name {
			return a, true
		}
	}
	return 0, false
}

// TimeCost is the number of "time units" (2 or 3) the action consumes on
// the in-game clock, used by the solver's duration_lower_bound component.
func (a Action) TimeCost() uint8 {
	switch a {
	case WasteNot, Veneration, GreatStrides, Innovation, WasteNot2, Manipulation:
		return 2
	default:
		return 3
	}
}
