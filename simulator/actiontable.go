package simulator

// This file is the simulator's arithmetic contract: level requirements,
// CP costs, base durability costs and base progress/quality efficiencies
// for all 31 actions, matching the in-game values so a replayed macro
// reproduces a solver's claimed score exactly.

// LevelRequirement is the minimum crafter level an action can be used at.
func (a Action) LevelRequirement() uint8 {
	switch a {
	case BasicSynthesis:
		return 1
	case BasicTouch:
		return 5
	case MasterMend:
		return 7
	case Observe:
		return 13
	case TricksOfTheTrade:
		return 13
	case WasteNot:
		return 15
	case Veneration:
		return 15
	case StandardTouch:
		return 18
	case GreatStrides:
		return 21
	case Innovation:
		return 26
	case WasteNot2:
		return 47
	case ByregotsBlessing:
		return 50
	case PreciseTouch:
		return 53
	case MuscleMemory:
		return 54
	case CarefulSynthesis:
		return 62
	case Manipulation:
		return 65
	case PrudentTouch:
		return 66
	case AdvancedTouch:
		return 68
	case Reflect:
		return 69
	case PreparatoryTouch:
		return 71
	case Groundwork:
		return 72
	case DelicateSynthesis:
		return 76
	case IntensiveSynthesis:
		return 78
	case TrainedEye:
		return 80
	case HeartAndSoul:
		return 86
	case PrudentSynthesis:
		return 88
	case TrainedFinesse:
		return 90
	case RefinedTouch:
		return 92
	case QuickInnovation:
		return 96
	case ImmaculateMend:
		return 98
	case TrainedPerfection:
		return 100
	default:
		return 0
	}
}

// BaseCPCost is the action's CP cost before any combo discount, exposed
// for solvers that need the raw cost of a specific action (e.g. to
// compute a CP-refund constant from Master's Mend or Manipulation's
// cost) without going through a particular state.
func (a Action) BaseCPCost() int16 {
	return a.baseCPCost()
}

func (a Action) baseCPCost() int16 {
	switch a {
	case MasterMend:
		return 88
	case BasicTouch:
		return 18
	case Observe:
		return 7
	case TricksOfTheTrade:
		return 0
	case WasteNot:
		return 56
	case Veneration:
		return 18
	case StandardTouch:
		return 32
	case GreatStrides:
		return 32
	case Innovation:
		return 18
	case WasteNot2:
		return 98
	case ByregotsBlessing:
		return 24
	case PreciseTouch:
		return 18
	case MuscleMemory:
		return 6
	case CarefulSynthesis:
		return 7
	case Manipulation:
		return 96
	case PrudentTouch:
		return 25
	case AdvancedTouch:
		return 46
	case Reflect:
		return 6
	case PreparatoryTouch:
		return 40
	case Groundwork:
		return 18
	case DelicateSynthesis:
		return 32
	case IntensiveSynthesis:
		return 6
	case TrainedEye:
		return 250
	case PrudentSynthesis:
		return 18
	case TrainedFinesse:
		return 32
	case RefinedTouch:
		return 24
	case ImmaculateMend:
		return 112
	default:
		return 0
	}
}

// baseDurabilityCost is the action's durability cost before WasteNot
// halving or TrainedPerfection's full negation.
func (a Action) baseDurabilityCost() int16 {
	switch a {
	case BasicSynthesis, BasicTouch, StandardTouch, ByregotsBlessing, PreciseTouch,
		MuscleMemory, CarefulSynthesis, AdvancedTouch, Reflect, DelicateSynthesis,
		IntensiveSynthesis, TrainedEye:
		return 10
	case PrudentTouch, PrudentSynthesis:
		return 5
	case PreparatoryTouch, Groundwork:
		return 20
	default:
		return 0
	}
}

// tickEffects reports whether using this action advances every other
// effect's remaining-duration counter. HeartAndSoul and QuickInnovation
// are the two exceptions: using them is "free" with respect to the
// buffs already in flight.
func (a Action) tickEffects() bool {
	switch a {
	case HeartAndSoul, QuickInnovation:
		return false
	default:
		return true
	}
}

// dealsQuality reports whether the action can raise quality or exists
// only to set up quality gains; BackloadProgress locks this set out
// once any progress has been dealt.
func (a Action) dealsQuality(level uint8) bool {
	if a.baseQuality(level) > 0 {
		return true
	}
	switch a {
	case ByregotsBlessing, TrainedEye, Innovation, GreatStrides, QuickInnovation:
		return true
	default:
		return false
	}
}

// comboRequirement is the incoming Combo state an action requires to be
// legal at all (distinct from comboFor, which is the Combo state it
// leaves behind).
func (a Action) comboRequirement() Combo {
	switch a {
	case MuscleMemory, Reflect, TrainedEye:
		return ComboSynthesisBegin
	case RefinedTouch:
		return ComboBasicTouch
	default:
		return ComboNone
	}
}

// baseProgress returns the action's base progress efficiency (out of
// 100) at the given job level; several actions gain a flat efficiency
// bump at a level breakpoint.
func (a Action) baseProgress(level uint8) uint32 {
	switch a {
	case BasicSynthesis:
		if level >= 31 {
			return 120
		}
		return 100
	case MuscleMemory:
		return 300
	case CarefulSynthesis:
		if level >= 82 {
			return 180
		}
		return 150
	case Groundwork:
		if level >= 86 {
			return 360
		}
		return 300
	case DelicateSynthesis:
		if level >= 94 {
			return 150
		}
		return 100
	case IntensiveSynthesis:
		return 400
	case PrudentSynthesis:
		return 180
	default:
		return 0
	}
}

// baseQuality returns the action's base quality efficiency (out of 100)
// at the given job level; ByregotsBlessing's depends on Inner Quiet, so
// it is computed separately in simulate.go.
func (a Action) baseQuality(level uint8) uint32 {
	switch a {
	case BasicTouch:
		return 100
	case StandardTouch:
		return 125
	case PreciseTouch:
		return 150
	case PrudentTouch:
		return 100
	case AdvancedTouch:
		return 150
	case Reflect:
		return 300
	case PreparatoryTouch:
		return 200
	case DelicateSynthesis:
		return 100
	case TrainedFinesse:
		return 100
	case RefinedTouch:
		return 100
	default:
		return 0
	}
}
