package simulator

// UseAction applies a single action to state under settings and the
// given step Condition, returning the resulting state or the reason the
// action could not legally be taken. It is the one place the full
// arithmetic contract is implemented, so every solver oracle and every
// replayed macro goes through exactly this code path.
func UseAction(settings Settings, state SimulationState, action Action, condition Condition) (SimulationState, error) {
	if state.Progress >= settings.MaxProgress {
		return state, NewActionError(action, ErrInvalidState)
	}
	if state.Durability <= 0 {
		return state, NewActionError(action, ErrNotEnoughDurability)
	}
	if err := checkPrecondition(settings, state, action, condition); err != nil {
		return state, err
	}

	cpCost := action.cpCost(state)
	if state.CP < cpCost {
		return state, NewActionError(action, ErrNotEnoughCP)
	}

	durCost := action.durabilityCost(state, condition)

	next := state
	next.CP -= cpCost
	if action == TricksOfTheTrade {
		next.CP = clampInt16(next.CP+20, settings.MaxCP)
	}
	next.Durability = clampInt16(next.Durability-durCost, settings.MaxDurability)

	progressDelta := progressIncrease(settings, state.Effects, action)
	if action == Groundwork && state.Durability < durCost {
		progressDelta /= 2
	}

	// Under adversarial planning an unguarded quality action is assumed
	// to roll Poor; the gap up to the crafter's actual condition
	// (qualityDelta) is banked tentatively in the deficit slots below.
	var qualityGain, qualityDelta uint32
	switch {
	case action == TrainedEye:
		qualityGain = settings.MaxQuality
	case settings.Adversarial && !state.Effects.Guard:
		qualityGain = qualityIncrease(settings, state.Effects, action, Poor)
		qualityDelta = qualityIncrease(settings, state.Effects, action, condition) - qualityGain
	default:
		qualityGain = qualityIncrease(settings, state.Effects, action, condition)
	}
	if settings.Adversarial {
		next.UnreliableQuality[0] = satSubUint32(state.UnreliableQuality[0], qualityGain)
		next.UnreliableQuality[1] = satSubUint32(state.UnreliableQuality[1], qualityGain)
		next.Quality = settings.MaxQuality - maxUint32(next.UnreliableQuality[0], next.UnreliableQuality[1])
	} else if action == TrainedEye {
		next.Quality = settings.MaxQuality
	} else {
		next.Quality = state.Quality + qualityGain
	}
	next.Progress = state.Progress + progressDelta

	next.Effects.Combo = comboFor(action, state.Effects.Combo)

	if progressDelta > 0 {
		next.Effects.MuscleMemory = 0
		if settings.BackloadProgress {
			next.Effects.QualityActionsAllowed = false
		}
	}
	if qualityGain > 0 {
		next.Effects.GreatStrides = 0
		next.Effects.InnerQuiet = satAdd8(next.Effects.InnerQuiet, innerQuietBonus(action), 10)
	}

	// Resolve the adversarial guard window. A craft that ends on this
	// step freezes the bookkeeping instead: the ambiguity never
	// resolves, so the final quality keeps the worse deficit, which is
	// what forces the search to leave a margin of safety on the last
	// quality-dealing step.
	if settings.Adversarial && !next.IsFinal(settings) {
		guard := state.Effects.Guard
		switch {
		case (!guard && qualityGain == 0) || (guard && qualityGain != 0 && state.PrevWasGuarded):
			// Commit point: the last unguarded quality action's roll
			// can no longer be bargained over, keep the worse deficit.
			worst := maxUint32(next.UnreliableQuality[0], next.UnreliableQuality[1])
			next.UnreliableQuality[0] = worst
			next.UnreliableQuality[1] = worst
		case qualityGain != 0:
			// Append: slot 0 banks this action's condition-roll bonus,
			// slot 1 keeps allowing it to have rolled Poor.
			saved := next.UnreliableQuality[0]
			next.UnreliableQuality[0] = satSubUint32(maxUint32(next.UnreliableQuality[0], next.UnreliableQuality[1]), qualityDelta)
			next.UnreliableQuality[1] = maxUint32(saved, satSubUint32(next.UnreliableQuality[1], qualityDelta))
		}
		next.PrevWasGuarded = guard
		next.Effects.Guard = qualityGain != 0
		next.Quality = settings.MaxQuality - maxUint32(next.UnreliableQuality[0], next.UnreliableQuality[1])
	}

	if action.tickEffects() && !next.IsFinal(settings) {
		next.Effects.Innovation = tickDown(next.Effects.Innovation)
		next.Effects.Veneration = tickDown(next.Effects.Veneration)
		next.Effects.GreatStrides = tickDown(next.Effects.GreatStrides)
		next.Effects.WasteNot = tickDown(next.Effects.WasteNot)
		if action != Manipulation {
			if next.Effects.Manipulation > 0 {
				next.Durability = clampInt16(next.Durability+5, settings.MaxDurability)
			}
			next.Effects.Manipulation = tickDown(next.Effects.Manipulation)
		}
	}

	if state.Effects.TrainedPerfection == TrainedPerfectionActive && action.baseDurabilityCost() != 0 {
		next.Effects.TrainedPerfection = TrainedPerfectionUnavailable
	}
	if state.Effects.HeartAndSoul == HeartAndSoulActive && !condition.IsGoodOrExcellent() {
		switch action {
		case TricksOfTheTrade, PreciseTouch, IntensiveSynthesis:
			next.Effects.HeartAndSoul = HeartAndSoulUnavailable
		}
	}

	applyTransformPost(settings, &next, action)

	return next, nil
}

// UseActionCombo applies every action in combo in order, threading the
// resulting state through, and stops at the first rejected sub-action.
func UseActionCombo(settings Settings, state SimulationState, combo ActionCombo, condition Condition) (SimulationState, error) {
	for _, a := range combo.Actions() {
		var err error
		state, err = UseAction(settings, state, a, condition)
		if err != nil {
			return state, err
		}
	}
	return state, nil
}

func checkPrecondition(settings Settings, state SimulationState, action Action, condition Condition) error {
	if !settings.AllowedActions.Has(action) {
		return NewActionError(action, ErrActionNotAllowed)
	}
	if action.LevelRequirement() > settings.JobLevel {
		return NewActionError(action, ErrLevelRequirement)
	}
	if req := action.comboRequirement(); req != ComboNone && state.Effects.Combo != req {
		return NewActionError(action, ErrComboRequirement)
	}
	if !state.Effects.QualityActionsAllowed && action.dealsQuality(settings.JobLevel) {
		return NewActionError(action, ErrEffectRequirement)
	}

	switch action {
	case ByregotsBlessing:
		if state.Effects.InnerQuiet == 0 {
			return NewActionError(action, ErrEffectRequirement)
		}
	case PrudentTouch, PrudentSynthesis:
		if state.Effects.WasteNot > 0 {
			return NewActionError(action, ErrEffectRequirement)
		}
	case IntensiveSynthesis, PreciseTouch, TricksOfTheTrade:
		if !condition.IsGoodOrExcellent() && state.Effects.HeartAndSoul != HeartAndSoulActive {
			return NewActionError(action, ErrConditionRequirement)
		}
	case TrainedFinesse:
		if state.Effects.InnerQuiet != 10 {
			return NewActionError(action, ErrEffectRequirement)
		}
	case HeartAndSoul:
		if state.Effects.HeartAndSoul != HeartAndSoulAvailable {
			return NewActionError(action, ErrAlreadyUsed)
		}
	case QuickInnovation:
		if state.Effects.Innovation > 0 || state.Effects.QuickInnovationUsed {
			return NewActionError(action, ErrAlreadyActive)
		}
	case TrainedPerfection:
		if state.Effects.TrainedPerfection != TrainedPerfectionAvailable {
			return NewActionError(action, ErrAlreadyUsed)
		}
	}
	return nil
}

func (a Action) cpCost(state SimulationState) int16 {
	switch a {
	case StandardTouch:
		if state.Effects.Combo == ComboBasicTouch {
			return 18
		}
		return 32
	case AdvancedTouch:
		if state.Effects.Combo == ComboStandardTouch {
			return 18
		}
		return 46
	default:
		return a.baseCPCost()
	}
}

func (a Action) durabilityCost(state SimulationState, condition Condition) int16 {
	if state.Effects.TrainedPerfection == TrainedPerfectionActive {
		return 0
	}
	base := a.baseDurabilityCost()
	if state.Effects.WasteNot > 0 {
		base = (base + 1) / 2
	}
	return int16(uint32(base) * condition.DurabilityMultiplier() / 100)
}

func progressIncrease(settings Settings, effects Effects, action Action) uint32 {
	efficiency := action.baseProgress(settings.JobLevel)
	if efficiency == 0 {
		return 0
	}
	effectMod := uint32(100)
	if effects.MuscleMemory > 0 {
		effectMod += 100
	}
	if effects.Veneration > 0 {
		effectMod += 50
	}
	return uint32(uint64(settings.BaseProgress) * uint64(efficiency) * uint64(effectMod) / 10_000)
}

func qualityIncrease(settings Settings, effects Effects, action Action, condition Condition) uint32 {
	efficiency := action.baseQuality(settings.JobLevel)
	if action == ByregotsBlessing {
		efficiency = 100 + 20*uint32(effects.InnerQuiet)
	}
	if efficiency == 0 {
		return 0
	}
	conditionMod := condition.QualityMultiplier()
	effectMod := uint32(100)
	if effects.Innovation > 0 {
		effectMod += 50
	}
	if effects.GreatStrides > 0 {
		effectMod += 100
	}
	iqMod := 100 + 10*uint32(effects.InnerQuiet)
	delta := uint64(settings.BaseQuality) * uint64(efficiency) * uint64(conditionMod) *
		uint64(effectMod) * uint64(iqMod) / 100_000_000
	return uint32(delta)
}

// innerQuietBonus is the Inner Quiet gain a quality-dealing action grants:
// 2 stacks for the actions that "read" the touch combo from scratch, 1
// for everything else.
func innerQuietBonus(action Action) uint8 {
	switch action {
	case Reflect, PreciseTouch, PreparatoryTouch, RefinedTouch:
		return 2
	default:
		return 1
	}
}

func applyTransformPost(settings Settings, next *SimulationState, action Action) {
	switch action {
	case MuscleMemory:
		next.Effects.MuscleMemory = 5
	case GreatStrides:
		next.Effects.GreatStrides = 3
	case Veneration:
		next.Effects.Veneration = 4
	case Innovation:
		next.Effects.Innovation = 4
	case WasteNot:
		next.Effects.WasteNot = 4
	case WasteNot2:
		next.Effects.WasteNot = 8
	case Manipulation:
		next.Effects.Manipulation = 8
	case MasterMend:
		next.Durability = clampInt16(next.Durability+30, settings.MaxDurability)
	case ByregotsBlessing:
		next.Effects.InnerQuiet = 0
	case ImmaculateMend:
		next.Durability = settings.MaxDurability
	case TrainedPerfection:
		next.Effects.TrainedPerfection = TrainedPerfectionActive
	case HeartAndSoul:
		next.Effects.HeartAndSoul = HeartAndSoulActive
	case QuickInnovation:
		next.Effects.Innovation = 1
		next.Effects.QuickInnovationUsed = true
	}
}

func tickDown(v uint8) uint8 {
	if v > 0 {
		return v - 1
	}
	return 0
}

func satAdd8(v, amount, max uint8) uint8 {
	if int(v)+int(amount) > int(max) {
		return max
	}
	return v + amount
}

func maxUint32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

func satSubUint32(v, amount uint32) uint32 {
	if amount > v {
		return 0
	}
	return v - amount
}

func clampInt16(v, max int16) int16 {
	if v > max {
		return max
	}
	return v
}
