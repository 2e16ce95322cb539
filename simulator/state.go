package simulator

// SimulationState is the full mutable state of an in-progress synthesis:
// remaining resources, accumulated progress/quality, and active buffs.
// It is a plain comparable struct so it can be used directly as a map
// key by the solver's memoization tables.
type SimulationState struct {
	CP           int16
	Durability   int16
	Progress     uint32
	Quality      uint32
	Effects      Effects

	// UnreliableQuality is adversarial-only: the quality still owed in
	// the worst case, tracked as two candidate deficits because the
	// most recent unguarded quality action's roll stays ambiguous for
	// one more action. Slot 0 assumes that action rolled the crafter's
	// condition (its bonus already banked), slot 1 allows it to have
	// rolled Poor; the ambiguity collapses to the larger deficit at the
	// next commit point. Quality always mirrors MaxQuality minus the
	// larger slot once settings.Adversarial is set; both slots start at
	// MaxQuality and are never read in non-adversarial mode.
	UnreliableQuality [2]uint32

	// PrevWasGuarded is adversarial-only: whether the action before the
	// most recent one dealt quality. A third consecutive quality action
	// is a commit point, and this is how UseAction detects it.
	PrevWasGuarded bool
}

// NewState returns the initial state of a synthesis under settings: full
// CP and durability, no progress or quality, and the SynthesisBegin
// combo available for MuscleMemory/Reflect/TrainedEye's opening move.
func NewState(settings Settings) SimulationState {
	return SimulationState{
		CP:         settings.MaxCP,
		Durability: settings.MaxDurability,
		Effects: Effects{
			Combo:                 ComboSynthesisBegin,
			QualityActionsAllowed: true,
		},
		UnreliableQuality: [2]uint32{settings.MaxQuality, settings.MaxQuality},
	}
}

// IsFinal reports whether the synthesis has ended, successfully or not:
// either progress has reached the target, or durability has run out.
func (s SimulationState) IsFinal(settings Settings) bool {
	return s.Progress >= settings.MaxProgress || s.Durability <= 0
}

// IsSuccess reports whether the synthesis ended by completing progress,
// as opposed to running out of durability first.
func (s SimulationState) IsSuccess(settings Settings) bool {
	return s.Progress >= settings.MaxProgress
}

// StateFromMacro replays a full macro (a sequence of ActionCombos) from
// the initial state under settings, assuming every step rolls Normal.
// Under settings.Adversarial, UseAction itself substitutes the
// worst-case condition per step via Effects.Guard; the condition this
// function passes in is the crafter's assumed roll, not the adversary's.
// It returns the final state, or the first ActionError encountered.
func StateFromMacro(settings Settings, macro []ActionCombo) (SimulationState, error) {
	state := NewState(settings)
	for _, combo := range macro {
		var err error
		state, err = UseActionCombo(settings, state, combo, Normal)
		if err != nil {
			return state, err
		}
	}
	return state, nil
}
