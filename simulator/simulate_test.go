package simulator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSettings() Settings {
	return Settings{
		MaxCP:         600,
		MaxDurability: 70,
		MaxProgress:   10000,
		MaxQuality:    20000,
		BaseProgress:  100,
		BaseQuality:   100,
		JobLevel:      90,
		AllowedActions: FullActionMask(),
	}
}

func TestBasicSynthesisProgress(t *testing.T) {
	settings := testSettings()
	state := NewState(settings)

	next, err := UseAction(settings, state, BasicSynthesis, Normal)
	require.NoError(t, err)
	assert.Equal(t, uint32(120), next.Progress) // level >= 31, efficiency 120%
	assert.Equal(t, settings.MaxDurability-10, next.Durability)
}

func TestStandardTouchComboDiscount(t *testing.T) {
	settings := testSettings()
	state := NewState(settings)

	state, err := UseAction(settings, state, BasicTouch, Normal)
	require.NoError(t, err)
	assert.Equal(t, ComboBasicTouch, state.Effects.Combo)

	before := state.CP
	state, err = UseAction(settings, state, StandardTouch, Normal)
	require.NoError(t, err)
	assert.Equal(t, before-18, state.CP, "StandardTouch should cost the discounted 18 CP after BasicTouch")
	assert.Equal(t, ComboStandardTouch, state.Effects.Combo,
		"chained StandardTouch sets up the AdvancedTouch discount")
}

func TestStandardTouchWithoutComboCostsMore(t *testing.T) {
	settings := testSettings()
	state := NewState(settings)

	before := state.CP
	next, err := UseAction(settings, state, StandardTouch, Normal)
	require.NoError(t, err)
	assert.Equal(t, before-32, next.CP)
}

func TestByregotsBlessingRequiresInnerQuiet(t *testing.T) {
	settings := testSettings()
	state := NewState(settings)

	_, err := UseAction(settings, state, ByregotsBlessing, Normal)
	require.Error(t, err)
	var actionErr *ActionError
	require.ErrorAs(t, err, &actionErr)
	assert.Equal(t, ErrEffectRequirement, actionErr.Kind)
}

func TestByregotsBlessingConsumesInnerQuiet(t *testing.T) {
	settings := testSettings()
	state := NewState(settings)

	state, err := UseAction(settings, state, BasicTouch, Normal)
	require.NoError(t, err)
	require.Equal(t, uint8(1), state.Effects.InnerQuiet)

	state, err = UseAction(settings, state, ByregotsBlessing, Normal)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), state.Effects.InnerQuiet)
}

func TestWasteNotHalvesDurabilityCost(t *testing.T) {
	settings := testSettings()
	state := NewState(settings)

	state, err := UseAction(settings, state, WasteNot, Normal)
	require.NoError(t, err)
	require.Equal(t, uint8(4), state.Effects.WasteNot)

	before := state.Durability
	state, err = UseAction(settings, state, BasicSynthesis, Normal)
	require.NoError(t, err)
	assert.Equal(t, before-5, state.Durability)
}

func TestPrudentTouchForbiddenUnderWasteNot(t *testing.T) {
	settings := testSettings()
	state := NewState(settings)

	state, err := UseAction(settings, state, WasteNot, Normal)
	require.NoError(t, err)

	_, err = UseAction(settings, state, PrudentTouch, Normal)
	require.Error(t, err)
}

func TestManipulationRestoresDurabilityNextStep(t *testing.T) {
	settings := testSettings()
	state := NewState(settings)

	state, err := UseAction(settings, state, Manipulation, Normal)
	require.NoError(t, err)
	require.Equal(t, uint8(8), state.Effects.Manipulation)

	before := state.Durability
	state, err = UseAction(settings, state, BasicSynthesis, Normal)
	require.NoError(t, err)
	// -10 from BasicSynthesis, +5 from Manipulation ticking in the same step.
	assert.Equal(t, before-5, state.Durability)
}

func TestTrainedPerfectionNegatesDurabilityOnce(t *testing.T) {
	settings := testSettings()
	settings.JobLevel = 100
	state := NewState(settings)

	state, err := UseAction(settings, state, TrainedPerfection, Normal)
	require.NoError(t, err)
	require.Equal(t, TrainedPerfectionActive, state.Effects.TrainedPerfection)

	before := state.Durability
	state, err = UseAction(settings, state, BasicSynthesis, Normal)
	require.NoError(t, err)
	assert.Equal(t, before, state.Durability)
	assert.Equal(t, TrainedPerfectionUnavailable, state.Effects.TrainedPerfection)

	// Spent: a second use is rejected.
	_, err = UseAction(settings, state, TrainedPerfection, Normal)
	require.Error(t, err)
}

func TestAdversarialQualityAssumesPoorWhenUnguarded(t *testing.T) {
	settings := testSettings()
	settings.Adversarial = true
	state := NewState(settings)

	// An unguarded quality action is assumed to roll Poor: half the 100
	// a Normal BasicTouch would bank. The other half is withheld, not
	// credited in the same step.
	state, err := UseAction(settings, state, BasicTouch, Normal)
	require.NoError(t, err)
	assert.Equal(t, uint32(50), state.Quality)
	assert.True(t, state.Effects.Guard)

	// A second touch in a row is guarded (two Poor rolls can't land
	// back to back) and banks its full 110 (Inner Quiet is 1 now); the
	// first touch's withheld bonus folds away at this append instead of
	// landing.
	state, err = UseAction(settings, state, BasicTouch, Normal)
	require.NoError(t, err)
	assert.Equal(t, uint32(160), state.Quality)
}

func TestAdversarialCommitDropsWithheldBonus(t *testing.T) {
	settings := testSettings()
	settings.Adversarial = true
	state := NewState(settings)

	state, err := UseAction(settings, state, BasicTouch, Normal)
	require.NoError(t, err)
	require.Equal(t, uint32(50), state.Quality)
	require.NotEqual(t, state.UnreliableQuality[0], state.UnreliableQuality[1],
		"the roll of an unguarded quality action must stay ambiguous for at least one more step")

	// Two non-quality actions in a row are a commit point: the
	// ambiguity resolves to the worse deficit and the withheld
	// Normal-roll bonus never lands.
	state, err = UseAction(settings, state, Observe, Normal)
	require.NoError(t, err)
	state, err = UseAction(settings, state, Observe, Normal)
	require.NoError(t, err)
	assert.Equal(t, uint32(50), state.Quality)
	assert.Equal(t, state.UnreliableQuality[0], state.UnreliableQuality[1])
}

func TestObserveSetsUpDiscountedAdvancedTouch(t *testing.T) {
	settings := testSettings()
	state := NewState(settings)

	state, err := UseAction(settings, state, Observe, Normal)
	require.NoError(t, err)
	assert.Equal(t, settings.MaxCP-7, state.CP)
	assert.Equal(t, ComboStandardTouch, state.Effects.Combo)

	before := state.CP
	state, err = UseAction(settings, state, AdvancedTouch, Normal)
	require.NoError(t, err)
	assert.Equal(t, before-18, state.CP, "AdvancedTouch should cost the discounted 18 CP after Observe")
}

func TestTricksOfTheTradeRequiresGoodCondition(t *testing.T) {
	settings := testSettings()
	state := NewState(settings)

	_, err := UseAction(settings, state, TricksOfTheTrade, Normal)
	require.Error(t, err)
	var actionErr *ActionError
	require.ErrorAs(t, err, &actionErr)
	assert.Equal(t, ErrConditionRequirement, actionErr.Kind)

	state.CP = 100
	next, err := UseAction(settings, state, TricksOfTheTrade, Good)
	require.NoError(t, err)
	assert.Equal(t, int16(120), next.CP)
}

func TestHeartAndSoulEnablesPreciseTouchOnce(t *testing.T) {
	settings := testSettings()
	settings.JobLevel = 100
	state := NewState(settings)

	state, err := UseAction(settings, state, HeartAndSoul, Normal)
	require.NoError(t, err)
	require.Equal(t, HeartAndSoulActive, state.Effects.HeartAndSoul)

	state, err = UseAction(settings, state, PreciseTouch, Normal)
	require.NoError(t, err)
	assert.Greater(t, state.Quality, uint32(0))
	assert.Equal(t, HeartAndSoulUnavailable, state.Effects.HeartAndSoul,
		"using the enabled action on a Normal step must consume Heart and Soul")

	_, err = UseAction(settings, state, PreciseTouch, Normal)
	require.Error(t, err)
}

func TestTrainedPerfectionSurvivesZeroDurabilityActions(t *testing.T) {
	settings := testSettings()
	settings.JobLevel = 100
	state := NewState(settings)

	state, err := UseAction(settings, state, TrainedPerfection, Normal)
	require.NoError(t, err)

	state, err = UseAction(settings, state, Veneration, Normal)
	require.NoError(t, err)
	assert.Equal(t, TrainedPerfectionActive, state.Effects.TrainedPerfection,
		"an action without a durability cost must not consume Trained Perfection")

	state, err = UseAction(settings, state, Groundwork, Normal)
	require.NoError(t, err)
	assert.Equal(t, TrainedPerfectionUnavailable, state.Effects.TrainedPerfection)
}

func TestBackloadProgressLocksOutQualityActions(t *testing.T) {
	settings := testSettings()
	settings.BackloadProgress = true
	state := NewState(settings)

	state, err := UseAction(settings, state, BasicTouch, Normal)
	require.NoError(t, err, "quality actions are fine before any progress is dealt")

	state, err = UseAction(settings, state, BasicSynthesis, Normal)
	require.NoError(t, err)
	require.False(t, state.Effects.QualityActionsAllowed)

	_, err = UseAction(settings, state, StandardTouch, Normal)
	require.Error(t, err)
	var actionErr *ActionError
	require.ErrorAs(t, err, &actionErr)
	assert.Equal(t, ErrEffectRequirement, actionErr.Kind)

	_, err = UseAction(settings, state, CarefulSynthesis, Normal)
	require.NoError(t, err, "progress actions stay legal after the lock")
}

func TestLevelRequirementRejected(t *testing.T) {
	settings := testSettings()
	settings.JobLevel = 10
	state := NewState(settings)

	_, err := UseAction(settings, state, ByregotsBlessing, Normal)
	require.Error(t, err)
	var actionErr *ActionError
	require.ErrorAs(t, err, &actionErr)
	assert.Equal(t, ErrLevelRequirement, actionErr.Kind)
}

func TestActionNotAllowedByMask(t *testing.T) {
	settings := testSettings()
	settings.AllowedActions = settings.AllowedActions.Remove(Manipulation)
	state := NewState(settings)

	_, err := UseAction(settings, state, Manipulation, Normal)
	require.Error(t, err)
	var actionErr *ActionError
	require.ErrorAs(t, err, &actionErr)
	assert.Equal(t, ErrActionNotAllowed, actionErr.Kind)
}

func TestStateFromMacroReplaysDeterministically(t *testing.T) {
	settings := testSettings()
	macro := []ActionCombo{
		Single(MuscleMemory),
		Single(Manipulation),
		Single(Veneration),
		Single(Groundwork),
		Single(BasicTouch),
		Single(StandardTouch),
	}

	final, err := StateFromMacro(settings, macro)
	require.NoError(t, err)
	assert.Greater(t, final.Progress, uint32(0))
	assert.Greater(t, final.Quality, uint32(0))

	again, err := StateFromMacro(settings, macro)
	require.NoError(t, err)
	assert.Equal(t, final, again)
}

func TestIsFinal(t *testing.T) {
	settings := testSettings()
	state := NewState(settings)
	assert.False(t, state.IsFinal(settings))

	state.Progress = settings.MaxProgress
	assert.True(t, state.IsFinal(settings))
	assert.True(t, state.IsSuccess(settings))

	state2 := NewState(settings)
	state2.Durability = 0
	assert.True(t, state2.IsFinal(settings))
	assert.False(t, state2.IsSuccess(settings))
}
