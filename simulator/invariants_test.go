package simulator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestInnerQuietSaturatesAtTen exercises property 1: repeated quality
// actions cannot push Inner Quiet past its cap of 10.
func TestInnerQuietSaturatesAtTen(t *testing.T) {
	settings := testSettings()
	settings.MaxCP = 2000
	settings.MaxDurability = 200
	state := NewState(settings)

	for i := 0; i < 12; i++ {
		var err error
		state, err = UseAction(settings, state, BasicTouch, Normal)
		require.NoError(t, err)
		require.LessOrEqual(t, state.Effects.InnerQuiet, uint8(10))
	}
	assert.Equal(t, uint8(10), state.Effects.InnerQuiet)
}

// TestManipulationDoesNotRestoreOnSettingStep exercises property 1:
// Manipulation's durability restore is skipped on the action that
// (re)sets it, only applying on later ticking steps.
func TestManipulationDoesNotRestoreOnSettingStep(t *testing.T) {
	settings := testSettings()
	state := NewState(settings)
	state.Durability = 40

	before := state.Durability
	state, err := UseAction(settings, state, Manipulation, Normal)
	require.NoError(t, err)
	assert.Equal(t, before, state.Durability, "manipulation must not restore durability on the step it is set")
	assert.Equal(t, uint8(8), state.Effects.Manipulation)
}

// TestManipulationRestoresOnFinalTick exercises property 1 at the
// boundary the happy-path test doesn't reach: the restore must use the
// pre-tick counter, so the step that ticks Manipulation from 1 to 0
// still grants its +5 durability before the buff expires.
func TestManipulationRestoresOnFinalTick(t *testing.T) {
	settings := testSettings()
	state := NewState(settings)
	state.Durability = 40
	state.Effects.Manipulation = 1

	before := state.Durability
	state, err := UseAction(settings, state, BasicSynthesis, Normal)
	require.NoError(t, err)

	// -10 from BasicSynthesis, +5 from Manipulation's last tick, then
	// the counter expires to 0.
	assert.Equal(t, before-10+5, state.Durability)
	assert.Equal(t, uint8(0), state.Effects.Manipulation)
}

// TestGroundworkHalvesEfficiencyWhenDurabilityInsufficient exercises
// property 1: Groundwork's progress is halved iff current durability is
// strictly less than its durability cost.
func TestGroundworkHalvesEfficiencyWhenDurabilityInsufficient(t *testing.T) {
	settings := testSettings()

	full := NewState(settings)
	fullResult, err := UseAction(settings, full, Groundwork, Normal)
	require.NoError(t, err)

	low := NewState(settings)
	low.Durability = 5 // below Groundwork's 20-durability cost
	lowResult, err := UseAction(settings, low, Groundwork, Normal)
	require.NoError(t, err)

	assert.Equal(t, fullResult.Progress/2, lowResult.Progress,
		"groundwork progress must halve when durability is below its cost")
}
