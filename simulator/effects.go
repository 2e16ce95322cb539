package simulator

// Effects is the full buff record carried between steps. It is a plain
// comparable struct rather than a bit-packed word: Go structs of small
// scalar fields are already valid, O(1)-comparable map keys, so manual
// bit-packing would buy nothing here.
type Effects struct {
	InnerQuiet          uint8 // saturates at 10
	Innovation          uint8 // ticks remaining, 0 = inactive
	Veneration          uint8
	WasteNot            uint8
	Manipulation        uint8
	GreatStrides        uint8
	MuscleMemory        uint8
	Combo               Combo
	TrainedPerfection   TrainedPerfectionState
	HeartAndSoul        HeartAndSoulState
	QuickInnovationUsed bool

	// QualityActionsAllowed starts true and is cleared the first time an
	// action deals progress under Settings.BackloadProgress; quality
	// actions are rejected while it is clear. It stays true for the
	// whole synthesis when backloading is off.
	QualityActionsAllowed bool

	// Guard is adversarial-only bookkeeping: it records whether the
	// action just taken dealt quality. UnreliableQuality substitutes the
	// worst-case condition for a quality action only when Guard is
	// clear, so two quality actions in a row never both take the hit.
	Guard bool
}

// TrainedPerfectionState tracks the single-use Trained Perfection buff:
// Unavailable once spent, Available before use, Active for the one step
// it negates durability loss on.
type TrainedPerfectionState uint8

const (
	TrainedPerfectionAvailable TrainedPerfectionState = iota
	TrainedPerfectionActive
	TrainedPerfectionUnavailable
)

// HeartAndSoulState mirrors TrainedPerfectionState's three-value shape
// for the single-use Heart and Soul buff (ignores the next Good/Excellent
// precondition once).
type HeartAndSoulState uint8

const (
	HeartAndSoulAvailable HeartAndSoulState = iota
	HeartAndSoulActive
	HeartAndSoulUnavailable
)
