package simulator

// Combo tracks the short-lived "this action extends a bonus from the
// previous one" state: SynthesisBegin is set by StateFromMacro's initial
// state, BasicTouch/StandardTouch are set by the touch actions that grant
// a follow-up discount.
type Combo uint8

const (
	ComboNone Combo = iota
	ComboSynthesisBegin
	ComboBasicTouch
	ComboStandardTouch
)

func (c Combo) String() string {
	switch c {
	case ComboNone:
		return "None"
	case ComboSynthesisBegin:
		return "SynthesisBegin"
	case ComboBasicTouch:
		return "BasicTouch"
	case ComboStandardTouch:
		return "StandardTouch"
	default:
		return "Unknown"
	}
}

// comboFor returns the Combo state an action leaves behind for the next
// step, given the combo state it was itself used under.
func comboFor(action Action, prev Combo) Combo {
	switch action {
	case BasicTouch:
		return ComboBasicTouch
	case StandardTouch:
		if prev == ComboBasicTouch {
			return ComboStandardTouch
		}
		return ComboNone
	case Observe:
		return ComboStandardTouch
	default:
		return ComboNone
	}
}
