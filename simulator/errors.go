package simulator

import "fmt"

// ActionErrorKind enumerates why UseAction refused to apply an action.
type ActionErrorKind uint8

const (
	ErrNotEnoughCP ActionErrorKind = iota
	ErrNotEnoughDurability
	ErrLevelRequirement
	ErrComboRequirement
	ErrConditionRequirement
	ErrAlreadyActive
	ErrAlreadyUsed
	ErrEffectRequirement
	ErrInvalidState
	ErrActionNotAllowed
)

func (k ActionErrorKind) String() string {
	switch k {
	case ErrNotEnoughCP:
		return "not enough CP"
	case ErrNotEnoughDurability:
		return "not enough durability"
	case ErrLevelRequirement:
		return "level requirement not met"
	case ErrComboRequirement:
		return "combo requirement not met"
	case ErrConditionRequirement:
		return "condition requirement not met"
	case ErrAlreadyActive:
		return "effect already active"
	case ErrAlreadyUsed:
		return "action already used"
	case ErrEffectRequirement:
		return "effect requirement not met"
	case ErrInvalidState:
		return "invalid state"
	case ErrActionNotAllowed:
		return "action not allowed by settings"
	default:
		return "unknown action error"
	}
}

// ActionError reports why a specific action could not be applied to a
// specific state.
type ActionError struct {
	Action Action
	Kind   ActionErrorKind
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Action, e.Kind)
}

// NewActionError builds an ActionError, the sole constructor UseAction
// uses so every rejection path is typed the same way.
func NewActionError(a Action, kind ActionErrorKind) *ActionError {
	return &ActionError{Action: a, Kind: kind}
}
