package simulator

// ActionCombo is the unit the search actually branches on: either a
// single action, or Observe immediately followed by the action it sets
// up. Folding the pair into one search step lets the outer solver reach
// the discounted follow-up in a single move, since a lone Observe never
// improves progress or quality by itself. FullSearchCombos still offers
// a lone Observe alongside the pair.
type ActionCombo struct {
	lead   Action
	follow *Action
}

// Single wraps a lone action.
func Single(a Action) ActionCombo {
	return ActionCombo{lead: a}
}

// ObserveThen wraps Observe followed by a.
func ObserveThen(a Action) ActionCombo {
	return ActionCombo{lead: Observe, follow: &a}
}

// Actions returns the one or two underlying actions in application order.
func (c ActionCombo) Actions() []Action {
	if c.follow == nil {
		return []Action{c.lead}
	}
	return []Action{c.lead, *c.follow}
}

// Steps is the number of simulator steps this combo counts as.
func (c ActionCombo) Steps() uint8 {
	if c.follow == nil {
		return 1
	}
	return 2
}

// Duration is the total time cost of the combo's actions.
func (c ActionCombo) Duration() uint8 {
	d := c.lead.TimeCost()
	if c.follow != nil {
		d += c.follow.TimeCost()
	}
	return d
}

func (c ActionCombo) String() string {
	if c.follow == nil {
		return c.lead.String()
	}
	return c.lead.String() + "+" + c.follow.String()
}

// FullSearchCombos is the fixed set of ActionCombos the solvers expand
// from every state: every action on its own, plus Observe paired with
// AdvancedTouch, the one action whose CP cost drops (46 -> 18) under the
// ComboStandardTouch state Observe grants. This is the "Focused Touch"
// play: the only reason to spend a step on Observe at all. Kept
// intentionally small: most combo pruning falls out of
// comboFor/comboRequirement instead.
func FullSearchCombos() []ActionCombo {
	combos := make([]ActionCombo, 0, numActions+1)
	for _, a := range AllActions() {
		if a == Observe {
			continue
		}
		combos = append(combos, Single(a))
	}
	combos = append(combos, Single(Observe))
	combos = append(combos, ObserveThen(AdvancedTouch))
	return combos
}
