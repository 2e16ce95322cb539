package solver

// SearchScore ranks a search-queue node so the best-first expansion
// always pops the most promising frontier state next. It is compared
// lexicographically: a higher quality upper bound always wins; among
// equal bounds, fewer steps and less time remaining to a feasible finish
// wins; among those, the node that got here more cheaply wins.
type SearchScore struct {
	QualityUpperBound  uint32
	StepsLowerBound    uint8
	DurationLowerBound uint32
	CurrentSteps       uint8
	CurrentDuration    uint32
}

// WorstSearchScore is the identity element for score maximisation:
// every real score compares at least as good. Floors derived from a
// single known quantity (e.g. "this child already banked this much
// quality") start from it so the unknown fields cannot make the floor
// stronger than it is.
func WorstSearchScore() SearchScore {
	return SearchScore{
		QualityUpperBound:  0,
		StepsLowerBound:    ^uint8(0),
		DurationLowerBound: ^uint32(0),
		CurrentSteps:       ^uint8(0),
		CurrentDuration:    ^uint32(0),
	}
}

// Better reports whether s should be explored before other.
func (s SearchScore) Better(other SearchScore) bool {
	if s.QualityUpperBound != other.QualityUpperBound {
		return s.QualityUpperBound > other.QualityUpperBound
	}
	if s.StepsLowerBound != other.StepsLowerBound {
		return s.StepsLowerBound < other.StepsLowerBound
	}
	if s.DurationLowerBound != other.DurationLowerBound {
		return s.DurationLowerBound < other.DurationLowerBound
	}
	if s.CurrentSteps != other.CurrentSteps {
		return s.CurrentSteps < other.CurrentSteps
	}
	return s.CurrentDuration < other.CurrentDuration
}

// AtLeast reports whether s is as good as or better than other, the
// form used when comparing a candidate child's score against a running
// min_accepted_score cutoff.
func (s SearchScore) AtLeast(other SearchScore) bool {
	return !other.Better(s)
}

// solution ranks a completed macro against other completions.
type solution struct {
	score   SearchScore
	quality uint32
}

// better reports whether a is preferred over b when both are completed
// solutions: by score first, then by raw quality as the final
// tiebreaker (a higher quality upper bound can still tie at the
// resource-cost fields while the actual achieved quality differs).
func (a solution) better(b solution) bool {
	if a.score.Better(b.score) {
		return true
	}
	if b.score.Better(a.score) {
		return false
	}
	return a.quality > b.quality
}
