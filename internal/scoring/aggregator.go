package scoring

import (
	"math"

	"avalia/internal/domain"
)

// CorrectionPolicy is a per-group defensive correction applied after
// aggregation. Known data quirks are registered by group id so adding a new
// quirky group is a data change, not a code change.
type CorrectionPolicy int

const (
	CorrectNone CorrectionPolicy = iota
	// CorrectClampNegative clamps a negative aggregate to zero. Upstream
	// transformations for these groups can legitimately produce values
	// below zero.
	CorrectClampNegative
)

// corrections maps group id to its registered quirk.
var corrections = map[int]CorrectionPolicy{
	2:  CorrectClampNegative,
	12: CorrectClampNegative,
}

// Score reduces one group's answers to its numeric score: the arithmetic
// mean of the values, rounded half-up to two decimals. An empty answer list
// scores exactly 0; it is not an error. The caller decides which answers
// belong to the group.
func Score(groupID int, answers []domain.Answer) float64 {
	if len(answers) == 0 {
		return 0
	}
	sum := 0.0
	for _, a := range answers {
		sum += a.Value
	}
	score := round2(sum / float64(len(answers)))
	if corrections[groupID] == CorrectClampNegative && score < 0 {
		return 0
	}
	return score
}

// round2 rounds half-up to two decimal places.
func round2(x float64) float64 {
	return math.Floor(x*100+0.5) / 100
}
