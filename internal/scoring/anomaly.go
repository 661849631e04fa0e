package scoring

import "avalia/internal/domain"

// AnomalyResult reports whether a score looks suspicious. The detector is
// corrective only for out-of-range scores; the uniform-pattern flag is
// advisory and leaves the score untouched. Callers must surface the flag for
// manual review, never drop the result.
type AnomalyResult struct {
	IsAnomalous   bool
	AdjustedScore float64
	Reason        string
}

const (
	ReasonBelowRange     = "score below valid range"
	ReasonAboveRange     = "score above valid range"
	ReasonUniformPattern = "possible uniform response pattern"
)

// Detect sanity-checks a group score. Scores outside [0,100] are clamped; a
// score that exactly equals one of the canonical scale values looks like
// every item received the identical answer and is flagged without change.
func Detect(score float64, _ domain.GroupType) AnomalyResult {
	if score < 0 {
		return AnomalyResult{IsAnomalous: true, AdjustedScore: 0, Reason: ReasonBelowRange}
	}
	if score > 100 {
		return AnomalyResult{IsAnomalous: true, AdjustedScore: 100, Reason: ReasonAboveRange}
	}
	for _, v := range domain.ScaleValues {
		if score == v {
			return AnomalyResult{IsAnomalous: true, AdjustedScore: score, Reason: ReasonUniformPattern}
		}
	}
	return AnomalyResult{IsAnomalous: false, AdjustedScore: score}
}
