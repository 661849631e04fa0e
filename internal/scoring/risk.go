package scoring

import "avalia/internal/domain"

// Numeric breakpoints are the same for both group types; only the color and
// wording invert. Determinism here is required for auditability of the
// downstream clinical reports.
const (
	highThreshold = 66
	lowThreshold  = 33
)

// Categorize buckets a score into low/medium/high. A negative score is
// always treated as a maximal risk signal and forced into the high bucket.
func Categorize(score float64) domain.RiskCategory {
	switch {
	case score < 0:
		return domain.RiskHigh
	case score > highThreshold:
		return domain.RiskHigh
	case score >= lowThreshold:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}

// Color maps a category to its traffic light. For negativa groups a high
// score is bad (red); for positiva groups a high score is good (green). The
// medium bucket is always yellow.
func Color(category domain.RiskCategory, typ domain.GroupType) domain.TrafficColor {
	if category == domain.RiskMedium {
		return domain.ColorYellow
	}
	if typ == domain.GroupPositive {
		switch category {
		case domain.RiskHigh:
			return domain.ColorGreen
		case domain.RiskLow:
			return domain.ColorRed
		}
	}
	switch category {
	case domain.RiskHigh:
		return domain.ColorRed
	case domain.RiskLow:
		return domain.ColorGreen
	}
	return domain.ColorYellow
}

// Label returns the display wording for a classified score.
func Label(category domain.RiskCategory, typ domain.GroupType) string {
	if typ == domain.GroupPositive {
		switch category {
		case domain.RiskHigh:
			return "excellent"
		case domain.RiskMedium:
			return "adequate"
		case domain.RiskLow:
			return "needs improvement"
		}
	} else {
		switch category {
		case domain.RiskHigh:
			return "attention needed"
		case domain.RiskMedium:
			return "monitor"
		case domain.RiskLow:
			return "adequate"
		}
	}
	return "not answered"
}
