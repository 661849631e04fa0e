package domain

import "time"

// Core domain models used internally. HTTP request/response shapes live in the
// http adapter; keep these decoupled where helpful.

// GroupType says whether a higher score is favorable (positiva) or
// unfavorable (negativa). It is catalog configuration, never computed.
type GroupType string

const (
	GroupPositive GroupType = "positiva"
	GroupNegative GroupType = "negativa"
)

// Valid reports whether t is one of the two catalog types.
func (t GroupType) Valid() bool {
	return t == GroupPositive || t == GroupNegative
}

// RiskCategory is the 3-level classification of a group score. NotAnswered is
// used when an assessment has no answers at all for a group.
type RiskCategory string

const (
	RiskLow         RiskCategory = "low"
	RiskMedium      RiskCategory = "medium"
	RiskHigh        RiskCategory = "high"
	RiskNotAnswered RiskCategory = "not_answered"
)

// TrafficColor is the dashboard color for a classified score.
type TrafficColor string

const (
	ColorGreen  TrafficColor = "green"
	ColorYellow TrafficColor = "yellow"
	ColorRed    TrafficColor = "red"
)

// Group is one themed cluster of questionnaire items scored together.
type Group struct {
	ID    int
	Name  string
	Type  GroupType
	Items []Item
}

// Item is a single question. Number is the position in the questionnaire
// (Q<Number>); ManagementText, when set, replaces Text for respondents in the
// management category.
type Item struct {
	ID             string
	Number         int
	Text           string
	ManagementText string
}

// DisplayText resolves the item wording for a respondent category.
func (i Item) DisplayText(respondentCategory string) string {
	if respondentCategory == "management" && i.ManagementText != "" {
		return i.ManagementText
	}
	return i.Text
}

// GroupMeta is the slice of a Group the scoring pipeline needs.
type GroupMeta struct {
	Name string
	Type GroupType
}

// ScaleValues is the fixed ordinal response scale ("Never".."Always").
var ScaleValues = []float64{0, 25, 50, 75, 100}

// ValidScaleValue reports whether v is one of the five allowed answers.
func ValidScaleValue(v float64) bool {
	for _, s := range ScaleValues {
		if v == s {
			return true
		}
	}
	return false
}

// Answer is one recorded response. At most one answer exists per
// (assessment, group, item); a later write overwrites the value.
type Answer struct {
	AssessmentID string
	GroupID      int
	ItemID       string
	Value        float64
}

// DomainResult is the derived score and classification for one group. It is
// recomputed from the current answers on demand; persisted copies are a cache.
type DomainResult struct {
	GroupID       int
	GroupName     string
	Type          GroupType
	Score         float64
	Category      RiskCategory
	Anomalous     bool
	AnomalyReason string
}

// GroupAggregate is an organization-level rollup of one group over all
// completed assessments.
type GroupAggregate struct {
	GroupID     int
	GroupName   string
	Type        GroupType
	MeanScore   float64
	Respondents int
	Category    RiskCategory
}

// AssessmentStatus is the lifecycle state of one respondent's assessment.
type AssessmentStatus string

const (
	StatusNotStarted  AssessmentStatus = "not_started"
	StatusStarted     AssessmentStatus = "started"
	StatusInProgress  AssessmentStatus = "in_progress"
	StatusCompleted   AssessmentStatus = "completed"
	StatusDeactivated AssessmentStatus = "deactivated"
)

// transitions holds the allowed forward edges of the assessment state machine.
// Completed is terminal; deactivation is an administrative action reachable
// from any non-completed state.
var transitions = map[AssessmentStatus][]AssessmentStatus{
	StatusNotStarted: {StatusStarted, StatusInProgress, StatusDeactivated},
	StatusStarted:    {StatusInProgress, StatusDeactivated},
	StatusInProgress: {StatusCompleted, StatusDeactivated},
}

// CanTransition reports whether from -> to is a legal status change.
func CanTransition(from, to AssessmentStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AnswerLocked reports whether the assessment no longer accepts answers.
func (s AssessmentStatus) AnswerLocked() bool {
	return s == StatusCompleted || s == StatusDeactivated
}

// Assessment is one employee's questionnaire run.
type Assessment struct {
	ID                 string
	OrganizationID     string
	EmployeeLabel      string
	RespondentCategory string // operational|management
	InviteToken        string
	Status             AssessmentStatus
	AnswerCount        int
	CreatedAt          time.Time
	FinalizedAt        *time.Time
}

// Organization owns assessments and receives aggregated reports.
type Organization struct {
	ID                string
	Name              string
	RegistrableDomain string
	CreatedAt         time.Time
}
