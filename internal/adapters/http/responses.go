package httpadapter

import (
	"encoding/json"
	"time"

	"avalia/internal/cascade"
	"avalia/internal/domain"
	"avalia/internal/scoring"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type organizationResponse struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	RegistrableDomain string    `json:"registrable_domain"`
	CreatedAt         time.Time `json:"created_at"`
}

func fromOrganization(o domain.Organization) organizationResponse {
	return organizationResponse{
		ID:                o.ID,
		Name:              o.Name,
		RegistrableDomain: o.RegistrableDomain,
		CreatedAt:         o.CreatedAt,
	}
}

type assessmentResponse struct {
	InviteToken        string     `json:"invite_token"`
	OrganizationID     string     `json:"organization_id"`
	EmployeeLabel      string     `json:"employee_label"`
	RespondentCategory string     `json:"respondent_category"`
	Status             string     `json:"status"`
	AnswerCount        int        `json:"answer_count"`
	FinalizedAt        *time.Time `json:"finalized_at,omitempty"`
}

func fromAssessment(a domain.Assessment) assessmentResponse {
	return assessmentResponse{
		InviteToken:        a.InviteToken,
		OrganizationID:     a.OrganizationID,
		EmployeeLabel:      a.EmployeeLabel,
		RespondentCategory: a.RespondentCategory,
		Status:             string(a.Status),
		AnswerCount:        a.AnswerCount,
		FinalizedAt:        a.FinalizedAt,
	}
}

type visibilityResponse struct {
	Visible        []string `json:"visible"`
	Core           []string `json:"core"`
	Behavioral     []string `json:"behavioral"`
	Financial      []string `json:"financial"`
	TotalVisible   int      `json:"total_visible"`
	TotalPossible  int      `json:"total_possible"`
	RulesEvaluated int      `json:"rules_evaluated"`
}

func fromVisibility(v cascade.Visibility) visibilityResponse {
	return visibilityResponse{
		Visible:        v.Visible,
		Core:           v.Core,
		Behavioral:     v.Behavioral,
		Financial:      v.Financial,
		TotalVisible:   v.TotalVisible,
		TotalPossible:  v.TotalPossible,
		RulesEvaluated: v.RulesEvaluated,
	}
}

type domainResultResponse struct {
	GroupID       int     `json:"group_id"`
	GroupName     string  `json:"group_name"`
	Type          string  `json:"type"`
	Score         float64 `json:"score"`
	Category      string  `json:"category"`
	Color         string  `json:"color,omitempty"`
	Label         string  `json:"label"`
	Anomalous     bool    `json:"anomalous,omitempty"`
	AnomalyReason string  `json:"anomaly_reason,omitempty"`
}

func fromResults(results []domain.DomainResult) []domainResultResponse {
	out := make([]domainResultResponse, 0, len(results))
	for _, r := range results {
		resp := domainResultResponse{
			GroupID:       r.GroupID,
			GroupName:     r.GroupName,
			Type:          string(r.Type),
			Score:         r.Score,
			Category:      string(r.Category),
			Label:         scoring.Label(r.Category, r.Type),
			Anomalous:     r.Anomalous,
			AnomalyReason: r.AnomalyReason,
		}
		if r.Category != domain.RiskNotAnswered {
			resp.Color = string(scoring.Color(r.Category, r.Type))
		}
		out = append(out, resp)
	}
	return out
}

type groupAggregateResponse struct {
	GroupID     int     `json:"group_id"`
	GroupName   string  `json:"group_name"`
	Type        string  `json:"type"`
	MeanScore   float64 `json:"mean_score"`
	Respondents int     `json:"respondents"`
	Category    string  `json:"category"`
	Color       string  `json:"color,omitempty"`
	Label       string  `json:"label"`
}

func fromAggregates(aggs []domain.GroupAggregate) []groupAggregateResponse {
	out := make([]groupAggregateResponse, 0, len(aggs))
	for _, a := range aggs {
		resp := groupAggregateResponse{
			GroupID:     a.GroupID,
			GroupName:   a.GroupName,
			Type:        string(a.Type),
			MeanScore:   a.MeanScore,
			Respondents: a.Respondents,
			Category:    string(a.Category),
			Label:       scoring.Label(a.Category, a.Type),
		}
		if a.Category != domain.RiskNotAnswered {
			resp.Color = string(scoring.Color(a.Category, a.Type))
		}
		out = append(out, resp)
	}
	return out
}

type reportAcceptedResponse struct {
	JobID string `json:"job_id"`
}

type reportJobResponse struct {
	JobID    string          `json:"job_id"`
	Status   string          `json:"status"`
	Progress float64         `json:"progress"`
	Summary  json.RawMessage `json:"summary,omitempty"`
}

func fromReportJob(jobID, status string, progress float64, summary []byte) reportJobResponse {
	return reportJobResponse{
		JobID:    jobID,
		Status:   status,
		Progress: progress,
		Summary:  summary,
	}
}
