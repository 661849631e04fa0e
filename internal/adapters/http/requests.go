package httpadapter

import (
	"errors"
	"strings"

	"avalia/internal/domain"
)

type registerOrganizationRequest struct {
	Name    string `json:"name"`
	Website string `json:"website"`
}

func (r registerOrganizationRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(r.Website) == "" {
		return errors.New("website is required")
	}
	return nil
}

type createAssessmentRequest struct {
	OrganizationID     string `json:"organization_id"`
	EmployeeLabel      string `json:"employee_label"`
	RespondentCategory string `json:"respondent_category"`
}

func (r createAssessmentRequest) Validate() error {
	if strings.TrimSpace(r.OrganizationID) == "" {
		return errors.New("organization_id is required")
	}
	if strings.TrimSpace(r.EmployeeLabel) == "" {
		return errors.New("employee_label is required")
	}
	switch r.RespondentCategory {
	case "", "operational", "management":
	default:
		return errors.New("respondent_category must be operational or management")
	}
	return nil
}

type submitAnswerRequest struct {
	GroupID int     `json:"group_id"`
	ItemID  string  `json:"item_id"`
	Value   float64 `json:"value"`
}

func (r submitAnswerRequest) Validate() error {
	if r.GroupID <= 0 {
		return errors.New("group_id is required")
	}
	if strings.TrimSpace(r.ItemID) == "" {
		return errors.New("item_id is required")
	}
	if !domain.ValidScaleValue(r.Value) {
		return errors.New("value must be one of 0, 25, 50, 75, 100")
	}
	return nil
}
