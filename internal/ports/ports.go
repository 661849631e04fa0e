package ports

import (
	"context"

	"avalia/internal/cascade"
	"avalia/internal/domain"
)

// Assessments manages the lifecycle of one respondent's questionnaire run.
type Assessments interface {
	Create(ctx context.Context, orgID, employeeLabel, respondentCategory string) (domain.Assessment, error)
	Get(ctx context.Context, token string) (domain.Assessment, error)
	SubmitAnswer(ctx context.Context, token string, groupID int, itemID string, value float64) (cascade.Visibility, error)
	Visibility(ctx context.Context, token string) (cascade.Visibility, error)
	Finalize(ctx context.Context, token string) (domain.Assessment, error)
	Deactivate(ctx context.Context, token string) error
}

// Results recomputes and serves per-group results for an assessment.
type Results interface {
	ForAssessment(ctx context.Context, token string) ([]domain.DomainResult, error)
}

// Organizations registers organizations and aggregates their dashboards.
type Organizations interface {
	Register(ctx context.Context, name, website string) (domain.Organization, error)
	Get(ctx context.Context, orgID string) (domain.Organization, error)
	Dashboard(ctx context.Context, orgID string) ([]domain.GroupAggregate, error)
}
