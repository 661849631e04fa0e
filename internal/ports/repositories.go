package ports

import (
	"context"

	"avalia/internal/domain"
)

// ErrNotFound is returned by repositories when the requested row does not
// exist, so services and handlers can react without importing the adapter.
var ErrNotFound = errString("not found")

type errString string

func (e errString) Error() string { return string(e) }

// OrganizationRepository stores organizations keyed by their registrable
// domain (eTLD+1 of the registered website).
type OrganizationRepository interface {
	CreateOrganization(ctx context.Context, name, registrable string) (domain.Organization, error)
	GetOrganization(ctx context.Context, orgID string) (domain.Organization, error)
}

// AssessmentRepository manages assessment records and their status machine.
type AssessmentRepository interface {
	CreateAssessment(ctx context.Context, a domain.Assessment) (domain.Assessment, error)
	GetByToken(ctx context.Context, token string) (domain.Assessment, error)
	// UpdateStatus moves the assessment to the given status and reports
	// whether the row changed. Illegal transitions are rejected by the
	// service before this is called.
	UpdateStatus(ctx context.Context, assessmentID string, from, to domain.AssessmentStatus) (bool, error)
	// FinalizeAssessment atomically recounts answers and flips the status
	// to completed when at least required answers exist. It returns false
	// without mutating anything when the count falls short.
	FinalizeAssessment(ctx context.Context, assessmentID string, required int) (bool, error)
}

// AnswerRepository stores responses with upsert-last-write-wins semantics per
// (assessment, group, item).
type AnswerRepository interface {
	UpsertAnswer(ctx context.Context, a domain.Answer) error
	AnswersByAssessment(ctx context.Context, assessmentID string) ([]domain.Answer, error)
	CountAnswers(ctx context.Context, assessmentID string) (int, error)
}

// ResultRepository caches derived per-group results. The cache is owned by
// storage; the engine recomputes from answers on demand.
type ResultRepository interface {
	UpsertResults(ctx context.Context, assessmentID string, results []domain.DomainResult) error
	// CompletedScoresByOrganization returns (group id, score) rows for
	// every cached result belonging to a completed assessment of the
	// organization.
	CompletedScoresByOrganization(ctx context.Context, orgID string) ([]domain.DomainResult, error)
}
