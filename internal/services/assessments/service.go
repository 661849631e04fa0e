package assessments

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"avalia/internal/cascade"
	"avalia/internal/catalog"
	"avalia/internal/domain"
	"avalia/internal/metrics"
	"avalia/internal/ports"
)

var (
	ErrInvalidValue   = errors.New("answer value outside the response scale")
	ErrUnknownItem    = errors.New("item does not belong to the given group")
	ErrAnswerLocked   = errors.New("assessment no longer accepts answers")
	ErrIncomplete     = errors.New("assessment incomplete")
	ErrNotFinalizable = errors.New("assessment not eligible for finalization")
)

// Service owns the assessment lifecycle: creation, answer upserts, cascade
// visibility, and the one-way finalize transition.
type Service struct {
	assessments ports.AssessmentRepository
	answers     ports.AnswerRepository
	catalog     *catalog.Catalog
	resolver    *cascade.Resolver
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

func New(assessments ports.AssessmentRepository, answers ports.AnswerRepository, cat *catalog.Catalog, resolver *cascade.Resolver, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		assessments: assessments,
		answers:     answers,
		catalog:     cat,
		resolver:    resolver,
		metrics:     m,
		logger:      logger,
	}
}

// Create registers a new assessment for an organization employee and mints
// its invite token.
func (s *Service) Create(ctx context.Context, orgID, employeeLabel, respondentCategory string) (domain.Assessment, error) {
	if respondentCategory != "management" {
		respondentCategory = "operational"
	}
	a := domain.Assessment{
		OrganizationID:     orgID,
		EmployeeLabel:      employeeLabel,
		RespondentCategory: respondentCategory,
		InviteToken:        uuid.NewString(),
		Status:             domain.StatusNotStarted,
	}
	return s.assessments.CreateAssessment(ctx, a)
}

// Get loads an assessment by invite token. The first fetch by the respondent
// moves not_started to started.
func (s *Service) Get(ctx context.Context, token string) (domain.Assessment, error) {
	a, err := s.assessments.GetByToken(ctx, token)
	if err != nil {
		return domain.Assessment{}, err
	}
	if a.Status == domain.StatusNotStarted {
		if ok, err := s.assessments.UpdateStatus(ctx, a.ID, domain.StatusNotStarted, domain.StatusStarted); err == nil && ok {
			a.Status = domain.StatusStarted
		}
	}
	return a, nil
}

// SubmitAnswer upserts one response (last write wins) and returns the
// recomputed visible-item set so the caller knows what to present next.
func (s *Service) SubmitAnswer(ctx context.Context, token string, groupID int, itemID string, value float64) (cascade.Visibility, error) {
	if !domain.ValidScaleValue(value) {
		return cascade.Visibility{}, ErrInvalidValue
	}
	owner, ok := s.catalog.ItemGroup(itemID)
	if !ok || owner != groupID {
		return cascade.Visibility{}, ErrUnknownItem
	}
	a, err := s.assessments.GetByToken(ctx, token)
	if err != nil {
		return cascade.Visibility{}, err
	}
	if a.Status.AnswerLocked() {
		return cascade.Visibility{}, ErrAnswerLocked
	}
	if err := s.answers.UpsertAnswer(ctx, domain.Answer{
		AssessmentID: a.ID,
		GroupID:      groupID,
		ItemID:       itemID,
		Value:        value,
	}); err != nil {
		return cascade.Visibility{}, err
	}
	s.metrics.IncrementAnswers()
	if a.Status != domain.StatusInProgress && domain.CanTransition(a.Status, domain.StatusInProgress) {
		if _, err := s.assessments.UpdateStatus(ctx, a.ID, a.Status, domain.StatusInProgress); err != nil {
			s.logger.WarnContext(ctx, "status advance failed", "assessment_id", a.ID, "error", err)
		}
	}
	return s.visibilityFor(ctx, a.ID)
}

// Visibility resolves the currently visible item set for the assessment.
func (s *Service) Visibility(ctx context.Context, token string) (cascade.Visibility, error) {
	a, err := s.assessments.GetByToken(ctx, token)
	if err != nil {
		return cascade.Visibility{}, err
	}
	return s.visibilityFor(ctx, a.ID)
}

func (s *Service) visibilityFor(ctx context.Context, assessmentID string) (cascade.Visibility, error) {
	rows, err := s.answers.AnswersByAssessment(ctx, assessmentID)
	if err != nil {
		return cascade.Visibility{}, err
	}
	answerMap := make(map[string]float64, len(rows))
	for _, row := range rows {
		answerMap[row.ItemID] = row.Value
	}
	return s.resolver.Resolve(answerMap), nil
}

// Finalize transitions the assessment to completed when every catalog item
// has an answer. The count-and-flip runs atomically in the repository so two
// concurrent finalize calls cannot both pass against a stale count.
func (s *Service) Finalize(ctx context.Context, token string) (domain.Assessment, error) {
	a, err := s.assessments.GetByToken(ctx, token)
	if err != nil {
		return domain.Assessment{}, err
	}
	if a.Status.AnswerLocked() {
		return domain.Assessment{}, ErrNotFinalizable
	}
	done, err := s.assessments.FinalizeAssessment(ctx, a.ID, s.catalog.TotalItems())
	if err != nil {
		return domain.Assessment{}, err
	}
	if !done {
		s.metrics.IncrementFinalizeRejected()
		return domain.Assessment{}, ErrIncomplete
	}
	s.metrics.IncrementFinalized()
	s.logger.InfoContext(ctx, "assessment finalized", "assessment_id", a.ID)
	return s.assessments.GetByToken(ctx, token)
}

// Deactivate is the administrative kill switch; the assessment stops
// accepting answers and can never be completed.
func (s *Service) Deactivate(ctx context.Context, token string) error {
	a, err := s.assessments.GetByToken(ctx, token)
	if err != nil {
		return err
	}
	if !domain.CanTransition(a.Status, domain.StatusDeactivated) {
		return ErrNotFinalizable
	}
	_, err = s.assessments.UpdateStatus(ctx, a.ID, a.Status, domain.StatusDeactivated)
	return err
}
