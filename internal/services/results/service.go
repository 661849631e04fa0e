package results

import (
	"context"
	"log/slog"
	"sort"

	"avalia/internal/catalog"
	"avalia/internal/domain"
	"avalia/internal/metrics"
	"avalia/internal/ports"
	"avalia/internal/scoring"
)

// ComputeAll derives one DomainResult per group present in meta. Answers for
// group ids without metadata are skipped silently; stale ids in raw answer
// data must not fail the whole computation. A group with no answers scores 0
// and is categorized not_answered.
func ComputeAll(answersByGroup map[int][]domain.Answer, meta map[int]domain.GroupMeta) []domain.DomainResult {
	ids := make([]int, 0, len(meta))
	for id := range meta {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]domain.DomainResult, 0, len(ids))
	for _, id := range ids {
		m := meta[id]
		answers := answersByGroup[id]
		result := domain.DomainResult{
			GroupID:   id,
			GroupName: m.Name,
			Type:      m.Type,
		}
		if len(answers) == 0 {
			result.Category = domain.RiskNotAnswered
			out = append(out, result)
			continue
		}
		score := scoring.Score(id, answers)
		det := scoring.Detect(score, m.Type)
		result.Score = det.AdjustedScore
		result.Category = scoring.Categorize(det.AdjustedScore)
		result.Anomalous = det.IsAnomalous
		result.AnomalyReason = det.Reason
		out = append(out, result)
	}
	return out
}

// CanFinalize reports whether enough answers exist to complete an
// assessment. The required count is the full catalog length regardless of
// cascade visibility.
func CanFinalize(answerCount, requiredCount int) bool {
	return answerCount >= requiredCount
}

// Service recomputes results from the current answer set and refreshes the
// persisted cache.
type Service struct {
	catalog     *catalog.Catalog
	assessments ports.AssessmentRepository
	answers     ports.AnswerRepository
	cache       ports.ResultRepository
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

func New(cat *catalog.Catalog, assessments ports.AssessmentRepository, answers ports.AnswerRepository, cache ports.ResultRepository, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{catalog: cat, assessments: assessments, answers: answers, cache: cache, metrics: m, logger: logger}
}

// ForAssessment recomputes every group result for the assessment behind the
// token, upserts the cache, and returns the results. Anomaly flags are
// surfaced as data and logged for review, never treated as failures.
func (s *Service) ForAssessment(ctx context.Context, token string) ([]domain.DomainResult, error) {
	a, err := s.assessments.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	rows, err := s.answers.AnswersByAssessment(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	byGroup := make(map[int][]domain.Answer)
	for _, row := range rows {
		byGroup[row.GroupID] = append(byGroup[row.GroupID], row)
	}

	results := ComputeAll(byGroup, s.catalog.Meta())
	for _, r := range results {
		if r.Anomalous {
			s.metrics.IncrementAnomaly(r.AnomalyReason)
			s.logger.WarnContext(ctx, "score flagged for review",
				"assessment_id", a.ID,
				"group_id", r.GroupID,
				"score", r.Score,
				"reason", r.AnomalyReason,
			)
		}
	}
	if err := s.cache.UpsertResults(ctx, a.ID, results); err != nil {
		return nil, err
	}
	return results, nil
}
