package assessments

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avalia/internal/cascade"
	"avalia/internal/catalog"
	"avalia/internal/domain"
	"avalia/internal/ports"
)

// memAssessmentRepo is a map-backed stand-in for the postgres adapter.
type memAssessmentRepo struct {
	byToken map[string]*domain.Assessment
	answers *memAnswerRepo
	nextID  int
}

func newMemAssessmentRepo(answers *memAnswerRepo) *memAssessmentRepo {
	return &memAssessmentRepo{byToken: make(map[string]*domain.Assessment), answers: answers}
}

func (m *memAssessmentRepo) CreateAssessment(_ context.Context, a domain.Assessment) (domain.Assessment, error) {
	m.nextID++
	a.ID = fmt.Sprintf("a%d", m.nextID)
	m.byToken[a.InviteToken] = &a
	return a, nil
}

func (m *memAssessmentRepo) GetByToken(_ context.Context, token string) (domain.Assessment, error) {
	a, ok := m.byToken[token]
	if !ok {
		return domain.Assessment{}, ports.ErrNotFound
	}
	out := *a
	out.AnswerCount = m.answers.count(a.ID)
	return out, nil
}

func (m *memAssessmentRepo) UpdateStatus(_ context.Context, assessmentID string, from, to domain.AssessmentStatus) (bool, error) {
	for _, a := range m.byToken {
		if a.ID == assessmentID && a.Status == from {
			a.Status = to
			return true, nil
		}
	}
	return false, nil
}

func (m *memAssessmentRepo) FinalizeAssessment(_ context.Context, assessmentID string, required int) (bool, error) {
	for _, a := range m.byToken {
		if a.ID != assessmentID {
			continue
		}
		if a.Status.AnswerLocked() {
			return false, nil
		}
		if m.answers.count(assessmentID) < required {
			return false, nil
		}
		a.Status = domain.StatusCompleted
		return true, nil
	}
	return false, ports.ErrNotFound
}

type answerKey struct {
	assessmentID string
	groupID      int
	itemID       string
}

type memAnswerRepo struct {
	values map[answerKey]float64
	order  []answerKey
}

func newMemAnswerRepo() *memAnswerRepo {
	return &memAnswerRepo{values: make(map[answerKey]float64)}
}

func (m *memAnswerRepo) UpsertAnswer(_ context.Context, a domain.Answer) error {
	key := answerKey{a.AssessmentID, a.GroupID, a.ItemID}
	if _, exists := m.values[key]; !exists {
		m.order = append(m.order, key)
	}
	m.values[key] = a.Value
	return nil
}

func (m *memAnswerRepo) AnswersByAssessment(_ context.Context, assessmentID string) ([]domain.Answer, error) {
	var out []domain.Answer
	for _, key := range m.order {
		if key.assessmentID != assessmentID {
			continue
		}
		out = append(out, domain.Answer{
			AssessmentID: key.assessmentID,
			GroupID:      key.groupID,
			ItemID:       key.itemID,
			Value:        m.values[key],
		})
	}
	return out, nil
}

func (m *memAnswerRepo) CountAnswers(_ context.Context, assessmentID string) (int, error) {
	return m.count(assessmentID), nil
}

func (m *memAnswerRepo) count(assessmentID string) int {
	n := 0
	for key := range m.values {
		if key.assessmentID == assessmentID {
			n++
		}
	}
	return n
}

func newTestService(t *testing.T) (*Service, *memAssessmentRepo, *memAnswerRepo, *catalog.Catalog) {
	t.Helper()
	cat, err := catalog.Load("")
	require.NoError(t, err)
	rules, err := cascade.LoadRules("")
	require.NoError(t, err)
	answers := newMemAnswerRepo()
	repo := newMemAssessmentRepo(answers)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(repo, answers, cat, cascade.NewResolver(rules), nil, logger), repo, answers, cat
}

func TestCreate(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, "org1", "employee-007", "")
	require.NoError(t, err)
	assert.NotEmpty(t, a.InviteToken)
	assert.Equal(t, domain.StatusNotStarted, a.Status)
	assert.Equal(t, "operational", a.RespondentCategory)

	b, err := svc.Create(ctx, "org1", "lead-001", "management")
	require.NoError(t, err)
	assert.Equal(t, "management", b.RespondentCategory)
	assert.NotEqual(t, a.InviteToken, b.InviteToken)
}

func TestGetAdvancesToStarted(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, "org1", "e1", "")
	require.NoError(t, err)

	got, err := svc.Get(ctx, a.InviteToken)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusStarted, got.Status)

	_, err = svc.Get(ctx, "bogus")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestSubmitAnswer(t *testing.T) {
	svc, repo, answers, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, "org1", "e1", "")
	require.NoError(t, err)

	t.Run("valid answer recorded and advances status", func(t *testing.T) {
		vis, err := svc.SubmitAnswer(ctx, a.InviteToken, 1, "Q1", 75)
		require.NoError(t, err)
		assert.Equal(t, 58, vis.TotalVisible)

		got, err := repo.GetByToken(ctx, a.InviteToken)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusInProgress, got.Status)
		assert.Equal(t, 1, got.AnswerCount)
	})

	t.Run("resubmission overwrites, not duplicates", func(t *testing.T) {
		_, err := svc.SubmitAnswer(ctx, a.InviteToken, 1, "Q1", 100)
		require.NoError(t, err)

		rows, err := answers.AnswersByAssessment(ctx, a.ID)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, 100.0, rows[0].Value)
	})

	t.Run("harassment answer reveals followups", func(t *testing.T) {
		vis, err := svc.SubmitAnswer(ctx, a.InviteToken, 11, "Q56", 25)
		require.NoError(t, err)
		assert.Contains(t, vis.Visible, "Q57")
		assert.Contains(t, vis.Visible, "Q58")
	})

	t.Run("off-scale value rejected", func(t *testing.T) {
		_, err := svc.SubmitAnswer(ctx, a.InviteToken, 1, "Q1", 33)
		assert.ErrorIs(t, err, ErrInvalidValue)
	})

	t.Run("item in wrong group rejected", func(t *testing.T) {
		_, err := svc.SubmitAnswer(ctx, a.InviteToken, 1, "Q56", 25)
		assert.ErrorIs(t, err, ErrUnknownItem)
	})

	t.Run("unknown item rejected", func(t *testing.T) {
		_, err := svc.SubmitAnswer(ctx, a.InviteToken, 1, "Q999", 25)
		assert.ErrorIs(t, err, ErrUnknownItem)
	})
}

func answerAll(t *testing.T, svc *Service, cat *catalog.Catalog, token string) {
	t.Helper()
	ctx := context.Background()
	for _, g := range cat.Groups() {
		for _, item := range g.Items {
			_, err := svc.SubmitAnswer(ctx, token, g.ID, item.ID, 50)
			require.NoError(t, err)
		}
	}
}

func TestFinalize(t *testing.T) {
	ctx := context.Background()

	t.Run("incomplete assessment rejected without state change", func(t *testing.T) {
		svc, repo, _, _ := newTestService(t)
		a, err := svc.Create(ctx, "org1", "e1", "")
		require.NoError(t, err)

		_, err = svc.SubmitAnswer(ctx, a.InviteToken, 1, "Q1", 75)
		require.NoError(t, err)

		_, err = svc.Finalize(ctx, a.InviteToken)
		assert.ErrorIs(t, err, ErrIncomplete)

		got, err := repo.GetByToken(ctx, a.InviteToken)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusInProgress, got.Status)
	})

	t.Run("complete assessment finalizes once", func(t *testing.T) {
		svc, _, _, cat := newTestService(t)
		a, err := svc.Create(ctx, "org1", "e1", "")
		require.NoError(t, err)

		answerAll(t, svc, cat, a.InviteToken)

		got, err := svc.Finalize(ctx, a.InviteToken)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCompleted, got.Status)

		// One-way transition: a second finalize is rejected.
		_, err = svc.Finalize(ctx, a.InviteToken)
		assert.ErrorIs(t, err, ErrNotFinalizable)

		// And a completed assessment no longer accepts answers.
		_, err = svc.SubmitAnswer(ctx, a.InviteToken, 1, "Q1", 0)
		assert.ErrorIs(t, err, ErrAnswerLocked)
	})
}

func TestDeactivate(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, "org1", "e1", "")
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(ctx, a.InviteToken))

	got, err := repo.GetByToken(ctx, a.InviteToken)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDeactivated, got.Status)

	_, err = svc.SubmitAnswer(ctx, a.InviteToken, 1, "Q1", 25)
	assert.ErrorIs(t, err, ErrAnswerLocked)

	assert.ErrorIs(t, svc.Deactivate(ctx, a.InviteToken), ErrNotFinalizable)
}
