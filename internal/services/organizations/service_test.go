package organizations

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avalia/internal/catalog"
	"avalia/internal/domain"
	"avalia/internal/ports"
)

type fakeOrgRepo struct {
	created map[string]domain.Organization
}

func (f *fakeOrgRepo) CreateOrganization(_ context.Context, name, registrable string) (domain.Organization, error) {
	org := domain.Organization{ID: "org-" + registrable, Name: name, RegistrableDomain: registrable}
	if f.created == nil {
		f.created = make(map[string]domain.Organization)
	}
	f.created[org.ID] = org
	return org, nil
}

func (f *fakeOrgRepo) GetOrganization(_ context.Context, orgID string) (domain.Organization, error) {
	org, ok := f.created[orgID]
	if !ok {
		return domain.Organization{}, ports.ErrNotFound
	}
	return org, nil
}

type fakeScores struct {
	rows []domain.DomainResult
}

func (f *fakeScores) UpsertResults(context.Context, string, []domain.DomainResult) error { return nil }

func (f *fakeScores) CompletedScoresByOrganization(context.Context, string) ([]domain.DomainResult, error) {
	return f.rows, nil
}

func newTestService(t *testing.T, scores *fakeScores) (*Service, *fakeOrgRepo) {
	t.Helper()
	cat, err := catalog.Load("")
	require.NoError(t, err)
	repo := &fakeOrgRepo{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(repo, scores, cat, logger), repo
}

func TestRegister(t *testing.T) {
	svc, _ := newTestService(t, &fakeScores{})
	ctx := context.Background()

	tests := []struct {
		website string
		want    string
	}{
		{website: "https://www.acme.com.br/sobre", want: "acme.com.br"},
		{website: "https://portal.rh.example.co.uk", want: "example.co.uk"},
		{website: "http://example.com", want: "example.com"},
	}
	for _, tt := range tests {
		org, err := svc.Register(ctx, "Acme", tt.website)
		require.NoError(t, err)
		assert.Equal(t, tt.want, org.RegistrableDomain, "website %s", tt.website)
	}
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown organization", func(t *testing.T) {
		svc, _ := newTestService(t, &fakeScores{})
		_, err := svc.Dashboard(ctx, "nope")
		assert.ErrorIs(t, err, ports.ErrNotFound)
	})

	t.Run("aggregates completed respondents per group", func(t *testing.T) {
		scores := &fakeScores{rows: []domain.DomainResult{
			{GroupID: 1, Score: 80, Category: domain.RiskHigh},
			{GroupID: 1, Score: 70, Category: domain.RiskHigh},
			{GroupID: 3, Score: 40, Category: domain.RiskMedium},
			// not_answered cache rows do not contribute to the mean
			{GroupID: 4, Score: 0, Category: domain.RiskNotAnswered},
		}}
		svc, _ := newTestService(t, scores)
		org, err := svc.Register(ctx, "Acme", "https://acme.com.br")
		require.NoError(t, err)

		aggs, err := svc.Dashboard(ctx, org.ID)
		require.NoError(t, err)
		require.Len(t, aggs, 12, "every catalog group is reported")

		byID := make(map[int]domain.GroupAggregate, len(aggs))
		for _, a := range aggs {
			byID[a.GroupID] = a
		}

		assert.Equal(t, 75.0, byID[1].MeanScore)
		assert.Equal(t, 2, byID[1].Respondents)
		assert.Equal(t, domain.RiskHigh, byID[1].Category)

		assert.Equal(t, 40.0, byID[3].MeanScore)
		assert.Equal(t, domain.RiskMedium, byID[3].Category)

		assert.Equal(t, domain.RiskNotAnswered, byID[4].Category)
		assert.Zero(t, byID[4].Respondents)
	})
}
