package organizations

import (
	"context"
	"log/slog"
	"net/url"
	"sort"

	"golang.org/x/net/publicsuffix"

	"avalia/internal/catalog"
	"avalia/internal/domain"
	"avalia/internal/ports"
	"avalia/internal/scoring"
)

// Service registers organizations and rolls their completed assessments up
// into a per-group dashboard.
type Service struct {
	orgs    ports.OrganizationRepository
	results ports.ResultRepository
	catalog *catalog.Catalog
	logger  *slog.Logger
}

func New(orgs ports.OrganizationRepository, results ports.ResultRepository, cat *catalog.Catalog, logger *slog.Logger) *Service {
	return &Service{orgs: orgs, results: results, catalog: cat, logger: logger}
}

// Register stores an organization keyed by the registrable domain (eTLD+1)
// of its website, so the same employer is not registered twice under
// different hostnames.
func (s *Service) Register(ctx context.Context, name, website string) (domain.Organization, error) {
	u, err := url.Parse(website)
	if err != nil {
		return domain.Organization{}, err
	}
	host := u.Hostname()
	registrable, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		registrable = host
	}
	return s.orgs.CreateOrganization(ctx, name, registrable)
}

// Get loads one organization.
func (s *Service) Get(ctx context.Context, orgID string) (domain.Organization, error) {
	return s.orgs.GetOrganization(ctx, orgID)
}

// Dashboard aggregates cached results of completed assessments into one
// mean score per group, classified with the same thresholds used for
// individual results. Groups with no completed respondents are reported as
// not_answered rather than omitted.
func (s *Service) Dashboard(ctx context.Context, orgID string) ([]domain.GroupAggregate, error) {
	if _, err := s.orgs.GetOrganization(ctx, orgID); err != nil {
		return nil, err
	}
	rows, err := s.results.CompletedScoresByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, row := range rows {
		if row.Category == domain.RiskNotAnswered {
			continue
		}
		sums[row.GroupID] += row.Score
		counts[row.GroupID]++
	}

	meta := s.catalog.Meta()
	ids := make([]int, 0, len(meta))
	for id := range meta {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]domain.GroupAggregate, 0, len(ids))
	for _, id := range ids {
		m := meta[id]
		agg := domain.GroupAggregate{GroupID: id, GroupName: m.Name, Type: m.Type}
		if counts[id] == 0 {
			agg.Category = domain.RiskNotAnswered
			out = append(out, agg)
			continue
		}
		agg.Respondents = counts[id]
		// Route the cohort mean through the same aggregator so rounding
		// and per-group corrections match individual results.
		agg.MeanScore = scoring.Score(id, []domain.Answer{{Value: sums[id] / float64(counts[id])}})
		agg.Category = scoring.Categorize(agg.MeanScore)
		out = append(out, agg)
	}
	return out, nil
}
