package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/coachlens/call-insights-backend/internal/cache"
	"github.com/coachlens/call-insights-backend/internal/domain"
	"github.com/coachlens/call-insights-backend/internal/repo"
	"github.com/coachlens/call-insights-backend/internal/rollup"
)

const defaultTopPerformers = 5

// TeamAnalytics is the full dashboard snapshot for one team.
type TeamAnalytics struct {
	TeamID              string                 `json:"team_id"`
	TeamName            string                 `json:"team_name"`
	Stats               rollup.TeamStats       `json:"stats"`
	ScoreTrend          []rollup.TrendPoint    `json:"score_trend"`
	TopPerformers       []rollup.PerformerRank `json:"top_performers"`
	CategoryPerformance []rollup.CategoryAvg   `json:"category_performance"`
	Distribution        rollup.Distribution    `json:"score_distribution"`
	RepComparison       []rollup.RepComparison `json:"rep_comparison"`
	GeneratedAt         time.Time              `json:"generated_at"`
}

// CompanyLeaderboards pairs the two prospect-company rankings.
type CompanyLeaderboards struct {
	ByVolume []rollup.CompanyVolume `json:"by_volume"`
	ByRisk   []rollup.CompanyRisk   `json:"by_risk"`
}

// AnalyticsService assembles team-level dashboard rollups. Fetches fan out
// concurrently; all aggregation itself is pure and lives in rollup.
type AnalyticsService struct {
	DB     *gorm.DB
	Labels *rollup.LabelTable
	Cache  *cache.Cache // optional; nil disables snapshot caching

	SnapshotTTL   time.Duration
	TopPerformers int

	// Now is stubbed in tests.
	Now func() time.Time
}

// NewAnalyticsService constructs an AnalyticsService with defaults applied.
func NewAnalyticsService(db *gorm.DB, labels *rollup.LabelTable, c *cache.Cache, ttl time.Duration) *AnalyticsService {
	return &AnalyticsService{
		DB:            db,
		Labels:        labels,
		Cache:         c,
		SnapshotTTL:   ttl,
		TopPerformers: defaultTopPerformers,
		Now:           time.Now,
	}
}

// GetTeamAnalytics returns the dashboard snapshot for teamID. The snapshot
// is cached keyed by the team's call count and newest call timestamp, so a
// new or updated call invalidates the key naturally.
func (s *AnalyticsService) GetTeamAnalytics(ctx context.Context, teamID string) (*TeamAnalytics, error) {
	tr := otel.Tracer("services/AnalyticsService")
	ctx, span := tr.Start(ctx, "GetTeamAnalytics",
		trace.WithAttributes(attribute.String("team.id", teamID)),
	)
	defer span.End()

	team, err := repo.GetTeam(ctx, s.DB, teamID)
	if err != nil {
		if err == repo.ErrNotFound {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	memberIDs := []string(team.Members)

	key := s.snapshotKey(ctx, team.ID, memberIDs)
	if key != "" {
		var cached TeamAnalytics
		if err := s.Cache.Get(ctx, key, &cached); err == nil {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return &cached, nil
		}
	}

	var (
		members []domain.TeamMember
		calls   []domain.CallRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		members, err = repo.ListMembersByIDs(gctx, s.DB, memberIDs)
		return err
	})
	g.Go(func() error {
		var err error
		calls, err = repo.ListCallsForUsers(gctx, s.DB, memberIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := s.Now().UTC()
	out := &TeamAnalytics{
		TeamID:              team.ID,
		TeamName:            team.TeamName,
		Stats:               rollup.ComputeTeamStats(calls, len(memberIDs), now),
		ScoreTrend:          rollup.ComputeScoreTrendSeries(calls),
		TopPerformers:       rollup.ComputeTopPerformers(members, calls, s.TopPerformers),
		CategoryPerformance: rollup.ComputeCategoryPerformance(calls, s.Labels),
		Distribution:        rollup.ComputeScoreDistribution(calls),
		RepComparison:       rollup.ComputeRepComparison(members, calls, s.Labels),
		GeneratedAt:         now,
	}

	if key != "" {
		if err := s.Cache.Set(ctx, key, out, s.SnapshotTTL); err != nil {
			log.Warn().Err(err).Str("team_id", team.ID).Msg("analytics snapshot cache write failed")
		}
	}
	return out, nil
}

// GetCompanyLeaderboards returns the prospect-company rankings for the
// team's calls.
func (s *AnalyticsService) GetCompanyLeaderboards(ctx context.Context, teamID string) (*CompanyLeaderboards, error) {
	tr := otel.Tracer("services/AnalyticsService")
	ctx, span := tr.Start(ctx, "GetCompanyLeaderboards",
		trace.WithAttributes(attribute.String("team.id", teamID)),
	)
	defer span.End()

	team, err := repo.GetTeam(ctx, s.DB, teamID)
	if err != nil {
		if err == repo.ErrNotFound {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}

	var (
		companies []domain.Company
		links     []domain.CompanyCall
		calls     []domain.CallRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		companies, err = repo.ListCompanies(gctx, s.DB)
		return err
	})
	g.Go(func() error {
		var err error
		links, err = repo.ListCompanyCalls(gctx, s.DB)
		return err
	})
	g.Go(func() error {
		var err error
		calls, err = repo.ListCallsForUsers(gctx, s.DB, []string(team.Members))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &CompanyLeaderboards{
		ByVolume: rollup.ComputeTopCompaniesByVolume(companies, links),
		ByRisk:   rollup.ComputeTopCompaniesByRisk(companies, links, calls),
	}, nil
}

// snapshotKey derives the cache key from the team's call-set fingerprint.
// Returns "" when caching is disabled or the fingerprint query fails, in
// which case the caller computes uncached.
func (s *AnalyticsService) snapshotKey(ctx context.Context, teamID string, memberIDs []string) string {
	if s.Cache == nil {
		return ""
	}
	count, maxUpdated, err := repo.CallsStats(ctx, s.DB, memberIDs)
	if err != nil {
		log.Warn().Err(err).Str("team_id", teamID).Msg("calls stats query failed, skipping cache")
		return ""
	}
	var stamp int64
	if maxUpdated != nil {
		stamp = maxUpdated.UTC().UnixNano()
	}
	return fmt.Sprintf("analytics:team:%s:%d:%d", teamID, count, stamp)
}
