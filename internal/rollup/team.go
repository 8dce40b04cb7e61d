// Package rollup implements the metrics aggregation core: pure functions
// that derive team analytics, member insights, and company rollups from call
// record rows fetched by the repo layer.
//
// Every function here is a pure function of its inputs (plus an explicit
// "now" where time windows apply): no I/O, no stored state, safe for
// concurrent use, recomputed fresh on every call. Failure semantics are
// uniform: missing or NaN numeric fields are excluded from averages rather
// than counted as zero, every denominator is zero-guarded, and absent input
// collections yield zero-valued outputs, never a panic.
package rollup

import (
	"math"
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/coachlens/call-insights-backend/internal/domain"
)

// Window boundaries for the team-level period-over-period trend. The member
// trend deliberately uses call counts instead (see member.go).
const (
	trendRecentWindow = 30 * 24 * time.Hour
	trendOlderWindow  = 60 * 24 * time.Hour
)

// trendSeriesMaxPoints caps the score trend series at the most recent points.
const trendSeriesMaxPoints = 30

// TeamStats is the headline rollup for a team dashboard.
type TeamStats struct {
	TotalCalls int `json:"total_calls"`
	AvgScore   int `json:"avg_score"`
	TrendPct   int `json:"trend_pct"`
	AvgPerRep  int `json:"avg_per_rep"`
}

// TrendPoint is one point of the daily score trend series.
type TrendPoint struct {
	Date  string `json:"date"` // YYYY-MM-DD, UTC
	Score int    `json:"score"`
}

// PerformerRank is one entry of the top-performer leaderboard.
type PerformerRank struct {
	MemberID   string `json:"member_id"`
	Name       string `json:"name"`
	AvgScore   int    `json:"avg_score"`
	TotalCalls int    `json:"total_calls"`
}

// CategoryAvg is the rolled-up average score for one skill category.
type CategoryAvg struct {
	Key      string `json:"key"`
	Category string `json:"category"` // display label
	Score    int    `json:"score"`
}

// Distribution buckets calls-with-scores into four fixed bands:
// excellent >=80, good 60-79, needs-work 40-59, poor <40.
type Distribution struct {
	Excellent int `json:"excellent"`
	Good      int `json:"good"`
	NeedsWork int `json:"needs_work"`
	Poor      int `json:"poor"`
}

// RepComparison is the per-rep row of the team comparison table.
type RepComparison struct {
	MemberID         string `json:"member_id"`
	Name             string `json:"name"`
	TotalCalls       int    `json:"total_calls"`
	AvgScore         int    `json:"avg_score"`
	BestCategory     string `json:"best_category"`
	NeedsImprovement string `json:"needs_improvement"`
}

// ComputeTeamStats derives the headline team numbers from all of the team's
// calls. TotalCalls counts every call regardless of score presence; AvgScore
// averages only present scores (0 when there are none); TrendPct compares
// the scored calls of the last 30 days against the 30-60 day window, with
// an empty older bucket collapsing to 0% rather than a divide-by-zero or a
// misleading spike; AvgPerRep is calls per member (0 with no members).
func ComputeTeamStats(calls []domain.CallRecord, memberCount int, now time.Time) TeamStats {
	out := TeamStats{TotalCalls: len(calls)}

	var all, recent, older []float64
	recentCutoff := now.Add(-trendRecentWindow)
	olderCutoff := now.Add(-trendOlderWindow)
	for i := range calls {
		c := &calls[i]
		if !c.HasScore() {
			continue
		}
		s := *c.AIOverallScore
		all = append(all, s)
		switch {
		case !c.CreatedAt.Before(recentCutoff):
			recent = append(recent, s)
		case !c.CreatedAt.Before(olderCutoff):
			older = append(older, s)
		}
	}

	out.AvgScore = roundMean(all)
	out.TrendPct = trendPct(recent, older)
	if memberCount > 0 {
		out.AvgPerRep = round(float64(len(calls)) / float64(memberCount))
	}
	return out
}

// ComputeScoreTrendSeries groups scored calls by UTC calendar date, averages
// each day, and returns the series sorted ascending by date, capped at the
// most recent 30 points.
func ComputeScoreTrendSeries(calls []domain.CallRecord) []TrendPoint {
	byDate := make(map[string][]float64)
	for i := range calls {
		c := &calls[i]
		if !c.HasScore() {
			continue
		}
		key := c.CreatedAt.UTC().Format("2006-01-02")
		byDate[key] = append(byDate[key], *c.AIOverallScore)
	}

	points := make([]TrendPoint, 0, len(byDate))
	for date, scores := range byDate {
		points = append(points, TrendPoint{Date: date, Score: roundMean(scores)})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	if len(points) > trendSeriesMaxPoints {
		points = points[len(points)-trendSeriesMaxPoints:]
	}
	return points
}

// ComputeTopPerformers ranks members by their average scored-call score,
// descending, and returns the top n. Members without any calls are excluded.
// Equal averages tie-break ascending by member id so the leaderboard is
// deterministic across runs.
func ComputeTopPerformers(members []domain.TeamMember, calls []domain.CallRecord, n int) []PerformerRank {
	if n <= 0 {
		n = 5
	}
	byUser := callsByUser(calls)

	var out []PerformerRank
	for i := range members {
		m := &members[i]
		own := byUser[m.ID]
		if len(own) == 0 {
			continue
		}
		out = append(out, PerformerRank{
			MemberID:   m.ID,
			Name:       m.Name,
			AvgScore:   roundMean(scoresOf(own)),
			TotalCalls: len(own),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgScore != out[j].AvgScore {
			return out[i].AvgScore > out[j].AvgScore
		}
		return out[i].MemberID < out[j].MemberID
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// ComputeCategoryPerformance rolls every call's normalized category pairs
// into one average per category, with display labels resolved through the
// table (unknown keys get a humanized snake_case fallback). Output is sorted
// descending by score, ties ascending by key.
func ComputeCategoryPerformance(calls []domain.CallRecord, labels *LabelTable) []CategoryAvg {
	acc := accumulateCategories(calls)

	out := make([]CategoryAvg, 0, len(acc))
	for key, a := range acc {
		out = append(out, CategoryAvg{
			Key:      key,
			Category: labels.Label(key),
			Score:    round(a.total / float64(a.count)),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// ComputeScoreDistribution buckets every scored call into exactly one of the
// four fixed bands. Bucket counts always sum to the number of scored calls.
func ComputeScoreDistribution(calls []domain.CallRecord) Distribution {
	var d Distribution
	for i := range calls {
		c := &calls[i]
		if !c.HasScore() {
			continue
		}
		switch s := *c.AIOverallScore; {
		case s >= 80:
			d.Excellent++
		case s >= 60:
			d.Good++
		case s >= 40:
			d.NeedsWork++
		default:
			d.Poor++
		}
	}
	return d
}

// ComputeRepComparison builds one comparison row per member, including the
// member's strongest and weakest category by average. Categories tie-break
// on the lexicographically smallest key; members without category data get
// "N/A". Rows sort descending by average score, ties ascending by member id.
func ComputeRepComparison(members []domain.TeamMember, calls []domain.CallRecord, labels *LabelTable) []RepComparison {
	byUser := callsByUser(calls)

	out := make([]RepComparison, 0, len(members))
	for i := range members {
		m := &members[i]
		own := byUser[m.ID]
		best, worst := bestWorstCategories(own)

		row := RepComparison{
			MemberID:         m.ID,
			Name:             m.Name,
			TotalCalls:       len(own),
			AvgScore:         roundMean(scoresOf(own)),
			BestCategory:     "N/A",
			NeedsImprovement: "N/A",
		}
		if best != "" {
			row.BestCategory = labels.Label(best)
		}
		if worst != "" {
			row.NeedsImprovement = labels.Label(worst)
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgScore != out[j].AvgScore {
			return out[i].AvgScore > out[j].AvgScore
		}
		return out[i].MemberID < out[j].MemberID
	})
	return out
}

// categoryAcc accumulates a running {total, count} per category key.
type categoryAcc struct {
	total float64
	count int
}

func accumulateCategories(calls []domain.CallRecord) map[string]*categoryAcc {
	acc := make(map[string]*categoryAcc)
	for i := range calls {
		for _, p := range calls[i].CategoryScorePairs() {
			a := acc[p.Category]
			if a == nil {
				a = &categoryAcc{}
				acc[p.Category] = a
			}
			a.total += p.Score
			a.count++
		}
	}
	return acc
}

// bestWorstCategories returns the highest- and lowest-averaging category
// keys over the given calls, tie-breaking on the smaller key. Both are ""
// when no category data exists.
func bestWorstCategories(calls []domain.CallRecord) (best, worst string) {
	acc := accumulateCategories(calls)
	var bestAvg, worstAvg float64
	for key, a := range acc {
		avg := a.total / float64(a.count)
		if best == "" || avg > bestAvg || (avg == bestAvg && key < best) {
			best, bestAvg = key, avg
		}
		if worst == "" || avg < worstAvg || (avg == worstAvg && key < worst) {
			worst, worstAvg = key, avg
		}
	}
	return best, worst
}

func callsByUser(calls []domain.CallRecord) map[string][]domain.CallRecord {
	byUser := make(map[string][]domain.CallRecord)
	for i := range calls {
		byUser[calls[i].UserID] = append(byUser[calls[i].UserID], calls[i])
	}
	return byUser
}

func scoresOf(calls []domain.CallRecord) []float64 {
	var out []float64
	for i := range calls {
		if calls[i].HasScore() {
			out = append(out, *calls[i].AIOverallScore)
		}
	}
	return out
}

// roundMean averages vals and rounds; empty input yields 0, never NaN.
func roundMean(vals []float64) int {
	if len(vals) == 0 {
		return 0
	}
	m, err := stats.Mean(vals)
	if err != nil {
		return 0
	}
	return round(m)
}

// trendPct computes the period-over-period percentage change. An empty older
// bucket falls back to the recent average (yielding exactly 0%), and an
// older average of 0 also yields 0 to avoid dividing by zero.
func trendPct(recent, older []float64) int {
	if len(recent) == 0 {
		return 0
	}
	recentAvg, err := stats.Mean(recent)
	if err != nil {
		return 0
	}
	olderAvg := recentAvg
	if len(older) > 0 {
		if v, err := stats.Mean(older); err == nil {
			olderAvg = v
		}
	}
	if olderAvg == 0 {
		return 0
	}
	return round((recentAvg - olderAvg) / olderAvg * 100)
}

func round(f float64) int { return int(math.Round(f)) }
