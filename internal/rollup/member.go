package rollup

import (
	"fmt"
	"sort"

	"github.com/coachlens/call-insights-backend/internal/domain"
)

// memberTrendWindow is the number of scored calls in each member trend
// bucket. Unlike the team trend, the member trend compares the most recent
// five scored calls against the previous five by recency, not by calendar
// window; the difference is deliberate and load-bearing for coaching views.
const memberTrendWindow = 5

// Caps on derived coaching lists.
const (
	maxSkillEntries        = 5
	maxRecommendations     = 5
	recommendationCallSpan = 5
	areasPerCall           = 2
)

// MemberStats is the headline rollup for one member's profile view.
type MemberStats struct {
	TotalCalls      int `json:"total_calls"`
	AvgScore        int `json:"avg_score"`
	TrendPct        int `json:"trend_pct"`
	DealRiskRatePct int `json:"deal_risk_rate_pct"`
}

// RadarPoint is one spoke of the member's category radar chart.
type RadarPoint struct {
	Category string `json:"category"`
	Score    int    `json:"score"`
	FullMark int    `json:"full_mark"`
}

// SkillCount is one derived strength or focus area. Count is the number of
// calls the skill was observed in; it is 0 for entries sourced from the
// member's stored profile, which take precedence over computed ones.
type SkillCount struct {
	Skill             string `json:"skill"`
	Count             int    `json:"count"`
	FromStoredProfile bool   `json:"from_stored_profile"`
}

// Recommendation is one coaching recommendation for a member.
type Recommendation struct {
	Skill             string `json:"skill"`
	Recommendation    string `json:"recommendation"`
	Reason            string `json:"reason,omitempty"`
	FromStoredProfile bool   `json:"from_stored_profile"`
}

// ComputeMemberStats derives one member's headline numbers. The trend
// compares the most recent five scored calls against the previous five
// (by recency), with the same zero-guards as the team trend. The deal risk
// rate is the share of scored calls that raised at least one risk alert.
func ComputeMemberStats(calls []domain.CallRecord) MemberStats {
	out := MemberStats{TotalCalls: len(calls)}

	sorted := sortByRecency(calls)
	var scored []float64
	scoredWithRisk := 0
	scoredCount := 0
	for i := range sorted {
		c := &sorted[i]
		if !c.HasScore() {
			continue
		}
		scored = append(scored, *c.AIOverallScore)
		scoredCount++
		if len(c.AIDealRiskAlerts) > 0 {
			scoredWithRisk++
		}
	}

	out.AvgScore = roundMean(scored)

	var recent, older []float64
	if len(scored) > memberTrendWindow {
		recent = scored[:memberTrendWindow]
		older = scored[memberTrendWindow:]
		if len(older) > memberTrendWindow {
			older = older[:memberTrendWindow]
		}
	} else {
		recent = scored
	}
	out.TrendPct = trendPct(recent, older)

	if scoredCount > 0 {
		out.DealRiskRatePct = round(float64(scoredWithRisk) / float64(scoredCount) * 100)
	}
	return out
}

// ComputeCategoryRadar rolls one member's calls into radar chart points,
// one per category, each with a full mark of 100. Points sort ascending by
// category key for a stable chart layout.
func ComputeCategoryRadar(calls []domain.CallRecord, labels *LabelTable) []RadarPoint {
	acc := accumulateCategories(calls)

	out := make([]RadarPoint, 0, len(acc))
	keys := make([]string, 0, len(acc))
	for key := range acc {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		a := acc[key]
		out = append(out, RadarPoint{
			Category: labels.Label(key),
			Score:    round(a.total / float64(a.count)),
			FullMark: 100,
		})
	}
	return out
}

// DeriveKeyStrengths returns up to five strengths for a member. A non-empty
// stored key_strengths profile wins verbatim (manually curated data beats
// computed data); otherwise strengths are tallied from the behavior skills
// observed across the member's ai_what_worked entries.
func DeriveKeyStrengths(member *domain.TeamMember, calls []domain.CallRecord) []SkillCount {
	if stored := storedSkills(member.KeyStrengths); stored != nil {
		return stored
	}
	tally := make(map[string]int)
	for i := range calls {
		for _, w := range calls[i].AIWhatWorked {
			if w.BehaviorSkill != "" {
				tally[w.BehaviorSkill]++
			}
		}
	}
	return topSkills(tally)
}

// DeriveFocusAreas mirrors DeriveKeyStrengths for weaknesses: stored
// focus_areas win, else frequency of ai_improvement_areas category skills.
func DeriveFocusAreas(member *domain.TeamMember, calls []domain.CallRecord) []SkillCount {
	if stored := storedSkills(member.FocusAreas); stored != nil {
		return stored
	}
	tally := make(map[string]int)
	for i := range calls {
		for _, a := range calls[i].AIImprovementAreas {
			if a.CategorySkill != "" {
				tally[a.CategorySkill]++
			}
		}
	}
	return topSkills(tally)
}

// DeriveRecommendations returns up to five coaching recommendations. Stored
// ai_recommendations win, each labeled "Recommendation i". Otherwise the
// five most recent calls each contribute up to two improvement areas,
// deduplicated by skill keeping the first (most recent) occurrence.
func DeriveRecommendations(member *domain.TeamMember, calls []domain.CallRecord) []Recommendation {
	if len(member.AIRecommendations) > 0 {
		out := make([]Recommendation, 0, len(member.AIRecommendations))
		for i, r := range member.AIRecommendations {
			if len(out) == maxRecommendations {
				break
			}
			out = append(out, Recommendation{
				Skill:             fmt.Sprintf("Recommendation %d", i+1),
				Recommendation:    r,
				FromStoredProfile: true,
			})
		}
		return out
	}

	sorted := sortByRecency(calls)
	if len(sorted) > recommendationCallSpan {
		sorted = sorted[:recommendationCallSpan]
	}

	seen := make(map[string]struct{})
	var out []Recommendation
	for i := range sorted {
		taken := 0
		for _, a := range sorted[i].AIImprovementAreas {
			if taken == areasPerCall || len(out) == maxRecommendations {
				break
			}
			taken++
			if a.CategorySkill == "" {
				continue
			}
			if _, dup := seen[a.CategorySkill]; dup {
				continue
			}
			seen[a.CategorySkill] = struct{}{}
			out = append(out, Recommendation{
				Skill:          a.CategorySkill,
				Recommendation: a.DoThisInstead,
				Reason:         a.WhyThisWorksBetter,
			})
		}
		if len(out) == maxRecommendations {
			break
		}
	}
	return out
}

// storedSkills maps a non-empty stored profile list to SkillCount entries
// (count 0, marked as stored). Returns nil when the stored list is empty so
// callers fall through to the computed path.
func storedSkills(stored domain.StringList) []SkillCount {
	if len(stored) == 0 {
		return nil
	}
	out := make([]SkillCount, 0, len(stored))
	for _, s := range stored {
		if len(out) == maxSkillEntries {
			break
		}
		out = append(out, SkillCount{Skill: s, Count: 0, FromStoredProfile: true})
	}
	return out
}

// topSkills sorts a frequency tally descending by count (ties ascending by
// skill name) and returns the top five.
func topSkills(tally map[string]int) []SkillCount {
	out := make([]SkillCount, 0, len(tally))
	for skill, count := range tally {
		out = append(out, SkillCount{Skill: skill, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Skill < out[j].Skill
	})
	if len(out) > maxSkillEntries {
		out = out[:maxSkillEntries]
	}
	return out
}

// sortByRecency returns a copy of calls sorted newest first, tie-breaking
// on id for determinism.
func sortByRecency(calls []domain.CallRecord) []domain.CallRecord {
	sorted := make([]domain.CallRecord, len(calls))
	copy(sorted, calls)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}
