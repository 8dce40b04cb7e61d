package rollup

import (
	"sort"

	"github.com/coachlens/call-insights-backend/internal/domain"
)

// companyTopN caps both company leaderboards.
const companyTopN = 5

// CompanyVolume is one entry of the calls-per-company leaderboard.
type CompanyVolume struct {
	CompanyID   string `json:"company_id"`
	CompanyName string `json:"company_name"`
	CallCount   int    `json:"call_count"`
}

// CompanyRisk is one entry of the risk-alerts-per-company leaderboard.
type CompanyRisk struct {
	CompanyID   string `json:"company_id"`
	CompanyName string `json:"company_name"`
	RiskAlerts  int    `json:"risk_alerts"`
}

// ComputeTopCompaniesByVolume counts linked calls per company and returns
// the five busiest, descending. Companies with no linked calls are dropped.
// Equal counts tie-break ascending by company id.
func ComputeTopCompaniesByVolume(companies []domain.Company, links []domain.CompanyCall) []CompanyVolume {
	counts := make(map[string]int)
	for i := range links {
		counts[links[i].CompanyID]++
	}

	var out []CompanyVolume
	for i := range companies {
		c := &companies[i]
		n := counts[c.ID]
		if n == 0 {
			continue
		}
		out = append(out, CompanyVolume{CompanyID: c.ID, CompanyName: c.CompanyName, CallCount: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CallCount != out[j].CallCount {
			return out[i].CallCount > out[j].CallCount
		}
		return out[i].CompanyID < out[j].CompanyID
	})
	if len(out) > companyTopN {
		out = out[:companyTopN]
	}
	return out
}

// ComputeTopCompaniesByRisk attributes each call's deal risk alerts to the
// company linked via the call's transcript id and returns the five riskiest
// companies by total alert count, descending. Companies that accumulated no
// alerts are dropped. Equal counts tie-break ascending by company id.
func ComputeTopCompaniesByRisk(companies []domain.Company, links []domain.CompanyCall, calls []domain.CallRecord) []CompanyRisk {
	companyByTranscript := make(map[string]string, len(links))
	for i := range links {
		companyByTranscript[links[i].TranscriptID] = links[i].CompanyID
	}

	alertTotals := make(map[string]int)
	for i := range calls {
		c := &calls[i]
		if len(c.AIDealRiskAlerts) == 0 {
			continue
		}
		companyID, ok := companyByTranscript[c.ID]
		if !ok {
			continue
		}
		alertTotals[companyID] += len(c.AIDealRiskAlerts)
	}

	var out []CompanyRisk
	for i := range companies {
		c := &companies[i]
		n := alertTotals[c.ID]
		if n == 0 {
			continue
		}
		out = append(out, CompanyRisk{CompanyID: c.ID, CompanyName: c.CompanyName, RiskAlerts: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RiskAlerts != out[j].RiskAlerts {
			return out[i].RiskAlerts > out[j].RiskAlerts
		}
		return out[i].CompanyID < out[j].CompanyID
	})
	if len(out) > companyTopN {
		out = out[:companyTopN]
	}
	return out
}
