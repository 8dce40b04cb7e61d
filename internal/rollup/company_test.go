package rollup

import (
	"fmt"
	"testing"

	"github.com/coachlens/call-insights-backend/internal/domain"
)

func TestComputeTopCompaniesByVolume(t *testing.T) {
	companies := []domain.Company{
		{ID: "c1", CompanyName: "Acme"},
		{ID: "c2", CompanyName: "Globex"},
		{ID: "c3", CompanyName: "Initech"}, // no calls, dropped
	}
	links := []domain.CompanyCall{
		{TranscriptID: "t1", CompanyID: "c1"},
		{TranscriptID: "t2", CompanyID: "c1"},
		{TranscriptID: "t3", CompanyID: "c2"},
	}
	got := ComputeTopCompaniesByVolume(companies, links)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].CompanyID != "c1" || got[0].CallCount != 2 {
		t.Fatalf("first = %+v", got[0])
	}
	if got[1].CompanyID != "c2" || got[1].CallCount != 1 {
		t.Fatalf("second = %+v", got[1])
	}
}

func TestComputeTopCompaniesByVolume_CapsAtFive(t *testing.T) {
	var companies []domain.Company
	var links []domain.CompanyCall
	for i := 0; i < 7; i++ {
		id := fmt.Sprintf("c%d", i)
		companies = append(companies, domain.Company{ID: id})
		links = append(links, domain.CompanyCall{TranscriptID: fmt.Sprintf("t%d", i), CompanyID: id})
	}
	if got := ComputeTopCompaniesByVolume(companies, links); len(got) != 5 {
		t.Fatalf("len = %d, want 5", len(got))
	}
}

func TestComputeTopCompaniesByRisk(t *testing.T) {
	companies := []domain.Company{
		{ID: "c1", CompanyName: "Acme"},
		{ID: "c2", CompanyName: "Globex"},
	}
	links := []domain.CompanyCall{
		{TranscriptID: "t1", CompanyID: "c1"},
		{TranscriptID: "t2", CompanyID: "c2"},
		{TranscriptID: "t3", CompanyID: "c2"},
	}
	risky := func(id string, alerts int) domain.CallRecord {
		c := domain.CallRecord{ID: id}
		for i := 0; i < alerts; i++ {
			c.AIDealRiskAlerts = append(c.AIDealRiskAlerts, fmt.Sprintf("alert %d", i))
		}
		return c
	}
	calls := []domain.CallRecord{
		risky("t1", 1),
		risky("t2", 2),
		risky("t3", 1),
		risky("t-unlinked", 4), // no company link, ignored
		{ID: "t-clean"},        // no alerts, ignored
	}
	got := ComputeTopCompaniesByRisk(companies, links, calls)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].CompanyID != "c2" || got[0].RiskAlerts != 3 {
		t.Fatalf("first = %+v", got[0])
	}
	if got[1].CompanyID != "c1" || got[1].RiskAlerts != 1 {
		t.Fatalf("second = %+v", got[1])
	}
}
