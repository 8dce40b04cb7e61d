package search

import (
	"testing"

	"github.com/coachlens/call-insights-backend/internal/domain"
)

func TestCallFacts_FlattensNarratives(t *testing.T) {
	calls := []domain.CallRecord{
		{
			AISummary: "Strong discovery call with the Acme team.",
			AIWhatWorked: domain.WhatWorkedList{
				{BehaviorSkill: "open questions", Evidence: "Asked about budget early."},
			},
			AIImprovementAreas: domain.ImprovementList{
				{CategorySkill: "closing", DoThisInstead: "propose next step", WhyThisWorksBetter: "keeps momentum"},
			},
			AIMissedOpportunities: domain.StringList{"did not ask about timeline"},
		},
		{AISummary: "   "},
	}
	facts := CallFacts(calls)
	if len(facts) != 4 {
		t.Fatalf("len = %d, want 4: %v", len(facts), facts)
	}
}

func TestTopK_RanksByOverlap(t *testing.T) {
	idx := NewIndexFromFacts([]string{
		"Strong discovery call with the Acme procurement team",
		"Closing needs work, no next step was proposed on the call",
		"Pricing objections were handled well by anchoring on value",
	}, WithMinFactRunes(0))

	got := idx.TopK("how was discovery on the Acme call", 2)
	if len(got) == 0 {
		t.Fatal("expected results")
	}
	if got[0].Snippet != "Strong discovery call with the Acme procurement team" {
		t.Fatalf("top result = %q", got[0].Snippet)
	}
	if got[0].Score <= 0 || got[0].Score > 1 {
		t.Fatalf("score out of range: %v", got[0].Score)
	}
}

func TestTopK_EmptyInputs(t *testing.T) {
	idx := NewIndexFromFacts(nil)
	if got := idx.TopK("anything", 3); got != nil {
		t.Fatalf("empty index should return nil, got %v", got)
	}
	idx = NewIndexFromFacts([]string{"a meaningful fact about closing technique"}, WithMinFactRunes(0))
	if got := idx.TopK("   ", 3); got != nil {
		t.Fatalf("blank query should return nil, got %v", got)
	}
}

func TestTopK_DeterministicTieOrder(t *testing.T) {
	idx := NewIndexFromFacts([]string{
		"b discovery fact",
		"a discovery fact",
	}, WithMinFactRunes(0))
	first := idx.TopK("discovery fact", 2)
	second := idx.TopK("discovery fact", 2)
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("lens = %d, %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("order not deterministic: %v vs %v", first, second)
		}
	}
}

func TestWithStopwordsAndMaxDocs(t *testing.T) {
	idx := NewIndexFromFacts(
		[]string{"the discovery call", "the closing call", "the pricing call"},
		WithMinFactRunes(0), WithStopwords([]string{"the"}), WithMaxDocs(2),
	)
	if got := idx.TopK("pricing", 3); got != nil {
		t.Fatalf("third fact should not be indexed, got %v", got)
	}
	if got := idx.TopK("discovery", 3); len(got) != 1 {
		t.Fatalf("expected one hit, got %v", got)
	}
}
