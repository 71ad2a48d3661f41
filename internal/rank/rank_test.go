package rank

import (
	"math"
	"testing"
)

func TestPairCount(t *testing.T) {
	tests := []struct{ n, want int }{
		{8, 28},   // difficulty 2
		{12, 66},  // difficulty 3
		{52, 1326}, // difficulty 13
	}
	for _, tt := range tests {
		if got := PairCount(tt.n); got != tt.want {
			t.Errorf("PairCount(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestIndex(t *testing.T) {
	// Best case at difficulty 2: 8 cards, 4 attempts → 28/4.
	if got := Index(2, 4); got != 7.0 {
		t.Errorf("Index(2,4) = %v, want 7", got)
	}
	if got := Index(2, 0); got != 0 {
		t.Errorf("Index with zero attempts = %v, want 0", got)
	}
}

func TestBuildAveragesAndSorts(t *testing.T) {
	byUser := map[string][]CompletedGame{
		"alice": {{CardTypes: 2, Attempts: 4}, {CardTypes: 2, Attempts: 28}}, // (7+1)/2 = 4
		"bob":   {{CardTypes: 2, Attempts: 4}},                              // 7
		"carol": {},                                                         // omitted
	}
	entries := Build(byUser)
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Username != "bob" || entries[1].Username != "alice" {
		t.Fatalf("order = %s, %s; want bob, alice", entries[0].Username, entries[1].Username)
	}
	if math.Abs(entries[1].Performance-4.0) > 1e-9 {
		t.Fatalf("alice performance = %v, want 4", entries[1].Performance)
	}
}

func TestBuildBreaksTiesByName(t *testing.T) {
	byUser := map[string][]CompletedGame{
		"zoe": {{CardTypes: 2, Attempts: 4}},
		"amy": {{CardTypes: 2, Attempts: 4}},
	}
	entries := Build(byUser)
	if entries[0].Username != "amy" || entries[1].Username != "zoe" {
		t.Fatalf("tie order = %s, %s; want amy, zoe", entries[0].Username, entries[1].Username)
	}
}
