package ai

import (
	"testing"

	"github.com/paxtonking/optcgsim-web-sub005/internal/catalog"
	"github.com/paxtonking/optcgsim-web-sub005/internal/game"
)

func TestScoreStatLineBuckets(t *testing.T) {
	gs := botState("bot")
	a := NewAssessor(botLookup)

	cases := []struct {
		catalogID string
		want      int
	}{
		{"grunt", 1},   // on-curve body only
		{"soldier", 1}, // on-curve body only
		{"brute", 3},   // 5000 power plus efficiency
		{"titan", 4},   // 7000 power plus efficiency
		{"pricey", 2},  // 5000 power, off the curve for its cost
	}
	for _, tc := range cases {
		c := putField(gs, "foe", tc.catalogID+"-x", tc.catalogID, game.StateActive)
		if got := a.Score(gs, c); got != tc.want {
			t.Errorf("%s score: got %d, want %d", tc.catalogID, got, tc.want)
		}
	}
}

func TestScoreUsesRuntimeKeywordsAndClamps(t *testing.T) {
	gs := botState("bot")
	a := NewAssessor(botLookup)

	menace := putField(gs, "foe", "m1", "menace", game.StateActive)
	if got := a.Score(gs, menace); got != 10 {
		t.Fatalf("stacked signals must clamp at 10, got %d", got)
	}

	// Revoked runtime keywords stop counting even though they stay printed.
	menace.RevokeKeyword(catalog.KeywordRush)
	menace.RevokeKeyword(catalog.KeywordDoubleAttack)
	if got := a.Score(gs, menace); got != 9 {
		t.Fatalf("score after revoking keywords: got %d, want 9", got)
	}
}

func TestAssessRanksHighestFirst(t *testing.T) {
	gs := botState("bot")
	menace := putField(gs, "foe", "m1", "menace", game.StateActive)
	grunt := putField(gs, "foe", "g1", "grunt", game.StateActive)
	a := NewAssessor(botLookup)

	threats := a.Assess(gs, "bot")
	if len(threats) != 3 {
		t.Fatalf("leader plus two characters: got %d threats", len(threats))
	}
	if threats[0].Card.ID != menace.ID || threats[0].Score != 10 {
		t.Fatalf("top threat: %s scored %d", threats[0].Card.ID, threats[0].Score)
	}
	if threats[2].Card.ID != grunt.ID {
		t.Fatalf("weakest threat: got %s, want %s", threats[2].Card.ID, grunt.ID)
	}
	for i := 1; i < len(threats); i++ {
		if threats[i].Score > threats[i-1].Score {
			t.Fatalf("threats out of order at %d: %d > %d", i, threats[i].Score, threats[i-1].Score)
		}
	}
}

func TestCriticalAndModerateFilters(t *testing.T) {
	gs := botState("bot")
	putField(gs, "foe", "m1", "menace", game.StateActive)
	putField(gs, "foe", "t1", "titan", game.StateActive)
	putField(gs, "foe", "g1", "grunt", game.StateActive)
	a := NewAssessor(botLookup)

	critical := a.Critical(gs, "bot")
	if len(critical) != 1 || critical[0].Card.ID != "m1" {
		t.Fatalf("critical threats: %+v", critical)
	}
	moderate := a.Moderate(gs, "bot")
	if len(moderate) != 2 {
		t.Fatalf("moderate threats: got %d, want 2", len(moderate))
	}
}

func TestBestKOTargetRequiresRestAndLethalGap(t *testing.T) {
	gs := botState("bot")
	titan := putField(gs, "foe", "t1", "titan", game.StateRested)
	grunt := putField(gs, "foe", "g1", "grunt", game.StateRested)
	putField(gs, "foe", "b1", "brute", game.StateActive) // active, never a legal target
	a := NewAssessor(botLookup)

	if got := a.BestKOTarget(gs, "bot", 7500); got == nil || got.ID != titan.ID {
		t.Fatalf("7500 attack should hunt the titan, got %+v", got)
	}
	// An exact power tie cannot KO, so the titan drops out.
	if got := a.BestKOTarget(gs, "bot", 7000); got == nil || got.ID != grunt.ID {
		t.Fatalf("7000 attack should settle for the grunt, got %+v", got)
	}
	if got := a.BestKOTarget(gs, "bot", 2000); got != nil {
		t.Fatalf("no KO available, got %s", got.ID)
	}
}
