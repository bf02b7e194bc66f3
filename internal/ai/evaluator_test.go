package ai

import (
	"fmt"
	"math"
	"testing"

	"github.com/paxtonking/optcgsim-web-sub005/internal/game"
)

func TestEvaluateSymmetricBoardIsZero(t *testing.T) {
	gs := botState("bot")
	score := NewEvaluator(botLookup).Evaluate(gs, "bot")

	if score.Field != 0 || score.Hand != 0 || score.Life != 0 || score.Don != 0 || score.Tempo != 0 {
		t.Fatalf("symmetric board must score zero per term: %+v", score)
	}
	if score.Total != 0 {
		t.Fatalf("total: got %v, want 0", score.Total)
	}
}

func TestEvaluateFieldAndTempoAdvantage(t *testing.T) {
	gs := botState("bot")
	putField(gs, "bot", "b1", "brute", game.StateActive)
	ev := NewEvaluator(botLookup)

	score := ev.Evaluate(gs, "bot")
	// One 5000 body is worth 5.5 field presence and one ready piece of tempo.
	if math.Abs(score.Field-5.5) > 1e-9 {
		t.Fatalf("field term: got %v, want 5.5", score.Field)
	}
	if math.Abs(score.Tempo-1.0) > 1e-9 {
		t.Fatalf("tempo term: got %v, want 1.0", score.Tempo)
	}
	if math.Abs(score.Total-6.3) > 1e-9 {
		t.Fatalf("total: got %v, want 6.3", score.Total)
	}

	// The same board scores the exact mirror for the other seat.
	mirror := ev.Evaluate(gs, "foe")
	if math.Abs(mirror.Total+6.3) > 1e-9 {
		t.Fatalf("mirrored total: got %v, want -6.3", mirror.Total)
	}
}

func TestEvaluateClampsRunawayTerms(t *testing.T) {
	gs := botState("bot")
	for i := 0; i < 15; i++ {
		putHand(gs, "foe", fmt.Sprintf("fh-%d", i), "grunt")
	}

	score := NewEvaluator(botLookup).Evaluate(gs, "bot")
	if score.Hand != -10 {
		t.Fatalf("hand term must clamp at -10, got %v", score.Hand)
	}
}

func TestClassifyPhaseBuckets(t *testing.T) {
	ev := NewEvaluator(botLookup)
	cases := []struct {
		turns int
		want  GamePhase
	}{
		{1, PhaseEarly},
		{3, PhaseEarly},
		{5, PhaseMid},
		{9, PhaseLate},
	}
	for _, tc := range cases {
		gs := botState()
		for i := 0; i < tc.turns; i++ {
			if i%2 == 0 {
				gs.Turns.BeginTurn("bot")
			} else {
				gs.Turns.BeginTurn("foe")
			}
		}
		if got := ev.Classify(gs, "bot").Phase; got != tc.want {
			t.Errorf("turn %d phase: got %s, want %s", tc.turns, got, tc.want)
		}
	}
}

func TestClassifyTempoAndPressure(t *testing.T) {
	gs := botState("bot")
	putField(gs, "bot", "b1", "brute", game.StateActive)
	ev := NewEvaluator(botLookup)

	ahead := ev.Classify(gs, "bot")
	if ahead.Tempo != TempoAhead || ahead.Pressure != PressureApplying {
		t.Fatalf("seat with the board: tempo %s pressure %s", ahead.Tempo, ahead.Pressure)
	}
	behind := ev.Classify(gs, "foe")
	if behind.Tempo != TempoBehind || behind.Pressure != PressureReceiving {
		t.Fatalf("seat without the board: tempo %s pressure %s", behind.Tempo, behind.Pressure)
	}
}

func TestClassifyResourceAndLifeBuckets(t *testing.T) {
	ev := NewEvaluator(botLookup)

	flush := botState("bot")
	giveDon(flush, "bot", 5)
	for i := 0; i < 4; i++ {
		putHand(flush, "bot", fmt.Sprintf("h-%d", i), "grunt")
	}
	giveLife(flush, "bot", 3)
	pos := ev.Classify(flush, "bot")
	if pos.Resource != ResourceFlush || pos.Life != LifeSafe {
		t.Fatalf("flush seat: resource %s life %s", pos.Resource, pos.Life)
	}

	stable := botState("bot")
	giveDon(stable, "bot", 2)
	giveLife(stable, "bot", 2)
	pos = ev.Classify(stable, "bot")
	if pos.Resource != ResourceStable || pos.Life != LifeModerate {
		t.Fatalf("stable seat: resource %s life %s", pos.Resource, pos.Life)
	}

	broke := botState("bot")
	giveLife(broke, "bot", 1)
	pos = ev.Classify(broke, "bot")
	if pos.Resource != ResourceConstrained || pos.Life != LifeCritical {
		t.Fatalf("broke seat: resource %s life %s", pos.Resource, pos.Life)
	}
}
