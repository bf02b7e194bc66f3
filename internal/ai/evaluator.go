package ai

import (
	"github.com/paxtonking/optcgsim-web-sub005/internal/catalog"
	"github.com/paxtonking/optcgsim-web-sub005/internal/game"
)

// Evaluation term weights. The scalar is the weighted sum of the five
// clamped terms; strategies branch on the buckets, not on raw numbers.
const (
	weightField = 1.0
	weightHand  = 0.7
	weightLife  = 1.5
	weightDon   = 0.5
	weightTempo = 0.8

	termFloor = -10.0
	termCeil  = 10.0
)

// ScoreBreakdown is the five-term board evaluation for one seat. Every term
// is relative to the opponent and clamped before weighting.
type ScoreBreakdown struct {
	Field float64
	Hand  float64
	Life  float64
	Don   float64
	Tempo float64
	Total float64
}

// GamePhase buckets the match by turn count.
type GamePhase string

const (
	PhaseEarly GamePhase = "EARLY"
	PhaseMid   GamePhase = "MID"
	PhaseLate  GamePhase = "LATE"
)

// TempoState buckets the evaluation scalar.
type TempoState string

const (
	TempoAhead  TempoState = "AHEAD"
	TempoEven   TempoState = "EVEN"
	TempoBehind TempoState = "BEHIND"
)

// PressureState buckets board pressure.
type PressureState string

const (
	PressureApplying  PressureState = "APPLYING"
	PressureNeutral   PressureState = "NEUTRAL"
	PressureReceiving PressureState = "RECEIVING"
)

// ResourceState buckets available DON and hand size.
type ResourceState string

const (
	ResourceFlush       ResourceState = "FLUSH"
	ResourceStable      ResourceState = "STABLE"
	ResourceConstrained ResourceState = "CONSTRAINED"
)

// LifeState buckets remaining life.
type LifeState string

const (
	LifeSafe     LifeState = "SAFE"
	LifeModerate LifeState = "MODERATE"
	LifeCritical LifeState = "CRITICAL"
)

// Position is the bucketed classification strategies branch on.
type Position struct {
	Score    ScoreBreakdown
	Phase    GamePhase
	Tempo    TempoState
	Pressure PressureState
	Resource ResourceState
	Life     LifeState
}

// Evaluator scores board positions. It is pure: no calls mutate state, so
// strategies may evaluate freely under the engine's inspect lock.
type Evaluator struct {
	lookup catalog.Lookup
}

// NewEvaluator builds an evaluator over the given catalog.
func NewEvaluator(lookup catalog.Lookup) *Evaluator {
	return &Evaluator{lookup: lookup}
}

// Evaluate produces the weighted scalar and breakdown for the given seat.
func (e *Evaluator) Evaluate(gs *game.GameState, playerID string) ScoreBreakdown {
	p := gs.Player(playerID)
	opp := gs.Player(gs.Opponent(playerID))
	turn := gs.Turns.TurnNumber()

	breakdown := ScoreBreakdown{
		Field: clampTerm(fieldPresence(p, turn) - fieldPresence(opp, turn)),
		Hand:  clampTerm(float64(len(p.Hand) - len(opp.Hand))),
		Life:  clampTerm(float64(len(p.Life) - len(opp.Life))),
		Don:   clampTerm(float64(len(p.DonField) - len(opp.DonField))),
		Tempo: clampTerm(tempoTerm(p) - tempoTerm(opp)),
	}
	breakdown.Total = weightField*breakdown.Field +
		weightHand*breakdown.Hand +
		weightLife*breakdown.Life +
		weightDon*breakdown.Don +
		weightTempo*breakdown.Tempo
	return breakdown
}

// Classify buckets the position for the given seat.
func (e *Evaluator) Classify(gs *game.GameState, playerID string) Position {
	p := gs.Player(playerID)
	score := e.Evaluate(gs, playerID)
	turn := gs.Turns.TurnNumber()

	pos := Position{Score: score}

	switch {
	case turn <= 3:
		pos.Phase = PhaseEarly
	case turn <= 7:
		pos.Phase = PhaseMid
	default:
		pos.Phase = PhaseLate
	}

	switch {
	case score.Total >= 2:
		pos.Tempo = TempoAhead
	case score.Total <= -2:
		pos.Tempo = TempoBehind
	default:
		pos.Tempo = TempoEven
	}

	switch {
	case score.Field >= 2:
		pos.Pressure = PressureApplying
	case score.Field <= -2:
		pos.Pressure = PressureReceiving
	default:
		pos.Pressure = PressureNeutral
	}

	activeDon := len(p.ActiveDon())
	switch {
	case activeDon >= 5 && len(p.Hand) >= 4:
		pos.Resource = ResourceFlush
	case activeDon >= 2 || len(p.Hand) >= 2:
		pos.Resource = ResourceStable
	default:
		pos.Resource = ResourceConstrained
	}

	switch {
	case len(p.Life) >= 3:
		pos.Life = LifeSafe
	case len(p.Life) == 2:
		pos.Life = LifeModerate
	default:
		pos.Life = LifeCritical
	}
	return pos
}

// fieldPresence values a board as power-in-thousands plus a body count
// bonus, so two 3000s edge out one 5000.
func fieldPresence(p *game.PlayerState, turn int) float64 {
	total := 0.0
	for _, c := range p.Field {
		total += float64(c.Power(turn))/1000 + 0.5
	}
	return total
}

// tempoTerm counts pieces ready to act: active field cards and active DON.
func tempoTerm(p *game.PlayerState) float64 {
	ready := 0
	for _, c := range p.Field {
		if c.Rest == game.StateActive {
			ready++
		}
	}
	return float64(ready) + float64(len(p.ActiveDon()))*0.5
}

func clampTerm(v float64) float64 {
	if v < termFloor {
		return termFloor
	}
	if v > termCeil {
		return termCeil
	}
	return v
}
