package ai

import (
	"github.com/paxtonking/optcgsim-web-sub005/internal/catalog"
	"github.com/paxtonking/optcgsim-web-sub005/internal/game"
)

// Threat score thresholds and per-signal deltas. Scores clamp to [0, 10]
// even when every signal applies.
const (
	threatMax      = 10
	criticalThreat = 7
	moderateThreat = 4

	deltaHighPower    = 3 // power >= 7000
	deltaGoodPower    = 2 // power >= 5000
	deltaRush         = 2
	deltaDoubleAttack = 2
	deltaBlocker      = 1
	deltaBanish       = 1
	deltaRemoval      = 2 // KO-capable effect
	deltaCardFlow     = 1 // draw/search effect
	deltaEfficiency   = 1 // power well above cost curve
)

// Threat pairs a card with its score.
type Threat struct {
	Card  *game.GameCard
	Score int
}

// Assessor ranks opposing cards by how dangerous they are. Like the
// evaluator it is pure.
type Assessor struct {
	lookup catalog.Lookup
}

// NewAssessor builds an assessor over the given catalog.
func NewAssessor(lookup catalog.Lookup) *Assessor {
	return &Assessor{lookup: lookup}
}

// Score rates one card 0..10 from its runtime keywords, printed effects and
// stat line.
func (a *Assessor) Score(gs *game.GameState, card *game.GameCard) int {
	turn := gs.Turns.TurnNumber()
	score := 0

	power := card.Power(turn)
	switch {
	case power >= 7000:
		score += deltaHighPower
	case power >= 5000:
		score += deltaGoodPower
	}

	if card.HasKeyword(catalog.KeywordRush) {
		score += deltaRush
	}
	if card.HasKeyword(catalog.KeywordDoubleAttack) {
		score += deltaDoubleAttack
	}
	if card.HasKeyword(catalog.KeywordBlocker) {
		score += deltaBlocker
	}
	if card.HasKeyword(catalog.KeywordBanish) {
		score += deltaBanish
	}

	if def, ok := a.lookup.GetCard(card.CatalogID); ok {
		for _, eff := range def.Effects {
			switch eff.Op {
			case catalog.OpKOCharacter:
				score += deltaRemoval
			case catalog.OpDrawCards, catalog.OpDeckReveal:
				score += deltaCardFlow
			}
		}
		if def.Cost > 0 && def.Power >= (def.Cost+1)*1000 {
			score += deltaEfficiency
		}
	}

	if score > threatMax {
		score = threatMax
	}
	return score
}

// Assess scores the opponent's leader and field for the given seat, highest
// first.
func (a *Assessor) Assess(gs *game.GameState, playerID string) []Threat {
	opp := gs.Player(gs.Opponent(playerID))
	var threats []Threat

	consider := func(card *game.GameCard) {
		threats = append(threats, Threat{Card: card, Score: a.Score(gs, card)})
	}
	if opp.Leader != nil {
		consider(opp.Leader)
	}
	for _, c := range opp.Field {
		consider(c)
	}

	// Insertion sort keeps the original order for ties.
	for i := 1; i < len(threats); i++ {
		for j := i; j > 0 && threats[j].Score > threats[j-1].Score; j-- {
			threats[j], threats[j-1] = threats[j-1], threats[j]
		}
	}
	return threats
}

// Critical filters threats scoring >= 7.
func (a *Assessor) Critical(gs *game.GameState, playerID string) []Threat {
	return filterThreats(a.Assess(gs, playerID), criticalThreat)
}

// Moderate filters threats scoring >= 4.
func (a *Assessor) Moderate(gs *game.GameState, playerID string) []Threat {
	return filterThreats(a.Assess(gs, playerID), moderateThreat)
}

func filterThreats(threats []Threat, floor int) []Threat {
	var kept []Threat
	for _, t := range threats {
		if t.Score >= floor {
			kept = append(kept, t)
		}
	}
	return kept
}

// BestKOTarget returns the most threatening opposing character an attack of
// the given power can KO. Only RESTED characters qualify; active characters
// are not legal attack targets.
func (a *Assessor) BestKOTarget(gs *game.GameState, playerID string, attackPower int) *game.GameCard {
	opp := gs.Player(gs.Opponent(playerID))
	turn := gs.Turns.TurnNumber()

	var best *game.GameCard
	bestScore := -1
	for _, c := range opp.Field {
		if c.Rest != game.StateRested {
			continue
		}
		if attackPower-c.Power(turn) <= 0 {
			continue
		}
		if score := a.Score(gs, c); score > bestScore {
			best, bestScore = c, score
		}
	}
	return best
}
