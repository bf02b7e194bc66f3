package ai

import (
	"fmt"
	"math/rand"

	"github.com/paxtonking/optcgsim-web-sub005/internal/catalog"
	"github.com/paxtonking/optcgsim-web-sub005/internal/game"
)

// HardStrategy makes no deliberate mistakes. It counts lethal, ranks
// threats, and evaluates candidate plays with the board evaluator before
// committing.
type HardStrategy struct {
	cfg       DifficultyConfig
	lookup    catalog.Lookup
	rng       *rand.Rand
	threat    *Assessor
	evaluator *Evaluator
}

// NewHardStrategy builds the hard variant.
func NewHardStrategy(cfg DifficultyConfig, lookup catalog.Lookup, seed int64) *HardStrategy {
	return &HardStrategy{
		cfg:       cfg,
		lookup:    lookup,
		rng:       rand.New(rand.NewSource(seed)),
		threat:    NewAssessor(lookup),
		evaluator: NewEvaluator(lookup),
	}
}

func (s *HardStrategy) Name() string             { return "hard" }
func (s *HardStrategy) Config() DifficultyConfig { return s.cfg }

func (s *HardStrategy) DecideMulligan(gs *game.GameState, playerID string) game.Decision {
	if keepHandOptimal(gs.Player(playerID), s.lookup, s.cfg.MulliganKeepThreshold) {
		return decide(game.ActionKeepHand, nil, 0.95, "hand meets the keep threshold")
	}
	return decide(game.ActionMulligan, nil, 0.95, "hand below the keep threshold")
}

// SelectCardToPlay scores each affordable card by stats plus abilities and
// plays the best one.
func (s *HardStrategy) SelectCardToPlay(gs *game.GameState, playerID string) *game.Decision {
	playable := playableCards(gs, playerID, s.lookup)
	if len(playable) == 0 {
		return nil
	}

	var best *game.GameCard
	bestValue := -1.0
	for _, c := range playable {
		if value := s.playValue(c); value > bestValue {
			best, bestValue = c, value
		}
	}
	d := decide(game.ActionPlayCard, game.PlayCardData{CardID: best.ID},
		0.9, fmt.Sprintf("highest play value %.1f", bestValue))
	return &d
}

// playValue weighs a card's body, keywords and effects against its cost.
func (s *HardStrategy) playValue(c *game.GameCard) float64 {
	def, ok := s.lookup.GetCard(c.CatalogID)
	if !ok {
		return 0.5
	}
	value := float64(def.Power) / 1000
	for _, kw := range def.Keywords {
		switch kw {
		case catalog.KeywordRush, catalog.KeywordDoubleAttack:
			value += 2
		case catalog.KeywordBlocker:
			value += 1.5
		}
	}
	value += float64(len(def.Effects))
	if def.Cost > 0 {
		value /= float64(def.Cost)
	}
	return value
}

// SelectDonAttachment commits every spare DON to the attacker that gains
// the most from crossing a power breakpoint.
func (s *HardStrategy) SelectDonAttachment(gs *game.GameState, playerID string) *game.Decision {
	p := gs.Player(playerID)
	free := len(p.ActiveDon())
	if free == 0 {
		return nil
	}
	cheapest := -1
	for _, c := range p.Hand {
		cost := cardCost(c, s.lookup)
		if cheapest == -1 || cost < cheapest {
			cheapest = cost
		}
	}
	spare := free
	if cheapest >= 0 && cheapest <= free {
		spare = free - cheapest
	}
	if spare <= 0 {
		return nil
	}

	turn := gs.Turns.TurnNumber()
	opp := gs.Player(gs.Opponent(playerID))
	oppLeaderPower := 0
	if opp.Leader != nil {
		oppLeaderPower = opp.Leader.Power(turn)
	}

	// Prefer the attacker that gets pushed past the opposing leader.
	var target *game.GameCard
	candidates := make([]*game.GameCard, 0, len(p.Field)+1)
	if p.Leader != nil {
		candidates = append(candidates, p.Leader)
	}
	candidates = append(candidates, p.Field...)
	for _, c := range candidates {
		if c.Rest != game.StateActive || c.HasAttacked || len(c.AttachedDon) >= 3 {
			continue
		}
		room := 3 - len(c.AttachedDon)
		boost := spare
		if boost > room {
			boost = room
		}
		crosses := c.Power(turn) <= oppLeaderPower && c.Power(turn)+boost*1000 > oppLeaderPower
		if crosses {
			target = c
			break
		}
		if target == nil {
			target = c
		}
	}
	if target == nil {
		return nil
	}
	count := spare
	if count > 3-len(target.AttachedDon) {
		count = 3 - len(target.AttachedDon)
	}
	d := decide(game.ActionAttachDon, game.AttachDonData{TargetID: target.ID, Count: count},
		0.9, "DON where it crosses a breakpoint")
	return &d
}

// SelectAttackTarget goes for lethal when the hit count is there, otherwise
// trades into the best KO target, otherwise chips the leader.
func (s *HardStrategy) SelectAttackTarget(gs *game.GameState, playerID string) *game.Decision {
	options := attackOptions(gs, playerID)
	if len(options) == 0 {
		return nil
	}
	turn := gs.Turns.TurnNumber()
	opp := gs.Player(gs.Opponent(playerID))

	if s.cfg.LethalCalculation {
		hits := 0
		for i := range options {
			if options[i].IsLeader {
				attacker := options[i].Attacker
				hits++
				if attacker.HasKeyword(catalog.KeywordDoubleAttack) {
					hits++
				}
			}
		}
		// Life cards plus the finishing hit on an empty pile.
		if hits > len(opp.Life) {
			var best *attackOption
			for i := range options {
				if options[i].IsLeader && (best == nil || options[i].Attacker.Power(turn) > best.Attacker.Power(turn)) {
					best = &options[i]
				}
			}
			if best != nil {
				d := decide(game.ActionDeclareAttack,
					game.DeclareAttackData{AttackerID: best.Attacker.ID, TargetID: best.Target.ID},
					1.0, fmt.Sprintf("lethal line: %d hits vs %d life", hits, len(opp.Life)))
				return &d
			}
		}
	}

	// Trade into the most threatening KO-able character.
	var bestTrade *attackOption
	bestScore := -1
	for i := range options {
		opt := &options[i]
		if opt.IsLeader {
			continue
		}
		if opt.Attacker.Power(turn)-opt.Target.Power(turn) <= 0 {
			continue
		}
		if score := s.threat.Score(gs, opt.Target); score > bestScore {
			bestTrade, bestScore = opt, score
		}
	}
	if bestTrade != nil && bestScore >= moderateThreat {
		d := decide(game.ActionDeclareAttack,
			game.DeclareAttackData{AttackerID: bestTrade.Attacker.ID, TargetID: bestTrade.Target.ID},
			0.9, fmt.Sprintf("KO on threat %d", bestScore))
		return &d
	}

	var leaderOpt *attackOption
	for i := range options {
		if options[i].IsLeader && (leaderOpt == nil || options[i].Attacker.Power(turn) > leaderOpt.Attacker.Power(turn)) {
			leaderOpt = &options[i]
		}
	}
	if leaderOpt == nil {
		return nil
	}
	d := decide(game.ActionDeclareAttack,
		game.DeclareAttackData{AttackerID: leaderOpt.Attacker.ID, TargetID: leaderOpt.Target.ID},
		0.85, "chip damage on the leader")
	return &d
}

// DecideBlock blocks exactly when eating the hit is worse than losing the
// blocker: life-threatening attacks or favorable trades.
func (s *HardStrategy) DecideBlock(gs *game.GameState, playerID string) game.Decision {
	ctx := gs.Combat
	blockers := availableBlockers(gs, playerID)
	if ctx == nil || len(blockers) == 0 {
		return decide(game.ActionSkipBlocker, nil, 0.9, "no blocker available")
	}
	p := gs.Player(playerID)
	turn := gs.Turns.TurnNumber()

	if ctx.TargetType == game.TargetLeader {
		hits := ctx.RemainingHits
		if hits >= len(p.Life) || len(p.Life) <= 2 {
			// Pick the blocker that survives if any does.
			pick := blockers[0]
			for _, b := range blockers {
				if b.Power(turn) >= ctx.AttackPower {
					pick = b
					break
				}
			}
			return decide(game.ActionSelectBlocker,
				game.SelectBlockerData{BlockerID: pick.ID},
				0.95, "blocking a life-threatening attack")
		}
		for _, b := range blockers {
			if b.Power(turn) >= ctx.AttackPower {
				return decide(game.ActionSelectBlocker,
					game.SelectBlockerData{BlockerID: b.ID},
					0.9, "free block, blocker survives")
			}
		}
	}
	return decide(game.ActionSkipBlocker, nil, 0.85, "taking the hit is cheaper")
}

// DecideCounter finds the cheapest exact counter line, spending only when
// the outcome actually flips or life is on the line.
func (s *HardStrategy) DecideCounter(gs *game.GameState, playerID string) game.Decision {
	ctx := gs.Combat
	if ctx == nil {
		return decide(game.ActionPassCounter, nil, 0.95, "no combat to answer")
	}
	target, _ := gs.FindCard(ctx.TargetID)
	if target == nil {
		return decide(game.ActionPassCounter, nil, 0.95, "target gone")
	}
	p := gs.Player(playerID)
	needed := ctx.AttackPower - target.Power(gs.Turns.TurnNumber()) - ctx.CounterPower
	if needed <= 0 {
		return decide(game.ActionPassCounter, nil, 0.95, "attack already fails")
	}

	worthDefending := ctx.TargetType == game.TargetLeader && len(p.Life) <= 2
	if ctx.TargetType == game.TargetCharacter {
		worthDefending = s.threat.Score(gs, target) >= moderateThreat
	}
	if !worthDefending {
		return decide(game.ActionPassCounter, nil, 0.85, "hit is affordable, saving counters")
	}

	// Smallest combination that closes the gap, greedy from largest value.
	usable := counterCards(gs, playerID, s.lookup)
	values := make(map[string]int, len(usable))
	for _, c := range usable {
		if def, ok := s.lookup.GetCard(c.CatalogID); ok {
			values[c.ID] = def.CounterValue
		}
	}
	for i := 1; i < len(usable); i++ {
		for j := i; j > 0 && values[usable[j].ID] > values[usable[j-1].ID]; j-- {
			usable[j], usable[j-1] = usable[j-1], usable[j]
		}
	}
	var picked []string
	added := 0
	for _, c := range usable {
		if added >= needed {
			break
		}
		if values[c.ID] > 0 {
			picked = append(picked, c.ID)
			added += values[c.ID]
		}
	}
	if added < needed {
		return decide(game.ActionPassCounter, nil, 0.9, "gap unreachable, conceding the hit")
	}
	return decide(game.ActionUseCounter, game.UseCounterData{CardIDs: picked},
		0.95, fmt.Sprintf("minimal counter line for gap %d", needed))
}

// SelectEffectTargets picks by threat for hostile ops and by play value for
// friendly ones.
func (s *HardStrategy) SelectEffectTargets(gs *game.GameState, playerID string, pending *game.PendingEffect) game.Decision {
	return resolvePending(gs, playerID, pending, func(candidates []string, want int) []string {
		if want > len(candidates) {
			want = len(candidates)
		}
		ranked := append([]string(nil), candidates...)
		score := func(id string) float64 {
			card, owner := gs.FindCard(id)
			if card == nil {
				return 0
			}
			if owner != nil && owner.PlayerID != playerID {
				return float64(s.threat.Score(gs, card))
			}
			return s.playValue(card)
		}
		for i := 1; i < len(ranked); i++ {
			for j := i; j > 0 && score(ranked[j]) > score(ranked[j-1]); j-- {
				ranked[j], ranked[j-1] = ranked[j-1], ranked[j]
			}
		}
		return ranked[:want]
	})
}
