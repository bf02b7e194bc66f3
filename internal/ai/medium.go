package ai

import (
	"fmt"
	"math/rand"

	"github.com/paxtonking/optcgsim-web-sub005/internal/catalog"
	"github.com/paxtonking/optcgsim-web-sub005/internal/game"
)

// MediumStrategy plays threat-aware: it ranks the opponent's board and
// spends resources where they change outcomes, with a small mistake rate.
type MediumStrategy struct {
	cfg    DifficultyConfig
	lookup catalog.Lookup
	rng    *rand.Rand
	threat *Assessor
}

// NewMediumStrategy builds the medium variant.
func NewMediumStrategy(cfg DifficultyConfig, lookup catalog.Lookup, seed int64) *MediumStrategy {
	return &MediumStrategy{
		cfg:    cfg,
		lookup: lookup,
		rng:    rand.New(rand.NewSource(seed)),
		threat: NewAssessor(lookup),
	}
}

func (s *MediumStrategy) Name() string             { return "medium" }
func (s *MediumStrategy) Config() DifficultyConfig { return s.cfg }

func (s *MediumStrategy) mistake() bool {
	return s.cfg.MistakeChance > 0 && s.rng.Float64() < s.cfg.MistakeChance
}

func (s *MediumStrategy) DecideMulligan(gs *game.GameState, playerID string) game.Decision {
	keep := keepHandOptimal(gs.Player(playerID), s.lookup, s.cfg.MulliganKeepThreshold)
	if s.mistake() {
		keep = !keep
	}
	if keep {
		return decide(game.ActionKeepHand, nil, 0.8, "curve looks fine")
	}
	return decide(game.ActionMulligan, nil, 0.8, "not enough early plays")
}

// SelectCardToPlay spends as much DON as possible on the biggest body.
func (s *MediumStrategy) SelectCardToPlay(gs *game.GameState, playerID string) *game.Decision {
	playable := playableCards(gs, playerID, s.lookup)
	if len(playable) == 0 {
		return nil
	}
	pick := playable[len(playable)-1]
	if s.mistake() {
		pick = playable[s.rng.Intn(len(playable))]
	}
	d := decide(game.ActionPlayCard, game.PlayCardData{CardID: pick.ID},
		0.7, fmt.Sprintf("best affordable play at cost %d", cardCost(pick, s.lookup)))
	return &d
}

// SelectDonAttachment pumps the strongest prospective attacker with leftover
// DON once the hand is deployed.
func (s *MediumStrategy) SelectDonAttachment(gs *game.GameState, playerID string) *game.Decision {
	p := gs.Player(playerID)
	free := len(p.ActiveDon())
	if free == 0 || s.rng.Float64() > s.cfg.DonEfficiency {
		return nil
	}
	// Attach only DON that cannot still pay for a card this turn.
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
	target := p.Leader
	for _, c := range p.Field {
		if c.Rest != game.StateActive || c.HasAttacked {
			continue
		}
		if target == nil || c.Power(turn) > target.Power(turn) {
			target = c
		}
	}
	if target == nil || len(target.AttachedDon) >= 3 {
		return nil
	}
	count := spare
	if count > 3-len(target.AttachedDon) {
		count = 3 - len(target.AttachedDon)
	}
	d := decide(game.ActionAttachDon, game.AttachDonData{TargetID: target.ID, Count: count},
		0.7, "spare DON onto the best attacker")
	return &d
}

// SelectAttackTarget removes the biggest KO-able threat first, otherwise
// pressures the leader.
func (s *MediumStrategy) SelectAttackTarget(gs *game.GameState, playerID string) *game.Decision {
	options := attackOptions(gs, playerID)
	if len(options) == 0 {
		return nil
	}
	turn := gs.Turns.TurnNumber()

	if s.cfg.ThreatAwareness && !s.mistake() {
		var best *attackOption
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
				best, bestScore = opt, score
			}
		}
		if best != nil && bestScore >= moderateThreat {
			d := decide(game.ActionDeclareAttack,
				game.DeclareAttackData{AttackerID: best.Attacker.ID, TargetID: best.Target.ID},
				0.8, fmt.Sprintf("removing threat scored %d", bestScore))
			return &d
		}
	}

	// Default: strongest attacker into the leader.
	var leaderOpt *attackOption
	for i := range options {
		opt := &options[i]
		if !opt.IsLeader {
			continue
		}
		if leaderOpt == nil || opt.Attacker.Power(turn) > leaderOpt.Attacker.Power(turn) {
			leaderOpt = opt
		}
	}
	if leaderOpt == nil {
		leaderOpt = &options[s.rng.Intn(len(options))]
	}
	d := decide(game.ActionDeclareAttack,
		game.DeclareAttackData{AttackerID: leaderOpt.Attacker.ID, TargetID: leaderOpt.Target.ID},
		0.7, "pressuring the leader")
	return &d
}

// DecideBlock blocks when life is short or the blocker trades up.
func (s *MediumStrategy) DecideBlock(gs *game.GameState, playerID string) game.Decision {
	ctx := gs.Combat
	blockers := availableBlockers(gs, playerID)
	if ctx == nil || len(blockers) == 0 || s.mistake() {
		return decide(game.ActionSkipBlocker, nil, 0.7, "no block")
	}
	p := gs.Player(playerID)
	turn := gs.Turns.TurnNumber()

	lifeShort := len(p.Life) <= 2
	leaderTargeted := ctx.TargetType == game.TargetLeader
	if leaderTargeted && (lifeShort || ctx.AttackPower <= blockers[0].Power(turn)) {
		return decide(game.ActionSelectBlocker,
			game.SelectBlockerData{BlockerID: blockers[0].ID},
			0.7, "protecting life total")
	}
	return decide(game.ActionSkipBlocker, nil, 0.7, "attack not worth a blocker")
}

// DecideCounter spends the minimum counter value that flips the outcome.
func (s *MediumStrategy) DecideCounter(gs *game.GameState, playerID string) game.Decision {
	ctx := gs.Combat
	if ctx == nil {
		return decide(game.ActionPassCounter, nil, 0.9, "no combat to answer")
	}
	target, _ := gs.FindCard(ctx.TargetID)
	if target == nil {
		return decide(game.ActionPassCounter, nil, 0.9, "target gone")
	}
	needed := ctx.AttackPower - target.Power(gs.Turns.TurnNumber()) - ctx.CounterPower
	if needed <= 0 {
		return decide(game.ActionPassCounter, nil, 0.9, "attack already fails")
	}
	if s.rng.Float64() > s.cfg.CounterEfficiency {
		return decide(game.ActionPassCounter, nil, 0.6, "holding counters")
	}

	usable := counterCards(gs, playerID, s.lookup)
	var picked []string
	added := 0
	for _, c := range usable {
		if added >= needed {
			break
		}
		if def, ok := s.lookup.GetCard(c.CatalogID); ok && def.CounterValue > 0 {
			picked = append(picked, c.ID)
			added += def.CounterValue
		}
	}
	if added < needed {
		// Cannot flip the outcome, keep the cards.
		return decide(game.ActionPassCounter, nil, 0.8, "cannot reach the gap")
	}
	return decide(game.ActionUseCounter, game.UseCounterData{CardIDs: picked},
		0.8, fmt.Sprintf("exact counter for gap %d", needed))
}

// SelectEffectTargets prefers the highest-threat candidates.
func (s *MediumStrategy) SelectEffectTargets(gs *game.GameState, playerID string, pending *game.PendingEffect) game.Decision {
	return resolvePending(gs, playerID, pending, func(candidates []string, want int) []string {
		return s.rankByThreat(gs, candidates, want)
	})
}

// rankByThreat orders candidate card ids by threat score, best first.
func (s *MediumStrategy) rankByThreat(gs *game.GameState, candidates []string, want int) []string {
	if want > len(candidates) {
		want = len(candidates)
	}
	ranked := append([]string(nil), candidates...)
	scores := make(map[string]int, len(ranked))
	for _, id := range ranked {
		if card, _ := gs.FindCard(id); card != nil {
			scores[id] = s.threat.Score(gs, card)
		}
	}
	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0 && scores[ranked[j]] > scores[ranked[j-1]]; j-- {
			ranked[j], ranked[j-1] = ranked[j-1], ranked[j]
		}
	}
	return ranked[:want]
}
