package ai

import (
	"fmt"
	"math/rand"

	"github.com/paxtonking/optcgsim-web-sub005/internal/catalog"
	"github.com/paxtonking/optcgsim-web-sub005/internal/game"
)

// overCounterStopChance is the probability the easy strategy stops adding
// counter cards once the defense already suffices. Deliberately stochastic:
// half the time it keeps over-committing. Difficulty flavor, not a bug.
const overCounterStopChance = 0.50

// EasyStrategy plays straightforwardly and makes deliberate mistakes at the
// configured rate. It ignores threat ranking entirely.
type EasyStrategy struct {
	cfg    DifficultyConfig
	lookup catalog.Lookup
	rng    *rand.Rand
}

// NewEasyStrategy builds the easy variant. The seed makes its randomness
// reproducible in tests.
func NewEasyStrategy(cfg DifficultyConfig, lookup catalog.Lookup, seed int64) *EasyStrategy {
	return &EasyStrategy{cfg: cfg, lookup: lookup, rng: rand.New(rand.NewSource(seed))}
}

func (s *EasyStrategy) Name() string             { return "easy" }
func (s *EasyStrategy) Config() DifficultyConfig { return s.cfg }

func (s *EasyStrategy) mistake() bool {
	return s.cfg.MistakeChance > 0 && s.rng.Float64() < s.cfg.MistakeChance
}

// DecideMulligan keeps any hand with enough cheap cards, but flips the
// decision at the mistake rate.
func (s *EasyStrategy) DecideMulligan(gs *game.GameState, playerID string) game.Decision {
	keep := keepHandOptimal(gs.Player(playerID), s.lookup, s.cfg.MulliganKeepThreshold)
	if s.mistake() {
		keep = !keep
	}
	if keep {
		return decide(game.ActionKeepHand, nil, 0.6, "hand has playable early cards")
	}
	return decide(game.ActionMulligan, nil, 0.6, "hand too expensive, shipping it")
}

// SelectCardToPlay plays a random affordable card, or nothing.
func (s *EasyStrategy) SelectCardToPlay(gs *game.GameState, playerID string) *game.Decision {
	playable := playableCards(gs, playerID, s.lookup)
	if len(playable) == 0 {
		return nil
	}
	pick := playable[len(playable)-1] // most expensive affordable
	if s.mistake() {
		pick = playable[s.rng.Intn(len(playable))]
	}
	d := decide(game.ActionPlayCard, game.PlayCardData{CardID: pick.ID},
		0.5, "playing an affordable card")
	return &d
}

// SelectDonAttachment attaches a single DON to the leader about half the
// time it could.
func (s *EasyStrategy) SelectDonAttachment(gs *game.GameState, playerID string) *game.Decision {
	p := gs.Player(playerID)
	if p.Leader == nil || len(p.ActiveDon()) == 0 {
		return nil
	}
	if len(p.Leader.AttachedDon) >= 3 {
		return nil
	}
	if s.rng.Float64() > s.cfg.DonEfficiency {
		return nil
	}
	d := decide(game.ActionAttachDon, game.AttachDonData{TargetID: p.Leader.ID, Count: 1},
		0.5, "pumping the leader")
	return &d
}

// SelectAttackTarget picks a random legal attack.
func (s *EasyStrategy) SelectAttackTarget(gs *game.GameState, playerID string) *game.Decision {
	options := attackOptions(gs, playerID)
	if len(options) == 0 {
		return nil
	}
	opt := options[s.rng.Intn(len(options))]
	d := decide(game.ActionDeclareAttack,
		game.DeclareAttackData{AttackerID: opt.Attacker.ID, TargetID: opt.Target.ID},
		0.4, "attacking whatever looked reachable")
	return &d
}

// DecideBlock blocks with the first available blocker, unless a mistake
// skips it.
func (s *EasyStrategy) DecideBlock(gs *game.GameState, playerID string) game.Decision {
	blockers := availableBlockers(gs, playerID)
	if len(blockers) == 0 || s.mistake() {
		return decide(game.ActionSkipBlocker, nil, 0.5, "letting it through")
	}
	return decide(game.ActionSelectBlocker,
		game.SelectBlockerData{BlockerID: blockers[0].ID},
		0.5, "throwing a blocker in the way")
}

// DecideCounter rolls CounterEfficiency once per attack, whatever the
// target, and passes on a miss. On a hit it stacks counter cards until the
// attack would fail, then stops with probability overCounterStopChance per
// extra card.
func (s *EasyStrategy) DecideCounter(gs *game.GameState, playerID string) game.Decision {
	ctx := gs.Combat
	if ctx == nil {
		return decide(game.ActionPassCounter, nil, 0.9, "no combat to answer")
	}
	usable := counterCards(gs, playerID, s.lookup)
	if len(usable) == 0 || s.rng.Float64() > s.cfg.CounterEfficiency {
		return decide(game.ActionPassCounter, nil, 0.5, "saving the hand")
	}

	target, _ := gs.FindCard(ctx.TargetID)
	if target == nil {
		return decide(game.ActionPassCounter, nil, 0.5, "target gone")
	}
	needed := ctx.AttackPower - target.Power(gs.Turns.TurnNumber()) - ctx.CounterPower

	var picked []string
	added := 0
	for _, c := range usable {
		if added >= needed {
			// Already enough, but keep stacking half the time.
			if s.rng.Float64() < overCounterStopChance {
				break
			}
		}
		picked = append(picked, c.ID)
		if def, ok := s.lookup.GetCard(c.CatalogID); ok {
			added += def.CounterValue
		}
	}
	if len(picked) == 0 {
		return decide(game.ActionPassCounter, nil, 0.5, "nothing worth spending")
	}
	return decide(game.ActionUseCounter, game.UseCounterData{CardIDs: picked},
		0.5, fmt.Sprintf("countering with %d cards", len(picked)))
}

// SelectEffectTargets answers any pending decision with a random legal pick.
func (s *EasyStrategy) SelectEffectTargets(gs *game.GameState, playerID string, pending *game.PendingEffect) game.Decision {
	return resolvePending(gs, playerID, pending, func(candidates []string, want int) []string {
		if want > len(candidates) {
			want = len(candidates)
		}
		shuffled := append([]string(nil), candidates...)
		s.rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		return shuffled[:want]
	})
}
