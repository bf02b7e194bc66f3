package ai

import (
	"fmt"
	"strings"
	"time"

	"github.com/paxtonking/optcgsim-web-sub005/internal/catalog"
	"github.com/paxtonking/optcgsim-web-sub005/internal/game"
)

// Strategy is the full decision surface a seat must be able to answer. It is
// identical to what a human client resolves; the engine has no bot-specific
// code path. Implementations never mutate state, they only produce the same
// action payloads a human would submit.
type Strategy interface {
	Name() string
	Config() DifficultyConfig

	DecideMulligan(gs *game.GameState, playerID string) game.Decision
	SelectCardToPlay(gs *game.GameState, playerID string) *game.Decision
	SelectDonAttachment(gs *game.GameState, playerID string) *game.Decision
	SelectAttackTarget(gs *game.GameState, playerID string) *game.Decision
	DecideBlock(gs *game.GameState, playerID string) game.Decision
	DecideCounter(gs *game.GameState, playerID string) game.Decision
	SelectEffectTargets(gs *game.GameState, playerID string, pending *game.PendingEffect) game.Decision
}

// DifficultyConfig parameterizes a strategy variant.
type DifficultyConfig struct {
	// MistakeChance is the probability of deliberately choosing a
	// sub-optimal legal option.
	MistakeChance float64
	// MulliganKeepThreshold is the minimum count of cheap (cost <= 3) cards
	// a starting hand needs to be kept.
	MulliganKeepThreshold int
	// ThreatAwareness enables threat-ranked target selection.
	ThreatAwareness bool
	// LethalCalculation enables counting available hits against remaining
	// life before choosing targets.
	LethalCalculation bool
	// LookAheadDepth is how many candidate lines the strategy evaluates.
	LookAheadDepth int
	// CounterEfficiency scales willingness to spend counters (0..1).
	CounterEfficiency float64
	// DonEfficiency scales willingness to attach DON (0..1).
	DonEfficiency float64
	// ThinkDelay is cosmetic pacing before submitting, no lock is held.
	ThinkDelay time.Duration
}

// Difficulty presets.
func EasyConfig() DifficultyConfig {
	return DifficultyConfig{
		MistakeChance:         0.25,
		MulliganKeepThreshold: 1,
		CounterEfficiency:     0.4,
		DonEfficiency:         0.5,
		ThinkDelay:            800 * time.Millisecond,
	}
}

func MediumConfig() DifficultyConfig {
	return DifficultyConfig{
		MistakeChance:         0.10,
		MulliganKeepThreshold: 2,
		ThreatAwareness:       true,
		CounterEfficiency:     0.7,
		DonEfficiency:         0.8,
		ThinkDelay:            1200 * time.Millisecond,
	}
}

func HardConfig() DifficultyConfig {
	return DifficultyConfig{
		MulliganKeepThreshold: 2,
		ThreatAwareness:       true,
		LethalCalculation:     true,
		LookAheadDepth:        2,
		CounterEfficiency:     1.0,
		DonEfficiency:         1.0,
		ThinkDelay:            1500 * time.Millisecond,
	}
}

// NewStrategy builds the strategy for a difficulty level string. "basic" is
// a backward-compatible alias of "easy".
func NewStrategy(level string, lookup catalog.Lookup, seed int64) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "easy", "basic":
		return NewEasyStrategy(EasyConfig(), lookup, seed), nil
	case "medium":
		return NewMediumStrategy(MediumConfig(), lookup, seed), nil
	case "hard":
		return NewHardStrategy(HardConfig(), lookup, seed), nil
	default:
		return nil, fmt.Errorf("unknown difficulty %q", level)
	}
}

// fieldLimit mirrors the engine's field size cap.
const fieldLimit = 5

// cheapCardCount counts hand cards on the early curve (cost <= 3). The
// mulligan keep rule for every difficulty is a threshold over this count.
func cheapCardCount(p *game.PlayerState, lookup catalog.Lookup) int {
	n := 0
	for _, c := range p.Hand {
		if def, ok := lookup.GetCard(c.CatalogID); ok && def.Cost <= 3 && def.Type != catalog.TypeEvent {
			n++
		} else if !ok {
			n++ // vanilla cards count as playable
		}
	}
	return n
}

// keepHandOptimal is the shared deterministic mulligan rule.
func keepHandOptimal(p *game.PlayerState, lookup catalog.Lookup, threshold int) bool {
	return cheapCardCount(p, lookup) >= threshold
}

// playableCards lists hand cards the seat can afford right now, cheapest
// first.
func playableCards(gs *game.GameState, playerID string, lookup catalog.Lookup) []*game.GameCard {
	p := gs.Player(playerID)
	budget := len(p.ActiveDon())
	fieldFull := len(p.Field) >= fieldLimit

	var playable []*game.GameCard
	for _, c := range p.Hand {
		def, ok := lookup.GetCard(c.CatalogID)
		cost := 0
		cardType := catalog.TypeCharacter
		if ok {
			cost = def.Cost
			cardType = def.Type
		}
		if cost > budget {
			continue
		}
		if fieldFull && cardType != catalog.TypeEvent {
			continue
		}
		playable = append(playable, c)
	}
	for i := 1; i < len(playable); i++ {
		for j := i; j > 0 && cardCost(playable[j], lookup) < cardCost(playable[j-1], lookup); j-- {
			playable[j], playable[j-1] = playable[j-1], playable[j]
		}
	}
	return playable
}

func cardCost(c *game.GameCard, lookup catalog.Lookup) int {
	if def, ok := lookup.GetCard(c.CatalogID); ok {
		return def.Cost
	}
	return 0
}

// attackOption is one legal attacker/target pair.
type attackOption struct {
	Attacker *game.GameCard
	Target   *game.GameCard
	IsLeader bool
}

// attackOptions enumerates every legal attack for the seat, honoring the
// first-personal-turn ban, rest state, the once-per-turn rule and Rush.
func attackOptions(gs *game.GameState, playerID string) []attackOption {
	if gs.Turns.PersonalTurn(playerID) <= 1 || gs.Combat != nil {
		return nil
	}
	p := gs.Player(playerID)
	opp := gs.Player(gs.Opponent(playerID))
	turn := gs.Turns.TurnNumber()

	var attackers []*game.GameCard
	if p.Leader != nil && p.Leader.Rest == game.StateActive && !p.Leader.HasAttacked {
		attackers = append(attackers, p.Leader)
	}
	for _, c := range p.Field {
		if c.Rest != game.StateActive || c.HasAttacked {
			continue
		}
		if c.TurnPlayed == turn && !c.HasKeyword(catalog.KeywordRush) {
			continue
		}
		attackers = append(attackers, c)
	}

	var targets []*game.GameCard
	if opp.Leader != nil {
		targets = append(targets, opp.Leader)
	}
	for _, c := range opp.Field {
		if c.Rest == game.StateRested {
			targets = append(targets, c)
		}
	}

	var options []attackOption
	for _, attacker := range attackers {
		for _, target := range targets {
			options = append(options, attackOption{
				Attacker: attacker,
				Target:   target,
				IsLeader: target.Zone == game.ZoneLeader,
			})
		}
	}
	return options
}

// counterCards lists hand cards usable during the counter step: printed
// counter values plus counter-timing events the seat can pay for.
func counterCards(gs *game.GameState, playerID string, lookup catalog.Lookup) []*game.GameCard {
	p := gs.Player(playerID)
	budget := len(p.ActiveDon())

	var usable []*game.GameCard
	for _, c := range p.Hand {
		def, ok := lookup.GetCard(c.CatalogID)
		if !ok {
			continue
		}
		if def.CounterValue > 0 {
			usable = append(usable, c)
			continue
		}
		for _, eff := range def.Effects {
			if eff.Timing == catalog.TimingCounter && def.Cost <= budget {
				usable = append(usable, c)
				break
			}
		}
	}
	return usable
}

// availableBlockers lists active Blocker-keyword field cards.
func availableBlockers(gs *game.GameState, playerID string) []*game.GameCard {
	p := gs.Player(playerID)
	var blockers []*game.GameCard
	for _, c := range p.Field {
		if c.Rest == game.StateActive && c.HasKeyword(catalog.KeywordBlocker) {
			blockers = append(blockers, c)
		}
	}
	return blockers
}

// resolvePending builds the resolve action for any pending category. The
// pickIDs callback orders candidate ids best-first; shared across variants
// so each difficulty only customizes target preference.
func resolvePending(gs *game.GameState, playerID string, pending *game.PendingEffect,
	pickIDs func([]string, int) []string) game.Decision {

	p := gs.Player(playerID)

	switch pending.Category {
	case game.PendingActivate, game.PendingEvent, game.PendingCounter, game.PendingFieldSelect:
		want := pending.MaxSelections
		if want < pending.MinSelections {
			want = pending.MinSelections
		}
		targets := pickIDs(pending.ValidTargets, want)
		if len(targets) < pending.MinSelections {
			if skip := game.SkipActionFor(pending.Category); skip != "" && pending.CanSkip {
				return decide(skip, nil, 0.9, "no worthwhile targets")
			}
			targets = pickIDs(pending.ValidTargets, pending.MinSelections)
		}
		return decide(game.ResolveActionFor(pending.Category),
			game.ResolvePendingData{EffectID: pending.ID, TargetIDs: targets},
			0.7, fmt.Sprintf("selected %d targets", len(targets)))

	case game.PendingDeckReveal:
		selected := pickIDs(pending.SelectableCardIDs, pending.MaxSelections)
		if len(selected) < pending.MinSelections && pending.CanSkip {
			return decide(game.ActionSkipDeckReveal, nil, 0.9, "nothing worth taking")
		}
		return decide(game.ActionResolveDeckReveal,
			game.ResolvePendingData{EffectID: pending.ID, SelectedIDs: selected},
			0.8, "took revealed cards")

	case game.PendingHandSelect:
		need := pending.MinSelections
		if need == 0 && pending.CanSkip {
			return decide(game.ActionSkipHandSelect, nil, 0.9, "keeping hand intact")
		}
		selected := pickIDs(pending.ValidTargets, need)
		return decide(game.ActionResolveHandSelect,
			game.ResolvePendingData{EffectID: pending.ID, SelectedIDs: selected},
			0.7, fmt.Sprintf("gave up %d hand cards", len(selected)))

	case game.PendingChoice:
		optionID := ""
		for _, opt := range pending.Options {
			if opt.Enabled {
				optionID = opt.ID
				break
			}
		}
		if optionID == "" && len(pending.Options) > 0 {
			optionID = pending.Options[0].ID
		}
		return decide(game.ActionResolveChoice,
			game.ResolvePendingData{EffectID: pending.ID, OptionID: optionID},
			0.6, fmt.Sprintf("chose option %s", optionID))

	case game.PendingAdditionalCost:
		pay := false
		switch pending.CostType {
		case catalog.CostRestDon:
			pay = len(p.ActiveDon()) >= pending.CostAmount
		case catalog.CostTrashHand:
			pay = len(p.Hand) > pending.CostAmount // keep at least one card back
		}
		return decide(game.ActionResolveAdditionalCost,
			game.ResolvePendingData{EffectID: pending.ID, Pay: pay},
			0.7, fmt.Sprintf("pay=%t for %s cost", pay, pending.CostType))

	case game.PendingPreGame:
		picked := pickIDs(pending.ValidCardIDs, 1)
		if len(picked) == 0 {
			return decide(game.ActionSkipPreGame, nil, 0.8, "no pre-game pick")
		}
		return decide(game.ActionResolvePreGame,
			game.ResolvePendingData{EffectID: pending.ID, CardID: picked[0]},
			0.8, "took pre-game card")

	default:
		if skip := game.SkipActionFor(pending.Category); skip != "" {
			return decide(skip, nil, 0.5, "unknown pending category")
		}
		return decide(game.ResolveActionFor(pending.Category),
			game.ResolvePendingData{EffectID: pending.ID}, 0.3, "unknown pending category")
	}
}

// decide wraps an action with its advisory metadata.
func decide(actionType game.ActionType, payload interface{}, confidence float64, reasoning string) game.Decision {
	return game.Decision{
		Action:     game.NewAction(actionType, payload),
		Confidence: confidence,
		Reasoning:  reasoning,
	}
}
