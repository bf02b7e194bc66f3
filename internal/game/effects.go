package game

import (
	"github.com/google/uuid"
	"github.com/paxtonking/optcgsim-web-sub005/internal/catalog"
	"github.com/paxtonking/optcgsim-web-sub005/internal/game/rules"
)

// executeEffect runs a structured card effect. Effects that need player
// input become pending decisions; everything else applies immediately. An
// additional cost always gates first.
func (ms *matchState) executeEffect(owner *PlayerState, source *GameCard, eff *catalog.EffectDef, origin PendingCategory) {
	if eff.Cost != nil {
		ms.state.Pending.Push(&PendingEffect{
			ID:         uuid.NewString(),
			Category:   PendingAdditionalCost,
			PlayerID:   owner.PlayerID,
			SourceID:   source.ID,
			EffectOp:   eff.Op,
			CostType:   eff.Cost.Type,
			CostAmount: eff.Cost.Amount,
			followUp:   eff,
		})
		ms.bus.Publish(rules.NewEvent(rules.EventPendingCreated, source.ID, "", owner.PlayerID))
		return
	}
	ms.executeEffectBody(owner, source, eff, origin)
}

func (ms *matchState) executeEffectBody(owner *PlayerState, source *GameCard, eff *catalog.EffectDef, origin PendingCategory) {
	switch eff.Op {
	case catalog.OpDrawCards:
		ms.drawCards(owner, max(eff.Amount, 1))
	case catalog.OpReadyDon:
		ms.readyDon(owner, max(eff.Amount, 1))
	case catalog.OpDeckReveal:
		ms.queueDeckReveal(owner, source, eff)
	case catalog.OpTrashFromHand:
		ms.queueHandSelect(owner, source, eff, nil)
	case catalog.OpChooseOption:
		ms.queueChoice(owner, source, eff)
	case catalog.OpTakeCard:
		ms.createPendingForEffect(owner, source, eff, PendingPreGame)
	case catalog.OpPowerBoost, catalog.OpKOCharacter, catalog.OpRestCharacter,
		catalog.OpReturnToHand, catalog.OpGrantKeyword:
		ms.queueTargetedOp(owner, source, eff, origin)
	}
}

func (ms *matchState) readyDon(p *PlayerState, n int) {
	for _, don := range p.DonField {
		if n == 0 {
			break
		}
		if don.AttachedTo == "" && don.Rest == StateRested {
			don.Rest = StateActive
			n--
		}
	}
}

// queueTargetedOp builds the decision for an effect that picks cards.
// Rest/return ops select over the field and use the FieldSelect shape; the
// rest keep the category of whatever created them (activation, trigger,
// counter play).
func (ms *matchState) queueTargetedOp(owner *PlayerState, source *GameCard, eff *catalog.EffectDef, origin PendingCategory) {
	// A self-targeted boost or keyword grant needs no input.
	if eff.Filter.Owner == "SELF" && eff.MaxTargets == 0 {
		ms.applyTargetedOp(owner, source.ID, eff.Op, eff.Amount, eff.Keyword, []string{source.ID})
		return
	}

	valid := ms.collectTargets(owner, eff)
	if len(valid) == 0 {
		return // nothing selectable; the effect fizzles
	}

	category := origin
	if eff.Op == catalog.OpRestCharacter || eff.Op == catalog.OpReturnToHand {
		category = PendingFieldSelect
	}

	minSel, maxSel := selectionBounds(eff)
	ms.state.Pending.Push(&PendingEffect{
		ID:            uuid.NewString(),
		Category:      category,
		PlayerID:      owner.PlayerID,
		SourceID:      source.ID,
		EffectOp:      eff.Op,
		Amount:        eff.Amount,
		Keyword:       eff.Keyword,
		ValidTargets:  valid,
		MinSelections: minSel,
		MaxSelections: maxSel,
		CanSkip:       eff.Optional,
	})
	ms.bus.Publish(rules.NewEvent(rules.EventPendingCreated, source.ID, "", owner.PlayerID))
}

func selectionBounds(eff *catalog.EffectDef) (int, int) {
	minSel, maxSel := eff.MinTargets, eff.MaxTargets
	if maxSel == 0 {
		maxSel = 1
	}
	if minSel > maxSel {
		minSel = maxSel
	}
	if minSel == 0 && !eff.Optional {
		minSel = 1
	}
	return minSel, maxSel
}

// collectTargets gathers card ids matching the effect filter. KO and rest
// ops only ever touch the field; boosts and grants may also hit leaders.
func (ms *matchState) collectTargets(actor *PlayerState, eff *catalog.EffectDef) []string {
	gs := ms.state
	includeLeaders := eff.Op == catalog.OpPowerBoost || eff.Op == catalog.OpGrantKeyword

	var pools []*PlayerState
	switch eff.Filter.Owner {
	case "SELF":
		pools = []*PlayerState{actor}
	case "OPPONENT":
		pools = []*PlayerState{gs.Player(gs.Opponent(actor.PlayerID))}
	default:
		pools = []*PlayerState{actor, gs.Player(gs.Opponent(actor.PlayerID))}
	}

	var valid []string
	for _, pool := range pools {
		candidates := append([]*GameCard(nil), pool.Field...)
		if includeLeaders && pool.Leader != nil {
			candidates = append(candidates, pool.Leader)
		}
		for _, card := range candidates {
			if ms.matchesFilter(card, &eff.Filter) {
				valid = append(valid, card.ID)
			}
		}
	}
	return valid
}

func (ms *matchState) matchesFilter(card *GameCard, filter *catalog.TargetFilter) bool {
	turn := ms.state.Turns.TurnNumber()
	def := ms.definition(card)

	if filter.Rested && card.Rest != StateRested {
		return false
	}
	if filter.Type != "" {
		cardType := catalog.TypeCharacter
		if card.Zone == ZoneLeader {
			cardType = catalog.TypeLeader
		} else if def != nil {
			cardType = def.Type
		}
		if cardType != filter.Type {
			return false
		}
	}
	if filter.MaxCost > 0 {
		cost := 0
		if def != nil {
			cost = def.Cost
		}
		if cost > filter.MaxCost {
			return false
		}
	}
	if filter.MaxPower > 0 && card.Power(turn) > filter.MaxPower {
		return false
	}
	return true
}

func (ms *matchState) queueDeckReveal(owner *PlayerState, source *GameCard, eff *catalog.EffectDef) {
	count := max(eff.Amount, 1)
	if count > len(owner.Deck) {
		count = len(owner.Deck)
	}
	if count == 0 {
		return
	}

	revealed := make([]string, 0, count)
	selectable := make([]string, 0, count)
	for i := 0; i < count; i++ {
		card := owner.Deck[i]
		revealed = append(revealed, card.ID)
		if ms.matchesFilter(card, &eff.Filter) {
			selectable = append(selectable, card.ID)
		}
	}
	ms.bus.Publish(rules.NewEventWithAmount(rules.EventDeckRevealed, source.ID, "", owner.PlayerID, count))

	if len(selectable) == 0 && eff.Optional {
		ms.bottomDeckCards(owner, revealed)
		return
	}

	minSel, maxSel := selectionBounds(eff)
	if minSel > len(selectable) {
		minSel = len(selectable)
	}
	ms.state.Pending.Push(&PendingEffect{
		ID:                uuid.NewString(),
		Category:          PendingDeckReveal,
		PlayerID:          owner.PlayerID,
		SourceID:          source.ID,
		EffectOp:          eff.Op,
		RevealedCardIDs:   revealed,
		SelectableCardIDs: selectable,
		MinSelections:     minSel,
		MaxSelections:     maxSel,
		CanSkip:           eff.Optional || len(selectable) == 0,
	})
	ms.bus.Publish(rules.NewEvent(rules.EventPendingCreated, source.ID, "", owner.PlayerID))
}

// bottomDeckCards moves the named cards from the top of the deck to the
// bottom, preserving their relative order.
func (ms *matchState) bottomDeckCards(p *PlayerState, cardIDs []string) {
	for _, id := range cardIDs {
		card, ok := removeFromZone(&p.Deck, id)
		if !ok {
			continue
		}
		p.Deck = append(p.Deck, card)
	}
}

func (ms *matchState) queueHandSelect(owner *PlayerState, source *GameCard, eff *catalog.EffectDef, followUp *catalog.EffectDef) {
	if len(owner.Hand) == 0 {
		return
	}
	valid := make([]string, 0, len(owner.Hand))
	for _, card := range owner.Hand {
		valid = append(valid, card.ID)
	}
	minSel, maxSel := selectionBounds(eff)
	ms.state.Pending.Push(&PendingEffect{
		ID:            uuid.NewString(),
		Category:      PendingHandSelect,
		PlayerID:      owner.PlayerID,
		SourceID:      source.ID,
		EffectOp:      catalog.OpTrashFromHand,
		ValidTargets:  valid,
		MinSelections: minSel,
		MaxSelections: maxSel,
		CanSkip:       eff.Optional,
		followUp:      followUp,
	})
	ms.bus.Publish(rules.NewEvent(rules.EventPendingCreated, source.ID, "", owner.PlayerID))
}

func (ms *matchState) queueChoice(owner *PlayerState, source *GameCard, eff *catalog.EffectDef) {
	if len(eff.Options) == 0 {
		return
	}
	options := make([]PendingOption, 0, len(eff.Options))
	for _, opt := range eff.Options {
		options = append(options, PendingOption{
			ID:      opt.ID,
			Label:   opt.Label,
			Op:      opt.Op,
			Amount:  opt.Amount,
			Enabled: ms.optionEnabled(owner, opt),
		})
	}
	ms.state.Pending.Push(&PendingEffect{
		ID:       uuid.NewString(),
		Category: PendingChoice,
		PlayerID: owner.PlayerID,
		SourceID: source.ID,
		EffectOp: catalog.OpChooseOption,
		Options:  options,
	})
	ms.bus.Publish(rules.NewEvent(rules.EventPendingCreated, source.ID, "", owner.PlayerID))
}

func (ms *matchState) optionEnabled(owner *PlayerState, opt catalog.OptionDef) bool {
	switch opt.Op {
	case catalog.OpDrawCards:
		return len(owner.Deck) > 0
	case catalog.OpReadyDon:
		for _, don := range owner.DonField {
			if don.AttachedTo == "" && don.Rest == StateRested {
				return true
			}
		}
		return false
	default:
		return true
	}
}

// createPendingForEffect poses a pre-game card selection from the deck.
func (ms *matchState) createPendingForEffect(owner *PlayerState, source *GameCard, eff *catalog.EffectDef, category PendingCategory) {
	var valid []string
	for _, card := range owner.Deck {
		if ms.matchesFilter(card, &eff.Filter) {
			valid = append(valid, card.ID)
		}
	}
	if len(valid) == 0 {
		return
	}
	ms.state.Pending.Push(&PendingEffect{
		ID:           uuid.NewString(),
		Category:     category,
		PlayerID:     owner.PlayerID,
		SourceID:     source.ID,
		EffectOp:     eff.Op,
		ValidCardIDs: valid,
		CanSkip:      true,
	})
	ms.bus.Publish(rules.NewEvent(rules.EventPendingCreated, source.ID, "", owner.PlayerID))
}

// applyTargetedOp mutates the named targets for an already-validated op.
func (ms *matchState) applyTargetedOp(owner *PlayerState, sourceID string, op catalog.EffectOp, amount int, keyword catalog.Keyword, targetIDs []string) {
	gs := ms.state
	turn := gs.Turns.TurnNumber()

	for _, id := range targetIDs {
		card, cardOwner := gs.FindCard(id)
		if card == nil {
			continue
		}
		switch op {
		case catalog.OpPowerBoost:
			card.Modifiers = append(card.Modifiers, PowerModifier{
				SourceID:    sourceID,
				Amount:      amount,
				ExpiresTurn: turn,
			})
			if gs.Combat != nil && gs.Combat.AttackerID == card.ID {
				gs.Combat.AttackPower += amount
			}
			ms.bus.Publish(rules.NewEventWithAmount(rules.EventPowerModified, card.ID, sourceID, owner.PlayerID, amount))
		case catalog.OpKOCharacter:
			if card.Zone != ZoneField {
				continue
			}
			if err := gs.MoveCard(cardOwner, card, ZoneTrash); err != nil {
				continue
			}
			ms.bus.Publish(rules.NewEvent(rules.EventCharacterKOed, card.ID, sourceID, cardOwner.PlayerID))
		case catalog.OpRestCharacter:
			card.Rest = StateRested
			ms.bus.Publish(rules.NewEvent(rules.EventCardRested, card.ID, sourceID, owner.PlayerID))
		case catalog.OpReturnToHand:
			if card.Zone != ZoneField {
				continue
			}
			if err := gs.MoveCard(cardOwner, card, ZoneHand); err != nil {
				continue
			}
		case catalog.OpGrantKeyword:
			if keyword != "" {
				card.GrantKeyword(keyword)
				ms.bus.Publish(rules.NewEvent(rules.EventKeywordGranted, card.ID, sourceID, owner.PlayerID))
			}
		}
	}
}
