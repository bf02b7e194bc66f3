package game

import (
	"github.com/paxtonking/optcgsim-web-sub005/internal/catalog"
	"github.com/paxtonking/optcgsim-web-sub005/internal/game/rules"
)

// resolvePendingAction consumes the outstanding pending decision. The caller
// has already checked that the verb matches the category and that playerID
// owns the decision. Validation happens fully before the decision is removed
// so a rejected answer leaves the queue intact.
func (ms *matchState) resolvePendingAction(playerID string, next *PendingEffect, action Action) error {
	owner := ms.state.Player(playerID)

	if skipActions[action.Type] {
		if !next.CanSkip {
			return violation(ViolationBadSelection, "%s decision %s cannot be skipped", next.Category, next.ID)
		}
		ms.state.Pending.Remove(next.ID)
		if next.Category == PendingDeckReveal {
			ms.bottomDeckCards(owner, next.RevealedCardIDs)
		}
		ms.bus.Publish(rules.NewEvent(rules.EventPendingSkipped, next.SourceID, "", playerID))
		return nil
	}

	var data ResolvePendingData
	if err := decodePayload(action, &data); err != nil {
		return err
	}
	if data.EffectID != "" && data.EffectID != next.ID {
		return violation(ViolationBadSelection, "decision %s is not outstanding, %s is", data.EffectID, next.ID)
	}

	switch next.Category {
	case PendingActivate, PendingEvent, PendingCounter:
		return ms.resolveTargeted(owner, next, data.TargetIDs)
	case PendingDeckReveal:
		return ms.resolveDeckReveal(owner, next, data.SelectedIDs)
	case PendingHandSelect:
		return ms.resolveHandSelect(owner, next, data.SelectedIDs)
	case PendingFieldSelect:
		return ms.resolveTargeted(owner, next, data.TargetIDs)
	case PendingChoice:
		return ms.resolveChoice(owner, next, data.OptionID)
	case PendingAdditionalCost:
		return ms.resolveAdditionalCost(owner, next, data.Pay)
	case PendingPreGame:
		return ms.resolvePreGame(owner, next, data.CardID)
	default:
		return corruption("pending %s has unknown category %d", next.ID, next.Category)
	}
}

// validateSelection checks a submitted id set against the legal set and the
// selection bounds. Duplicates are rejected.
func validateSelection(selected, valid []string, minSel, maxSel int) error {
	if len(selected) < minSel || len(selected) > maxSel {
		return violation(ViolationBadSelection, "must select between %d and %d, got %d", minSel, maxSel, len(selected))
	}
	allowed := make(map[string]bool, len(valid))
	for _, id := range valid {
		allowed[id] = true
	}
	seen := make(map[string]bool, len(selected))
	for _, id := range selected {
		if !allowed[id] {
			return violation(ViolationBadSelection, "%s is not a legal selection", id)
		}
		if seen[id] {
			return violation(ViolationBadSelection, "%s selected twice", id)
		}
		seen[id] = true
	}
	return nil
}

func (ms *matchState) resolveTargeted(owner *PlayerState, next *PendingEffect, targetIDs []string) error {
	if err := validateSelection(targetIDs, next.ValidTargets, next.MinSelections, next.MaxSelections); err != nil {
		return err
	}
	ms.state.Pending.Remove(next.ID)
	ms.applyTargetedOp(owner, next.SourceID, next.EffectOp, next.Amount, next.Keyword, targetIDs)
	ms.bus.Publish(rules.NewEvent(rules.EventPendingResolved, next.SourceID, "", owner.PlayerID))
	return nil
}

func (ms *matchState) resolveDeckReveal(owner *PlayerState, next *PendingEffect, selectedIDs []string) error {
	if err := validateSelection(selectedIDs, next.SelectableCardIDs, next.MinSelections, next.MaxSelections); err != nil {
		return err
	}
	ms.state.Pending.Remove(next.ID)

	taken := make(map[string]bool, len(selectedIDs))
	for _, id := range selectedIDs {
		card, ok := removeFromZone(&owner.Deck, id)
		if !ok {
			continue
		}
		card.Zone = ZoneHand
		owner.Hand = append(owner.Hand, card)
		taken[id] = true
		ms.bus.Publish(rules.NewEvent(rules.EventCardDrawn, card.ID, next.SourceID, owner.PlayerID))
	}

	// Unpicked revealed cards go to the bottom in their revealed order.
	var rest []string
	for _, id := range next.RevealedCardIDs {
		if !taken[id] {
			rest = append(rest, id)
		}
	}
	ms.bottomDeckCards(owner, rest)
	ms.bus.Publish(rules.NewEvent(rules.EventPendingResolved, next.SourceID, "", owner.PlayerID))
	return nil
}

func (ms *matchState) resolveHandSelect(owner *PlayerState, next *PendingEffect, selectedIDs []string) error {
	if err := validateSelection(selectedIDs, next.ValidTargets, next.MinSelections, next.MaxSelections); err != nil {
		return err
	}
	ms.state.Pending.Remove(next.ID)

	gs := ms.state
	for _, id := range selectedIDs {
		card, cardOwner := gs.FindCard(id)
		if card == nil || card.Zone != ZoneHand {
			continue
		}
		if err := gs.MoveCard(cardOwner, card, ZoneTrash); err != nil {
			return corruption("hand select trash: %v", err)
		}
		ms.bus.Publish(rules.NewEvent(rules.EventCardTrashed, card.ID, next.SourceID, owner.PlayerID))
	}
	ms.bus.Publish(rules.NewEvent(rules.EventPendingResolved, next.SourceID, "", owner.PlayerID))

	// A hand selection posed as an additional cost unlocks its effect once
	// the cards are gone.
	if next.followUp != nil {
		ms.executeEffectBody(owner, ms.pendingSource(next), next.followUp, PendingEvent)
	}
	return nil
}

func (ms *matchState) resolveChoice(owner *PlayerState, next *PendingEffect, optionID string) error {
	var chosen *PendingOption
	anyEnabled := false
	for i := range next.Options {
		if next.Options[i].Enabled {
			anyEnabled = true
		}
		if next.Options[i].ID == optionID {
			chosen = &next.Options[i]
		}
	}
	if chosen == nil {
		return violation(ViolationBadSelection, "no option %q on decision %s", optionID, next.ID)
	}
	// A disabled option is only selectable when every option is disabled.
	if !chosen.Enabled && anyEnabled {
		return violation(ViolationBadSelection, "option %q is not currently available", optionID)
	}

	ms.state.Pending.Remove(next.ID)
	ms.bus.Publish(rules.NewEvent(rules.EventPendingResolved, next.SourceID, "", owner.PlayerID))

	// The synthetic pre-game choice sets turn order instead of running an op.
	if next.SourceID == firstPlayerChoiceSource {
		if optionID == "FIRST" {
			ms.firstPlayer = owner.PlayerID
		} else {
			ms.firstPlayer = ms.state.Opponent(owner.PlayerID)
		}
		return nil
	}

	if chosen.Op != "" {
		eff := &catalog.EffectDef{Op: chosen.Op, Amount: chosen.Amount}
		ms.executeEffectBody(owner, ms.pendingSource(next), eff, PendingEvent)
	}
	return nil
}

func (ms *matchState) resolveAdditionalCost(owner *PlayerState, next *PendingEffect, pay bool) error {
	if !pay {
		// Declining the cost cancels the gated effect entirely.
		ms.state.Pending.Remove(next.ID)
		ms.bus.Publish(rules.NewEvent(rules.EventPendingSkipped, next.SourceID, "", owner.PlayerID))
		return nil
	}

	switch next.CostType {
	case catalog.CostRestDon:
		if len(owner.ActiveDon()) < next.CostAmount {
			return violation(ViolationCannotPay, "need %d active DON, have %d", next.CostAmount, len(owner.ActiveDon()))
		}
		ms.state.Pending.Remove(next.ID)
		if err := ms.payDon(owner, next.CostAmount); err != nil {
			return corruption("additional cost payment: %v", err)
		}
		ms.bus.Publish(rules.NewEvent(rules.EventPendingResolved, next.SourceID, "", owner.PlayerID))
		if next.followUp != nil {
			ms.executeEffectBody(owner, ms.pendingSource(next), next.followUp, PendingEvent)
		}
		return nil
	case catalog.CostTrashHand:
		if len(owner.Hand) < next.CostAmount {
			return violation(ViolationCannotPay, "need %d cards in hand, have %d", next.CostAmount, len(owner.Hand))
		}
		ms.state.Pending.Remove(next.ID)
		ms.bus.Publish(rules.NewEvent(rules.EventPendingResolved, next.SourceID, "", owner.PlayerID))
		costEff := &catalog.EffectDef{
			Op:         catalog.OpTrashFromHand,
			MinTargets: next.CostAmount,
			MaxTargets: next.CostAmount,
		}
		ms.queueHandSelect(owner, ms.pendingSource(next), costEff, next.followUp)
		return nil
	default:
		return corruption("pending %s has unknown cost type %q", next.ID, next.CostType)
	}
}

func (ms *matchState) resolvePreGame(owner *PlayerState, next *PendingEffect, cardID string) error {
	legal := false
	for _, id := range next.ValidCardIDs {
		if id == cardID {
			legal = true
			break
		}
	}
	if !legal {
		return violation(ViolationBadSelection, "%s is not a legal pre-game pick", cardID)
	}

	ms.state.Pending.Remove(next.ID)
	card, ok := removeFromZone(&owner.Deck, cardID)
	if !ok {
		return corruption("pre-game pick %s missing from deck", cardID)
	}
	card.Zone = ZoneHand
	owner.Hand = append(owner.Hand, card)
	ms.shuffleDeck(owner)
	ms.bus.Publish(rules.NewEvent(rules.EventPendingResolved, next.SourceID, "", owner.PlayerID))
	return nil
}

// pendingSource resolves the card behind a pending decision. The card may
// have moved zones since the decision was queued (events sit in the trash by
// the time their effects resolve).
func (ms *matchState) pendingSource(pe *PendingEffect) *GameCard {
	if card, _ := ms.state.FindCard(pe.SourceID); card != nil {
		return card
	}
	return &GameCard{ID: pe.SourceID, OwnerID: pe.PlayerID}
}
