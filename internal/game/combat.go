package game

import (
	"github.com/paxtonking/optcgsim-web-sub005/internal/catalog"
	"github.com/paxtonking/optcgsim-web-sub005/internal/game/rules"
)

// declareAttack opens combat. Legality is checked against the runtime
// keyword set, not the catalog: effects can grant or revoke Rush mid-game.
func (ms *matchState) declareAttack(playerID, attackerID, targetID string) error {
	gs := ms.state
	p := gs.Player(playerID)
	turn := gs.Turns.TurnNumber()

	if gs.Combat != nil {
		return violation(ViolationCannotAttack, "an attack is already resolving")
	}
	if gs.Turns.PersonalTurn(playerID) <= 1 {
		return violation(ViolationCannotAttack, "cannot attack on your first turn")
	}

	attacker, owner := gs.FindCard(attackerID)
	if attacker == nil || owner != p {
		return violation(ViolationIllegalTarget, "attacker %s is not yours", attackerID)
	}
	if attacker.Zone != ZoneField && attacker.Zone != ZoneLeader {
		return violation(ViolationCannotAttack, "attacker must be on the field or be your leader")
	}
	if attacker.Rest != StateActive {
		return violation(ViolationCannotAttack, "rested cards cannot attack")
	}
	if attacker.HasAttacked {
		return violation(ViolationCannotAttack, "card already attacked this turn")
	}
	if attacker.Zone == ZoneField && attacker.TurnPlayed == turn && !attacker.HasKeyword(catalog.KeywordRush) {
		return violation(ViolationCannotAttack, "card played this turn needs Rush to attack")
	}

	opp := gs.Player(gs.Opponent(playerID))
	target, targetOwner := gs.FindCard(targetID)
	if target == nil || targetOwner != opp {
		return violation(ViolationIllegalTarget, "target %s is not an opponent card", targetID)
	}
	var targetType TargetType
	switch {
	case target.Zone == ZoneLeader:
		targetType = TargetLeader
	case target.Zone == ZoneField && target.Rest == StateRested:
		targetType = TargetCharacter
	default:
		return violation(ViolationIllegalTarget, "characters can only be attacked while rested")
	}

	attacker.Rest = StateRested
	attacker.HasAttacked = true

	hits := 1
	if attacker.HasKeyword(catalog.KeywordDoubleAttack) {
		hits = 2
	}
	gs.Combat = &CombatContext{
		AttackerID:    attacker.ID,
		AttackerOwner: playerID,
		TargetID:      target.ID,
		TargetType:    targetType,
		AttackPower:   attacker.Power(turn),
		RemainingHits: hits,
	}
	gs.Turns.SetPhase(rules.PhaseCombat)
	gs.Turns.SetStep(rules.StepAttackEffect)
	ms.bus.Publish(rules.NewEvent(rules.EventAttackDeclared, target.ID, attacker.ID, playerID))

	if def := ms.definition(attacker); def != nil {
		for i := range def.Effects {
			eff := &def.Effects[i]
			if eff.Timing == catalog.TimingWhenAttacking {
				ms.executeEffect(p, attacker, eff, PendingEvent)
			}
		}
	}
	return nil
}

// dispatchCombat routes defender-owned combat-step actions. Only the
// non-attacking player may act here, regardless of whose turn it is.
func (ms *matchState) dispatchCombat(playerID string, action Action) error {
	gs := ms.state
	ctx := gs.Combat
	if ctx == nil {
		return corruption("combat phase with no combat context")
	}
	defender := gs.Opponent(ctx.AttackerOwner)
	if playerID != defender {
		return violation(ViolationNotYourTurn, "combat steps belong to the defender %s", defender)
	}

	switch gs.Turns.CurrentStep() {
	case rules.StepBlocker:
		switch action.Type {
		case ActionSelectBlocker:
			var data SelectBlockerData
			if err := decodePayload(action, &data); err != nil {
				return err
			}
			return ms.selectBlocker(defender, data.BlockerID)
		case ActionSkipBlocker:
			gs.Turns.SetStep(rules.StepCounter)
			return nil
		}
	case rules.StepCounter:
		switch action.Type {
		case ActionUseCounter:
			var data UseCounterData
			if err := decodePayload(action, &data); err != nil {
				return err
			}
			return ms.useCounter(defender, data.CardIDs)
		case ActionPassCounter:
			return ms.resolveAttack()
		}
	case rules.StepTrigger:
		if ctx.AwaitingTriggerID == "" {
			break
		}
		switch action.Type {
		case ActionTriggerLife:
			return ms.activateLifeTrigger(defender)
		case ActionSkipTrigger:
			return ms.declineLifeTrigger(defender)
		}
	}
	return violation(ViolationWrongPhase, "action %s not legal in %s", action.Type, gs.Turns.CurrentStep())
}

// selectBlocker retargets the attack onto the named blocker.
func (ms *matchState) selectBlocker(defenderID, blockerID string) error {
	gs := ms.state
	ctx := gs.Combat
	p := gs.Player(defenderID)

	if ctx.BlockerUsed {
		return violation(ViolationCannotBlock, "a blocker was already declared")
	}
	blocker := p.FindFieldCard(blockerID)
	if blocker == nil {
		return violation(ViolationIllegalTarget, "blocker %s is not on your field", blockerID)
	}
	if blocker.Rest != StateActive {
		return violation(ViolationCannotBlock, "rested cards cannot block")
	}
	if !blocker.HasKeyword(catalog.KeywordBlocker) {
		return violation(ViolationCannotBlock, "card %s has no Blocker ability", blockerID)
	}

	blocker.Rest = StateRested
	ctx.TargetID = blocker.ID
	ctx.TargetType = TargetCharacter
	ctx.BlockerUsed = true
	gs.Turns.SetStep(rules.StepCounter)
	ms.bus.Publish(rules.NewEvent(rules.EventBlockerDeclared, blocker.ID, ctx.AttackerID, defenderID))

	if def := ms.definition(blocker); def != nil {
		for i := range def.Effects {
			eff := &def.Effects[i]
			if eff.Timing == catalog.TimingOnBlock {
				ms.executeEffect(p, blocker, eff, PendingEvent)
			}
		}
	}
	return nil
}

// useCounter plays counter cards from the defender's hand. Character cards
// contribute their printed counter value; counter-timing events execute
// their effect (typically a power boost on the defending card).
func (ms *matchState) useCounter(defenderID string, cardIDs []string) error {
	gs := ms.state
	ctx := gs.Combat
	p := gs.Player(defenderID)
	if len(cardIDs) == 0 {
		return malformed(ActionUseCounter, "no counter cards named")
	}

	// Validate everything up front so a bad batch leaves state untouched.
	type counterPlay struct {
		card *GameCard
		def  *catalog.Definition
	}
	plays := make([]counterPlay, 0, len(cardIDs))
	for _, id := range cardIDs {
		card, owner := gs.FindCard(id)
		if card == nil || owner != p || card.Zone != ZoneHand {
			return violation(ViolationIllegalTarget, "counter card %s is not in your hand", id)
		}
		def := ms.definition(card)
		if def == nil || (def.CounterValue <= 0 && !hasCounterEffect(def)) {
			return violation(ViolationIllegalTarget, "card %s cannot be used as a counter", id)
		}
		plays = append(plays, counterPlay{card: card, def: def})
	}

	for _, play := range plays {
		if play.def.CounterValue > 0 {
			if err := gs.MoveCard(p, play.card, ZoneTrash); err != nil {
				return corruption("counter: %v", err)
			}
			ctx.CounterPower += play.def.CounterValue
			ms.bus.Publish(rules.NewEventWithAmount(rules.EventCounterPlayed, play.card.ID, "", defenderID, play.def.CounterValue))
			continue
		}
		// Counter-timing event: pay its cost, trash it, run the effect.
		if err := ms.payDon(p, play.def.Cost); err != nil {
			return err
		}
		if err := gs.MoveCard(p, play.card, ZoneTrash); err != nil {
			return corruption("counter event: %v", err)
		}
		ms.bus.Publish(rules.NewEvent(rules.EventCounterPlayed, play.card.ID, "", defenderID))
		for i := range play.def.Effects {
			eff := &play.def.Effects[i]
			if eff.Timing == catalog.TimingCounter {
				ms.executeEffect(p, play.card, eff, PendingCounter)
			}
		}
	}
	return nil
}

func hasCounterEffect(def *catalog.Definition) bool {
	for _, eff := range def.Effects {
		if eff.Timing == catalog.TimingCounter {
			return true
		}
	}
	return false
}

// resolveAttack computes the damage gap once the defender passes on
// counters. Damage lands only when the gap is strictly positive.
func (ms *matchState) resolveAttack() error {
	gs := ms.state
	ctx := gs.Combat
	turn := gs.Turns.TurnNumber()

	target, _ := gs.FindCard(ctx.TargetID)
	if target == nil {
		return corruption("combat target %s disappeared", ctx.TargetID)
	}

	defense := target.Power(turn) + ctx.CounterPower
	gap := ctx.AttackPower - defense
	gs.Turns.SetStep(rules.StepTrigger)

	if gap <= 0 {
		// Attack survived; no KO, no life loss.
		ctx.RemainingHits = 0
		return nil
	}

	if ctx.TargetType == TargetCharacter {
		defenderID := gs.Opponent(ctx.AttackerOwner)
		defender := gs.Player(defenderID)
		if err := gs.MoveCard(defender, target, ZoneTrash); err != nil {
			return corruption("KO: %v", err)
		}
		ms.bus.Publish(rules.NewEvent(rules.EventCharacterKOed, target.ID, ctx.AttackerID, defenderID))
		if def := ms.definition(target); def != nil {
			for i := range def.Effects {
				eff := &def.Effects[i]
				if eff.Timing == catalog.TimingOnKO {
					ms.executeEffect(defender, target, eff, PendingEvent)
				}
			}
		}
		ctx.RemainingHits = 0
		return nil
	}

	// Leader combat: each hit peels one life card. Double Attack produces
	// two separate damage events, never one doubled event.
	return ms.dealNextHit()
}

// dealNextHit processes one leader damage event: lose the match on empty
// life, otherwise reveal the top life card and route it by trigger/banish.
func (ms *matchState) dealNextHit() error {
	gs := ms.state
	ctx := gs.Combat
	defenderID := gs.Opponent(ctx.AttackerOwner)
	defender := gs.Player(defenderID)

	ctx.RemainingHits--
	ms.bus.Publish(rules.NewEventWithAmount(rules.EventDamageDealt, defenderID, ctx.AttackerID, ctx.AttackerOwner, 1))

	if len(defender.Life) == 0 {
		defender.Lost = true
		ctx.RemainingHits = 0
		ms.checkWinner()
		return nil
	}

	life := defender.Life[0]
	ms.bus.Publish(rules.NewEvent(rules.EventLifeCardTaken, life.ID, "", defenderID))

	attacker, _ := gs.FindCard(ctx.AttackerID)
	if attacker != nil && attacker.HasKeyword(catalog.KeywordBanish) {
		// Banish sends the life card to the trash with no trigger chance.
		if err := gs.MoveCard(defender, life, ZoneTrash); err != nil {
			return corruption("banish: %v", err)
		}
		return nil
	}

	if ms.hasLifeTrigger(life) {
		// The card stays in the life zone while its owner decides, so the
		// outstanding decision is reconstructable from state alone.
		ctx.AwaitingTriggerID = life.ID
		ms.bus.Publish(rules.NewEvent(rules.EventTriggerRevealed, life.ID, "", defenderID))
		return nil
	}

	if err := gs.MoveCard(defender, life, ZoneHand); err != nil {
		return corruption("life to hand: %v", err)
	}
	return nil
}

func (ms *matchState) hasLifeTrigger(card *GameCard) bool {
	if card.HasKeyword(catalog.KeywordTrigger) {
		return true
	}
	def := ms.definition(card)
	if def == nil {
		return false
	}
	for _, eff := range def.Effects {
		if eff.Timing == catalog.TimingTrigger {
			return true
		}
	}
	return false
}

// activateLifeTrigger resolves the revealed life card's trigger effect and
// trashes the card instead of taking it to hand.
func (ms *matchState) activateLifeTrigger(defenderID string) error {
	gs := ms.state
	ctx := gs.Combat
	defender := gs.Player(defenderID)

	card, owner := gs.FindCard(ctx.AwaitingTriggerID)
	if card == nil || owner != defender || card.Zone != ZoneLife {
		return corruption("awaited trigger card %s missing from life", ctx.AwaitingTriggerID)
	}

	ctx.AwaitingTriggerID = ""
	if err := gs.MoveCard(defender, card, ZoneTrash); err != nil {
		return corruption("trigger: %v", err)
	}
	if def := ms.definition(card); def != nil {
		for i := range def.Effects {
			eff := &def.Effects[i]
			if eff.Timing == catalog.TimingTrigger {
				ms.executeEffect(defender, card, eff, PendingEvent)
			}
		}
	}
	return nil
}

// declineLifeTrigger takes the revealed card to hand as normal life loss.
func (ms *matchState) declineLifeTrigger(defenderID string) error {
	gs := ms.state
	ctx := gs.Combat
	defender := gs.Player(defenderID)

	card, owner := gs.FindCard(ctx.AwaitingTriggerID)
	if card == nil || owner != defender || card.Zone != ZoneLife {
		return corruption("awaited trigger card %s missing from life", ctx.AwaitingTriggerID)
	}

	ctx.AwaitingTriggerID = ""
	if err := gs.MoveCard(defender, card, ZoneHand); err != nil {
		return corruption("life to hand: %v", err)
	}
	return nil
}

// continueCombat advances the paused combat sequence as far as possible.
// Called whenever the pending queue has drained.
func (ms *matchState) continueCombat() {
	gs := ms.state
	for gs.Combat != nil && !gs.Over && gs.Pending.Empty() {
		ctx := gs.Combat
		switch gs.Turns.CurrentStep() {
		case rules.StepAttackEffect:
			// Attack-declaration effects resolved; defender may block.
			gs.Turns.SetStep(rules.StepBlocker)
			return
		case rules.StepTrigger:
			if ctx.AwaitingTriggerID != "" {
				return // defender still deciding
			}
			if ctx.RemainingHits > 0 {
				if err := ms.dealNextHit(); err != nil {
					return
				}
				continue
			}
			ms.endCombat()
			return
		default:
			return // blocker/counter steps wait for defender actions
		}
	}
}

// endCombat destroys the combat context and returns to the main phase.
func (ms *matchState) endCombat() {
	gs := ms.state
	ms.bus.Publish(rules.NewEvent(rules.EventCombatEnded, gs.Combat.TargetID, gs.Combat.AttackerID, gs.Combat.AttackerOwner))
	gs.Combat = nil
	if !gs.Over {
		gs.Turns.SetPhase(rules.PhaseMain)
	}
}
