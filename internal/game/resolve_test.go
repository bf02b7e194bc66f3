package game

import (
	"testing"
)

func TestTargetedEffectValidatesBeforeConsuming(t *testing.T) {
	h := newMatchHarness(t)
	h.startPlaying(h.p1)
	h.giveDon(h.p1, 3) // 4 total with turn income, enough for cost 4

	victim := h.putCharacter(h.p2, "char-2000", StateActive)
	expensive := h.putCharacter(h.p2, "char-7000", StateActive)
	source := h.putInHand(h.p1, "char-onplay-ko")

	h.apply(h.p1, NewAction(ActionPlayCard, PlayCardData{CardID: source.ID}))

	next := h.gs.Pending.Next()
	if next == nil || next.Category != PendingEvent {
		t.Fatalf("expected an event decision, got %+v", next)
	}
	if len(next.ValidTargets) != 1 || next.ValidTargets[0] != victim.ID {
		t.Fatalf("only the cost-3-or-less character is targetable, got %v", next.ValidTargets)
	}

	// Out-of-filter target: rejected, decision stays queued.
	err := h.applyErr(h.p1, NewAction(ActionResolveEvent, ResolvePendingData{
		EffectID:  next.ID,
		TargetIDs: []string{expensive.ID},
	}))
	wantViolation(t, err, ViolationBadSelection)
	if h.gs.Pending.Next() == nil {
		t.Fatal("rejected answer must leave the decision outstanding")
	}

	// Stale decision id: rejected.
	err = h.applyErr(h.p1, NewAction(ActionResolveEvent, ResolvePendingData{
		EffectID:  "not-the-decision",
		TargetIDs: []string{victim.ID},
	}))
	wantViolation(t, err, ViolationBadSelection)

	h.apply(h.p1, NewAction(ActionResolveEvent, ResolvePendingData{
		EffectID:  next.ID,
		TargetIDs: []string{victim.ID},
	}))
	if victim.Zone != ZoneTrash {
		t.Fatalf("KO target zone: got %s, want TRASH", victim.Zone)
	}
	if !h.gs.Pending.Empty() {
		t.Fatal("decision must be consumed exactly once")
	}
}

func TestOptionalEffectCanBeSkipped(t *testing.T) {
	h := newMatchHarness(t)
	h.startPlaying(h.p1)
	h.giveDon(h.p1, 3)

	victim := h.putCharacter(h.p2, "char-2000", StateActive)
	source := h.putInHand(h.p1, "char-onplay-ko")
	h.apply(h.p1, NewAction(ActionPlayCard, PlayCardData{CardID: source.ID}))

	h.apply(h.p1, Action{Type: ActionSkipEvent})
	if !h.gs.Pending.Empty() {
		t.Fatal("skip must consume the decision")
	}
	if victim.Zone != ZoneField {
		t.Fatal("skipped KO must leave the target alone")
	}
}

func TestEffectFizzlesWithoutTargets(t *testing.T) {
	h := newMatchHarness(t)
	h.startPlaying(h.p1)
	h.giveDon(h.p1, 3)

	source := h.putInHand(h.p1, "char-onplay-ko")
	h.apply(h.p1, NewAction(ActionPlayCard, PlayCardData{CardID: source.ID}))

	if !h.gs.Pending.Empty() {
		t.Fatal("effect with no legal targets must not pose a decision")
	}
	if source.Zone != ZoneField {
		t.Fatal("the card itself still enters play")
	}
}

func TestDeckRevealResolvePutsRestOnBottom(t *testing.T) {
	h := newMatchHarness(t)
	h.startPlaying(h.p1)

	source := h.putInHand(h.p1, "event-search")
	h.apply(h.p1, NewAction(ActionPlayCard, PlayCardData{CardID: source.ID}))

	next := h.gs.Pending.Next()
	if next == nil || next.Category != PendingDeckReveal {
		t.Fatalf("expected a deck reveal decision, got %+v", next)
	}
	if len(next.RevealedCardIDs) != 3 {
		t.Fatalf("revealed: got %d cards, want 3", len(next.RevealedCardIDs))
	}

	p := h.gs.Player(h.p1)
	deckBefore := len(p.Deck)
	pick := next.SelectableCardIDs[0]

	h.apply(h.p1, NewAction(ActionResolveDeckReveal, ResolvePendingData{
		EffectID:    next.ID,
		SelectedIDs: []string{pick},
	}))

	picked, _ := h.gs.FindCard(pick)
	if picked.Zone != ZoneHand {
		t.Fatalf("picked card zone: got %s, want HAND", picked.Zone)
	}
	if len(p.Deck) != deckBefore-1 {
		t.Fatalf("deck after reveal: got %d, want %d", len(p.Deck), deckBefore-1)
	}

	// The two unpicked cards sit at the bottom in their revealed order.
	var rest []string
	for _, id := range next.RevealedCardIDs {
		if id != pick {
			rest = append(rest, id)
		}
	}
	bottom := p.Deck[len(p.Deck)-2:]
	for i, card := range bottom {
		if card.ID != rest[i] {
			t.Fatalf("bottom order: got %s at %d, want %s", card.ID, i, rest[i])
		}
	}
}

func TestDeckRevealSkipBottomsEverything(t *testing.T) {
	h := newMatchHarness(t)
	h.startPlaying(h.p1)

	source := h.putInHand(h.p1, "event-search")
	h.apply(h.p1, NewAction(ActionPlayCard, PlayCardData{CardID: source.ID}))
	next := h.gs.Pending.Next()

	p := h.gs.Player(h.p1)
	deckBefore := len(p.Deck)
	h.apply(h.p1, Action{Type: ActionSkipDeckReveal})

	if len(p.Deck) != deckBefore {
		t.Fatal("skip must not change the deck size")
	}
	bottom := p.Deck[len(p.Deck)-3:]
	for i, card := range bottom {
		if card.ID != next.RevealedCardIDs[i] {
			t.Fatalf("bottom order after skip: got %s at %d, want %s", card.ID, i, next.RevealedCardIDs[i])
		}
	}
}

func TestChoiceRejectsDisabledOption(t *testing.T) {
	h := newMatchHarness(t)
	h.startPlaying(h.p1)

	source := h.putInHand(h.p1, "event-choice")
	h.apply(h.p1, NewAction(ActionPlayCard, PlayCardData{CardID: source.ID}))

	next := h.gs.Pending.Next()
	if next == nil || next.Category != PendingChoice {
		t.Fatalf("expected a choice decision, got %+v", next)
	}
	// No rested DON exists on turn one, so the ready-DON branch is disabled
	// while drawing stays live.
	err := h.applyErr(h.p1, NewAction(ActionResolveChoice, ResolvePendingData{
		EffectID: next.ID,
		OptionID: "don",
	}))
	wantViolation(t, err, ViolationBadSelection)

	handBefore := len(h.gs.Player(h.p1).Hand)
	h.apply(h.p1, NewAction(ActionResolveChoice, ResolvePendingData{
		EffectID: next.ID,
		OptionID: "draw",
	}))
	if got := len(h.gs.Player(h.p1).Hand); got != handBefore+1 {
		t.Fatalf("hand after draw option: got %d, want %d", got, handBefore+1)
	}
}

func TestAdditionalCostRestDon(t *testing.T) {
	h := newMatchHarness(t)
	h.startPlaying(h.p1)

	source := h.putInHand(h.p1, "event-gated")
	h.apply(h.p1, NewAction(ActionPlayCard, PlayCardData{CardID: source.ID}))

	next := h.gs.Pending.Next()
	if next == nil || next.Category != PendingAdditionalCost {
		t.Fatalf("expected an additional-cost decision, got %+v", next)
	}

	// Only one DON available on turn one: paying is rejected, the decision
	// stays outstanding.
	err := h.applyErr(h.p1, NewAction(ActionResolveAdditionalCost, ResolvePendingData{
		EffectID: next.ID,
		Pay:      true,
	}))
	wantViolation(t, err, ViolationCannotPay)
	if h.gs.Pending.Next() == nil {
		t.Fatal("failed payment must leave the decision outstanding")
	}

	h.giveDon(h.p1, 1)
	p := h.gs.Player(h.p1)
	handBefore := len(p.Hand)
	h.apply(h.p1, NewAction(ActionResolveAdditionalCost, ResolvePendingData{
		EffectID: next.ID,
		Pay:      true,
	}))

	if got := len(p.ActiveDon()); got != 0 {
		t.Fatalf("DON left active after paying cost 2: %d", got)
	}
	if got := len(p.Hand); got != handBefore+2 {
		t.Fatalf("hand after gated draw: got %d, want %d", got, handBefore+2)
	}
}

func TestAdditionalCostDeclinedCancelsEffect(t *testing.T) {
	h := newMatchHarness(t)
	h.startPlaying(h.p1)
	h.giveDon(h.p1, 2)

	source := h.putInHand(h.p1, "event-gated")
	h.apply(h.p1, NewAction(ActionPlayCard, PlayCardData{CardID: source.ID}))
	next := h.gs.Pending.Next()

	p := h.gs.Player(h.p1)
	handBefore := len(p.Hand)
	donBefore := len(p.ActiveDon())
	h.apply(h.p1, NewAction(ActionResolveAdditionalCost, ResolvePendingData{
		EffectID: next.ID,
		Pay:      false,
	}))

	if len(p.Hand) != handBefore || len(p.ActiveDon()) != donBefore {
		t.Fatal("declining must touch neither hand nor DON")
	}
	if !h.gs.Pending.Empty() {
		t.Fatal("declined cost must consume the decision")
	}
}

func TestAdditionalCostTrashHandChains(t *testing.T) {
	h := newMatchHarness(t)
	h.startPlaying(h.p1)

	source := h.putInHand(h.p1, "event-trash-gate")
	h.apply(h.p1, NewAction(ActionPlayCard, PlayCardData{CardID: source.ID}))

	next := h.gs.Pending.Next()
	h.apply(h.p1, NewAction(ActionResolveAdditionalCost, ResolvePendingData{
		EffectID: next.ID,
		Pay:      true,
	}))

	// Paying a trash-hand cost poses the selection of what to trash.
	sel := h.gs.Pending.Next()
	if sel == nil || sel.Category != PendingHandSelect {
		t.Fatalf("expected a hand-select decision, got %+v", sel)
	}
	if sel.MinSelections != 1 || sel.MaxSelections != 1 {
		t.Fatalf("cost selection bounds: got %d..%d, want exactly 1", sel.MinSelections, sel.MaxSelections)
	}

	p := h.gs.Player(h.p1)
	fodder := p.Hand[0]
	handBefore := len(p.Hand)
	h.apply(h.p1, NewAction(ActionResolveHandSelect, ResolvePendingData{
		EffectID:    sel.ID,
		SelectedIDs: []string{fodder.ID},
	}))

	if fodder.Zone != ZoneTrash {
		t.Fatalf("cost card zone: got %s, want TRASH", fodder.Zone)
	}
	// One card trashed, two drawn.
	if got := len(p.Hand); got != handBefore+1 {
		t.Fatalf("hand after chained draw: got %d, want %d", got, handBefore+1)
	}
}
