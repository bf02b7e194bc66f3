package game

import "testing"

func TestViewRedactsHiddenZones(t *testing.T) {
	h := newMatchHarness(t)
	h.startPlaying(h.p1)

	view, err := h.engine.View(h.matchID, h.p1)
	if err != nil {
		t.Fatalf("view: %v", err)
	}

	if view.ViewerID != h.p1 || view.You.PlayerID != h.p1 || view.Opponent.PlayerID != h.p2 {
		t.Fatalf("view seat assignment wrong: %+v", view)
	}
	if len(view.You.Hand) != 5 || view.You.HandCount != 5 {
		t.Fatalf("own hand must be visible: %d cards, count %d", len(view.You.Hand), view.You.HandCount)
	}
	if len(view.Opponent.Hand) != 0 {
		t.Fatal("opponent hand cards must never be visible")
	}
	if view.Opponent.HandCount != 5 {
		t.Fatalf("opponent hand count: got %d, want 5", view.Opponent.HandCount)
	}
	if view.You.DeckCount != 15 || view.You.LifeCount != 4 {
		t.Fatalf("deck/life counts: %d/%d, want 15/4", view.You.DeckCount, view.You.LifeCount)
	}
}

func TestViewShowsPublicZonesAndPower(t *testing.T) {
	h := newMatchHarness(t)
	h.startPlaying(h.p1)

	card := h.putCharacter(h.p2, "char-5000", StateRested)
	card.Modifiers = append(card.Modifiers, PowerModifier{Amount: 1000})

	view, err := h.engine.View(h.matchID, h.p1)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if len(view.Opponent.Field) != 1 {
		t.Fatalf("opponent field must be public, got %d cards", len(view.Opponent.Field))
	}
	fv := view.Opponent.Field[0]
	if fv.ID != card.ID || !fv.Rested {
		t.Fatalf("field card view: %+v", fv)
	}
	// Views report effective power, not just the printed value.
	if fv.Power != 6000 || fv.BasePower != 5000 {
		t.Fatalf("power view: %d/%d, want 6000/5000", fv.Power, fv.BasePower)
	}
	if fv.Name != "Big Body" || fv.Cost != 4 {
		t.Fatalf("catalog fields missing from view: %+v", fv)
	}
}

func TestViewPendingDetailsOnlyForOwner(t *testing.T) {
	h := newMatchHarness(t)
	h.startPlaying(h.p1)
	h.giveDon(h.p1, 3)

	h.putCharacter(h.p2, "char-2000", StateActive)
	source := h.putInHand(h.p1, "char-onplay-ko")
	h.apply(h.p1, NewAction(ActionPlayCard, PlayCardData{CardID: source.ID}))

	ownerView, err := h.engine.View(h.matchID, h.p1)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if ownerView.Pending == nil || !ownerView.Pending.Yours {
		t.Fatalf("owner must see their pending decision: %+v", ownerView.Pending)
	}
	if len(ownerView.Pending.ValidTargets) != 1 {
		t.Fatalf("owner must see the target set, got %v", ownerView.Pending.ValidTargets)
	}

	oppView, err := h.engine.View(h.matchID, h.p2)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if oppView.Pending == nil || oppView.Pending.Yours {
		t.Fatalf("opponent sees the decision exists but does not own it: %+v", oppView.Pending)
	}
	if len(oppView.Pending.ValidTargets) != 0 || len(oppView.Pending.Options) != 0 {
		t.Fatal("selection details must be hidden from the non-owner")
	}
	if oppView.Pending.PlayerID != h.p1 {
		t.Fatalf("pending owner in view: got %s, want %s", oppView.Pending.PlayerID, h.p1)
	}
}

func TestViewUnknownViewer(t *testing.T) {
	h := newMatchHarness(t)
	if _, err := h.engine.View(h.matchID, "stranger"); err == nil {
		t.Fatal("unknown viewer must be rejected")
	}
	if _, err := h.engine.View("missing", h.p1); err == nil {
		t.Fatal("unknown match must be rejected")
	}
}
