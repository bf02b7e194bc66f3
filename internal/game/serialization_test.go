package game

import (
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestChecksumDeterministicAndDiverging(t *testing.T) {
	h := newMatchHarness(t)
	h.startPlaying(h.p1)

	first, err := h.engine.Snapshot(h.matchID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	second, err := h.engine.Snapshot(h.matchID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if first.Checksum() != second.Checksum() {
		t.Fatal("identical state must produce identical checksums")
	}

	h.apply(h.p1, Action{Type: ActionEndTurn})
	third, err := h.engine.Snapshot(h.matchID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if first.Checksum() == third.Checksum() {
		t.Fatal("state change must change the checksum")
	}
}

func TestSnapshotGobRoundTrip(t *testing.T) {
	h := newMatchHarness(t)
	h.startPlaying(h.p1)
	h.putCharacter(h.p1, "char-rush", StateRested)

	snap, err := h.engine.Snapshot(h.matchID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	data, err := snap.Serialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	decoded, err := DeserializeSnapshot(data)
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if decoded.Checksum() != snap.Checksum() {
		t.Fatal("round trip must preserve the checksum")
	}
	if decoded.Version != snapshotVersion || decoded.MatchID != h.matchID {
		t.Fatalf("round trip header: %+v", decoded)
	}
}

func TestRestoreMatchContinuesPlay(t *testing.T) {
	h := newMatchHarness(t)
	h.startPlaying(h.p1)
	h.putCharacter(h.p1, "char-5000", StateActive)

	snap, err := h.engine.Snapshot(h.matchID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	restored := NewEngine(zaptest.NewLogger(t))
	if err := restored.RestoreMatch(snap, testCatalog(), 99); err != nil {
		t.Fatalf("restore: %v", err)
	}

	check, err := restored.Snapshot(h.matchID)
	if err != nil {
		t.Fatalf("snapshot of restored match: %v", err)
	}
	if check.Checksum() != snap.Checksum() {
		t.Fatal("restored match must reproduce the source checksum")
	}

	// The restored match keeps playing.
	if err := restored.Apply(h.matchID, h.p1, Action{Type: ActionEndTurn}); err != nil {
		t.Fatalf("action on restored match: %v", err)
	}
	err = restored.Inspect(h.matchID, func(gs *GameState) error {
		if gs.Turns.ActivePlayer() != h.p2 {
			t.Fatalf("restored turn handoff: active %s, want %s", gs.Turns.ActivePlayer(), h.p2)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
}

func TestRestoreReattachesCostFollowUp(t *testing.T) {
	h := newMatchHarness(t)
	h.startPlaying(h.p1)
	h.giveDon(h.p1, 1) // 2 active with income, exactly the gated cost

	source := h.putInHand(h.p1, "event-gated")
	h.apply(h.p1, NewAction(ActionPlayCard, PlayCardData{CardID: source.ID}))
	next := h.gs.Pending.Next()
	if next == nil || next.Category != PendingAdditionalCost {
		t.Fatalf("expected additional-cost decision, got %+v", next)
	}

	snap, err := h.engine.Snapshot(h.matchID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	// Force the gob boundary: the unexported follow-up pointer is dropped and
	// must be rebuilt from the card definition on restore.
	data, err := snap.Serialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	decoded, err := DeserializeSnapshot(data)
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}

	restored := NewEngine(zaptest.NewLogger(t))
	if err := restored.RestoreMatch(decoded, testCatalog(), 7); err != nil {
		t.Fatalf("restore: %v", err)
	}

	if err := restored.Apply(h.matchID, h.p1, NewAction(ActionResolveAdditionalCost, ResolvePendingData{
		EffectID: next.ID,
		Pay:      true,
	})); err != nil {
		t.Fatalf("paying restored cost: %v", err)
	}

	err = restored.Inspect(h.matchID, func(gs *GameState) error {
		p := gs.Player(h.p1)
		// 5 opening cards, plus two from the gated draw.
		if got := len(p.Hand); got != 7 {
			t.Fatalf("hand after restored follow-up: got %d, want 7", got)
		}
		if got := len(p.ActiveDon()); got != 0 {
			t.Fatalf("DON after restored payment: %d active, want 0", got)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
}
