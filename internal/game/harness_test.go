package game

import (
	"fmt"
	"testing"

	"github.com/paxtonking/optcgsim-web-sub005/internal/catalog"
	"github.com/paxtonking/optcgsim-web-sub005/internal/game/rules"
	"go.uber.org/zap/zaptest"
)

// matchHarness provides utilities for setting up and running match tests.
// It reaches into engine internals to arrange board states directly.
type matchHarness struct {
	t       *testing.T
	engine  *Engine
	matchID string
	ms      *matchState
	gs      *GameState
	p1, p2  string
}

// testCatalog is the fixed card pool the engine tests run against.
func testCatalog() catalog.Static {
	return catalog.NewStatic(
		&catalog.Definition{ID: "leader-1", Name: "Test Leader", Type: catalog.TypeLeader, Power: 5000, Life: 4},
		&catalog.Definition{ID: "char-2000", Name: "Small Body", Type: catalog.TypeCharacter, Cost: 1, Power: 2000, CounterValue: 1000},
		&catalog.Definition{ID: "char-4000", Name: "Mid Body", Type: catalog.TypeCharacter, Cost: 3, Power: 4000, CounterValue: 1000},
		&catalog.Definition{ID: "char-5000", Name: "Big Body", Type: catalog.TypeCharacter, Cost: 4, Power: 5000, CounterValue: 1000},
		&catalog.Definition{ID: "char-7000", Name: "Huge Body", Type: catalog.TypeCharacter, Cost: 6, Power: 7000},
		&catalog.Definition{ID: "char-rush", Name: "Runner", Type: catalog.TypeCharacter, Cost: 2, Power: 3000,
			Keywords: []catalog.Keyword{catalog.KeywordRush}},
		&catalog.Definition{ID: "char-blocker", Name: "Wall", Type: catalog.TypeCharacter, Cost: 2, Power: 3000, CounterValue: 1000,
			Keywords: []catalog.Keyword{catalog.KeywordBlocker}},
		&catalog.Definition{ID: "char-double", Name: "Twin Strike", Type: catalog.TypeCharacter, Cost: 5, Power: 6000,
			Keywords: []catalog.Keyword{catalog.KeywordDoubleAttack}},
		&catalog.Definition{ID: "char-banish", Name: "Eraser", Type: catalog.TypeCharacter, Cost: 5, Power: 5000,
			Keywords: []catalog.Keyword{catalog.KeywordBanish}},
		&catalog.Definition{ID: "counter-2000", Name: "Parry", Type: catalog.TypeCharacter, Cost: 2, Power: 1000, CounterValue: 2000},
		&catalog.Definition{ID: "char-trigger", Name: "Surprise", Type: catalog.TypeCharacter, Cost: 2, Power: 2000,
			Effects: []catalog.EffectDef{{Timing: catalog.TimingTrigger, Op: catalog.OpDrawCards, Amount: 1}}},
		&catalog.Definition{ID: "event-draw", Name: "Study", Type: catalog.TypeEvent, Cost: 1,
			Effects: []catalog.EffectDef{{Timing: catalog.TimingOnPlay, Op: catalog.OpDrawCards, Amount: 2}}},
		&catalog.Definition{ID: "char-onplay-ko", Name: "Assassin", Type: catalog.TypeCharacter, Cost: 4, Power: 3000,
			Effects: []catalog.EffectDef{{
				Timing: catalog.TimingOnPlay, Op: catalog.OpKOCharacter, Optional: true,
				Filter: catalog.TargetFilter{Owner: "OPPONENT", MaxCost: 3},
			}}},
		&catalog.Definition{ID: "char-eot-ko", Name: "Night Raid", Type: catalog.TypeCharacter, Cost: 3, Power: 3000,
			Effects: []catalog.EffectDef{{
				Timing: catalog.TimingEndOfTurn, Op: catalog.OpKOCharacter, Optional: true,
				Filter: catalog.TargetFilter{Owner: "OPPONENT", MaxCost: 3},
			}}},
		&catalog.Definition{ID: "event-search", Name: "Scout Ahead", Type: catalog.TypeEvent, Cost: 0,
			Effects: []catalog.EffectDef{{
				Timing: catalog.TimingOnPlay, Op: catalog.OpDeckReveal, Amount: 3, Optional: true,
				Filter: catalog.TargetFilter{Type: catalog.TypeCharacter},
			}}},
		&catalog.Definition{ID: "event-choice", Name: "Crossroads", Type: catalog.TypeEvent, Cost: 0,
			Effects: []catalog.EffectDef{{
				Timing: catalog.TimingOnPlay, Op: catalog.OpChooseOption,
				Options: []catalog.OptionDef{
					{ID: "draw", Label: "Draw a card", Op: catalog.OpDrawCards, Amount: 1},
					{ID: "don", Label: "Ready a DON", Op: catalog.OpReadyDon, Amount: 1},
				},
			}}},
		&catalog.Definition{ID: "event-gated", Name: "Hidden Reserves", Type: catalog.TypeEvent, Cost: 0,
			Effects: []catalog.EffectDef{{
				Timing: catalog.TimingOnPlay, Op: catalog.OpDrawCards, Amount: 2,
				Cost: &catalog.CostDef{Type: catalog.CostRestDon, Amount: 2},
			}}},
		&catalog.Definition{ID: "event-trash-gate", Name: "Desperate Trade", Type: catalog.TypeEvent, Cost: 0,
			Effects: []catalog.EffectDef{{
				Timing: catalog.TimingOnPlay, Op: catalog.OpDrawCards, Amount: 2,
				Cost: &catalog.CostDef{Type: catalog.CostTrashHand, Amount: 1},
			}}},
	)
}

func testDeck(size int) []string {
	deck := make([]string, 0, size)
	fill := []string{"char-2000", "char-4000", "char-5000", "counter-2000", "char-blocker"}
	for i := 0; i < size; i++ {
		deck = append(deck, fill[i%len(fill)])
	}
	return deck
}

// newMatchHarness creates a match between alice and bob with a fixed seed.
func newMatchHarness(t *testing.T) *matchHarness {
	t.Helper()
	logger := zaptest.NewLogger(t)
	engine := NewEngine(logger)
	matchID := "test-match"
	p1, p2 := "alice", "bob"

	seats := []Seat{
		{PlayerID: p1, LeaderID: "leader-1", DeckCardIDs: testDeck(20)},
		{PlayerID: p2, LeaderID: "leader-1", DeckCardIDs: testDeck(20)},
	}
	if err := engine.CreateMatch(matchID, seats, testCatalog(), 42); err != nil {
		t.Fatalf("failed to create match: %v", err)
	}

	engine.mu.RLock()
	ms := engine.matches[matchID]
	engine.mu.RUnlock()

	return &matchHarness{
		t:       t,
		engine:  engine,
		matchID: matchID,
		ms:      ms,
		gs:      ms.state,
		p1:      p1,
		p2:      p2,
	}
}

// apply submits an action and fails the test on rejection.
func (h *matchHarness) apply(playerID string, action Action) {
	h.t.Helper()
	if err := h.engine.Apply(h.matchID, playerID, action); err != nil {
		h.t.Fatalf("action %s by %s rejected: %v", action.Type, playerID, err)
	}
}

// applyErr submits an action expecting a rejection and returns it.
func (h *matchHarness) applyErr(playerID string, action Action) error {
	h.t.Helper()
	err := h.engine.Apply(h.matchID, playerID, action)
	if err == nil {
		h.t.Fatalf("action %s by %s unexpectedly accepted", action.Type, playerID)
	}
	return err
}

// startPlaying resolves the first-player choice so that first goes first,
// keeps both hands, and lands in first's main phase on turn 1.
func (h *matchHarness) startPlaying(first string) {
	h.t.Helper()
	choice := h.gs.Pending.Next()
	if choice == nil || choice.SourceID != firstPlayerChoiceSource {
		h.t.Fatalf("expected first-player choice pending, got %+v", choice)
	}
	option := "FIRST"
	if choice.PlayerID != first {
		option = "SECOND"
	}
	h.apply(choice.PlayerID, NewAction(ActionResolveChoice, ResolvePendingData{
		EffectID: choice.ID,
		OptionID: option,
	}))
	h.apply(h.p1, Action{Type: ActionKeepHand})
	h.apply(h.p2, Action{Type: ActionKeepHand})
}

// advanceTurns passes whole turns by ending them back to back.
func (h *matchHarness) advanceTurns(n int) {
	h.t.Helper()
	for i := 0; i < n; i++ {
		h.apply(h.gs.Turns.ActivePlayer(), Action{Type: ActionEndTurn})
	}
}

// putCharacter places a character straight onto a player's field, keeping
// the conservation count in sync.
func (h *matchHarness) putCharacter(playerID, catalogID string, rest RestState) *GameCard {
	h.t.Helper()
	p := h.gs.Player(playerID)
	card := h.ms.spawnCard(catalogID, playerID, ZoneField)
	card.Rest = rest
	p.Field = append(p.Field, card)
	h.gs.initialCounts[playerID]++
	return card
}

// giveDon adds n active DON tokens to the player's field.
func (h *matchHarness) giveDon(playerID string, n int) {
	p := h.gs.Player(playerID)
	for i := 0; i < n; i++ {
		p.DonField = append(p.DonField, &DonToken{ID: fmt.Sprintf("%s-don-%d", playerID, len(p.DonField))})
	}
}

// handCard returns a card from the player's hand with the given catalog id,
// or fails.
func (h *matchHarness) handCard(playerID, catalogID string) *GameCard {
	h.t.Helper()
	for _, c := range h.gs.Player(playerID).Hand {
		if c.CatalogID == catalogID {
			return c
		}
	}
	h.t.Fatalf("no %s in %s's hand", catalogID, playerID)
	return nil
}

// putInHand moves a fresh card instance into the player's hand.
func (h *matchHarness) putInHand(playerID, catalogID string) *GameCard {
	h.t.Helper()
	p := h.gs.Player(playerID)
	card := h.ms.spawnCard(catalogID, playerID, ZoneHand)
	p.Hand = append(p.Hand, card)
	h.gs.initialCounts[playerID]++
	return card
}

// putLifeTop pushes a fresh card instance onto the top of the player's life
// pile.
func (h *matchHarness) putLifeTop(playerID, catalogID string) *GameCard {
	h.t.Helper()
	p := h.gs.Player(playerID)
	card := h.ms.spawnCard(catalogID, playerID, ZoneLife)
	p.Life = append([]*GameCard{card}, p.Life...)
	h.gs.initialCounts[playerID]++
	return card
}

// readyForAttack brings the match to p1's second personal turn, the earliest
// point attacks are legal.
func (h *matchHarness) readyForAttack() {
	h.t.Helper()
	h.startPlaying(h.p1)
	h.advanceTurns(2)
}

// countEvents subscribes a counter for one event type.
func (h *matchHarness) countEvents(eventType rules.EventType, counter *int) {
	h.ms.bus.SubscribeTyped(eventType, func(rules.Event) {
		*counter++
	})
}
