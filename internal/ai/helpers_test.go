package ai

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/paxtonking/optcgsim-web-sub005/internal/catalog"
	"github.com/paxtonking/optcgsim-web-sub005/internal/game"
)

// botCatalog is the fixed card pool the strategy tests run against.
func botCatalog() catalog.Static {
	return catalog.NewStatic(
		&catalog.Definition{ID: "leader-1", Name: "Test Leader", Type: catalog.TypeLeader, Power: 5000, Life: 4},
		&catalog.Definition{ID: "grunt", Name: "Grunt", Type: catalog.TypeCharacter, Cost: 1, Power: 2000, CounterValue: 1000},
		&catalog.Definition{ID: "soldier", Name: "Soldier", Type: catalog.TypeCharacter, Cost: 3, Power: 4000, CounterValue: 1000},
		&catalog.Definition{ID: "brute", Name: "Brute", Type: catalog.TypeCharacter, Cost: 4, Power: 5000},
		&catalog.Definition{ID: "titan", Name: "Titan", Type: catalog.TypeCharacter, Cost: 6, Power: 7000},
		&catalog.Definition{ID: "pricey", Name: "Overpriced Muscle", Type: catalog.TypeCharacter, Cost: 5, Power: 5000},
		&catalog.Definition{ID: "menace", Name: "Menace", Type: catalog.TypeCharacter, Cost: 4, Power: 8000,
			Keywords: []catalog.Keyword{
				catalog.KeywordRush, catalog.KeywordDoubleAttack,
				catalog.KeywordBlocker, catalog.KeywordBanish,
			},
			Effects: []catalog.EffectDef{
				{Timing: catalog.TimingOnPlay, Op: catalog.OpKOCharacter},
				{Timing: catalog.TimingOnPlay, Op: catalog.OpDrawCards, Amount: 1},
			}},
		&catalog.Definition{ID: "trick", Name: "Trick", Type: catalog.TypeEvent, Cost: 1,
			Effects: []catalog.EffectDef{{Timing: catalog.TimingOnPlay, Op: catalog.OpDrawCards, Amount: 1}}},
	)
}

var botLookup = botCatalog()

// spawnTestCard builds a card instance with printed power and keywords copied
// from the test catalog.
func spawnTestCard(id, catalogID, owner string, zone game.Zone) *game.GameCard {
	c := &game.GameCard{
		ID:        id,
		CatalogID: catalogID,
		OwnerID:   owner,
		Zone:      zone,
		Keywords:  make(map[catalog.Keyword]bool),
	}
	if def, ok := botLookup.GetCard(catalogID); ok {
		c.BasePower = def.Power
		for _, kw := range def.Keywords {
			c.Keywords[kw] = true
		}
	}
	return c
}

// botState builds a bare two-seat state with leaders in place. Each entry in
// turnSeats begins one turn for that seat, in order.
func botState(turnSeats ...string) *game.GameState {
	gs := game.NewGameState("bot-match", []string{"bot", "foe"})
	for _, id := range gs.PlayerOrder {
		gs.Player(id).Leader = spawnTestCard(id+"-leader", "leader-1", id, game.ZoneLeader)
	}
	for _, seat := range turnSeats {
		gs.Turns.BeginTurn(seat)
	}
	return gs
}

func putField(gs *game.GameState, owner, id, catalogID string, rest game.RestState) *game.GameCard {
	c := spawnTestCard(id, catalogID, owner, game.ZoneField)
	c.Rest = rest
	p := gs.Player(owner)
	p.Field = append(p.Field, c)
	return c
}

func putHand(gs *game.GameState, owner, id, catalogID string) *game.GameCard {
	c := spawnTestCard(id, catalogID, owner, game.ZoneHand)
	p := gs.Player(owner)
	p.Hand = append(p.Hand, c)
	return c
}

func giveDon(gs *game.GameState, owner string, n int) {
	p := gs.Player(owner)
	for i := 0; i < n; i++ {
		p.DonField = append(p.DonField, &game.DonToken{ID: fmt.Sprintf("%s-don-%d", owner, len(p.DonField))})
	}
}

func giveLife(gs *game.GameState, owner string, n int) {
	p := gs.Player(owner)
	for i := 0; i < n; i++ {
		p.Life = append(p.Life, spawnTestCard(fmt.Sprintf("%s-life-%d", owner, i), "grunt", owner, game.ZoneLife))
	}
}

// decodeResolve unpacks the resolve payload a strategy produced.
func decodeResolve(t *testing.T, d game.Decision) game.ResolvePendingData {
	t.Helper()
	var out game.ResolvePendingData
	if err := json.Unmarshal(d.Action.Data, &out); err != nil {
		t.Fatalf("decode resolve payload: %v", err)
	}
	return out
}
