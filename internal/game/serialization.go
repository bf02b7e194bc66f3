package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/paxtonking/optcgsim-web-sub005/internal/catalog"
	"github.com/paxtonking/optcgsim-web-sub005/internal/game/rules"
)

// Snapshot is the full serializable image of one match. Identical snapshots
// produce identical checksums, which guards against divergent state across
// reconnects or replays.
type Snapshot struct {
	Version int
	MatchID string

	PlayerOrder   []string
	TurnNumber    int
	ActivePlayer  string
	Phase         rules.Phase
	Step          rules.Step
	PersonalTurns map[string]int
	FirstPlayer   string

	Players map[string]*PlayerSnapshot
	Combat  *CombatContext
	Pending []*PendingEffect

	Over   bool
	Winner string

	InitialCounts map[string]int
}

// PlayerSnapshot is one seat's zones in a Snapshot.
type PlayerSnapshot struct {
	Leader *GameCard
	Hand   []*GameCard
	Deck   []*GameCard
	Trash  []*GameCard
	Life   []*GameCard
	Field  []*GameCard

	DonDeck  int
	DonField []*DonToken

	Mulliganed  bool
	KeptHand    bool
	Lost        bool
	Surrendered bool
}

const snapshotVersion = 1

// Snapshot captures the match under its lock.
func (e *Engine) Snapshot(matchID string) (*Snapshot, error) {
	ms, err := e.match(matchID)
	if err != nil {
		return nil, err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()

	gs := ms.state
	turn, active, phase, step, personal := gs.Turns.Snapshot()
	snap := &Snapshot{
		Version:       snapshotVersion,
		MatchID:       gs.MatchID,
		PlayerOrder:   append([]string(nil), gs.PlayerOrder...),
		TurnNumber:    turn,
		ActivePlayer:  active,
		Phase:         phase,
		Step:          step,
		PersonalTurns: personal,
		FirstPlayer:   ms.firstPlayer,
		Players:       make(map[string]*PlayerSnapshot, len(gs.Players)),
		Pending:       gs.Pending.All(),
		Over:          gs.Over,
		Winner:        gs.Winner,
		InitialCounts: make(map[string]int, len(gs.initialCounts)),
	}
	for id, count := range gs.initialCounts {
		snap.InitialCounts[id] = count
	}
	if gs.Combat != nil {
		combat := *gs.Combat
		snap.Combat = &combat
	}
	for id, p := range gs.Players {
		snap.Players[id] = &PlayerSnapshot{
			Leader:      p.Leader,
			Hand:        p.Hand,
			Deck:        p.Deck,
			Trash:       p.Trash,
			Life:        p.Life,
			Field:       p.Field,
			DonDeck:     p.DonDeck,
			DonField:    p.DonField,
			Mulliganed:  p.Mulliganed,
			KeptHand:    p.KeptHand,
			Lost:        p.Lost,
			Surrendered: p.Surrendered,
		}
	}
	return snap, nil
}

// RestoreMatch reconstitutes a match from a snapshot, replacing any match
// with the same id. The seed reseeds the match RNG; shuffle history is not
// part of the snapshot.
func (e *Engine) RestoreMatch(snap *Snapshot, lookup catalog.Lookup, seed int64) error {
	if snap == nil {
		return fmt.Errorf("nil snapshot")
	}
	if lookup == nil {
		return fmt.Errorf("restore requires a card catalog")
	}

	gs := &GameState{
		MatchID:       snap.MatchID,
		Players:       make(map[string]*PlayerState, len(snap.Players)),
		PlayerOrder:   append([]string(nil), snap.PlayerOrder...),
		Turns:         rules.RestoreTurnManager(snap.TurnNumber, snap.ActivePlayer, snap.Phase, snap.Step, snap.PersonalTurns),
		Over:          snap.Over,
		Winner:        snap.Winner,
		Pending:       NewPendingSet(),
		initialCounts: make(map[string]int, len(snap.InitialCounts)),
	}
	for id, count := range snap.InitialCounts {
		gs.initialCounts[id] = count
	}
	if snap.Combat != nil {
		combat := *snap.Combat
		gs.Combat = &combat
	}
	for id, ps := range snap.Players {
		gs.Players[id] = &PlayerState{
			PlayerID:    id,
			Leader:      ps.Leader,
			Hand:        ps.Hand,
			Deck:        ps.Deck,
			Trash:       ps.Trash,
			Life:        ps.Life,
			Field:       ps.Field,
			DonDeck:     ps.DonDeck,
			DonField:    ps.DonField,
			Mulliganed:  ps.Mulliganed,
			KeptHand:    ps.KeptHand,
			Lost:        ps.Lost,
			Surrendered: ps.Surrendered,
		}
	}

	ms := &matchState{
		state:       gs,
		catalog:     lookup,
		bus:         rules.NewEventBus(),
		rng:         rand.New(rand.NewSource(seed)),
		firstPlayer: snap.FirstPlayer,
	}
	for _, pe := range snap.Pending {
		ms.reattachFollowUp(pe)
		gs.Pending.Push(pe)
	}

	if err := gs.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.matches[snap.MatchID] = ms
	return nil
}

// reattachFollowUp rebuilds the unexported cost follow-up pointer from the
// source card's definition. Gob drops it across the wire.
func (ms *matchState) reattachFollowUp(pe *PendingEffect) {
	if pe.Category != PendingAdditionalCost && pe.Category != PendingHandSelect {
		return
	}
	card, _ := ms.state.FindCard(pe.SourceID)
	def := ms.definition(card)
	if def == nil {
		return
	}
	for i := range def.Effects {
		eff := &def.Effects[i]
		if eff.Cost != nil && eff.Cost.Type == pe.CostType && eff.Cost.Amount == pe.CostAmount {
			pe.followUp = eff
			return
		}
	}
}

// Checksum computes the deterministic SHA-256 of the snapshot. Two hosts
// holding the same match state must agree on this value.
func (snap *Snapshot) Checksum() string {
	sum := sha256.Sum256([]byte(snap.canonical()))
	return hex.EncodeToString(sum[:])
}

// canonical renders the snapshot as a stable text form: maps sorted by key,
// ordered zones kept in order.
func (snap *Snapshot) canonical() string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "MATCH:%s|%d|%s|%s|%s|%s|%t|%s\n",
		snap.MatchID, snap.TurnNumber, snap.ActivePlayer,
		snap.Phase, snap.Step, snap.FirstPlayer, snap.Over, snap.Winner)
	buf.WriteString("ORDER:")
	buf.WriteString(strings.Join(snap.PlayerOrder, ","))
	buf.WriteString("\n")

	playerIDs := make([]string, 0, len(snap.Players))
	for id := range snap.Players {
		playerIDs = append(playerIDs, id)
	}
	sort.Strings(playerIDs)

	for _, id := range playerIDs {
		p := snap.Players[id]
		fmt.Fprintf(&buf, "PLAYER:%s|%d|%d|%t|%t|%t|%t\n",
			id, snap.PersonalTurns[id], p.DonDeck,
			p.Mulliganed, p.KeptHand, p.Lost, p.Surrendered)
		writeCardLine(&buf, "LEADER", p.Leader)
		for _, zone := range []struct {
			name  string
			cards []*GameCard
		}{
			{"HAND", p.Hand}, {"DECK", p.Deck}, {"TRASH", p.Trash},
			{"LIFE", p.Life}, {"FIELD", p.Field},
		} {
			for _, c := range zone.cards {
				writeCardLine(&buf, zone.name, c)
			}
		}
		for _, don := range p.DonField {
			fmt.Fprintf(&buf, "  DON:%s|%s|%s\n", don.ID, don.Rest, don.AttachedTo)
		}
	}

	if snap.Combat != nil {
		c := snap.Combat
		fmt.Fprintf(&buf, "COMBAT:%s|%s|%s|%s|%d|%d|%t|%d|%s\n",
			c.AttackerID, c.AttackerOwner, c.TargetID, c.TargetType,
			c.AttackPower, c.CounterPower, c.BlockerUsed, c.RemainingHits, c.AwaitingTriggerID)
	}

	// Pending order matters; All returns priority order.
	for _, pe := range snap.Pending {
		fmt.Fprintf(&buf, "PENDING:%s|%s|%s|%s|%s|%d|%t\n",
			pe.ID, pe.Category, pe.PlayerID, pe.SourceID, pe.EffectOp, pe.Amount, pe.CanSkip)
	}
	return buf.String()
}

func writeCardLine(buf *bytes.Buffer, zone string, c *GameCard) {
	if c == nil {
		return
	}
	keywords := make([]string, 0, len(c.Keywords))
	for kw := range c.Keywords {
		keywords = append(keywords, string(kw))
	}
	sort.Strings(keywords)

	modTotal := 0
	for _, mod := range c.Modifiers {
		modTotal += mod.Amount
	}
	fmt.Fprintf(buf, "  %s:%s|%s|%s|%d|%d|%s|%d|%t|%s\n",
		zone, c.ID, c.CatalogID, c.Rest, c.BasePower, modTotal,
		strings.Join(keywords, "+"), len(c.AttachedDon), c.HasAttacked, c.OwnerID)
}

// Serialize encodes the snapshot with gob for storage or transmission.
func (snap *Snapshot) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// DeserializeSnapshot decodes a gob-encoded snapshot.
func DeserializeSnapshot(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}
