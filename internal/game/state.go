package game

import (
	"fmt"

	"github.com/paxtonking/optcgsim-web-sub005/internal/catalog"
	"github.com/paxtonking/optcgsim-web-sub005/internal/game/rules"
)

// Zone identifies where a card instance currently lives. A card is owned by
// exactly one zone; moving it is always remove-then-insert, never a copy.
type Zone int

const (
	ZoneDeck Zone = iota
	ZoneHand
	ZoneField
	ZoneTrash
	ZoneLife
	ZoneLeader
)

var zoneNames = map[Zone]string{
	ZoneDeck:   "DECK",
	ZoneHand:   "HAND",
	ZoneField:  "FIELD",
	ZoneTrash:  "TRASH",
	ZoneLife:   "LIFE",
	ZoneLeader: "LEADER",
}

func (z Zone) String() string {
	if name, ok := zoneNames[z]; ok {
		return name
	}
	return fmt.Sprintf("ZONE_%d", int(z))
}

// RestState is a card's two-state orientation.
type RestState int

const (
	StateActive RestState = iota
	StateRested
)

func (r RestState) String() string {
	if r == StateRested {
		return "RESTED"
	}
	return "ACTIVE"
}

// PowerModifier is a temporary or permanent change to a card's power.
type PowerModifier struct {
	SourceID    string
	Amount      int
	ExpiresTurn int // 0 = permanent
}

// GameCard is one card instance in a match. Its instance ID is distinct from
// the catalog ID; runtime power and keywords may diverge from the printed
// definition because effects can grant or remove abilities mid-game.
type GameCard struct {
	ID          string
	CatalogID   string
	OwnerID     string
	Zone        Zone
	Rest        RestState
	BasePower   int
	Modifiers   []PowerModifier
	Keywords    map[catalog.Keyword]bool
	TurnPlayed  int
	HasAttacked bool
	AttachedDon []string // DON token ids attached to this card
}

// HasKeyword consults the runtime keyword set only. Catalog keywords are
// copied in at spawn time and may have been granted or revoked since.
func (c *GameCard) HasKeyword(kw catalog.Keyword) bool {
	return c.Keywords[kw]
}

// GrantKeyword adds a runtime keyword.
func (c *GameCard) GrantKeyword(kw catalog.Keyword) {
	if c.Keywords == nil {
		c.Keywords = make(map[catalog.Keyword]bool)
	}
	c.Keywords[kw] = true
}

// RevokeKeyword removes a runtime keyword.
func (c *GameCard) RevokeKeyword(kw catalog.Keyword) {
	delete(c.Keywords, kw)
}

// donPowerBonus is the power each attached DON token grants.
const donPowerBonus = 1000

// maxDonPerCard bounds how many DON may be attached to one character/leader.
const maxDonPerCard = 3

// Power returns the card's runtime power for the given turn: base power plus
// unexpired modifiers plus attached DON.
func (c *GameCard) Power(turn int) int {
	power := c.BasePower
	for _, mod := range c.Modifiers {
		if mod.ExpiresTurn == 0 || mod.ExpiresTurn >= turn {
			power += mod.Amount
		}
	}
	power += len(c.AttachedDon) * donPowerBonus
	return power
}

// ExpireModifiers drops modifiers whose duration ended before turn.
func (c *GameCard) ExpireModifiers(turn int) {
	kept := c.Modifiers[:0]
	for _, mod := range c.Modifiers {
		if mod.ExpiresTurn == 0 || mod.ExpiresTurn >= turn {
			kept = append(kept, mod)
		}
	}
	c.Modifiers = kept
}

// DonToken is one unit of the game's generic resource. It is either free on
// the owner's DON field or attached to exactly one character/leader.
type DonToken struct {
	ID         string
	Rest       RestState
	AttachedTo string // card instance id, empty when free
}

// PlayerState holds one seat's zones and counters.
type PlayerState struct {
	PlayerID string
	Leader   *GameCard

	Hand  []*GameCard // ordered, visible to owner only
	Deck  []*GameCard // ordered, hidden
	Trash []*GameCard // ordered, public
	Life  []*GameCard // ordered, hidden; count public
	Field []*GameCard // unordered for rules purposes

	DonDeck  int // tokens not yet in play
	DonField []*DonToken

	Mulliganed  bool
	KeptHand    bool
	Lost        bool
	Surrendered bool
}

// ActiveDon returns the player's unattached, active DON tokens.
func (p *PlayerState) ActiveDon() []*DonToken {
	var free []*DonToken
	for _, don := range p.DonField {
		if don.AttachedTo == "" && don.Rest == StateActive {
			free = append(free, don)
		}
	}
	return free
}

// FindFieldCard returns a field character by instance id.
func (p *PlayerState) FindFieldCard(cardID string) *GameCard {
	for _, c := range p.Field {
		if c.ID == cardID {
			return c
		}
	}
	return nil
}

// CardCount returns the conserved card total for the seat: every card the
// player brought (deck + leader) must be in exactly one zone at all times.
func (p *PlayerState) CardCount() int {
	n := len(p.Hand) + len(p.Deck) + len(p.Trash) + len(p.Field) + len(p.Life)
	if p.Leader != nil {
		n++
	}
	return n
}

// TargetType distinguishes what an attack is aimed at.
type TargetType string

const (
	TargetLeader    TargetType = "LEADER"
	TargetCharacter TargetType = "CHARACTER"
)

// CombatContext exists from attack declaration until the attack fully
// resolves. At most one exists at a time. RemainingHits and
// AwaitingTriggerID make a half-resolved attack reconstructable from state
// alone, which reconnection depends on.
type CombatContext struct {
	AttackerID        string
	AttackerOwner     string
	TargetID          string
	TargetType        TargetType
	AttackPower       int
	CounterPower      int
	BlockerUsed       bool
	RemainingHits     int
	AwaitingTriggerID string
}

// GameState is the authoritative, serializable snapshot of one match.
type GameState struct {
	MatchID     string
	Players     map[string]*PlayerState
	PlayerOrder []string
	Turns       *rules.TurnManager
	Combat      *CombatContext
	Pending     *PendingSet

	Over   bool
	Winner string

	initialCounts map[string]int // seat -> deck size + leader, set at start
}

// NewGameState builds an empty state for the given seat order.
func NewGameState(matchID string, playerIDs []string) *GameState {
	players := make(map[string]*PlayerState, len(playerIDs))
	for _, id := range playerIDs {
		players[id] = &PlayerState{PlayerID: id}
	}
	return &GameState{
		MatchID:       matchID,
		Players:       players,
		PlayerOrder:   append([]string(nil), playerIDs...),
		Turns:         rules.NewTurnManager(playerIDs),
		Pending:       NewPendingSet(),
		initialCounts: make(map[string]int, len(playerIDs)),
	}
}

// Opponent returns the other seat's id.
func (gs *GameState) Opponent(playerID string) string {
	for _, id := range gs.PlayerOrder {
		if id != playerID {
			return id
		}
	}
	return ""
}

// Player returns the seat state, or nil if unknown.
func (gs *GameState) Player(playerID string) *PlayerState {
	return gs.Players[playerID]
}

// FindCard locates a card instance anywhere in the match, returning the card
// and its owner.
func (gs *GameState) FindCard(cardID string) (*GameCard, *PlayerState) {
	for _, p := range gs.Players {
		if p.Leader != nil && p.Leader.ID == cardID {
			return p.Leader, p
		}
		for _, zone := range [][]*GameCard{p.Hand, p.Deck, p.Trash, p.Life, p.Field} {
			for _, c := range zone {
				if c.ID == cardID {
					return c, p
				}
			}
		}
	}
	return nil, nil
}

// FindDon locates a DON token by id.
func (gs *GameState) FindDon(donID string) (*DonToken, *PlayerState) {
	for _, p := range gs.Players {
		for _, don := range p.DonField {
			if don.ID == donID {
				return don, p
			}
		}
	}
	return nil, nil
}

// removeFromZone removes the card from the slice it lives in. Returns false
// when the card was not present.
func removeFromZone(zone *[]*GameCard, cardID string) (*GameCard, bool) {
	for i, c := range *zone {
		if c.ID == cardID {
			*zone = append((*zone)[:i], (*zone)[i+1:]...)
			return c, true
		}
	}
	return nil, false
}

// zoneSlice returns a pointer to the owning slice for a zone.
func (p *PlayerState) zoneSlice(zone Zone) *[]*GameCard {
	switch zone {
	case ZoneDeck:
		return &p.Deck
	case ZoneHand:
		return &p.Hand
	case ZoneField:
		return &p.Field
	case ZoneTrash:
		return &p.Trash
	case ZoneLife:
		return &p.Life
	default:
		return nil
	}
}

// MoveCard performs a destructive zone move for a card owned by player p.
// DON attached to a card leaving the field returns to the DON field.
func (gs *GameState) MoveCard(p *PlayerState, card *GameCard, to Zone) error {
	from := p.zoneSlice(card.Zone)
	if from == nil {
		return fmt.Errorf("card %s in immovable zone %s", card.ID, card.Zone)
	}
	moved, ok := removeFromZone(from, card.ID)
	if !ok {
		return fmt.Errorf("card %s not found in zone %s", card.ID, card.Zone)
	}

	if card.Zone == ZoneField {
		gs.detachAllDon(p, moved)
	}

	dest := p.zoneSlice(to)
	if dest == nil {
		return fmt.Errorf("cannot move card %s to zone %s", card.ID, to)
	}
	moved.Zone = to
	if to != ZoneField {
		// Runtime state does not survive leaving the field.
		moved.Rest = StateActive
		moved.Modifiers = nil
		moved.HasAttacked = false
	}
	*dest = append(*dest, moved)
	return nil
}

// detachAllDon returns all DON attached to card to the owner's DON field,
// rested.
func (gs *GameState) detachAllDon(p *PlayerState, card *GameCard) {
	for _, donID := range card.AttachedDon {
		for _, don := range p.DonField {
			if don.ID == donID {
				don.AttachedTo = ""
				don.Rest = StateRested
			}
		}
	}
	card.AttachedDon = nil
}

// RecordInitialCounts captures the conserved per-seat card totals. Called
// once after decks and leaders are dealt.
func (gs *GameState) RecordInitialCounts() {
	for id, p := range gs.Players {
		gs.initialCounts[id] = p.CardCount()
	}
}

// Validate checks the structural invariants that must hold in every
// reachable state. A violation is unrecoverable in-engine and surfaces as
// state corruption to the host.
func (gs *GameState) Validate() error {
	for id, p := range gs.Players {
		if want, ok := gs.initialCounts[id]; ok && p.CardCount() != want {
			return corruption("card conservation broken for %s: have %d, want %d", id, p.CardCount(), want)
		}
		for _, don := range p.DonField {
			if don.AttachedTo == "" {
				continue
			}
			card, _ := gs.FindCard(don.AttachedTo)
			if card == nil || (card.Zone != ZoneField && card.Zone != ZoneLeader) {
				return corruption("DON %s attached to missing card %s", don.ID, don.AttachedTo)
			}
		}
		for _, c := range p.Field {
			if len(c.AttachedDon) > maxDonPerCard {
				return corruption("card %s has %d attached DON, max %d", c.ID, len(c.AttachedDon), maxDonPerCard)
			}
		}
		if p.Leader != nil && len(p.Leader.AttachedDon) > maxDonPerCard {
			return corruption("leader %s has %d attached DON, max %d", p.Leader.ID, len(p.Leader.AttachedDon), maxDonPerCard)
		}
	}
	if gs.Combat != nil {
		if attacker, _ := gs.FindCard(gs.Combat.AttackerID); attacker == nil {
			return corruption("combat context references missing attacker %s", gs.Combat.AttackerID)
		}
	}
	return nil
}
