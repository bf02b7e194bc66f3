package game

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/google/uuid"
	"github.com/paxtonking/optcgsim-web-sub005/internal/catalog"
	"github.com/paxtonking/optcgsim-web-sub005/internal/game/rules"
	"go.uber.org/zap"
)

const (
	startingHandSize   = 5
	donDeckSize        = 10
	fieldSizeLimit     = 5
	defaultLeaderLife  = 4
	defaultLeaderPower = 5000
)

// Seat describes one side of a match: an identity plus a deck list. Decks
// arrive already validated; the engine only instantiates them.
type Seat struct {
	PlayerID    string
	LeaderID    string
	DeckCardIDs []string
}

// Engine hosts independent matches. Each match is a logically
// single-threaded state machine: all mutation goes through Apply, one action
// at a time per match. Matches share nothing mutable but the catalog.
type Engine struct {
	logger  *zap.Logger
	mu      sync.RWMutex
	matches map[string]*matchState
}

// matchState bundles one match's state with its collaborators.
type matchState struct {
	mu      sync.Mutex
	state   *GameState
	catalog catalog.Lookup
	bus     *rules.EventBus
	rng     *rand.Rand

	firstPlayer string
}

// NewEngine creates an empty engine.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		logger:  logger,
		matches: make(map[string]*matchState),
	}
}

// CreateMatch instantiates a match for two seats. The seed drives every
// random decision in the match (shuffles, coin flip), making games
// reproducible under a fixed seed.
func (e *Engine) CreateMatch(matchID string, seats []Seat, lookup catalog.Lookup, seed int64) error {
	if len(seats) != 2 {
		return fmt.Errorf("match requires exactly 2 seats, got %d", len(seats))
	}
	if lookup == nil {
		return fmt.Errorf("match requires a card catalog")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.matches[matchID]; exists {
		return fmt.Errorf("match %s already exists", matchID)
	}

	playerIDs := []string{seats[0].PlayerID, seats[1].PlayerID}
	gs := NewGameState(matchID, playerIDs)
	ms := &matchState{
		state:   gs,
		catalog: lookup,
		bus:     rules.NewEventBus(),
		rng:     rand.New(rand.NewSource(seed)),
	}

	for _, seat := range seats {
		player := gs.Player(seat.PlayerID)
		player.Leader = ms.spawnCard(seat.LeaderID, seat.PlayerID, ZoneLeader)
		for _, catalogID := range seat.DeckCardIDs {
			player.Deck = append(player.Deck, ms.spawnCard(catalogID, seat.PlayerID, ZoneDeck))
		}
		ms.shuffleDeck(player)
		player.DonDeck = donDeckSize
	}
	gs.RecordInitialCounts()

	for _, seat := range seats {
		ms.drawCards(gs.Player(seat.PlayerID), startingHandSize)
	}

	// The winner of the opening coin flip decides who goes first.
	chooser := playerIDs[ms.rng.Intn(len(playerIDs))]
	gs.Pending.Push(ms.firstPlayerChoice(chooser))

	// Leaders with a pre-game effect pose their selection now, behind the
	// first-player choice in priority order.
	for _, seat := range seats {
		ms.queuePreGameEffects(gs.Player(seat.PlayerID))
	}

	ms.bus.Publish(rules.NewEvent(rules.EventMatchStarted, "", "", ""))
	e.matches[matchID] = ms

	e.logger.Info("match created",
		zap.String("match_id", matchID),
		zap.Strings("players", playerIDs),
		zap.String("first_choice", chooser),
	)
	return nil
}

// spawnCard instantiates a catalog card. Unknown catalog entries degrade to
// vanilla cards with no keywords or effects.
func (ms *matchState) spawnCard(catalogID, ownerID string, zone Zone) *GameCard {
	card := &GameCard{
		ID:        uuid.NewString(),
		CatalogID: catalogID,
		OwnerID:   ownerID,
		Zone:      zone,
		Keywords:  make(map[catalog.Keyword]bool),
	}
	if def, ok := ms.catalog.GetCard(catalogID); ok {
		card.BasePower = def.Power
		for _, kw := range def.Keywords {
			card.Keywords[kw] = true
		}
	} else if zone == ZoneLeader {
		card.BasePower = defaultLeaderPower
	}
	return card
}

func (ms *matchState) definition(card *GameCard) *catalog.Definition {
	if card == nil {
		return nil
	}
	def, ok := ms.catalog.GetCard(card.CatalogID)
	if !ok {
		return nil
	}
	return def
}

func (ms *matchState) shuffleDeck(p *PlayerState) {
	ms.rng.Shuffle(len(p.Deck), func(i, j int) {
		p.Deck[i], p.Deck[j] = p.Deck[j], p.Deck[i]
	})
}

func (ms *matchState) drawCards(p *PlayerState, n int) {
	for i := 0; i < n && len(p.Deck) > 0; i++ {
		card := p.Deck[0]
		p.Deck = p.Deck[1:]
		card.Zone = ZoneHand
		p.Hand = append(p.Hand, card)
		ms.bus.Publish(rules.NewEvent(rules.EventCardDrawn, card.ID, "", p.PlayerID))
	}
}

// firstPlayerChoiceSource marks the synthetic pre-game first/second choice.
const firstPlayerChoiceSource = "first-player-choice"

func (ms *matchState) firstPlayerChoice(chooser string) *PendingEffect {
	return &PendingEffect{
		ID:       uuid.NewString(),
		Category: PendingChoice,
		PlayerID: chooser,
		SourceID: firstPlayerChoiceSource,
		EffectOp: catalog.OpChooseOption,
		Options: []PendingOption{
			{ID: "FIRST", Label: "Go first", Enabled: true},
			{ID: "SECOND", Label: "Go second", Enabled: true},
		},
	}
}

func (ms *matchState) queuePreGameEffects(p *PlayerState) {
	def := ms.definition(p.Leader)
	if def == nil {
		return
	}
	for i := range def.Effects {
		eff := &def.Effects[i]
		if eff.Timing != catalog.TimingPreGame {
			continue
		}
		ms.createPendingForEffect(p, p.Leader, eff, PendingPreGame)
	}
}

// Subscribe registers a listener on a match's event bus.
func (e *Engine) Subscribe(matchID string, listener rules.Listener) (int, error) {
	ms, err := e.match(matchID)
	if err != nil {
		return -1, err
	}
	return ms.bus.Subscribe(listener), nil
}

// Inspect runs fn with the match state under the match lock. Callers must
// not retain the pointer; it is how the AI reads state without racing the
// dispatcher.
func (e *Engine) Inspect(matchID string, fn func(*GameState) error) error {
	ms, err := e.match(matchID)
	if err != nil {
		return err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return fn(ms.state)
}

// RemoveMatch drops a finished match from the registry.
func (e *Engine) RemoveMatch(matchID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.matches, matchID)
}

func (e *Engine) match(matchID string) (*matchState, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ms, ok := e.matches[matchID]
	if !ok {
		return nil, ErrMatchNotFound
	}
	return ms, nil
}

// Apply validates and executes one player action. On any error the state is
// untouched; on success the phase machine advances as far as it can without
// further input.
func (e *Engine) Apply(matchID, playerID string, action Action) error {
	ms, err := e.match(matchID)
	if err != nil {
		return err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	gs := ms.state
	if gs.Player(playerID) == nil {
		return ErrUnknownPlayer
	}
	if gs.Over {
		return violation(ViolationMatchOver, "match is over")
	}

	// Surrender is the one action that bypasses the pending-effect drain.
	if action.Type == ActionSurrender {
		ms.surrender(playerID)
		return nil
	}

	if err := ms.dispatch(playerID, action); err != nil {
		return err
	}

	if err := ms.afterAction(); err != nil {
		return err
	}
	return nil
}

// dispatch routes a validated action. Ordering follows the contract: an
// outstanding pending decision owned by anyone blocks everything except its
// own resolve/skip by its owner.
func (ms *matchState) dispatch(playerID string, action Action) error {
	gs := ms.state

	if next := gs.Pending.Next(); next != nil {
		cat, isResolve := resolveActions[action.Type]
		if !isResolve || cat != next.Category {
			return &RuleViolation{
				Code:     ViolationPendingFirst,
				Message:  fmt.Sprintf("action %s not allowed while a %s decision is outstanding", action.Type, next.Category),
				Expected: fmt.Sprintf("%s decision %s owned by %s", next.Category, next.ID, next.PlayerID),
			}
		}
		if next.PlayerID != playerID {
			return &RuleViolation{
				Code:     ViolationNotOwner,
				Message:  fmt.Sprintf("pending %s decision belongs to %s", next.Category, next.PlayerID),
				Expected: fmt.Sprintf("%s decision %s owned by %s", next.Category, next.ID, next.PlayerID),
			}
		}
		return ms.resolvePendingAction(playerID, next, action)
	}

	switch gs.Turns.CurrentPhase() {
	case rules.PhasePreGameSetup:
		// Everything in pre-game setup flows through pending decisions.
		return violation(ViolationWrongPhase, "waiting for pre-game decisions")
	case rules.PhaseStartMulligan:
		return ms.dispatchMulligan(playerID, action)
	case rules.PhaseMain:
		return ms.dispatchMain(playerID, action)
	case rules.PhaseCombat:
		return ms.dispatchCombat(playerID, action)
	default:
		return violation(ViolationWrongPhase, "no actions accepted in phase %s", gs.Turns.CurrentPhase())
	}
}

func (ms *matchState) dispatchMulligan(playerID string, action Action) error {
	p := ms.state.Player(playerID)
	if p.KeptHand {
		return violation(ViolationWrongPhase, "hand already kept")
	}

	switch action.Type {
	case ActionKeepHand:
		p.KeptHand = true
		ms.bus.Publish(rules.NewEvent(rules.EventHandKept, "", "", playerID))
		return nil
	case ActionMulligan:
		if p.Mulliganed {
			return violation(ViolationWrongPhase, "already mulliganed")
		}
		for _, card := range p.Hand {
			card.Zone = ZoneDeck
		}
		p.Deck = append(p.Deck, p.Hand...)
		p.Hand = nil
		ms.shuffleDeck(p)
		ms.drawCards(p, startingHandSize)
		p.Mulliganed = true
		p.KeptHand = true
		ms.bus.Publish(rules.NewEvent(rules.EventMulliganTaken, "", "", playerID))
		return nil
	default:
		return violation(ViolationWrongPhase, "action %s not legal during mulligan", action.Type)
	}
}

func (ms *matchState) dispatchMain(playerID string, action Action) error {
	gs := ms.state
	if gs.Turns.ActivePlayer() != playerID {
		return violation(ViolationNotYourTurn, "it is %s's turn", gs.Turns.ActivePlayer())
	}

	switch action.Type {
	case ActionPlayCard:
		var data PlayCardData
		if err := decodePayload(action, &data); err != nil {
			return err
		}
		return ms.playCard(playerID, data.CardID)
	case ActionAttachDon:
		var data AttachDonData
		if err := decodePayload(action, &data); err != nil {
			return err
		}
		return ms.attachDon(playerID, data.TargetID, data.Count)
	case ActionActivateEffect:
		var data ActivateEffectData
		if err := decodePayload(action, &data); err != nil {
			return err
		}
		return ms.activateEffect(playerID, data.CardID, data.EffectIndex)
	case ActionDeclareAttack:
		var data DeclareAttackData
		if err := decodePayload(action, &data); err != nil {
			return err
		}
		return ms.declareAttack(playerID, data.AttackerID, data.TargetID)
	case ActionEndTurn:
		return ms.requestEndTurn(playerID)
	default:
		return violation(ViolationWrongPhase, "action %s not legal in main phase", action.Type)
	}
}

// playCard pays a card's DON cost and puts it into play (characters/stages)
// or executes it (events).
func (ms *matchState) playCard(playerID, cardID string) error {
	gs := ms.state
	p := gs.Player(playerID)

	card, owner := gs.FindCard(cardID)
	if card == nil || owner != p || card.Zone != ZoneHand {
		return violation(ViolationIllegalTarget, "card %s is not in your hand", cardID)
	}

	def := ms.definition(card)
	cost := 0
	cardType := catalog.TypeCharacter
	if def != nil {
		cost = def.Cost
		cardType = def.Type
	}
	if cardType == catalog.TypeCharacter || cardType == catalog.TypeStage {
		if len(p.Field) >= fieldSizeLimit {
			return violation(ViolationIllegalTarget, "field is full")
		}
	}
	if err := ms.payDon(p, cost); err != nil {
		return err
	}

	switch cardType {
	case catalog.TypeEvent:
		// Events execute their main-timing effect and go straight to trash.
		if err := gs.MoveCard(p, card, ZoneTrash); err != nil {
			return corruption("play event: %v", err)
		}
		ms.bus.Publish(rules.NewEvent(rules.EventCardPlayed, card.ID, "", playerID))
		if def != nil {
			for i := range def.Effects {
				eff := &def.Effects[i]
				if eff.Timing == catalog.TimingOnPlay || eff.Timing == catalog.TimingActivateMain {
					ms.executeEffect(p, card, eff, PendingEvent)
				}
			}
		}
	default:
		if err := gs.MoveCard(p, card, ZoneField); err != nil {
			return corruption("play card: %v", err)
		}
		card.TurnPlayed = gs.Turns.TurnNumber()
		card.Rest = StateActive
		ms.bus.Publish(rules.NewEvent(rules.EventCardPlayed, card.ID, "", playerID))
		if def != nil {
			for i := range def.Effects {
				eff := &def.Effects[i]
				if eff.Timing == catalog.TimingOnPlay {
					ms.state.Turns.SetStep(rules.StepPlayEffect)
					ms.executeEffect(p, card, eff, PendingEvent)
				}
			}
		}
	}
	return nil
}

// payDon rests cost-many active DON. Rejects without mutating when the
// player cannot pay.
func (ms *matchState) payDon(p *PlayerState, cost int) error {
	if cost <= 0 {
		return nil
	}
	free := p.ActiveDon()
	if len(free) < cost {
		return violation(ViolationCannotPay, "need %d active DON, have %d", cost, len(free))
	}
	for i := 0; i < cost; i++ {
		free[i].Rest = StateRested
	}
	ms.bus.Publish(rules.NewEventWithAmount(rules.EventDonRested, "", "", p.PlayerID, cost))
	return nil
}

// attachDon moves active DON from the field onto a character or leader.
func (ms *matchState) attachDon(playerID, targetID string, count int) error {
	gs := ms.state
	p := gs.Player(playerID)
	if count <= 0 {
		return malformed(ActionAttachDon, "count must be positive")
	}

	target, owner := gs.FindCard(targetID)
	if target == nil || owner != p {
		return violation(ViolationIllegalTarget, "target %s is not yours", targetID)
	}
	if target.Zone != ZoneField && target.Zone != ZoneLeader {
		return violation(ViolationIllegalTarget, "DON can only attach to field characters or the leader")
	}
	if len(target.AttachedDon)+count > maxDonPerCard {
		return violation(ViolationIllegalTarget, "at most %d DON per card", maxDonPerCard)
	}
	free := p.ActiveDon()
	if len(free) < count {
		return violation(ViolationCannotPay, "need %d active DON, have %d", count, len(free))
	}

	for i := 0; i < count; i++ {
		free[i].AttachedTo = target.ID
		target.AttachedDon = append(target.AttachedDon, free[i].ID)
	}
	if gs.Combat != nil && gs.Combat.AttackerID == target.ID {
		gs.Combat.AttackPower += count * donPowerBonus
	}
	ms.bus.Publish(rules.NewEventWithAmount(rules.EventDonAttached, target.ID, "", playerID, count))
	return nil
}

// activateEffect runs a card's ACTIVATE_MAIN ability.
func (ms *matchState) activateEffect(playerID, cardID string, effectIndex int) error {
	gs := ms.state
	p := gs.Player(playerID)

	card, owner := gs.FindCard(cardID)
	if card == nil || owner != p {
		return violation(ViolationIllegalTarget, "card %s is not yours", cardID)
	}
	if card.Zone != ZoneField && card.Zone != ZoneLeader {
		return violation(ViolationIllegalTarget, "only field cards and the leader can activate abilities")
	}
	def := ms.definition(card)
	if def == nil || effectIndex < 0 || effectIndex >= len(def.Effects) {
		return violation(ViolationIllegalTarget, "card %s has no effect %d", cardID, effectIndex)
	}
	eff := &def.Effects[effectIndex]
	if eff.Timing != catalog.TimingActivateMain {
		return violation(ViolationWrongPhase, "effect %d is not a main-phase ability", effectIndex)
	}

	ms.bus.Publish(rules.NewEvent(rules.EventEffectActivated, card.ID, "", playerID))
	ms.executeEffect(p, card, eff, PendingActivate)
	return nil
}

// requestEndTurn fires end-of-turn effects and enters the end phase. The
// turn hands over once the pending queue drains.
func (ms *matchState) requestEndTurn(playerID string) error {
	gs := ms.state
	p := gs.Player(playerID)

	ms.fireTimedEffects(p, catalog.TimingEndOfTurn)
	gs.Turns.SetPhase(rules.PhaseEndTurn)
	ms.bus.Publish(rules.NewEvent(rules.EventTurnEnded, "", "", playerID))
	return nil
}

// fireTimedEffects runs every leader/field effect with the given timing.
func (ms *matchState) fireTimedEffects(p *PlayerState, timing catalog.EffectTiming) {
	cards := make([]*GameCard, 0, len(p.Field)+1)
	if p.Leader != nil {
		cards = append(cards, p.Leader)
	}
	cards = append(cards, p.Field...)
	for _, card := range cards {
		def := ms.definition(card)
		if def == nil {
			continue
		}
		for i := range def.Effects {
			eff := &def.Effects[i]
			if eff.Timing == timing {
				ms.executeEffect(p, card, eff, PendingEvent)
			}
		}
	}
}

// surrender ends the match immediately regardless of phase or pending
// state. This and disconnect-timeout are the only drain bypasses.
func (ms *matchState) surrender(playerID string) {
	gs := ms.state
	p := gs.Player(playerID)
	p.Surrendered = true
	p.Lost = true
	gs.Over = true
	gs.Winner = gs.Opponent(playerID)
	ms.bus.Publish(rules.NewEvent(rules.EventMatchEnded, "", "", gs.Winner))
}

// afterAction advances the machine as far as it can go without player
// input, then checks invariants.
func (ms *matchState) afterAction() error {
	gs := ms.state

	if !gs.Over && gs.Pending.Empty() {
		switch gs.Turns.CurrentPhase() {
		case rules.PhasePreGameSetup:
			if ms.firstPlayer != "" {
				gs.Turns.SetPhase(rules.PhaseStartMulligan)
			}
		case rules.PhaseStartMulligan:
			if ms.allHandsKept() {
				ms.startFirstTurn()
			}
		case rules.PhaseMain:
			// An on-play step ends once its effect queue drains.
			if gs.Combat == nil && gs.Turns.CurrentStep() != rules.StepNone {
				gs.Turns.SetStep(rules.StepNone)
			}
		case rules.PhaseCombat:
			ms.continueCombat()
		}

		if gs.Turns.CurrentPhase() == rules.PhaseEndTurn && gs.Pending.Empty() && gs.Combat == nil && !gs.Over {
			ms.finishTurn()
		}
	}

	if err := gs.Validate(); err != nil {
		return err
	}
	return nil
}

func (ms *matchState) allHandsKept() bool {
	for _, p := range ms.state.Players {
		if !p.KeptHand {
			return false
		}
	}
	return true
}

// startFirstTurn deals life piles and opens the first player's first turn.
func (ms *matchState) startFirstTurn() {
	gs := ms.state
	for _, p := range gs.Players {
		life := defaultLeaderLife
		if def := ms.definition(p.Leader); def != nil && def.Life > 0 {
			life = def.Life
		}
		for i := 0; i < life && len(p.Deck) > 0; i++ {
			card := p.Deck[0]
			p.Deck = p.Deck[1:]
			card.Zone = ZoneLife
			p.Life = append(p.Life, card)
		}
	}
	ms.beginTurn(ms.firstPlayer)
}

// beginTurn performs the refresh portion of a turn: ready everything,
// return attached DON, deal DON income, draw, then fire start-of-turn
// effects and enter the main phase.
func (ms *matchState) beginTurn(playerID string) {
	gs := ms.state
	p := gs.Player(playerID)

	gs.Turns.BeginTurn(playerID)
	turn := gs.Turns.TurnNumber()

	// Refresh: attached DON come home active, everything readies.
	if p.Leader != nil {
		gs.detachAllDon(p, p.Leader)
		p.Leader.Rest = StateActive
		p.Leader.HasAttacked = false
		p.Leader.ExpireModifiers(turn)
	}
	for _, card := range p.Field {
		gs.detachAllDon(p, card)
		card.Rest = StateActive
		card.HasAttacked = false
		card.ExpireModifiers(turn)
	}
	for _, don := range p.DonField {
		don.Rest = StateActive
	}
	// Opponent's expired modifiers fall off too.
	opp := gs.Player(gs.Opponent(playerID))
	if opp.Leader != nil {
		opp.Leader.ExpireModifiers(turn)
	}
	for _, card := range opp.Field {
		card.ExpireModifiers(turn)
	}

	// DON income: 1 on the very first turn, otherwise 2, bounded by the
	// DON deck.
	income := 2
	if turn == 1 {
		income = 1
	}
	if income > p.DonDeck {
		income = p.DonDeck
	}
	for i := 0; i < income; i++ {
		p.DonField = append(p.DonField, &DonToken{ID: uuid.NewString(), Rest: StateActive})
	}
	p.DonDeck -= income
	if income > 0 {
		ms.bus.Publish(rules.NewEventWithAmount(rules.EventDonGained, "", "", playerID, income))
	}

	// The first player skips the draw on the game's first turn.
	if turn > 1 {
		ms.drawCards(p, 1)
	}

	ms.bus.Publish(rules.NewEventWithAmount(rules.EventTurnBegan, "", "", playerID, turn))
	ms.fireTimedEffects(p, catalog.TimingStartOfTurn)
}

// finishTurn hands the turn to the opponent.
func (ms *matchState) finishTurn() {
	gs := ms.state
	next := gs.Opponent(gs.Turns.ActivePlayer())
	ms.beginTurn(next)
}

// checkWinner ends the match when a player has lost.
func (ms *matchState) checkWinner() {
	gs := ms.state
	if gs.Over {
		return
	}
	for id, p := range gs.Players {
		if p.Lost {
			gs.Over = true
			gs.Winner = gs.Opponent(id)
			ms.bus.Publish(rules.NewEvent(rules.EventMatchEnded, "", "", gs.Winner))
			return
		}
	}
}
