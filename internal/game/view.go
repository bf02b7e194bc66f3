package game

import (
	"github.com/paxtonking/optcgsim-web-sub005/internal/catalog"
)

// MatchView is the redacted state one seat is allowed to see. Hidden zones
// appear as counts only; the viewer's own hand is the single exception.
type MatchView struct {
	MatchID      string
	ViewerID     string
	TurnNumber   int
	ActivePlayer string
	Phase        string
	Step         string
	Over         bool
	Winner       string

	You      PlayerView
	Opponent PlayerView

	Combat  *CombatView
	Pending *PendingView
}

// PlayerView is one seat inside a MatchView.
type PlayerView struct {
	PlayerID string
	Leader   *CardView

	Hand      []CardView // empty for the opponent's view
	HandCount int
	DeckCount int
	LifeCount int
	Trash     []CardView
	Field     []CardView

	DonDeck   int
	DonActive int
	DonRested int
	DonField  []DonView
}

// CardView is a card as seen by the viewer.
type CardView struct {
	ID          string
	CatalogID   string
	Name        string
	Type        catalog.CardType
	Cost        int
	Power       int
	BasePower   int
	Counter     int
	Rested      bool
	AttachedDon int
	Keywords    []catalog.Keyword
	TurnPlayed  int
	HasAttacked bool
}

// DonView is one DON token.
type DonView struct {
	ID         string
	Rested     bool
	AttachedTo string
}

// CombatView mirrors the in-flight attack.
type CombatView struct {
	AttackerID      string
	AttackerOwner   string
	TargetID        string
	TargetType      TargetType
	AttackPower     int
	CounterPower    int
	BlockerUsed     bool
	RemainingHits   int
	AwaitingTrigger bool
}

// PendingView describes the decision currently blocking the match. Selection
// details are only populated for the owning viewer; the opponent just sees
// who must act and on what category.
type PendingView struct {
	EffectID string
	Category string
	PlayerID string
	SourceID string
	Yours    bool

	ValidTargets      []string
	SelectableCardIDs []string
	RevealedCardIDs   []string
	MinSelections     int
	MaxSelections     int
	Options           []PendingOption
	CostType          catalog.CostType
	CostAmount        int
	ValidCardIDs      []string
	CanSkip           bool
}

// View builds the redacted view for one seat.
func (e *Engine) View(matchID, viewerID string) (*MatchView, error) {
	ms, err := e.match(matchID)
	if err != nil {
		return nil, err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()

	gs := ms.state
	viewer := gs.Player(viewerID)
	if viewer == nil {
		return nil, ErrUnknownPlayer
	}
	opp := gs.Player(gs.Opponent(viewerID))

	view := &MatchView{
		MatchID:      gs.MatchID,
		ViewerID:     viewerID,
		TurnNumber:   gs.Turns.TurnNumber(),
		ActivePlayer: gs.Turns.ActivePlayer(),
		Phase:        gs.Turns.CurrentPhase().String(),
		Step:         gs.Turns.CurrentStep().String(),
		Over:         gs.Over,
		Winner:       gs.Winner,
		You:          ms.playerView(viewer, true),
		Opponent:     ms.playerView(opp, false),
	}

	if gs.Combat != nil {
		view.Combat = &CombatView{
			AttackerID:      gs.Combat.AttackerID,
			AttackerOwner:   gs.Combat.AttackerOwner,
			TargetID:        gs.Combat.TargetID,
			TargetType:      gs.Combat.TargetType,
			AttackPower:     gs.Combat.AttackPower,
			CounterPower:    gs.Combat.CounterPower,
			BlockerUsed:     gs.Combat.BlockerUsed,
			RemainingHits:   gs.Combat.RemainingHits,
			AwaitingTrigger: gs.Combat.AwaitingTriggerID != "",
		}
	}

	if next := gs.Pending.Next(); next != nil {
		view.Pending = pendingView(next, viewerID)
	}
	return view, nil
}

func (ms *matchState) playerView(p *PlayerState, owner bool) PlayerView {
	pv := PlayerView{
		PlayerID:  p.PlayerID,
		HandCount: len(p.Hand),
		DeckCount: len(p.Deck),
		LifeCount: len(p.Life),
		DonDeck:   p.DonDeck,
	}
	if p.Leader != nil {
		leader := ms.cardView(p.Leader)
		pv.Leader = &leader
	}
	if owner {
		for _, c := range p.Hand {
			pv.Hand = append(pv.Hand, ms.cardView(c))
		}
	}
	for _, c := range p.Trash {
		pv.Trash = append(pv.Trash, ms.cardView(c))
	}
	for _, c := range p.Field {
		pv.Field = append(pv.Field, ms.cardView(c))
	}
	for _, don := range p.DonField {
		pv.DonField = append(pv.DonField, DonView{ID: don.ID, Rested: don.Rest == StateRested, AttachedTo: don.AttachedTo})
		if don.AttachedTo == "" {
			if don.Rest == StateRested {
				pv.DonRested++
			} else {
				pv.DonActive++
			}
		}
	}
	return pv
}

func (ms *matchState) cardView(c *GameCard) CardView {
	cv := CardView{
		ID:          c.ID,
		CatalogID:   c.CatalogID,
		Power:       c.Power(ms.state.Turns.TurnNumber()),
		BasePower:   c.BasePower,
		Rested:      c.Rest == StateRested,
		AttachedDon: len(c.AttachedDon),
		TurnPlayed:  c.TurnPlayed,
		HasAttacked: c.HasAttacked,
	}
	for kw := range c.Keywords {
		cv.Keywords = append(cv.Keywords, kw)
	}
	if def := ms.definition(c); def != nil {
		cv.Name = def.Name
		cv.Type = def.Type
		cv.Cost = def.Cost
		cv.Counter = def.CounterValue
	}
	return cv
}

func pendingView(pe *PendingEffect, viewerID string) *PendingView {
	pv := &PendingView{
		EffectID: pe.ID,
		Category: pe.Category.String(),
		PlayerID: pe.PlayerID,
		SourceID: pe.SourceID,
		Yours:    pe.PlayerID == viewerID,
	}
	if !pv.Yours {
		return pv
	}
	pv.ValidTargets = append(pv.ValidTargets, pe.ValidTargets...)
	pv.SelectableCardIDs = append(pv.SelectableCardIDs, pe.SelectableCardIDs...)
	pv.RevealedCardIDs = append(pv.RevealedCardIDs, pe.RevealedCardIDs...)
	pv.MinSelections = pe.MinSelections
	pv.MaxSelections = pe.MaxSelections
	pv.Options = append(pv.Options, pe.Options...)
	pv.CostType = pe.CostType
	pv.CostAmount = pe.CostAmount
	pv.ValidCardIDs = append(pv.ValidCardIDs, pe.ValidCardIDs...)
	pv.CanSkip = pe.CanSkip
	return pv
}

// Decision is an action a strategy wants to submit, with the reasoning that
// produced it. Confidence is 0..1.
type Decision struct {
	Action     Action
	Confidence float64
	Reasoning  string
}
