package game

import (
	"github.com/paxtonking/optcgsim-web-sub005/internal/catalog"
)

// PendingCategory identifies the shape of a pending decision. Categories are
// drained in strict priority order; the resolver never processes two
// categories in the same decision tick.
type PendingCategory int

const (
	PendingActivate PendingCategory = iota
	PendingEvent
	PendingCounter
	PendingDeckReveal
	PendingHandSelect
	PendingFieldSelect
	PendingChoice
	PendingAdditionalCost
	PendingPreGame

	numPendingCategories
)

var pendingNames = map[PendingCategory]string{
	PendingActivate:       "ACTIVATE",
	PendingEvent:          "EVENT",
	PendingCounter:        "COUNTER",
	PendingDeckReveal:     "DECK_REVEAL",
	PendingHandSelect:     "HAND_SELECT",
	PendingFieldSelect:    "FIELD_SELECT",
	PendingChoice:         "CHOICE",
	PendingAdditionalCost: "ADDITIONAL_COST",
	PendingPreGame:        "PRE_GAME",
}

func (c PendingCategory) String() string {
	if name, ok := pendingNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}

// PendingOption is one branch of a Choice decision.
type PendingOption struct {
	ID      string
	Label   string
	Op      catalog.EffectOp
	Amount  int
	Enabled bool
}

// PendingEffect is a decision point that must be answered by its owning
// player before the state machine may advance. Each category carries exactly
// the fields it needs; unused fields stay zero. A pending effect is consumed
// exactly once, by a resolve or a skip, never partially.
type PendingEffect struct {
	ID       string
	Category PendingCategory
	PlayerID string
	SourceID string // card instance that created the decision
	EffectOp catalog.EffectOp
	Amount   int
	Keyword  catalog.Keyword

	// Activate / Event / Counter / FieldSelect
	ValidTargets []string

	// DeckReveal
	SelectableCardIDs []string
	RevealedCardIDs   []string // full revealed set, shown to the owner

	// DeckReveal / HandSelect / FieldSelect
	MinSelections int
	MaxSelections int

	// Choice
	Options []PendingOption

	// AdditionalCost
	CostType   catalog.CostType
	CostAmount int
	// followUp runs after the cost is paid. Not serialized; rebuilt from the
	// source effect on reload.
	followUp *catalog.EffectDef

	// PreGame
	ValidCardIDs []string

	CanSkip bool
}

// PendingSet holds the per-category decision queues. Each category is an
// explicit FIFO list; the head of the highest-priority non-empty category is
// the single decision currently outstanding.
type PendingSet struct {
	queues [numPendingCategories][]*PendingEffect
}

// NewPendingSet creates an empty set.
func NewPendingSet() *PendingSet {
	return &PendingSet{}
}

// Push appends the effect to its category queue.
func (ps *PendingSet) Push(effect *PendingEffect) {
	if effect == nil || effect.Category < 0 || effect.Category >= numPendingCategories {
		return
	}
	ps.queues[effect.Category] = append(ps.queues[effect.Category], effect)
}

// Next returns the decision currently outstanding, or nil when the set is
// drained. Priority follows category declaration order.
func (ps *PendingSet) Next() *PendingEffect {
	for cat := PendingCategory(0); cat < numPendingCategories; cat++ {
		if len(ps.queues[cat]) > 0 {
			return ps.queues[cat][0]
		}
	}
	return nil
}

// Remove consumes the effect with the given id. Returns the removed effect,
// or nil when absent.
func (ps *PendingSet) Remove(effectID string) *PendingEffect {
	for cat := range ps.queues {
		for i, e := range ps.queues[cat] {
			if e.ID == effectID {
				ps.queues[cat] = append(ps.queues[cat][:i], ps.queues[cat][i+1:]...)
				return e
			}
		}
	}
	return nil
}

// Empty reports whether no decision is outstanding.
func (ps *PendingSet) Empty() bool {
	return ps.Next() == nil
}

// Count returns the total number of queued decisions across categories.
func (ps *PendingSet) Count() int {
	n := 0
	for cat := range ps.queues {
		n += len(ps.queues[cat])
	}
	return n
}

// All returns every queued effect in priority order. Used by views and
// serialization.
func (ps *PendingSet) All() []*PendingEffect {
	var all []*PendingEffect
	for cat := range ps.queues {
		all = append(all, ps.queues[cat]...)
	}
	return all
}
