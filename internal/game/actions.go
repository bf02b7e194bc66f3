package game

import (
	"encoding/json"
	"fmt"
)

// ActionType enumerates every engine-recognized verb.
type ActionType string

const (
	ActionPlayCard       ActionType = "PLAY_CARD"
	ActionAttachDon      ActionType = "ATTACH_DON"
	ActionActivateEffect ActionType = "ACTIVATE_CARD_EFFECT"
	ActionDeclareAttack  ActionType = "DECLARE_ATTACK"
	ActionSelectBlocker  ActionType = "SELECT_BLOCKER"
	ActionSkipBlocker    ActionType = "SKIP_BLOCKER"
	ActionUseCounter     ActionType = "USE_COUNTER"
	ActionPassCounter    ActionType = "PASS_COUNTER"
	ActionTriggerLife    ActionType = "TRIGGER_LIFE"
	ActionSkipTrigger    ActionType = "SKIP_TRIGGER"
	ActionKeepHand       ActionType = "KEEP_HAND"
	ActionMulligan       ActionType = "MULLIGAN"
	ActionEndTurn        ActionType = "END_TURN"
	ActionSurrender      ActionType = "SURRENDER"

	ActionResolveActivate       ActionType = "RESOLVE_ACTIVATE"
	ActionSkipActivate          ActionType = "SKIP_ACTIVATE"
	ActionResolveEvent          ActionType = "RESOLVE_EVENT"
	ActionSkipEvent             ActionType = "SKIP_EVENT"
	ActionResolveCounter        ActionType = "RESOLVE_COUNTER"
	ActionSkipCounter           ActionType = "SKIP_COUNTER"
	ActionResolveDeckReveal     ActionType = "RESOLVE_DECK_REVEAL"
	ActionSkipDeckReveal        ActionType = "SKIP_DECK_REVEAL"
	ActionResolveHandSelect     ActionType = "RESOLVE_HAND_SELECT"
	ActionSkipHandSelect        ActionType = "SKIP_HAND_SELECT"
	ActionResolveFieldSelect    ActionType = "RESOLVE_FIELD_SELECT"
	ActionSkipFieldSelect       ActionType = "SKIP_FIELD_SELECT"
	ActionResolveChoice         ActionType = "RESOLVE_CHOICE"
	ActionResolveAdditionalCost ActionType = "RESOLVE_ADDITIONAL_COST"
	ActionResolvePreGame        ActionType = "RESOLVE_PRE_GAME"
	ActionSkipPreGame           ActionType = "SKIP_PRE_GAME"
)

// Action is the transport-level message a seat submits: a verb plus a
// category-specific payload.
type Action struct {
	Type ActionType      `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// PlayCardData plays a card from hand.
type PlayCardData struct {
	CardID string `json:"cardId"`
}

// AttachDonData attaches active DON tokens to a character or leader.
type AttachDonData struct {
	TargetID string `json:"targetId"`
	Count    int    `json:"count"`
}

// ActivateEffectData activates a main-phase card ability.
type ActivateEffectData struct {
	CardID      string `json:"cardId"`
	EffectIndex int    `json:"effectIndex"`
}

// DeclareAttackData declares an attack against a leader or rested character.
type DeclareAttackData struct {
	AttackerID string `json:"attackerId"`
	TargetID   string `json:"targetId"`
}

// SelectBlockerData names the defending blocker.
type SelectBlockerData struct {
	BlockerID string `json:"blockerId"`
}

// UseCounterData plays counter cards from hand during the counter step.
type UseCounterData struct {
	CardIDs []string `json:"cardIds"`
}

// ResolvePendingData answers an outstanding pending effect. Which fields are
// read depends on the category being resolved.
type ResolvePendingData struct {
	EffectID    string   `json:"effectId"`
	TargetIDs   []string `json:"targetIds,omitempty"`
	SelectedIDs []string `json:"selectedIds,omitempty"`
	OptionID    string   `json:"optionId,omitempty"`
	CardID      string   `json:"cardId,omitempty"` // pre-game pick
	Pay         bool     `json:"pay,omitempty"`    // additional cost
}

func decodePayload(action Action, out interface{}) error {
	if len(action.Data) == 0 {
		return malformed(action.Type, "missing payload")
	}
	if err := json.Unmarshal(action.Data, out); err != nil {
		return malformed(action.Type, "invalid payload: %v", err)
	}
	return nil
}

// resolveActions maps each resolve/skip verb to the pending category it may
// consume. Shape validation at the dispatcher boundary uses this table.
var resolveActions = map[ActionType]PendingCategory{
	ActionResolveActivate:       PendingActivate,
	ActionSkipActivate:          PendingActivate,
	ActionResolveEvent:          PendingEvent,
	ActionSkipEvent:             PendingEvent,
	ActionResolveCounter:        PendingCounter,
	ActionSkipCounter:           PendingCounter,
	ActionResolveDeckReveal:     PendingDeckReveal,
	ActionSkipDeckReveal:        PendingDeckReveal,
	ActionResolveHandSelect:     PendingHandSelect,
	ActionSkipHandSelect:        PendingHandSelect,
	ActionResolveFieldSelect:    PendingFieldSelect,
	ActionSkipFieldSelect:       PendingFieldSelect,
	ActionResolveChoice:         PendingChoice,
	ActionResolveAdditionalCost: PendingAdditionalCost,
	ActionResolvePreGame:        PendingPreGame,
	ActionSkipPreGame:           PendingPreGame,
}

// skipActions marks which of the resolve verbs are skips.
var skipActions = map[ActionType]bool{
	ActionSkipActivate:    true,
	ActionSkipEvent:       true,
	ActionSkipCounter:     true,
	ActionSkipDeckReveal:  true,
	ActionSkipHandSelect:  true,
	ActionSkipFieldSelect: true,
	ActionSkipPreGame:     true,
}

// ResolveActionFor returns the resolve verb for a pending category.
func ResolveActionFor(cat PendingCategory) ActionType {
	for action, c := range resolveActions {
		if c == cat && !skipActions[action] {
			return action
		}
	}
	return ""
}

// SkipActionFor returns the skip verb for a pending category, or "" when the
// category cannot be skipped (Choice, AdditionalCost always need an answer).
func SkipActionFor(cat PendingCategory) ActionType {
	for action, c := range resolveActions {
		if c == cat && skipActions[action] {
			return action
		}
	}
	return ""
}

// NewAction builds an action with a JSON payload. Panics only on
// unmarshalable payloads, which indicates a programming error.
func NewAction(actionType ActionType, payload interface{}) Action {
	if payload == nil {
		return Action{Type: actionType}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		panic(fmt.Sprintf("unmarshalable action payload for %s: %v", actionType, err))
	}
	return Action{Type: actionType, Data: data}
}
