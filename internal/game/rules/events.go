package rules

import (
	"sync"
	"time"
)

// EventType indicates the category of a rules event.
type EventType string

const (
	// Match lifecycle
	EventMatchStarted EventType = "MATCH_STARTED"
	EventMatchEnded   EventType = "MATCH_ENDED"
	EventTurnBegan    EventType = "TURN_BEGAN"
	EventTurnEnded    EventType = "TURN_ENDED"
	EventPhaseChanged EventType = "PHASE_CHANGED"
	EventStepChanged  EventType = "STEP_CHANGED"

	// Hand / deck
	EventCardDrawn     EventType = "CARD_DRAWN"
	EventMulliganTaken EventType = "MULLIGAN_TAKEN"
	EventHandKept      EventType = "HAND_KEPT"
	EventDeckRevealed  EventType = "DECK_REVEALED"

	// Main phase actions
	EventCardPlayed      EventType = "CARD_PLAYED"
	EventCardTrashed     EventType = "CARD_TRASHED"
	EventDonAttached     EventType = "DON_ATTACHED"
	EventDonRested       EventType = "DON_RESTED"
	EventDonGained       EventType = "DON_GAINED"
	EventEffectActivated EventType = "EFFECT_ACTIVATED"

	// Combat
	EventAttackDeclared  EventType = "ATTACK_DECLARED"
	EventBlockerDeclared EventType = "BLOCKER_DECLARED"
	EventCounterPlayed   EventType = "COUNTER_PLAYED"
	EventDamageDealt     EventType = "DAMAGE_DEALT"
	EventLifeCardTaken   EventType = "LIFE_CARD_TAKEN"
	EventTriggerRevealed EventType = "TRIGGER_REVEALED"
	EventCharacterKOed   EventType = "CHARACTER_KOED"
	EventCombatEnded     EventType = "COMBAT_ENDED"

	// Pending decisions
	EventPendingCreated  EventType = "PENDING_CREATED"
	EventPendingResolved EventType = "PENDING_RESOLVED"
	EventPendingSkipped  EventType = "PENDING_SKIPPED"

	// Runtime card changes
	EventPowerModified  EventType = "POWER_MODIFIED"
	EventKeywordGranted EventType = "KEYWORD_GRANTED"
	EventCardRested     EventType = "CARD_RESTED"
	EventCardReadied    EventType = "CARD_READIED"
)

// Event represents a state change other subsystems may react to.
type Event struct {
	Type      EventType
	TargetID  string // card or player the event is about
	SourceID  string // card/effect that caused it
	PlayerID  string // owning/acting player
	Amount    int
	Data      string
	Timestamp time.Time
	Metadata  map[string]string
}

// Listener defines a callback that reacts to incoming events.
type Listener func(Event)

// TypedListener defines a callback that reacts to a specific event type.
type TypedListener struct {
	Handle    int
	EventType EventType
	Callback  func(Event)
}

// EventBus provides a synchronous publish/subscribe implementation with
// type filtering. One bus exists per match.
type EventBus struct {
	mu             sync.RWMutex
	listeners      map[int]Listener
	typedListeners map[EventType][]TypedListener
	nextHandle     int
}

// NewEventBus constructs a fresh event bus instance.
func NewEventBus() *EventBus {
	return &EventBus{
		listeners:      make(map[int]Listener),
		typedListeners: make(map[EventType][]TypedListener),
	}
}

// Subscribe registers a listener for all events and returns a handle.
func (bus *EventBus) Subscribe(listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.listeners[handle] = listener
	return handle
}

// SubscribeTyped registers a listener for a specific event type.
func (bus *EventBus) SubscribeTyped(eventType EventType, callback func(Event)) int {
	if callback == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.typedListeners[eventType] = append(bus.typedListeners[eventType], TypedListener{
		Handle:    handle,
		EventType: eventType,
		Callback:  callback,
	})
	return handle
}

// Unsubscribe removes the listener identified by the provided handle.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	delete(bus.listeners, handle)
	for eventType, listeners := range bus.typedListeners {
		for i := len(listeners) - 1; i >= 0; i-- {
			if listeners[i].Handle == handle {
				bus.typedListeners[eventType] = append(listeners[:i], listeners[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers the event to all registered listeners synchronously.
func (bus *EventBus) Publish(event Event) {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	for _, listener := range bus.listeners {
		listener(event)
	}
	if typed, ok := bus.typedListeners[event.Type]; ok {
		for _, listener := range typed {
			listener.Callback(event)
		}
	}
}

// NewEvent creates a new event with common fields populated.
func NewEvent(eventType EventType, targetID, sourceID, playerID string) Event {
	return Event{
		Type:      eventType,
		TargetID:  targetID,
		SourceID:  sourceID,
		PlayerID:  playerID,
		Timestamp: time.Now(),
		Metadata:  make(map[string]string),
	}
}

// NewEventWithAmount creates a new event with an amount value.
func NewEventWithAmount(eventType EventType, targetID, sourceID, playerID string, amount int) Event {
	evt := NewEvent(eventType, targetID, sourceID, playerID)
	evt.Amount = amount
	return evt
}
