package rules

import (
	"fmt"
	"strings"
)

// Phase represents the broad phases of a match turn.
type Phase int

const (
	PhasePreGameSetup Phase = iota
	PhaseStartMulligan
	PhaseMain
	PhaseCombat
	PhaseEndTurn
)

var phaseNames = map[Phase]string{
	PhasePreGameSetup:  "PRE_GAME_SETUP",
	PhaseStartMulligan: "START_MULLIGAN",
	PhaseMain:          "MAIN_PHASE",
	PhaseCombat:        "COMBAT_PHASE",
	PhaseEndTurn:       "END_TURN",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// Step represents the sub-steps inside the combat phase and the
// effect-resolution interludes. StepNone applies outside combat.
type Step int

const (
	StepNone Step = iota
	StepBlocker
	StepCounter
	StepTrigger
	StepPlayEffect
	StepAttackEffect
)

var stepNames = map[Step]string{
	StepNone:         "NONE",
	StepBlocker:      "BLOCKER_STEP",
	StepCounter:      "COUNTER_STEP",
	StepTrigger:      "TRIGGER_STEP",
	StepPlayEffect:   "PLAY_EFFECT_STEP",
	StepAttackEffect: "ATTACK_EFFECT_STEP",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STEP_%d", int(s))
}

// TurnManager tracks the active player, phase/step, the global turn number
// and each player's personal turn counter. The personal counter drives the
// first-personal-turn attack ban independently of the global turn.
type TurnManager struct {
	turnNumber    int
	activePlayer  string
	phase         Phase
	step          Step
	personalTurns map[string]int
}

// NewTurnManager creates a manager positioned before the first turn,
// in pre-game setup.
func NewTurnManager(players []string) *TurnManager {
	personal := make(map[string]int, len(players))
	for _, p := range players {
		personal[strings.TrimSpace(p)] = 0
	}
	return &TurnManager{
		turnNumber:    0,
		phase:         PhasePreGameSetup,
		step:          StepNone,
		personalTurns: personal,
	}
}

// CurrentPhase returns the phase currently in progress.
func (tm *TurnManager) CurrentPhase() Phase { return tm.phase }

// CurrentStep returns the combat/effect step currently in progress.
func (tm *TurnManager) CurrentStep() Step { return tm.step }

// TurnNumber returns the global turn number (1-based once play starts).
func (tm *TurnManager) TurnNumber() int { return tm.turnNumber }

// ActivePlayer returns the player whose turn it is.
func (tm *TurnManager) ActivePlayer() string { return tm.activePlayer }

// PersonalTurn returns how many turns the given player has started.
func (tm *TurnManager) PersonalTurn(player string) int {
	return tm.personalTurns[strings.TrimSpace(player)]
}

// SetPhase moves the machine to the given phase, clearing any step.
// Guards against illegal transitions live in the engine, which checks the
// pending-effect queue before calling this.
func (tm *TurnManager) SetPhase(phase Phase) {
	tm.phase = phase
	tm.step = StepNone
}

// SetStep moves to a combat or effect sub-step within the current phase.
func (tm *TurnManager) SetStep(step Step) {
	tm.step = step
}

// Snapshot returns the manager's internals for serialization. The personal
// turn map is copied.
func (tm *TurnManager) Snapshot() (turn int, active string, phase Phase, step Step, personal map[string]int) {
	personal = make(map[string]int, len(tm.personalTurns))
	for k, v := range tm.personalTurns {
		personal[k] = v
	}
	return tm.turnNumber, tm.activePlayer, tm.phase, tm.step, personal
}

// RestoreTurnManager rebuilds a manager from serialized internals.
func RestoreTurnManager(turn int, active string, phase Phase, step Step, personal map[string]int) *TurnManager {
	copied := make(map[string]int, len(personal))
	for k, v := range personal {
		copied[k] = v
	}
	return &TurnManager{
		turnNumber:    turn,
		activePlayer:  active,
		phase:         phase,
		step:          step,
		personalTurns: copied,
	}
}

// BeginTurn starts the next turn for the given player: bumps the global
// turn number and the player's personal counter and enters the main phase.
func (tm *TurnManager) BeginTurn(player string) {
	player = strings.TrimSpace(player)
	tm.turnNumber++
	tm.activePlayer = player
	tm.personalTurns[player]++
	tm.phase = PhaseMain
	tm.step = StepNone
}
