package ai

import (
	"github.com/paxtonking/optcgsim-web-sub005/internal/game"
	"github.com/paxtonking/optcgsim-web-sub005/internal/game/rules"
	"go.uber.org/zap"
)

// Service orchestrates a bot seat. It is difficulty-agnostic: each tick it
// reads the match under the engine's inspect lock, asks the strategy the
// same questions a human client would be asked, and returns the decision to
// submit. It never mutates state itself.
type Service struct {
	engine *game.Engine
	logger *zap.Logger
}

// NewService builds an AI service over the engine.
func NewService(engine *game.Engine, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{engine: engine, logger: logger}
}

// NextDecision computes the bot's next action for the match, or nil when
// the bot has nothing to do (opponent's move, or match over).
func (s *Service) NextDecision(matchID, playerID string, strat Strategy) (*game.Decision, error) {
	var decision *game.Decision
	err := s.engine.Inspect(matchID, func(gs *game.GameState) error {
		decision = s.decide(gs, playerID, strat)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if decision != nil {
		s.logger.Debug("bot decision",
			zap.String("match_id", matchID),
			zap.String("player_id", playerID),
			zap.String("strategy", strat.Name()),
			zap.String("action", string(decision.Action.Type)),
			zap.Float64("confidence", decision.Confidence),
			zap.String("reasoning", decision.Reasoning),
		)
	}
	return decision, nil
}

// decide mirrors the priority order of the pending-effect resolver: an
// outstanding decision owned by this seat always comes first, then
// phase-specific logic.
func (s *Service) decide(gs *game.GameState, playerID string, strat Strategy) *game.Decision {
	if gs.Over {
		return nil
	}

	if next := gs.Pending.Next(); next != nil {
		if next.PlayerID != playerID {
			return nil // someone else's decision blocks the match
		}
		d := strat.SelectEffectTargets(gs, playerID, next)
		return &d
	}

	p := gs.Player(playerID)
	switch gs.Turns.CurrentPhase() {
	case rules.PhaseStartMulligan:
		if p.KeptHand {
			return nil
		}
		d := strat.DecideMulligan(gs, playerID)
		return &d

	case rules.PhaseMain:
		if gs.Turns.ActivePlayer() != playerID {
			return nil
		}
		if d := strat.SelectCardToPlay(gs, playerID); d != nil {
			return d
		}
		if d := strat.SelectDonAttachment(gs, playerID); d != nil {
			return d
		}
		if d := strat.SelectAttackTarget(gs, playerID); d != nil {
			return d
		}
		d := decide(game.ActionEndTurn, nil, 0.9, "nothing left to do")
		return &d

	case rules.PhaseCombat:
		ctx := gs.Combat
		if ctx == nil || gs.Opponent(ctx.AttackerOwner) != playerID {
			return nil // attacker waits; combat steps belong to the defender
		}
		switch gs.Turns.CurrentStep() {
		case rules.StepBlocker:
			d := strat.DecideBlock(gs, playerID)
			return &d
		case rules.StepCounter:
			d := strat.DecideCounter(gs, playerID)
			return &d
		case rules.StepTrigger:
			if ctx.AwaitingTriggerID == "" {
				return nil
			}
			// A revealed trigger is free value; every difficulty takes it.
			d := decide(game.ActionTriggerLife, nil, 0.9, "activating revealed trigger")
			return &d
		}
		return nil

	default:
		return nil
	}
}
