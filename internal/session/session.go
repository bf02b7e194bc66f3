package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/paxtonking/optcgsim-web-sub005/internal/ai"
	"github.com/paxtonking/optcgsim-web-sub005/internal/catalog"
	"github.com/paxtonking/optcgsim-web-sub005/internal/game"
	"github.com/paxtonking/optcgsim-web-sub005/internal/repository"
	"go.uber.org/zap"
)

// SeatConfig describes one side of a hosted match. Bot seats carry a
// difficulty level string; "basic" is accepted as an alias of "easy".
type SeatConfig struct {
	PlayerID    string
	LeaderID    string
	DeckCardIDs []string
	Bot         bool
	Difficulty  string
}

// Options tunes the manager.
type Options struct {
	DisconnectTimeout time.Duration
	BotTickInterval   time.Duration
}

// Manager hosts match sessions: it routes player actions into the engine,
// drives bot seats, enforces the disconnect timeout, and reports finished
// matches to the result store.
type Manager struct {
	engine *game.Engine
	bots   *ai.Service
	store  *repository.Store
	logger *zap.Logger
	opts   Options

	// onUpdate is invoked after every applied action so the transport can
	// push fresh views. Set once before sessions start.
	onUpdate func(matchID string)

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	matchID     string
	seats       map[string]SeatConfig
	strategies  map[string]ai.Strategy
	started     time.Time
	cancelBots  context.CancelFunc
	disconnects map[string]*time.Timer
	finished    bool
}

// NewManager builds a session manager. The store may be nil.
func NewManager(engine *game.Engine, bots *ai.Service, store *repository.Store, logger *zap.Logger, opts Options) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.DisconnectTimeout <= 0 {
		opts.DisconnectTimeout = 60 * time.Second
	}
	if opts.BotTickInterval <= 0 {
		opts.BotTickInterval = 250 * time.Millisecond
	}
	return &Manager{
		engine:   engine,
		bots:     bots,
		store:    store,
		logger:   logger,
		opts:     opts,
		sessions: make(map[string]*session),
	}
}

// SetUpdateHook registers the transport callback. Must be called before the
// first session is created.
func (m *Manager) SetUpdateHook(fn func(matchID string)) {
	m.onUpdate = fn
}

// CreateSession starts a match for the given seats and returns its id.
func (m *Manager) CreateSession(seats []SeatConfig, lookup catalog.Lookup, seed int64) (string, error) {
	if len(seats) != 2 {
		return "", fmt.Errorf("session requires exactly 2 seats, got %d", len(seats))
	}

	matchID := uuid.NewString()
	engineSeats := make([]game.Seat, 0, len(seats))
	strategies := make(map[string]ai.Strategy)
	seatMap := make(map[string]SeatConfig, len(seats))

	for i, seat := range seats {
		engineSeats = append(engineSeats, game.Seat{
			PlayerID:    seat.PlayerID,
			LeaderID:    seat.LeaderID,
			DeckCardIDs: seat.DeckCardIDs,
		})
		seatMap[seat.PlayerID] = seat
		if seat.Bot {
			strat, err := ai.NewStrategy(seat.Difficulty, lookup, seed+int64(i)+1)
			if err != nil {
				return "", fmt.Errorf("seat %s: %w", seat.PlayerID, err)
			}
			strategies[seat.PlayerID] = strat
		}
	}

	if err := m.engine.CreateMatch(matchID, engineSeats, lookup, seed); err != nil {
		return "", err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &session{
		matchID:     matchID,
		seats:       seatMap,
		strategies:  strategies,
		started:     time.Now(),
		cancelBots:  cancel,
		disconnects: make(map[string]*time.Timer),
	}

	m.mu.Lock()
	m.sessions[matchID] = s
	m.mu.Unlock()

	if len(strategies) > 0 {
		go m.runBots(ctx, s)
	}

	m.logger.Info("session created",
		zap.String("match_id", matchID),
		zap.Int("bots", len(strategies)),
	)
	return matchID, nil
}

// SubmitAction routes a human seat's action into the engine.
func (m *Manager) SubmitAction(matchID, playerID string, action game.Action) error {
	err := m.engine.Apply(matchID, playerID, action)
	if err != nil {
		if game.IsStateCorruption(err) {
			m.abort(matchID, err)
		}
		return err
	}
	m.notify(matchID)
	m.checkFinished(matchID)
	return nil
}

// View returns the redacted state for one seat.
func (m *Manager) View(matchID, playerID string) (*game.MatchView, error) {
	return m.engine.View(matchID, playerID)
}

// runBots drives every bot seat of one session. Each decision is computed
// under the engine's inspect lock, then submitted after the cosmetic think
// delay with no lock held.
func (m *Manager) runBots(ctx context.Context, s *session) {
	ticker := time.NewTicker(m.opts.BotTickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		for playerID, strat := range s.strategies {
			decision, err := m.bots.NextDecision(s.matchID, playerID, strat)
			if err != nil || decision == nil {
				continue
			}
			if delay := strat.Config().ThinkDelay; delay > 0 {
				select {
				case <-ctx.Done():
					return
				case <-time.After(delay):
				}
			}
			if err := m.engine.Apply(s.matchID, playerID, decision.Action); err != nil {
				if game.IsStateCorruption(err) {
					m.abort(s.matchID, err)
					return
				}
				// A stale decision can race a human action; recompute next tick.
				m.logger.Debug("bot action rejected",
					zap.String("match_id", s.matchID),
					zap.String("player_id", playerID),
					zap.Error(err),
				)
				continue
			}
			m.notify(s.matchID)
			if m.checkFinished(s.matchID) {
				return
			}
		}
	}
}

// MarkDisconnected starts the forfeit clock for a seat. Together with
// surrender this is the only path that bypasses pending-effect draining.
func (m *Manager) MarkDisconnected(matchID, playerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[matchID]
	if !ok || s.finished {
		return
	}
	if _, running := s.disconnects[playerID]; running {
		return
	}
	s.disconnects[playerID] = time.AfterFunc(m.opts.DisconnectTimeout, func() {
		m.logger.Info("disconnect timeout, surrendering seat",
			zap.String("match_id", matchID),
			zap.String("player_id", playerID),
		)
		if err := m.SubmitAction(matchID, playerID, game.Action{Type: game.ActionSurrender}); err != nil {
			m.logger.Warn("timeout surrender failed", zap.Error(err))
		}
	})
}

// MarkConnected cancels the seat's forfeit clock. Reconnection is otherwise
// side-effect free; the client just requests a fresh view.
func (m *Manager) MarkConnected(matchID, playerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[matchID]
	if !ok {
		return
	}
	if timer, running := s.disconnects[playerID]; running {
		timer.Stop()
		delete(s.disconnects, playerID)
	}
}

func (m *Manager) notify(matchID string) {
	if m.onUpdate != nil {
		m.onUpdate(matchID)
	}
}

// checkFinished reports the result once when the match ends. Returns true
// when the session is over.
func (m *Manager) checkFinished(matchID string) bool {
	var over bool
	var winner string
	var turns int
	var surrendered bool
	err := m.engine.Inspect(matchID, func(gs *game.GameState) error {
		over = gs.Over
		winner = gs.Winner
		turns = gs.Turns.TurnNumber()
		for _, p := range gs.Players {
			if p.Surrendered {
				surrendered = true
			}
		}
		return nil
	})
	if err != nil || !over {
		return false
	}

	m.mu.Lock()
	s, ok := m.sessions[matchID]
	if !ok || s.finished {
		m.mu.Unlock()
		return true
	}
	s.finished = true
	s.cancelBots()
	for _, timer := range s.disconnects {
		timer.Stop()
	}
	started := s.started
	seats := s.seats
	m.mu.Unlock()

	loser := ""
	for id := range seats {
		if id != winner {
			loser = id
		}
	}
	result := repository.MatchResult{
		MatchID:     matchID,
		Winner:      winner,
		Loser:       loser,
		Turns:       turns,
		Surrendered: surrendered,
		StartedAt:   started,
		EndedAt:     time.Now(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.store.SaveResult(ctx, result); err != nil {
		m.logger.Warn("result save failed", zap.String("match_id", matchID), zap.Error(err))
	}
	m.logger.Info("session finished",
		zap.String("match_id", matchID),
		zap.String("winner", winner),
		zap.Int("turns", turns),
	)
	return true
}

// abort voids a corrupted match for both seats.
func (m *Manager) abort(matchID string, cause error) {
	m.mu.Lock()
	s, ok := m.sessions[matchID]
	if ok && !s.finished {
		s.finished = true
		s.cancelBots()
		for _, timer := range s.disconnects {
			timer.Stop()
		}
	}
	m.mu.Unlock()

	m.logger.Error("match voided on state corruption",
		zap.String("match_id", matchID),
		zap.Error(cause),
	)
	m.engine.RemoveMatch(matchID)
	m.notify(matchID)
}

// CloseSession drops a finished session and its engine match.
func (m *Manager) CloseSession(matchID string) {
	m.mu.Lock()
	if s, ok := m.sessions[matchID]; ok {
		s.cancelBots()
		for _, timer := range s.disconnects {
			timer.Stop()
		}
		delete(m.sessions, matchID)
	}
	m.mu.Unlock()
	m.engine.RemoveMatch(matchID)
}
